package rag

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// DefaultSearchTimeout bounds a single search call against the collaborator.
const DefaultSearchTimeout = 10 * time.Second

// HTTPSearcher talks to the vector-search collaborator over HTTP. The
// collaborator exposes a single search operation:
//
//	POST <endpoint>  {"query": "...", "k": 4}
//	  -> {"results": [{"content": "...", "metadata": {...}, "relevance_score": 0.87}]}
type HTTPSearcher struct {
	endpoint string
	apiKey   string
	client   *http.Client
}

// NewHTTPSearcher creates a search client for the given endpoint. apiKey is
// optional and sent as a Bearer token when present.
func NewHTTPSearcher(endpoint, apiKey string, timeout time.Duration) *HTTPSearcher {
	if timeout == 0 {
		timeout = DefaultSearchTimeout
	}
	return &HTTPSearcher{
		endpoint: endpoint,
		apiKey:   apiKey,
		client:   &http.Client{Timeout: timeout},
	}
}

type searchRequest struct {
	Query string `json:"query"`
	K     int    `json:"k"`
}

type searchResponse struct {
	Results []Context `json:"results"`
}

// Search implements the Searcher interface.
func (s *HTTPSearcher) Search(ctx context.Context, query string, k int) ([]Context, error) {
	body, err := json.Marshal(searchRequest{Query: query, K: k})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal search request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create search request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if s.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+s.apiKey)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("search request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("search request returned status %d", resp.StatusCode)
	}

	respBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read search response: %w", err)
	}

	var parsed searchResponse
	if err := json.Unmarshal(respBytes, &parsed); err != nil {
		return nil, fmt.Errorf("failed to unmarshal search response: %w", err)
	}

	return parsed.Results, nil
}
