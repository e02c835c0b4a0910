// Package flowise implements the provider variant for Flowise chatflow
// endpoints.
//
// Flowise exposes a prediction-style API: the whole conversation is sent as
// a single question string and the chatflow performs its own retrieval, so
// this variant reports built-in retrieval and is never handed locally
// enhanced prompts by the pipeline.
package flowise

import (
	"context"
	"log/slog"
	"net/http"

	"caseflow-hq/polaris/pkg/providers"
	"caseflow-hq/polaris/pkg/transcript"
)

// Provider is the Flowise provider variant.
// It implements the providers.Provider interface for Flowise's prediction API.
type Provider struct {
	*providers.HTTPProvider
}

// NewProvider creates a new Flowise provider instance.
// The config's Endpoint must be the full prediction URL including the
// chatflow identifier; APIKey is optional for unauthenticated instances.
func NewProvider(config providers.Config) (*Provider, error) {
	if config.Endpoint == "" {
		return nil, &providers.ConfigurationError{
			Kind:    providers.KindFlowise,
			Field:   "endpoint",
			Message: "prediction endpoint URL is required",
		}
	}

	if config.MaxIdleConns == 0 {
		config.MaxIdleConns = 100
	}
	if config.MaxIdleConnsPerHost == 0 {
		config.MaxIdleConnsPerHost = 10
	}

	config.Kind = providers.KindFlowise

	p := &Provider{
		HTTPProvider: providers.NewHTTPProvider(providers.KindFlowise,
			providers.Capabilities{BuiltinRetrieval: true}, config),
	}

	slog.Info("Flowise provider initialized",
		"endpoint", config.Endpoint,
	)

	return p, nil
}

// predictionRequest is the Flowise prediction API payload.
type predictionRequest struct {
	Question       string          `json:"question"`
	OverrideConfig *overrideConfig `json:"overrideConfig,omitempty"`
}

type overrideConfig struct {
	SessionID string `json:"sessionId,omitempty"`
}

// predictionResponse covers the answer fields Flowise deployments return.
type predictionResponse struct {
	Text   string `json:"text"`
	Answer string `json:"answer"`
}

// GenerateReply sends the conversation as a single question to the chatflow.
// conversationID becomes the Flowise session ID so the chatflow keeps its
// own memory across requests.
func (p *Provider) GenerateReply(ctx context.Context, text, conversationID string) (string, error) {
	reqCtx, cancel := context.WithTimeout(ctx, p.GetConfig().GenerateTimeout)
	defer cancel()

	req := &predictionRequest{
		Question: transcript.StripMarker(text),
	}
	if conversationID != "" {
		req.OverrideConfig = &overrideConfig{SessionID: conversationID}
	}

	var resp predictionResponse
	if err := p.DoJSONRequest(reqCtx, http.MethodPost, p.GetConfig().Endpoint, req, &resp, p.headers()); err != nil {
		return "", err
	}

	reply := resp.Text
	if reply == "" {
		reply = resp.Answer
	}
	if reply == "" {
		return "", &providers.ResponseFormatError{
			Kind:    providers.KindFlowise,
			Message: "prediction response contains neither text nor answer",
		}
	}

	slog.Debug("flowise reply generated",
		"conversation_id", conversationID,
		"reply_chars", len(reply),
	)

	return reply, nil
}

// HealthCheck probes the chatflow with a minimal question.
func (p *Provider) HealthCheck(ctx context.Context) bool {
	return p.Probe(ctx, http.MethodPost, p.GetConfig().Endpoint,
		&predictionRequest{Question: "ping"}, p.headers())
}

func (p *Provider) headers() map[string]string {
	headers := map[string]string{
		"Content-Type": "application/json",
	}
	if key := p.GetConfig().APIKey; key != "" {
		headers["Authorization"] = "Bearer " + key
	}
	return headers
}
