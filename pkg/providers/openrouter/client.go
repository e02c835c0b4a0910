// Package openrouter implements the provider variant for the OpenRouter
// chat-completions API.
package openrouter

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"caseflow-hq/polaris/pkg/providers"
)

// DefaultBaseURL is the OpenRouter API base used when the config leaves the
// endpoint empty.
const DefaultBaseURL = "https://openrouter.ai/api/v1"

// Provider is the OpenRouter provider variant.
// It implements the providers.Provider interface for OpenRouter's
// chat-completions API.
type Provider struct {
	*providers.HTTPProvider
}

// NewProvider creates a new OpenRouter provider instance.
// APIKey and Model are required; SiteURL and SiteName are optional
// attribution metadata forwarded in the HTTP-Referer and X-Title headers.
func NewProvider(config providers.Config) (*Provider, error) {
	if config.APIKey == "" {
		return nil, &providers.ConfigurationError{
			Kind:    providers.KindOpenRouter,
			Field:   "api_key",
			Message: "API key is required for OpenRouter",
		}
	}
	if config.Model == "" {
		return nil, &providers.ConfigurationError{
			Kind:    providers.KindOpenRouter,
			Field:   "model",
			Message: "model identifier is required for OpenRouter",
		}
	}

	if config.Endpoint == "" {
		config.Endpoint = DefaultBaseURL
	}
	config.Endpoint = strings.TrimSuffix(config.Endpoint, "/")

	if config.MaxIdleConns == 0 {
		config.MaxIdleConns = 100
	}
	if config.MaxIdleConnsPerHost == 0 {
		config.MaxIdleConnsPerHost = 10
	}

	config.Kind = providers.KindOpenRouter

	p := &Provider{
		HTTPProvider: providers.NewHTTPProvider(providers.KindOpenRouter,
			providers.Capabilities{BuiltinRetrieval: false}, config),
	}

	slog.Info("OpenRouter provider initialized",
		"base_url", config.Endpoint,
		"model", config.Model,
	)

	return p, nil
}

// chatRequest is the OpenRouter chat-completions payload.
type chatRequest struct {
	Model    string              `json:"model"`
	Messages []providers.Message `json:"messages"`
}

// chatResponse is the subset of the chat-completions response the variant
// extracts its reply from.
type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// GenerateReply sends the conversation as a chat-completions request.
func (p *Provider) GenerateReply(ctx context.Context, text, conversationID string) (string, error) {
	reqCtx, cancel := context.WithTimeout(ctx, p.GetConfig().GenerateTimeout)
	defer cancel()

	req := &chatRequest{
		Model:    p.GetConfig().Model,
		Messages: providers.BuildChatMessages(text, p.GetConfig().SystemPrompt),
	}

	var resp chatResponse
	url := p.GetConfig().Endpoint + "/chat/completions"
	if err := p.DoJSONRequest(reqCtx, http.MethodPost, url, req, &resp, p.headers()); err != nil {
		return "", err
	}

	reply, err := extractReply(&resp)
	if err != nil {
		return "", err
	}

	slog.Debug("openrouter reply generated",
		"conversation_id", conversationID,
		"model", p.GetConfig().Model,
		"reply_chars", len(reply),
	)

	return reply, nil
}

// HealthCheck probes the chat-completions endpoint with a one-word request.
func (p *Provider) HealthCheck(ctx context.Context) bool {
	req := &chatRequest{
		Model:    p.GetConfig().Model,
		Messages: []providers.Message{{Role: providers.RoleUser, Content: "ping"}},
	}
	return p.Probe(ctx, http.MethodPost, p.GetConfig().Endpoint+"/chat/completions", req, p.headers())
}

// headers builds the auth and attribution headers OpenRouter expects.
func (p *Provider) headers() map[string]string {
	cfg := p.GetConfig()
	headers := map[string]string{
		"Content-Type":  "application/json",
		"Authorization": "Bearer " + cfg.APIKey,
	}
	if cfg.SiteURL != "" {
		headers["HTTP-Referer"] = cfg.SiteURL
	}
	if cfg.SiteName != "" {
		headers["X-Title"] = cfg.SiteName
	}
	return headers
}

// extractReply pulls the reply text out of a chat-completions response.
func extractReply(resp *chatResponse) (string, error) {
	if len(resp.Choices) == 0 {
		return "", &providers.ResponseFormatError{
			Kind:    providers.KindOpenRouter,
			Message: "response contains no choices",
		}
	}
	content := resp.Choices[0].Message.Content
	if content == "" {
		return "", &providers.ResponseFormatError{
			Kind:    providers.KindOpenRouter,
			Message: fmt.Sprintf("first of %d choices has empty content", len(resp.Choices)),
		}
	}
	return content, nil
}
