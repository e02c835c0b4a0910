// Package azureopenai implements the provider variant for Azure OpenAI
// chat-completion deployments.
//
// Azure OpenAI is configured with a single deployment URI from which the
// variant derives the resource host, deployment name and API version. The
// resource host must sit in an allow-listed EU region; construction fails
// otherwise so that no request can ever leave the approved data boundary.
package azureopenai

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"strings"

	"caseflow-hq/polaris/pkg/providers"
)

// DefaultAPIVersion is used when the deployment URI carries no api-version
// query parameter.
const DefaultAPIVersion = "2024-06-01"

// euRegions is the allow-list of Azure regions inside the EU data boundary.
// A deployment URI whose host contains none of these is rejected at
// construction.
var euRegions = []string{
	"westeurope",
	"northeurope",
	"francecentral",
	"francesouth",
	"germanywestcentral",
	"germanynorth",
	"swedencentral",
	"polandcentral",
	"italynorth",
	"spaincentral",
}

// deployment holds the pieces parsed out of a deployment URI.
type deployment struct {
	// scheme and resourceHost come straight from the URI; the scheme is
	// preserved so local gateways can be addressed over plain HTTP.
	scheme       string
	resourceHost string
	name         string
	apiVersion   string
}

// Provider is the Azure OpenAI provider variant.
// It implements the providers.Provider interface against a single
// chat-completion deployment of an EU-hosted Azure OpenAI resource.
type Provider struct {
	*providers.HTTPProvider

	dep deployment
}

// NewProvider creates a new Azure OpenAI provider instance.
// APIKey and DeploymentURI are required. The deployment URI must parse into
// a resource host and deployment name, and the host must contain one of the
// allow-listed EU region identifiers. Loopback hosts are exempt from the
// region check for local development.
func NewProvider(config providers.Config) (*Provider, error) {
	if config.APIKey == "" {
		return nil, &providers.ConfigurationError{
			Kind:    providers.KindAzureOpenAI,
			Field:   "api_key",
			Message: "API key is required for Azure OpenAI",
		}
	}
	if config.DeploymentURI == "" {
		return nil, &providers.ConfigurationError{
			Kind:    providers.KindAzureOpenAI,
			Field:   "deployment_uri",
			Message: "deployment URI is required for Azure OpenAI",
		}
	}

	dep, err := parseDeploymentURI(config.DeploymentURI)
	if err != nil {
		return nil, err
	}

	if config.MaxIdleConns == 0 {
		config.MaxIdleConns = 100
	}
	if config.MaxIdleConnsPerHost == 0 {
		config.MaxIdleConnsPerHost = 10
	}

	config.Kind = providers.KindAzureOpenAI

	p := &Provider{
		HTTPProvider: providers.NewHTTPProvider(providers.KindAzureOpenAI,
			providers.Capabilities{BuiltinRetrieval: false}, config),
		dep: dep,
	}

	slog.Info("Azure OpenAI provider initialized",
		"resource", dep.resourceHost,
		"deployment", dep.name,
		"api_version", dep.apiVersion,
	)

	return p, nil
}

// parseDeploymentURI splits a deployment URI into resource host, deployment
// name and API version, and enforces the EU region allow-list on the host.
func parseDeploymentURI(raw string) (deployment, error) {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return deployment{}, &providers.ConfigurationError{
			Kind:    providers.KindAzureOpenAI,
			Field:   "deployment_uri",
			Message: fmt.Sprintf("deployment URI %q is not a valid http(s) URL", raw),
		}
	}

	name := deploymentName(u.Path)
	if name == "" {
		return deployment{}, &providers.ConfigurationError{
			Kind:    providers.KindAzureOpenAI,
			Field:   "deployment_uri",
			Message: "deployment URI must contain an /openai/deployments/{name} path segment",
		}
	}

	if !allowedRegion(u.Host) {
		return deployment{}, &providers.ConfigurationError{
			Kind:    providers.KindAzureOpenAI,
			Field:   "deployment_uri",
			Message: fmt.Sprintf("resource host %q is not in an allow-listed EU region", u.Host),
		}
	}

	version := u.Query().Get("api-version")
	if version == "" {
		version = DefaultAPIVersion
	}

	return deployment{
		scheme:       u.Scheme,
		resourceHost: u.Host,
		name:         name,
		apiVersion:   version,
	}, nil
}

// deploymentName extracts the segment following "deployments" from a URI
// path, or "" when the path has no such segment.
func deploymentName(path string) string {
	segments := strings.Split(strings.Trim(path, "/"), "/")
	for i, seg := range segments {
		if seg == "deployments" && i+1 < len(segments) && segments[i+1] != "" {
			return segments[i+1]
		}
	}
	return ""
}

// allowedRegion reports whether host contains an allow-listed EU region.
// Loopback hosts pass unconditionally so local mock deployments work.
func allowedRegion(host string) bool {
	hostname := host
	if h, _, err := net.SplitHostPort(host); err == nil {
		hostname = h
	}
	if hostname == "localhost" {
		return true
	}
	if ip := net.ParseIP(hostname); ip != nil && ip.IsLoopback() {
		return true
	}

	lower := strings.ToLower(hostname)
	for _, region := range euRegions {
		if strings.Contains(lower, region) {
			return true
		}
	}
	return false
}

// chatRequest is the Azure OpenAI chat-completion payload. The model is
// implied by the deployment, so only messages are sent.
type chatRequest struct {
	Messages []providers.Message `json:"messages"`
}

// chatResponse is the subset of the chat-completion response the variant
// extracts its reply from.
type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// GenerateReply sends the conversation as a chat-completion request to the
// configured deployment.
func (p *Provider) GenerateReply(ctx context.Context, text, conversationID string) (string, error) {
	reqCtx, cancel := context.WithTimeout(ctx, p.GetConfig().GenerateTimeout)
	defer cancel()

	req := &chatRequest{
		Messages: providers.BuildChatMessages(text, p.GetConfig().SystemPrompt),
	}

	var resp chatResponse
	if err := p.DoJSONRequest(reqCtx, http.MethodPost, p.completionsURL(), req, &resp, p.headers()); err != nil {
		return "", err
	}

	reply, err := extractReply(&resp)
	if err != nil {
		return "", err
	}

	slog.Debug("azure openai reply generated",
		"conversation_id", conversationID,
		"deployment", p.dep.name,
		"reply_chars", len(reply),
	)

	return reply, nil
}

// HealthCheck probes the deployment with a one-word request.
func (p *Provider) HealthCheck(ctx context.Context) bool {
	req := &chatRequest{
		Messages: []providers.Message{{Role: providers.RoleUser, Content: "ping"}},
	}
	return p.Probe(ctx, http.MethodPost, p.completionsURL(), req, p.headers())
}

// completionsURL builds the chat-completion URL for the parsed deployment.
func (p *Provider) completionsURL() string {
	return fmt.Sprintf("%s://%s/openai/deployments/%s/chat/completions?api-version=%s",
		p.dep.scheme, p.dep.resourceHost, url.PathEscape(p.dep.name), url.QueryEscape(p.dep.apiVersion))
}

// headers builds the api-key auth header Azure OpenAI expects.
func (p *Provider) headers() map[string]string {
	return map[string]string{
		"Content-Type": "application/json",
		"api-key":      p.GetConfig().APIKey,
	}
}

// extractReply pulls the reply text out of a chat-completion response.
func extractReply(resp *chatResponse) (string, error) {
	if len(resp.Choices) == 0 {
		return "", &providers.ResponseFormatError{
			Kind:    providers.KindAzureOpenAI,
			Message: "response contains no choices",
		}
	}
	content := resp.Choices[0].Message.Content
	if content == "" {
		return "", &providers.ResponseFormatError{
			Kind:    providers.KindAzureOpenAI,
			Message: fmt.Sprintf("first of %d choices has empty content", len(resp.Choices)),
		}
	}
	return content, nil
}
