package providers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync/atomic"
	"time"
)

// maxErrorBodyBytes caps how much of an upstream error body is kept on a
// NetworkError after redaction.
const maxErrorBodyBytes = 2048

// HTTPProvider is the base implementation for HTTP-based provider variants.
// It provides connection pooling, timeout handling, secret redaction and
// atomic health-state tracking.
//
// Concrete variants (Flowise, OpenRouter, Azure OpenAI) embed this struct
// and implement the Provider interface methods on top of it.
//
// HTTPProvider performs exactly one network attempt per call; retry policy
// belongs to the caller (see the retry package), which keeps attempts
// observable and strictly sequential.
type HTTPProvider struct {
	// kind is the canonical provider kind
	kind string

	// caps describes what the upstream natively offers
	caps Capabilities

	// config contains the provider configuration with timeouts resolved
	config Config

	// client is the HTTP client with connection pooling
	client *http.Client

	// health holds the current health snapshot, replaced wholesale on
	// every update so readers never lock
	health atomic.Pointer[Health]

	logger *slog.Logger
}

// NewHTTPProvider creates the shared HTTP base for a provider variant.
// Zero timeouts in the config are resolved to the package defaults.
func NewHTTPProvider(kind string, caps Capabilities, config Config) *HTTPProvider {
	if config.GenerateTimeout == 0 {
		config.GenerateTimeout = DefaultGenerateTimeout
	}
	if config.ProbeTimeout == 0 {
		config.ProbeTimeout = DefaultProbeTimeout
	}

	transport := &http.Transport{
		MaxIdleConns:        config.MaxIdleConns,
		MaxIdleConnsPerHost: config.MaxIdleConnsPerHost,
		IdleConnTimeout:     config.IdleConnTimeout,
		DisableCompression:  false,
		ForceAttemptHTTP2:   true,
	}

	p := &HTTPProvider{
		kind:   kind,
		caps:   caps,
		config: config,
		client: &http.Client{Transport: transport},
		logger: slog.Default().With("component", "providers", "kind", kind),
	}

	// Start optimistic with a zero check timestamp: the first health gate
	// sees a stale snapshot and probes before trusting it.
	p.health.Store(&Health{Healthy: true})

	return p
}

// GetKind returns the provider's canonical kind.
func (p *HTTPProvider) GetKind() string {
	return p.kind
}

// GetConfig returns the provider's configuration with timeouts resolved.
func (p *HTTPProvider) GetConfig() Config {
	return p.config
}

// GetCapabilities returns the upstream's native capability set.
func (p *HTTPProvider) GetCapabilities() Capabilities {
	return p.caps
}

// IsHealthy returns the current cached health verdict.
func (p *HTTPProvider) IsHealthy() bool {
	return p.health.Load().Healthy
}

// GetHealth returns the current health snapshot.
func (p *HTTPProvider) GetHealth() Health {
	return *p.health.Load()
}

// MarkHealthy records a successful real request, resetting failure counters
// and refreshing the check timestamp.
func (p *HTTPProvider) MarkHealthy() {
	p.updateHealth(true, nil)
}

// MarkUnhealthy records a definitive failure against the provider. The
// snapshot timestamp is refreshed, so the unhealthy verdict stands until the
// staleness window elapses and a fresh probe runs.
func (p *HTTPProvider) MarkUnhealthy(reason error) {
	p.updateHealth(false, reason)
}

// updateHealth replaces the health snapshot via compare-and-swap so that
// concurrent updates never lose a failure count.
func (p *HTTPProvider) updateHealth(success bool, err error) {
	for {
		old := p.health.Load()
		next := &Health{LastCheckedAt: time.Now()}

		if success {
			next.Healthy = true
		} else {
			next.ConsecutiveFailures = old.ConsecutiveFailures + 1
			if err != nil {
				next.LastError = err.Error()
			}
		}

		if p.health.CompareAndSwap(old, next) {
			if !success {
				p.logger.Warn("provider health check failed",
					"consecutive_failures", next.ConsecutiveFailures,
					"error", next.LastError,
				)
			}
			return
		}
	}
}

// Probe performs a single request under the probe timeout and records the
// outcome in the health snapshot. It returns the resulting verdict and never
// an error; this is the primitive each variant's HealthCheck builds on.
func (p *HTTPProvider) Probe(ctx context.Context, method, url string, reqBody interface{}, headers map[string]string) bool {
	probeCtx, cancel := context.WithTimeout(ctx, p.config.ProbeTimeout)
	defer cancel()

	err := p.DoJSONRequest(probeCtx, method, url, reqBody, nil, headers)
	p.updateHealth(err == nil, err)
	return err == nil
}

// DoJSONRequest performs a single JSON request attempt and decodes the
// response into respBody (which may be nil to discard the payload).
//
// Non-2xx statuses yield a NetworkError carrying a redacted body excerpt;
// transport failures and timeouts yield a NetworkError with status 0;
// undecodable response payloads yield a ResponseFormatError.
func (p *HTTPProvider) DoJSONRequest(ctx context.Context, method, url string, reqBody, respBody interface{}, headers map[string]string) error {
	var bodyReader io.Reader
	if reqBody != nil {
		bodyBytes, err := json.Marshal(reqBody)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		bodyReader = bytes.NewReader(bodyBytes)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, bodyReader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	for key, value := range headers {
		req.Header.Set(key, value)
	}
	if req.Header.Get("Content-Type") == "" && reqBody != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	p.logger.Debug("sending request to provider", "method", method, "url", url)

	resp, err := p.client.Do(req)
	if err != nil {
		return &NetworkError{
			Kind:  p.kind,
			Cause: err,
		}
	}
	defer resp.Body.Close()

	responseBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return &NetworkError{
			Kind:  p.kind,
			Cause: fmt.Errorf("failed to read response: %w", err),
		}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &NetworkError{
			Kind:       p.kind,
			StatusCode: resp.StatusCode,
			Body:       p.RedactSecrets(truncate(string(responseBytes), maxErrorBodyBytes)),
		}
	}

	if respBody != nil && len(responseBytes) > 0 {
		if err := json.Unmarshal(responseBytes, respBody); err != nil {
			return &ResponseFormatError{
				Kind:    p.kind,
				Message: "failed to unmarshal response",
				Cause:   err,
			}
		}
	}

	return nil
}

// RedactSecrets removes the provider's configured secrets from s. Upstream
// error bodies occasionally echo auth material back; everything that can end
// up in an error, a log line or an audit record passes through here first.
func (p *HTTPProvider) RedactSecrets(s string) string {
	return RedactSecrets(s, p.config.APIKey)
}

// Close releases pooled connections.
func (p *HTTPProvider) Close() error {
	p.client.CloseIdleConnections()
	p.logger.Debug("provider closed")
	return nil
}
