package providers

import (
	"context"
	"sync"
	"time"

	"caseflow-hq/polaris/pkg/providers"
)

// MockProvider is a scriptable implementation of the Provider interface for
// testing the registry and the suggestion pipeline without real upstreams.
//
// Replies are consumed in order; the last one repeats once the queue is
// exhausted. Setting ReplyErr makes every GenerateReply call fail with it.
type MockProvider struct {
	mu sync.Mutex

	kind string
	caps providers.Capabilities

	// Replies is the queue of reply texts returned by GenerateReply.
	Replies []string
	// ReplyErrs is a per-call error queue consumed before ReplyErr. A nil
	// entry makes that call succeed with the next reply, so sequences
	// like fail-fail-succeed are scriptable.
	ReplyErrs []error
	// ReplyErr, when set, is returned by every GenerateReply call.
	ReplyErr error
	// ProbeResult is the verdict returned by HealthCheck.
	ProbeResult bool

	health providers.Health

	generateCalls int
	healthCalls   int
	lastText      string
	lastConvID    string
	closed        bool
}

// NewMockProvider creates a healthy mock provider of the given kind that
// answers every generate call with reply.
func NewMockProvider(kind, reply string) *MockProvider {
	return &MockProvider{
		kind:        kind,
		Replies:     []string{reply},
		ProbeResult: true,
		health: providers.Health{
			Healthy:       true,
			LastCheckedAt: time.Now(),
		},
	}
}

// WithBuiltinRetrieval marks the mock as performing its own retrieval.
func (m *MockProvider) WithBuiltinRetrieval() *MockProvider {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.caps.BuiltinRetrieval = true
	return m
}

// SetHealth replaces the health snapshot, letting tests control staleness.
func (m *MockProvider) SetHealth(h providers.Health) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.health = h
}

// GenerateReply returns the next scripted reply or the scripted error.
func (m *MockProvider) GenerateReply(ctx context.Context, text, conversationID string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.generateCalls++
	m.lastText = text
	m.lastConvID = conversationID

	if len(m.ReplyErrs) > 0 {
		err := m.ReplyErrs[0]
		m.ReplyErrs = m.ReplyErrs[1:]
		if err != nil {
			return "", err
		}
	} else if m.ReplyErr != nil {
		return "", m.ReplyErr
	}
	if len(m.Replies) == 0 {
		return "", nil
	}

	reply := m.Replies[0]
	if len(m.Replies) > 1 {
		m.Replies = m.Replies[1:]
	}
	return reply, nil
}

// HealthCheck returns the scripted probe verdict and refreshes the snapshot
// timestamp the way real variants do.
func (m *MockProvider) HealthCheck(ctx context.Context) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.healthCalls++
	m.health.Healthy = m.ProbeResult
	m.health.LastCheckedAt = time.Now()
	if m.ProbeResult {
		m.health.LastError = ""
		m.health.ConsecutiveFailures = 0
	} else {
		m.health.LastError = "probe failed"
		m.health.ConsecutiveFailures++
	}
	return m.ProbeResult
}

// GetKind returns the mock's provider kind.
func (m *MockProvider) GetKind() string {
	return m.kind
}

// GetConfig returns an empty configuration.
func (m *MockProvider) GetConfig() providers.Config {
	return providers.Config{Kind: m.kind}
}

// GetCapabilities returns the scripted capabilities.
func (m *MockProvider) GetCapabilities() providers.Capabilities {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.caps
}

// IsHealthy returns the snapshot verdict.
func (m *MockProvider) IsHealthy() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.health.Healthy
}

// GetHealth returns the health snapshot.
func (m *MockProvider) GetHealth() providers.Health {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.health
}

// MarkHealthy records a successful request outcome.
func (m *MockProvider) MarkHealthy() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.health = providers.Health{
		Healthy:       true,
		LastCheckedAt: time.Now(),
	}
}

// MarkUnhealthy records a definitive failure.
func (m *MockProvider) MarkUnhealthy(reason error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.health.Healthy = false
	m.health.LastCheckedAt = time.Now()
	m.health.ConsecutiveFailures++
	if reason != nil {
		m.health.LastError = reason.Error()
	}
}

// Close marks the mock closed.
func (m *MockProvider) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

// GenerateCalls returns how many generate calls the mock has served.
func (m *MockProvider) GenerateCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.generateCalls
}

// HealthCalls returns how many probes the mock has served.
func (m *MockProvider) HealthCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.healthCalls
}

// LastText returns the text of the most recent generate call.
func (m *MockProvider) LastText() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastText
}

// LastConversationID returns the conversation id of the most recent call.
func (m *MockProvider) LastConversationID() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastConvID
}

// Closed reports whether Close has been called.
func (m *MockProvider) Closed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}
