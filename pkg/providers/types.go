package providers

import "time"

// Provider kind constants. Kinds are matched case-insensitively by the
// factory; these are the canonical lowercase forms.
const (
	KindFlowise     = "flowise"
	KindOpenRouter  = "openrouter"
	KindAzureOpenAI = "azure"
)

// Message represents a single chat message in a provider request payload.
// Chat-completion style upstreams (OpenRouter, Azure OpenAI) consume arrays
// of these; Flowise uses a single-question payload instead.
type Message struct {
	// Role identifies the message sender (system, user, assistant)
	Role string `json:"role"`

	// Content is the message text content
	Content string `json:"content"`
}

// Message role constants
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Config contains the validated connection parameters for a single provider
// instance. It is tagged by Kind; which fields are required depends on the
// kind and is enforced by each variant's constructor before any instance is
// returned. Configs are treated as immutable after construction.
type Config struct {
	// Kind is the provider kind this config targets (flowise, openrouter, azure)
	Kind string

	// Endpoint is the upstream URL. For Flowise this is the full prediction
	// endpoint including the chatflow identifier; for OpenRouter it is the
	// API base URL (defaulted when empty). Unused by Azure OpenAI, which
	// derives its URL from DeploymentURI.
	Endpoint string

	// APIKey is the authentication secret. Required for OpenRouter and
	// Azure OpenAI; optional for Flowise instances without auth.
	APIKey string

	// Model is the model identifier sent in chat-completion payloads
	// (e.g. "openai/gpt-4o-mini"). Required for OpenRouter.
	Model string

	// SystemPrompt is an optional system message prepended to chat-style
	// payloads.
	SystemPrompt string

	// SiteURL is optional attribution metadata sent to OpenRouter in the
	// HTTP-Referer header.
	SiteURL string

	// SiteName is optional attribution metadata sent to OpenRouter in the
	// X-Title header.
	SiteName string

	// DeploymentURI is the full Azure OpenAI deployment URI from which the
	// resource name, deployment name and API version are derived. Required
	// for Azure OpenAI only.
	DeploymentURI string

	// GenerateTimeout bounds a single reply-generation request.
	// Default: 30 seconds
	GenerateTimeout time.Duration

	// ProbeTimeout bounds a single health probe request.
	// Default: 5 seconds
	ProbeTimeout time.Duration

	// MaxIdleConns is the maximum number of idle connections in the pool
	MaxIdleConns int

	// MaxIdleConnsPerHost is the maximum idle connections per host
	MaxIdleConnsPerHost int

	// IdleConnTimeout is how long an idle connection remains in the pool
	IdleConnTimeout time.Duration
}

// Timeout defaults applied by the HTTP base when a Config leaves them zero.
const (
	DefaultGenerateTimeout = 30 * time.Second
	DefaultProbeTimeout    = 5 * time.Second
)

// DefaultHealthStaleAfter is how old a health snapshot may be before the
// suggestion pipeline re-probes instead of trusting the cached verdict.
const DefaultHealthStaleAfter = 5 * time.Minute

// Capabilities describes what an upstream natively offers. The orchestrator
// consults this instead of comparing provider kind names when deciding which
// pipeline stages apply to a variant.
type Capabilities struct {
	// BuiltinRetrieval is true when the upstream performs its own document
	// retrieval (e.g. a Flowise chatflow with an attached vector store).
	// Variants reporting true are never given locally enhanced prompts.
	BuiltinRetrieval bool
}

// Health is an immutable snapshot of a provider's health state. Exactly one
// snapshot is owned per provider instance and replaced wholesale on every
// probe or recorded request outcome, so readers never observe a partially
// updated state.
type Health struct {
	// Healthy is the verdict of the most recent probe or recorded outcome
	Healthy bool

	// LastCheckedAt is when the snapshot was last replaced. A zero value
	// means the provider has never been probed.
	LastCheckedAt time.Time

	// LastError is the most recent failure, empty when healthy
	LastError string

	// ConsecutiveFailures counts sequential failed probes or requests
	ConsecutiveFailures int
}

// Stale reports whether the snapshot is older than maxAge at the given
// instant. A never-checked snapshot is always stale.
func (h Health) Stale(now time.Time, maxAge time.Duration) bool {
	if h.LastCheckedAt.IsZero() {
		return true
	}
	return now.Sub(h.LastCheckedAt) > maxAge
}
