package config

import "time"

// Config is the root configuration structure for Caseflow Polaris.
// It contains all configuration sections for the HTTP API, provider
// defaults, the suggestion pipeline, retrieval, persistence and telemetry.
type Config struct {
	// Server contains HTTP API server configuration including listen
	// address, timeouts and CORS.
	Server ServerConfig `yaml:"server"`

	// Providers contains the file-level defaults for each provider kind
	// plus the shared upstream timeouts. Runtime switches and POLARIS_*
	// provider variables layer on top of these (see the settings package).
	Providers ProvidersConfig `yaml:"providers"`

	// Suggest contains the suggestion pipeline tuning: retry policy,
	// health staleness and per-request deadline.
	Suggest SuggestConfig `yaml:"suggest"`

	// RAG contains the knowledge-base retrieval configuration.
	RAG RAGConfig `yaml:"rag"`

	// Settings contains the runtime settings store configuration.
	Settings SettingsConfig `yaml:"settings"`

	// Audit contains the suggestion audit trail configuration.
	Audit AuditConfig `yaml:"audit"`

	// Telemetry contains observability configuration: logging, metrics,
	// tracing and health endpoints.
	Telemetry TelemetryConfig `yaml:"telemetry"`
}

// ServerConfig contains configuration for the HTTP API server.
type ServerConfig struct {
	// ListenAddress is the address and port to listen on.
	// Format: "host:port" (e.g., "127.0.0.1:8080", "0.0.0.0:8080").
	// Default: "127.0.0.1:8080"
	ListenAddress string `yaml:"listen_address"`

	// ReadTimeout is the maximum duration for reading the entire request,
	// including the body.
	// Default: 30s
	ReadTimeout time.Duration `yaml:"read_timeout"`

	// WriteTimeout is the maximum duration before timing out writes of the
	// response. It must leave room for a worst-case suggestion request:
	// all retry attempts plus backoff sleeps.
	// Default: 120s
	WriteTimeout time.Duration `yaml:"write_timeout"`

	// IdleTimeout is the maximum amount of time to wait for the next
	// request when keep-alives are enabled.
	// Default: 120s
	IdleTimeout time.Duration `yaml:"idle_timeout"`

	// ShutdownTimeout is the maximum duration to wait for graceful
	// shutdown before in-flight requests are abandoned.
	// Default: 30s
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`

	// MaxHeaderBytes controls the maximum number of bytes the server will
	// read parsing request headers.
	// Default: 1048576 (1MB)
	MaxHeaderBytes int `yaml:"max_header_bytes"`

	// CORS contains Cross-Origin Resource Sharing configuration for the
	// agent-desk frontend.
	CORS CORSConfig `yaml:"cors"`
}

// CORSConfig contains CORS (Cross-Origin Resource Sharing) configuration.
type CORSConfig struct {
	// Enabled controls whether CORS headers are emitted.
	// Default: true
	Enabled bool `yaml:"enabled"`

	// AllowedOrigins is a list of allowed origins for CORS requests.
	// Use ["*"] to allow all origins (not recommended for production).
	// Default: ["*"]
	AllowedOrigins []string `yaml:"allowed_origins"`

	// AllowedMethods is a list of allowed HTTP methods for CORS requests.
	// Default: ["GET", "POST", "OPTIONS"]
	AllowedMethods []string `yaml:"allowed_methods"`

	// AllowedHeaders is a list of allowed HTTP headers for CORS requests.
	// Default: ["Authorization", "Content-Type", "X-Request-ID"]
	AllowedHeaders []string `yaml:"allowed_headers"`
}

// ProvidersConfig contains file-level provider defaults. Each kind section
// carries only the fields that kind understands; unused fields are ignored
// by the variant constructors.
type ProvidersConfig struct {
	// DefaultKind is the provider used when neither the settings store nor
	// the environment selects one. It is also the safe fallback constructed
	// when the preferred provider fails to initialize.
	// Default: "flowise"
	DefaultKind string `yaml:"default_kind"`

	// GenerateTimeout bounds a single reply-generation request, shared by
	// all kinds.
	// Default: 30s
	GenerateTimeout time.Duration `yaml:"generate_timeout"`

	// ProbeTimeout bounds a single health probe, shared by all kinds.
	// Default: 5s
	ProbeTimeout time.Duration `yaml:"probe_timeout"`

	// Flowise configures the Flowise chatflow variant.
	Flowise FlowiseConfig `yaml:"flowise"`

	// OpenRouter configures the OpenRouter chat-completions variant.
	OpenRouter OpenRouterConfig `yaml:"openrouter"`

	// Azure configures the Azure OpenAI deployment variant.
	Azure AzureConfig `yaml:"azure"`
}

// FlowiseConfig contains the Flowise variant defaults.
type FlowiseConfig struct {
	// Endpoint is the full prediction endpoint including the chatflow
	// identifier (e.g. "http://flowise:3000/api/v1/prediction/<flow-id>").
	Endpoint string `yaml:"endpoint"`

	// APIKey is the optional Flowise API key.
	APIKey string `yaml:"api_key"`
}

// OpenRouterConfig contains the OpenRouter variant defaults.
type OpenRouterConfig struct {
	// Endpoint overrides the OpenRouter API base URL. Empty uses the
	// public API.
	Endpoint string `yaml:"endpoint"`

	// APIKey is the OpenRouter API key.
	APIKey string `yaml:"api_key"`

	// Model is the model identifier (e.g. "openai/gpt-4o-mini").
	Model string `yaml:"model"`

	// SystemPrompt is an optional system message prepended to requests.
	SystemPrompt string `yaml:"system_prompt"`

	// SiteURL is optional attribution metadata for OpenRouter rankings.
	SiteURL string `yaml:"site_url"`

	// SiteName is optional attribution metadata for OpenRouter rankings.
	SiteName string `yaml:"site_name"`
}

// AzureConfig contains the Azure OpenAI variant defaults.
type AzureConfig struct {
	// APIKey is the Azure OpenAI API key.
	APIKey string `yaml:"api_key"`

	// DeploymentURI is the full deployment URI. The resource host must sit
	// in an allow-listed EU region.
	DeploymentURI string `yaml:"deployment_uri"`

	// SystemPrompt is an optional system message prepended to requests.
	SystemPrompt string `yaml:"system_prompt"`
}

// SuggestConfig contains the suggestion pipeline tuning.
type SuggestConfig struct {
	// MaxRetries is the total number of generate attempts per request,
	// counting the first one.
	// Default: 3
	MaxRetries int `yaml:"max_retries"`

	// BaseDelay is the sleep before the second attempt; each later sleep
	// doubles the previous one.
	// Default: 2s
	BaseDelay time.Duration `yaml:"base_delay"`

	// HealthStaleAfter is how old a provider health snapshot may be before
	// the pipeline re-probes instead of trusting the cached verdict.
	// Default: 5m
	HealthStaleAfter time.Duration `yaml:"health_stale_after"`

	// ProbeInterval is how often the background refresher evaluates
	// staleness. Zero disables background probing; health is then only
	// refreshed on the request path.
	// Default: 1m
	ProbeInterval time.Duration `yaml:"probe_interval"`

	// RequestTimeout is the overall deadline for one suggestion request,
	// covering every retry attempt and backoff sleep.
	// Default: 90s
	RequestTimeout time.Duration `yaml:"request_timeout"`
}

// RAGConfig contains the knowledge-base retrieval configuration.
type RAGConfig struct {
	// Enabled controls whether retrieval enhancement is available at all.
	// Individual requests still opt in per call.
	// Default: false
	Enabled bool `yaml:"enabled"`

	// SearchEndpoint is the knowledge-base search URL.
	SearchEndpoint string `yaml:"search_endpoint"`

	// SearchAPIKey is the optional bearer token for the search endpoint.
	SearchAPIKey string `yaml:"search_api_key"`

	// TopK is how many passages to retrieve per request.
	// Default: 4
	TopK int `yaml:"top_k"`

	// ShowSources appends a cite-sources-by-index instruction to enhanced
	// prompts.
	// Default: false
	ShowSources bool `yaml:"show_sources"`

	// SearchTimeout bounds a single search call.
	// Default: 10s
	SearchTimeout time.Duration `yaml:"search_timeout"`
}

// SettingsConfig contains the runtime settings store configuration.
type SettingsConfig struct {
	// DBPath is the SQLite file holding runtime provider settings. Empty
	// disables the store; provider switches then last only until restart.
	DBPath string `yaml:"db_path"`
}

// AuditConfig contains the suggestion audit trail configuration.
type AuditConfig struct {
	// Enabled controls whether suggestion outcomes are recorded.
	// Default: false
	Enabled bool `yaml:"enabled"`

	// DBPath is the SQLite file holding audit records.
	DBPath string `yaml:"db_path"`

	// BufferSize is the capacity of the asynchronous recording queue.
	// Records are dropped (and counted) when the queue is full rather
	// than blocking request handling.
	// Default: 256
	BufferSize int `yaml:"buffer_size"`

	// Retention controls pruning of old audit records.
	Retention RetentionConfig `yaml:"retention"`
}

// RetentionConfig controls audit record pruning.
type RetentionConfig struct {
	// Days is how long records are kept. Zero disables age-based pruning.
	// Default: 90
	Days int `yaml:"days"`

	// Schedule is the cron expression for the pruning job
	// (standard 5-field syntax).
	// Default: "0 3 * * *"
	Schedule string `yaml:"schedule"`

	// MaxRecords caps the table size; the oldest records beyond the cap
	// are pruned. Zero means no cap.
	// Default: 0
	MaxRecords int64 `yaml:"max_records"`
}

// TelemetryConfig contains observability configuration.
type TelemetryConfig struct {
	// Logging contains structured logging configuration.
	Logging LoggingConfig `yaml:"logging"`

	// Metrics contains Prometheus metrics configuration.
	Metrics MetricsConfig `yaml:"metrics"`

	// Tracing contains OpenTelemetry tracing configuration.
	Tracing TracingConfig `yaml:"tracing"`

	// Health contains health endpoint configuration.
	Health HealthConfig `yaml:"health"`
}

// LoggingConfig contains structured logging configuration.
type LoggingConfig struct {
	// Level is the minimum level to emit: debug, info, warn or error.
	// Default: "info"
	Level string `yaml:"level"`

	// Format selects the handler: "json" or "text".
	// Default: "json"
	Format string `yaml:"format"`

	// AddSource includes the source file and line in log records.
	// Default: false
	AddSource bool `yaml:"add_source"`
}

// MetricsConfig contains Prometheus metrics configuration.
type MetricsConfig struct {
	// Enabled controls whether metrics are collected and served.
	// Default: true
	Enabled bool `yaml:"enabled"`

	// Path is the HTTP path the metrics handler is mounted on.
	// Default: "/metrics"
	Path string `yaml:"path"`

	// Namespace is the Prometheus namespace prefix.
	// Default: "polaris"
	Namespace string `yaml:"namespace"`

	// Subsystem is the Prometheus subsystem prefix.
	// Default: "suggest"
	Subsystem string `yaml:"subsystem"`

	// DurationBuckets are the histogram buckets for suggestion duration
	// in seconds.
	// Default: [0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60]
	DurationBuckets []float64 `yaml:"duration_buckets"`
}

// TracingConfig contains OpenTelemetry tracing configuration.
type TracingConfig struct {
	// Enabled controls whether spans are exported. Disabled tracing uses
	// a no-op tracer with zero overhead on the request path.
	// Default: false
	Enabled bool `yaml:"enabled"`

	// Endpoint is the OTLP gRPC collector endpoint (host:port).
	Endpoint string `yaml:"endpoint"`

	// ServiceName identifies this service in exported spans.
	// Default: "polaris"
	ServiceName string `yaml:"service_name"`

	// SampleRatio is the fraction of requests to sample, 0.0 to 1.0.
	// Default: 1.0
	SampleRatio float64 `yaml:"sample_ratio"`

	// Insecure disables TLS towards the collector.
	// Default: false
	Insecure bool `yaml:"insecure"`

	// Timeout bounds the exporter's connection attempts.
	// Default: 10s
	Timeout time.Duration `yaml:"timeout"`
}

// HealthConfig contains health endpoint configuration.
type HealthConfig struct {
	// LivenessPath is where the liveness handler is mounted.
	// Default: "/healthz"
	LivenessPath string `yaml:"liveness_path"`

	// ReadinessPath is where the readiness handler is mounted.
	// Default: "/readyz"
	ReadinessPath string `yaml:"readiness_path"`

	// CheckTimeout bounds each readiness check. Checks run concurrently,
	// so it also bounds the readiness response as a whole.
	// Default: 5s
	CheckTimeout time.Duration `yaml:"check_timeout"`
}
