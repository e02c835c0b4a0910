package config

import "time"

// Default values for configuration fields.
const (
	// Server defaults
	DefaultListenAddress   = "127.0.0.1:8080"
	DefaultReadTimeout     = 30 * time.Second
	DefaultWriteTimeout    = 120 * time.Second
	DefaultIdleTimeout     = 120 * time.Second
	DefaultShutdownTimeout = 30 * time.Second
	DefaultMaxHeaderBytes  = 1048576 // 1MB

	// Provider defaults
	DefaultProviderKind    = "flowise"
	DefaultGenerateTimeout = 30 * time.Second
	DefaultProbeTimeout    = 5 * time.Second

	// Suggest defaults
	DefaultMaxRetries       = 3
	DefaultBaseDelay        = 2 * time.Second
	DefaultHealthStaleAfter = 5 * time.Minute
	DefaultProbeInterval    = 1 * time.Minute
	DefaultRequestTimeout   = 90 * time.Second

	// RAG defaults
	DefaultRAGTopK          = 4
	DefaultRAGSearchTimeout = 10 * time.Second

	// Audit defaults
	DefaultAuditBufferSize     = 256
	DefaultAuditRetentionDays  = 90
	DefaultAuditPruneSchedule  = "0 3 * * *"
	DefaultAuditMaxRecords     = int64(0)

	// Telemetry defaults
	DefaultLoggingLevel       = "info"
	DefaultLoggingFormat      = "json"
	DefaultMetricsPath        = "/metrics"
	DefaultMetricsNamespace   = "polaris"
	DefaultMetricsSubsystem   = "suggest"
	DefaultTracingServiceName = "polaris"
	DefaultTracingSampleRatio = 1.0
	DefaultTracingTimeout     = 10 * time.Second
	DefaultLivenessPath       = "/healthz"
	DefaultReadinessPath      = "/readyz"
	DefaultHealthCheckTimeout = 5 * time.Second
)

// DefaultDurationBuckets returns the default suggestion latency histogram
// buckets in seconds. Upstream generation can legitimately take tens of
// seconds, so the buckets stretch far beyond typical HTTP latencies.
func DefaultDurationBuckets() []float64 {
	return []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60}
}

// Default returns a fully defaulted configuration, as if an empty file had
// been loaded. Useful for environment-only deployments without a YAML file.
func Default() *Config {
	cfg := &Config{}
	seedEnabledFlags(cfg)
	ApplyDefaults(cfg)
	return cfg
}

// seedEnabledFlags pre-sets the boolean fields whose default is true. It
// must run before YAML unmarshalling: once the file is parsed, an explicit
// `enabled: false` is indistinguishable from an absent field, so the
// default cannot be applied after the fact without clobbering it.
func seedEnabledFlags(cfg *Config) {
	cfg.Server.CORS.Enabled = true
	cfg.Telemetry.Metrics.Enabled = true
}

// ApplyDefaults applies default values to a Config struct.
// It sets defaults for any fields that have zero values.
// This function is idempotent and safe to call multiple times.
func ApplyDefaults(cfg *Config) {
	// Server defaults
	if cfg.Server.ListenAddress == "" {
		cfg.Server.ListenAddress = DefaultListenAddress
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = DefaultReadTimeout
	}
	if cfg.Server.WriteTimeout == 0 {
		cfg.Server.WriteTimeout = DefaultWriteTimeout
	}
	if cfg.Server.IdleTimeout == 0 {
		cfg.Server.IdleTimeout = DefaultIdleTimeout
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = DefaultShutdownTimeout
	}
	if cfg.Server.MaxHeaderBytes == 0 {
		cfg.Server.MaxHeaderBytes = DefaultMaxHeaderBytes
	}
	applyCORSDefaults(&cfg.Server.CORS)

	// Provider defaults
	if cfg.Providers.DefaultKind == "" {
		cfg.Providers.DefaultKind = DefaultProviderKind
	}
	if cfg.Providers.GenerateTimeout == 0 {
		cfg.Providers.GenerateTimeout = DefaultGenerateTimeout
	}
	if cfg.Providers.ProbeTimeout == 0 {
		cfg.Providers.ProbeTimeout = DefaultProbeTimeout
	}

	// Suggest defaults
	if cfg.Suggest.MaxRetries == 0 {
		cfg.Suggest.MaxRetries = DefaultMaxRetries
	}
	if cfg.Suggest.BaseDelay == 0 {
		cfg.Suggest.BaseDelay = DefaultBaseDelay
	}
	if cfg.Suggest.HealthStaleAfter == 0 {
		cfg.Suggest.HealthStaleAfter = DefaultHealthStaleAfter
	}
	if cfg.Suggest.ProbeInterval == 0 {
		cfg.Suggest.ProbeInterval = DefaultProbeInterval
	}
	if cfg.Suggest.RequestTimeout == 0 {
		cfg.Suggest.RequestTimeout = DefaultRequestTimeout
	}

	// RAG defaults
	if cfg.RAG.TopK == 0 {
		cfg.RAG.TopK = DefaultRAGTopK
	}
	if cfg.RAG.SearchTimeout == 0 {
		cfg.RAG.SearchTimeout = DefaultRAGSearchTimeout
	}

	// Audit defaults
	if cfg.Audit.BufferSize == 0 {
		cfg.Audit.BufferSize = DefaultAuditBufferSize
	}
	if cfg.Audit.Retention.Days == 0 {
		cfg.Audit.Retention.Days = DefaultAuditRetentionDays
	}
	if cfg.Audit.Retention.Schedule == "" {
		cfg.Audit.Retention.Schedule = DefaultAuditPruneSchedule
	}
	if cfg.Audit.Retention.MaxRecords == 0 {
		cfg.Audit.Retention.MaxRecords = DefaultAuditMaxRecords
	}

	// Telemetry defaults
	if cfg.Telemetry.Logging.Level == "" {
		cfg.Telemetry.Logging.Level = DefaultLoggingLevel
	}
	if cfg.Telemetry.Logging.Format == "" {
		cfg.Telemetry.Logging.Format = DefaultLoggingFormat
	}
	if cfg.Telemetry.Metrics.Path == "" {
		cfg.Telemetry.Metrics.Path = DefaultMetricsPath
	}
	if cfg.Telemetry.Metrics.Namespace == "" {
		cfg.Telemetry.Metrics.Namespace = DefaultMetricsNamespace
	}
	if cfg.Telemetry.Metrics.Subsystem == "" {
		cfg.Telemetry.Metrics.Subsystem = DefaultMetricsSubsystem
	}
	if len(cfg.Telemetry.Metrics.DurationBuckets) == 0 {
		cfg.Telemetry.Metrics.DurationBuckets = DefaultDurationBuckets()
	}
	if cfg.Telemetry.Tracing.ServiceName == "" {
		cfg.Telemetry.Tracing.ServiceName = DefaultTracingServiceName
	}
	if cfg.Telemetry.Tracing.SampleRatio == 0 {
		cfg.Telemetry.Tracing.SampleRatio = DefaultTracingSampleRatio
	}
	if cfg.Telemetry.Tracing.Timeout == 0 {
		cfg.Telemetry.Tracing.Timeout = DefaultTracingTimeout
	}
	if cfg.Telemetry.Health.LivenessPath == "" {
		cfg.Telemetry.Health.LivenessPath = DefaultLivenessPath
	}
	if cfg.Telemetry.Health.ReadinessPath == "" {
		cfg.Telemetry.Health.ReadinessPath = DefaultReadinessPath
	}
	if cfg.Telemetry.Health.CheckTimeout == 0 {
		cfg.Telemetry.Health.CheckTimeout = DefaultHealthCheckTimeout
	}
}

// applyCORSDefaults applies default values to CORS configuration.
// The Enabled flag is seeded by seedEnabledFlags before unmarshalling.
func applyCORSDefaults(cors *CORSConfig) {
	if len(cors.AllowedOrigins) == 0 {
		cors.AllowedOrigins = []string{"*"}
	}
	if len(cors.AllowedMethods) == 0 {
		cors.AllowedMethods = []string{"GET", "POST", "OPTIONS"}
	}
	if len(cors.AllowedHeaders) == 0 {
		cors.AllowedHeaders = []string{"Authorization", "Content-Type", "X-Request-ID"}
	}
}
