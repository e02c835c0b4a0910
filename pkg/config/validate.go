package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
)

// FieldError represents a validation error for a specific configuration field.
type FieldError struct {
	// Field is the dotted path to the configuration field (e.g., "server.listen_address").
	Field string

	// Message is a human-readable error message.
	Message string
}

// Error returns the error message for this field error.
func (e FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationError represents one or more validation errors in a configuration.
// It implements the error interface and provides access to all field errors.
type ValidationError struct {
	// Errors contains all validation errors found in the configuration.
	Errors []FieldError
}

// Error returns a formatted string containing all validation errors.
func (e ValidationError) Error() string {
	if len(e.Errors) == 0 {
		return "configuration validation failed"
	}
	if len(e.Errors) == 1 {
		return fmt.Sprintf("configuration validation failed: %s", e.Errors[0].Error())
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("configuration validation failed with %d errors:\n", len(e.Errors)))
	for _, err := range e.Errors {
		sb.WriteString(fmt.Sprintf("  - %s\n", err.Error()))
	}
	return sb.String()
}

// validKinds are the provider kinds accepted for default_kind, including the
// aliases the factory normalizes.
var validKinds = map[string]bool{
	"flowise":      true,
	"openrouter":   true,
	"azure":        true,
	"azureopenai":  true,
	"azure-openai": true,
	"azure_openai": true,
}

// Validate validates the entire configuration and returns a ValidationError
// if any validation rules fail. It returns nil if the configuration is valid.
// All validation errors are collected and returned together.
func Validate(cfg *Config) error {
	var errs []FieldError

	// Validate server configuration
	errs = append(errs, validateServer(&cfg.Server)...)

	// Validate provider defaults
	errs = append(errs, validateProviders(&cfg.Providers)...)

	// Validate suggestion pipeline configuration
	errs = append(errs, validateSuggest(&cfg.Suggest)...)

	// Validate retrieval configuration
	errs = append(errs, validateRAG(&cfg.RAG)...)

	// Validate audit configuration
	errs = append(errs, validateAudit(&cfg.Audit)...)

	// Validate telemetry configuration
	errs = append(errs, validateTelemetry(&cfg.Telemetry)...)

	if len(errs) > 0 {
		return ValidationError{Errors: errs}
	}

	return nil
}

// validateServer validates server configuration.
func validateServer(cfg *ServerConfig) []FieldError {
	var errs []FieldError

	// Validate listen address is not empty
	if cfg.ListenAddress == "" {
		errs = append(errs, FieldError{
			Field:   "server.listen_address",
			Message: "listen address is required",
		})
	}

	// Validate timeouts are positive
	if cfg.ReadTimeout < 0 {
		errs = append(errs, FieldError{
			Field:   "server.read_timeout",
			Message: "read timeout must be positive",
		})
	}
	if cfg.WriteTimeout < 0 {
		errs = append(errs, FieldError{
			Field:   "server.write_timeout",
			Message: "write timeout must be positive",
		})
	}
	if cfg.IdleTimeout < 0 {
		errs = append(errs, FieldError{
			Field:   "server.idle_timeout",
			Message: "idle timeout must be positive",
		})
	}
	if cfg.ShutdownTimeout < 0 {
		errs = append(errs, FieldError{
			Field:   "server.shutdown_timeout",
			Message: "shutdown timeout must be positive",
		})
	}

	// Validate max header bytes is reasonable
	if cfg.MaxHeaderBytes < 0 {
		errs = append(errs, FieldError{
			Field:   "server.max_header_bytes",
			Message: "max header bytes must be non-negative",
		})
	}
	if cfg.MaxHeaderBytes > 10*1024*1024 { // 10MB is excessive
		errs = append(errs, FieldError{
			Field:   "server.max_header_bytes",
			Message: "max header bytes exceeds reasonable limit (10MB)",
		})
	}

	// Validate CORS configuration
	if cfg.CORS.Enabled {
		if len(cfg.CORS.AllowedOrigins) == 0 {
			errs = append(errs, FieldError{
				Field:   "server.cors.allowed_origins",
				Message: "at least one allowed origin is required when CORS is enabled",
			})
		}
		if len(cfg.CORS.AllowedMethods) == 0 {
			errs = append(errs, FieldError{
				Field:   "server.cors.allowed_methods",
				Message: "at least one allowed method is required when CORS is enabled",
			})
		}
	}

	return errs
}

// validateProviders validates the file-level provider defaults. Credentials
// may legitimately be empty here: the environment or the settings store can
// supply them later, and variant construction reports what is still missing.
func validateProviders(cfg *ProvidersConfig) []FieldError {
	var errs []FieldError

	// Validate default kind
	if cfg.DefaultKind == "" {
		errs = append(errs, FieldError{
			Field:   "providers.default_kind",
			Message: "default kind is required",
		})
	} else if !validKinds[strings.ToLower(strings.TrimSpace(cfg.DefaultKind))] {
		errs = append(errs, FieldError{
			Field:   "providers.default_kind",
			Message: fmt.Sprintf("unknown provider kind %q: must be 'flowise', 'openrouter', or 'azure'", cfg.DefaultKind),
		})
	}

	// Validate shared timeouts
	if cfg.GenerateTimeout < 0 {
		errs = append(errs, FieldError{
			Field:   "providers.generate_timeout",
			Message: "generate timeout must be positive",
		})
	}
	if cfg.ProbeTimeout < 0 {
		errs = append(errs, FieldError{
			Field:   "providers.probe_timeout",
			Message: "probe timeout must be positive",
		})
	}

	// Validate endpoint URLs when present
	if cfg.Flowise.Endpoint != "" {
		if err := validateURL(cfg.Flowise.Endpoint); err != nil {
			errs = append(errs, FieldError{
				Field:   "providers.flowise.endpoint",
				Message: err.Error(),
			})
		}
	}
	if cfg.OpenRouter.Endpoint != "" {
		if err := validateURL(cfg.OpenRouter.Endpoint); err != nil {
			errs = append(errs, FieldError{
				Field:   "providers.openrouter.endpoint",
				Message: err.Error(),
			})
		}
	}
	if cfg.Azure.DeploymentURI != "" {
		if err := validateURL(cfg.Azure.DeploymentURI); err != nil {
			errs = append(errs, FieldError{
				Field:   "providers.azure.deployment_uri",
				Message: err.Error(),
			})
		}
	}

	return errs
}

// validateURL checks that a string parses as an absolute http or https URL.
func validateURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("invalid URL format: %v", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("invalid URL scheme %q: must be http or https", u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("URL %q has no host", raw)
	}
	return nil
}

// validateSuggest validates suggestion pipeline configuration.
func validateSuggest(cfg *SuggestConfig) []FieldError {
	var errs []FieldError

	if cfg.MaxRetries < 1 {
		errs = append(errs, FieldError{
			Field:   "suggest.max_retries",
			Message: "max retries must be at least 1 (the first attempt counts)",
		})
	}
	if cfg.MaxRetries > 10 {
		errs = append(errs, FieldError{
			Field:   "suggest.max_retries",
			Message: "max retries exceeds reasonable limit (10)",
		})
	}
	if cfg.BaseDelay < 0 {
		errs = append(errs, FieldError{
			Field:   "suggest.base_delay",
			Message: "base delay must be non-negative",
		})
	}
	if cfg.HealthStaleAfter <= 0 {
		errs = append(errs, FieldError{
			Field:   "suggest.health_stale_after",
			Message: "health stale after must be positive",
		})
	}
	if cfg.ProbeInterval < 0 {
		errs = append(errs, FieldError{
			Field:   "suggest.probe_interval",
			Message: "probe interval must be non-negative (zero disables background probing)",
		})
	}
	if cfg.RequestTimeout <= 0 {
		errs = append(errs, FieldError{
			Field:   "suggest.request_timeout",
			Message: "request timeout must be positive",
		})
	}

	return errs
}

// validateRAG validates retrieval configuration.
func validateRAG(cfg *RAGConfig) []FieldError {
	var errs []FieldError

	// If retrieval is disabled, skip validation
	if !cfg.Enabled {
		return errs
	}

	if cfg.SearchEndpoint == "" {
		errs = append(errs, FieldError{
			Field:   "rag.search_endpoint",
			Message: "search endpoint is required when rag is enabled",
		})
	} else if err := validateURL(cfg.SearchEndpoint); err != nil {
		errs = append(errs, FieldError{
			Field:   "rag.search_endpoint",
			Message: err.Error(),
		})
	}

	if cfg.TopK < 1 {
		errs = append(errs, FieldError{
			Field:   "rag.top_k",
			Message: "top k must be at least 1",
		})
	}
	if cfg.TopK > 50 {
		errs = append(errs, FieldError{
			Field:   "rag.top_k",
			Message: "top k exceeds reasonable limit (50)",
		})
	}
	if cfg.SearchTimeout <= 0 {
		errs = append(errs, FieldError{
			Field:   "rag.search_timeout",
			Message: "search timeout must be positive",
		})
	}

	return errs
}

// validateAudit validates audit trail configuration.
func validateAudit(cfg *AuditConfig) []FieldError {
	var errs []FieldError

	// If the audit trail is disabled, skip validation
	if !cfg.Enabled {
		return errs
	}

	if cfg.DBPath == "" {
		errs = append(errs, FieldError{
			Field:   "audit.db_path",
			Message: "db path is required when audit is enabled",
		})
	}
	if cfg.BufferSize < 1 {
		errs = append(errs, FieldError{
			Field:   "audit.buffer_size",
			Message: "buffer size must be at least 1",
		})
	}

	// Validate retention
	if cfg.Retention.Days < 0 {
		errs = append(errs, FieldError{
			Field:   "audit.retention.days",
			Message: "retention days must be non-negative",
		})
	}
	if cfg.Retention.Days > 3650 { // 10 years is excessive
		errs = append(errs, FieldError{
			Field:   "audit.retention.days",
			Message: "retention days exceeds reasonable limit (3650 days / 10 years)",
		})
	}
	if cfg.Retention.MaxRecords < 0 {
		errs = append(errs, FieldError{
			Field:   "audit.retention.max_records",
			Message: "max records must be non-negative",
		})
	}
	if cfg.Retention.Schedule != "" {
		if _, err := cron.ParseStandard(cfg.Retention.Schedule); err != nil {
			errs = append(errs, FieldError{
				Field:   "audit.retention.schedule",
				Message: fmt.Sprintf("invalid cron expression: %v", err),
			})
		}
	}

	return errs
}

// validateTelemetry validates telemetry configuration.
func validateTelemetry(cfg *TelemetryConfig) []FieldError {
	var errs []FieldError

	// Validate logging level
	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if cfg.Logging.Level == "" {
		errs = append(errs, FieldError{
			Field:   "telemetry.logging.level",
			Message: "logging level is required",
		})
	} else if !validLevels[cfg.Logging.Level] {
		errs = append(errs, FieldError{
			Field:   "telemetry.logging.level",
			Message: fmt.Sprintf("invalid logging level %q: must be 'debug', 'info', 'warn', or 'error'", cfg.Logging.Level),
		})
	}

	// Validate logging format
	validFormats := map[string]bool{"json": true, "text": true}
	if cfg.Logging.Format == "" {
		errs = append(errs, FieldError{
			Field:   "telemetry.logging.format",
			Message: "logging format is required",
		})
	} else if !validFormats[cfg.Logging.Format] {
		errs = append(errs, FieldError{
			Field:   "telemetry.logging.format",
			Message: fmt.Sprintf("invalid logging format %q: must be 'json' or 'text'", cfg.Logging.Format),
		})
	}

	// Validate metrics configuration
	if cfg.Metrics.Enabled {
		if cfg.Metrics.Path == "" {
			errs = append(errs, FieldError{
				Field:   "telemetry.metrics.path",
				Message: "metrics path is required when metrics are enabled",
			})
		} else if cfg.Metrics.Path[0] != '/' {
			errs = append(errs, FieldError{
				Field:   "telemetry.metrics.path",
				Message: "metrics path must start with /",
			})
		}
	}
	for i := 1; i < len(cfg.Metrics.DurationBuckets); i++ {
		if cfg.Metrics.DurationBuckets[i] <= cfg.Metrics.DurationBuckets[i-1] {
			errs = append(errs, FieldError{
				Field:   "telemetry.metrics.duration_buckets",
				Message: "duration buckets must be strictly increasing",
			})
			break
		}
	}

	// Validate tracing configuration
	if cfg.Tracing.Enabled && cfg.Tracing.Endpoint == "" {
		errs = append(errs, FieldError{
			Field:   "telemetry.tracing.endpoint",
			Message: "tracing endpoint is required when tracing is enabled",
		})
	}
	if cfg.Tracing.Enabled && cfg.Tracing.ServiceName == "" {
		errs = append(errs, FieldError{
			Field:   "telemetry.tracing.service_name",
			Message: "service name is required when tracing is enabled",
		})
	}
	if cfg.Tracing.SampleRatio < 0 || cfg.Tracing.SampleRatio > 1.0 {
		errs = append(errs, FieldError{
			Field:   "telemetry.tracing.sample_ratio",
			Message: "sample ratio must be between 0.0 and 1.0",
		})
	}
	if cfg.Tracing.Timeout < 0 {
		errs = append(errs, FieldError{
			Field:   "telemetry.tracing.timeout",
			Message: "timeout must be positive",
		})
	}

	// Validate health endpoint configuration
	if cfg.Health.LivenessPath == "" {
		errs = append(errs, FieldError{
			Field:   "telemetry.health.liveness_path",
			Message: "liveness path is required",
		})
	} else if cfg.Health.LivenessPath[0] != '/' {
		errs = append(errs, FieldError{
			Field:   "telemetry.health.liveness_path",
			Message: "liveness path must start with /",
		})
	}
	if cfg.Health.ReadinessPath == "" {
		errs = append(errs, FieldError{
			Field:   "telemetry.health.readiness_path",
			Message: "readiness path is required",
		})
	} else if cfg.Health.ReadinessPath[0] != '/' {
		errs = append(errs, FieldError{
			Field:   "telemetry.health.readiness_path",
			Message: "readiness path must start with /",
		})
	}
	if cfg.Health.CheckTimeout < 0 {
		errs = append(errs, FieldError{
			Field:   "telemetry.health.check_timeout",
			Message: "check timeout must be positive",
		})
	}
	if cfg.Health.CheckTimeout > 60*time.Second {
		errs = append(errs, FieldError{
			Field:   "telemetry.health.check_timeout",
			Message: "check timeout exceeds reasonable limit (60s)",
		})
	}

	return errs
}
