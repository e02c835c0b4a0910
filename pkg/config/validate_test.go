package config

import (
	"strings"
	"testing"
	"time"
)

func TestValidate_ValidConfig(t *testing.T) {
	cfg := Default()

	err := Validate(cfg)
	if err != nil {
		t.Errorf("expected valid config to pass validation, got error: %v", err)
	}
}

func TestValidate_MultipleErrors(t *testing.T) {
	cfg := &Config{
		// Empty listen address, empty default kind, empty logging
		// level and format all fail at once.
		Suggest: SuggestConfig{
			MaxRetries:       DefaultMaxRetries,
			HealthStaleAfter: DefaultHealthStaleAfter,
			RequestTimeout:   DefaultRequestTimeout,
		},
	}

	err := Validate(cfg)
	if err == nil {
		t.Fatal("expected validation to fail")
	}

	validationErr, ok := err.(ValidationError)
	if !ok {
		t.Fatalf("expected ValidationError, got %T", err)
	}

	if len(validationErr.Errors) < 2 {
		t.Errorf("expected multiple errors, got %d", len(validationErr.Errors))
	}

	// Verify error message includes multiple errors
	errMsg := validationErr.Error()
	if !strings.Contains(errMsg, "validation failed with") {
		t.Errorf("error message should mention multiple errors: %s", errMsg)
	}
}

func TestValidate_ServerConfig(t *testing.T) {
	tests := []struct {
		name       string
		server     ServerConfig
		wantError  bool
		errorField string
	}{
		{
			name: "valid server config",
			server: ServerConfig{
				ListenAddress:  "127.0.0.1:8080",
				ReadTimeout:    DefaultReadTimeout,
				WriteTimeout:   DefaultWriteTimeout,
				IdleTimeout:    DefaultIdleTimeout,
				MaxHeaderBytes: DefaultMaxHeaderBytes,
			},
			wantError: false,
		},
		{
			name: "empty listen address",
			server: ServerConfig{
				ListenAddress: "",
			},
			wantError:  true,
			errorField: "server.listen_address",
		},
		{
			name: "negative read timeout",
			server: ServerConfig{
				ListenAddress: "127.0.0.1:8080",
				ReadTimeout:   -1,
			},
			wantError:  true,
			errorField: "server.read_timeout",
		},
		{
			name: "excessive max header bytes",
			server: ServerConfig{
				ListenAddress:  "127.0.0.1:8080",
				MaxHeaderBytes: 20 * 1024 * 1024, // 20MB
			},
			wantError:  true,
			errorField: "server.max_header_bytes",
		},
		{
			name: "cors enabled without origins",
			server: ServerConfig{
				ListenAddress: "127.0.0.1:8080",
				CORS: CORSConfig{
					Enabled:        true,
					AllowedMethods: []string{"GET"},
				},
			},
			wantError:  true,
			errorField: "server.cors.allowed_origins",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs := validateServer(&tt.server)
			if tt.wantError && len(errs) == 0 {
				t.Error("expected validation error, got none")
			}
			if !tt.wantError && len(errs) > 0 {
				t.Errorf("expected no validation error, got: %v", errs)
			}
			if tt.wantError && len(errs) > 0 {
				found := false
				for _, err := range errs {
					if err.Field == tt.errorField {
						found = true
						break
					}
				}
				if !found {
					t.Errorf("expected error for field %q, got errors: %v", tt.errorField, errs)
				}
			}
		})
	}
}

func TestValidate_ProvidersConfig(t *testing.T) {
	tests := []struct {
		name       string
		providers  ProvidersConfig
		wantError  bool
		errorField string
	}{
		{
			name: "valid with canonical kind",
			providers: ProvidersConfig{
				DefaultKind: "flowise",
				Flowise: FlowiseConfig{
					Endpoint: "http://flowise:3000/api/v1/prediction/abc123",
				},
			},
			wantError: false,
		},
		{
			name: "valid with factory alias",
			providers: ProvidersConfig{
				DefaultKind: "azure-openai",
			},
			wantError: false,
		},
		{
			name:       "empty default kind",
			providers:  ProvidersConfig{},
			wantError:  true,
			errorField: "providers.default_kind",
		},
		{
			name: "unknown default kind",
			providers: ProvidersConfig{
				DefaultKind: "carrier-pigeon",
			},
			wantError:  true,
			errorField: "providers.default_kind",
		},
		{
			name: "flowise endpoint with bad scheme",
			providers: ProvidersConfig{
				DefaultKind: "flowise",
				Flowise: FlowiseConfig{
					Endpoint: "ftp://flowise:3000/api/v1/prediction/abc123",
				},
			},
			wantError:  true,
			errorField: "providers.flowise.endpoint",
		},
		{
			name: "azure deployment uri without host",
			providers: ProvidersConfig{
				DefaultKind: "azure",
				Azure: AzureConfig{
					DeploymentURI: "https:///openai/deployments/gpt4o",
				},
			},
			wantError:  true,
			errorField: "providers.azure.deployment_uri",
		},
		{
			name: "negative generate timeout",
			providers: ProvidersConfig{
				DefaultKind:     "flowise",
				GenerateTimeout: -time.Second,
			},
			wantError:  true,
			errorField: "providers.generate_timeout",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs := validateProviders(&tt.providers)
			if tt.wantError && len(errs) == 0 {
				t.Error("expected validation error, got none")
			}
			if !tt.wantError && len(errs) > 0 {
				t.Errorf("expected no validation error, got: %v", errs)
			}
			if tt.wantError && len(errs) > 0 {
				found := false
				for _, err := range errs {
					if err.Field == tt.errorField {
						found = true
						break
					}
				}
				if !found {
					t.Errorf("expected error for field %q, got errors: %v", tt.errorField, errs)
				}
			}
		})
	}
}

func TestValidate_SuggestConfig(t *testing.T) {
	valid := SuggestConfig{
		MaxRetries:       3,
		BaseDelay:        2 * time.Second,
		HealthStaleAfter: 5 * time.Minute,
		ProbeInterval:    time.Minute,
		RequestTimeout:   90 * time.Second,
	}

	tests := []struct {
		name       string
		mutate     func(*SuggestConfig)
		errorField string
	}{
		{
			name:   "valid",
			mutate: func(cfg *SuggestConfig) {},
		},
		{
			name:       "zero max retries",
			mutate:     func(cfg *SuggestConfig) { cfg.MaxRetries = 0 },
			errorField: "suggest.max_retries",
		},
		{
			name:       "excessive max retries",
			mutate:     func(cfg *SuggestConfig) { cfg.MaxRetries = 50 },
			errorField: "suggest.max_retries",
		},
		{
			name:       "negative base delay",
			mutate:     func(cfg *SuggestConfig) { cfg.BaseDelay = -time.Second },
			errorField: "suggest.base_delay",
		},
		{
			name:       "zero health stale after",
			mutate:     func(cfg *SuggestConfig) { cfg.HealthStaleAfter = 0 },
			errorField: "suggest.health_stale_after",
		},
		{
			name:       "zero request timeout",
			mutate:     func(cfg *SuggestConfig) { cfg.RequestTimeout = 0 },
			errorField: "suggest.request_timeout",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid
			tt.mutate(&cfg)

			errs := validateSuggest(&cfg)
			if tt.errorField == "" {
				if len(errs) > 0 {
					t.Errorf("expected no validation error, got: %v", errs)
				}
				return
			}
			found := false
			for _, err := range errs {
				if err.Field == tt.errorField {
					found = true
					break
				}
			}
			if !found {
				t.Errorf("expected error for field %q, got errors: %v", tt.errorField, errs)
			}
		})
	}

	// Zero probe interval disables background probing and is valid
	cfg := valid
	cfg.ProbeInterval = 0
	if errs := validateSuggest(&cfg); len(errs) > 0 {
		t.Errorf("zero probe interval should be valid, got: %v", errs)
	}
}

func TestValidate_RAGConfig(t *testing.T) {
	// Disabled retrieval skips all checks
	disabled := RAGConfig{Enabled: false}
	if errs := validateRAG(&disabled); len(errs) > 0 {
		t.Errorf("disabled rag should skip validation, got: %v", errs)
	}

	valid := RAGConfig{
		Enabled:        true,
		SearchEndpoint: "http://kb:9200/search",
		TopK:           4,
		SearchTimeout:  10 * time.Second,
	}

	tests := []struct {
		name       string
		mutate     func(*RAGConfig)
		errorField string
	}{
		{
			name:   "valid",
			mutate: func(cfg *RAGConfig) {},
		},
		{
			name:       "missing endpoint",
			mutate:     func(cfg *RAGConfig) { cfg.SearchEndpoint = "" },
			errorField: "rag.search_endpoint",
		},
		{
			name:       "bad endpoint scheme",
			mutate:     func(cfg *RAGConfig) { cfg.SearchEndpoint = "redis://kb:6379" },
			errorField: "rag.search_endpoint",
		},
		{
			name:       "zero top k",
			mutate:     func(cfg *RAGConfig) { cfg.TopK = 0 },
			errorField: "rag.top_k",
		},
		{
			name:       "excessive top k",
			mutate:     func(cfg *RAGConfig) { cfg.TopK = 500 },
			errorField: "rag.top_k",
		},
		{
			name:       "zero search timeout",
			mutate:     func(cfg *RAGConfig) { cfg.SearchTimeout = 0 },
			errorField: "rag.search_timeout",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid
			tt.mutate(&cfg)

			errs := validateRAG(&cfg)
			if tt.errorField == "" {
				if len(errs) > 0 {
					t.Errorf("expected no validation error, got: %v", errs)
				}
				return
			}
			found := false
			for _, err := range errs {
				if err.Field == tt.errorField {
					found = true
					break
				}
			}
			if !found {
				t.Errorf("expected error for field %q, got errors: %v", tt.errorField, errs)
			}
		})
	}
}

func TestValidate_AuditConfig(t *testing.T) {
	// Disabled audit skips all checks
	disabled := AuditConfig{Enabled: false}
	if errs := validateAudit(&disabled); len(errs) > 0 {
		t.Errorf("disabled audit should skip validation, got: %v", errs)
	}

	valid := AuditConfig{
		Enabled:    true,
		DBPath:     "/var/lib/polaris/audit.db",
		BufferSize: 256,
		Retention: RetentionConfig{
			Days:     90,
			Schedule: "0 3 * * *",
		},
	}

	tests := []struct {
		name       string
		mutate     func(*AuditConfig)
		errorField string
	}{
		{
			name:   "valid",
			mutate: func(cfg *AuditConfig) {},
		},
		{
			name:       "missing db path",
			mutate:     func(cfg *AuditConfig) { cfg.DBPath = "" },
			errorField: "audit.db_path",
		},
		{
			name:       "zero buffer size",
			mutate:     func(cfg *AuditConfig) { cfg.BufferSize = 0 },
			errorField: "audit.buffer_size",
		},
		{
			name:       "negative retention days",
			mutate:     func(cfg *AuditConfig) { cfg.Retention.Days = -1 },
			errorField: "audit.retention.days",
		},
		{
			name:       "excessive retention days",
			mutate:     func(cfg *AuditConfig) { cfg.Retention.Days = 5000 },
			errorField: "audit.retention.days",
		},
		{
			name:       "invalid cron expression",
			mutate:     func(cfg *AuditConfig) { cfg.Retention.Schedule = "every day at 3" },
			errorField: "audit.retention.schedule",
		},
		{
			name:       "negative max records",
			mutate:     func(cfg *AuditConfig) { cfg.Retention.MaxRecords = -5 },
			errorField: "audit.retention.max_records",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid
			tt.mutate(&cfg)

			errs := validateAudit(&cfg)
			if tt.errorField == "" {
				if len(errs) > 0 {
					t.Errorf("expected no validation error, got: %v", errs)
				}
				return
			}
			found := false
			for _, err := range errs {
				if err.Field == tt.errorField {
					found = true
					break
				}
			}
			if !found {
				t.Errorf("expected error for field %q, got errors: %v", tt.errorField, errs)
			}
		})
	}
}

func TestValidate_TelemetryConfig(t *testing.T) {
	valid := TelemetryConfig{
		Logging: LoggingConfig{Level: "info", Format: "json"},
		Metrics: MetricsConfig{
			Enabled:         true,
			Path:            "/metrics",
			Namespace:       "polaris",
			Subsystem:       "suggest",
			DurationBuckets: DefaultDurationBuckets(),
		},
		Tracing: TracingConfig{
			Enabled:     false,
			ServiceName: "polaris",
			SampleRatio: 1.0,
		},
		Health: HealthConfig{
			LivenessPath:  "/healthz",
			ReadinessPath: "/readyz",
			CheckTimeout:  5 * time.Second,
		},
	}

	tests := []struct {
		name       string
		mutate     func(*TelemetryConfig)
		errorField string
	}{
		{
			name:   "valid",
			mutate: func(cfg *TelemetryConfig) {},
		},
		{
			name:       "invalid logging level",
			mutate:     func(cfg *TelemetryConfig) { cfg.Logging.Level = "verbose" },
			errorField: "telemetry.logging.level",
		},
		{
			name:       "invalid logging format",
			mutate:     func(cfg *TelemetryConfig) { cfg.Logging.Format = "xml" },
			errorField: "telemetry.logging.format",
		},
		{
			name:       "metrics enabled without path",
			mutate:     func(cfg *TelemetryConfig) { cfg.Metrics.Path = "" },
			errorField: "telemetry.metrics.path",
		},
		{
			name:       "metrics path without leading slash",
			mutate:     func(cfg *TelemetryConfig) { cfg.Metrics.Path = "metrics" },
			errorField: "telemetry.metrics.path",
		},
		{
			name: "duration buckets not increasing",
			mutate: func(cfg *TelemetryConfig) {
				cfg.Metrics.DurationBuckets = []float64{1, 0.5, 2}
			},
			errorField: "telemetry.metrics.duration_buckets",
		},
		{
			name: "tracing enabled without endpoint",
			mutate: func(cfg *TelemetryConfig) {
				cfg.Tracing.Enabled = true
				cfg.Tracing.Endpoint = ""
			},
			errorField: "telemetry.tracing.endpoint",
		},
		{
			name:       "sample ratio out of range",
			mutate:     func(cfg *TelemetryConfig) { cfg.Tracing.SampleRatio = 1.5 },
			errorField: "telemetry.tracing.sample_ratio",
		},
		{
			name:       "liveness path without leading slash",
			mutate:     func(cfg *TelemetryConfig) { cfg.Health.LivenessPath = "healthz" },
			errorField: "telemetry.health.liveness_path",
		},
		{
			name:       "missing readiness path",
			mutate:     func(cfg *TelemetryConfig) { cfg.Health.ReadinessPath = "" },
			errorField: "telemetry.health.readiness_path",
		},
		{
			name:       "excessive check timeout",
			mutate:     func(cfg *TelemetryConfig) { cfg.Health.CheckTimeout = 2 * time.Minute },
			errorField: "telemetry.health.check_timeout",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid
			tt.mutate(&cfg)

			errs := validateTelemetry(&cfg)
			if tt.errorField == "" {
				if len(errs) > 0 {
					t.Errorf("expected no validation error, got: %v", errs)
				}
				return
			}
			found := false
			for _, err := range errs {
				if err.Field == tt.errorField {
					found = true
					break
				}
			}
			if !found {
				t.Errorf("expected error for field %q, got errors: %v", tt.errorField, errs)
			}
		})
	}
}

func TestFieldError_Error(t *testing.T) {
	err := FieldError{Field: "server.listen_address", Message: "listen address is required"}
	want := "server.listen_address: listen address is required"
	if err.Error() != want {
		t.Errorf("expected %q, got %q", want, err.Error())
	}
}

func TestValidationError_SingleError(t *testing.T) {
	err := ValidationError{Errors: []FieldError{
		{Field: "rag.top_k", Message: "top k must be at least 1"},
	}}
	msg := err.Error()
	if !strings.Contains(msg, "rag.top_k") {
		t.Errorf("expected message to contain field path, got: %s", msg)
	}
	if strings.Contains(msg, "errors:") {
		t.Errorf("single error should use the short form, got: %s", msg)
	}
}
