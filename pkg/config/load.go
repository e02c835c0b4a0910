package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// DefaultDotEnvFile is the conventional environment file loaded before the
// configuration file is read.
const DefaultDotEnvFile = ".env"

// LoadConfig loads configuration from a YAML file at the specified path.
// It applies default values, validates the configuration, and returns any
// errors. The configuration is not modified by environment variables; use
// LoadConfigWithEnvOverrides for that functionality.
func LoadConfig(path string) (*Config, error) {
	// Read the file
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read configuration file %q: %w", path, err)
	}

	// Parse YAML over the seeded flags so an explicit `enabled: false`
	// in the file survives.
	var cfg Config
	seedEnabledFlags(&cfg)
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse configuration file %q: %w", path, err)
	}

	// Apply defaults
	ApplyDefaults(&cfg)

	// Validate
	if err := Validate(&cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &cfg, nil
}

// LoadConfigWithEnvOverrides loads configuration from a YAML file and applies
// environment variable overrides. Environment variables follow the naming
// convention POLARIS_SECTION_FIELD (e.g., POLARIS_SERVER_LISTEN_ADDRESS).
// Environment variables always take precedence over file-based configuration.
//
// A .env file in the working directory is merged into the environment first;
// variables already set in the real environment win over .env entries.
// Provider credentials and the active-kind selection (POLARIS_PROVIDER,
// POLARIS_FLOWISE_ENDPOINT and friends) are deliberately not handled here:
// the settings package layers those at resolution time so they also apply to
// runtime provider switches, not just at boot.
//
// The loading sequence is:
// 1. Merge .env into the process environment
// 2. Load YAML from file
// 3. Apply default values
// 4. Apply environment variable overrides
// 5. Validate final configuration
func LoadConfigWithEnvOverrides(path string) (*Config, error) {
	// Merge .env first so the overrides below can see it
	if err := LoadDotEnv(""); err != nil {
		return nil, err
	}

	// Load from file (this already applies defaults)
	cfg, err := LoadConfig(path)
	if err != nil {
		return nil, err
	}

	// Apply environment variable overrides
	applyEnvOverrides(cfg)

	// Re-validate after overrides
	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed after environment overrides: %w", err)
	}

	return cfg, nil
}

// LoadDotEnv merges variables from the named file into the process
// environment without overriding variables that are already set. An empty
// path means DefaultDotEnvFile. A missing file is not an error so
// deployments without one boot cleanly; a malformed file is.
func LoadDotEnv(path string) error {
	if path == "" {
		path = DefaultDotEnvFile
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to stat env file %q: %w", path, err)
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("failed to load env file %q: %w", path, err)
	}
	return nil
}

// applyEnvOverrides applies environment variable overrides to the
// configuration. Environment variables use the format POLARIS_SECTION_FIELD.
func applyEnvOverrides(cfg *Config) {
	// Server overrides
	if val := os.Getenv("POLARIS_SERVER_LISTEN_ADDRESS"); val != "" {
		cfg.Server.ListenAddress = val
	}
	if val := os.Getenv("POLARIS_SERVER_READ_TIMEOUT"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			cfg.Server.ReadTimeout = d
		}
	}
	if val := os.Getenv("POLARIS_SERVER_WRITE_TIMEOUT"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			cfg.Server.WriteTimeout = d
		}
	}
	if val := os.Getenv("POLARIS_SERVER_IDLE_TIMEOUT"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			cfg.Server.IdleTimeout = d
		}
	}
	if val := os.Getenv("POLARIS_SERVER_SHUTDOWN_TIMEOUT"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			cfg.Server.ShutdownTimeout = d
		}
	}
	if val := os.Getenv("POLARIS_SERVER_MAX_HEADER_BYTES"); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			cfg.Server.MaxHeaderBytes = i
		}
	}

	// Provider default overrides. Per-kind credentials stay with the
	// settings package.
	if val := os.Getenv("POLARIS_PROVIDERS_DEFAULT_KIND"); val != "" {
		cfg.Providers.DefaultKind = val
	}
	if val := os.Getenv("POLARIS_PROVIDERS_GENERATE_TIMEOUT"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			cfg.Providers.GenerateTimeout = d
		}
	}
	if val := os.Getenv("POLARIS_PROVIDERS_PROBE_TIMEOUT"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			cfg.Providers.ProbeTimeout = d
		}
	}

	// Suggest overrides
	if val := os.Getenv("POLARIS_SUGGEST_MAX_RETRIES"); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			cfg.Suggest.MaxRetries = i
		}
	}
	if val := os.Getenv("POLARIS_SUGGEST_BASE_DELAY"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			cfg.Suggest.BaseDelay = d
		}
	}
	if val := os.Getenv("POLARIS_SUGGEST_HEALTH_STALE_AFTER"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			cfg.Suggest.HealthStaleAfter = d
		}
	}
	if val := os.Getenv("POLARIS_SUGGEST_PROBE_INTERVAL"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			cfg.Suggest.ProbeInterval = d
		}
	}
	if val := os.Getenv("POLARIS_SUGGEST_REQUEST_TIMEOUT"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			cfg.Suggest.RequestTimeout = d
		}
	}

	// RAG overrides
	if val := os.Getenv("POLARIS_RAG_ENABLED"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.RAG.Enabled = b
		}
	}
	if val := os.Getenv("POLARIS_RAG_SEARCH_ENDPOINT"); val != "" {
		cfg.RAG.SearchEndpoint = val
	}
	if val := os.Getenv("POLARIS_RAG_SEARCH_API_KEY"); val != "" {
		cfg.RAG.SearchAPIKey = val
	}
	if val := os.Getenv("POLARIS_RAG_TOP_K"); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			cfg.RAG.TopK = i
		}
	}
	if val := os.Getenv("POLARIS_RAG_SHOW_SOURCES"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.RAG.ShowSources = b
		}
	}
	if val := os.Getenv("POLARIS_RAG_SEARCH_TIMEOUT"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			cfg.RAG.SearchTimeout = d
		}
	}

	// Settings store overrides
	if val := os.Getenv("POLARIS_SETTINGS_DB_PATH"); val != "" {
		cfg.Settings.DBPath = val
	}

	// Audit overrides
	if val := os.Getenv("POLARIS_AUDIT_ENABLED"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Audit.Enabled = b
		}
	}
	if val := os.Getenv("POLARIS_AUDIT_DB_PATH"); val != "" {
		cfg.Audit.DBPath = val
	}
	if val := os.Getenv("POLARIS_AUDIT_BUFFER_SIZE"); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			cfg.Audit.BufferSize = i
		}
	}
	if val := os.Getenv("POLARIS_AUDIT_RETENTION_DAYS"); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			cfg.Audit.Retention.Days = i
		}
	}
	if val := os.Getenv("POLARIS_AUDIT_RETENTION_SCHEDULE"); val != "" {
		cfg.Audit.Retention.Schedule = val
	}
	if val := os.Getenv("POLARIS_AUDIT_RETENTION_MAX_RECORDS"); val != "" {
		if i, err := strconv.ParseInt(val, 10, 64); err == nil {
			cfg.Audit.Retention.MaxRecords = i
		}
	}

	// Telemetry overrides
	if val := os.Getenv("POLARIS_TELEMETRY_LOGGING_LEVEL"); val != "" {
		cfg.Telemetry.Logging.Level = val
	}
	if val := os.Getenv("POLARIS_TELEMETRY_LOGGING_FORMAT"); val != "" {
		cfg.Telemetry.Logging.Format = val
	}
	if val := os.Getenv("POLARIS_TELEMETRY_METRICS_ENABLED"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Telemetry.Metrics.Enabled = b
		}
	}
	if val := os.Getenv("POLARIS_TELEMETRY_METRICS_PATH"); val != "" {
		cfg.Telemetry.Metrics.Path = val
	}
	if val := os.Getenv("POLARIS_TELEMETRY_TRACING_ENABLED"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Telemetry.Tracing.Enabled = b
		}
	}
	if val := os.Getenv("POLARIS_TELEMETRY_TRACING_ENDPOINT"); val != "" {
		cfg.Telemetry.Tracing.Endpoint = val
	}
	if val := os.Getenv("POLARIS_TELEMETRY_TRACING_SAMPLE_RATIO"); val != "" {
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			cfg.Telemetry.Tracing.SampleRatio = f
		}
	}
}
