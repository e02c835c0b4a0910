// Package config provides configuration management for Caseflow Polaris.
//
// This package handles loading, validating, and managing configuration from
// YAML files with environment variable overrides. It provides a type-safe
// configuration system with comprehensive validation and sensible defaults.
//
// # Configuration Loading
//
// Configuration can be loaded in two ways:
//
//  1. From a YAML file only:
//     cfg, err := config.LoadConfig("config.yaml")
//
//  2. From a YAML file with environment variable overrides:
//     cfg, err := config.LoadConfigWithEnvOverrides("config.yaml")
//
// The second form also merges a .env file from the working directory into
// the process environment first; variables already set in the environment
// win over .env entries.
//
// # Environment Variable Overrides
//
// Environment variables follow the naming convention POLARIS_SECTION_FIELD.
// For example:
//
//   - POLARIS_SERVER_LISTEN_ADDRESS overrides server.listen_address
//   - POLARIS_SUGGEST_MAX_RETRIES overrides suggest.max_retries
//   - POLARIS_TELEMETRY_LOGGING_LEVEL overrides telemetry.logging.level
//
// Environment variables always take precedence over file-based configuration.
//
// Provider credentials and the active-kind selection (POLARIS_PROVIDER,
// POLARIS_FLOWISE_ENDPOINT, POLARIS_OPENROUTER_API_KEY and friends) are not
// applied here. The settings package layers those at resolution time so that
// they also cover runtime provider switches.
//
// # Configuration Precedence
//
// Configuration values are applied in the following order (later overrides
// earlier):
//
//  1. Default values (defined in defaults.go)
//  2. Values from YAML file
//  3. Environment variable overrides
//  4. Validation (fails fast if invalid)
//
// # Hot Reload
//
// A Watcher can keep a long-running process in sync with its configuration
// file:
//
//	w, err := config.NewWatcher("config.yaml", 0, logger)
//	if err != nil {
//	    return err
//	}
//	go w.Watch(ctx, func(cfg *config.Config) {
//	    // swap in the new configuration
//	})
//
// Reloads that fail to parse or validate keep the previous configuration.
//
// # Validation
//
// All configuration is validated automatically during loading. Validation
// includes:
//
//   - Required field checks (e.g., listen address, search endpoint)
//   - Range validation (e.g., sample ratio must be 0.0-1.0)
//   - Format validation (e.g., endpoint URLs, cron expressions)
//   - Logical validation (e.g., retrieval enabled requires an endpoint)
//
// Validation errors include field paths and helpful messages:
//
//	configuration validation failed with 2 errors:
//	  - server.listen_address: listen address is required
//	  - rag.search_endpoint: search endpoint is required when rag is enabled
//
// # Example Configuration
//
// Here is a minimal configuration file:
//
//	server:
//	  listen_address: "127.0.0.1:8080"
//
//	providers:
//	  default_kind: "flowise"
//	  flowise:
//	    endpoint: "http://flowise:3000/api/v1/prediction/abc123"
//
//	rag:
//	  enabled: true
//	  search_endpoint: "http://kb:9200/search"
//
//	telemetry:
//	  logging:
//	    level: "info"
//	    format: "json"
//
// # Thread Safety
//
// Loaded Config values are plain data and safe for concurrent reads. Prefer
// passing Config instances explicitly; when hot reload is needed, swap the
// pointer atomically in the component that owns it.
package config
