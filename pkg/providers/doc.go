// Package providers implements a unified abstraction layer for the upstream
// AI providers that generate reply suggestions.
//
// # Overview
//
// The providers package gives the suggestion pipeline a consistent interface
// for talking to interchangeable upstream model backends (Flowise, OpenRouter,
// Azure OpenAI). It normalizes request construction and response extraction,
// manages pooled connections, tracks per-provider health, and redacts secrets
// from anything that can surface in errors or logs.
//
// # Architecture
//
// The package is organized into several layers:
//
//  1. Provider Interface - the contract every provider variant implements
//  2. Base HTTP Provider - shared HTTP client logic (pooling, timeouts, health state)
//  3. Provider Variants - upstream-specific subpackages (flowise, openrouter, azureopenai)
//  4. Provider Factory - constructs and validates variants (see providerfactory)
//
// # Basic Usage
//
// Construct a variant through its subpackage and generate a reply:
//
//	cfg := providers.Config{
//	    Kind:     providers.KindOpenRouter,
//	    APIKey:   os.Getenv("POLARIS_OPENROUTER_API_KEY"),
//	    Model:    "openai/gpt-4o-mini",
//	}
//
//	provider, err := openrouter.NewProvider(cfg)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer provider.Close()
//
//	reply, err := provider.GenerateReply(ctx, "Customer: Where is my order?", "conv-42")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(reply)
//
// # Health Tracking
//
// Every variant owns one Health snapshot, swapped atomically so request
// handling paths read without locking:
//
//	if !provider.IsHealthy() {
//	    health := provider.GetHealth()
//	    fmt.Printf("provider unhealthy since %s: %s\n", health.LastCheckedAt, health.LastError)
//	}
//
// HealthCheck never returns an error; probe failures only flip the snapshot.
// A snapshot older than DefaultHealthStaleAfter is considered stale and
// should be refreshed before trusting its verdict.
//
// # Error Handling
//
// The package defines the error types the pipeline dispatches on:
//
//   - ConfigurationError: missing/invalid construction fields, never retried
//   - UnsupportedProviderError: unknown provider kind
//   - NetworkError: transport failures, timeouts, non-2xx statuses; retryable
//   - ResponseFormatError: upstream payload missing the expected text; not retried
//
// Use IsRetryable to decide whether an error justifies another attempt.
// NetworkError bodies are secret-redacted before they are stored, so provider
// errors are safe to log verbatim.
//
// # Thread Safety
//
// All variants are safe for concurrent use; the shared health snapshot is the
// only mutable state and is updated with atomic pointer swaps.
package providers
