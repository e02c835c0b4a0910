// Package server provides the HTTP API in front of the suggestion pipeline.
//
// This package ties together the API surface (handlers, middleware, probes,
// metrics) and provides server lifecycle management including start and
// graceful shutdown.
//
// # Architecture
//
// The server package is the top-level assembler that:
//   - Sets up HTTP routes and handlers
//   - Chains middleware for cross-cutting concerns
//   - Mounts the health probes and the Prometheus scrape endpoint
//   - Manages graceful shutdown
//   - Handles OS signals (SIGTERM, SIGINT)
//
// It holds no suggestion logic of its own: requests are delegated to the
// orchestrator, listings to the settings resolver and the provider
// registry.
//
// # Basic Usage
//
// Creating and starting a server:
//
//	import (
//	    "context"
//	    "caseflow-hq/polaris/pkg/config"
//	    "caseflow-hq/polaris/pkg/server"
//	)
//
//	cfg, err := config.Load(configPath)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	srv := server.NewServer(&cfg.Server, &cfg.Telemetry, server.Dependencies{
//	    Suggester: orchestrator,
//	    Settings:  resolver,
//	    Registry:  registry,
//	    Collector: collector,
//	    Auditor:   auditor,
//	    Health:    checker,
//	    Logger:    logger,
//	})
//	if err := srv.Start(context.Background()); err != nil {
//	    log.Fatal(err)
//	}
//
// # Graceful Shutdown
//
// The server shuts down automatically on SIGTERM or SIGINT, when the Start
// context is cancelled, or when Stop is called:
//
//	go srv.Start(ctx)
//	// ...
//	srv.Stop()
//
// The shutdown process:
//  1. Stops accepting new connections
//  2. Waits for active requests to complete (up to shutdown timeout)
//  3. Forces connection closure if the timeout is exceeded
//
// The write timeout must leave room for a worst-case suggestion request,
// all retry attempts plus backoff sleeps, or slow upstream providers get
// their responses cut off mid-write.
//
// # Routes
//
// The server exposes the following HTTP endpoints:
//
//   - POST /v1/suggestions - Generate a reply suggestion for a transcript
//   - POST /v1/providers/switch - Switch the active provider at runtime
//   - GET /v1/providers - List provider kinds with cached health
//   - GET /healthz - Liveness probe (always returns 200)
//   - GET /readyz - Readiness probe (checks registered dependencies)
//   - GET /metrics - Prometheus scrape endpoint (when metrics are enabled)
//   - GET /version - Build and version information
//
// The probe and metrics paths are configurable; the defaults are shown.
//
// # Middleware Chain
//
// Requests pass through the following middleware (innermost to outermost):
//  1. CORS: Answers preflights and adds Cross-Origin headers
//  2. Logging: Logs request/response details
//  3. RequestID: Generates the request ID logging picks up
//  4. Recovery: Recovers from panics and returns a 500 in the error envelope
//
// # Thread Safety
//
// All server operations are thread-safe and can be called concurrently from
// multiple goroutines.
package server
