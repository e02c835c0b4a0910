// Package health provides health check endpoints for Polaris.
//
// # Overview
//
// The health package implements liveness and readiness probes for Kubernetes
// and other orchestration systems, along with a version information endpoint.
// The server registers one readiness check per suggestion-pipeline
// dependency and mounts the handlers at the paths from HealthConfig.
//
// # Endpoints
//
// The package provides three main endpoints:
//
//   - /healthz: Liveness probe - indicates if the process is running
//   - /readyz: Readiness probe - indicates if the service can serve traffic
//   - /version: Build information - version, commit, build time
//
// # Usage
//
//	// Create health checker with a per-check timeout
//	checker := health.New(cfg.Telemetry.Health.CheckTimeout)
//
//	// Register dependency checks
//	checker.RegisterCheck("settings", func(ctx context.Context) error {
//	    return settingsStore.Ping(ctx)
//	})
//	checker.RegisterCheck("providers", func(ctx context.Context) error {
//	    if len(registry.Kinds()) == 0 {
//	        return errors.New("no providers registered")
//	    }
//	    return nil
//	})
//
//	// Mount HTTP handlers at the configured paths
//	mux.HandleFunc(cfg.Telemetry.Health.LivenessPath, checker.LivenessHandler())
//	mux.HandleFunc(cfg.Telemetry.Health.ReadinessPath, checker.ReadinessHandler())
//	mux.HandleFunc("/version", health.VersionHandler("1.0.0", "abc123", "2026-08-20"))
//
// # Liveness vs Readiness
//
// **Liveness Probe** (/healthz):
//   - Indicates if the process is alive and running
//   - Returns 200 OK while the process serves requests
//   - Used by Kubernetes to restart pods
//   - Fast check (<10ms)
//
// **Readiness Probe** (/readyz):
//   - Indicates if the service can serve suggestion traffic
//   - Runs all registered dependency checks concurrently
//   - Returns 200 OK if all dependencies are healthy
//   - Returns 503 Service Unavailable if any dependency is unhealthy
//   - Used by Kubernetes to route traffic
//   - Bounded by one check timeout because checks run concurrently
//
// # Dependency Checks
//
// The run command registers these checks:
//   - settings: the provider settings store answers a ping
//   - audit: the audit store answers a ping (only when auditing is enabled)
//   - providers: the provider registry has at least one construction-capable kind
//
// Note that readiness is about the service's own dependencies, not about
// upstream AI providers: a provider being down degrades suggestions to the
// canned fallback, it does not take the service out of rotation.
//
// # Example Response
//
// Readiness response (/readyz):
//
//	{
//	    "status": "ready",
//	    "checks": {
//	        "settings": {"status": "ok", "duration_ms": 0.4},
//	        "audit": {"status": "ok", "duration_ms": 0.6},
//	        "providers": {"status": "ok", "duration_ms": 0.1}
//	    },
//	    "timestamp": "2026-08-20T10:30:00Z"
//	}
//
// Degraded response (/readyz):
//
//	{
//	    "status": "degraded",
//	    "checks": {
//	        "settings": {"status": "ok", "duration_ms": 0.4},
//	        "audit": {"status": "unhealthy", "message": "database is locked"},
//	        "providers": {"status": "ok", "duration_ms": 0.1}
//	    },
//	    "timestamp": "2026-08-20T10:30:00Z"
//	}
package health
