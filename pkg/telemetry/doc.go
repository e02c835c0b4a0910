// Package telemetry groups the observability subpackages for Polaris.
//
// # Components
//
//   - logging: slog handler construction from configuration
//   - metrics: Prometheus metrics collection and the /metrics handler
//   - tracing: OpenTelemetry tracing with an OTLP/gRPC exporter
//   - health: liveness and readiness endpoints
//
// There is no combined facade; the run command wires each subpackage from
// its own section of TelemetryConfig:
//
//	logger, err := logging.New(&cfg.Telemetry.Logging, os.Stdout)
//	collector := metrics.NewCollector(&cfg.Telemetry.Metrics, nil)
//	tracer, err := tracing.New(&cfg.Telemetry.Tracing, version)
//	checker := health.New(cfg.Telemetry.Health.CheckTimeout)
//
// Each subpackage degrades to a cheap no-op when its config section is
// disabled, so callers record unconditionally.
package telemetry
