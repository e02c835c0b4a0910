// Package tracing provides OpenTelemetry distributed tracing for Polaris.
//
// # Overview
//
// The tracing package wires up span export over OTLP gRPC with W3C Trace
// Context propagation and trace-ID-ratio sampling. The suggestion
// orchestrator hangs its per-state spans (suggest.resolve-config,
// suggest.health-gate, suggest.rag-enhance, suggest.generate) off the
// request span started by the server.
//
// # Usage
//
//	tracer, err := tracing.New(&cfg.Telemetry.Tracing, version)
//	if err != nil {
//	    return err
//	}
//	defer tracer.Shutdown(context.Background())
//
//	ctx, span := tracer.Start(ctx, "suggest.request")
//	defer span.End()
//
// # Disabled Tracing
//
// With Enabled false the Tracer hands out noop spans; Start and Shutdown
// stay callable so nothing else in the program branches on the flag.
//
// # Propagation
//
// Extract reads traceparent/tracestate from incoming request headers so
// Polaris spans join the caller's trace; Inject writes them on outgoing
// requests. The composite propagator (Trace Context + Baggage) is
// registered globally by New.
//
// # Sampling
//
// The sample_ratio setting maps onto the SDK samplers: 0 never samples,
// 1 always samples, anything between is trace-ID-ratio based. All of them
// are ParentBased, so a sampled caller always gets sampled Polaris spans.
package tracing
