package tracing

import (
	"context"
	"net/http"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
)

// W3C Trace Context propagation. The propagator is registered globally by
// New; these helpers carry trace context across the HTTP boundary in both
// directions.

// Propagator returns the configured text map propagator, a composite of
// W3C Trace Context and Baggage once New has run.
func Propagator() propagation.TextMapPropagator {
	return otel.GetTextMapPropagator()
}

// Extract pulls trace context out of incoming HTTP headers. Server
// middleware calls this before starting the request span so suggestion
// traces join the caller's trace:
//
//	ctx := tracing.Extract(r.Context(), r.Header)
//	ctx, span := tracer.Start(ctx, "http.request")
//
// Without a traceparent header the original context comes back unchanged.
func Extract(ctx context.Context, headers http.Header) context.Context {
	return Propagator().Extract(ctx, propagation.HeaderCarrier(headers))
}

// Inject writes the trace context from ctx into outgoing HTTP headers,
// serialized as traceparent and tracestate.
func Inject(ctx context.Context, headers http.Header) {
	Propagator().Inject(ctx, propagation.HeaderCarrier(headers))
}
