package tracing

import (
	"context"
	"net/http"
	"strings"
	"testing"

	"caseflow-hq/polaris/pkg/config"

	"go.opentelemetry.io/otel/trace"
)

// registerPropagator runs New so the global composite propagator is
// installed, the same way the run command does at boot.
func registerPropagator(t *testing.T) {
	t.Helper()
	tracer, err := New(&config.TracingConfig{
		Enabled:     true,
		Endpoint:    "localhost:4317",
		ServiceName: "test-service",
		SampleRatio: 0,
		Insecure:    true,
	}, "test")
	if err != nil {
		t.Fatalf("Failed to create tracer: %v", err)
	}
	t.Cleanup(func() { _ = tracer.Shutdown(context.Background()) })
}

func remoteSpanContext() trace.SpanContext {
	return trace.NewSpanContext(trace.SpanContextConfig{
		TraceID:    trace.TraceID{0x4b, 0xf9, 0x2f, 0x35, 0x77, 0xb3, 0x4d, 0xa6, 0xa3, 0xce, 0x92, 0x9d, 0x0e, 0x0e, 0x47, 0x36},
		SpanID:     trace.SpanID{0x00, 0xf0, 0x67, 0xaa, 0x0b, 0xa9, 0x02, 0xb7},
		TraceFlags: trace.FlagsSampled,
		Remote:     true,
	})
}

func TestInject(t *testing.T) {
	registerPropagator(t)

	ctx := trace.ContextWithSpanContext(context.Background(), remoteSpanContext())
	headers := make(http.Header)

	Inject(ctx, headers)

	traceparent := headers.Get("traceparent")
	if traceparent == "" {
		t.Fatal("Inject() did not set traceparent header")
	}
	if !strings.Contains(traceparent, "4bf92f3577b34da6a3ce929d0e0e4736") {
		t.Errorf("traceparent missing trace ID: %q", traceparent)
	}
	if !strings.HasSuffix(traceparent, "-01") {
		t.Errorf("traceparent lost the sampled flag: %q", traceparent)
	}
}

func TestExtract(t *testing.T) {
	registerPropagator(t)

	headers := make(http.Header)
	headers.Set("traceparent", "00-4bf92f3577b34da6a3ce929d0e0e4736-00f067aa0ba902b7-01")

	ctx := Extract(context.Background(), headers)

	sc := trace.SpanFromContext(ctx).SpanContext()
	if !sc.IsValid() {
		t.Fatal("Extract() produced no valid span context")
	}
	if sc.TraceID().String() != "4bf92f3577b34da6a3ce929d0e0e4736" {
		t.Errorf("trace ID = %s", sc.TraceID())
	}
	if !sc.IsSampled() {
		t.Error("sampled flag lost in extraction")
	}
	if !sc.IsRemote() {
		t.Error("extracted context should be marked remote")
	}
}

func TestExtract_NoHeaders(t *testing.T) {
	registerPropagator(t)

	ctx := Extract(context.Background(), make(http.Header))

	if trace.SpanFromContext(ctx).SpanContext().IsValid() {
		t.Error("Extract() invented a span context from empty headers")
	}
}

func TestInjectExtract_RoundTrip(t *testing.T) {
	registerPropagator(t)

	originalCtx := trace.ContextWithSpanContext(context.Background(), remoteSpanContext())
	headers := make(http.Header)

	Inject(originalCtx, headers)
	roundTripped := Extract(context.Background(), headers)

	got := trace.SpanFromContext(roundTripped).SpanContext()
	want := remoteSpanContext()
	if got.TraceID() != want.TraceID() {
		t.Errorf("trace ID = %s, want %s", got.TraceID(), want.TraceID())
	}
	if got.SpanID() != want.SpanID() {
		t.Errorf("span ID = %s, want %s", got.SpanID(), want.SpanID())
	}
}
