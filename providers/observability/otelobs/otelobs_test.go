package otelobs

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/leofalp/aitask/providers/observability"
)

func newRecordedObserver(t *testing.T, opts ...Option) (*Observer, *tracetest.SpanRecorder) {
	t.Helper()
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })
	return New(append([]Option{WithTracerProvider(tp)}, opts...)...), recorder
}

func attrMap(kvs []attribute.KeyValue) map[string]attribute.Value {
	out := make(map[string]attribute.Value, len(kvs))
	for _, kv := range kvs {
		out[string(kv.Key)] = kv.Value
	}
	return out
}

// TestObserver_SpanExport verifies that names, attributes and status reach
// the exported span.
func TestObserver_SpanExport(t *testing.T) {
	obs, recorder := newRecordedObserver(t)

	ctx, span := obs.StartSpan(context.Background(), "dispatch.speech",
		observability.String(observability.AttrProvider, "openai"),
		observability.Bool(observability.AttrTaskStreaming, false),
	)
	if observability.SpanFromContext(ctx) != span {
		t.Fatal("expected span in returned context")
	}
	span.SetAttributes(
		observability.Int(observability.AttrTokensPrompt, 12),
		observability.Float64(observability.AttrCostUSD, 0.5),
		observability.Duration(observability.AttrDuration, 2*time.Second),
		observability.Attribute{Key: "voices", Value: []string{"alloy", "nova"}},
	)
	span.AddEvent(observability.EventHistoryAppend, observability.String(observability.AttrRecordID, "rec-1"))
	span.SetStatus(observability.StatusOK, "")
	span.End()

	ended := recorder.Ended()
	if len(ended) != 1 {
		t.Fatalf("expected 1 ended span, got %d", len(ended))
	}
	got := ended[0]
	if got.Name() != "dispatch.speech" {
		t.Errorf("name = %q", got.Name())
	}
	attrs := attrMap(got.Attributes())
	if attrs[observability.AttrProvider].AsString() != "openai" {
		t.Errorf("provider attribute = %v", attrs[observability.AttrProvider])
	}
	if attrs[observability.AttrTokensPrompt].AsInt64() != 12 {
		t.Errorf("tokens attribute = %v", attrs[observability.AttrTokensPrompt])
	}
	if attrs[observability.AttrCostUSD].AsFloat64() != 0.5 {
		t.Errorf("cost attribute = %v", attrs[observability.AttrCostUSD])
	}
	if attrs[observability.AttrDuration].AsString() != "2s" {
		t.Errorf("duration attribute = %v", attrs[observability.AttrDuration])
	}
	if len(attrs["voices"].AsStringSlice()) != 2 {
		t.Errorf("slice attribute = %v", attrs["voices"])
	}
	if got.Status().Code != codes.Ok {
		t.Errorf("status = %v", got.Status())
	}
	if len(got.Events()) != 1 || got.Events()[0].Name != observability.EventHistoryAppend {
		t.Errorf("events = %v", got.Events())
	}
}

// TestObserver_SpanError verifies error recording and status.
func TestObserver_SpanError(t *testing.T) {
	obs, recorder := newRecordedObserver(t)

	_, span := obs.StartSpan(context.Background(), "dispatch.chat")
	span.RecordError(errors.New("no executor"))
	span.RecordError(nil)
	span.SetStatus(observability.StatusError, "no executor")
	span.End()

	got := recorder.Ended()[0]
	if got.Status().Code != codes.Error || got.Status().Description != "no executor" {
		t.Errorf("status = %+v", got.Status())
	}
	if len(got.Events()) != 1 || got.Events()[0].Name != "exception" {
		t.Errorf("expected one exception event, got %v", got.Events())
	}
}

// TestObserver_NestedSpans verifies that a span started from a span context
// becomes its child.
func TestObserver_NestedSpans(t *testing.T) {
	obs, recorder := newRecordedObserver(t)

	ctx, parent := obs.StartSpan(context.Background(), "parent")
	_, child := obs.StartSpan(ctx, "child")
	child.End()
	parent.End()

	ended := recorder.Ended()
	if len(ended) != 2 {
		t.Fatalf("expected 2 spans, got %d", len(ended))
	}
	if ended[0].Parent().SpanID() != ended[1].SpanContext().SpanID() {
		t.Fatal("expected child to reference the parent span")
	}
}

// TestObserver_LogsBecomeSpanEvents verifies that info-and-above logs land on
// the active span even without a fallback.
func TestObserver_LogsBecomeSpanEvents(t *testing.T) {
	obs, recorder := newRecordedObserver(t)

	ctx, span := obs.StartSpan(context.Background(), "dispatch.chat")
	obs.Debug(ctx, "debug is not an event")
	obs.Warn(ctx, "history append failed", observability.String(observability.AttrRecordID, "r"))
	span.End()

	events := recorder.Ended()[0].Events()
	if len(events) != 1 || events[0].Name != "history append failed" {
		t.Fatalf("unexpected events: %v", events)
	}
}

// TestObserver_NopMetrics verifies that metrics are safe without a fallback.
func TestObserver_NopMetrics(t *testing.T) {
	obs := New()
	obs.Counter(observability.MetricDispatchCount).Add(context.Background(), 1)
	obs.Histogram(observability.MetricDispatchDuration).Record(context.Background(), 1)
}

// TestSetup_NoopWhenEndpointEmpty verifies that Setup is opt-in.
func TestSetup_NoopWhenEndpointEmpty(t *testing.T) {
	shutdown, err := Setup(context.Background(), "", "aitask")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := shutdown(ctx); err != nil {
		t.Fatalf("noop shutdown should not error: %v", err)
	}
}
