package otelobs

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"

	"github.com/leofalp/aitask/providers/observability"
)

// InstrumentationName is the tracer name used for every span.
const InstrumentationName = "github.com/leofalp/aitask"

// Observer implements observability.Provider with OpenTelemetry spans.
type Observer struct {
	tracer   trace.Tracer
	fallback observability.Provider
}

var _ observability.Provider = (*Observer)(nil)

// Option configures an Observer.
type Option func(*options)

type options struct {
	provider trace.TracerProvider
	fallback observability.Provider
}

// WithTracerProvider sets the provider spans are created from. Defaults to
// the global provider.
func WithTracerProvider(provider trace.TracerProvider) Option {
	return func(o *options) { o.provider = provider }
}

// WithFallback sets the provider metrics and logs are forwarded to.
func WithFallback(fallback observability.Provider) Option {
	return func(o *options) { o.fallback = fallback }
}

// New returns an Observer.
func New(opts ...Option) *Observer {
	cfg := &options{}
	for _, opt := range opts {
		opt(cfg)
	}
	if cfg.provider == nil {
		cfg.provider = otel.GetTracerProvider()
	}
	return &Observer{
		tracer:   cfg.provider.Tracer(InstrumentationName),
		fallback: cfg.fallback,
	}
}

// Setup installs a batching OTLP/HTTP tracer provider as the global provider.
// An empty endpoint leaves the global provider untouched and returns a no-op
// shutdown. The returned shutdown flushes pending spans.
func Setup(ctx context.Context, endpoint, serviceName string) (shutdown func(context.Context) error, err error) {
	noop := func(context.Context) error { return nil }
	if endpoint == "" {
		return noop, nil
	}

	exporter, err := otlptracehttp.New(ctx, otlptracehttp.WithEndpointURL(endpoint))
	if err != nil {
		return noop, fmt.Errorf("otelobs: create exporter: %w", err)
	}
	res, err := resource.New(ctx, resource.WithAttributes(semconv.ServiceName(serviceName)))
	if err != nil {
		return noop, fmt.Errorf("otelobs: build resource: %w", err)
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.AlwaysSample()),
	)
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.TraceContext{})
	return tp.Shutdown, nil
}

// --- TRACING ---

// StartSpan starts an OpenTelemetry span and attaches the wrapper to the
// returned context.
func (o *Observer) StartSpan(ctx context.Context, name string, attrs ...observability.Attribute) (context.Context, observability.Span) {
	ctx, otelSpan := o.tracer.Start(ctx, name, trace.WithAttributes(toKeyValues(attrs)...))
	span := &otelSpanAdapter{span: otelSpan}
	return observability.ContextWithSpan(ctx, span), span
}

type otelSpanAdapter struct {
	span trace.Span
}

func (s *otelSpanAdapter) End() {
	s.span.End()
}

func (s *otelSpanAdapter) SetAttributes(attrs ...observability.Attribute) {
	s.span.SetAttributes(toKeyValues(attrs)...)
}

func (s *otelSpanAdapter) SetStatus(code observability.StatusCode, description string) {
	switch code {
	case observability.StatusOK:
		s.span.SetStatus(codes.Ok, description)
	case observability.StatusError:
		s.span.SetStatus(codes.Error, description)
	default:
		s.span.SetStatus(codes.Unset, description)
	}
}

func (s *otelSpanAdapter) RecordError(err error) {
	if err != nil {
		s.span.RecordError(err)
	}
}

func (s *otelSpanAdapter) AddEvent(name string, attrs ...observability.Attribute) {
	s.span.AddEvent(name, trace.WithAttributes(toKeyValues(attrs)...))
}

// toKeyValues converts attributes to OpenTelemetry key-values. Types without
// a native mapping are formatted with %v.
func toKeyValues(attrs []observability.Attribute) []attribute.KeyValue {
	out := make([]attribute.KeyValue, 0, len(attrs))
	for _, attr := range attrs {
		key := attribute.Key(attr.Key)
		switch v := attr.Value.(type) {
		case string:
			out = append(out, key.String(v))
		case int:
			out = append(out, key.Int(v))
		case int64:
			out = append(out, key.Int64(v))
		case float64:
			out = append(out, key.Float64(v))
		case bool:
			out = append(out, key.Bool(v))
		case time.Duration:
			out = append(out, key.String(v.String()))
		case []string:
			out = append(out, key.StringSlice(v))
		default:
			out = append(out, key.String(fmt.Sprintf("%v", v)))
		}
	}
	return out
}

// --- METRICS ---

func (o *Observer) Counter(name string) observability.Counter {
	if o.fallback == nil {
		return nopCounter{}
	}
	return o.fallback.Counter(name)
}

func (o *Observer) Histogram(name string) observability.Histogram {
	if o.fallback == nil {
		return nopHistogram{}
	}
	return o.fallback.Histogram(name)
}

type nopCounter struct{}

func (nopCounter) Add(context.Context, int64, ...observability.Attribute) {}

type nopHistogram struct{}

func (nopHistogram) Record(context.Context, float64, ...observability.Attribute) {}

// --- LOGGING ---

// Log calls are forwarded to the fallback and, when ctx carries a recording
// span, also added to it as an event.

func (o *Observer) Trace(ctx context.Context, msg string, attrs ...observability.Attribute) {
	if o.fallback != nil {
		o.fallback.Trace(ctx, msg, attrs...)
	}
}

func (o *Observer) Debug(ctx context.Context, msg string, attrs ...observability.Attribute) {
	if o.fallback != nil {
		o.fallback.Debug(ctx, msg, attrs...)
	}
}

func (o *Observer) Info(ctx context.Context, msg string, attrs ...observability.Attribute) {
	o.spanEvent(ctx, msg, attrs)
	if o.fallback != nil {
		o.fallback.Info(ctx, msg, attrs...)
	}
}

func (o *Observer) Warn(ctx context.Context, msg string, attrs ...observability.Attribute) {
	o.spanEvent(ctx, msg, attrs)
	if o.fallback != nil {
		o.fallback.Warn(ctx, msg, attrs...)
	}
}

func (o *Observer) Error(ctx context.Context, msg string, attrs ...observability.Attribute) {
	o.spanEvent(ctx, msg, attrs)
	if o.fallback != nil {
		o.fallback.Error(ctx, msg, attrs...)
	}
}

func (o *Observer) spanEvent(ctx context.Context, msg string, attrs []observability.Attribute) {
	span := trace.SpanFromContext(ctx)
	if span.IsRecording() {
		span.AddEvent(msg, trace.WithAttributes(toKeyValues(attrs)...))
	}
}
