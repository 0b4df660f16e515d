package observability

import (
	"context"
	"slices"
	"time"

	"github.com/leofalp/aitask/providers/ai"
)

// Provider bundles tracing, metrics and logging behind one value. The
// dispatcher holds one; executors reach it through ObserverFromContext.
type Provider interface {
	Tracer
	Metrics
	Logger
}

// --- TRACING ---

// Tracer opens spans. Span names are listed in semconv.go.
type Tracer interface {
	// StartSpan opens a span and returns a context carrying it
	StartSpan(ctx context.Context, name string, attrs ...Attribute) (context.Context, Span)
}

// Span is one traced unit of work, usually a single dispatch
type Span interface {
	End()
	SetAttributes(attrs ...Attribute)
	SetStatus(code StatusCode, description string)
	RecordError(err error)
	AddEvent(name string, attrs ...Attribute)
}

// StatusCode is the outcome recorded on a span
type StatusCode int

const (
	StatusUnset StatusCode = iota
	StatusOK
	StatusError
)

// --- METRICS ---

// Metrics hands out named instruments. Names are listed in semconv.go.
type Metrics interface {
	Counter(name string) Counter
	Histogram(name string) Histogram
}

// Counter is a monotonically increasing metric
type Counter interface {
	Add(ctx context.Context, value int64, attrs ...Attribute)
}

// Histogram records a distribution of values
type Histogram interface {
	Record(ctx context.Context, value float64, attrs ...Attribute)
}

// --- LOGGING ---

// Logger writes structured log lines
type Logger interface {
	Trace(ctx context.Context, msg string, attrs ...Attribute)
	Debug(ctx context.Context, msg string, attrs ...Attribute)
	Info(ctx context.Context, msg string, attrs ...Attribute)
	Warn(ctx context.Context, msg string, attrs ...Attribute)
	Error(ctx context.Context, msg string, attrs ...Attribute)
}

// --- ATTRIBUTES ---

// Attribute is a key-value pair attached to spans, metrics and log lines
type Attribute struct {
	Key   string
	Value any
}

func String(key, value string) Attribute {
	return Attribute{Key: key, Value: value}
}

func Int(key string, value int) Attribute {
	return Attribute{Key: key, Value: value}
}

func Float64(key string, value float64) Attribute {
	return Attribute{Key: key, Value: value}
}

func Bool(key string, value bool) Attribute {
	return Attribute{Key: key, Value: value}
}

func Duration(key string, value time.Duration) Attribute {
	return Attribute{Key: key, Value: value}
}

// Error stores err's message under AttrError; a nil err gives an empty value.
func Error(err error) Attribute {
	if err == nil {
		return Attribute{Key: AttrError, Value: ""}
	}
	return Attribute{Key: AttrError, Value: err.Error()}
}

// Kind labels a task kind by name, e.g. "speech".
func Kind(name string) Attribute {
	return String(AttrTaskKind, name)
}

// ProviderID labels the provider a call was resolved to.
func ProviderID(id ai.ProviderID) Attribute {
	return String(AttrProvider, string(id))
}

// Model labels the model identifier sent to an executor.
func Model(id string) Attribute {
	return String(AttrModel, id)
}

// RecordID labels the history record built for a call.
func RecordID(id string) Attribute {
	return String(AttrRecordID, id)
}

// --- DISPATCH METRICS ---

// Error classes carried by MetricDispatchErrors under AttrErrorType.
const (
	ErrorClassExecutor    = "executor"
	ErrorClassConfig      = "config"
	ErrorClassUnsupported = "unsupported"
	ErrorClassCanceled    = "canceled"
)

// CallLabels are the low-cardinality labels every dispatch metric carries.
// Provider is left out until resolution has picked one.
func CallLabels(kind string, provider ai.ProviderID) []Attribute {
	labels := []Attribute{Kind(kind)}
	if provider != "" {
		labels = append(labels, ProviderID(provider))
	}
	return labels
}

// RecordCall reports a finished dispatch: one count, its duration in seconds
// and, when errClass is set, one error.
func RecordCall(ctx context.Context, m Metrics, labels []Attribute, seconds float64, errClass string) {
	m.Counter(MetricDispatchCount).Add(ctx, 1, labels...)
	m.Histogram(MetricDispatchDuration).Record(ctx, seconds, labels...)
	if errClass != "" {
		m.Counter(MetricDispatchErrors).Add(ctx, 1, append(slices.Clip(labels), String(AttrErrorType, errClass))...)
	}
}

// RecordUsage reports the tokens and estimated cost of a recorded call. Zero
// values are not reported.
func RecordUsage(ctx context.Context, m Metrics, labels []Attribute, tokens int, costUSD float64) {
	if tokens > 0 {
		m.Counter(MetricTokensTotal).Add(ctx, int64(tokens), labels...)
	}
	if costUSD > 0 {
		m.Histogram(MetricCostUSD).Record(ctx, costUSD, labels...)
	}
}

// EndSpan records err as the span status and ends it. A nil span is a no-op.
func EndSpan(span Span, err error) {
	if span == nil {
		return
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(StatusError, err.Error())
	} else {
		span.SetStatus(StatusOK, "")
	}
	span.End()
}
