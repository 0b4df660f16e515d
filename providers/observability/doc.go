// Package observability defines the interfaces and semantic conventions the
// dispatcher and history stores use for tracing, metrics and structured
// logging.
//
// The central entry point is [Provider], which composes [Tracer], [Metrics],
// and [Logger] into a single injectable dependency. Callers propagate an active
// [Provider] and [Span] through a [context.Context] using [ContextWithObserver]
// and [ContextWithSpan]; they can be retrieved with [ObserverFromContext] and
// [SpanFromContext].
//
// The dispatcher labels its spans and metrics with the attribute helpers
// ([Kind], [ProviderID], [Model], [RecordID]) and reports each call through
// [RecordCall], [RecordUsage] and [EndSpan], so every backend sees the same
// instrument names and label sets.
//
// semconv.go holds the attribute keys, span names and metric names. Two
// implementations ship with the module: slogobs (log/slog) and otelobs
// (OpenTelemetry tracing).
package observability
