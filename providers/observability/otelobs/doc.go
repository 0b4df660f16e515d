// Package otelobs adapts OpenTelemetry tracing to observability.Provider.
//
// Spans are real OpenTelemetry spans from the configured TracerProvider.
// Metrics and log calls are forwarded to a fallback provider (usually a
// slogobs.Observer), since the module exports traces only. [Setup] installs
// an OTLP/HTTP exporter when an endpoint is configured.
package otelobs
