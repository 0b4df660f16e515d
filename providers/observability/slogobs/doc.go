// Package slogobs provides an observability.Provider backed by log/slog.
// Spans become debug log lines carrying their attributes and duration,
// counters and histograms are aggregated in memory, and log calls go
// straight to the configured logger.
//
// The main entry point is [New]; the handler format and minimum level come
// from AITASK_LOG_FORMAT and AITASK_LOG_LEVEL unless overridden with
// [WithFormat], [WithLevel], [WithOutput] or [WithLogger].
package slogobs
