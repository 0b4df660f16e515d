package slogobs

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
)

// LevelTrace sits below slog.LevelDebug and is filtered out unless enabled
// explicitly.
const LevelTrace = slog.LevelDebug - 4

// Format selects the slog handler.
type Format string

const (
	// FormatText is slog's key=value handler.
	FormatText Format = "text"
	// FormatJSON is slog's JSON handler, for log aggregation.
	FormatJSON Format = "json"
)

// ParseFormat returns FormatJSON for "json" and FormatText otherwise.
func ParseFormat(s string) Format {
	if strings.EqualFold(strings.TrimSpace(s), string(FormatJSON)) {
		return FormatJSON
	}
	return FormatText
}

// ParseLevel parses TRACE, DEBUG, INFO, WARN, WARNING or ERROR
// (case-insensitive). Unknown values yield INFO and ok=false.
func ParseLevel(level string) (slog.Level, bool) {
	switch strings.ToUpper(strings.TrimSpace(level)) {
	case "TRACE":
		return LevelTrace, true
	case "DEBUG":
		return slog.LevelDebug, true
	case "INFO", "":
		return slog.LevelInfo, true
	case "WARN", "WARNING":
		return slog.LevelWarn, true
	case "ERROR":
		return slog.LevelError, true
	default:
		return slog.LevelInfo, false
	}
}

// LevelString returns the upper-case name of level, including TRACE.
func LevelString(level slog.Level) string {
	switch {
	case level < slog.LevelDebug:
		return "TRACE"
	case level < slog.LevelInfo:
		return "DEBUG"
	case level < slog.LevelWarn:
		return "INFO"
	case level < slog.LevelError:
		return "WARN"
	default:
		return "ERROR"
	}
}

// LevelFromEnv reads AITASK_LOG_LEVEL, falling back to LOG_LEVEL. Unknown
// values print a warning to stderr and yield INFO.
func LevelFromEnv() slog.Level {
	value := os.Getenv("AITASK_LOG_LEVEL")
	if value == "" {
		value = os.Getenv("LOG_LEVEL")
	}
	level, ok := ParseLevel(value)
	if !ok {
		fmt.Fprintf(os.Stderr, "Warning: Unknown log level '%s', using INFO\n", value)
	}
	return level
}

// FormatFromEnv reads AITASK_LOG_FORMAT, falling back to LOG_FORMAT.
func FormatFromEnv() Format {
	if value := os.Getenv("AITASK_LOG_FORMAT"); value != "" {
		return ParseFormat(value)
	}
	return ParseFormat(os.Getenv("LOG_FORMAT"))
}

// Option is a functional option for configuring the Observer.
type Option func(*config)

type config struct {
	format Format
	level  slog.Level
	output io.Writer
	logger *slog.Logger
}

// WithFormat sets the handler format.
func WithFormat(format Format) Option {
	return func(c *config) { c.format = format }
}

// WithLevel sets the minimum log level.
func WithLevel(level slog.Level) Option {
	return func(c *config) { c.level = level }
}

// WithOutput sets where logs are written. Defaults to os.Stderr so that
// command output on stdout stays clean.
func WithOutput(output io.Writer) Option {
	return func(c *config) { c.output = output }
}

// WithLogger uses an existing logger and ignores format, level and output.
func WithLogger(logger *slog.Logger) Option {
	return func(c *config) { c.logger = logger }
}

func applyOptions(opts ...Option) *config {
	cfg := &config{
		format: FormatFromEnv(),
		level:  LevelFromEnv(),
		output: os.Stderr,
	}
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

func (c *config) newLogger() *slog.Logger {
	if c.logger != nil {
		return c.logger
	}
	handlerOpts := &slog.HandlerOptions{
		Level: c.level,
		ReplaceAttr: func(_ []string, attr slog.Attr) slog.Attr {
			if attr.Key == slog.LevelKey {
				if level, ok := attr.Value.Any().(slog.Level); ok {
					attr.Value = slog.StringValue(LevelString(level))
				}
			}
			return attr
		},
	}
	if c.format == FormatJSON {
		return slog.New(slog.NewJSONHandler(c.output, handlerOpts))
	}
	return slog.New(slog.NewTextHandler(c.output, handlerOpts))
}
