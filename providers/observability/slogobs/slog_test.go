package slogobs

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/leofalp/aitask/providers/observability"
)

func newTestObserver(buf *bytes.Buffer, level slog.Level) *Observer {
	return New(WithOutput(buf), WithLevel(level), WithFormat(FormatText))
}

// TestParseLevel verifies level parsing, including TRACE and unknown values.
func TestParseLevel(t *testing.T) {
	tests := []struct {
		input  string
		want   slog.Level
		wantOK bool
	}{
		{"TRACE", LevelTrace, true},
		{"debug", slog.LevelDebug, true},
		{"  DeBuG  ", slog.LevelDebug, true},
		{"info", slog.LevelInfo, true},
		{"", slog.LevelInfo, true},
		{"warning", slog.LevelWarn, true},
		{"WARN", slog.LevelWarn, true},
		{"error", slog.LevelError, true},
		{"verbose", slog.LevelInfo, false},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, ok := ParseLevel(tt.input)
			if got != tt.want || ok != tt.wantOK {
				t.Errorf("ParseLevel(%q) = %v, %v; want %v, %v", tt.input, got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

// TestLevelFromEnv verifies that AITASK_LOG_LEVEL wins over LOG_LEVEL.
func TestLevelFromEnv(t *testing.T) {
	t.Setenv("AITASK_LOG_LEVEL", "error")
	t.Setenv("LOG_LEVEL", "debug")
	if got := LevelFromEnv(); got != slog.LevelError {
		t.Fatalf("expected ERROR, got %v", got)
	}

	t.Setenv("AITASK_LOG_LEVEL", "")
	if got := LevelFromEnv(); got != slog.LevelDebug {
		t.Fatalf("expected fallback to LOG_LEVEL, got %v", got)
	}
}

// TestFormatFromEnv verifies format selection from the environment.
func TestFormatFromEnv(t *testing.T) {
	t.Setenv("AITASK_LOG_FORMAT", "JSON")
	if got := FormatFromEnv(); got != FormatJSON {
		t.Fatalf("expected json, got %v", got)
	}
	t.Setenv("AITASK_LOG_FORMAT", "")
	t.Setenv("LOG_FORMAT", "")
	if got := FormatFromEnv(); got != FormatText {
		t.Fatalf("expected text default, got %v", got)
	}
}

// TestLevelString verifies upper-case level names.
func TestLevelString(t *testing.T) {
	if LevelString(LevelTrace) != "TRACE" || LevelString(slog.LevelWarn) != "WARN" {
		t.Fatal("unexpected level names")
	}
}

// ========== Observer ==========

// TestObserver_SpanLifecycle verifies start and end lines and that the span
// is attached to the returned context.
func TestObserver_SpanLifecycle(t *testing.T) {
	var buf bytes.Buffer
	obs := newTestObserver(&buf, slog.LevelDebug)

	ctx, span := obs.StartSpan(context.Background(), "dispatch.speech",
		observability.String(observability.AttrProvider, "openai"))
	if observability.SpanFromContext(ctx) != span {
		t.Fatal("expected span in returned context")
	}

	span.SetAttributes(observability.String(observability.AttrModel, "tts-1"))
	span.SetStatus(observability.StatusOK, "")
	span.End()
	span.End()

	output := buf.String()
	for _, want := range []string{"span.start", "span.end", "dispatch.speech", "aitask.provider=openai", "aitask.model=tts-1", "status=ok"} {
		if !strings.Contains(output, want) {
			t.Errorf("expected %q in output:\n%s", want, output)
		}
	}
	if strings.Count(output, "span.end") != 1 {
		t.Errorf("expected a single end line, got:\n%s", output)
	}
}

// TestObserver_FailedSpanEndsAtWarn verifies that error spans stay visible
// at the default level.
func TestObserver_FailedSpanEndsAtWarn(t *testing.T) {
	var buf bytes.Buffer
	obs := newTestObserver(&buf, slog.LevelInfo)

	_, span := obs.StartSpan(context.Background(), "dispatch.chat")
	span.RecordError(errors.New("no executor"))
	span.SetStatus(observability.StatusError, "no executor")
	span.End()

	output := buf.String()
	if !strings.Contains(output, "level=WARN") || !strings.Contains(output, "no executor") {
		t.Fatalf("expected warn line with error, got:\n%s", output)
	}
	if strings.Contains(output, "span.start") {
		t.Fatalf("expected debug start line to be filtered, got:\n%s", output)
	}
}

// TestObserver_Metrics verifies counter and histogram aggregation.
func TestObserver_Metrics(t *testing.T) {
	var buf bytes.Buffer
	obs := newTestObserver(&buf, slog.LevelInfo)
	ctx := context.Background()

	obs.Counter(observability.MetricDispatchCount).Add(ctx, 1)
	obs.Counter(observability.MetricDispatchCount).Add(ctx, 2)
	obs.Histogram(observability.MetricDispatchDuration).Record(ctx, 0.5)
	obs.Histogram(observability.MetricDispatchDuration).Record(ctx, 1.5)

	if got := obs.CounterValue(observability.MetricDispatchCount); got != 3 {
		t.Errorf("counter = %d, want 3", got)
	}
	count, sum := obs.HistogramStats(observability.MetricDispatchDuration)
	if count != 2 || sum != 2.0 {
		t.Errorf("histogram = (%d, %v), want (2, 2)", count, sum)
	}
}

// TestObserver_LogLevels verifies level filtering and JSON output.
func TestObserver_LogLevels(t *testing.T) {
	var buf bytes.Buffer
	obs := New(WithOutput(&buf), WithLevel(slog.LevelInfo), WithFormat(FormatJSON))
	ctx := context.Background()

	obs.Trace(ctx, "trace message")
	obs.Debug(ctx, "debug message")
	obs.Info(ctx, "info message", observability.String(observability.AttrTaskKind, "chat"))
	obs.Warn(ctx, "warn message")
	obs.Error(ctx, "error message")

	output := buf.String()
	if strings.Contains(output, "trace message") || strings.Contains(output, "debug message") {
		t.Errorf("expected trace and debug to be filtered:\n%s", output)
	}
	for _, want := range []string{`"msg":"info message"`, `"aitask.kind":"chat"`, `"level":"WARN"`, `"level":"ERROR"`} {
		if !strings.Contains(output, want) {
			t.Errorf("expected %s in output:\n%s", want, output)
		}
	}
}

// TestObserver_WithLogger verifies that a provided logger is used as-is.
func TestObserver_WithLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	obs := New(WithLogger(logger))
	if obs.Logger() != logger {
		t.Fatal("expected the provided logger")
	}
	obs.Info(context.Background(), "hello")
	if !strings.Contains(buf.String(), "hello") {
		t.Fatalf("expected message in provided logger output, got %q", buf.String())
	}
}
