package utils

import (
	"strings"
	"testing"
	"time"
)

// TestRepairJSON_ValidUnchanged verifies that valid JSON is returned as-is.
func TestRepairJSON_ValidUnchanged(t *testing.T) {
	input := `{"a": [1, 2]}`
	got, err := RepairJSON(input)
	if err != nil || got != input {
		t.Fatalf("expected unchanged input, got %q (err %v)", got, err)
	}
}

// TestTruncateString verifies truncation and the default length.
func TestTruncateString(t *testing.T) {
	if got := TruncateString("short", 10); got != "short" {
		t.Errorf("expected unchanged string, got %q", got)
	}
	got := TruncateString(strings.Repeat("a", 20), 5)
	if !strings.HasPrefix(got, "aaaaa...") || !strings.Contains(got, "total: 20") {
		t.Errorf("unexpected truncation: %q", got)
	}
	if got := TruncateString(strings.Repeat("b", 600), 0); !strings.Contains(got, "total: 600") {
		t.Errorf("expected default truncation, got %q", got)
	}
}

// TestCompactName verifies whitespace removal.
func TestCompactName(t *testing.T) {
	if got := CompactName(" Stability  AI "); got != "StabilityAI" {
		t.Errorf("expected StabilityAI, got %q", got)
	}
}

// TestTimer_InjectedClock verifies that Stop measures against the clock.
func TestTimer_InjectedClock(t *testing.T) {
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	current := base
	timer := NewTimerWithClock(func() time.Time { return current })
	current = base.Add(250 * time.Millisecond)

	if got := timer.Stop(); got != 250*time.Millisecond {
		t.Fatalf("expected 250ms, got %v", got)
	}
	if timer.Duration() != 250*time.Millisecond {
		t.Errorf("Duration should return the last Stop value")
	}
}

// TestPtr verifies that Ptr returns an independent pointer.
func TestPtr(t *testing.T) {
	value := 0.7
	p := Ptr(value)
	value = 0.1
	if *p != 0.7 {
		t.Errorf("expected 0.7, got %v", *p)
	}
}
