package utils

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"
)

// fastRetry keeps test backoffs short.
var fastRetry = RetryConfig{MaxRetries: 2, InitialBackoff: time.Millisecond, MaxBackoff: 5 * time.Millisecond}

// ---- RetryTransport tests ----

// TestRetryTransport verifies which responses are retried and how often.
func TestRetryTransport(t *testing.T) {
	tests := []struct {
		name      string
		statuses  []int
		wantCalls int32
		wantCode  int
	}{
		{"success first try", []int{200}, 1, 200},
		{"recovers after 503", []int{503, 429, 200}, 3, 200},
		{"gives up with last response", []int{500, 500, 500, 500}, 3, 500},
		{"client error not retried", []int{400, 200}, 1, 400},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var calls atomic.Int32
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				n := calls.Add(1)
				body, _ := io.ReadAll(r.Body)
				if string(body) != "payload" {
					t.Errorf("attempt %d: unexpected body %q", n, body)
				}
				w.WriteHeader(tt.statuses[n-1])
			}))
			defer server.Close()

			client := &http.Client{Transport: NewRetryTransport(nil, fastRetry)}
			resp, err := client.Post(server.URL, "text/plain", strings.NewReader("payload"))
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			CloseWithLog(resp.Body)

			if resp.StatusCode != tt.wantCode {
				t.Errorf("expected status %d, got %d", tt.wantCode, resp.StatusCode)
			}
			if calls.Load() != tt.wantCalls {
				t.Errorf("expected %d calls, got %d", tt.wantCalls, calls.Load())
			}
		})
	}
}

type failingTransport struct{ calls int }

func (f *failingTransport) RoundTrip(*http.Request) (*http.Response, error) {
	f.calls++
	return nil, errors.New("connection reset")
}

// TestRetryTransport_Exhausted verifies transport errors wrap ErrRetryExhausted.
func TestRetryTransport_Exhausted(t *testing.T) {
	next := &failingTransport{}
	transport := NewRetryTransport(next, fastRetry)

	req, _ := http.NewRequest(http.MethodGet, "http://example.invalid", nil)
	_, err := transport.RoundTrip(req)
	if !errors.Is(err, ErrRetryExhausted) {
		t.Fatalf("expected ErrRetryExhausted, got %v", err)
	}
	if next.calls != 3 {
		t.Errorf("expected 3 calls, got %d", next.calls)
	}
}

// TestRetryTransport_Canceled verifies the wait honours cancellation.
func TestRetryTransport_Canceled(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	slow := RetryConfig{MaxRetries: 3, InitialBackoff: time.Hour, MaxBackoff: time.Hour}
	req, _ := http.NewRequestWithContext(ctx, http.MethodGet, server.URL, nil)
	_, err := NewRetryTransport(nil, slow).RoundTrip(req)
	if err == nil {
		t.Fatal("expected an error")
	}
}

// TestRetryAfter verifies Retry-After parsing.
func TestRetryAfter(t *testing.T) {
	tests := []struct {
		value string
		want  time.Duration
	}{
		{"", 0},
		{"2", 2 * time.Second},
		{"-1", 0},
		{"Wed, 21 Oct 2015 07:28:00 GMT", 0},
	}
	for _, tt := range tests {
		if got := retryAfter(tt.value); got != tt.want {
			t.Errorf("retryAfter(%q) = %v, want %v", tt.value, got, tt.want)
		}
	}
}

// TestRetryConfig_Backoff verifies the cap is honoured.
func TestRetryConfig_Backoff(t *testing.T) {
	cfg := RetryConfig{InitialBackoff: time.Second, MaxBackoff: 3 * time.Second}
	cfg.applyDefaults()
	for attempt := range 5 {
		got := cfg.backoff(attempt)
		if got > 3*time.Second+300*time.Millisecond {
			t.Errorf("attempt %d: backoff %v exceeds cap plus jitter", attempt, got)
		}
	}
}
