package utils

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

// ---- SSEScanner tests -------------------------------------------------------

// TestSSEScanner_Payloads verifies event framing, comments, multi-line data
// and the [DONE] sentinel.
func TestSSEScanner_Payloads(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{name: "single", input: "data: hello\n\n", want: []string{"hello"}},
		{name: "multiple", input: "data: first\n\ndata: second\n\n", want: []string{"first", "second"}},
		{name: "multi-line", input: "data: line1\ndata: line2\n\n", want: []string{"line1\nline2"}},
		{name: "comments", input: ": ping\ndata: real\n\n", want: []string{"real"}},
		{name: "other fields", input: "event: delta\nid: 3\ndata: x\n\n", want: []string{"x"}},
		{name: "done sentinel", input: "data: a\n\ndata: [DONE]\n\ndata: never\n\n", want: []string{"a"}},
		{name: "no trailing blank line", input: "data: tail", want: []string{"tail"}},
		{name: "empty", input: "", want: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			scanner := NewSSEScanner(strings.NewReader(tt.input))
			var got []string
			for {
				payload, err := scanner.Next()
				if err == io.EOF {
					break
				}
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				got = append(got, payload)
			}
			if strings.Join(got, "|") != strings.Join(tt.want, "|") {
				t.Errorf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

// TestSSEScanner_LineTooLong verifies that oversized lines surface an error.
func TestSSEScanner_LineTooLong(t *testing.T) {
	input := "data: " + strings.Repeat("x", maxSSELineSize+1) + "\n\n"
	_, err := NewSSEScanner(strings.NewReader(input)).Next()
	if err == nil || err == io.EOF {
		t.Fatalf("expected scanner error, got %v", err)
	}
}

// ---- DoPostStream tests -----------------------------------------------------

// TestDoPostStream_Success verifies that the body is left open for reading
// and the SSE accept header is sent.
func TestDoPostStream_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Accept"); got != "text/event-stream" {
			t.Errorf("expected SSE accept header, got %q", got)
		}
		w.Header().Set("Content-Type", "text/event-stream")
		fmt.Fprint(w, "data: one\n\ndata: [DONE]\n\n")
	}))
	defer server.Close()

	response, err := DoPostStream(context.Background(), server.Client(), server.URL, "k", map[string]bool{"stream": true})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer CloseWithLog(response.Body)

	payload, err := NewSSEScanner(response.Body).Next()
	if err != nil || payload != "one" {
		t.Errorf("expected one, got %q (%v)", payload, err)
	}
}

// TestDoPostStream_Non2xx verifies that error bodies are returned in a
// *StatusError.
func TestDoPostStream_Non2xx(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		fmt.Fprint(w, "slow down")
	}))
	defer server.Close()

	_, err := DoPostStream(context.Background(), server.Client(), server.URL, "", nil)
	var statusErr *StatusError
	if !errors.As(err, &statusErr) || statusErr.StatusCode != http.StatusTooManyRequests {
		t.Fatalf("expected 429 status error, got %v", err)
	}
}
