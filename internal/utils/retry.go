package utils

import (
	"errors"
	"fmt"
	"io"
	"math"
	"math/rand/v2"
	"net/http"
	"slices"
	"strconv"
	"time"
)

// ErrRetryExhausted is wrapped by RetryTransport when every attempt failed
// with a transport error.
var ErrRetryExhausted = errors.New("retry attempts exhausted")

// RetryConfig tunes RetryTransport. Zero values are replaced with defaults.
type RetryConfig struct {
	// MaxRetries is the number of attempts after the first one. Default: 3.
	MaxRetries int
	// InitialBackoff is the wait before the first retry. Default: 1s.
	InitialBackoff time.Duration
	// MaxBackoff caps the computed backoff. Default: 30s.
	MaxBackoff time.Duration
	// BackoffFactor is the exponential growth per attempt. Default: 2.
	BackoffFactor float64
	// JitterFraction adds up to this fraction of the backoff as noise.
	// Default: 0.1.
	JitterFraction float64
	// RetryableStatus lists the status codes worth retrying. Default: 429,
	// 500, 502, 503 and 529.
	RetryableStatus []int
}

func (c *RetryConfig) applyDefaults() {
	if c.MaxRetries == 0 {
		c.MaxRetries = 3
	}
	if c.InitialBackoff == 0 {
		c.InitialBackoff = time.Second
	}
	if c.MaxBackoff == 0 {
		c.MaxBackoff = 30 * time.Second
	}
	if c.BackoffFactor == 0 {
		c.BackoffFactor = 2.0
	}
	if c.JitterFraction == 0 {
		c.JitterFraction = 0.1
	}
	if c.RetryableStatus == nil {
		c.RetryableStatus = []int{
			http.StatusTooManyRequests,
			http.StatusInternalServerError,
			http.StatusBadGateway,
			http.StatusServiceUnavailable,
			529,
		}
	}
}

// backoff returns the wait before retry number attempt (0-indexed).
func (c RetryConfig) backoff(attempt int) time.Duration {
	base := float64(c.InitialBackoff) * math.Pow(c.BackoffFactor, float64(attempt))
	if base > float64(c.MaxBackoff) {
		base = float64(c.MaxBackoff)
	}
	jitter := base * c.JitterFraction * rand.Float64() //nolint:gosec // non-cryptographic jitter
	return time.Duration(base + jitter)
}

// RetryTransport is an http.RoundTripper that retries transient failures
// with exponential backoff. Requests whose body cannot be replayed are sent
// once. The last retryable response is returned as is so callers still see
// the vendor's error body.
type RetryTransport struct {
	next   http.RoundTripper
	config RetryConfig
}

// NewRetryTransport wraps next, or http.DefaultTransport when next is nil.
func NewRetryTransport(next http.RoundTripper, config RetryConfig) *RetryTransport {
	if next == nil {
		next = http.DefaultTransport
	}
	config.applyDefaults()
	return &RetryTransport{next: next, config: config}
}

// RoundTrip implements http.RoundTripper.
func (t *RetryTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	replayable := req.Body == nil || req.Body == http.NoBody || req.GetBody != nil
	ctx := req.Context()

	var lastErr error
	for attempt := 0; ; attempt++ {
		attemptReq := req
		if attempt > 0 && req.GetBody != nil {
			body, err := req.GetBody()
			if err != nil {
				return nil, fmt.Errorf("retry: rewind body: %w", err)
			}
			attemptReq = req.Clone(ctx)
			attemptReq.Body = body
		}

		resp, err := t.next.RoundTrip(attemptReq)
		last := !replayable || attempt >= t.config.MaxRetries
		switch {
		case err != nil:
			lastErr = err
			if last || ctx.Err() != nil {
				if attempt == 0 {
					return nil, err
				}
				return nil, fmt.Errorf("%w after %d retries: %w", ErrRetryExhausted, attempt, lastErr)
			}
		case !slices.Contains(t.config.RetryableStatus, resp.StatusCode) || last:
			return resp, nil
		}

		wait := t.config.backoff(attempt)
		if resp != nil {
			if after := retryAfter(resp.Header.Get("Retry-After")); after > 0 {
				wait = min(after, t.config.MaxBackoff)
			}
			_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
			CloseWithLog(resp.Body)
		}

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
	}
}

// retryAfter parses the delay-seconds form of Retry-After.
func retryAfter(value string) time.Duration {
	seconds, err := strconv.Atoi(value)
	if err != nil || seconds <= 0 {
		return 0
	}
	return time.Duration(seconds) * time.Second
}
