package utils

import "time"

// Timer measures elapsed wall-clock time. The zero value is not started; use
// NewTimer.
type Timer struct {
	now       func() time.Time
	startTime time.Time
	duration  time.Duration
}

// NewTimer starts a timer on the wall clock.
func NewTimer() *Timer {
	return NewTimerWithClock(time.Now)
}

// NewTimerWithClock starts a timer on a custom clock, used by tests and by
// components that accept an injected clock.
func NewTimerWithClock(now func() time.Time) *Timer {
	if now == nil {
		now = time.Now
	}
	return &Timer{now: now, startTime: now()}
}

// Stop captures and returns the elapsed time since the timer started.
func (t *Timer) Stop() time.Duration {
	t.duration = t.now().Sub(t.startTime)
	return t.duration
}

// Duration returns the value captured by the last Stop, or zero.
func (t *Timer) Duration() time.Duration {
	return t.duration
}
