// Package utils holds small helpers shared across aitask: tolerant string
// parsing with JSON repair, log-friendly string helpers, pointers, and a
// clock-injectable timer.
package utils
