package task

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidInput matches every *InputError.
	ErrInvalidInput = errors.New("aitask: invalid task input")
	// ErrConsumed is returned when a builder's terminal operation is called
	// more than once.
	ErrConsumed = errors.New("aitask: task already executed")
)

// InputError is a caller error detected while building a descriptor. It is
// raised before anything reaches the dispatcher.
type InputError struct {
	Kind   Kind
	Field  string
	Reason string
	Err    error
}

func (e *InputError) Error() string {
	msg := fmt.Sprintf("aitask: invalid %s task: %s", e.Kind, e.Field)
	if e.Reason != "" {
		msg += ": " + e.Reason
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *InputError) Is(target error) bool {
	return target == ErrInvalidInput
}

func (e *InputError) Unwrap() error {
	return e.Err
}

func inputError(kind Kind, field, reason string) *InputError {
	return &InputError{Kind: kind, Field: field, Reason: reason}
}
