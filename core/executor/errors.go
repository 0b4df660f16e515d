package executor

import (
	"errors"
	"fmt"

	"github.com/leofalp/aitask/core/task"
	"github.com/leofalp/aitask/providers/ai"
)

var (
	// ErrUnsupported matches every *UnsupportedError.
	ErrUnsupported = errors.New("aitask: operation not supported by provider")
	// ErrNotConfigured matches every *ConfigError.
	ErrNotConfigured = errors.New("aitask: provider not configured")
)

// UnsupportedError reports that a registered executor does not implement a
// task kind.
type UnsupportedError struct {
	Provider ai.ProviderID
	Kind     task.Kind
}

func (e *UnsupportedError) Error() string {
	return fmt.Sprintf("aitask: %s does not support %s", e.Provider.DisplayName(), e.Kind)
}

func (e *UnsupportedError) Is(target error) bool {
	return target == ErrUnsupported
}

// ConfigError reports that no executor could serve a call: either no
// provider could be resolved for the kind, or the resolved provider has no
// registered executor. It is never retried.
type ConfigError struct {
	Provider ai.ProviderID
	Kind     task.Kind
	Reason   string
}

func (e *ConfigError) Error() string {
	reason := e.Reason
	if reason == "" {
		reason = "no executor registered"
	}
	msg := fmt.Sprintf("aitask: %s for provider %s", reason, e.Provider.DisplayName())
	if e.Kind != task.KindUnknown {
		msg += fmt.Sprintf(" (task %s)", e.Kind)
	}
	return msg
}

func (e *ConfigError) Is(target error) bool {
	return target == ErrNotConfigured
}
