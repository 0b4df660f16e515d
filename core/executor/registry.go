package executor

import (
	"log/slog"
	"slices"
	"sync"

	"github.com/leofalp/aitask/core/task"
	"github.com/leofalp/aitask/providers/ai"
)

// Registry maps provider ids to executors. It is append-only: the first
// executor registered for a provider stays for the registry's lifetime.
type Registry struct {
	mu        sync.RWMutex
	executors map[ai.ProviderID]Executor
	logger    *slog.Logger
}

// RegistryOption configures a Registry.
type RegistryOption func(*Registry)

// WithLogger sets the logger used for registration warnings. Defaults to
// slog.Default().
func WithLogger(logger *slog.Logger) RegistryOption {
	return func(r *Registry) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// NewRegistry returns an empty registry.
func NewRegistry(opts ...RegistryOption) *Registry {
	r := &Registry{
		executors: make(map[ai.ProviderID]Executor),
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Register adds exec under its own provider id. See RegisterAs.
func (r *Registry) Register(exec Executor) bool {
	if exec == nil {
		r.logger.Warn("Executor registration rejected", slog.String("reason", "nil executor"))
		return false
	}
	return r.RegisterAs(exec.Provider(), exec)
}

// RegisterAs adds exec under id and reports whether it was stored. A second
// registration for the same id is ignored with a warning, as are nil
// executors and ids that cannot be dispatched to.
func (r *Registry) RegisterAs(id ai.ProviderID, exec Executor) bool {
	if exec == nil {
		r.logger.Warn("Executor registration rejected",
			slog.String("provider", id.String()),
			slog.String("reason", "nil executor"),
		)
		return false
	}
	if !id.IsDispatchable() {
		r.logger.Warn("Executor registration rejected",
			slog.String("provider", id.String()),
			slog.String("reason", "provider id cannot be dispatched to"),
		)
		return false
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.executors[id]; exists {
		r.logger.Warn("Executor already registered, keeping the first one",
			slog.String("provider", id.String()),
		)
		return false
	}
	r.executors[id] = exec
	r.logger.Debug("Executor registered", slog.String("provider", id.String()))
	return true
}

// Resolve returns the executor for id, or a *ConfigError naming it.
func (r *Registry) Resolve(id ai.ProviderID) (Executor, error) {
	return r.ResolveFor(id, task.KindUnknown)
}

// ResolveFor is Resolve with the task kind recorded in the error.
func (r *Registry) ResolveFor(id ai.ProviderID, kind task.Kind) (Executor, error) {
	if !id.IsDispatchable() {
		return nil, &ConfigError{Provider: id, Kind: kind, Reason: "no provider resolved"}
	}
	r.mu.RLock()
	exec, ok := r.executors[id]
	r.mu.RUnlock()
	if !ok {
		return nil, &ConfigError{Provider: id, Kind: kind}
	}
	return exec, nil
}

// Providers returns the registered ids in sorted order.
func (r *Registry) Providers() []ai.ProviderID {
	r.mu.RLock()
	ids := make([]ai.ProviderID, 0, len(r.executors))
	for id := range r.executors {
		ids = append(ids, id)
	}
	r.mu.RUnlock()
	slices.Sort(ids)
	return ids
}

// Len returns the number of registered executors.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.executors)
}
