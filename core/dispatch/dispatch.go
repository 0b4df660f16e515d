package dispatch

import (
	"log/slog"
	"time"

	"github.com/leofalp/aitask/core/catalog"
	"github.com/leofalp/aitask/core/cost"
	"github.com/leofalp/aitask/core/executor"
	"github.com/leofalp/aitask/core/history"
	"github.com/leofalp/aitask/core/output"
	"github.com/leofalp/aitask/core/settings"
	"github.com/leofalp/aitask/core/task"
	"github.com/leofalp/aitask/providers/ai"
	"github.com/leofalp/aitask/providers/observability"
)

// Dispatcher is safe for concurrent use. Calls share nothing but the
// collaborators passed to New.
type Dispatcher struct {
	registry *executor.Registry
	models   catalog.Resolver
	settings settings.Provider
	pricer   cost.Pricer
	history  history.Store
	output   *output.Resolver
	observer observability.Provider
	logger   *slog.Logger
	now      func() time.Time
}

var _ task.Runner = (*Dispatcher)(nil)

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithModels sets the model catalog used to find a model's provider, display
// name and filename keyword.
func WithModels(models catalog.Resolver) Option {
	return func(d *Dispatcher) { d.models = models }
}

// WithSettings sets the source of default providers, default output mime
// types, the output root and the history switch.
func WithSettings(s settings.Provider) Option {
	return func(d *Dispatcher) { d.settings = s }
}

// WithPricing sets the cost estimator for records. When unset, a model
// catalog that can price models is used.
func WithPricing(pricer cost.Pricer) Option {
	return func(d *Dispatcher) { d.pricer = pricer }
}

// WithHistory sets the store records are appended to. Without one no
// records are built.
func WithHistory(store history.Store) Option {
	return func(d *Dispatcher) { d.history = store }
}

// WithOutput overrides the output resolver. By default the settings'
// output root is used.
func WithOutput(resolver *output.Resolver) Option {
	return func(d *Dispatcher) { d.output = resolver }
}

// WithObserver sets the observability provider for spans, metrics and logs.
func WithObserver(observer observability.Provider) Option {
	return func(d *Dispatcher) { d.observer = observer }
}

// WithLogger sets the logger used when no observer is configured.
func WithLogger(logger *slog.Logger) Option {
	return func(d *Dispatcher) { d.logger = logger }
}

// WithClock sets the time source for record timestamps and durations.
func WithClock(now func() time.Time) Option {
	return func(d *Dispatcher) { d.now = now }
}

// New returns a dispatcher over registry.
func New(registry *executor.Registry, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		registry: registry,
		logger:   slog.Default(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(d)
	}
	if d.registry == nil {
		d.registry = executor.NewRegistry(executor.WithLogger(d.logger))
	}
	if d.pricer == nil {
		if pricer, ok := d.models.(cost.Pricer); ok {
			d.pricer = pricer
		}
	}
	return d
}

// Registry returns the executor registry.
func (d *Dispatcher) Registry() *executor.Registry {
	return d.registry
}

// ResolveProvider reports which provider a request of kind with common would
// be routed to, without calling anything.
func (d *Dispatcher) ResolveProvider(kind task.Kind, common task.Common) (ai.ProviderID, error) {
	target, err := d.resolveTarget(kind, common)
	if err != nil {
		return ai.ProviderNone, err
	}
	return target.provider, nil
}
