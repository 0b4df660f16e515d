package settings

import (
	"fmt"
	"sync"

	"github.com/leofalp/aitask/core/task"
	"github.com/leofalp/aitask/providers/ai"
)

// Provider is what the dispatcher reads from the settings layer.
type Provider interface {
	// HistoryEnabled reports whether successful calls are recorded.
	HistoryEnabled() bool
	// DefaultProvider returns the provider for kind, or ai.ProviderNone.
	DefaultProvider(kind task.Kind) ai.ProviderID
	// DefaultMime returns the output mime type for kind.
	DefaultMime(kind task.Kind) string
	// OutputRoot is the directory for persisted outputs without a path.
	OutputRoot() string
}

// Settings is the thread-safe, mutable view of a Config. Default providers
// and history can be changed at runtime; calls already dispatched keep the
// values they resolved.
type Settings struct {
	mu             sync.RWMutex
	mode           Mode
	historyEnabled bool
	outputRoot     string
	fallback       ai.ProviderID
	providers      map[task.Kind]ai.ProviderID
	mimes          map[task.Kind]string
	cfg            Config
}

var _ Provider = (*Settings)(nil)

// New validates cfg and returns Settings for it.
func New(cfg Config) (*Settings, error) {
	s := &Settings{
		mode:       cfg.Mode,
		outputRoot: cfg.OutputRoot,
		providers:  make(map[task.Kind]ai.ProviderID),
		mimes:      make(map[task.Kind]string),
		cfg:        cfg,
	}

	switch cfg.Mode {
	case "":
		s.mode = ModeRuntime
	case ModeOffline, ModeRuntime:
	default:
		return nil, fmt.Errorf("settings: unknown mode %q", cfg.Mode)
	}
	s.historyEnabled = cfg.History.Enabled == nil || *cfg.History.Enabled

	fallback, err := ai.ParseProvider(cfg.DefaultProvider)
	if err != nil {
		return nil, fmt.Errorf("settings: default_provider: %w", err)
	}
	if fallback == ai.ProviderAll {
		return nil, fmt.Errorf("settings: default_provider cannot be the all wildcard")
	}
	s.fallback = fallback

	for name, value := range cfg.DefaultProviders {
		kind, err := task.ParseKind(name)
		if err != nil {
			return nil, fmt.Errorf("settings: default_providers: %w", err)
		}
		id, err := ai.ParseProvider(value)
		if err != nil {
			return nil, fmt.Errorf("settings: default_providers[%s]: %w", name, err)
		}
		if id == ai.ProviderAll {
			return nil, fmt.Errorf("settings: default_providers[%s] cannot be the all wildcard", name)
		}
		s.providers[kind] = id
	}

	for name, mimeType := range cfg.DefaultMimes {
		kind, err := task.ParseKind(name)
		if err != nil {
			return nil, fmt.Errorf("settings: default_mimes: %w", err)
		}
		s.mimes[kind] = mimeType
	}
	return s, nil
}

// Mode returns the configured mode.
func (s *Settings) Mode() Mode {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.mode
}

// Config returns the configuration the settings were built from. Runtime
// changes are not reflected.
func (s *Settings) Config() Config {
	return s.cfg
}

func (s *Settings) HistoryEnabled() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.mode == ModeOffline || s.historyEnabled
}

// SetHistoryEnabled changes the runtime history setting. It has no effect in
// offline mode, where history is always recorded.
func (s *Settings) SetHistoryEnabled(enabled bool) {
	s.mu.Lock()
	s.historyEnabled = enabled
	s.mu.Unlock()
}

func (s *Settings) DefaultProvider(kind task.Kind) ai.ProviderID {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if id, ok := s.providers[kind]; ok && id != ai.ProviderNone {
		return id
	}
	return s.fallback
}

// SetDefaultProvider changes the default provider for kind. Passing
// ai.ProviderNone clears the kind-specific entry.
func (s *Settings) SetDefaultProvider(kind task.Kind, id ai.ProviderID) error {
	if id == ai.ProviderAll {
		return fmt.Errorf("settings: cannot default %s to the all wildcard", kind)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if id == ai.ProviderNone {
		delete(s.providers, kind)
		return nil
	}
	s.providers[kind] = id
	return nil
}

func (s *Settings) DefaultMime(kind task.Kind) string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if mimeType, ok := s.mimes[kind]; ok && mimeType != "" {
		return mimeType
	}
	return kind.Info().DefaultMime
}

func (s *Settings) OutputRoot() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.outputRoot
}
