// Package catalog holds model metadata: which provider owns a model, the
// keyword used for its output files, the kinds it serves, and its pricing.
//
// A Catalog is usually read from the "models" section of the aitask YAML
// file:
//
//	models:
//	  - id: eleven_multilingual_v2
//	    name: Multilingual v2
//	    provider: elevenlabs
//	    kinds: [speech]
//	    pricing:
//	      per_million_characters: 180
//
// The dispatcher uses it as its model Resolver and the record builder uses it
// as a cost.Pricer.
package catalog

import (
	"fmt"
	"os"
	"slices"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/leofalp/aitask/core/cost"
	"github.com/leofalp/aitask/core/task"
	"github.com/leofalp/aitask/providers/ai"
)

// Entry describes one model.
type Entry struct {
	ID       string        `yaml:"id"`
	Name     string        `yaml:"name,omitempty"`
	Provider ai.ProviderID `yaml:"provider"`
	// Keyword replaces the kind keyword in synthesized output filenames.
	Keyword string       `yaml:"keyword,omitempty"`
	Kinds   []task.Kind  `yaml:"kinds,omitempty"`
	Pricing cost.Pricing `yaml:"pricing,omitempty"`
	OwnedBy string       `yaml:"owned_by,omitempty"`
}

// Serves reports whether the entry lists kind, or lists no kinds at all.
func (e Entry) Serves(kind task.Kind) bool {
	return len(e.Kinds) == 0 || slices.Contains(e.Kinds, kind)
}

// Info converts the entry into the listing type returned by ListModels.
func (e Entry) Info() task.ModelInfo {
	return task.ModelInfo{
		ID:       e.ID,
		Name:     e.Name,
		Provider: e.Provider,
		Kinds:    slices.Clone(e.Kinds),
		OwnedBy:  e.OwnedBy,
	}
}

// Resolver answers model lookups for the dispatcher.
type Resolver interface {
	// ResolveModel returns the entry for a model id.
	ResolveModel(id string) (Entry, bool)
}

// Catalog is an in-memory model table safe for concurrent use.
type Catalog struct {
	mu      sync.RWMutex
	entries []Entry
	byID    map[string]int
}

var (
	_ Resolver    = (*Catalog)(nil)
	_ cost.Pricer = (*Catalog)(nil)
)

// New returns a catalog holding entries. Entries without an id or with a
// provider that cannot be dispatched to are rejected.
func New(entries ...Entry) (*Catalog, error) {
	c := &Catalog{byID: make(map[string]int)}
	for _, entry := range entries {
		if err := c.Add(entry); err != nil {
			return nil, err
		}
	}
	return c, nil
}

type file struct {
	Models []Entry `yaml:"models"`
}

// Parse reads the "models" section of a YAML document.
func Parse(b []byte) (*Catalog, error) {
	var f file
	if err := yaml.Unmarshal(b, &f); err != nil {
		return nil, fmt.Errorf("catalog: parse: %w", err)
	}
	return New(f.Models...)
}

// Load reads a YAML file. A missing file yields an empty catalog.
func Load(path string) (*Catalog, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return New()
		}
		return nil, fmt.Errorf("catalog: read %s: %w", path, err)
	}
	c, err := Parse(b)
	if err != nil {
		return nil, fmt.Errorf("catalog: %s: %w", path, err)
	}
	return c, nil
}

// Add stores entry. When two providers publish the same model id, lookups by
// id return the first one; use Lookup to address the others.
func (c *Catalog) Add(entry Entry) error {
	if entry.ID == "" {
		return fmt.Errorf("catalog: model without id")
	}
	if !entry.Provider.IsDispatchable() {
		return fmt.Errorf("catalog: model %s: invalid provider %q", entry.ID, entry.Provider)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	for i, existing := range c.entries {
		if existing.ID == entry.ID && existing.Provider == entry.Provider {
			c.entries[i] = entry
			return nil
		}
	}
	c.entries = append(c.entries, entry)
	if _, taken := c.byID[entry.ID]; !taken {
		c.byID[entry.ID] = len(c.entries) - 1
	}
	return nil
}

// ResolveModel implements Resolver.
func (c *Catalog) ResolveModel(id string) (Entry, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	index, ok := c.byID[id]
	if !ok {
		return Entry{}, false
	}
	return c.entries[index], true
}

// Lookup returns the entry published by provider under id.
func (c *Catalog) Lookup(provider ai.ProviderID, id string) (Entry, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, entry := range c.entries {
		if entry.ID == id && entry.Provider == provider {
			return entry, true
		}
	}
	return Entry{}, false
}

// Models lists entries matching provider and kind. ai.ProviderAll and
// task.KindUnknown match everything.
func (c *Catalog) Models(provider ai.ProviderID, kind task.Kind) []task.ModelInfo {
	c.mu.RLock()
	defer c.mu.RUnlock()
	var infos []task.ModelInfo
	for _, entry := range c.entries {
		if provider != ai.ProviderAll && entry.Provider != provider {
			continue
		}
		if kind != task.KindUnknown && !entry.Serves(kind) {
			continue
		}
		infos = append(infos, entry.Info())
	}
	return infos
}

// Estimate implements cost.Pricer using the entry's pricing. Models without
// pricing report ok == false.
func (c *Catalog) Estimate(provider ai.ProviderID, id string, usage *ai.Usage) (float64, bool) {
	entry, ok := c.Lookup(provider, id)
	if !ok || entry.Pricing.IsZero() {
		return 0, false
	}
	return entry.Pricing.Estimate(usage), true
}

// Len returns the number of entries.
func (c *Catalog) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
