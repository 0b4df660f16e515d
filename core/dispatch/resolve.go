package dispatch

import (
	"fmt"

	"github.com/leofalp/aitask/core/executor"
	"github.com/leofalp/aitask/core/output"
	"github.com/leofalp/aitask/core/task"
	"github.com/leofalp/aitask/providers/ai"
)

// Provider sources, reported on the dispatch span.
const (
	sourceModel   = "model"
	sourceRequest = "request"
	sourceCatalog = "catalog"
	sourceDefault = "default"
)

// target is what resolution decided for one call.
type target struct {
	provider ai.ProviderID
	source   string
	model    task.ModelRef
	keyword  string
}

// resolveTarget picks the provider: the model reference's own provider, the
// request's provider, the catalog entry for the model id, then the settings
// default for kind.
func (d *Dispatcher) resolveTarget(kind task.Kind, common task.Common) (target, error) {
	t := target{keyword: kind.Info().Keyword}
	if common.Model != nil {
		t.model = *common.Model
	}

	switch {
	case t.model.Provider.IsDispatchable():
		t.provider, t.source = t.model.Provider, sourceModel
	case common.Provider.IsDispatchable():
		t.provider, t.source = common.Provider, sourceRequest
	}

	if t.model.ID != "" && d.models != nil {
		if entry, ok := d.models.ResolveModel(t.model.ID); ok {
			if t.provider == ai.ProviderNone {
				t.provider, t.source = entry.Provider, sourceCatalog
			}
			if entry.Provider == t.provider {
				if t.model.Name == "" {
					t.model.Name = entry.Name
				}
				if entry.Keyword != "" {
					t.keyword = entry.Keyword
				}
			}
		}
	}

	if t.provider == ai.ProviderNone && d.settings != nil {
		t.provider, t.source = d.settings.DefaultProvider(kind), sourceDefault
	}
	if !t.provider.IsDispatchable() {
		return t, &executor.ConfigError{Provider: t.provider, Kind: kind, Reason: "no provider resolved"}
	}
	t.model.Provider = t.provider
	return t, nil
}

// resolveOutput fills OutputPath and OutputMime on common for media kinds.
// The directory of a persisted output is created before the executor runs.
func (d *Dispatcher) resolveOutput(kind task.Kind, t target, common *task.Common) error {
	if !kind.MediaOutput() {
		return nil
	}

	mimeType := common.OutputMime
	if mimeType == "" && d.settings != nil {
		mimeType = d.settings.DefaultMime(kind)
	}
	if mimeType == "" {
		mimeType = kind.Info().DefaultMime
	}

	resolver := output.Resolver{}
	switch {
	case d.output != nil:
		resolver = *d.output
	case d.settings != nil:
		resolver.Root = d.settings.OutputRoot()
	}

	path, ok, err := resolver.Resolve(common.Persist, common.OutputPath, mimeType, t.provider.DisplayName(), t.keyword)
	if err != nil {
		return fmt.Errorf("dispatch: resolve output for %s: %w", kind, err)
	}
	common.OutputMime = mimeType
	if !ok {
		common.OutputPath = ""
		return nil
	}
	if err := output.EnsureDir(path); err != nil {
		return fmt.Errorf("dispatch: prepare output for %s: %w", kind, err)
	}
	common.OutputPath = path
	return nil
}
