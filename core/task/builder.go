package task

import (
	"strings"

	"github.com/leofalp/aitask/core/content"
	"github.com/leofalp/aitask/providers/ai"
)

// builder carries the setters shared by every descriptor builder. B is the
// concrete builder type so setters can return it for chaining.
//
// A builder is owned by one goroutine and consumed once: the first terminal
// call (Build, Execute or Stream) marks it consumed and later calls return
// ErrConsumed. Setter failures are recorded and the first one is returned by
// Build.
type builder[B any] struct {
	self     B
	kind     Kind
	common   Common
	err      error
	consumed bool
}

func (b *builder[B]) init(self B, kind Kind) {
	b.self = self
	b.kind = kind
	b.common.Count = 1
}

// fail records a caller error; the first one wins.
func (b *builder[B]) fail(err *InputError) {
	if b.err == nil {
		b.err = err
	}
}

// Model targets a specific model. The provider is taken from ref when set.
func (b *builder[B]) Model(ref ModelRef) B {
	if strings.TrimSpace(ref.ID) == "" {
		b.fail(inputError(b.kind, "model", "empty model id"))
		return b.self
	}
	b.common.Model = &ref
	return b.self
}

// ModelID is shorthand for Model(ModelRef{ID: id}).
func (b *builder[B]) ModelID(id string) B {
	return b.Model(ModelRef{ID: id})
}

// Provider selects a vendor without naming a model.
func (b *builder[B]) Provider(id ai.ProviderID) B {
	if id == ai.ProviderAll {
		b.fail(inputError(b.kind, "provider", "the all wildcard cannot be dispatched"))
		return b.self
	}
	b.common.Provider = id
	return b.self
}

// N sets the number of outputs to generate.
func (b *builder[B]) N(n int) B {
	if n < 1 {
		b.fail(inputError(b.kind, "n", "must be at least 1"))
		return b.self
	}
	b.common.Count = n
	return b.self
}

// SaveTo persists the output to path, a file or a directory. It enables
// persistence; an empty path is an error.
func (b *builder[B]) SaveTo(path string) B {
	if strings.TrimSpace(path) == "" {
		b.fail(inputError(b.kind, "output path", "empty path"))
		return b.self
	}
	b.common.OutputPath = path
	b.common.Persist = true
	return b.self
}

// Persist toggles persistence. Without a path, outputs go to the configured
// output root.
func (b *builder[B]) Persist(persist bool) B {
	b.common.Persist = persist
	return b.self
}

// OutputMime sets the requested output format, e.g. "audio/wav".
func (b *builder[B]) OutputMime(mimeType string) B {
	b.common.OutputMime = mimeType
	return b.self
}

// Sender tags the request with its origin.
func (b *builder[B]) Sender(sender string) B {
	b.common.Sender = sender
	return b.self
}

// Option stores a provider-specific option.
func (b *builder[B]) Option(key string, value Value) B {
	if strings.TrimSpace(key) == "" {
		b.fail(inputError(b.kind, "option", "empty key"))
		return b.self
	}
	if value.Type() == ValueInvalid {
		b.fail(inputError(b.kind, "option "+key, "missing value"))
		return b.self
	}
	b.common.Options.Set(key, value)
	return b.self
}

// shared returns the validated common fields with an independent option bag.
func (b *builder[B]) shared() (Common, error) {
	if b.err != nil {
		return Common{}, b.err
	}
	common := b.common
	if common.Model != nil {
		ref := *common.Model
		common.Model = &ref
	}
	common.Options = common.Options.Clone()
	return common, nil
}

// consume marks the builder as used by a terminal call.
func (b *builder[B]) consume() error {
	if b.consumed {
		return ErrConsumed
	}
	b.consumed = true
	return nil
}

// loadFile opens path as content for field, recording a caller error when
// the file is missing or of the wrong modality. HTML files arrive as
// Markdown text.
func (b *builder[B]) loadFile(field, path string, want ai.Modality) content.Content {
	c, err := content.Open(path)
	if err != nil {
		b.fail(&InputError{Kind: b.kind, Field: field, Err: err})
		return nil
	}
	return b.accept(field, c, want)
}

// accept validates in-memory content for field.
func (b *builder[B]) accept(field string, c content.Content, want ai.Modality) content.Content {
	if content.IsZero(c) {
		b.fail(&InputError{Kind: b.kind, Field: field, Err: content.ErrNilData})
		return nil
	}
	if want != "" && c.Type() != want && c.Type() != ai.ModalityFile {
		b.fail(inputError(b.kind, field, "expected "+string(want)+" content, got "+string(c.Type())))
		return nil
	}
	return c
}

// require records a caller error when value is blank.
func (b *builder[B]) require(field, value string) {
	if strings.TrimSpace(value) == "" {
		b.fail(inputError(b.kind, field, "required"))
	}
}

// requireContent records a caller error when c is missing.
func (b *builder[B]) requireContent(field string, c content.Content) {
	if c == nil {
		b.fail(inputError(b.kind, field, "required"))
	}
}
