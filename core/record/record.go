package record

import (
	"errors"
	"maps"
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/leofalp/aitask/core/content"
	"github.com/leofalp/aitask/core/task"
	"github.com/leofalp/aitask/providers/ai"
)

// ErrFrozen is returned when a Builder is modified after Build.
var ErrFrozen = errors.New("aitask: record already built")

// Item is one serialized piece of input or output content.
type Item struct {
	Type ai.Modality `json:"type"`
	// Role is the chat role for conversation items, or "tool_call".
	Role string `json:"role,omitempty"`
	Text string `json:"text,omitempty"`
	Name string `json:"name,omitempty"`
	Mime string `json:"mime,omitempty"`
	Path string `json:"path,omitempty"`
	Size int64  `json:"size,omitempty"`
}

// TextItem returns a text item with an optional role.
func TextItem(role ai.MessageRole, text string) Item {
	return Item{Type: ai.ModalityText, Role: string(role), Text: text}
}

// ContentItem serializes c. Text contents keep their value; media contents
// keep their metadata only.
func ContentItem(c content.Content) Item {
	switch v := c.(type) {
	case content.Text:
		return Item{Type: ai.ModalityText, Text: v.Value, Name: v.Label}
	case *content.Text:
		return Item{Type: ai.ModalityText, Text: v.Value, Name: v.Label}
	}
	size := c.Size()
	if size < 0 {
		size = 0
	}
	return Item{
		Type: c.Type(),
		Name: c.Name(),
		Mime: c.MimeType(),
		Path: c.Path(),
		Size: size,
	}
}

// Record is the immutable snapshot of a completed task.
type Record struct {
	ID        string            `json:"id"`
	Kind      task.Kind         `json:"kind"`
	Sender    string            `json:"sender,omitempty"`
	CreatedAt time.Time         `json:"created_at"`
	Provider  ai.ProviderID     `json:"provider"`
	ModelID   string            `json:"model_id,omitempty"`
	ModelName string            `json:"model_name,omitempty"`
	Options   map[string]string `json:"options,omitempty"`
	Usage     *ai.Usage         `json:"usage,omitempty"`
	// Cost is the estimated price in USD; zero when the model is unpriced.
	Cost   float64 `json:"cost_usd"`
	Input  []Item  `json:"input"`
	Output []Item  `json:"output"`
}

// Clone returns a deep copy of r.
func (r Record) Clone() Record {
	r.Options = maps.Clone(r.Options)
	r.Input = slices.Clone(r.Input)
	r.Output = slices.Clone(r.Output)
	if r.Usage != nil {
		usage := *r.Usage
		r.Usage = &usage
	}
	return r
}

// Builder assembles a Record. Input and output lists only grow, and the
// builder is frozen by Build.
type Builder struct {
	rec    Record
	frozen bool
}

// NewBuilder starts a record for kind with a fresh id.
func NewBuilder(kind task.Kind) *Builder {
	return &Builder{rec: Record{ID: uuid.NewString(), Kind: kind}}
}

func (b *Builder) ID(id string) *Builder {
	if !b.frozen && id != "" {
		b.rec.ID = id
	}
	return b
}

func (b *Builder) Sender(sender string) *Builder {
	if !b.frozen {
		b.rec.Sender = sender
	}
	return b
}

func (b *Builder) CreatedAt(t time.Time) *Builder {
	if !b.frozen {
		b.rec.CreatedAt = t.UTC()
	}
	return b
}

func (b *Builder) Provider(id ai.ProviderID) *Builder {
	if !b.frozen {
		b.rec.Provider = id
	}
	return b
}

func (b *Builder) Model(id, name string) *Builder {
	if !b.frozen {
		b.rec.ModelID = id
		b.rec.ModelName = name
	}
	return b
}

// Options stores the flattened option bag.
func (b *Builder) Options(opts task.Options) *Builder {
	if !b.frozen {
		flat := opts.Flatten()
		if len(flat) == 0 {
			flat = nil
		}
		b.rec.Options = flat
	}
	return b
}

func (b *Builder) Usage(usage *ai.Usage) *Builder {
	if !b.frozen && !usage.IsZero() {
		copied := *usage
		b.rec.Usage = &copied
	}
	return b
}

func (b *Builder) Cost(usd float64) *Builder {
	if !b.frozen {
		b.rec.Cost = usd
	}
	return b
}

// Input appends input items. Empty text items are skipped.
func (b *Builder) Input(items ...Item) *Builder {
	if !b.frozen {
		b.rec.Input = appendItems(b.rec.Input, items)
	}
	return b
}

// Output appends output items. Empty text items are skipped.
func (b *Builder) Output(items ...Item) *Builder {
	if !b.frozen {
		b.rec.Output = appendItems(b.rec.Output, items)
	}
	return b
}

// InputContent appends serialized contents, skipping zero values.
func (b *Builder) InputContent(contents ...content.Content) *Builder {
	return b.Input(contentItems(contents)...)
}

// OutputContent appends serialized contents, skipping zero values.
func (b *Builder) OutputContent(contents ...content.Content) *Builder {
	return b.Output(contentItems(contents)...)
}

func contentItems(contents []content.Content) []Item {
	items := make([]Item, 0, len(contents))
	for _, c := range contents {
		if content.IsZero(c) {
			continue
		}
		items = append(items, ContentItem(c))
	}
	return items
}

func appendItems(dst, items []Item) []Item {
	for _, item := range items {
		if item.Type == ai.ModalityText && item.Text == "" && item.Path == "" {
			continue
		}
		dst = append(dst, item)
	}
	return dst
}

// Build freezes the builder and returns the record. Later calls return
// ErrFrozen.
func (b *Builder) Build() (Record, error) {
	if b.frozen {
		return Record{}, ErrFrozen
	}
	b.frozen = true
	if b.rec.CreatedAt.IsZero() {
		b.rec.CreatedAt = time.Now().UTC()
	}
	if b.rec.Input == nil {
		b.rec.Input = []Item{}
	}
	if b.rec.Output == nil {
		b.rec.Output = []Item{}
	}
	return b.rec.Clone(), nil
}
