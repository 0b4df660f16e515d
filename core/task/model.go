package task

import (
	"encoding/json"

	"github.com/leofalp/aitask/core/content"
	"github.com/leofalp/aitask/providers/ai"
)

// ModelRef points at a model. Provider may be empty, in which case the
// dispatcher asks the model catalog and then the per-kind default.
type ModelRef struct {
	ID       string        `json:"id" yaml:"id"`
	Name     string        `json:"name,omitempty" yaml:"name,omitempty"`
	Provider ai.ProviderID `json:"provider,omitempty" yaml:"provider,omitempty"`
}

// Ref is shorthand for a ModelRef with an explicit provider.
func Ref(provider ai.ProviderID, id string) ModelRef {
	return ModelRef{ID: id, Provider: provider}
}

// DisplayName returns Name, falling back to ID.
func (m ModelRef) DisplayName() string {
	if m.Name != "" {
		return m.Name
	}
	return m.ID
}

// Message is one chat turn. Attachments carry files or images sent along with
// the text.
type Message struct {
	Role        ai.MessageRole
	Text        string
	Attachments []content.Content
}

// Tool describes a function the model may call.
type Tool struct {
	Name        string
	Description string
	// Parameters is a JSON schema for the arguments.
	Parameters json.RawMessage
}

// ReasoningOptions controls extended reasoning on models that support it.
type ReasoningOptions struct {
	// Effort is a vendor-neutral level: "low", "medium" or "high".
	Effort string
	// BudgetTokens caps reasoning tokens when the vendor supports a budget.
	BudgetTokens int
}

// WebSearchOptions enables vendor-side web search during a chat.
type WebSearchOptions struct {
	MaxResults  int
	ContextSize string
	Domains     []string
}

// SpeechOutputOptions asks a chat model to also answer with audio.
type SpeechOutputOptions struct {
	Voice  string
	Format string
}
