package ai

/*
	##### MODALITIES #####
*/

// Modality is a kind of content a task consumes or produces.
type Modality string

const (
	ModalityText  Modality = "text"
	ModalityImage Modality = "image"
	ModalityAudio Modality = "audio"
	ModalityVideo Modality = "video"
	ModalityFile  Modality = "file"
)

/*
	##### USAGE #####
*/

// Usage carries the counters a provider reports for one call. Token counters
// apply to text models; Characters, Seconds and Images cover media models
// that bill per unit instead of per token.
type Usage struct {
	PromptTokens     int `json:"prompt_tokens,omitempty"`
	CompletionTokens int `json:"completion_tokens,omitempty"`
	TotalTokens      int `json:"total_tokens,omitempty"`

	// Extended token metrics
	ReasoningTokens int `json:"reasoning_tokens,omitempty"` // Tokens used for reasoning
	CachedTokens    int `json:"cached_tokens,omitempty"`    // Cached prompt tokens

	// Media metrics
	Characters int     `json:"characters,omitempty"` // Characters synthesized (speech, sound effects)
	Seconds    float64 `json:"seconds,omitempty"`    // Audio/video seconds processed or produced
	Images     int     `json:"images,omitempty"`     // Images produced
}

// IsZero reports whether no counter is set.
func (u *Usage) IsZero() bool {
	return u == nil || *u == Usage{}
}

// Add returns the element-wise sum of u and other. Nil operands count as zero.
func (u *Usage) Add(other *Usage) *Usage {
	sum := &Usage{}
	for _, part := range []*Usage{u, other} {
		if part == nil {
			continue
		}
		sum.PromptTokens += part.PromptTokens
		sum.CompletionTokens += part.CompletionTokens
		sum.TotalTokens += part.TotalTokens
		sum.ReasoningTokens += part.ReasoningTokens
		sum.CachedTokens += part.CachedTokens
		sum.Characters += part.Characters
		sum.Seconds += part.Seconds
		sum.Images += part.Images
	}
	return sum
}

/*
	##### CHAT OUTPUT #####
*/

// ChatResponse is the accumulated result of a chat or completion call.
type ChatResponse struct {
	ID           string     `json:"id,omitempty"`
	Model        string     `json:"model,omitempty"`
	Content      string     `json:"content"`
	ToolCalls    []ToolCall `json:"tool_calls,omitempty"`
	FinishReason string     `json:"finish_reason,omitempty"`
	Usage        *Usage     `json:"usage,omitempty"`

	Refusal   string `json:"refusal,omitempty"`   // If model refuses to respond (safety/policy)
	Reasoning string `json:"reasoning,omitempty"` // Chain-of-thought reasoning summary
}

// ToolCall represents a function/tool call request from the model.
type ToolCall struct {
	ID       string           `json:"id,omitempty"` // Unique identifier for this tool call
	Type     string           `json:"type"`         // "function"
	Function ToolCallFunction `json:"function"`
}

type ToolCallFunction struct {
	Name      string `json:"name"`
	Arguments string `json:"arguments"` // JSON string
}

// MessageRole represents the role of a chat message; compatible with string
type MessageRole string

const (
	RoleSystem    MessageRole = "system"    // System instructions/configuration
	RoleUser      MessageRole = "user"      // End-user message
	RoleAssistant MessageRole = "assistant" // Model response
	RoleTool      MessageRole = "tool"      // Tool/function output
)
