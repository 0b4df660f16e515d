package task

import (
	"context"
	"slices"
	"strings"

	"github.com/leofalp/aitask/core/content"
	"github.com/leofalp/aitask/core/stream"
	"github.com/leofalp/aitask/providers/ai"
)

/*
	##### COMPLETION #####
*/

// CompletionBuilder describes a single-prompt text completion. Create one
// with NewCompletion; finish with Build, Execute or Stream.
type CompletionBuilder struct {
	builder[*CompletionBuilder]
	req CompletionRequest
}

// NewCompletion starts a single-prompt text completion.
func NewCompletion(prompt string) *CompletionBuilder {
	b := &CompletionBuilder{req: CompletionRequest{Prompt: prompt}}
	b.init(b, KindCompletion)
	return b
}

// System sets the instructions sent ahead of the prompt.
func (b *CompletionBuilder) System(prompt string) *CompletionBuilder {
	b.req.System = prompt
	return b
}

// MaxTokens caps the generated tokens; zero leaves the vendor default.
func (b *CompletionBuilder) MaxTokens(n int) *CompletionBuilder {
	if n < 0 {
		b.fail(inputError(b.kind, "max tokens", "must not be negative"))
		return b
	}
	b.req.MaxTokens = n
	return b
}

// Temperature sets sampling randomness within [0, 2].
func (b *CompletionBuilder) Temperature(t float64) *CompletionBuilder {
	if t < 0 || t > 2 {
		b.fail(inputError(b.kind, "temperature", "must be within [0, 2]"))
		return b
	}
	b.req.Temperature = &t
	return b
}

// Stop adds sequences that end generation.
func (b *CompletionBuilder) Stop(sequences ...string) *CompletionBuilder {
	b.req.Stop = append(b.req.Stop, sequences...)
	return b
}

// Build validates the builder and returns the request. It is a terminal
// call like Execute and Stream: the builder is consumed and later terminal
// calls return ErrConsumed.
func (b *CompletionBuilder) Build() (CompletionRequest, error) {
	if err := b.consume(); err != nil {
		return CompletionRequest{}, err
	}
	return b.build()
}

func (b *CompletionBuilder) build() (CompletionRequest, error) {
	b.require("prompt", b.req.Prompt)
	common, err := b.shared()
	if err != nil {
		return CompletionRequest{}, err
	}
	req := b.req
	req.Common = common
	req.Stop = slices.Clone(req.Stop)
	if req.Temperature != nil {
		t := *req.Temperature
		req.Temperature = &t
	}
	return req, nil
}

// Execute builds the request and runs it.
func (b *CompletionBuilder) Execute(ctx context.Context, r Runner) (*ai.ChatResponse, error) {
	if err := b.consume(); err != nil {
		return nil, err
	}
	req, err := b.build()
	if err != nil {
		return nil, err
	}
	return r.Complete(ctx, req)
}

// Stream builds the request and runs it, delivering deltas to h. The returned
// response is the one passed to h's completion callbacks.
func (b *CompletionBuilder) Stream(ctx context.Context, r Runner, h *stream.Handler) (*ai.ChatResponse, error) {
	if err := b.consume(); err != nil {
		return nil, failStream(h, err)
	}
	req, err := b.build()
	if err != nil {
		return nil, failStream(h, err)
	}
	return r.StreamCompletion(ctx, req, h)
}

/*
	##### CHAT #####
*/

// ChatBuilder describes a multi-turn conversation. Create one with NewChat;
// finish with Build, Execute or Stream.
type ChatBuilder struct {
	builder[*ChatBuilder]
	req ChatRequest
}

// NewChat starts an empty conversation. Add turns with User and Assistant.
func NewChat() *ChatBuilder {
	b := &ChatBuilder{}
	b.init(b, KindChat)
	return b
}

// System sets the instructions sent ahead of the conversation.
func (b *ChatBuilder) System(prompt string) *ChatBuilder {
	b.req.System = prompt
	return b
}

// User appends a user turn.
func (b *ChatBuilder) User(text string) *ChatBuilder {
	return b.Message(Message{Role: ai.RoleUser, Text: text})
}

// Assistant appends an assistant turn, for replaying earlier conversations.
func (b *ChatBuilder) Assistant(text string) *ChatBuilder {
	return b.Message(Message{Role: ai.RoleAssistant, Text: text})
}

// Message appends msg. A message without a role is sent as a user turn.
func (b *ChatBuilder) Message(msg Message) *ChatBuilder {
	if msg.Role == "" {
		msg.Role = ai.RoleUser
	}
	for _, attachment := range msg.Attachments {
		if b.accept("message attachment", attachment, "") == nil {
			return b
		}
	}
	msg.Attachments = slices.Clone(msg.Attachments)
	b.req.Messages = append(b.req.Messages, msg)
	return b
}

// AttachFile attaches the file at path to the last user turn, starting one if
// the conversation has none.
func (b *ChatBuilder) AttachFile(path string) *ChatBuilder {
	if c := b.loadFile("attachment", path, ""); c != nil {
		b.attach(c)
	}
	return b
}

// Attach attaches in-memory content to the last user turn.
func (b *ChatBuilder) Attach(c content.Content) *ChatBuilder {
	if accepted := b.accept("attachment", c, ""); accepted != nil {
		b.attach(accepted)
	}
	return b
}

func (b *ChatBuilder) attach(c content.Content) {
	last := len(b.req.Messages) - 1
	if last < 0 || b.req.Messages[last].Role != ai.RoleUser {
		b.req.Messages = append(b.req.Messages, Message{Role: ai.RoleUser})
		last++
	}
	b.req.Messages[last].Attachments = append(b.req.Messages[last].Attachments, c)
}

// Tool offers a function the model may call.
func (b *ChatBuilder) Tool(tool Tool) *ChatBuilder {
	if strings.TrimSpace(tool.Name) == "" {
		b.fail(inputError(b.kind, "tool", "empty name"))
		return b
	}
	b.req.Tools = append(b.req.Tools, tool)
	return b
}

// MaxTokens caps the generated tokens; zero leaves the vendor default.
func (b *ChatBuilder) MaxTokens(n int) *ChatBuilder {
	if n < 0 {
		b.fail(inputError(b.kind, "max tokens", "must not be negative"))
		return b
	}
	b.req.MaxTokens = n
	return b
}

// Temperature sets sampling randomness within [0, 2].
func (b *ChatBuilder) Temperature(t float64) *ChatBuilder {
	if t < 0 || t > 2 {
		b.fail(inputError(b.kind, "temperature", "must be within [0, 2]"))
		return b
	}
	b.req.Temperature = &t
	return b
}

// Reasoning enables extended reasoning.
func (b *ChatBuilder) Reasoning(opts ReasoningOptions) *ChatBuilder {
	switch opts.Effort {
	case "", "low", "medium", "high":
	default:
		b.fail(inputError(b.kind, "reasoning effort", "must be low, medium or high"))
		return b
	}
	b.req.Reasoning = &opts
	return b
}

// WebSearch enables vendor-side web search.
func (b *ChatBuilder) WebSearch(opts WebSearchOptions) *ChatBuilder {
	opts.Domains = slices.Clone(opts.Domains)
	b.req.WebSearch = &opts
	return b
}

// SpeechOutput asks for a spoken answer alongside the text.
func (b *ChatBuilder) SpeechOutput(opts SpeechOutputOptions) *ChatBuilder {
	b.req.SpeechOutput = &opts
	return b
}

// Build validates the builder and returns the request. It is a terminal
// call like Execute and Stream: the builder is consumed and later terminal
// calls return ErrConsumed.
func (b *ChatBuilder) Build() (ChatRequest, error) {
	if err := b.consume(); err != nil {
		return ChatRequest{}, err
	}
	return b.build()
}

// build requires at least one turn with text or attachments.
func (b *ChatBuilder) build() (ChatRequest, error) {
	hasInput := false
	for _, msg := range b.req.Messages {
		if strings.TrimSpace(msg.Text) != "" || len(msg.Attachments) > 0 {
			hasInput = true
			break
		}
	}
	if !hasInput {
		b.fail(inputError(b.kind, "messages", "at least one message is required"))
	}
	common, err := b.shared()
	if err != nil {
		return ChatRequest{}, err
	}

	req := b.req
	req.Common = common
	req.Messages = make([]Message, len(b.req.Messages))
	for i, msg := range b.req.Messages {
		msg.Attachments = slices.Clone(msg.Attachments)
		req.Messages[i] = msg
	}
	req.Tools = slices.Clone(req.Tools)
	return req, nil
}

// Execute builds the request and runs it on r.
func (b *ChatBuilder) Execute(ctx context.Context, r Runner) (*ai.ChatResponse, error) {
	if err := b.consume(); err != nil {
		return nil, err
	}
	req, err := b.build()
	if err != nil {
		return nil, err
	}
	return r.Chat(ctx, req)
}

// Stream builds the request and runs it, delivering deltas to h.
func (b *ChatBuilder) Stream(ctx context.Context, r Runner, h *stream.Handler) (*ai.ChatResponse, error) {
	if err := b.consume(); err != nil {
		return nil, failStream(h, err)
	}
	req, err := b.build()
	if err != nil {
		return nil, failStream(h, err)
	}
	return r.StreamChat(ctx, req, h)
}

// failStream terminates h with err so callers waiting on the handler are
// released even when the call never reached a runner.
func failStream(h *stream.Handler, err error) error {
	if h != nil {
		h.Error(err)
	}
	return err
}
