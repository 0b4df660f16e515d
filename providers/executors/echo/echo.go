// Package echo is an offline executor that answers without leaving the
// process. Chat and completion echo the prompt back, speech writes the prompt
// bytes to the resolved output file. The CLI registers it so every command
// works without credentials, and tests use it as a deterministic backend.
package echo

import (
	"context"
	"fmt"
	"os"
	"slices"
	"strings"

	"github.com/leofalp/aitask/core/content"
	"github.com/leofalp/aitask/core/executor"
	"github.com/leofalp/aitask/core/stream"
	"github.com/leofalp/aitask/core/task"
	"github.com/leofalp/aitask/providers/ai"
)

// ModelID is the only model the executor lists.
const ModelID = "echo-1"

// Executor echoes requests back. It is safe for concurrent use.
type Executor struct {
	executor.Unsupported
}

var _ executor.Executor = (*Executor)(nil)

// New returns an echo executor registered as ai.ProviderEcho.
func New() *Executor {
	return &Executor{Unsupported: executor.Unsupported{ID: ai.ProviderEcho}}
}

func (e *Executor) Complete(ctx context.Context, req task.CompletionRequest) (*ai.ChatResponse, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return respond(req.Common, req.System+" "+req.Prompt, req.Prompt), nil
}

func (e *Executor) CompleteStream(ctx context.Context, req task.CompletionRequest, h *stream.Handler) error {
	_, err := stream.Pump(ctx, wordStream(respond(req.Common, req.System+" "+req.Prompt, req.Prompt)), h)
	return err
}

func (e *Executor) Chat(ctx context.Context, req task.ChatRequest) (*ai.ChatResponse, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	prompt, reply := chatText(req)
	return respond(req.Common, prompt, reply), nil
}

func (e *Executor) ChatStream(ctx context.Context, req task.ChatRequest, h *stream.Handler) error {
	prompt, reply := chatText(req)
	_, err := stream.Pump(ctx, wordStream(respond(req.Common, prompt, reply)), h)
	return err
}

// Speech writes the prompt as the "audio" payload. Nothing is written when
// persistence was not requested.
func (e *Executor) Speech(ctx context.Context, req task.SpeechRequest) (*task.AudioResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	res := &task.AudioResult{
		Model: modelID(req.Common),
		Usage: &ai.Usage{Characters: len([]rune(req.Prompt))},
	}
	if req.OutputPath == "" {
		media, err := content.FromBytes("speech", req.OutputMime, []byte(req.Prompt))
		if err != nil {
			return nil, fmt.Errorf("echo: speech: %w", err)
		}
		res.Audio = media
		return res, nil
	}
	if err := os.WriteFile(req.OutputPath, []byte(req.Prompt), 0o644); err != nil {
		return nil, fmt.Errorf("echo: write speech: %w", err)
	}
	res.Audio = content.NewOutput(ai.ModalityAudio, req.OutputPath, req.OutputMime)
	return res, nil
}

func (e *Executor) ListModels(ctx context.Context, req task.ListModelsRequest) ([]task.ModelInfo, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	info := task.ModelInfo{
		ID:       ModelID,
		Name:     "Echo",
		Provider: ai.ProviderEcho,
		Kinds:    []task.Kind{task.KindCompletion, task.KindChat, task.KindSpeech},
		OwnedBy:  "aitask",
	}
	if req.Filter != task.KindUnknown && !slices.Contains(info.Kinds, req.Filter) {
		return []task.ModelInfo{}, nil
	}
	return []task.ModelInfo{info}, nil
}

// chatText returns the whole prompt and the text of the last user turn.
func chatText(req task.ChatRequest) (prompt, reply string) {
	parts := []string{req.System}
	for _, msg := range req.Messages {
		parts = append(parts, msg.Text)
		if msg.Role == ai.RoleUser {
			reply = msg.Text
		}
	}
	return strings.Join(parts, " "), reply
}

func respond(common task.Common, prompt, reply string) *ai.ChatResponse {
	promptTokens := len(strings.Fields(prompt))
	completionTokens := len(strings.Fields(reply))
	return &ai.ChatResponse{
		Model:        modelID(common),
		Content:      reply,
		FinishReason: "stop",
		Usage: &ai.Usage{
			PromptTokens:     promptTokens,
			CompletionTokens: completionTokens,
			TotalTokens:      promptTokens + completionTokens,
		},
	}
}

// wordStream replays resp one word per content delta.
func wordStream(resp *ai.ChatResponse) *ai.ChatStream {
	return ai.NewChatStream(func(yield func(ai.StreamEvent, error) bool) {
		words := strings.SplitAfter(resp.Content, " ")
		for _, word := range words {
			if word == "" {
				continue
			}
			if !yield(ai.StreamEvent{Type: ai.StreamEventContent, Content: word}, nil) {
				return
			}
		}
		if !yield(ai.StreamEvent{Type: ai.StreamEventUsage, Usage: resp.Usage}, nil) {
			return
		}
		yield(ai.StreamEvent{Type: ai.StreamEventDone, FinishReason: resp.FinishReason}, nil)
	})
}

func modelID(common task.Common) string {
	if id := common.ModelID(); id != "" {
		return id
	}
	return ModelID
}
