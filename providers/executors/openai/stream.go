package openai

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/leofalp/aitask/core/stream"
	"github.com/leofalp/aitask/core/task"
	"github.com/leofalp/aitask/internal/utils"
	"github.com/leofalp/aitask/providers/ai"
	"github.com/leofalp/aitask/providers/observability"
)

/*
	CHAT COMPLETIONS STREAMING API - RESPONSE TYPES
*/

// chatCompletionStreamChunk is a single SSE chunk from the streaming chat
// completions endpoint.
type chatCompletionStreamChunk struct {
	ID      string         `json:"id"`
	Model   string         `json:"model"`
	Choices []streamChoice `json:"choices"`
	Usage   *chatUsage     `json:"usage,omitempty"` // Final chunk only, with stream_options.include_usage
}

type streamChoice struct {
	Index        int         `json:"index"`
	Delta        streamDelta `json:"delta"`
	FinishReason *string     `json:"finish_reason"` // nil until the final chunk for this choice
}

// streamDelta carries the incremental content of a chunk. Every field is
// optional.
type streamDelta struct {
	Role      string               `json:"role,omitempty"`
	Content   *string              `json:"content,omitempty"`
	Reasoning *string              `json:"reasoning,omitempty"`
	ToolCalls []streamToolCallPart `json:"tool_calls,omitempty"`
}

// streamToolCallPart is an incremental tool call. The first chunk carries the
// ID and function name; later chunks carry argument fragments.
type streamToolCallPart struct {
	Index    int    `json:"index"`
	ID       string `json:"id,omitempty"`
	Type     string `json:"type,omitempty"`
	Function struct {
		Name      string `json:"name,omitempty"`
		Arguments string `json:"arguments,omitempty"`
	} `json:"function"`
}

func (e *Executor) CompleteStream(ctx context.Context, req task.CompletionRequest, h *stream.Handler) error {
	return e.streamChat(ctx, req.Kind(), completionToChat(req), h)
}

func (e *Executor) ChatStream(ctx context.Context, req task.ChatRequest, h *stream.Handler) error {
	body, err := chatToChat(req)
	if err != nil {
		h.Error(err)
		return err
	}
	return e.streamChat(ctx, req.Kind(), body, h)
}

// streamChat sends body with stream=true and pumps the SSE chunks into h.
func (e *Executor) streamChat(ctx context.Context, kind task.Kind, body chatCompletionRequest, h *stream.Handler) error {
	if err := e.prepare(ctx, kind, body.Model); err != nil {
		h.Error(err)
		return err
	}

	streamEnabled := true
	body.Stream = &streamEnabled
	body.StreamOptions = &streamOptions{IncludeUsage: true}

	httpResponse, err := utils.DoPostStream(ctx, e.client, e.baseURL+chatCompletionsEndpoint, e.apiKey, body)
	if err != nil {
		if observer := observability.ObserverFromContext(ctx); observer != nil {
			observer.Trace(ctx, "Streaming HTTP request failed", observability.Error(err))
		}
		err = fmt.Errorf("openai: chat completions stream: %w", err)
		h.Error(err)
		return err
	}

	_, err = stream.Pump(ctx, sseChatStream(ctx, httpResponse.Body), h)
	return err
}

// sseChatStream turns an SSE body into a ChatStream. The body is closed when
// iteration ends.
func sseChatStream(ctx context.Context, body io.ReadCloser) *ai.ChatStream {
	sseScanner := utils.NewSSEScanner(body)

	return ai.NewChatStream(func(yield func(ai.StreamEvent, error) bool) {
		defer utils.CloseWithLog(body)

		for {
			if ctx.Err() != nil {
				yield(ai.StreamEvent{}, ctx.Err())
				return
			}

			payload, sseErr := sseScanner.Next()
			if sseErr == io.EOF {
				return
			}
			if sseErr != nil {
				yield(ai.StreamEvent{}, fmt.Errorf("openai: SSE read error: %w", sseErr))
				return
			}

			var chunk chatCompletionStreamChunk
			if err := json.Unmarshal([]byte(payload), &chunk); err != nil {
				yield(ai.StreamEvent{}, fmt.Errorf("openai: parse streaming chunk: %w", err))
				return
			}

			for _, event := range chunkToStreamEvents(&chunk) {
				if !yield(event, nil) {
					return
				}
			}
		}
	})
}

// chunkToStreamEvents converts one chunk into events. A chunk can carry
// usage, content, reasoning, tool calls and a finish reason at once.
func chunkToStreamEvents(chunk *chatCompletionStreamChunk) []ai.StreamEvent {
	var events []ai.StreamEvent

	// The usage chunk has empty choices, so handle it first.
	if chunk.Usage != nil {
		events = append(events, ai.StreamEvent{Type: ai.StreamEventUsage, Usage: chunk.Usage.toGeneric()})
	}

	for _, choice := range chunk.Choices {
		delta := choice.Delta
		if delta.Content != nil && *delta.Content != "" {
			events = append(events, ai.StreamEvent{Type: ai.StreamEventContent, Content: *delta.Content})
		}
		if delta.Reasoning != nil && *delta.Reasoning != "" {
			events = append(events, ai.StreamEvent{Type: ai.StreamEventReasoning, Reasoning: *delta.Reasoning})
		}
		for _, part := range delta.ToolCalls {
			events = append(events, ai.StreamEvent{
				Type: ai.StreamEventToolCall,
				ToolCall: &ai.ToolCallDelta{
					Index:     part.Index,
					ID:        part.ID,
					Name:      part.Function.Name,
					Arguments: part.Function.Arguments,
				},
			})
		}
		if choice.FinishReason != nil && *choice.FinishReason != "" {
			events = append(events, ai.StreamEvent{Type: ai.StreamEventDone, FinishReason: *choice.FinishReason})
		}
	}
	return events
}
