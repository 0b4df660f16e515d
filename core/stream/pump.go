package stream

import (
	"context"
	"errors"
	"fmt"

	"github.com/leofalp/aitask/internal/utils"
	"github.com/leofalp/aitask/providers/ai"
)

// Pump drains s into h and returns the accumulated response. Content deltas
// are forwarded as they arrive; tool calls are forwarded once the stream has
// finished, with their arguments repaired into valid JSON when possible.
//
// Pump always leaves h terminated: Complete on success, Error on a stream
// error or when ctx is cancelled between events. The returned error is the
// one delivered to h.
func Pump(ctx context.Context, s *ai.ChatStream, h *Handler) (*ai.ChatResponse, error) {
	if s == nil {
		err := errors.New("stream: pump: nil chat stream")
		h.Error(err)
		return nil, err
	}

	accumulated := &ai.ChatResponse{}
	var calls ai.ToolCallAccumulator

	for event, err := range s.Iter() {
		if ctxErr := ctx.Err(); ctxErr != nil {
			err := fmt.Errorf("stream: %w", ctxErr)
			h.Error(err)
			return accumulated, err
		}
		if err != nil {
			h.Error(err)
			return accumulated, err
		}

		accumulated.Apply(event, &calls)
		if event.Type == ai.StreamEventContent {
			h.Text(event.Content)
		}
	}

	// The producer may finish right as ctx is cancelled; report the
	// cancellation instead of a result the caller no longer waits for.
	if ctxErr := ctx.Err(); ctxErr != nil {
		err := fmt.Errorf("stream: %w", ctxErr)
		h.Error(err)
		return accumulated, err
	}

	accumulated.ToolCalls = RepairToolCalls(calls.ToolCalls())
	for _, call := range accumulated.ToolCalls {
		h.ToolCall(call)
	}
	h.Complete(accumulated)
	return accumulated, nil
}

// RepairToolCalls returns calls with each Arguments string replaced by its
// repaired JSON form. Arguments that cannot be repaired are kept verbatim so
// the caller can still inspect them.
func RepairToolCalls(calls []ai.ToolCall) []ai.ToolCall {
	for i := range calls {
		args := calls[i].Function.Arguments
		if args == "" {
			calls[i].Function.Arguments = "{}"
			continue
		}
		if repaired, err := utils.RepairJSON(args); err == nil {
			calls[i].Function.Arguments = repaired
		}
	}
	return calls
}

// Replay emits a finished response into h as if it had been streamed. It is
// the fallback for executors without native streaming.
func Replay(ctx context.Context, resp *ai.ChatResponse, h *Handler) (*ai.ChatResponse, error) {
	return Pump(ctx, ai.NewSingleEventStream(resp), h)
}
