package ai

import (
	"iter"
	"strings"
)

// StreamEventType identifies the kind of delta carried by a StreamEvent.
type StreamEventType string

const (
	// StreamEventContent carries a text delta.
	StreamEventContent StreamEventType = "content"
	// StreamEventToolCall carries an incremental tool call delta.
	StreamEventToolCall StreamEventType = "tool_call"
	// StreamEventReasoning carries a reasoning delta.
	StreamEventReasoning StreamEventType = "reasoning"
	// StreamEventUsage carries token usage, usually right before done.
	StreamEventUsage StreamEventType = "usage"
	// StreamEventDone signals that the stream has finished normally.
	StreamEventDone StreamEventType = "done"
)

// ToolCallDelta is an incremental update to a streamed tool call. Index
// identifies the call; ID and Name usually arrive on the first chunk only and
// later chunks carry Arguments fragments.
type ToolCallDelta struct {
	Index     int    `json:"index"`
	ID        string `json:"id,omitempty"`
	Name      string `json:"name,omitempty"`
	Arguments string `json:"arguments,omitempty"`
}

// StreamEvent is a single delta emitted by an executor while streaming.
type StreamEvent struct {
	Type         StreamEventType `json:"type"`
	Content      string          `json:"content,omitempty"`
	Reasoning    string          `json:"reasoning,omitempty"`
	ToolCall     *ToolCallDelta  `json:"tool_call,omitempty"`
	Usage        *Usage          `json:"usage,omitempty"`
	FinishReason string          `json:"finish_reason,omitempty"`
}

// ChatStream wraps a streaming iterator. Executors that talk to SSE-style
// transports build one with NewChatStream and hand it to stream.Pump, which
// routes each event to the caller's callbacks.
//
// A ChatStream must be consumed: the producer may hold resources (an HTTP
// body, a goroutine) that are released only when iteration ends.
type ChatStream struct {
	iterator iter.Seq2[StreamEvent, error]
}

// NewChatStream creates a ChatStream from a raw iterator. A non-nil error
// yielded by the iterator terminates the stream.
func NewChatStream(iterator iter.Seq2[StreamEvent, error]) *ChatStream {
	return &ChatStream{iterator: iterator}
}

// NewSingleEventStream replays a finished ChatResponse as a stream: content,
// reasoning, tool calls, usage, then done. Executors without native streaming
// use it to satisfy the streaming operations.
func NewSingleEventStream(response *ChatResponse) *ChatStream {
	return NewChatStream(func(yield func(StreamEvent, error) bool) {
		if response == nil {
			yield(StreamEvent{Type: StreamEventDone}, nil)
			return
		}
		if response.Content != "" {
			if !yield(StreamEvent{Type: StreamEventContent, Content: response.Content}, nil) {
				return
			}
		}
		if response.Reasoning != "" {
			if !yield(StreamEvent{Type: StreamEventReasoning, Reasoning: response.Reasoning}, nil) {
				return
			}
		}
		for index, call := range response.ToolCalls {
			delta := &ToolCallDelta{
				Index:     index,
				ID:        call.ID,
				Name:      call.Function.Name,
				Arguments: call.Function.Arguments,
			}
			if !yield(StreamEvent{Type: StreamEventToolCall, ToolCall: delta}, nil) {
				return
			}
		}
		if response.Usage != nil {
			if !yield(StreamEvent{Type: StreamEventUsage, Usage: response.Usage}, nil) {
				return
			}
		}
		yield(StreamEvent{Type: StreamEventDone, FinishReason: response.FinishReason}, nil)
	})
}

// Iter returns the underlying iterator for range-over-func loops.
func (stream *ChatStream) Iter() iter.Seq2[StreamEvent, error] {
	return stream.iterator
}

// Collect consumes the stream and returns the accumulated response. A
// mid-stream error stops collection and is returned with the partial result.
func (stream *ChatStream) Collect() (*ChatResponse, error) {
	accumulated := &ChatResponse{}
	var calls ToolCallAccumulator

	for event, err := range stream.iterator {
		if err != nil {
			accumulated.ToolCalls = calls.ToolCalls()
			return accumulated, err
		}
		accumulated.Apply(event, &calls)
	}

	accumulated.ToolCalls = calls.ToolCalls()
	return accumulated, nil
}

// Apply folds a single event into the response. Tool call deltas go to
// calls; the caller decides when to materialize them.
func (response *ChatResponse) Apply(event StreamEvent, calls *ToolCallAccumulator) {
	switch event.Type {
	case StreamEventContent:
		response.Content += event.Content
	case StreamEventReasoning:
		response.Reasoning += event.Reasoning
	case StreamEventToolCall:
		if event.ToolCall != nil && calls != nil {
			calls.Add(event.ToolCall)
		}
	case StreamEventUsage:
		if event.Usage != nil {
			response.Usage = event.Usage
		}
	case StreamEventDone:
		response.FinishReason = event.FinishReason
	}
}

// ToolCallAccumulator merges ToolCallDelta fragments into complete calls.
// The zero value is ready to use.
type ToolCallAccumulator struct {
	builders []*toolCallBuilder
}

type toolCallBuilder struct {
	id        string
	name      string
	arguments strings.Builder
}

// Add merges delta into the call at delta.Index, growing the list when a new
// index appears. Empty ID and Name fields never overwrite earlier values.
func (acc *ToolCallAccumulator) Add(delta *ToolCallDelta) {
	if delta == nil || delta.Index < 0 {
		return
	}
	for len(acc.builders) <= delta.Index {
		acc.builders = append(acc.builders, &toolCallBuilder{})
	}

	builder := acc.builders[delta.Index]
	if delta.ID != "" {
		builder.id = delta.ID
	}
	if delta.Name != "" {
		builder.name = delta.Name
	}
	if delta.Arguments != "" {
		builder.arguments.WriteString(delta.Arguments)
	}
}

// Len returns the number of distinct tool call indexes seen so far.
func (acc *ToolCallAccumulator) Len() int {
	return len(acc.builders)
}

// ToolCalls materializes the accumulated calls in index order.
func (acc *ToolCallAccumulator) ToolCalls() []ToolCall {
	if len(acc.builders) == 0 {
		return nil
	}
	calls := make([]ToolCall, 0, len(acc.builders))
	for _, builder := range acc.builders {
		calls = append(calls, ToolCall{
			ID:   builder.id,
			Type: "function",
			Function: ToolCallFunction{
				Name:      builder.name,
				Arguments: builder.arguments.String(),
			},
		})
	}
	return calls
}
