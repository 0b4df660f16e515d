package stream

import (
	"context"
	"errors"
	"sync"

	"github.com/leofalp/aitask/providers/ai"
)

var (
	// ErrStarted is returned when subscribing after the stream has started.
	ErrStarted = errors.New("aitask: stream already started")
	// ErrIncomplete is delivered when an executor returns without emitting a
	// terminal event.
	ErrIncomplete = errors.New("aitask: stream ended without a terminal event")
	// ErrNilCallback is returned when subscribing with a nil function.
	ErrNilCallback = errors.New("aitask: nil stream callback")
)

// Handler fans out stream events to subscribers. Create one with NewHandler;
// a Handler serves a single stream.
//
// Events are queued and delivered in emission order by whichever emitting
// call finds the queue idle. Callbacks run without any lock held, so a
// callback may itself emit (for example Error to abort on a keyword); the
// nested event is delivered once the running callback returns. An emitting
// call that finds another delivery in progress returns without waiting.
type Handler struct {
	mu       sync.Mutex
	started  bool
	closed   bool
	queue    []event
	draining bool

	onText     []func(string)
	onToolCall []func(ai.ToolCall)
	onError    []func(error)
	onComplete []func(*ai.ChatResponse)

	done   chan struct{}
	result *ai.ChatResponse
	err    error
}

type eventKind int

const (
	eventText eventKind = iota
	eventToolCall
	eventError
	eventComplete
)

type event struct {
	kind eventKind
	text string
	call ai.ToolCall
	err  error
	resp *ai.ChatResponse
}

// NewHandler returns a Handler with no subscribers.
func NewHandler() *Handler {
	return &Handler{done: make(chan struct{})}
}

// OnText subscribes fn to text deltas.
func (h *Handler) OnText(fn func(delta string)) error {
	if fn == nil {
		return ErrNilCallback
	}
	return subscribe(h, &h.onText, fn)
}

// OnToolCall subscribes fn to completed tool calls.
func (h *Handler) OnToolCall(fn func(call ai.ToolCall)) error {
	if fn == nil {
		return ErrNilCallback
	}
	return subscribe(h, &h.onToolCall, fn)
}

// OnError subscribes fn to the terminal error.
func (h *Handler) OnError(fn func(err error)) error {
	if fn == nil {
		return ErrNilCallback
	}
	return subscribe(h, &h.onError, fn)
}

// OnComplete subscribes fn to the terminal completion payload.
func (h *Handler) OnComplete(fn func(resp *ai.ChatResponse)) error {
	if fn == nil {
		return ErrNilCallback
	}
	return subscribe(h, &h.onComplete, fn)
}

func subscribe[F any](h *Handler, slot *[]F, fn F) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.started {
		return ErrStarted
	}
	*slot = append(*slot, fn)
	return nil
}

// Start seals the subscription lists. Emitting an event starts the handler
// implicitly; calling Start more than once is harmless.
func (h *Handler) Start() {
	h.mu.Lock()
	h.started = true
	h.mu.Unlock()
}

// Started reports whether subscriptions are sealed.
func (h *Handler) Started() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.started
}

// Text delivers a text delta. Empty deltas and deltas after the terminal
// event are dropped.
func (h *Handler) Text(delta string) {
	if delta == "" {
		return
	}
	h.mu.Lock()
	h.started = true
	if h.closed {
		h.mu.Unlock()
		return
	}
	h.enqueue(event{kind: eventText, text: delta})
}

// ToolCall delivers one completed tool call.
func (h *Handler) ToolCall(call ai.ToolCall) {
	h.mu.Lock()
	h.started = true
	if h.closed {
		h.mu.Unlock()
		return
	}
	h.enqueue(event{kind: eventToolCall, call: call})
}

// Error delivers the terminal error. It returns false when a terminal event
// was already delivered, in which case err is dropped. A nil err is replaced
// by ErrIncomplete.
func (h *Handler) Error(err error) bool {
	if err == nil {
		err = ErrIncomplete
	}
	h.mu.Lock()
	if !h.terminate(nil, err) {
		h.mu.Unlock()
		return false
	}
	h.enqueue(event{kind: eventError, err: err})
	return true
}

// Complete delivers the terminal completion payload. It returns false when a
// terminal event was already delivered.
func (h *Handler) Complete(resp *ai.ChatResponse) bool {
	if resp == nil {
		resp = &ai.ChatResponse{}
	}
	h.mu.Lock()
	if !h.terminate(resp, nil) {
		h.mu.Unlock()
		return false
	}
	h.enqueue(event{kind: eventComplete, resp: resp})
	return true
}

// terminate stores the terminal payload. h.mu must be held.
func (h *Handler) terminate(resp *ai.ChatResponse, err error) bool {
	if h.closed {
		return false
	}
	h.started = true
	h.closed = true
	h.result = resp
	h.err = err
	close(h.done)
	return true
}

// enqueue appends e and, unless a delivery is already running, delivers the
// queue until it is empty. h.mu must be held; enqueue releases it.
func (h *Handler) enqueue(e event) {
	h.queue = append(h.queue, e)
	if h.draining {
		h.mu.Unlock()
		return
	}
	h.draining = true
	for len(h.queue) > 0 {
		next := h.queue[0]
		h.queue = h.queue[1:]
		h.mu.Unlock()
		h.deliver(next)
		h.mu.Lock()
	}
	h.draining = false
	h.mu.Unlock()
}

// deliver runs the callbacks for e. Subscriptions are sealed once the first
// event is queued, so the slices are read without the lock.
func (h *Handler) deliver(e event) {
	switch e.kind {
	case eventText:
		for _, fn := range h.onText {
			fn(e.text)
		}
	case eventToolCall:
		for _, fn := range h.onToolCall {
			fn(e.call)
		}
	case eventError:
		for _, fn := range h.onError {
			fn(e.err)
		}
	case eventComplete:
		for _, fn := range h.onComplete {
			fn(e.resp)
		}
	}
}

// Done is closed as soon as a terminal event is accepted. Its callbacks may
// still be pending or running when Done closes.
func (h *Handler) Done() <-chan struct{} {
	return h.done
}

// Terminated reports whether a terminal event was delivered.
func (h *Handler) Terminated() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.closed
}

// Result returns the terminal payload. Before the terminal event it returns
// (nil, nil).
func (h *Handler) Result() (*ai.ChatResponse, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.result, h.err
}

// Wait blocks until the terminal event or until ctx is done.
func (h *Handler) Wait(ctx context.Context) (*ai.ChatResponse, error) {
	select {
	case <-h.done:
		return h.Result()
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}
