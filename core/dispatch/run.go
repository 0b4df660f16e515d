package dispatch

import (
	"context"
	"errors"
	"log/slog"

	"github.com/leofalp/aitask/core/executor"
	"github.com/leofalp/aitask/core/record"
	"github.com/leofalp/aitask/core/stream"
	"github.com/leofalp/aitask/core/task"
	"github.com/leofalp/aitask/internal/utils"
	"github.com/leofalp/aitask/providers/ai"
	"github.com/leofalp/aitask/providers/observability"
)

// call tracks one dispatch from resolution to the end of its span.
type call struct {
	d         *Dispatcher
	kind      task.Kind
	target    target
	ctx       context.Context
	span      observability.Span
	timer     *utils.Timer
	streaming bool
}

// begin opens the span and runs resolution. common is updated in place with
// the resolved output destination. On error the span is already closed.
func (d *Dispatcher) begin(ctx context.Context, kind task.Kind, common *task.Common, streaming bool) (*call, executor.Executor, error) {
	c := &call{d: d, kind: kind, ctx: ctx, timer: utils.NewTimerWithClock(d.now), streaming: streaming}
	if d.observer != nil {
		c.ctx = observability.ContextWithObserver(c.ctx, d.observer)
		c.ctx, c.span = d.observer.StartSpan(c.ctx, observability.SpanDispatchPrefix+kind.String(),
			observability.Kind(kind.String()),
			observability.Bool(observability.AttrTaskStreaming, streaming),
		)
		if common.Sender != "" {
			c.span.SetAttributes(observability.String(observability.AttrTaskSender, common.Sender))
		}
	}

	t, err := d.resolveTarget(kind, *common)
	c.target = t
	if err != nil {
		c.finish(err)
		return nil, nil, err
	}
	c.setAttributes(
		observability.ProviderID(t.provider),
		observability.String(observability.AttrProviderSource, t.source),
		observability.Model(t.model.ID),
	)

	exec, err := d.registry.ResolveFor(t.provider, kind)
	if err != nil {
		c.finish(err)
		return nil, nil, err
	}

	if err := d.resolveOutput(kind, t, common); err != nil {
		c.finish(err)
		return nil, nil, err
	}
	if common.OutputPath != "" {
		c.setAttributes(
			observability.String(observability.AttrOutputPath, common.OutputPath),
			observability.String(observability.AttrOutputMime, common.OutputMime),
		)
	}
	return c, exec, nil
}

func (c *call) setAttributes(attrs ...observability.Attribute) {
	if c.span != nil {
		c.span.SetAttributes(attrs...)
	}
}

func (c *call) event(name string, attrs ...observability.Attribute) {
	if c.span != nil {
		c.span.AddEvent(name, attrs...)
	}
}

func (c *call) labels() []observability.Attribute {
	return observability.CallLabels(c.kind.String(), c.target.provider)
}

// finish records metrics and closes the span.
func (c *call) finish(err error) {
	observer := c.d.observer
	if observer == nil {
		return
	}
	class := ""
	if err != nil {
		class = errorClass(err)
	}
	observability.RecordCall(c.ctx, observer, c.labels(), c.timer.Stop().Seconds(), class)
	observability.EndSpan(c.span, err)
}

func errorClass(err error) string {
	switch {
	case errors.Is(err, executor.ErrNotConfigured):
		return observability.ErrorClassConfig
	case errors.Is(err, executor.ErrUnsupported):
		return observability.ErrorClassUnsupported
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return observability.ErrorClassCanceled
	}
	return observability.ErrorClassExecutor
}

// record builds a record with build and appends it to the history store.
// Nothing is recorded for kinds without history, without a store, or when
// the settings turn history off.
func (c *call) record(build func(record.Meta) (record.Record, error)) {
	d := c.d
	if !c.kind.HistoryEligible() || d.history == nil {
		return
	}
	if d.settings != nil && !d.settings.HistoryEnabled() {
		c.event(observability.EventHistorySkipped)
		return
	}

	rec, err := build(record.Meta{
		Provider:  c.target.provider,
		Model:     c.target.model,
		CreatedAt: d.now(),
		Pricer:    d.pricer,
	})
	if err != nil {
		d.warn(c.ctx, "Failed to build task record",
			observability.Kind(c.kind.String()),
			observability.Error(err),
		)
		return
	}

	// The result already exists; a cancelled caller must not lose its record.
	if err := d.history.Append(context.WithoutCancel(c.ctx), rec); err != nil {
		if d.observer != nil {
			d.observer.Counter(observability.MetricHistoryAppendErrors).Add(c.ctx, 1, c.labels()...)
		}
		d.warn(c.ctx, "Failed to append task record",
			observability.RecordID(rec.ID),
			observability.Kind(c.kind.String()),
			observability.Error(err),
		)
		return
	}

	c.event(observability.EventHistoryAppend, observability.RecordID(rec.ID))
	c.setAttributes(
		observability.RecordID(rec.ID),
		observability.Float64(observability.AttrCostUSD, rec.Cost),
	)
	tokens := 0
	if rec.Usage != nil {
		tokens = rec.Usage.TotalTokens
		c.setAttributes(
			observability.Int(observability.AttrTokensPrompt, rec.Usage.PromptTokens),
			observability.Int(observability.AttrTokensCompletion, rec.Usage.CompletionTokens),
		)
	}
	if d.observer != nil {
		observability.RecordUsage(c.ctx, d.observer, c.labels(), tokens, rec.Cost)
	}
}

func (d *Dispatcher) warn(ctx context.Context, msg string, attrs ...observability.Attribute) {
	if d.observer != nil {
		d.observer.Warn(ctx, msg, attrs...)
		return
	}
	args := make([]any, 0, 2*len(attrs))
	for _, attr := range attrs {
		args = append(args, slog.Any(attr.Key, attr.Value))
	}
	d.logger.WarnContext(ctx, msg, args...)
}

// run is the non-streaming dispatch path shared by every kind. A nil convert
// marks kinds that are never recorded.
func run[R any](
	ctx context.Context,
	d *Dispatcher,
	kind task.Kind,
	common *task.Common,
	invoke func(context.Context, executor.Executor) (R, error),
	convert func(record.Meta, R) (record.Record, error),
) (R, error) {
	var zero R
	c, exec, err := d.begin(ctx, kind, common, false)
	if err != nil {
		return zero, err
	}

	c.event(observability.EventExecutorStart)
	res, err := invoke(c.ctx, exec)
	c.event(observability.EventExecutorEnd)
	if err != nil {
		c.finish(err)
		return zero, err
	}

	if convert != nil {
		c.record(func(meta record.Meta) (record.Record, error) {
			return convert(meta, res)
		})
	}
	c.finish(nil)
	return res, nil
}

// runStream is the streaming path for chat and completion. h always ends
// terminated, including when resolution fails or the executor returns
// without terminating it.
func runStream(
	ctx context.Context,
	d *Dispatcher,
	kind task.Kind,
	common *task.Common,
	h *stream.Handler,
	invoke func(context.Context, executor.Executor, *stream.Handler) error,
	convert func(record.Meta, *ai.ChatResponse) (record.Record, error),
) (*ai.ChatResponse, error) {
	if h == nil {
		h = stream.NewHandler()
	}
	c, exec, err := d.begin(ctx, kind, common, true)
	if err != nil {
		h.Error(err)
		return nil, err
	}

	c.event(observability.EventExecutorStart)
	err = invoke(c.ctx, exec, h)
	c.event(observability.EventExecutorEnd)
	if err != nil {
		h.Error(err)
	}
	if !h.Terminated() {
		h.Error(stream.ErrIncomplete)
	}

	resp, handlerErr := h.Result()
	if err == nil {
		err = handlerErr
	}
	if err != nil {
		c.finish(err)
		return nil, err
	}

	if resp != nil && resp.FinishReason != "" {
		c.setAttributes(observability.String(observability.AttrFinishReason, resp.FinishReason))
	}
	c.record(func(meta record.Meta) (record.Record, error) {
		return convert(meta, resp)
	})
	c.finish(nil)
	return resp, nil
}
