package adapter

import (
	"context"
	"log/slog"
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/leofalp/localllm/providers/observability"
)

const (
	statusSuccess     = "success"
	statusError       = "error"
	statusAbandoned   = "abandoned"
	statusUnsupported = "unsupported"
)

// operation tracks one adapter call: its span, timing and the attributes
// shared by its logs and metrics. Every method is a no-op on the span side
// when the adapter has no observer.
type operation struct {
	name      string
	requestID string
	observer  observability.Provider
	span      observability.Span
	start     time.Time

	metricAttrs []observability.Attribute
	logAttrs    []observability.Attribute
}

// begin starts an operation. The returned context carries the span and the
// observer so the HTTP helpers can attach request events to it.
func (a *Adapter) begin(ctx context.Context, spanName, opName string, attrs ...observability.Attribute) (context.Context, *operation) {
	op := &operation{
		name:      opName,
		requestID: uuid.NewString(),
		observer:  a.observer,
		start:     time.Now(),
		metricAttrs: []observability.Attribute{
			observability.String(observability.AttrLLMProvider, a.backend.Kind().Slug()),
			observability.String(observability.AttrOperation, opName),
		},
	}
	op.logAttrs = append(slices.Clone(op.metricAttrs),
		observability.String(observability.AttrRequestID, op.requestID),
	)
	op.logAttrs = append(op.logAttrs, attrs...)

	if a.observer == nil {
		return ctx, op
	}

	ctx, op.span = a.observer.StartSpan(ctx, spanName, op.logAttrs...)
	ctx = observability.ContextWithSpan(ctx, op.span)
	ctx = observability.ContextWithObserver(ctx, a.observer)

	a.observer.Debug(ctx, opName+" started", op.logAttrs...)
	return ctx, op
}

// event adds a span event; used for stream milestones.
func (op *operation) event(name string, attrs ...observability.Attribute) {
	if op.span != nil {
		op.span.AddEvent(name, attrs...)
	}
}

// end records the outcome. Without an observer, failures still reach the
// default slog logger so they are never silently dropped.
func (op *operation) end(ctx context.Context, status string, err error, attrs ...observability.Attribute) {
	elapsed := time.Since(op.start)

	if op.observer == nil {
		if err != nil {
			slog.WarnContext(ctx, op.name+" failed",
				slog.String(observability.AttrRequestID, op.requestID),
				slog.String(observability.AttrError, err.Error()),
			)
		}
		return
	}

	op.observer.Histogram(observability.MetricRequestDuration).Record(ctx, elapsed.Seconds(), op.metricAttrs...)
	op.observer.Counter(observability.MetricRequestCount).Add(ctx, 1,
		append(slices.Clone(op.metricAttrs), observability.String(observability.AttrStatus, status))...,
	)

	logAttrs := append(slices.Clone(op.logAttrs),
		observability.String(observability.AttrStatus, status),
		observability.Duration(observability.AttrDuration, elapsed),
	)
	logAttrs = append(logAttrs, attrs...)
	op.span.SetAttributes(attrs...)

	switch {
	case err != nil:
		op.span.RecordError(err)
		op.span.SetStatus(observability.StatusError, op.name+" failed")
		op.observer.Error(ctx, op.name+" failed", append(logAttrs,
			observability.Error(err),
			observability.String(observability.AttrErrorType, errorType(err)),
		)...)
	case status == statusAbandoned:
		op.span.SetStatus(observability.StatusOK, op.name+" abandoned")
		op.observer.Info(ctx, op.name+" abandoned", logAttrs...)
	default:
		op.span.SetStatus(observability.StatusOK, status)
		op.observer.Info(ctx, op.name+" completed", logAttrs...)
	}

	op.span.End()
}

// countFragments feeds the per-provider fragment counter.
func (op *operation) countFragments(ctx context.Context, fragments int) {
	if op.observer == nil || fragments == 0 {
		return
	}
	op.observer.Counter(observability.MetricStreamFragments).Add(ctx, int64(fragments), op.metricAttrs...)
}
