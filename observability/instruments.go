package observability

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/kbukum/liveview/errors"
)

// Attribute keys used by the engine.
const (
	AttrOperation = "liveview.operation"
	AttrOutcome   = "liveview.outcome"
	AttrStage     = "liveview.stage"
	AttrKind      = "liveview.kind"
	AttrView      = "liveview.view"
	AttrIndex     = "liveview.index"
)

// Mutation outcomes.
const (
	OutcomeApplied  = "applied"
	OutcomeNoop     = "noop"
	OutcomeRejected = "rejected"
	OutcomeFailed   = "failed"
)

// Instruments holds the engine's metric instruments and tracer. All methods
// are safe on a nil receiver.
type Instruments struct {
	tracer    trace.Tracer
	mutations metric.Int64Counter
	events    metric.Int64Counter
	failures  metric.Int64Counter
	delivery  metric.Float64Histogram
}

// NewInstruments creates instruments on the given meter and tracer.
func NewInstruments(meter metric.Meter, tracer trace.Tracer) (*Instruments, error) {
	mutations, err := meter.Int64Counter("liveview.source.mutations",
		metric.WithDescription("Source mutations by operation and outcome"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating liveview.source.mutations counter: %w", err)
	}

	events, err := meter.Int64Counter("liveview.stage.events",
		metric.WithDescription("Change events emitted by pipeline stages"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating liveview.stage.events counter: %w", err)
	}

	failures, err := meter.Int64Counter("liveview.subscriber.failures",
		metric.WithDescription("Subscriber handler failures"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating liveview.subscriber.failures counter: %w", err)
	}

	delivery, err := meter.Float64Histogram("liveview.delivery.duration",
		metric.WithDescription("Time spent delivering one event to a view's subscribers"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating liveview.delivery.duration histogram: %w", err)
	}

	return &Instruments{
		tracer:    tracer,
		mutations: mutations,
		events:    events,
		failures:  failures,
		delivery:  delivery,
	}, nil
}

// StartMutation opens a span for a source mutation.
func (i *Instruments) StartMutation(ctx context.Context, op string, index int) (context.Context, trace.Span) {
	if i == nil || i.tracer == nil {
		return ctx, trace.SpanFromContext(ctx)
	}
	return i.tracer.Start(ctx, "source."+op, trace.WithAttributes(
		attribute.String(AttrOperation, op),
		attribute.Int(AttrIndex, index),
	))
}

// EndMutation closes span and counts the mutation. Errors with a
// structural code were refused before the source changed and count as
// rejected; any other error counts as failed.
func (i *Instruments) EndMutation(ctx context.Context, span trace.Span, op string, err error, applied bool) {
	if i == nil {
		return
	}
	outcome := OutcomeApplied
	switch {
	case err != nil:
		outcome = OutcomeFailed
		if appErr, ok := errors.AsAppError(err); ok && errors.IsStructuralCode(appErr.Code) {
			outcome = OutcomeRejected
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	case !applied:
		outcome = OutcomeNoop
	}
	span.SetAttributes(attribute.String(AttrOutcome, outcome))
	span.End()
	i.mutations.Add(ctx, 1, metric.WithAttributes(
		attribute.String(AttrOperation, op),
		attribute.String(AttrOutcome, outcome),
	))
}

// RecordEvent counts one event emitted by stage.
func (i *Instruments) RecordEvent(ctx context.Context, stage, kind string) {
	if i == nil {
		return
	}
	i.events.Add(ctx, 1, metric.WithAttributes(
		attribute.String(AttrStage, stage),
		attribute.String(AttrKind, kind),
	))
}

// RecordDelivery records one delivery round of view and the number of
// handlers that failed in it.
func (i *Instruments) RecordDelivery(ctx context.Context, view string, d time.Duration, failed int) {
	if i == nil {
		return
	}
	attrs := metric.WithAttributes(attribute.String(AttrView, view))
	i.delivery.Record(ctx, d.Seconds(), attrs)
	if failed > 0 {
		i.failures.Add(ctx, int64(failed), attrs)
	}
}
