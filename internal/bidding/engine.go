// Package bidding coordinates bid placement and bidder ejection: each call
// runs inside one optimistic unit of work and notifies interested users
// only after the commit succeeded.
package bidding

import (
	"context"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	metricnoop "go.opentelemetry.io/otel/metric/noop"
	"go.opentelemetry.io/otel/trace"
	tracenoop "go.opentelemetry.io/otel/trace/noop"

	"github.com/Hoang105205/Online-Auction-sub001/internal/auction"
	"github.com/Hoang105205/Online-Auction-sub001/internal/clock"
	"github.com/Hoang105205/Online-Auction-sub001/internal/notify"
	"github.com/Hoang105205/Online-Auction-sub001/internal/rating"
	"github.com/Hoang105205/Online-Auction-sub001/internal/store"
)

const instrumentation = "github.com/Hoang105205/Online-Auction-sub001/internal/bidding"

// Dispatcher hands committed outcomes to the notification channel.
// *notify.Dispatcher implements it.
type Dispatcher interface {
	Dispatch(ctx context.Context, notes ...notify.Notification)
}

// Deps are the collaborators of an Engine. Tracer, Meter and Dispatcher
// may be nil. A zero MinGoodPercentage means
// auction.DefaultMinGoodPercentage.
type Deps struct {
	Ledger            store.Ledger
	Ratings           rating.Gate
	Policy            PolicySource
	Dispatcher        Dispatcher
	MinGoodPercentage float64
	Logger            *slog.Logger
	Tracer            trace.TracerProvider
	Meter             metric.MeterProvider
	Clock             clock.Clock
}

// Engine places bids and ejects bidders. It keeps no auction state of its
// own; every call reads the current snapshot from the ledger.
type Engine struct {
	ledger     store.Ledger
	ratings    rating.Gate
	policy     PolicySource
	dispatcher Dispatcher
	minGood    float64
	logger     *slog.Logger
	tracer     trace.Tracer
	clock      clock.Clock

	bids       metric.Int64Counter
	rejections metric.Int64Counter
	conflicts  metric.Int64Counter
	ejections  metric.Int64Counter
}

// NewEngine creates an Engine.
func NewEngine(d Deps) (*Engine, error) {
	if d.Ledger == nil || d.Ratings == nil || d.Policy == nil || d.Logger == nil || d.Clock == nil {
		return nil, fmt.Errorf("bidding engine needs a ledger, rating gate, policy source, logger and clock")
	}
	if d.Tracer == nil {
		d.Tracer = tracenoop.NewTracerProvider()
	}
	if d.Meter == nil {
		d.Meter = metricnoop.NewMeterProvider()
	}
	if d.Dispatcher == nil {
		d.Dispatcher = discardDispatcher{}
	}
	if d.MinGoodPercentage == 0 {
		d.MinGoodPercentage = auction.DefaultMinGoodPercentage
	}

	e := &Engine{
		ledger:     d.Ledger,
		ratings:    d.Ratings,
		policy:     d.Policy,
		dispatcher: d.Dispatcher,
		minGood:    d.MinGoodPercentage,
		logger:     d.Logger,
		tracer:     d.Tracer.Tracer(instrumentation),
		clock:      d.Clock,
	}

	meter := d.Meter.Meter(instrumentation)
	var err error
	if e.bids, err = meter.Int64Counter("auction.bids",
		metric.WithDescription("Accepted bids by outcome.")); err != nil {
		return nil, fmt.Errorf("creating counter: %w", err)
	}
	if e.rejections, err = meter.Int64Counter("auction.bid.rejections",
		metric.WithDescription("Rejected operations by error kind.")); err != nil {
		return nil, fmt.Errorf("creating counter: %w", err)
	}
	if e.conflicts, err = meter.Int64Counter("auction.conflicts",
		metric.WithDescription("Commits lost to a concurrent writer.")); err != nil {
		return nil, fmt.Errorf("creating counter: %w", err)
	}
	if e.ejections, err = meter.Int64Counter("auction.ejections",
		metric.WithDescription("Committed bidder ejections.")); err != nil {
		return nil, fmt.Errorf("creating counter: %w", err)
	}
	return e, nil
}

// fail records err on the span and in metrics. Domain rejections and
// conflicts are expected; anything else is logged as an error.
func (e *Engine) fail(ctx context.Context, span trace.Span, op string, err error) {
	kind := auction.KindOf(err)
	span.SetAttributes(attribute.String("error.kind", kind))
	switch kind {
	case "conflict":
		e.conflicts.Add(ctx, 1, metric.WithAttributes(attribute.String("op", op)))
		e.logger.WarnContext(ctx, "commit conflict", slog.String("op", op), slog.Any("error", err))
	case "":
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		e.logger.ErrorContext(ctx, "operation failed", slog.String("op", op), slog.Any("error", err))
	default:
		e.rejections.Add(ctx, 1, metric.WithAttributes(
			attribute.String("op", op),
			attribute.String("kind", kind),
		))
		e.logger.DebugContext(ctx, "operation rejected", slog.String("op", op), slog.String("kind", kind))
	}
}

type discardDispatcher struct{}

func (discardDispatcher) Dispatch(context.Context, ...notify.Notification) {}
