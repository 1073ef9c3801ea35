package notify

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/Hoang105205/Online-Auction-sub001/internal/config"
)

// Drop reasons recorded on the failure counter.
const (
	reasonDelivery  = "delivery"
	reasonQueueFull = "queue_full"
	reasonClosed    = "closed"
)

// Dispatcher delivers notifications in the background on a fixed pool of
// workers. Deliveries are detached from the caller's context and bounded in
// time. Dispatch never blocks: when the queue is full or the dispatcher is
// closed the notification is dropped. Failures are only logged and counted.
type Dispatcher struct {
	notifier Notifier
	timeout  time.Duration
	logger   *slog.Logger
	failed   metric.Int64Counter

	mu     sync.Mutex
	closed bool
	queue  chan job
	wg     sync.WaitGroup
}

type job struct {
	ctx context.Context
	n   Notification
}

// NewDispatcher creates a Dispatcher around n and starts cfg.MaxInFlight
// workers. Close stops them.
func NewDispatcher(n Notifier, cfg config.NotifyConfig, logger *slog.Logger, mp metric.MeterProvider) (*Dispatcher, error) {
	failed, err := mp.Meter("github.com/Hoang105205/Online-Auction-sub001/internal/notify").Int64Counter(
		"auction.notifications.failed",
		metric.WithDescription("Notifications that could not be delivered."),
	)
	if err != nil {
		return nil, fmt.Errorf("creating counter: %w", err)
	}
	workers := cfg.MaxInFlight
	if workers <= 0 {
		workers = 1
	}
	depth := cfg.QueueSize
	if depth <= 0 {
		depth = workers * 16
	}
	d := &Dispatcher{
		notifier: n,
		timeout:  cfg.Timeout,
		logger:   logger,
		failed:   failed,
		queue:    make(chan job, depth),
	}
	d.wg.Add(workers)
	for range workers {
		go d.work()
	}
	return d, nil
}

// Dispatch queues notes for delivery and returns immediately.
func (d *Dispatcher) Dispatch(ctx context.Context, notes ...Notification) {
	ctx = context.WithoutCancel(ctx)

	d.mu.Lock()
	defer d.mu.Unlock()
	for _, n := range notes {
		if d.closed {
			d.drop(ctx, n, reasonClosed, nil)
			continue
		}
		select {
		case d.queue <- job{ctx: ctx, n: n}:
		default:
			d.drop(ctx, n, reasonQueueFull, nil)
		}
	}
}

func (d *Dispatcher) work() {
	defer d.wg.Done()
	for j := range d.queue {
		d.deliver(j.ctx, j.n)
	}
}

func (d *Dispatcher) deliver(ctx context.Context, n Notification) {
	if d.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.timeout)
		defer cancel()
	}
	if err := d.notifier.Notify(ctx, n); err != nil {
		d.drop(ctx, n, reasonDelivery, err)
	}
}

func (d *Dispatcher) drop(ctx context.Context, n Notification, reason string, err error) {
	d.failed.Add(ctx, 1, metric.WithAttributes(
		attribute.String("kind", string(n.Kind)),
		attribute.String("reason", reason),
	))
	attrs := []any{
		slog.String("kind", string(n.Kind)),
		slog.String("recipient", n.Recipient),
		slog.String("auction_id", n.AuctionID),
		slog.String("reason", reason),
	}
	if err != nil {
		attrs = append(attrs, slog.Any("error", err))
	}
	d.logger.WarnContext(ctx, "notification dropped", attrs...)
}

// Close stops accepting notifications and waits for queued deliveries
// until ctx is done. It is safe to call more than once.
func (d *Dispatcher) Close(ctx context.Context) error {
	d.mu.Lock()
	if !d.closed {
		d.closed = true
		close(d.queue)
	}
	d.mu.Unlock()

	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("waiting for notifications: %w", ctx.Err())
	}
}
