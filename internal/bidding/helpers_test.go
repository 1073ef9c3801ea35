package bidding_test

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Hoang105205/Online-Auction-sub001/internal/auction"
	"github.com/Hoang105205/Online-Auction-sub001/internal/bidding"
	"github.com/Hoang105205/Online-Auction-sub001/internal/clock"
	"github.com/Hoang105205/Online-Auction-sub001/internal/config"
	"github.com/Hoang105205/Online-Auction-sub001/internal/notify"
	"github.com/Hoang105205/Online-Auction-sub001/internal/rating"
	"github.com/Hoang105205/Online-Auction-sub001/internal/store"
	"github.com/Hoang105205/Online-Auction-sub001/internal/store/memstore"
)

var t0 = time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

// captured records dispatched notifications synchronously.
type captured struct {
	mu    sync.Mutex
	notes []notify.Notification
}

func (c *captured) Dispatch(_ context.Context, notes ...notify.Notification) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.notes = append(c.notes, notes...)
}

func (c *captured) take() []notify.Notification {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := c.notes
	c.notes = nil
	return out
}

// reputations is a rating gate backed by a map; missing bidders are unrated.
type reputations map[string]rating.Reputation

func (r reputations) Reputation(_ context.Context, id string) (rating.Reputation, error) {
	return r[id], nil
}

type fixture struct {
	engine *bidding.Engine
	store  *memstore.Store
	clock  *clock.Mock
	notes  *captured
}

type options struct {
	ledger  func(store.Ledger) store.Ledger
	ratings rating.Gate
	policy  bidding.PolicySource
}

func newFixture(t *testing.T, opts options) *fixture {
	t.Helper()
	clk := clock.NewMock(t0)
	s := memstore.New(clk)
	notes := &captured{}

	var ledger store.Ledger = s
	if opts.ledger != nil {
		ledger = opts.ledger(s)
	}
	if opts.ratings == nil {
		opts.ratings = reputations{}
	}
	if opts.policy == nil {
		opts.policy = bidding.StaticPolicy{BeforeWindow: 5 * time.Minute, Extension: 10 * time.Minute}
	}

	e, err := bidding.NewEngine(bidding.Deps{
		Ledger:            ledger,
		Ratings:           opts.ratings,
		Policy:            opts.policy,
		Dispatcher:        notes,
		MinGoodPercentage: auction.DefaultMinGoodPercentage,
		Logger:            slog.New(slog.NewTextHandler(io.Discard, nil)),
		Clock:             clk,
	})
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}
	return &fixture{engine: e, store: s, clock: clk, notes: notes}
}

// seed creates an active auction: start 100, step 10, closing in an hour.
func (f *fixture) seed(t *testing.T, mutate func(*auction.Auction)) *auction.Auction {
	t.Helper()
	a := &auction.Auction{
		OwnerID:         "owner",
		StartPrice:      dec("100"),
		StepPrice:       dec("10"),
		CurrentPrice:    dec("100"),
		StartTime:       t0.Add(-time.Hour),
		EndTime:         t0.Add(time.Hour),
		Status:          auction.StatusActive,
		AllowNewBidders: true,
	}
	if mutate != nil {
		mutate(a)
	}
	if err := f.store.Create(context.Background(), a); err != nil {
		t.Fatalf("Create: %v", err)
	}
	return a
}

func (f *fixture) bid(t *testing.T, auctionID, bidder, amount string) *bidding.BidResult {
	t.Helper()
	res, err := f.engine.PlaceBid(context.Background(), auctionID, bidder, dec(amount))
	if err != nil {
		t.Fatalf("PlaceBid(%s, %s): %v", bidder, amount, err)
	}
	return res
}

func (f *fixture) get(t *testing.T, id string) *auction.Auction {
	t.Helper()
	a, err := f.store.GetByID(context.Background(), id)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	return a
}

func kinds(notes []notify.Notification) map[notify.Kind]string {
	out := make(map[notify.Kind]string, len(notes))
	for _, n := range notes {
		out[n.Kind] = n.Recipient
	}
	return out
}

func configPolicy(source string) config.ExtendPolicyConfig {
	return config.ExtendPolicyConfig{Source: source, BeforeWindow: 5 * time.Minute, Extension: 10 * time.Minute}
}
