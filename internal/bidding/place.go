package bidding

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/Hoang105205/Online-Auction-sub001/internal/auction"
	"github.com/Hoang105205/Online-Auction-sub001/internal/notify"
	"github.com/Hoang105205/Online-Auction-sub001/internal/store"
)

// BidResult is what a bidder learns after a successful bid.
type BidResult struct {
	Outcome      auction.Outcome
	CurrentPrice decimal.Decimal
	LeaderID     string
	EndTime      time.Time
	Extended     bool
}

// PlaceBid validates and resolves a proxy bid of amount by bidderID on
// auctionID. Rejections wrap the auction package sentinels and leave the
// auction untouched. auction.ErrConflict means a concurrent commit won;
// the caller may resubmit.
func (e *Engine) PlaceBid(ctx context.Context, auctionID, bidderID string, amount decimal.Decimal) (*BidResult, error) {
	ctx, span := e.tracer.Start(ctx, "Engine.PlaceBid",
		trace.WithAttributes(
			attribute.String("auction_id", auctionID),
			attribute.String("bidder_id", bidderID),
			attribute.String("amount", amount.String()),
		),
	)
	defer span.End()

	res, notes, err := e.placeBid(ctx, auctionID, bidderID, amount)
	if err != nil {
		e.fail(ctx, span, "place_bid", err)
		return nil, err
	}

	span.SetAttributes(attribute.String("outcome", string(res.Outcome)))
	e.bids.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", string(res.Outcome))))
	e.dispatcher.Dispatch(ctx, notes...)

	e.logger.InfoContext(ctx, "bid placed",
		slog.String("auction_id", auctionID),
		slog.String("bidder_id", bidderID),
		slog.String("outcome", string(res.Outcome)),
		slog.String("current_price", res.CurrentPrice.String()),
		slog.String("leader_id", res.LeaderID),
		slog.Bool("extended", res.Extended),
	)
	return res, nil
}

func (e *Engine) placeBid(ctx context.Context, auctionID, bidderID string, amount decimal.Decimal) (*BidResult, []notify.Notification, error) {
	u, err := e.ledger.Begin(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("beginning unit of work: %w", err)
	}
	defer func() { _ = u.Rollback() }()

	a, err := u.Load(ctx, auctionID)
	if err != nil {
		return nil, nil, err
	}

	now := e.clock.Now()
	if err := auction.CheckEligibility(a, bidderID, now); err != nil {
		return nil, nil, err
	}
	rep, err := e.ratings.Reputation(ctx, bidderID)
	if err != nil {
		return nil, nil, fmt.Errorf("checking reputation: %w", err)
	}
	if err := auction.CheckReputation(a, rep, e.minGood); err != nil {
		return nil, nil, err
	}
	effective, err := auction.CheckAmount(a, amount)
	if err != nil {
		return nil, nil, err
	}

	res, err := auction.Resolve(a, auction.BidRecord{
		ID:          uuid.NewString(),
		BidderID:    bidderID,
		ProxyAmount: effective,
		PlacedAt:    now,
	})
	if err != nil {
		return nil, nil, err
	}

	var extended bool
	if a.AutoExtend {
		policy, err := e.policy.ExtendPolicy(ctx)
		if err != nil {
			return nil, nil, fmt.Errorf("reading extend policy: %w", err)
		}
		extended = auction.ApplyExtension(res.Auction, a.EndTime, policy, now)
	}

	if err := auction.CheckInvariants(res.Auction); err != nil {
		return nil, nil, fmt.Errorf("resolved auction %s is inconsistent: %w", a.ID, err)
	}
	if err := u.Commit(ctx, store.Change{
		Auction:  res.Auction,
		Appended: []auction.BidRecord{res.Record},
	}); err != nil {
		return nil, nil, err
	}

	next := res.Auction
	return &BidResult{
		Outcome:      res.Outcome,
		CurrentPrice: next.CurrentPrice,
		LeaderID:     next.LeaderID,
		EndTime:      next.EndTime,
		Extended:     extended,
	}, bidNotifications(res, bidderID), nil
}
