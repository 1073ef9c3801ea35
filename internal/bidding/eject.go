package bidding

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/Hoang105205/Online-Auction-sub001/internal/auction"
	"github.com/Hoang105205/Online-Auction-sub001/internal/notify"
	"github.com/Hoang105205/Online-Auction-sub001/internal/store"
)

// EjectResult is the auction state after an ejection.
type EjectResult struct {
	CurrentPrice     decimal.Decimal
	LeaderID         string
	ParticipantCount int
	// Removed is the number of history records purged.
	Removed int
}

// EjectBidder bans bidderID from auctionID on behalf of ownerID, purges
// their bids and rebuilds leader and price from what remains.
func (e *Engine) EjectBidder(ctx context.Context, auctionID, ownerID, bidderID string) (*EjectResult, error) {
	ctx, span := e.tracer.Start(ctx, "Engine.EjectBidder",
		trace.WithAttributes(
			attribute.String("auction_id", auctionID),
			attribute.String("owner_id", ownerID),
			attribute.String("bidder_id", bidderID),
		),
	)
	defer span.End()

	res, notes, err := e.ejectBidder(ctx, auctionID, ownerID, bidderID)
	if err != nil {
		e.fail(ctx, span, "eject_bidder", err)
		return nil, err
	}
	if notes == nil {
		return res, nil
	}

	e.ejections.Add(ctx, 1)
	e.dispatcher.Dispatch(ctx, notes...)
	e.logger.InfoContext(ctx, "bidder ejected",
		slog.String("auction_id", auctionID),
		slog.String("bidder_id", bidderID),
		slog.Int("removed", res.Removed),
		slog.String("leader_id", res.LeaderID),
		slog.String("current_price", res.CurrentPrice.String()),
	)
	return res, nil
}

func (e *Engine) ejectBidder(ctx context.Context, auctionID, ownerID, bidderID string) (*EjectResult, []notify.Notification, error) {
	u, err := e.ledger.Begin(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("beginning unit of work: %w", err)
	}
	defer func() { _ = u.Rollback() }()

	a, err := u.Load(ctx, auctionID)
	if err != nil {
		return nil, nil, err
	}
	if err := auction.CheckEjection(a, ownerID); err != nil {
		return nil, nil, err
	}

	ej := auction.Eject(a, bidderID)
	next := ej.Auction
	result := &EjectResult{
		CurrentPrice:     next.CurrentPrice,
		LeaderID:         next.LeaderID,
		ParticipantCount: next.ParticipantCount,
		Removed:          ej.Removed,
	}
	if !ej.Changed {
		return result, nil, nil
	}
	if ej.AmbiguousTie {
		e.logger.WarnContext(ctx, "ejection rebuild hit equal maxima placed at the same instant; ordering by arrival",
			slog.String("auction_id", auctionID),
			slog.String("leader_id", next.LeaderID),
		)
	}

	if err := auction.CheckInvariants(next); err != nil {
		return nil, nil, fmt.Errorf("rebuilt auction %s is inconsistent: %w", a.ID, err)
	}
	change := store.Change{Auction: next, Banned: bidderID}
	if ej.Removed > 0 {
		change.Purged = bidderID
	}
	if err := u.Commit(ctx, change); err != nil {
		return nil, nil, err
	}

	return result, ejectNotifications(a, next, bidderID), nil
}
