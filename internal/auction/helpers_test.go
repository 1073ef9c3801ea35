package auction_test

import (
	"fmt"
	"testing"
	"time"

	"github.com/peterldowns/testy/assert"
	"github.com/shopspring/decimal"

	"github.com/Hoang105205/Online-Auction-sub001/internal/auction"
)

var t0 = time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

// newAuction returns an active auction: start 100, step 10, closing in an hour.
func newAuction() *auction.Auction {
	return &auction.Auction{
		ID:              "a1",
		OwnerID:         "owner",
		StartPrice:      dec("100"),
		StepPrice:       dec("10"),
		BuyNowPrice:     decimal.Zero,
		CurrentPrice:    dec("100"),
		StartTime:       t0.Add(-time.Hour),
		EndTime:         t0.Add(time.Hour),
		Status:          auction.StatusActive,
		AllowNewBidders: true,
	}
}

// place resolves a bid that must be accepted and returns the new state.
func place(t *testing.T, a *auction.Auction, bidder, amount string, at time.Time) *auction.Resolution {
	t.Helper()
	res, err := auction.Resolve(a, auction.BidRecord{
		ID:          fmt.Sprintf("%s-%s", bidder, amount),
		BidderID:    bidder,
		ProxyAmount: dec(amount),
		PlacedAt:    at,
	})
	assert.NoError(t, err)
	assert.NoError(t, auction.CheckInvariants(res.Auction))
	return res
}
