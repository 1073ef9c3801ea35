// Package auction holds the auction aggregate and the pure functions that
// validate bids against it, resolve proxy bids, extend closing times and
// rebuild state after a bidder is ejected. Nothing in this package performs
// I/O; persistence and atomicity live in the store and bidding packages.
package auction

import (
	"time"

	"github.com/shopspring/decimal"
)

// Status is the lifecycle state of an auction.
type Status string

const (
	StatusPending   Status = "pending"
	StatusActive    Status = "active"
	StatusEnded     Status = "ended"
	StatusCancelled Status = "cancelled"
)

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusActive, StatusEnded, StatusCancelled:
		return true
	}
	return false
}

// Terminal reports whether no further mutation is allowed.
func (s Status) Terminal() bool {
	return s == StatusEnded || s == StatusCancelled
}

// BidRecord is one accepted proxy bid. Records are append-only and ordered
// by Seq; ejection is the only operation that removes them.
type BidRecord struct {
	ID          string
	BidderID    string
	ProxyAmount decimal.Decimal
	PlacedAt    time.Time
	Seq         int64
}

// Auction is the aggregate root for one listed item. It owns its bid history.
type Auction struct {
	ID      string
	OwnerID string

	StartPrice   decimal.Decimal
	StepPrice    decimal.Decimal
	BuyNowPrice  decimal.Decimal // zero disables buy-now
	CurrentPrice decimal.Decimal

	LeaderID string // empty when nobody leads

	StartTime time.Time
	EndTime   time.Time

	AutoExtend       bool
	Status           Status
	ParticipantCount int
	AllowNewBidders  bool
	Banned           map[string]struct{}
	History          []BidRecord

	// Version is the optimistic concurrency token. Stores bump it on every
	// commit and refuse a commit made against a stale value.
	Version int64
}

// HasLeader reports whether some bidder currently leads.
func (a *Auction) HasLeader() bool { return a.LeaderID != "" }

// BuyNowEnabled reports whether the auction has a buy-now price.
func (a *Auction) BuyNowEnabled() bool { return a.BuyNowPrice.IsPositive() }

// IsBanned reports whether bidderID is excluded from this auction.
func (a *Auction) IsBanned(bidderID string) bool {
	_, ok := a.Banned[bidderID]
	return ok
}

// MinimumBid is the lowest proxy amount the auction currently accepts.
func (a *Auction) MinimumBid() decimal.Decimal {
	if a.HasLeader() {
		return a.CurrentPrice
	}
	return a.StartPrice
}

// Aligned reports whether p sits on the start+k*step price grid. The buy-now
// price is always considered aligned.
func (a *Auction) Aligned(p decimal.Decimal) bool {
	if a.BuyNowEnabled() && p.Equal(a.BuyNowPrice) {
		return true
	}
	return p.Sub(a.StartPrice).Mod(a.StepPrice).IsZero()
}

// MaxProxy returns the highest proxy amount bidderID has on record.
func (a *Auction) MaxProxy(bidderID string) (decimal.Decimal, bool) {
	var (
		best  decimal.Decimal
		found bool
	)
	for _, r := range a.History {
		if r.BidderID != bidderID {
			continue
		}
		if !found || r.ProxyAmount.GreaterThan(best) {
			best = r.ProxyAmount
			found = true
		}
	}
	return best, found
}

// Bidders returns the distinct bidder ids in history, in first-bid order.
func (a *Auction) Bidders() []string {
	return distinctBidders(a.History)
}

// NextSeq returns the sequence number for the next appended record.
func (a *Auction) NextSeq() int64 {
	if len(a.History) == 0 {
		return 1
	}
	return a.History[len(a.History)-1].Seq + 1
}

// Clone returns a deep copy; the pure functions in this package never
// mutate their input.
func (a *Auction) Clone() *Auction {
	c := *a
	c.History = append([]BidRecord(nil), a.History...)
	c.Banned = make(map[string]struct{}, len(a.Banned))
	for id := range a.Banned {
		c.Banned[id] = struct{}{}
	}
	return &c
}

func distinctBidders(history []BidRecord) []string {
	seen := make(map[string]struct{}, len(history))
	var ids []string
	for _, r := range history {
		if _, ok := seen[r.BidderID]; ok {
			continue
		}
		seen[r.BidderID] = struct{}{}
		ids = append(ids, r.BidderID)
	}
	return ids
}
