package auction

import (
	"fmt"
	"time"

	"github.com/google/btree"
	"github.com/shopspring/decimal"
)

// Standing is one bidder's best surviving proxy bid.
type Standing struct {
	BidderID string
	Max      decimal.Decimal
	At       time.Time // when Max was first recorded
	Seq      int64
}

// before orders standings by highest maximum, then earliest time, then arrival.
func (s Standing) before(o Standing) bool {
	if c := s.Max.Cmp(o.Max); c != 0 {
		return c > 0
	}
	if !s.At.Equal(o.At) {
		return s.At.Before(o.At)
	}
	return s.Seq < o.Seq
}

// Rank orders the distinct bidders of history by their best proxy bid.
// ambiguous is set when two bidders share both maximum and timestamp; they
// are then ordered by arrival sequence.
func Rank(history []BidRecord) (ranked []Standing, ambiguous bool) {
	best := make(map[string]Standing, len(history))
	for _, r := range history {
		cur, ok := best[r.BidderID]
		if !ok || r.ProxyAmount.GreaterThan(cur.Max) {
			best[r.BidderID] = Standing{BidderID: r.BidderID, Max: r.ProxyAmount, At: r.PlacedAt, Seq: r.Seq}
		}
	}

	tree := btree.NewG[Standing](8, Standing.before)
	for _, s := range best {
		tree.ReplaceOrInsert(s)
	}

	ranked = make([]Standing, 0, tree.Len())
	tree.Ascend(func(s Standing) bool {
		if n := len(ranked); n > 0 {
			prev := ranked[n-1]
			if prev.Max.Equal(s.Max) && prev.At.Equal(s.At) {
				ambiguous = true
			}
		}
		ranked = append(ranked, s)
		return true
	})
	return ranked, ambiguous
}

// Ejection is the result of purging a bidder.
type Ejection struct {
	Auction *Auction
	// Changed is false when the bidder was already banned and had no records.
	Changed      bool
	Removed      int
	AmbiguousTie bool
}

// CheckEjection verifies that ownerID may eject bidders from a.
func CheckEjection(a *Auction, ownerID string) error {
	if a == nil {
		return ErrNotFound
	}
	if a.OwnerID != ownerID {
		return fmt.Errorf("%w: only the owner can eject bidders", ErrForbidden)
	}
	if a.Status != StatusActive {
		return fmt.Errorf("%w: auction is %s", ErrInvalidState, a.Status)
	}
	return nil
}

// Eject bans bidderID and removes all of their records. When records were
// removed the leader, price and participant count are rebuilt from the
// surviving history. a is not modified.
func Eject(a *Auction, bidderID string) *Ejection {
	next := a.Clone()
	kept := make([]BidRecord, 0, len(a.History))
	for _, r := range a.History {
		if r.BidderID != bidderID {
			kept = append(kept, r)
		}
	}
	removed := len(a.History) - len(kept)
	if removed == 0 && a.IsBanned(bidderID) {
		return &Ejection{Auction: next}
	}

	next.Banned[bidderID] = struct{}{}
	ej := &Ejection{Auction: next, Changed: true, Removed: removed}
	if removed == 0 {
		return ej
	}

	next.History = kept
	ranked, ambiguous := Rank(kept)
	ej.AmbiguousTie = ambiguous

	switch len(ranked) {
	case 0:
		next.LeaderID = ""
		next.CurrentPrice = a.StartPrice
	case 1:
		next.LeaderID = ranked[0].BidderID
		next.CurrentPrice = a.StartPrice
	default:
		next.LeaderID = ranked[0].BidderID
		next.CurrentPrice = ranked[1].Max
	}
	next.ParticipantCount = len(ranked)
	return ej
}
