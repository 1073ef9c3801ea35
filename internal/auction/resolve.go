package auction

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Outcome describes what an accepted bid did to the auction.
type Outcome string

const (
	// OutcomeLeading: the bidder took (or opened) the lead.
	OutcomeLeading Outcome = "leading"
	// OutcomeRaised: the leader raised their own ceiling.
	OutcomeRaised Outcome = "raised"
	// OutcomeOutbid: the bid was recorded but the incumbent still leads.
	OutcomeOutbid Outcome = "outbid"
	// OutcomeBoughtNow: the bid reached the buy-now price and won outright.
	OutcomeBoughtNow Outcome = "bought_now"
)

// Resolution is the result of resolving one proxy bid.
type Resolution struct {
	Auction        *Auction
	Outcome        Outcome
	PreviousLeader string
	Record         BidRecord
}

// LeaderChanged reports whether the bid moved the lead to someone else.
func (r *Resolution) LeaderChanged() bool {
	return r.PreviousLeader != r.Auction.LeaderID
}

// Resolve applies an already validated proxy bid to a and returns the new
// state. rec carries the id, bidder, amount and time; Seq is assigned here.
// a is not modified.
func Resolve(a *Auction, rec BidRecord) (*Resolution, error) {
	next := a.Clone()
	res := &Resolution{Auction: next, PreviousLeader: a.LeaderID}
	amount := rec.ProxyAmount

	switch {
	case !a.HasLeader():
		// The opening bid only has to meet the floor.
		next.LeaderID = rec.BidderID
		next.CurrentPrice = a.StartPrice
		res.Outcome = OutcomeLeading

	case a.LeaderID == rec.BidderID:
		prevMax, _ := a.MaxProxy(rec.BidderID)
		if amount.LessThanOrEqual(prevMax) {
			return nil, fmt.Errorf("%w: current maximum is %s", ErrInvalidRaise, prevMax)
		}
		res.Outcome = OutcomeRaised

	default:
		leaderMax, ok := a.MaxProxy(a.LeaderID)
		if !ok {
			return nil, fmt.Errorf("auction %s: leader %s has no bid records", a.ID, a.LeaderID)
		}
		if amount.GreaterThan(leaderMax) {
			next.LeaderID = rec.BidderID
			next.CurrentPrice = decimal.Min(amount, leaderMax.Add(a.StepPrice))
			res.Outcome = OutcomeLeading
		} else {
			// Ties go to the incumbent.
			next.CurrentPrice = amount
			res.Outcome = OutcomeOutbid
		}
	}

	if a.BuyNowEnabled() && (next.CurrentPrice.GreaterThanOrEqual(a.BuyNowPrice) || amount.Equal(a.BuyNowPrice)) {
		next.CurrentPrice = a.BuyNowPrice
		next.LeaderID = rec.BidderID
		next.Status = StatusPending
		next.EndTime = rec.PlacedAt
		res.Outcome = OutcomeBoughtNow
	}

	rec.Seq = a.NextSeq()
	next.History = append(next.History, rec)
	next.ParticipantCount = len(distinctBidders(next.History))
	res.Record = rec
	return res, nil
}
