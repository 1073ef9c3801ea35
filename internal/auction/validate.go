package auction

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Hoang105205/Online-Auction-sub001/internal/rating"
)

// DefaultMinGoodPercentage is the lowest good-feedback share a rated bidder
// may have.
const DefaultMinGoodPercentage = 80.0

// MoneyScale is the number of fractional digits a stored price may carry.
const MoneyScale = 2

// CheckListing validates the prices of a new listing before it is stored.
func CheckListing(a *Auction) error {
	if !a.StartPrice.IsPositive() || !a.StepPrice.IsPositive() {
		return fmt.Errorf("%w: start and step prices must be positive", ErrInvalidListing)
	}
	if a.BuyNowPrice.IsNegative() {
		return fmt.Errorf("%w: buy-now price must not be negative", ErrInvalidListing)
	}
	for _, p := range []struct {
		name string
		d    decimal.Decimal
	}{
		{"start", a.StartPrice},
		{"step", a.StepPrice},
		{"buy-now", a.BuyNowPrice},
		{"current", a.CurrentPrice},
	} {
		if !p.d.Equal(p.d.Round(MoneyScale)) {
			return fmt.Errorf("%w: %s price %s has more than %d decimal places", ErrInvalidListing, p.name, p.d, MoneyScale)
		}
	}
	return nil
}

// CheckEligibility runs the snapshot checks that need no collaborator:
// auction state, closing time, bans and self-bidding.
func CheckEligibility(a *Auction, bidderID string, now time.Time) error {
	if a == nil {
		return ErrNotFound
	}
	if a.Status != StatusActive {
		return fmt.Errorf("%w: auction is %s", ErrInvalidState, a.Status)
	}
	if !now.Before(a.EndTime) {
		return fmt.Errorf("%w: auction ended at %s", ErrInvalidState, a.EndTime.Format(time.RFC3339))
	}
	if a.IsBanned(bidderID) {
		return ErrBanned
	}
	if bidderID == a.OwnerID {
		return fmt.Errorf("%w: cannot bid on your own auction", ErrForbidden)
	}
	return nil
}

// CheckReputation applies the rating gate. Rated bidders need at least
// minGood percent good feedback; unrated bidders need AllowNewBidders.
func CheckReputation(a *Auction, rep rating.Reputation, minGood float64) error {
	if rep.HasHistory() && rep.GoodPercentage < minGood {
		return fmt.Errorf("%w: %.1f%% good, need %.1f%%", ErrReputationTooLow, rep.GoodPercentage, minGood)
	}
	if !a.AllowNewBidders && !rep.HasHistory() {
		return ErrNewBidderNotAllowed
	}
	return nil
}

// CheckAmount validates a proxy amount and returns the amount to record.
// Amounts at or above the buy-now price are clamped to it.
func CheckAmount(a *Auction, amount decimal.Decimal) (decimal.Decimal, error) {
	if !amount.IsPositive() {
		return decimal.Zero, fmt.Errorf("%w: amount must be positive", ErrBelowMinimum)
	}
	if min := a.MinimumBid(); amount.LessThan(min) {
		return decimal.Zero, fmt.Errorf("%w: minimum is %s", ErrBelowMinimum, min)
	}
	if a.BuyNowEnabled() && amount.GreaterThanOrEqual(a.BuyNowPrice) {
		amount = a.BuyNowPrice
	}
	if !a.Aligned(amount) {
		return decimal.Zero, fmt.Errorf("%w: %s is not %s plus a multiple of %s", ErrBadIncrement, amount, a.StartPrice, a.StepPrice)
	}
	return amount, nil
}

// Validate runs every bid check in order and returns the amount to record.
func Validate(a *Auction, bidderID string, amount decimal.Decimal, rep rating.Reputation, minGood float64, now time.Time) (decimal.Decimal, error) {
	if err := CheckEligibility(a, bidderID, now); err != nil {
		return decimal.Zero, err
	}
	if err := CheckReputation(a, rep, minGood); err != nil {
		return decimal.Zero, err
	}
	return CheckAmount(a, amount)
}
