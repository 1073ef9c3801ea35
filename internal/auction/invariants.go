package auction

import "fmt"

// CheckInvariants verifies the state rules every committed auction must
// satisfy. A failure indicates a bug, not a rejected request.
func CheckInvariants(a *Auction) error {
	if a.HasLeader() {
		leaderMax, ok := a.MaxProxy(a.LeaderID)
		if !ok {
			return fmt.Errorf("auction %s: leader %s has no surviving bids", a.ID, a.LeaderID)
		}
		if a.CurrentPrice.GreaterThan(leaderMax) {
			return fmt.Errorf("auction %s: price %s exceeds leader maximum %s", a.ID, a.CurrentPrice, leaderMax)
		}
	}
	if !a.Aligned(a.CurrentPrice) {
		return fmt.Errorf("auction %s: price %s is off the %s step grid", a.ID, a.CurrentPrice, a.StepPrice)
	}
	if n := len(distinctBidders(a.History)); n != a.ParticipantCount {
		return fmt.Errorf("auction %s: participant count %d, history has %d bidders", a.ID, a.ParticipantCount, n)
	}
	if a.HasLeader() && a.IsBanned(a.LeaderID) {
		return fmt.Errorf("auction %s: banned bidder %s leads", a.ID, a.LeaderID)
	}
	return nil
}
