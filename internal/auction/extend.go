package auction

import "time"

// ExtendPolicy is the anti-snipe configuration. A bid landing within
// BeforeWindow of the close pushes the close out by Extension.
type ExtendPolicy struct {
	BeforeWindow time.Duration
	Extension    time.Duration
}

// Enabled reports whether the policy can ever extend an auction.
func (p ExtendPolicy) Enabled() bool {
	return p.BeforeWindow > 0 && p.Extension > 0
}

// ApplyExtension extends next.EndTime when the accepted bid at now landed
// inside the pre-close window of originalEnd, the closing time read before
// this operation. It reports whether the auction was extended.
func ApplyExtension(next *Auction, originalEnd time.Time, p ExtendPolicy, now time.Time) bool {
	if !next.AutoExtend || next.Status != StatusActive || !p.Enabled() {
		return false
	}
	if originalEnd.Sub(now) > p.BeforeWindow {
		return false
	}
	next.EndTime = originalEnd.Add(p.Extension)
	return true
}
