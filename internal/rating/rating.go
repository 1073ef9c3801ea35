// Package rating summarizes a bidder's feedback history for bid eligibility.
package rating

import (
	"context"
	"fmt"
	"time"
)

// Reputation is the aggregate of a bidder's received feedback.
type Reputation struct {
	Total          int
	GoodPercentage float64 // 0..100, zero when Total is zero
}

// HasHistory reports whether the bidder has received any feedback.
func (r Reputation) HasHistory() bool { return r.Total > 0 }

// FromCounts builds a Reputation from a total and the number of good ratings.
func FromCounts(total, good int) Reputation {
	if total <= 0 {
		return Reputation{}
	}
	if good < 0 {
		good = 0
	}
	if good > total {
		good = total
	}
	return Reputation{
		Total:          total,
		GoodPercentage: float64(good) * 100 / float64(total),
	}
}

// Summarize aggregates raw feedback scores. A positive score counts as good.
func Summarize(scores []int) Reputation {
	good := 0
	for _, s := range scores {
		if s > 0 {
			good++
		}
	}
	return FromCounts(len(scores), good)
}

// Gate supplies reputation summaries. Implementations may be remote.
type Gate interface {
	Reputation(ctx context.Context, bidderID string) (Reputation, error)
}

// GateFunc adapts a function into a Gate.
type GateFunc func(ctx context.Context, bidderID string) (Reputation, error)

// Reputation calls f.
func (f GateFunc) Reputation(ctx context.Context, bidderID string) (Reputation, error) {
	return f(ctx, bidderID)
}

// WithTimeout bounds every lookup on g by d. A non-positive d returns g unchanged.
func WithTimeout(g Gate, d time.Duration) Gate {
	if d <= 0 {
		return g
	}
	return GateFunc(func(ctx context.Context, bidderID string) (Reputation, error) {
		ctx, cancel := context.WithTimeout(ctx, d)
		defer cancel()
		rep, err := g.Reputation(ctx, bidderID)
		if err != nil {
			return Reputation{}, fmt.Errorf("looking up reputation for %s: %w", bidderID, err)
		}
		return rep, nil
	})
}
