package rating_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Hoang105205/Online-Auction-sub001/internal/rating"
)

func TestSummarize(t *testing.T) {
	tests := []struct {
		name      string
		scores    []int
		wantTotal int
		wantGood  float64
	}{
		{name: "no history", scores: nil, wantTotal: 0, wantGood: 0},
		{name: "all good", scores: []int{1, 1, 1}, wantTotal: 3, wantGood: 100},
		{name: "four of five", scores: []int{1, 1, -1, 1, 1}, wantTotal: 5, wantGood: 80},
		{name: "all bad", scores: []int{-1, -1}, wantTotal: 2, wantGood: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := rating.Summarize(tt.scores)
			if got.Total != tt.wantTotal {
				t.Errorf("Total = %d, want %d", got.Total, tt.wantTotal)
			}
			if got.GoodPercentage != tt.wantGood {
				t.Errorf("GoodPercentage = %v, want %v", got.GoodPercentage, tt.wantGood)
			}
		})
	}
}

func TestFromCounts_Clamps(t *testing.T) {
	if got := rating.FromCounts(0, 5); got.HasHistory() {
		t.Errorf("FromCounts(0, 5) = %+v, want empty", got)
	}
	if got := rating.FromCounts(4, 9); got.GoodPercentage != 100 {
		t.Errorf("FromCounts(4, 9).GoodPercentage = %v, want 100", got.GoodPercentage)
	}
}

func TestWithTimeout(t *testing.T) {
	slow := rating.GateFunc(func(ctx context.Context, _ string) (rating.Reputation, error) {
		select {
		case <-ctx.Done():
			return rating.Reputation{}, ctx.Err()
		case <-time.After(time.Second):
			return rating.FromCounts(1, 1), nil
		}
	})

	_, err := rating.WithTimeout(slow, 10*time.Millisecond).Reputation(context.Background(), "b1")
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("error = %v, want deadline exceeded", err)
	}

	fast := rating.GateFunc(func(context.Context, string) (rating.Reputation, error) {
		return rating.FromCounts(2, 1), nil
	})
	rep, err := rating.WithTimeout(fast, time.Second).Reputation(context.Background(), "b1")
	if err != nil {
		t.Fatalf("Reputation() error = %v", err)
	}
	if rep.GoodPercentage != 50 {
		t.Errorf("GoodPercentage = %v, want 50", rep.GoodPercentage)
	}
}
