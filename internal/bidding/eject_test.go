package bidding_test

import (
	"context"
	"errors"
	"testing"

	"github.com/Hoang105205/Online-Auction-sub001/internal/auction"
	"github.com/Hoang105205/Online-Auction-sub001/internal/notify"
)

func TestEjectBidder_Leader(t *testing.T) {
	f := newFixture(t, options{})
	a := f.seed(t, nil)
	f.bid(t, a.ID, "b1", "150")
	f.bid(t, a.ID, "b2", "200")
	f.bid(t, a.ID, "b3", "170")
	f.notes.take()

	res, err := f.engine.EjectBidder(context.Background(), a.ID, "owner", "b2")
	if err != nil {
		t.Fatalf("EjectBidder: %v", err)
	}
	if res.LeaderID != "b3" || res.CurrentPrice.String() != "150" || res.ParticipantCount != 2 || res.Removed != 1 {
		t.Errorf("result = %+v, want b3 leading at 150 with 2 participants", res)
	}

	got := f.get(t, a.ID)
	if !got.IsBanned("b2") {
		t.Error("expected b2 banned")
	}
	if err := auction.CheckInvariants(got); err != nil {
		t.Errorf("CheckInvariants: %v", err)
	}

	k := kinds(f.notes.take())
	if k[notify.BidderEjected] != "b2" || k[notify.AuctionLeaderChanged] != "b3" {
		t.Errorf("notifications = %v", k)
	}

	_, err = f.engine.PlaceBid(context.Background(), a.ID, "b2", dec("500"))
	if !errors.Is(err, auction.ErrBanned) {
		t.Errorf("bid after ejection error = %v, want ErrBanned", err)
	}
}

func TestEjectBidder_LastBidderResetsPrice(t *testing.T) {
	f := newFixture(t, options{})
	a := f.seed(t, nil)
	f.bid(t, a.ID, "b1", "150")

	res, err := f.engine.EjectBidder(context.Background(), a.ID, "owner", "b1")
	if err != nil {
		t.Fatalf("EjectBidder: %v", err)
	}
	if res.LeaderID != "" || res.CurrentPrice.String() != "100" || res.ParticipantCount != 0 {
		t.Errorf("result = %+v, want no leader at start price", res)
	}
}

func TestEjectBidder_NonLeaderKeepsLeader(t *testing.T) {
	f := newFixture(t, options{})
	a := f.seed(t, nil)
	f.bid(t, a.ID, "b1", "300")
	f.bid(t, a.ID, "b3", "150")
	f.bid(t, a.ID, "b2", "200")
	f.notes.take()

	res, err := f.engine.EjectBidder(context.Background(), a.ID, "owner", "b2")
	if err != nil {
		t.Fatalf("EjectBidder: %v", err)
	}
	// Full rebuild: b1 still leads, price drops to the runner-up's max.
	if res.LeaderID != "b1" || res.CurrentPrice.String() != "150" {
		t.Errorf("result = %+v, want b1 leading at 150", res)
	}
	if _, ok := kinds(f.notes.take())[notify.AuctionLeaderChanged]; ok {
		t.Error("leader did not change; no leader_changed notification expected")
	}
}

func TestEjectBidder_Repeated(t *testing.T) {
	f := newFixture(t, options{})
	a := f.seed(t, nil)
	f.bid(t, a.ID, "b1", "150")

	if _, err := f.engine.EjectBidder(context.Background(), a.ID, "owner", "b1"); err != nil {
		t.Fatalf("first EjectBidder: %v", err)
	}
	version := f.get(t, a.ID).Version
	f.notes.take()

	res, err := f.engine.EjectBidder(context.Background(), a.ID, "owner", "b1")
	if err != nil {
		t.Fatalf("second EjectBidder: %v", err)
	}
	if res.Removed != 0 {
		t.Errorf("Removed = %d, want 0", res.Removed)
	}
	if got := f.get(t, a.ID).Version; got != version {
		t.Errorf("repeated ejection committed: version %d -> %d", version, got)
	}
	if n := f.notes.take(); len(n) != 0 {
		t.Errorf("repeated ejection sent %d notifications", len(n))
	}
}

func TestEjectBidder_NonBidderIsBanned(t *testing.T) {
	f := newFixture(t, options{})
	a := f.seed(t, nil)
	f.bid(t, a.ID, "b1", "150")

	res, err := f.engine.EjectBidder(context.Background(), a.ID, "owner", "lurker")
	if err != nil {
		t.Fatalf("EjectBidder: %v", err)
	}
	if res.LeaderID != "b1" || res.Removed != 0 {
		t.Errorf("result = %+v, want state unchanged", res)
	}
	if !f.get(t, a.ID).IsBanned("lurker") {
		t.Error("expected lurker banned")
	}
}

func TestEjectBidder_Rejections(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*auction.Auction)
		auction string
		owner   string
		want    error
	}{
		{name: "not owner", owner: "b9", want: auction.ErrForbidden},
		{name: "missing auction", auction: "missing", owner: "owner", want: auction.ErrNotFound},
		{
			name:   "ended",
			mutate: func(a *auction.Auction) { a.Status = auction.StatusEnded },
			owner:  "owner", want: auction.ErrInvalidState,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, options{})
			a := f.seed(t, tt.mutate)
			id := a.ID
			if tt.auction != "" {
				id = tt.auction
			}
			_, err := f.engine.EjectBidder(context.Background(), id, tt.owner, "b1")
			if !errors.Is(err, tt.want) {
				t.Errorf("EjectBidder error = %v, want %v", err, tt.want)
			}
		})
	}
}
