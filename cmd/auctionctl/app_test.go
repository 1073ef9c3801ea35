package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/Hoang105205/Online-Auction-sub001/internal/auction"
	"github.com/Hoang105205/Online-Auction-sub001/internal/clock"
	"github.com/Hoang105205/Online-Auction-sub001/internal/config"
	"github.com/Hoang105205/Online-Auction-sub001/internal/telemetry"
)

func newTestApp(t *testing.T) (*app, *bytes.Buffer) {
	t.Helper()
	cfg := config.Default()
	cfg.Database.Driver = "memory"
	cfg.Notify.Timeout = 100 * time.Millisecond

	var out bytes.Buffer
	clk := clock.NewMock(time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC))
	a, err := newApp(context.Background(), cfg, telemetry.NewNopProvider(), clk, &out)
	if err != nil {
		t.Fatalf("newApp: %v", err)
	}
	t.Cleanup(a.close)
	return a, &out
}

func execOK(t *testing.T, a *app, out *bytes.Buffer, args ...string) string {
	t.Helper()
	out.Reset()
	if err := a.exec(context.Background(), args); err != nil {
		t.Fatalf("exec %v: %v", args, err)
	}
	return out.String()
}

func TestApp_BidFlow(t *testing.T) {
	a, out := newTestApp(t)

	id := strings.TrimSpace(execOK(t, a, out, "create", "-id", "a1", "-owner", "seller", "-start", "100", "-step", "10"))
	if id != "a1" {
		t.Fatalf("create printed %q, want a1", id)
	}

	if got := execOK(t, a, out, "bid", "-auction", "a1", "-bidder", "b1", "-amount", "150"); !strings.HasPrefix(got, "leading: price 100, leader b1") {
		t.Errorf("first bid = %q", got)
	}
	if got := execOK(t, a, out, "bid", "-auction", "a1", "-bidder", "b2", "-amount", "200"); !strings.HasPrefix(got, "leading: price 160, leader b2") {
		t.Errorf("second bid = %q", got)
	}

	if got := execOK(t, a, out, "eject", "-auction", "a1", "-owner", "seller", "-bidder", "b2"); got != "removed 1 bids: price 100, leader b1, 1 participants\n" {
		t.Errorf("eject = %q", got)
	}

	var v auctionView
	if err := json.Unmarshal([]byte(execOK(t, a, out, "show", "-auction", "a1")), &v); err != nil {
		t.Fatalf("decoding show output: %v", err)
	}
	if v.LeaderID != "b1" || v.Bids != 1 || len(v.Banned) != 1 || v.Banned[0] != "b2" {
		t.Errorf("show = %+v", v)
	}
}

func TestApp_Rejection(t *testing.T) {
	a, out := newTestApp(t)
	execOK(t, a, out, "create", "-id", "a1", "-owner", "seller", "-start", "100", "-step", "10")

	err := a.exec(context.Background(), []string{"bid", "-auction", "a1", "-bidder", "b1", "-amount", "105"})
	if !errors.Is(err, auction.ErrBadIncrement) {
		t.Fatalf("bid error = %v, want ErrBadIncrement", err)
	}
	if !strings.Contains(err.Error(), "bad_increment") {
		t.Errorf("error %q should name its kind", err)
	}
}

func TestApp_FeedbackGatesBidding(t *testing.T) {
	a, out := newTestApp(t)
	execOK(t, a, out, "create", "-id", "a1", "-owner", "seller", "-start", "100", "-step", "10")

	execOK(t, a, out, "feedback", "-ratee", "b1", "-rater", "s1", "-score", "1")
	got := execOK(t, a, out, "feedback", "-ratee", "b1", "-rater", "s2", "-score", "-1")
	if got != "b1: 2 ratings, 50.0% good\n" {
		t.Errorf("feedback = %q", got)
	}

	err := a.exec(context.Background(), []string{"bid", "-auction", "a1", "-bidder", "b1", "-amount", "150"})
	if !errors.Is(err, auction.ErrReputationTooLow) {
		t.Errorf("bid error = %v, want ErrReputationTooLow", err)
	}
}

func TestApp_Commands(t *testing.T) {
	a, out := newTestApp(t)

	if got := execOK(t, a, out, "migrate"); !strings.Contains(got, "no schema") {
		t.Errorf("migrate = %q", got)
	}
	if got := execOK(t, a, out, "set-policy", "-before", "1m", "-extension", "2m"); !strings.HasPrefix(got, "stored") {
		t.Errorf("set-policy = %q", got)
	}
	if got := execOK(t, a, out, "health"); !strings.Contains(got, `"status": "ok"`) {
		t.Errorf("health = %q", got)
	}

	tests := []struct {
		name string
		args []string
	}{
		{name: "no command", args: nil},
		{name: "unknown command", args: []string{"frobnicate"}},
		{name: "missing flag", args: []string{"bid", "-auction", "a1"}},
		{name: "bad amount", args: []string{"bid", "-auction", "a1", "-bidder", "b1", "-amount", "lots"}},
		{name: "bad score", args: []string{"feedback", "-ratee", "b1", "-rater", "s", "-score", "3"}},
		{name: "missing auction", args: []string{"show", "-auction", "nope"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := a.exec(context.Background(), tt.args); err == nil {
				t.Errorf("exec %v succeeded, want error", tt.args)
			}
		})
	}
}

func TestApp_CreateRejectsSubCentPrices(t *testing.T) {
	a, out := newTestApp(t)

	err := a.exec(context.Background(), []string{"create", "-id", "a1", "-owner", "seller", "-start", "100", "-step", "0.005"})
	if !errors.Is(err, auction.ErrInvalidListing) {
		t.Fatalf("create error = %v, want ErrInvalidListing", err)
	}
	if err := a.exec(context.Background(), []string{"show", "-auction", "a1"}); !errors.Is(err, auction.ErrNotFound) {
		t.Errorf("show after rejected create = %v, want ErrNotFound", err)
	}

	execOK(t, a, out, "create", "-id", "a2", "-owner", "seller", "-start", "9.99", "-step", "0.25")
}
