package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Hoang105205/Online-Auction-sub001/internal/auction"
	"github.com/Hoang105205/Online-Auction-sub001/internal/bidding"
	"github.com/Hoang105205/Online-Auction-sub001/internal/health"
	"github.com/Hoang105205/Online-Auction-sub001/internal/store"
)

type command struct {
	name string
	help string
	run  func(ctx context.Context, a *app, args []string) error
}

var commandList []command

func init() {
	commandList = []command{
		{"migrate", "apply the database schema", cmdMigrate},
		{"create", "create an auction listing", cmdCreate},
		{"bid", "place a proxy bid", cmdBid},
		{"eject", "eject a bidder from an auction", cmdEject},
		{"show", "print an auction as JSON", cmdShow},
		{"feedback", "record feedback for a user", cmdFeedback},
		{"set-policy", "store the auto-extend policy", cmdSetPolicy},
		{"health", "check store connectivity", cmdHealth},
	}
}

// decimalFlag is a flag.Value holding a money amount.
type decimalFlag struct{ d decimal.Decimal }

func (f *decimalFlag) String() string { return f.d.String() }

func (f *decimalFlag) Set(s string) error {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return fmt.Errorf("invalid amount %q", s)
	}
	f.d = d
	return nil
}

func newFlagSet(name string) *flag.FlagSet {
	return flag.NewFlagSet(name, flag.ContinueOnError)
}

func required(fs *flag.FlagSet, names ...string) error {
	set := make(map[string]bool)
	fs.Visit(func(f *flag.Flag) { set[f.Name] = true })
	for _, n := range names {
		if !set[n] {
			return fmt.Errorf("%s: -%s is required", fs.Name(), n)
		}
	}
	return nil
}

func cmdMigrate(ctx context.Context, a *app, _ []string) error {
	if a.repos.Migrate == nil {
		fmt.Fprintf(a.out, "driver %s has no schema\n", a.cfg.Database.Driver)
		return nil
	}
	if err := a.repos.Migrate(ctx); err != nil {
		return fmt.Errorf("migrating: %w", err)
	}
	fmt.Fprintln(a.out, "schema up to date")
	return nil
}

func cmdCreate(ctx context.Context, a *app, args []string) error {
	fs := newFlagSet("create")
	var start, step, buyNow decimalFlag
	id := fs.String("id", "", "auction id (generated when empty)")
	owner := fs.String("owner", "", "owner user id")
	fs.Var(&start, "start", "start price")
	fs.Var(&step, "step", "price step")
	fs.Var(&buyNow, "buy-now", "buy-now price (0 disables)")
	duration := fs.Duration("duration", 24*time.Hour, "time until close")
	autoExtend := fs.Bool("auto-extend", false, "extend the close on late bids")
	allowNew := fs.Bool("allow-new", true, "accept bidders without ratings")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := required(fs, "owner", "start", "step"); err != nil {
		return err
	}
	now := a.clock.Now()
	listing := &auction.Auction{
		ID:              *id,
		OwnerID:         *owner,
		StartPrice:      start.d,
		StepPrice:       step.d,
		BuyNowPrice:     buyNow.d,
		CurrentPrice:    start.d,
		StartTime:       now,
		EndTime:         now.Add(*duration),
		AutoExtend:      *autoExtend,
		Status:          auction.StatusActive,
		AllowNewBidders: *allowNew,
	}
	if err := auction.CheckListing(listing); err != nil {
		return describe("create", err)
	}
	if err := a.repos.Auctions.Create(ctx, listing); err != nil {
		return fmt.Errorf("creating auction: %w", err)
	}
	fmt.Fprintln(a.out, listing.ID)
	return nil
}

func cmdBid(ctx context.Context, a *app, args []string) error {
	fs := newFlagSet("bid")
	var amount decimalFlag
	auctionID := fs.String("auction", "", "auction id")
	bidder := fs.String("bidder", "", "bidder user id")
	fs.Var(&amount, "amount", "maximum proxy amount")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := required(fs, "auction", "bidder", "amount"); err != nil {
		return err
	}

	res, err := bidding.Retry(ctx, a.cfg.Retry, func(ctx context.Context) (*bidding.BidResult, error) {
		return a.engine.PlaceBid(ctx, *auctionID, *bidder, amount.d)
	})
	if err != nil {
		return describe("bid", err)
	}
	fmt.Fprintf(a.out, "%s: price %s, leader %s, ends %s", res.Outcome, res.CurrentPrice, res.LeaderID, res.EndTime.Format(time.RFC3339))
	if res.Extended {
		fmt.Fprint(a.out, " (extended)")
	}
	fmt.Fprintln(a.out)
	return nil
}

func cmdEject(ctx context.Context, a *app, args []string) error {
	fs := newFlagSet("eject")
	auctionID := fs.String("auction", "", "auction id")
	owner := fs.String("owner", "", "owner user id")
	bidder := fs.String("bidder", "", "bidder to eject")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := required(fs, "auction", "owner", "bidder"); err != nil {
		return err
	}

	res, err := bidding.Retry(ctx, a.cfg.Retry, func(ctx context.Context) (*bidding.EjectResult, error) {
		return a.engine.EjectBidder(ctx, *auctionID, *owner, *bidder)
	})
	if err != nil {
		return describe("eject", err)
	}
	leader := res.LeaderID
	if leader == "" {
		leader = "none"
	}
	fmt.Fprintf(a.out, "removed %d bids: price %s, leader %s, %d participants\n",
		res.Removed, res.CurrentPrice, leader, res.ParticipantCount)
	return nil
}

type auctionView struct {
	ID               string          `json:"id"`
	OwnerID          string          `json:"owner_id"`
	Status           auction.Status  `json:"status"`
	StartPrice       decimal.Decimal `json:"start_price"`
	StepPrice        decimal.Decimal `json:"step_price"`
	BuyNowPrice      decimal.Decimal `json:"buy_now_price"`
	CurrentPrice     decimal.Decimal `json:"current_price"`
	LeaderID         string          `json:"leader_id,omitempty"`
	EndTime          time.Time       `json:"end_time"`
	AutoExtend       bool            `json:"auto_extend"`
	ParticipantCount int             `json:"participant_count"`
	Banned           []string        `json:"banned,omitempty"`
	Bids             int             `json:"bids"`
	Version          int64           `json:"version"`
}

func cmdShow(ctx context.Context, a *app, args []string) error {
	fs := newFlagSet("show")
	auctionID := fs.String("auction", "", "auction id")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := required(fs, "auction"); err != nil {
		return err
	}

	got, err := a.repos.Auctions.GetByID(ctx, *auctionID)
	if err != nil {
		return describe("show", err)
	}
	v := auctionView{
		ID:               got.ID,
		OwnerID:          got.OwnerID,
		Status:           got.Status,
		StartPrice:       got.StartPrice,
		StepPrice:        got.StepPrice,
		BuyNowPrice:      got.BuyNowPrice,
		CurrentPrice:     got.CurrentPrice,
		LeaderID:         got.LeaderID,
		EndTime:          got.EndTime,
		AutoExtend:       got.AutoExtend,
		ParticipantCount: got.ParticipantCount,
		Bids:             len(got.History),
		Version:          got.Version,
	}
	for id := range got.Banned {
		v.Banned = append(v.Banned, id)
	}
	enc := json.NewEncoder(a.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func cmdFeedback(ctx context.Context, a *app, args []string) error {
	fs := newFlagSet("feedback")
	ratee := fs.String("ratee", "", "user receiving the feedback")
	rater := fs.String("rater", "", "user giving the feedback")
	score := fs.Int("score", 1, "1 for good, -1 for bad")
	comment := fs.String("comment", "", "optional comment")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := required(fs, "ratee", "rater"); err != nil {
		return err
	}
	if *score != 1 && *score != -1 {
		return fmt.Errorf("feedback: score must be 1 or -1, got %d", *score)
	}

	f := &store.Feedback{RateeID: *ratee, RaterID: *rater, Score: *score, Comment: *comment}
	if err := a.repos.Ratings.AddFeedback(ctx, f); err != nil {
		return fmt.Errorf("recording feedback: %w", err)
	}
	rep, err := a.repos.Ratings.Reputation(ctx, *ratee)
	if err != nil {
		return fmt.Errorf("reading reputation: %w", err)
	}
	fmt.Fprintf(a.out, "%s: %d ratings, %.1f%% good\n", *ratee, rep.Total, rep.GoodPercentage)
	return nil
}

func cmdSetPolicy(ctx context.Context, a *app, args []string) error {
	fs := newFlagSet("set-policy")
	before := fs.Duration("before", 5*time.Minute, "window before close that triggers an extension")
	extension := fs.Duration("extension", 10*time.Minute, "how far the close moves")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *before < 0 || *extension < 0 {
		return errors.New("set-policy: durations must not be negative")
	}
	p := auction.ExtendPolicy{BeforeWindow: *before, Extension: *extension}
	if err := a.repos.Settings.SetExtendPolicy(ctx, p); err != nil {
		return fmt.Errorf("storing policy: %w", err)
	}
	if a.cfg.Bidding.ExtendPolicy.Source != "database" {
		fmt.Fprintln(a.out, "stored; note bidding.extend_policy.source is not \"database\"")
		return nil
	}
	fmt.Fprintln(a.out, "stored")
	return nil
}

func cmdHealth(ctx context.Context, a *app, _ []string) error {
	s := a.health.Run(ctx)
	if err := health.WriteJSON(a.out, s); err != nil {
		return err
	}
	if !s.OK() {
		return errors.New("health check failed")
	}
	return nil
}

// describe prefixes domain rejections with their stable kind.
func describe(op string, err error) error {
	if kind := auction.KindOf(err); kind != "" {
		return fmt.Errorf("%s rejected (%s): %w", op, kind, err)
	}
	return fmt.Errorf("%s: %w", op, err)
}
