// Package notify delivers short outcome messages to bidders and owners after
// a bid or ejection has been committed.
package notify

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Kind identifies a notification kind.
type Kind string

const (
	BidAccepted   Kind = "bid.accepted"
	BidOutbid     Kind = "bid.outbid"
	AuctionNewBid Kind = "auction.new_bid"
	AuctionWon    Kind = "auction.won"
	AuctionSold   Kind = "auction.sold"

	BidderEjected        Kind = "bidder.ejected"
	AuctionLeaderChanged Kind = "auction.leader_changed"
)

// Notification is one message to one recipient.
type Notification struct {
	Kind      Kind
	Recipient string
	AuctionID string
	Price     decimal.Decimal
	LeaderID  string
	EndTime   time.Time
}

// Message renders the notification as a short plain-text line.
func (n Notification) Message() string {
	switch n.Kind {
	case BidAccepted:
		return fmt.Sprintf("Your bid on auction %s was accepted. Current price %s, leader %s.", n.AuctionID, n.Price.StringFixed(2), n.LeaderID)
	case BidOutbid:
		return fmt.Sprintf("You have been outbid on auction %s. Current price %s.", n.AuctionID, n.Price.StringFixed(2))
	case AuctionNewBid:
		return fmt.Sprintf("New bid on your auction %s. Current price %s.", n.AuctionID, n.Price.StringFixed(2))
	case AuctionWon:
		return fmt.Sprintf("You bought auction %s for %s.", n.AuctionID, n.Price.StringFixed(2))
	case AuctionSold:
		return fmt.Sprintf("Your auction %s was sold for %s to %s.", n.AuctionID, n.Price.StringFixed(2), n.LeaderID)
	case BidderEjected:
		return fmt.Sprintf("You were removed from auction %s by the seller.", n.AuctionID)
	case AuctionLeaderChanged:
		return fmt.Sprintf("You are now leading auction %s at %s.", n.AuctionID, n.Price.StringFixed(2))
	default:
		return fmt.Sprintf("Update on auction %s.", n.AuctionID)
	}
}

// Notifier delivers a single notification.
type Notifier interface {
	Notify(ctx context.Context, n Notification) error
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(ctx context.Context, n Notification) error

func (f NotifierFunc) Notify(ctx context.Context, n Notification) error { return f(ctx, n) }
