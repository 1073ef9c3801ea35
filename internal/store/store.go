// Package store defines the persistence contract for auctions: a ledger that
// hands out optimistic units of work, plus the read/write repositories for
// listings, feedback and engine settings.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/Hoang105205/Online-Auction-sub001/internal/auction"
	"github.com/Hoang105205/Online-Auction-sub001/internal/rating"
)

// Change is everything one unit of work writes for a single auction.
type Change struct {
	// Auction is the new state. Its Version must be the version that was
	// loaded; the store bumps it on success.
	Auction *auction.Auction
	// Appended records are inserted into history.
	Appended []auction.BidRecord
	// Purged, when set, deletes every history record of that bidder.
	Purged string
	// Banned, when set, is added to the auction's ban list.
	Banned string
}

// UnitOfWork is one atomic, isolated read-compute-write scope. Commit
// ends it; Rollback after Commit is a no-op.
type UnitOfWork interface {
	// Load reads the auction snapshot with its history and bans.
	// It returns auction.ErrNotFound when there is no such auction.
	Load(ctx context.Context, auctionID string) (*auction.Auction, error)
	// Commit writes c only if the auction is unchanged since Load,
	// otherwise it returns auction.ErrConflict and writes nothing.
	Commit(ctx context.Context, c Change) error
	Rollback() error
}

// Ledger opens units of work.
type Ledger interface {
	Begin(ctx context.Context) (UnitOfWork, error)
}

// AuctionRepository covers listing creation and plain reads. Listings are
// created by the catalog side; the engine only reads them through a Ledger.
type AuctionRepository interface {
	Create(ctx context.Context, a *auction.Auction) error
	GetByID(ctx context.Context, id string) (*auction.Auction, error)
}

// Feedback is one rating left for a user after a completed sale.
type Feedback struct {
	ID        string    `db:"id"`
	RateeID   string    `db:"ratee_id"`
	RaterID   string    `db:"rater_id"`
	Score     int       `db:"score"` // +1 good, -1 bad
	Comment   string    `db:"comment"`
	CreatedAt time.Time `db:"created_at"`
}

// RatingRepository stores feedback and serves reputation summaries.
type RatingRepository interface {
	rating.Gate
	AddFeedback(ctx context.Context, f *Feedback) error
}

// ErrNoSettings is returned when a setting has never been stored.
var ErrNoSettings = errors.New("setting not configured")

// SettingsRepository stores engine-wide settings.
type SettingsRepository interface {
	ExtendPolicy(ctx context.Context) (auction.ExtendPolicy, error)
	SetExtendPolicy(ctx context.Context, p auction.ExtendPolicy) error
}
