package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/Hoang105205/Online-Auction-sub001/internal/auction"
	"github.com/Hoang105205/Online-Auction-sub001/internal/clock"
	"github.com/Hoang105205/Online-Auction-sub001/internal/store"
)

// Ledger implements store.Ledger over Postgres transactions.
type Ledger struct {
	db    *sqlx.DB
	clock clock.Clock
}

// NewLedger returns a new Ledger.
func NewLedger(db *sqlx.DB, clk clock.Clock) *Ledger {
	return &Ledger{db: db, clock: clk}
}

// Begin starts a REPEATABLE READ transaction. Concurrent writers to the
// same auction row fail with a serialization error, which the unit reports
// as auction.ErrConflict.
func (l *Ledger) Begin(ctx context.Context) (store.UnitOfWork, error) {
	tx, err := l.db.BeginTxx(ctx, &sql.TxOptions{Isolation: sql.LevelRepeatableRead})
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	return &unit{tx: tx, clock: l.clock, loaded: make(map[string]int64)}, nil
}

type unit struct {
	tx     *sqlx.Tx
	clock  clock.Clock
	loaded map[string]int64
}

func (u *unit) Load(ctx context.Context, auctionID string) (*auction.Auction, error) {
	a, err := loadAuction(ctx, u.tx, auctionID)
	if err != nil {
		return nil, err
	}
	u.loaded[a.ID] = a.Version
	return a, nil
}

func (u *unit) Commit(ctx context.Context, c store.Change) error {
	defer func() { _ = u.tx.Rollback() }()

	a := c.Auction
	read, ok := u.loaded[a.ID]
	if !ok {
		return fmt.Errorf("committing auction %s that was never loaded", a.ID)
	}
	if a.Version != read {
		return fmt.Errorf("auction %s change built on version %d, read %d: %w", a.ID, a.Version, read, auction.ErrConflict)
	}

	res, err := u.tx.ExecContext(ctx,
		`UPDATE auctions
		 SET current_price = $1, leader_id = $2, end_time = $3, status = $4,
		     participant_count = $5, version = version + 1
		 WHERE id = $6 AND version = $7`,
		a.CurrentPrice, nullable(a.LeaderID), a.EndTime, string(a.Status),
		a.ParticipantCount, a.ID, read,
	)
	if err != nil {
		return fmt.Errorf("updating auction: %w", mapError(err))
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("auction %s moved past version %d: %w", a.ID, read, auction.ErrConflict)
	}

	if c.Purged != "" {
		if _, err := u.tx.ExecContext(ctx,
			`DELETE FROM bid_records WHERE auction_id = $1 AND bidder_id = $2`, a.ID, c.Purged); err != nil {
			return fmt.Errorf("purging bids of %s: %w", c.Purged, mapError(err))
		}
	}
	if c.Banned != "" {
		if err := insertBan(ctx, u.tx, a.ID, c.Banned, u.clock.Now().UTC()); err != nil {
			return err
		}
	}
	if err := insertRecords(ctx, u.tx, a.ID, c.Appended); err != nil {
		return err
	}

	if err := u.tx.Commit(); err != nil {
		return fmt.Errorf("committing: %w", mapError(err))
	}
	a.Version = read + 1
	return nil
}

func (u *unit) Rollback() error {
	if err := u.tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
		return err
	}
	return nil
}
