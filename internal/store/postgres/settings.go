package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/Hoang105205/Online-Auction-sub001/internal/auction"
	"github.com/Hoang105205/Online-Auction-sub001/internal/clock"
	"github.com/Hoang105205/Online-Auction-sub001/internal/store"
)

// SettingsRepo implements store.SettingsRepository with sqlx.
type SettingsRepo struct {
	db    *sqlx.DB
	clock clock.Clock
}

// NewSettingsRepo returns a new SettingsRepo.
func NewSettingsRepo(db *sqlx.DB, clk clock.Clock) *SettingsRepo {
	return &SettingsRepo{db: db, clock: clk}
}

func (r *SettingsRepo) ExtendPolicy(ctx context.Context) (auction.ExtendPolicy, error) {
	var row struct {
		BeforeWindowMS int64 `db:"before_window_ms"`
		ExtensionMS    int64 `db:"extension_ms"`
	}
	err := r.db.GetContext(ctx, &row, `SELECT before_window_ms, extension_ms FROM extend_policy WHERE id`)
	if errors.Is(err, sql.ErrNoRows) {
		return auction.ExtendPolicy{}, store.ErrNoSettings
	}
	if err != nil {
		return auction.ExtendPolicy{}, fmt.Errorf("reading extend policy: %w", err)
	}
	return auction.ExtendPolicy{
		BeforeWindow: time.Duration(row.BeforeWindowMS) * time.Millisecond,
		Extension:    time.Duration(row.ExtensionMS) * time.Millisecond,
	}, nil
}

func (r *SettingsRepo) SetExtendPolicy(ctx context.Context, p auction.ExtendPolicy) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO extend_policy (id, before_window_ms, extension_ms, updated_at)
		 VALUES (TRUE, $1, $2, $3)
		 ON CONFLICT (id) DO UPDATE
		 SET before_window_ms = EXCLUDED.before_window_ms, extension_ms = EXCLUDED.extension_ms,
		     updated_at = EXCLUDED.updated_at`,
		p.BeforeWindow.Milliseconds(), p.Extension.Milliseconds(), r.clock.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("storing extend policy: %w", err)
	}
	return nil
}
