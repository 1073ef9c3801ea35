package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"github.com/Hoang105205/Online-Auction-sub001/internal/auction"
	"github.com/Hoang105205/Online-Auction-sub001/internal/clock"
)

type auctionRow struct {
	ID               string          `db:"id"`
	OwnerID          string          `db:"owner_id"`
	StartPrice       decimal.Decimal `db:"start_price"`
	StepPrice        decimal.Decimal `db:"step_price"`
	BuyNowPrice      decimal.Decimal `db:"buy_now_price"`
	CurrentPrice     decimal.Decimal `db:"current_price"`
	LeaderID         sql.NullString  `db:"leader_id"`
	StartTime        time.Time       `db:"start_time"`
	EndTime          time.Time       `db:"end_time"`
	AutoExtend       bool            `db:"auto_extend"`
	Status           string          `db:"status"`
	ParticipantCount int             `db:"participant_count"`
	AllowNewBidders  bool            `db:"allow_new_bidders"`
	Version          int64           `db:"version"`
	CreatedAt        time.Time       `db:"created_at"`
}

type bidRow struct {
	ID          string          `db:"id"`
	AuctionID   string          `db:"auction_id"`
	BidderID    string          `db:"bidder_id"`
	ProxyAmount decimal.Decimal `db:"proxy_amount"`
	PlacedAt    time.Time       `db:"placed_at"`
	Seq         int64           `db:"seq"`
}

func (r auctionRow) toDomain(bids []bidRow, banned []string) *auction.Auction {
	a := &auction.Auction{
		ID:               r.ID,
		OwnerID:          r.OwnerID,
		StartPrice:       r.StartPrice,
		StepPrice:        r.StepPrice,
		BuyNowPrice:      r.BuyNowPrice,
		CurrentPrice:     r.CurrentPrice,
		LeaderID:         r.LeaderID.String,
		StartTime:        r.StartTime.UTC(),
		EndTime:          r.EndTime.UTC(),
		AutoExtend:       r.AutoExtend,
		Status:           auction.Status(r.Status),
		ParticipantCount: r.ParticipantCount,
		AllowNewBidders:  r.AllowNewBidders,
		Banned:           make(map[string]struct{}, len(banned)),
		History:          make([]auction.BidRecord, 0, len(bids)),
		Version:          r.Version,
	}
	for _, id := range banned {
		a.Banned[id] = struct{}{}
	}
	for _, b := range bids {
		a.History = append(a.History, auction.BidRecord{
			ID:          b.ID,
			BidderID:    b.BidderID,
			ProxyAmount: b.ProxyAmount,
			PlacedAt:    b.PlacedAt.UTC(),
			Seq:         b.Seq,
		})
	}
	return a
}

func nullable(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

// loadAuction reads an auction with its history and ban list through q,
// which is either the pool or an open transaction.
func loadAuction(ctx context.Context, q sqlx.QueryerContext, id string) (*auction.Auction, error) {
	var row auctionRow
	if err := sqlx.GetContext(ctx, q, &row, `SELECT * FROM auctions WHERE id = $1`, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("getting auction %s: %w", id, auction.ErrNotFound)
		}
		return nil, fmt.Errorf("getting auction: %w", mapError(err))
	}

	var bids []bidRow
	if err := sqlx.SelectContext(ctx, q, &bids,
		`SELECT id, auction_id, bidder_id, proxy_amount, placed_at, seq
		 FROM bid_records WHERE auction_id = $1 ORDER BY seq ASC`, id); err != nil {
		return nil, fmt.Errorf("loading bid history: %w", mapError(err))
	}

	var banned []string
	if err := sqlx.SelectContext(ctx, q, &banned,
		`SELECT bidder_id FROM banned_bidders WHERE auction_id = $1 ORDER BY bidder_id`, id); err != nil {
		return nil, fmt.Errorf("loading banned bidders: %w", mapError(err))
	}

	return row.toDomain(bids, banned), nil
}

// AuctionRepo implements store.AuctionRepository with sqlx.
type AuctionRepo struct {
	db    *sqlx.DB
	clock clock.Clock
}

// NewAuctionRepo returns a new AuctionRepo.
func NewAuctionRepo(db *sqlx.DB, clk clock.Clock) *AuctionRepo {
	return &AuctionRepo{db: db, clock: clk}
}

// Create inserts a listing together with any seeded history and bans.
func (r *AuctionRepo) Create(ctx context.Context, a *auction.Auction) error {
	// NUMERIC(18, 2) would round extra digits away silently.
	if err := auction.CheckListing(a); err != nil {
		return err
	}
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	a.ParticipantCount = len(a.Bidders())

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	err = tx.QueryRowxContext(ctx,
		`INSERT INTO auctions (id, owner_id, start_price, step_price, buy_now_price, current_price,
		                       leader_id, start_time, end_time, auto_extend, status, participant_count,
		                       allow_new_bidders, version, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, 1, $14)
		 RETURNING version`,
		a.ID, a.OwnerID, a.StartPrice, a.StepPrice, a.BuyNowPrice, a.CurrentPrice,
		nullable(a.LeaderID), a.StartTime, a.EndTime, a.AutoExtend, string(a.Status), a.ParticipantCount,
		a.AllowNewBidders, r.clock.Now().UTC(),
	).Scan(&a.Version)
	if err != nil {
		return fmt.Errorf("inserting auction: %w", err)
	}

	if err := insertRecords(ctx, tx, a.ID, a.History); err != nil {
		return err
	}
	for id := range a.Banned {
		if err := insertBan(ctx, tx, a.ID, id, r.clock.Now().UTC()); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// GetByID reads an auction outside of any unit of work.
func (r *AuctionRepo) GetByID(ctx context.Context, id string) (*auction.Auction, error) {
	return loadAuction(ctx, r.db, id)
}

func insertRecords(ctx context.Context, tx *sqlx.Tx, auctionID string, records []auction.BidRecord) error {
	if len(records) == 0 {
		return nil
	}
	stmt, err := tx.PreparexContext(ctx,
		`INSERT INTO bid_records (id, auction_id, bidder_id, proxy_amount, placed_at, seq)
		 VALUES ($1, $2, $3, $4, $5, $6)`)
	if err != nil {
		return fmt.Errorf("preparing statement: %w", err)
	}
	defer stmt.Close()

	for _, rec := range records {
		id := rec.ID
		if id == "" {
			id = uuid.NewString()
		}
		if _, err := stmt.ExecContext(ctx, id, auctionID, rec.BidderID, rec.ProxyAmount, rec.PlacedAt, rec.Seq); err != nil {
			return fmt.Errorf("inserting bid record (auction=%s, seq=%d): %w", auctionID, rec.Seq, mapError(err))
		}
	}
	return nil
}

func insertBan(ctx context.Context, tx *sqlx.Tx, auctionID, bidderID string, at time.Time) error {
	_, err := tx.ExecContext(ctx,
		`INSERT INTO banned_bidders (auction_id, bidder_id, banned_at) VALUES ($1, $2, $3)
		 ON CONFLICT (auction_id, bidder_id) DO NOTHING`,
		auctionID, bidderID, at,
	)
	if err != nil {
		return fmt.Errorf("banning bidder %s: %w", bidderID, mapError(err))
	}
	return nil
}
