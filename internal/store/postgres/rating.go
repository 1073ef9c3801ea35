package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/Hoang105205/Online-Auction-sub001/internal/clock"
	"github.com/Hoang105205/Online-Auction-sub001/internal/rating"
	"github.com/Hoang105205/Online-Auction-sub001/internal/store"
)

// RatingRepo implements store.RatingRepository with sqlx.
type RatingRepo struct {
	db    *sqlx.DB
	clock clock.Clock
}

// NewRatingRepo returns a new RatingRepo.
func NewRatingRepo(db *sqlx.DB, clk clock.Clock) *RatingRepo {
	return &RatingRepo{db: db, clock: clk}
}

func (r *RatingRepo) Reputation(ctx context.Context, bidderID string) (rating.Reputation, error) {
	var counts struct {
		Total int `db:"total"`
		Good  int `db:"good"`
	}
	err := r.db.GetContext(ctx, &counts,
		`SELECT count(*) AS total, count(*) FILTER (WHERE score > 0) AS good
		 FROM feedback WHERE ratee_id = $1`, bidderID)
	if err != nil {
		return rating.Reputation{}, fmt.Errorf("summarizing feedback: %w", err)
	}
	return rating.FromCounts(counts.Total, counts.Good), nil
}

func (r *RatingRepo) AddFeedback(ctx context.Context, f *store.Feedback) error {
	if f.ID == "" {
		f.ID = uuid.NewString()
	}
	f.CreatedAt = r.clock.Now().UTC()
	_, err := r.db.NamedExecContext(ctx,
		`INSERT INTO feedback (id, ratee_id, rater_id, score, comment, created_at)
		 VALUES (:id, :ratee_id, :rater_id, :score, :comment, :created_at)`, f)
	if err != nil {
		return fmt.Errorf("inserting feedback: %w", err)
	}
	return nil
}
