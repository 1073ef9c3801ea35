// Package memstore provides a process-local store.Driver. It honours the
// same optimistic commit contract as the Postgres driver and backs tests and
// single-process runs.
package memstore

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/Hoang105205/Online-Auction-sub001/internal/auction"
	"github.com/Hoang105205/Online-Auction-sub001/internal/clock"
	"github.com/Hoang105205/Online-Auction-sub001/internal/config"
	"github.com/Hoang105205/Online-Auction-sub001/internal/rating"
	"github.com/Hoang105205/Online-Auction-sub001/internal/store"
)

// ErrFinished is returned when a unit of work is used after it ended.
var ErrFinished = errors.New("unit of work already finished")

// closerFunc adapts a func() error into an io.Closer.
type closerFunc func() error

func (f closerFunc) Close() error { return f() }

func init() {
	store.Register("memory", openMemory)
}

// openMemory is the store.Driver for the "memory" backend.
func openMemory(_ context.Context, _ config.DatabaseConfig, clk clock.Clock) (*store.Repositories, error) {
	return New(clk).Repositories(), nil
}

// Store keeps auctions, feedback and settings in memory.
type Store struct {
	mu       sync.Mutex
	clock    clock.Clock
	auctions map[string]*auction.Auction
	feedback map[string][]store.Feedback // ratee id -> feedback
	policy   *auction.ExtendPolicy
}

// New returns an empty Store.
func New(clk clock.Clock) *Store {
	return &Store{
		clock:    clk,
		auctions: make(map[string]*auction.Auction),
		feedback: make(map[string][]store.Feedback),
	}
}

// Repositories exposes s through the store interfaces.
func (s *Store) Repositories() *store.Repositories {
	return &store.Repositories{
		Ledger:   s,
		Auctions: s,
		Ratings:  s,
		Settings: s,
		Closer:   closerFunc(func() error { return nil }),
		Ping:     func(context.Context) error { return nil },
	}
}

// Create stores a new auction. An empty ID is filled with a UUID.
func (s *Store) Create(_ context.Context, a *auction.Auction) error {
	if err := auction.CheckListing(a); err != nil {
		return err
	}
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.auctions[a.ID]; ok {
		return fmt.Errorf("auction %s already exists", a.ID)
	}
	a.Version = 1
	a.ParticipantCount = len(a.Bidders())
	s.auctions[a.ID] = a.Clone()
	return nil
}

// GetByID returns a copy of the stored auction.
func (s *Store) GetByID(_ context.Context, id string) (*auction.Auction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.auctions[id]
	if !ok {
		return nil, fmt.Errorf("getting auction %s: %w", id, auction.ErrNotFound)
	}
	return a.Clone(), nil
}

// Begin opens a unit of work.
func (s *Store) Begin(_ context.Context) (store.UnitOfWork, error) {
	return &unit{s: s, loaded: make(map[string]int64)}, nil
}

type unit struct {
	s      *Store
	loaded map[string]int64 // auction id -> version read
	done   bool
}

func (u *unit) Load(ctx context.Context, auctionID string) (*auction.Auction, error) {
	if u.done {
		return nil, ErrFinished
	}
	a, err := u.s.GetByID(ctx, auctionID)
	if err != nil {
		return nil, err
	}
	u.loaded[a.ID] = a.Version
	return a, nil
}

func (u *unit) Commit(ctx context.Context, c store.Change) error {
	if u.done {
		return ErrFinished
	}
	u.done = true
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("committing auction %s: %w", c.Auction.ID, err)
	}

	id := c.Auction.ID
	read, ok := u.loaded[id]
	if !ok {
		return fmt.Errorf("committing auction %s that was never loaded", id)
	}

	u.s.mu.Lock()
	defer u.s.mu.Unlock()

	cur, ok := u.s.auctions[id]
	if !ok {
		return fmt.Errorf("committing auction %s: %w", id, auction.ErrNotFound)
	}
	if cur.Version != read || c.Auction.Version != read {
		return fmt.Errorf("auction %s at version %d, read %d: %w", id, cur.Version, read, auction.ErrConflict)
	}

	next := c.Auction.Clone()
	next.History = applyHistory(cur.History, c)
	next.Banned = cur.Clone().Banned
	if c.Banned != "" {
		next.Banned[c.Banned] = struct{}{}
	}
	next.Version = cur.Version + 1

	u.s.auctions[id] = next
	c.Auction.Version = next.Version
	return nil
}

func (u *unit) Rollback() error {
	u.done = true
	return nil
}

func applyHistory(cur []auction.BidRecord, c store.Change) []auction.BidRecord {
	out := make([]auction.BidRecord, 0, len(cur)+len(c.Appended))
	for _, r := range cur {
		if c.Purged != "" && r.BidderID == c.Purged {
			continue
		}
		out = append(out, r)
	}
	return append(out, c.Appended...)
}

// Reputation summarizes the feedback received by bidderID.
func (s *Store) Reputation(_ context.Context, bidderID string) (rating.Reputation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fb := s.feedback[bidderID]
	scores := make([]int, len(fb))
	for i, f := range fb {
		scores[i] = f.Score
	}
	return rating.Summarize(scores), nil
}

// AddFeedback records one rating.
func (s *Store) AddFeedback(_ context.Context, f *store.Feedback) error {
	if f.ID == "" {
		f.ID = uuid.NewString()
	}
	f.CreatedAt = s.clock.Now().UTC()
	s.mu.Lock()
	defer s.mu.Unlock()
	s.feedback[f.RateeID] = append(s.feedback[f.RateeID], *f)
	return nil
}

// ExtendPolicy returns the stored policy or store.ErrNoSettings.
func (s *Store) ExtendPolicy(_ context.Context) (auction.ExtendPolicy, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.policy == nil {
		return auction.ExtendPolicy{}, store.ErrNoSettings
	}
	return *s.policy, nil
}

// SetExtendPolicy stores p.
func (s *Store) SetExtendPolicy(_ context.Context, p auction.ExtendPolicy) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.policy = &p
	return nil
}
