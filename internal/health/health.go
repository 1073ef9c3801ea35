// Package health runs dependency checks for the auctionctl health command.
package health

import (
	"context"
	"encoding/json"
	"io"
	"time"

	"github.com/Hoang105205/Online-Auction-sub001/internal/clock"
)

// Status is the result of one health run.
type Status struct {
	Status    string            `json:"status"`
	Checks    map[string]string `json:"checks,omitempty"`
	Timestamp string            `json:"timestamp"`
}

// OK reports whether every check passed.
func (s Status) OK() bool { return s.Status == "ok" }

// Checker is a named health check function.
type Checker struct {
	Name  string
	Check func(ctx context.Context) error
}

// Runner runs a fixed set of checkers.
type Runner struct {
	checkers []Checker
	timeout  time.Duration
	clock    clock.Clock
}

// NewRunner returns a Runner that bounds each run by timeout.
func NewRunner(clk clock.Clock, timeout time.Duration, checkers ...Checker) *Runner {
	return &Runner{checkers: checkers, timeout: timeout, clock: clk}
}

// Run executes every checker and reports "ok" only if all succeed.
func (r *Runner) Run(ctx context.Context) Status {
	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	checks := make(map[string]string, len(r.checkers))
	status := "ok"
	for _, c := range r.checkers {
		if err := c.Check(ctx); err != nil {
			checks[c.Name] = err.Error()
			status = "failing"
			continue
		}
		checks[c.Name] = "ok"
	}

	return Status{
		Status:    status,
		Checks:    checks,
		Timestamp: r.clock.Now().UTC().Format(time.RFC3339),
	}
}

// WriteJSON encodes s to w.
func WriteJSON(w io.Writer, s Status) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(s)
}
