package bidding

import (
	"context"

	"github.com/cenkalti/backoff/v4"

	"github.com/Hoang105205/Online-Auction-sub001/internal/auction"
	"github.com/Hoang105205/Online-Auction-sub001/internal/config"
)

// Retry calls fn until it succeeds, fails with a non-retryable error, or
// cfg.MaxAttempts calls have been made. Only auction.ErrConflict is retried,
// with exponential backoff between attempts.
func Retry[T any](ctx context.Context, cfg config.RetryConfig, fn func(context.Context) (T, error)) (T, error) {
	exp := backoff.NewExponentialBackOff()
	if cfg.InitialInterval > 0 {
		exp.InitialInterval = cfg.InitialInterval
	}
	retries := 0
	if cfg.MaxAttempts > 1 {
		retries = cfg.MaxAttempts - 1
	}
	b := backoff.WithContext(backoff.WithMaxRetries(exp, uint64(retries)), ctx)

	return backoff.RetryWithData(func() (T, error) {
		v, err := fn(ctx)
		if err != nil && !auction.IsRetryable(err) {
			return v, backoff.Permanent(err)
		}
		return v, err
	}, b)
}
