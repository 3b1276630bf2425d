// Package retry runs provider calls with bounded exponential backoff.
package retry

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// Config bounds a retry loop. MaxAttempts counts the first call.
type Config struct {
	MaxAttempts    int
	BaseDelay      time.Duration
	MaxDelay       time.Duration
	Multiplier     float64
	AttemptTimeout time.Duration
}

// DefaultConfig returns three attempts starting at one second and doubling,
// each attempt bounded by 30 seconds.
func DefaultConfig() Config {
	return Config{
		MaxAttempts:    3,
		BaseDelay:      time.Second,
		MaxDelay:       10 * time.Second,
		Multiplier:     2.0,
		AttemptTimeout: 30 * time.Second,
	}
}

func (c Config) policy(ctx context.Context) backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = c.BaseDelay
	b.MaxInterval = c.MaxDelay
	if c.MaxDelay < c.BaseDelay {
		b.MaxInterval = c.BaseDelay
	}
	b.Multiplier = c.Multiplier
	if c.Multiplier < 1 {
		b.Multiplier = 1
	}
	b.RandomizationFactor = 0
	b.MaxElapsedTime = 0

	attempts := c.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}

	//nolint:gosec // attempts is at least 1
	return backoff.WithContext(backoff.WithMaxRetries(b, uint64(attempts-1)), ctx)
}

// Do calls fn until it succeeds, retryable rejects its error, the attempts are
// used up or ctx is done. Each call gets its own context bounded by
// AttemptTimeout. A nil retryable retries every error.
func Do[T any](
	ctx context.Context,
	cfg Config,
	retryable func(error) bool,
	fn func(ctx context.Context) (T, error),
) (T, error) {
	var result T

	err := backoff.Retry(func() error {
		attemptCtx := ctx
		if cfg.AttemptTimeout > 0 {
			var cancel context.CancelFunc
			attemptCtx, cancel = context.WithTimeout(ctx, cfg.AttemptTimeout)
			defer cancel()
		}

		v, err := fn(attemptCtx)
		if err != nil {
			if retryable != nil && !retryable(err) {
				return backoff.Permanent(err)
			}
			return err
		}

		result = v
		return nil
	}, cfg.policy(ctx))

	return result, err
}
