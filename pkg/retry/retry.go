// Package retry implements a generic exponential-backoff executor for
// fallible operations.
//
// The executor makes attempts strictly sequentially: each retry only happens
// because the previous attempt failed, and no invocation ever occurs beyond
// the configured maximum. Delay between attempts doubles from a base delay,
// giving the sequence base, base*2, base*4, ...
package retry

import (
	"context"
	"math"
	"time"
)

// Defaults applied when a Config leaves the corresponding field zero.
const (
	DefaultMaxRetries = 3
	DefaultBaseDelay  = 2 * time.Second
)

// Config controls the retry behavior of Do.
type Config struct {
	// MaxRetries is the total number of invocations in the worst case,
	// counting the first attempt.
	// Default: 3
	MaxRetries int

	// BaseDelay is the sleep before the second attempt; each later sleep
	// doubles the previous one.
	// Default: 2 seconds
	BaseDelay time.Duration

	// RetryIf decides whether a failed attempt is worth repeating. A nil
	// RetryIf retries every error. Returning false stops immediately and
	// surfaces the error as final.
	RetryIf func(error) bool

	// Sleep waits between attempts. It exists so tests can record the
	// requested delays instead of actually sleeping; nil uses a real
	// context-aware sleep.
	Sleep func(ctx context.Context, d time.Duration) error
}

// withDefaults resolves zero fields to the package defaults.
func (c Config) withDefaults() Config {
	if c.MaxRetries == 0 {
		c.MaxRetries = DefaultMaxRetries
	}
	if c.BaseDelay == 0 {
		c.BaseDelay = DefaultBaseDelay
	}
	if c.Sleep == nil {
		c.Sleep = sleepContext
	}
	return c
}

// Do invokes op until it succeeds, fails a RetryIf check, exhausts
// cfg.MaxRetries invocations, or the context is cancelled mid-backoff. The
// error of the final attempt is returned unwrapped so callers can dispatch
// on its type.
//
// Attempts are 1-indexed: the sleep before attempt n is
// BaseDelay * 2^(n-2), yielding exactly MaxRetries-1 sleeps in the worst
// case.
func Do[T any](ctx context.Context, cfg Config, op func(ctx context.Context) (T, error)) (T, error) {
	cfg = cfg.withDefaults()

	var zero T
	var lastErr error

	for attempt := 1; attempt <= cfg.MaxRetries; attempt++ {
		if attempt > 1 {
			backoff := time.Duration(float64(cfg.BaseDelay) * math.Pow(2, float64(attempt-2)))
			if err := cfg.Sleep(ctx, backoff); err != nil {
				return zero, err
			}
		}

		result, err := op(ctx)
		if err == nil {
			return result, nil
		}
		lastErr = err

		if cfg.RetryIf != nil && !cfg.RetryIf(err) {
			return zero, err
		}
	}

	return zero, lastErr
}

// sleepContext waits for d, returning early with the context's error when it
// is cancelled first.
func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
