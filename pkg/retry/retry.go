package retry

import (
	"context"
	"time"
)

// Config defines bounded-attempt retry behavior with a fixed delay between
// attempts. The profiling pipeline retries only network calls (LLM gateway,
// database connects); everything else fails fast.
type Config struct {
	MaxAttempts int
	Delay       time.Duration
}

// DefaultConfig returns the retry policy used for LLM gateway calls:
// 3 attempts, 5 seconds apart, last error returned on exhaustion.
func DefaultConfig() *Config {
	return &Config{
		MaxAttempts: 3,
		Delay:       5 * time.Second,
	}
}

// Do executes fn up to cfg.MaxAttempts times, sleeping cfg.Delay between
// attempts. Returns nil on the first success, or the last error once all
// attempts are exhausted. Respects context cancellation during waits.
func Do(ctx context.Context, cfg *Config, fn func() error) error {
	if cfg == nil {
		cfg = DefaultConfig()
	}

	var lastErr error
	for attempt := 1; attempt <= cfg.MaxAttempts; attempt++ {
		if err := fn(); err == nil {
			return nil
		} else {
			lastErr = err
		}

		if attempt < cfg.MaxAttempts {
			select {
			case <-time.After(cfg.Delay):
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	}

	return lastErr
}

// DoWithResult executes fn with the same policy as Do and returns its result.
func DoWithResult[T any](ctx context.Context, cfg *Config, fn func() (T, error)) (T, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}

	var result T
	var lastErr error
	for attempt := 1; attempt <= cfg.MaxAttempts; attempt++ {
		r, err := fn()
		if err == nil {
			return r, nil
		}
		result = r
		lastErr = err

		if attempt < cfg.MaxAttempts {
			select {
			case <-time.After(cfg.Delay):
			case <-ctx.Done():
				return result, ctx.Err()
			}
		}
	}

	return result, lastErr
}
