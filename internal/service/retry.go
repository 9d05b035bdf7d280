package service

import (
	"context"
	"fmt"
	"time"
)

// Retry defaults: 3 attempts, 1s/2s/4s backoff.
const (
	defaultRetryAttempts = 3
	defaultInitialDelay  = 1 * time.Second
)

// Retryer executes a single remote command with a bounded retry budget and
// exponential backoff between attempts. No jitter, no circuit breaker; on
// exhaustion the last error is propagated.
type Retryer struct {
	attempts     int
	initialDelay time.Duration
	retryable    func(error) bool

	// sleep is replaced in tests to avoid real waiting.
	sleep func(ctx context.Context, d time.Duration) error
}

func NewRetryer(cfg RetryConfig) *Retryer {
	if cfg.Attempts <= 0 {
		cfg.Attempts = defaultRetryAttempts
	}
	if cfg.InitialDelay <= 0 {
		cfg.InitialDelay = defaultInitialDelay
	}
	if cfg.Retryable == nil {
		cfg.Retryable = func(error) bool { return true }
	}
	return &Retryer{
		attempts:     cfg.Attempts,
		initialDelay: cfg.InitialDelay,
		retryable:    cfg.Retryable,
		sleep:        sleepCtx,
	}
}

// Do runs fn up to the configured number of attempts. Backoff doubles after
// each failure and is applied only between attempts, never after the final
// one. Context cancellation during backoff aborts immediately.
func (r *Retryer) Do(ctx context.Context, op string, fn func(context.Context) error) error {
	delay := r.initialDelay

	var lastErr error
	for attempt := 1; attempt <= r.attempts; attempt++ {
		lastErr = fn(ctx)
		if lastErr == nil {
			return nil
		}
		if attempt == r.attempts {
			break
		}
		if !r.retryable(lastErr) {
			return fmt.Errorf("%s: %w", op, lastErr)
		}
		if err := r.sleep(ctx, delay); err != nil {
			return fmt.Errorf("%s: retry aborted: %w", op, err)
		}
		delay *= 2
	}
	return fmt.Errorf("%s: %d attempts exhausted: %w", op, r.attempts, lastErr)
}

// sleepCtx waits for d or until the context is done.
func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
