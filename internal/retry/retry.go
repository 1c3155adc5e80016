package retry

import (
	"context"
	"errors"
	"fmt"
	"time"
)

var sleep = time.Sleep

// Policy describes how many times a call is attempted and how long to wait
// before each attempt.
type Policy struct {
	// MaxAttempts is the total number of attempts, including the first one.
	// Values below 1 are treated as 1.
	MaxAttempts int
	// Backoff returns the delay applied before the given zero-based attempt.
	// Nil means no delay.
	Backoff func(attempt int) time.Duration
	// Retryable reports whether an error should be retried. Nil retries every error.
	Retryable func(err error) bool
	// Wait blocks for the given duration. Nil uses WaitFor.
	Wait func(ctx context.Context, d time.Duration) error
	// OnRetry is called after a failed attempt that will be retried.
	OnRetry func(attempt int, err error)
}

// Exponential returns a backoff that waits nothing before the first attempt
// and unit * 2^attempt before every following one (0, 2u, 4u, ...).
func Exponential(unit time.Duration) func(int) time.Duration {
	return func(attempt int) time.Duration {
		if attempt <= 0 || unit <= 0 {
			return 0
		}
		return unit << attempt
	}
}

// Once is a policy that performs a single attempt.
func Once() Policy {
	return Policy{MaxAttempts: 1}
}

// Attempts returns the effective number of attempts.
func (p Policy) Attempts() int {
	if p.MaxAttempts < 1 {
		return 1
	}
	return p.MaxAttempts
}

// Do calls fn until it succeeds, returns a non-retryable error or the policy is exhausted.
func (p Policy) Do(ctx context.Context, fn func(ctx context.Context, attempt int) error) error {
	wait := p.Wait
	if wait == nil {
		wait = WaitFor
	}

	attempts := p.Attempts()

	var lastErr error
	for attempt := 0; attempt < attempts; attempt++ {
		if p.Backoff != nil {
			if err := wait(ctx, p.Backoff(attempt)); err != nil {
				return err
			}
		}

		err := fn(ctx, attempt)
		if err == nil {
			return nil
		}
		lastErr = err

		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return err
		}

		if p.Retryable != nil && !p.Retryable(err) {
			return err
		}

		if attempt+1 < attempts && p.OnRetry != nil {
			p.OnRetry(attempt, err)
		}
	}

	if attempts == 1 {
		return lastErr
	}

	return fmt.Errorf("giving up after %d attempts: %w", attempts, lastErr)
}

// WaitFor blocks for d or until ctx is done.
func WaitFor(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		sleep(d)
	}()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-done:
		return nil
	}
}
