package retry

import (
	"context"
	"errors"
	"fmt"
	"time"

	"curator/internal/services"
)

const (
	defaultMaxAttempts = 3
	defaultDelay       = 10 * time.Second
)

// Policy describes how many times a fallible operation is attempted and how
// long to wait between attempts. The zero value is unusable; use Default or
// fill every field.
type Policy struct {
	MaxAttempts int
	Delay       time.Duration

	// Sleep overrides how inter-attempt waits are performed (used in tests).
	Sleep func(context.Context, time.Duration) error
}

// Default returns the repository retry policy: three attempts with a fixed
// ten-second delay.
func Default() Policy {
	return Policy{MaxAttempts: defaultMaxAttempts, Delay: defaultDelay}
}

// Do invokes fn until it succeeds, the attempts are exhausted, or the error is
// not retryable. The returned error from an exhausted policy wraps the last
// attempt's error and is marked services.ErrPermanent so callers can treat it
// as a terminal per-item failure.
func (p Policy) Do(ctx context.Context, op string, fn func(context.Context) error) error {
	attempts := p.MaxAttempts
	if attempts <= 0 {
		attempts = defaultMaxAttempts
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		err := fn(ctx)
		if err == nil {
			return nil
		}
		if !services.Retryable(err) {
			return err
		}
		lastErr = err
		if attempt == attempts {
			break
		}
		if err := p.sleep(ctx); err != nil {
			return err
		}
	}

	if lastErr == nil {
		lastErr = errors.New("unknown retry failure")
	}
	return fmt.Errorf("%w: %s: failed after %d attempts: %w", services.ErrPermanent, op, attempts, lastErr)
}

// Value is Do for operations that produce a result.
func Value[T any](ctx context.Context, p Policy, op string, fn func(context.Context) (T, error)) (T, error) {
	var result T
	err := p.Do(ctx, op, func(ctx context.Context) error {
		value, err := fn(ctx)
		if err != nil {
			return err
		}
		result = value
		return nil
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return result, nil
}

func (p Policy) sleep(ctx context.Context) error {
	delay := p.Delay
	if delay <= 0 {
		delay = defaultDelay
	}
	if p.Sleep != nil {
		return p.Sleep(ctx, delay)
	}
	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
