package util

import (
	"context"
	"errors"
	"time"
)

// Backoff returns the wait before attempt n+1 (n starts at 0).
type Backoff func(attempt int) time.Duration

// NoBackoff retries immediately.
func NoBackoff(int) time.Duration { return 0 }

// LinearBackoff waits step, 2*step, 3*step, ...
func LinearBackoff(step time.Duration) Backoff {
	return func(attempt int) time.Duration {
		return step * time.Duration(attempt+1)
	}
}

func isContextErr(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

func wait(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// Retry calls fn up to maxTries times until it returns a nil error.
// If maxTries <= 0, it defaults to 1. Returns the last error if all attempts fail.
func Retry[T any](maxTries int, fn func() (T, error)) (T, error) {
	return RetryWithContext(context.Background(), maxTries, NoBackoff, func(context.Context) (T, error) {
		return fn()
	})
}

// RetryErrWithContext is RetryWithContext for functions that only return an error.
func RetryErrWithContext(ctx context.Context, maxTries int, backoff Backoff, fn func(context.Context) error) error {
	_, err := RetryWithContext(ctx, maxTries, backoff, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, fn(ctx)
	})
	return err
}

// RetryWithContext calls fn up to maxTries times until it returns a nil error,
// sleeping backoff(i) between attempts. Context cancellation ends the loop
// immediately and its error is returned instead of the last attempt's.
func RetryWithContext[T any](
	ctx context.Context,
	maxTries int,
	backoff Backoff,
	fn func(context.Context) (T, error),
) (T, error) {
	if maxTries <= 0 {
		maxTries = 1
	}
	if backoff == nil {
		backoff = NoBackoff
	}

	var zero T
	var lastErr error
	for i := range maxTries {
		if err := ctx.Err(); err != nil {
			return zero, err
		}
		result, err := fn(ctx)
		if err == nil {
			return result, nil
		}
		if isContextErr(err) {
			return zero, err
		}
		lastErr = err

		if i < maxTries-1 {
			if err := wait(ctx, backoff(i)); err != nil {
				return zero, err
			}
		}
	}
	return zero, lastErr
}
