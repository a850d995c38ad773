// Package retry provides cancellation-aware waits and a bounded fixed-delay
// retry loop. This is part of the platform layer and contains no business logic.
package retry

import (
	"context"
	"time"
)

// Sleeper waits for d or until ctx is done.
type Sleeper interface {
	Sleep(ctx context.Context, d time.Duration) error
}

// SleeperFunc adapts a function to Sleeper.
type SleeperFunc func(ctx context.Context, d time.Duration) error

// Sleep calls f.
func (f SleeperFunc) Sleep(ctx context.Context, d time.Duration) error {
	return f(ctx, d)
}

// TimerSleeper sleeps on a real timer.
var TimerSleeper Sleeper = SleeperFunc(SleepOrDone)

// SleepOrDone waits for the duration or returns early on context cancellation.
// The timer is always stopped before returning.
func SleepOrDone(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Policy bounds a retry loop: at most MaxRetries additional attempts, Delay apart.
type Policy struct {
	MaxRetries int
	Delay      time.Duration
}

// Attempts returns the total number of attempts the policy allows.
func (p Policy) Attempts() int {
	if p.MaxRetries < 0 {
		return 1
	}
	return p.MaxRetries + 1
}

// Do calls fn until it succeeds, returns an error shouldRetry rejects, or the
// policy is exhausted. fn receives the 1-based attempt number. The last error
// is returned unchanged.
func Do(ctx context.Context, p Policy, sleeper Sleeper, shouldRetry func(error) bool, fn func(attempt int) error) error {
	if sleeper == nil {
		sleeper = TimerSleeper
	}

	var lastErr error
	attempts := p.Attempts()
	for attempt := 1; attempt <= attempts; attempt++ {
		if err := ctx.Err(); err != nil {
			if lastErr != nil {
				return lastErr
			}
			return err
		}

		lastErr = fn(attempt)
		if lastErr == nil {
			return nil
		}
		if shouldRetry != nil && !shouldRetry(lastErr) {
			return lastErr
		}

		if attempt < attempts {
			if err := sleeper.Sleep(ctx, p.Delay); err != nil {
				return lastErr
			}
		}
	}
	return lastErr
}
