// Package retry models bounded retry-with-backoff as an explicit policy so
// the attempt ceiling and backoff curve are testable on their own, instead
// of being buried in ad hoc sleep loops.
package retry

import (
	"context"
	"time"
)

// Policy describes a capped exponential backoff schedule.
type Policy struct {
	// MaxAttempts is the hard attempt ceiling; zero or negative means one
	// attempt with no retries.
	MaxAttempts int
	// BaseDelay is the delay after the first failed attempt.
	BaseDelay time.Duration
	// MaxDelay caps the computed delay; zero means uncapped.
	MaxDelay time.Duration
}

// Delay returns the backoff delay after the given zero-based attempt:
// BaseDelay * 2^attempt, capped at MaxDelay.
func (p Policy) Delay(attempt int) time.Duration {
	if attempt < 0 {
		attempt = 0
	}
	d := p.BaseDelay
	for i := 0; i < attempt; i++ {
		d *= 2
		if p.MaxDelay > 0 && d >= p.MaxDelay {
			return p.MaxDelay
		}
	}
	if p.MaxDelay > 0 && d > p.MaxDelay {
		return p.MaxDelay
	}
	return d
}

// Sleeper suspends the caller; injected in tests to avoid real sleeps.
type Sleeper func(ctx context.Context, d time.Duration) error

// Wait sleeps for d or returns early with the context's error.
func Wait(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// Do runs fn up to p.MaxAttempts times, sleeping p.Delay between failed
// attempts. It returns nil on the first success, the context error if the
// context ends first, and otherwise the error from the final attempt.
func Do(ctx context.Context, p Policy, sleep Sleeper, fn func(attempt int) error) error {
	if sleep == nil {
		sleep = Wait
	}
	attempts := p.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}

	var err error
	for attempt := 0; attempt < attempts; attempt++ {
		if err = fn(attempt); err == nil {
			return nil
		}
		if attempt == attempts-1 {
			break
		}
		if serr := sleep(ctx, p.Delay(attempt)); serr != nil {
			return serr
		}
	}
	return err
}
