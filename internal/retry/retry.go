// Package retry re-expresses step retry and async polling as explicit
// functions with an injectable sleeper, so attempt counts and delays can be
// driven by workflow timers in production and by a fake clock in tests.
package retry

import (
	"math"
	"time"
)

// Sleeper blocks for d. Inside a workflow this is a durable timer; it
// returns an error only when the wait is cancelled.
type Sleeper func(d time.Duration) error

// Policy bounds how often a step runs and how long to wait in between.
type Policy struct {
	MaxAttempts int
	Delay       time.Duration
	// Multiplier scales the delay per attempt. Values <= 1 keep it fixed.
	Multiplier float64
	// MaxDelay caps the computed delay when positive.
	MaxDelay time.Duration
	// Retryable selects the error kind that earns another attempt.
	// Defaults to IsTransient.
	Retryable func(error) bool
	// OnRetry is called before each wait with the attempt that just failed.
	OnRetry func(attempt int, err error, wait time.Duration)
}

// Backoff returns the wait after the given failed attempt (1-based). It is a
// pure function of the attempt number.
func (p Policy) Backoff(attempt int) time.Duration {
	d := p.Delay
	if p.Multiplier > 1 && attempt > 1 {
		d = time.Duration(float64(p.Delay) * math.Pow(p.Multiplier, float64(attempt-1)))
	}
	if p.MaxDelay > 0 && (d > p.MaxDelay || d < 0) {
		d = p.MaxDelay
	}
	return d
}

// Do runs op until it succeeds, fails with a non-retryable error, or has run
// MaxAttempts times. Non-retryable errors are returned unchanged. Exhaustion
// returns a *TerminalError carrying the attempt count and the last error.
func Do(sleep Sleeper, p Policy, op func(attempt int) error) error {
	maxAttempts := p.MaxAttempts
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	retryable := p.Retryable
	if retryable == nil {
		retryable = IsTransient
	}

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		err := op(attempt)
		if err == nil {
			return nil
		}
		if !retryable(err) {
			return err
		}
		lastErr = err

		if attempt == maxAttempts {
			break
		}
		wait := p.Backoff(attempt)
		if p.OnRetry != nil {
			p.OnRetry(attempt, err, wait)
		}
		if wait > 0 {
			if serr := sleep(wait); serr != nil {
				return &TerminalError{Attempts: attempt, Err: serr}
			}
		}
	}
	return &TerminalError{Attempts: maxAttempts, Err: lastErr}
}
