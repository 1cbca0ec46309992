package retry

import (
	"errors"
	"time"

	"go.temporal.io/sdk/temporal"
)

// ErrNotReady is the terminal cause when a poll never saw the wanted state.
var ErrNotReady = temporal.NewNonRetryableApplicationError("desired state not reached", TypeNotReady, nil)

// PollSpec bounds a status poll.
type PollSpec struct {
	Attempts int
	Interval time.Duration
	// OnMiss is called after every attempt that did not finish the poll.
	OnMiss func(attempt int, err error)
}

// Poll calls check up to Attempts times, waiting Interval between calls. It
// returns nil as soon as check reports done. Errors from check do not end the
// poll: a NotFound result means "not yet provisioned" and any other failure
// is retried within the same bound. Cancellation of the wait ends it early.
// Exhaustion returns a *TerminalError wrapping the last error, or ErrNotReady
// when the last attempt succeeded but was not done.
func Poll(sleep Sleeper, spec PollSpec, check func(attempt int) (bool, error)) error {
	attempts := spec.Attempts
	if attempts < 1 {
		attempts = 1
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		done, err := check(attempt)
		if err == nil && done {
			return nil
		}
		if err != nil && temporal.IsCanceledError(err) {
			return err
		}
		lastErr = err
		if spec.OnMiss != nil {
			spec.OnMiss(attempt, err)
		}

		if attempt == attempts {
			break
		}
		if serr := sleep(spec.Interval); serr != nil {
			return &TerminalError{Attempts: attempt, Err: serr}
		}
	}

	if lastErr == nil {
		lastErr = ErrNotReady
	}
	return &TerminalError{Attempts: attempts, Err: lastErr}
}

// IsNotReady reports whether err is a poll that ran out without reaching the
// wanted state.
func IsNotReady(err error) bool {
	return errors.Is(err, ErrNotReady) || hasType(err, TypeNotReady)
}
