package retry

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.temporal.io/sdk/temporal"
)

// fakeClock records requested waits instead of sleeping.
type fakeClock struct {
	waits []time.Duration
}

func (c *fakeClock) Sleep(d time.Duration) error {
	c.waits = append(c.waits, d)
	return nil
}

func TestDo_AlwaysTransientRunsExactlyMaxAttempts(t *testing.T) {
	for _, n := range []int{1, 3, 7} {
		clock := &fakeClock{}
		calls := 0

		err := Do(clock.Sleep, Policy{MaxAttempts: n, Delay: time.Second}, func(attempt int) error {
			calls++
			assert.Equal(t, calls, attempt)
			return Transient("storage unavailable", nil)
		})

		var terminal *TerminalError
		require.ErrorAs(t, err, &terminal)
		assert.Equal(t, n, calls)
		assert.Equal(t, n, terminal.Attempts)
		assert.True(t, IsTransient(terminal.Err))
		assert.Len(t, clock.waits, n-1)
	}
}

func TestDo_NonRetryablePropagatesImmediately(t *testing.T) {
	clock := &fakeClock{}
	calls := 0
	want := Client("bad request", nil)

	err := Do(clock.Sleep, Policy{MaxAttempts: 5, Delay: time.Second}, func(int) error {
		calls++
		return want
	})

	assert.Equal(t, 1, calls)
	assert.Same(t, want, err)
	assert.False(t, IsTerminal(err))
	assert.Empty(t, clock.waits)
}

func TestDo_PlainErrorIsNotRetried(t *testing.T) {
	calls := 0
	err := Do((&fakeClock{}).Sleep, Policy{MaxAttempts: 3}, func(int) error {
		calls++
		return errors.New("boom")
	})
	assert.EqualError(t, err, "boom")
	assert.Equal(t, 1, calls)
}

func TestDo_SucceedsAfterTransientFailures(t *testing.T) {
	clock := &fakeClock{}
	var retried []int

	p := Policy{
		MaxAttempts: 5,
		Delay:       time.Second,
		Multiplier:  2,
		OnRetry:     func(attempt int, _ error, _ time.Duration) { retried = append(retried, attempt) },
	}
	err := Do(clock.Sleep, p, func(attempt int) error {
		if attempt < 3 {
			return Transient("503", nil)
		}
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, []int{1, 2}, retried)
	assert.Equal(t, []time.Duration{time.Second, 2 * time.Second}, clock.waits)
}

func TestDo_CustomRetryableKind(t *testing.T) {
	calls := 0
	err := Do((&fakeClock{}).Sleep, Policy{MaxAttempts: 2, Retryable: IsNotFound}, func(int) error {
		calls++
		return NotFound("missing", nil)
	})
	assert.True(t, IsTerminal(err))
	assert.Equal(t, 2, calls)
}

func TestDo_SleepErrorStops(t *testing.T) {
	cancelled := errors.New("cancelled")
	calls := 0
	err := Do(func(time.Duration) error { return cancelled }, Policy{MaxAttempts: 4, Delay: time.Second}, func(int) error {
		calls++
		return Transient("503", nil)
	})

	var terminal *TerminalError
	require.ErrorAs(t, err, &terminal)
	assert.Equal(t, 1, terminal.Attempts)
	assert.ErrorIs(t, err, cancelled)
	assert.Equal(t, 1, calls)
}

func TestPolicy_Backoff(t *testing.T) {
	p := Policy{Delay: time.Second, Multiplier: 3, MaxDelay: 5 * time.Second}
	assert.Equal(t, time.Second, p.Backoff(1))
	assert.Equal(t, 3*time.Second, p.Backoff(2))
	assert.Equal(t, 5*time.Second, p.Backoff(3))
	assert.Equal(t, 5*time.Second, p.Backoff(60))

	fixed := Policy{Delay: 2 * time.Second}
	assert.Equal(t, 2*time.Second, fixed.Backoff(4))
}

func TestTerminalError_Message(t *testing.T) {
	err := &TerminalError{Attempts: 3, Err: Transient("bucket create failed", errors.New("503"))}
	assert.Equal(t, "gave up after 3 attempts: bucket create failed: 503", err.Error())
}

func TestClassification(t *testing.T) {
	assert.True(t, IsTransient(Transient("x", nil)))
	assert.True(t, IsTransient(temporal.NewTimeoutError(0, nil)))
	assert.False(t, IsTransient(Client("x", nil)))
	assert.False(t, IsTransient(nil))
	assert.True(t, IsNotFound(NotFound("x", nil)))
	assert.False(t, IsNotFound(Transient("x", nil)))

	wrapped := Client("outer", NotFound("inner", nil))
	assert.True(t, IsNotFound(wrapped))
}

func TestRemark(t *testing.T) {
	assert.Equal(t, "", Remark(nil))
	assert.Equal(t, "plain", Remark(errors.New("plain")))
	assert.Equal(t, "denied: 403", Remark(Client("denied", errors.New("403"))))
	assert.Equal(t, "gave up after 3 attempts: portal down",
		Remark(&TerminalError{Attempts: 3, Err: Transient("portal down", nil)}))
}

func TestIsTransient_TerminalNeverRetried(t *testing.T) {
	err := &TerminalError{Attempts: 5, Err: Transient("503", nil)}
	assert.False(t, IsTransient(err))
}
