package retry

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func statusSequence(statuses ...string) func(int) (bool, error) {
	return func(attempt int) (bool, error) {
		if attempt > len(statuses) {
			return false, nil
		}
		return statuses[attempt-1] == "ACTIVE", nil
	}
}

func TestPoll_ActiveOnThirdPoll(t *testing.T) {
	clock := &fakeClock{}
	polls := 0
	check := statusSequence("PENDING", "PENDING", "ACTIVE", "ACTIVE")

	err := Poll(clock.Sleep, PollSpec{Attempts: 5, Interval: 20 * time.Second}, func(attempt int) (bool, error) {
		polls++
		return check(attempt)
	})

	require.NoError(t, err)
	assert.Equal(t, 3, polls)
	assert.Equal(t, []time.Duration{20 * time.Second, 20 * time.Second}, clock.waits)
}

func TestPoll_NeverActiveIsTerminal(t *testing.T) {
	clock := &fakeClock{}
	polls := 0

	err := Poll(clock.Sleep, PollSpec{Attempts: 5, Interval: 20 * time.Second}, func(int) (bool, error) {
		polls++
		return false, nil
	})

	var terminal *TerminalError
	require.ErrorAs(t, err, &terminal)
	assert.Equal(t, 5, terminal.Attempts)
	assert.Equal(t, 5, polls)
	assert.True(t, IsNotReady(err))
	assert.Len(t, clock.waits, 4)
}

func TestPoll_NotFoundAndOtherErrorsKeepPolling(t *testing.T) {
	var misses []error
	spec := PollSpec{
		Attempts: 4,
		Interval: time.Second,
		OnMiss:   func(_ int, err error) { misses = append(misses, err) },
	}

	err := Poll((&fakeClock{}).Sleep, spec, func(attempt int) (bool, error) {
		switch attempt {
		case 1:
			return false, NotFound("subscription not found", nil)
		case 2:
			return false, Transient("bad gateway", nil)
		default:
			return true, nil
		}
	})

	require.NoError(t, err)
	require.Len(t, misses, 2)
	assert.True(t, IsNotFound(misses[0]))
	assert.True(t, IsTransient(misses[1]))
}

func TestPoll_ExhaustionKeepsLastError(t *testing.T) {
	err := Poll((&fakeClock{}).Sleep, PollSpec{Attempts: 2}, func(int) (bool, error) {
		return false, NotFound("404", nil)
	})

	assert.True(t, IsTerminal(err))
	assert.True(t, IsNotFound(err))
	assert.False(t, IsNotReady(err))
}

func TestPoll_SleepErrorStops(t *testing.T) {
	cancelled := errors.New("cancelled")
	polls := 0
	err := Poll(func(time.Duration) error { return cancelled }, PollSpec{Attempts: 5, Interval: time.Second}, func(int) (bool, error) {
		polls++
		return false, nil
	})
	assert.ErrorIs(t, err, cancelled)
	assert.Equal(t, 1, polls)
}
