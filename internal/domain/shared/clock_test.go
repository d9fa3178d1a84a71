package shared

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestMockClock_SleepAdvancesTime(t *testing.T) {
	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	clock := NewMockClock(start)

	clock.Sleep(3 * time.Second)
	clock.Advance(time.Second)

	assert.Equal(t, start.Add(4*time.Second), clock.Now())
	assert.Equal(t, 1, clock.Sleeps())
}

func TestSleepContext(t *testing.T) {
	t.Run("mock clock sleeps in full", func(t *testing.T) {
		clock := NewMockClock(time.Time{})
		before := clock.Now()

		err := SleepContext(context.Background(), clock, time.Minute)

		assert.NoError(t, err)
		assert.Equal(t, time.Minute, clock.Now().Sub(before))
	})

	t.Run("cancelled context returns before sleeping", func(t *testing.T) {
		clock := NewMockClock(time.Time{})
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		err := SleepContext(ctx, clock, time.Minute)

		assert.ErrorIs(t, err, context.Canceled)
		assert.Equal(t, 0, clock.Sleeps())
	})

	t.Run("real clock is interrupted by cancellation", func(t *testing.T) {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
		defer cancel()

		start := time.Now()
		err := SleepContext(ctx, NewRealClock(), time.Minute)

		assert.ErrorIs(t, err, context.DeadlineExceeded)
		assert.Less(t, time.Since(start), time.Second)
	})
}
