package rules

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func TestSchedulerOrdersByDeadlineThenSequence(t *testing.T) {
	s := NewScheduler(zaptest.NewLogger(t))
	var fired []string
	record := func(name string) func() {
		return func() { fired = append(fired, name) }
	}

	s.At(300*time.Millisecond, "c", record("c"))
	s.At(0, "a", record("a"))
	s.At(300*time.Millisecond, "d", record("d"))
	s.At(100*time.Millisecond, "b", record("b"))
	require.Equal(t, 4, s.Pending())

	next, ok := s.NextDeadline()
	require.True(t, ok)
	assert.Equal(t, time.Duration(0), next)

	assert.Equal(t, 2, s.Advance(150*time.Millisecond))
	assert.Equal(t, []string{"a", "b"}, fired)
	assert.Equal(t, 150*time.Millisecond, s.Now())

	assert.Equal(t, 2, s.Advance(time.Second))
	assert.Equal(t, []string{"a", "b", "c", "d"}, fired)
	assert.Equal(t, 1150*time.Millisecond, s.Now())
	assert.Equal(t, 0, s.Pending())
}

func TestSchedulerCallbacksMaySchedule(t *testing.T) {
	s := NewScheduler(nil)
	var fired []time.Duration

	s.At(10*time.Millisecond, "first", func() {
		fired = append(fired, s.Now())
		s.After(5*time.Millisecond, "chained", func() {
			fired = append(fired, s.Now())
		})
		// Already due: runs within the same Advance after the current one.
		s.At(10*time.Millisecond, "same-deadline", func() {
			fired = append(fired, s.Now())
		})
	})

	s.Advance(12 * time.Millisecond)
	assert.Equal(t, []time.Duration{10 * time.Millisecond, 10 * time.Millisecond}, fired)

	s.Advance(3 * time.Millisecond)
	assert.Equal(t, []time.Duration{10 * time.Millisecond, 10 * time.Millisecond, 15 * time.Millisecond}, fired)
}

func TestSchedulerDrain(t *testing.T) {
	s := NewScheduler(nil)
	count := 0
	s.At(time.Second, "x", func() {
		count++
		s.After(time.Second, "y", func() { count++ })
	})
	assert.Equal(t, 2, s.Drain())
	assert.Equal(t, 2, count)
	assert.Equal(t, 2*time.Second, s.Now())
	assert.Equal(t, 0, s.Drain())
}

func TestSchedulerNegativeAdvance(t *testing.T) {
	s := NewScheduler(nil)
	s.Advance(-time.Second)
	assert.Equal(t, time.Duration(0), s.Now())
	s.At(0, "nil", nil)
	assert.Equal(t, 0, s.Pending())
}

func TestSchedulerRunRealTime(t *testing.T) {
	s := NewScheduler(zaptest.NewLogger(t))
	done := make(chan struct{})
	s.At(20*time.Millisecond, "wake", func() { close(done) })

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	errCh := make(chan error, 1)
	go func() { errCh <- s.Run(ctx, time.Millisecond) }()

	select {
	case <-done:
	case <-ctx.Done():
		t.Fatal("timer did not fire in real time")
	}
	cancel()
	assert.ErrorIs(t, <-errCh, context.Canceled)
}
