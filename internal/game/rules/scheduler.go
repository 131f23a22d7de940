package rules

import (
	"context"
	"sync"
	"time"

	"github.com/zyedidia/generic/heap"
	"go.uber.org/zap"
)

// timer is a deferred callback. Ties on deadline fire in scheduling order.
type timer struct {
	at   time.Duration
	seq  uint64
	name string
	fn   func()
}

func timerLess(a, b timer) bool {
	if a.at != b.at {
		return a.at < b.at
	}
	return a.seq < b.seq
}

// Scheduler is a single ordered timer queue over a virtual clock.
//
// Callbacks run outside the queue lock, one at a time, and may schedule
// further timers. A callback never runs before every earlier deadline has
// fired.
type Scheduler struct {
	logger *zap.Logger

	mu    sync.Mutex
	now   time.Duration
	seq   uint64
	queue *heap.Heap[timer]

	// serializes Advance so callbacks never interleave
	fireMu sync.Mutex
}

// NewScheduler creates a scheduler whose clock starts at zero.
func NewScheduler(logger *zap.Logger) *Scheduler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Scheduler{
		logger: logger,
		queue:  heap.New[timer](timerLess),
	}
}

// Now returns the current virtual time.
func (s *Scheduler) Now() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.now
}

// At schedules fn at an absolute deadline. Past deadlines fire on the next
// Advance.
func (s *Scheduler) At(deadline time.Duration, name string, fn func()) {
	if fn == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	s.queue.Push(timer{at: deadline, seq: s.seq, name: name, fn: fn})
}

// After schedules fn relative to the current time.
func (s *Scheduler) After(delay time.Duration, name string, fn func()) {
	s.At(s.Now()+delay, name, fn)
}

// Pending returns the number of queued timers.
func (s *Scheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.queue.Size()
}

// NextDeadline returns the earliest queued deadline.
func (s *Scheduler) NextDeadline() (time.Duration, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	next, ok := s.queue.Peek()
	return next.at, ok
}

// Advance moves the clock forward by dt, firing every timer due on the way,
// and returns how many fired.
func (s *Scheduler) Advance(dt time.Duration) int {
	if dt < 0 {
		dt = 0
	}
	s.fireMu.Lock()
	defer s.fireMu.Unlock()

	s.mu.Lock()
	target := s.now + dt
	s.mu.Unlock()
	return s.fireUntil(target)
}

// Drain fires every queued timer, including ones scheduled while draining,
// and leaves the clock at the last deadline.
func (s *Scheduler) Drain() int {
	s.fireMu.Lock()
	defer s.fireMu.Unlock()

	fired := 0
	for {
		deadline, ok := s.NextDeadline()
		if !ok {
			return fired
		}
		fired += s.fireUntil(deadline)
	}
}

func (s *Scheduler) fireUntil(target time.Duration) int {
	fired := 0
	for {
		s.mu.Lock()
		next, ok := s.queue.Peek()
		if !ok || next.at > target {
			if target > s.now {
				s.now = target
			}
			s.mu.Unlock()
			return fired
		}
		s.queue.Pop()
		if next.at > s.now {
			s.now = next.at
		}
		s.mu.Unlock()

		s.logger.Debug("timer fired",
			zap.String("timer", next.name),
			zap.Duration("at", next.at),
		)
		next.fn()
		fired++
	}
}

// Run drives the clock in real time until ctx is cancelled.
func (s *Scheduler) Run(ctx context.Context, tick time.Duration) error {
	if tick <= 0 {
		tick = 10 * time.Millisecond
	}
	ticker := time.NewTicker(tick)
	defer ticker.Stop()

	last := time.Now()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case now := <-ticker.C:
			s.Advance(now.Sub(last))
			last = now
		}
	}
}
