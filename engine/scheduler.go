package engine

import (
	"sync"
	"sync/atomic"
	"time"
)

// Timer is a handle to a pending callback
type Timer interface {
	// Stop cancels the callback; returns false if it already ran or was stopped
	Stop() bool
}

// Scheduler delays callbacks
// Implementations must run callbacks on the goroutine that drives the engine
type Scheduler interface {
	After(d time.Duration, fn func()) Timer
}

// LoopScheduler delivers expired timers to a host event loop through C()
// The host drains C() in the same select that handles input, keeping the engine single-threaded
type LoopScheduler struct {
	ch       chan func()
	done     chan struct{}
	stopOnce sync.Once
}

// NewLoopScheduler creates a scheduler whose channel holds up to buffer queued callbacks
func NewLoopScheduler(buffer int) *LoopScheduler {
	if buffer < 1 {
		buffer = 1
	}
	return &LoopScheduler{
		ch:   make(chan func(), buffer),
		done: make(chan struct{}),
	}
}

// C returns the channel of callbacks ready to run
func (s *LoopScheduler) C() <-chan func() {
	return s.ch
}

// Close releases timers blocked on delivery; queued callbacks are abandoned
func (s *LoopScheduler) Close() {
	s.stopOnce.Do(func() {
		close(s.done)
	})
}

// After schedules fn on the loop after d
func (s *LoopScheduler) After(d time.Duration, fn func()) Timer {
	lt := &loopTimer{}
	lt.timer = time.AfterFunc(d, func() {
		if lt.stopped.Load() {
			return
		}
		select {
		case s.ch <- func() {
			// Stop may land between delivery and execution
			if lt.stopped.Load() {
				return
			}
			lt.fired.Store(true)
			fn()
		}:
		case <-s.done:
		}
	})
	return lt
}

type loopTimer struct {
	timer   *time.Timer
	stopped atomic.Bool
	fired   atomic.Bool
}

func (t *loopTimer) Stop() bool {
	if t.fired.Load() {
		return false
	}
	if !t.stopped.CompareAndSwap(false, true) {
		return false
	}
	t.timer.Stop()
	return true
}
