package engine

import (
	"sort"
	"sync"
	"time"
)

// ManualScheduler is a virtual-clock Scheduler for tests and replay
// Callbacks fire only inside Advance, in due-time order
type ManualScheduler struct {
	mu      sync.Mutex
	now     time.Duration
	seq     uint64
	pending []*manualTimer
}

// NewManualScheduler creates a scheduler at virtual time zero
func NewManualScheduler() *ManualScheduler {
	return &ManualScheduler{}
}

type manualTimer struct {
	owner   *ManualScheduler
	due     time.Duration
	seq     uint64
	fn      func()
	stopped bool
	fired   bool
}

// After schedules fn at Now()+d
func (m *ManualScheduler) After(d time.Duration, fn func()) Timer {
	m.mu.Lock()
	defer m.mu.Unlock()

	if d < 0 {
		d = 0
	}
	m.seq++
	t := &manualTimer{owner: m, due: m.now + d, seq: m.seq, fn: fn}
	m.pending = append(m.pending, t)
	return t
}

func (t *manualTimer) Stop() bool {
	t.owner.mu.Lock()
	defer t.owner.mu.Unlock()

	if t.stopped || t.fired {
		return false
	}
	t.stopped = true
	return true
}

// Now returns elapsed virtual time
func (m *ManualScheduler) Now() time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.now
}

// Pending returns the number of live timers
func (m *ManualScheduler) Pending() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	n := 0
	for _, t := range m.pending {
		if !t.stopped && !t.fired {
			n++
		}
	}
	return n
}

// Advance moves virtual time forward by d, firing every timer that comes due
// Timers scheduled by callbacks fire in the same call when their due time is within range
func (m *ManualScheduler) Advance(d time.Duration) {
	m.mu.Lock()
	target := m.now + d
	m.mu.Unlock()

	for {
		t := m.popDue(target)
		if t == nil {
			break
		}
		t.fn()
	}

	m.mu.Lock()
	m.now = target
	m.mu.Unlock()
}

// RunUntilIdle fires timers until none remain or limit callbacks have run
// Returns the number of callbacks fired
func (m *ManualScheduler) RunUntilIdle(limit int) int {
	fired := 0
	for fired < limit {
		t := m.popDue(-1)
		if t == nil {
			break
		}
		t.fn()
		fired++
	}
	return fired
}

// popDue removes and returns the earliest live timer due at or before target
// A negative target accepts any due time
func (m *ManualScheduler) popDue(target time.Duration) *manualTimer {
	m.mu.Lock()
	defer m.mu.Unlock()

	live := m.pending[:0]
	for _, t := range m.pending {
		if !t.stopped && !t.fired {
			live = append(live, t)
		}
	}
	m.pending = live
	if len(m.pending) == 0 {
		return nil
	}

	sort.Slice(m.pending, func(i, j int) bool {
		if m.pending[i].due != m.pending[j].due {
			return m.pending[i].due < m.pending[j].due
		}
		return m.pending[i].seq < m.pending[j].seq
	})

	t := m.pending[0]
	if target >= 0 && t.due > target {
		return nil
	}
	t.fired = true
	m.pending = m.pending[1:]
	if t.due > m.now {
		m.now = t.due
	}
	return t
}
