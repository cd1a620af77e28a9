package engine

import (
	"testing"
	"time"
)

func TestLoopSchedulerDelivers(t *testing.T) {
	s := NewLoopScheduler(4)
	defer s.Close()

	ran := false
	s.After(5*time.Millisecond, func() { ran = true })

	select {
	case fn := <-s.C():
		fn()
	case <-time.After(time.Second):
		t.Fatal("Timed out waiting for callback delivery")
	}
	if !ran {
		t.Error("Expected callback to run")
	}
}

func TestLoopSchedulerStopAfterDelivery(t *testing.T) {
	s := NewLoopScheduler(4)
	defer s.Close()

	ran := false
	timer := s.After(time.Millisecond, func() { ran = true })

	// Let the timer queue its callback before stopping it
	time.Sleep(50 * time.Millisecond)
	if !timer.Stop() {
		t.Fatal("Expected Stop to succeed before the callback executed")
	}

	select {
	case fn := <-s.C():
		fn()
	case <-time.After(100 * time.Millisecond):
	}
	if ran {
		t.Error("Stopped callback must not run")
	}
	if timer.Stop() {
		t.Error("Second Stop should report false")
	}
}

func TestLoopSchedulerCloseReleasesSenders(t *testing.T) {
	s := NewLoopScheduler(1)
	for i := 0; i < 3; i++ {
		s.After(time.Millisecond, func() {})
	}
	time.Sleep(20 * time.Millisecond)
	s.Close()
	s.Close()
}

func TestManualSchedulerOrdering(t *testing.T) {
	m := NewManualScheduler()
	var order []string

	m.After(30*time.Millisecond, func() { order = append(order, "c") })
	m.After(10*time.Millisecond, func() {
		order = append(order, "a")
		m.After(5*time.Millisecond, func() { order = append(order, "nested") })
	})
	m.After(10*time.Millisecond, func() { order = append(order, "b") })
	stopped := m.After(20*time.Millisecond, func() { order = append(order, "stopped") })
	stopped.Stop()

	m.Advance(25 * time.Millisecond)
	want := []string{"a", "b", "nested"}
	if len(order) != len(want) {
		t.Fatalf("Expected %v, got %v", want, order)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("Expected %v, got %v", want, order)
		}
	}
	if m.Now() != 25*time.Millisecond {
		t.Errorf("Expected now=25ms, got %v", m.Now())
	}
	if m.Pending() != 1 {
		t.Errorf("Expected 1 pending timer, got %d", m.Pending())
	}

	if n := m.RunUntilIdle(10); n != 1 {
		t.Errorf("Expected 1 callback from RunUntilIdle, got %d", n)
	}
	if m.Now() != 30*time.Millisecond {
		t.Errorf("Expected clock to follow fired timer to 30ms, got %v", m.Now())
	}
}
