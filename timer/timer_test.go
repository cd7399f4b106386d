package timer

import (
	"fmt"
	"sync/atomic"
	"testing"
	"time"
)

func TestScheduler_FiresAfterDelay(t *testing.T) {
	s := NewScheduler(10 * time.Millisecond)
	defer s.Stop()

	var fired int32
	s.Schedule("k1", 20*time.Millisecond, func() {
		atomic.AddInt32(&fired, 1)
	})

	time.Sleep(100 * time.Millisecond)
	if atomic.LoadInt32(&fired) != 1 {
		t.Errorf("expected task to fire once, fired %d times", atomic.LoadInt32(&fired))
	}
}

func TestScheduler_CancelPreventsFiring(t *testing.T) {
	s := NewScheduler(10 * time.Millisecond)
	defer s.Stop()

	var fired int32
	s.Schedule("k1", 30*time.Millisecond, func() {
		atomic.AddInt32(&fired, 1)
	})
	s.Cancel("k1")

	time.Sleep(100 * time.Millisecond)
	if atomic.LoadInt32(&fired) != 0 {
		t.Error("cancelled task must not fire")
	}
}

func TestScheduler_RescheduleReplacesPending(t *testing.T) {
	s := NewScheduler(10 * time.Millisecond)
	defer s.Stop()

	var first, second int32
	s.Schedule("k1", 30*time.Millisecond, func() {
		atomic.AddInt32(&first, 1)
	})
	s.Schedule("k1", 30*time.Millisecond, func() {
		atomic.AddInt32(&second, 1)
	})

	time.Sleep(100 * time.Millisecond)
	if atomic.LoadInt32(&first) != 0 {
		t.Error("replaced task must not fire")
	}
	if atomic.LoadInt32(&second) != 1 {
		t.Errorf("replacement task should fire once, fired %d times", atomic.LoadInt32(&second))
	}
}

func TestScheduler_LargeBurstOfDueTasks(t *testing.T) {
	s := NewScheduler(10 * time.Millisecond)
	defer s.Stop()

	// All due on the same tick; the loop must drain them all without
	// wedging.
	const n = 500
	var fired int32
	for i := 0; i < n; i++ {
		s.Schedule(fmt.Sprintf("k%d", i), 20*time.Millisecond, func() {
			atomic.AddInt32(&fired, 1)
		})
	}

	deadline := time.Now().Add(2 * time.Second)
	for atomic.LoadInt32(&fired) != n && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	if got := atomic.LoadInt32(&fired); got != n {
		t.Errorf("expected %d tasks to fire, got %d", n, got)
	}

	// The scheduler still works afterwards.
	var after int32
	s.Schedule("after", 20*time.Millisecond, func() { atomic.AddInt32(&after, 1) })
	time.Sleep(100 * time.Millisecond)
	if atomic.LoadInt32(&after) != 1 {
		t.Error("scheduler stopped processing after the burst")
	}
}

func TestScheduler_IndependentKeys(t *testing.T) {
	s := NewScheduler(10 * time.Millisecond)
	defer s.Stop()

	var a, b int32
	s.Schedule("ka", 20*time.Millisecond, func() { atomic.AddInt32(&a, 1) })
	s.Schedule("kb", 20*time.Millisecond, func() { atomic.AddInt32(&b, 1) })
	s.Cancel("ka")

	time.Sleep(100 * time.Millisecond)
	if atomic.LoadInt32(&a) != 0 {
		t.Error("cancelled key fired")
	}
	if atomic.LoadInt32(&b) != 1 {
		t.Error("unrelated key should still fire")
	}
}
