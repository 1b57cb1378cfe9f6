package timer

import (
	"testing"
	"time"
)

func TestScheduleOnceFiresAtDeadline(t *testing.T) {
	s := NewScheduler()
	fired := 0
	s.ScheduleOnce(300*time.Millisecond, func() { fired++ })

	s.Advance(200 * time.Millisecond)
	if fired != 0 {
		t.Fatalf("fired early at %v", s.Now())
	}
	s.Advance(100 * time.Millisecond)
	if fired != 1 {
		t.Fatalf("fired = %d at %v, want 1", fired, s.Now())
	}
	s.Advance(time.Second)
	if fired != 1 {
		t.Errorf("one-shot fired again, count %d", fired)
	}
	if s.Len() != 0 {
		t.Errorf("Len = %d after one-shot fired", s.Len())
	}
}

func TestRepeatingCatchesUpWithinOneAdvance(t *testing.T) {
	s := NewScheduler()
	fired := 0
	s.ScheduleRepeating(2*time.Second, func() { fired++ })

	s.Advance(6 * time.Second)
	if fired != 3 {
		t.Errorf("fired = %d, want 3", fired)
	}
}

func TestSameTickFiresInInsertionOrder(t *testing.T) {
	s := NewScheduler()
	var order []string
	s.ScheduleOnce(500*time.Millisecond, func() { order = append(order, "late-deadline-first-inserted") })
	s.ScheduleOnce(100*time.Millisecond, func() { order = append(order, "early-deadline") })
	s.ScheduleRepeating(250*time.Millisecond, func() { order = append(order, "repeat") })

	s.Advance(time.Second)

	want := []string{
		"late-deadline-first-inserted", "early-deadline", "repeat",
		"repeat", "repeat", "repeat",
	}
	if len(order) != len(want) {
		t.Fatalf("order = %v, want %v", order, want)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("order = %v, want %v", order, want)
		}
	}
}

func TestCancelPreventsDueTimer(t *testing.T) {
	s := NewScheduler()
	fired := false
	var victim Token
	// The canceller is inserted first, so it runs before the victim in the
	// same pass even though both are due.
	s.ScheduleOnce(100*time.Millisecond, func() { s.Cancel(victim) })
	victim = s.ScheduleOnce(100*time.Millisecond, func() { fired = true })

	s.Advance(100 * time.Millisecond)
	if fired {
		t.Error("cancelled timer fired")
	}
	if s.Pending(victim) {
		t.Error("cancelled timer still pending")
	}
	if s.Cancel(victim) {
		t.Error("second cancel reported true")
	}
}

func TestReplacementDoesNotDoubleFire(t *testing.T) {
	s := NewScheduler()
	spawns := 0
	spawn := func() { spawns++ }
	tok := s.ScheduleRepeating(time.Second, spawn)

	// At t=1s both the ramp and the spawn timer are due. The ramp replaces
	// the spawn timer; the replacement must not fire in the same Advance.
	s.ScheduleOnce(time.Second, func() {
		s.Cancel(tok)
		tok = s.ScheduleRepeating(500*time.Millisecond, spawn)
	})
	s.Advance(time.Second)
	if spawns != 1 {
		t.Fatalf("spawns after replacement tick = %d, want 1", spawns)
	}

	s.Advance(500 * time.Millisecond)
	if spawns != 2 {
		t.Errorf("spawns = %d, want 2", spawns)
	}
}

func TestTimerScheduledDuringAdvanceWaitsForNextAdvance(t *testing.T) {
	s := NewScheduler()
	inner := 0
	s.ScheduleOnce(0, func() {
		s.ScheduleOnce(0, func() { inner++ })
	})
	s.Advance(10 * time.Millisecond)
	if inner != 0 {
		t.Fatal("nested zero-delay timer fired in the same Advance")
	}
	s.Advance(10 * time.Millisecond)
	if inner != 1 {
		t.Errorf("inner = %d, want 1", inner)
	}
}

func TestNonPositiveIntervalRejected(t *testing.T) {
	s := NewScheduler()
	if tok := s.ScheduleRepeating(0, func() {}); tok != 0 {
		t.Errorf("zero interval returned token %d", tok)
	}
	if s.Len() != 0 {
		t.Errorf("Len = %d, want 0", s.Len())
	}
}
