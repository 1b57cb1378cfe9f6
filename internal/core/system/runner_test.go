package system

import (
	"testing"
	"time"
)

type recorder struct {
	name  string
	phase Phase
	log   *[]string
}

func (r recorder) Phase() Phase { return r.phase }
func (r recorder) Update(time.Duration) {
	*r.log = append(*r.log, r.name)
}

func TestRunnerOrdersByPhaseThenRegistration(t *testing.T) {
	var log []string
	r := NewRunner()
	r.Register(recorder{"cleanup", PhaseCleanup, &log})
	r.Register(recorder{"enemies-a", PhaseEnemies, &log})
	r.Register(recorder{"timers", PhaseTimers, &log})
	r.Register(recorder{"enemies-b", PhaseEnemies, &log})
	r.Register(recorder{"dispatch", PhaseDispatch, &log})

	r.Tick(time.Millisecond)

	want := []string{"dispatch", "timers", "enemies-a", "enemies-b", "cleanup"}
	if len(log) != len(want) {
		t.Fatalf("ran %v, want %v", log, want)
	}
	for i := range want {
		if log[i] != want[i] {
			t.Fatalf("ran %v, want %v", log, want)
		}
	}
}

func TestRunnerTickPhase(t *testing.T) {
	var log []string
	r := NewRunner()
	r.Register(recorder{"timers", PhaseTimers, &log})
	r.Register(recorder{"enemies", PhaseEnemies, &log})

	r.TickPhase(PhaseEnemies, time.Millisecond)
	if len(log) != 1 || log[0] != "enemies" {
		t.Errorf("ran %v, want [enemies]", log)
	}
}
