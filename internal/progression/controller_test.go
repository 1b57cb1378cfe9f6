package progression

import (
	"math"
	"testing"
	"time"

	"github.com/windlane/lanes/internal/core/event"
	"github.com/windlane/lanes/internal/core/timer"
	"go.uber.org/zap"
)

func testParams() Params {
	return Params{
		SpawnInterval:    3 * time.Second,
		SpawnFactor:      0.95,
		SpawnPeriod:      15 * time.Second,
		MinSpawnInterval: 800 * time.Millisecond,
		SpeedFactor:      1.05,
		SpeedPeriod:      20 * time.Second,
		VictoryAfter:     4 * time.Minute,
	}
}

func step(ts *timer.Scheduler, total, dt time.Duration) {
	for el := time.Duration(0); el < total; el += dt {
		ts.Advance(dt)
	}
}

func TestSpawnRamp(t *testing.T) {
	ts := timer.NewScheduler()
	c := New(testParams(), ts, event.NewBus(), zap.NewNop())
	c.Start(nil, nil)

	step(ts, 30*time.Second, 16*time.Millisecond)
	if got := c.SpawnIntervalMs(); math.Abs(got-2707.5) > 1e-6 {
		t.Errorf("spawn interval = %vms, want 2707.5ms", got)
	}
}

func TestSpawnRampFloor(t *testing.T) {
	p := testParams()
	p.SpawnFactor = 0.5
	p.MinSpawnInterval = 1 * time.Second
	ts := timer.NewScheduler()
	c := New(p, ts, event.NewBus(), zap.NewNop())
	c.Start(nil, nil)

	ts.Advance(15 * time.Second)
	if got := c.SpawnInterval(); got != 1500*time.Millisecond {
		t.Fatalf("after one step = %v, want 1.5s", got)
	}
	ts.Advance(15 * time.Second)
	ts.Advance(15 * time.Second)
	if got := c.SpawnInterval(); got != time.Second {
		t.Errorf("floored interval = %v, want 1s", got)
	}
}

func TestSpawnTimerReplacedWithoutDoubleFire(t *testing.T) {
	p := testParams()
	p.SpawnPeriod = 3 * time.Second // ramp and spawn due in the same tick
	ts := timer.NewScheduler()
	c := New(p, ts, event.NewBus(), zap.NewNop())
	spawns := 0
	c.Start(func() { spawns++ }, nil)

	ts.Advance(3 * time.Second)
	if spawns != 1 {
		t.Fatalf("spawns at 3s = %d, want 1", spawns)
	}
	// New interval 2850ms runs from the replacement at 3s.
	ts.Advance(2849 * time.Millisecond)
	if spawns != 1 {
		t.Errorf("spawns before replacement due = %d, want 1", spawns)
	}
	ts.Advance(time.Millisecond)
	if spawns != 2 {
		t.Errorf("spawns at replacement due = %d, want 2", spawns)
	}
}

func TestSpeedRamp(t *testing.T) {
	ts := timer.NewScheduler()
	c := New(testParams(), ts, event.NewBus(), zap.NewNop())
	var steps []float64
	c.Start(nil, func(f float64) { steps = append(steps, f) })

	ts.Advance(40 * time.Second)
	if len(steps) != 2 || steps[0] != 1.05 {
		t.Fatalf("speed steps = %v, want two of 1.05", steps)
	}
	if got := c.SpeedMultiplier(); math.Abs(got-1.1025) > 1e-9 {
		t.Errorf("multiplier = %v, want 1.1025", got)
	}
}

func TestVictoryAndDefeatAreExclusive(t *testing.T) {
	p := testParams()
	p.VictoryAfter = 10 * time.Second
	bus := event.NewBus()
	var over []event.GameOver
	event.Subscribe(bus, func(e event.GameOver) { over = append(over, e) })

	ts := timer.NewScheduler()
	c := New(p, ts, bus, zap.NewNop())
	spawns := 0
	c.Start(func() { spawns++ }, nil)

	ts.Advance(10 * time.Second)
	if c.Outcome() != Victory {
		t.Fatalf("outcome = %v, want victory", c.Outcome())
	}
	c.DeclareDefeat()
	if c.Outcome() != Victory {
		t.Errorf("defeat overrode victory")
	}
	before := spawns
	ts.Advance(time.Minute)
	if spawns != before {
		t.Errorf("spawn timer kept running after game over")
	}

	bus.SwapBuffers()
	bus.DispatchAll()
	if len(over) != 1 || over[0].Outcome != "victory" {
		t.Errorf("GameOver events = %+v", over)
	}
}
