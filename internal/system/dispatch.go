package system

import (
	"time"

	"github.com/windlane/lanes/internal/core/event"
	coresys "github.com/windlane/lanes/internal/core/system"
	"github.com/windlane/lanes/internal/core/timer"
)

// EventDispatchSystem delivers the events emitted last tick. Phase 0.
type EventDispatchSystem struct {
	bus *event.Bus
}

func NewEventDispatchSystem(bus *event.Bus) *EventDispatchSystem {
	return &EventDispatchSystem{bus: bus}
}

func (s *EventDispatchSystem) Phase() coresys.Phase { return coresys.PhaseDispatch }

func (s *EventDispatchSystem) Update(_ time.Duration) {
	s.bus.SwapBuffers()
	s.bus.DispatchAll()
}

// TimerSystem advances the logical clock and fires due actions. Phase 1.
type TimerSystem struct {
	timers *timer.Scheduler
}

func NewTimerSystem(timers *timer.Scheduler) *TimerSystem {
	return &TimerSystem{timers: timers}
}

func (s *TimerSystem) Phase() coresys.Phase { return coresys.PhaseTimers }

func (s *TimerSystem) Update(dt time.Duration) {
	s.timers.Advance(dt)
}
