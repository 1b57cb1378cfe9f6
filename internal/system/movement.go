package system

import (
	"time"

	coresys "github.com/windlane/lanes/internal/core/system"
	"github.com/windlane/lanes/internal/world"
)

// MovementSystem integrates enemy velocity. Phase 2.
type MovementSystem struct {
	state *world.State
}

func NewMovementSystem(state *world.State) *MovementSystem {
	return &MovementSystem{state: state}
}

func (s *MovementSystem) Phase() coresys.Phase { return coresys.PhaseMovement }

func (s *MovementSystem) Update(dt time.Duration) {
	sec := dt.Seconds()
	s.state.EachEnemy(func(e *world.Enemy) {
		e.X += e.VX * sec
	})
}
