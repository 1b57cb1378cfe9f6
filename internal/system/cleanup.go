package system

import (
	"time"

	coresys "github.com/windlane/lanes/internal/core/system"
	"github.com/windlane/lanes/internal/world"
)

// CleanupSystem releases the entity slots destroyed during this tick so the
// next tick may reuse them. Phase 6 (Cleanup).
type CleanupSystem struct {
	state *world.State
}

func NewCleanupSystem(state *world.State) *CleanupSystem {
	return &CleanupSystem{state: state}
}

func (s *CleanupSystem) Phase() coresys.Phase { return coresys.PhaseCleanup }

func (s *CleanupSystem) Update(_ time.Duration) {
	s.state.Recycle()
}
