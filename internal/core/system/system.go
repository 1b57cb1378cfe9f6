package system

import "time"

// Phase defines execution ordering within a single tick.
type Phase int

const (
	PhaseDispatch    Phase = iota // 0: deliver last tick's events
	PhaseTimers                   // 1: advance the scheduler, fire due actions
	PhaseMovement                 // 2: integrate enemy velocity
	PhaseEnemies                  // 3: interaction resolver
	PhaseDefenders                // 4: shooters and ranged shooters fire
	PhaseProjectiles              // 5: projectile flight and expiry
	PhaseCleanup                  // 6: recycle destroyed entity slots
)

// System is the interface every ECS system implements.
type System interface {
	Phase() Phase
	Update(dt time.Duration)
}
