package system

import (
	"time"

	coresys "github.com/windlane/lanes/internal/core/system"
	"github.com/windlane/lanes/internal/core/timer"
	"github.com/windlane/lanes/internal/world"
)

// ProjectileSystem moves projectiles and drops the ones that expired or left
// the field. Phase 5.
type ProjectileSystem struct {
	width, height float64
	state         *world.State
	timers        *timer.Scheduler
}

func NewProjectileSystem(width, height float64, state *world.State, timers *timer.Scheduler) *ProjectileSystem {
	return &ProjectileSystem{width: width, height: height, state: state, timers: timers}
}

func (s *ProjectileSystem) Phase() coresys.Phase { return coresys.PhaseProjectiles }

func (s *ProjectileSystem) Update(dt time.Duration) {
	now := s.timers.Now()
	sec := dt.Seconds()
	s.state.EachProjectile(func(p *world.Projectile) {
		p.X += p.VX * sec
		p.Y += p.VY * sec
		switch {
		case p.Expires > 0 && now >= p.Expires:
			s.state.DestroyProjectile(p.ID)
		case p.X < 0 || p.X > s.width || p.Y < 0 || p.Y > s.height:
			s.state.DestroyProjectile(p.ID)
		}
	})
}
