package system

import (
	"math"
	"math/rand"
	"time"

	coresys "github.com/windlane/lanes/internal/core/system"
	"github.com/windlane/lanes/internal/core/timer"
	"github.com/windlane/lanes/internal/world"
)

type FireParams struct {
	Width            float64 // enemies beyond this are not yet on the field
	ProjectileRadius float64
	Lifespan         time.Duration // 0 = until off field
}

// DefenderSystem fires shooters and ranged shooters whose cooldown elapsed.
// A defender being consumed holds fire. Phase 4.
type DefenderSystem struct {
	p      FireParams
	state  *world.State
	timers *timer.Scheduler
	rng    *rand.Rand
}

func NewDefenderSystem(p FireParams, state *world.State, timers *timer.Scheduler, rng *rand.Rand) *DefenderSystem {
	return &DefenderSystem{p: p, state: state, timers: timers, rng: rng}
}

func (s *DefenderSystem) Phase() coresys.Phase { return coresys.PhaseDefenders }

func (s *DefenderSystem) Update(_ time.Duration) {
	now := s.timers.Now()
	s.state.EachDefender(func(d *world.Defender) {
		if d.BeingConsumed {
			return
		}
		switch {
		case d.Shooter != nil:
			s.fireLane(d, now)
		case d.Ranged != nil:
			s.fireRanged(d, now)
		}
	})
}

// fireLane shoots straight along the lane while an enemy is ahead.
func (s *DefenderSystem) fireLane(d *world.Defender, now time.Duration) {
	sh := d.Shooter
	if now < sh.NextFire || !s.enemyAhead(d) {
		return
	}
	sh.NextFire = now + s.refire(sh)
	s.spawn(d, sh.ProjectileSpeed, 0, sh.Damage, now)
}

// refire draws the wait before the next lane shot. Without a refire window
// the fixed interval applies.
func (s *DefenderSystem) refire(sh *world.ShooterState) time.Duration {
	if sh.RefireMax <= 0 {
		return sh.Interval
	}
	span := sh.RefireMax - sh.RefireMin
	if span <= 0 {
		return sh.RefireMin
	}
	return sh.RefireMin + time.Duration(s.rng.Int63n(int64(span)+1))
}

func (s *DefenderSystem) enemyAhead(d *world.Defender) bool {
	found := false
	s.state.EachEnemy(func(e *world.Enemy) {
		if !found && e.Lane == d.Lane() && e.X >= d.X && e.X <= s.p.Width {
			found = true
		}
	})
	return found
}

// fireRanged aims at the nearest enemy within range. The shot does not home.
func (s *DefenderSystem) fireRanged(d *world.Defender, now time.Duration) {
	r := d.Ranged
	if now < r.NextFire {
		return
	}
	var target *world.Enemy
	best := math.Inf(1)
	s.state.EachEnemy(func(e *world.Enemy) {
		dist := math.Hypot(e.X-d.X, e.Y-d.Y)
		if dist <= r.Range && dist < best {
			best, target = dist, e
		}
	})
	if target == nil {
		return
	}
	r.NextFire = now + r.Interval
	vx, vy := r.ProjectileSpeed, 0.0
	if best > 0 {
		vx = (target.X - d.X) / best * r.ProjectileSpeed
		vy = (target.Y - d.Y) / best * r.ProjectileSpeed
	}
	s.spawn(d, vx, vy, r.Damage, now)
}

func (s *DefenderSystem) spawn(d *world.Defender, vx, vy float64, damage int, now time.Duration) {
	p := world.Projectile{
		Source: d.ID,
		X:      d.X,
		Y:      d.Y,
		VX:     vx,
		VY:     vy,
		Radius: s.p.ProjectileRadius,
		Damage: damage,
	}
	if s.p.Lifespan > 0 {
		p.Expires = now + s.p.Lifespan
	}
	s.state.AddProjectile(p)
}
