package system

import (
	"math"
	"time"

	"github.com/windlane/lanes/internal/core/ecs"
	"github.com/windlane/lanes/internal/core/event"
	coresys "github.com/windlane/lanes/internal/core/system"
	"github.com/windlane/lanes/internal/core/timer"
	"github.com/windlane/lanes/internal/world"
	"go.uber.org/zap"
)

// Referee receives the defeat condition. progression.Controller implements it.
type Referee interface {
	DeclareDefeat()
}

type InteractionParams struct {
	BoundaryX     float64
	ConsumeDelay  time.Duration
	RowTolerance  float64
	SweepDelay    time.Duration
	LaneStagger   time.Duration
	ClearDuration time.Duration
}

// InteractionSystem resolves every live enemy against turbines, projectiles,
// eaters, blocking defenders and the boundary, in that order. Phase 3.
//
// Each step may destroy the enemy; later steps then skip it. Destruction goes
// through world.State so references held by other entities unwind at once.
type InteractionSystem struct {
	p       InteractionParams
	state   *world.State
	timers  *timer.Scheduler
	bus     *event.Bus
	referee Referee
	log     *zap.Logger
}

func NewInteractionSystem(p InteractionParams, state *world.State, timers *timer.Scheduler,
	bus *event.Bus, referee Referee, log *zap.Logger) *InteractionSystem {
	return &InteractionSystem{p: p, state: state, timers: timers, bus: bus, referee: referee, log: log}
}

func (s *InteractionSystem) Phase() coresys.Phase { return coresys.PhaseEnemies }

func (s *InteractionSystem) Update(_ time.Duration) {
	s.state.EachEnemy(s.resolve)
}

func (s *InteractionSystem) resolve(e *world.Enemy) {
	if s.turbineStep(e) {
		return
	}
	if s.projectileStep(e) {
		return
	}
	if s.eaterStep(e) {
		return
	}
	s.blockStep(e)
	s.boundaryStep(e)
}

func overlaps(ax, ay, ar, bx, by, br float64) bool {
	return math.Hypot(ax-bx, ay-by) <= ar+br
}

// ==================== Turbines ====================

// turbineStep reports whether e was destroyed.
func (s *InteractionSystem) turbineStep(e *world.Enemy) bool {
	destroyed := false
	s.state.EachTurbine(func(t *world.Turbine) {
		if destroyed || t.Lane != e.Lane || !overlaps(e.X, e.Y, e.Radius, t.X, t.Y, t.Radius) {
			return
		}
		if !t.Used {
			s.trigger(t, e)
			return
		}
		destroyed = s.state.DestroyEnemy(e.ID, event.CauseTurbine)
	})
	return destroyed
}

// trigger flips t to used and arms its lane sweep. A turbine triggers once.
func (s *InteractionSystem) trigger(t *world.Turbine, by *world.Enemy) {
	t.Used = true
	delay := s.p.SweepDelay + time.Duration(t.Lane)*s.p.LaneStagger
	id := t.ID
	t.Sweep = s.timers.ScheduleOnce(delay, func() { s.sweep(id) })

	s.log.Info("turbine triggered",
		zap.Int("lane", t.Lane),
		zap.Uint64("enemy", uint64(by.ID)),
		zap.Duration("sweep_in", delay),
	)
	event.Emit(s.bus, event.TurbineTriggered{
		EntityID:  t.ID,
		Lane:      t.Lane,
		TriggerBy: by.ID,
		At:        s.timers.Now(),
	})
}

// sweep clears every enemy and projectile within the turbine's row, then
// retires the turbine once its clearing effect has played out.
func (s *InteractionSystem) sweep(id ecs.EntityID) {
	t, ok := s.state.Turbine(id)
	if !ok {
		return
	}
	t.Sweep = 0
	enemies, shots := 0, 0
	s.state.EachEnemy(func(e *world.Enemy) {
		if math.Abs(e.Y-t.Y) <= s.p.RowTolerance && s.state.DestroyEnemy(e.ID, event.CauseTurbine) {
			enemies++
		}
	})
	s.state.EachProjectile(func(p *world.Projectile) {
		if math.Abs(p.Y-t.Y) <= s.p.RowTolerance && s.state.DestroyProjectile(p.ID) {
			shots++
		}
	})
	s.log.Info("turbine swept lane",
		zap.Int("lane", t.Lane),
		zap.Int("enemies", enemies),
		zap.Int("projectiles", shots),
	)
	event.Emit(s.bus, event.TurbineSwept{
		EntityID: t.ID,
		Lane:     t.Lane,
		Enemies:  enemies,
		Shots:    shots,
		At:       s.timers.Now(),
	})
	s.timers.ScheduleOnce(s.p.ClearDuration, func() { s.state.DestroyTurbine(id) })
}

// ==================== Projectiles ====================

func (s *InteractionSystem) projectileStep(e *world.Enemy) bool {
	destroyed := false
	s.state.EachProjectile(func(p *world.Projectile) {
		if destroyed || !overlaps(e.X, e.Y, e.Radius, p.X, p.Y, p.Radius) {
			return
		}
		s.state.DestroyProjectile(p.ID)
		if p.Damage > 0 {
			e.Health -= p.Damage
		}
		if e.Health <= 0 {
			destroyed = s.state.DestroyEnemy(e.ID, event.CauseProjectile)
		}
	})
	return destroyed
}

// ==================== Eaters ====================

// eaterStep never touches an enemy that is consuming a live defender.
func (s *InteractionSystem) eaterStep(e *world.Enemy) bool {
	if !e.Consuming.IsZero() {
		if _, ok := s.state.Defender(e.Consuming); ok {
			return false
		}
	}
	s.releaseStalePause(e)

	now := s.timers.Now()
	destroyed := false
	s.state.EachDefender(func(d *world.Defender) {
		if destroyed || d.Eater == nil || d.Lane() != e.Lane ||
			!overlaps(e.X, e.Y, e.Radius, d.X, d.Y, d.Radius) {
			return
		}
		if now >= d.Eater.NextReady {
			d.Eater.NextReady = now + d.Eater.Cooldown
			s.log.Debug("eater consumed enemy",
				zap.Uint64("eater", uint64(d.ID)),
				zap.Uint64("enemy", uint64(e.ID)),
			)
			destroyed = s.state.DestroyEnemy(e.ID, event.CauseEater)
			return
		}
		if e.PausedBy.IsZero() {
			e.PausedBy = d.ID
			e.VX = 0
		}
	})
	return destroyed
}

// releaseStalePause lets e move again once its pausing eater is gone or no
// longer overlaps it.
func (s *InteractionSystem) releaseStalePause(e *world.Enemy) {
	if e.PausedBy.IsZero() {
		return
	}
	d, ok := s.state.Defender(e.PausedBy)
	if ok && overlaps(e.X, e.Y, e.Radius, d.X, d.Y, d.Radius) {
		return
	}
	e.PausedBy = 0
	s.state.Resume(e)
}

// ==================== Blocking defenders ====================

func (s *InteractionSystem) blockStep(e *world.Enemy) {
	if !e.Consuming.IsZero() {
		if _, ok := s.state.Defender(e.Consuming); ok {
			return
		}
		e.Consuming = 0
		s.state.Resume(e)
	}
	s.state.EachDefender(func(d *world.Defender) {
		if !e.Consuming.IsZero() || !d.Destructible || d.BeingConsumed || d.Lane() != e.Lane ||
			!overlaps(e.X, e.Y, e.Radius, d.X, d.Y, d.Radius) {
			return
		}
		s.startConsumption(e, d)
	})
}

func (s *InteractionSystem) startConsumption(e *world.Enemy, d *world.Defender) {
	e.Consuming = d.ID
	e.VX = 0
	d.BeingConsumed = true
	d.ConsumedBy = e.ID
	if !s.timers.Pending(d.DestroyTimer) {
		id := d.ID
		d.DestroyTimer = s.timers.ScheduleOnce(s.p.ConsumeDelay, func() { s.finishConsumption(id) })
	}
	s.log.Debug("consumption started",
		zap.Uint64("enemy", uint64(e.ID)),
		zap.Uint64("defender", uint64(d.ID)),
	)
}

// finishConsumption destroys the defender if it is still being consumed.
// world.State resumes the consumer unless an eater still holds it.
func (s *InteractionSystem) finishConsumption(id ecs.EntityID) {
	d, ok := s.state.Defender(id)
	if !ok || !d.BeingConsumed {
		return
	}
	s.log.Debug("defender consumed",
		zap.Uint64("defender", uint64(id)),
		zap.Uint64("enemy", uint64(d.ConsumedBy)),
	)
	s.state.DestroyDefender(id, event.CauseConsumed)
}

// ==================== Boundary ====================

func (s *InteractionSystem) boundaryStep(e *world.Enemy) {
	if e.X >= s.p.BoundaryX {
		return
	}
	s.log.Info("enemy crossed boundary",
		zap.Uint64("enemy", uint64(e.ID)),
		zap.Int("lane", e.Lane),
		zap.Float64("x", e.X),
	)
	s.referee.DeclareDefeat()
	s.state.DestroyEnemy(e.ID, event.CauseBoundary)
}
