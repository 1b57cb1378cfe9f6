package world

import (
	"github.com/windlane/lanes/internal/core/ecs"
	"github.com/windlane/lanes/internal/core/event"
	"github.com/windlane/lanes/internal/core/timer"
	"github.com/windlane/lanes/internal/grid"
	"go.uber.org/zap"
)

// State is the entity registry: the only place entities are created or
// destroyed. Accessed only from the tick loop, no locks needed.
//
// Every destroy takes effect immediately and unwinds the cross references
// the entity took part in, so a handle read later in the same tick either
// resolves to a live entity or misses.
type State struct {
	ecs         *ecs.World
	enemies     *ecs.PtrComponentStore[Enemy]
	defenders   *ecs.PtrComponentStore[Defender]
	turbines    *ecs.PtrComponentStore[Turbine]
	projectiles *ecs.PtrComponentStore[Projectile]
	cells       *CellIndex

	timers *timer.Scheduler
	bus    *event.Bus
	log    *zap.Logger
}

func NewState(timers *timer.Scheduler, bus *event.Bus, log *zap.Logger) *State {
	s := &State{
		ecs:         ecs.NewWorld(),
		enemies:     ecs.NewPtrComponentStore[Enemy](),
		defenders:   ecs.NewPtrComponentStore[Defender](),
		turbines:    ecs.NewPtrComponentStore[Turbine](),
		projectiles: ecs.NewPtrComponentStore[Projectile](),
		cells:       NewCellIndex(),
		timers:      timers,
		bus:         bus,
		log:         log,
	}
	reg := s.ecs.Registry()
	reg.Register(s.enemies)
	reg.Register(s.defenders)
	reg.Register(s.turbines)
	reg.Register(s.projectiles)
	return s
}

// Alive reports whether id names a live entity of any kind.
func (s *State) Alive(id ecs.EntityID) bool { return s.ecs.Alive(id) }

// Recycle releases destroyed handles for reuse. Called once at tick end.
func (s *State) Recycle() { s.ecs.Recycle() }

// ---------------------------------------------------------------------------
// Spawning
// ---------------------------------------------------------------------------

// AddEnemy assigns an id to e and registers it. e.VX is set from BaseSpeed.
func (s *State) AddEnemy(e Enemy) *Enemy {
	e.ID = s.ecs.CreateEntity()
	e.VX = -e.BaseSpeed
	e.Consuming = 0
	e.PausedBy = 0
	if e.MaxHealth == 0 {
		e.MaxHealth = e.Health
	}
	s.enemies.Set(e.ID, &e)
	event.Emit(s.bus, event.EnemySpawned{EntityID: e.ID, TypeID: e.TypeID, Lane: e.Lane, At: s.timers.Now()})
	return &e
}

// AddDefender assigns an id to d and registers it.
func (s *State) AddDefender(d Defender) *Defender {
	d.ID = s.ecs.CreateEntity()
	d.BeingConsumed = false
	d.ConsumedBy = 0
	d.DestroyTimer = 0
	s.defenders.Set(d.ID, &d)
	s.cells.Add(d.ID, d.Cell)
	return &d
}

func (s *State) AddTurbine(t Turbine) *Turbine {
	t.ID = s.ecs.CreateEntity()
	s.turbines.Set(t.ID, &t)
	return &t
}

func (s *State) AddProjectile(p Projectile) *Projectile {
	p.ID = s.ecs.CreateEntity()
	s.projectiles.Set(p.ID, &p)
	event.Emit(s.bus, event.ProjectileFired{EntityID: p.ID, Source: p.Source, At: s.timers.Now()})
	return &p
}

// ---------------------------------------------------------------------------
// Lookup and iteration
// ---------------------------------------------------------------------------

func (s *State) Enemy(id ecs.EntityID) (*Enemy, bool)           { return s.enemies.Get(id) }
func (s *State) Defender(id ecs.EntityID) (*Defender, bool)     { return s.defenders.Get(id) }
func (s *State) Turbine(id ecs.EntityID) (*Turbine, bool)       { return s.turbines.Get(id) }
func (s *State) Projectile(id ecs.EntityID) (*Projectile, bool) { return s.projectiles.Get(id) }

func (s *State) EnemyCount() int      { return s.enemies.Len() }
func (s *State) DefenderCount() int   { return s.defenders.Len() }
func (s *State) TurbineCount() int    { return s.turbines.Len() }
func (s *State) ProjectileCount() int { return s.projectiles.Len() }

// DefendersNear returns the live defenders in c and its eight neighbouring
// cells, in id order.
func (s *State) DefendersNear(c grid.Cell) []*Defender {
	ids := s.cells.Nearby(c)
	out := make([]*Defender, 0, len(ids))
	for _, id := range ids {
		if d, ok := s.defenders.Get(id); ok {
			out = append(out, d)
		}
	}
	return out
}

// EachEnemy visits live enemies in spawn order. Enemies destroyed during the
// walk are skipped.
func (s *State) EachEnemy(fn func(*Enemy)) {
	s.enemies.Each(func(_ ecs.EntityID, e *Enemy) { fn(e) })
}

func (s *State) EachDefender(fn func(*Defender)) {
	s.defenders.Each(func(_ ecs.EntityID, d *Defender) { fn(d) })
}

func (s *State) EachTurbine(fn func(*Turbine)) {
	s.turbines.Each(func(_ ecs.EntityID, t *Turbine) { fn(t) })
}

func (s *State) EachProjectile(fn func(*Projectile)) {
	s.projectiles.Each(func(_ ecs.EntityID, p *Projectile) { fn(p) })
}

// ---------------------------------------------------------------------------
// Movement helpers
// ---------------------------------------------------------------------------

// Resume restores e's velocity unless something still holds it: a live
// consumed defender first, then a live pausing eater.
func (s *State) Resume(e *Enemy) {
	if !e.Consuming.IsZero() {
		if _, ok := s.defenders.Get(e.Consuming); ok {
			e.VX = 0
			return
		}
		e.Consuming = 0
	}
	if !e.PausedBy.IsZero() {
		if _, ok := s.defenders.Get(e.PausedBy); ok {
			e.VX = 0
			return
		}
		e.PausedBy = 0
	}
	e.VX = -e.BaseSpeed
}

// ---------------------------------------------------------------------------
// Destruction
// ---------------------------------------------------------------------------

// DestroyEnemy removes e from play. If it was consuming a defender, that
// defender's destruction timer is cancelled and its consumed flag cleared.
// Destroying a dead handle is a no-op.
func (s *State) DestroyEnemy(id ecs.EntityID, cause event.Cause) bool {
	e, ok := s.enemies.Get(id)
	if !ok {
		return false
	}
	if d, ok := s.defenders.Get(e.Consuming); ok && d.ConsumedBy == id {
		s.releaseDefender(d)
		s.log.Debug("consumption reversed",
			zap.Uint64("defender", uint64(d.ID)),
			zap.Uint64("enemy", uint64(id)),
		)
	}
	e.Consuming = 0
	e.PausedBy = 0
	s.ecs.Destroy(id)
	event.Emit(s.bus, event.EnemyDestroyed{
		EntityID: id,
		TypeID:   e.TypeID,
		Lane:     e.Lane,
		Cause:    cause,
		At:       s.timers.Now(),
	})
	return true
}

// releaseDefender clears consumption state on d and stops its timer.
func (s *State) releaseDefender(d *Defender) {
	s.timers.Cancel(d.DestroyTimer)
	d.DestroyTimer = 0
	d.BeingConsumed = false
	d.ConsumedBy = 0
}

// DestroyDefender removes d from play, stops its timers and lets every enemy
// it was holding move again (subject to their other holds).
func (s *State) DestroyDefender(id ecs.EntityID, cause event.Cause) bool {
	d, ok := s.defenders.Get(id)
	if !ok {
		return false
	}
	consumer := d.ConsumedBy
	s.releaseDefender(d)
	if d.Income != nil {
		s.timers.Cancel(d.Income.Timer)
		d.Income.Timer = 0
	}
	s.cells.Remove(id, d.Cell)
	s.ecs.Destroy(id)

	// Remove first so Resume below sees the defender as gone.
	if e, ok := s.enemies.Get(consumer); ok && e.Consuming == id {
		e.Consuming = 0
		s.Resume(e)
	}
	if d.Eater != nil {
		s.enemies.Each(func(_ ecs.EntityID, e *Enemy) {
			if e.PausedBy == id {
				e.PausedBy = 0
				s.Resume(e)
			}
		})
	}

	event.Emit(s.bus, event.DefenderDestroyed{
		EntityID: id,
		TypeID:   d.TypeID,
		Cause:    cause,
		At:       s.timers.Now(),
	})
	return true
}

func (s *State) DestroyTurbine(id ecs.EntityID) bool {
	t, ok := s.turbines.Get(id)
	if !ok {
		return false
	}
	s.timers.Cancel(t.Sweep)
	return s.ecs.Destroy(id)
}

func (s *State) DestroyProjectile(id ecs.EntityID) bool {
	if !s.projectiles.Has(id) {
		return false
	}
	return s.ecs.Destroy(id)
}
