package sim

import (
	"time"

	"github.com/windlane/lanes/internal/core/ecs"
	"github.com/windlane/lanes/internal/data"
	"github.com/windlane/lanes/internal/progression"
	"github.com/windlane/lanes/internal/world"
)

type EnemyView struct {
	ID        ecs.EntityID
	TypeID    string
	Lane      int
	X, Y      float64
	Radius    float64
	Health    int
	MaxHealth int
	Scale     float64
	State     world.EnemyState
}

type DefenderView struct {
	ID     ecs.EntityID
	TypeID string
	Kind   data.DefenderKind
	Lane   int
	Column int
	X, Y   float64
	// State is "consumed" while an enemy eats the defender, "cooldown" for an
	// eater that is not ready, otherwise "idle".
	State string
}

type TurbineView struct {
	ID   ecs.EntityID
	Lane int
	X, Y float64
	Used bool
}

type ProjectileView struct {
	ID   ecs.EntityID
	X, Y float64
}

// Snapshot is a read-only copy of the run for rendering. It shares no
// memory with the simulation.
type Snapshot struct {
	Enemies     []EnemyView
	Defenders   []DefenderView
	Turbines    []TurbineView
	Projectiles []ProjectileView
	Balance     int
	Elapsed     time.Duration
	Outcome     progression.Outcome
}

func (s *Simulation) Snapshot() Snapshot {
	now := s.timers.Now()
	snap := Snapshot{
		Enemies:     make([]EnemyView, 0, s.state.EnemyCount()),
		Defenders:   make([]DefenderView, 0, s.state.DefenderCount()),
		Turbines:    make([]TurbineView, 0, s.state.TurbineCount()),
		Projectiles: make([]ProjectileView, 0, s.state.ProjectileCount()),
		Balance:     s.econ.Balance(),
		Elapsed:     now,
		Outcome:     s.progress.Outcome(),
	}
	s.state.EachEnemy(func(e *world.Enemy) {
		snap.Enemies = append(snap.Enemies, EnemyView{
			ID:        e.ID,
			TypeID:    e.TypeID,
			Lane:      e.Lane,
			X:         e.X,
			Y:         e.Y,
			Radius:    e.Radius,
			Health:    e.Health,
			MaxHealth: e.MaxHealth,
			Scale:     e.Scale,
			State:     e.State(),
		})
	})
	s.state.EachDefender(func(d *world.Defender) {
		state := "idle"
		switch {
		case d.BeingConsumed:
			state = "consumed"
		case d.Eater != nil && now < d.Eater.NextReady:
			state = "cooldown"
		}
		snap.Defenders = append(snap.Defenders, DefenderView{
			ID:     d.ID,
			TypeID: d.TypeID,
			Kind:   d.Kind,
			Lane:   d.Lane(),
			Column: d.Cell.Column,
			X:      d.X,
			Y:      d.Y,
			State:  state,
		})
	})
	s.state.EachTurbine(func(t *world.Turbine) {
		snap.Turbines = append(snap.Turbines, TurbineView{ID: t.ID, Lane: t.Lane, X: t.X, Y: t.Y, Used: t.Used})
	})
	s.state.EachProjectile(func(p *world.Projectile) {
		snap.Projectiles = append(snap.Projectiles, ProjectileView{ID: p.ID, X: p.X, Y: p.Y})
	})
	return snap
}
