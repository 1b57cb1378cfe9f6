package placement

import (
	"errors"
	"fmt"
	"math"
	"math/rand"
	"time"

	"github.com/windlane/lanes/internal/core/event"
	"github.com/windlane/lanes/internal/core/timer"
	"github.com/windlane/lanes/internal/data"
	"github.com/windlane/lanes/internal/economy"
	"github.com/windlane/lanes/internal/grid"
	"github.com/windlane/lanes/internal/world"
	"go.uber.org/zap"
)

var (
	ErrOutOfBounds     = errors.New("placement: out of bounds")
	ErrOccupied        = errors.New("placement: cell occupied")
	ErrUnaffordable    = errors.New("placement: not enough currency")
	ErrUnknownDefender = errors.New("placement: unknown defender")
)

type Params struct {
	MenuBand  float64 // pointer y below this is the menu, not the field
	Tolerance float64 // another defender this close to a cell centre occupies it
	Radius    float64 // hit radius given to new defenders
}

// Placer validates and performs defender placement. A rejected placement
// leaves balance and registry untouched.
type Placer struct {
	p         Params
	grid      *grid.Grid
	defenders *data.DefenderTable
	state     *world.State
	econ      *economy.Economy
	timers    *timer.Scheduler
	bus       *event.Bus
	rng       *rand.Rand
	log       *zap.Logger
}

func New(p Params, g *grid.Grid, defenders *data.DefenderTable, state *world.State,
	econ *economy.Economy, timers *timer.Scheduler, bus *event.Bus, rng *rand.Rand, log *zap.Logger) *Placer {
	return &Placer{
		p:         p,
		grid:      g,
		defenders: defenders,
		state:     state,
		econ:      econ,
		timers:    timers,
		bus:       bus,
		rng:       rng,
		log:       log,
	}
}

// Place puts a defender of kind at the cell under (x, y).
func (pl *Placer) Place(kind string, x, y float64) (*world.Defender, error) {
	tmpl := pl.defenders.Get(kind)
	if tmpl == nil {
		return nil, fmt.Errorf("%w %q", ErrUnknownDefender, kind)
	}
	if y < pl.p.MenuBand {
		return nil, fmt.Errorf("place %s at (%.0f, %.0f): %w", kind, x, y, ErrOutOfBounds)
	}
	cell, ok := pl.grid.Snap(x, y)
	if !ok {
		return nil, fmt.Errorf("place %s at (%.0f, %.0f): %w", kind, x, y, ErrOutOfBounds)
	}
	if pl.occupied(cell) {
		return nil, fmt.Errorf("place %s in lane %d column %d: %w", kind, cell.Lane, cell.Column, ErrOccupied)
	}
	if !pl.econ.TryDebit(tmpl.Cost) {
		return nil, fmt.Errorf("place %s (cost %d, balance %d): %w", kind, tmpl.Cost, pl.econ.Balance(), ErrUnaffordable)
	}

	d := pl.state.AddDefender(pl.build(tmpl, cell))
	pl.arm(d, tmpl)

	pl.log.Debug("defender placed",
		zap.String("kind", kind),
		zap.Int("lane", cell.Lane),
		zap.Int("column", cell.Column),
		zap.Int("balance", pl.econ.Balance()),
	)
	event.Emit(pl.bus, event.DefenderPlaced{
		EntityID: d.ID,
		TypeID:   tmpl.ID,
		Lane:     cell.Lane,
		Column:   cell.Column,
		Cost:     tmpl.Cost,
		At:       pl.timers.Now(),
	})
	return d, nil
}

func (pl *Placer) occupied(c grid.Cell) bool {
	for _, d := range pl.state.DefendersNear(c) {
		if math.Hypot(d.X-c.X, d.Y-c.Y) <= pl.p.Tolerance {
			return true
		}
	}
	return false
}

func (pl *Placer) build(tmpl *data.DefenderTemplate, c grid.Cell) world.Defender {
	d := world.Defender{
		TypeID:       tmpl.ID,
		Kind:         tmpl.Kind,
		Cell:         c,
		X:            c.X,
		Y:            c.Y,
		Radius:       pl.p.Radius,
		Cost:         tmpl.Cost,
		Destructible: tmpl.IsDestructible(),
	}
	now := pl.timers.Now()
	switch tmpl.Kind {
	case data.KindShooter:
		d.Shooter = &world.ShooterState{
			NextFire:        now + pl.firstFire(tmpl),
			Interval:        tmpl.FireInterval,
			RefireMin:       tmpl.RefireMin,
			RefireMax:       tmpl.RefireMax,
			Damage:          tmpl.Damage,
			ProjectileSpeed: tmpl.ProjectileSpeed,
		}
	case data.KindRanged:
		d.Ranged = &world.RangedState{
			NextFire:        now + pl.firstFire(tmpl),
			Interval:        tmpl.FireInterval,
			Damage:          tmpl.Damage,
			ProjectileSpeed: tmpl.ProjectileSpeed,
			Range:           tmpl.Range,
		}
	case data.KindEater:
		d.Eater = &world.EaterState{NextReady: now, Cooldown: tmpl.EatCooldown}
	case data.KindIncome:
		d.Income = &world.IncomeState{Payout: tmpl.Payout, Interval: tmpl.PayoutInterval}
	}
	return d
}

// arm starts the timers a defender needs once it has an id.
func (pl *Placer) arm(d *world.Defender, tmpl *data.DefenderTemplate) {
	if d.Income != nil {
		d.Income.Timer = pl.econ.StartGenerator(d.ID, tmpl.PayoutInterval, tmpl.Payout)
	}
}

// firstFire draws the delay before a new shooter's first shot.
func (pl *Placer) firstFire(tmpl *data.DefenderTemplate) time.Duration {
	span := tmpl.FirstFireMax - tmpl.FirstFireMin
	if span <= 0 {
		return tmpl.FirstFireMin
	}
	return tmpl.FirstFireMin + time.Duration(pl.rng.Int63n(int64(span)+1))
}
