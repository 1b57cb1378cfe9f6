package world

import (
	"time"

	"github.com/windlane/lanes/internal/core/ecs"
	"github.com/windlane/lanes/internal/core/timer"
	"github.com/windlane/lanes/internal/data"
	"github.com/windlane/lanes/internal/grid"
)

// EnemyState is derived from an enemy's references, never stored.
type EnemyState int

const (
	Advancing EnemyState = iota
	BlockedByDefender
	PausedByEater
)

func (s EnemyState) String() string {
	switch s {
	case BlockedByDefender:
		return "blocked"
	case PausedByEater:
		return "paused"
	}
	return "advancing"
}

// Enemy is one pollution unit advancing right to left along a lane.
type Enemy struct {
	ID        ecs.EntityID
	TypeID    string
	Lane      int
	X, Y      float64
	VX        float64 // pixels per second, negative while advancing
	BaseSpeed float64 // magnitude restored on resume
	Radius    float64
	Health    int
	MaxHealth int
	Scale     float64

	// Consuming is the defender this enemy is eating. It wins over PausedBy
	// when deciding whether the enemy may move again.
	Consuming ecs.EntityID
	// PausedBy is the eater holding this enemy while its cooldown runs.
	PausedBy ecs.EntityID
}

func (e *Enemy) State() EnemyState {
	switch {
	case !e.Consuming.IsZero():
		return BlockedByDefender
	case !e.PausedBy.IsZero():
		return PausedByEater
	}
	return Advancing
}

// ShooterState drives a lane shooter. When RefireMax is set each shot
// draws the next wait from [RefireMin, RefireMax] instead of Interval.
type ShooterState struct {
	NextFire        time.Duration
	Interval        time.Duration
	RefireMin       time.Duration
	RefireMax       time.Duration
	Damage          int
	ProjectileSpeed float64
}

// EaterState drives a cooldown-limited eater.
type EaterState struct {
	NextReady time.Duration
	Cooldown  time.Duration
}

// IncomeState holds the payout timer of an income generator.
type IncomeState struct {
	Payout   int
	Interval time.Duration
	Timer    timer.Token
}

// RangedState drives a shooter that aims at the nearest enemy in range.
type RangedState struct {
	NextFire        time.Duration
	Interval        time.Duration
	Damage          int
	ProjectileSpeed float64
	Range           float64
}

// Defender is a tagged variant: exactly one of Shooter, Eater, Income or
// Ranged is set, matching Kind.
type Defender struct {
	ID           ecs.EntityID
	TypeID       string
	Kind         data.DefenderKind
	Cell         grid.Cell
	X, Y         float64
	Radius       float64
	Cost         int
	Destructible bool

	// Consumption bookkeeping, only used when Destructible.
	BeingConsumed bool
	ConsumedBy    ecs.EntityID
	DestroyTimer  timer.Token

	Shooter *ShooterState
	Eater   *EaterState
	Income  *IncomeState
	Ranged  *RangedState
}

func (d *Defender) Lane() int { return d.Cell.Lane }

// Turbine is the one-shot lane clearer. Used flips once and never back.
type Turbine struct {
	ID     ecs.EntityID
	Lane   int
	X, Y   float64
	Radius float64
	Used   bool
	Sweep  timer.Token
}

// Projectile flies in a straight line until it hits, expires or leaves the field.
type Projectile struct {
	ID      ecs.EntityID
	Source  ecs.EntityID
	X, Y    float64
	VX, VY  float64
	Radius  float64
	Damage  int
	Expires time.Duration // 0 = no lifespan
}
