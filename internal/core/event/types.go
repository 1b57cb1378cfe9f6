package event

import (
	"time"

	"github.com/windlane/lanes/internal/core/ecs"
)

// Cause names what removed an entity from play.
type Cause string

const (
	CauseTurbine    Cause = "turbine"
	CauseProjectile Cause = "projectile"
	CauseEater      Cause = "eater"
	CauseBoundary   Cause = "boundary"
	CauseConsumed   Cause = "consumed"
)

type EnemySpawned struct {
	EntityID ecs.EntityID
	TypeID   string
	Lane     int
	At       time.Duration
}

type EnemyDestroyed struct {
	EntityID ecs.EntityID
	TypeID   string
	Lane     int
	Cause    Cause
	At       time.Duration
}

type DefenderPlaced struct {
	EntityID ecs.EntityID
	TypeID   string
	Lane     int
	Column   int
	Cost     int
	At       time.Duration
}

type DefenderDestroyed struct {
	EntityID ecs.EntityID
	TypeID   string
	Cause    Cause
	At       time.Duration
}

type TurbineTriggered struct {
	EntityID  ecs.EntityID
	Lane      int
	TriggerBy ecs.EntityID
	At        time.Duration
}

type TurbineSwept struct {
	EntityID ecs.EntityID
	Lane     int
	Enemies  int
	Shots    int
	At       time.Duration
}

type ProjectileFired struct {
	EntityID ecs.EntityID
	Source   ecs.EntityID
	At       time.Duration
}

type IncomePaid struct {
	Source  ecs.EntityID // zero for ambient income
	Amount  int
	Balance int
	At      time.Duration
}

type GameOver struct {
	Outcome string
	At      time.Duration
}
