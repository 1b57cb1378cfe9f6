package progression

import (
	"math"
	"time"

	"github.com/windlane/lanes/internal/core/event"
	"github.com/windlane/lanes/internal/core/timer"
	"go.uber.org/zap"
)

// Outcome is the terminal state of a run.
type Outcome int

const (
	None Outcome = iota
	Victory
	Defeat
)

func (o Outcome) String() string {
	switch o {
	case Victory:
		return "victory"
	case Defeat:
		return "defeat"
	}
	return "none"
}

type Params struct {
	SpawnInterval    time.Duration
	SpawnFactor      float64
	SpawnPeriod      time.Duration
	MinSpawnInterval time.Duration
	SpeedFactor      float64
	SpeedPeriod      time.Duration
	VictoryAfter     time.Duration
}

// Controller owns the difficulty ramps and the win condition. Each ramp and
// the victory countdown is its own scheduler timer.
type Controller struct {
	p      Params
	timers *timer.Scheduler
	bus    *event.Bus
	log    *zap.Logger

	spawnMs    float64 // kept unrounded so repeated factors compound exactly
	speedMult  float64
	spawnTimer timer.Token
	tokens     []timer.Token

	onSpawn    func()
	applySpeed func(factor float64)
	outcome    Outcome
}

func New(p Params, timers *timer.Scheduler, bus *event.Bus, log *zap.Logger) *Controller {
	return &Controller{
		p:         p,
		timers:    timers,
		bus:       bus,
		log:       log,
		spawnMs:   float64(p.SpawnInterval) / float64(time.Millisecond),
		speedMult: 1,
	}
}

// Start arms the spawn timer, both ramps and the victory countdown.
// onSpawn runs on every spawn tick; applySpeed receives each speed step.
func (c *Controller) Start(onSpawn func(), applySpeed func(factor float64)) {
	c.onSpawn = onSpawn
	c.applySpeed = applySpeed
	c.armSpawn()
	if c.p.SpawnPeriod > 0 {
		c.tokens = append(c.tokens, c.timers.ScheduleRepeating(c.p.SpawnPeriod, c.rampSpawn))
	}
	if c.p.SpeedPeriod > 0 {
		c.tokens = append(c.tokens, c.timers.ScheduleRepeating(c.p.SpeedPeriod, c.rampSpeed))
	}
	c.tokens = append(c.tokens, c.timers.ScheduleOnce(c.p.VictoryAfter, func() {
		c.finish(Victory)
	}))
}

// armSpawn replaces the spawn timer with one running at the current interval.
// The replacement is scheduled from inside Advance, so it cannot fire in the
// same tick as the timer it replaces.
func (c *Controller) armSpawn() {
	c.timers.Cancel(c.spawnTimer)
	c.spawnTimer = c.timers.ScheduleRepeating(c.SpawnInterval(), func() {
		if c.onSpawn != nil {
			c.onSpawn()
		}
	})
}

func (c *Controller) rampSpawn() {
	next := c.spawnMs * c.p.SpawnFactor
	floor := float64(c.p.MinSpawnInterval) / float64(time.Millisecond)
	if next < floor {
		next = floor
	}
	if next == c.spawnMs {
		return
	}
	c.spawnMs = next
	c.armSpawn()
	c.log.Info("spawn interval ramped", zap.Float64("interval_ms", c.spawnMs))
}

func (c *Controller) rampSpeed() {
	c.speedMult *= c.p.SpeedFactor
	if c.applySpeed != nil {
		c.applySpeed(c.p.SpeedFactor)
	}
	c.log.Info("enemy speed ramped", zap.Float64("multiplier", c.speedMult))
}

// SpawnIntervalMs is the current spawn interval in milliseconds, unrounded.
func (c *Controller) SpawnIntervalMs() float64 { return c.spawnMs }

// SpawnInterval is the current spawn interval rounded to the nanosecond.
func (c *Controller) SpawnInterval() time.Duration {
	return time.Duration(math.Round(c.spawnMs * float64(time.Millisecond)))
}

// SpeedMultiplier is the product of every speed step so far. New enemies
// start at base speed times this.
func (c *Controller) SpeedMultiplier() float64 { return c.speedMult }

func (c *Controller) Outcome() Outcome { return c.outcome }

// DeclareDefeat ends the run unless it already ended.
func (c *Controller) DeclareDefeat() { c.finish(Defeat) }

// finish records the first terminal outcome and stops every timer the
// controller owns.
func (c *Controller) finish(o Outcome) {
	if c.outcome != None {
		return
	}
	c.outcome = o
	c.timers.Cancel(c.spawnTimer)
	for _, t := range c.tokens {
		c.timers.Cancel(t)
	}
	c.tokens = nil
	c.log.Info("game over",
		zap.Stringer("outcome", o),
		zap.Duration("elapsed", c.timers.Now()),
	)
	event.Emit(c.bus, event.GameOver{Outcome: o.String(), At: c.timers.Now()})
}
