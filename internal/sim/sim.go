// Package sim assembles the lane simulation: one explicit context object
// owning the clock, registry, economy and systems of a single run.
package sim

import (
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"github.com/windlane/lanes/internal/config"
	"github.com/windlane/lanes/internal/core/ecs"
	"github.com/windlane/lanes/internal/core/event"
	coresys "github.com/windlane/lanes/internal/core/system"
	"github.com/windlane/lanes/internal/core/timer"
	"github.com/windlane/lanes/internal/data"
	"github.com/windlane/lanes/internal/economy"
	"github.com/windlane/lanes/internal/grid"
	"github.com/windlane/lanes/internal/placement"
	"github.com/windlane/lanes/internal/progression"
	"github.com/windlane/lanes/internal/spawn"
	"github.com/windlane/lanes/internal/system"
	"github.com/windlane/lanes/internal/world"
	"go.uber.org/zap"
)

var (
	ErrGameOver     = errors.New("sim: game over")
	ErrUnknownEnemy = errors.New("sim: unknown enemy type")
	ErrBadLane      = errors.New("sim: no such lane")
)

type Option func(*Simulation)

// WithLogger sets the base logger. Every line also carries the run id.
func WithLogger(log *zap.Logger) Option {
	return func(s *Simulation) { s.log = log }
}

// WithSpawnPicker replaces the weighted spawn choice. When the picker fails
// the weighted choice is used for that spawn.
func WithSpawnPicker(p spawn.Picker) Option {
	return func(s *Simulation) { s.picker = p }
}

// Simulation is not safe for concurrent use. Tick, PlaceDefender and
// SpawnEnemy must be called from one goroutine.
type Simulation struct {
	RunID uuid.UUID

	cfg       *config.Config
	enemies   *data.EnemyTable
	defenders *data.DefenderTable
	grid      *grid.Grid

	timers   *timer.Scheduler
	bus      *event.Bus
	state    *world.State
	econ     *economy.Economy
	progress *progression.Controller
	placer   *placement.Placer
	runner   *coresys.Runner

	rng        *rand.Rand
	picker     spawn.Picker
	candidates []spawn.Candidate
	log        *zap.Logger
}

// tickPhases run in order; a terminal outcome stops the remaining ones.
var tickPhases = []coresys.Phase{
	coresys.PhaseDispatch,
	coresys.PhaseTimers,
	coresys.PhaseMovement,
	coresys.PhaseEnemies,
	coresys.PhaseDefenders,
	coresys.PhaseProjectiles,
}

func New(cfg *config.Config, enemies *data.EnemyTable, defenders *data.DefenderTable, opts ...Option) (*Simulation, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("sim config: %w", err)
	}
	gc := cfg.Grid
	g, err := grid.New(gc.LaneY, gc.LaneHeight, gc.OriginX, gc.CellWidth, gc.Columns)
	if err != nil {
		return nil, fmt.Errorf("sim grid: %w", err)
	}

	s := &Simulation{
		RunID:     uuid.New(),
		cfg:       cfg,
		enemies:   enemies,
		defenders: defenders,
		grid:      g,
		picker:    spawn.Weighted{},
		log:       zap.NewNop(),
	}
	for _, o := range opts {
		o(s)
	}
	s.log = s.log.With(zap.String("run", s.RunID.String()))

	seed := cfg.Simulation.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	s.rng = rand.New(rand.NewSource(seed))

	s.timers = timer.NewScheduler()
	s.bus = event.NewBus()
	s.state = world.NewState(s.timers, s.bus, s.log)
	s.econ = economy.New(cfg.Economy.StartBalance, s.timers, s.bus, s.log)

	pc := cfg.Progression
	s.progress = progression.New(progression.Params{
		SpawnInterval:    pc.SpawnInterval,
		SpawnFactor:      pc.SpawnFactor,
		SpawnPeriod:      pc.SpawnPeriod,
		MinSpawnInterval: pc.MinSpawnInterval,
		SpeedFactor:      pc.SpeedFactor,
		SpeedPeriod:      pc.SpeedPeriod,
		VictoryAfter:     cfg.Simulation.VictoryAfter,
	}, s.timers, s.bus, s.log)

	s.placer = placement.New(placement.Params{
		MenuBand:  gc.MenuBand,
		Tolerance: gc.Tolerance,
		Radius:    cfg.Combat.DefenderRadius,
	}, g, defenders, s.state, s.econ, s.timers, s.bus, s.rng, s.log)

	s.candidates = spawnCandidates(enemies)
	s.runner = s.buildRunner()
	s.placeTurbines()

	s.econ.StartAmbient(cfg.Economy.AmbientInterval, cfg.Economy.AmbientIncome)
	s.progress.Start(s.spawnNext, s.rampSpeed)

	s.log.Info("simulation ready",
		zap.Int64("seed", seed),
		zap.Int("lanes", g.Lanes()),
		zap.Int("enemy_types", enemies.Count()),
		zap.Int("defender_types", defenders.Count()),
	)
	return s, nil
}

func (s *Simulation) buildRunner() *coresys.Runner {
	cfg := s.cfg
	r := coresys.NewRunner()
	r.Register(system.NewEventDispatchSystem(s.bus))
	r.Register(system.NewTimerSystem(s.timers))
	r.Register(system.NewMovementSystem(s.state))
	r.Register(system.NewInteractionSystem(system.InteractionParams{
		BoundaryX:     cfg.Simulation.BoundaryX,
		ConsumeDelay:  cfg.Combat.ConsumeDelay,
		RowTolerance:  cfg.Turbine.RowTolerance,
		SweepDelay:    cfg.Turbine.SweepDelay,
		LaneStagger:   cfg.Turbine.LaneStagger,
		ClearDuration: cfg.Turbine.ClearDuration,
	}, s.state, s.timers, s.bus, s.progress, s.log))
	r.Register(system.NewDefenderSystem(system.FireParams{
		Width:            cfg.Simulation.Width,
		ProjectileRadius: cfg.Combat.ProjectileRadius,
		Lifespan:         cfg.Combat.ProjectileLifespan,
	}, s.state, s.timers, s.rng))
	r.Register(system.NewProjectileSystem(cfg.Simulation.Width, cfg.Simulation.Height, s.state, s.timers))
	r.Register(system.NewCleanupSystem(s.state))
	return r
}

func (s *Simulation) placeTurbines() {
	for lane := 0; lane < s.grid.Lanes(); lane++ {
		s.state.AddTurbine(world.Turbine{
			Lane:   lane,
			X:      s.cfg.Turbine.X,
			Y:      s.grid.LaneY(lane),
			Radius: s.cfg.Turbine.Radius,
		})
	}
}

// spawnCandidates lists enemies with a positive weight, or all of them when
// none has one.
func spawnCandidates(t *data.EnemyTable) []spawn.Candidate {
	var out []spawn.Candidate
	for _, e := range t.All() {
		if e.Weight > 0 {
			out = append(out, spawn.Candidate{ID: e.ID, Weight: e.Weight})
		}
	}
	if len(out) > 0 {
		return out
	}
	for _, e := range t.All() {
		out = append(out, spawn.Candidate{ID: e.ID, Weight: 1})
	}
	return out
}

// Tick advances the run by dt. After the run ends only pending events are
// still delivered.
func (s *Simulation) Tick(dt time.Duration) {
	if dt < 0 {
		dt = 0
	}
	if s.progress.Outcome() != progression.None {
		s.runner.TickPhase(coresys.PhaseDispatch, 0)
		return
	}
	for _, ph := range tickPhases {
		s.runner.TickPhase(ph, dt)
		if s.progress.Outcome() != progression.None {
			break
		}
	}
	s.runner.TickPhase(coresys.PhaseCleanup, dt)
}

// PlaceDefender places a defender of kind under the pointer at (x, y).
// Errors wrap placement.ErrOutOfBounds, ErrOccupied, ErrUnaffordable,
// ErrUnknownDefender, or ErrGameOver.
func (s *Simulation) PlaceDefender(kind string, x, y float64) (ecs.EntityID, error) {
	if s.progress.Outcome() != progression.None {
		return 0, ErrGameOver
	}
	d, err := s.placer.Place(kind, x, y)
	if err != nil {
		return 0, err
	}
	return d.ID, nil
}

// SpawnEnemy puts an enemy of typeID into lane at x. Its speed includes
// every speed ramp applied so far.
func (s *Simulation) SpawnEnemy(typeID string, lane int, x float64) (ecs.EntityID, error) {
	if s.progress.Outcome() != progression.None {
		return 0, ErrGameOver
	}
	tmpl := s.enemies.Get(typeID)
	if tmpl == nil {
		return 0, fmt.Errorf("%w %q", ErrUnknownEnemy, typeID)
	}
	if lane < 0 || lane >= s.grid.Lanes() {
		return 0, fmt.Errorf("%w: %d", ErrBadLane, lane)
	}
	e := s.state.AddEnemy(world.Enemy{
		TypeID:    tmpl.ID,
		Lane:      lane,
		X:         x,
		Y:         s.grid.LaneY(lane),
		BaseSpeed: tmpl.Speed * s.progress.SpeedMultiplier(),
		Radius:    s.cfg.Combat.EnemyRadius * tmpl.Scale,
		Health:    tmpl.Health,
		Scale:     tmpl.Scale,
	})
	s.log.Debug("enemy spawned",
		zap.String("type", tmpl.ID),
		zap.Int("lane", lane),
		zap.Float64("speed", e.BaseSpeed),
	)
	return e.ID, nil
}

func (s *Simulation) spawnNext() {
	req := spawn.Request{
		Elapsed:  s.timers.Now(),
		Lanes:    s.grid.Lanes(),
		Types:    s.candidates,
		Roll:     s.rng.Float64(),
		LaneRoll: s.rng.Float64(),
	}
	choice, err := s.picker.Pick(req)
	if err != nil {
		s.log.Warn("spawn picker failed, using weighted choice", zap.Error(err))
		if choice, err = (spawn.Weighted{}).Pick(req); err != nil {
			s.log.Error("no spawn candidates", zap.Error(err))
			return
		}
	}
	if _, err := s.SpawnEnemy(choice.TypeID, choice.Lane, s.cfg.Simulation.SpawnX); err != nil {
		s.log.Warn("spawn rejected", zap.Error(err))
	}
}

// rampSpeed raises every enemy's baseline. Only advancing enemies change
// velocity now; held ones pick up the new baseline when they resume.
func (s *Simulation) rampSpeed(factor float64) {
	s.state.EachEnemy(func(e *world.Enemy) {
		e.BaseSpeed *= factor
		if e.State() == world.Advancing {
			e.VX = -e.BaseSpeed
		}
	})
}

// Events returns the bus the run publishes on. Events emitted during one
// tick are delivered at the start of the next.
func (s *Simulation) Events() *event.Bus { return s.bus }

func (s *Simulation) Balance() int                       { return s.econ.Balance() }
func (s *Simulation) Elapsed() time.Duration             { return s.timers.Now() }
func (s *Simulation) Outcome() progression.Outcome       { return s.progress.Outcome() }
func (s *Simulation) SpawnInterval() time.Duration       { return s.progress.SpawnInterval() }
func (s *Simulation) Grid() *grid.Grid                   { return s.grid }
func (s *Simulation) DefenderTable() *data.DefenderTable { return s.defenders }
