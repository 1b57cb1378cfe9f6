package config

import (
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
)

type Config struct {
	Simulation  SimulationConfig  `toml:"simulation"`
	Grid        GridConfig        `toml:"grid"`
	Economy     EconomyConfig     `toml:"economy"`
	Progression ProgressionConfig `toml:"progression"`
	Turbine     TurbineConfig     `toml:"turbine"`
	Combat      CombatConfig      `toml:"combat"`
	Data        DataConfig        `toml:"data"`
	Logging     LoggingConfig     `toml:"logging"`
	Opening     []Placement       `toml:"opening"`
}

type SimulationConfig struct {
	TickRate     time.Duration `toml:"tick_rate"`
	Realtime     bool          `toml:"realtime"` // false = run ticks back to back
	Seed         int64         `toml:"seed"`     // 0 = seed from clock
	VictoryAfter time.Duration `toml:"victory_after"`
	BoundaryX    float64       `toml:"boundary_x"` // crossing left of this is defeat
	SpawnX       float64       `toml:"spawn_x"`
	Width        float64       `toml:"width"`
	Height       float64       `toml:"height"`
}

type GridConfig struct {
	LaneY      []float64 `toml:"lane_y"`
	LaneHeight float64   `toml:"lane_height"`
	OriginX    float64   `toml:"origin_x"`
	CellWidth  float64   `toml:"cell_width"`
	Columns    int       `toml:"columns"`
	MenuBand   float64   `toml:"menu_band"` // pointer y above this is the menu
	Tolerance  float64   `toml:"tolerance"` // occupancy radius around a cell centre
}

type EconomyConfig struct {
	StartBalance    int           `toml:"start_balance"`
	AmbientIncome   int           `toml:"ambient_income"`
	AmbientInterval time.Duration `toml:"ambient_interval"`
}

type ProgressionConfig struct {
	SpawnInterval    time.Duration `toml:"spawn_interval"`
	SpawnFactor      float64       `toml:"spawn_factor"` // < 1
	SpawnPeriod      time.Duration `toml:"spawn_period"`
	MinSpawnInterval time.Duration `toml:"min_spawn_interval"`
	SpeedFactor      float64       `toml:"speed_factor"` // > 1
	SpeedPeriod      time.Duration `toml:"speed_period"`
}

type TurbineConfig struct {
	X             float64       `toml:"x"`
	Radius        float64       `toml:"radius"`
	RowTolerance  float64       `toml:"row_tolerance"`
	SweepDelay    time.Duration `toml:"sweep_delay"`
	LaneStagger   time.Duration `toml:"lane_stagger"`
	ClearDuration time.Duration `toml:"clear_duration"`
}

type CombatConfig struct {
	EnemyRadius        float64       `toml:"enemy_radius"` // scaled by the enemy's catalog scale
	DefenderRadius     float64       `toml:"defender_radius"`
	ProjectileRadius   float64       `toml:"projectile_radius"`
	ConsumeDelay       time.Duration `toml:"consume_delay"`
	ProjectileLifespan time.Duration `toml:"projectile_lifespan"` // 0 = until off field
}

type DataConfig struct {
	Enemies   string `toml:"enemies"`
	Defenders string `toml:"defenders"`
	Scripts   string `toml:"scripts"`
}

type LoggingConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"` // "json" or "console"
}

// Placement is a scripted placement attempt replayed by the headless runner.
type Placement struct {
	At   time.Duration `toml:"at"`
	Kind string        `toml:"kind"`
	X    float64       `toml:"x"`
	Y    float64       `toml:"y"`
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	cfg := Default()
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate rejects values the simulation cannot run with.
func (c *Config) Validate() error {
	s := c.Simulation
	if s.TickRate <= 0 {
		return fmt.Errorf("simulation.tick_rate must be positive")
	}
	if s.VictoryAfter <= 0 {
		return fmt.Errorf("simulation.victory_after must be positive")
	}
	if s.Width <= 0 || s.Height <= 0 {
		return fmt.Errorf("simulation width/height must be positive")
	}
	if s.SpawnX <= s.BoundaryX {
		return fmt.Errorf("simulation.spawn_x %.1f must be right of boundary_x %.1f", s.SpawnX, s.BoundaryX)
	}
	if c.Economy.StartBalance < 0 {
		return fmt.Errorf("economy.start_balance must not be negative")
	}
	if c.Economy.AmbientIncome < 0 {
		return fmt.Errorf("economy.ambient_income must not be negative")
	}
	p := c.Progression
	if p.SpawnInterval <= 0 || p.MinSpawnInterval <= 0 {
		return fmt.Errorf("progression spawn intervals must be positive")
	}
	if p.SpawnFactor <= 0 || p.SpawnFactor >= 1 {
		return fmt.Errorf("progression.spawn_factor %.3f must be in (0, 1)", p.SpawnFactor)
	}
	if p.SpeedFactor <= 1 {
		return fmt.Errorf("progression.speed_factor %.3f must be greater than 1", p.SpeedFactor)
	}
	if c.Combat.ConsumeDelay <= 0 {
		return fmt.Errorf("combat.consume_delay must be positive")
	}
	if c.Combat.EnemyRadius <= 0 || c.Combat.DefenderRadius <= 0 || c.Combat.ProjectileRadius <= 0 {
		return fmt.Errorf("combat radii must be positive")
	}
	g := c.Grid
	if len(g.LaneY) == 0 {
		return fmt.Errorf("grid.lane_y needs at least one lane")
	}
	if g.Tolerance < 0 || g.Tolerance >= g.CellWidth || g.Tolerance >= g.LaneHeight {
		return fmt.Errorf("grid.tolerance %.1f must be below cell width and lane height", g.Tolerance)
	}
	return nil
}

// Default returns a complete five-lane configuration.
func Default() *Config {
	return &Config{
		Simulation: SimulationConfig{
			TickRate:     16 * time.Millisecond,
			Realtime:     true,
			VictoryAfter: 4 * time.Minute,
			BoundaryX:    10,
			SpawnX:       1000,
			Width:        1024,
			Height:       640,
		},
		Grid: GridConfig{
			LaneY:      []float64{150, 250, 350, 450, 550},
			LaneHeight: 100,
			OriginX:    100,
			CellWidth:  80,
			Columns:    9,
			MenuBand:   100,
			Tolerance:  20,
		},
		Economy: EconomyConfig{
			StartBalance:    150,
			AmbientIncome:   20,
			AmbientInterval: 2 * time.Second,
		},
		Progression: ProgressionConfig{
			SpawnInterval:    3 * time.Second,
			SpawnFactor:      0.95,
			SpawnPeriod:      15 * time.Second,
			MinSpawnInterval: 800 * time.Millisecond,
			SpeedFactor:      1.05,
			SpeedPeriod:      20 * time.Second,
		},
		Turbine: TurbineConfig{
			X:             40,
			Radius:        20,
			RowTolerance:  40,
			SweepDelay:    300 * time.Millisecond,
			LaneStagger:   50 * time.Millisecond,
			ClearDuration: 1500 * time.Millisecond,
		},
		Combat: CombatConfig{
			EnemyRadius:        18,
			DefenderRadius:     22,
			ProjectileRadius:   6,
			ConsumeDelay:       3 * time.Second,
			ProjectileLifespan: 5 * time.Second,
		},
		Data: DataConfig{
			Enemies:   "data/yaml/enemy_list.yaml",
			Defenders: "data/yaml/defender_list.yaml",
			Scripts:   "scripts",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}
