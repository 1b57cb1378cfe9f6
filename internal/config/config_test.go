package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestDefaultValidates(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Fatalf("Default().Validate() = %v", err)
	}
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lanes.toml")
	body := `
[simulation]
seed = 42
victory_after = "90s"

[economy]
start_balance = 300

[grid]
lane_y = [200.0, 300.0]

[[opening]]
at = "2s"
kind = "seedling"
x = 150.0
y = 200.0
`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Simulation.Seed != 42 {
		t.Errorf("seed = %d", cfg.Simulation.Seed)
	}
	if cfg.Simulation.VictoryAfter != 90*time.Second {
		t.Errorf("victory_after = %s", cfg.Simulation.VictoryAfter)
	}
	if cfg.Economy.StartBalance != 300 {
		t.Errorf("start_balance = %d", cfg.Economy.StartBalance)
	}
	if cfg.Economy.AmbientIncome != 20 {
		t.Errorf("ambient_income default lost: %d", cfg.Economy.AmbientIncome)
	}
	if len(cfg.Grid.LaneY) != 2 {
		t.Errorf("lane_y = %v", cfg.Grid.LaneY)
	}
	if len(cfg.Opening) != 1 || cfg.Opening[0].At != 2*time.Second || cfg.Opening[0].Kind != "seedling" {
		t.Errorf("opening = %+v", cfg.Opening)
	}
}

func TestValidateRejects(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"spawn factor not shrinking", func(c *Config) { c.Progression.SpawnFactor = 1.2 }, "spawn_factor"},
		{"speed factor not growing", func(c *Config) { c.Progression.SpeedFactor = 0.9 }, "speed_factor"},
		{"negative balance", func(c *Config) { c.Economy.StartBalance = -1 }, "start_balance"},
		{"spawn left of boundary", func(c *Config) { c.Simulation.SpawnX = 5 }, "spawn_x"},
		{"no lanes", func(c *Config) { c.Grid.LaneY = nil }, "lane_y"},
		{"zero consume delay", func(c *Config) { c.Combat.ConsumeDelay = 0 }, "consume_delay"},
		{"tolerance spans cells", func(c *Config) { c.Grid.Tolerance = 80 }, "tolerance"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error %q does not mention %q", err, tt.want)
			}
		})
	}
}

func TestShippedConfigLoads(t *testing.T) {
	cfg, err := Load("../../config/lanes.toml")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Economy.AmbientInterval != 2*time.Second {
		t.Errorf("ambient interval = %v", cfg.Economy.AmbientInterval)
	}
	if len(cfg.Opening) == 0 || cfg.Opening[0].Kind == "" {
		t.Errorf("opening placements = %+v", cfg.Opening)
	}
}
