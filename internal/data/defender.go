package data

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// DefenderKind selects the behaviour variant of a defender.
type DefenderKind string

const (
	KindShooter DefenderKind = "shooter" // straight-line lane shooter, melee-blockable
	KindEater   DefenderKind = "eater"   // destroys or pauses enemies on a cooldown
	KindIncome  DefenderKind = "income"  // pays currency on its own interval
	KindRanged  DefenderKind = "ranged"  // aims at the nearest enemy within range
)

func (k DefenderKind) Valid() bool {
	switch k {
	case KindShooter, KindEater, KindIncome, KindRanged:
		return true
	}
	return false
}

// DefenderTemplate is one entry of the defender catalog. Only the fields of
// the template's Kind are read.
type DefenderTemplate struct {
	ID   string       `yaml:"id"`
	Name string       `yaml:"name"`
	Kind DefenderKind `yaml:"kind"`
	Cost int          `yaml:"cost"`
	// Destructible marks the defender as a blocking target enemies halt at
	// and consume. Unset defaults to true for shooters, false otherwise.
	Destructible *bool `yaml:"destructible,omitempty"`

	// shooter / ranged
	Damage          int           `yaml:"damage"`
	FireInterval    time.Duration `yaml:"fire_interval"`
	FirstFireMin    time.Duration `yaml:"first_fire_min"`
	FirstFireMax    time.Duration `yaml:"first_fire_max"`
	// Lane shooters redraw each wait from [refire_min, refire_max] when
	// refire_max is set, otherwise fire_interval applies.
	RefireMin       time.Duration `yaml:"refire_min"`
	RefireMax       time.Duration `yaml:"refire_max"`
	ProjectileSpeed float64       `yaml:"projectile_speed"`
	Range           float64       `yaml:"range"` // ranged only, pixels

	// eater
	EatCooldown time.Duration `yaml:"eat_cooldown"`

	// income
	Payout         int           `yaml:"payout"`
	PayoutInterval time.Duration `yaml:"payout_interval"`
}

// IsDestructible resolves the destructible flag with its per-kind default.
func (d *DefenderTemplate) IsDestructible() bool {
	if d.Destructible != nil {
		return *d.Destructible
	}
	return d.Kind == KindShooter
}

func (d *DefenderTemplate) validate() error {
	if !d.Kind.Valid() {
		return fmt.Errorf("unknown kind %q", d.Kind)
	}
	if d.Cost < 0 {
		return fmt.Errorf("negative cost %d", d.Cost)
	}
	switch d.Kind {
	case KindShooter, KindRanged:
		if d.Damage < 0 {
			return fmt.Errorf("negative damage %d", d.Damage)
		}
		if d.FireInterval <= 0 {
			return fmt.Errorf("fire_interval must be positive")
		}
		if d.ProjectileSpeed <= 0 {
			return fmt.Errorf("projectile_speed must be positive")
		}
		if d.FirstFireMin < 0 || d.FirstFireMax < d.FirstFireMin {
			return fmt.Errorf("first fire window [%s, %s] is invalid", d.FirstFireMin, d.FirstFireMax)
		}
		if d.RefireMin < 0 || d.RefireMax < d.RefireMin {
			return fmt.Errorf("refire window [%s, %s] is invalid", d.RefireMin, d.RefireMax)
		}
		if d.Kind == KindRanged && d.Range <= 0 {
			return fmt.Errorf("range must be positive")
		}
	case KindEater:
		if d.EatCooldown <= 0 {
			return fmt.Errorf("eat_cooldown must be positive")
		}
	case KindIncome:
		if d.Payout <= 0 {
			return fmt.Errorf("payout must be positive")
		}
		if d.PayoutInterval <= 0 {
			return fmt.Errorf("payout_interval must be positive")
		}
	}
	return nil
}

type defenderListFile struct {
	Defenders []DefenderTemplate `yaml:"defenders"`
}

// DefenderTable holds defender templates keyed by id, remembering file order.
type DefenderTable struct {
	byID  map[string]*DefenderTemplate
	order []*DefenderTemplate
}

// NewDefenderTable validates templates and indexes them.
func NewDefenderTable(list []DefenderTemplate) (*DefenderTable, error) {
	if len(list) == 0 {
		return nil, fmt.Errorf("defender catalog is empty")
	}
	t := &DefenderTable{
		byID:  make(map[string]*DefenderTemplate, len(list)),
		order: make([]*DefenderTemplate, 0, len(list)),
	}
	for i := range list {
		tmpl := list[i]
		if tmpl.ID == "" {
			return nil, fmt.Errorf("defender #%d: missing id", i)
		}
		if _, dup := t.byID[tmpl.ID]; dup {
			return nil, fmt.Errorf("defender %q: duplicate id", tmpl.ID)
		}
		if err := tmpl.validate(); err != nil {
			return nil, fmt.Errorf("defender %q: %w", tmpl.ID, err)
		}
		if tmpl.Name == "" {
			tmpl.Name = tmpl.ID
		}
		t.byID[tmpl.ID] = &tmpl
		t.order = append(t.order, &tmpl)
	}
	return t, nil
}

// Get returns the template for id, or nil if unknown.
func (t *DefenderTable) Get(id string) *DefenderTemplate {
	return t.byID[id]
}

// All returns templates in catalog order.
func (t *DefenderTable) All() []*DefenderTemplate {
	return t.order
}

// Count returns the number of templates.
func (t *DefenderTable) Count() int {
	return len(t.order)
}

// LoadDefenderTable loads the defender catalog from a YAML file.
func LoadDefenderTable(path string) (*DefenderTable, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read defender_list: %w", err)
	}
	var f defenderListFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse defender_list: %w", err)
	}
	t, err := NewDefenderTable(f.Defenders)
	if err != nil {
		return nil, fmt.Errorf("defender_list %s: %w", path, err)
	}
	return t, nil
}
