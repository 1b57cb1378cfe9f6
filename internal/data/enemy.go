package data

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// EnemyTemplate is one entry of the pollution catalog.
type EnemyTemplate struct {
	ID     string  `yaml:"id"`
	Name   string  `yaml:"name"`
	Health int     `yaml:"health"`
	Speed  float64 `yaml:"speed"`  // pixels per second
	Scale  float64 `yaml:"scale"`  // visual and hitbox scale, 1.0 = nominal
	Weight int     `yaml:"weight"` // relative spawn weight, 0 = never picked at random
}

type enemyListFile struct {
	Enemies []EnemyTemplate `yaml:"enemies"`
}

// EnemyTable holds enemy templates keyed by id, remembering file order.
type EnemyTable struct {
	byID  map[string]*EnemyTemplate
	order []*EnemyTemplate
}

// NewEnemyTable validates templates and indexes them.
func NewEnemyTable(list []EnemyTemplate) (*EnemyTable, error) {
	if len(list) == 0 {
		return nil, fmt.Errorf("enemy catalog is empty")
	}
	t := &EnemyTable{
		byID:  make(map[string]*EnemyTemplate, len(list)),
		order: make([]*EnemyTemplate, 0, len(list)),
	}
	for i := range list {
		tmpl := list[i]
		if tmpl.ID == "" {
			return nil, fmt.Errorf("enemy #%d: missing id", i)
		}
		if _, dup := t.byID[tmpl.ID]; dup {
			return nil, fmt.Errorf("enemy %q: duplicate id", tmpl.ID)
		}
		if tmpl.Health <= 0 {
			return nil, fmt.Errorf("enemy %q: health %d must be positive", tmpl.ID, tmpl.Health)
		}
		if tmpl.Speed < 0 {
			return nil, fmt.Errorf("enemy %q: negative speed", tmpl.ID)
		}
		if tmpl.Weight < 0 {
			return nil, fmt.Errorf("enemy %q: negative weight", tmpl.ID)
		}
		if tmpl.Scale == 0 {
			tmpl.Scale = 1
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
func (t *EnemyTable) Get(id string) *EnemyTemplate {
	return t.byID[id]
}

// All returns templates in catalog order.
func (t *EnemyTable) All() []*EnemyTemplate {
	return t.order
}

// Count returns the number of templates.
func (t *EnemyTable) Count() int {
	return len(t.order)
}

// LoadEnemyTable loads the enemy catalog from a YAML file.
func LoadEnemyTable(path string) (*EnemyTable, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read enemy_list: %w", err)
	}
	var f enemyListFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse enemy_list: %w", err)
	}
	t, err := NewEnemyTable(f.Enemies)
	if err != nil {
		return nil, fmt.Errorf("enemy_list %s: %w", path, err)
	}
	return t, nil
}
