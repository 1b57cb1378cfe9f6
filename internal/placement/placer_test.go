package placement

import (
	"errors"
	"math/rand"
	"testing"
	"time"

	"github.com/windlane/lanes/internal/core/event"
	"github.com/windlane/lanes/internal/core/timer"
	"github.com/windlane/lanes/internal/data"
	"github.com/windlane/lanes/internal/economy"
	"github.com/windlane/lanes/internal/grid"
	"github.com/windlane/lanes/internal/world"
	"go.uber.org/zap"
)

type fixture struct {
	placer *Placer
	econ   *economy.Economy
	state  *world.State
	timers *timer.Scheduler
	bus    *event.Bus
}

func newFixture(t *testing.T, balance int) *fixture {
	t.Helper()
	g, err := grid.New([]float64{150, 250, 350}, 100, 100, 80, 9)
	if err != nil {
		t.Fatalf("grid: %v", err)
	}
	defenders, err := data.NewDefenderTable([]data.DefenderTemplate{
		{ID: "seedling", Kind: data.KindShooter, Cost: 75, Damage: 1, FireInterval: time.Second,
			FirstFireMin: 100 * time.Millisecond, FirstFireMax: 500 * time.Millisecond, ProjectileSpeed: 300},
		{ID: "bog", Kind: data.KindEater, Cost: 50, EatCooldown: 5 * time.Second},
		{ID: "solar", Kind: data.KindIncome, Cost: 25, Payout: 10, PayoutInterval: 4 * time.Second},
	})
	if err != nil {
		t.Fatalf("defender table: %v", err)
	}
	log := zap.NewNop()
	ts := timer.NewScheduler()
	bus := event.NewBus()
	state := world.NewState(ts, bus, log)
	econ := economy.New(balance, ts, bus, log)
	p := New(Params{MenuBand: 100, Tolerance: 20, Radius: 22}, g, defenders, state, econ, ts, bus, rand.New(rand.NewSource(1)), log)
	return &fixture{placer: p, econ: econ, state: state, timers: ts, bus: bus}
}

func TestPlaceRejections(t *testing.T) {
	tests := []struct {
		name    string
		balance int
		kind    string
		x, y    float64
		want    error
	}{
		{"unknown kind", 500, "cactus", 140, 150, ErrUnknownDefender},
		{"menu band", 500, "seedling", 140, 99, ErrOutOfBounds},
		{"left of grid", 500, "seedling", 99, 150, ErrOutOfBounds},
		{"right of grid", 500, "seedling", 820, 150, ErrOutOfBounds},
		{"below lanes", 500, "seedling", 140, 400, ErrOutOfBounds},
		{"unaffordable", 50, "seedling", 140, 150, ErrUnaffordable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, tt.balance)
			d, err := f.placer.Place(tt.kind, tt.x, tt.y)
			if !errors.Is(err, tt.want) {
				t.Fatalf("err = %v, want %v", err, tt.want)
			}
			if d != nil {
				t.Error("rejected placement returned a defender")
			}
			if f.econ.Balance() != tt.balance {
				t.Errorf("balance = %d, want %d unchanged", f.econ.Balance(), tt.balance)
			}
			if f.state.DefenderCount() != 0 {
				t.Errorf("registry holds %d defenders", f.state.DefenderCount())
			}
		})
	}
}

func TestPlaceDebitsAndSnaps(t *testing.T) {
	f := newFixture(t, 150)
	d, err := f.placer.Place("seedling", 185, 270)
	if err != nil {
		t.Fatalf("Place: %v", err)
	}
	if f.econ.Balance() != 75 {
		t.Errorf("balance = %d, want 75", f.econ.Balance())
	}
	if d.Lane() != 1 || d.Cell.Column != 1 || d.X != 220 || d.Y != 250 {
		t.Errorf("placed at lane %d col %d (%v, %v), want lane 1 col 1 (220, 250)", d.Lane(), d.Cell.Column, d.X, d.Y)
	}
	if !d.Destructible || d.Shooter == nil {
		t.Fatalf("shooter not initialised: %+v", d)
	}
	if d.Shooter.NextFire < 100*time.Millisecond || d.Shooter.NextFire > 500*time.Millisecond {
		t.Errorf("first fire %v outside [100ms, 500ms]", d.Shooter.NextFire)
	}
}

func TestPlaceOccupiedRegardlessOfKind(t *testing.T) {
	f := newFixture(t, 500)
	if _, err := f.placer.Place("bog", 140, 150); err != nil {
		t.Fatalf("first Place: %v", err)
	}
	for _, kind := range []string{"bog", "seedling", "solar"} {
		_, err := f.placer.Place(kind, 175, 180)
		if !errors.Is(err, ErrOccupied) {
			t.Errorf("%s: err = %v, want ErrOccupied", kind, err)
		}
	}
	if f.econ.Balance() != 450 {
		t.Errorf("balance = %d, want 450", f.econ.Balance())
	}
	if _, err := f.placer.Place("seedling", 220, 150); err != nil {
		t.Errorf("neighbouring cell: %v", err)
	}
}

func TestPlaceOccupiedBeatsAffordability(t *testing.T) {
	f := newFixture(t, 50)
	if _, err := f.placer.Place("bog", 140, 150); err != nil {
		t.Fatalf("Place: %v", err)
	}
	if _, err := f.placer.Place("seedling", 140, 150); !errors.Is(err, ErrOccupied) {
		t.Errorf("err = %v, want ErrOccupied", err)
	}
}

func TestIncomeDefenderPays(t *testing.T) {
	f := newFixture(t, 25)
	d, err := f.placer.Place("solar", 140, 350)
	if err != nil {
		t.Fatalf("Place: %v", err)
	}
	f.timers.Advance(8 * time.Second)
	if f.econ.Balance() != 20 {
		t.Errorf("balance = %d, want 20", f.econ.Balance())
	}
	f.state.DestroyDefender(d.ID, event.CauseConsumed)
	f.timers.Advance(8 * time.Second)
	if f.econ.Balance() != 20 {
		t.Errorf("destroyed generator kept paying: balance %d", f.econ.Balance())
	}
}

func TestPlaceEmitsEvent(t *testing.T) {
	f := newFixture(t, 100)
	var placed []event.DefenderPlaced
	event.Subscribe(f.bus, func(e event.DefenderPlaced) { placed = append(placed, e) })
	if _, err := f.placer.Place("bog", 140, 150); err != nil {
		t.Fatalf("Place: %v", err)
	}
	f.bus.SwapBuffers()
	f.bus.DispatchAll()
	if len(placed) != 1 || placed[0].TypeID != "bog" || placed[0].Cost != 50 {
		t.Errorf("events = %+v", placed)
	}
}
