package economy

import (
	"testing"
	"time"

	"github.com/windlane/lanes/internal/core/ecs"
	"github.com/windlane/lanes/internal/core/event"
	"github.com/windlane/lanes/internal/core/timer"
	"go.uber.org/zap"
)

func newEconomy(start int) (*Economy, *timer.Scheduler) {
	ts := timer.NewScheduler()
	return New(start, ts, event.NewBus(), zap.NewNop()), ts
}

func TestAmbientIncome(t *testing.T) {
	e, ts := newEconomy(150)
	e.StartAmbient(2*time.Second, 20)

	for i := 0; i < 60; i++ {
		ts.Advance(100 * time.Millisecond)
	}
	if got := e.Balance(); got != 210 {
		t.Errorf("balance after 6s = %d, want 210", got)
	}
}

func TestTryDebitNeverGoesNegative(t *testing.T) {
	e, _ := newEconomy(50)
	if e.TryDebit(75) {
		t.Fatal("debit of 75 from 50 succeeded")
	}
	if e.Balance() != 50 {
		t.Errorf("balance = %d after rejected debit, want 50", e.Balance())
	}
	if !e.TryDebit(50) {
		t.Fatal("exact debit rejected")
	}
	if e.Balance() != 0 {
		t.Errorf("balance = %d, want 0", e.Balance())
	}
	if e.TryDebit(-5) {
		t.Error("negative debit accepted")
	}
}

func TestGeneratorPayoutStopsWhenCancelled(t *testing.T) {
	e, ts := newEconomy(0)
	tok := e.StartGenerator(ecs.NewEntityID(1, 0), time.Second, 25)

	ts.Advance(time.Second)
	ts.Advance(time.Second)
	if e.Balance() != 50 {
		t.Fatalf("balance = %d, want 50", e.Balance())
	}
	ts.Cancel(tok)
	ts.Advance(5 * time.Second)
	if e.Balance() != 50 {
		t.Errorf("cancelled generator still paid: %d", e.Balance())
	}
}
