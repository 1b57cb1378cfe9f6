package economy

import (
	"time"

	"github.com/windlane/lanes/internal/core/ecs"
	"github.com/windlane/lanes/internal/core/event"
	"github.com/windlane/lanes/internal/core/timer"
	"go.uber.org/zap"
)

// Economy owns the player's currency balance. The balance only changes
// through Credit (ambient income, income generators) and TryDebit
// (placement), and never drops below zero.
type Economy struct {
	balance int
	timers  *timer.Scheduler
	bus     *event.Bus
	log     *zap.Logger
}

func New(start int, timers *timer.Scheduler, bus *event.Bus, log *zap.Logger) *Economy {
	if start < 0 {
		start = 0
	}
	return &Economy{balance: start, timers: timers, bus: bus, log: log}
}

func (e *Economy) Balance() int { return e.balance }

// CanAfford reports whether cost can be debited.
func (e *Economy) CanAfford(cost int) bool {
	return cost >= 0 && e.balance >= cost
}

// TryDebit subtracts cost when affordable. On false the balance is untouched.
func (e *Economy) TryDebit(cost int) bool {
	if !e.CanAfford(cost) {
		return false
	}
	e.balance -= cost
	return true
}

// Credit adds amount from source (zero source for ambient income).
func (e *Economy) Credit(source ecs.EntityID, amount int) {
	if amount <= 0 {
		return
	}
	e.balance += amount
	event.Emit(e.bus, event.IncomePaid{
		Source:  source,
		Amount:  amount,
		Balance: e.balance,
		At:      e.timers.Now(),
	})
}

// StartAmbient schedules the global income payout.
func (e *Economy) StartAmbient(interval time.Duration, amount int) timer.Token {
	if amount <= 0 || interval <= 0 {
		return 0
	}
	e.log.Debug("ambient income armed",
		zap.Duration("interval", interval),
		zap.Int("amount", amount),
	)
	return e.timers.ScheduleRepeating(interval, func() {
		e.Credit(0, amount)
	})
}

// StartGenerator schedules a payout for one income-generating defender.
// The caller cancels the token when the defender leaves play.
func (e *Economy) StartGenerator(source ecs.EntityID, interval time.Duration, payout int) timer.Token {
	return e.timers.ScheduleRepeating(interval, func() {
		e.Credit(source, payout)
	})
}
