package timer

import "time"

// Token identifies a scheduled action. The zero Token is never issued.
type Token uint64

// Action runs synchronously inside Advance.
type Action func()

type entry struct {
	token     Token
	due       time.Duration
	interval  time.Duration // 0 for one-shot
	action    Action
	cancelled bool
	epoch     uint64
}

// Scheduler holds delayed and repeating actions on a logical clock.
// Not safe for concurrent use; it is owned by the tick loop.
//
// Firing rules:
//   - timers fire at Advance granularity, never between calls;
//   - timers due in the same Advance fire in insertion order, one occurrence
//     per pass, repeating passes until nothing is due (a repeating timer that
//     fell several intervals behind catches up);
//   - a timer scheduled while Advance is running is not eligible until the
//     next Advance;
//   - a cancelled timer never fires, even if it was already due.
type Scheduler struct {
	now     time.Duration
	entries []*entry
	byToken map[Token]*entry
	next    Token
	epoch   uint64
}

func NewScheduler() *Scheduler {
	return &Scheduler{
		entries: make([]*entry, 0, 32),
		byToken: make(map[Token]*entry, 32),
	}
}

// Now returns the logical time reached by the last Advance.
func (s *Scheduler) Now() time.Duration { return s.now }

// ScheduleRepeating runs action every interval, first at Now()+interval.
// A non-positive interval schedules nothing and returns the zero Token.
func (s *Scheduler) ScheduleRepeating(interval time.Duration, action Action) Token {
	if interval <= 0 || action == nil {
		return 0
	}
	return s.add(s.now+interval, interval, action)
}

// ScheduleOnce runs action once at Now()+delay. Negative delays are clamped to 0.
func (s *Scheduler) ScheduleOnce(delay time.Duration, action Action) Token {
	if action == nil {
		return 0
	}
	if delay < 0 {
		delay = 0
	}
	return s.add(s.now+delay, 0, action)
}

func (s *Scheduler) add(due, interval time.Duration, action Action) Token {
	s.next++
	e := &entry{
		token:    s.next,
		due:      due,
		interval: interval,
		action:   action,
		epoch:    s.epoch,
	}
	s.entries = append(s.entries, e)
	s.byToken[e.token] = e
	return e.token
}

// Cancel stops a pending timer. Cancelling an unknown, fired or already
// cancelled token is a no-op and reports false.
func (s *Scheduler) Cancel(t Token) bool {
	e, ok := s.byToken[t]
	if !ok {
		return false
	}
	e.cancelled = true
	delete(s.byToken, t)
	return true
}

// Pending reports whether t will still fire.
func (s *Scheduler) Pending(t Token) bool {
	_, ok := s.byToken[t]
	return ok
}

// Due returns the next firing time of t.
func (s *Scheduler) Due(t Token) (time.Duration, bool) {
	e, ok := s.byToken[t]
	if !ok {
		return 0, false
	}
	return e.due, true
}

// Len returns the number of pending timers.
func (s *Scheduler) Len() int { return len(s.byToken) }

// Advance moves the clock forward by dt and fires every due action.
func (s *Scheduler) Advance(dt time.Duration) {
	if dt < 0 {
		dt = 0
	}
	s.now += dt
	s.epoch++

	for {
		fired := false
		// Entries appended by actions during this pass carry the new epoch
		// and are skipped, so reading len each iteration is safe.
		for i := 0; i < len(s.entries); i++ {
			e := s.entries[i]
			if e.cancelled || e.epoch == s.epoch || e.due > s.now {
				continue
			}
			if e.interval > 0 {
				e.due += e.interval
			} else {
				e.cancelled = true
				delete(s.byToken, e.token)
			}
			e.action()
			fired = true
		}
		if !fired {
			break
		}
	}
	s.compact()
}

func (s *Scheduler) compact() {
	kept := s.entries[:0]
	for _, e := range s.entries {
		if !e.cancelled {
			kept = append(kept, e)
		}
	}
	for i := len(kept); i < len(s.entries); i++ {
		s.entries[i] = nil
	}
	s.entries = kept
}
