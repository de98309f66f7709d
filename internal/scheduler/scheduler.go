// Package scheduler owns deferred callbacks keyed by id.
//
// At most one timer is armed per id. Arming an id that already has a timer
// replaces it, and a timer that loses a race with Cancel or a re-Arm never
// runs its callback.
package scheduler

import (
	"sync"
	"time"

	"go.uber.org/zap"
)

type entry struct {
	timer Timer
	gen   uint64
	at    time.Time
}

// Scheduler arms and cancels one-shot timers keyed by id.
type Scheduler struct {
	mu      sync.Mutex
	clock   Clock
	logger  *zap.Logger
	entries map[string]*entry
	gen     uint64
}

// New creates a Scheduler. A nil clock means SystemClock.
func New(clock Clock, logger *zap.Logger) *Scheduler {
	if clock == nil {
		clock = SystemClock{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Scheduler{
		clock:   clock,
		logger:  logger.Named("scheduler"),
		entries: make(map[string]*entry),
	}
}

// Now reports the scheduler's current time.
func (s *Scheduler) Now() time.Time {
	return s.clock.Now()
}

// Arm schedules onFire to run once after delay. Negative delays fire as soon
// as possible.
func (s *Scheduler) Arm(id string, delay time.Duration, onFire func()) {
	if delay < 0 {
		delay = 0
	}
	s.arm(id, delay, s.clock.Now().Add(delay), onFire)
}

// ArmAt schedules onFire to run once at the given instant.
func (s *Scheduler) ArmAt(id string, at time.Time, onFire func()) {
	delay := at.Sub(s.clock.Now())
	if delay < 0 {
		delay = 0
	}
	s.arm(id, delay, at, onFire)
}

func (s *Scheduler) arm(id string, delay time.Duration, at time.Time, onFire func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if prev, ok := s.entries[id]; ok {
		prev.timer.Stop()
		s.logger.Debug("replacing armed timer", zap.String("id", id))
	}

	s.gen++
	gen := s.gen
	e := &entry{gen: gen, at: at}
	s.entries[id] = e
	e.timer = s.clock.AfterFunc(delay, func() { s.fire(id, gen, onFire) })
}

func (s *Scheduler) fire(id string, gen uint64, onFire func()) {
	s.mu.Lock()
	e, ok := s.entries[id]
	if !ok || e.gen != gen {
		s.mu.Unlock()
		return
	}
	delete(s.entries, id)
	s.mu.Unlock()

	onFire()
}

// Cancel disarms the timer for id. It reports whether a timer was armed.
func (s *Scheduler) Cancel(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[id]
	if !ok {
		return false
	}
	e.timer.Stop()
	delete(s.entries, id)
	return true
}

// Armed reports whether a timer is currently armed for id.
func (s *Scheduler) Armed(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.entries[id]
	return ok
}

// Deadline returns the instant the timer for id is due.
func (s *Scheduler) Deadline(id string) (time.Time, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[id]
	if !ok {
		return time.Time{}, false
	}
	return e.at, true
}

// Len returns the number of armed timers.
func (s *Scheduler) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// Stop disarms every timer.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, e := range s.entries {
		e.timer.Stop()
		delete(s.entries, id)
	}
	s.logger.Debug("scheduler stopped")
}
