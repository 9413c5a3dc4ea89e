// Package alarm provides one-shot timers for the daemon on top of cron.
package alarm

import (
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/manav03panchal/babyreminder/internal/logging"
	"github.com/manav03panchal/babyreminder/internal/reminder"
)

// lateThreshold is how late a timer may fire before it is logged as delayed,
// typically after the machine was suspended.
const lateThreshold = time.Hour

// Timer is a pending one-shot timer.
type Timer struct {
	ID     reminder.TimerID `json:"id"`
	At     time.Time        `json:"at"`
	Exact  bool             `json:"exact"`
	FireAt time.Time        `json:"fire_at"`
}

// FireFunc receives the id of a timer when it fires.
type FireFunc func(id reminder.TimerID, at time.Time)

type pending struct {
	timer Timer
	entry cron.EntryID
}

// Scheduler keeps at most one pending timer per id.
type Scheduler struct {
	cron  *cron.Cron
	fire  FireFunc
	exact bool

	mu      sync.Mutex
	pending map[reminder.TimerID]pending
}

// New creates a scheduler. When exact is false every timer is rounded up to
// the next whole minute.
func New(fire FireFunc, exact bool) *Scheduler {
	return &Scheduler{
		cron:    cron.New(cron.WithSeconds()),
		fire:    fire,
		exact:   exact,
		pending: make(map[reminder.TimerID]pending),
	}
}

// CanScheduleExact reports whether exact timers are available.
func (s *Scheduler) CanScheduleExact() bool {
	return s.exact
}

// FireTime returns when a timer requested for at actually fires.
func FireTime(at time.Time, exact bool) time.Time {
	if exact {
		return at
	}
	rounded := at.Truncate(time.Minute)
	if rounded.Before(at) {
		rounded = rounded.Add(time.Minute)
	}
	return rounded
}

// Schedule arms t, replacing any pending timer with the same id. An exact
// request is downgraded when exact timers are unavailable.
func (s *Scheduler) Schedule(t Timer) Timer {
	t.Exact = t.Exact && s.exact
	t.FireAt = FireTime(t.At, t.Exact)

	s.mu.Lock()
	defer s.mu.Unlock()

	if old, ok := s.pending[t.ID]; ok {
		s.cron.Remove(old.entry)
	}

	// entry is written under s.mu and only read by run under s.mu.
	entry := new(cron.EntryID)
	*entry = s.cron.Schedule(&oneShot{at: t.FireAt}, cron.FuncJob(func() {
		s.run(t.ID, entry)
	}))
	s.pending[t.ID] = pending{timer: t, entry: *entry}

	logging.DebugLog("timer scheduled",
		logging.KeyTimer, string(t.ID),
		"fire_at", t.FireAt.Format(time.RFC3339),
		"exact", t.Exact)
	return t
}

func (s *Scheduler) run(id reminder.TimerID, entry *cron.EntryID) {
	s.mu.Lock()
	p, ok := s.pending[id]
	if !ok || p.entry != *entry {
		s.mu.Unlock()
		return
	}
	delete(s.pending, id)
	s.cron.Remove(p.entry)
	s.mu.Unlock()

	now := time.Now()
	if late := now.Sub(p.timer.FireAt); late > lateThreshold {
		logging.Warn("timer fired late", logging.KeyTimer, string(id), logging.KeyDuration, late.Milliseconds())
	}
	logging.DebugLog("timer fired", logging.KeyTimer, string(id))
	if s.fire != nil {
		s.fire(id, now)
	}
}

// Cancel drops the pending timer with id. It reports whether one existed.
func (s *Scheduler) Cancel(id reminder.TimerID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.pending[id]
	if !ok {
		return false
	}
	s.cron.Remove(p.entry)
	delete(s.pending, id)
	logging.DebugLog("timer cancelled", logging.KeyTimer, string(id))
	return true
}

// Pending returns the armed timers ordered by fire time.
func (s *Scheduler) Pending() []Timer {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Timer, 0, len(s.pending))
	for _, p := range s.pending {
		out = append(out, p.timer)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].FireAt.Before(out[j].FireAt) })
	return out
}

// NextRun returns the fire time of the earliest pending timer.
func (s *Scheduler) NextRun() time.Time {
	timers := s.Pending()
	if len(timers) == 0 {
		return time.Time{}
	}
	return timers[0].FireAt
}

// Start begins firing timers.
func (s *Scheduler) Start() {
	s.cron.Start()
	logging.DebugLog("alarm scheduler started")
}

// Stop halts the scheduler and waits for running callbacks.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	logging.DebugLog("alarm scheduler stopped")
}

// oneShot is a cron.Schedule that yields a single activation. The first
// call to Next returns the target even when it has passed, so a timer
// scheduled in the past fires immediately.
type oneShot struct {
	at   time.Time
	used atomic.Bool
}

func (o *oneShot) Next(time.Time) time.Time {
	if o.used.Swap(true) {
		return time.Time{}
	}
	return o.at
}
