package alarm

import (
	"sync"
	"testing"
	"time"

	"github.com/manav03panchal/babyreminder/internal/reminder"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorder struct {
	mu    sync.Mutex
	fired []reminder.TimerID
	ch    chan reminder.TimerID
}

func newRecorder() *recorder {
	return &recorder{ch: make(chan reminder.TimerID, 8)}
}

func (r *recorder) fire(id reminder.TimerID, _ time.Time) {
	r.mu.Lock()
	r.fired = append(r.fired, id)
	r.mu.Unlock()
	r.ch <- id
}

func (r *recorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.fired)
}

func (r *recorder) wait(t *testing.T) reminder.TimerID {
	t.Helper()
	select {
	case id := <-r.ch:
		return id
	case <-time.After(2 * time.Second):
		t.Fatal("timer did not fire")
		return ""
	}
}

// =============================================================================
// FireTime Tests
// =============================================================================

func TestFireTime(t *testing.T) {
	base := time.Date(2026, 10, 12, 10, 0, 0, 0, time.UTC)

	tests := []struct {
		name  string
		at    time.Time
		exact bool
		want  time.Time
	}{
		{"exact_unchanged", base.Add(90 * time.Second), true, base.Add(90 * time.Second)},
		{"inexact_rounds_up", base.Add(61 * time.Second), false, base.Add(2 * time.Minute)},
		{"inexact_whole_minute", base.Add(time.Minute), false, base.Add(time.Minute)},
		{"inexact_sub_second", base.Add(time.Millisecond), false, base.Add(time.Minute)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FireTime(tt.at, tt.exact))
		})
	}
}

// =============================================================================
// Scheduler Tests
// =============================================================================

func TestScheduleFires(t *testing.T) {
	rec := newRecorder()
	s := New(rec.fire, true)
	s.Start()
	defer s.Stop()

	s.Schedule(Timer{ID: reminder.TimerAutoResponse, At: time.Now().Add(50 * time.Millisecond), Exact: true})
	assert.Equal(t, reminder.TimerAutoResponse, rec.wait(t))
	assert.Empty(t, s.Pending())
}

func TestSchedulePastFiresImmediately(t *testing.T) {
	rec := newRecorder()
	s := New(rec.fire, true)
	s.Start()
	defer s.Stop()

	s.Schedule(Timer{ID: reminder.TimerReminder, At: time.Now().Add(-time.Second), Exact: true})
	assert.Equal(t, reminder.TimerReminder, rec.wait(t))
}

func TestScheduleReplacesSameID(t *testing.T) {
	rec := newRecorder()
	s := New(rec.fire, true)
	s.Start()
	defer s.Stop()

	s.Schedule(Timer{ID: reminder.TimerReminder, At: time.Now().Add(time.Hour), Exact: true})
	s.Schedule(Timer{ID: reminder.TimerReminder, At: time.Now().Add(50 * time.Millisecond), Exact: true})
	require.Len(t, s.Pending(), 1)

	rec.wait(t)
	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, 1, rec.count())
}

func TestCancel(t *testing.T) {
	rec := newRecorder()
	s := New(rec.fire, true)
	s.Start()
	defer s.Stop()

	s.Schedule(Timer{ID: reminder.TimerAutoResponse, At: time.Now().Add(100 * time.Millisecond), Exact: true})
	assert.True(t, s.Cancel(reminder.TimerAutoResponse))
	assert.False(t, s.Cancel(reminder.TimerAutoResponse))

	time.Sleep(250 * time.Millisecond)
	assert.Equal(t, 0, rec.count())
}

func TestPendingOrdered(t *testing.T) {
	s := New(nil, true)
	now := time.Now()
	s.Schedule(Timer{ID: reminder.TimerReminder, At: now.Add(time.Hour), Exact: true})
	s.Schedule(Timer{ID: reminder.TimerAutoResponse, At: now.Add(time.Minute), Exact: true})

	timers := s.Pending()
	require.Len(t, timers, 2)
	assert.Equal(t, reminder.TimerAutoResponse, timers[0].ID)
	assert.Equal(t, now.Add(time.Minute), s.NextRun())
}

func TestInexactDowngrade(t *testing.T) {
	s := New(nil, false)
	assert.False(t, s.CanScheduleExact())

	at := time.Date(2026, 10, 12, 10, 0, 30, 0, time.UTC)
	got := s.Schedule(Timer{ID: reminder.TimerReminder, At: at, Exact: true})
	assert.False(t, got.Exact)
	assert.Equal(t, at.Truncate(time.Minute).Add(time.Minute), got.FireAt)
}

func TestNextRunEmpty(t *testing.T) {
	s := New(nil, true)
	assert.True(t, s.NextRun().IsZero())
}

func TestOneShotYieldsOnce(t *testing.T) {
	at := time.Now().Add(-time.Minute)
	o := &oneShot{at: at}
	assert.Equal(t, at, o.Next(time.Now()))
	assert.True(t, o.Next(time.Now()).IsZero())
}
