package tui

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/manav03panchal/babyreminder/internal/alarm"
	"github.com/manav03panchal/babyreminder/internal/errors"
	"github.com/manav03panchal/babyreminder/internal/model"
	"github.com/manav03panchal/babyreminder/internal/reminder"
	"github.com/manav03panchal/babyreminder/internal/service"
	"github.com/manav03panchal/babyreminder/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var noon = time.Date(2026, 10, 16, 12, 0, 0, 0, time.Local)

func setupBackend(t *testing.T) (*service.Service, *[]reminder.Event) {
	t.Helper()
	db, err := storage.Open(storage.Options{InMemory: true})
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	var mu sync.Mutex
	var submitted []reminder.Event
	svc := service.NewLocal(db).WithSubmitter(func(_ context.Context, ev reminder.Event) error {
		mu.Lock()
		defer mu.Unlock()
		submitted = append(submitted, ev)
		return nil
	})
	return svc, &submitted
}

func remindingStatus() *service.Status {
	return &service.Status{
		Driving: false,
		Session: model.Session{
			State:       model.SessionAwaitingEndResponse,
			RepeatCount: 3,
			StartedAt:   noon.Add(-5 * time.Minute),
		},
		SessionLabel: "Reminding (3/10)",
		MaxRepeats:   10,
		Devices:      []string{"My Toyota"},
		Rules:        2,
		Daemon:       true,
		Timers: []alarm.Timer{
			{ID: reminder.TimerReminder, At: noon.Add(45 * time.Second), Exact: true, FireAt: noon.Add(45 * time.Second)},
		},
	}
}

// =============================================================================
// ProgressBar Tests
// =============================================================================

func TestProgressBar(t *testing.T) {
	tests := []struct {
		name       string
		percentage float64
		width      int
		filled     int
	}{
		{"zero", 0, 10, 0},
		{"half", 50, 10, 5},
		{"full", 100, 10, 10},
		{"over", 150, 10, 10},
		{"negative", -10, 10, 0},
		{"small_width", 50, 5, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bar := ProgressBar(tt.percentage, tt.width)
			assert.Equal(t, tt.width, lipgloss.Width(bar))
			assert.Equal(t, tt.filled, strings.Count(bar, "█"))
		})
	}
}

func TestFormatDevices(t *testing.T) {
	assert.Contains(t, FormatDevices(nil), "car mode only")

	out := FormatDevices([]string{"My Toyota", "Car Audio"})
	assert.Contains(t, out, "My Toyota")
	assert.Contains(t, out, "Car Audio")
}

// =============================================================================
// Component Tests
// =============================================================================

func TestStatusComponentView(t *testing.T) {
	t.Run("no_status", func(t *testing.T) {
		view := NewStatusComponent(nil, 80, noon).View()
		assert.Contains(t, view, "Waiting for status")
	})

	t.Run("idle", func(t *testing.T) {
		st := &service.Status{Session: *model.NewSession(), SessionLabel: "Idle", MaxRepeats: 10}
		sc := NewStatusComponent(st, 80, noon)
		assert.False(t, sc.Reminding())

		view := sc.View()
		assert.Contains(t, view, "Not driving")
		assert.Contains(t, view, "Idle")
	})

	t.Run("driving", func(t *testing.T) {
		st := &service.Status{
			Driving:      true,
			Session:      model.Session{State: model.SessionAwaitingStartResponse, StartedAt: noon},
			SessionLabel: "Waiting for start answer",
		}
		view := NewStatusComponent(st, 80, noon).View()
		assert.Contains(t, view, "DRIVING")
		assert.Contains(t, view, "Waiting for start answer")
		assert.Contains(t, view, "Since")
	})

	t.Run("reminding", func(t *testing.T) {
		sc := NewStatusComponent(remindingStatus(), 80, noon)
		assert.True(t, sc.Reminding())

		view := sc.View()
		assert.Contains(t, view, "CHECK THE BACK SEAT")
		assert.Contains(t, view, "Reminding (3/10)")
		assert.Contains(t, view, "█")
	})
}

func TestDetailsComponentView(t *testing.T) {
	t.Run("no_status", func(t *testing.T) {
		assert.Empty(t, NewDetailsComponent(nil, 80, noon).View())
	})

	t.Run("with_timers", func(t *testing.T) {
		view := NewDetailsComponent(remindingStatus(), 100, noon).View()
		assert.Contains(t, view, "My Toyota")
		assert.Contains(t, view, "2 rules, outside window")
		assert.Contains(t, view, "reminder")
		assert.Contains(t, view, "in 45s")
		assert.NotContains(t, view, "Daemon not running")
	})

	t.Run("no_daemon", func(t *testing.T) {
		st := remindingStatus()
		st.Daemon = false
		st.Timers = nil
		st.RetryQueue = 2
		view := NewDetailsComponent(st, 100, noon).View()
		assert.Contains(t, view, "Daemon not running")
		assert.Contains(t, view, "2 webhooks")
	})

	t.Run("default_answer_follows_window", func(t *testing.T) {
		st := remindingStatus()
		st.InWindow = true
		view := NewDetailsComponent(st, 100, noon).View()
		assert.Contains(t, view, "inside window")
		assert.Contains(t, view, "yes")
	})
}

// =============================================================================
// WatchModel Tests
// =============================================================================

func TestNewWatchModel(t *testing.T) {
	svc, _ := setupBackend(t)
	m := NewWatchModel(WatchConfig{Backend: svc})

	assert.Equal(t, time.Second, m.refreshInterval)
	assert.Equal(t, 5*time.Second, m.timeout)
	assert.NotNil(t, m.Init())
	assert.Equal(t, "Loading...", m.View())
}

func TestWatchModelFetch(t *testing.T) {
	svc, _ := setupBackend(t)
	require.NoError(t, svc.AddDevice(context.Background(), "My Toyota"))
	m := NewWatchModel(WatchConfig{Backend: svc})

	msg := m.fetchCmd()()
	sm, ok := msg.(statusMsg)
	require.True(t, ok)
	require.NoError(t, sm.err)

	m.Update(tea.WindowSizeMsg{Width: 100, Height: 40})
	m.Update(sm)
	require.NotNil(t, m.status)
	assert.Equal(t, []string{"My Toyota"}, m.status.Devices)

	view := m.View()
	assert.Contains(t, view, "Baby Reminder")
	assert.Contains(t, view, "My Toyota")
	assert.Contains(t, view, "quit")
}

func TestWatchModelFetchError(t *testing.T) {
	svc, _ := setupBackend(t)
	m := NewWatchModel(WatchConfig{Backend: svc})
	m.Update(tea.WindowSizeMsg{Width: 80, Height: 24})

	m.Update(statusMsg{err: errors.ErrDaemonNotRunning})
	assert.Contains(t, m.View(), "Error:")

	m.Update(statusMsg{status: remindingStatus()})
	assert.NoError(t, m.err)
}

func TestWatchModelActions(t *testing.T) {
	tests := []struct {
		key     string
		kind    reminder.EventKind
		message string
	}{
		{"c", reminder.EventConfirm, "Reminders stopped"},
		{"y", reminder.EventConfirm, "Reminders stopped"},
		{"d", reminder.EventDeny, "reminders skipped"},
		{"n", reminder.EventDeny, "reminders skipped"},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			svc, submitted := setupBackend(t)
			m := NewWatchModel(WatchConfig{Backend: svc})
			m.now = func() time.Time { return noon }

			_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(tt.key)})
			require.NotNil(t, cmd)
			msg := cmd()
			am, ok := msg.(actionMsg)
			require.True(t, ok)
			require.NoError(t, am.err)

			require.Len(t, *submitted, 1)
			ev := (*submitted)[0]
			assert.Equal(t, tt.kind, ev.Kind)
			assert.Equal(t, "watch", ev.Source)
			assert.Equal(t, noon, ev.At)

			_, next := m.Update(am)
			assert.NotNil(t, next, "an action triggers a refresh")
			assert.Contains(t, m.message, tt.message)
		})
	}
}

func TestWatchModelKeys(t *testing.T) {
	svc, _ := setupBackend(t)
	m := NewWatchModel(WatchConfig{Backend: svc})

	t.Run("help_toggle", func(t *testing.T) {
		assert.False(t, m.help.ShowAll)
		m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("?")})
		assert.True(t, m.help.ShowAll)
		m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("?")})
		assert.False(t, m.help.ShowAll)
	})

	t.Run("refresh", func(t *testing.T) {
		_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("r")})
		require.NotNil(t, cmd)
		assert.Equal(t, "Refreshed", m.message)
	})

	t.Run("quit", func(t *testing.T) {
		_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
		require.NotNil(t, cmd)
		assert.IsType(t, tea.QuitMsg{}, cmd())
	})

	t.Run("ctrl_c", func(t *testing.T) {
		_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
		require.NotNil(t, cmd)
		assert.IsType(t, tea.QuitMsg{}, cmd())
	})
}

func TestWatchModelMessageExpires(t *testing.T) {
	svc, _ := setupBackend(t)
	m := NewWatchModel(WatchConfig{Backend: svc})
	clock := noon
	m.now = func() time.Time { return clock }

	m.setMessage("Refreshed", time.Second)
	m.Update(tickMsg(clock))
	assert.Equal(t, "Refreshed", m.message)

	clock = clock.Add(2 * time.Second)
	m.Update(tickMsg(clock))
	assert.Empty(t, m.message)
}
