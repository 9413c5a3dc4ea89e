package daemon

import (
	"encoding/json"
	"sync"
	"sync/atomic"
	"time"

	"github.com/manav03panchal/babyreminder/internal/errors"
)

// Metrics tracks daemon operational metrics.
type Metrics struct {
	// Counters
	eventsHandled        atomic.Int64
	eventsFailed         atomic.Int64
	notificationsShown   atomic.Int64
	emergencyShown       atomic.Int64
	notificationsCleared atomic.Int64
	timersScheduled      atomic.Int64
	timersFired          atomic.Int64
	effectsFailed        atomic.Int64
	errorsTotal          atomic.Int64

	mu            sync.RWMutex
	lastEvent     string
	lastEventAt   time.Time
	drivingSince  time.Time
	lastError     string
	lastErrorAt   time.Time
	eventsByKind     map[string]int64
	errorsByScope    map[string]int64
	errorsByCategory map[string]int64
}

// NewMetrics creates a new metrics tracker.
func NewMetrics() *Metrics {
	return &Metrics{
		eventsByKind:     make(map[string]int64),
		errorsByScope:    make(map[string]int64),
		errorsByCategory: make(map[string]int64),
	}
}

// MetricsSnapshot represents a point-in-time view of metrics.
type MetricsSnapshot struct {
	EventsHandledTotal        int64            `json:"events_handled_total"`
	EventsFailedTotal         int64            `json:"events_failed_total"`
	NotificationsShownTotal   int64            `json:"notifications_shown_total"`
	EmergencyShownTotal       int64            `json:"emergency_shown_total"`
	NotificationsClearedTotal int64            `json:"notifications_cleared_total"`
	TimersScheduledTotal      int64            `json:"timers_scheduled_total"`
	TimersFiredTotal          int64            `json:"timers_fired_total"`
	EffectsFailedTotal        int64            `json:"effects_failed_total"`
	ErrorsTotal               int64            `json:"errors_total"`
	LastEvent                 string           `json:"last_event,omitempty"`
	LastEventAt               *time.Time       `json:"last_event_at,omitempty"`
	DrivingSince              *time.Time       `json:"driving_since,omitempty"`
	LastError                 string           `json:"last_error,omitempty"`
	LastErrorAt               *time.Time       `json:"last_error_at,omitempty"`
	EventsByKind              map[string]int64 `json:"events_by_kind,omitempty"`
	ErrorsByScope             map[string]int64 `json:"errors_by_scope,omitempty"`
	ErrorsByCategory          map[string]int64 `json:"errors_by_category,omitempty"`
}

// Snapshot returns a copy of current metrics.
func (m *Metrics) Snapshot() MetricsSnapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()

	snap := MetricsSnapshot{
		EventsHandledTotal:        m.eventsHandled.Load(),
		EventsFailedTotal:         m.eventsFailed.Load(),
		NotificationsShownTotal:   m.notificationsShown.Load(),
		EmergencyShownTotal:       m.emergencyShown.Load(),
		NotificationsClearedTotal: m.notificationsCleared.Load(),
		TimersScheduledTotal:      m.timersScheduled.Load(),
		TimersFiredTotal:          m.timersFired.Load(),
		EffectsFailedTotal:        m.effectsFailed.Load(),
		ErrorsTotal:               m.errorsTotal.Load(),
		LastEvent:                 m.lastEvent,
		LastError:                 m.lastError,
		EventsByKind:              make(map[string]int64, len(m.eventsByKind)),
		ErrorsByScope:             make(map[string]int64, len(m.errorsByScope)),
		ErrorsByCategory:          make(map[string]int64, len(m.errorsByCategory)),
	}

	if !m.lastEventAt.IsZero() {
		t := m.lastEventAt
		snap.LastEventAt = &t
	}
	if !m.drivingSince.IsZero() {
		t := m.drivingSince
		snap.DrivingSince = &t
	}
	if !m.lastErrorAt.IsZero() {
		t := m.lastErrorAt
		snap.LastErrorAt = &t
	}
	for k, v := range m.eventsByKind {
		snap.EventsByKind[k] = v
	}
	for k, v := range m.errorsByScope {
		snap.ErrorsByScope[k] = v
	}
	for k, v := range m.errorsByCategory {
		snap.ErrorsByCategory[k] = v
	}

	return snap
}

// JSON returns metrics as JSON.
func (m *Metrics) JSON() ([]byte, error) {
	return json.MarshalIndent(m.Snapshot(), "", "  ")
}

// RecordEvent records a handled event and whether handling failed.
func (m *Metrics) RecordEvent(kind string, err error) {
	m.eventsHandled.Add(1)

	m.mu.Lock()
	m.lastEvent = kind
	m.lastEventAt = time.Now()
	m.eventsByKind[kind]++
	m.mu.Unlock()

	if err != nil {
		m.eventsFailed.Add(1)
		m.RecordError("engine", err)
	}
}

// RecordNotificationShown records a shown notification.
func (m *Metrics) RecordNotificationShown(emergency bool) {
	m.notificationsShown.Add(1)
	if emergency {
		m.emergencyShown.Add(1)
	}
}

// RecordNotificationCleared records a cancelled notification.
func (m *Metrics) RecordNotificationCleared() {
	m.notificationsCleared.Add(1)
}

// RecordTimerScheduled records a scheduled timer.
func (m *Metrics) RecordTimerScheduled() {
	m.timersScheduled.Add(1)
}

// RecordTimerFired records a fired timer.
func (m *Metrics) RecordTimerFired() {
	m.timersFired.Add(1)
}

// RecordDriving records a driving state change.
func (m *Metrics) RecordDriving(driving bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if driving {
		if m.drivingSince.IsZero() {
			m.drivingSince = time.Now()
		}
		return
	}
	m.drivingSince = time.Time{}
}

// RecordEffectFailed records an effect the executor could not apply.
func (m *Metrics) RecordEffectFailed(scope string, err error) {
	m.effectsFailed.Add(1)
	m.RecordError(scope, err)
}

// RecordError records an error with scope. Errors are also counted by
// category so transient broker and network failures stand apart from
// failures that need attention.
func (m *Metrics) RecordError(scope string, err error) {
	m.errorsTotal.Add(1)

	m.mu.Lock()
	defer m.mu.Unlock()

	m.lastError = err.Error()
	m.lastErrorAt = time.Now()

	if scope != "" {
		m.errorsByScope[scope]++
	}
	m.errorsByCategory[errors.Classify(err).String()]++
}

// EventsHandled returns the total events handled.
func (m *Metrics) EventsHandled() int64 {
	return m.eventsHandled.Load()
}

// NotificationsShown returns the total notifications shown.
func (m *Metrics) NotificationsShown() int64 {
	return m.notificationsShown.Load()
}

// ErrorsTotal returns the total errors.
func (m *Metrics) ErrorsTotal() int64 {
	return m.errorsTotal.Load()
}

// Reset resets all metrics to zero.
func (m *Metrics) Reset() {
	m.eventsHandled.Store(0)
	m.eventsFailed.Store(0)
	m.notificationsShown.Store(0)
	m.emergencyShown.Store(0)
	m.notificationsCleared.Store(0)
	m.timersScheduled.Store(0)
	m.timersFired.Store(0)
	m.effectsFailed.Store(0)
	m.errorsTotal.Store(0)

	m.mu.Lock()
	defer m.mu.Unlock()

	m.lastEvent = ""
	m.lastEventAt = time.Time{}
	m.drivingSince = time.Time{}
	m.lastError = ""
	m.lastErrorAt = time.Time{}
	m.eventsByKind = make(map[string]int64)
	m.errorsByScope = make(map[string]int64)
	m.errorsByCategory = make(map[string]int64)
}
