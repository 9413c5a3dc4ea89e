package reminder

import (
	"context"
	"testing"
	"time"

	"github.com/manav03panchal/babyreminder/internal/config"
	"github.com/manav03panchal/babyreminder/internal/driving"
	"github.com/manav03panchal/babyreminder/internal/errors"
	"github.com/manav03panchal/babyreminder/internal/model"
	"github.com/manav03panchal/babyreminder/internal/schedule"
	"github.com/manav03panchal/babyreminder/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// monday is 2026-10-12 10:00 local time.
var monday = time.Date(2026, 10, 12, 10, 0, 0, 0, time.Local)

type harness struct {
	prefs   *storage.Prefs
	tracker *driving.Tracker
	rules   *schedule.Store
	engine  *Engine
}

func setup(t *testing.T, cfg Config) *harness {
	db, err := storage.Open(storage.Options{InMemory: true})
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	prefs := storage.NewPrefs(db)
	tracker := driving.NewTracker(prefs)
	rules := schedule.NewStore(prefs)
	engine := NewEngine(prefs, tracker, rules, cfg).WithClock(func() time.Time { return monday })
	return &harness{prefs: prefs, tracker: tracker, rules: rules, engine: engine}
}

func (h *harness) handle(t *testing.T, kind EventKind, device string, at time.Time) []Effect {
	t.Helper()
	effects, err := h.engine.HandleEvent(context.Background(), Event{Kind: kind, Device: device, At: at})
	require.NoError(t, err)
	return effects
}

func kinds(effects []Effect) []EffectKind {
	out := make([]EffectKind, len(effects))
	for i, e := range effects {
		out[i] = e.Kind
	}
	return out
}

func find(effects []Effect, kind EffectKind) (Effect, bool) {
	for _, e := range effects {
		if e.Kind == kind {
			return e, true
		}
	}
	return Effect{}, false
}

// =============================================================================
// Event Parsing Tests
// =============================================================================

func TestParseEventKind(t *testing.T) {
	k, err := ParseEventKind("Bluetooth-Connected")
	require.NoError(t, err)
	assert.Equal(t, EventBluetoothConnected, k)

	k, err = ParseEventKind(" car_mode_exited ")
	require.NoError(t, err)
	assert.Equal(t, EventCarModeExited, k)

	_, err = ParseEventKind("teleport")
	assert.True(t, errors.Is(err, errors.ErrUnknownEvent))
	assert.True(t, errors.IsUserError(err))
}

func TestEventValidate(t *testing.T) {
	assert.NoError(t, Event{Kind: EventCarModeEntered}.Validate())
	assert.NoError(t, Event{Kind: EventBluetoothConnected, Device: "Car"}.Validate())
	assert.Error(t, Event{Kind: EventBluetoothConnected}.Validate())
	assert.Error(t, Event{Kind: "nope"}.Validate())
}

func TestEventString(t *testing.T) {
	assert.Equal(t, "bluetooth_connected(My Car)", Event{Kind: EventBluetoothConnected, Device: "My Car"}.String())
	assert.Equal(t, "confirm", Event{Kind: EventConfirm}.String())
	assert.True(t, EventDeny.IsAction())
	assert.False(t, EventCarModeEntered.IsAction())
}

func TestTimerEvent(t *testing.T) {
	assert.Equal(t, EventAutoResponseTimer, TimerAutoResponse.Event())
	assert.Equal(t, EventReminderTimer, TimerReminder.Event())
	assert.Equal(t, EventKind(""), TimerID("other").Event())
}

func TestSummarize(t *testing.T) {
	assert.Equal(t, "-", Summarize(nil))
	got := Summarize([]Effect{DrivingChanged(true), CancelNotification(2), CancelTimer(TimerReminder)})
	assert.Equal(t, "driving(true) cancel(2) cancel_timer(reminder)", got)
}

// =============================================================================
// Drive Start Tests
// =============================================================================

func TestUnknownDeviceIsIgnored(t *testing.T) {
	h := setup(t, DefaultConfig())

	effects := h.handle(t, EventBluetoothConnected, "Headphones", monday)
	assert.Empty(t, effects)
	assert.False(t, h.tracker.IsDriving())
	assert.Equal(t, model.SessionIdle, h.engine.Session().State)

	effects = h.handle(t, EventBluetoothDisconnected, "Headphones", monday)
	assert.Empty(t, effects)
}

func TestDriveStartFromAllowlistedDevice(t *testing.T) {
	h := setup(t, DefaultConfig())
	require.NoError(t, h.tracker.AddDevice("Family Van"))

	effects := h.handle(t, EventBluetoothConnected, "family van", monday)

	assert.Equal(t, []EffectKind{
		EffectDrivingChanged,
		EffectCancelTimer,
		EffectCancelNotification,
		EffectShowNotification,
		EffectScheduleTimer,
	}, kinds(effects))
	assert.True(t, h.tracker.IsDriving())

	show, _ := find(effects, EffectShowNotification)
	n := show.Notification
	assert.Equal(t, model.NotificationStartDriving, n.ID)
	assert.Equal(t, model.ChannelDriving, n.Channel)
	assert.Equal(t, []model.Action{model.ActionConfirm, model.ActionDeny}, n.Actions)
	assert.False(t, n.Ongoing)
	assert.False(t, n.Silent)

	timer, _ := find(effects, EffectScheduleTimer)
	assert.Equal(t, TimerAutoResponse, timer.Timer)
	assert.Equal(t, monday.Add(10*time.Second), timer.At)
	assert.True(t, timer.Exact)

	s := h.engine.Session()
	assert.Equal(t, model.SessionAwaitingStartResponse, s.State)
	assert.False(t, s.Responded)
	assert.False(t, h.prefs.GetBool(model.NSDriving, model.KeyRespondedToStart, true))
}

func TestDriveStartFromManufacturerName(t *testing.T) {
	h := setup(t, DefaultConfig())
	effects := h.handle(t, EventBluetoothConnected, "My TOYOTA Camry", monday)
	assert.NotEmpty(t, effects)
	assert.True(t, h.tracker.IsDriving())
}

func TestCarModeStartsDrive(t *testing.T) {
	h := setup(t, DefaultConfig())
	effects := h.handle(t, EventCarModeEntered, "", monday)
	assert.Len(t, effects, 5)
	assert.True(t, h.tracker.IsDriving())
}

func TestStartNotificationSilentAndLocalized(t *testing.T) {
	h := setup(t, DefaultConfig())
	require.NoError(t, h.prefs.SetBool(model.NSMain, model.KeyEnableSound, false))
	require.NoError(t, h.prefs.SetString(model.NSMain, model.KeyLanguage, "es"))

	effects := h.handle(t, EventCarModeEntered, "", monday)
	show, ok := find(effects, EffectShowNotification)
	require.True(t, ok)
	assert.True(t, show.Notification.Silent)
	assert.Equal(t, "Conducción detectada", show.Notification.Title)
}

// =============================================================================
// Auto Response Tests
// =============================================================================

func TestAutoResponseDefaultYes(t *testing.T) {
	h := setup(t, DefaultConfig())
	h.handle(t, EventCarModeEntered, "", monday)

	effects := h.handle(t, EventAutoResponseTimer, "", monday.Add(10*time.Second))
	assert.Empty(t, effects)

	s := h.engine.Session()
	assert.False(t, s.Denied)
	assert.Equal(t, model.SessionIdle, s.State)
}

func TestAutoResponseDefaultNo(t *testing.T) {
	tests := []struct {
		name       string
		ruleStart  string
		ruleEnd    string
		wantDenied bool
	}{
		{"no_rules", "", "", true},
		{"inside_window", "09:00", "11:00", false},
		{"outside_window", "12:00", "13:00", true},
		{"overnight_window", "22:00", "10:30", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := setup(t, DefaultConfig())
			require.NoError(t, h.prefs.SetBool(model.NSMain, model.KeyDefaultYes, false))
			if tt.ruleStart != "" {
				_, err := h.rules.Add([]string{"Mon"}, tt.ruleStart, tt.ruleEnd)
				require.NoError(t, err)
			}

			h.handle(t, EventCarModeEntered, "", monday)
			h.handle(t, EventAutoResponseTimer, "", monday.Add(10*time.Second))

			s := h.engine.Session()
			assert.Equal(t, tt.wantDenied, s.Denied)
			assert.Equal(t, tt.wantDenied, h.prefs.GetBool(model.NSDriving, model.KeyUserDeniedSession, !tt.wantDenied))
		})
	}
}

func TestAutoResponseSkippedAfterAnswer(t *testing.T) {
	h := setup(t, DefaultConfig())
	require.NoError(t, h.prefs.SetBool(model.NSMain, model.KeyDefaultYes, false))
	h.handle(t, EventCarModeEntered, "", monday)
	h.handle(t, EventConfirm, "", monday.Add(2*time.Second))

	effects := h.handle(t, EventAutoResponseTimer, "", monday.Add(10*time.Second))
	assert.Empty(t, effects)
	assert.False(t, h.engine.Session().Denied)
}

func TestAutoResponseLeavesEndSessionRunning(t *testing.T) {
	h := setup(t, DefaultConfig())
	h.handle(t, EventCarModeEntered, "", monday)
	h.handle(t, EventCarModeExited, "", monday.Add(5*time.Second))

	h.handle(t, EventAutoResponseTimer, "", monday.Add(10*time.Second))
	s := h.engine.Session()
	assert.Equal(t, model.SessionAwaitingEndResponse, s.State)
	assert.Equal(t, 0, s.RepeatCount)
}

// =============================================================================
// Drive Stop and Escalation Tests
// =============================================================================

func TestDriveStopShowsEndNotification(t *testing.T) {
	h := setup(t, DefaultConfig())
	h.handle(t, EventCarModeEntered, "", monday)
	h.handle(t, EventAutoResponseTimer, "", monday.Add(10*time.Second))

	effects := h.handle(t, EventCarModeExited, "", monday.Add(time.Hour))
	assert.False(t, h.tracker.IsDriving())

	show, ok := find(effects, EffectShowNotification)
	require.True(t, ok)
	n := show.Notification
	assert.Equal(t, model.NotificationEndDriving, n.ID)
	assert.Equal(t, model.ChannelDriving, n.Channel)
	assert.True(t, n.Ongoing)
	assert.Equal(t, []model.Action{model.ActionConfirm}, n.Actions)

	timer, ok := find(effects, EffectScheduleTimer)
	require.True(t, ok)
	assert.Equal(t, TimerReminder, timer.Timer)
	assert.Equal(t, monday.Add(time.Hour+time.Minute), timer.At)
	assert.True(t, timer.Exact)

	s := h.engine.Session()
	assert.Equal(t, model.SessionAwaitingEndResponse, s.State)
	assert.Equal(t, 0, s.RepeatCount)
	assert.False(t, s.Responded)
}

func TestDriveStopAfterDenyIsQuiet(t *testing.T) {
	h := setup(t, DefaultConfig())
	h.handle(t, EventCarModeEntered, "", monday)
	deny := h.handle(t, EventDeny, "", monday.Add(3*time.Second))
	_, ok := find(deny, EffectSessionDenied)
	assert.True(t, ok)

	effects := h.handle(t, EventCarModeExited, "", monday.Add(time.Hour))
	assert.Equal(t, []EffectKind{EffectDrivingChanged}, kinds(effects))
	assert.Equal(t, model.SessionIdle, h.engine.Session().State)
}

func TestEscalationCapsAtMaxRepeats(t *testing.T) {
	h := setup(t, DefaultConfig())
	h.handle(t, EventCarModeEntered, "", monday)
	h.handle(t, EventAutoResponseTimer, "", monday.Add(10*time.Second))

	at := monday.Add(time.Hour)
	var shown []*model.Notification
	effects := h.handle(t, EventCarModeExited, "", at)
	shown = append(shown, Notifications(effects)...)

	for i := 1; i <= 10; i++ {
		at = at.Add(time.Minute)
		effects = h.handle(t, EventReminderTimer, "", at)
		shown = append(shown, Notifications(effects)...)
		_, scheduled := find(effects, EffectScheduleTimer)
		assert.Equal(t, i < 9, scheduled, "firing %d", i)
	}

	require.Len(t, shown, 10)
	for i, n := range shown[:9] {
		assert.Equal(t, model.ChannelDriving, n.Channel, "notification %d", i+1)
	}
	assert.Equal(t, model.ChannelEmergency, shown[9].Channel)
	assert.True(t, shown[9].IsEmergency())
	assert.Equal(t, model.ColorError, shown[9].Color)

	s := h.engine.Session()
	assert.Equal(t, 10, s.RepeatCount)
	assert.True(t, s.IsTerminal(10))

	effects = h.handle(t, EventReminderTimer, "", at.Add(time.Minute))
	assert.Empty(t, effects)
	assert.Equal(t, 10, h.engine.Session().RepeatCount)
}

func TestEscalationInitialResetsCount(t *testing.T) {
	h := setup(t, DefaultConfig())
	require.NoError(t, h.prefs.SetInt(model.NSReminder, model.KeyRepeatCount, 7))

	h.handle(t, EventCarModeExited, "", monday)
	assert.Equal(t, 0, h.engine.Session().RepeatCount)
}

func TestInexactAlarmsPromptOnce(t *testing.T) {
	cfg := DefaultConfig()
	cfg.ExactAlarms = false
	h := setup(t, cfg)

	effects := h.handle(t, EventCarModeExited, "", monday)
	timer, ok := find(effects, EffectScheduleTimer)
	require.True(t, ok)
	assert.False(t, timer.Exact)

	shown := Notifications(effects)
	require.Len(t, shown, 2)
	assert.Equal(t, model.NotificationPermission, shown[1].ID)
	assert.True(t, h.prefs.GetBool(model.NSReminder, model.KeyExactAlarmPrompted, false))

	effects = h.handle(t, EventReminderTimer, "", monday.Add(time.Minute))
	assert.Len(t, Notifications(effects), 1)
}

func TestStaleReminderTimerIgnored(t *testing.T) {
	h := setup(t, DefaultConfig())
	effects := h.handle(t, EventReminderTimer, "", monday)
	assert.Empty(t, effects)
	assert.Equal(t, model.SessionIdle, h.engine.Session().State)
}

// =============================================================================
// User Action Tests
// =============================================================================

func TestConfirmStopsReminders(t *testing.T) {
	h := setup(t, DefaultConfig())
	h.handle(t, EventCarModeExited, "", monday)
	h.handle(t, EventReminderTimer, "", monday.Add(time.Minute))

	effects := h.handle(t, EventConfirm, "", monday.Add(90*time.Second))
	assert.Equal(t, []EffectKind{
		EffectCancelTimer,
		EffectCancelTimer,
		EffectCancelNotification,
		EffectCancelNotification,
	}, kinds(effects))

	s := h.engine.Session()
	assert.Equal(t, model.SessionIdle, s.State)
	assert.True(t, s.Responded)
	assert.False(t, s.Denied)
	assert.Equal(t, 10, s.RepeatCount)
	assert.Equal(t, 10, h.prefs.GetInt(model.NSReminder, model.KeyRepeatCount, 0))

	assert.Empty(t, h.handle(t, EventReminderTimer, "", monday.Add(2*time.Minute)))
}

func TestDenyDuringEndSessionKeepsReminding(t *testing.T) {
	h := setup(t, DefaultConfig())
	h.handle(t, EventCarModeExited, "", monday)

	h.handle(t, EventDeny, "", monday.Add(10*time.Second))
	s := h.engine.Session()
	assert.Equal(t, model.SessionAwaitingEndResponse, s.State)
	assert.True(t, s.Denied)

	effects := h.handle(t, EventReminderTimer, "", monday.Add(time.Minute))
	assert.Len(t, Notifications(effects), 1)
}

// =============================================================================
// Boot and Restore Tests
// =============================================================================

func TestBootResetsSession(t *testing.T) {
	h := setup(t, DefaultConfig())
	h.handle(t, EventCarModeEntered, "", monday)
	h.handle(t, EventDeny, "", monday.Add(time.Second))

	effects := h.handle(t, EventBootCompleted, "", monday.Add(time.Hour))
	assert.Equal(t, EffectDrivingChanged, effects[0].Kind)
	assert.False(t, h.tracker.IsDriving())

	s := h.engine.Session()
	assert.Equal(t, model.SessionIdle, s.State)
	assert.False(t, s.Responded)
	assert.False(t, s.Denied)
}

func TestRestore(t *testing.T) {
	h := setup(t, DefaultConfig())
	assert.Empty(t, h.engine.Restore(monday))

	h.handle(t, EventCarModeEntered, "", monday)
	effects := h.engine.Restore(monday.Add(time.Hour))
	require.Len(t, effects, 1)
	assert.Equal(t, TimerAutoResponse, effects[0].Timer)
	assert.Equal(t, monday.Add(time.Hour+10*time.Second), effects[0].At)

	h.handle(t, EventAutoResponseTimer, "", monday.Add(time.Hour))
	h.handle(t, EventCarModeExited, "", monday.Add(2*time.Hour))
	effects = h.engine.Restore(monday.Add(3 * time.Hour))
	require.Len(t, effects, 1)
	assert.Equal(t, TimerReminder, effects[0].Timer)
}

func TestLoadSessionFromLegacyFlags(t *testing.T) {
	h := setup(t, DefaultConfig())
	require.NoError(t, h.prefs.SetBool(model.NSDriving, model.KeyRespondedToStart, true))
	require.NoError(t, h.prefs.SetBool(model.NSDriving, model.KeyUserDeniedSession, true))
	require.NoError(t, h.prefs.SetInt(model.NSReminder, model.KeyRepeatCount, 4))

	s := LoadSession(h.prefs)
	assert.Equal(t, model.SessionIdle, s.State)
	assert.True(t, s.Responded)
	assert.True(t, s.Denied)
	assert.Equal(t, 4, s.RepeatCount)
}

func TestConfigFrom(t *testing.T) {
	rc := config.DefaultRuntimeConfig()
	cfg := ConfigFrom(rc)
	assert.Equal(t, DefaultConfig(), cfg)

	rc.Reminder.Interval = 0
	rc.Reminder.MaxRepeats = -1
	rc.Alarms.Exact = false
	cfg = ConfigFrom(rc)
	assert.Equal(t, time.Minute, cfg.Interval)
	assert.Equal(t, 10, cfg.MaxRepeats)
	assert.False(t, cfg.ExactAlarms)
}

func TestHandleEventRejectsUnknownKind(t *testing.T) {
	h := setup(t, DefaultConfig())
	_, err := h.engine.HandleEvent(context.Background(), Event{Kind: "warp"})
	assert.True(t, errors.Is(err, errors.ErrUnknownEvent))
}
