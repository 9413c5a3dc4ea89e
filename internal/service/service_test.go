package service

import (
	"context"
	"testing"
	"time"

	"github.com/manav03panchal/babyreminder/internal/alarm"
	"github.com/manav03panchal/babyreminder/internal/errors"
	"github.com/manav03panchal/babyreminder/internal/model"
	"github.com/manav03panchal/babyreminder/internal/reminder"
	"github.com/manav03panchal/babyreminder/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// friday is 2026-10-16 08:00 local.
var friday = time.Date(2026, 10, 16, 8, 0, 0, 0, time.Local)

func setupService(t *testing.T) *Service {
	t.Helper()
	db, err := storage.Open(storage.Options{InMemory: true})
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewLocal(db).WithClock(func() time.Time { return friday })
}

// =============================================================================
// Status Tests
// =============================================================================

func TestStatusDefaults(t *testing.T) {
	svc := setupService(t)

	st, err := svc.Status(context.Background())
	require.NoError(t, err)

	assert.False(t, st.Driving)
	assert.Equal(t, model.SessionIdle, st.Session.State)
	assert.Equal(t, model.DefaultMaxRepeats, st.MaxRepeats)
	assert.False(t, st.InWindow)
	assert.NotNil(t, st.Devices)
	assert.Empty(t, st.Devices)
	assert.Zero(t, st.Rules)
	assert.False(t, st.Daemon)
	assert.Equal(t, friday, st.CheckedAt)
	assert.Nil(t, st.Timers)
}

func TestStatusWithDaemonHooks(t *testing.T) {
	timers := []alarm.Timer{{ID: reminder.TimerReminder, At: friday.Add(time.Minute)}}
	svc := setupService(t).
		WithSubmitter(func(context.Context, reminder.Event) error { return nil }).
		WithTimers(func() []alarm.Timer { return timers }).
		WithRetries(func() int { return 3 }).
		WithMaxRepeats(5)

	ctx := context.Background()
	_, err := svc.AddRule(ctx, RuleRequest{Days: []string{"Fri"}, Start: "07:30", End: "09:00"})
	require.NoError(t, err)

	st, err := svc.Status(ctx)
	require.NoError(t, err)
	assert.True(t, st.Daemon)
	assert.True(t, st.InWindow)
	assert.Equal(t, 1, st.Rules)
	assert.Equal(t, 5, st.MaxRepeats)
	assert.Equal(t, 3, st.RetryQueue)
	assert.Equal(t, timers, st.Timers)
}

func TestWithMaxRepeatsIgnoresNonPositive(t *testing.T) {
	svc := setupService(t).WithMaxRepeats(0)
	assert.Equal(t, model.DefaultMaxRepeats, svc.maxRepeats)
}

// =============================================================================
// Device Tests
// =============================================================================

func TestDevices(t *testing.T) {
	svc := setupService(t)
	ctx := context.Background()

	require.NoError(t, svc.AddDevice(ctx, "  My Toyota\x00 "))
	require.NoError(t, svc.AddDevice(ctx, "Car Audio"))

	devices, err := svc.Devices(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Car Audio", "My Toyota"}, devices)

	require.NoError(t, svc.RemoveDevice(ctx, " My Toyota "))
	devices, err = svc.Devices(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Car Audio"}, devices)
}

func TestDeviceErrors(t *testing.T) {
	svc := setupService(t)
	ctx := context.Background()

	err := svc.AddDevice(ctx, "   ")
	require.Error(t, err)
	assert.True(t, errors.IsUserError(err))

	err = svc.RemoveDevice(ctx, "Unknown")
	assert.ErrorIs(t, err, errors.ErrDeviceNotFound)
}

// =============================================================================
// Rule Tests
// =============================================================================

func TestRules(t *testing.T) {
	svc := setupService(t)
	ctx := context.Background()

	rule, err := svc.AddRule(ctx, RuleRequest{Days: []string{"Mon", "Fri"}, Start: "16:00", End: "18:00"})
	require.NoError(t, err)
	_, err = svc.AddRule(ctx, RuleRequest{Days: []string{"Sat"}, Start: "07:00", End: "08:00"})
	require.NoError(t, err)

	rules, err := svc.Rules(ctx)
	require.NoError(t, err)
	require.Len(t, rules, 2)
	assert.Equal(t, "07:00", rules[0].StartTime, "rules are sorted by start time")

	in, err := svc.CheckWindow(ctx, friday.Add(9*time.Hour))
	require.NoError(t, err)
	assert.True(t, in)

	in, err = svc.CheckWindow(ctx, time.Time{})
	require.NoError(t, err)
	assert.False(t, in, "a zero time checks the service clock")

	deleted, err := svc.DeleteRule(ctx, rule.ID)
	require.NoError(t, err)
	assert.Equal(t, rule.ID, deleted.ID)

	_, err = svc.DeleteRule(ctx, rule.ID)
	assert.ErrorIs(t, err, errors.ErrRuleNotFound)
}

func TestAddRuleRequiresDays(t *testing.T) {
	svc := setupService(t)
	_, err := svc.AddRule(context.Background(), RuleRequest{Start: "07:00", End: "08:00"})
	assert.ErrorIs(t, err, errors.ErrNoDays)
}

// =============================================================================
// Settings Tests
// =============================================================================

func TestUpdateSettings(t *testing.T) {
	svc := setupService(t)
	ctx := context.Background()

	patch, err := ParseSetting("default_yes", "no")
	require.NoError(t, err)
	settings, err := svc.UpdateSettings(ctx, patch)
	require.NoError(t, err)
	assert.False(t, settings.DefaultYes)
	assert.True(t, settings.EnableSound, "untouched settings keep their value")

	got, err := svc.Settings(ctx)
	require.NoError(t, err)
	assert.Equal(t, settings, got)
}

func TestParseSetting(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
		check func(t *testing.T, p SettingsPatch)
	}{
		{"sound_off", "sound", "off", func(t *testing.T, p SettingsPatch) {
			require.NotNil(t, p.EnableSound)
			assert.False(t, *p.EnableSound)
		}},
		{"enable_sound_dash", "enable-sound", "yes", func(t *testing.T, p SettingsPatch) {
			require.NotNil(t, p.EnableSound)
			assert.True(t, *p.EnableSound)
		}},
		{"default_true", "default", "true", func(t *testing.T, p SettingsPatch) {
			require.NotNil(t, p.DefaultYes)
			assert.True(t, *p.DefaultYes)
		}},
		{"language", "lang", "es", func(t *testing.T, p SettingsPatch) {
			require.NotNil(t, p.Language)
			assert.Equal(t, "es", *p.Language)
		}},
		{"language_system", "language", "System", func(t *testing.T, p SettingsPatch) {
			require.NotNil(t, p.Language)
			assert.Empty(t, *p.Language)
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := ParseSetting(tt.key, tt.value)
			require.NoError(t, err)
			assert.False(t, p.IsEmpty())
			tt.check(t, p)
		})
	}
}

func TestParseSettingErrors(t *testing.T) {
	_, err := ParseSetting("sound", "maybe")
	assert.True(t, errors.IsUserError(err))

	_, err = ParseSetting("language", "xx")
	assert.True(t, errors.IsUserError(err))

	_, err = ParseSetting("volume", "11")
	assert.ErrorIs(t, err, errors.ErrUnknownSetting)
}

func TestSettingsPatchApply(t *testing.T) {
	assert.True(t, SettingsPatch{}.IsEmpty())

	lang := "es"
	off := false
	got := SettingsPatch{Language: &lang, EnableSound: &off}.Apply(model.DefaultSettings())
	assert.Equal(t, "es", got.Language)
	assert.False(t, got.EnableSound)
	assert.True(t, got.DefaultYes)
}

// =============================================================================
// Webhook Tests
// =============================================================================

func TestAddWebhook(t *testing.T) {
	svc := setupService(t)
	ctx := context.Background()

	wh, err := svc.AddWebhook(ctx, WebhookRequest{
		Name:          "family",
		URL:           "https://discord.com/api/webhooks/123/abc",
		EmergencyOnly: true,
	})
	require.NoError(t, err)
	assert.Equal(t, model.WebhookTypeDiscord, wh.Type)
	assert.True(t, wh.EmergencyOnly)
	assert.True(t, wh.Enabled)

	_, err = svc.AddWebhook(ctx, WebhookRequest{Name: "family", URL: "https://example.com/hook"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")

	require.NoError(t, svc.SetWebhookEnabled(ctx, "family", false))
	hooks, err := svc.Webhooks(ctx)
	require.NoError(t, err)
	require.Len(t, hooks, 1)
	assert.False(t, hooks[0].Enabled)

	require.NoError(t, svc.RemoveWebhook(ctx, "family"))
	assert.ErrorIs(t, svc.RemoveWebhook(ctx, "family"), errors.ErrWebhookNotFound)
}

func TestAddWebhookValidation(t *testing.T) {
	tests := []struct {
		name string
		req  WebhookRequest
	}{
		{"bad_name", WebhookRequest{Name: "-bad", URL: "https://example.com/hook"}},
		{"bad_url", WebhookRequest{Name: "ok", URL: "ftp://example.com"}},
		{"internal_url", WebhookRequest{Name: "ok", URL: "https://192.168.1.10/hook"}},
		{"bad_type", WebhookRequest{Name: "ok", URL: "https://example.com/hook", Type: "pager"}},
		{"template_on_slack", WebhookRequest{Name: "ok", URL: "https://hooks.slack.com/services/x", Template: `{"t":"{{.Title}}"}`}},
		{"broken_template", WebhookRequest{Name: "ok", URL: "https://example.com/hook", Template: `{{.Title`}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := setupService(t)
			_, err := svc.AddWebhook(context.Background(), tt.req)
			assert.Error(t, err)
		})
	}
}

func TestAddWebhookAllowInternal(t *testing.T) {
	svc := setupService(t)
	wh, err := svc.AddWebhook(context.Background(), WebhookRequest{
		Name:          "local",
		URL:           "http://127.0.0.1:8080/hook",
		Template:      "{\"t\":\"{{.Title}}\"\x07}",
		AllowInternal: true,
	})
	require.NoError(t, err)
	assert.Equal(t, model.WebhookTypeGeneric, wh.Type)
	assert.Equal(t, `{"t":"{{.Title}}"}`, wh.Template)
}

func TestTestWebhookUnknown(t *testing.T) {
	svc := setupService(t)
	_, err := svc.TestWebhook(context.Background(), "missing")
	assert.ErrorIs(t, err, errors.ErrWebhookNotFound)
}

// =============================================================================
// Submit Tests
// =============================================================================

func TestSubmit(t *testing.T) {
	t.Run("without_daemon", func(t *testing.T) {
		svc := setupService(t)
		err := svc.Submit(context.Background(), reminder.Event{Kind: reminder.EventConfirm})
		assert.ErrorIs(t, err, errors.ErrDaemonNotRunning)
		assert.True(t, errors.IsUserError(err))
	})

	t.Run("invalid_event", func(t *testing.T) {
		called := false
		svc := setupService(t).WithSubmitter(func(context.Context, reminder.Event) error {
			called = true
			return nil
		})
		err := svc.Submit(context.Background(), reminder.Event{Kind: reminder.EventBluetoothConnected})
		assert.Error(t, err)
		assert.False(t, called)
	})

	t.Run("forwards", func(t *testing.T) {
		var got reminder.Event
		svc := setupService(t).WithSubmitter(func(_ context.Context, ev reminder.Event) error {
			got = ev
			return nil
		})
		ev := reminder.Event{Kind: reminder.EventBluetoothDisconnected, Device: "My Toyota", At: friday}
		require.NoError(t, svc.Submit(context.Background(), ev))
		assert.Equal(t, ev, got)
	})
}

// =============================================================================
// Error Code Tests
// =============================================================================

func TestCodeRoundTrip(t *testing.T) {
	for code, sentinel := range codes {
		assert.Equal(t, code, Code(errors.Wrap(sentinel, "context")))
		assert.Same(t, sentinel, Sentinel(code))
	}
	assert.Empty(t, Code(errors.New("plain")))
	assert.Nil(t, Sentinel("nope"))
}
