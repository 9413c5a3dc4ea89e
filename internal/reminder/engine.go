package reminder

import (
	"context"
	"time"

	"github.com/manav03panchal/babyreminder/internal/config"
	"github.com/manav03panchal/babyreminder/internal/driving"
	"github.com/manav03panchal/babyreminder/internal/errors"
	"github.com/manav03panchal/babyreminder/internal/i18n"
	"github.com/manav03panchal/babyreminder/internal/logging"
	"github.com/manav03panchal/babyreminder/internal/model"
	"github.com/manav03panchal/babyreminder/internal/schedule"
	"github.com/manav03panchal/babyreminder/internal/storage"
)

// RuleSource supplies the schedule rules consulted by the default answer.
type RuleSource interface {
	Rules() []model.ScheduleRule
}

// Config holds the engine timings.
type Config struct {
	AutoResponseDelay time.Duration
	Interval          time.Duration
	MaxRepeats        int
	ExactAlarms       bool
}

// DefaultConfig returns the stock timings: 10s auto response, a reminder
// every minute, ten reminders, exact alarms.
func DefaultConfig() Config {
	return Config{
		AutoResponseDelay: 10 * time.Second,
		Interval:          time.Minute,
		MaxRepeats:        model.DefaultMaxRepeats,
		ExactAlarms:       true,
	}
}

// ConfigFrom reads the engine timings from the runtime configuration.
func ConfigFrom(rc *config.RuntimeConfig) Config {
	cfg := Config{
		AutoResponseDelay: rc.Reminder.AutoResponseDelay,
		Interval:          rc.Reminder.Interval,
		MaxRepeats:        rc.Reminder.MaxRepeats,
		ExactAlarms:       rc.Alarms.Exact,
	}
	def := DefaultConfig()
	if cfg.AutoResponseDelay <= 0 {
		cfg.AutoResponseDelay = def.AutoResponseDelay
	}
	if cfg.Interval <= 0 {
		cfg.Interval = def.Interval
	}
	if cfg.MaxRepeats <= 0 {
		cfg.MaxRepeats = def.MaxRepeats
	}
	return cfg
}

// Engine is the event dispatcher. It is not safe for concurrent use; the
// daemon feeds it one event at a time.
type Engine struct {
	prefs     storage.Store
	tracker   *driving.Tracker
	rules     RuleSource
	cfg       Config
	escalator *Escalator
	now       func() time.Time
}

// NewEngine wires an engine to its collaborators.
func NewEngine(prefs storage.Store, tracker *driving.Tracker, rules RuleSource, cfg Config) *Engine {
	return &Engine{
		prefs:     prefs,
		tracker:   tracker,
		rules:     rules,
		cfg:       cfg,
		escalator: NewEscalator(prefs, cfg),
		now:       time.Now,
	}
}

// WithClock replaces the clock used for events without a timestamp.
func (e *Engine) WithClock(now func() time.Time) *Engine {
	e.now = now
	return e
}

// Config returns the engine timings.
func (e *Engine) Config() Config {
	return e.cfg
}

// Session returns a copy of the persisted session.
func (e *Engine) Session() model.Session {
	return *LoadSession(e.prefs)
}

// HandleEvent applies one event and returns the effects to perform, in
// order. Persistence failures are returned joined with the effects, which
// are still valid.
func (e *Engine) HandleEvent(ctx context.Context, ev Event) ([]Effect, error) {
	if err := ev.Validate(); err != nil {
		return nil, err
	}
	now := ev.At
	if now.IsZero() {
		now = e.now()
	}

	s := LoadSession(e.prefs)
	var effects []Effect
	var errs []error

	switch ev.Kind {
	case EventBluetoothConnected:
		if !e.tracker.IsCarDevice(ev.Device) {
			logging.DebugContext(ctx, "ignoring non-car device", logging.KeyDevice, ev.Device)
			return nil, nil
		}
		effects, errs = e.driveStart(s, now)
	case EventCarModeEntered:
		effects, errs = e.driveStart(s, now)
	case EventBluetoothDisconnected:
		if !e.tracker.IsCarDevice(ev.Device) {
			logging.DebugContext(ctx, "ignoring non-car device", logging.KeyDevice, ev.Device)
			return nil, nil
		}
		effects, errs = e.driveStop(s, now)
	case EventCarModeExited:
		effects, errs = e.driveStop(s, now)
	case EventAutoResponseTimer:
		if s.Responded {
			logging.DebugContext(ctx, "start already answered, auto response skipped")
			return nil, nil
		}
		e.applyDefaultAction(ctx, s, now)
	case EventReminderTimer:
		if s.State != model.SessionAwaitingEndResponse {
			logging.DebugContext(ctx, "stale reminder timer", logging.KeyState, s.String())
			return nil, nil
		}
		s.RepeatCount = min(s.RepeatCount+1, e.cfg.MaxRepeats)
		effects = e.escalator.ShowEndDrivingNotification(s, false, now)
		if len(effects) == 0 {
			logging.WarnContext(ctx, "reminders exhausted without confirmation",
				logging.KeyRepeatCount, s.RepeatCount)
		}
	case EventBootCompleted:
		effects, errs = e.boot(s)
	case EventConfirm:
		effects = e.confirm(s)
	case EventDeny:
		effects = e.deny(s)
	}

	errs = append(errs, SaveSession(e.prefs, s, now))

	logging.InfoContext(ctx, "event handled",
		logging.KeyEvent, ev.String(),
		logging.KeyState, s.String(),
		logging.KeyCount, len(effects))

	return effects, errors.Join(errs...)
}

func (e *Engine) driveStart(s *model.Session, now time.Time) ([]Effect, []error) {
	err := e.tracker.SetDrivingState(true)

	s.State = model.SessionAwaitingStartResponse
	s.Responded = false
	s.StartedAt = now

	settings := LoadSettings(e.prefs)
	tx := i18n.For(settings.Language)
	n := model.NewNotification(model.NotifyStartDriving, tx.StartTitle, tx.StartMessage)
	n.ID = model.NotificationStartDriving
	n.Silent = !settings.EnableSound
	n.Timestamp = now
	n.WithActions(model.ActionConfirm, model.ActionDeny)

	return []Effect{
		DrivingChanged(true),
		CancelTimer(TimerReminder),
		CancelNotification(model.NotificationEndDriving),
		ShowNotification(n),
		ScheduleTimer(TimerAutoResponse, now.Add(e.cfg.AutoResponseDelay), true),
	}, []error{err}
}

func (e *Engine) driveStop(s *model.Session, now time.Time) ([]Effect, []error) {
	err := e.tracker.SetDrivingState(false)
	s.Responded = false

	effects := []Effect{DrivingChanged(false)}
	if s.Denied {
		s.State = model.SessionIdle
		return effects, []error{err}
	}
	effects = append(effects, e.escalator.ShowEndDrivingNotification(s, true, now)...)
	return effects, []error{err}
}

// applyDefaultAction decides the answer the user did not give.
func (e *Engine) applyDefaultAction(ctx context.Context, s *model.Session, now time.Time) {
	defaultYes := LoadSettings(e.prefs).DefaultYes
	inWindow := false
	if !defaultYes && e.rules != nil {
		inWindow = schedule.IsWithinScheduledWindow(e.rules.Rules(), now)
	}
	final := defaultYes || inWindow
	s.Denied = !final
	if s.State == model.SessionAwaitingStartResponse {
		s.State = model.SessionIdle
	}
	logging.InfoContext(ctx, "default answer applied",
		"default_yes", defaultYes,
		"in_window", inWindow,
		"child_on_board", final)
}

func (e *Engine) boot(s *model.Session) ([]Effect, []error) {
	err := e.tracker.SetDrivingState(false)
	s.State = model.SessionIdle
	s.Responded = false
	s.Denied = false
	return []Effect{
		DrivingChanged(false),
		CancelTimer(TimerAutoResponse),
		CancelTimer(TimerReminder),
		CancelNotification(model.NotificationStartDriving),
		CancelNotification(model.NotificationEndDriving),
	}, []error{err}
}

func (e *Engine) confirm(s *model.Session) []Effect {
	s.State = model.SessionIdle
	s.Responded = true
	s.Denied = false
	s.RepeatCount = e.cfg.MaxRepeats
	return []Effect{
		CancelTimer(TimerAutoResponse),
		CancelTimer(TimerReminder),
		CancelNotification(model.NotificationStartDriving),
		CancelNotification(model.NotificationEndDriving),
	}
}

// deny ends the start question only. A running end-driving escalation is
// left alone; only a confirm stops it.
func (e *Engine) deny(s *model.Session) []Effect {
	s.Responded = true
	s.Denied = true
	if s.State == model.SessionAwaitingStartResponse {
		s.State = model.SessionIdle
	}
	return []Effect{
		CancelTimer(TimerAutoResponse),
		CancelNotification(model.NotificationStartDriving),
		SessionDenied(),
	}
}

// Restore re-arms the timers of a persisted session, used when the daemon
// starts without a reboot having happened.
func (e *Engine) Restore(now time.Time) []Effect {
	s := LoadSession(e.prefs)
	switch s.State {
	case model.SessionAwaitingStartResponse:
		if !s.Responded {
			return []Effect{ScheduleTimer(TimerAutoResponse, now.Add(e.cfg.AutoResponseDelay), true)}
		}
	case model.SessionAwaitingEndResponse:
		if s.RepeatCount < e.cfg.MaxRepeats-1 {
			return []Effect{ScheduleTimer(TimerReminder, now.Add(e.cfg.Interval), e.cfg.ExactAlarms)}
		}
	}
	return nil
}
