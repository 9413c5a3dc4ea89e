package service

import (
	"context"
	"time"

	"github.com/manav03panchal/babyreminder/internal/alarm"
	"github.com/manav03panchal/babyreminder/internal/driving"
	"github.com/manav03panchal/babyreminder/internal/errors"
	"github.com/manav03panchal/babyreminder/internal/logging"
	"github.com/manav03panchal/babyreminder/internal/model"
	"github.com/manav03panchal/babyreminder/internal/notify"
	"github.com/manav03panchal/babyreminder/internal/reminder"
	"github.com/manav03panchal/babyreminder/internal/schedule"
	"github.com/manav03panchal/babyreminder/internal/storage"
	"github.com/manav03panchal/babyreminder/internal/validate"
)

// Service implements Backend on top of an open database.
type Service struct {
	prefs      storage.Store
	tracker    *driving.Tracker
	rules      *schedule.Store
	webhooks   *storage.WebhookRepo
	dispatcher *notify.Dispatcher
	maxRepeats int

	submit  func(context.Context, reminder.Event) error
	timers  func() []alarm.Timer
	retries func() int
	now     func() time.Time
}

// New creates a service over components that may be shared with the
// daemon.
func New(prefs storage.Store, tracker *driving.Tracker, rules *schedule.Store, webhooks *storage.WebhookRepo, dispatcher *notify.Dispatcher) *Service {
	return &Service{
		prefs:      prefs,
		tracker:    tracker,
		rules:      rules,
		webhooks:   webhooks,
		dispatcher: dispatcher,
		maxRepeats: model.DefaultMaxRepeats,
		now:        time.Now,
	}
}

// NewLocal creates a standalone service over db, used when no daemon runs.
func NewLocal(db *storage.DB) *Service {
	prefs := storage.NewPrefs(db)
	webhooks := storage.NewWebhookRepo(db)
	return New(prefs, driving.NewTracker(prefs), schedule.NewStore(prefs), webhooks, notify.NewDispatcher(webhooks))
}

// WithSubmitter routes Submit to the daemon event loop.
func (s *Service) WithSubmitter(fn func(context.Context, reminder.Event) error) *Service {
	s.submit = fn
	return s
}

// WithTimers reports pending timers in Status.
func (s *Service) WithTimers(fn func() []alarm.Timer) *Service {
	s.timers = fn
	return s
}

// WithRetries reports the webhook retry backlog in Status.
func (s *Service) WithRetries(fn func() int) *Service {
	s.retries = fn
	return s
}

// WithMaxRepeats sets the repeat cap shown in Status.
func (s *Service) WithMaxRepeats(n int) *Service {
	if n > 0 {
		s.maxRepeats = n
	}
	return s
}

// WithClock replaces the clock used for the schedule window.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// Status implements Backend.
func (s *Service) Status(_ context.Context) (*Status, error) {
	now := s.now()
	session := reminder.LoadSession(s.prefs)
	st := &Status{
		Driving:      s.tracker.IsDriving(),
		Session:      *session,
		SessionLabel: session.Label(s.maxRepeats),
		MaxRepeats:   s.maxRepeats,
		InWindow:     s.rules.InWindow(now),
		Devices:      s.tracker.Devices(),
		Rules:        len(s.rules.Rules()),
		Settings:     reminder.LoadSettings(s.prefs),
		Daemon:       s.submit != nil,
		CheckedAt:    now,
	}
	if st.Devices == nil {
		st.Devices = []string{}
	}
	if hooks, err := s.webhooks.List(); err == nil {
		st.Webhooks = len(hooks)
	} else {
		logging.Warn("failed to count webhooks", logging.KeyError, err)
	}
	if s.timers != nil {
		st.Timers = s.timers()
	}
	if s.retries != nil {
		st.RetryQueue = s.retries()
	}
	return st, nil
}

// Devices implements Backend.
func (s *Service) Devices(_ context.Context) ([]string, error) {
	return s.tracker.Devices(), nil
}

// AddDevice implements Backend.
func (s *Service) AddDevice(_ context.Context, name string) error {
	name = validate.SanitizeDeviceName(name)
	if err := validate.DeviceName(name); err != nil {
		return err
	}
	return s.tracker.AddDevice(name)
}

// RemoveDevice implements Backend.
func (s *Service) RemoveDevice(_ context.Context, name string) error {
	return s.tracker.RemoveDevice(validate.SanitizeDeviceName(name))
}

// Rules implements Backend. Rules are sorted by start time.
func (s *Service) Rules(_ context.Context) ([]model.ScheduleRule, error) {
	return s.rules.List(), nil
}

// AddRule implements Backend.
func (s *Service) AddRule(_ context.Context, req RuleRequest) (model.ScheduleRule, error) {
	return s.rules.Add(req.Days, req.Start, req.End)
}

// DeleteRule implements Backend.
func (s *Service) DeleteRule(_ context.Context, id string) (model.ScheduleRule, error) {
	return s.rules.Delete(id)
}

// MigrateRules implements Backend.
func (s *Service) MigrateRules(_ context.Context) (int, error) {
	return s.rules.MigrateLegacy()
}

// CheckWindow implements Backend. A zero time means now.
func (s *Service) CheckWindow(_ context.Context, at time.Time) (bool, error) {
	if at.IsZero() {
		at = s.now()
	}
	return s.rules.InWindow(at), nil
}

// Settings implements Backend.
func (s *Service) Settings(_ context.Context) (model.Settings, error) {
	return reminder.LoadSettings(s.prefs), nil
}

// UpdateSettings implements Backend.
func (s *Service) UpdateSettings(_ context.Context, patch SettingsPatch) (model.Settings, error) {
	var errs []error
	if patch.EnableSound != nil {
		errs = append(errs, s.prefs.SetBool(model.NSMain, model.KeyEnableSound, *patch.EnableSound))
	}
	if patch.DefaultYes != nil {
		errs = append(errs, s.prefs.SetBool(model.NSMain, model.KeyDefaultYes, *patch.DefaultYes))
	}
	if patch.Language != nil {
		errs = append(errs, s.prefs.SetString(model.NSMain, model.KeyLanguage, *patch.Language))
	}
	if err := errors.Join(errs...); err != nil {
		return model.Settings{}, errors.Wrap(err, "saving settings")
	}
	settings := reminder.LoadSettings(s.prefs)
	logging.Info("settings updated",
		"enable_sound", settings.EnableSound,
		"default_yes", settings.DefaultYes,
		"language", settings.Language)
	return settings, nil
}

// Webhooks implements Backend.
func (s *Service) Webhooks(_ context.Context) ([]*model.Webhook, error) {
	return s.webhooks.List()
}

// AddWebhook implements Backend.
func (s *Service) AddWebhook(_ context.Context, req WebhookRequest) (*model.Webhook, error) {
	if err := validate.WebhookName(req.Name); err != nil {
		return nil, err
	}
	if err := validate.URL(req.URL, req.AllowInternal); err != nil {
		return nil, err
	}
	whType := req.Type
	if whType == "" {
		whType = model.DetectWebhookType(req.URL)
	}
	if !model.IsValidWebhookType(whType) {
		return nil, errors.NewUserErrorWithField("type", whType, "Invalid webhook type",
			"Use one of discord, slack, teams, generic")
	}
	req.Template = validate.StripControlChars(req.Template)
	if req.Template != "" && whType != model.WebhookTypeGeneric {
		return nil, errors.NewUserError("Templates are only used by generic webhooks",
			"Drop --template or use --type generic")
	}
	if err := validate.Template(req.Template, notify.TemplateFuncs); err != nil {
		return nil, err
	}

	exists, err := s.webhooks.Exists(req.Name)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, errors.NewUserErrorWithField("name", req.Name, "Webhook already exists",
			"Remove it first or pick another name")
	}

	wh := model.NewWebhook(req.Name, whType, req.URL)
	wh.EmergencyOnly = req.EmergencyOnly
	wh.Mention = req.Mention
	wh.Template = req.Template
	if err := s.webhooks.Create(wh); err != nil {
		return nil, errors.Wrap(err, "saving webhook")
	}
	logging.Info("webhook added", logging.KeyWebhook, wh.Name, "type", wh.Type)
	return wh, nil
}

// RemoveWebhook implements Backend.
func (s *Service) RemoveWebhook(_ context.Context, name string) error {
	if err := s.requireWebhook(name); err != nil {
		return err
	}
	return s.webhooks.Delete(name)
}

// SetWebhookEnabled implements Backend.
func (s *Service) SetWebhookEnabled(_ context.Context, name string, enabled bool) error {
	if err := s.requireWebhook(name); err != nil {
		return err
	}
	return s.webhooks.SetEnabled(name, enabled)
}

// TestWebhook implements Backend.
func (s *Service) TestWebhook(ctx context.Context, name string) (*TestResult, error) {
	if err := s.requireWebhook(name); err != nil {
		return nil, err
	}
	r := s.dispatcher.TestWebhook(ctx, name)
	res := &TestResult{
		Webhook:    r.WebhookName,
		Success:    r.Success,
		StatusCode: r.StatusCode,
		DurationMs: r.Duration.Milliseconds(),
	}
	if r.Error != nil {
		res.Error = r.Error.Error()
	}
	return res, nil
}

func (s *Service) requireWebhook(name string) error {
	exists, err := s.webhooks.Exists(name)
	if err != nil {
		return err
	}
	if !exists {
		return errors.InvalidInput(errors.ErrWebhookNotFound, "name", name)
	}
	return nil
}

// Submit implements Backend.
func (s *Service) Submit(ctx context.Context, ev reminder.Event) error {
	if err := ev.Validate(); err != nil {
		return err
	}
	if s.submit == nil {
		return &errors.UserError{
			Message:    "The daemon is not running",
			Suggestion: "Start it with 'babyreminder daemon start'",
			Cause:      errors.ErrDaemonNotRunning,
		}
	}
	return s.submit(ctx, ev)
}
