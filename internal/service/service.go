// Package service is the management surface shared by the CLI and the HTTP
// API. The daemon owns the database while it runs, so the CLI talks to it
// through Client; without a daemon the CLI opens the database and uses
// Service directly.
package service

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/manav03panchal/babyreminder/internal/alarm"
	"github.com/manav03panchal/babyreminder/internal/errors"
	"github.com/manav03panchal/babyreminder/internal/i18n"
	"github.com/manav03panchal/babyreminder/internal/model"
	"github.com/manav03panchal/babyreminder/internal/reminder"
)

// Backend is implemented by the in-process Service and the HTTP Client.
type Backend interface {
	Status(ctx context.Context) (*Status, error)

	Devices(ctx context.Context) ([]string, error)
	AddDevice(ctx context.Context, name string) error
	RemoveDevice(ctx context.Context, name string) error

	Rules(ctx context.Context) ([]model.ScheduleRule, error)
	AddRule(ctx context.Context, req RuleRequest) (model.ScheduleRule, error)
	DeleteRule(ctx context.Context, id string) (model.ScheduleRule, error)
	MigrateRules(ctx context.Context) (int, error)
	CheckWindow(ctx context.Context, at time.Time) (bool, error)

	Settings(ctx context.Context) (model.Settings, error)
	UpdateSettings(ctx context.Context, patch SettingsPatch) (model.Settings, error)

	Webhooks(ctx context.Context) ([]*model.Webhook, error)
	AddWebhook(ctx context.Context, req WebhookRequest) (*model.Webhook, error)
	RemoveWebhook(ctx context.Context, name string) error
	SetWebhookEnabled(ctx context.Context, name string, enabled bool) error
	TestWebhook(ctx context.Context, name string) (*TestResult, error)

	// Submit hands an event to the running daemon.
	Submit(ctx context.Context, ev reminder.Event) error
}

// Status is the combined view shown by `status`, `watch` and GET /status.
type Status struct {
	Driving      bool           `json:"driving"`
	Session      model.Session  `json:"session"`
	SessionLabel string         `json:"session_label"`
	MaxRepeats   int            `json:"max_repeats"`
	InWindow     bool           `json:"in_window"`
	Devices      []string       `json:"devices"`
	Rules        int            `json:"rules"`
	Webhooks     int            `json:"webhooks"`
	Settings     model.Settings `json:"settings"`
	Timers       []alarm.Timer  `json:"timers,omitempty"`
	RetryQueue   int            `json:"retry_queue"`
	Daemon       bool           `json:"daemon"`
	CheckedAt    time.Time      `json:"checked_at"`
}

// RuleRequest adds a schedule rule. Start and End are canonical HH:mm.
type RuleRequest struct {
	Days  []string `json:"days"`
	Start string   `json:"start"`
	End   string   `json:"end"`
}

// SettingsPatch changes the settings whose fields are set.
type SettingsPatch struct {
	EnableSound *bool   `json:"enable_sound,omitempty"`
	DefaultYes  *bool   `json:"default_yes,omitempty"`
	Language    *string `json:"language,omitempty"`
}

// IsEmpty reports whether the patch changes nothing.
func (p SettingsPatch) IsEmpty() bool {
	return p.EnableSound == nil && p.DefaultYes == nil && p.Language == nil
}

// Apply returns s with the patch applied.
func (p SettingsPatch) Apply(s model.Settings) model.Settings {
	if p.EnableSound != nil {
		s.EnableSound = *p.EnableSound
	}
	if p.DefaultYes != nil {
		s.DefaultYes = *p.DefaultYes
	}
	if p.Language != nil {
		s.Language = *p.Language
	}
	return s
}

// SettingNames lists the keys accepted by ParseSetting.
var SettingNames = []string{"sound", "default_yes", "language"}

// ParseSetting builds a patch from a `settings set <key> <value>` pair.
func ParseSetting(key, value string) (SettingsPatch, error) {
	var p SettingsPatch
	switch strings.ToLower(strings.ReplaceAll(key, "-", "_")) {
	case "sound", "enable_sound":
		b, err := parseBool(value)
		if err != nil {
			return p, errors.NewUserErrorWithField("sound", value, "Invalid value for sound", "Use on or off")
		}
		p.EnableSound = &b
	case "default_yes", "default":
		b, err := parseBool(value)
		if err != nil {
			return p, errors.NewUserErrorWithField("default_yes", value, "Invalid value for default_yes", "Use yes or no")
		}
		p.DefaultYes = &b
	case "language", "lang":
		lang := strings.TrimSpace(value)
		if strings.EqualFold(lang, "system") {
			lang = ""
		}
		if lang != "" && !i18n.IsSupported(lang) {
			return p, errors.NewUserErrorWithField("language", value, "Unsupported language",
				"Use one of "+strings.Join(i18n.Supported(), ", ")+" or system")
		}
		p.Language = &lang
	default:
		return p, &errors.UserError{
			Message:    "Unknown setting",
			Field:      "setting",
			Value:      key,
			Suggestion: "Settings are " + strings.Join(SettingNames, ", "),
			Cause:      errors.ErrUnknownSetting,
		}
	}
	return p, nil
}

func parseBool(s string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "on", "yes", "y", "enable", "enabled":
		return true, nil
	case "off", "no", "n", "disable", "disabled":
		return false, nil
	}
	return strconv.ParseBool(s)
}

// WebhookRequest adds a webhook.
type WebhookRequest struct {
	Name          string `json:"name"`
	Type          string `json:"type,omitempty"`
	URL           string `json:"url"`
	EmergencyOnly bool   `json:"emergency_only,omitempty"`
	Mention       bool   `json:"mention,omitempty"`
	Template      string `json:"template,omitempty"`
	AllowInternal bool   `json:"allow_internal,omitempty"`
}

// TestResult is the outcome of a test delivery.
type TestResult struct {
	Webhook    string `json:"webhook"`
	Success    bool   `json:"success"`
	StatusCode int    `json:"status_code,omitempty"`
	DurationMs int64  `json:"duration_ms"`
	Error      string `json:"error,omitempty"`
}

// codes maps sentinel errors to stable API error codes.
var codes = map[string]error{
	"invalid_time":       errors.ErrInvalidTime,
	"invalid_day":        errors.ErrInvalidDay,
	"no_days":            errors.ErrNoDays,
	"malformed_rule":     errors.ErrMalformedRule,
	"rule_not_found":     errors.ErrRuleNotFound,
	"ambiguous_rule":     errors.ErrAmbiguousRule,
	"device_not_found":   errors.ErrDeviceNotFound,
	"empty_device_name":  errors.ErrEmptyDeviceName,
	"webhook_not_found":  errors.ErrWebhookNotFound,
	"invalid_url":        errors.ErrInvalidURL,
	"unknown_event":      errors.ErrUnknownEvent,
	"unknown_action":     errors.ErrUnknownAction,
	"unknown_setting":    errors.ErrUnknownSetting,
	"daemon_not_running": errors.ErrDaemonNotRunning,
}

// Code returns the API error code of err, or "" for unclassified errors.
func Code(err error) string {
	for code, sentinel := range codes {
		if errors.Is(err, sentinel) {
			return code
		}
	}
	return ""
}

// Sentinel returns the sentinel error for an API error code.
func Sentinel(code string) error {
	return codes[code]
}
