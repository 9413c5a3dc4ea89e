// Package model defines the domain models for babyreminder.
package model

// Model is the interface that all database models must implement.
type Model interface {
	// SetKey sets the database key for this model.
	SetKey(key string)
	// GetKey returns the database key for this model.
	GetKey() string
}

// Preference namespaces. Each groups the keys of one logical domain.
const (
	NSDriving  = "driving_prefs"
	NSDevices  = "bluetooth_devices_prefs"
	NSMain     = "main_prefs"
	NSReminder = "reminder_prefs"
	NSSchedule = "schedule_prefs"
	NSSystem   = "system_prefs"
)

// Preference keys.
const (
	KeyRespondedToStart   = "responded_to_start"
	KeyUserDeniedSession  = "user_denied_session"
	KeyIsDrivingPhysical  = "is_driving_physical"
	KeySession            = "session"
	KeyDeviceNames        = "device_names"
	KeyEnableSound        = "enable_sound"
	KeyDefaultYes         = "default_yes"
	KeyLanguage           = "language"
	KeyRepeatCount        = "repeat_count"
	KeyExactAlarmPrompted = "exact_alarm_prompted"
	KeyRules              = "rules"
	KeyBootID             = "boot_id"
)

// PrefixPref is the database key prefix for preference entries.
const PrefixPref = "pref"
