// Package config provides centralized configuration for babyreminder.
// Values come from defaults, an optional YAML file and BABYREMINDER_* environment variables.
package config

import (
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
)

// AppName is used for the config directory and the environment prefix.
const AppName = "babyreminder"

// RuntimeConfig holds all runtime configuration values.
type RuntimeConfig struct {
	Reminder   ReminderConfig   `mapstructure:"reminder"`
	Alarms     AlarmsConfig     `mapstructure:"alarms"`
	Daemon     DaemonConfig     `mapstructure:"daemon"`
	MQTT       MQTTConfig       `mapstructure:"mqtt"`
	API        APIConfig        `mapstructure:"api"`
	HTTP       HTTPConfig       `mapstructure:"http"`
	RetryQueue RetryQueueConfig `mapstructure:"retry_queue"`
	GPIO       GPIOConfig       `mapstructure:"gpio"`
	Database   DatabaseConfig   `mapstructure:"database"`
	Journal    JournalConfig    `mapstructure:"journal"`
	Log        LogConfig        `mapstructure:"log"`
}

// ReminderConfig controls the start and end driving notifications.
type ReminderConfig struct {
	// AutoResponseDelay is how long the start notification waits before the
	// default answer is applied.
	// Default: 10s
	AutoResponseDelay time.Duration `mapstructure:"auto_response_delay"`

	// Interval is the spacing between end-driving reminders.
	// Default: 60s
	Interval time.Duration `mapstructure:"interval"`

	// MaxRepeats caps the number of end-driving reminders.
	// Default: 10
	MaxRepeats int `mapstructure:"max_repeats"`
}

// AlarmsConfig holds timer scheduling configuration.
type AlarmsConfig struct {
	// Exact allows timers to fire at the exact second. When false, timers fire
	// at the next whole minute and the user is asked once to enable exact alarms.
	// Default: true
	Exact bool `mapstructure:"exact"`
}

// DaemonConfig holds daemon-related configuration.
type DaemonConfig struct {
	// StartupWait is the time to wait for the daemon to start before checking status.
	// Default: 500ms
	StartupWait time.Duration `mapstructure:"startup_wait"`

	// KillTimeout is the timeout for graceful shutdown before force kill.
	// Default: 5s
	KillTimeout time.Duration `mapstructure:"kill_timeout"`

	// BootIDPath is read on start to detect a reboot since the last run.
	// Default: /proc/sys/kernel/random/boot_id
	BootIDPath string `mapstructure:"boot_id_path"`
}

// MQTTConfig holds broker connection settings. An empty Broker disables MQTT.
type MQTTConfig struct {
	// Broker is the broker URL, e.g. tcp://localhost:1883.
	// Default: "" (disabled)
	Broker string `mapstructure:"broker"`

	// ClientID identifies this daemon to the broker.
	// Default: babyreminder
	ClientID string `mapstructure:"client_id"`

	// TopicPrefix is prepended to every topic.
	// Default: babyreminder
	TopicPrefix string `mapstructure:"topic_prefix"`

	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`

	// ConnectTimeout bounds the initial connection and each publish.
	// Default: 10s
	ConnectTimeout time.Duration `mapstructure:"connect_timeout"`
}

// APIConfig holds the status and action HTTP server settings.
type APIConfig struct {
	// Addr is the listen address. Empty disables the server.
	// Default: 127.0.0.1:8787
	Addr string `mapstructure:"addr"`
}

// HTTPConfig holds webhook HTTP client configuration.
type HTTPConfig struct {
	// Timeout is the default HTTP request timeout.
	// Default: 30s
	Timeout time.Duration `mapstructure:"timeout"`

	// MaxRetries is the maximum number of retry attempts.
	// Default: 3
	MaxRetries int `mapstructure:"max_retries"`

	// RetryDelays are the delays before each attempt.
	// Default: [0s, 5s, 30s]
	RetryDelays []time.Duration `mapstructure:"retry_delays"`
}

// RetryQueueConfig holds retry queue configuration.
type RetryQueueConfig struct {
	// CheckInterval is how often the queue checks for ready notifications.
	// Default: 30s
	CheckInterval time.Duration `mapstructure:"check_interval"`

	// BackoffSchedule is the backoff schedule for failed notifications.
	// Default: [5s, 30s, 2m, 5m, 15m]
	BackoffSchedule []time.Duration `mapstructure:"backoff_schedule"`
}

// GPIOConfig describes the optional ignition sense line.
type GPIOConfig struct {
	// Chip is the GPIO character device name.
	// Default: gpiochip0
	Chip string `mapstructure:"chip"`

	// IgnitionPin is the line offset. Negative disables the watcher.
	// Default: -1
	IgnitionPin int `mapstructure:"ignition_pin"`

	// ActiveLow inverts the line level.
	// Default: false
	ActiveLow bool `mapstructure:"active_low"`

	// PollInterval is how often the line is sampled.
	// Default: 200ms
	PollInterval time.Duration `mapstructure:"poll_interval"`

	// Debounce is how long a new level must hold before it counts.
	// Default: 1s
	Debounce time.Duration `mapstructure:"debounce"`
}

// DatabaseConfig holds preference database settings.
type DatabaseConfig struct {
	// Path is the Badger directory.
	// Default: $XDG_DATA_HOME/babyreminder/db
	Path string `mapstructure:"path"`
}

// JournalConfig holds event history settings.
type JournalConfig struct {
	// Path is the sqlite file.
	// Default: $XDG_DATA_HOME/babyreminder/journal.db
	Path string `mapstructure:"path"`
}

// LogConfig holds logger settings.
type LogConfig struct {
	// Level is one of debug, info, warn, error.
	// Default: info
	Level string `mapstructure:"level"`

	// JSON switches to JSON log lines.
	// Default: false
	JSON bool `mapstructure:"json"`
}

// DefaultRuntimeConfig returns the default runtime configuration.
func DefaultRuntimeConfig() *RuntimeConfig {
	return &RuntimeConfig{
		Reminder: ReminderConfig{
			AutoResponseDelay: 10 * time.Second,
			Interval:          60 * time.Second,
			MaxRepeats:        10,
		},
		Alarms: AlarmsConfig{
			Exact: true,
		},
		Daemon: DaemonConfig{
			StartupWait: 500 * time.Millisecond,
			KillTimeout: 5 * time.Second,
			BootIDPath:  "/proc/sys/kernel/random/boot_id",
		},
		MQTT: MQTTConfig{
			ClientID:       AppName,
			TopicPrefix:    AppName,
			ConnectTimeout: 10 * time.Second,
		},
		API: APIConfig{
			Addr: "127.0.0.1:8787",
		},
		HTTP: HTTPConfig{
			Timeout:     30 * time.Second,
			MaxRetries:  3,
			RetryDelays: []time.Duration{0, 5 * time.Second, 30 * time.Second},
		},
		RetryQueue: RetryQueueConfig{
			CheckInterval: 30 * time.Second,
			BackoffSchedule: []time.Duration{
				5 * time.Second,
				30 * time.Second,
				2 * time.Minute,
				5 * time.Minute,
				15 * time.Minute,
			},
		},
		GPIO: GPIOConfig{
			Chip:         "gpiochip0",
			IgnitionPin:  -1,
			PollInterval: 200 * time.Millisecond,
			Debounce:     time.Second,
		},
		Database: DatabaseConfig{
			Path: filepath.Join(xdg.DataHome, AppName, "db"),
		},
		Journal: JournalConfig{
			Path: filepath.Join(xdg.DataHome, AppName, "journal.db"),
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Global holds the active configuration. It starts with defaults and is
// replaced by Load.
var Global = DefaultRuntimeConfig()

// Reset resets the global configuration to defaults.
// This is primarily useful for testing.
func Reset() {
	Global = DefaultRuntimeConfig()
}
