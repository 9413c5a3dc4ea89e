package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/adrg/xdg"
	"github.com/spf13/viper"
)

// DefaultConfigDir returns the directory searched for config.yaml.
func DefaultConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// Load reads configuration from configPath, or from config.yaml in the
// default config directory when configPath is empty. A missing default file
// is not an error. Environment variables such as BABYREMINDER_MQTT_BROKER
// override file values. The result becomes Global.
func Load(configPath string) (*RuntimeConfig, error) {
	v := viper.New()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(DefaultConfigDir())
		v.AddConfigPath("/etc/" + AppName)
	}

	v.SetEnvPrefix(strings.ToUpper(AppName))
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v, DefaultRuntimeConfig())

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	cfg := &RuntimeConfig{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}
	cfg.normalize()

	Global = cfg
	return cfg, nil
}

// setDefaults registers every key so AutomaticEnv can resolve it on Unmarshal.
func setDefaults(v *viper.Viper, d *RuntimeConfig) {
	v.SetDefault("reminder.auto_response_delay", d.Reminder.AutoResponseDelay)
	v.SetDefault("reminder.interval", d.Reminder.Interval)
	v.SetDefault("reminder.max_repeats", d.Reminder.MaxRepeats)

	v.SetDefault("alarms.exact", d.Alarms.Exact)

	v.SetDefault("daemon.startup_wait", d.Daemon.StartupWait)
	v.SetDefault("daemon.kill_timeout", d.Daemon.KillTimeout)
	v.SetDefault("daemon.boot_id_path", d.Daemon.BootIDPath)

	v.SetDefault("mqtt.broker", d.MQTT.Broker)
	v.SetDefault("mqtt.client_id", d.MQTT.ClientID)
	v.SetDefault("mqtt.topic_prefix", d.MQTT.TopicPrefix)
	v.SetDefault("mqtt.username", d.MQTT.Username)
	v.SetDefault("mqtt.password", d.MQTT.Password)
	v.SetDefault("mqtt.connect_timeout", d.MQTT.ConnectTimeout)

	v.SetDefault("api.addr", d.API.Addr)

	v.SetDefault("http.timeout", d.HTTP.Timeout)
	v.SetDefault("http.max_retries", d.HTTP.MaxRetries)
	v.SetDefault("http.retry_delays", d.HTTP.RetryDelays)

	v.SetDefault("retry_queue.check_interval", d.RetryQueue.CheckInterval)
	v.SetDefault("retry_queue.backoff_schedule", d.RetryQueue.BackoffSchedule)

	v.SetDefault("gpio.chip", d.GPIO.Chip)
	v.SetDefault("gpio.ignition_pin", d.GPIO.IgnitionPin)
	v.SetDefault("gpio.active_low", d.GPIO.ActiveLow)
	v.SetDefault("gpio.poll_interval", d.GPIO.PollInterval)
	v.SetDefault("gpio.debounce", d.GPIO.Debounce)

	v.SetDefault("database.path", d.Database.Path)
	v.SetDefault("journal.path", d.Journal.Path)

	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.json", d.Log.JSON)
}

// normalize replaces unusable values with defaults.
func (c *RuntimeConfig) normalize() {
	d := DefaultRuntimeConfig()
	if c.Reminder.AutoResponseDelay <= 0 {
		c.Reminder.AutoResponseDelay = d.Reminder.AutoResponseDelay
	}
	if c.Reminder.Interval <= 0 {
		c.Reminder.Interval = d.Reminder.Interval
	}
	if c.Reminder.MaxRepeats < 1 {
		c.Reminder.MaxRepeats = d.Reminder.MaxRepeats
	}
	if c.HTTP.MaxRetries < 0 {
		c.HTTP.MaxRetries = 0
	}
	if len(c.RetryQueue.BackoffSchedule) == 0 {
		c.RetryQueue.BackoffSchedule = d.RetryQueue.BackoffSchedule
	}
	if c.GPIO.PollInterval <= 0 {
		c.GPIO.PollInterval = d.GPIO.PollInterval
	}
}

// Topic joins parts onto the configured topic prefix.
func (c MQTTConfig) Topic(parts ...string) string {
	return strings.TrimRight(c.TopicPrefix, "/") + "/" + strings.Join(parts, "/")
}

// Enabled reports whether an MQTT broker is configured.
func (c MQTTConfig) Enabled() bool {
	return c.Broker != ""
}

// Enabled reports whether an ignition line is configured.
func (c GPIOConfig) Enabled() bool {
	return c.IgnitionPin >= 0
}
