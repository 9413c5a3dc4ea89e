// Package mqtt connects the daemon to an MQTT broker. The broker carries
// driving events and notification answers in, and notifications, driving
// state and lifecycle messages out.
package mqtt

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/manav03panchal/babyreminder/internal/config"
	"github.com/manav03panchal/babyreminder/internal/errors"
	"github.com/manav03panchal/babyreminder/internal/model"
	"github.com/manav03panchal/babyreminder/internal/reminder"
)

// Topics holds the full topic names under a prefix.
type Topics struct {
	Events        string
	Actions       string
	Notifications string
	State         string
	System        string
}

// NewTopics builds the topic set for cfg.
func NewTopics(cfg config.MQTTConfig) Topics {
	return Topics{
		Events:        cfg.Topic("events"),
		Actions:       cfg.Topic("actions"),
		Notifications: cfg.Topic("notifications"),
		State:         cfg.Topic("state"),
		System:        cfg.Topic("system"),
	}
}

// Notification returns the retained topic of one notification id.
func (t Topics) Notification(id int) string {
	return t.Notifications + "/" + strconv.Itoa(id)
}

// Handler receives events decoded from the inbound topics.
type Handler func(reminder.Event)

// Publisher publishes to the broker.
type Publisher interface {
	// PublishNotification sends a notification, retained under its id.
	PublishNotification(n *model.Notification) error

	// ClearNotification removes the retained notification with id.
	ClearNotification(id int) error

	// PublishState sends the retained driving state.
	PublishState(state StatePayload) error

	// PublishEvent sends an event to the inbound topics, used by the CLI.
	PublishEvent(ev reminder.Event) error

	// PublishSystem sends a system lifecycle event.
	PublishSystem(event SystemEvent) error

	// Close disconnects from the broker.
	Close() error
}

// Subscriber delivers inbound events.
type Subscriber interface {
	Subscribe(h Handler) error
}

// Client is a full broker connection.
type Client interface {
	Publisher
	Subscriber
	ConnectionStatus
}

// ConnectionStatus reports whether the MQTT connection is active.
type ConnectionStatus interface {
	IsConnected() bool
}

// SystemEvent is a lifecycle message such as STARTUP or SHUTDOWN.
type SystemEvent struct {
	Timestamp time.Time
	Event     string
	Reason    string
	Retained  bool
}

// System event names.
const (
	SystemStartup     = "STARTUP"
	SystemShutdown    = "SHUTDOWN"
	SystemOffline     = "OFFLINE"
	SystemReconnected = "RECONNECTED"
	SystemDenied      = "SESSION_DENIED"
)

// SystemPayload is the JSON body of a system event.
type SystemPayload struct {
	System SystemPayloadInner `json:"system"`
}

// SystemPayloadInner contains the system event details.
type SystemPayloadInner struct {
	Timestamp string `json:"timestamp"`
	Event     string `json:"event"`
	Reason    string `json:"reason,omitempty"`
}

// FormatSystemPayload creates the JSON payload for a system event.
func FormatSystemPayload(event SystemEvent) ([]byte, error) {
	return json.Marshal(SystemPayload{
		System: SystemPayloadInner{
			Timestamp: event.Timestamp.UTC().Format(time.RFC3339),
			Event:     event.Event,
			Reason:    event.Reason,
		},
	})
}

// StatePayload is the retained driving state.
type StatePayload struct {
	Driving     bool      `json:"driving"`
	Session     string    `json:"session"`
	RepeatCount int       `json:"repeat_count"`
	Timestamp   time.Time `json:"timestamp"`
}

// EventPayload is the JSON body accepted on the events and actions topics.
// Actions may also use the "action" key.
type EventPayload struct {
	Type   string    `json:"type"`
	Action string    `json:"action,omitempty"`
	Device string    `json:"device,omitempty"`
	At     time.Time `json:"at,omitempty"`
	Source string    `json:"source,omitempty"`
}

// FormatEvent creates the JSON payload for an event.
func FormatEvent(ev reminder.Event) ([]byte, error) {
	return json.Marshal(EventPayload{
		Type:   string(ev.Kind),
		Device: ev.Device,
		At:     ev.At,
		Source: ev.Source,
	})
}

// ParseEvent decodes an inbound message. A bare word such as "confirm" is
// accepted as well as JSON.
func ParseEvent(payload []byte) (reminder.Event, error) {
	raw := strings.TrimSpace(string(payload))
	if raw == "" {
		return reminder.Event{}, errors.ErrUnknownEvent
	}

	var p EventPayload
	if strings.HasPrefix(raw, "{") {
		if err := json.Unmarshal([]byte(raw), &p); err != nil {
			return reminder.Event{}, errors.Wrap(err, "decoding event payload")
		}
	} else {
		p.Type = raw
	}
	if p.Type == "" {
		p.Type = p.Action
	}

	kind, err := reminder.ParseEventKind(p.Type)
	if err != nil {
		return reminder.Event{}, err
	}
	ev := reminder.Event{Kind: kind, Device: p.Device, At: p.At, Source: p.Source}
	if ev.Source == "" {
		ev.Source = "mqtt"
	}
	if err := ev.Validate(); err != nil {
		return reminder.Event{}, err
	}
	return ev, nil
}

// FormatNotification creates the JSON payload of a notification.
func FormatNotification(n *model.Notification) ([]byte, error) {
	return json.Marshal(n)
}
