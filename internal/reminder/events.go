// Package reminder turns driving events into notifications and timers.
//
// The Engine is platform independent: HandleEvent reads and writes the
// preference store and returns the side effects the caller must perform.
package reminder

import (
	"fmt"
	"strings"
	"time"

	"github.com/manav03panchal/babyreminder/internal/errors"
)

// EventKind identifies an incoming event.
type EventKind string

// Event kinds.
const (
	EventBluetoothConnected    EventKind = "bluetooth_connected"
	EventBluetoothDisconnected EventKind = "bluetooth_disconnected"
	EventCarModeEntered        EventKind = "car_mode_entered"
	EventCarModeExited         EventKind = "car_mode_exited"
	EventAutoResponseTimer     EventKind = "auto_response_timer"
	EventReminderTimer         EventKind = "reminder_timer"
	EventBootCompleted         EventKind = "boot_completed"
	EventConfirm               EventKind = "confirm"
	EventDeny                  EventKind = "deny"
)

// EventKinds lists every kind in a stable order.
var EventKinds = []EventKind{
	EventBluetoothConnected,
	EventBluetoothDisconnected,
	EventCarModeEntered,
	EventCarModeExited,
	EventAutoResponseTimer,
	EventReminderTimer,
	EventBootCompleted,
	EventConfirm,
	EventDeny,
}

// Event is one input to the engine.
type Event struct {
	Kind   EventKind `json:"type"`
	Device string    `json:"device,omitempty"`
	At     time.Time `json:"at,omitempty"`
	Source string    `json:"source,omitempty"`
}

// NewEvent creates an event stamped with the current time.
func NewEvent(kind EventKind, device string) Event {
	return Event{Kind: kind, Device: device, At: time.Now()}
}

// ParseEventKind accepts a kind name, case-insensitive, with dashes or underscores.
func ParseEventKind(s string) (EventKind, error) {
	norm := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), "-", "_")
	for _, k := range EventKinds {
		if string(k) == norm {
			return k, nil
		}
	}
	return "", errors.InvalidInput(errors.ErrUnknownEvent, "event", s)
}

// NeedsDevice reports whether the kind carries a Bluetooth device name.
func (k EventKind) NeedsDevice() bool {
	return k == EventBluetoothConnected || k == EventBluetoothDisconnected
}

// IsAction reports whether the kind is a user answer to a notification.
func (k EventKind) IsAction() bool {
	return k == EventConfirm || k == EventDeny
}

// Validate checks that the event is complete.
func (e Event) Validate() error {
	if _, err := ParseEventKind(string(e.Kind)); err != nil {
		return err
	}
	if e.Kind.NeedsDevice() && strings.TrimSpace(e.Device) == "" {
		return errors.NewUserErrorWithField("device", "",
			fmt.Sprintf("%s requires a device name", e.Kind),
			"Pass the Bluetooth device name, e.g. 'My Toyota'")
	}
	return nil
}

func (e Event) String() string {
	if e.Device != "" {
		return fmt.Sprintf("%s(%s)", e.Kind, e.Device)
	}
	return string(e.Kind)
}
