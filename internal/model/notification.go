package model

import (
	"time"
)

// Notification ids. A new notification with the same id replaces the old one.
const (
	NotificationStartDriving = 1
	NotificationEndDriving   = 2
	NotificationPermission   = 3
)

// Notification channels.
const (
	ChannelDriving   = "driving_channel"
	ChannelEmergency = "emergency_channel"
)

// NotificationType defines the type of notification.
type NotificationType string

// Notification types.
const (
	NotifyStartDriving NotificationType = "start_driving"
	NotifyEndDriving   NotificationType = "end_driving"
	NotifyEmergency    NotificationType = "emergency"
	NotifyPermission   NotificationType = "permission"
	NotifyTest         NotificationType = "test"
)

// Action is a user response attached to a notification.
type Action string

// Notification actions.
const (
	ActionConfirm Action = "confirm"
	ActionDeny    Action = "deny"
)

// IsValidAction checks if an action name is known.
func IsValidAction(a string) bool {
	return a == string(ActionConfirm) || a == string(ActionDeny)
}

// Notification represents a notification to be sent.
type Notification struct {
	ID        int               `json:"id"`
	Type      NotificationType  `json:"type"`
	Channel   string            `json:"channel"`
	Title     string            `json:"title"`
	Message   string            `json:"message"`
	Actions   []Action          `json:"actions,omitempty"`
	Ongoing   bool              `json:"ongoing"`
	Silent    bool              `json:"silent"`
	Fields    map[string]string `json:"fields,omitempty"`
	Timestamp time.Time         `json:"timestamp"`
	Color     int               `json:"color,omitempty"` // Hex color for embeds
}

// NewNotification creates a new notification on the driving channel.
func NewNotification(t NotificationType, title, message string) *Notification {
	return &Notification{
		Type:      t,
		Channel:   ChannelDriving,
		Title:     title,
		Message:   message,
		Fields:    make(map[string]string),
		Timestamp: time.Now(),
		Color:     DefaultColorForType(t),
	}
}

// WithField adds a field to the notification.
func (n *Notification) WithField(key, value string) *Notification {
	if n.Fields == nil {
		n.Fields = make(map[string]string)
	}
	n.Fields[key] = value
	return n
}

// WithColor sets the embed color.
func (n *Notification) WithColor(color int) *Notification {
	n.Color = color
	return n
}

// WithActions sets the actions offered to the user.
func (n *Notification) WithActions(actions ...Action) *Notification {
	n.Actions = actions
	return n
}

// IsEmergency returns true if the notification goes out on the emergency channel.
func (n *Notification) IsEmergency() bool {
	return n.Channel == ChannelEmergency
}

// Notification colors (Discord-compatible hex values).
const (
	ColorSuccess = 0x57F287 // Green
	ColorWarning = 0xFEE75C // Yellow
	ColorInfo    = 0x5865F2 // Blurple
	ColorError   = 0xED4245 // Red
	ColorPrimary = 0x3498DB // Blue
)

// DefaultColorForType returns the default color for a notification type.
func DefaultColorForType(t NotificationType) int {
	switch t {
	case NotifyStartDriving:
		return ColorPrimary
	case NotifyEndDriving:
		return ColorWarning
	case NotifyEmergency:
		return ColorError
	case NotifyPermission:
		return ColorInfo
	case NotifyTest:
		return ColorSuccess
	default:
		return ColorInfo
	}
}

// Icon returns an emoji icon for the notification type.
func (n *Notification) Icon() string {
	switch n.Type {
	case NotifyStartDriving:
		return "red_car"
	case NotifyEndDriving:
		return "baby"
	case NotifyEmergency:
		return "rotating_light"
	case NotifyPermission:
		return "alarm_clock"
	case NotifyTest:
		return "test_tube"
	default:
		return "bell"
	}
}

// TypeLabel returns a human-readable label for the notification type.
func (n *Notification) TypeLabel() string {
	switch n.Type {
	case NotifyStartDriving:
		return "Driving Started"
	case NotifyEndDriving:
		return "Driving Ended"
	case NotifyEmergency:
		return "Emergency Reminder"
	case NotifyPermission:
		return "Permission Needed"
	case NotifyTest:
		return "Test Notification"
	default:
		return "Notification"
	}
}
