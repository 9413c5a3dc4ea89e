package reminder

import (
	"fmt"
	"strings"
	"time"

	"github.com/manav03panchal/babyreminder/internal/model"
)

// EffectKind identifies a side effect requested by the engine.
type EffectKind string

// Effect kinds.
const (
	EffectShowNotification   EffectKind = "show_notification"
	EffectCancelNotification EffectKind = "cancel_notification"
	EffectScheduleTimer      EffectKind = "schedule_timer"
	EffectCancelTimer        EffectKind = "cancel_timer"
	EffectDrivingChanged     EffectKind = "driving_changed"
	EffectSessionDenied      EffectKind = "session_denied"
)

// TimerID names one of the two pending timers. Scheduling a timer replaces
// any pending timer with the same id.
type TimerID string

// Timer ids.
const (
	TimerAutoResponse TimerID = "auto_response"
	TimerReminder     TimerID = "reminder"
)

// Event returns the event delivered when the timer fires.
func (id TimerID) Event() EventKind {
	switch id {
	case TimerAutoResponse:
		return EventAutoResponseTimer
	case TimerReminder:
		return EventReminderTimer
	default:
		return ""
	}
}

// Effect is one side effect for the executor.
type Effect struct {
	Kind           EffectKind          `json:"kind"`
	Notification   *model.Notification `json:"notification,omitempty"`
	NotificationID int                 `json:"notification_id,omitempty"`
	Timer          TimerID             `json:"timer,omitempty"`
	At             time.Time           `json:"at,omitempty"`
	Exact          bool                `json:"exact,omitempty"`
	Driving        bool                `json:"driving,omitempty"`
}

// ShowNotification asks for n to be shown, replacing any with the same id.
func ShowNotification(n *model.Notification) Effect {
	return Effect{Kind: EffectShowNotification, Notification: n, NotificationID: n.ID}
}

// CancelNotification asks for the notification with id to be removed.
func CancelNotification(id int) Effect {
	return Effect{Kind: EffectCancelNotification, NotificationID: id}
}

// ScheduleTimer asks for a timer to fire at the given time.
func ScheduleTimer(id TimerID, at time.Time, exact bool) Effect {
	return Effect{Kind: EffectScheduleTimer, Timer: id, At: at, Exact: exact}
}

// CancelTimer asks for a pending timer to be dropped.
func CancelTimer(id TimerID) Effect {
	return Effect{Kind: EffectCancelTimer, Timer: id}
}

// DrivingChanged reports the new driving state.
func DrivingChanged(driving bool) Effect {
	return Effect{Kind: EffectDrivingChanged, Driving: driving}
}

// SessionDenied announces that the user said no child is on board.
func SessionDenied() Effect {
	return Effect{Kind: EffectSessionDenied}
}

func (e Effect) String() string {
	switch e.Kind {
	case EffectShowNotification:
		if e.Notification != nil {
			return fmt.Sprintf("show(%d,%s)", e.NotificationID, e.Notification.Channel)
		}
		return fmt.Sprintf("show(%d)", e.NotificationID)
	case EffectCancelNotification:
		return fmt.Sprintf("cancel(%d)", e.NotificationID)
	case EffectScheduleTimer:
		mode := "inexact"
		if e.Exact {
			mode = "exact"
		}
		return fmt.Sprintf("schedule(%s,%s,%s)", e.Timer, e.At.Format(time.TimeOnly), mode)
	case EffectCancelTimer:
		return fmt.Sprintf("cancel_timer(%s)", e.Timer)
	case EffectDrivingChanged:
		return fmt.Sprintf("driving(%t)", e.Driving)
	default:
		return string(e.Kind)
	}
}

// Summarize renders effects as a compact single line for logs and the journal.
func Summarize(effects []Effect) string {
	if len(effects) == 0 {
		return "-"
	}
	parts := make([]string, len(effects))
	for i, e := range effects {
		parts[i] = e.String()
	}
	return strings.Join(parts, " ")
}

// Notifications returns the notifications shown by effects, in order.
func Notifications(effects []Effect) []*model.Notification {
	var out []*model.Notification
	for _, e := range effects {
		if e.Kind == EffectShowNotification && e.Notification != nil {
			out = append(out, e.Notification)
		}
	}
	return out
}
