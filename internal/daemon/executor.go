package daemon

import (
	"context"
	"fmt"
	"time"

	"github.com/manav03panchal/babyreminder/internal/alarm"
	"github.com/manav03panchal/babyreminder/internal/errors"
	"github.com/manav03panchal/babyreminder/internal/logging"
	"github.com/manav03panchal/babyreminder/internal/mqtt"
	"github.com/manav03panchal/babyreminder/internal/notify"
	"github.com/manav03panchal/babyreminder/internal/reminder"
)

// Timers is the part of the alarm scheduler the executor drives.
type Timers interface {
	Schedule(t alarm.Timer) alarm.Timer
	Cancel(id reminder.TimerID) bool
}

// Executor performs the effects returned by the engine. Every effect is
// attempted even when an earlier one fails.
type Executor struct {
	notifier notify.Notifier
	timers   Timers
	system   mqtt.Publisher
	metrics  *Metrics
}

// NewExecutor creates an executor.
func NewExecutor(notifier notify.Notifier, timers Timers, metrics *Metrics) *Executor {
	if metrics == nil {
		metrics = NewMetrics()
	}
	return &Executor{notifier: notifier, timers: timers, metrics: metrics}
}

// WithSystem publishes session lifecycle messages to the broker.
func (x *Executor) WithSystem(pub mqtt.Publisher) *Executor {
	x.system = pub
	return x
}

// Apply performs effects in order and returns the joined failures.
func (x *Executor) Apply(ctx context.Context, effects []reminder.Effect) error {
	var errs []error
	for _, eff := range effects {
		if err := x.apply(ctx, eff); err != nil {
			scope := string(eff.Kind)
			x.metrics.RecordEffectFailed(scope, err)
			logging.WarnContext(ctx, "effect failed",
				logging.KeyEffect, eff.String(), logging.KeyError, err)
			errs = append(errs, fmt.Errorf("%s: %w", eff, err))
		}
	}
	return errors.Join(errs...)
}

func (x *Executor) apply(ctx context.Context, eff reminder.Effect) error {
	switch eff.Kind {
	case reminder.EffectShowNotification:
		n := eff.Notification
		x.metrics.RecordNotificationShown(n.IsEmergency())
		logging.InfoContext(ctx, "showing notification",
			logging.KeyNotification, n.ID,
			logging.KeyChannel, n.Channel,
			"title", n.Title)
		return x.notifier.Notify(ctx, n)

	case reminder.EffectCancelNotification:
		x.metrics.RecordNotificationCleared()
		return x.notifier.Cancel(ctx, eff.NotificationID)

	case reminder.EffectScheduleTimer:
		t := x.timers.Schedule(alarm.Timer{ID: eff.Timer, At: eff.At, Exact: eff.Exact})
		x.metrics.RecordTimerScheduled()
		logging.DebugContext(ctx, "timer scheduled",
			logging.KeyTimer, string(t.ID),
			"fire_at", t.FireAt.Format(time.TimeOnly),
			"exact", t.Exact)
		return nil

	case reminder.EffectCancelTimer:
		if x.timers.Cancel(eff.Timer) {
			logging.DebugContext(ctx, "timer cancelled", logging.KeyTimer, string(eff.Timer))
		}
		return nil

	case reminder.EffectDrivingChanged:
		x.metrics.RecordDriving(eff.Driving)
		return nil

	case reminder.EffectSessionDenied:
		logging.InfoContext(ctx, "session denied, no reminders after this drive")
		if x.system == nil {
			return nil
		}
		return x.system.PublishSystem(mqtt.SystemEvent{
			Timestamp: time.Now(),
			Event:     mqtt.SystemDenied,
		})

	default:
		return fmt.Errorf("unknown effect %q", eff.Kind)
	}
}
