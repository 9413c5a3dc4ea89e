package reminder

import (
	"fmt"
	"time"

	"github.com/manav03panchal/babyreminder/internal/i18n"
	"github.com/manav03panchal/babyreminder/internal/logging"
	"github.com/manav03panchal/babyreminder/internal/model"
	"github.com/manav03panchal/babyreminder/internal/storage"
)

// Escalator shows the end-driving notification and keeps re-showing it
// until the user confirms or the repeat cap is reached.
type Escalator struct {
	prefs storage.Store
	cfg   Config
}

// NewEscalator creates an escalator.
func NewEscalator(prefs storage.Store, cfg Config) *Escalator {
	return &Escalator{prefs: prefs, cfg: cfg}
}

// ShowEndDrivingNotification shows the end-driving notification for the
// session's current repeat count. An initial call starts a new escalation at
// zero. Once the count reaches the cap nothing is shown or scheduled.
func (x *Escalator) ShowEndDrivingNotification(s *model.Session, initial bool, now time.Time) []Effect {
	if initial {
		s.RepeatCount = 0
	}
	s.State = model.SessionAwaitingEndResponse

	maxRepeats := x.cfg.MaxRepeats
	if s.RepeatCount >= maxRepeats {
		return nil
	}

	settings := LoadSettings(x.prefs)
	tx := i18n.For(settings.Language)

	n := model.NewNotification(model.NotifyEndDriving, tx.EndTitle, tx.EndMessage)
	n.ID = model.NotificationEndDriving
	n.Ongoing = true
	n.Silent = !settings.EnableSound
	n.Timestamp = now
	n.WithActions(model.ActionConfirm)
	if s.RepeatCount >= maxRepeats-1 {
		n.Type = model.NotifyEmergency
		n.Channel = model.ChannelEmergency
		n.Title = tx.EmergencyTitle
		n.Message = tx.EmergencyMessage
		n.WithColor(model.ColorError)
	}
	n.WithField("reminder", fmt.Sprintf("%d/%d", s.RepeatCount+1, maxRepeats))

	effects := []Effect{ShowNotification(n)}
	if s.RepeatCount < maxRepeats-1 {
		effects = append(effects, x.scheduleNext(now)...)
	}
	return effects
}

func (x *Escalator) scheduleNext(now time.Time) []Effect {
	at := now.Add(x.cfg.Interval)
	if x.cfg.ExactAlarms {
		return []Effect{ScheduleTimer(TimerReminder, at, true)}
	}

	effects := []Effect{ScheduleTimer(TimerReminder, at, false)}
	if !x.prefs.GetBool(model.NSReminder, model.KeyExactAlarmPrompted, false) {
		tx := i18n.For(LoadSettings(x.prefs).Language)
		p := model.NewNotification(model.NotifyPermission, tx.PermissionTitle, tx.PermissionMessage)
		p.ID = model.NotificationPermission
		p.Timestamp = now
		effects = append(effects, ShowNotification(p))
		if err := x.prefs.SetBool(model.NSReminder, model.KeyExactAlarmPrompted, true); err != nil {
			logging.Warn("failed to remember exact alarm prompt", logging.KeyError, err)
		}
	}
	return effects
}
