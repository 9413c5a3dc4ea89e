package reminder

import (
	"time"

	"github.com/manav03panchal/babyreminder/internal/errors"
	"github.com/manav03panchal/babyreminder/internal/logging"
	"github.com/manav03panchal/babyreminder/internal/model"
	"github.com/manav03panchal/babyreminder/internal/storage"
)

// LoadSession reads the session record. Stores written before the record
// existed are read from the individual flag keys.
func LoadSession(prefs storage.Store) *model.Session {
	s := model.NewSession()
	found, err := prefs.GetRecord(model.NSDriving, model.KeySession, s)
	if err != nil {
		logging.Warn("session record unreadable, rebuilding from flags", logging.KeyError, err)
	}
	if found && err == nil {
		if s.State == "" {
			s.State = model.SessionIdle
		}
		return s
	}

	s = model.NewSession()
	s.Responded = prefs.GetBool(model.NSDriving, model.KeyRespondedToStart, false)
	s.Denied = prefs.GetBool(model.NSDriving, model.KeyUserDeniedSession, false)
	s.RepeatCount = prefs.GetInt(model.NSReminder, model.KeyRepeatCount, 0)
	return s
}

// SaveSession writes the session record and mirrors the flag keys.
func SaveSession(prefs storage.Store, s *model.Session, now time.Time) error {
	s.UpdatedAt = now
	return errors.Join(
		prefs.SetRecord(model.NSDriving, model.KeySession, s),
		prefs.SetBool(model.NSDriving, model.KeyRespondedToStart, s.Responded),
		prefs.SetBool(model.NSDriving, model.KeyUserDeniedSession, s.Denied),
		prefs.SetInt(model.NSReminder, model.KeyRepeatCount, s.RepeatCount),
	)
}

// LoadSettings reads the user settings with their defaults.
func LoadSettings(prefs storage.Store) model.Settings {
	def := model.DefaultSettings()
	return model.Settings{
		EnableSound: prefs.GetBool(model.NSMain, model.KeyEnableSound, def.EnableSound),
		DefaultYes:  prefs.GetBool(model.NSMain, model.KeyDefaultYes, def.DefaultYes),
		Language:    prefs.GetString(model.NSMain, model.KeyLanguage, ""),
	}
}
