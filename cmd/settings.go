package cmd

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/manav03panchal/babyreminder/internal/errors"
	"github.com/manav03panchal/babyreminder/internal/model"
	"github.com/manav03panchal/babyreminder/internal/service"
)

// settingsCmd shows and changes user settings.
var settingsCmd = &cobra.Command{
	Use:     "settings [command]",
	Aliases: []string{"set", "prefs"},
	Short:   "Show and change settings",
	Long: `Show and change user settings.

Settings:
  sound         Play a sound with notifications (on/off)
  default_yes   Assume a child is on board when the start question
                goes unanswered, even outside schedule windows (yes/no)
  language      Notification language: en, es, he, ar, ru or system

Examples:
  babyreminder settings
  babyreminder settings get language
  babyreminder settings set sound off
  babyreminder settings set default_yes yes
  babyreminder settings set language es`,
	RunE: runSettingsShow,
}

var settingsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show all settings",
	Args:  cobra.NoArgs,
	RunE:  runSettingsShow,
}

var settingsGetCmd = &cobra.Command{
	Use:       "get KEY",
	Short:     "Show one setting",
	Args:      cobra.ExactArgs(1),
	ValidArgs: service.SettingNames,
	RunE:      runSettingsGet,
}

var settingsSetCmd = &cobra.Command{
	Use:       "set KEY VALUE",
	Short:     "Change a setting",
	Args:      cobra.ExactArgs(2),
	ValidArgs: service.SettingNames,
	RunE:      runSettingsSet,
}

func init() {
	settingsCmd.AddCommand(settingsShowCmd)
	settingsCmd.AddCommand(settingsGetCmd)
	settingsCmd.AddCommand(settingsSetCmd)

	rootCmd.AddCommand(settingsCmd)
}

func runSettingsShow(cmd *cobra.Command, args []string) error {
	c, cancel := commandContext(cmd)
	defer cancel()

	backend, err := ctx.Backend(c)
	if err != nil {
		return err
	}
	s, err := backend.Settings(c)
	if err != nil {
		return err
	}

	if ctx.IsJSON() {
		return ctx.Formatter.JSON(s)
	}
	ctx.CLIFormatter().PrintSettings(s)
	return nil
}

// settingValue renders one setting the way `settings set` accepts it.
func settingValue(s model.Settings, key string) (string, error) {
	switch strings.ToLower(strings.ReplaceAll(key, "-", "_")) {
	case "sound", "enable_sound":
		if s.EnableSound {
			return "on", nil
		}
		return "off", nil
	case "default_yes", "default":
		if s.DefaultYes {
			return "yes", nil
		}
		return "no", nil
	case "language", "lang":
		if s.Language == "" {
			return "system", nil
		}
		return s.Language, nil
	}
	return "", &errors.UserError{
		Message:    "Unknown setting",
		Field:      "setting",
		Value:      key,
		Suggestion: "Settings are " + strings.Join(service.SettingNames, ", "),
		Cause:      errors.ErrUnknownSetting,
	}
}

func runSettingsGet(cmd *cobra.Command, args []string) error {
	c, cancel := commandContext(cmd)
	defer cancel()

	backend, err := ctx.Backend(c)
	if err != nil {
		return err
	}
	s, err := backend.Settings(c)
	if err != nil {
		return err
	}
	value, err := settingValue(s, args[0])
	if err != nil {
		return err
	}

	if ctx.IsJSON() {
		return ctx.Formatter.JSON(map[string]string{"key": args[0], "value": value})
	}
	ctx.Formatter.Println(value)
	return nil
}

func runSettingsSet(cmd *cobra.Command, args []string) error {
	patch, err := service.ParseSetting(args[0], args[1])
	if err != nil {
		return err
	}

	c, cancel := commandContext(cmd)
	defer cancel()

	backend, err := ctx.Backend(c)
	if err != nil {
		return err
	}
	s, err := backend.UpdateSettings(c, patch)
	if err != nil {
		return err
	}

	if ctx.IsJSON() {
		return ctx.Formatter.JSON(s)
	}
	value, _ := settingValue(s, args[0])
	ctx.CLIFormatter().Success(args[0] + " = " + value)
	return nil
}
