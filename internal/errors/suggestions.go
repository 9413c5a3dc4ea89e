package errors

import "errors"

// Suggestions maps common errors to helpful suggestions.
var Suggestions = map[error]string{
	ErrInvalidTime:     "Use a 24-hour time like '22:00' or a phrase like '10pm'.",
	ErrInvalidDay:      "Use day names like mon,tue,wed or 'weekdays', 'weekends', 'daily'.",
	ErrNoDays:          "Pass --days, for example --days mon,wed,fri.",
	ErrMalformedRule:   "Run 'babyreminder schedule migrate' to rewrite old rules.",
	ErrRuleNotFound:    "Use 'babyreminder schedule list' to see rule ids.",
	ErrAmbiguousRule:   "Type more characters of the rule id.",
	ErrDeviceNotFound:  "Use 'babyreminder device list' to see saved devices.",
	ErrEmptyDeviceName: "Pass the Bluetooth name of your car, for example 'My Toyota'.",
	ErrWebhookNotFound: "Use 'babyreminder webhook list' to see configured webhooks.",
	ErrInvalidURL:      "Provide a valid URL starting with https:// (or http:// for localhost).",
	ErrUnknownEvent:    "Known events: bluetooth_connected, bluetooth_disconnected, car_mode_entered, car_mode_exited, boot_completed.",
	ErrUnknownAction:   "Answer with 'confirm' or 'deny'.",
	ErrUnknownSetting:  "Known settings: enable_sound, default_yes, language.",

	ErrBrokerUnavailable:  "Check mqtt.broker in your config file and that the broker is reachable.",
	ErrDaemonNotRunning:   "Start it with 'babyreminder daemon start'.",
	ErrDiskFull:           "Free up disk space and try again.",
	ErrDatabaseCorrupted:  "Stop the daemon and move ~/.local/share/babyreminder/db aside to start fresh.",
	ErrNetworkUnavailable: "Check your network connection. Notifications will retry automatically.",
	ErrLockHeld:           "Another babyreminder daemon is running. Use 'babyreminder daemon stop' first.",
	ErrTimeout:            "The operation took too long. Try again or check your network connection.",
	ErrPermissionDenied:   "Check file permissions in your data directory (~/.local/share/babyreminder/).",
}

// GetSuggestion returns a suggestion for an error, if available.
// It walks the error chain to find matching suggestions.
func GetSuggestion(err error) string {
	if err == nil {
		return ""
	}

	if ue, ok := AsUserError(err); ok && ue.Suggestion != "" {
		return ue.Suggestion
	}

	for knownErr, suggestion := range Suggestions {
		if errors.Is(err, knownErr) {
			return suggestion
		}
	}

	return ""
}

// CommandExamples provides example commands for common errors.
var CommandExamples = map[error][]string{
	ErrInvalidTime: {
		"babyreminder schedule add --days mon,fri --from 22:00 --to 06:00",
		"babyreminder schedule add --days weekdays --from 7am --to 9am",
	},
	ErrNoDays: {
		"babyreminder schedule add --days sat,sun --from 9am --to 1pm",
	},
	ErrUnknownEvent: {
		"babyreminder event bluetooth_connected \"My Toyota\"",
		"babyreminder event car_mode_exited",
	},
	ErrUnknownAction: {
		"babyreminder respond confirm",
		"babyreminder respond deny",
	},
}

// GetExamples returns example commands for an error.
func GetExamples(err error) []string {
	for knownErr, examples := range CommandExamples {
		if errors.Is(err, knownErr) {
			return examples
		}
	}
	return nil
}
