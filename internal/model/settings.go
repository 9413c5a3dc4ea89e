package model

// Settings are the user preferences from the main settings screen.
type Settings struct {
	EnableSound bool   `json:"enable_sound"`
	DefaultYes  bool   `json:"default_yes"`
	Language    string `json:"language"`
}

// DefaultSettings returns the settings used before the user changes anything.
func DefaultSettings() Settings {
	return Settings{
		EnableSound: true,
		DefaultYes:  true,
		Language:    "en",
	}
}
