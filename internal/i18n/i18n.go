// Package i18n holds the localized notification texts.
package i18n

import (
	"os"
	"strings"

	"golang.org/x/text/language"
)

// Texts are the user-facing strings of one language.
type Texts struct {
	StartTitle        string
	StartMessage      string
	EndTitle          string
	EndMessage        string
	EmergencyTitle    string
	EmergencyMessage  string
	PermissionTitle   string
	PermissionMessage string
	ActionYes         string
	ActionNo          string
	ActionConfirm     string
	SessionDenied     string

	rtl bool
}

// RTL reports whether the language is written right to left.
func (t Texts) RTL() bool {
	return t.rtl
}

var supported = []language.Tag{
	language.English,
	language.Spanish,
	language.Hebrew,
	language.Arabic,
	language.Russian,
}

var matcher = language.NewMatcher(supported)

// Supported returns the base language codes with translations.
func Supported() []string {
	out := make([]string, len(supported))
	for i, tag := range supported {
		base, _ := tag.Base()
		out[i] = base.String()
	}
	return out
}

// Match picks the closest supported language for a preference such as
// "es", "es-MX" or "he_IL.UTF-8". An empty preference falls back to $LANG.
// Anything unrecognised resolves to English.
func Match(pref string) language.Tag {
	if pref == "" {
		pref = os.Getenv("LANG")
	}
	pref = normalize(pref)
	if pref == "" {
		return language.English
	}
	_, idx, conf := matcher.Match(language.Make(pref))
	if conf == language.No {
		return language.English
	}
	return supported[idx]
}

// For returns the texts for the closest supported language.
func For(pref string) Texts {
	base, _ := Match(pref).Base()
	if t, ok := catalog[base.String()]; ok {
		return t
	}
	return catalog["en"]
}

// IsSupported reports whether pref names one of the translated languages.
func IsSupported(pref string) bool {
	tag, err := language.Parse(normalize(pref))
	if err != nil {
		return false
	}
	_, _, conf := matcher.Match(tag)
	return conf >= language.High
}

// normalize strips POSIX locale decorations: "he_IL.UTF-8" becomes "he-IL".
func normalize(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexAny(s, ".@"); i >= 0 {
		s = s[:i]
	}
	if s == "C" || s == "POSIX" {
		return ""
	}
	return strings.ReplaceAll(s, "_", "-")
}
