package i18n

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"golang.org/x/text/language"
)

func TestMatch(t *testing.T) {
	tests := []struct {
		pref string
		want language.Tag
	}{
		{"en", language.English},
		{"es", language.Spanish},
		{"es-MX", language.Spanish},
		{"he_IL.UTF-8", language.Hebrew},
		{"ar", language.Arabic},
		{"ru_RU", language.Russian},
		{"xx", language.English},
		{"C", language.English},
	}

	for _, tt := range tests {
		t.Run(tt.pref, func(t *testing.T) {
			got := Match(tt.pref)
			base, _ := got.Base()
			wantBase, _ := tt.want.Base()
			assert.Equal(t, wantBase, base)
		})
	}
}

func TestMatchEmptyUsesLang(t *testing.T) {
	t.Setenv("LANG", "ru_RU.UTF-8")
	assert.Equal(t, "Да", For("").ActionYes)

	t.Setenv("LANG", "")
	assert.Equal(t, "Yes", For("").ActionYes)
}

func TestForReturnsCompleteTexts(t *testing.T) {
	for _, code := range Supported() {
		t.Run(code, func(t *testing.T) {
			tx := For(code)
			assert.NotEmpty(t, tx.StartTitle)
			assert.NotEmpty(t, tx.StartMessage)
			assert.NotEmpty(t, tx.EndTitle)
			assert.NotEmpty(t, tx.EmergencyTitle)
			assert.NotEmpty(t, tx.PermissionTitle)
			assert.NotEmpty(t, tx.ActionYes)
			assert.NotEmpty(t, tx.ActionNo)
			assert.NotEmpty(t, tx.ActionConfirm)
		})
	}
}

func TestRTL(t *testing.T) {
	assert.True(t, For("he").RTL())
	assert.True(t, For("ar").RTL())
	assert.False(t, For("en").RTL())
	assert.False(t, For("ru").RTL())
}

func TestIsSupported(t *testing.T) {
	assert.True(t, IsSupported("es"))
	assert.True(t, IsSupported("he-IL"))
	assert.False(t, IsSupported("fr"))
	assert.False(t, IsSupported("not a tag!"))
}

func TestSupported(t *testing.T) {
	assert.Equal(t, []string{"en", "es", "he", "ar", "ru"}, Supported())
}
