package legal

import (
	"testing"

	"github.com/manav03panchal/babyreminder/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarkdown(t *testing.T) {
	for _, name := range Names() {
		t.Run(name, func(t *testing.T) {
			md, err := Markdown(name)
			require.NoError(t, err)
			assert.True(t, len(md) > 0 && md[0] == '#', "documents start with a heading")
		})
	}
}

func TestMarkdownUnknown(t *testing.T) {
	_, err := Markdown("cookies")
	require.Error(t, err)
	assert.True(t, errors.IsUserError(err))
	assert.Contains(t, errors.GetSuggestion(err), "privacy")
}

func TestRender(t *testing.T) {
	out, err := Render(Privacy, 60, "notty")
	require.NoError(t, err)
	assert.Contains(t, out, "Privacy Policy")
	assert.Contains(t, out, "Removing your data")

	out, err = Render(Disclaimer, 0, "notty")
	require.NoError(t, err)
	assert.Contains(t, out, "a safety device")
}

func TestRenderUnknown(t *testing.T) {
	_, err := Render("eula", 80, "notty")
	assert.Error(t, err)
}
