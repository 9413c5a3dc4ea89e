// Package legal holds the terms, privacy policy and disclaimer texts and
// renders them for the terminal.
package legal

import (
	"embed"
	"slices"
	"strings"

	"github.com/charmbracelet/glamour"

	"github.com/manav03panchal/babyreminder/internal/errors"
)

//go:embed docs/*.md
var docs embed.FS

// Document names.
const (
	Terms      = "terms"
	Privacy    = "privacy"
	Disclaimer = "disclaimer"
)

// Names returns the available documents in display order.
func Names() []string {
	return []string{Terms, Privacy, Disclaimer}
}

// Markdown returns the raw text of a document.
func Markdown(name string) (string, error) {
	if !slices.Contains(Names(), name) {
		return "", errors.NewUserErrorWithField("document", name,
			"unknown document", "Choose one of: "+strings.Join(Names(), ", "))
	}
	data, err := docs.ReadFile("docs/" + name + ".md")
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// Render formats a document for a terminal of the given width. Style is a
// glamour style name; "" picks one from the terminal background.
func Render(name string, width int, style string) (string, error) {
	md, err := Markdown(name)
	if err != nil {
		return "", err
	}
	if width <= 0 {
		width = 80
	}

	opts := []glamour.TermRendererOption{glamour.WithWordWrap(width)}
	if style == "" {
		opts = append(opts, glamour.WithAutoStyle())
	} else {
		opts = append(opts, glamour.WithStandardStyle(style))
	}
	r, err := glamour.NewTermRenderer(opts...)
	if err != nil {
		return md, err
	}
	out, err := r.Render(md)
	if err != nil {
		return md, err
	}
	return strings.TrimSpace(out), nil
}
