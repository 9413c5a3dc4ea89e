package notify

import (
	"encoding/json"
	"fmt"

	"github.com/manav03panchal/babyreminder/internal/model"
)

// TeamsFormatter formats notifications for Microsoft Teams webhooks.
// MessageCard has no mention syntax for incoming webhooks, so emergencies
// are marked by importance and color only.
type TeamsFormatter struct{}

type teamsPayload struct {
	Type       string         `json:"@type"`
	Context    string         `json:"@context"`
	ThemeColor string         `json:"themeColor,omitempty"`
	Summary    string         `json:"summary"`
	Sections   []teamsSection `json:"sections,omitempty"`
}

type teamsSection struct {
	ActivityTitle    string      `json:"activityTitle,omitempty"`
	ActivitySubtitle string      `json:"activitySubtitle,omitempty"`
	Text             string      `json:"text,omitempty"`
	Facts            []teamsFact `json:"facts,omitempty"`
	Markdown         bool        `json:"markdown"`
}

type teamsFact struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// Format converts a notification to Teams webhook format.
func (f *TeamsFormatter) Format(n *model.Notification) ([]byte, error) {
	title := n.Title
	if n.IsEmergency() {
		title = "🚨 " + title
	}

	section := teamsSection{
		ActivityTitle:    title,
		ActivitySubtitle: fmt.Sprintf("%s | %s", Footer, n.Timestamp.Format("Jan 2, 3:04 PM")),
		Text:             n.Message,
		Markdown:         true,
	}

	for _, key := range sortedFields(n) {
		section.Facts = append(section.Facts, teamsFact{Name: key, Value: n.Fields[key]})
	}
	if hint := actionHint(n); hint != "" {
		section.Facts = append(section.Facts, teamsFact{Name: "Respond", Value: hint})
	}

	payload := teamsPayload{
		Type:       "MessageCard",
		Context:    "http://schema.org/extensions",
		ThemeColor: fmt.Sprintf("%06X", colorOf(n)),
		Summary:    n.Title,
		Sections:   []teamsSection{section},
	}

	return json.Marshal(payload)
}

// ContentType returns the content type for Teams webhooks.
func (f *TeamsFormatter) ContentType() string {
	return "application/json"
}
