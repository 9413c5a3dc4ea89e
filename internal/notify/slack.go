package notify

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/manav03panchal/babyreminder/internal/model"
)

// SlackFormatter formats notifications for Slack webhooks.
type SlackFormatter struct {
	// Mention pings <!here> on emergency notifications.
	Mention bool
}

type slackPayload struct {
	Text        string        `json:"text,omitempty"`
	Blocks      []slackBlock  `json:"blocks,omitempty"`
	Attachments []slackAttach `json:"attachments,omitempty"`
}

type slackBlock struct {
	Type   string           `json:"type"`
	Text   *slackBlockText  `json:"text,omitempty"`
	Fields []slackBlockText `json:"fields,omitempty"`
}

type slackBlockText struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// slackAttach carries the color bar.
type slackAttach struct {
	Color    string `json:"color,omitempty"`
	Fallback string `json:"fallback,omitempty"`
}

// Format converts a notification to Slack webhook format.
func (f *SlackFormatter) Format(n *model.Notification) ([]byte, error) {
	headerText := fmt.Sprintf("*%s*", slackEscape(n.Title))
	if f.Mention && n.IsEmergency() {
		headerText = "<!here> " + headerText
	}

	blocks := []slackBlock{
		{
			Type: "header",
			Text: &slackBlockText{Type: "plain_text", Text: n.Title},
		},
		{
			Type: "section",
			Text: &slackBlockText{Type: "mrkdwn", Text: slackEscape(n.Message)},
		},
	}

	if len(n.Fields) > 0 {
		var fieldTexts []slackBlockText
		for _, key := range sortedFields(n) {
			fieldTexts = append(fieldTexts, slackBlockText{
				Type: "mrkdwn",
				Text: fmt.Sprintf("*%s*\n%s", slackEscape(key), slackEscape(n.Fields[key])),
			})
		}
		blocks = append(blocks, slackBlock{Type: "section", Fields: fieldTexts})
	}

	footer := fmt.Sprintf("%s | %s", Footer, n.Timestamp.Format("Jan 2, 3:04 PM"))
	if hint := actionHint(n); hint != "" {
		footer += " | " + hint
	}
	blocks = append(blocks, slackBlock{
		Type: "context",
		Text: &slackBlockText{Type: "mrkdwn", Text: footer},
	})

	payload := slackPayload{
		Text:   headerText,
		Blocks: blocks,
		Attachments: []slackAttach{
			{Color: colorToHex(colorOf(n)), Fallback: n.Title},
		},
	}

	return json.Marshal(payload)
}

// ContentType returns the content type for Slack webhooks.
func (f *SlackFormatter) ContentType() string {
	return "application/json"
}

func colorToHex(color int) string {
	return fmt.Sprintf("#%06X", color)
}

// slackEscape escapes special characters for Slack mrkdwn.
func slackEscape(s string) string {
	s = strings.ReplaceAll(s, "&", "&amp;")
	s = strings.ReplaceAll(s, "<", "&lt;")
	s = strings.ReplaceAll(s, ">", "&gt;")
	return s
}
