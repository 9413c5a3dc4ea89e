package notify

import (
	"encoding/json"
	"time"

	"github.com/manav03panchal/babyreminder/internal/model"
)

// DiscordFormatter formats notifications for Discord webhooks.
type DiscordFormatter struct {
	// Mention pings @here on emergency notifications.
	Mention bool
}

type discordPayload struct {
	Content         string                  `json:"content,omitempty"`
	Embeds          []discordEmbed          `json:"embeds,omitempty"`
	AllowedMentions *discordAllowedMentions `json:"allowed_mentions,omitempty"`
}

type discordAllowedMentions struct {
	Parse []string `json:"parse"`
}

type discordEmbed struct {
	Title       string              `json:"title,omitempty"`
	Description string              `json:"description,omitempty"`
	Color       int                 `json:"color,omitempty"`
	Fields      []discordEmbedField `json:"fields,omitempty"`
	Footer      *discordEmbedFooter `json:"footer,omitempty"`
	Timestamp   string              `json:"timestamp,omitempty"`
}

type discordEmbedField struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Inline bool   `json:"inline,omitempty"`
}

type discordEmbedFooter struct {
	Text string `json:"text"`
}

// Format converts a notification to Discord webhook format.
func (f *DiscordFormatter) Format(n *model.Notification) ([]byte, error) {
	embed := discordEmbed{
		Title:       n.Title,
		Description: n.Message,
		Color:       colorOf(n),
		Timestamp:   n.Timestamp.UTC().Format(time.RFC3339),
		Footer:      &discordEmbedFooter{Text: Footer},
	}

	for _, key := range sortedFields(n) {
		embed.Fields = append(embed.Fields, discordEmbedField{
			Name:   key,
			Value:  n.Fields[key],
			Inline: true,
		})
	}
	if hint := actionHint(n); hint != "" {
		embed.Fields = append(embed.Fields, discordEmbedField{Name: "Respond", Value: hint})
	}

	payload := discordPayload{Embeds: []discordEmbed{embed}}
	if f.Mention && n.IsEmergency() {
		payload.Content = "@here"
		payload.AllowedMentions = &discordAllowedMentions{Parse: []string{"everyone"}}
	}

	return json.Marshal(payload)
}

// ContentType returns the content type for Discord webhooks.
func (f *DiscordFormatter) ContentType() string {
	return "application/json"
}
