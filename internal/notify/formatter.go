// Package notify delivers notifications to webhooks and other sinks.
package notify

import (
	"fmt"
	"sort"
	"strings"

	"github.com/manav03panchal/babyreminder/internal/model"
)

// Footer is the product name shown under webhook messages.
const Footer = "babyreminder"

// Formatter formats notifications for a specific webhook type.
type Formatter interface {
	// Format converts a notification into the webhook-specific payload.
	Format(n *model.Notification) ([]byte, error)

	// ContentType returns the HTTP Content-Type for the payload.
	ContentType() string
}

// GetFormatter returns the appropriate formatter for a webhook type.
func GetFormatter(webhookType string) Formatter {
	switch webhookType {
	case model.WebhookTypeDiscord:
		return &DiscordFormatter{}
	case model.WebhookTypeSlack:
		return &SlackFormatter{}
	case model.WebhookTypeTeams:
		return &TeamsFormatter{}
	case model.WebhookTypeGeneric:
		return NewGenericFormatter("")
	default:
		return NewGenericFormatter("")
	}
}

// FormatterFor returns the formatter configured for a webhook.
func FormatterFor(wh *model.Webhook) Formatter {
	switch wh.Type {
	case model.WebhookTypeDiscord:
		return &DiscordFormatter{Mention: wh.Mention}
	case model.WebhookTypeSlack:
		return &SlackFormatter{Mention: wh.Mention}
	case model.WebhookTypeGeneric:
		return NewGenericFormatter(wh.Template)
	default:
		return GetFormatter(wh.Type)
	}
}

// colorOf returns the notification color or the type default.
func colorOf(n *model.Notification) int {
	if n.Color != 0 {
		return n.Color
	}
	return model.DefaultColorForType(n.Type)
}

// sortedFields returns the field keys in a stable order.
func sortedFields(n *model.Notification) []string {
	keys := make([]string, 0, len(n.Fields))
	for k := range n.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// actionHint tells the reader how to answer a notification from a shell.
func actionHint(n *model.Notification) string {
	if len(n.Actions) == 0 {
		return ""
	}
	cmds := make([]string, len(n.Actions))
	for i, a := range n.Actions {
		cmds[i] = fmt.Sprintf("`babyreminder respond %s`", a)
	}
	return "Answer with " + strings.Join(cmds, " or ")
}
