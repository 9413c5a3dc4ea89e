package model

import (
	"fmt"
	"strings"
	"time"
)

// PrefixWebhook is the database key prefix for webhooks.
const PrefixWebhook = "webhook"

// Webhook type constants.
const (
	WebhookTypeDiscord = "discord"
	WebhookTypeSlack   = "slack"
	WebhookTypeTeams   = "teams"
	WebhookTypeGeneric = "generic"
)

// Webhook is a notification sink reached over HTTP.
type Webhook struct {
	Key  string `json:"key"`
	Name string `json:"name"`
	Type string `json:"type"`
	URL  string `json:"url"`
	// EmergencyOnly restricts the sink to the emergency channel.
	EmergencyOnly bool `json:"emergency_only,omitempty"`
	// Mention adds an @here style ping to emergency notifications.
	Mention   bool      `json:"mention,omitempty"`
	Enabled   bool      `json:"enabled"`
	Template  string    `json:"template,omitempty"` // generic webhooks only
	CreatedAt time.Time `json:"created_at"`
	LastUsed  time.Time `json:"last_used,omitempty"`
	LastError string    `json:"last_error,omitempty"`
}

// SetKey sets the database key for this webhook.
func (w *Webhook) SetKey(key string) {
	w.Key = key
}

// GetKey returns the database key for this webhook.
func (w *Webhook) GetKey() string {
	return w.Key
}

// Accepts reports whether the webhook should receive the notification.
func (w *Webhook) Accepts(n *Notification) bool {
	if !w.Enabled {
		return false
	}
	if w.EmergencyOnly {
		return n.IsEmergency()
	}
	return true
}

// MaskedURL returns the URL with everything after the host path prefix hidden.
func (w *Webhook) MaskedURL() string {
	if len(w.URL) > 40 {
		return w.URL[:30] + "***"
	}
	return w.URL
}

// GenerateWebhookKey generates a database key for a webhook.
func GenerateWebhookKey(name string) string {
	return fmt.Sprintf("%s:%s", PrefixWebhook, name)
}

// NewWebhook creates a new enabled webhook.
func NewWebhook(name, webhookType, url string) *Webhook {
	return &Webhook{
		Key:       GenerateWebhookKey(name),
		Name:      name,
		Type:      webhookType,
		URL:       url,
		Enabled:   true,
		CreatedAt: time.Now(),
	}
}

// ValidWebhookTypes returns the list of valid webhook types.
func ValidWebhookTypes() []string {
	return []string{WebhookTypeDiscord, WebhookTypeSlack, WebhookTypeTeams, WebhookTypeGeneric}
}

// IsValidWebhookType checks if a type is valid.
func IsValidWebhookType(t string) bool {
	for _, valid := range ValidWebhookTypes() {
		if t == valid {
			return true
		}
	}
	return false
}

// DetectWebhookType guesses the webhook type from its URL.
func DetectWebhookType(url string) string {
	u := strings.ToLower(url)
	switch {
	case strings.Contains(u, "discord.com/api/webhooks"):
		return WebhookTypeDiscord
	case strings.Contains(u, "hooks.slack.com"):
		return WebhookTypeSlack
	case strings.Contains(u, "webhook.office.com"), strings.Contains(u, "outlook.office.com/webhook"):
		return WebhookTypeTeams
	default:
		return WebhookTypeGeneric
	}
}
