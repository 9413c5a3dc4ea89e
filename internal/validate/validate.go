// Package validate provides input validation helpers for the babyreminder CLI
// and API.
package validate

import (
	"net"
	"net/url"
	"regexp"
	"strings"
	"text/template"
	"unicode/utf8"

	"github.com/manav03panchal/babyreminder/internal/errors"
)

const (
	// MaxDeviceNameLength is the longest Bluetooth device name, in bytes.
	MaxDeviceNameLength = 248
	// MaxWebhookNameLength is the maximum length for a webhook name.
	MaxWebhookNameLength = 50
	// MaxURLLength is the maximum length for a URL.
	MaxURLLength = 2048
	// MaxTemplateLength is the maximum length for a generic webhook template.
	MaxTemplateLength = 4096
)

// nameRegex validates webhook names (alphanumeric, dashes, underscores).
var nameRegex = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9_-]*$`)

// DeviceName validates a Bluetooth device name for the allowlist.
func DeviceName(name string) error {
	if strings.TrimSpace(name) == "" {
		return errors.NewUserError("Device name cannot be empty",
			"Use the name your phone shows for the car, e.g. \"My Toyota\"")
	}
	if len(name) > MaxDeviceNameLength {
		return errors.NewUserErrorWithField("device", TruncateString(name, 32),
			"Device name too long",
			"Bluetooth names are at most 248 bytes")
	}
	if !utf8.ValidString(name) {
		return errors.NewUserErrorWithField("device", name,
			"Device name is not valid UTF-8",
			"Copy the name again from the Bluetooth settings")
	}
	return nil
}

// WebhookName validates a webhook name.
func WebhookName(name string) error {
	if name == "" {
		return errors.NewUserError("Webhook name cannot be empty", "Provide a short name like 'family-chat'")
	}
	if len(name) > MaxWebhookNameLength {
		return errors.NewUserErrorWithField("name", name,
			"Webhook name too long",
			"Webhook names must be 50 characters or fewer")
	}
	if !nameRegex.MatchString(name) {
		return errors.NewUserErrorWithField("name", name,
			"Invalid webhook name",
			"Names must start with a letter or number and contain only letters, numbers, dashes, or underscores")
	}
	return nil
}

// URL validates a URL for use as a webhook endpoint. Unless allowInternal
// is set, hosts on private networks are rejected.
func URL(rawURL string, allowInternal bool) error {
	if rawURL == "" {
		return errors.NewUserError("URL cannot be empty", "Provide a valid URL")
	}
	if len(rawURL) > MaxURLLength {
		return errors.NewUserError("URL too long", "URLs must be 2048 characters or fewer")
	}

	parsed, err := url.Parse(rawURL)
	if err != nil {
		return errors.NewUserErrorWithField("url", rawURL,
			"Invalid URL format",
			"Provide a valid URL starting with https://")
	}

	if parsed.Scheme != "https" && parsed.Scheme != "http" {
		return errors.NewUserErrorWithField("url", rawURL,
			"Invalid URL scheme",
			"URLs must use https:// (or http:// for local services)")
	}

	hostname := parsed.Hostname()
	if hostname == "" {
		return errors.NewUserErrorWithField("url", rawURL,
			"Invalid URL: missing hostname",
			"Provide a valid URL like https://example.com/webhook")
	}

	isLocalhost := hostname == "localhost" || hostname == "127.0.0.1" || hostname == "::1"

	if parsed.Scheme == "http" && !isLocalhost && !allowInternal {
		return errors.NewUserErrorWithField("url", rawURL,
			"HTTP not allowed for external URLs",
			"Use https://, or --allow-internal for a service on your own network")
	}

	if !isLocalhost && !allowInternal {
		if err := checkInternalIP(hostname); err != nil {
			return err
		}
	}

	return nil
}

// checkInternalIP checks if a hostname resolves to an internal IP.
func checkInternalIP(hostname string) error {
	if ip := net.ParseIP(hostname); ip != nil {
		if isInternalIP(ip) {
			return errors.NewUserErrorWithField("url", hostname,
				"Internal IP addresses not allowed",
				"Pass --allow-internal for a service on your own network")
		}
		return nil
	}

	ips, err := net.LookupIP(hostname)
	if err != nil {
		// Unresolvable now; delivery will report it.
		return nil
	}

	for _, ip := range ips {
		if isInternalIP(ip) {
			return errors.NewUserErrorWithField("url", hostname,
				"Hostname resolves to internal IP",
				"Pass --allow-internal for a service on your own network")
		}
	}

	return nil
}

var privateNetworks = func() []*net.IPNet {
	var nets []*net.IPNet
	for _, cidr := range []string{
		"10.0.0.0/8",     // RFC 1918
		"172.16.0.0/12",  // RFC 1918
		"192.168.0.0/16", // RFC 1918
		"127.0.0.0/8",
		"169.254.0.0/16", // link-local
		"fc00::/7",
		"fe80::/10",
		"::1/128",
	} {
		_, n, err := net.ParseCIDR(cidr)
		if err == nil {
			nets = append(nets, n)
		}
	}
	return nets
}()

// isInternalIP checks if an IP is in a private/internal range.
func isInternalIP(ip net.IP) bool {
	for _, n := range privateNetworks {
		if n.Contains(ip) {
			return true
		}
	}
	return false
}

// Template validates a generic webhook payload template against the
// functions the renderer provides.
func Template(tmpl string, funcs template.FuncMap) error {
	if tmpl == "" {
		return nil
	}
	if len(tmpl) > MaxTemplateLength {
		return errors.NewUserError("Template too long", "Templates must be 4096 characters or fewer")
	}
	if _, err := template.New("webhook").Funcs(funcs).Parse(tmpl); err != nil {
		return errors.NewUserErrorWithField("template", TruncateString(tmpl, 40),
			"Invalid template: "+err.Error(),
			"Use Go template syntax, e.g. {\"text\": \"{{.Title}}: {{.Message}}\"}")
	}
	return nil
}
