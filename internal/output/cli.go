package output

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/manav03panchal/babyreminder/internal/journal"
	"github.com/manav03panchal/babyreminder/internal/logging"
	"github.com/manav03panchal/babyreminder/internal/model"
	"github.com/manav03panchal/babyreminder/internal/service"
)

// Styles for CLI output.
var (
	colorPrimary = lipgloss.Color("#7C3AED") // Purple
	colorMuted   = lipgloss.Color("#6B7280") // Gray
	colorWarning = lipgloss.Color("#F59E0B") // Yellow
	colorError   = lipgloss.Color("#EF4444") // Red
	colorSuccess = lipgloss.Color("#10B981") // Green

	styleTitle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorPrimary)

	styleSuccess = lipgloss.NewStyle().
			Foreground(colorSuccess)

	styleWarning = lipgloss.NewStyle().
			Foreground(colorWarning)

	styleError = lipgloss.NewStyle().
			Foreground(colorError)

	styleMuted = lipgloss.NewStyle().
			Foreground(colorMuted)

	styleBold = lipgloss.NewStyle().
			Bold(true)
)

// CLIFormatter provides CLI-specific formatting.
type CLIFormatter struct {
	*Formatter
}

// NewCLIFormatter creates a new CLI formatter.
func NewCLIFormatter(f *Formatter) *CLIFormatter {
	return &CLIFormatter{Formatter: f}
}

func (c *CLIFormatter) render(style lipgloss.Style, text string) string {
	if c.IsColorEnabled() {
		return style.Render(text)
	}
	return text
}

// Title prints a title.
func (c *CLIFormatter) Title(text string) {
	c.Println(c.render(styleTitle, text))
}

// Success prints a success message.
func (c *CLIFormatter) Success(text string) {
	c.Println(c.render(styleSuccess, "✓ "+text))
}

// Warning prints a warning message.
func (c *CLIFormatter) Warning(text string) {
	c.Println(c.render(styleWarning, "⚠ "+text))
}

// Error prints an error message.
func (c *CLIFormatter) Error(text string) {
	c.Println(c.render(styleError, "✗ "+text))
}

// Muted prints muted text.
func (c *CLIFormatter) Muted(text string) {
	c.Println(c.render(styleMuted, text))
}

// Field prints an indented "label: value" line.
func (c *CLIFormatter) Field(label, value string) {
	c.Printf("  %s %s\n", c.render(styleMuted, label+":"), value)
}

func (c *CLIFormatter) onOff(v bool, on, off string) string {
	if v {
		return c.render(styleSuccess, on)
	}
	return c.render(styleMuted, off)
}

// PrintStatus prints the driving and session state.
func (c *CLIFormatter) PrintStatus(s *service.Status) {
	c.Title("Baby Reminder")

	c.Field("Driving", c.onOff(s.Driving, "yes", "no"))
	session := s.SessionLabel
	if !s.Session.IsIdle() {
		session = c.render(styleWarning, session)
	}
	c.Field("Session", session)
	if s.Session.Denied {
		c.Field("Answer", "no child on board this drive")
	}
	c.Field("Schedule", fmt.Sprintf("%d rule(s), %s", s.Rules, c.onOff(s.InWindow, "in window now", "outside window")))

	devices := "none (car mode only)"
	if len(s.Devices) > 0 {
		devices = strings.Join(s.Devices, ", ")
	}
	c.Field("Car devices", devices)
	c.Field("Webhooks", fmt.Sprintf("%d", s.Webhooks))
	c.Field("Sound", c.onOff(s.Settings.EnableSound, "on", "off"))
	c.Field("Default answer", c.onOff(s.Settings.DefaultYes, "child on board", "use schedule"))

	if !s.Daemon {
		c.Println()
		c.Muted("Daemon not running. Start it with 'babyreminder daemon start'.")
		return
	}
	now := s.CheckedAt
	if now.IsZero() {
		now = time.Now()
	}
	for _, t := range s.Timers {
		c.Field("Timer "+string(t.ID), fmt.Sprintf("%s (%s)", FormatTimeOnly(t.FireAt), FormatRelative(t.FireAt, now)))
	}
	if s.RetryQueue > 0 {
		c.Field("Retry queue", c.render(styleWarning, fmt.Sprintf("%d pending", s.RetryQueue)))
	}
}

// PrintDevices prints the car device allowlist.
func (c *CLIFormatter) PrintDevices(devices []string) {
	if len(devices) == 0 {
		c.Muted("No car devices. Drives are detected from car mode only.")
		c.Muted("Add one with 'babyreminder device add <name>'.")
		return
	}
	c.Title("Car devices")
	for _, d := range devices {
		c.Printf("  %s\n", d)
	}
}

// PrintRules prints schedule rules as a table.
func (c *CLIFormatter) PrintRules(rules []model.ScheduleRule) {
	if len(rules) == 0 {
		c.Muted("No schedule rules.")
		c.Muted("Add one with 'babyreminder schedule add weekdays 07:30 09:00'.")
		return
	}
	rows := make([]TableRow, 0, len(rules))
	for _, r := range rules {
		rows = append(rows, TableRow{Columns: []string{r.ShortID(), r.DaysLabel(), r.StartTime, r.EndTime}})
	}
	c.PrintTable([]string{"ID", "DAYS", "START", "END"}, rows)
}

// PrintRule prints a single added or deleted rule.
func (c *CLIFormatter) PrintRule(verb string, r model.ScheduleRule) {
	c.Success(fmt.Sprintf("%s rule %s: %s %s-%s", verb, r.ShortID(), r.DaysLabel(), r.StartTime, r.EndTime))
}

// PrintSettings prints user settings.
func (c *CLIFormatter) PrintSettings(s model.Settings) {
	c.Title("Settings")
	lang := s.Language
	if lang == "" {
		lang = "system"
	}
	c.Field("sound", fmt.Sprintf("%t", s.EnableSound))
	c.Field("default_yes", fmt.Sprintf("%t", s.DefaultYes))
	c.Field("language", lang)
}

// PrintWebhooks prints configured webhooks with masked URLs.
func (c *CLIFormatter) PrintWebhooks(webhooks []*model.Webhook) {
	if len(webhooks) == 0 {
		c.Muted("No webhooks configured.")
		c.Muted("Add one with 'babyreminder webhook add <name> <url>'.")
		return
	}
	rows := make([]TableRow, 0, len(webhooks))
	for _, w := range webhooks {
		state := "enabled"
		if !w.Enabled {
			state = "disabled"
		}
		scope := "all"
		if w.EmergencyOnly {
			scope = "emergency"
		}
		last := "-"
		if !w.LastUsed.IsZero() {
			last = FormatTimeShort(w.LastUsed)
			if w.LastError != "" {
				last += " (failed)"
			}
		}
		rows = append(rows, TableRow{Columns: []string{w.Name, w.Type, state, scope, logging.MaskURL(w.URL), last}})
	}
	c.PrintTable([]string{"NAME", "TYPE", "STATE", "SCOPE", "URL", "LAST USED"}, rows)
}

// PrintTestResult prints the outcome of a webhook test.
func (c *CLIFormatter) PrintTestResult(r *service.TestResult) {
	if r.Success {
		c.Success(fmt.Sprintf("Webhook %s responded %d in %dms", r.Webhook, r.StatusCode, r.DurationMs))
		return
	}
	c.Error(fmt.Sprintf("Webhook %s failed: %s", r.Webhook, r.Error))
}

// PrintHistory prints journal entries, newest first.
func (c *CLIFormatter) PrintHistory(entries []journal.Entry) {
	if len(entries) == 0 {
		c.Muted("No events recorded.")
		return
	}
	rows := make([]TableRow, 0, len(entries))
	for _, e := range entries {
		kind := e.Kind
		if e.Device != "" {
			kind += " (" + e.Device + ")"
		}
		effects := e.Effects
		if e.Failed() {
			effects += " ! " + e.Error
		}
		rows = append(rows, TableRow{Columns: []string{FormatTime(e.Timestamp), kind, e.Source, effects}})
	}
	c.PrintTable([]string{"TIME", "EVENT", "SOURCE", "EFFECTS"}, rows)
}

// TableRow is one row of PrintTable.
type TableRow struct {
	Columns []string
}

// PrintTable prints a simple aligned table.
func (c *CLIFormatter) PrintTable(headers []string, rows []TableRow) {
	if len(rows) == 0 {
		return
	}

	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = lipgloss.Width(h)
	}
	for _, row := range rows {
		for i, col := range row.Columns {
			if i < len(widths) && lipgloss.Width(col) > widths[i] {
				widths[i] = lipgloss.Width(col)
			}
		}
	}

	var header strings.Builder
	for i, h := range headers {
		header.WriteString(pad(h, widths[i]))
	}
	c.Println(strings.TrimRight(c.render(styleBold, header.String()), " "))

	var sep strings.Builder
	for _, w := range widths {
		sep.WriteString(strings.Repeat("─", w) + "  ")
	}
	c.Println(strings.TrimRight(sep.String(), " "))

	for _, row := range rows {
		var line strings.Builder
		for i, col := range row.Columns {
			if i < len(widths) {
				line.WriteString(pad(col, widths[i]))
			}
		}
		c.Println(strings.TrimRight(line.String(), " "))
	}
}

func pad(s string, width int) string {
	return s + strings.Repeat(" ", width-lipgloss.Width(s)+2)
}
