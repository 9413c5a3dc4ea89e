package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/manav03panchal/babyreminder/internal/model"
	"github.com/manav03panchal/babyreminder/internal/output"
	"github.com/manav03panchal/babyreminder/internal/service"
)

// StatusComponent displays the driving flag and the reminder session.
type StatusComponent struct {
	Status *service.Status
	Width  int
	Now    time.Time
}

// NewStatusComponent creates a new status component.
func NewStatusComponent(st *service.Status, width int, now time.Time) *StatusComponent {
	return &StatusComponent{Status: st, Width: width, Now: now}
}

// Reminding reports whether end-of-drive reminders are running.
func (sc *StatusComponent) Reminding() bool {
	return sc.Status != nil && sc.Status.Session.State == model.SessionAwaitingEndResponse
}

// View renders the status component.
func (sc *StatusComponent) View() string {
	var content strings.Builder
	width := max(sc.Width-4, 20)

	if sc.Status == nil {
		content.WriteString(StyleInactive.Render("Waiting for status..."))
		return StyleStatusBox.Width(width).Render(content.String())
	}
	st := sc.Status

	box := StyleStatusBox
	switch {
	case sc.Reminding():
		content.WriteString(StyleReminding.Render("● CHECK THE BACK SEAT"))
		box = StyleAlertBox
	case st.Driving:
		content.WriteString(StyleDriving.Render("● DRIVING"))
		box = StyleDrivingBox
	default:
		content.WriteString(StyleInactive.Render("Not driving"))
	}
	content.WriteString("\n\n")
	content.WriteString(st.SessionLabel)

	if sc.Reminding() && st.MaxRepeats > 0 {
		pct := float64(st.Session.RepeatCount) / float64(st.MaxRepeats) * 100
		content.WriteString("\n")
		content.WriteString(ProgressBar(pct, max(width-8, 10)))
	}

	if !st.Session.StartedAt.IsZero() && !st.Session.IsIdle() {
		content.WriteString("\n\n")
		content.WriteString(StyleSubtitle.Render(fmt.Sprintf("Since %s",
			output.FormatTimeOnly(st.Session.StartedAt))))
	}

	return box.Width(width).Render(content.String())
}

// DetailsComponent displays configuration and pending timers.
type DetailsComponent struct {
	Status *service.Status
	Width  int
	Now    time.Time
}

// NewDetailsComponent creates a new details component.
func NewDetailsComponent(st *service.Status, width int, now time.Time) *DetailsComponent {
	return &DetailsComponent{Status: st, Width: width, Now: now}
}

// View renders the details component.
func (dc *DetailsComponent) View() string {
	if dc.Status == nil {
		return ""
	}
	st := dc.Status

	var content strings.Builder
	content.WriteString(StyleTitle.Render("Details"))
	content.WriteString("\n")

	window := "outside"
	if st.InWindow {
		window = "inside"
	}
	answer := "no"
	if st.Settings.DefaultYes || st.InWindow {
		answer = "yes"
	}
	lines := [][2]string{
		{"Car devices", FormatDevices(st.Devices)},
		{"Schedule", fmt.Sprintf("%d rules, %s window", st.Rules, window)},
		{"Default answer", answer},
		{"Webhooks", fmt.Sprintf("%d", st.Webhooks)},
	}
	if st.RetryQueue > 0 {
		lines = append(lines, [2]string{"Retrying", StyleWarning.Render(fmt.Sprintf("%d webhooks", st.RetryQueue))})
	}
	for i, l := range lines {
		if i > 0 {
			content.WriteString("\n")
		}
		content.WriteString(StyleSubtitle.Render(fmt.Sprintf("%-15s", l[0])))
		content.WriteString(l[1])
	}

	if len(st.Timers) > 0 {
		content.WriteString("\n")
		for _, tm := range st.Timers {
			content.WriteString("\n")
			content.WriteString(fmt.Sprintf("Timer %-13s %s (%s)",
				string(tm.ID),
				output.FormatTimeOnly(tm.FireAt),
				output.FormatRelative(tm.FireAt, dc.Now)))
		}
	}

	if !st.Daemon {
		content.WriteString("\n\n")
		content.WriteString(StyleWarning.Render("Daemon not running; no reminders will fire."))
	}

	return StyleDetailsBox.Width(max(dc.Width-4, 20)).Render(content.String())
}
