package tui

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/manav03panchal/babyreminder/internal/reminder"
	"github.com/manav03panchal/babyreminder/internal/service"
)

// tickMsg is sent when the refresh timer ticks.
type tickMsg time.Time

// statusMsg carries a fetched status.
type statusMsg struct {
	status *service.Status
	err    error
}

// actionMsg reports the result of a confirm or deny.
type actionMsg struct {
	kind reminder.EventKind
	err  error
}

type keyMap struct {
	Confirm key.Binding
	Deny    key.Binding
	Refresh key.Binding
	Help    key.Binding
	Quit    key.Binding
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Confirm, k.Deny, k.Refresh, k.Help, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{{k.Confirm, k.Deny}, {k.Refresh, k.Help, k.Quit}}
}

func defaultKeys() keyMap {
	return keyMap{
		Confirm: key.NewBinding(key.WithKeys("c", "y"), key.WithHelp("c", "child is safe")),
		Deny:    key.NewBinding(key.WithKeys("d", "n"), key.WithHelp("d", "deny")),
		Refresh: key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "refresh")),
		Help:    key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Quit:    key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

// WatchModel is the bubbletea model for the live status view.
type WatchModel struct {
	backend service.Backend
	keys    keyMap
	help    help.Model

	status     *service.Status
	width      int
	height     int
	err        error
	message    string
	messageExp time.Time

	refreshInterval time.Duration
	timeout         time.Duration
	now             func() time.Time
}

// WatchConfig holds configuration for the watch view.
type WatchConfig struct {
	Backend         service.Backend
	RefreshInterval time.Duration
	Timeout         time.Duration
}

// NewWatchModel creates a new watch model.
func NewWatchModel(config WatchConfig) *WatchModel {
	if config.RefreshInterval == 0 {
		config.RefreshInterval = time.Second
	}
	if config.Timeout == 0 {
		config.Timeout = 5 * time.Second
	}
	return &WatchModel{
		backend:         config.Backend,
		keys:            defaultKeys(),
		help:            help.New(),
		refreshInterval: config.RefreshInterval,
		timeout:         config.Timeout,
		now:             time.Now,
	}
}

// Init initializes the model.
func (m *WatchModel) Init() tea.Cmd {
	return tea.Batch(m.tickCmd(), m.fetchCmd())
}

// Update handles messages and updates the model.
func (m *WatchModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKeyPress(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		return m, nil

	case tickMsg:
		if !m.messageExp.IsZero() && m.now().After(m.messageExp) {
			m.message = ""
			m.messageExp = time.Time{}
		}
		return m, tea.Batch(m.tickCmd(), m.fetchCmd())

	case statusMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.status = msg.status
		m.err = nil
		return m, nil

	case actionMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		switch msg.kind {
		case reminder.EventConfirm:
			m.setMessage("Reminders stopped", 3*time.Second)
		case reminder.EventDeny:
			m.setMessage("Not driving, reminders skipped", 3*time.Second)
		}
		return m, m.fetchCmd()
	}

	return m, nil
}

func (m *WatchModel) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Confirm):
		return m, m.actionCmd(reminder.EventConfirm)

	case key.Matches(msg, m.keys.Deny):
		return m, m.actionCmd(reminder.EventDeny)

	case key.Matches(msg, m.keys.Refresh):
		m.setMessage("Refreshed", time.Second)
		return m, m.fetchCmd()

	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		return m, nil
	}
	return m, nil
}

// View renders the watch view.
func (m *WatchModel) View() string {
	if m.width == 0 {
		return "Loading..."
	}

	now := m.now()
	sections := []string{m.renderHeader(now)}

	if m.err != nil {
		sections = append(sections, StyleError.Render(fmt.Sprintf("Error: %v", m.err)))
	}
	if m.message != "" {
		sections = append(sections, StyleWarning.Render(m.message))
	}

	sections = append(sections, NewStatusComponent(m.status, m.width, now).View())
	if details := NewDetailsComponent(m.status, m.width, now).View(); details != "" {
		sections = append(sections, details)
	}
	sections = append(sections, StyleHelp.Render(m.help.View(m.keys)))

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m *WatchModel) renderHeader(now time.Time) string {
	title := StyleTitle.Render("Baby Reminder")
	timeStr := StyleSubtitle.Render(now.Format("Mon Jan 2, 15:04:05"))
	return lipgloss.JoinHorizontal(lipgloss.Top, title, "  ", timeStr) + "\n"
}

func (m *WatchModel) setMessage(msg string, duration time.Duration) {
	m.message = msg
	m.messageExp = m.now().Add(duration)
}

func (m *WatchModel) tickCmd() tea.Cmd {
	return tea.Tick(m.refreshInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m *WatchModel) fetchCmd() tea.Cmd {
	backend, timeout := m.backend, m.timeout
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		st, err := backend.Status(ctx)
		return statusMsg{status: st, err: err}
	}
}

func (m *WatchModel) actionCmd(kind reminder.EventKind) tea.Cmd {
	backend, timeout, now := m.backend, m.timeout, m.now
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		err := backend.Submit(ctx, reminder.Event{Kind: kind, At: now(), Source: "watch"})
		return actionMsg{kind: kind, err: err}
	}
}

// Run starts the watch view.
func Run(config WatchConfig) error {
	p := tea.NewProgram(NewWatchModel(config), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
