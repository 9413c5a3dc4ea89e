package daemon

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/adrg/xdg"
	"github.com/manav03panchal/babyreminder/internal/config"
	"github.com/manav03panchal/babyreminder/internal/logging"
)

// Daemon manages the background daemon process: its PID file, state file
// and lifecycle. The reminder work itself is done by an App.
type Daemon struct {
	pidFile    *PIDFile
	statePath  string
	logPath    string
	configPath string
	debug      bool
}

// Status represents the daemon status.
type Status struct {
	Running   bool      `json:"running"`
	PID       int       `json:"pid,omitempty"`
	StartedAt time.Time `json:"started_at,omitempty"`
	Uptime    string    `json:"uptime,omitempty"`
	APIAddr   string    `json:"api_addr,omitempty"`
	LogPath   string    `json:"log_path"`
}

// State holds persistent daemon state.
type State struct {
	StartedAt time.Time `json:"started_at"`
	APIAddr   string    `json:"api_addr,omitempty"`
}

// NewDaemon creates a daemon manager using the default state locations.
func NewDaemon() *Daemon {
	return &Daemon{
		pidFile:   NewPIDFile(),
		statePath: filepath.Join(xdg.StateHome, AppName, "daemon.json"),
		logPath:   GetLogPath(),
	}
}

// NewDaemonAt creates a daemon manager rooted at dir.
func NewDaemonAt(dir string) *Daemon {
	return &Daemon{
		pidFile:   NewPIDFileAt(filepath.Join(dir, PIDFileName)),
		statePath: filepath.Join(dir, "daemon.json"),
		logPath:   filepath.Join(dir, "daemon.log"),
	}
}

// SetDebug enables debug mode for background starts.
func (d *Daemon) SetDebug(debug bool) {
	d.debug = debug
}

// SetConfigPath passes an explicit config file to background starts.
func (d *Daemon) SetConfigPath(path string) {
	d.configPath = path
}

// LogPath returns the daemon log file path.
func (d *Daemon) LogPath() string {
	return d.logPath
}

// GetStatus returns the current daemon status.
func (d *Daemon) GetStatus() *Status {
	status := &Status{LogPath: d.logPath}

	pid := d.pidFile.Running()
	if pid == 0 {
		return status
	}
	status.Running = true
	status.PID = pid
	if state, err := d.readState(); err == nil {
		status.StartedAt = state.StartedAt
		status.Uptime = formatUptime(time.Since(state.StartedAt))
		status.APIAddr = state.APIAddr
	}
	return status
}

// IsRunning returns true if the daemon is running.
func (d *Daemon) IsRunning() bool {
	return d.pidFile.Running() != 0
}

// Run runs fn in the foreground until it returns or the process receives
// SIGINT, SIGTERM or SIGHUP. The PID and state files exist while fn runs.
func (d *Daemon) Run(ctx context.Context, apiAddr string, fn func(context.Context) error) error {
	if _, err := d.pidFile.Acquire(); err != nil {
		return err
	}
	defer d.pidFile.Release()

	if err := d.writeState(&State{StartedAt: time.Now(), APIAddr: apiAddr}); err != nil {
		return err
	}
	defer d.removeState()

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM, syscall.SIGHUP)
	defer stop()

	logging.Info("daemon started", "pid", os.Getpid())
	err := fn(ctx)
	logging.Info("daemon stopped")
	return err
}

// StartBackground re-executes the binary with "daemon start --foreground"
// detached from the terminal, and waits for it to write its PID file.
func (d *Daemon) StartBackground() (int, error) {
	if pid := d.pidFile.Running(); pid != 0 {
		return pid, ErrAlreadyRunning
	}

	executable, err := os.Executable()
	if err != nil {
		return 0, fmt.Errorf("failed to get executable path: %w", err)
	}

	args := []string{"daemon", "start", "--foreground"}
	if d.debug {
		args = append(args, "--debug")
	}
	if d.configPath != "" {
		args = append(args, "--config", d.configPath)
	}
	cmd := exec.Command(executable, args...)
	cmd.Stdin = nil

	// Output before the logger is set up (panics, flag errors) lands in
	// the log file too.
	if err := os.MkdirAll(filepath.Dir(d.logPath), 0755); err == nil {
		if f, err := os.OpenFile(d.logPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644); err == nil {
			defer f.Close()
			cmd.Stdout = f
			cmd.Stderr = f
		}
	}

	if err := cmd.Start(); err != nil {
		return 0, fmt.Errorf("failed to start daemon: %w", err)
	}
	time.Sleep(config.Global.Daemon.StartupWait)

	if d.pidFile.Running() == 0 {
		if msg := d.readLastLogError(); msg != "" {
			return 0, fmt.Errorf("daemon failed to start: %s", msg)
		}
		return 0, fmt.Errorf("daemon failed to start (check logs: %s)", d.logPath)
	}
	return cmd.Process.Pid, nil
}

// readLastLogError finds an error line near the end of the log file.
func (d *Daemon) readLastLogError() string {
	lines, err := TailLog(d.logPath, 10)
	if err != nil {
		return ""
	}
	for i := len(lines) - 1; i >= 0; i-- {
		line := strings.TrimSpace(lines[i])
		lower := strings.ToLower(line)
		if strings.Contains(lower, "error") || strings.Contains(lower, "failed to") {
			return line
		}
	}
	return ""
}

// Stop signals the running daemon and waits for it to exit, killing it
// after the configured timeout.
func (d *Daemon) Stop() error {
	pid := d.pidFile.Running()
	if pid == 0 {
		return ErrNotRunning
	}

	process, err := os.FindProcess(pid)
	if err != nil {
		return fmt.Errorf("failed to find process: %w", err)
	}
	if err := process.Signal(syscall.SIGTERM); err != nil {
		if err := process.Kill(); err != nil {
			return fmt.Errorf("failed to stop daemon: %w", err)
		}
	}

	// The daemon is not our child, so poll instead of Wait.
	deadline := time.Now().Add(config.Global.Daemon.KillTimeout)
	for IsProcessRunning(pid) {
		if time.Now().After(deadline) {
			logging.Warn("daemon did not exit in time, killing", "pid", pid)
			process.Kill()
			break
		}
		time.Sleep(100 * time.Millisecond)
	}

	d.pidFile.Clear()
	d.removeState()
	return nil
}

func (d *Daemon) writeState(state *State) error {
	if err := os.MkdirAll(filepath.Dir(d.statePath), 0755); err != nil {
		return err
	}
	data, err := json.Marshal(state)
	if err != nil {
		return err
	}
	return os.WriteFile(d.statePath, data, 0644)
}

func (d *Daemon) readState() (*State, error) {
	data, err := os.ReadFile(d.statePath)
	if err != nil {
		return nil, err
	}
	var state State
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, err
	}
	return &state, nil
}

func (d *Daemon) removeState() {
	if err := os.Remove(d.statePath); err != nil && !os.IsNotExist(err) {
		logging.Warn("failed to remove daemon state file", logging.KeyError, err, "path", d.statePath)
	}
}

// formatUptime formats a duration as uptime.
func formatUptime(d time.Duration) string {
	if d < time.Minute {
		return fmt.Sprintf("%ds", int(d.Seconds()))
	}
	if d < time.Hour {
		return fmt.Sprintf("%dm", int(d.Minutes()))
	}
	if d < 24*time.Hour {
		hours := int(d.Hours())
		minutes := int(d.Minutes()) % 60
		if minutes > 0 {
			return fmt.Sprintf("%dh %dm", hours, minutes)
		}
		return fmt.Sprintf("%dh", hours)
	}

	days := int(d.Hours() / 24)
	hours := int(d.Hours()) % 24
	if hours > 0 {
		return fmt.Sprintf("%dd %dh", days, hours)
	}
	return fmt.Sprintf("%dd", days)
}
