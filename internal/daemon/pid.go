// Package daemon runs the reminder core as a long-lived background process
// and manages its PID file, log file and service unit.
package daemon

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"

	"github.com/adrg/xdg"
)

const (
	// AppName is the application name used for state directories.
	AppName = "babyreminder"
	// PIDFileName is the PID file name.
	PIDFileName = "babyreminder.pid"
)

var (
	ErrNotRunning     = errors.New("daemon is not running")
	ErrAlreadyRunning = errors.New("daemon is already running")
)

// PIDFile records which process owns the daemon role. A file naming a dead
// process is stale and may be taken over.
type PIDFile struct {
	path string
}

// NewPIDFile returns the PID file in the XDG state directory. The runtime
// dir is avoided because macOS does not provide one.
func NewPIDFile() *PIDFile {
	return NewPIDFileAt(filepath.Join(xdg.StateHome, AppName, PIDFileName))
}

// NewPIDFileAt returns the PID file at path.
func NewPIDFileAt(path string) *PIDFile {
	return &PIDFile{path: path}
}

// Path returns the PID file path.
func (p *PIDFile) Path() string {
	return p.path
}

// Acquire records the current process as the daemon. When a live process
// already holds the file its PID is returned with ErrAlreadyRunning.
func (p *PIDFile) Acquire() (int, error) {
	if holder := p.Running(); holder != 0 {
		return holder, ErrAlreadyRunning
	}
	if err := os.MkdirAll(filepath.Dir(p.path), 0o755); err != nil {
		return 0, fmt.Errorf("create PID directory: %w", err)
	}

	// Readers never see a half-written PID.
	tmp := p.path + ".tmp"
	if err := os.WriteFile(tmp, []byte(strconv.Itoa(os.Getpid())+"\n"), 0o644); err != nil {
		return 0, fmt.Errorf("write PID file: %w", err)
	}
	if err := os.Rename(tmp, p.path); err != nil {
		os.Remove(tmp)
		return 0, fmt.Errorf("write PID file: %w", err)
	}
	return os.Getpid(), nil
}

// Release removes the file if it still names the current process.
func (p *PIDFile) Release() error {
	pid, err := p.Read()
	if err != nil || pid != os.Getpid() {
		return nil
	}
	return p.Clear()
}

// Clear removes the file regardless of owner. Missing files are fine.
func (p *PIDFile) Clear() error {
	if err := os.Remove(p.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove PID file: %w", err)
	}
	return nil
}

// Read returns the recorded PID, or ErrNotRunning when there is no file.
func (p *PIDFile) Read() (int, error) {
	data, err := os.ReadFile(p.path)
	if os.IsNotExist(err) {
		return 0, ErrNotRunning
	}
	if err != nil {
		return 0, fmt.Errorf("read PID file: %w", err)
	}
	pid, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil {
		return 0, fmt.Errorf("invalid PID file %s: %w", p.path, err)
	}
	return pid, nil
}

// Running returns the PID of the live daemon, or 0.
func (p *PIDFile) Running() int {
	pid, err := p.Read()
	if err != nil || !IsProcessRunning(pid) {
		return 0
	}
	return pid
}

// IsProcessRunning probes pid with signal 0.
func IsProcessRunning(pid int) bool {
	if pid <= 0 {
		return false
	}
	proc, err := os.FindProcess(pid)
	if err != nil {
		return false
	}
	return proc.Signal(syscall.Signal(0)) == nil
}
