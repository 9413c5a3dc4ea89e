package daemon

import (
	"bytes"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"text/template"

	"github.com/adrg/xdg"
	"github.com/manav03panchal/babyreminder/internal/logging"
)

const (
	launchdLabel = "com.babyreminder.daemon"
	systemdUnit  = "babyreminder.service"
)

// ServiceManager installs the daemon as a user service so it starts at
// login and is restarted if it dies.
type ServiceManager struct {
	executablePath string
	logPath        string
	goos           string
}

// NewServiceManager creates a service manager for the running binary.
func NewServiceManager() (*ServiceManager, error) {
	execPath, err := os.Executable()
	if err != nil {
		return nil, fmt.Errorf("failed to get executable path: %w", err)
	}
	return &ServiceManager{
		executablePath: execPath,
		logPath:        GetLogPath(),
		goos:           runtime.GOOS,
	}, nil
}

// UnitPath returns where the unit file is installed.
func (m *ServiceManager) UnitPath() (string, error) {
	switch m.goos {
	case "darwin":
		return filepath.Join(os.Getenv("HOME"), "Library", "LaunchAgents", launchdLabel+".plist"), nil
	case "linux":
		return filepath.Join(xdg.ConfigHome, "systemd", "user", systemdUnit), nil
	default:
		return "", fmt.Errorf("unsupported operating system: %s", m.goos)
	}
}

// Render returns the unit file content for the current platform.
func (m *ServiceManager) Render() (string, error) {
	var src string
	switch m.goos {
	case "darwin":
		src = launchdPlist
	case "linux":
		src = systemdTemplate
	default:
		return "", fmt.Errorf("unsupported operating system: %s", m.goos)
	}

	tmpl, err := template.New("unit").Parse(src)
	if err != nil {
		return "", fmt.Errorf("failed to parse unit template: %w", err)
	}
	data := struct {
		Label            string
		ExecutablePath   string
		LogPath          string
		WorkingDirectory string
		HomeDirectory    string
		DataHome         string
		StateHome        string
		ConfigHome       string
	}{
		Label:            launchdLabel,
		ExecutablePath:   m.executablePath,
		LogPath:          m.logPath,
		WorkingDirectory: filepath.Dir(m.executablePath),
		HomeDirectory:    os.Getenv("HOME"),
		DataHome:         xdg.DataHome,
		StateHome:        xdg.StateHome,
		ConfigHome:       xdg.ConfigHome,
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to render unit: %w", err)
	}
	return buf.String(), nil
}

// Install writes the unit file and loads it.
func (m *ServiceManager) Install() error {
	path, err := m.UnitPath()
	if err != nil {
		return err
	}
	content, err := m.Render()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create unit directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		return fmt.Errorf("failed to write unit file: %w", err)
	}

	var steps [][]string
	if m.goos == "darwin" {
		steps = [][]string{{"launchctl", "load", path}}
	} else {
		steps = [][]string{
			{"systemctl", "--user", "daemon-reload"},
			{"systemctl", "--user", "enable", systemdUnit},
			{"systemctl", "--user", "start", systemdUnit},
		}
	}
	for _, step := range steps {
		if out, err := exec.Command(step[0], step[1:]...).CombinedOutput(); err != nil {
			return fmt.Errorf("%s failed: %w: %s", step[0], err, out)
		}
	}

	logging.DebugLog("installed service", "path", path)
	return nil
}

// Uninstall stops the service and removes the unit file.
func (m *ServiceManager) Uninstall() error {
	path, err := m.UnitPath()
	if err != nil {
		return err
	}

	// Errors are ignored: the service may not be loaded or running.
	if m.goos == "darwin" {
		exec.Command("launchctl", "unload", path).Run()
	} else {
		exec.Command("systemctl", "--user", "stop", systemdUnit).Run()
		exec.Command("systemctl", "--user", "disable", systemdUnit).Run()
	}

	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove unit file: %w", err)
	}
	if m.goos == "linux" {
		exec.Command("systemctl", "--user", "daemon-reload").Run()
	}

	logging.DebugLog("uninstalled service", "path", path)
	return nil
}

// IsInstalled checks if the unit file exists.
func (m *ServiceManager) IsInstalled() bool {
	path, err := m.UnitPath()
	if err != nil {
		return false
	}
	_, err = os.Stat(path)
	return err == nil
}

const launchdPlist = `<?xml version="1.0" encoding="UTF-8"?>
<!DOCTYPE plist PUBLIC "-//Apple//DTD PLIST 1.0//EN" "http://www.apple.com/DTDs/PropertyList-1.0.dtd">
<plist version="1.0">
<dict>
    <key>Label</key>
    <string>{{.Label}}</string>
    <key>ProgramArguments</key>
    <array>
        <string>{{.ExecutablePath}}</string>
        <string>daemon</string>
        <string>start</string>
        <string>--foreground</string>
    </array>
    <key>RunAtLoad</key>
    <true/>
    <key>KeepAlive</key>
    <true/>
    <key>StandardOutPath</key>
    <string>{{.LogPath}}</string>
    <key>StandardErrorPath</key>
    <string>{{.LogPath}}</string>
    <key>WorkingDirectory</key>
    <string>{{.WorkingDirectory}}</string>
</dict>
</plist>
`

const systemdTemplate = `[Unit]
Description=Baby Reminder Daemon
After=network-online.target bluetooth.target

[Service]
Type=simple
ExecStart={{.ExecutablePath}} daemon start --foreground
Restart=on-failure
RestartSec=5
StandardOutput=append:{{.LogPath}}
StandardError=append:{{.LogPath}}
Environment="HOME={{.HomeDirectory}}"
Environment="XDG_DATA_HOME={{.DataHome}}"
Environment="XDG_STATE_HOME={{.StateHome}}"
Environment="XDG_CONFIG_HOME={{.ConfigHome}}"

[Install]
WantedBy=default.target
`
