package cmd

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/manav03panchal/babyreminder/internal/daemon"
	"github.com/manav03panchal/babyreminder/internal/errors"
	"github.com/manav03panchal/babyreminder/internal/logging"
)

// Daemon command flags.
var (
	daemonStartFlagForeground bool
	daemonLogsFlagTail        int
	daemonLogsFlagFollow      bool
	daemonInstallFlagForce    bool
)

// followInterval is how often "daemon logs --follow" polls the log file.
const followInterval = 500 * time.Millisecond

// daemonCmd represents the daemon command.
var daemonCmd = &cobra.Command{
	Use:     "daemon [command]",
	Aliases: []string{"d", "bg", "service"},
	Short:   "Manage the background daemon",
	Long: `Manage the babyreminder daemon. The daemon tracks driving state,
schedules the reminders and shows the notifications; without it no
reminder will fire.

Examples:
  babyreminder daemon start
  babyreminder daemon status
  babyreminder daemon stop
  babyreminder daemon logs --tail 20`,
	RunE: runDaemonStatus,
}

// daemonStartCmd starts the daemon.
var daemonStartCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the background daemon",
	Long: `Start the babyreminder daemon.

Examples:
  babyreminder daemon start              # Start in background
  babyreminder daemon start --foreground # Stay attached (for debugging)`,
	RunE: runDaemonStart,
}

// daemonStopCmd stops the daemon.
var daemonStopCmd = &cobra.Command{
	Use:   "stop",
	Short: "Stop the background daemon",
	RunE:  runDaemonStop,
}

// daemonStatusCmd shows daemon status.
var daemonStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show daemon status",
	RunE:  runDaemonStatus,
}

// daemonLogsCmd shows daemon logs.
var daemonLogsCmd = &cobra.Command{
	Use:   "logs",
	Short: "View daemon logs",
	Long: `View the daemon log file.

Examples:
  babyreminder daemon logs
  babyreminder daemon logs --tail 50
  babyreminder daemon logs --follow`,
	RunE: runDaemonLogs,
}

// daemonInstallCmd installs the daemon as a system service.
var daemonInstallCmd = &cobra.Command{
	Use:   "install",
	Short: "Install daemon as a system service",
	Long: `Install the daemon as a service that starts automatically on login.

On macOS, this creates a launchd agent in ~/Library/LaunchAgents.
On Linux, this creates a systemd user service in ~/.config/systemd/user.

Examples:
  babyreminder daemon install
  babyreminder daemon install --force   # Reinstall if already installed`,
	RunE: runDaemonInstall,
}

// daemonUninstallCmd uninstalls the daemon system service.
var daemonUninstallCmd = &cobra.Command{
	Use:   "uninstall",
	Short: "Uninstall daemon system service",
	Long: `Remove the daemon from system services.

This stops the service and removes the service configuration.`,
	RunE: runDaemonUninstall,
}

func init() {
	daemonStartCmd.Flags().BoolVar(&daemonStartFlagForeground, "foreground", false,
		"Run in foreground (don't daemonize)")

	daemonLogsCmd.Flags().IntVarP(&daemonLogsFlagTail, "tail", "n", 20,
		"Number of lines to show")
	daemonLogsCmd.Flags().BoolVar(&daemonLogsFlagFollow, "follow", false,
		"Follow log output (like tail -f)")

	daemonInstallCmd.Flags().BoolVar(&daemonInstallFlagForce, "force", false,
		"Force reinstall if already installed")

	daemonCmd.AddCommand(daemonStartCmd)
	daemonCmd.AddCommand(daemonStopCmd)
	daemonCmd.AddCommand(daemonStatusCmd)
	daemonCmd.AddCommand(daemonLogsCmd)
	daemonCmd.AddCommand(daemonInstallCmd)
	daemonCmd.AddCommand(daemonUninstallCmd)

	rootCmd.AddCommand(daemonCmd)
}

// runDaemonStart handles the daemon start command.
func runDaemonStart(cmd *cobra.Command, args []string) error {
	if daemonStartFlagForeground {
		return runDaemonForeground(cmd)
	}

	// Background mode never opens the database; the child owns it.
	d := daemon.NewDaemon()
	d.SetDebug(flagDebug)
	d.SetConfigPath(flagConfig)

	pid, err := d.StartBackground()
	if errors.Is(err, daemon.ErrAlreadyRunning) {
		if ctx.IsJSON() {
			return ctx.Formatter.JSON(map[string]any{"status": "already_running", "pid": pid})
		}
		ctx.CLIFormatter().Warning(fmt.Sprintf("Daemon is already running (PID: %d)", pid))
		return nil
	}
	if err != nil {
		return err
	}

	if ctx.IsJSON() {
		return ctx.Formatter.JSON(map[string]any{"status": "started", "pid": pid})
	}
	ctx.CLIFormatter().Success(fmt.Sprintf("Daemon started (PID: %d)", pid))
	return nil
}

// runDaemonForeground runs the daemon in this process until interrupted.
func runDaemonForeground(cmd *cobra.Command) error {
	d := daemon.NewDaemon()
	if d.IsRunning() {
		return &errors.UserError{
			Message:    fmt.Sprintf("daemon is already running (PID: %d)", d.GetStatus().PID),
			Suggestion: "Stop it first with 'babyreminder daemon stop'.",
			Cause:      daemon.ErrAlreadyRunning,
		}
	}

	db, err := ctx.DB()
	if err != nil {
		return err
	}

	logFile, err := daemon.OpenLogFile(d.LogPath())
	if err != nil {
		return err
	}
	defer logFile.Close()

	// Detached children log to the file only; an attached terminal sees both.
	var out io.Writer = logFile
	if isatty.IsTerminal(os.Stderr.Fd()) {
		out = io.MultiWriter(os.Stderr, logFile)
	}
	lc := logging.DefaultConfig()
	lc.Output = out
	lc.Level = logging.ParseLevel(ctx.Config.Log.Level)
	lc.JSON = ctx.Config.Log.JSON
	if ctx.Debug {
		lc = logging.DebugConfig()
		lc.Output = out
	}
	logging.Init(lc)

	parent := cmd.Context()
	if parent == nil {
		parent = context.Background()
	}

	app := daemon.NewApp(parent, ctx.Config, db, daemon.Options{
		LogFile: logFile,
		Version: Version,
	})
	return d.Run(parent, app.APIAddr(), app.Run)
}

// runDaemonStop handles the daemon stop command.
func runDaemonStop(cmd *cobra.Command, args []string) error {
	d := daemon.NewDaemon()
	status := d.GetStatus()

	if !status.Running {
		if ctx.IsJSON() {
			return ctx.Formatter.JSON(map[string]any{"status": "not_running"})
		}
		ctx.CLIFormatter().Muted("Daemon is not running")
		return nil
	}

	if err := d.Stop(); err != nil {
		return err
	}

	if ctx.IsJSON() {
		return ctx.Formatter.JSON(map[string]any{"status": "stopped", "pid": status.PID})
	}
	ctx.CLIFormatter().Success(fmt.Sprintf("Daemon stopped (was PID: %d)", status.PID))
	return nil
}

// runDaemonStatus handles the daemon status command.
func runDaemonStatus(cmd *cobra.Command, args []string) error {
	status := daemon.NewDaemon().GetStatus()

	if ctx.IsJSON() {
		return ctx.Formatter.JSON(status)
	}

	cli := ctx.CLIFormatter()
	cli.Title("Daemon")
	if !status.Running {
		cli.Field("Status", "stopped")
		cli.Field("Log", status.LogPath)
		ctx.Formatter.Println("")
		cli.Muted("No reminders will fire. Start with: babyreminder daemon start")
		return nil
	}

	cli.Field("Status", "running")
	cli.Field("PID", fmt.Sprintf("%d", status.PID))
	if status.Uptime != "" {
		cli.Field("Uptime", status.Uptime)
	}
	if status.APIAddr != "" {
		cli.Field("API", status.APIAddr)
	}
	cli.Field("Log", status.LogPath)
	return nil
}

// runDaemonLogs handles the daemon logs command.
func runDaemonLogs(cmd *cobra.Command, args []string) error {
	logPath := daemon.NewDaemon().LogPath()

	if _, err := os.Stat(logPath); os.IsNotExist(err) {
		ctx.CLIFormatter().Muted("No log file found at " + logPath)
		return nil
	}

	lines, err := daemon.TailLog(logPath, daemonLogsFlagTail)
	if err != nil {
		return err
	}
	for _, line := range lines {
		ctx.Formatter.Println(line)
	}

	if daemonLogsFlagFollow {
		return followLogs(cmd, logPath)
	}
	return nil
}

// followLogs prints lines appended to the log until interrupted.
func followLogs(cmd *cobra.Command, path string) error {
	file, err := os.Open(path)
	if err != nil {
		return err
	}
	defer file.Close()

	if _, err := file.Seek(0, io.SeekEnd); err != nil {
		return err
	}

	parent := cmd.Context()
	if parent == nil {
		parent = context.Background()
	}
	c, stop := signal.NotifyContext(parent, os.Interrupt)
	defer stop()

	reader := bufio.NewReader(file)
	ticker := time.NewTicker(followInterval)
	defer ticker.Stop()

	var partial string
	for {
		for {
			line, err := reader.ReadString('\n')
			if err == io.EOF {
				partial += line
				break
			}
			if err != nil {
				return err
			}
			ctx.Formatter.Print(partial + line)
			partial = ""
		}

		select {
		case <-c.Done():
			return nil
		case <-ticker.C:
		}
	}
}

// runDaemonInstall handles the daemon install command.
func runDaemonInstall(cmd *cobra.Command, args []string) error {
	mgr, err := daemon.NewServiceManager()
	if err != nil {
		return err
	}

	if mgr.IsInstalled() && !daemonInstallFlagForce {
		if ctx.IsJSON() {
			return ctx.Formatter.JSON(map[string]any{"status": "already_installed"})
		}
		ctx.CLIFormatter().Muted("Service is already installed. Use --force to reinstall.")
		return nil
	}

	if mgr.IsInstalled() {
		if err := mgr.Uninstall(); err != nil {
			return fmt.Errorf("failed to remove existing service: %w", err)
		}
	}

	if err := mgr.Install(); err != nil {
		return err
	}

	if ctx.IsJSON() {
		return ctx.Formatter.JSON(map[string]any{
			"status":  "installed",
			"message": "Service will start automatically on login",
		})
	}

	cli := ctx.CLIFormatter()
	cli.Success("Service installed")
	cli.Muted("The daemon now starts automatically when you log in.")
	cli.Muted("To remove: babyreminder daemon uninstall")
	return nil
}

// runDaemonUninstall handles the daemon uninstall command.
func runDaemonUninstall(cmd *cobra.Command, args []string) error {
	mgr, err := daemon.NewServiceManager()
	if err != nil {
		return err
	}

	if !mgr.IsInstalled() {
		if ctx.IsJSON() {
			return ctx.Formatter.JSON(map[string]any{"status": "not_installed"})
		}
		ctx.CLIFormatter().Muted("Service is not installed.")
		return nil
	}

	d := daemon.NewDaemon()
	if d.IsRunning() {
		if err := d.Stop(); err != nil {
			ctx.Debugf("failed to stop daemon: %v", err)
		}
	}

	if err := mgr.Uninstall(); err != nil {
		return err
	}

	if ctx.IsJSON() {
		return ctx.Formatter.JSON(map[string]any{"status": "uninstalled"})
	}

	cli := ctx.CLIFormatter()
	cli.Success("Service uninstalled")
	cli.Muted("The daemon will no longer start automatically.")
	return nil
}
