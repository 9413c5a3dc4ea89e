// Package cmd provides the CLI commands for babyreminder.
//
// This software is a derivative work based on Zeit (https://github.com/mrusme/zeit)
// Original work copyright (c) マリウス (mrusme)
// Modifications copyright (c) Manav Panchal
//
// Licensed under the SEGV License, Version 1.0
// See LICENSE file for full license text.
package cmd

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/manav03panchal/babyreminder/internal/config"
	"github.com/manav03panchal/babyreminder/internal/errors"
	"github.com/manav03panchal/babyreminder/internal/logging"
	"github.com/manav03panchal/babyreminder/internal/output"
	"github.com/manav03panchal/babyreminder/internal/runtime"
)

// Version information (set at build time via ldflags).
var (
	Version   = "dev"
	Commit    = "unknown"
	BuildTime = "unknown"
)

// Global flags.
var (
	flagFormat string
	flagColor  string
	flagDebug  bool
	flagConfig string
)

// commandTimeout bounds a single command's calls to the daemon or database.
const commandTimeout = 30 * time.Second

// ctx is the shared runtime context.
var ctx *runtime.Context

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "babyreminder",
	Short: "Reminds you to check the back seat when a drive ends",
	Long: `babyreminder watches for the signs that a drive has started and ended
(car Bluetooth, car mode, an ignition line) and keeps reminding you to
check the back seat until you confirm.

Examples:
  babyreminder device add "My Toyota"
  babyreminder schedule add weekdays 07:30 09:00
  babyreminder daemon start
  babyreminder status
  babyreminder respond confirm`,
	SilenceErrors: true,
	SilenceUsage:  true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Skip initialization for completion and help commands
		if cmd.Name() == "completion" || cmd.Name() == "help" {
			return nil
		}

		cfg, err := config.Load(flagConfig)
		if err != nil {
			return err
		}
		initLogging(cfg)

		var format output.Format
		switch flagFormat {
		case "json":
			format = output.FormatJSON
		case "plain":
			format = output.FormatPlain
		default:
			format = output.FormatCLI
		}

		var colorMode output.ColorMode
		switch flagColor {
		case "always":
			colorMode = output.ColorAlways
		case "never":
			colorMode = output.ColorNever
		default:
			colorMode = output.ColorAuto
		}

		opts := runtime.DefaultOptions()
		opts.DBPath = cfg.Database.Path
		opts.Format = format
		opts.ColorMode = colorMode
		opts.Debug = flagDebug
		opts.Config = cfg

		ctx, err = runtime.New(opts)
		return err
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		if ctx != nil {
			return ctx.Close()
		}
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		// Default behavior: show current status
		return runStatus(cmd, args)
	},
}

// initLogging sends command logs to stderr. Commands stay quiet unless
// --debug is set; the daemon re-initializes logging for its log file.
func initLogging(cfg *config.RuntimeConfig) {
	lc := logging.DefaultConfig()
	lc.Level = slog.LevelWarn
	lc.JSON = cfg.Log.JSON
	if flagDebug {
		lc.Level = slog.LevelDebug
		lc.AddSource = true
	}
	logging.Init(lc)
}

// ensureContext builds the runtime context for shell completion, which
// runs without the persistent pre-run hook.
func ensureContext() error {
	if ctx != nil {
		return nil
	}
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return err
	}
	opts := runtime.DefaultOptions()
	opts.DBPath = cfg.Database.Path
	opts.Config = cfg
	ctx, err = runtime.New(opts)
	return err
}

// commandContext returns a context bounded by commandTimeout.
func commandContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	parent := cmd.Context()
	if parent == nil {
		parent = context.Background()
	}
	return context.WithTimeout(parent, commandTimeout)
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVarP(&flagFormat, "format", "f", "cli",
		"Output format: cli, json, plain")
	rootCmd.PersistentFlags().StringVar(&flagColor, "color", "auto",
		"Color output: auto, always, never")
	rootCmd.PersistentFlags().BoolVar(&flagDebug, "debug", false,
		"Enable debug output")
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "",
		"Config file (default $XDG_CONFIG_HOME/babyreminder/config.yaml)")

	rootCmd.AddCommand(versionCmd)
}

// versionCmd shows version information.
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Printf("babyreminder %s\n", Version)
		cmd.Printf("  commit: %s\n", Commit)
		cmd.Printf("  built: %s\n", BuildTime)
		cmd.Println("")
		cmd.Println("Based on Zeit (https://github.com/mrusme/zeit)")
		cmd.Println("Licensed under SEGV License v1.0")
	},
}

// Die prints an error and exits.
func Die(err error) {
	if ctx != nil && ctx.IsJSON() {
		_ = ctx.JSONFormatter().PrintError(err)
	} else if flagDebug {
		os.Stderr.WriteString(errors.FormatDebugError(err))
	} else {
		os.Stderr.WriteString("Error: " + runtime.FormatError(err) + "\n")
	}
	if ctx != nil {
		_ = ctx.Close()
	}
	os.Exit(1)
}
