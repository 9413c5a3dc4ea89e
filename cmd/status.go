package cmd

import (
	"github.com/spf13/cobra"
)

// statusCmd shows the driving flag, session and configuration summary.
var statusCmd = &cobra.Command{
	Use:     "status",
	Aliases: []string{"st"},
	Short:   "Show driving and reminder status",
	Long: `Show whether a drive is in progress, the reminder session state, and a
summary of devices, schedule rules and webhooks.

Reads from the daemon when it is running, otherwise from the database.

Examples:
  babyreminder status
  babyreminder status --format json`,
	Args: cobra.NoArgs,
	RunE: runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

// runStatus shows the current status.
func runStatus(cmd *cobra.Command, args []string) error {
	c, cancel := commandContext(cmd)
	defer cancel()

	backend, err := ctx.Backend(c)
	if err != nil {
		return err
	}
	st, err := backend.Status(c)
	if err != nil {
		return err
	}

	if ctx.IsJSON() {
		return ctx.Formatter.JSON(st)
	}
	ctx.CLIFormatter().PrintStatus(st)
	return nil
}
