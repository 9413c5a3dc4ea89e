package cmd

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/manav03panchal/babyreminder/internal/tui"
)

var watchFlagInterval time.Duration

// watchCmd opens the live status view.
var watchCmd = &cobra.Command{
	Use:     "watch",
	Aliases: []string{"ui", "tui"},
	Short:   "Live status view",
	Long: `Open a live view of the driving and reminder state.

Keys:
  c  child is safe (confirm)
  d  no child on board (deny)
  r  refresh now
  ?  more help
  q  quit`,
	Args: cobra.NoArgs,
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().DurationVarP(&watchFlagInterval, "interval", "i", time.Second,
		"Refresh interval")

	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	c, cancel := commandContext(cmd)
	backend, err := ctx.Backend(c)
	cancel()
	if err != nil {
		return err
	}

	return tui.Run(tui.WatchConfig{
		Backend:         backend,
		RefreshInterval: watchFlagInterval,
	})
}
