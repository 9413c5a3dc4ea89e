package cmd

import (
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/manav03panchal/babyreminder/internal/journal"
	"github.com/manav03panchal/babyreminder/internal/output"
	"github.com/manav03panchal/babyreminder/internal/parser"
	"github.com/manav03panchal/babyreminder/internal/reminder"
)

// History command flags.
var (
	historyFlagSince  string
	historyFlagLimit  int
	historyFlagKinds  []string
	historyFlagFailed bool
)

// historyCmd lists handled events from the journal.
var historyCmd = &cobra.Command{
	Use:     "history",
	Aliases: []string{"log", "events"},
	Short:   "Show recently handled events",
	Long: `Show the events the daemon handled and what it did for each one.

Examples:
  babyreminder history
  babyreminder history --since "this week"
  babyreminder history --since 2h --kind confirm,deny
  babyreminder history --failed`,
	Args: cobra.NoArgs,
	RunE: runHistory,
}

func init() {
	historyCmd.Flags().StringVarP(&historyFlagSince, "since", "s", "",
		"Only events after this time (e.g. 2h, yesterday, this week)")
	historyCmd.Flags().IntVarP(&historyFlagLimit, "limit", "n", 20,
		"Maximum number of events")
	historyCmd.Flags().StringSliceVarP(&historyFlagKinds, "kind", "k", nil,
		"Only these event kinds")
	historyCmd.Flags().BoolVar(&historyFlagFailed, "failed", false,
		"Only events whose handling failed")

	rootCmd.AddCommand(historyCmd)
}

func runHistory(cmd *cobra.Command, args []string) error {
	var since time.Time
	if historyFlagSince != "" {
		t, err := parser.ParseSince(historyFlagSince, time.Now())
		if err != nil {
			return parser.AsUserError(err)
		}
		since = t
	}

	kinds := make([]string, 0, len(historyFlagKinds))
	for _, k := range historyFlagKinds {
		kind, err := reminder.ParseEventKind(k)
		if err != nil {
			return err
		}
		kinds = append(kinds, string(kind))
	}

	c, cancel := commandContext(cmd)
	defer cancel()

	j, err := ctx.Journal(c)
	if err != nil {
		return err
	}
	entries, err := j.Recent(c, historyFlagLimit, kinds...)
	if err != nil {
		return err
	}
	entries = filterEntries(entries, since, historyFlagFailed)

	if ctx.IsJSON() {
		return ctx.Formatter.JSON(output.NewHistoryResponse(entries))
	}
	if len(entries) == 0 {
		ctx.CLIFormatter().Muted("No events" + describeFilter(since, kinds) + ".")
		return nil
	}
	ctx.CLIFormatter().PrintHistory(entries)
	return nil
}

// filterEntries drops entries older than since and, when failedOnly is
// set, entries that were handled cleanly.
func filterEntries(entries []journal.Entry, since time.Time, failedOnly bool) []journal.Entry {
	out := entries[:0]
	for _, e := range entries {
		if !since.IsZero() && e.Timestamp.Before(since) {
			continue
		}
		if failedOnly && !e.Failed() {
			continue
		}
		out = append(out, e)
	}
	return out
}

func describeFilter(since time.Time, kinds []string) string {
	var parts []string
	if len(kinds) > 0 {
		parts = append(parts, " of kind "+strings.Join(kinds, ", "))
	}
	if !since.IsZero() {
		parts = append(parts, " since "+output.FormatTimeShort(since))
	}
	return strings.Join(parts, "")
}
