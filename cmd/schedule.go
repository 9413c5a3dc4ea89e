package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/manav03panchal/babyreminder/internal/errors"
	"github.com/manav03panchal/babyreminder/internal/output"
	"github.com/manav03panchal/babyreminder/internal/parser"
	"github.com/manav03panchal/babyreminder/internal/service"
)

// Schedule command flags.
var (
	scheduleAddFlagDays  string
	scheduleAddFlagFrom  string
	scheduleAddFlagTo    string
	scheduleCheckFlagAt  string
	scheduleDelFlagForce bool
)

// scheduleCmd manages the windows in which a child is assumed on board.
var scheduleCmd = &cobra.Command{
	Use:     "schedule [command]",
	Aliases: []string{"sched", "rules"},
	Short:   "Manage schedule rules",
	Long: `Manage the weekly windows in which a child is usually in the car.

When a drive starts inside a window and you do not answer the start
notification, babyreminder assumes a child is on board. Windows may cross
midnight, in which case the days are the days the window starts on.

Examples:
  babyreminder schedule add weekdays 07:30 09:00
  babyreminder schedule add --days mon,wed --from 10pm --to 6am
  babyreminder schedule list
  babyreminder schedule check --at "friday 8am"
  babyreminder schedule delete 0192a4b1`,
	RunE: runScheduleList,
}

var scheduleAddCmd = &cobra.Command{
	Use:   "add [DAYS START END]",
	Short: "Add a schedule rule",
	Long: `Add a weekly window. Days, start and end can be given as arguments or
with --days, --from and --to.

Days accept names (mon, tuesday), ranges (mon-fri) and groups
(weekdays, weekends, daily). Times accept 07:30, 7:30am, 10pm or noon.

Examples:
  babyreminder schedule add weekdays 07:30 09:00
  babyreminder schedule add mon,wed,fri 3pm 4:30pm
  babyreminder schedule add --days sat --from 10pm --to 2am`,
	Args: func(cmd *cobra.Command, args []string) error {
		if len(args) != 0 && len(args) != 3 {
			return errors.NewUserError("expected DAYS START END or --days, --from and --to",
				"For example: babyreminder schedule add weekdays 07:30 09:00")
		}
		return nil
	},
	RunE: runScheduleAdd,
}

var scheduleListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List schedule rules",
	Args:    cobra.NoArgs,
	RunE:    runScheduleList,
}

var scheduleDeleteCmd = &cobra.Command{
	Use:     "delete ID",
	Aliases: []string{"rm", "remove"},
	Short:   "Delete a schedule rule by id or id prefix",
	Args:    cobra.ExactArgs(1),
	RunE:    runScheduleDelete,
}

var scheduleCheckCmd = &cobra.Command{
	Use:   "check",
	Short: "Check whether a time falls inside a schedule window",
	Long: `Report whether the given time (default now) is inside any schedule window.

Examples:
  babyreminder schedule check
  babyreminder schedule check --at "tomorrow 8am"`,
	Args: cobra.NoArgs,
	RunE: runScheduleCheck,
}

var scheduleMigrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Rewrite rules saved in the old format",
	Args:  cobra.NoArgs,
	RunE:  runScheduleMigrate,
}

func init() {
	scheduleAddCmd.Flags().StringVarP(&scheduleAddFlagDays, "days", "d", "",
		"Days of the week (e.g. mon,wed or weekdays)")
	scheduleAddCmd.Flags().StringVar(&scheduleAddFlagFrom, "from", "",
		"Window start time (e.g. 07:30 or 7:30am)")
	scheduleAddCmd.Flags().StringVar(&scheduleAddFlagTo, "to", "",
		"Window end time (e.g. 09:00 or 9am)")

	scheduleCheckCmd.Flags().StringVar(&scheduleCheckFlagAt, "at", "",
		"Time to check (default now)")

	scheduleDeleteCmd.Flags().BoolVar(&scheduleDelFlagForce, "force", false,
		"Skip confirmation")

	scheduleCmd.AddCommand(scheduleAddCmd)
	scheduleCmd.AddCommand(scheduleListCmd)
	scheduleCmd.AddCommand(scheduleDeleteCmd)
	scheduleCmd.AddCommand(scheduleCheckCmd)
	scheduleCmd.AddCommand(scheduleMigrateCmd)

	rootCmd.AddCommand(scheduleCmd)
}

// ruleRequest builds a rule from positional arguments or flags.
func ruleRequest(args []string) (service.RuleRequest, error) {
	days, from, to := scheduleAddFlagDays, scheduleAddFlagFrom, scheduleAddFlagTo
	if len(args) == 3 {
		days, from, to = args[0], args[1], args[2]
	}
	if days == "" {
		return service.RuleRequest{}, errors.ErrNoDays
	}

	var req service.RuleRequest
	var err error
	if req.Days, err = parser.ParseDays(days); err != nil {
		return req, parser.AsUserError(err)
	}
	if req.Start, err = parser.ParseClock(from); err != nil {
		return req, parser.AsUserError(err)
	}
	if req.End, err = parser.ParseClock(to); err != nil {
		return req, parser.AsUserError(err)
	}
	return req, nil
}

func runScheduleAdd(cmd *cobra.Command, args []string) error {
	req, err := ruleRequest(args)
	if err != nil {
		return err
	}

	c, cancel := commandContext(cmd)
	defer cancel()

	backend, err := ctx.Backend(c)
	if err != nil {
		return err
	}
	rule, err := backend.AddRule(c, req)
	if err != nil {
		return err
	}

	if ctx.IsJSON() {
		return ctx.Formatter.JSON(output.NewRuleOutput(rule))
	}
	ctx.CLIFormatter().PrintRule("Added", rule)
	return nil
}

func runScheduleList(cmd *cobra.Command, args []string) error {
	c, cancel := commandContext(cmd)
	defer cancel()

	backend, err := ctx.Backend(c)
	if err != nil {
		return err
	}
	rules, err := backend.Rules(c)
	if err != nil {
		return err
	}

	if ctx.IsJSON() {
		return ctx.Formatter.JSON(output.NewRulesResponse(rules))
	}
	ctx.CLIFormatter().PrintRules(rules)
	return nil
}

func runScheduleDelete(cmd *cobra.Command, args []string) error {
	if !scheduleDelFlagForce && !ctx.IsJSON() {
		if !confirm(fmt.Sprintf("Delete rule %s?", args[0])) {
			ctx.Formatter.Println("Cancelled.")
			return nil
		}
	}

	c, cancel := commandContext(cmd)
	defer cancel()

	backend, err := ctx.Backend(c)
	if err != nil {
		return err
	}
	rule, err := backend.DeleteRule(c, args[0])
	if err != nil {
		return err
	}

	if ctx.IsJSON() {
		return ctx.Formatter.JSON(output.NewRuleOutput(rule))
	}
	ctx.CLIFormatter().PrintRule("Deleted", rule)
	return nil
}

func runScheduleCheck(cmd *cobra.Command, args []string) error {
	at := time.Now()
	if scheduleCheckFlagAt != "" {
		t, err := parser.ParseTimestamp(scheduleCheckFlagAt)
		if err != nil {
			return parser.AsUserError(err)
		}
		at = t
	}

	c, cancel := commandContext(cmd)
	defer cancel()

	backend, err := ctx.Backend(c)
	if err != nil {
		return err
	}
	inside, err := backend.CheckWindow(c, at)
	if err != nil {
		return err
	}

	if ctx.IsJSON() {
		return ctx.Formatter.JSON(map[string]any{"at": at, "in_window": inside})
	}
	when := at.Format("Mon 15:04")
	if inside {
		ctx.CLIFormatter().Success(when + " is inside a schedule window")
	} else {
		ctx.CLIFormatter().Muted(when + " is outside every schedule window")
	}
	return nil
}

func runScheduleMigrate(cmd *cobra.Command, args []string) error {
	c, cancel := commandContext(cmd)
	defer cancel()

	backend, err := ctx.Backend(c)
	if err != nil {
		return err
	}
	n, err := backend.MigrateRules(c)
	if err != nil {
		return err
	}

	if ctx.IsJSON() {
		return ctx.Formatter.JSON(map[string]any{"status": "migrated", "count": n})
	}
	if n == 0 {
		ctx.CLIFormatter().Muted("No rules needed migrating.")
		return nil
	}
	ctx.CLIFormatter().Success(fmt.Sprintf("Migrated %d rule(s)", n))
	return nil
}
