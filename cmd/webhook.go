package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/manav03panchal/babyreminder/internal/errors"
	"github.com/manav03panchal/babyreminder/internal/logging"
	"github.com/manav03panchal/babyreminder/internal/model"
	"github.com/manav03panchal/babyreminder/internal/service"
)

// Webhook command flags.
var (
	webhookAddFlagType          string
	webhookAddFlagTemplate      string
	webhookAddFlagEmergencyOnly bool
	webhookAddFlagMention       bool
	webhookAddFlagAllowInternal bool
	webhookRemoveFlagForce      bool
	webhookTestFlagAll          bool
)

// webhookCmd represents the webhook command.
var webhookCmd = &cobra.Command{
	Use:     "webhook [command]",
	Aliases: []string{"w", "wh", "hook"},
	Short:   "Configure notification webhooks",
	Long: `Configure webhooks for Discord, Slack, Teams, or custom endpoints.

Every notification the daemon shows is also posted to the enabled
webhooks. Emergency-only webhooks receive just the final reminders.

Examples:
  babyreminder webhook add family https://discord.com/api/webhooks/...
  babyreminder webhook add partner https://hooks.slack.com/services/... --emergency-only --mention
  babyreminder webhook list
  babyreminder webhook test family
  babyreminder webhook disable partner
  babyreminder webhook remove family`,
	RunE: runWebhookList,
}

// webhookAddCmd adds a new webhook.
var webhookAddCmd = &cobra.Command{
	Use:   "add NAME URL",
	Short: "Add a new webhook",
	Long: `Add a webhook for receiving notifications.

The webhook type is auto-detected from the URL:
  - Discord: discord.com/api/webhooks/...
  - Slack:   hooks.slack.com/services/...
  - Teams:   outlook.office.com/webhook/...
  - Generic: Any other URL

Generic webhooks may set --template, a JSON body with {{.Title}},
{{.Message}}, {{.Type}}, {{.Emergency}} and {{.Timestamp}} placeholders.
Use {{json .Message}} to insert a value as a quoted JSON string.

Examples:
  babyreminder webhook add family https://discord.com/api/webhooks/123/abc
  babyreminder webhook add home https://example.com/hook --type generic \
    --template '{"text": {{json .Title}}, "urgent": {{.Emergency}}}'`,
	Args: cobra.ExactArgs(2),
	RunE: runWebhookAdd,
}

// webhookListCmd lists all webhooks.
var webhookListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List all webhooks",
	RunE:    runWebhookList,
}

// webhookTestCmd tests a webhook.
var webhookTestCmd = &cobra.Command{
	Use:   "test [NAME]",
	Short: "Test a webhook by sending a test notification",
	Long: `Send a test notification to verify webhook configuration.

Examples:
  babyreminder webhook test family
  babyreminder webhook test --all`,
	RunE: runWebhookTest,
}

// webhookRemoveCmd removes a webhook.
var webhookRemoveCmd = &cobra.Command{
	Use:     "remove NAME",
	Aliases: []string{"rm", "delete"},
	Short:   "Remove a webhook",
	Args:    cobra.ExactArgs(1),
	RunE:    runWebhookRemove,
}

// webhookEnableCmd enables a webhook.
var webhookEnableCmd = &cobra.Command{
	Use:   "enable NAME",
	Short: "Enable a webhook",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return setWebhookEnabled(cmd, args[0], true)
	},
}

// webhookDisableCmd disables a webhook.
var webhookDisableCmd = &cobra.Command{
	Use:   "disable NAME",
	Short: "Disable a webhook",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return setWebhookEnabled(cmd, args[0], false)
	},
}

func init() {
	// Add flags
	webhookAddCmd.Flags().StringVarP(&webhookAddFlagType, "type", "t", "",
		"Webhook type: discord, slack, teams, generic (auto-detected from URL if not specified)")
	webhookAddCmd.Flags().StringVar(&webhookAddFlagTemplate, "template", "",
		"Custom payload template for generic webhooks")
	webhookAddCmd.Flags().BoolVar(&webhookAddFlagEmergencyOnly, "emergency-only", false,
		"Only send the final, emergency reminders")
	webhookAddCmd.Flags().BoolVar(&webhookAddFlagMention, "mention", false,
		"Mention everyone (@here) on emergency reminders")
	webhookAddCmd.Flags().BoolVar(&webhookAddFlagAllowInternal, "allow-internal", false,
		"Allow localhost and private network URLs")

	webhookRemoveCmd.Flags().BoolVar(&webhookRemoveFlagForce, "force", false,
		"Skip confirmation")

	webhookTestCmd.Flags().BoolVarP(&webhookTestFlagAll, "all", "a", false,
		"Test all enabled webhooks")

	// Dynamic completion for webhook names
	webhookTestCmd.ValidArgsFunction = completeWebhookArgs
	webhookRemoveCmd.ValidArgsFunction = completeWebhookArgs
	webhookEnableCmd.ValidArgsFunction = completeWebhookArgs
	webhookDisableCmd.ValidArgsFunction = completeWebhookArgs

	// Add subcommands
	webhookCmd.AddCommand(webhookAddCmd)
	webhookCmd.AddCommand(webhookListCmd)
	webhookCmd.AddCommand(webhookTestCmd)
	webhookCmd.AddCommand(webhookRemoveCmd)
	webhookCmd.AddCommand(webhookEnableCmd)
	webhookCmd.AddCommand(webhookDisableCmd)

	rootCmd.AddCommand(webhookCmd)
}

// completeWebhookArgs provides completion for webhook names.
func completeWebhookArgs(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	if len(args) != 0 {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	if err := ensureContext(); err != nil {
		return nil, cobra.ShellCompDirectiveError
	}

	c, cancel := commandContext(cmd)
	defer cancel()

	backend, err := ctx.Backend(c)
	if err != nil {
		return nil, cobra.ShellCompDirectiveError
	}
	webhooks, err := backend.Webhooks(c)
	if err != nil {
		return nil, cobra.ShellCompDirectiveError
	}

	var names []string
	for _, wh := range webhooks {
		if strings.HasPrefix(wh.Name, toComplete) {
			names = append(names, wh.Name)
		}
	}
	return names, cobra.ShellCompDirectiveNoFileComp
}

// runWebhookAdd handles the webhook add command.
func runWebhookAdd(cmd *cobra.Command, args []string) error {
	c, cancel := commandContext(cmd)
	defer cancel()

	backend, err := ctx.Backend(c)
	if err != nil {
		return err
	}
	webhook, err := backend.AddWebhook(c, service.WebhookRequest{
		Name:          args[0],
		Type:          webhookAddFlagType,
		URL:           args[1],
		EmergencyOnly: webhookAddFlagEmergencyOnly,
		Mention:       webhookAddFlagMention,
		Template:      webhookAddFlagTemplate,
		AllowInternal: webhookAddFlagAllowInternal,
	})
	if err != nil {
		return err
	}

	if ctx.IsJSON() {
		return ctx.Formatter.JSON(map[string]any{
			"name":           webhook.Name,
			"type":           webhook.Type,
			"url":            logging.MaskURL(webhook.URL),
			"enabled":        webhook.Enabled,
			"emergency_only": webhook.EmergencyOnly,
			"created_at":     webhook.CreatedAt,
		})
	}

	cli := ctx.CLIFormatter()
	cli.Success("Added webhook: " + webhook.Name)
	cli.Field("Type", webhook.Type)
	cli.Field("URL", logging.MaskURL(webhook.URL))
	if webhook.EmergencyOnly {
		cli.Field("Scope", "emergency reminders only")
	}
	ctx.Formatter.Println("")
	cli.Muted(fmt.Sprintf("Test with: babyreminder webhook test %s", webhook.Name))
	return nil
}

// runWebhookList handles the webhook list command.
func runWebhookList(cmd *cobra.Command, args []string) error {
	c, cancel := commandContext(cmd)
	defer cancel()

	backend, err := ctx.Backend(c)
	if err != nil {
		return err
	}
	webhooks, err := backend.Webhooks(c)
	if err != nil {
		return err
	}

	if ctx.IsJSON() {
		masked := make([]model.Webhook, len(webhooks))
		for i, wh := range webhooks {
			masked[i] = *wh
			masked[i].URL = logging.MaskURL(wh.URL)
		}
		return ctx.Formatter.JSON(map[string]any{
			"webhooks": masked,
			"count":    len(webhooks),
		})
	}

	ctx.CLIFormatter().PrintWebhooks(webhooks)
	return nil
}

// runWebhookTest handles the webhook test command.
func runWebhookTest(cmd *cobra.Command, args []string) error {
	c, cancel := commandContext(cmd)
	defer cancel()

	backend, err := ctx.Backend(c)
	if err != nil {
		return err
	}

	var names []string
	switch {
	case webhookTestFlagAll:
		webhooks, err := backend.Webhooks(c)
		if err != nil {
			return err
		}
		for _, wh := range webhooks {
			if wh.Enabled {
				names = append(names, wh.Name)
			}
		}
		if len(names) == 0 {
			return errors.NewUserError("no enabled webhooks to test",
				"Add one with 'babyreminder webhook add <name> <url>'.")
		}
	case len(args) == 1:
		names = args
	default:
		return errors.NewUserError("webhook name required",
			"Pass a name or use --all.")
	}

	results := make([]*service.TestResult, 0, len(names))
	for _, name := range names {
		if !ctx.IsJSON() && len(names) == 1 {
			ctx.CLIFormatter().Muted("Sending test notification to " + name + "...")
		}
		result, err := backend.TestWebhook(c, name)
		if err != nil {
			return err
		}
		results = append(results, result)
	}

	if ctx.IsJSON() {
		if len(results) == 1 {
			return ctx.Formatter.JSON(results[0])
		}
		return ctx.Formatter.JSON(map[string]any{"results": results})
	}
	for _, r := range results {
		ctx.CLIFormatter().PrintTestResult(r)
	}
	return nil
}

// runWebhookRemove handles the webhook remove command.
func runWebhookRemove(cmd *cobra.Command, args []string) error {
	name := args[0]

	// Confirmation (skip if --force)
	if !webhookRemoveFlagForce && !ctx.IsJSON() {
		if !confirm(fmt.Sprintf("Remove webhook %q?", name)) {
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
	if err := backend.RemoveWebhook(c, name); err != nil {
		return err
	}

	if ctx.IsJSON() {
		return ctx.Formatter.JSON(map[string]any{
			"status":  "removed",
			"webhook": name,
		})
	}
	ctx.CLIFormatter().Success("Removed webhook: " + name)
	return nil
}

func setWebhookEnabled(cmd *cobra.Command, name string, enabled bool) error {
	c, cancel := commandContext(cmd)
	defer cancel()

	backend, err := ctx.Backend(c)
	if err != nil {
		return err
	}
	if err := backend.SetWebhookEnabled(c, name, enabled); err != nil {
		return err
	}

	state := "disabled"
	if enabled {
		state = "enabled"
	}
	if ctx.IsJSON() {
		return ctx.Formatter.JSON(map[string]any{
			"status":  state,
			"webhook": name,
		})
	}
	ctx.CLIFormatter().Success(strings.ToUpper(state[:1]) + state[1:] + " webhook: " + name)
	return nil
}
