package cmd

import (
	"strings"

	"github.com/spf13/cobra"
)

// deviceCmd manages the car Bluetooth allowlist.
var deviceCmd = &cobra.Command{
	Use:     "device [command]",
	Aliases: []string{"devices", "car"},
	Short:   "Manage car Bluetooth devices",
	Long: `Manage the Bluetooth device names that count as your car.

Connecting to one of these devices starts a drive, disconnecting ends it.
With no devices saved only car mode and the ignition line are used.

Examples:
  babyreminder device add "My Toyota"
  babyreminder device list
  babyreminder device remove "My Toyota"`,
	RunE: runDeviceList,
}

var deviceAddCmd = &cobra.Command{
	Use:   "add NAME...",
	Short: "Add car devices",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runDeviceAdd,
}

var deviceRemoveCmd = &cobra.Command{
	Use:               "remove NAME",
	Aliases:           []string{"rm", "delete"},
	Short:             "Remove a car device",
	Args:              cobra.ExactArgs(1),
	ValidArgsFunction: completeDeviceArgs,
	RunE:              runDeviceRemove,
}

var deviceListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List car devices",
	Args:    cobra.NoArgs,
	RunE:    runDeviceList,
}

func init() {
	deviceCmd.AddCommand(deviceAddCmd)
	deviceCmd.AddCommand(deviceRemoveCmd)
	deviceCmd.AddCommand(deviceListCmd)

	rootCmd.AddCommand(deviceCmd)
}

func runDeviceAdd(cmd *cobra.Command, args []string) error {
	c, cancel := commandContext(cmd)
	defer cancel()

	backend, err := ctx.Backend(c)
	if err != nil {
		return err
	}
	for _, name := range args {
		if err := backend.AddDevice(c, name); err != nil {
			return err
		}
	}

	if ctx.IsJSON() {
		devices, err := backend.Devices(c)
		if err != nil {
			return err
		}
		return ctx.Formatter.JSON(map[string]any{"status": "added", "devices": devices})
	}
	for _, name := range args {
		ctx.CLIFormatter().Success("Added device: " + strings.TrimSpace(name))
	}
	return nil
}

func runDeviceRemove(cmd *cobra.Command, args []string) error {
	c, cancel := commandContext(cmd)
	defer cancel()

	backend, err := ctx.Backend(c)
	if err != nil {
		return err
	}
	if err := backend.RemoveDevice(c, args[0]); err != nil {
		return err
	}

	if ctx.IsJSON() {
		return ctx.Formatter.JSON(map[string]any{"status": "removed", "device": args[0]})
	}
	ctx.CLIFormatter().Success("Removed device: " + args[0])
	return nil
}

func runDeviceList(cmd *cobra.Command, args []string) error {
	c, cancel := commandContext(cmd)
	defer cancel()

	backend, err := ctx.Backend(c)
	if err != nil {
		return err
	}
	devices, err := backend.Devices(c)
	if err != nil {
		return err
	}

	if ctx.IsJSON() {
		return ctx.Formatter.JSON(map[string]any{"devices": devices, "count": len(devices)})
	}
	ctx.CLIFormatter().PrintDevices(devices)
	return nil
}

// completeDeviceArgs completes saved device names.
func completeDeviceArgs(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
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
	devices, err := backend.Devices(c)
	if err != nil {
		return nil, cobra.ShellCompDirectiveError
	}

	var names []string
	for _, d := range devices {
		if strings.HasPrefix(d, toComplete) {
			names = append(names, d)
		}
	}
	return names, cobra.ShellCompDirectiveNoFileComp
}
