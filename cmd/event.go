package cmd

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/manav03panchal/babyreminder/internal/errors"
	"github.com/manav03panchal/babyreminder/internal/reminder"
)

// eventKinds are the events a user or script may inject. Timer events
// come from the daemon itself.
var eventKinds = []reminder.EventKind{
	reminder.EventBluetoothConnected,
	reminder.EventBluetoothDisconnected,
	reminder.EventCarModeEntered,
	reminder.EventCarModeExited,
	reminder.EventBootCompleted,
}

// eventCmd injects a driving event.
var eventCmd = &cobra.Command{
	Use:   "event KIND [DEVICE]",
	Short: "Send a driving event to the daemon",
	Long: `Send a driving event to the daemon, for scripts and phone automations.

Kinds:
  bluetooth_connected DEVICE     a Bluetooth device connected
  bluetooth_disconnected DEVICE  a Bluetooth device disconnected
  car_mode_entered               car mode (or Android Auto) started
  car_mode_exited                car mode ended
  boot_completed                 the machine restarted

The event goes to the daemon API, or over MQTT when the API is not reachable.

Examples:
  babyreminder event bluetooth_connected "My Toyota"
  babyreminder event car_mode_exited`,
	Args:      cobra.RangeArgs(1, 2),
	ValidArgs: eventKindNames(),
	RunE:      runEvent,
}

// respondCmd answers the current notification.
var respondCmd = &cobra.Command{
	Use:   "respond confirm|deny",
	Short: "Answer the current reminder",
	Long: `Answer the current notification.

  confirm  the child is out of the car; stops the reminders
  deny     no child on board for this drive

Examples:
  babyreminder respond confirm
  babyreminder respond deny`,
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{string(reminder.EventConfirm), string(reminder.EventDeny)},
	RunE:      runRespond,
}

func init() {
	rootCmd.AddCommand(eventCmd)
	rootCmd.AddCommand(respondCmd)
}

func eventKindNames() []string {
	names := make([]string, len(eventKinds))
	for i, k := range eventKinds {
		names[i] = string(k)
	}
	return names
}

func runEvent(cmd *cobra.Command, args []string) error {
	kind, err := reminder.ParseEventKind(args[0])
	if err != nil {
		return err
	}
	if !isInjectable(kind) {
		return errors.InvalidInput(errors.ErrUnknownEvent, "event", args[0])
	}
	ev := reminder.Event{Kind: kind, At: time.Now(), Source: "cli"}
	if len(args) == 2 {
		ev.Device = args[1]
	}
	return submitEvent(cmd, ev)
}

func isInjectable(kind reminder.EventKind) bool {
	for _, k := range eventKinds {
		if k == kind {
			return true
		}
	}
	return false
}

func runRespond(cmd *cobra.Command, args []string) error {
	var kind reminder.EventKind
	switch strings.ToLower(strings.TrimSpace(args[0])) {
	case "confirm", "yes", "safe":
		kind = reminder.EventConfirm
	case "deny", "no":
		kind = reminder.EventDeny
	default:
		return errors.InvalidInput(errors.ErrUnknownAction, "action", args[0])
	}
	return submitEvent(cmd, reminder.Event{Kind: kind, At: time.Now(), Source: "cli"})
}

// submitEvent hands ev to the daemon API, falling back to the MQTT broker
// when the daemon runs elsewhere.
func submitEvent(cmd *cobra.Command, ev reminder.Event) error {
	if err := ev.Validate(); err != nil {
		return err
	}

	c, cancel := commandContext(cmd)
	defer cancel()

	via := "daemon"
	if client, err := ctx.DaemonClient(c); err == nil {
		if err := client.Submit(c, ev); err != nil {
			return err
		}
	} else {
		pub, perr := ctx.Publisher()
		if perr != nil {
			ctx.Debugf("mqtt fallback unavailable: %v", perr)
			msg := "The daemon is not running and no MQTT broker is configured"
			if ctx.Config.MQTT.Enabled() {
				msg = "The daemon is not running and the MQTT broker is unreachable"
			}
			return &errors.UserError{
				Message:    msg,
				Suggestion: "Start it with 'babyreminder daemon start', or check mqtt.broker in your config file.",
				Cause:      errors.ErrDaemonNotRunning,
			}
		}
		if err := pub.PublishEvent(ev); err != nil {
			return fmt.Errorf("%s was not delivered: %w", ev.Kind, err)
		}
		via = "mqtt"
	}

	if ctx.IsJSON() {
		return ctx.Formatter.JSON(map[string]any{
			"status": "sent",
			"event":  ev.Kind,
			"device": ev.Device,
			"via":    via,
		})
	}
	ctx.CLIFormatter().Success("Sent " + ev.String() + " via " + via)
	return nil
}
