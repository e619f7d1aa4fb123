package cmd

import (
	"github.com/spf13/cobra"

	"github.com/oshokin/alarm-clock/internal/service/client"
)

var (
	// tone selects the tone for a new alarm.
	tone string
	// snoozeMinutes is the snooze offset, zero means the configured default.
	snoozeMinutes int

	addCmd = &cobra.Command{
		Use:   "add TIME",
		Short: "Add a daily alarm.",
		Long: `Adds an active alarm at the given time of day.

TIME is either 12-hour with AM/PM ("7:30 AM", quoted) or 24-hour ("19:30").`,
		Example: `  alarm-clock add "7:30 AM" --tone tone2.mp3
  alarm-clock add 19:30`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return client.Add(cmd.Context(), clientOptions(cmd), args[0], tone)
		},
	}

	listCmd = &cobra.Command{
		Use:   "list",
		Short: "List alarms.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return client.List(cmd.Context(), clientOptions(cmd))
		},
	}

	toggleCmd = &cobra.Command{
		Use:   "toggle ID",
		Short: "Switch an alarm on or off.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return client.Toggle(cmd.Context(), clientOptions(cmd), args[0])
		},
	}

	snoozeCmd = &cobra.Command{
		Use:   "snooze ID",
		Short: "Ring again a few minutes from now.",
		Long: `Adds a new active alarm with the tone of alarm ID, due the given number
of minutes from now. The original alarm is left as it is.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return client.Snooze(cmd.Context(), clientOptions(cmd), args[0], snoozeMinutes)
		},
	}

	watchCmd = &cobra.Command{
		Use:   "watch",
		Short: "Print alarms as they fire.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signalContext()
			defer stop()

			return client.Watch(ctx, clientOptions(cmd))
		},
	}
)

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	for _, c := range []*cobra.Command{addCmd, listCmd, toggleCmd, snoozeCmd, watchCmd} {
		c.Flags().StringVarP(&serverAddress, "server", "a", "", "daemon address (overrides config)")
		rootCmd.AddCommand(c)
	}

	addCmd.Flags().StringVarP(&tone, "tone", "t", "", "tone file inside the tone directory (default from config)")
	snoozeCmd.Flags().IntVarP(&snoozeMinutes, "minutes", "m", 0, "snooze length in minutes (default from config)")
}
