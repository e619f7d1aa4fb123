package cmd

import (
	"github.com/spf13/cobra"

	"github.com/oshokin/alarm-clock/internal/service/server"
)

var (
	// stateFile overrides the alarm store path.
	stateFile string
	// silent disables tone playback.
	silent bool

	serveCmd = &cobra.Command{
		Use:   "serve [listen-address]",
		Short: "Run the alarm clock daemon.",
		Long: `Starts the alarm engine and the gRPC API.

Alarms are loaded from the configured store and checked on every poll interval.
A due alarm is disabled, announced to watchers and its tone is played.
Listen address can be provided as argument to override config (e.g., 127.0.0.1:9090).`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			// Setup graceful shutdown handling.
			ctx, stop := signalContext()
			defer stop()

			// Use listen address argument if provided, otherwise rely on config.
			var listenAddress string
			if len(args) > 0 {
				listenAddress = args[0]
			}

			return server.Run(ctx, &server.Options{
				ConfigPath:    configPath,
				ListenAddress: listenAddress,
				StateFile:     stateFile,
				LogLevel:      logLevel,
				Silent:        silent,
			})
		},
	}
)

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	serveCmd.Flags().StringVarP(&stateFile, "state-file", "s", "", "path to the alarm store (overrides config)")
	serveCmd.Flags().BoolVar(&silent, "silent", false, "fire alarms without playing tones")

	rootCmd.AddCommand(serveCmd)
}
