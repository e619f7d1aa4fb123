package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/oshokin/alarm-clock/internal/config"
)

var (
	// overwriteConfig replaces an existing settings file.
	overwriteConfig bool

	initConfigCmd = &cobra.Command{
		Use:   "init-config",
		Short: "Write a settings file with default values.",
		Long: `Writes every setting with its default value to the file given by --config
(default ` + config.DefaultConfigFilename + `). An existing file is kept unless --force is set.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			path, err := config.Init(configPath, overwriteConfig)
			if err != nil {
				return err
			}

			_, err = fmt.Fprintln(cmd.OutOrStdout(), "Settings written to", path)

			return err
		},
	}
)

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	initConfigCmd.Flags().BoolVarP(&overwriteConfig, "force", "f", false, "overwrite an existing settings file")

	rootCmd.AddCommand(initConfigCmd)
}
