package config

import (
	"github.com/markusressel/fan2bmc/internal/configuration"
	"github.com/markusressel/fan2bmc/internal/ui"
	"github.com/spf13/cobra"
)

var initCmd = &cobra.Command{
	Use:   "init [path]",
	Short: "Writes a configuration file containing the default values",
	Long:  ``,
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := configuration.ConfigName + ".yaml"
		if len(args) > 0 {
			path = args[0]
		}

		if err := configuration.WriteDefaultConfig(path); err != nil {
			return err
		}

		ui.Success("Configuration written to %s", path)
		return nil
	},
}

func init() {
	Command.AddCommand(initCmd)
}
