package cmd

import (
	"github.com/markusressel/fan2bmc/internal/ui"
	"github.com/spf13/cobra"
)

// Version is set at build time using -ldflags "-X github.com/markusressel/fan2bmc/cmd.Version=..."
var Version = "0.1.0"

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of fan2bmc",
	Long:  `All software has versions. This is fan2bmc's`,
	Run: func(cmd *cobra.Command, args []string) {
		ui.Printfln("%s", Version)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
