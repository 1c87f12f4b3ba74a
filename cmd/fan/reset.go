package fan

import (
	"github.com/spf13/cobra"
)

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Hand fan control back to the BMC",
	Long:  ``,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return printResult(getActuator().RestoreAutomatic())
	},
}

func init() {
	Command.AddCommand(resetCmd)
}
