package curve

import (
	"fmt"
	"strconv"

	"github.com/markusressel/fan2bmc/cmd/global"
	"github.com/spf13/cobra"
)

var evalCmd = &cobra.Command{
	Use:   "eval <temperature>",
	Short: "Print the duty cycle the fan curve yields for the given temperature",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		temp, err := strconv.ParseFloat(args[0], 64)
		if err != nil {
			return fmt.Errorf("invalid temperature '%s': %w", args[0], err)
		}

		config := global.LoadConfig()
		fmt.Printf("%d\n", config.FanCurve().Evaluate(temp))
		return nil
	},
}

func init() {
	Command.AddCommand(evalCmd)
}
