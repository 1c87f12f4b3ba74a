package fan

import (
	"fmt"
	"strconv"

	"github.com/markusressel/fan2bmc/internal/fans"
	"github.com/spf13/cobra"
)

var zoneName string

var setCmd = &cobra.Command{
	Use:   "set <duty>",
	Short: "Set the duty cycle of a fan zone in percent",
	Long:  `Sets the duty cycle of all fans in a zone once. A running daemon in automatic mode will override it with the next changed target.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		duty, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid duty '%s': %w", args[0], err)
		}
		if duty < fans.MinDutyValue || duty > fans.MaxDutyValue {
			return fmt.Errorf("duty must be in [%d..%d], was %d", fans.MinDutyValue, fans.MaxDutyValue, duty)
		}

		zone, err := fans.ParseFanZone(zoneName)
		if err != nil {
			return err
		}

		return printResult(getActuator().SetFanDuty(zone, duty))
	},
}

func init() {
	setCmd.Flags().StringVarP(
		&zoneName,
		"zone", "z",
		fans.ZoneCpu.String(),
		"Fan zone: cpu | peripheral",
	)
	Command.AddCommand(setCmd)
}
