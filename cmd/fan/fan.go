package fan

import (
	"fmt"

	"github.com/markusressel/fan2bmc/cmd/global"
	"github.com/markusressel/fan2bmc/internal"
	"github.com/markusressel/fan2bmc/internal/fans"
	"github.com/markusressel/fan2bmc/internal/ui"
	"github.com/spf13/cobra"
)

var Command = &cobra.Command{
	Use:              "fan",
	Short:            "Fan related commands",
	Long:             ``,
	TraverseChildren: true,
}

func getActuator() *fans.IpmiActuator {
	config := global.LoadConfig()
	internal.CheckIpmiTool(config.Ipmi.Exec)
	return internal.NewActuator(config)
}

func printResult(result fans.ActuationResult) error {
	if len(result.Stdout) > 0 {
		ui.Printfln("%s", result.Stdout)
	}
	if !result.Succeeded {
		return fmt.Errorf("%s failed (exit code %d): %s", result.Description, result.ExitCode, result.Diagnostic())
	}
	ui.Success("Done!")
	return nil
}
