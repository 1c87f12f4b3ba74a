package sensor

import (
	"bytes"
	"context"
	"fmt"

	"github.com/markusressel/fan2bmc/cmd/global"
	"github.com/markusressel/fan2bmc/internal"
	"github.com/markusressel/fan2bmc/internal/sensors"
	"github.com/markusressel/fan2bmc/internal/ui"
	"github.com/mgutz/ansi"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
	"github.com/tomlazar/table"
)

var listAll bool

var Command = &cobra.Command{
	Use:   "sensor",
	Short: "Print the current max CPU temperature",
	Long:  ``,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if !listAll {
			pterm.DisableOutput()
		}

		config := global.LoadConfig()
		source, err := internal.NewSourceFactory(config)()
		if err != nil {
			return &sensors.ConnectionError{Namespace: config.Sensors.Namespace, Err: err}
		}
		defer func() {
			_ = source.Close()
		}()

		values, err := source.Sensors(context.Background())
		if err != nil {
			return &sensors.ReadError{Err: err}
		}

		if listAll {
			if err := printSensors(sensors.CpuSensors(values)); err != nil {
				return err
			}
		}

		temp := sensors.MaxCpuTemperature(values)
		if temp == nil {
			return fmt.Errorf("no CPU temperature sensor found")
		}
		fmt.Printf("%.1f\n", *temp)
		return nil
	},
}

func printSensors(values []sensors.Sensor) error {
	tab := table.Table{
		Headers: []string{"Sensor", "Temperature"},
	}
	for _, sensor := range values {
		tab.Rows = append(tab.Rows, []string{sensor.Name, fmt.Sprintf("%.1f °C", *sensor.Value)})
	}

	var buf bytes.Buffer
	err := tab.WriteTable(&buf, &table.Config{
		ShowIndex:       false,
		Color:           !global.NoColor,
		AlternateColors: true,
		TitleColorCode:  ansi.ColorCode("white+buf"),
		AltColorCodes: []string{
			ansi.ColorCode("white"),
			ansi.ColorCode("white:236"),
		},
	})
	if err != nil {
		return err
	}
	ui.Printfln("%s", buf.String())
	return nil
}

func init() {
	Command.Flags().BoolVarP(
		&listAll,
		"all", "a",
		false,
		"Print all CPU temperature sensors",
	)
}
