package curve

import (
	"bytes"
	"fmt"
	"math"

	"github.com/guptarohit/asciigraph"
	"github.com/markusressel/fan2bmc/cmd/global"
	"github.com/markusressel/fan2bmc/internal/curves"
	"github.com/markusressel/fan2bmc/internal/ui"
	"github.com/mgutz/ansi"
	"github.com/spf13/cobra"
	"github.com/tomlazar/table"
)

// degrees below the first and above the last point shown in the graph
const graphMargin = 10

var curveCmd = &cobra.Command{
	Use:   "list",
	Short: "Print the configured fan curve to console",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) (err error) {
		config := global.LoadConfig()
		curve := config.FanCurve()
		steps := curve.Steps()

		// print table
		tab := table.Table{
			Headers: []string{"Temperature", "Duty"},
		}
		for _, point := range steps {
			tab.Rows = append(tab.Rows, []string{
				fmt.Sprintf("%.1f °C", point.Temperature),
				fmt.Sprintf("%d %%", point.Duty),
			})
		}
		var buf bytes.Buffer
		tableErr := tab.WriteTable(&buf, &table.Config{
			ShowIndex:       false,
			Color:           !global.NoColor,
			AlternateColors: true,
			TitleColorCode:  ansi.ColorCode("white+buf"),
			AltColorCodes: []string{
				ansi.ColorCode("white"),
				ansi.ColorCode("white:236"),
			},
		})
		if tableErr != nil {
			return tableErr
		}
		ui.Printfln("%s", buf.String())

		start, stop := graphRange(steps)
		values := make([]float64, 0, stop-start+1)
		for temp := start; temp <= stop; temp++ {
			values = append(values, float64(curve.Evaluate(float64(temp))))
		}

		caption := fmt.Sprintf("Duty %% / Temperature %d..%d °C", start, stop)
		graph := asciigraph.Plot(values,
			asciigraph.Height(15),
			asciigraph.LowerBound(curves.MinDutyValue),
			asciigraph.UpperBound(curves.MaxDutyValue),
			asciigraph.Caption(caption),
		)
		ui.Printfln("%s", graph)

		return nil
	},
}

func graphRange(steps []curves.CurvePoint) (int, int) {
	first := steps[0].Temperature
	last := steps[len(steps)-1].Temperature
	return int(math.Floor(first)) - graphMargin, int(math.Ceil(last)) + graphMargin
}

func init() {
	Command.AddCommand(curveCmd)
}
