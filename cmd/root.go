package cmd

import (
	"fmt"
	"os"

	"github.com/markusressel/fan2bmc/cmd/config"
	"github.com/markusressel/fan2bmc/cmd/curve"
	"github.com/markusressel/fan2bmc/cmd/fan"
	"github.com/markusressel/fan2bmc/cmd/global"
	"github.com/markusressel/fan2bmc/cmd/sensor"
	"github.com/markusressel/fan2bmc/internal"
	"github.com/markusressel/fan2bmc/internal/configuration"
	"github.com/markusressel/fan2bmc/internal/ui"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

var noNotifications bool

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "fan2bmc",
	Short: "A daemon driving server fans through the BMC based on the CPU temperature.",
	Long: `fan2bmc reads the CPU temperature from the hardware monitoring service
and sets the fan duty cycle of a Supermicro BMC according to a fan curve.`,
	// this is the default command to run when no subcommand is specified
	Run: func(cmd *cobra.Command, args []string) {
		setupUi()
		printHeader()

		configuration.ReadConfigFile()
		err := configuration.Validate()
		if err != nil {
			ui.ErrorAndNotify("Config Validation Error", "%v", err)
			return
		}

		logging := configuration.CurrentConfig.Logging
		ui.SetLogFile(logging.File, logging.MaxSize, logging.MaxBackups, logging.MaxAge)

		internal.RunDaemon()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&global.CfgFile, "config", "c", "", "config file (default is $HOME/fan2bmc.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&global.NoColor, "no-color", "", false, "Disable all terminal output coloration")
	rootCmd.PersistentFlags().BoolVarP(&global.NoStyle, "no-style", "", false, "Disable all terminal output styling")
	rootCmd.PersistentFlags().BoolVarP(&global.Verbose, "verbose", "v", false, "More verbose output")
	rootCmd.Flags().BoolVarP(&noNotifications, "no-notifications", "", false, "Disable desktop notifications")

	rootCmd.AddCommand(config.Command)

	rootCmd.AddCommand(fan.Command)
	rootCmd.AddCommand(curve.Command)
	rootCmd.AddCommand(sensor.Command)
}

func setupUi() {
	ui.SetDebugEnabled(global.Verbose)
	ui.SetNotificationsEnabled(!noNotifications)

	if global.NoColor {
		pterm.DisableColor()
	}
	if global.NoStyle {
		pterm.DisableStyling()
	}
}

// Print a large text with the LetterStyle from the standard theme.
func printHeader() {
	err := pterm.DefaultBigText.WithLetters(
		pterm.NewLettersFromStringWithStyle("fan", pterm.NewStyle(pterm.FgLightBlue)),
		pterm.NewLettersFromStringWithStyle("2", pterm.NewStyle(pterm.FgWhite)),
		pterm.NewLettersFromStringWithStyle("bmc", pterm.NewStyle(pterm.FgLightBlue)),
	).Render()
	if err != nil {
		fmt.Println("fan2bmc")
	}
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	cobra.OnInitialize(func() {
		configuration.InitConfig(global.CfgFile)
	})

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
