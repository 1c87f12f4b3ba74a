package global

import (
	"github.com/markusressel/fan2bmc/internal/configuration"
	"github.com/markusressel/fan2bmc/internal/ui"
)

var (
	CfgFile string
	NoColor bool
	NoStyle bool
	Verbose bool
)

// LoadConfig reads and validates the configuration, exits if it is invalid
func LoadConfig() configuration.Configuration {
	configuration.ReadConfigFile()
	if err := configuration.Validate(); err != nil {
		ui.Fatal("Config validation failed: %v", err)
	}
	return configuration.CurrentConfig
}
