package configuration

import (
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/markusressel/fan2bmc/internal/ui"
	"github.com/markusressel/fan2bmc/internal/util"
	"github.com/mitchellh/go-homedir"
	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
)

const ConfigName = "fan2bmc"

type Configuration struct {
	Curve      []CurvePointConfig `json:"curve" yaml:"curve"`
	Sampling   SamplingConfig     `json:"sampling" yaml:"sampling"`
	Sensors    SensorsConfig      `json:"sensors" yaml:"sensors"`
	Ipmi       IpmiConfig         `json:"ipmi" yaml:"ipmi"`
	Zones      ZonesConfig        `json:"zones" yaml:"zones"`
	Controller ControllerConfig   `json:"controller" yaml:"controller"`
	Api        ApiConfig          `json:"api" yaml:"api"`
	Statistics StatisticsConfig   `json:"statistics" yaml:"statistics"`
	Logging    LoggingConfig      `json:"logging" yaml:"logging"`
}

type SamplingConfig struct {
	// Interval between two temperature reads
	Interval time.Duration `json:"interval" yaml:"interval"`
	// StopTimeout is the time to wait for the sampler to finish on shutdown
	StopTimeout time.Duration `json:"stopTimeout" yaml:"stopTimeout"`
}

type SensorsConfig struct {
	Namespace          string        `json:"namespace" yaml:"namespace"`
	ServiceExec        string        `json:"serviceExec" yaml:"serviceExec"`
	ServiceGracePeriod time.Duration `json:"serviceGracePeriod" yaml:"serviceGracePeriod"`
}

type IpmiConfig struct {
	Exec    string        `json:"exec" yaml:"exec"`
	RawArgs []string      `json:"rawArgs" yaml:"rawArgs"`
	Timeout time.Duration `json:"timeout" yaml:"timeout"`
}

type ZonesConfig struct {
	Cpu        int `json:"cpu" yaml:"cpu"`
	Peripheral int `json:"peripheral" yaml:"peripheral"`
}

type ControllerConfig struct {
	StartInAutoMode      bool    `json:"startInAutoMode" yaml:"startInAutoMode"`
	RetryFailedActuation bool    `json:"retryFailedActuation" yaml:"retryFailedActuation"`
	EventBufferSize      int     `json:"eventBufferSize" yaml:"eventBufferSize"`
	LatencyWindowSize    int     `json:"latencyWindowSize" yaml:"latencyWindowSize"`
	HotTemperature       float64 `json:"hotTemperature" yaml:"hotTemperature"`
}

type LoggingConfig struct {
	File       string `json:"file" yaml:"file"`
	MaxSize    int    `json:"maxSize" yaml:"maxSize"`
	MaxBackups int    `json:"maxBackups" yaml:"maxBackups"`
	MaxAge     int    `json:"maxAge" yaml:"maxAge"`
}

var CurrentConfig Configuration

// InitConfig reads in config file and ENV variables if set.
func InitConfig(cfgFile string) {
	viper.SetConfigName(ConfigName)

	if cfgFile != "" {
		// Use config file from the flag.
		viper.SetConfigFile(cfgFile)
	} else {
		// Find home directory.
		home, err := homedir.Dir()
		if err != nil {
			ui.Error("Couldn't detect home directory: %v", err)
			os.Exit(1)
		}

		viper.AddConfigPath(".")
		viper.AddConfigPath(home)
		viper.AddConfigPath("/etc/fan2bmc/")
	}

	viper.SetEnvPrefix(ConfigName)
	viper.AutomaticEnv() // read in environment variables that match

	setDefaultValues()
}

func setDefaultValues() {
	defaults := DefaultConfiguration()

	curve := make([]map[string]interface{}, 0, len(defaults.Curve))
	for _, point := range defaults.Curve {
		curve = append(curve, map[string]interface{}{
			"temperature": point.Temperature,
			"duty":        point.Duty,
		})
	}
	viper.SetDefault("curve", curve)

	viper.SetDefault("sampling.interval", defaults.Sampling.Interval)
	viper.SetDefault("sampling.stopTimeout", defaults.Sampling.StopTimeout)

	viper.SetDefault("sensors.namespace", defaults.Sensors.Namespace)
	viper.SetDefault("sensors.serviceExec", defaults.Sensors.ServiceExec)
	viper.SetDefault("sensors.serviceGracePeriod", defaults.Sensors.ServiceGracePeriod)

	viper.SetDefault("ipmi.exec", defaults.Ipmi.Exec)
	viper.SetDefault("ipmi.rawArgs", defaults.Ipmi.RawArgs)
	viper.SetDefault("ipmi.timeout", defaults.Ipmi.Timeout)

	viper.SetDefault("zones.cpu", defaults.Zones.Cpu)
	viper.SetDefault("zones.peripheral", defaults.Zones.Peripheral)

	viper.SetDefault("controller.startInAutoMode", defaults.Controller.StartInAutoMode)
	viper.SetDefault("controller.retryFailedActuation", defaults.Controller.RetryFailedActuation)
	viper.SetDefault("controller.eventBufferSize", defaults.Controller.EventBufferSize)
	viper.SetDefault("controller.latencyWindowSize", defaults.Controller.LatencyWindowSize)
	viper.SetDefault("controller.hotTemperature", defaults.Controller.HotTemperature)

	viper.SetDefault("api.enabled", defaults.Api.Enabled)
	viper.SetDefault("api.host", defaults.Api.Host)
	viper.SetDefault("api.port", defaults.Api.Port)

	viper.SetDefault("statistics.enabled", defaults.Statistics.Enabled)
	viper.SetDefault("statistics.port", defaults.Statistics.Port)

	viper.SetDefault("logging.file", defaults.Logging.File)
	viper.SetDefault("logging.maxSize", defaults.Logging.MaxSize)
	viper.SetDefault("logging.maxBackups", defaults.Logging.MaxBackups)
	viper.SetDefault("logging.maxAge", defaults.Logging.MaxAge)
}

// DefaultConfiguration returns the configuration used when no config file is present
func DefaultConfiguration() Configuration {
	exeDir := util.ExecutableDir()

	ipmiExec := filepath.Join(exeDir, "IPMICFG-Linux.x86_64")
	serviceExec := ""
	if runtime.GOOS == "windows" {
		ipmiExec = filepath.Join(exeDir, "IPMICFG-Win.exe")
		serviceExec = filepath.Join(exeDir, "LibreHardwareMonitor", "LibreHardwareMonitor.exe")
	}

	return Configuration{
		Curve: []CurvePointConfig{
			{Temperature: 50, Duty: 20},
			{Temperature: 65, Duty: 30},
			{Temperature: 75, Duty: 60},
			{Temperature: 80, Duty: 100},
		},
		Sampling: SamplingConfig{
			Interval:    5 * time.Second,
			StopTimeout: 2 * time.Second,
		},
		Sensors: SensorsConfig{
			Namespace:          `root\LibreHardwareMonitor`,
			ServiceExec:        serviceExec,
			ServiceGracePeriod: 3 * time.Second,
		},
		Ipmi: IpmiConfig{
			Exec:    ipmiExec,
			RawArgs: []string{"-raw"},
			Timeout: 10 * time.Second,
		},
		Zones: ZonesConfig{
			Cpu:        0,
			Peripheral: 1,
		},
		Controller: ControllerConfig{
			StartInAutoMode:      true,
			RetryFailedActuation: false,
			EventBufferSize:      16,
			LatencyWindowSize:    12,
			HotTemperature:       80,
		},
		Api: ApiConfig{
			Enabled: false,
			Host:    "localhost",
			Port:    9001,
		},
		Statistics: StatisticsConfig{
			Enabled: false,
			Port:    9000,
		},
		Logging: LoggingConfig{
			File:       "",
			MaxSize:    10,
			MaxBackups: 3,
			MaxAge:     28,
		},
	}
}

// ReadConfigFile reads the config file, if any, and loads the resulting configuration.
// A missing config file is not an error, the defaults are used instead.
func ReadConfigFile() {
	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			ui.Fatal("Error reading config file, %s", err)
		}
		ui.Info("No configuration file found, using defaults")
	} else {
		// this is only populated _after_ ReadInConfig()
		ui.Info("Using configuration file at: %s", viper.ConfigFileUsed())
	}

	LoadConfig()
}

// LoadConfig decodes the current viper state into CurrentConfig, replacing it entirely
func LoadConfig() {
	var config Configuration
	err := viper.Unmarshal(&config, viper.DecodeHook(
		mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		),
	))
	if err != nil {
		ui.Fatal("unable to decode into struct, %v", err)
	}
	CurrentConfig = config
}
