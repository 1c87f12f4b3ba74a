package configuration

import (
	"errors"
	"fmt"
	"strings"

	"github.com/markusressel/fan2bmc/internal/curves"
	"github.com/markusressel/fan2bmc/internal/ui"
	"golang.org/x/exp/slices"
)

const (
	MinSensorTemperature = -20.0
	MaxSensorTemperature = 120.0

	minZone = 0
	maxZone = 255
)

func Validate() error {
	return validateConfig(&CurrentConfig)
}

func validateConfig(config *Configuration) error {
	err := validateCurve(config)
	if err != nil {
		return err
	}
	err = validateSampling(config)
	if err != nil {
		return err
	}
	err = validateIpmi(config)
	if err != nil {
		return err
	}
	err = validateZones(config)
	if err != nil {
		return err
	}
	err = validateController(config)
	if err != nil {
		return err
	}
	return validatePorts(config)
}

func validateCurve(config *Configuration) error {
	if len(config.Curve) <= 0 {
		return errors.New("Curve: at least one curve point is required")
	}

	var temperatures []float64
	for i, point := range config.Curve {
		if point.Temperature < MinSensorTemperature || point.Temperature > MaxSensorTemperature {
			return fmt.Errorf("Curve point %d: temperature %.1f is outside of [%.0f..%.0f]", i+1, point.Temperature, MinSensorTemperature, MaxSensorTemperature)
		}
		if point.Duty < curves.MinDutyValue || point.Duty > curves.MaxDutyValue {
			ui.Warning("Curve point %d: duty %d is outside of [%d..%d] and will be clamped", i+1, point.Duty, curves.MinDutyValue, curves.MaxDutyValue)
		}
		if slices.Contains(temperatures, point.Temperature) {
			ui.Warning("Curve point %d: duplicate temperature %.1f, the highest duty is used", i+1, point.Temperature)
		}
		temperatures = append(temperatures, point.Temperature)
	}

	return nil
}

func validateSampling(config *Configuration) error {
	if config.Sampling.Interval <= 0 {
		return fmt.Errorf("Sampling: interval must be > 0, was %s", config.Sampling.Interval)
	}
	if config.Sampling.StopTimeout <= 0 {
		return fmt.Errorf("Sampling: stopTimeout must be > 0, was %s", config.Sampling.StopTimeout)
	}
	if config.Sensors.ServiceGracePeriod < 0 {
		return fmt.Errorf("Sensors: serviceGracePeriod must not be negative, was %s", config.Sensors.ServiceGracePeriod)
	}
	return nil
}

func validateIpmi(config *Configuration) error {
	if len(strings.TrimSpace(config.Ipmi.Exec)) <= 0 {
		return errors.New("Ipmi: exec is missing")
	}
	if config.Ipmi.Timeout <= 0 {
		return fmt.Errorf("Ipmi: timeout must be > 0, was %s", config.Ipmi.Timeout)
	}
	return nil
}

func validateZones(config *Configuration) error {
	zones := map[string]int{
		"cpu":        config.Zones.Cpu,
		"peripheral": config.Zones.Peripheral,
	}
	for name, zone := range zones {
		if zone < minZone || zone > maxZone {
			return fmt.Errorf("Zones: %s zone %d is outside of [%d..%d]", name, zone, minZone, maxZone)
		}
	}
	if config.Zones.Cpu == config.Zones.Peripheral {
		return fmt.Errorf("Zones: cpu and peripheral zone must be different, both are %d", config.Zones.Cpu)
	}
	return nil
}

func validateController(config *Configuration) error {
	if config.Controller.EventBufferSize < 0 {
		return fmt.Errorf("Controller: eventBufferSize must not be negative, was %d", config.Controller.EventBufferSize)
	}
	if config.Controller.LatencyWindowSize <= 0 {
		return fmt.Errorf("Controller: latencyWindowSize must be > 0, was %d", config.Controller.LatencyWindowSize)
	}
	return nil
}

func validatePorts(config *Configuration) error {
	if config.Api.Enabled && !isValidPort(config.Api.Port) {
		return fmt.Errorf("Api: invalid port %d", config.Api.Port)
	}
	if config.Statistics.Enabled && !isValidPort(config.Statistics.Port) {
		return fmt.Errorf("Statistics: invalid port %d", config.Statistics.Port)
	}
	if config.Api.Enabled && config.Statistics.Enabled && config.Api.Port == config.Statistics.Port {
		return fmt.Errorf("Api and Statistics cannot share port %d", config.Api.Port)
	}
	return nil
}

func isValidPort(port int) bool {
	return port > 0 && port < 65535
}
