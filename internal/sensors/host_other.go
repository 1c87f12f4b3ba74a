//go:build !windows

package sensors

import (
	"context"
	"fmt"
	"regexp"
	"strconv"

	"github.com/shirou/gopsutil/v3/host"
)

// DefaultNamespace has no meaning outside of windows, sensors are read from hwmon
const DefaultNamespace = "hwmon"

var (
	coreSensorPattern    = regexp.MustCompile(`^coretemp_core_?(\d+)`)
	packageSensorPattern = regexp.MustCompile(`^(coretemp_package_id_\d+|k10temp_(tctl|tdie)|zenpower_tdie)`)
	ccdSensorPattern     = regexp.MustCompile(`^(k10temp|zenpower)_tccd(\d+)`)
)

type hostSource struct{}

// NewSource reads temperatures through gopsutil (hwmon on linux, SMC on darwin).
// Sensor keys are renamed to the naming scheme of the windows monitoring service.
func NewSource(_ string) (Source, error) {
	source := &hostSource{}
	if _, err := source.Sensors(context.Background()); err != nil {
		return nil, err
	}
	return source, nil
}

func (s *hostSource) Sensors(ctx context.Context) ([]Sensor, error) {
	temps, err := host.SensorsTemperaturesWithContext(ctx)
	if err != nil && len(temps) <= 0 {
		return nil, err
	}

	result := make([]Sensor, 0, len(temps))
	for _, temp := range temps {
		v := temp.Temperature
		result = append(result, Sensor{
			Name:  normalizeSensorKey(temp.SensorKey),
			Value: &v,
		})
	}
	return result, nil
}

func (s *hostSource) Close() error {
	return nil
}

func normalizeSensorKey(key string) string {
	if match := coreSensorPattern.FindStringSubmatch(key); match != nil {
		index, err := strconv.Atoi(match[1])
		if err == nil {
			return fmt.Sprintf("CPU Core #%d", index+1)
		}
	}
	if packageSensorPattern.MatchString(key) {
		return cpuPackageName
	}
	if match := ccdSensorPattern.FindStringSubmatch(key); match != nil {
		return fmt.Sprintf("CPU CCD #%s", match[2])
	}
	return key
}
