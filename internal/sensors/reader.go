package sensors

import (
	"context"
	"math"
	"strings"
)

const (
	cpuSensorMarker     = "CPU"
	cpuPackageName      = "CPU Package"
	cpuCoreSensorPrefix = "CPU CORE #"
)

type TemperatureReader interface {
	// ReadMaxCpuTemperature returns the hottest CPU temperature in degree celsius,
	// or nil if no CPU temperature is currently available.
	ReadMaxCpuTemperature(ctx context.Context) (*float64, error)
	Close() error
}

type temperatureReader struct {
	source Source
}

// NewTemperatureReader connects to the hardware monitoring service using the given factory.
// A failed connection is returned as *ConnectionError.
func NewTemperatureReader(namespace string, factory SourceFactory) (TemperatureReader, error) {
	source, err := factory()
	if err != nil {
		return nil, &ConnectionError{Namespace: namespace, Err: err}
	}
	return &temperatureReader{source: source}, nil
}

func (r *temperatureReader) ReadMaxCpuTemperature(ctx context.Context) (*float64, error) {
	sensors, err := r.source.Sensors(ctx)
	if err != nil {
		return nil, &ReadError{Err: err}
	}
	return MaxCpuTemperature(sensors), nil
}

func (r *temperatureReader) Close() error {
	return r.source.Close()
}

// CpuSensors returns all sensors with a current, finite value whose name mentions the CPU
func CpuSensors(sensors []Sensor) []Sensor {
	var result []Sensor
	for _, sensor := range sensors {
		if sensor.Value == nil || math.IsNaN(*sensor.Value) || math.IsInf(*sensor.Value, 0) {
			continue
		}
		if !strings.Contains(strings.ToUpper(sensor.Name), cpuSensorMarker) {
			continue
		}
		result = append(result, sensor)
	}
	return result
}

// MaxCpuTemperature reduces the given sensors to a single CPU temperature.
// The hottest per-core sensor wins, the package sensor is used if the hardware
// does not expose per-core values. Returns nil if neither is present.
func MaxCpuTemperature(sensors []Sensor) *float64 {
	var packageTemp *float64
	var maxCore *float64

	for _, sensor := range CpuSensors(sensors) {
		value := *sensor.Value
		if sensor.Name == cpuPackageName {
			packageTemp = &value
		}
		if strings.HasPrefix(strings.ToUpper(sensor.Name), cpuCoreSensorPrefix) {
			if maxCore == nil || value > *maxCore {
				maxCore = &value
			}
		}
	}

	if maxCore != nil {
		return maxCore
	}
	return packageTemp
}
