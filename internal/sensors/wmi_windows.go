//go:build windows

package sensors

import (
	"context"

	"github.com/StackExchange/wmi"
)

const DefaultNamespace = `root\LibreHardwareMonitor`

const temperatureQuery = "SELECT Name, Value FROM Sensor WHERE SensorType = '" + SensorTypeTemperature + "'"

// lhmSensor mirrors the "Sensor" class of the LibreHardwareMonitor WMI provider
type lhmSensor struct {
	Name  string
	Value *float32
}

type wmiSource struct {
	services  *wmi.SWbemServices
	namespace string
}

// NewSource opens a connection to the given WMI namespace.
// It fails if the namespace is not registered, i.e. the monitoring service is not running.
func NewSource(namespace string) (Source, error) {
	services, err := wmi.InitializeSWbemServices(wmi.DefaultClient)
	if err != nil {
		return nil, err
	}

	source := &wmiSource{
		services:  services,
		namespace: namespace,
	}

	var probe []lhmSensor
	if err := source.query(&probe); err != nil {
		_ = services.Close()
		return nil, err
	}

	return source, nil
}

func (s *wmiSource) Sensors(ctx context.Context) ([]Sensor, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var dst []lhmSensor
	if err := s.query(&dst); err != nil {
		return nil, err
	}

	result := make([]Sensor, 0, len(dst))
	for _, sensor := range dst {
		var v *float64
		if sensor.Value != nil {
			f := float64(*sensor.Value)
			v = &f
		}
		result = append(result, Sensor{Name: sensor.Name, Value: v})
	}
	return result, nil
}

func (s *wmiSource) Close() error {
	return s.services.Close()
}

func (s *wmiSource) query(dst *[]lhmSensor) error {
	// connectServerArgs: server (local), namespace
	return s.services.Query(temperatureQuery, dst, nil, s.namespace)
}
