package statistics

import (
	"github.com/markusressel/fan2bmc/internal/controller"
	"github.com/prometheus/client_golang/prometheus"
)

const (
	namespace = "fan2bmc"
)

// StatusProvider is implemented by controller.FanController
type StatusProvider interface {
	Status() controller.Status
}

func Register(collector prometheus.Collector) {
	prometheus.MustRegister(collector)
}

// RegisterAll registers all collectors reading from the given controller
func RegisterAll(provider StatusProvider) {
	Register(NewControllerCollector(provider))
	Register(NewSensorCollector(provider))
	Register(NewFanCollector(provider))
	Register(NewCurveCollector(provider))
}

func boolToFloat(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
