package statistics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const controllerSubsystem = "controller"

type ControllerCollector struct {
	provider StatusProvider

	autoEnabled       *prometheus.Desc
	autoTarget        *prometheus.Desc
	actuations        *prometheus.Desc
	actuationFailures *prometheus.Desc
}

func NewControllerCollector(provider StatusProvider) *ControllerCollector {
	return &ControllerCollector{
		provider: provider,
		autoEnabled: prometheus.NewDesc(prometheus.BuildFQName(namespace, controllerSubsystem, "auto_enabled"),
			"1 if the fan curve is driving the fans, 0 in manual mode",
			nil, nil,
		),
		autoTarget: prometheus.NewDesc(prometheus.BuildFQName(namespace, controllerSubsystem, "auto_target_duty"),
			"Duty cycle last computed from the fan curve, absent if there is none",
			nil, nil,
		),
		actuations: prometheus.NewDesc(prometheus.BuildFQName(namespace, controllerSubsystem, "actuations_total"),
			"Number of commands sent to the BMC",
			nil, nil,
		),
		actuationFailures: prometheus.NewDesc(prometheus.BuildFQName(namespace, controllerSubsystem, "actuation_failures_total"),
			"Number of commands sent to the BMC that failed",
			nil, nil,
		),
	}
}

func (collector *ControllerCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- collector.autoEnabled
	ch <- collector.autoTarget
	ch <- collector.actuations
	ch <- collector.actuationFailures
}

// Collect implements required collect function for all prometheus collectors
func (collector *ControllerCollector) Collect(ch chan<- prometheus.Metric) {
	status := collector.provider.Status()
	ch <- prometheus.MustNewConstMetric(collector.autoEnabled, prometheus.GaugeValue, boolToFloat(status.AutoEnabled))
	if status.LastAutoTarget != nil {
		ch <- prometheus.MustNewConstMetric(collector.autoTarget, prometheus.GaugeValue, float64(*status.LastAutoTarget))
	}
	ch <- prometheus.MustNewConstMetric(collector.actuations, prometheus.CounterValue, float64(status.Actuations))
	ch <- prometheus.MustNewConstMetric(collector.actuationFailures, prometheus.CounterValue, float64(status.ActuationFailures))
}
