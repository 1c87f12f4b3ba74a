package statistics

import (
	"github.com/markusressel/fan2bmc/internal/fans"
	"github.com/prometheus/client_golang/prometheus"
)

const fanSubsystem = "fan"

type FanCollector struct {
	provider StatusProvider

	manualDuty    *prometheus.Desc
	lastSucceeded *prometheus.Desc
	lastExitCode  *prometheus.Desc
	lastDuration  *prometheus.Desc
}

func NewFanCollector(provider StatusProvider) *FanCollector {
	return &FanCollector{
		provider: provider,
		manualDuty: prometheus.NewDesc(prometheus.BuildFQName(namespace, fanSubsystem, "manual_duty"),
			"Duty cycle last committed manually for the zone",
			[]string{"zone"}, nil,
		),
		lastSucceeded: prometheus.NewDesc(prometheus.BuildFQName(namespace, fanSubsystem, "last_actuation_succeeded"),
			"1 if the last command sent for the zone succeeded",
			[]string{"zone"}, nil,
		),
		lastExitCode: prometheus.NewDesc(prometheus.BuildFQName(namespace, fanSubsystem, "last_actuation_exit_code"),
			"Exit code of the last command sent for the zone",
			[]string{"zone"}, nil,
		),
		lastDuration: prometheus.NewDesc(prometheus.BuildFQName(namespace, fanSubsystem, "last_actuation_duration_seconds"),
			"Duration of the last command sent for the zone",
			[]string{"zone"}, nil,
		),
	}
}

func (collector *FanCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- collector.manualDuty
	ch <- collector.lastSucceeded
	ch <- collector.lastExitCode
	ch <- collector.lastDuration
}

// Collect implements required collect function for all prometheus collectors
func (collector *FanCollector) Collect(ch chan<- prometheus.Metric) {
	status := collector.provider.Status()
	for _, zone := range fans.Zones {
		zoneName := zone.String()
		ch <- prometheus.MustNewConstMetric(collector.manualDuty, prometheus.GaugeValue, float64(status.ManualDuty[zoneName]), zoneName)

		result, ok := status.LastActuation[zoneName]
		if !ok {
			continue
		}
		ch <- prometheus.MustNewConstMetric(collector.lastSucceeded, prometheus.GaugeValue, boolToFloat(result.Succeeded), zoneName)
		ch <- prometheus.MustNewConstMetric(collector.lastExitCode, prometheus.GaugeValue, float64(result.ExitCode), zoneName)
		ch <- prometheus.MustNewConstMetric(collector.lastDuration, prometheus.GaugeValue, result.Duration.Seconds(), zoneName)
	}
}
