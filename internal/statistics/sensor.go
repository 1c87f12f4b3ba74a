package statistics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const sensorSubsystem = "sensor"

type SensorCollector struct {
	provider StatusProvider

	temperature  *prometheus.Desc
	noData       *prometheus.Desc
	samples      *prometheus.Desc
	sampleErrors *prometheus.Desc
	latency      *prometheus.Desc
	avgLatency   *prometheus.Desc
	maxLatency   *prometheus.Desc
}

func NewSensorCollector(provider StatusProvider) *SensorCollector {
	return &SensorCollector{
		provider: provider,
		temperature: prometheus.NewDesc(prometheus.BuildFQName(namespace, sensorSubsystem, "cpu_temperature_celsius"),
			"Last observed max CPU temperature",
			nil, nil,
		),
		noData: prometheus.NewDesc(prometheus.BuildFQName(namespace, sensorSubsystem, "no_data"),
			"1 if the temperature sampler failed permanently",
			nil, nil,
		),
		samples: prometheus.NewDesc(prometheus.BuildFQName(namespace, sensorSubsystem, "samples_total"),
			"Number of successful temperature reads",
			nil, nil,
		),
		sampleErrors: prometheus.NewDesc(prometheus.BuildFQName(namespace, sensorSubsystem, "sample_errors_total"),
			"Number of failed temperature reads",
			nil, nil,
		),
		latency: prometheus.NewDesc(prometheus.BuildFQName(namespace, sensorSubsystem, "read_latency_seconds"),
			"Duration of the last temperature read",
			nil, nil,
		),
		avgLatency: prometheus.NewDesc(prometheus.BuildFQName(namespace, sensorSubsystem, "read_latency_avg_seconds"),
			"Average duration of recent temperature reads",
			nil, nil,
		),
		maxLatency: prometheus.NewDesc(prometheus.BuildFQName(namespace, sensorSubsystem, "read_latency_max_seconds"),
			"Max duration of recent temperature reads",
			nil, nil,
		),
	}
}

func (collector *SensorCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- collector.temperature
	ch <- collector.noData
	ch <- collector.samples
	ch <- collector.sampleErrors
	ch <- collector.latency
	ch <- collector.avgLatency
	ch <- collector.maxLatency
}

// Collect implements required collect function for all prometheus collectors
func (collector *SensorCollector) Collect(ch chan<- prometheus.Metric) {
	status := collector.provider.Status()
	if status.LastObservedTemp != nil {
		ch <- prometheus.MustNewConstMetric(collector.temperature, prometheus.GaugeValue, *status.LastObservedTemp)
	}
	ch <- prometheus.MustNewConstMetric(collector.noData, prometheus.GaugeValue, boolToFloat(status.NoData))
	ch <- prometheus.MustNewConstMetric(collector.samples, prometheus.CounterValue, float64(status.Samples))
	ch <- prometheus.MustNewConstMetric(collector.sampleErrors, prometheus.CounterValue, float64(status.SampleErrors))
	ch <- prometheus.MustNewConstMetric(collector.latency, prometheus.GaugeValue, status.LastSampleLatency.Seconds())
	ch <- prometheus.MustNewConstMetric(collector.avgLatency, prometheus.GaugeValue, status.AvgSampleLatency.Seconds())
	ch <- prometheus.MustNewConstMetric(collector.maxLatency, prometheus.GaugeValue, status.MaxSampleLatency.Seconds())
}
