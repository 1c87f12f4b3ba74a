package statistics

import (
	"strconv"

	"github.com/markusressel/fan2bmc/internal/curves"
	"github.com/prometheus/client_golang/prometheus"
)

const subsystemCurve = "curve"

type CurveCollector struct {
	provider StatusProvider
	value    *prometheus.Desc
	point    *prometheus.Desc
}

func NewCurveCollector(provider StatusProvider) *CurveCollector {
	return &CurveCollector{
		provider: provider,
		value: prometheus.NewDesc(prometheus.BuildFQName(namespace, subsystemCurve, "value"),
			"Duty cycle the curve yields for the last observed temperature",
			nil, nil,
		),
		point: prometheus.NewDesc(prometheus.BuildFQName(namespace, subsystemCurve, "point_duty"),
			"Duty cycle of a curve point",
			[]string{"temperature"}, nil,
		),
	}
}

func (collector *CurveCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- collector.value
	ch <- collector.point
}

// Collect implements required collect function for all prometheus collectors
func (collector *CurveCollector) Collect(ch chan<- prometheus.Metric) {
	status := collector.provider.Status()
	for _, point := range status.Curve {
		temperature := strconv.FormatFloat(point.Temperature, 'f', -1, 64)
		ch <- prometheus.MustNewConstMetric(collector.point, prometheus.GaugeValue, float64(point.Duty), temperature)
	}
	if status.LastObservedTemp != nil {
		curve := curves.FanCurve{Points: status.Curve}
		ch <- prometheus.MustNewConstMetric(collector.value, prometheus.GaugeValue, float64(curve.Evaluate(*status.LastObservedTemp)))
	}
}
