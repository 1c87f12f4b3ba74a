package controller

import (
	"time"

	"github.com/markusressel/fan2bmc/internal/curves"
	"github.com/markusressel/fan2bmc/internal/fans"
	"github.com/markusressel/fan2bmc/internal/util"
	"github.com/qdm12/reprint"
)

// Status is a snapshot of the controller.
// Snapshots are never modified after they have been published, treat them as read-only.
type Status struct {
	State

	// Hot is true if the last observed temperature is at or above the configured threshold
	Hot bool `json:"hot"`
	// NoData is set once the sampler failed fatally, no further samples will arrive
	NoData       bool   `json:"noData"`
	NoDataReason string `json:"noDataReason,omitempty"`

	Curve      []curves.CurvePoint `json:"curve"`
	ManualDuty map[string]int      `json:"manualDuty"`

	Samples           int           `json:"samples"`
	SampleErrors      int           `json:"sampleErrors"`
	LastSampleTime    time.Time     `json:"lastSampleTime"`
	LastSampleLatency time.Duration `json:"lastSampleLatency"`
	AvgSampleLatency  time.Duration `json:"avgSampleLatency"`
	MaxSampleLatency  time.Duration `json:"maxSampleLatency"`

	Actuations        int                             `json:"actuations"`
	ActuationFailures int                             `json:"actuationFailures"`
	LastActuation     map[string]fans.ActuationResult `json:"lastActuation"`
}

func (c *FanController) publishStatus() {
	status := &Status{
		State:             reprint.This(c.state).(State),
		Curve:             c.curve.Steps(),
		ManualDuty:        map[string]int{},
		Samples:           c.samples,
		SampleErrors:      c.sampleErrors,
		LastSampleTime:    c.lastSample,
		LastSampleLatency: c.lastLatency,
		Actuations:        c.actuations,
		ActuationFailures: c.failures,
		LastActuation:     c.results.Items(),
	}
	if c.state.LastObservedTemp != nil {
		status.Hot = *c.state.LastObservedTemp >= c.options.HotTemperature
	}
	if c.noData != nil {
		status.NoData = true
		status.NoDataReason = c.noData.Error()
	}
	for zone, duty := range c.manualDuty {
		status.ManualDuty[zone.String()] = duty
	}

	// the window is pre-filled with zeros, only average over slots that have been written
	filled := min(c.latencyCount, c.options.LatencyWindowSize)
	if filled > 0 {
		avg := util.GetWindowSum(c.latencies) / float64(filled)
		status.AvgSampleLatency = time.Duration(avg) * time.Microsecond
		status.MaxSampleLatency = time.Duration(util.GetWindowMax(c.latencies)) * time.Microsecond
	}

	c.status.Store(status)
}

// Status returns the most recent controller status
func (c *FanController) Status() Status {
	return *c.status.Load()
}
