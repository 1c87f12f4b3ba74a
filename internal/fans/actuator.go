package fans

import (
	"time"
)

const (
	MinDutyValue = 0
	MaxDutyValue = 100
)

// ActuationResult describes the outcome of a single call to the BMC
type ActuationResult struct {
	// Description of the issued command, e.g. "zone=cpu duty=45%"
	Description string        `json:"description"`
	Succeeded   bool          `json:"succeeded"`
	ExitCode    int           `json:"exitCode"`
	Stdout      string        `json:"stdout,omitempty"`
	Stderr      string        `json:"stderr,omitempty"`
	Error       string        `json:"error,omitempty"`
	Duration    time.Duration `json:"duration"`
	Time        time.Time     `json:"time"`
}

// Diagnostic returns the most useful text explaining a failure
func (r ActuationResult) Diagnostic() string {
	if len(r.Error) > 0 {
		return r.Error
	}
	if len(r.Stderr) > 0 {
		return r.Stderr
	}
	return r.Stdout
}

// Actuator issues fan commands to the BMC.
// Implementations never return errors, failures are reported through the ActuationResult.
type Actuator interface {
	// SetFanDuty sets the duty cycle of all fans in the given zone, percent is clamped to [0..100]
	SetFanDuty(zone FanZone, percent int) ActuationResult
	// RestoreAutomatic hands fan control back to the BMC
	RestoreAutomatic() ActuationResult
}
