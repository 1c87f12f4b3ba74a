package fans

import (
	"fmt"
	"strings"
	"time"

	"github.com/markusressel/fan2bmc/internal/ui"
	"github.com/markusressel/fan2bmc/internal/util"
)

var (
	// OEM command setting the duty cycle of a zone, followed by zone and duty byte
	setDutyCommand = []string{"0x30", "0x70", "0x66", "0x01"}
	// OEM command putting the fans back into the BMC controlled "standard" mode
	restoreAutomaticCommand = []string{"0x30", "0x45", "0x01", "0x01"}
)

type IpmiActuator struct {
	Exec    string
	RawArgs []string
	Timeout time.Duration
	Zones   ZoneMapping
}

func NewIpmiActuator(exec string, rawArgs []string, timeout time.Duration, zones ZoneMapping) *IpmiActuator {
	if zones == nil {
		zones = DefaultZoneMapping()
	}
	return &IpmiActuator{
		Exec:    exec,
		RawArgs: rawArgs,
		Timeout: timeout,
		Zones:   zones,
	}
}

func (a *IpmiActuator) SetFanDuty(zone FanZone, percent int) ActuationResult {
	duty := util.Clamp(percent, MinDutyValue, MaxDutyValue)
	args := a.SetFanDutyArgs(zone, duty)
	return a.run(args, fmt.Sprintf("zone=%s duty=%d%%", zone, duty))
}

func (a *IpmiActuator) RestoreAutomatic() ActuationResult {
	args := append(a.rawArgs(), restoreAutomaticCommand...)
	return a.run(args, "restore BMC automatic fan mode")
}

// SetFanDutyArgs returns the tool arguments for setting the given duty on the given zone
func (a *IpmiActuator) SetFanDutyArgs(zone FanZone, duty int) []string {
	args := append(a.rawArgs(), setDutyCommand...)
	return append(args,
		formatByte(a.Zones.ZoneByte(zone)),
		formatByte(uint8(util.Clamp(duty, MinDutyValue, MaxDutyValue))),
	)
}

func (a *IpmiActuator) rawArgs() []string {
	args := make([]string, 0, len(a.RawArgs)+6)
	return append(args, a.RawArgs...)
}

func (a *IpmiActuator) run(args []string, description string) ActuationResult {
	ui.Debug("Executing %s %s", a.Exec, strings.Join(args, " "))

	start := time.Now()
	output, err := util.ExecuteCommand(a.Exec, args, a.Timeout)
	result := ActuationResult{
		Description: description,
		ExitCode:    output.ExitCode,
		Stdout:      strings.TrimSpace(output.Stdout),
		Stderr:      strings.TrimSpace(output.Stderr),
		Duration:    time.Since(start),
		Time:        start,
	}

	if len(result.Stdout) > 0 {
		ui.Debug("IPMI stdout: %s", result.Stdout)
	}
	if len(result.Stderr) > 0 {
		ui.Debug("IPMI stderr: %s", result.Stderr)
	}

	if err != nil {
		result.Error = err.Error()
		ui.Error("IPMI command failed (%s): %v", description, err)
		return result
	}
	if result.ExitCode != 0 {
		ui.Error("IPMI command failed (%s): exit code %d: %s", description, result.ExitCode, result.Diagnostic())
		return result
	}

	result.Succeeded = true
	ui.Info("IPMI command succeeded (%s)", description)
	return result
}

func formatByte(b uint8) string {
	return fmt.Sprintf("0x%02x", b)
}
