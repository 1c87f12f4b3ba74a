//go:build !windows

package fans

import (
	"os/exec"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func lookPath(name string) string {
	// unlikely to fail
	p, _ := exec.LookPath(name)
	return p
}

func TestIpmiActuator_SetFanDutyArgs(t *testing.T) {
	// GIVEN
	actuator := NewIpmiActuator("ipmicfg", []string{"-raw"}, time.Second, nil)

	// WHEN
	cpu := actuator.SetFanDutyArgs(ZoneCpu, 45)
	peripheral := actuator.SetFanDutyArgs(ZonePeripheral, 100)

	// THEN
	assert.Equal(t, []string{"-raw", "0x30", "0x70", "0x66", "0x01", "0x00", "0x2d"}, cpu)
	assert.Equal(t, []string{"-raw", "0x30", "0x70", "0x66", "0x01", "0x01", "0x64"}, peripheral)
}

func TestIpmiActuator_SetFanDutyArgs_Clamped(t *testing.T) {
	// GIVEN
	actuator := NewIpmiActuator("ipmicfg", []string{"-raw"}, time.Second, nil)

	// WHEN
	high := actuator.SetFanDutyArgs(ZoneCpu, 250)
	low := actuator.SetFanDutyArgs(ZoneCpu, -5)

	// THEN
	assert.Equal(t, "0x64", high[len(high)-1])
	assert.Equal(t, "0x00", low[len(low)-1])
}

func TestIpmiActuator_SetFanDutyArgs_CustomZones(t *testing.T) {
	// GIVEN
	zones := ZoneMapping{ZoneCpu: 0x10, ZonePeripheral: 0xff}
	actuator := NewIpmiActuator("ipmicfg", nil, time.Second, zones)

	// WHEN
	cpu := actuator.SetFanDutyArgs(ZoneCpu, 15)
	peripheral := actuator.SetFanDutyArgs(ZonePeripheral, 0)

	// THEN
	assert.Equal(t, []string{"0x30", "0x70", "0x66", "0x01", "0x10", "0x0f"}, cpu)
	assert.Equal(t, []string{"0x30", "0x70", "0x66", "0x01", "0xff", "0x00"}, peripheral)
}

func TestIpmiActuator_RawArgsNotModified(t *testing.T) {
	// GIVEN
	rawArgs := make([]string, 1, 16)
	rawArgs[0] = "-raw"
	actuator := NewIpmiActuator("ipmicfg", rawArgs, time.Second, nil)

	// WHEN
	first := actuator.SetFanDutyArgs(ZoneCpu, 10)
	second := actuator.SetFanDutyArgs(ZonePeripheral, 20)

	// THEN
	assert.Equal(t, "0x0a", first[len(first)-1])
	assert.Equal(t, "0x14", second[len(second)-1])
	assert.Len(t, rawArgs, 1)
}

func TestIpmiActuator_SetFanDuty_Success(t *testing.T) {
	// GIVEN
	actuator := NewIpmiActuator(lookPath("echo"), []string{"-raw"}, time.Second, nil)

	// WHEN
	result := actuator.SetFanDuty(ZonePeripheral, 60)

	// THEN
	assert.True(t, result.Succeeded)
	assert.Equal(t, 0, result.ExitCode)
	assert.Equal(t, "-raw 0x30 0x70 0x66 0x01 0x01 0x3c", result.Stdout)
	assert.Empty(t, result.Error)
	assert.Equal(t, "zone=peripheral duty=60%", result.Description)
}

func TestIpmiActuator_RestoreAutomatic_Success(t *testing.T) {
	// GIVEN
	actuator := NewIpmiActuator(lookPath("echo"), []string{"-raw"}, time.Second, nil)

	// WHEN
	result := actuator.RestoreAutomatic()

	// THEN
	assert.True(t, result.Succeeded)
	assert.Equal(t, "-raw 0x30 0x45 0x01 0x01", result.Stdout)
}

func TestIpmiActuator_NonZeroExitCode(t *testing.T) {
	// GIVEN
	actuator := NewIpmiActuator(lookPath("sh"), []string{"-c", "echo 'Invalid command' >&2; exit 2", "ipmicfg"}, time.Second, nil)

	// WHEN
	result := actuator.SetFanDuty(ZoneCpu, 50)

	// THEN
	assert.False(t, result.Succeeded)
	assert.Equal(t, 2, result.ExitCode)
	assert.Equal(t, "Invalid command", result.Stderr)
	assert.Equal(t, "Invalid command", result.Diagnostic())
}

func TestIpmiActuator_LaunchFailure(t *testing.T) {
	// GIVEN
	actuator := NewIpmiActuator(filepath.Join(t.TempDir(), "IPMICFG-Linux.x86_64"), []string{"-raw"}, time.Second, nil)

	// WHEN
	result := actuator.SetFanDuty(ZoneCpu, 50)

	// THEN
	assert.False(t, result.Succeeded)
	assert.Equal(t, -1, result.ExitCode)
	assert.NotEmpty(t, result.Error)
}

func TestIpmiActuator_Timeout(t *testing.T) {
	// GIVEN
	actuator := NewIpmiActuator(lookPath("sh"), []string{"-c", "exec sleep 5", "ipmicfg"}, 100*time.Millisecond, nil)

	// WHEN
	start := time.Now()
	result := actuator.RestoreAutomatic()

	// THEN
	assert.False(t, result.Succeeded)
	assert.Contains(t, result.Error, "timed out")
	assert.Less(t, time.Since(start), 3*time.Second)
}
