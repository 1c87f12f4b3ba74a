package sensors

import (
	"context"
	"path/filepath"
	"strings"
	"time"

	"github.com/markusressel/fan2bmc/internal/ui"
	"github.com/markusressel/fan2bmc/internal/util"
	"github.com/shirou/gopsutil/v3/process"
)

// ServiceProbe reports whether the hardware monitoring service currently exposes temperature sensors
type ServiceProbe func(ctx context.Context) bool

// ServiceLauncher starts the bundled hardware monitoring service
type ServiceLauncher func(executable string) error

// HasTemperatureSensors returns a probe that opens a connection using the given factory
// and checks for at least one temperature sensor.
func HasTemperatureSensors(factory SourceFactory) ServiceProbe {
	return func(ctx context.Context) bool {
		source, err := factory()
		if err != nil {
			ui.Debug("Hardware monitoring service not reachable: %v", err)
			return false
		}
		defer func() {
			_ = source.Close()
		}()

		sensors, err := source.Sensors(ctx)
		if err != nil {
			ui.Debug("Unable to query hardware monitoring service: %v", err)
			return false
		}
		return len(sensors) > 0
	}
}

// EnsureService makes sure the hardware monitoring service is available.
// If the probe fails and the service executable is not already running, it is launched
// and given gracePeriod to come up before probing once more.
// Returns whether the service is available afterwards; this is never fatal.
func EnsureService(ctx context.Context, probe ServiceProbe, launch ServiceLauncher, executable string, gracePeriod time.Duration) bool {
	if probe(ctx) {
		ui.Debug("Hardware monitoring service is available")
		return true
	}

	if len(executable) <= 0 {
		ui.Warning("Hardware monitoring service is not available and no service executable is configured")
		return false
	}

	if IsProcessRunning(ctx, executable) {
		ui.Warning("Hardware monitoring service '%s' is running but exposes no temperature sensors", filepath.Base(executable))
	} else {
		if err := util.CheckFileExists(executable); err != nil {
			ui.Warning("Cannot launch hardware monitoring service: %v", err)
			return false
		}
		ui.Info("Launching hardware monitoring service '%s'...", executable)
		if err := launch(executable); err != nil {
			ui.Warning("Failed to launch hardware monitoring service: %v", err)
			return false
		}
	}

	timer := time.NewTimer(gracePeriod)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
	}

	if probe(ctx) {
		ui.Success("Hardware monitoring service is available")
		return true
	}
	ui.Warning("Hardware monitoring service is still not available after %s", gracePeriod)
	return false
}

// LaunchDetached is the default ServiceLauncher
func LaunchDetached(executable string) error {
	return util.StartDetached(executable)
}

// IsProcessRunning checks whether a process with the same executable name is running
func IsProcessRunning(ctx context.Context, executable string) bool {
	name := filepath.Base(executable)
	processes, err := process.ProcessesWithContext(ctx)
	if err != nil {
		ui.Debug("Unable to list processes: %v", err)
		return false
	}
	for _, p := range processes {
		processName, err := p.NameWithContext(ctx)
		if err != nil {
			continue
		}
		if strings.EqualFold(processName, name) {
			return true
		}
	}
	return false
}
