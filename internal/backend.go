package internal

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/markusressel/fan2bmc/internal/api"
	"github.com/markusressel/fan2bmc/internal/configuration"
	"github.com/markusressel/fan2bmc/internal/controller"
	"github.com/markusressel/fan2bmc/internal/fans"
	"github.com/markusressel/fan2bmc/internal/sensors"
	"github.com/markusressel/fan2bmc/internal/statistics"
	"github.com/markusressel/fan2bmc/internal/ui"
	"github.com/markusressel/fan2bmc/internal/util"
	"github.com/oklog/run"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const serverShutdownTimeout = 5 * time.Second

func RunDaemon() {
	config := configuration.CurrentConfig

	CheckIpmiTool(config.Ipmi.Exec)
	if !util.IsElevated() {
		ui.Warning("fan2bmc is not running with elevated privileges, BMC commands will most likely fail")
		ui.NotifyWarn("Missing privileges", "fan2bmc is not running with elevated privileges, BMC commands will most likely fail")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sourceFactory := NewSourceFactory(config)
	sensors.EnsureService(ctx,
		sensors.HasTemperatureSensors(sourceFactory),
		sensors.LaunchDetached,
		config.Sensors.ServiceExec,
		config.Sensors.ServiceGracePeriod,
	)

	sampler := sensors.NewTemperatureSampler(func() (sensors.TemperatureReader, error) {
		return sensors.NewTemperatureReader(config.Sensors.Namespace, sourceFactory)
	}, config.Sampling.Interval, config.Controller.EventBufferSize)

	fanController := controller.NewFanController(NewActuator(config), sampler.Events(), controller.Options{
		Curve:                config.FanCurve(),
		StartInAutoMode:      config.Controller.StartInAutoMode,
		RetryFailedActuation: config.Controller.RetryFailedActuation,
		LatencyWindowSize:    config.Controller.LatencyWindowSize,
		HotTemperature:       config.Controller.HotTemperature,
	})

	var registerer prometheus.Registerer
	if config.Statistics.Enabled {
		registerer = prometheus.DefaultRegisterer
		statistics.RegisterAll(fanController)
	}

	var g run.Group
	{
		if config.Statistics.Enabled {
			// === Prometheus Exporter
			mux := http.NewServeMux()
			mux.Handle("/metrics", promhttp.Handler())
			server := &http.Server{Addr: fmt.Sprintf(":%d", config.Statistics.Port), Handler: mux}

			g.Add(func() error {
				ui.Info("Statistics endpoint listening on %s/metrics", server.Addr)
				err := server.ListenAndServe()
				if errors.Is(err, http.ErrServerClosed) {
					return nil
				}
				return fmt.Errorf("cannot start prometheus metrics endpoint: %w", err)
			}, func(err error) {
				shutdownServer("statistics server", server.Shutdown)
			})
		}
	}
	{
		if config.Api.Enabled {
			// === REST API
			rest := api.CreateRestService(fanController, registerer)
			addr := fmt.Sprintf("%s:%d", config.Api.Host, config.Api.Port)

			g.Add(func() error {
				ui.Info("REST API listening on %s", addr)
				err := rest.Start(addr)
				if errors.Is(err, http.ErrServerClosed) {
					return nil
				}
				return fmt.Errorf("cannot start REST API: %w", err)
			}, func(err error) {
				shutdownServer("REST API", rest.Shutdown)
			})
		}
	}
	{
		// === temperature sampler
		g.Add(func() error {
			if err := sampler.Run(ctx, config.Sampling.StopTimeout); err != nil {
				ui.Warning("Temperature sampler did not stop within %s, leaking it", config.Sampling.StopTimeout)
			} else {
				ui.Info("Temperature sampler stopped.")
			}
			return nil
		}, func(err error) {
			cancel()
		})
	}
	{
		// === fan controller
		g.Add(func() error {
			err := fanController.Run(ctx)
			ui.Info("Fan controller stopped.")
			return err
		}, func(err error) {
			if err != nil {
				ui.Warning("Something went wrong: %v", err)
			}
			cancel()
		})
	}
	{
		sig := make(chan os.Signal, 1)
		signal.Notify(sig, os.Interrupt, syscall.SIGTERM)

		g.Add(func() error {
			select {
			case <-sig:
				ui.Info("Received termination signal, exiting...")
			case <-ctx.Done():
			}
			return nil
		}, func(err error) {
			signal.Stop(sig)
			cancel()
		})
	}

	if err := g.Run(); err != nil {
		ui.Error("%v", err)
		ui.CloseLogFile()
		os.Exit(1)
	} else {
		ui.Info("Done.")
		ui.CloseLogFile()
		os.Exit(0)
	}
}

// CheckIpmiTool exits if the BMC tool is missing, nothing can be controlled without it
func CheckIpmiTool(exec string) {
	if err := util.CheckFileExists(exec); err != nil {
		ui.ErrorAndNotify("IPMI tool missing", "Cannot control fans without IPMICFG: %v", err)
		ui.Fatal("Configure the path to IPMICFG using 'ipmi.exec', expected it at: %s", exec)
	}
	ui.Info("Using IPMI tool: %s", exec)
}

func NewSourceFactory(config configuration.Configuration) sensors.SourceFactory {
	return func() (sensors.Source, error) {
		return sensors.NewSource(config.Sensors.Namespace)
	}
}

func NewActuator(config configuration.Configuration) *fans.IpmiActuator {
	return fans.NewIpmiActuator(config.Ipmi.Exec, config.Ipmi.RawArgs, config.Ipmi.Timeout, config.ZoneMapping())
}

func shutdownServer(name string, shutdown func(ctx context.Context) error) {
	ui.Info("Stopping %s...", name)
	timeoutCtx, timeoutCancel := context.WithTimeout(context.Background(), serverShutdownTimeout)
	defer timeoutCancel()
	if err := shutdown(timeoutCtx); err != nil {
		ui.Warning("Error stopping %s: %v", name, err)
	} else {
		ui.Info("%s stopped.", name)
	}
}
