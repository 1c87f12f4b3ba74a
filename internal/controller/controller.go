package controller

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"github.com/asecurityteam/rolling"
	"github.com/markusressel/fan2bmc/internal/curves"
	"github.com/markusressel/fan2bmc/internal/fans"
	"github.com/markusressel/fan2bmc/internal/sensors"
	"github.com/markusressel/fan2bmc/internal/ui"
	"github.com/markusressel/fan2bmc/internal/util"
	cmap "github.com/orcaman/concurrent-map/v2"
)

// key of the last RestoreAutomatic result in the actuation result map
const restoreActuationKey = "bmc"

var (
	ErrManualModeRequired = errors.New("manual fan control requires automatic mode to be disabled")
	ErrStopped            = errors.New("fan controller is not running")
)

type Options struct {
	Curve           curves.FanCurve
	StartInAutoMode bool
	// RetryFailedActuation forgets the last auto target if applying it failed,
	// so the next sample retries even if it computes the same target.
	RetryFailedActuation bool
	LatencyWindowSize    int
	// HotTemperature marks temperatures at or above this value as hot in the status
	HotTemperature float64
}

// State is the control state, owned by the goroutine executing Run
type State struct {
	AutoEnabled      bool     `json:"autoEnabled"`
	LastAutoTarget   *int     `json:"lastAutoTarget"`
	LastObservedTemp *float64 `json:"lastObservedTemp"`
}

type command func()

// FanController consumes temperature samples and drives the BMC.
// All state is confined to the goroutine executing Run, user input is
// passed to it as commands.
type FanController struct {
	actuator fans.Actuator
	events   <-chan sensors.Event
	commands chan command
	options  Options

	curve        curves.FanCurve
	state        State
	manualDuty   map[fans.FanZone]int
	noData       error
	samples      int
	sampleErrors int
	actuations   int
	failures     int
	lastSample   time.Time
	lastLatency  time.Duration
	latencies    *rolling.PointPolicy
	latencyCount int

	results cmap.ConcurrentMap[string, fans.ActuationResult]
	status  atomic.Pointer[Status]
	running atomic.Bool
	done    chan struct{}
}

func NewFanController(actuator fans.Actuator, events <-chan sensors.Event, options Options) *FanController {
	if options.LatencyWindowSize <= 0 {
		options.LatencyWindowSize = 1
	}
	c := &FanController{
		actuator:   actuator,
		events:     events,
		commands:   make(chan command),
		options:    options,
		curve:      curves.NewFanCurve(options.Curve.Points),
		state:      State{AutoEnabled: options.StartInAutoMode},
		manualDuty: map[fans.FanZone]int{},
		latencies:  util.CreateRollingWindow(options.LatencyWindowSize),
		results:    cmap.New[fans.ActuationResult](),
		done:       make(chan struct{}),
	}
	for _, zone := range fans.Zones {
		c.manualDuty[zone] = 0
	}
	c.publishStatus()
	return c
}

// Run processes sampling events and commands until ctx is cancelled.
// It must only be called once.
func (c *FanController) Run(ctx context.Context) error {
	if !c.running.CompareAndSwap(false, true) {
		return errors.New("fan controller is already running")
	}
	defer close(c.done)

	ui.Info("Starting fan controller (automatic mode: %v, curve: %s)", c.state.AutoEnabled, c.curve)

	events := c.events
	for {
		select {
		case <-ctx.Done():
			ui.Info("Stopping fan controller")
			return nil
		case event, ok := <-events:
			if !ok {
				// a nil channel is never ready
				events = nil
				ui.Debug("Temperature sampler has stopped")
				continue
			}
			c.handleEvent(event)
		case cmd := <-c.commands:
			cmd()
		}
	}
}

func (c *FanController) handleEvent(event sensors.Event) {
	defer c.publishStatus()

	if !event.Fatal {
		c.lastSample = event.Time
		c.lastLatency = event.Latency
		c.latencies.Append(float64(event.Latency.Microseconds()))
		c.latencyCount++
	}

	if event.Err != nil {
		c.sampleErrors++
		if event.Fatal {
			c.noData = event.Err
			ui.ErrorAndNotify("No temperature data", "%v", event.Err)
		} else {
			ui.Warning("Failed to read CPU temperature: %v", event.Err)
		}
		return
	}

	c.samples++
	if event.Value == nil {
		c.state.LastObservedTemp = nil
		ui.Warning("No CPU temperature sensor available")
		return
	}

	temp := *event.Value
	c.state.LastObservedTemp = &temp
	ui.Debug("CPU temperature: %.1f°C (read in %s)", temp, event.Latency)

	if c.state.AutoEnabled {
		c.applyCurve(temp)
	}
}

func (c *FanController) applyCurve(temp float64) {
	target := c.curve.Evaluate(temp)
	if c.state.LastAutoTarget != nil && *c.state.LastAutoTarget == target {
		ui.Debug("Target duty %d%% unchanged", target)
		return
	}

	ui.Info("Temperature %.1f°C, setting fans to %d%%", temp, target)
	c.state.LastAutoTarget = &target

	succeeded := true
	for _, zone := range fans.Zones {
		result := c.actuator.SetFanDuty(zone, target)
		c.recordResult(zone.String(), result)
		succeeded = succeeded && result.Succeeded
	}

	if !succeeded && c.options.RetryFailedActuation {
		c.state.LastAutoTarget = nil
	}
}

func (c *FanController) recordResult(key string, result fans.ActuationResult) {
	c.actuations++
	if !result.Succeeded {
		c.failures++
	}
	c.results.Set(key, result)
}

func (c *FanController) setAutoEnabled(enabled bool) {
	defer c.publishStatus()

	if c.state.AutoEnabled == enabled {
		return
	}
	c.state.AutoEnabled = enabled
	c.state.LastAutoTarget = nil
	if enabled {
		ui.Info("Automatic fan control enabled")
	} else {
		ui.Info("Automatic fan control disabled")
	}
}

func (c *FanController) commitManualDuty(zone fans.FanZone, duty int) (fans.ActuationResult, error) {
	defer c.publishStatus()

	if c.state.AutoEnabled {
		return fans.ActuationResult{}, ErrManualModeRequired
	}
	duty = util.Clamp(duty, fans.MinDutyValue, fans.MaxDutyValue)
	c.manualDuty[zone] = duty

	result := c.actuator.SetFanDuty(zone, duty)
	c.recordResult(zone.String(), result)
	return result, nil
}

func (c *FanController) setCurve(curve curves.FanCurve) {
	defer c.publishStatus()

	c.curve = curves.NewFanCurve(curve.Points)
	ui.Info("Fan curve updated: %s", c.curve)
}

func (c *FanController) resetToBmcAuto() fans.ActuationResult {
	defer c.publishStatus()

	result := c.actuator.RestoreAutomatic()
	c.recordResult(restoreActuationKey, result)
	if result.Succeeded {
		for zone := range c.manualDuty {
			c.manualDuty[zone] = 0
		}
		c.state.LastAutoTarget = nil
	}
	return result
}

// submit executes fn on the controller goroutine and waits for it to finish
func (c *FanController) submit(ctx context.Context, fn func()) error {
	finished := make(chan struct{})
	cmd := func() {
		defer close(finished)
		fn()
	}

	select {
	case c.commands <- cmd:
	case <-c.done:
		return ErrStopped
	case <-ctx.Done():
		return ctx.Err()
	}

	select {
	case <-finished:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// SetAutoEnabled switches between curve based and manual control.
// Any change forces the next valid sample to actuate.
func (c *FanController) SetAutoEnabled(ctx context.Context, enabled bool) error {
	return c.submit(ctx, func() {
		c.setAutoEnabled(enabled)
	})
}

// CommitManualDuty applies a user selected duty to a single zone.
// Only allowed while automatic mode is disabled.
func (c *FanController) CommitManualDuty(ctx context.Context, zone fans.FanZone, duty int) (fans.ActuationResult, error) {
	var result fans.ActuationResult
	var err error
	submitErr := c.submit(ctx, func() {
		result, err = c.commitManualDuty(zone, duty)
	})
	if submitErr != nil {
		return fans.ActuationResult{}, submitErr
	}
	return result, err
}

// SetCurve replaces the fan curve, it is used starting with the next sample
func (c *FanController) SetCurve(ctx context.Context, curve curves.FanCurve) error {
	return c.submit(ctx, func() {
		c.setCurve(curve)
	})
}

// ResetToBmcAuto hands fan control back to the BMC
func (c *FanController) ResetToBmcAuto(ctx context.Context) (fans.ActuationResult, error) {
	var result fans.ActuationResult
	err := c.submit(ctx, func() {
		result = c.resetToBmcAuto()
	})
	if err != nil {
		return fans.ActuationResult{}, err
	}
	return result, nil
}

// LastActuation returns the last actuation result for the given zone
func (c *FanController) LastActuation(zone fans.FanZone) (fans.ActuationResult, bool) {
	return c.results.Get(zone.String())
}
