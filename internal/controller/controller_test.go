package controller

import (
	"context"
	"errors"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/markusressel/fan2bmc/internal/curves"
	"github.com/markusressel/fan2bmc/internal/fans"
	"github.com/markusressel/fan2bmc/internal/sensors"
	"github.com/markusressel/fan2bmc/internal/ui"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	ui.SetNotificationsEnabled(false)
	os.Exit(m.Run())
}

type DutyCall struct {
	Zone fans.FanZone
	Duty int
}

type MockActuator struct {
	mu       sync.Mutex
	Calls    []DutyCall
	Restores int
	Fail     bool
}

func (a *MockActuator) SetFanDuty(zone fans.FanZone, percent int) fans.ActuationResult {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.Calls = append(a.Calls, DutyCall{Zone: zone, Duty: percent})
	return a.result()
}

func (a *MockActuator) RestoreAutomatic() fans.ActuationResult {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.Restores++
	return a.result()
}

func (a *MockActuator) result() fans.ActuationResult {
	if a.Fail {
		return fans.ActuationResult{Succeeded: false, ExitCode: 1, Stderr: "failed"}
	}
	return fans.ActuationResult{Succeeded: true}
}

func (a *MockActuator) SetFail(fail bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.Fail = fail
}

func (a *MockActuator) GetCalls() []DutyCall {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]DutyCall{}, a.Calls...)
}

func sample(v float64) sensors.Event {
	return sensors.Event{Value: &v, Latency: 20 * time.Millisecond, Time: time.Now()}
}

func absentSample() sensors.Event {
	return sensors.Event{Latency: 20 * time.Millisecond, Time: time.Now()}
}

func sampleError() sensors.Event {
	return sensors.Event{Err: &sensors.ReadError{Err: errors.New("query failed")}, Latency: time.Millisecond, Time: time.Now()}
}

func bothZones(duty int) []DutyCall {
	return []DutyCall{
		{Zone: fans.ZoneCpu, Duty: duty},
		{Zone: fans.ZonePeripheral, Duty: duty},
	}
}

func createController(actuator fans.Actuator, autoEnabled bool) *FanController {
	return NewFanController(actuator, nil, Options{
		Curve:             curves.DefaultFanCurve(),
		StartInAutoMode:   autoEnabled,
		LatencyWindowSize: 4,
		HotTemperature:    80,
	})
}

func TestController_AutoActuatesBothZones(t *testing.T) {
	// GIVEN
	actuator := &MockActuator{}
	c := createController(actuator, true)

	// WHEN
	c.handleEvent(sample(70))

	// THEN
	assert.Equal(t, bothZones(45), actuator.Calls)
	assert.Equal(t, 45, *c.state.LastAutoTarget)
	assert.Equal(t, 70.0, *c.state.LastObservedTemp)
}

func TestController_SameSampleTwiceActuatesOnce(t *testing.T) {
	// GIVEN
	actuator := &MockActuator{}
	c := createController(actuator, true)

	// WHEN
	c.handleEvent(sample(70))
	c.handleEvent(sample(70))

	// THEN
	assert.Equal(t, bothZones(45), actuator.Calls)
}

func TestController_DifferentTemperatureSameTargetIsDebounced(t *testing.T) {
	// GIVEN
	actuator := &MockActuator{}
	c := createController(actuator, true)

	// WHEN
	c.handleEvent(sample(40))
	c.handleEvent(sample(45))

	// THEN
	assert.Equal(t, bothZones(20), actuator.Calls)
	assert.Equal(t, 45.0, *c.state.LastObservedTemp)
}

func TestController_ChangedTargetActuates(t *testing.T) {
	// GIVEN
	actuator := &MockActuator{}
	c := createController(actuator, true)

	// WHEN
	c.handleEvent(sample(65))
	c.handleEvent(sample(90))

	// THEN
	assert.Equal(t, append(bothZones(30), bothZones(100)...), actuator.Calls)
}

func TestController_ModeSwitchForcesActuation(t *testing.T) {
	// GIVEN
	actuator := &MockActuator{}
	c := createController(actuator, true)
	c.handleEvent(sample(70))

	// WHEN
	c.setAutoEnabled(false)
	c.handleEvent(sample(70))
	c.setAutoEnabled(true)
	c.handleEvent(sample(70))
	c.handleEvent(sample(70))

	// THEN
	assert.Equal(t, append(bothZones(45), bothZones(45)...), actuator.Calls)
}

func TestController_ManualModeBypassesCurve(t *testing.T) {
	// GIVEN
	actuator := &MockActuator{}
	c := createController(actuator, false)

	// WHEN
	c.handleEvent(sample(90))

	// THEN
	assert.Empty(t, actuator.Calls)
	assert.Nil(t, c.state.LastAutoTarget)
	assert.Equal(t, 90.0, *c.state.LastObservedTemp)
}

func TestController_AbsentSampleDoesNotActuate(t *testing.T) {
	// GIVEN
	actuator := &MockActuator{}
	c := createController(actuator, true)
	c.handleEvent(sample(70))

	// WHEN
	c.handleEvent(absentSample())

	// THEN
	assert.Equal(t, bothZones(45), actuator.Calls)
	assert.Equal(t, 45, *c.state.LastAutoTarget)
	assert.Nil(t, c.state.LastObservedTemp)
}

func TestController_SampleErrorLeavesStateUnchanged(t *testing.T) {
	// GIVEN
	actuator := &MockActuator{}
	c := createController(actuator, true)
	c.handleEvent(sample(70))

	// WHEN
	c.handleEvent(sampleError())

	// THEN
	assert.Equal(t, bothZones(45), actuator.Calls)
	assert.Equal(t, 45, *c.state.LastAutoTarget)
	assert.Equal(t, 70.0, *c.state.LastObservedTemp)
	assert.Equal(t, 1, c.Status().SampleErrors)
	assert.False(t, c.Status().NoData)
}

func TestController_FailedActuationIsNotRetriedForSameTarget(t *testing.T) {
	// GIVEN
	actuator := &MockActuator{Fail: true}
	c := createController(actuator, true)
	c.handleEvent(sample(70))
	actuator.Fail = false

	// WHEN
	c.handleEvent(sample(70))

	// THEN
	assert.Equal(t, bothZones(45), actuator.Calls)

	// WHEN
	c.handleEvent(sample(90))

	// THEN
	assert.Equal(t, append(bothZones(45), bothZones(100)...), actuator.Calls)
	assert.Equal(t, 4, c.Status().Actuations)
	assert.Equal(t, 2, c.Status().ActuationFailures)
}

func TestController_FailedActuationIsRetriedWithRetryPolicy(t *testing.T) {
	// GIVEN
	actuator := &MockActuator{Fail: true}
	c := NewFanController(actuator, nil, Options{
		Curve:                curves.DefaultFanCurve(),
		StartInAutoMode:      true,
		RetryFailedActuation: true,
	})
	c.handleEvent(sample(70))
	assert.Nil(t, c.state.LastAutoTarget)
	actuator.Fail = false

	// WHEN
	c.handleEvent(sample(70))
	c.handleEvent(sample(70))

	// THEN
	assert.Equal(t, append(bothZones(45), bothZones(45)...), actuator.Calls)
	assert.Equal(t, 45, *c.state.LastAutoTarget)
}

func TestController_FatalSampleErrorSetsNoData(t *testing.T) {
	// GIVEN
	actuator := &MockActuator{}
	c := createController(actuator, true)
	fatal := sensors.Event{
		Err:   &sensors.ConnectionError{Namespace: "test", Err: errors.New("invalid namespace")},
		Fatal: true,
		Time:  time.Now(),
	}

	// WHEN
	c.handleEvent(fatal)

	// THEN
	status := c.Status()
	assert.True(t, status.NoData)
	assert.Contains(t, status.NoDataReason, "invalid namespace")
	assert.Empty(t, actuator.Calls)
	assert.Equal(t, time.Duration(0), status.AvgSampleLatency)
}

func TestController_CommitManualDuty(t *testing.T) {
	// GIVEN
	actuator := &MockActuator{}
	c := createController(actuator, false)

	// WHEN
	_, err1 := c.commitManualDuty(fans.ZoneCpu, 40)
	_, err2 := c.commitManualDuty(fans.ZoneCpu, 40)
	_, err3 := c.commitManualDuty(fans.ZonePeripheral, 150)

	// THEN
	assert.NoError(t, err1)
	assert.NoError(t, err2)
	assert.NoError(t, err3)
	assert.Equal(t, []DutyCall{
		{Zone: fans.ZoneCpu, Duty: 40},
		{Zone: fans.ZoneCpu, Duty: 40},
		{Zone: fans.ZonePeripheral, Duty: 100},
	}, actuator.Calls)
	assert.Equal(t, map[string]int{"cpu": 40, "peripheral": 100}, c.Status().ManualDuty)
}

func TestController_CommitManualDutyRejectedInAutoMode(t *testing.T) {
	// GIVEN
	actuator := &MockActuator{}
	c := createController(actuator, true)

	// WHEN
	_, err := c.commitManualDuty(fans.ZoneCpu, 40)

	// THEN
	assert.ErrorIs(t, err, ErrManualModeRequired)
	assert.Empty(t, actuator.Calls)
}

func TestController_ResetToBmcAuto(t *testing.T) {
	// GIVEN
	actuator := &MockActuator{}
	c := createController(actuator, false)
	_, _ = c.commitManualDuty(fans.ZoneCpu, 40)
	c.setAutoEnabled(true)
	c.handleEvent(sample(70))

	// WHEN
	result := c.resetToBmcAuto()

	// THEN
	assert.True(t, result.Succeeded)
	assert.Equal(t, 1, actuator.Restores)
	assert.Nil(t, c.state.LastAutoTarget)
	assert.Equal(t, 0, c.manualDuty[fans.ZoneCpu])
	assert.True(t, c.state.AutoEnabled)
	status := c.Status()
	assert.Equal(t, map[string]int{"cpu": 0, "peripheral": 0}, status.ManualDuty)
	assert.Nil(t, status.LastAutoTarget)
}

func TestController_FailedResetKeepsState(t *testing.T) {
	// GIVEN
	actuator := &MockActuator{}
	c := createController(actuator, true)
	c.handleEvent(sample(70))
	actuator.Fail = true

	// WHEN
	result := c.resetToBmcAuto()

	// THEN
	assert.False(t, result.Succeeded)
	assert.Equal(t, 45, *c.state.LastAutoTarget)
}

func TestController_SetCurveAppliesToNextSample(t *testing.T) {
	// GIVEN
	actuator := &MockActuator{}
	c := createController(actuator, true)
	c.handleEvent(sample(70))

	// WHEN
	c.setCurve(curves.NewFanCurve([]curves.CurvePoint{{Temperature: 30, Duty: 50}, {Temperature: 90, Duty: 50}}))

	// THEN
	assert.Equal(t, bothZones(45), actuator.Calls)

	// WHEN
	c.handleEvent(sample(70))

	// THEN
	assert.Equal(t, append(bothZones(45), bothZones(50)...), actuator.Calls)
}

func TestController_Status(t *testing.T) {
	// GIVEN
	actuator := &MockActuator{}
	c := createController(actuator, true)

	// WHEN
	c.handleEvent(sensors.Event{Value: ptr(81.0), Latency: 10 * time.Millisecond, Time: time.Now()})
	c.handleEvent(sensors.Event{Value: ptr(81.0), Latency: 30 * time.Millisecond, Time: time.Now()})

	// THEN
	status := c.Status()
	assert.True(t, status.Hot)
	assert.True(t, status.AutoEnabled)
	assert.Equal(t, 100, *status.LastAutoTarget)
	assert.Equal(t, 2, status.Samples)
	assert.Equal(t, 30*time.Millisecond, status.LastSampleLatency)
	assert.Equal(t, 20*time.Millisecond, status.AvgSampleLatency)
	assert.Equal(t, 30*time.Millisecond, status.MaxSampleLatency)
	assert.Len(t, status.Curve, 4)
	assert.True(t, status.LastActuation["cpu"].Succeeded)
	assert.True(t, status.LastActuation["peripheral"].Succeeded)

	result, ok := c.LastActuation(fans.ZoneCpu)
	assert.True(t, ok)
	assert.True(t, result.Succeeded)
}

func TestController_StatusIsSnapshot(t *testing.T) {
	// GIVEN
	actuator := &MockActuator{}
	c := createController(actuator, true)
	c.handleEvent(sample(70))
	before := c.Status()

	// WHEN
	c.handleEvent(sample(90))

	// THEN
	assert.Equal(t, 45, *before.LastAutoTarget)
	assert.Equal(t, 70.0, *before.LastObservedTemp)
	assert.Equal(t, 100, *c.Status().LastAutoTarget)
}

func ptr[T any](v T) *T {
	return &v
}

func TestController_Run(t *testing.T) {
	// GIVEN
	actuator := &MockActuator{}
	events := make(chan sensors.Event)
	c := NewFanController(actuator, events, Options{
		Curve:           curves.DefaultFanCurve(),
		StartInAutoMode: true,
	})
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	runErr := make(chan error, 1)
	go func() {
		runErr <- c.Run(ctx)
	}()

	// WHEN
	events <- sample(65)
	events <- sample(65)
	events <- sample(70)
	err := c.SetAutoEnabled(ctx, false)
	require.NoError(t, err)
	result, err := c.CommitManualDuty(ctx, fans.ZonePeripheral, 80)
	require.NoError(t, err)
	resetResult, err := c.ResetToBmcAuto(ctx)
	require.NoError(t, err)
	err = c.SetCurve(ctx, curves.NewFanCurve([]curves.CurvePoint{{Temperature: 0, Duty: 10}}))
	require.NoError(t, err)

	// THEN
	assert.True(t, result.Succeeded)
	assert.True(t, resetResult.Succeeded)
	assert.Equal(t, []DutyCall{
		{Zone: fans.ZoneCpu, Duty: 30},
		{Zone: fans.ZonePeripheral, Duty: 30},
		{Zone: fans.ZoneCpu, Duty: 45},
		{Zone: fans.ZonePeripheral, Duty: 45},
		{Zone: fans.ZonePeripheral, Duty: 80},
	}, actuator.GetCalls())

	status := c.Status()
	assert.False(t, status.AutoEnabled)
	assert.Equal(t, 0, status.ManualDuty["peripheral"])
	assert.Equal(t, []curves.CurvePoint{{Temperature: 0, Duty: 10}}, status.Curve)

	// WHEN
	cancel()

	// THEN
	select {
	case err := <-runErr:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		assert.Fail(t, "controller did not stop")
	}
	assert.ErrorIs(t, c.SetAutoEnabled(context.Background(), true), ErrStopped)
}

func TestController_RunSurvivesClosedEventChannel(t *testing.T) {
	// GIVEN
	actuator := &MockActuator{}
	events := make(chan sensors.Event, 1)
	events <- sample(90)
	close(events)
	c := NewFanController(actuator, events, Options{Curve: curves.DefaultFanCurve(), StartInAutoMode: true})
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		_ = c.Run(ctx)
	}()
	assert.Eventually(t, func() bool {
		return len(actuator.GetCalls()) == 2
	}, time.Second, 5*time.Millisecond)

	// WHEN
	err := c.SetAutoEnabled(ctx, false)

	// THEN
	assert.NoError(t, err)
	assert.Equal(t, bothZones(100), actuator.GetCalls())
	assert.Error(t, c.Run(ctx))
}
