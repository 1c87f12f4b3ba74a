package sensors

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/markusressel/fan2bmc/internal/ui"
)

type SamplerState int32

const (
	SamplerIdle SamplerState = iota
	SamplerRunning
	SamplerStopping
	SamplerStopped
)

func (s SamplerState) String() string {
	switch s {
	case SamplerIdle:
		return "Idle"
	case SamplerRunning:
		return "Running"
	case SamplerStopping:
		return "Stopping"
	case SamplerStopped:
		return "Stopped"
	default:
		return "Unknown"
	}
}

var ErrStopTimeout = errors.New("timed out waiting for temperature sampler to stop")

// Event is the outcome of a single sampling cycle.
// Exactly one of Value (possibly nil) or Err describes the result.
type Event struct {
	// Value is the max CPU temperature, nil if none could be derived
	Value *float64
	// Err is set if the read failed
	Err error
	// Fatal marks an error after which the sampler will not produce any more events
	Fatal bool
	// Latency is the time the read took
	Latency time.Duration
	Time    time.Time
}

func (e Event) IsSample() bool {
	return e.Err == nil
}

type ReaderFactory func() (TemperatureReader, error)

// TemperatureSampler periodically reads the CPU temperature on its own goroutine
// and publishes the result on the Events channel.
type TemperatureSampler struct {
	factory  ReaderFactory
	interval time.Duration

	state  atomic.Int32
	events chan Event
	stop   chan struct{}
	once   sync.Once
	done   chan struct{}
}

func NewTemperatureSampler(factory ReaderFactory, interval time.Duration, bufferSize int) *TemperatureSampler {
	if bufferSize < 0 {
		bufferSize = 0
	}
	return &TemperatureSampler{
		factory:  factory,
		interval: interval,
		events:   make(chan Event, bufferSize),
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// Events delivers sampling results in the order they were produced.
// The channel is closed once the sampler has stopped.
func (s *TemperatureSampler) Events() <-chan Event {
	return s.events
}

func (s *TemperatureSampler) State() SamplerState {
	return SamplerState(s.state.Load())
}

// Start begins sampling. Calling Start more than once has no effect.
func (s *TemperatureSampler) Start(ctx context.Context) {
	if !s.state.CompareAndSwap(int32(SamplerIdle), int32(SamplerRunning)) {
		return
	}
	go s.run(ctx)
}

// Stop asks the sampler to finish. It does not wait, see Wait.
func (s *TemperatureSampler) Stop() {
	if s.state.CompareAndSwap(int32(SamplerIdle), int32(SamplerStopped)) {
		s.once.Do(func() {
			close(s.stop)
			close(s.events)
			close(s.done)
		})
		return
	}
	s.state.CompareAndSwap(int32(SamplerRunning), int32(SamplerStopping))
	s.once.Do(func() { close(s.stop) })
}

// Wait blocks until the sampling goroutine has exited or the timeout elapsed
func (s *TemperatureSampler) Wait(timeout time.Duration) error {
	timer := time.NewTimer(timeout)
	defer timer.Stop()
	select {
	case <-s.done:
		return nil
	case <-timer.C:
		return ErrStopTimeout
	}
}

// Run starts sampling and blocks until ctx is cancelled, even if the sampler stopped on its own
// after a fatal error. It then stops the sampler and waits at most stopTimeout for it to exit,
// returning ErrStopTimeout if it did not.
func (s *TemperatureSampler) Run(ctx context.Context, stopTimeout time.Duration) error {
	s.Start(ctx)
	<-ctx.Done()

	s.Stop()
	return s.Wait(stopTimeout)
}

func (s *TemperatureSampler) run(ctx context.Context) {
	defer func() {
		s.state.Store(int32(SamplerStopped))
		close(s.events)
		close(s.done)
	}()

	reader, err := s.factory()
	if err != nil {
		s.publish(ctx, Event{Err: err, Fatal: true, Time: time.Now()})
		return
	}
	defer func() {
		if err := reader.Close(); err != nil {
			ui.Warning("Error closing temperature reader: %v", err)
		}
	}()

	for {
		if s.stopRequested(ctx) {
			return
		}

		start := time.Now()
		temp, err := reader.ReadMaxCpuTemperature(ctx)
		event := Event{
			Value:   temp,
			Err:     err,
			Latency: time.Since(start),
			Time:    start,
		}
		if !s.publish(ctx, event) {
			return
		}

		if !s.sleep(ctx) {
			return
		}
	}
}

func (s *TemperatureSampler) stopRequested(ctx context.Context) bool {
	select {
	case <-s.stop:
		return true
	case <-ctx.Done():
		return true
	default:
		return false
	}
}

// publish blocks until the event was accepted, returns false if the sampler was stopped meanwhile
func (s *TemperatureSampler) publish(ctx context.Context, event Event) bool {
	select {
	case s.events <- event:
		return true
	case <-s.stop:
		return false
	case <-ctx.Done():
		return false
	}
}

func (s *TemperatureSampler) sleep(ctx context.Context) bool {
	timer := time.NewTimer(s.interval)
	defer timer.Stop()
	select {
	case <-timer.C:
		return true
	case <-s.stop:
		return false
	case <-ctx.Done():
		return false
	}
}
