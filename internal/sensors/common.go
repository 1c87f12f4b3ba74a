package sensors

import (
	"context"
	"fmt"
)

const (
	SensorTypeTemperature = "Temperature"
)

// Sensor is a single temperature sensor exposed by the hardware monitoring service
type Sensor struct {
	Name string `json:"name"`
	// Value is nil if the sensor currently has no reading
	Value *float64 `json:"value"`
}

// Source is a long-lived connection to a hardware monitoring service
type Source interface {
	// Sensors returns all temperature sensors currently exposed by the service
	Sensors(ctx context.Context) ([]Sensor, error)
	Close() error
}

// SourceFactory opens a new connection to a hardware monitoring service
type SourceFactory func() (Source, error)

// ConnectionError indicates that the hardware monitoring service is unreachable
type ConnectionError struct {
	Namespace string
	Err       error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("unable to connect to hardware monitoring service '%s': %v", e.Namespace, e.Err)
}

func (e *ConnectionError) Unwrap() error {
	return e.Err
}

// ReadError indicates a failed query on an otherwise live connection
type ReadError struct {
	Err error
}

func (e *ReadError) Error() string {
	return fmt.Sprintf("unable to read temperature sensors: %v", e.Err)
}

func (e *ReadError) Unwrap() error {
	return e.Err
}
