package configuration

import (
	"github.com/markusressel/fan2bmc/internal/curves"
	"github.com/markusressel/fan2bmc/internal/fans"
)

type CurvePointConfig struct {
	// Temperature in degree celsius
	Temperature float64 `json:"temperature" yaml:"temperature"`
	// Duty cycle in percent
	Duty int `json:"duty" yaml:"duty"`
}

// FanCurve builds the fan curve from the configured points
func (c Configuration) FanCurve() curves.FanCurve {
	points := make([]curves.CurvePoint, 0, len(c.Curve))
	for _, point := range c.Curve {
		points = append(points, curves.CurvePoint{
			Temperature: point.Temperature,
			Duty:        point.Duty,
		})
	}
	return curves.NewFanCurve(points)
}

// ZoneMapping returns the configured BMC zone byte per fan zone
func (c Configuration) ZoneMapping() fans.ZoneMapping {
	return fans.ZoneMapping{
		fans.ZoneCpu:        uint8(c.Zones.Cpu),
		fans.ZonePeripheral: uint8(c.Zones.Peripheral),
	}
}
