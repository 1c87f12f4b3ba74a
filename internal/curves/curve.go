package curves

import (
	"fmt"
	"math"
	"strings"

	"github.com/markusressel/fan2bmc/internal/util"
	"golang.org/x/exp/slices"
)

const (
	MinDutyValue = 0
	MaxDutyValue = 100
)

type CurvePoint struct {
	// Temperature in degree celsius
	Temperature float64 `json:"temperature"`
	// Duty cycle in percent [0..100]
	Duty int `json:"duty"`
}

// FanCurve maps a temperature to a fan duty cycle by linear interpolation
// between its points.
type FanCurve struct {
	Points []CurvePoint `json:"points"`
}

// NewFanCurve creates a curve from the given points.
// Duty values are clamped to [0..100], the point order does not matter.
func NewFanCurve(points []CurvePoint) FanCurve {
	result := make([]CurvePoint, 0, len(points))
	for _, p := range points {
		result = append(result, CurvePoint{
			Temperature: p.Temperature,
			Duty:        util.Clamp(p.Duty, MinDutyValue, MaxDutyValue),
		})
	}
	return FanCurve{Points: result}
}

// DefaultFanCurve is 50/65/75/80°C -> 20/30/60/100%
func DefaultFanCurve() FanCurve {
	return NewFanCurve([]CurvePoint{
		{Temperature: 50, Duty: 20},
		{Temperature: 65, Duty: 30},
		{Temperature: 75, Duty: 60},
		{Temperature: 80, Duty: 100},
	})
}

// Steps returns the points of this curve sorted by temperature.
// Points sharing the same temperature are merged, keeping the highest duty.
func (c FanCurve) Steps() []CurvePoint {
	sorted := slices.Clone(c.Points)
	slices.SortStableFunc(sorted, func(a, b CurvePoint) int {
		switch {
		case a.Temperature < b.Temperature:
			return -1
		case a.Temperature > b.Temperature:
			return 1
		}
		return 0
	})

	steps := make([]CurvePoint, 0, len(sorted))
	for _, p := range sorted {
		last := len(steps) - 1
		if last >= 0 && steps[last].Temperature == p.Temperature {
			steps[last].Duty = max(steps[last].Duty, p.Duty)
			continue
		}
		steps = append(steps, p)
	}
	return steps
}

// Evaluate returns the duty cycle in [0..100] for the given temperature.
// Below the first and above the last point the duty of that point is used,
// NaN yields the duty of the last point.
func (c FanCurve) Evaluate(temperature float64) int {
	steps := c.Steps()
	if len(steps) <= 0 {
		return MinDutyValue
	}

	first := steps[0]
	last := steps[len(steps)-1]
	if math.IsNaN(temperature) {
		return clampDuty(last.Duty)
	}
	if temperature <= first.Temperature {
		return clampDuty(first.Duty)
	}
	if temperature >= last.Temperature {
		return clampDuty(last.Duty)
	}

	for i := 0; i < len(steps)-1; i++ {
		current := steps[i]
		next := steps[i+1]
		if temperature < current.Temperature || temperature > next.Temperature {
			continue
		}

		ratio := util.Ratio(temperature, current.Temperature, next.Temperature)
		interpolation := float64(current.Duty) + ratio*float64(next.Duty-current.Duty)
		return clampDuty(int(math.Round(interpolation)))
	}

	return clampDuty(last.Duty)
}

func (c FanCurve) String() string {
	parts := make([]string, 0, len(c.Points))
	for _, p := range c.Steps() {
		parts = append(parts, fmt.Sprintf("%g°C=%d%%", p.Temperature, p.Duty))
	}
	return strings.Join(parts, ", ")
}

func clampDuty(duty int) int {
	return util.Clamp(duty, MinDutyValue, MaxDutyValue)
}
