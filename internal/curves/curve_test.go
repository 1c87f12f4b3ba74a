package curves

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
)

func createDefaultCurve() FanCurve {
	return NewFanCurve([]CurvePoint{
		{Temperature: 50, Duty: 20},
		{Temperature: 65, Duty: 30},
		{Temperature: 75, Duty: 60},
		{Temperature: 80, Duty: 100},
	})
}

func TestEvaluate_BelowFirstPoint(t *testing.T) {
	// GIVEN
	curve := createDefaultCurve()

	// WHEN
	result := curve.Evaluate(40)

	// THEN
	assert.Equal(t, 20, result)
}

func TestEvaluate_AboveLastPoint(t *testing.T) {
	// GIVEN
	curve := createDefaultCurve()

	// WHEN
	result := curve.Evaluate(90)

	// THEN
	assert.Equal(t, 100, result)
}

func TestEvaluate_ExactPoint(t *testing.T) {
	// GIVEN
	curve := createDefaultCurve()

	// WHEN
	result := curve.Evaluate(65)

	// THEN
	assert.Equal(t, 30, result)
}

func TestEvaluate_Interpolation(t *testing.T) {
	// GIVEN
	curve := createDefaultCurve()
	expectedInputOutput := map[float64]int{
		50:   20,
		57.5: 25,
		70:   45,
		75:   60,
		77.5: 80,
		80:   100,
	}

	for input, output := range expectedInputOutput {
		// WHEN
		result := curve.Evaluate(input)

		// THEN
		assert.Equal(t, output, result, "temperature %v", input)
	}
}

func TestEvaluate_RoundsHalfAwayFromZero(t *testing.T) {
	// GIVEN
	curve := NewFanCurve([]CurvePoint{
		{Temperature: 0, Duty: 0},
		{Temperature: 10, Duty: 1},
		{Temperature: 20, Duty: 4},
	})

	// WHEN
	lower := curve.Evaluate(5)
	upper := curve.Evaluate(15)

	// THEN
	assert.Equal(t, 1, lower)
	assert.Equal(t, 3, upper)
}

func TestEvaluate_DuplicateTemperatureUsesMaxDuty(t *testing.T) {
	// GIVEN
	curve := NewFanCurve([]CurvePoint{
		{Temperature: 60, Duty: 20},
		{Temperature: 60, Duty: 80},
	})

	// WHEN
	result := curve.Evaluate(60)

	// THEN
	assert.Equal(t, 80, result)
}

func TestEvaluate_DuplicateTemperatureInTheMiddle(t *testing.T) {
	// GIVEN
	curve := NewFanCurve([]CurvePoint{
		{Temperature: 40, Duty: 10},
		{Temperature: 60, Duty: 70},
		{Temperature: 60, Duty: 30},
		{Temperature: 80, Duty: 90},
	})

	// THEN
	assert.Equal(t, 70, curve.Evaluate(60))
	assert.Equal(t, 40, curve.Evaluate(50))
	assert.Equal(t, 80, curve.Evaluate(70))
}

func TestEvaluate_UnsortedPoints(t *testing.T) {
	// GIVEN
	curve := NewFanCurve([]CurvePoint{
		{Temperature: 80, Duty: 100},
		{Temperature: 50, Duty: 20},
		{Temperature: 75, Duty: 60},
		{Temperature: 65, Duty: 30},
	})

	// WHEN
	result := curve.Evaluate(70)

	// THEN
	assert.Equal(t, 45, result)
}

func TestEvaluate_SinglePoint(t *testing.T) {
	// GIVEN
	curve := NewFanCurve([]CurvePoint{
		{Temperature: 60, Duty: 42},
	})

	// THEN
	assert.Equal(t, 42, curve.Evaluate(-10))
	assert.Equal(t, 42, curve.Evaluate(60))
	assert.Equal(t, 42, curve.Evaluate(110))
}

func TestEvaluate_EmptyCurve(t *testing.T) {
	// GIVEN
	curve := FanCurve{}

	// WHEN
	result := curve.Evaluate(60)

	// THEN
	assert.Equal(t, 0, result)
}

func TestNewFanCurve_ClampsDuty(t *testing.T) {
	// GIVEN
	points := []CurvePoint{
		{Temperature: 30, Duty: -20},
		{Temperature: 90, Duty: 150},
	}

	// WHEN
	curve := NewFanCurve(points)

	// THEN
	assert.Equal(t, 0, curve.Points[0].Duty)
	assert.Equal(t, 100, curve.Points[1].Duty)
	assert.Equal(t, -20, points[0].Duty)
}

func TestEvaluate_NeverLeavesDutyRange(t *testing.T) {
	random := rand.New(rand.NewSource(1))

	for i := 0; i < 1000; i++ {
		// GIVEN
		count := 1 + random.Intn(6)
		points := make([]CurvePoint, 0, count)
		for j := 0; j < count; j++ {
			points = append(points, CurvePoint{
				Temperature: float64(random.Intn(140) - 20),
				Duty:        random.Intn(300) - 100,
			})
		}
		curve := NewFanCurve(points)
		temperature := random.Float64()*200 - 50

		// WHEN
		result := curve.Evaluate(temperature)

		// THEN
		assert.GreaterOrEqual(t, result, MinDutyValue)
		assert.LessOrEqual(t, result, MaxDutyValue)
	}
}

func TestEvaluate_IsDeterministic(t *testing.T) {
	// GIVEN
	curve := createDefaultCurve()

	// WHEN
	first := curve.Evaluate(71.3)
	second := curve.Evaluate(71.3)

	// THEN
	assert.Equal(t, first, second)
}

func TestFanCurve_String(t *testing.T) {
	// GIVEN
	curve := NewFanCurve([]CurvePoint{
		{Temperature: 65, Duty: 30},
		{Temperature: 50, Duty: 20},
	})

	// WHEN
	result := curve.String()

	// THEN
	assert.Equal(t, "50°C=20%, 65°C=30%", result)
}

func TestEvaluate_NaNUsesLastPoint(t *testing.T) {
	// GIVEN
	curve := createDefaultCurve()

	// WHEN
	result := curve.Evaluate(math.NaN())

	// THEN
	assert.Equal(t, 100, result)
}
