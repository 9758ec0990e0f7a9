package nn

import "math"

// Sigmoid is the logistic activation, clamped to [0, 1] so rounding can never
// push an activation outside the unit interval.
func Sigmoid(x float64) float64 {
	return Sat(1/(1+math.Exp(-x)), 1, 0)
}

// SigmoidSlope is the sigmoid derivative expressed through its own output.
func SigmoidSlope(activation float64) float64 {
	return activation * (1 - activation)
}

// Sat clamps value to [min, max].
func Sat(value, max, min float64) float64 {
	if value > max {
		return max
	}
	if value < min {
		return min
	}
	return value
}

func inUnitInterval(value float64) bool {
	return value >= 0 && value <= 1
}
