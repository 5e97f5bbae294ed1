package grading

import "math"

// Round1 rounds v to one decimal, half up: 2.25 -> 2.3, -2.25 -> -2.2.
// It is the only rounding rule applied to evaluation results; values are
// stored and displayed exactly as it returns them.
func Round1(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) || math.Abs(v) >= 1e15 {
		return v
	}
	return math.Floor(v*10+0.5) / 10
}
