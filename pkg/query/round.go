package query

import (
	"math"

	"golang.org/x/exp/constraints"
)

// Round rounds a value for display, keeping fewer decimals the larger it
// is: 6 below 1, then one fewer per power of ten down to 1 decimal from
// 10000 up. Infinities and NaN are returned unchanged
func Round[T constraints.Float](value T) float64 {
	v := float64(value)
	var scale float64
	switch {
	case v < 1:
		scale = 1e6
	case v < 10:
		scale = 1e5
	case v < 100:
		scale = 1e4
	case v < 1000:
		scale = 1e3
	case v < 10000:
		scale = 1e2
	default:
		scale = 1e1
	}
	return math.Round(v*scale) / scale
}

// RoundAll rounds every value for display
func RoundAll[T constraints.Float](values []T) []float64 {
	out := make([]float64, len(values))
	for i, v := range values {
		out[i] = Round(v)
	}
	return out
}

// truncateRound drops weights too small to display and rounds the rest
func truncateRound(w []float32) []float64 {
	out := make([]float64, len(w))
	for i, v := range w {
		if v >= weightFloor {
			out[i] = Round(v)
		}
	}
	return out
}

// eqr returns the equity-to-reward ratio ev / (pot * eq). Below 5e-7
// equity the ratio is undefined and the result is ev / 0 (an infinity, or
// NaN for zero ev)
func eqr(ev, eq, pot float64) float64 {
	if eq < 5e-7 {
		switch {
		case ev > 0:
			return math.Inf(1)
		case ev < 0:
			return math.Inf(-1)
		default:
			return math.NaN()
		}
	}
	return Round(ev / (pot * eq))
}
