// Package floatutils provides small float helpers shared across the
// controller.
package floatutils

import (
	"math"

	"gonum.org/v1/gonum/spatial/r1"
)

// Clip limits value to the range [min, max].
func Clip(value, min, max float64) float64 {
	return math.Max(math.Min(value, max), min)
}

// ClipInterval limits value to an r1.Interval.
func ClipInterval(value float64, interval r1.Interval) float64 {
	return Clip(value, interval.Min, interval.Max)
}

// Max returns the largest of the given floats.
func Max(floats ...float64) float64 {
	max := floats[0]
	for _, v := range floats {
		if v > max {
			max = v
		}
	}
	return max
}
