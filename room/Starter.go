package room

import (
	"golang.org/x/exp/rand"

	"gonum.org/v1/gonum/spatial/r1"
	"gonum.org/v1/gonum/stat/distmv"
)

// Starter provides starting conditions for the plant: one value per
// factor, illuminance first.
type Starter interface {
	Start() []float64
}

// UniformStarter samples starting conditions uniformly from per-factor
// intervals, randomizing where each training run begins.
type UniformStarter struct {
	factors int
	dist    *distmv.Uniform
}

// NewUniformStarter creates a UniformStarter drawing from bounds, one
// interval per factor, with a source seeded by seed.
func NewUniformStarter(bounds []r1.Interval, seed uint64) UniformStarter {
	source := rand.NewSource(seed)
	return UniformStarter{
		factors: len(bounds),
		dist:    distmv.NewUniform(bounds, source),
	}
}

// Start draws one set of starting conditions.
func (u UniformStarter) Start() []float64 {
	return u.dist.Rand(nil)
}

// FixedStarter always starts the plant at the same conditions, for
// reproducible runs.
type FixedStarter struct {
	values []float64
}

// NewFixedStarter creates a FixedStarter returning the given values.
func NewFixedStarter(values ...float64) FixedStarter {
	start := make([]float64, len(values))
	copy(start, values)
	return FixedStarter{values: start}
}

// Start returns a copy of the fixed starting conditions.
func (f FixedStarter) Start() []float64 {
	out := make([]float64, len(f.values))
	copy(out, f.values)
	return out
}
