// Package discretize converts continuous sensor observations into
// finite state indices for tabular learning.
package discretize

import "fmt"

// Grid partitions the real line into contiguous bins using a fixed,
// strictly increasing sequence of thresholds. A grid with K thresholds
// has K+1 bins: values less than or equal to the first threshold fall
// into bin 0, values greater than the last threshold fall into bin K.
// Boundary values belong to the lower bin.
type Grid struct {
	thresholds []float64
}

// NewGrid creates a Grid from the given thresholds. The thresholds
// must be strictly increasing and there must be at least one, so that
// the resulting grid has at least two bins.
func NewGrid(thresholds ...float64) (Grid, error) {
	if len(thresholds) == 0 {
		return Grid{}, fmt.Errorf("newGrid: no thresholds given")
	}
	for i := 1; i < len(thresholds); i++ {
		if thresholds[i] <= thresholds[i-1] {
			return Grid{}, fmt.Errorf("newGrid: thresholds must be "+
				"strictly increasing, got %v after %v", thresholds[i],
				thresholds[i-1])
		}
	}

	grid := Grid{thresholds: make([]float64, len(thresholds))}
	copy(grid.thresholds, thresholds)
	return grid, nil
}

// Bins returns the number of bins the grid partitions the real line
// into.
func (g Grid) Bins() int {
	return len(g.thresholds) + 1
}

// Index returns the bin that value falls into. Every real value maps
// to exactly one bin in [0, Bins()), so implausible sensor readings
// still resolve to a state; substituting a fallback for failed reads
// is the sensor collaborator's job, not the discretizer's.
func (g Grid) Index(value float64) int {
	for i, threshold := range g.thresholds {
		if value <= threshold {
			return i
		}
	}
	return len(g.thresholds)
}

// Multi composes one or more independent Grids into a single state
// index. For factors a and b the composite index is
// bin_a * Bins_b + bin_b, generalized row-major for more factors.
// Observers that render per-factor breakdowns invert the index with
// Decompose.
type Multi struct {
	factors []Grid
	states  int
}

// NewMulti creates a Multi from the given factor grids.
func NewMulti(factors ...Grid) (Multi, error) {
	if len(factors) == 0 {
		return Multi{}, fmt.Errorf("newMulti: no factor grids given")
	}

	states := 1
	for _, g := range factors {
		states *= g.Bins()
	}
	return Multi{factors: factors, states: states}, nil
}

// Factors returns the number of factor grids in the composite.
func (m Multi) Factors() int {
	return len(m.factors)
}

// Factor returns the grid of factor i.
func (m Multi) Factor(i int) Grid {
	return m.factors[i]
}

// States returns the total number of composite states, the product of
// the per-factor bin counts.
func (m Multi) States() int {
	return m.states
}

// Index maps one observation per factor to the composite state index.
// The observation must have exactly one value per factor.
func (m Multi) Index(obs []float64) int {
	if len(obs) != len(m.factors) {
		panic(fmt.Sprintf("index: got %d observations for %d factors",
			len(obs), len(m.factors)))
	}

	index := 0
	for i, g := range m.factors {
		index = index*g.Bins() + g.Index(obs[i])
	}
	return index
}

// Decompose inverts Index, returning the per-factor bin for a
// composite state index.
func (m Multi) Decompose(state int) []int {
	if state < 0 || state >= m.states {
		panic(fmt.Sprintf("decompose: state %d out of range [0, %d)",
			state, m.states))
	}

	bins := make([]int, len(m.factors))
	for i := len(m.factors) - 1; i >= 0; i-- {
		n := m.factors[i].Bins()
		bins[i] = state % n
		state /= n
	}
	return bins
}
