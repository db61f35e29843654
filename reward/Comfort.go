// Package reward computes the scalar learning signal from sensor
// observations and the energy cost of the previous actuator command.
package reward

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/spatial/r1"

	"github.com/accu-rl/accu/agent"
	"github.com/accu-rl/accu/utils/floatutils"
)

// DefaultBounds is the clamp range of the unshaped comfort reward.
var DefaultBounds = r1.Interval{Min: -1, Max: 1}

// ShapeFunc is an optional shaping term added to the base reward
// before clamping. Implementations receive the raw observation and
// the previous action.
type ShapeFunc func(obs []float64, prevAction int) float64

// Config parameterizes a Comfort model. Targets and Norms are
// per-factor and must have equal length: factor i contributes the
// normalized error |obs[i]-Targets[i]| / Norms[i] to the distance.
type Config struct {
	// Targets holds the set-point per factor.
	Targets []float64

	// Norms holds the error divisor per factor, bringing factors with
	// different physical units onto a comparable scale.
	Norms []float64

	// MaxDistance scales the normalized distance into the reward.
	// Smaller values sharpen the reward curve around the target.
	MaxDistance float64

	// IdleAction is the index of the action with no energy cost.
	IdleAction int

	// IdleBonus is added when the previous action was IdleAction.
	IdleBonus float64

	// ActivePenalty is added when the previous action was any other
	// action. It must not be positive.
	ActivePenalty float64

	// Bounds clamps the final reward. The zero value selects
	// DefaultBounds.
	Bounds r1.Interval

	// Shape, when non-nil, contributes an extra term before clamping.
	Shape ShapeFunc
}

// Validate ensures the Config describes a usable reward model.
func (c Config) Validate() error {
	if len(c.Targets) == 0 {
		return fmt.Errorf("validate: no targets given")
	}
	if len(c.Norms) != len(c.Targets) {
		return fmt.Errorf("validate: %d norms for %d targets",
			len(c.Norms), len(c.Targets))
	}
	for i, norm := range c.Norms {
		if norm <= 0 {
			return fmt.Errorf("validate: norm %d must be positive, got %v",
				i, norm)
		}
	}
	if c.MaxDistance <= 0 {
		return fmt.Errorf("validate: max distance must be positive, got %v",
			c.MaxDistance)
	}
	if c.IdleAction < 0 {
		return fmt.Errorf("validate: idle action must be non-negative, "+
			"got %d", c.IdleAction)
	}
	if c.IdleBonus < 0 {
		return fmt.Errorf("validate: idle bonus must be non-negative, "+
			"got %v", c.IdleBonus)
	}
	if c.ActivePenalty > 0 {
		return fmt.Errorf("validate: active penalty must not be positive, "+
			"got %v", c.ActivePenalty)
	}
	bounds := c.Bounds
	if bounds == (r1.Interval{}) {
		bounds = DefaultBounds
	}
	if bounds.Min >= bounds.Max {
		return fmt.Errorf("validate: bounds [%v, %v] are empty",
			bounds.Min, bounds.Max)
	}
	return nil
}

// Comfort scores how close the observation sits to the target
// set-points, minus the energy cost of the previous action. The base
// term is 1 - distance/MaxDistance where distance is the Euclidean
// norm of the per-factor normalized errors, so a perfect reading
// scores 1 before the energy term.
//
// The energy term uses the previous action on purpose: the reward
// computed at tick t is attributed to the Q(s, a) pair taken at t-1,
// which is the pair the learner updates with it. The idle bonus versus
// active penalty creates a deliberate trade-off between holding the
// target under drift (costly corrections) and saving energy (idling
// while the reading wanders), and the learned preference between the
// two is a property of these weights.
type Comfort struct {
	targets       []float64
	norms         []float64
	maxDistance   float64
	idleAction    int
	idleBonus     float64
	activePenalty float64
	bounds        r1.Interval
	shape         ShapeFunc
}

// New creates a Comfort model from a validated Config.
func New(config Config) (*Comfort, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("new: %v", err)
	}

	bounds := config.Bounds
	if bounds == (r1.Interval{}) {
		bounds = DefaultBounds
	}

	targets := make([]float64, len(config.Targets))
	copy(targets, config.Targets)
	norms := make([]float64, len(config.Norms))
	copy(norms, config.Norms)

	return &Comfort{
		targets:       targets,
		norms:         norms,
		maxDistance:   config.MaxDistance,
		idleAction:    config.IdleAction,
		idleBonus:     config.IdleBonus,
		activePenalty: config.ActivePenalty,
		bounds:        bounds,
		shape:         config.Shape,
	}, nil
}

// Factors returns the number of observation factors the model scores.
func (c *Comfort) Factors() int {
	return len(c.targets)
}

// Target returns the set-point of factor i, which is also the
// fallback observation substituted for a failed sensor read.
func (c *Comfort) Target(i int) float64 {
	return c.targets[i]
}

// Reward scores an observation given the previous action. prevAction
// is agent.None on the very first tick, in which case the energy term
// is zero. The result is clamped to the configured bounds.
func (c *Comfort) Reward(obs []float64, prevAction int) float64 {
	if len(obs) != len(c.targets) {
		panic(fmt.Sprintf("reward: got %d observations for %d factors",
			len(obs), len(c.targets)))
	}

	errs := make([]float64, len(obs))
	for i := range obs {
		errs[i] = math.Abs(obs[i]-c.targets[i]) / c.norms[i]
	}
	distance := floats.Norm(errs, 2)

	r := 1 - distance/c.maxDistance
	switch {
	case prevAction == agent.None:
		// First tick: no action has been taken yet.
	case prevAction == c.idleAction:
		r += c.idleBonus
	default:
		r += c.activePenalty
	}

	if c.shape != nil {
		r += c.shape(obs, prevAction)
	}

	return floatutils.ClipInterval(r, c.bounds)
}
