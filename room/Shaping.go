package room

import (
	"fmt"

	"gonum.org/v1/gonum/spatial/r1"

	"github.com/accu-rl/accu/agent"
	"github.com/accu-rl/accu/discretize"
	"github.com/accu-rl/accu/reward"
)

// ShapingConfig weights the comfort-zone enforcement term layered on
// the base comfort reward.
type ShapingConfig struct {
	// ZoneIdleBonus is added when the previous action was Idle and the
	// observation sits in the comfort-zone state.
	ZoneIdleBonus float64 `yaml:"zone_idle_bonus"`

	// ZoneActivePenalty is added when any active action was taken in
	// the comfort-zone state. It must not be positive.
	ZoneActivePenalty float64 `yaml:"zone_active_penalty"`

	// WrongWayPenalty is added when the previous action pushed a
	// factor further out of its range, e.g. dimming an already dark
	// room. It must not be positive.
	WrongWayPenalty float64 `yaml:"wrong_way_penalty"`
}

// DefaultShaping holds the tuned enforcement weights: a bonus for
// conserving energy inside the comfort zone large enough to dominate
// the base reward, an overwhelming penalty for wasting energy there,
// and a mild penalty for driving a factor the wrong way.
var DefaultShaping = ShapingConfig{
	ZoneIdleBonus:     5.0,
	ZoneActivePenalty: -3.0,
	WrongWayPenalty:   -0.3,
}

// ShapedBounds is the reward clamp range wide enough to pass the
// shaping term through, replacing the unshaped [-1, 1] default.
var ShapedBounds = r1.Interval{Min: -3, Max: 6}

// Validate ensures the shaping weights point the right way.
func (c ShapingConfig) Validate() error {
	if c.ZoneIdleBonus < 0 {
		return fmt.Errorf("validate: zone idle bonus must be "+
			"non-negative, got %v", c.ZoneIdleBonus)
	}
	if c.ZoneActivePenalty > 0 {
		return fmt.Errorf("validate: zone active penalty must not be "+
			"positive, got %v", c.ZoneActivePenalty)
	}
	if c.WrongWayPenalty > 0 {
		return fmt.Errorf("validate: wrong way penalty must not be "+
			"positive, got %v", c.WrongWayPenalty)
	}
	return nil
}

// ComfortZoneShaping builds the shaping term for a light and
// temperature grid: inside the comfort-zone state, idling earns the
// zone bonus and any active action the zone penalty; outside it,
// actions that push a factor further out of range (dimming a dark
// room, brightening a bright one, cooling a cold one, heating a hot
// one) earn the wrong-way penalty. The first tick, with no previous
// action, is never shaped.
//
// The grid's first factor must be the illuminance and its second the
// temperature, matching the canonical action enumeration.
func ComfortZoneShaping(disc discretize.Multi, zone int,
	config ShapingConfig) (reward.ShapeFunc, error) {

	if disc.Factors() != 2 {
		return nil, fmt.Errorf("comfortZoneShaping: need a light and a "+
			"temperature factor, got %d factors", disc.Factors())
	}
	if zone < 0 || zone >= disc.States() {
		return nil, fmt.Errorf("comfortZoneShaping: zone state %d "+
			"outside [0, %d)", zone, disc.States())
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("comfortZoneShaping: %v", err)
	}

	darkest, brightest := 0, disc.Factor(0).Bins()-1
	coldest, hottest := 0, disc.Factor(1).Bins()-1

	return func(obs []float64, prevAction int) float64 {
		if prevAction == agent.None {
			return 0
		}

		state := disc.Index(obs)
		if state == zone {
			if prevAction == Idle {
				return config.ZoneIdleBonus
			}
			return config.ZoneActivePenalty
		}

		bins := disc.Decompose(state)
		switch prevAction {
		case LightDown:
			if bins[0] == darkest {
				return config.WrongWayPenalty
			}
		case LightUp:
			if bins[0] == brightest {
				return config.WrongWayPenalty
			}
		case TempDown:
			if bins[1] == coldest {
				return config.WrongWayPenalty
			}
		case TempUp:
			if bins[1] == hottest {
				return config.WrongWayPenalty
			}
		}
		return 0
	}, nil
}
