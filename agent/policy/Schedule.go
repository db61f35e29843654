package policy

import (
	"fmt"

	"github.com/accu-rl/accu/utils/floatutils"
)

// ScheduleConfig parameterizes an exploration schedule. Start is the
// boot-time exploration probability, Decay the multiplicative factor
// applied once per completed learner update, and Floor the value the
// schedule never drops below. Decay = 1 keeps epsilon constant.
type ScheduleConfig struct {
	Start float64 `yaml:"start"`
	Floor float64 `yaml:"floor"`
	Decay float64 `yaml:"decay"`
}

// Validate ensures the schedule parameters are usable probabilities.
func (c ScheduleConfig) Validate() error {
	if c.Start < 0 || c.Start > 1 {
		return fmt.Errorf("validate: start %v outside [0, 1]", c.Start)
	}
	if c.Floor < 0 {
		return fmt.Errorf("validate: floor %v negative", c.Floor)
	}
	if c.Floor > c.Start {
		return fmt.Errorf("validate: floor %v above start %v", c.Floor,
			c.Start)
	}
	if c.Decay <= 0 || c.Decay > 1 {
		return fmt.Errorf("validate: decay %v outside (0, 1]", c.Decay)
	}
	return nil
}

// Schedule is the decaying exploration probability. It starts at the
// configured ceiling and shrinks multiplicatively toward the floor; it
// never increases. The learner calls Decay exactly once per completed
// update, so ticks that perform no update leave it untouched.
//
// A Schedule is shared by pointer between the learner that decays it
// and the policy that reads it; the controller serializes both.
type Schedule struct {
	floor   float64
	decay   float64
	current float64
}

// NewSchedule creates a Schedule from a validated config.
func NewSchedule(config ScheduleConfig) (*Schedule, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("newSchedule: %v", err)
	}
	return &Schedule{
		floor:   config.Floor,
		decay:   config.Decay,
		current: config.Start,
	}, nil
}

// Current returns the exploration probability to use now.
func (s *Schedule) Current() float64 {
	return s.current
}

// Decay shrinks the exploration probability by the configured factor,
// stopping at the floor.
func (s *Schedule) Decay() {
	s.current = floatutils.Max(s.floor, s.current*s.decay)
}
