package qlearning

import (
	"fmt"

	"github.com/accu-rl/accu/agent/policy"
)

// DefaultCrucialTD is the |TD error| threshold above which an update
// is tagged crucial when the config leaves it zero.
const DefaultCrucialTD = 1.0

// Preseed sets one table cell before learning starts, e.g. to bias
// the boot policy toward a known-good action.
type Preseed struct {
	State  int     `yaml:"state"`
	Action int     `yaml:"action"`
	Value  float64 `yaml:"value"`
}

// Config represents a configuration for a tabular Q-learning agent.
type Config struct {
	// States and Actions size the value table.
	States  int `yaml:"states"`
	Actions int `yaml:"actions"`

	// Gamma discounts future value in the TD target.
	Gamma float64 `yaml:"gamma"`

	// Alpha is the fixed learning rate. Ignored when AdaptiveAlpha
	// is set.
	Alpha float64 `yaml:"alpha"`

	// AdaptiveAlpha derives the rate from per-pair visitation counts
	// instead of Alpha.
	AdaptiveAlpha bool `yaml:"adaptive_alpha"`

	// AlphaStart tunes how quickly the adaptive rate shrinks: the
	// rate after N visits is AlphaStart / (AlphaStart + N).
	AlphaStart float64 `yaml:"alpha_start"`

	// CrucialTD tags updates whose |TD error| exceeds it. Zero
	// selects DefaultCrucialTD.
	CrucialTD float64 `yaml:"crucial_td"`

	// Epsilon configures the exploration schedule.
	Epsilon policy.ScheduleConfig `yaml:"epsilon"`

	// Preseed holds table cells to set before learning starts.
	Preseed []Preseed `yaml:"preseed"`
}

// Validate ensures that the Config is valid. An invalid config is
// fatal at construction: the controller refuses to start rather than
// run with an empty table or a divergent update rule.
func (c Config) Validate() error {
	if c.States < 1 {
		return fmt.Errorf("validate: states must be positive, got %d",
			c.States)
	}
	if c.Actions < 1 {
		return fmt.Errorf("validate: actions must be positive, got %d",
			c.Actions)
	}
	if c.Gamma < 0 || c.Gamma >= 1 {
		return fmt.Errorf("validate: gamma %v outside [0, 1)", c.Gamma)
	}
	if c.AdaptiveAlpha {
		if c.AlphaStart <= 0 {
			return fmt.Errorf("validate: alpha start must be positive, "+
				"got %v", c.AlphaStart)
		}
	} else if c.Alpha <= 0 || c.Alpha > 1 {
		return fmt.Errorf("validate: alpha %v outside (0, 1]", c.Alpha)
	}
	if c.CrucialTD < 0 {
		return fmt.Errorf("validate: crucial TD threshold %v negative",
			c.CrucialTD)
	}
	if err := c.Epsilon.Validate(); err != nil {
		return fmt.Errorf("validate: epsilon: %v", err)
	}
	for i, p := range c.Preseed {
		if p.State < 0 || p.State >= c.States {
			return fmt.Errorf("validate: preseed %d state %d outside "+
				"[0, %d)", i, p.State, c.States)
		}
		if p.Action < 0 || p.Action >= c.Actions {
			return fmt.Errorf("validate: preseed %d action %d outside "+
				"[0, %d)", i, p.Action, c.Actions)
		}
	}
	return nil
}

func (c Config) crucialThreshold() float64 {
	if c.CrucialTD == 0 {
		return DefaultCrucialTD
	}
	return c.CrucialTD
}
