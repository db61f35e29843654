// Package config loads the demo's boot configuration: compiled
// defaults overlaid by an optional YAML file. Component configs embed
// here so one file drives the whole stack; flags override individual
// values in main.
package config

import (
	"fmt"
	"os"
	"time"

	"gonum.org/v1/gonum/spatial/r1"
	"gopkg.in/yaml.v3"

	"github.com/accu-rl/accu/agent/policy"
	"github.com/accu-rl/accu/agent/qlearning"
	"github.com/accu-rl/accu/room"
)

// Duration wraps time.Duration so YAML values like "500ms" parse.
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("unmarshalyaml: %v", err)
	}
	*d = Duration(parsed)
	return nil
}

func (d Duration) String() string {
	return time.Duration(d).String()
}

// Factor configures one observed factor: the discretizer thresholds
// and the reward set-point with its error divisor.
type Factor struct {
	Thresholds []float64 `yaml:"thresholds"`
	Target     float64   `yaml:"target"`
	Norm       float64   `yaml:"norm"`
}

func (f Factor) validate() error {
	if len(f.Thresholds) == 0 {
		return fmt.Errorf("no thresholds given")
	}
	if f.Norm <= 0 {
		return fmt.Errorf("norm must be positive, got %v", f.Norm)
	}
	return nil
}

// Reward holds the comfort/energy weighting knobs.
type Reward struct {
	MaxDistance   float64 `yaml:"max_distance"`
	IdleBonus     float64 `yaml:"idle_bonus"`
	ActivePenalty float64 `yaml:"active_penalty"`
}

// Shaping toggles the comfort-zone shaping layer and widens the reward
// clamp to make room for its terms.
type Shaping struct {
	Enabled            bool `yaml:"enabled"`
	room.ShapingConfig `yaml:",inline"`
	Bounds             r1.Interval `yaml:"bounds"`
}

// Config is the demo's complete boot configuration.
type Config struct {
	// Seed feeds every random stream; consumers derive distinct
	// sub-seeds from it.
	Seed uint64 `yaml:"seed"`

	// Episodes is how many control ticks the demo runs.
	Episodes int `yaml:"episodes"`

	// Period is the controller tick interval.
	Period Duration `yaml:"period"`

	// HistoryCapacity bounds the in-memory tick history.
	HistoryCapacity int `yaml:"history_capacity"`

	// PrintEvery dumps the value table every that many episodes.
	// Zero disables the dumps.
	PrintEvery int `yaml:"print_every"`

	// Lux and Temperature configure the two observed factors.
	Lux         Factor `yaml:"lux"`
	Temperature Factor `yaml:"temperature"`

	Reward  Reward  `yaml:"reward"`
	Shaping Shaping `yaml:"shaping"`

	// Learning configures the agent. States and Actions are derived
	// from the factor grids and the action enumeration at boot;
	// values from the file are overwritten.
	Learning qlearning.Config `yaml:"learning"`

	// Room configures the simulated plant.
	Room room.Config `yaml:"room"`

	// StartLux and StartTemp bound the random initial room state.
	StartLux  r1.Interval `yaml:"start_lux"`
	StartTemp r1.Interval `yaml:"start_temp"`
}

// Default returns the shipped demo configuration: the 3x3 climate grid
// with shaping enabled and a decaying exploration schedule.
func Default() *Config {
	return &Config{
		Seed:            192382,
		Episodes:        500,
		Period:          Duration(500 * time.Millisecond),
		HistoryCapacity: 5000,
		PrintEvery:      50,
		Lux: Factor{
			Thresholds: []float64{100, 500},
			Target:     300,
			Norm:       100,
		},
		Temperature: Factor{
			Thresholds: []float64{18, 24},
			Target:     21,
			Norm:       1,
		},
		Reward: Reward{
			MaxDistance:   10,
			IdleBonus:     0.05,
			ActivePenalty: -0.2,
		},
		Shaping: Shaping{
			Enabled:       true,
			ShapingConfig: room.DefaultShaping,
			Bounds:        room.ShapedBounds,
		},
		Learning: qlearning.Config{
			Gamma:      0.85,
			Alpha:      0.05,
			AlphaStart: 25,
			CrucialTD:  1.0,
			Epsilon: policy.ScheduleConfig{
				Start: 1.0,
				Floor: 0.05,
				Decay: 0.99,
			},
			// The comfort-zone state of the default grids, holding
			// both factors in their middle bins.
			Preseed: []qlearning.Preseed{
				{State: 4, Action: room.Idle, Value: 10},
			},
		},
		Room:      room.Config{OutsideTemp: 20},
		StartLux:  r1.Interval{Min: 60, Max: 120},
		StartTemp: r1.Interval{Min: 14, Max: 18},
	}
}

// Load returns the compiled defaults overlaid with the YAML file at
// path. Keys absent from the file keep their default values; an empty
// path returns the defaults unchanged.
func Load(path string) (*Config, error) {
	config := Default()
	if path == "" {
		return config, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("load: %v", err)
	}
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("load: %v", err)
	}
	return config, nil
}

// Validate checks the fields the demo consumes directly, naming the
// offending field. Component configs embedded here are deep-validated
// by their constructors at build time.
func (c *Config) Validate() error {
	if c.Episodes < 1 {
		return fmt.Errorf("validate: episodes must be positive, got %d",
			c.Episodes)
	}
	if c.Period <= 0 {
		return fmt.Errorf("validate: period must be positive, got %v",
			c.Period)
	}
	if c.HistoryCapacity < 1 {
		return fmt.Errorf("validate: history_capacity must be positive, "+
			"got %d", c.HistoryCapacity)
	}
	if c.PrintEvery < 0 {
		return fmt.Errorf("validate: print_every must not be negative, "+
			"got %d", c.PrintEvery)
	}
	if err := c.Lux.validate(); err != nil {
		return fmt.Errorf("validate: lux: %v", err)
	}
	if err := c.Temperature.validate(); err != nil {
		return fmt.Errorf("validate: temperature: %v", err)
	}
	if c.Reward.MaxDistance <= 0 {
		return fmt.Errorf("validate: reward: max_distance must be "+
			"positive, got %v", c.Reward.MaxDistance)
	}
	if c.Shaping.Enabled {
		if err := c.Shaping.ShapingConfig.Validate(); err != nil {
			return fmt.Errorf("validate: shaping: %v", err)
		}
		if c.Shaping.Bounds.Min >= c.Shaping.Bounds.Max {
			return fmt.Errorf("validate: shaping: bounds [%v, %v] are "+
				"empty", c.Shaping.Bounds.Min, c.Shaping.Bounds.Max)
		}
	}
	if err := c.Learning.Epsilon.Validate(); err != nil {
		return fmt.Errorf("validate: learning: epsilon: %v", err)
	}
	if c.StartLux.Min >= c.StartLux.Max {
		return fmt.Errorf("validate: start_lux [%v, %v] is empty",
			c.StartLux.Min, c.StartLux.Max)
	}
	if c.StartTemp.Min >= c.StartTemp.Max {
		return fmt.Errorf("validate: start_temp [%v, %v] is empty",
			c.StartTemp.Min, c.StartTemp.Max)
	}
	return nil
}
