// Package room simulates the climate plant the control loop drives: a
// single room whose illuminance and temperature react to actuator
// commands and drift naturally between ticks. It provides the sensor
// and actuator collaborators the controller consumes, so the full loop
// runs in process exactly as it would against hardware.
package room

import (
	"fmt"

	"golang.org/x/exp/rand"

	"gonum.org/v1/gonum/spatial/r1"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/accu-rl/accu/utils/floatutils"
)

// The canonical actuator command enumeration. Action indices are the
// contract between the value table, the policy and the plant.
const (
	LightUp = iota
	LightDown
	TempUp
	TempDown
	Idle

	NumActions
)

// ActionNames holds the display name of each action, indexed by the
// enumeration above.
var ActionNames = []string{"LIGHT+", "LIGHT-", "TEMP+", "TEMP-", "IDLE"}

// ActionName returns the display name of an action, or a generic
// "A<i>" for indices outside the canonical enumeration.
func ActionName(action int) string {
	if action >= 0 && action < len(ActionNames) {
		return ActionNames[action]
	}
	return fmt.Sprintf("A%d", action)
}

const (
	// LightStep is the mean illuminance change of one light action, in
	// lux. The realized change is scaled by uniform noise in
	// [0.8, 1.2].
	LightStep float64 = 100.0

	// TempStep is the nominal temperature change of one heating or
	// cooling action, in degrees Celsius. The realized change
	// overshoots by uniform noise in [0.005, 0.05].
	TempStep float64 = 1.0

	// TempDriftRate is the fraction of the gap to the outside
	// temperature closed per tick (heat loss or gain).
	TempDriftRate float64 = 0.05

	// LuxDecay is the natural illuminance lost per tick as light
	// sources fade, in lux, scaled by uniform noise in [0.9, 1.1]. The
	// agent must learn to overcome this drift.
	LuxDecay float64 = 5.0

	// NaturalLuxBase is the background light level the room never
	// drops below.
	NaturalLuxBase float64 = 50.0
)

// Default physical ranges the plant clamps to after each step.
var (
	DefaultLuxBounds  = r1.Interval{Min: NaturalLuxBase, Max: 5000}
	DefaultTempBounds = r1.Interval{Min: -10, Max: 45}
)

// Config holds the physical parameters of a simulated room.
type Config struct {
	// OutsideTemp is the temperature the room drifts toward when the
	// heating and cooling actuators are idle.
	OutsideTemp float64 `yaml:"outside_temp"`

	// LuxBounds and TempBounds are the physical ranges the plant
	// clamps to after each step. Zero values select the defaults.
	LuxBounds  r1.Interval `yaml:"lux_bounds"`
	TempBounds r1.Interval `yaml:"temp_bounds"`
}

// Validate ensures the Config describes a physically usable room.
func (c Config) Validate() error {
	lux, temp := c.bounds()
	if lux.Min >= lux.Max {
		return fmt.Errorf("validate: lux bounds [%v, %v] are empty",
			lux.Min, lux.Max)
	}
	if temp.Min >= temp.Max {
		return fmt.Errorf("validate: temp bounds [%v, %v] are empty",
			temp.Min, temp.Max)
	}
	if c.OutsideTemp < temp.Min || c.OutsideTemp > temp.Max {
		return fmt.Errorf("validate: outside temperature %v outside "+
			"temp bounds [%v, %v]", c.OutsideTemp, temp.Min, temp.Max)
	}
	return nil
}

func (c Config) bounds() (lux, temp r1.Interval) {
	lux, temp = c.LuxBounds, c.TempBounds
	if lux == (r1.Interval{}) {
		lux = DefaultLuxBounds
	}
	if temp == (r1.Interval{}) {
		temp = DefaultTempBounds
	}
	return lux, temp
}

// Room is the simulated plant. Applying an action moves the actuated
// factor, then the natural drift runs: temperature relaxes toward the
// outside temperature and illuminance decays toward the background
// level, with seeded noise on both.
//
// A Room is not internally synchronized; the controller serializes all
// sensing and actuation within its tick.
type Room struct {
	starter Starter

	lux  float64
	temp float64

	outside    float64
	luxBounds  r1.Interval
	tempBounds r1.Interval

	lightNoise distuv.Uniform // scale on light steps
	tempNoise  distuv.Uniform // additive on temperature steps
	decayNoise distuv.Uniform // scale on the lux decay
}

// New creates a Room with starting conditions drawn from starter and
// noise drawn from a source seeded with seed.
func New(starter Starter, config Config, seed uint64) (*Room, error) {
	if starter == nil {
		return nil, fmt.Errorf("new: no starter given")
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("new: %v", err)
	}

	start := starter.Start()
	if len(start) != 2 {
		return nil, fmt.Errorf("new: starter draws %d values, want 2 "+
			"(lux, temp)", len(start))
	}

	lux, temp := config.bounds()
	source := rand.NewSource(seed)
	room := &Room{
		starter:    starter,
		lux:        floatutils.ClipInterval(start[0], lux),
		temp:       floatutils.ClipInterval(start[1], temp),
		outside:    config.OutsideTemp,
		luxBounds:  lux,
		tempBounds: temp,
		lightNoise: distuv.Uniform{Min: 0.8, Max: 1.2, Src: source},
		tempNoise:  distuv.Uniform{Min: 0.005, Max: 0.05, Src: source},
		decayNoise: distuv.Uniform{Min: 0.9, Max: 1.1, Src: source},
	}
	return room, nil
}

// Reset redraws the room's conditions from its starter, clamped into
// the physical bounds. The starter's arity was validated at
// construction; a starter that changes arity afterwards panics.
func (r *Room) Reset() {
	start := r.starter.Start()
	if len(start) != 2 {
		panic(fmt.Sprintf("reset: starter drew %d values, want 2",
			len(start)))
	}
	r.lux = floatutils.ClipInterval(start[0], r.luxBounds)
	r.temp = floatutils.ClipInterval(start[1], r.tempBounds)
}

// Lux returns the room's current illuminance in lux.
func (r *Room) Lux() float64 { return r.lux }

// Temp returns the room's current temperature in degrees Celsius.
func (r *Room) Temp() float64 { return r.temp }

// Apply drives the plant with one action and advances the natural
// drift, implementing the controller's actuator contract. It is
// fire-and-forget: the return value is the clamped level of the factor
// the action drove (the illuminance for light and idle actions, the
// temperature for temperature actions) and exists only for logging.
func (r *Room) Apply(action int) float64 {
	switch action {
	case LightUp:
		r.lux += LightStep * r.lightNoise.Rand()
	case LightDown:
		r.lux -= LightStep * r.lightNoise.Rand()
	case TempUp:
		r.temp += TempStep + r.tempNoise.Rand()
	case TempDown:
		r.temp -= TempStep + r.tempNoise.Rand()
	case Idle:
		// No actuator effect; the drift still runs.
	default:
		panic(fmt.Sprintf("apply: unknown action %d", action))
	}

	r.drift()
	r.lux = floatutils.ClipInterval(r.lux, r.luxBounds)
	r.temp = floatutils.ClipInterval(r.temp, r.tempBounds)

	switch action {
	case TempUp, TempDown:
		return r.temp
	default:
		return r.lux
	}
}

// drift runs the natural dynamics of one tick: heat exchange with the
// outside and fading light.
func (r *Room) drift() {
	r.temp += (r.outside - r.temp) * TempDriftRate

	r.lux -= LuxDecay * r.decayNoise.Rand()
	if r.lux < NaturalLuxBase {
		r.lux = NaturalLuxBase
	}
}

// String returns a one-line reading of the room's conditions.
func (r *Room) String() string {
	return fmt.Sprintf("Room  |  Lux: %.2f lx  |  Temp: %.2f °C", r.lux,
		r.temp)
}

// Sensor reads one factor of the room. It satisfies the controller's
// sensor contract and never fails; wrap it in a Flaky sensor to
// exercise failure handling.
type Sensor struct {
	read func() float64
}

// Read returns the factor's current value.
func (s Sensor) Read() (float64, error) {
	return s.read(), nil
}

// LuxSensor returns a sensor view of the room's illuminance.
func (r *Room) LuxSensor() Sensor {
	return Sensor{read: func() float64 { return r.lux }}
}

// TempSensor returns a sensor view of the room's temperature.
func (r *Room) TempSensor() Sensor {
	return Sensor{read: func() float64 { return r.temp }}
}

// Flaky wraps a Sensor so that each read fails with probability p,
// exercising the controller's fallback path.
type Flaky struct {
	sensor Sensor
	p      float64
	coin   distuv.Uniform
}

// NewFlaky creates a Flaky sensor over sensor with failure probability
// p in [0, 1].
func NewFlaky(sensor Sensor, p float64, seed uint64) Flaky {
	return Flaky{
		sensor: sensor,
		p:      p,
		coin:   distuv.Uniform{Min: 0, Max: 1, Src: rand.NewSource(seed)},
	}
}

// Read returns the wrapped sensor's value, or an error on a simulated
// failure.
func (f Flaky) Read() (float64, error) {
	if f.coin.Rand() < f.p {
		return 0, fmt.Errorf("read: sensor unresponsive")
	}
	return f.sensor.Read()
}
