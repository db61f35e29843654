package room

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r1"
)

// comfortable returns a room resting exactly on the comfort targets
// with a mild day outside.
func comfortable(t *testing.T, config Config) *Room {
	t.Helper()
	if config.OutsideTemp == 0 {
		config.OutsideTemp = 20
	}
	r, err := New(NewFixedStarter(300, 21), config, 42)
	require.NoError(t, err)
	return r
}

func TestNewValidation(t *testing.T) {
	_, err := New(nil, Config{OutsideTemp: 20}, 1)
	assert.Error(t, err)

	_, err = New(NewFixedStarter(300), Config{OutsideTemp: 20}, 1)
	assert.Error(t, err)

	_, err = New(NewFixedStarter(300, 21, 7), Config{OutsideTemp: 20}, 1)
	assert.Error(t, err)

	_, err = New(NewFixedStarter(300, 21), Config{
		OutsideTemp: 20,
		LuxBounds:   r1.Interval{Min: 100, Max: 100},
	}, 1)
	assert.Error(t, err)

	_, err = New(NewFixedStarter(300, 21), Config{
		OutsideTemp: 20,
		TempBounds:  r1.Interval{Min: 24, Max: 18},
	}, 1)
	assert.Error(t, err)

	// Outside temperature must be physically reachable.
	_, err = New(NewFixedStarter(300, 21), Config{OutsideTemp: 100}, 1)
	assert.Error(t, err)

	r, err := New(NewFixedStarter(300, 21), Config{OutsideTemp: 20}, 1)
	require.NoError(t, err)
	assert.Equal(t, 300.0, r.Lux())
	assert.Equal(t, 21.0, r.Temp())
}

func TestActionsMoveFactors(t *testing.T) {
	r := comfortable(t, Config{})
	r.Apply(LightUp)
	assert.Greater(t, r.Lux(), 300.0)
	assert.InDelta(t, 21.0, r.Temp(), 0.1) // only drift touches temp

	r = comfortable(t, Config{})
	r.Apply(LightDown)
	assert.Less(t, r.Lux(), 300.0)

	r = comfortable(t, Config{})
	r.Apply(TempUp)
	assert.Greater(t, r.Temp(), 21.0)

	r = comfortable(t, Config{})
	r.Apply(TempDown)
	assert.Less(t, r.Temp(), 21.0)
}

func TestIdleOnlyDrifts(t *testing.T) {
	r, err := New(NewFixedStarter(300, 30), Config{OutsideTemp: 20}, 7)
	require.NoError(t, err)

	r.Apply(Idle)

	// Temperature relaxes toward the outside by the drift rate; the
	// drift itself carries no noise.
	assert.InDelta(t, 29.5, r.Temp(), 1e-12)

	// Illuminance decays by LuxDecay scaled by up to 10% of noise.
	assert.GreaterOrEqual(t, r.Lux(), 294.5)
	assert.LessOrEqual(t, r.Lux(), 295.5)
}

func TestTemperatureDriftsUpTowardWarmOutside(t *testing.T) {
	r, err := New(NewFixedStarter(300, 10), Config{OutsideTemp: 20}, 7)
	require.NoError(t, err)

	r.Apply(Idle)
	assert.Greater(t, r.Temp(), 10.0)
	assert.Less(t, r.Temp(), 20.0)
}

func TestLuxFloorHolds(t *testing.T) {
	r, err := New(NewFixedStarter(52, 21), Config{OutsideTemp: 20}, 7)
	require.NoError(t, err)

	for i := 0; i < 5; i++ {
		r.Apply(Idle)
		assert.Equal(t, NaturalLuxBase, r.Lux())
	}
}

func TestPhysicalBoundsClamp(t *testing.T) {
	r, err := New(NewFixedStarter(380, 21), Config{
		OutsideTemp: 20,
		LuxBounds:   r1.Interval{Min: 50, Max: 400},
	}, 7)
	require.NoError(t, err)
	r.Apply(LightUp)
	assert.Equal(t, 400.0, r.Lux())

	r, err = New(NewFixedStarter(300, 23.8), Config{
		OutsideTemp: 20,
		TempBounds:  r1.Interval{Min: 18, Max: 24},
	}, 7)
	require.NoError(t, err)
	r.Apply(TempUp)
	assert.Equal(t, 24.0, r.Temp())
}

func TestApplyReportsDrivenFactor(t *testing.T) {
	r := comfortable(t, Config{})
	assert.Equal(t, r.Apply(TempUp), r.Temp())

	r = comfortable(t, Config{})
	assert.Equal(t, r.Apply(LightUp), r.Lux())

	r = comfortable(t, Config{})
	assert.Equal(t, r.Apply(Idle), r.Lux())
}

func TestApplyUnknownActionPanics(t *testing.T) {
	r := comfortable(t, Config{})
	assert.Panics(t, func() { r.Apply(NumActions) })
	assert.Panics(t, func() { r.Apply(-1) })
}

func TestResetRedrawsFromStarter(t *testing.T) {
	starter := NewUniformStarter([]r1.Interval{
		{Min: 60, Max: 120},
		{Min: 14, Max: 18},
	}, 11)
	r, err := New(starter, Config{OutsideTemp: 20}, 11)
	require.NoError(t, err)

	for i := 0; i < 20; i++ {
		r.Apply(LightUp)
		r.Apply(TempUp)
	}
	require.Greater(t, r.Lux(), 120.0)

	r.Reset()
	assert.GreaterOrEqual(t, r.Lux(), 60.0)
	assert.LessOrEqual(t, r.Lux(), 120.0)
	assert.GreaterOrEqual(t, r.Temp(), 14.0)
	assert.LessOrEqual(t, r.Temp(), 18.0)
}

func TestUniformStarterDrawsWithinBounds(t *testing.T) {
	starter := NewUniformStarter([]r1.Interval{
		{Min: 60, Max: 120},
		{Min: 14, Max: 18},
	}, 3)

	distinct := false
	var last []float64
	for i := 0; i < 100; i++ {
		start := starter.Start()
		require.Len(t, start, 2)
		assert.GreaterOrEqual(t, start[0], 60.0)
		assert.LessOrEqual(t, start[0], 120.0)
		assert.GreaterOrEqual(t, start[1], 14.0)
		assert.LessOrEqual(t, start[1], 18.0)
		if last != nil && (start[0] != last[0] || start[1] != last[1]) {
			distinct = true
		}
		last = start
	}
	assert.True(t, distinct)
}

func TestFixedStarterReturnsCopies(t *testing.T) {
	starter := NewFixedStarter(80, 16)
	first := starter.Start()
	first[0] = -1
	assert.Equal(t, []float64{80, 16}, starter.Start())
}

func TestActionNames(t *testing.T) {
	assert.Equal(t, NumActions, len(ActionNames))
	assert.Equal(t, "IDLE", ActionName(Idle))
	assert.Equal(t, "LIGHT+", ActionName(LightUp))
	assert.Equal(t, "A9", ActionName(9))
}

func TestFlakySensor(t *testing.T) {
	r := comfortable(t, Config{})

	always := NewFlaky(r.LuxSensor(), 1, 5)
	for i := 0; i < 20; i++ {
		_, err := always.Read()
		require.Error(t, err)
	}

	never := NewFlaky(r.LuxSensor(), 0, 5)
	for i := 0; i < 20; i++ {
		value, err := never.Read()
		require.NoError(t, err)
		require.Equal(t, r.Lux(), value)
	}

	sometimes := NewFlaky(r.TempSensor(), 0.5, 5)
	failures := 0
	for i := 0; i < 200; i++ {
		if _, err := sometimes.Read(); err != nil {
			failures++
		}
	}
	assert.Greater(t, failures, 0)
	assert.Less(t, failures, 200)
}

func TestSensorsTrackTheRoom(t *testing.T) {
	r := comfortable(t, Config{})
	luxSensor, tempSensor := r.LuxSensor(), r.TempSensor()

	lux, err := luxSensor.Read()
	require.NoError(t, err)
	assert.Equal(t, r.Lux(), lux)

	r.Apply(TempUp)

	temp, err := tempSensor.Read()
	require.NoError(t, err)
	assert.Equal(t, r.Temp(), temp)
}
