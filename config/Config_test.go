package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))
	return path
}

func TestDefaultIsValid(t *testing.T) {
	config := Default()
	require.NoError(t, config.Validate())

	assert.Equal(t, 500, config.Episodes)
	assert.Equal(t, 500*time.Millisecond, time.Duration(config.Period))
	assert.True(t, config.Shaping.Enabled)
	assert.Equal(t, []float64{100, 500}, config.Lux.Thresholds)
	assert.Equal(t, 21.0, config.Temperature.Target)
}

func TestLoadEmptyPathReturnsDefaults(t *testing.T) {
	config, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), config)
}

func TestLoadMissingFileErrors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestLoadBadYAMLErrors(t *testing.T) {
	_, err := Load(writeFile(t, "episodes: [unclosed"))
	assert.Error(t, err)
}

func TestLoadBadDurationErrors(t *testing.T) {
	_, err := Load(writeFile(t, "period: notaduration"))
	assert.Error(t, err)
}

// TestLoadOverlaysDefaults checks the overlay contract: keys in the
// file replace defaults, absent keys keep them, nested keys merge.
func TestLoadOverlaysDefaults(t *testing.T) {
	config, err := Load(writeFile(t, `
episodes: 42
period: 250ms
learning:
  gamma: 0.9
  epsilon:
    start: 0.8
    floor: 0.1
    decay: 0.95
shaping:
  enabled: false
room:
  outside_temp: 25
start_temp:
  min: 10
  max: 16
`))
	require.NoError(t, err)

	assert.Equal(t, 42, config.Episodes)
	assert.Equal(t, 250*time.Millisecond, time.Duration(config.Period))
	assert.Equal(t, 0.9, config.Learning.Gamma)
	assert.Equal(t, 0.8, config.Learning.Epsilon.Start)
	assert.Equal(t, 0.1, config.Learning.Epsilon.Floor)
	assert.Equal(t, 0.95, config.Learning.Epsilon.Decay)
	assert.False(t, config.Shaping.Enabled)
	assert.Equal(t, 25.0, config.Room.OutsideTemp)
	assert.Equal(t, 10.0, config.StartTemp.Min)
	assert.Equal(t, 16.0, config.StartTemp.Max)

	// Untouched keys keep their defaults.
	assert.Equal(t, uint64(192382), config.Seed)
	assert.Equal(t, 0.05, config.Learning.Alpha)
	assert.Equal(t, 300.0, config.Lux.Target)
	require.Len(t, config.Learning.Preseed, 1)
	assert.Equal(t, 10.0, config.Learning.Preseed[0].Value)
}

func TestLoadInlineShapingKeys(t *testing.T) {
	config, err := Load(writeFile(t, `
shaping:
  enabled: true
  zone_idle_bonus: 7
  wrong_way_penalty: -0.5
`))
	require.NoError(t, err)

	assert.Equal(t, 7.0, config.Shaping.ZoneIdleBonus)
	assert.Equal(t, -0.5, config.Shaping.WrongWayPenalty)
	assert.Equal(t, Default().Shaping.ZoneActivePenalty,
		config.Shaping.ZoneActivePenalty)
}

func TestValidateNamesOffendingField(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"episodes", func(c *Config) { c.Episodes = 0 }, "episodes"},
		{"period", func(c *Config) { c.Period = 0 }, "period"},
		{"history capacity", func(c *Config) { c.HistoryCapacity = 0 },
			"history_capacity"},
		{"print every", func(c *Config) { c.PrintEvery = -1 },
			"print_every"},
		{"lux thresholds", func(c *Config) { c.Lux.Thresholds = nil },
			"lux"},
		{"temperature norm", func(c *Config) { c.Temperature.Norm = 0 },
			"temperature"},
		{"max distance", func(c *Config) { c.Reward.MaxDistance = 0 },
			"max_distance"},
		{"shaping sign", func(c *Config) { c.Shaping.ZoneIdleBonus = -1 },
			"shaping"},
		{"shaping bounds", func(c *Config) {
			c.Shaping.Bounds.Max = c.Shaping.Bounds.Min
		}, "shaping"},
		{"epsilon", func(c *Config) { c.Learning.Epsilon.Decay = 0 },
			"epsilon"},
		{"start lux", func(c *Config) { c.StartLux.Min = c.StartLux.Max },
			"start_lux"},
		{"start temp", func(c *Config) { c.StartTemp.Max = 0 },
			"start_temp"},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			config := Default()
			test.mutate(config)
			err := config.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), test.want)
		})
	}
}

func TestShapingDisabledSkipsShapingChecks(t *testing.T) {
	config := Default()
	config.Shaping.Enabled = false
	config.Shaping.ZoneIdleBonus = -1
	assert.NoError(t, config.Validate())
}
