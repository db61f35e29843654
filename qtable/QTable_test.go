package qtable

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewValidation(t *testing.T) {
	_, err := New(0, 5)
	assert.Error(t, err)

	_, err = New(9, 0)
	assert.Error(t, err)

	table, err := New(9, 5)
	require.NoError(t, err)
	assert.Equal(t, 9, table.States())
	assert.Equal(t, 5, table.Actions())

	for s := 0; s < 9; s++ {
		for a := 0; a < 5; a++ {
			assert.Zero(t, table.At(s, a))
			assert.Zero(t, table.Visits(s, a))
		}
	}
}

func TestBestTieBreaksLowestAction(t *testing.T) {
	table, err := New(2, 4)
	require.NoError(t, err)

	// Two actions share the maximal value; the lower index must win.
	table.Set(0, 1, 3.5)
	table.Set(0, 3, 3.5)
	action, value := table.Best(0)
	assert.Equal(t, 1, action)
	assert.Equal(t, 3.5, value)

	// All zero: the first action wins.
	action, value = table.Best(1)
	assert.Equal(t, 0, action)
	assert.Zero(t, value)
}

func TestBestFindsMaximum(t *testing.T) {
	table, err := New(1, 5)
	require.NoError(t, err)
	for a, v := range []float64{-1, 0.5, 7.25, 7.0, -3} {
		table.Set(0, a, v)
	}

	action, value := table.Best(0)
	assert.Equal(t, 2, action)
	assert.Equal(t, 7.25, value)
}

func TestVisitIncrements(t *testing.T) {
	table, err := New(3, 3)
	require.NoError(t, err)

	assert.Equal(t, 1.0, table.Visit(1, 2))
	assert.Equal(t, 2.0, table.Visit(1, 2))
	assert.Equal(t, 2.0, table.Visits(1, 2))
	assert.Zero(t, table.Visits(1, 1))
}

func TestSnapshotIsDeepCopy(t *testing.T) {
	table, err := New(2, 2)
	require.NoError(t, err)
	table.Set(0, 1, 1.25)

	snap := table.Snapshot()
	table.Set(0, 1, -9)

	assert.Equal(t, 1.25, snap[0][1])
	assert.Equal(t, -9.0, table.At(0, 1))
}

func TestGobRoundTrip(t *testing.T) {
	table, err := New(3, 5)
	require.NoError(t, err)
	table.Set(2, 4, 10.0)
	table.Set(0, 0, -0.5)
	table.Visit(2, 4)
	table.Visit(2, 4)

	path := filepath.Join(t.TempDir(), "qtable.gob")
	require.NoError(t, table.SaveFile(path))

	loaded, err := LoadFile(path)
	require.NoError(t, err)

	assert.Equal(t, table.States(), loaded.States())
	assert.Equal(t, table.Actions(), loaded.Actions())
	assert.Equal(t, 10.0, loaded.At(2, 4))
	assert.Equal(t, -0.5, loaded.At(0, 0))
	assert.Equal(t, 2.0, loaded.Visits(2, 4))
}

func TestLoadFileMissing(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "absent.gob"))
	assert.Error(t, err)
}
