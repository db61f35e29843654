// Package qtable implements the dense action-value table at the heart
// of the tabular Q-learning controller, together with per-pair
// visitation counts and gob checkpointing.
package qtable

import (
	"bytes"
	"encoding/gob"
	"fmt"
	"os"

	"gonum.org/v1/gonum/mat"
)

// Table is a dense states x actions matrix of action-value estimates
// Q(s, a), initialized to zero, plus a parallel matrix of visitation
// counts N(s, a). The state and action spaces of the target devices
// are tiny (at most a few dozen cells), so a dense layout is both the
// smallest and the simplest representation.
//
// A Table is owned by the learner/policy pair that shares it and is
// not internally synchronized. The controller serializes all access.
type Table struct {
	states  int
	actions int
	values  *mat.Dense
	visits  *mat.Dense
}

// New returns a zero-initialized Table for the given state and action
// space sizes. Both must be at least 1 so that the controller never
// starts with an empty table.
func New(states, actions int) (*Table, error) {
	if states < 1 {
		return nil, fmt.Errorf("new: states must be positive, got %d", states)
	}
	if actions < 1 {
		return nil, fmt.Errorf("new: actions must be positive, got %d",
			actions)
	}

	return &Table{
		states:  states,
		actions: actions,
		values:  mat.NewDense(states, actions, nil),
		visits:  mat.NewDense(states, actions, nil),
	}, nil
}

// States returns the number of states the table covers.
func (t *Table) States() int { return t.states }

// Actions returns the number of actions the table covers.
func (t *Table) Actions() int { return t.actions }

// At returns the current estimate Q(s, a).
func (t *Table) At(s, a int) float64 {
	return t.values.At(s, a)
}

// Set overwrites the estimate Q(s, a).
func (t *Table) Set(s, a int, value float64) {
	t.values.Set(s, a, value)
}

// Best returns the action with the maximal estimate in state s and
// that estimate. Ties break toward the lowest action index: the scan
// runs left to right and only a strictly greater value replaces the
// incumbent. Both the greedy policy and the TD future-value term use
// this.
func (t *Table) Best(s int) (action int, value float64) {
	row := t.values.RawRowView(s)
	action, value = 0, row[0]
	for a := 1; a < len(row); a++ {
		if row[a] > value {
			action, value = a, row[a]
		}
	}
	return action, value
}

// Visits returns how many completed updates pair (s, a) has received.
func (t *Table) Visits(s, a int) float64 {
	return t.visits.At(s, a)
}

// Visit increments the visitation count of (s, a) and returns the new
// count. Counts never decrease.
func (t *Table) Visit(s, a int) float64 {
	n := t.visits.At(s, a) + 1
	t.visits.Set(s, a, n)
	return n
}

// Snapshot returns a deep copy of the value estimates as rows of
// actions, for diagnostic export. Mutating the table after a snapshot
// is taken does not affect the snapshot.
func (t *Table) Snapshot() [][]float64 {
	rows := make([][]float64, t.states)
	for s := 0; s < t.states; s++ {
		rows[s] = make([]float64, t.actions)
		copy(rows[s], t.values.RawRowView(s))
	}
	return rows
}

// Matrix returns a read-only view of the value estimates for
// formatted dumps.
func (t *Table) Matrix() mat.Matrix {
	return t.values
}

// tablePayload is the gob wire form of a Table.
type tablePayload struct {
	States  int
	Actions int
	Values  []float64
	Visits  []float64
}

// GobEncode implements gob.GobEncoder, serializing dimensions, value
// estimates and visitation counts.
func (t *Table) GobEncode() ([]byte, error) {
	payload := tablePayload{
		States:  t.states,
		Actions: t.actions,
		Values:  t.values.RawMatrix().Data,
		Visits:  t.visits.RawMatrix().Data,
	}

	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(payload); err != nil {
		return nil, fmt.Errorf("gobencode: %v", err)
	}
	return buf.Bytes(), nil
}

// GobDecode implements gob.GobDecoder.
func (t *Table) GobDecode(data []byte) error {
	var payload tablePayload
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&payload); err != nil {
		return fmt.Errorf("gobdecode: %v", err)
	}
	if payload.States < 1 || payload.Actions < 1 {
		return fmt.Errorf("gobdecode: invalid dimensions %dx%d",
			payload.States, payload.Actions)
	}
	want := payload.States * payload.Actions
	if len(payload.Values) != want || len(payload.Visits) != want {
		return fmt.Errorf("gobdecode: expected %d cells, got %d values "+
			"and %d visits", want, len(payload.Values), len(payload.Visits))
	}

	t.states = payload.States
	t.actions = payload.Actions
	t.values = mat.NewDense(payload.States, payload.Actions, payload.Values)
	t.visits = mat.NewDense(payload.States, payload.Actions, payload.Visits)
	return nil
}

// SaveFile gob-encodes the table to a checkpoint file, creating or
// truncating it.
func (t *Table) SaveFile(path string) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("savefile: %v", err)
	}
	defer file.Close()

	if err := gob.NewEncoder(file).Encode(t); err != nil {
		return fmt.Errorf("savefile: %v", err)
	}
	return nil
}

// LoadFile reads a table from a checkpoint file written by SaveFile.
func LoadFile(path string) (*Table, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("loadfile: %v", err)
	}
	defer file.Close()

	table := new(Table)
	if err := gob.NewDecoder(file).Decode(table); err != nil {
		return nil, fmt.Errorf("loadfile: %v", err)
	}
	return table, nil
}
