// Package history keeps a bounded in-memory record of recent control
// ticks for diagnostics export.
package history

import (
	"fmt"
	"sync"
)

// Entry is the fixed-width snapshot appended once per tick. Field
// presence and order are the contract the diagnostic layer reads;
// rendering entries into a wire format is outside the core.
type Entry struct {
	// Episode is the tick number the entry was recorded on.
	Episode int

	// Observation holds the raw sensor reading per factor.
	Observation []float64

	// State is the discretized composite state index.
	State int

	// Actuator is the clamped physical output the actuator reported
	// after applying the selected action.
	Actuator float64

	// Reward is the reward computed on this tick.
	Reward float64

	// Epsilon and Alpha are the exploration and learning rates in
	// effect when the entry was recorded.
	Epsilon float64
	Alpha   float64
}

// Sink receives entries during an export, oldest first.
type Sink interface {
	WriteEntry(Entry) error
}

// Recorder is a fixed-capacity circular buffer of Entries. Once full,
// each new record evicts exactly the oldest. Record is amortized O(1)
// and never blocks on an in-progress export: Export copies the ring
// under the lock and streams the copy after releasing it.
type Recorder struct {
	mu      sync.Mutex
	entries []Entry
	next    int
	full    bool
}

// New creates a Recorder retaining at most capacity entries.
func New(capacity int) (*Recorder, error) {
	if capacity < 1 {
		return nil, fmt.Errorf("new: capacity must be positive, got %d",
			capacity)
	}
	return &Recorder{entries: make([]Entry, capacity)}, nil
}

// Record appends one entry, evicting the oldest when the buffer is
// full. The observation slice is copied, so callers may reuse theirs.
func (r *Recorder) Record(e Entry) {
	obs := make([]float64, len(e.Observation))
	copy(obs, e.Observation)
	e.Observation = obs

	r.mu.Lock()
	defer r.mu.Unlock()

	r.entries[r.next] = e
	r.next++
	if r.next == len(r.entries) {
		r.next = 0
		r.full = true
	}
}

// Len returns how many entries are currently retained.
func (r *Recorder) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.full {
		return len(r.entries)
	}
	return r.next
}

// Cap returns the fixed capacity.
func (r *Recorder) Cap() int {
	return len(r.entries)
}

// Full reports whether the buffer has wrapped around at least once,
// distinguishing eviction from initial fill.
func (r *Recorder) Full() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.full
}

// Snapshot returns the retained entries oldest to newest as of the
// call. Records arriving afterwards do not affect the returned slice.
func (r *Recorder) Snapshot() []Entry {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.full {
		out := make([]Entry, r.next)
		copy(out, r.entries[:r.next])
		return out
	}

	out := make([]Entry, 0, len(r.entries))
	out = append(out, r.entries[r.next:]...)
	out = append(out, r.entries[:r.next]...)
	return out
}

// Export streams all retained entries to the sink in chronological
// order, oldest to newest, handling wrap-around. Recording may
// continue concurrently; the export sees the consistent snapshot taken
// when it started.
func (r *Recorder) Export(sink Sink) error {
	for _, e := range r.Snapshot() {
		if err := sink.WriteEntry(e); err != nil {
			return fmt.Errorf("export: %v", err)
		}
	}
	return nil
}
