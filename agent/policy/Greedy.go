package policy

import "github.com/accu-rl/accu/qtable"

// NewGreedy creates a pure exploitation policy: an EGreedy with a
// constant zero exploration probability.
func NewGreedy(table *qtable.Table, seed uint64) *EGreedy {
	schedule, err := NewSchedule(ScheduleConfig{Start: 0, Floor: 0, Decay: 1})
	if err != nil {
		// A constant zero schedule is always valid.
		panic(err)
	}
	return NewEGreedy(table, schedule, seed)
}
