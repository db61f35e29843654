// Package qlearning implements tabular Q-learning: an epsilon-greedy
// behaviour policy over a dense value table updated with the
// off-policy TD rule, plus the self-tuning extensions (decaying
// exploration, visitation-count learning rate) used on the devices.
package qlearning

import (
	"fmt"

	"github.com/accu-rl/accu/agent/policy"
	"github.com/accu-rl/accu/qtable"
)

// QLearning combines the TD learner and the epsilon-greedy behaviour
// policy around one shared table and exploration schedule. It
// satisfies agent.Agent.
type QLearning struct {
	*QLearner
	*policy.EGreedy

	table *qtable.Table
}

// New creates a Q-learning agent with a fresh zero table (plus any
// configured preseeds).
func New(config Config, seed uint64) (*QLearning, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("new: %v", err)
	}

	table, err := qtable.New(config.States, config.Actions)
	if err != nil {
		return nil, fmt.Errorf("new: %v", err)
	}
	return NewWithTable(table, config, seed)
}

// NewWithTable creates a Q-learning agent around an existing table,
// e.g. one restored from a checkpoint. The table's dimensions must
// match the config.
func NewWithTable(table *qtable.Table, config Config,
	seed uint64) (*QLearning, error) {

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("newWithTable: %v", err)
	}
	if table.States() != config.States || table.Actions() != config.Actions {
		return nil, fmt.Errorf("newWithTable: table is %dx%d, config "+
			"wants %dx%d", table.States(), table.Actions(), config.States,
			config.Actions)
	}

	for _, p := range config.Preseed {
		table.Set(p.State, p.Action, p.Value)
	}

	schedule, err := policy.NewSchedule(config.Epsilon)
	if err != nil {
		return nil, fmt.Errorf("newWithTable: %v", err)
	}

	behaviour := policy.NewEGreedy(table, schedule, seed)
	learner := NewQLearner(table, schedule, config)

	return &QLearning{
		QLearner: learner,
		EGreedy:  behaviour,
		table:    table,
	}, nil
}

// Table returns the shared value table for diagnostics and
// checkpointing.
func (q *QLearning) Table() *qtable.Table {
	return q.table
}
