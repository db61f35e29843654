// Package policy implements action selection over the learned value
// table.
package policy

import (
	"golang.org/x/exp/rand"

	"gonum.org/v1/gonum/stat/distuv"

	"github.com/accu-rl/accu/qtable"
)

// EGreedy selects actions with an epsilon-greedy rule: with the
// schedule's current probability it picks a uniformly random action
// (exploration), otherwise the table's best action for the state
// (exploitation, ties to the lowest action index).
//
// The policy holds no moving state of its own: epsilon lives in the
// shared Schedule, which the learner decays.
type EGreedy struct {
	table    *qtable.Table
	schedule *Schedule
	explore  distuv.Uniform
	rng      *rand.Rand
}

// NewEGreedy creates an epsilon-greedy policy over the shared value
// table, reading its exploration probability from schedule and
// drawing randomness from a source seeded with seed.
func NewEGreedy(table *qtable.Table, schedule *Schedule, seed uint64) *EGreedy {
	source := rand.NewSource(seed)
	return &EGreedy{
		table:    table,
		schedule: schedule,
		explore:  distuv.Uniform{Min: 0, Max: 1, Src: source},
		rng:      rand.New(source),
	}
}

// SelectAction returns the action to take in state. The second return
// reports whether the action was exploratory; diagnostics consume it,
// the caller's control flow must not.
func (p *EGreedy) SelectAction(state int) (int, bool) {
	if p.explore.Rand() < p.schedule.Current() {
		return p.rng.Intn(p.table.Actions()), true
	}

	action, _ := p.table.Best(state)
	return action, false
}

// Epsilon returns the current exploration probability.
func (p *EGreedy) Epsilon() float64 {
	return p.schedule.Current()
}
