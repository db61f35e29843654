package qlearning

import (
	"math"

	"github.com/accu-rl/accu/agent"
	"github.com/accu-rl/accu/agent/policy"
	"github.com/accu-rl/accu/qtable"
)

// QLearner applies the temporal-difference update to the shared value
// table:
//
//	newQ = oldQ + alpha * (reward + gamma*bestNext - oldQ)
//
// With AdaptiveAlpha the rate for a pair visited N times before the
// update is AlphaStart / (AlphaStart + N): 1 for a never-visited pair
// (fast initial learning), shrinking toward 0 as visits accumulate
// (stability once learned). Visitation counts increment on every
// completed update either way.
type QLearner struct {
	table    *qtable.Table
	schedule *policy.Schedule

	gamma      float64
	alpha      float64
	alphaStart float64
	adaptive   bool
	crucialTD  float64

	lastAlpha      float64
	updates        int
	policyChanges  int
	crucialUpdates int
}

// NewQLearner creates a learner over the shared table and exploration
// schedule. The config must have been validated.
func NewQLearner(table *qtable.Table, schedule *policy.Schedule,
	config Config) *QLearner {

	lastAlpha := config.Alpha
	if config.AdaptiveAlpha {
		// A never-visited pair learns at the full rate.
		lastAlpha = 1.0
	}

	return &QLearner{
		table:      table,
		schedule:   schedule,
		gamma:      config.Gamma,
		alpha:      config.Alpha,
		alphaStart: config.AlphaStart,
		adaptive:   config.AdaptiveAlpha,
		crucialTD:  config.crucialThreshold(),
		lastAlpha:  lastAlpha,
	}
}

// Update applies one TD update for the transition and decays the
// exploration schedule. When the transition carries the sentinel
// "none" previous state or action the table is left untouched, the
// schedule is not decayed, and Update reports false; the first tick
// of every run lands here.
func (q *QLearner) Update(t agent.Transition) (agent.Result, bool) {
	if t.PrevState == agent.None || t.PrevAction == agent.None {
		return agent.Result{}, false
	}

	bestBefore, _ := q.table.Best(t.PrevState)
	_, bestNext := q.table.Best(t.State)
	oldQ := q.table.At(t.PrevState, t.PrevAction)

	alpha := q.alpha
	if q.adaptive {
		visits := q.table.Visits(t.PrevState, t.PrevAction)
		alpha = q.alphaStart / (q.alphaStart + visits)
	}
	q.table.Visit(t.PrevState, t.PrevAction)

	tdError := t.Reward + q.gamma*bestNext - oldQ
	newQ := oldQ + alpha*tdError
	q.table.Set(t.PrevState, t.PrevAction, newQ)

	bestAfter, _ := q.table.Best(t.PrevState)
	q.schedule.Decay()

	result := agent.Result{
		OldQ:          oldQ,
		NewQ:          newQ,
		TDError:       tdError,
		LearningRate:  alpha,
		PolicyChanged: bestBefore != bestAfter,
		Crucial:       math.Abs(tdError) > q.crucialTD,
	}

	q.lastAlpha = alpha
	q.updates++
	if result.PolicyChanged {
		q.policyChanges++
	}
	if result.Crucial {
		q.crucialUpdates++
	}
	return result, true
}

// LearningRate returns the rate applied by the most recent update, or
// the rate a first update would use before any update has run.
func (q *QLearner) LearningRate() float64 {
	return q.lastAlpha
}

// Updates returns how many completed updates the learner has applied.
func (q *QLearner) Updates() int { return q.updates }

// PolicyChanges returns how many updates changed a state's greedy
// action.
func (q *QLearner) PolicyChanges() int { return q.policyChanges }

// CrucialUpdates returns how many updates exceeded the TD error
// threshold.
func (q *QLearner) CrucialUpdates() int { return q.crucialUpdates }
