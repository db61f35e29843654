// Package agent defines the learner and policy contracts of the
// control loop and the transition record they exchange.
package agent

// None is the sentinel state or action index meaning "no previous
// value". The controller starts with None for both, so the first tick
// performs no update; this is the defined steady state for tick zero,
// not an error.
const None = -1

// Transition is one completed step of experience: the pair that was
// acted on, the reward observed after acting, and the state the
// observation resolved to. It is transient; the history recorder keeps
// its own per-tick entries.
type Transition struct {
	PrevState  int
	PrevAction int
	Reward     float64
	State      int
}

// Result reports what a completed update did, for diagnostics only.
// The booleans are pure predicates; rendering them into log lines is
// the caller's business.
type Result struct {
	// OldQ and NewQ are the updated estimate before and after.
	OldQ float64
	NewQ float64

	// TDError is the temporal-difference error driving the update.
	TDError float64

	// LearningRate is the rate this update was applied with.
	LearningRate float64

	// PolicyChanged reports whether the update changed the greedy
	// action of the updated state.
	PolicyChanged bool

	// Crucial reports whether |TDError| exceeded the configured
	// threshold. It has no effect on the update itself.
	Crucial bool
}

// Learner updates action-value estimates from transitions.
//
// An Agent is composed of a Learner, which updates the value table,
// and a Policy, which chooses actions in each state using that table.
type Learner interface {
	// Update applies one TD update for the transition. It reports
	// false, leaving the table untouched, when the transition has no
	// previous state or action.
	Update(t Transition) (Result, bool)

	// LearningRate returns the rate applied by the most recent
	// update, or the configured base rate before any update.
	LearningRate() float64
}

// Policy chooses actions from states.
type Policy interface {
	// SelectAction returns the action to take in state and whether
	// it was chosen by exploration rather than greedy exploitation.
	// The flag is an observable classification for diagnostics, not
	// policy state.
	SelectAction(state int) (action int, explored bool)

	// Epsilon returns the current exploration probability.
	Epsilon() float64
}

// Agent is a complete learning controller brain.
type Agent interface {
	Learner
	Policy
}
