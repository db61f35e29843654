package controller

import "fmt"

// Stage identifies where in the sense-learn-act cycle the controller
// currently is. Between ticks it sits in AwaitingTick.
type Stage int

const (
	AwaitingTick Stage = iota
	Sensing
	Rewarding
	Learning
	Acting
	Recording
)

var stageNames = [...]string{
	AwaitingTick: "AWAITING_TICK",
	Sensing:      "SENSING",
	Rewarding:    "REWARDING",
	Learning:     "LEARNING",
	Acting:       "ACTING",
	Recording:    "RECORDING",
}

func (s Stage) String() string {
	if s < 0 || int(s) >= len(stageNames) {
		return fmt.Sprintf("STAGE(%d)", int(s))
	}
	return stageNames[s]
}

// Status is a point-in-time snapshot of the controller for diagnostic
// observers. All reference fields are deep copies: mutating a Status
// never touches live controller state, and ticking the controller
// never changes a Status already handed out.
type Status struct {
	// Stage is the cycle stage at snapshot time. A Status taken
	// between ticks reports AwaitingTick.
	Stage Stage

	// Episode counts completed ticks, starting at 1 on the first.
	Episode int

	// Observation, State, Action and Reward describe the most recent
	// completed tick. State and Action are agent.None before the first
	// tick.
	Observation []float64
	State       int
	Action      int
	Reward      float64

	// Table is a copy of the value estimates, one row per state.
	Table [][]float64

	// Epsilon and LearningRate are the self-tuning parameters in
	// effect at snapshot time.
	Epsilon      float64
	LearningRate float64

	// Explored and Exploited tally how the actions so far were chosen.
	Explored  int
	Exploited int

	// LastEvent is a rendered one-line account of the most recent
	// completed update, empty before the first.
	LastEvent string
}
