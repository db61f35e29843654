// Package report renders the plain-text training summary: the model
// configuration, training stability tallies, the learned policy per
// state with a human-readable implication, and the headline
// success/failure verdict for the comfort-zone policy.
package report

import (
	"fmt"
	"io"
	"strings"

	"gonum.org/v1/gonum/mat"

	"github.com/accu-rl/accu/discretize"
	"github.com/accu-rl/accu/qtable"
)

// Data collects everything the report renders: the final value table,
// the discretizer that gives state indices meaning, the training
// tallies and the headline parameters.
type Data struct {
	// Episodes is how many control ticks were run.
	Episodes int

	// Gamma and Alpha echo the learning parameters. Alpha is the
	// final learning rate; AdaptiveAlpha marks it as visit-derived.
	Gamma         float64
	Alpha         float64
	AdaptiveAlpha bool

	// EpsilonStart and EpsilonFinal bracket the exploration schedule.
	EpsilonStart float64
	EpsilonFinal float64

	// Updates, PolicyChanges and CrucialUpdates are the learner
	// tallies; Explored and Exploited the action-selection split.
	Updates        int
	PolicyChanges  int
	CrucialUpdates int
	Explored       int
	Exploited      int

	// Table holds the learned estimates; Disc decomposes its state
	// indices into per-factor bins.
	Table *qtable.Table
	Disc  discretize.Multi

	// ActionNames labels table columns, FactorNames the observation
	// factors, BinLabels[f][b] bin b of factor f. Missing labels fall
	// back to indices.
	ActionNames []string
	FactorNames []string
	BinLabels   [][]string

	// ZoneState is the comfort-zone state and IdleAction the
	// energy-saving action; together they define the success check.
	ZoneState  int
	IdleAction int
}

func (d Data) validate() error {
	if d.Table == nil {
		return fmt.Errorf("no table given")
	}
	if d.Table.States() != d.Disc.States() {
		return fmt.Errorf("table covers %d states, discretizer produces %d",
			d.Table.States(), d.Disc.States())
	}
	if d.ZoneState < 0 || d.ZoneState >= d.Table.States() {
		return fmt.Errorf("zone state %d outside [0, %d)", d.ZoneState,
			d.Table.States())
	}
	if d.IdleAction < 0 || d.IdleAction >= d.Table.Actions() {
		return fmt.Errorf("idle action %d outside [0, %d)", d.IdleAction,
			d.Table.Actions())
	}
	return nil
}

func (d Data) actionName(a int) string {
	if a >= 0 && a < len(d.ActionNames) {
		return d.ActionNames[a]
	}
	return fmt.Sprintf("A%d", a)
}

func (d Data) factorName(f int) string {
	if f >= 0 && f < len(d.FactorNames) {
		return d.FactorNames[f]
	}
	return fmt.Sprintf("factor %d", f)
}

func (d Data) binLabel(f, b int) string {
	if f >= 0 && f < len(d.BinLabels) && b >= 0 && b < len(d.BinLabels[f]) {
		return d.BinLabels[f][b]
	}
	return fmt.Sprintf("BIN %d", b)
}

// describe renders a state as its per-factor bins, e.g.
// "MEDIUM lux, COMFORT temperature (target zone)".
func (d Data) describe(state int) string {
	bins := d.Disc.Decompose(state)
	parts := make([]string, len(bins))
	for f, b := range bins {
		parts[f] = fmt.Sprintf("%s %s", d.binLabel(f, b), d.factorName(f))
	}
	s := strings.Join(parts, ", ")
	if state == d.ZoneState {
		s += " (target zone)"
	}
	return s
}

// implication explains what the controller should do in a state: move
// the first out-of-band factor toward the target zone, or hold.
func (d Data) implication(state int) string {
	bins := d.Disc.Decompose(state)
	zone := d.Disc.Decompose(d.ZoneState)
	for f := range bins {
		switch {
		case bins[f] < zone[f]:
			return fmt.Sprintf("Raise %s toward the target band.",
				d.factorName(f))
		case bins[f] > zone[f]:
			return fmt.Sprintf("Lower %s toward the target band.",
				d.factorName(f))
		}
	}
	return "Hold: conserve energy while in the target zone."
}

// Converged reports whether the greedy action in the comfort-zone
// state is the idle action, the headline success criterion.
func Converged(table *qtable.Table, zone, idle int) bool {
	best, _ := table.Best(zone)
	return best == idle
}

// Write renders the report to w.
func Write(w io.Writer, d Data) error {
	if err := d.validate(); err != nil {
		return fmt.Errorf("write: %v", err)
	}

	names := make([]string, d.Table.Actions())
	for a := range names {
		names[a] = d.actionName(a)
	}

	rule := strings.Repeat("=", 72)
	var b strings.Builder

	fmt.Fprintf(&b, "%s\n", rule)
	fmt.Fprintf(&b, " ADAPTIVE CLIMATE CONTROL - Q-LEARNING TRAINING REPORT\n")
	fmt.Fprintf(&b, "%s\n\n", rule)
	fmt.Fprintf(&b, "Episodes run: %d\n", d.Episodes)

	fmt.Fprintf(&b, "\nI. MODEL CONFIGURATION\n----------------------\n")
	fmt.Fprintf(&b, "  Discount factor (gamma):  %.2f\n", d.Gamma)
	if d.AdaptiveAlpha {
		fmt.Fprintf(&b, "  Learning rate (alpha):    %.4f (adaptive, "+
			"visit-derived)\n", d.Alpha)
	} else {
		fmt.Fprintf(&b, "  Learning rate (alpha):    %.4f (fixed)\n", d.Alpha)
	}
	fmt.Fprintf(&b, "  Exploration (epsilon):    %.2f at boot, %.2f final\n",
		d.EpsilonStart, d.EpsilonFinal)
	factors := make([]string, d.Disc.Factors())
	for f := range factors {
		factors[f] = fmt.Sprintf("%d %s bins", d.Disc.Factor(f).Bins(),
			d.factorName(f))
	}
	fmt.Fprintf(&b, "  State space:              %d states (%s)\n",
		d.Disc.States(), strings.Join(factors, " x "))
	fmt.Fprintf(&b, "  Actions:                  %s\n",
		strings.Join(names, ", "))
	fmt.Fprintf(&b, "  Comfort zone:             S%d, greedy action should "+
		"be %s\n", d.ZoneState, d.actionName(d.IdleAction))

	fmt.Fprintf(&b, "\nII. TRAINING STABILITY\n----------------------\n")
	fmt.Fprintf(&b, "  Completed updates:  %d\n", d.Updates)
	fmt.Fprintf(&b, "  Policy changes:     %d\n", d.PolicyChanges)
	fmt.Fprintf(&b, "  Crucial updates:    %d (large |TD error|)\n",
		d.CrucialUpdates)
	fmt.Fprintf(&b, "  Actions chosen:     %d exploited, %d explored\n",
		d.Exploited, d.Explored)

	fmt.Fprintf(&b, "\nIII. LEARNED POLICY\n-------------------\n")
	fmt.Fprintf(&b, "  %-5s | %-46s | %-11s | %s\n", "State", "Description",
		"Best action", "Implication")
	fmt.Fprintf(&b, "  %s\n", strings.Repeat("-", 100))
	for s := 0; s < d.Table.States(); s++ {
		best, _ := d.Table.Best(s)
		fmt.Fprintf(&b, "  %-5s | %-46s | %-11s | %s\n",
			fmt.Sprintf("S%d", s), d.describe(s), d.actionName(best),
			d.implication(s))
	}

	fmt.Fprintf(&b, "\nIV. CONCLUSION\n--------------\n")
	best, _ := d.Table.Best(d.ZoneState)
	if Converged(d.Table, d.ZoneState, d.IdleAction) {
		fmt.Fprintf(&b, "SUCCESS: the greedy action in S%d (the comfort "+
			"zone) is %s.\n", d.ZoneState, d.actionName(best))
		fmt.Fprintf(&b, "The controller holds the set-points by doing "+
			"nothing and spends\nenergy only to correct drift outside "+
			"the zone.\n")
	} else {
		fmt.Fprintf(&b, "FAILURE: the greedy action in S%d (the comfort "+
			"zone) is %s, not %s.\n", d.ZoneState, d.actionName(best),
			d.actionName(d.IdleAction))
		fmt.Fprintf(&b, "Active control still dominates the zone. A "+
			"larger idle bonus, a larger\npre-seeded idle value or more "+
			"episodes may be needed.\n")
	}

	fmt.Fprintf(&b, "\n-- Raw Q-table (rows S0..S%d, columns %s) --\n",
		d.Table.States()-1, strings.Join(names, ", "))
	fmt.Fprintf(&b, "%.4f\n", mat.Formatted(d.Table.Matrix(), mat.Squeeze()))

	if _, err := io.WriteString(w, b.String()); err != nil {
		return fmt.Errorf("write: %v", err)
	}
	return nil
}
