// Package controller runs the periodic sense-learn-act cycle, wiring
// the sensors, the discretizer, the reward model, the learning agent,
// the actuator and the history recorder into one loop.
package controller

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/accu-rl/accu/agent"
	"github.com/accu-rl/accu/discretize"
	"github.com/accu-rl/accu/history"
	"github.com/accu-rl/accu/qtable"
	"github.com/accu-rl/accu/reward"
)

// Sensor reads the current value of one physical factor. Reads may
// fail transiently; the controller substitutes the factor's set-point
// so a flaky sensor degrades the tick instead of halting the loop.
type Sensor interface {
	Read() (float64, error)
}

// Actuator applies a selected action to the plant and reports the
// resulting value of the factor the action drives.
type Actuator interface {
	Apply(action int) float64
}

// Config holds the controller parameters not covered by its
// collaborators.
type Config struct {
	// Period is the tick interval used by Run.
	Period time.Duration

	// ActionNames labels actions in event lines. Actions without a
	// name render as their index.
	ActionNames []string
}

// Controller owns the control cycle. Each Tick runs sense, reward,
// learn, act, record in order under a single write lock; Snapshot and
// Episode take the read side, so observers never see a half-applied
// tick. The recorder carries its own lock, so exports proceed while
// ticks continue.
type Controller struct {
	mu sync.RWMutex

	config  Config
	brain   agent.Agent
	table   *qtable.Table
	disc    discretize.Multi
	model   *reward.Comfort
	sensors []Sensor
	act     Actuator
	rec     *history.Recorder
	log     *slog.Logger

	stage      Stage
	episode    int
	obs        []float64
	state      int
	action     int
	prevState  int
	prevAction int
	reward     float64
	explored   int
	exploited  int
	lastEvent  string
}

// New creates a Controller from its collaborators. The discretizer,
// reward model, sensor count and table dimensions must agree; a
// mismatch is fatal at construction. A nil logger selects
// slog.Default().
func New(config Config, brain agent.Agent, table *qtable.Table,
	disc discretize.Multi, model *reward.Comfort, sensors []Sensor,
	actuator Actuator, recorder *history.Recorder,
	logger *slog.Logger) (*Controller, error) {

	if config.Period <= 0 {
		return nil, fmt.Errorf("new: period must be positive, got %v",
			config.Period)
	}
	if brain == nil {
		return nil, fmt.Errorf("new: no agent given")
	}
	if table == nil {
		return nil, fmt.Errorf("new: no value table given")
	}
	if model == nil {
		return nil, fmt.Errorf("new: no reward model given")
	}
	if actuator == nil {
		return nil, fmt.Errorf("new: no actuator given")
	}
	if recorder == nil {
		return nil, fmt.Errorf("new: no history recorder given")
	}
	if len(sensors) != disc.Factors() {
		return nil, fmt.Errorf("new: %d sensors for %d factors",
			len(sensors), disc.Factors())
	}
	for i, s := range sensors {
		if s == nil {
			return nil, fmt.Errorf("new: sensor %d is nil", i)
		}
	}
	if model.Factors() != disc.Factors() {
		return nil, fmt.Errorf("new: reward model scores %d factors, "+
			"discretizer has %d", model.Factors(), disc.Factors())
	}
	if table.States() != disc.States() {
		return nil, fmt.Errorf("new: table covers %d states, discretizer "+
			"produces %d", table.States(), disc.States())
	}
	if logger == nil {
		logger = slog.Default()
	}

	ss := make([]Sensor, len(sensors))
	copy(ss, sensors)

	return &Controller{
		config:     config,
		brain:      brain,
		table:      table,
		disc:       disc,
		model:      model,
		sensors:    ss,
		act:        actuator,
		rec:        recorder,
		log:        logger.With("component", "controller"),
		obs:        make([]float64, disc.Factors()),
		state:      agent.None,
		action:     agent.None,
		prevState:  agent.None,
		prevAction: agent.None,
	}, nil
}

// Tick runs one complete control cycle. The reward computed from the
// fresh observation is attributed to the action applied on the
// previous tick, which is the pair the learner updates. The very first
// tick has no previous pair, so it senses, acts and records without
// updating the table.
func (c *Controller) Tick() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.episode++

	c.stage = Sensing
	for i, sensor := range c.sensors {
		v, err := sensor.Read()
		if err != nil {
			v = c.model.Target(i)
			c.log.Warn("sensor read failed, substituting set-point",
				"factor", i, "fallback", v, "err", err)
		}
		c.obs[i] = v
	}
	c.state = c.disc.Index(c.obs)

	c.stage = Rewarding
	c.reward = c.model.Reward(c.obs, c.prevAction)

	c.stage = Learning
	transition := agent.Transition{
		PrevState:  c.prevState,
		PrevAction: c.prevAction,
		Reward:     c.reward,
		State:      c.state,
	}
	result, updated := c.brain.Update(transition)

	c.stage = Acting
	action, explored := c.brain.SelectAction(c.state)
	if explored {
		c.explored++
	} else {
		c.exploited++
	}
	applied := c.act.Apply(action)
	c.action = action

	c.stage = Recording
	c.rec.Record(history.Entry{
		Episode:     c.episode,
		Observation: c.obs,
		State:       c.state,
		Actuator:    applied,
		Reward:      c.reward,
		Epsilon:     c.brain.Epsilon(),
		Alpha:       c.brain.LearningRate(),
	})

	if updated {
		c.lastEvent = c.formatEvent(transition, result, action, explored)
		level := slog.LevelDebug
		if result.PolicyChanged || result.Crucial {
			level = slog.LevelInfo
		}
		c.log.Log(context.Background(), level, c.lastEvent,
			"episode", c.episode)
	}

	c.prevState = c.state
	c.prevAction = action
	c.stage = AwaitingTick
}

// formatEvent renders one completed update as a single line: the
// updated pair, the TD movement, the driving reward, and what the
// controller did next.
func (c *Controller) formatEvent(t agent.Transition, r agent.Result,
	action int, explored bool) string {

	mode := "EXPLOIT"
	if explored {
		mode = "EXPLORE"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Q(S%d,%s) %.3f -> %.3f | td %+.3f | r %+.2f | "+
		"next S%d %s [%s]", t.PrevState, c.actionName(t.PrevAction),
		r.OldQ, r.NewQ, r.TDError, t.Reward, t.State,
		c.actionName(action), mode)
	if r.PolicyChanged {
		b.WriteString(" | POLICY CHANGE")
	}
	if r.Crucial {
		b.WriteString(" | CRUCIAL")
	}
	return b.String()
}

func (c *Controller) actionName(a int) string {
	if a >= 0 && a < len(c.config.ActionNames) {
		return c.config.ActionNames[a]
	}
	return fmt.Sprintf("A%d", a)
}

// Episode returns how many ticks have completed.
func (c *Controller) Episode() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.episode
}

// Snapshot returns a deep-copied Status. It blocks only for the copy,
// never for an in-progress export.
func (c *Controller) Snapshot() Status {
	c.mu.RLock()
	defer c.mu.RUnlock()

	obs := make([]float64, len(c.obs))
	copy(obs, c.obs)

	return Status{
		Stage:        c.stage,
		Episode:      c.episode,
		Observation:  obs,
		State:        c.state,
		Action:       c.action,
		Reward:       c.reward,
		Table:        c.table.Snapshot(),
		Epsilon:      c.brain.Epsilon(),
		LearningRate: c.brain.LearningRate(),
		Explored:     c.explored,
		Exploited:    c.exploited,
		LastEvent:    c.lastEvent,
	}
}

// Run ticks the controller every Period until the context is
// cancelled, then returns the context's error. The first tick fires
// one full period after Run starts.
func (c *Controller) Run(ctx context.Context) error {
	ticker := time.NewTicker(c.config.Period)
	defer ticker.Stop()

	c.log.Info("control loop started", "period", c.config.Period)
	for {
		select {
		case <-ctx.Done():
			c.log.Info("control loop stopped", "episodes", c.Episode())
			return ctx.Err()
		case <-ticker.C:
			c.Tick()
		}
	}
}
