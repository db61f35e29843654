// Command accu trains the adaptive climate controller against the
// simulated room and writes the training report. It is the software
// rendition of the on-device loop: the same controller, agent and
// reward model run here against simulated sensors and actuators.
package main

import (
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/logrusorgru/aurora"
	"gonum.org/v1/gonum/spatial/r1"

	"github.com/accu-rl/accu/agent/qlearning"
	"github.com/accu-rl/accu/config"
	"github.com/accu-rl/accu/controller"
	"github.com/accu-rl/accu/discretize"
	"github.com/accu-rl/accu/history"
	"github.com/accu-rl/accu/qtable"
	"github.com/accu-rl/accu/report"
	"github.com/accu-rl/accu/reward"
	"github.com/accu-rl/accu/room"
	"github.com/accu-rl/accu/utils/progressbar"
)

func main() {
	configPath := flag.String("config", "", "path to a YAML configuration file")
	episodes := flag.Int("episodes", 0, "override the number of episodes")
	seed := flag.Uint64("seed", 0, "override the random seed")
	reportPath := flag.String("report", "training_report.txt",
		"path of the training report to write")
	tableIn := flag.String("table-in", "", "boot from a Q-table checkpoint")
	tableOut := flag.String("table-out", "",
		"write the final Q-table as a checkpoint")
	quiet := flag.Bool("quiet", false,
		"suppress the progress bar and table dumps")
	verbose := flag.Bool("v", false, "enable per-tick debug logging")
	flag.Parse()

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr,
		&slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	cfg, err := config.Load(*configPath)
	if err != nil {
		fatal(logger, "loading configuration", err)
	}
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "episodes":
			cfg.Episodes = *episodes
		case "seed":
			cfg.Seed = *seed
		}
	})
	if err := cfg.Validate(); err != nil {
		fatal(logger, "invalid configuration", err)
	}

	d, err := buildDemo(cfg, *tableIn, logger)
	if err != nil {
		fatal(logger, "building the control stack", err)
	}

	logger.Info("training",
		"episodes", cfg.Episodes,
		"seed", cfg.Seed,
		"states", d.disc.States(),
		"actions", room.NumActions,
		"comfort_zone", d.zone,
		"shaping", cfg.Shaping.Enabled)

	bar := progressbar.New(os.Stdout, 40, cfg.Episodes)
	for episode := 1; episode <= cfg.Episodes; episode++ {
		d.ctl.Tick()
		bar.Increment()
		if *quiet {
			continue
		}
		bar.Display()
		if cfg.PrintEvery > 0 && episode%cfg.PrintEvery == 0 {
			fmt.Println()
			printTable(os.Stdout, d.brain.Table(), room.ActionNames, episode)
		}
	}
	if !*quiet {
		bar.Finish()
	}

	snap := d.ctl.Snapshot()
	logger.Info("training complete",
		"updates", d.brain.Updates(),
		"policy_changes", d.brain.PolicyChanges(),
		"crucial_updates", d.brain.CrucialUpdates(),
		"epsilon", snap.Epsilon,
		"history_entries", d.rec.Len())
	logger.Info("final room state",
		"lux", fmt.Sprintf("%.1f", d.plant.Lux()),
		"temp", fmt.Sprintf("%.1f", d.plant.Temp()))

	printBanner(os.Stdout, d.brain.Table(), d.zone)

	data := report.Data{
		Episodes:       snap.Episode,
		Gamma:          cfg.Learning.Gamma,
		Alpha:          snap.LearningRate,
		AdaptiveAlpha:  cfg.Learning.AdaptiveAlpha,
		EpsilonStart:   cfg.Learning.Epsilon.Start,
		EpsilonFinal:   snap.Epsilon,
		Updates:        d.brain.Updates(),
		PolicyChanges:  d.brain.PolicyChanges(),
		CrucialUpdates: d.brain.CrucialUpdates(),
		Explored:       snap.Explored,
		Exploited:      snap.Exploited,
		Table:          d.brain.Table(),
		Disc:           d.disc,
		ActionNames:    room.ActionNames,
		FactorNames:    []string{"lux", "temperature"},
		BinLabels: [][]string{
			factorLabels(d.disc.Factor(0).Bins(),
				[]string{"LOW", "MEDIUM", "HIGH"}),
			factorLabels(d.disc.Factor(1).Bins(),
				[]string{"COLD", "COMFORT", "HOT"}),
		},
		ZoneState:  d.zone,
		IdleAction: room.Idle,
	}
	if err := writeReport(*reportPath, data); err != nil {
		fatal(logger, "writing the report", err)
	}
	logger.Info("report written", "path", *reportPath)

	if *tableOut != "" {
		if err := d.brain.Table().SaveFile(*tableOut); err != nil {
			fatal(logger, "writing the checkpoint", err)
		}
		logger.Info("checkpoint written", "path", *tableOut)
	}
}

func fatal(logger *slog.Logger, msg string, err error) {
	logger.Error(msg, "err", err)
	os.Exit(1)
}

// demo bundles the built control stack.
type demo struct {
	disc  discretize.Multi
	zone  int
	brain *qlearning.QLearning
	plant *room.Room
	rec   *history.Recorder
	ctl   *controller.Controller
}

func buildDemo(cfg *config.Config, tableIn string,
	logger *slog.Logger) (*demo, error) {

	luxGrid, err := discretize.NewGrid(cfg.Lux.Thresholds...)
	if err != nil {
		return nil, fmt.Errorf("lux grid: %v", err)
	}
	tempGrid, err := discretize.NewGrid(cfg.Temperature.Thresholds...)
	if err != nil {
		return nil, fmt.Errorf("temperature grid: %v", err)
	}
	disc, err := discretize.NewMulti(luxGrid, tempGrid)
	if err != nil {
		return nil, err
	}
	zone := disc.Index([]float64{cfg.Lux.Target, cfg.Temperature.Target})

	rewardConfig := reward.Config{
		Targets:       []float64{cfg.Lux.Target, cfg.Temperature.Target},
		Norms:         []float64{cfg.Lux.Norm, cfg.Temperature.Norm},
		MaxDistance:   cfg.Reward.MaxDistance,
		IdleAction:    room.Idle,
		IdleBonus:     cfg.Reward.IdleBonus,
		ActivePenalty: cfg.Reward.ActivePenalty,
	}
	if cfg.Shaping.Enabled {
		shape, err := room.ComfortZoneShaping(disc, zone,
			cfg.Shaping.ShapingConfig)
		if err != nil {
			return nil, fmt.Errorf("shaping: %v", err)
		}
		rewardConfig.Shape = shape
		rewardConfig.Bounds = cfg.Shaping.Bounds
	}
	model, err := reward.New(rewardConfig)
	if err != nil {
		return nil, fmt.Errorf("reward model: %v", err)
	}

	learn := cfg.Learning
	learn.States = disc.States()
	learn.Actions = room.NumActions

	var brain *qlearning.QLearning
	if tableIn != "" {
		table, err := qtable.LoadFile(tableIn)
		if err != nil {
			return nil, fmt.Errorf("checkpoint: %v", err)
		}
		// A checkpoint carries its own learned values.
		learn.Preseed = nil
		brain, err = qlearning.NewWithTable(table, learn, cfg.Seed)
		if err != nil {
			return nil, fmt.Errorf("agent: %v", err)
		}
		logger.Info("booted from checkpoint", "path", tableIn)
	} else {
		brain, err = qlearning.New(learn, cfg.Seed)
		if err != nil {
			return nil, fmt.Errorf("agent: %v", err)
		}
	}

	starter := room.NewUniformStarter([]r1.Interval{
		cfg.StartLux,
		cfg.StartTemp,
	}, cfg.Seed+1)
	plant, err := room.New(starter, cfg.Room, cfg.Seed+2)
	if err != nil {
		return nil, fmt.Errorf("room: %v", err)
	}

	recorder, err := history.New(cfg.HistoryCapacity)
	if err != nil {
		return nil, fmt.Errorf("history: %v", err)
	}

	ctl, err := controller.New(controller.Config{
		Period:      time.Duration(cfg.Period),
		ActionNames: room.ActionNames,
	}, brain, brain.Table(), disc, model,
		[]controller.Sensor{plant.LuxSensor(), plant.TempSensor()},
		plant, recorder, logger)
	if err != nil {
		return nil, fmt.Errorf("controller: %v", err)
	}

	return &demo{
		disc:  disc,
		zone:  zone,
		brain: brain,
		plant: plant,
		rec:   recorder,
		ctl:   ctl,
	}, nil
}

// factorLabels returns labels when they match the bin count, otherwise
// nil so the report falls back to bin indices.
func factorLabels(bins int, labels []string) []string {
	if bins == len(labels) {
		return labels
	}
	return nil
}

// printTable dumps the value table with the greedy action of each row
// highlighted.
func printTable(w io.Writer, table *qtable.Table, names []string,
	episode int) {

	fmt.Fprintf(w, "--- EPISODE %d | Q-TABLE (policy) ---\n", episode)

	header := "State |"
	for _, name := range names {
		header += fmt.Sprintf(" %-7s |", name)
	}
	rule := strings.Repeat("-", len(header))
	fmt.Fprintln(w, rule)
	fmt.Fprintln(w, header)
	fmt.Fprintln(w, rule)

	for s := 0; s < table.States(); s++ {
		best, _ := table.Best(s)
		fmt.Fprintf(w, "S%-4d |", s)
		for a := 0; a < table.Actions(); a++ {
			cell := fmt.Sprintf(" %7.2f ", table.At(s, a))
			if a == best {
				fmt.Fprintf(w, "%s|", aurora.Green(cell).Bold())
			} else {
				fmt.Fprintf(w, "%s|", cell)
			}
		}
		fmt.Fprintln(w)
	}
}

func printBanner(w io.Writer, table *qtable.Table, zone int) {
	rule := strings.Repeat("=", 72)
	fmt.Fprintln(w, rule)
	if report.Converged(table, zone, room.Idle) {
		fmt.Fprintln(w, aurora.Green(fmt.Sprintf(
			"OUTCOME: SUCCESS - idle policy enforced in the comfort "+
				"zone S%d", zone)).Bold())
	} else {
		best, value := table.Best(zone)
		fmt.Fprintln(w, aurora.Red(fmt.Sprintf(
			"OUTCOME: FAILURE - %s still dominates S%d (Q=%.2f)",
			room.ActionName(best), zone, value)).Bold())
	}
	fmt.Fprintln(w, rule)
}

func writeReport(path string, data report.Data) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := report.Write(file, data); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}
