package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"runtime"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/san-kum/neurosim/internal/experiment"
	"github.com/san-kum/neurosim/internal/optim"
	"github.com/spf13/cobra"
)

var (
	evolveMethod string
	evolveParams []string
	evolveRadius float64
	evolveEvals  int
	evolvePop    int
	evolveSteps  int
	evolveOut    string

	sweepParam string
	sweepMin   float64
	sweepMax   float64
	sweepSteps int

	mcTrials  int
	mcPerturb float64
)

func newEvolveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "evolve [brain]",
		Short: "tune brain parameters against the fitness weights",
		Args:  cobra.MaximumNArgs(1),
		RunE:  evolveBrain,
	}
	addSimFlags(cmd)
	f := cmd.Flags()
	f.StringVar(&evolveMethod, "method", "cmaes", "optimizer (cmaes, grid)")
	f.StringArrayVar(&evolveParams, "param", nil, "parameter to tune: name, or name=min:max[:default] (repeatable)")
	f.Float64Var(&evolveRadius, "radius", 0.5, "search radius for parameters given by name only")
	f.IntVar(&evolveEvals, "evals", 200, "cmaes evaluation budget")
	f.IntVar(&evolvePop, "pop", 0, "cmaes population (0 picks from dimension)")
	f.IntVar(&evolveSteps, "steps", 5, "grid points per parameter")
	f.StringVar(&evolveOut, "out", "", "write the tuned brain to a YAML file")
	return cmd
}

func newSweepCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sweep [brain]",
		Short: "score a brain across values of one parameter",
		Args:  cobra.MaximumNArgs(1),
		RunE:  sweepBrain,
	}
	addSimFlags(cmd)
	f := cmd.Flags()
	f.StringVar(&sweepParam, "param", "", "parameter to sweep, e.g. j1.phase")
	f.Float64Var(&sweepMin, "min", 0, "first value")
	f.Float64Var(&sweepMax, "max", 1, "last value")
	f.IntVar(&sweepSteps, "steps", 11, "number of values")
	cmd.MarkFlagRequired("param")
	return cmd
}

func newMonteCarloCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "montecarlo [brain]",
		Short: "run a brain from randomly perturbed initial states",
		Args:  cobra.MaximumNArgs(1),
		RunE:  monteCarlo,
	}
	addSimFlags(cmd)
	cmd.Flags().IntVar(&mcTrials, "trials", 32, "number of trials")
	cmd.Flags().Float64Var(&mcPerturb, "perturb", 0.1, "max perturbation of each state variable")
	return cmd
}

// searchSpace builds the tuning space from --param values. Bare names get a
// range centred on the brain's current value.
func searchSpace(rs *runSetup) (optim.Space, error) {
	if len(evolveParams) == 0 {
		return nil, fmt.Errorf("nothing to tune: pass at least one --param")
	}
	var names []string
	var space optim.Space
	for _, p := range evolveParams {
		if !strings.Contains(p, "=") {
			names = append(names, strings.TrimSpace(p))
			continue
		}
		spec, err := optim.ParseSpec(p)
		if err != nil {
			return nil, err
		}
		if _, err := rs.brain.Param(spec.Name); err != nil {
			return nil, err
		}
		space = append(space, spec)
	}
	auto, err := experiment.Space(rs.brain, names, evolveRadius)
	if err != nil {
		return nil, err
	}
	return append(space, auto...), nil
}

func evolveBrain(cmd *cobra.Command, args []string) error {
	rs, err := resolveRun(cmd, args)
	if err != nil {
		return err
	}
	space, err := searchSpace(rs)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	reg := experiment.NewRegistry()
	ecfg := rs.cfg.Experiment()
	objective := experiment.Objective(reg, rs.brain, ecfg, rs.weights)

	initial, _, err := experiment.Evaluate(ctx, reg, rs.brain, ecfg, rs.weights)
	if err != nil {
		return fmt.Errorf("evaluate %s: %w", rs.brain.Name, err)
	}
	fmt.Printf("tuning %s (%s) over %s\n", rs.brain.Name, evolveMethod, strings.Join(space.Names(), ", "))
	fmt.Printf("starting fitness: %.6f\n", initial)
	if passive, _, err := experiment.Baseline(ctx, reg, rs.cfg.Body, ecfg, rs.weights); err == nil {
		fmt.Printf("passive body fitness: %.6f\n", passive)
	}

	start := time.Now()
	var best map[string]float64
	var value float64
	switch evolveMethod {
	case "cmaes":
		opt := &optim.CMAES{
			Space:      space,
			Population: evolvePop,
			MaxEvals:   evolveEvals,
			Concurrent: runtime.NumCPU(),
			Seed:       uint64(rs.cfg.Seed),
			Logger:     slog.Default(),
			OnEval: func(n int, _ []float64, v float64) {
				if n%20 == 0 {
					slog.Info("evolve", "evals", n, "fitness", -v)
				}
			},
		}
		res, err := opt.Minimize(ctx, objective)
		if err != nil && res == nil {
			return err
		}
		best, value = space.Map(res.Best), res.Value
		fmt.Printf("evaluations: %d (%s)\n", res.Evals, res.Status)
	case "grid":
		best, value, err = optim.NewGridSearchFromSpace(space, evolveSteps).Search(ctx, objective)
		if err != nil && best == nil {
			return err
		}
	default:
		return fmt.Errorf("unknown method: %s", evolveMethod)
	}
	fmt.Printf("completed in %v\n\n", time.Since(start))

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "PARAM\tBEFORE\tAFTER")
	for _, name := range space.Names() {
		before, _ := rs.brain.Param(name)
		fmt.Fprintf(w, "%s\t%.4f\t%.4f\n", name, before, best[name])
	}
	if err := w.Flush(); err != nil {
		return err
	}
	fmt.Printf("\nfitness: %.6f -> %.6f\n", initial, -value)

	if evolveOut == "" {
		return nil
	}
	tuned, err := experiment.Apply(rs.brain, best)
	if err != nil {
		return err
	}
	out, err := tuned.EncodeYAML()
	if err != nil {
		return err
	}
	if err := os.WriteFile(evolveOut, out, 0644); err != nil {
		return err
	}
	fmt.Printf("wrote %s\n", evolveOut)
	return nil
}

func sweepBrain(cmd *cobra.Command, args []string) error {
	rs, err := resolveRun(cmd, args)
	if err != nil {
		return err
	}

	sweep := &experiment.ParameterSweep{
		Param:   sweepParam,
		Min:     sweepMin,
		Max:     sweepMax,
		Steps:   sweepSteps,
		Weights: rs.weights,
	}
	results, err := sweep.Run(context.Background(), experiment.NewRegistry(), rs.brain, rs.cfg.Experiment())
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "%s\tFITNESS\n", strings.ToUpper(sweepParam))
	for _, r := range results {
		if r.Err != nil {
			fmt.Fprintf(w, "%.4f\t%v\n", r.Value, r.Err)
			continue
		}
		fmt.Fprintf(w, "%.4f\t%.6f\n", r.Value, r.Fitness)
	}
	return w.Flush()
}

func monteCarlo(cmd *cobra.Command, args []string) error {
	rs, err := resolveRun(cmd, args)
	if err != nil {
		return err
	}

	mc := &experiment.MonteCarlo{
		Trials:       mcTrials,
		Perturbation: mcPerturb,
		Seed:         rs.cfg.Seed,
		Weights:      rs.weights,
	}
	results, err := mc.Run(context.Background(), experiment.NewRegistry(), rs.brain, rs.cfg.Experiment())
	if err != nil {
		return err
	}

	stable, unstable := experiment.Stats(results)
	best, worst := results[0].Fitness, results[0].Fitness
	sum := 0.0
	for _, r := range results {
		best = max(best, r.Fitness)
		worst = min(worst, r.Fitness)
		sum += r.Fitness
	}
	fmt.Printf("trials: %d (%d stable, %d unstable)\n", len(results), stable, unstable)
	fmt.Printf("fitness: mean %.6f, best %.6f, worst %.6f\n", sum/float64(len(results)), best, worst)
	return nil
}
