package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sort"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/san-kum/neurosim/internal/experiment"
	"github.com/san-kum/neurosim/internal/metrics"
	"github.com/san-kum/neurosim/internal/storage"
	"github.com/san-kum/neurosim/internal/viz"
	"github.com/spf13/cobra"
)

func newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run [brain]",
		Short: "run a brain on its body and store the trace",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runSimulation,
	}
	addSimFlags(cmd)
	return cmd
}

func newLiveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "live [brain]",
		Short: "run a brain with live visualization and mutation keys",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runLive,
	}
	addSimFlags(cmd)
	return cmd
}

func buildExperiment(rs *runSetup, opts ...experiment.Option) (*experiment.Experiment, error) {
	if rs.script != nil {
		opts = append(opts, experiment.WithScript(rs.script))
	}
	return experiment.New(experiment.NewRegistry(), rs.brain, rs.cfg.Experiment(), opts...)
}

func runSimulation(cmd *cobra.Command, args []string) error {
	rs, err := resolveRun(cmd, args)
	if err != nil {
		return err
	}

	st := storage.New(rs.cfg.Storage.Dir)
	if err := st.Init(); err != nil {
		return err
	}
	journal, err := storage.NewJournal(rs.cfg.Storage.Journal, rs.cfg.Storage.JournalPath)
	if err != nil {
		return err
	}
	defer storage.CloseIfSupported(journal)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if err := journal.Init(ctx); err != nil {
		return err
	}

	exp, err := buildExperiment(rs)
	if err != nil {
		return err
	}
	ecfg := exp.Config()

	fmt.Printf("running %s on %s...\n", rs.brain.Name, ecfg.Body)
	start := time.Now()
	result, err := exp.Run(ctx)
	if err != nil {
		return err
	}
	elapsed := time.Since(start)

	fitness, err := metrics.Fitness(result.Metrics, rs.weights)
	if err != nil {
		slog.Warn("fitness unavailable", "err", err)
	}

	meta := storage.RunMetadata{
		ID:         storage.NewRunID(ecfg.Body),
		Brain:      rs.brain.Name,
		Body:       ecfg.Body,
		Timestamp:  start,
		Seed:       ecfg.Seed,
		Dt:         ecfg.Dt,
		Duration:   ecfg.Duration,
		Integrator: ecfg.Integrator,
		Mutations:  len(exp.Mutations()),
	}
	runID, err := st.Save(meta, result)
	if err != nil {
		return err
	}
	meta.ID = runID
	if err := exp.Journal(ctx, journal, meta, fitness); err != nil {
		return err
	}

	fmt.Printf("completed in %v\n", elapsed)
	fmt.Printf("run id: %s\n", runID)
	fmt.Printf("steps: %d\n", result.StepsTaken)
	if snap := exp.Controller().Snapshot(); snap.Applied+snap.Rejected > 0 {
		fmt.Printf("mutations: %d applied, %d rejected\n", snap.Applied, snap.Rejected)
	}
	for _, e := range result.Errors {
		fmt.Printf("warning: %v\n", e)
	}

	fmt.Println("\nmetrics:")
	names := make([]string, 0, len(result.Metrics))
	for name := range result.Metrics {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Printf("  %s: %.6f\n", name, result.Metrics[name])
	}
	fmt.Printf("\nfitness: %.6f\n", fitness)
	return nil
}

func runLive(cmd *cobra.Command, args []string) error {
	rs, err := resolveRun(cmd, args)
	if err != nil {
		return err
	}

	// the TUI owns the terminal, keep mutation logs out of it
	quiet := slog.New(slog.DiscardHandler)
	exp, err := buildExperiment(rs, experiment.WithLogger(quiet))
	if err != nil {
		return err
	}

	m, err := viz.NewMonitor(exp)
	if err != nil {
		return err
	}
	p := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return err
	}
	return nil
}
