package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"text/tabwriter"
	"time"

	"github.com/san-kum/neurosim/internal/brain"
	"github.com/san-kum/neurosim/internal/experiment"
	"github.com/san-kum/neurosim/internal/integrators"
	"github.com/spf13/cobra"
)

func newBenchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "bench [brain]",
		Short: "benchmark a brain across integrators and timesteps",
		Args:  cobra.MaximumNArgs(1),
		RunE:  benchBrain,
	}
}

func benchBrain(cmd *cobra.Command, args []string) error {
	name := cfg.Brain
	if len(args) > 0 {
		name = args[0]
	}
	desc, err := brain.Resolve(name)
	if err != nil {
		return err
	}

	reg := experiment.NewRegistry()
	quiet := experiment.WithLogger(slog.New(slog.DiscardHandler))
	dts := []float64{0.001, 0.01, 0.05}
	const duration = 10.0

	fmt.Printf("benchmarking %s on %s\n\n", desc.Name, desc.Body)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "INTEG\tDT\tSTEPS\tTIME\tSTEPS/SEC\tNEURON-STEPS/SEC")
	for _, integ := range integrators.Names() {
		for _, dt := range dts {
			exp, err := experiment.New(reg, desc, experiment.Config{
				Integrator: integ,
				Dt:         dt,
				Duration:   duration,
				Seed:       42,
			}, quiet)
			if err != nil {
				return err
			}

			start := time.Now()
			result, err := exp.Run(context.Background())
			if err != nil {
				return err
			}
			elapsed := time.Since(start)

			steps := result.StepsTaken
			stepsPerSec := float64(steps) / elapsed.Seconds()
			fmt.Fprintf(w, "%s\t%.4fs\t%d\t%v\t%.0f\t%.0f\n",
				integ, dt, steps, elapsed.Round(time.Microsecond), stepsPerSec, stepsPerSec*float64(len(desc.Neurons)))
		}
	}
	return w.Flush()
}
