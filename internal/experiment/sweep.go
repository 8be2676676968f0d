package experiment

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"

	"github.com/san-kum/neurosim/internal/brain"
	"github.com/san-kum/neurosim/internal/dynamo"
	"github.com/san-kum/neurosim/internal/metrics"
)

// ParameterSweep runs a brain across evenly spaced values of one parameter.
type ParameterSweep struct {
	Param    string
	Min, Max float64
	Steps    int
	Weights  metrics.Weights
}

type SweepResult struct {
	Value   float64
	Fitness float64
	Metrics map[string]float64
	Err     error
}

// Run evaluates the points of the sweep in parallel. A point whose run fails
// is reported with Err set; the sweep carries on.
func (s *ParameterSweep) Run(ctx context.Context, reg *Registry, desc *brain.Description, cfg Config) ([]SweepResult, error) {
	if s.Steps < 2 {
		return nil, fmt.Errorf("sweep %s: need at least 2 steps", s.Param)
	}
	if _, err := desc.Param(s.Param); err != nil {
		return nil, err
	}

	step := (s.Max - s.Min) / float64(s.Steps-1)
	results := make([]SweepResult, s.Steps)
	dynamo.ParallelFor(s.Steps, 1, func(start, end int) {
		for i := start; i < end; i++ {
			v := s.Min + float64(i)*step
			r := SweepResult{Value: v}
			if err := ctx.Err(); err != nil {
				r.Err = err
				results[i] = r
				continue
			}
			candidate, err := Apply(desc, map[string]float64{s.Param: v})
			if err == nil {
				r.Fitness, r.Metrics, err = Evaluate(ctx, reg, candidate, cfg, s.Weights)
			}
			r.Err = err
			results[i] = r
			slog.Debug("sweep point", "param", s.Param, "value", v, "fitness", r.Fitness, "err", err)
		}
	})
	return results, ctx.Err()
}

// MonteCarlo runs a brain from randomly perturbed initial states to see how
// robust its behaviour is.
type MonteCarlo struct {
	Trials       int
	Perturbation float64
	Seed         int64
	Weights      metrics.Weights
}

type TrialResult struct {
	Trial     int
	InitState dynamo.State
	Fitness   float64
	Stable    bool
}

// Run executes the trials in parallel. Each trial gets its own network and
// body and draws its perturbation from Seed+trial.
func (m *MonteCarlo) Run(ctx context.Context, reg *Registry, desc *brain.Description, cfg Config) ([]TrialResult, error) {
	if m.Trials < 1 {
		return nil, fmt.Errorf("monte carlo: need at least one trial")
	}
	body, err := reg.Body(bodyName(desc, cfg))
	if err != nil {
		return nil, err
	}
	base := cfg.InitState
	if len(base) == 0 {
		base = body.Initial()
	}

	factory := func(seed int64) (dynamo.Member, error) {
		rng := rand.New(rand.NewSource(seed))
		x0 := make(dynamo.State, len(base))
		for i, v := range base {
			x0[i] = v + (rng.Float64()-0.5)*2*m.Perturbation
		}
		c := cfg
		c.InitState = x0
		exp, err := New(reg, desc, c, WithLogger(slog.New(slog.DiscardHandler)))
		if err != nil {
			return dynamo.Member{}, err
		}
		return dynamo.Member{Sim: exp.Simulator(), X0: x0}, nil
	}

	simCfg := dynamo.DefaultConfig()
	simCfg.Dt = cfg.Dt
	simCfg.Duration = cfg.Duration

	results, err := dynamo.NewEnsemble(factory, m.Trials, m.Seed).Run(ctx, simCfg)
	if err != nil {
		return nil, err
	}

	trials := make([]TrialResult, len(results))
	for i, result := range results {
		r := TrialResult{Trial: i, InitState: result.States[0]}
		if len(result.Errors) == 0 {
			final := result.Final()
			r.Stable = final.IsValid() && final.Norm() < 1e6
			r.Fitness, _ = metrics.Fitness(result.Metrics, m.Weights)
		}
		trials[i] = r
	}
	return trials, nil
}

// Stats counts stable and unstable trials.
func Stats(results []TrialResult) (stable, unstable int) {
	for _, r := range results {
		if r.Stable {
			stable++
		} else {
			unstable++
		}
	}
	return
}

func bodyName(desc *brain.Description, cfg Config) string {
	if cfg.Body != "" {
		return cfg.Body
	}
	return desc.Body
}
