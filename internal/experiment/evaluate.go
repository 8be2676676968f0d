package experiment

import (
	"context"
	"fmt"
	"log/slog"
	"math"

	"github.com/san-kum/neurosim/internal/brain"
	"github.com/san-kum/neurosim/internal/control"
	"github.com/san-kum/neurosim/internal/dynamo"
	"github.com/san-kum/neurosim/internal/metrics"
	"github.com/san-kum/neurosim/internal/optim"
)

// Evaluate runs desc once and scores the result. Higher is better.
func Evaluate(ctx context.Context, reg *Registry, desc *brain.Description, cfg Config, w metrics.Weights) (float64, map[string]float64, error) {
	exp, err := New(reg, desc, cfg, WithLogger(slog.New(slog.DiscardHandler)))
	if err != nil {
		return 0, nil, err
	}
	result, err := exp.Run(ctx)
	if err != nil {
		return 0, nil, err
	}
	if len(result.Errors) > 0 {
		return 0, result.Metrics, fmt.Errorf("run diverged: %w", result.Errors[0])
	}
	score, err := metrics.Fitness(result.Metrics, w)
	return score, result.Metrics, err
}

// Baseline runs the named body with every actuator held at zero and scores it
// with w. A brain whose fitness does not beat the baseline adds nothing.
func Baseline(ctx context.Context, reg *Registry, body string, cfg Config, w metrics.Weights) (float64, map[string]float64, error) {
	b, err := reg.Body(body)
	if err != nil {
		return 0, nil, err
	}
	if cfg.Integrator == "" {
		cfg.Integrator = "rk4"
	}
	integ, err := reg.Integrator(cfg.Integrator)
	if err != nil {
		return 0, nil, err
	}
	sys, err := b.build(cfg.BodyParams)
	if err != nil {
		return 0, nil, err
	}
	x0 := cfg.InitState
	if len(x0) == 0 {
		x0 = b.Initial()
	}

	sim := dynamo.New(sys, integ, control.NewHold(make(dynamo.Control, sys.ControlDim())))
	for _, m := range b.Metrics(sys) {
		sim.AddMetric(m)
	}
	result, err := sim.Run(ctx, x0, cfg.sim())
	if err != nil {
		return 0, nil, err
	}
	score, err := metrics.Fitness(result.Metrics, w)
	return score, result.Metrics, err
}

// Objective turns fitness into an optimizer objective over named brain
// parameters. Each candidate runs on its own copy of base; the sign is
// flipped so minimizing the objective maximizes fitness.
func Objective(reg *Registry, base *brain.Description, cfg Config, w metrics.Weights) optim.Objective {
	return func(ctx context.Context, params map[string]float64) (float64, error) {
		desc, err := Apply(base, params)
		if err != nil {
			return 0, err
		}
		score, _, err := Evaluate(ctx, reg, desc, cfg, w)
		if err != nil {
			return 0, err
		}
		return -score, nil
	}
}

// Apply returns a copy of base with params set.
func Apply(base *brain.Description, params map[string]float64) (*brain.Description, error) {
	desc := base.Clone()
	for name, v := range params {
		if err := desc.SetParam(name, v); err != nil {
			return nil, err
		}
	}
	return desc, nil
}

// Space builds an optimizer space for names, centred on their current values
// in desc. Each bound sits radius*max(1, |v|) away from the value v.
func Space(desc *brain.Description, names []string, radius float64) (optim.Space, error) {
	space := make(optim.Space, 0, len(names))
	for _, name := range names {
		v, err := desc.Param(name)
		if err != nil {
			return nil, err
		}
		r := radius * max(1, math.Abs(v))
		space = append(space, optim.ParamSpec{Name: name, Min: v - r, Max: v + r, Default: v})
	}
	return space, nil
}
