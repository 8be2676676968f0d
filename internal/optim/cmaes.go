package optim

import (
	"context"
	"errors"
	"log/slog"
	"math"
	"math/rand/v2"
	"sync"

	"gonum.org/v1/gonum/optimize"
)

// CMAES tunes a Space with covariance matrix adaptation. The search runs in
// the normalized [0,1] space; candidates are clamped to bounds before they
// reach the objective, and the optimizer sees a quadratic penalty for the
// distance it strayed outside the box.
type CMAES struct {
	Space        Space
	Population   int
	InitStepSize float64
	MaxEvals     int
	Concurrent   int
	Seed         uint64
	Logger       *slog.Logger

	// OnEval, when set, sees every evaluation in completion order.
	OnEval func(eval int, params []float64, value float64)
}

const boundPenalty = 1e3

type Result struct {
	Best   []float64
	Value  float64
	Evals  int
	Status string
}

// Minimize runs until MaxEvals, convergence or ctx cancellation. The best
// candidate seen is returned even when the run is cut short.
func (c *CMAES) Minimize(ctx context.Context, objective Objective) (*Result, error) {
	dim := c.Space.Dim()
	if dim == 0 {
		return nil, errors.New("cmaes: empty parameter space")
	}
	logger := c.Logger
	if logger == nil {
		logger = slog.Default()
	}

	pop := c.Population
	if pop == 0 {
		pop = 4 + int(3*math.Log(float64(dim)))
	}
	step := c.InitStepSize
	if step == 0 {
		step = 0.3
	}

	var (
		mu    sync.Mutex
		evals int
		best  = math.Inf(1)
		bestX []float64
	)

	problem := optimize.Problem{
		Func: func(x []float64) float64 {
			raw := c.Space.Clamp(c.Space.Denormalize(x))
			penalty := 0.0
			for _, v := range x {
				d := v - min(max(v, 0), 1)
				penalty += d * d
			}
			val, err := objective(ctx, c.Space.Map(raw))
			if err != nil || math.IsNaN(val) {
				val = math.Inf(1)
			}

			mu.Lock()
			evals++
			n := evals
			if val < best {
				best = val
				bestX = raw
			}
			mu.Unlock()

			if c.OnEval != nil {
				c.OnEval(n, raw, val)
			}
			return val + boundPenalty*penalty
		},
	}

	settings := &optimize.Settings{
		FuncEvaluations: c.MaxEvals,
		Concurrent:      c.Concurrent,
		Recorder:        ctxRecorder{ctx},
	}
	method := &optimize.CmaEsChol{
		InitStepSize: step,
		Population:   pop,
		Src:          rand.NewPCG(c.Seed, 0x9e3779b97f4a7c15),
	}

	init := c.Space.Normalize(c.Space.Defaults())
	res, err := optimize.Minimize(problem, init, settings, method)
	if ctxErr := ctx.Err(); ctxErr != nil {
		err = ctxErr
	} else if err != nil {
		logger.Warn("cmaes ended early", "err", err)
		err = nil
	}

	out := &Result{Best: bestX, Value: best, Evals: evals}
	if res != nil {
		out.Status = res.Status.String()
	}
	if out.Best == nil {
		out.Best = c.Space.Defaults()
	}
	return out, err
}

// ctxRecorder stops the optimizer once ctx is done.
type ctxRecorder struct{ ctx context.Context }

func (r ctxRecorder) Init() error { return r.ctx.Err() }

func (r ctxRecorder) Record(*optimize.Location, optimize.Operation, *optimize.Stats) error {
	return r.ctx.Err()
}
