package dynamo

import (
	"context"
	"fmt"
)

type Simulator struct {
	dyn        System
	integrator Integrator
	controller Controller
	metrics    []Metric
	observers  []Observer
}

func New(dyn System, integrator Integrator, controller Controller) *Simulator {
	return &Simulator{
		dyn:        dyn,
		integrator: integrator,
		controller: controller,
		metrics:    make([]Metric, 0),
		observers:  make([]Observer, 0),
	}
}

func (s *Simulator) AddMetric(m Metric)     { s.metrics = append(s.metrics, m) }
func (s *Simulator) AddObserver(o Observer) { s.observers = append(s.observers, o) }

func (s *Simulator) System() System         { return s.dyn }
func (s *Simulator) Controller() Controller { return s.controller }

// Run advances the body for cfg.Duration and records every tick.
func (s *Simulator) Run(ctx context.Context, x0 State, cfg Config) (*Result, error) {
	ep, err := s.Begin(x0, cfg)
	if err != nil {
		return nil, err
	}

	steps := ep.steps
	result := &Result{
		States:   make([]State, 0, steps+1),
		Controls: make([]Control, 0, steps),
		Times:    make([]float64, 0, steps+1),
		Metrics:  make(map[string]float64),
		Errors:   make([]error, 0),
	}
	result.States = append(result.States, ep.State())
	result.Times = append(result.Times, ep.Time())

	for !ep.Done() {
		select {
		case <-ctx.Done():
			return result, ctx.Err()
		default:
		}

		u, err := ep.Step()
		if err != nil {
			result.Errors = append(result.Errors, err)
			break
		}
		result.StepsTaken++
		result.Controls = append(result.Controls, u)
		result.States = append(result.States, ep.State())
		result.Times = append(result.Times, ep.Time())
	}

	for _, m := range s.metrics {
		result.Metrics[m.Name()] = m.Value()
	}
	return result, nil
}

// RunWithCallback runs without recording; callback returning false stops the run.
func (s *Simulator) RunWithCallback(ctx context.Context, x0 State, cfg Config, callback func(State, Control, float64) bool) error {
	ep, err := s.Begin(x0, cfg)
	if err != nil {
		return err
	}
	for !ep.Done() {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		t := ep.Time()
		x := ep.State()
		u, err := ep.Step()
		if err != nil {
			return err
		}
		if !callback(x, u, t) {
			return nil
		}
	}
	return nil
}

func (s *Simulator) validateConfig(x0 State, cfg Config) error {
	if cfg.Dt <= 0 {
		return fmt.Errorf("%w: dt must be positive, got %f", ErrInvalidConfig, cfg.Dt)
	}
	if cfg.Duration <= 0 {
		return fmt.Errorf("%w: duration must be positive, got %f", ErrInvalidConfig, cfg.Duration)
	}
	if dim := s.dyn.StateDim(); dim > 0 && len(x0) != dim {
		return fmt.Errorf("%w: initial state has %d values, system expects %d", ErrDimensionMismatch, len(x0), dim)
	}
	return nil
}

// Episode is a single run advanced one tick at a time. The live view and Run
// both drive the body through it.
type Episode struct {
	sim   *Simulator
	cfg   Config
	x     State
	t     float64
	step  int
	steps int
}

// Begin validates cfg, resets metrics and returns an episode positioned at t=0.
func (s *Simulator) Begin(x0 State, cfg Config) (*Episode, error) {
	if err := s.validateConfig(x0, cfg); err != nil {
		return nil, err
	}
	for _, m := range s.metrics {
		m.Reset()
	}
	return &Episode{
		sim:   s,
		cfg:   cfg,
		x:     x0.Clone(),
		steps: int(cfg.Duration/cfg.Dt + 0.5),
	}, nil
}

func (e *Episode) State() State  { return e.x.Clone() }
func (e *Episode) Time() float64 { return e.t }
func (e *Episode) Done() bool    { return e.step >= e.steps }
func (e *Episode) Steps() int    { return e.steps }

// Progress reports the fraction of the episode already simulated.
func (e *Episode) Progress() float64 {
	if e.steps == 0 {
		return 1
	}
	return float64(e.step) / float64(e.steps)
}

// Step runs one tick: controller, metrics and observers, then integration.
func (e *Episode) Step() (Control, error) {
	if e.Done() {
		return nil, ErrEpisodeDone
	}
	s := e.sim

	u := s.controller.Compute(e.x, e.t)
	if u == nil {
		u = make(Control, s.dyn.ControlDim())
	} else {
		u = u.Clone()
	}

	for _, m := range s.metrics {
		m.Observe(e.x, u, e.t)
	}
	for _, obs := range s.observers {
		obs.OnStep(e.x, u, e.t)
	}

	next := s.integrator.Step(s.dyn, e.x, u, e.t, e.cfg.Dt)
	if e.cfg.ValidateState && !next.IsValid() {
		return u, &SimulationError{Step: e.step, Time: e.t, State: e.x.Clone(), Wrapped: ErrInvalidState}
	}

	e.x = next
	e.step++
	e.t = float64(e.step) * e.cfg.Dt
	return u, nil
}
