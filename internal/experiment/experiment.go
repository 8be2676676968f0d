// Package experiment puts a brain description, a body and an integrator
// together into a runnable simulation.
package experiment

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"

	"github.com/san-kum/neurosim/internal/brain"
	"github.com/san-kum/neurosim/internal/control"
	"github.com/san-kum/neurosim/internal/dynamo"
	"github.com/san-kum/neurosim/internal/schedule"
	"github.com/san-kum/neurosim/internal/storage"
)

type Config struct {
	Body       string
	Integrator string
	InitState  []float64
	Dt         float64
	Duration   float64
	Seed       int64

	// BodyParams are applied through dynamo.Configurable.
	BodyParams map[string]float64
}

type Option func(*Experiment)

func WithLogger(l *slog.Logger) Option {
	return func(e *Experiment) { e.logger = l }
}

// WithScript replays s into the controller while the experiment runs.
func WithScript(s *schedule.Script) Option {
	return func(e *Experiment) { e.script = s }
}

// WithObserver attaches o to the simulator after the script player.
func WithObserver(o dynamo.Observer) Option {
	return func(e *Experiment) { e.observers = append(e.observers, o) }
}

type Experiment struct {
	cfg       Config
	desc      *brain.Description
	body      Body
	sys       dynamo.System
	ctrl      *control.Neural
	simulator *dynamo.Simulator
	player    *schedule.Player
	script    *schedule.Script
	observers []dynamo.Observer
	logger    *slog.Logger

	mu      sync.Mutex
	reports []control.MutationReport
}

// New builds the network for desc and wires it to a fresh body. An empty
// cfg.Body falls back to the body named in the description.
func New(reg *Registry, desc *brain.Description, cfg Config, opts ...Option) (*Experiment, error) {
	e := &Experiment{desc: desc, logger: slog.Default()}
	for _, opt := range opts {
		opt(e)
	}

	if cfg.Body == "" {
		cfg.Body = desc.Body
	}
	if cfg.Integrator == "" {
		cfg.Integrator = "rk4"
	}
	body, err := reg.Body(cfg.Body)
	if err != nil {
		return nil, err
	}
	integ, err := reg.Integrator(cfg.Integrator)
	if err != nil {
		return nil, err
	}

	sys, err := body.build(cfg.BodyParams)
	if err != nil {
		return nil, err
	}
	if len(cfg.InitState) == 0 {
		cfg.InitState = body.Initial()
	}

	net, err := brain.Build(desc)
	if err != nil {
		return nil, fmt.Errorf("build brain %s: %w", desc.Name, err)
	}
	ctrl, err := control.NewNeural(net, desc.Wiring(), sys.ControlDim(),
		control.WithStateDim(sys.StateDim()),
		control.WithLogger(e.logger),
		control.WithMutationHook(e.recordMutation),
	)
	if err != nil {
		return nil, err
	}

	e.cfg = cfg
	e.body = body
	e.sys = sys
	e.ctrl = ctrl
	e.simulator = dynamo.New(sys, integ, ctrl)
	for _, m := range body.Metrics(sys) {
		e.simulator.AddMetric(m)
	}
	if e.script != nil {
		e.player = e.script.Player(ctrl, e.logger)
		e.simulator.AddObserver(e.player)
	}
	for _, o := range e.observers {
		e.simulator.AddObserver(o)
	}
	return e, nil
}

func (e *Experiment) recordMutation(r control.MutationReport) {
	e.mu.Lock()
	e.reports = append(e.reports, r)
	e.mu.Unlock()
}

func (e *Experiment) simConfig() dynamo.Config {
	return e.cfg.sim()
}

func (c Config) sim() dynamo.Config {
	cfg := dynamo.DefaultConfig()
	cfg.Dt = c.Dt
	cfg.Duration = c.Duration
	cfg.Seed = c.Seed
	return cfg
}

// Run simulates one episode from the configured initial state.
func (e *Experiment) Run(ctx context.Context) (*dynamo.Result, error) {
	e.logger.Debug("experiment start", "brain", e.desc.Name, "body", e.cfg.Body,
		"integrator", e.cfg.Integrator, "dt", e.cfg.Dt, "duration", e.cfg.Duration)
	return e.simulator.Run(ctx, e.InitialState(), e.simConfig())
}

// Begin starts an episode to be stepped by the caller, as the live view does.
func (e *Experiment) Begin() (*dynamo.Episode, error) {
	return e.simulator.Begin(e.InitialState(), e.simConfig())
}

// Reset prepares the experiment for another episode: network activations are
// cleared and the script starts over. Mutations already applied stay.
func (e *Experiment) Reset() {
	e.ctrl.Reset()
	if e.player != nil {
		e.player.Rewind()
	}
	e.mu.Lock()
	e.reports = nil
	e.mu.Unlock()
}

func (e *Experiment) InitialState() dynamo.State {
	return dynamo.State(e.cfg.InitState).Clone()
}

func (e *Experiment) Config() Config               { return e.cfg }
func (e *Experiment) Brain() *brain.Description    { return e.desc }
func (e *Experiment) System() dynamo.System        { return e.sys }
func (e *Experiment) Controller() *control.Neural  { return e.ctrl }
func (e *Experiment) Simulator() *dynamo.Simulator { return e.simulator }
func (e *Experiment) Player() *schedule.Player     { return e.player }

// Mutations returns every mutation the controller took off its queue so far.
func (e *Experiment) Mutations() []control.MutationReport {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]control.MutationReport, len(e.reports))
	copy(out, e.reports)
	return out
}

// Journal writes the run and its mutations to j.
func (e *Experiment) Journal(ctx context.Context, j storage.Journal, meta storage.RunMetadata, fitness float64) error {
	if err := j.RecordRun(ctx, storage.RunRecord{
		ID:        meta.ID,
		Brain:     meta.Brain,
		Body:      meta.Body,
		StartedAt: meta.Timestamp,
		Fitness:   fitness,
	}); err != nil {
		return fmt.Errorf("journal run %s: %w", meta.ID, err)
	}
	for _, r := range e.Mutations() {
		payload, err := json.Marshal(r.Mutation)
		if err != nil {
			return err
		}
		rec := storage.MutationRecord{
			RunID:   meta.ID,
			Time:    r.Time,
			Op:      string(r.Mutation.Op),
			Subject: r.Mutation.Subject(),
			Payload: payload,
		}
		if r.Err != nil {
			rec.Error = r.Err.Error()
		}
		if err := j.RecordMutation(ctx, rec); err != nil {
			return fmt.Errorf("journal mutation: %w", err)
		}
	}
	return nil
}
