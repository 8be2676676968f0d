package control

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/san-kum/neurosim/internal/dynamo"
	"github.com/san-kum/neurosim/internal/neural"
)

// MutationReport describes one queued mutation after Compute tried to apply it.
type MutationReport struct {
	Time     float64
	Mutation neural.Mutation
	Err      error
}

type NeuralOption func(*Neural)

// WithLogger sets the logger used for applied and rejected mutations.
func WithLogger(l *slog.Logger) NeuralOption {
	return func(c *Neural) { c.logger = l }
}

// WithMutationHook registers fn to be called, on the simulation goroutine,
// for every mutation taken off the queue.
func WithMutationHook(fn func(MutationReport)) NeuralOption {
	return func(c *Neural) { c.onMutation = fn }
}

// WithStateDim bounds sensor state indices; zero skips the check.
func WithStateDim(dim int) NeuralOption {
	return func(c *Neural) { c.stateDim = dim }
}

// Neural drives a body with a neural network. It owns the network: after
// NewNeural the network must only be changed through Submit.
type Neural struct {
	net        *neural.Network
	sensors    []boundSensor
	actuators  []boundActuator
	controlDim int
	stateDim   int
	logger     *slog.Logger
	onMutation func(MutationReport)

	inputs  []float64
	outputs []float64

	mu      sync.Mutex
	pending []neural.Mutation

	// snapshot of the last tick, readable from other goroutines
	viewMu     sync.RWMutex
	lastT      float64
	lastState  []float64
	lastLayout []neural.NeuronInfo
	applied    int
	rejected   int
}

func NewNeural(net *neural.Network, w Wiring, controlDim int, opts ...NeuralOption) (*Neural, error) {
	c := &Neural{
		net:        net,
		controlDim: controlDim,
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}

	sensors, actuators, err := w.bind(net, c.stateDim, controlDim)
	if err != nil {
		return nil, fmt.Errorf("bind controller: %w", err)
	}
	c.sensors = sensors
	c.actuators = actuators
	c.inputs = make([]float64, net.NumInputs())
	c.outputs = make([]float64, net.NumOutputs())
	c.lastLayout = net.Neurons()
	c.lastState = net.CurrentState()
	return c, nil
}

// Submit queues m for the next tick. Safe for concurrent use.
func (c *Neural) Submit(m neural.Mutation) {
	c.mu.Lock()
	c.pending = append(c.pending, m)
	c.mu.Unlock()
}

// Pending reports how many mutations are waiting for the next tick.
func (c *Neural) Pending() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.pending)
}

func (c *Neural) drain() []neural.Mutation {
	c.mu.Lock()
	defer c.mu.Unlock()
	batch := c.pending
	c.pending = nil
	return batch
}

// Compute applies queued mutations, feeds sensors, steps the network once and
// maps its outputs onto the control vector.
func (c *Neural) Compute(x dynamo.State, t float64) dynamo.Control {
	batch := c.drain()
	applied, rejected := 0, 0
	for _, m := range batch {
		err := c.net.Apply(m)
		if err != nil {
			rejected++
			c.logger.Warn("mutation rejected", "op", m.Op, "subject", m.Subject(), "t", t, "err", err)
		} else {
			applied++
			c.logger.Debug("mutation applied", "op", m.Op, "subject", m.Subject(), "t", t)
		}
		if c.onMutation != nil {
			c.onMutation(MutationReport{Time: t, Mutation: m, Err: err})
		}
	}

	for i := range c.inputs {
		c.inputs[i] = 0
	}
	for _, s := range c.sensors {
		if s.State < len(x) {
			c.inputs[s.pos] = x[s.State]*s.Scale + s.Offset
		}
	}

	u := make(dynamo.Control, c.controlDim)
	if err := c.net.Feed(c.inputs); err != nil {
		c.logger.Error("feed network", "t", t, "err", err)
		return u
	}
	c.net.Step(t)
	if err := c.net.Fetch(c.outputs); err != nil {
		c.logger.Error("fetch network", "t", t, "err", err)
		return u
	}

	for _, a := range c.actuators {
		u[a.Control] += c.outputs[a.pos]*a.Scale + a.Offset
	}

	c.record(t, applied, rejected)
	return u
}

func (c *Neural) record(t float64, applied, rejected int) {
	state := c.net.CurrentState()
	var layout []neural.NeuronInfo
	if applied > 0 {
		layout = c.net.Neurons()
	}

	c.viewMu.Lock()
	c.lastT = t
	c.lastState = state
	if layout != nil {
		c.lastLayout = layout
	}
	c.applied += applied
	c.rejected += rejected
	c.viewMu.Unlock()
}

// Snapshot is a copy of the network as of the last completed tick.
type Snapshot struct {
	Time     float64
	Neurons  []neural.NeuronInfo
	State    []float64
	Applied  int
	Rejected int
}

// Snapshot returns the last tick's activations. Safe for concurrent use.
func (c *Neural) Snapshot() Snapshot {
	c.viewMu.RLock()
	defer c.viewMu.RUnlock()

	neurons := make([]neural.NeuronInfo, len(c.lastLayout))
	copy(neurons, c.lastLayout)
	state := make([]float64, len(c.lastState))
	copy(state, c.lastState)
	return Snapshot{
		Time:     c.lastT,
		Neurons:  neurons,
		State:    state,
		Applied:  c.applied,
		Rejected: c.rejected,
	}
}

// Reset clears network activations and drops queued mutations. Call it from
// the simulation goroutine between episodes.
func (c *Neural) Reset() {
	c.drain()
	c.net.Reset()
	c.record(0, 0, 0)
}
