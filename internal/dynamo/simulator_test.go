package dynamo

import (
	"context"
	"errors"
	"math"
	"sync/atomic"
	"testing"
)

// decay is dx/dt = -x + u.
type decay struct{}

func (decay) Derive(x State, u Control, t float64) State {
	dx := State{-x[0]}
	if len(u) > 0 {
		dx[0] += u[0]
	}
	return dx
}
func (decay) StateDim() int   { return 1 }
func (decay) ControlDim() int { return 1 }

type euler struct{}

func (euler) Step(dyn System, x State, u Control, t, dt float64) State {
	dx := dyn.Derive(x, u, t)
	next := make(State, len(x))
	for i := range x {
		next[i] = x[i] + dt*dx[i]
	}
	return next
}

// clock outputs the time it was asked at, so tests can see tick order.
type clock struct{ calls []float64 }

func (c *clock) Compute(x State, t float64) Control {
	c.calls = append(c.calls, t)
	return Control{0}
}

type mean struct {
	count int
	sum   float64
}

func (m *mean) Name() string { return "mean" }
func (m *mean) Observe(x State, u Control, t float64) {
	m.count++
	m.sum += x[0]
}
func (m *mean) Value() float64 {
	if m.count == 0 {
		return 0
	}
	return m.sum / float64(m.count)
}
func (m *mean) Reset() { *m = mean{} }

type observerFunc func(State, Control, float64)

func (f observerFunc) OnStep(x State, u Control, t float64) { f(x, u, t) }

func TestSimulatorRun(t *testing.T) {
	ctrl := &clock{}
	sim := New(decay{}, euler{}, ctrl)

	result, err := sim.Run(context.Background(), State{1}, Config{Dt: 0.1, Duration: 1})
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}

	if len(result.States) != 11 || len(result.Times) != 11 {
		t.Errorf("expected 11 states and times, got %d/%d", len(result.States), len(result.Times))
	}
	if len(result.Controls) != 10 || result.StepsTaken != 10 {
		t.Errorf("expected 10 controls, got %d (steps %d)", len(result.Controls), result.StepsTaken)
	}
	if math.Abs(result.Times[10]-1) > 1e-12 {
		t.Errorf("final time = %v, want 1", result.Times[10])
	}

	want := math.Exp(-1)
	if got := result.Final()[0]; math.Abs(got-want) > 0.05 {
		t.Errorf("final state ~%.4f, got %.4f", want, got)
	}

	for i, tc := range ctrl.calls {
		if math.Abs(tc-float64(i)*0.1) > 1e-12 {
			t.Fatalf("controller call %d at t=%v", i, tc)
		}
	}
}

func TestSimulatorInvalidConfig(t *testing.T) {
	sim := New(decay{}, euler{}, &clock{})

	tests := []struct {
		name string
		x0   State
		cfg  Config
		want error
	}{
		{"zero dt", State{1}, Config{Dt: 0, Duration: 1}, ErrInvalidConfig},
		{"negative dt", State{1}, Config{Dt: -0.1, Duration: 1}, ErrInvalidConfig},
		{"zero duration", State{1}, Config{Dt: 0.1, Duration: 0}, ErrInvalidConfig},
		{"wrong state size", State{1, 2}, Config{Dt: 0.1, Duration: 1}, ErrDimensionMismatch},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := sim.Run(context.Background(), tt.x0, tt.cfg)
			if !errors.Is(err, tt.want) {
				t.Errorf("err = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestSimulatorMetricsAndObservers(t *testing.T) {
	sim := New(decay{}, euler{}, &clock{})
	m := &mean{}
	sim.AddMetric(m)

	var seen []float64
	sim.AddObserver(observerFunc(func(x State, u Control, t float64) {
		seen = append(seen, t)
	}))

	result, err := sim.Run(context.Background(), State{1}, Config{Dt: 0.1, Duration: 1})
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := result.Metrics["mean"]; !ok {
		t.Error("metric not found in result")
	}
	if m.count != 10 {
		t.Errorf("expected 10 observations, got %d", m.count)
	}
	if len(seen) != 10 {
		t.Errorf("observer saw %d ticks, want 10", len(seen))
	}

	// a second run starts from fresh metrics
	if _, err := sim.Run(context.Background(), State{1}, Config{Dt: 0.1, Duration: 1}); err != nil {
		t.Fatal(err)
	}
	if m.count != 10 {
		t.Errorf("metric not reset between runs: %d observations", m.count)
	}
}

type blowup struct{}

func (blowup) Derive(x State, u Control, t float64) State { return State{math.Inf(1)} }
func (blowup) StateDim() int                              { return 1 }
func (blowup) ControlDim() int                            { return 0 }

func TestSimulatorInvalidState(t *testing.T) {
	sim := New(blowup{}, euler{}, &clock{})
	cfg := DefaultConfig()
	cfg.Duration = 0.1

	result, err := sim.Run(context.Background(), State{0}, cfg)
	if err != nil {
		t.Fatal(err)
	}
	if len(result.Errors) != 1 {
		t.Fatalf("errors = %v", result.Errors)
	}
	var simErr *SimulationError
	if !errors.As(result.Errors[0], &simErr) || !errors.Is(simErr, ErrInvalidState) {
		t.Errorf("error %v is not an invalid-state SimulationError", result.Errors[0])
	}
	if simErr.Step != 0 {
		t.Errorf("failed at step %d, want 0", simErr.Step)
	}
}

func TestSimulatorCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	sim := New(decay{}, euler{}, &clock{})
	_, err := sim.Run(ctx, State{1}, Config{Dt: 0.1, Duration: 1})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}

func TestRunWithCallbackStops(t *testing.T) {
	sim := New(decay{}, euler{}, &clock{})
	n := 0
	err := sim.RunWithCallback(context.Background(), State{1}, Config{Dt: 0.1, Duration: 1}, func(State, Control, float64) bool {
		n++
		return n < 3
	})
	if err != nil {
		t.Fatal(err)
	}
	if n != 3 {
		t.Errorf("callback called %d times, want 3", n)
	}
}

func TestEpisode(t *testing.T) {
	sim := New(decay{}, euler{}, &clock{})
	ep, err := sim.Begin(State{1}, Config{Dt: 0.25, Duration: 1})
	if err != nil {
		t.Fatal(err)
	}
	if ep.Steps() != 4 || ep.Progress() != 0 {
		t.Fatalf("steps %d progress %v", ep.Steps(), ep.Progress())
	}
	for !ep.Done() {
		if _, err := ep.Step(); err != nil {
			t.Fatal(err)
		}
	}
	if ep.Progress() != 1 || ep.Time() != 1 {
		t.Errorf("progress %v time %v", ep.Progress(), ep.Time())
	}
	if _, err := ep.Step(); !errors.Is(err, ErrEpisodeDone) {
		t.Errorf("step after done: %v", err)
	}
}

func TestEnsemble(t *testing.T) {
	var built atomic.Int32
	factory := func(seed int64) (Member, error) {
		built.Add(1)
		return Member{Sim: New(decay{}, euler{}, &clock{}), X0: State{float64(seed)}}, nil
	}

	results, err := NewEnsemble(factory, 4, 100).Run(context.Background(), Config{Dt: 0.1, Duration: 1})
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 4 || built.Load() != 4 {
		t.Fatalf("results %d built %d", len(results), built.Load())
	}
	for i, r := range results {
		if r.StepsTaken != 10 {
			t.Errorf("run %d took %d steps", i, r.StepsTaken)
		}
		if r.States[0][0] != float64(100+i) {
			t.Errorf("run %d started from %v", i, r.States[0])
		}
	}
}

func TestEnsembleMemberFailure(t *testing.T) {
	errBuild := errors.New("no body")
	factory := func(seed int64) (Member, error) {
		if seed == 2 {
			return Member{}, errBuild
		}
		return Member{Sim: New(decay{}, euler{}, &clock{}), X0: State{1}}, nil
	}

	_, err := NewEnsemble(factory, 3, 0).Run(context.Background(), Config{Dt: 0.1, Duration: 1})
	if !errors.Is(err, errBuild) {
		t.Fatalf("expected build error, got %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := NewEnsemble(factory, 2, 10).Run(ctx, Config{Dt: 0.1, Duration: 1}); !errors.Is(err, context.Canceled) {
		t.Errorf("expected cancellation, got %v", err)
	}
}

func TestParallelFor(t *testing.T) {
	var total atomic.Int64
	ParallelFor(1000, 10, func(start, end int) {
		for i := start; i < end; i++ {
			total.Add(int64(i))
		}
	})
	if total.Load() != 999*1000/2 {
		t.Errorf("sum = %d", total.Load())
	}
}
