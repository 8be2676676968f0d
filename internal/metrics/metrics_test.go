package metrics

import (
	"math"
	"testing"

	"github.com/san-kum/neurosim/internal/dynamo"
	"github.com/san-kum/neurosim/internal/physics"
)

func TestEnergyDrift(t *testing.T) {
	p := physics.NewPendulum()
	m := NewEnergyDrift(p)

	m.Observe(dynamo.State{math.Pi / 4, 0}, nil, 0)
	m.Observe(dynamo.State{math.Pi / 4, 0}, nil, 0.01)
	if m.Value() != 0 {
		t.Errorf("expected no drift, got %g", m.Value())
	}

	m.Observe(dynamo.State{math.Pi / 2, 0}, nil, 0.02)
	e0 := p.Energy(dynamo.State{math.Pi / 4, 0})
	e1 := p.Energy(dynamo.State{math.Pi / 2, 0})
	want := math.Abs(e1-e0) / e0
	if math.Abs(m.Value()-want) > 1e-12 {
		t.Errorf("expected drift %g, got %g", want, m.Value())
	}

	m.Reset()
	if m.Value() != 0 {
		t.Error("expected zero drift after reset")
	}
}

func TestEnergyDriftIgnoresNonHamiltonian(t *testing.T) {
	m := NewEnergyDrift(physics.NewCrawler(3))
	m.Observe(make(dynamo.State, 8), nil, 0)
	m.Observe(dynamo.State{5, 1, 1, 1, 1, 1, 1, 1}, nil, 1)
	if m.Value() != 0 {
		t.Errorf("expected 0, got %g", m.Value())
	}
}

func TestUpright(t *testing.T) {
	m := NewUpright(2, 0.2)
	for _, theta := range []float64{0, 0.1, -0.15, 0.3, -0.5} {
		m.Observe(dynamo.State{0, 0, theta, 0}, nil, 0)
	}
	if got := m.Value(); math.Abs(got-0.6) > 1e-12 {
		t.Errorf("expected 0.6, got %g", got)
	}
}

func TestDisplacement(t *testing.T) {
	m := NewDisplacement(0)
	for i, x := range []float64{2, 3, 1, 4.5} {
		m.Observe(dynamo.State{x}, nil, float64(i))
	}
	if got := m.Value(); got != 2.5 {
		t.Errorf("expected 2.5, got %g", got)
	}
	m.Reset()
	m.Observe(dynamo.State{-1}, nil, 0)
	if got := m.Value(); got != 0 {
		t.Errorf("expected 0 after reset, got %g", got)
	}
}

func TestOutputRange(t *testing.T) {
	m := NewOutputRange(1, 1.0)
	m.Observe(nil, dynamo.Control{0, 100}, 0.5)
	for i := 0; i < 100; i++ {
		tm := 1 + float64(i)*0.01
		m.Observe(nil, dynamo.Control{0, 0.5 + 0.3*math.Sin(2*math.Pi*tm)}, tm)
	}
	if got := m.Value(); math.Abs(got-0.6) > 1e-3 {
		t.Errorf("expected peak-to-peak 0.6, got %g", got)
	}
	if sd := m.StdDev(); sd <= 0.2 || sd >= 0.22 {
		t.Errorf("expected stddev near 0.3/sqrt(2), got %g", sd)
	}
}

func TestControlEffort(t *testing.T) {
	m := NewControlEffort()
	m.Observe(nil, dynamo.Control{1, -2}, 0)
	m.Observe(nil, dynamo.Control{0, 1}, 0.1)
	if got := m.Value(); got != 2 {
		t.Errorf("expected 2, got %g", got)
	}
	if got := m.Peak(); got != 3 {
		t.Errorf("expected peak 3, got %g", got)
	}
	m.Reset()
	if m.Value() != 0 || m.Peak() != 0 {
		t.Error("expected zero effort after reset")
	}
}

func TestFitness(t *testing.T) {
	values := map[string]float64{"displacement": 4, "control_effort": 2, "upright": 1}

	tests := []struct {
		name    string
		weights Weights
		want    float64
		wantErr bool
	}{
		{"single", Weights{"displacement": 1}, 4, false},
		{"penalty", Weights{"displacement": 1, "control_effort": -0.5}, 3, false},
		{"missing", Weights{"speed": 1}, 0, true},
		{"empty", Weights{}, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Fitness(values, tt.weights)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("expected %g, got %g", tt.want, got)
			}
		})
	}

	if _, err := Fitness(map[string]float64{"x": math.NaN()}, Weights{"x": 1}); err == nil {
		t.Error("expected error for NaN metric")
	}
}

func TestParseWeights(t *testing.T) {
	w, err := ParseWeights("displacement=1, control_effort=-0.1")
	if err != nil {
		t.Fatal(err)
	}
	if w["displacement"] != 1 || w["control_effort"] != -0.1 {
		t.Errorf("unexpected weights %v", w)
	}
	if _, err := ParseWeights("displacement"); err == nil {
		t.Error("expected error without '='")
	}
	if _, err := ParseWeights("x=abc"); err == nil {
		t.Error("expected error for bad number")
	}
}
