package physics

import (
	"math"
	"testing"

	"github.com/san-kum/neurosim/internal/dynamo"
	"github.com/san-kum/neurosim/internal/integrators"
)

func simulate(dyn dynamo.System, x dynamo.State, dt, duration float64, ctrl func(t float64) dynamo.Control) dynamo.State {
	integ := integrators.NewRK4()
	steps := int(duration/dt + 0.5)
	for i := 0; i < steps; i++ {
		t := float64(i) * dt
		x = integ.Step(dyn, x, ctrl(t), t, dt)
	}
	return x
}

// travellingWave drives joint i with a sine lagging joint i-1 by lag radians.
func travellingWave(joints int, amp, period, lag float64) func(float64) dynamo.Control {
	return func(t float64) dynamo.Control {
		u := make(dynamo.Control, joints)
		for i := range u {
			u[i] = amp * math.Sin(2*math.Pi/period*t-float64(i)*lag)
		}
		return u
	}
}

func TestCrawlerDirection(t *testing.T) {
	tests := []struct {
		name    string
		lag     float64
		forward bool
	}{
		{"head to tail", math.Pi / 2, true},
		{"tail to head", -math.Pi / 2, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewCrawler(3)
			x := simulate(c, make(dynamo.State, c.StateDim()), 0.01, 10, travellingWave(3, 0.5, 1, tt.lag))
			if tt.forward && x[0] <= 0.1 {
				t.Errorf("expected forward travel, got x=%.4f", x[0])
			}
			if !tt.forward && x[0] >= -0.1 {
				t.Errorf("expected backward travel, got x=%.4f", x[0])
			}
		})
	}
}

func TestCrawlerStillWithoutWave(t *testing.T) {
	c := NewCrawler(4)
	hold := func(float64) dynamo.Control { return dynamo.Control{0.3, 0.3, 0.3, 0.3} }
	x := simulate(c, make(dynamo.State, c.StateDim()), 0.01, 5, hold)

	if math.Abs(x[0]) > 1e-6 {
		t.Errorf("in-phase joints should not move the body, got x=%.6f", x[0])
	}
	for i := 0; i < c.Joints; i++ {
		if math.Abs(x[c.JointIndex(i)]-0.3) > 1e-3 {
			t.Errorf("joint %d did not settle on target: %.4f", i, x[c.JointIndex(i)])
		}
	}
}

func TestPendulumDampingDissipates(t *testing.T) {
	p := NewPendulum()
	x0 := dynamo.State{0.5, 0}
	x := simulate(p, x0, 0.01, 5, func(float64) dynamo.Control { return dynamo.Control{0} })
	if p.Energy(x) >= p.Energy(x0) {
		t.Errorf("energy should decay: %.4f -> %.4f", p.Energy(x0), p.Energy(x))
	}
}

func TestTorqueLimit(t *testing.T) {
	p := NewPendulum()
	a := p.Derive(dynamo.State{0, 0}, dynamo.Control{1000}, 0)
	if math.Abs(a[1]-p.MaxTorque) > 1e-12 {
		t.Errorf("expected acceleration clamped to %.1f, got %.4f", p.MaxTorque, a[1])
	}
}

func TestCartPoleUprightEquilibrium(t *testing.T) {
	c := NewCartPole()
	dx := c.Derive(dynamo.State{0, 0, 0, 0}, nil, 0)
	for i, v := range dx {
		if v != 0 {
			t.Errorf("dx[%d] = %g at rest upright", i, v)
		}
	}

	x := simulate(c, dynamo.State{0, 0, 0.05, 0}, 0.01, 1, func(float64) dynamo.Control { return nil })
	if x[2] <= 0.05 {
		t.Errorf("unforced pole should fall, theta=%.4f", x[2])
	}
}

func TestSetParam(t *testing.T) {
	bodies := []dynamo.Configurable{NewPendulum(), NewCartPole(), NewCrawler(3)}
	for _, b := range bodies {
		for name := range b.GetParams() {
			if err := b.SetParam(name, 2.5); err != nil {
				t.Errorf("%T.SetParam(%s): %v", b, name, err)
			}
			if got := b.GetParams()[name]; got != 2.5 {
				t.Errorf("%T %s: expected 2.5, got %g", b, name, got)
			}
		}
		if err := b.SetParam("warp", 1); err == nil {
			t.Errorf("%T: expected error for unknown param", b)
		}
	}
}
