package integrators

import (
	"testing"

	"github.com/san-kum/neurosim/internal/dynamo"
)

// benchLimbs mimics a chain of servo-driven joints: angle, velocity pairs.
type benchLimbs struct{ joints int }

func (b *benchLimbs) StateDim() int   { return 2 * b.joints }
func (b *benchLimbs) ControlDim() int { return b.joints }
func (b *benchLimbs) Derive(x dynamo.State, u dynamo.Control, t float64) dynamo.State {
	dx := make(dynamo.State, len(x))
	for i := 0; i < b.joints; i++ {
		dx[2*i] = x[2*i+1]
		dx[2*i+1] = 20*(u[i]-x[2*i]) - 2*x[2*i+1]
	}
	return dx
}

func benchIntegrator(b *testing.B, integ dynamo.Integrator, joints int) {
	dyn := &benchLimbs{joints: joints}
	x := make(dynamo.State, dyn.StateDim())
	u := make(dynamo.Control, joints)
	for i := range u {
		u[i] = 0.3
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		x = integ.Step(dyn, x, u, 0, 0.01)
	}
}

func BenchmarkEuler(b *testing.B)           { benchIntegrator(b, NewEuler(), 1) }
func BenchmarkRK4(b *testing.B)             { benchIntegrator(b, NewRK4(), 1) }
func BenchmarkRK4_EightJoints(b *testing.B) { benchIntegrator(b, NewRK4(), 8) }
