package integrators

import (
	"github.com/san-kum/neurosim/internal/dynamo"
	"gonum.org/v1/gonum/floats"
)

// Euler is the explicit first-order method, kept as a cheap baseline for
// checking that a tuned gait does not depend on integration error.
type Euler struct{}

func NewEuler() *Euler {
	return &Euler{}
}

func (Euler) Step(dyn dynamo.System, x dynamo.State, u dynamo.Control, t, dt float64) dynamo.State {
	next := x.Clone()
	floats.AddScaled(next, dt, dyn.Derive(x, u, t))
	return next
}
