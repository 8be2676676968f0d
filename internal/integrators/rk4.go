package integrators

import (
	"github.com/san-kum/neurosim/internal/dynamo"
	"gonum.org/v1/gonum/floats"
)

// RK4 is the classical fourth-order Runge-Kutta method. The control is held
// constant across the four stages: the controller runs once per tick.
// Stage buffers are reused, so an RK4 must not be shared across goroutines.
type RK4 struct {
	k [4]dynamo.State
	y dynamo.State
}

func NewRK4() *RK4 {
	return &RK4{}
}

func (r *RK4) grow(n int) {
	if len(r.y) == n {
		return
	}
	for i := range r.k {
		r.k[i] = make(dynamo.State, n)
	}
	r.y = make(dynamo.State, n)
}

func (r *RK4) Step(dyn dynamo.System, x dynamo.State, u dynamo.Control, t, dt float64) dynamo.State {
	r.grow(len(x))
	half := dt / 2

	copy(r.k[0], dyn.Derive(x, u, t))
	floats.AddScaledTo(r.y, x, half, r.k[0])
	copy(r.k[1], dyn.Derive(r.y, u, t+half))
	floats.AddScaledTo(r.y, x, half, r.k[1])
	copy(r.k[2], dyn.Derive(r.y, u, t+half))
	floats.AddScaledTo(r.y, x, dt, r.k[2])
	copy(r.k[3], dyn.Derive(r.y, u, t+dt))

	next := x.Clone()
	floats.AddScaled(next, dt/6, r.k[0])
	floats.AddScaled(next, dt/3, r.k[1])
	floats.AddScaled(next, dt/3, r.k[2])
	floats.AddScaled(next, dt/6, r.k[3])
	return next
}
