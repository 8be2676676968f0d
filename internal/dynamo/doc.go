// Package dynamo provides the simulation host that drives robot bodies with a
// controller.
//
// The package defines the fundamental interfaces and types:
//
//   - [State]: vector representing body state
//   - [System]: interface for body dynamics (dX/dt = f(X, u, t))
//   - [Integrator]: numerical integrator interface
//   - [Controller]: computes the control vector once per tick
//   - [Simulator]: orchestrates simulation runs
//   - [Episode]: a run advanced one tick at a time
//
// # Example
//
//	dyn := physics.NewCrawler(3)
//	integ := integrators.NewRK4()
//	sim := dynamo.New(dyn, integ, ctrl)
//	result, _ := sim.Run(ctx, x0, cfg)
//
// # Thread Safety
//
// Simulator instances are NOT thread-safe, and neither are most controllers.
// For parallel simulations, use [Ensemble], which builds a fresh simulator
// per run.
package dynamo
