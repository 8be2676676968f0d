// Package control provides the controllers that drive robot bodies.
//
// Controllers implement the [dynamo.Controller] interface to compute
// control inputs based on body state:
//
//   - [Neural]: a neural network wired to body sensors and actuators
//   - [None]: zero control, the passive baseline
//
// # Usage
//
//	ctrl, err := control.NewNeural(net, wiring, dyn.ControlDim())
//	sim := dynamo.New(dyn, integ, ctrl)
//	// Controller.Compute is called each timestep
//
// # Mutations
//
// [Neural.Submit] may be called from any goroutine. Submitted mutations are
// queued and applied by Compute, on the simulation goroutine, before the
// network is stepped. A mutation therefore never overlaps a network step and
// takes effect from the next tick on.
package control
