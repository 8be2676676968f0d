// Package physics provides the robot bodies a controller drives.
//
// Each body implements the [dynamo.System] interface, defining the
// differential equations governing its motion under a control vector:
//
//   - [Pendulum]: a single actuated joint
//   - [CartPole]: a pole balanced on a pushed cart
//   - [Crawler]: a chain of servo joints that moves forward by undulation
//
// All bodies implement [dynamo.Configurable] for runtime parameter
// adjustment. [Pendulum] also implements [dynamo.Hamiltonian]:
//
//	dyn := physics.NewPendulum()
//	if h, ok := dyn.(dynamo.Hamiltonian); ok {
//	    energy := h.Energy(state)
//	}
package physics
