// Package viz renders a running brain and its body in the terminal.
//
// [Monitor] is a Bubble Tea model that steps an experiment in real time,
// draws the body on a braille [Canvas], and lists every neuron's activation
// as of the last tick. Gains can be tuned from the keyboard; each change is
// submitted as a mutation and takes effect on the next tick.
//
// # Key Bindings
//
//	Space - Pause/Resume
//	R     - Reset the episode
//	+/-   - Simulation steps per frame
//	Tab   - Select next neuron
//	Up/K  - Raise selected gain 10%
//	Down/J- Lower selected gain 10%
//	X     - Remove selected hidden neuron
//	Q     - Quit
package viz
