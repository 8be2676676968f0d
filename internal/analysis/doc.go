// Package analysis inspects recorded traces of a controller driving a body.
//
//   - [Spectrum] and [DominantFrequency]: where the energy of a channel sits
//   - [PhaseLag]: how far one periodic channel trails another
//   - [NewPhasePortrait]: two channels plotted against each other
//
// A central pattern generator tuned to period P should show a dominant
// frequency near 1/P on every actuator channel, and neighbouring joints of a
// crawler driven by phase-offset oscillators should lag each other by the
// offset:
//
//	f, _ := analysis.DominantFrequency(trace.Channel("u", 0), dt)
//	lag, _ := analysis.PhaseLag(trace.Channel("u", 0), trace.Channel("u", 1))
package analysis
