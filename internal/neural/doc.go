// Package neural implements a fixed-capacity recurrent network used as a
// robot controller.
//
// A [Network] holds input neurons and non-input neurons (outputs followed by
// hidden neurons). Non-input neurons carry a [Kind] and up to [MaxParams]
// parameters and are advanced synchronously by [Network.Step]:
//
//   - [KindSimple]: gain * (activation - bias)
//   - [KindSigmoid]: logistic of gain * (activation - bias)
//   - [KindOscillator]: a pure function of absolute time (a CPG)
//   - [KindCTRNNSigmoid], [KindSUPG]: supplied by the caller via [WithTransfer]
//
// # Storage
//
// Weights live in two gap-padded matrices sized for the capacity given to
// [New]. Every non-input neuron owns a weight slot for its whole lifetime;
// removing a neuron zeroes its slot and recycles it, so nothing is resized.
// Kinds, parameters and activations are kept dense and are compacted on
// removal.
//
// # Usage
//
//	net, _ := neural.New(neural.Capacity{Inputs: 2, NonInputs: 8})
//	_ = net.AddInputNeuron("left")
//	_ = net.AddInputNeuron("right")
//	_ = net.AddNonInputNeuron("motor", neural.LayerOutput, neural.KindSimple, neural.Params{0, 2})
//	_ = net.Connect("left", "motor", 1)
//	_ = net.Connect("right", "motor", 1)
//	out, _ := net.Tick([]float64{0.3, 0.4}, 0)
//
// # Thread Safety
//
// A Network is NOT safe for concurrent use. Mutations must be applied between
// steps by the goroutine that steps the network; see control.Neural for a
// queue that serializes externally submitted mutations.
package neural
