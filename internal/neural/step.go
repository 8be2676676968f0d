package neural

import (
	"fmt"

	"gonum.org/v1/gonum/floats"
)

// Feed replaces the whole input generation. Partial updates are not
// supported: inputs must hold exactly NumInputs values.
func (n *Network) Feed(inputs []float64) error {
	if len(inputs) != n.nInputs {
		return fmt.Errorf("%w: got=%d want=%d", ErrInputSize, len(inputs), n.nInputs)
	}
	copy(n.input, inputs)
	return nil
}

func (n *Network) currentState() []float64 { return n.state[n.cur] }
func (n *Network) nextState() []float64    { return n.state[1-n.cur] }

// flip publishes the generation written by the last step.
func (n *Network) flip() { n.cur = 1 - n.cur }

// CurrentState returns a copy of the current activation of every non-input
// neuron, outputs first.
func (n *Network) CurrentState() []float64 {
	out := make([]float64, n.numNonInputs())
	copy(out, n.currentState())
	return out
}

// Step computes the next generation from the current one and the last fed
// inputs at absolute simulated time t, then publishes it. A network without
// outputs has nothing to publish and Step does nothing.
func (n *Network) Step(t float64) {
	if n.nOutputs == 0 {
		return
	}

	cur := n.currentState()
	next := n.nextState()
	count := n.numNonInputs()
	inputs := n.input[:n.nInputs]

	for p := 0; p < count; p++ {
		slot := n.slots[p]

		activation := 0.0
		if n.nInputs > 0 {
			activation = floats.Dot(inputs, n.inW.RawRowView(slot)[:n.nInputs])
		}
		rec := n.recW.RawRowView(slot)
		for k := 0; k < count; k++ {
			activation += cur[k] * rec[n.slots[k]]
		}

		next[p] = n.fns[p](activation, n.params[p], t)
	}

	n.flip()
}

// Fetch copies the current output activations into outputs, which must hold
// exactly NumOutputs values. Fetch does not change any state.
func (n *Network) Fetch(outputs []float64) error {
	if len(outputs) != n.nOutputs {
		return fmt.Errorf("%w: got=%d want=%d", ErrOutputSize, len(outputs), n.nOutputs)
	}
	copy(outputs, n.currentState()[:n.nOutputs])
	return nil
}

// Tick runs one Feed, Step, Fetch cycle and returns a fresh output slice.
func (n *Network) Tick(inputs []float64, t float64) ([]float64, error) {
	if err := n.Feed(inputs); err != nil {
		return nil, err
	}
	n.Step(t)
	outputs := make([]float64, n.nOutputs)
	if err := n.Fetch(outputs); err != nil {
		return nil, err
	}
	return outputs, nil
}

// Reset zeroes both state generations and the input buffer. Topology and
// weights are kept.
func (n *Network) Reset() {
	for i := range n.state[0] {
		n.state[0][i] = 0
		n.state[1][i] = 0
	}
	for i := range n.input {
		n.input[i] = 0
	}
	n.cur = 0
}
