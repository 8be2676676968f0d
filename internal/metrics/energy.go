package metrics

import (
	"math"

	"github.com/san-kum/neurosim/internal/dynamo"
)

// EnergyDrift is the largest relative change of body energy from the first
// observed tick. On an actuated body it shows how much energy the controller
// pumps in or drains. Bodies without dynamo.Hamiltonian report zero.
type EnergyDrift struct {
	body dynamo.Hamiltonian
	e0   float64
	seen bool
	peak float64
}

func NewEnergyDrift(sys dynamo.System) *EnergyDrift {
	h, _ := sys.(dynamo.Hamiltonian)
	return &EnergyDrift{body: h}
}

func (*EnergyDrift) Name() string { return "energy_drift" }

func (e *EnergyDrift) Observe(x dynamo.State, _ dynamo.Control, _ float64) {
	if e.body == nil {
		return
	}
	energy := e.body.Energy(x)
	if !e.seen {
		e.e0, e.seen = energy, true
		return
	}
	if e.e0 != 0 {
		e.peak = math.Max(e.peak, math.Abs((energy-e.e0)/e.e0))
	}
}

func (e *EnergyDrift) Value() float64 { return e.peak }

func (e *EnergyDrift) Reset() {
	e.e0, e.seen, e.peak = 0, false, 0
}
