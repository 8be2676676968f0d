package control

import "github.com/san-kum/neurosim/internal/dynamo"

// Hold outputs the same command every tick, ignoring the body state. A zero
// Hold is the passive baseline a neural gait has to beat.
type Hold struct {
	u dynamo.Control
}

func NewHold(u dynamo.Control) *Hold {
	return &Hold{u: u.Clone()}
}

func (h *Hold) Compute(_ dynamo.State, _ float64) dynamo.Control {
	return h.u.Clone()
}
