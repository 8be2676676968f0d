package metrics

import "github.com/san-kum/neurosim/internal/dynamo"

// Displacement is the signed distance state[index] moved between the first
// and last observed tick.
type Displacement struct {
	name    string
	index   int
	start   float64
	last    float64
	samples int
}

func NewDisplacement(index int) *Displacement {
	return &Displacement{
		name:  "displacement",
		index: index,
	}
}

func (d *Displacement) Name() string { return d.name }

func (d *Displacement) Observe(x dynamo.State, _ dynamo.Control, t float64) {
	if d.index >= len(x) {
		return
	}
	if d.samples == 0 {
		d.start = x[d.index]
	}
	d.last = x[d.index]
	d.samples++
}

func (d *Displacement) Value() float64 {
	return d.last - d.start
}

func (d *Displacement) Reset() {
	d.start, d.last = 0, 0
	d.samples = 0
}
