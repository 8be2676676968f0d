package metrics

import (
	"github.com/san-kum/neurosim/internal/dynamo"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// OutputRange measures how much one control channel moves. A silent CPG
// scores zero. Samples before warmup seconds are ignored so the initial
// transient does not count.
type OutputRange struct {
	name    string
	channel int
	warmup  float64
	samples []float64
}

func NewOutputRange(channel int, warmup float64) *OutputRange {
	return &OutputRange{
		name:    "output_range",
		channel: channel,
		warmup:  warmup,
	}
}

func (o *OutputRange) Name() string { return o.name }

func (o *OutputRange) Observe(_ dynamo.State, u dynamo.Control, t float64) {
	if t < o.warmup || o.channel >= len(u) {
		return
	}
	o.samples = append(o.samples, u[o.channel])
}

// Value is the peak-to-peak amplitude.
func (o *OutputRange) Value() float64 {
	if len(o.samples) == 0 {
		return 0
	}
	return floats.Max(o.samples) - floats.Min(o.samples)
}

// StdDev is the standard deviation of the channel after warmup.
func (o *OutputRange) StdDev() float64 {
	if len(o.samples) < 2 {
		return 0
	}
	return stat.StdDev(o.samples, nil)
}

func (o *OutputRange) Reset() {
	o.samples = o.samples[:0]
}
