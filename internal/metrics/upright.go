package metrics

import (
	"math"

	"github.com/san-kum/neurosim/internal/dynamo"
)

// Upright is the fraction of ticks where state[index] stays within
// threshold of zero. For the cart-pole this is the pole angle.
type Upright struct {
	name      string
	index     int
	threshold float64
	inside    int
	samples   int
}

func NewUpright(index int, threshold float64) *Upright {
	return &Upright{
		name:      "upright",
		index:     index,
		threshold: threshold,
	}
}

func (u *Upright) Name() string {
	return u.name
}

func (u *Upright) Observe(x dynamo.State, _ dynamo.Control, t float64) {
	u.samples++
	if u.index < len(x) && math.Abs(x[u.index]) <= u.threshold {
		u.inside++
	}
}

func (u *Upright) Value() float64 {
	if u.samples == 0 {
		return 0
	}
	return float64(u.inside) / float64(u.samples)
}

func (u *Upright) Reset() {
	u.inside = 0
	u.samples = 0
}
