package metrics

import (
	"github.com/san-kum/neurosim/internal/dynamo"
	"gonum.org/v1/gonum/floats"
)

// ControlEffort is the mean L1 norm of the actuator command per tick.
// Evolution uses it as a penalty against thrashing controllers.
type ControlEffort struct {
	sum   float64
	peak  float64
	ticks int
}

func NewControlEffort() *ControlEffort {
	return &ControlEffort{}
}

func (*ControlEffort) Name() string { return "control_effort" }

func (c *ControlEffort) Observe(_ dynamo.State, u dynamo.Control, _ float64) {
	effort := floats.Norm(u, 1)
	c.sum += effort
	c.peak = max(c.peak, effort)
	c.ticks++
}

func (c *ControlEffort) Value() float64 {
	if c.ticks == 0 {
		return 0
	}
	return c.sum / float64(c.ticks)
}

// Peak is the largest single-tick effort seen.
func (c *ControlEffort) Peak() float64 { return c.peak }

func (c *ControlEffort) Reset() {
	c.sum, c.peak, c.ticks = 0, 0, 0
}
