package physics

import (
	"fmt"

	"github.com/san-kum/neurosim/internal/dynamo"
)

// Crawler is a chain of servo joints lying on anisotropic ground. Each
// control value is a joint target angle; the servo pulls the joint toward it
// through a spring-damper. Ground friction resists sliding sideways more than
// sliding forward, so a wave travelling from head to tail pushes the body
// ahead in proportion to the lateral area swept between neighbouring joints.
//
// State layout: [x, vx, phi_0..phi_{n-1}, omega_0..omega_{n-1}].
type Crawler struct {
	Joints    int
	Stiffness float64
	Damping   float64
	Inertia   float64
	Mass      float64
	Drag      float64
	Thrust    float64
}

func NewCrawler(joints int) *Crawler {
	if joints < 2 {
		joints = 2
	}
	return &Crawler{
		Joints:    joints,
		Stiffness: 20.0,
		Damping:   2.0,
		Inertia:   0.1,
		Mass:      1.0,
		Drag:      2.0,
		Thrust:    4.0,
	}
}

func (c *Crawler) StateDim() int {
	return 2 + 2*c.Joints
}

func (c *Crawler) ControlDim() int {
	return c.Joints
}

// JointIndex returns the state index of joint i's angle.
func (c *Crawler) JointIndex(i int) int {
	return 2 + i
}

func (c *Crawler) Derive(x dynamo.State, u dynamo.Control, t float64) dynamo.State {
	n := c.Joints
	dx := make(dynamo.State, len(x))
	phi := x[2 : 2+n]
	omega := x[2+n : 2+2*n]

	for i := 0; i < n; i++ {
		target := 0.0
		if i < len(u) {
			target = u[i]
		}
		dx[2+i] = omega[i]
		dx[2+n+i] = (c.Stiffness*(target-phi[i]) - c.Damping*omega[i]) / c.Inertia
	}

	push := 0.0
	for i := 0; i+1 < n; i++ {
		push += phi[i]*omega[i+1] - phi[i+1]*omega[i]
	}

	dx[0] = x[1]
	dx[1] = (c.Thrust*push - c.Drag*x[1]) / c.Mass
	return dx
}

func (c *Crawler) GetParams() map[string]float64 {
	return map[string]float64{
		"stiffness": c.Stiffness,
		"damping":   c.Damping,
		"inertia":   c.Inertia,
		"mass":      c.Mass,
		"drag":      c.Drag,
		"thrust":    c.Thrust,
	}
}

func (c *Crawler) SetParam(name string, value float64) error {
	switch name {
	case "stiffness":
		c.Stiffness = value
	case "damping":
		c.Damping = value
	case "inertia":
		c.Inertia = value
	case "mass":
		c.Mass = value
	case "drag":
		c.Drag = value
	case "thrust":
		c.Thrust = value
	default:
		return fmt.Errorf("unknown param: %s", name)
	}
	return nil
}
