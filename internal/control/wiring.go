package control

import (
	"fmt"

	"github.com/san-kum/neurosim/internal/neural"
)

// Sensor feeds body state into an input neuron:
// input = state[State]*Scale + Offset.
type Sensor struct {
	Input  string  `yaml:"input" json:"input"`
	State  int     `yaml:"state" json:"state"`
	Scale  float64 `yaml:"scale" json:"scale"`
	Offset float64 `yaml:"offset" json:"offset"`
}

// Actuator maps an output neuron onto a control channel:
// control[Control] += output*Scale + Offset.
type Actuator struct {
	Output  string  `yaml:"output" json:"output"`
	Control int     `yaml:"control" json:"control"`
	Scale   float64 `yaml:"scale" json:"scale"`
	Offset  float64 `yaml:"offset" json:"offset"`
}

// Wiring connects a network to a body.
type Wiring struct {
	Sensors   []Sensor   `yaml:"sensors" json:"sensors"`
	Actuators []Actuator `yaml:"actuators" json:"actuators"`
}

// boundSensor and boundActuator carry the resolved dense positions.
type boundSensor struct {
	Sensor
	pos int
}

type boundActuator struct {
	Actuator
	pos int
}

func (w Wiring) bind(net *neural.Network, stateDim, controlDim int) ([]boundSensor, []boundActuator, error) {
	sensors := make([]boundSensor, 0, len(w.Sensors))
	for _, s := range w.Sensors {
		pos, err := net.InputIndex(s.Input)
		if err != nil {
			return nil, nil, fmt.Errorf("sensor %q: %w", s.Input, err)
		}
		if s.State < 0 || (stateDim > 0 && s.State >= stateDim) {
			return nil, nil, fmt.Errorf("sensor %q: state index %d out of range [0,%d)", s.Input, s.State, stateDim)
		}
		sensors = append(sensors, boundSensor{Sensor: s, pos: pos})
	}

	actuators := make([]boundActuator, 0, len(w.Actuators))
	for _, a := range w.Actuators {
		pos, err := net.OutputIndex(a.Output)
		if err != nil {
			return nil, nil, fmt.Errorf("actuator %q: %w", a.Output, err)
		}
		if a.Control < 0 || a.Control >= controlDim {
			return nil, nil, fmt.Errorf("actuator %q: control index %d out of range [0,%d)", a.Output, a.Control, controlDim)
		}
		actuators = append(actuators, boundActuator{Actuator: a, pos: pos})
	}
	return sensors, actuators, nil
}
