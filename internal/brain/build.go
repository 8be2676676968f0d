package brain

import (
	"strings"

	"github.com/san-kum/neurosim/internal/control"
	"github.com/san-kum/neurosim/internal/neural"
)

// SpareNonInputs is the room left for hidden neurons added at runtime when a
// description does not set its own capacity.
const SpareNonInputs = 8

// NetworkCapacity is the network size Build will allocate for d.
func (d *Description) NetworkCapacity() neural.Capacity {
	if d.Capacity != nil {
		return neural.Capacity{Inputs: d.Capacity.Inputs, NonInputs: d.Capacity.NonInputs}
	}
	inputs := len(d.Inputs())
	return neural.Capacity{
		Inputs:    inputs,
		NonInputs: len(d.Neurons) - inputs + SpareNonInputs,
	}
}

// Build validates d and constructs its network. Inputs are registered first,
// then non-input neurons in declaration order, then connections. opts are
// applied after the description's own max_weight.
func Build(d *Description, opts ...neural.Option) (*neural.Network, error) {
	if err := d.Validate(); err != nil {
		return nil, err
	}

	all := make([]neural.Option, 0, len(opts)+1)
	if d.MaxWeight > 0 {
		all = append(all, neural.WithMaxWeight(d.MaxWeight))
	}
	all = append(all, opts...)

	net, err := neural.New(d.NetworkCapacity(), all...)
	if err != nil {
		return nil, err
	}

	for _, n := range d.Neurons {
		if strings.EqualFold(n.Layer, "input") {
			if err := net.AddInputNeuron(n.ID); err != nil {
				return nil, err
			}
		}
	}
	for _, n := range d.Neurons {
		layer, _ := neural.ParseLayer(n.Layer)
		if layer == neural.LayerInput {
			continue
		}
		kind, _ := neural.ParseKind(n.Type)
		params, _ := neuronParams(n, kind)
		if err := net.AddNonInputNeuron(n.ID, layer, kind, params); err != nil {
			return nil, err
		}
	}
	for _, c := range d.Connections {
		if err := net.Connect(c.Src, c.Dst, *c.Weight); err != nil {
			return nil, err
		}
	}
	return net, nil
}

// Wiring converts the sensor and actuator lists. Scale defaults to 1.
func (d *Description) Wiring() control.Wiring {
	var w control.Wiring
	for _, s := range d.Sensors {
		state := 0
		if s.State != nil {
			state = *s.State
		}
		w.Sensors = append(w.Sensors, control.Sensor{
			Input:  s.Input,
			State:  state,
			Scale:  or(s.Scale, 1),
			Offset: s.Offset,
		})
	}
	for _, a := range d.Actuators {
		ch := 0
		if a.Control != nil {
			ch = *a.Control
		}
		w.Actuators = append(w.Actuators, control.Actuator{
			Output:  a.Output,
			Control: ch,
			Scale:   or(a.Scale, 1),
			Offset:  a.Offset,
		})
	}
	return w
}
