package brain

import (
	"fmt"
	"strings"
)

// Parameter names address tunable values of a description:
//
//	"<neuron>.bias", "<neuron>.gain", "<neuron>.period", "<neuron>.phase"
//	"<src>-><dst>"  connection weight
//
// Param and SetParam let optimizers treat a brain as a parameter vector.
func (d *Description) Param(name string) (float64, error) {
	if src, dst, ok := strings.Cut(name, "->"); ok {
		c, err := d.connection(src, dst)
		if err != nil {
			return 0, err
		}
		return *c.Weight, nil
	}
	p, err := d.attr(name)
	if err != nil {
		return 0, err
	}
	if *p == nil {
		return 0, fmt.Errorf("param %s is not set", name)
	}
	return **p, nil
}

// SetParam changes one tunable value in place. Setting an attribute that was
// absent adds it.
func (d *Description) SetParam(name string, value float64) error {
	if src, dst, ok := strings.Cut(name, "->"); ok {
		c, err := d.connection(src, dst)
		if err != nil {
			return err
		}
		c.Weight = &value
		return nil
	}
	p, err := d.attr(name)
	if err != nil {
		return err
	}
	*p = &value
	return nil
}

func (d *Description) connection(src, dst string) (*ConnectionSpec, error) {
	for i := range d.Connections {
		c := &d.Connections[i]
		if c.Src == src && c.Dst == dst {
			return c, nil
		}
	}
	return nil, fmt.Errorf("no connection %s->%s", src, dst)
}

func (d *Description) attr(name string) (**float64, error) {
	id, field, ok := strings.Cut(name, ".")
	if !ok {
		return nil, fmt.Errorf("param %q: expected <neuron>.<attr> or <src>-><dst>", name)
	}
	for i := range d.Neurons {
		n := &d.Neurons[i]
		if n.ID != id {
			continue
		}
		switch field {
		case "bias":
			return &n.Bias, nil
		case "gain":
			return &n.Gain, nil
		case "period":
			return &n.Period, nil
		case "phase":
			return &n.Phase, nil
		}
		return nil, fmt.Errorf("param %q: unknown attribute %s", name, field)
	}
	return nil, fmt.Errorf("param %q: no neuron %s", name, id)
}

// Clone returns a deep copy, so tuning one candidate never touches another.
func (d *Description) Clone() *Description {
	c := *d
	if d.Capacity != nil {
		capCopy := *d.Capacity
		c.Capacity = &capCopy
	}
	c.Neurons = make([]NeuronSpec, len(d.Neurons))
	for i, n := range d.Neurons {
		n.Bias = clonePtr(n.Bias)
		n.Gain = clonePtr(n.Gain)
		n.Period = clonePtr(n.Period)
		n.Phase = clonePtr(n.Phase)
		n.Params = append([]float64(nil), n.Params...)
		c.Neurons[i] = n
	}
	c.Connections = make([]ConnectionSpec, len(d.Connections))
	for i, conn := range d.Connections {
		conn.Weight = clonePtr(conn.Weight)
		c.Connections[i] = conn
	}
	c.Sensors = make([]SensorSpec, len(d.Sensors))
	for i, s := range d.Sensors {
		s.State = clonePtr(s.State)
		s.Scale = clonePtr(s.Scale)
		c.Sensors[i] = s
	}
	c.Actuators = make([]ActuatorSpec, len(d.Actuators))
	for i, a := range d.Actuators {
		a.Control = clonePtr(a.Control)
		a.Scale = clonePtr(a.Scale)
		c.Actuators[i] = a
	}
	return &c
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
