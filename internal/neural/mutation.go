package neural

import (
	"fmt"
)

type Op string

const (
	OpAddNeuron    Op = "add_neuron"
	OpRemoveNeuron Op = "remove_neuron"
	OpSetWeight    Op = "set_weight"
	OpClearWeight  Op = "clear_weight"
	OpSetNeuron    Op = "set_neuron"
)

// Mutation is one structural edit addressed by stable neuron ids.
//
//	add_neuron:    ID, Kind, Params, In (source id -> weight), Out (destination id -> weight)
//	remove_neuron: ID
//	set_weight:    Source, Target, Weight
//	clear_weight:  Source, Target
//	set_neuron:    ID, Kind (zero keeps the current kind), Params (nil keeps the current params)
type Mutation struct {
	Op     Op                 `yaml:"op" json:"op"`
	ID     string             `yaml:"id,omitempty" json:"id,omitempty"`
	Kind   Kind               `yaml:"kind,omitempty" json:"kind,omitempty"`
	Params []float64          `yaml:"params,omitempty" json:"params,omitempty"`
	Source string             `yaml:"source,omitempty" json:"source,omitempty"`
	Target string             `yaml:"target,omitempty" json:"target,omitempty"`
	Weight float64            `yaml:"weight,omitempty" json:"weight,omitempty"`
	In     map[string]float64 `yaml:"in,omitempty" json:"in,omitempty"`
	Out    map[string]float64 `yaml:"out,omitempty" json:"out,omitempty"`
}

// Subject names the neuron or edge the mutation addresses.
func (m Mutation) Subject() string {
	if m.ID != "" {
		return m.ID
	}
	if m.Source != "" || m.Target != "" {
		return m.Source + "->" + m.Target
	}
	return ""
}

// Apply performs one edit. Every precondition is checked before anything is
// written, so a rejected edit returns a *MutationError and leaves the network
// exactly as it was.
func (n *Network) Apply(m Mutation) error {
	var err error
	switch m.Op {
	case OpAddNeuron:
		err = n.addHidden(m)
	case OpRemoveNeuron:
		err = n.removeHidden(m.ID)
	case OpSetWeight:
		err = n.rewire(m.Source, m.Target, m.Weight)
	case OpClearWeight:
		err = n.rewire(m.Source, m.Target, 0)
	case OpSetNeuron:
		err = n.setNeuron(m)
	default:
		err = fmt.Errorf("%w: unknown op %q", ErrMalformed, m.Op)
	}
	if err != nil {
		return &MutationError{Op: string(m.Op), ID: m.Subject(), Err: err}
	}
	return nil
}

func (n *Network) addHidden(m Mutation) error {
	params, err := ParamsFrom(m.Params)
	if err != nil {
		return err
	}
	if err := n.checkNonInput(m.ID, LayerHidden, m.Kind, params); err != nil {
		return err
	}

	// The new neuron may reference itself in either map; every other id must
	// already exist.
	for src, w := range m.In {
		if err := n.checkWeight(w); err != nil {
			return err
		}
		if src == m.ID {
			continue
		}
		if _, ok := n.inputIndex[src]; ok {
			continue
		}
		if _, ok := n.nodeIndex[src]; !ok {
			return fmt.Errorf("%w: source %q", ErrUnknownNeuron, src)
		}
	}
	for dst, w := range m.Out {
		if err := n.checkWeight(w); err != nil {
			return err
		}
		if dst == m.ID {
			continue
		}
		if _, ok := n.inputIndex[dst]; ok {
			return fmt.Errorf("%w: %q", ErrInputDestination, dst)
		}
		if _, ok := n.nodeIndex[dst]; !ok {
			return fmt.Errorf("%w: destination %q", ErrUnknownNeuron, dst)
		}
	}

	n.insertNonInput(m.ID, LayerHidden, m.Kind, params)
	for src, w := range m.In {
		e, _ := n.resolveEdge(src, m.ID)
		n.setEdge(e, w)
	}
	for dst, w := range m.Out {
		e, _ := n.resolveEdge(m.ID, dst)
		n.setEdge(e, w)
	}
	return nil
}

func (n *Network) removeHidden(id string) error {
	if id == "" {
		return fmt.Errorf("%w: empty id", ErrMissingAttribute)
	}
	if _, ok := n.inputIndex[id]; ok {
		return fmt.Errorf("%w: %q is an input", ErrNotHidden, id)
	}
	pos, ok := n.nodeIndex[id]
	if !ok {
		return ErrUnknownNeuron
	}
	if pos < n.nOutputs {
		return fmt.Errorf("%w: %q is an output", ErrNotHidden, id)
	}
	n.removeNonInput(pos)
	return nil
}

func (n *Network) rewire(srcID, dstID string, w float64) error {
	e, err := n.resolveEdge(srcID, dstID)
	if err != nil {
		return err
	}
	if err := n.checkWeight(w); err != nil {
		return err
	}
	n.setEdge(e, w)
	return nil
}

func (n *Network) setNeuron(m Mutation) error {
	if _, ok := n.inputIndex[m.ID]; ok {
		return fmt.Errorf("%w: %q is an input", ErrUnsupportedKind, m.ID)
	}
	pos, ok := n.nodeIndex[m.ID]
	if !ok {
		return ErrUnknownNeuron
	}

	kind := n.kinds[pos]
	if m.Kind != KindInput {
		kind = m.Kind
	}
	fn, ok := n.transfers[kind]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnsupportedKind, kind)
	}

	params := n.params[pos]
	if m.Params != nil {
		p, err := ParamsFrom(m.Params)
		if err != nil {
			return err
		}
		params = p
	}
	if err := validateParams(kind, params); err != nil {
		return err
	}

	n.kinds[pos] = kind
	n.params[pos] = params
	n.fns[pos] = fn
	return nil
}
