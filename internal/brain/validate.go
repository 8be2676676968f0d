package brain

import (
	"errors"
	"fmt"
	"math"

	"github.com/san-kum/neurosim/internal/neural"
)

// Validate checks that every required attribute is present and well formed.
// All problems are reported together; each is a *neural.ConfigurationError.
func (d *Description) Validate() error {
	v := validator{source: d.Name}
	if v.source == "" {
		v.source = "brain"
	}

	if len(d.Neurons) == 0 {
		v.fail("neurons", neural.ErrMissingAttribute)
	}
	if d.MaxWeight < 0 || math.IsNaN(d.MaxWeight) {
		v.fail("max_weight", fmt.Errorf("%w: must be non-negative", neural.ErrMalformed))
	}
	if c := d.Capacity; c != nil && (c.Inputs < 0 || c.NonInputs < 0) {
		v.fail("capacity", fmt.Errorf("%w: negative capacity", neural.ErrMalformed))
	}

	for i, n := range d.Neurons {
		v.neuron(i, n)
	}
	for i, c := range d.Connections {
		field := fmt.Sprintf("connections[%d]", i)
		if c.Src == "" {
			v.fail(field+".src", neural.ErrMissingAttribute)
		}
		if c.Dst == "" {
			v.fail(field+".dst", neural.ErrMissingAttribute)
		}
		if c.Weight == nil {
			v.fail(field+".weight", neural.ErrMissingAttribute)
		} else if math.IsNaN(*c.Weight) || math.IsInf(*c.Weight, 0) {
			v.fail(field+".weight", fmt.Errorf("%w: not finite", neural.ErrMalformed))
		}
	}
	for i, s := range d.Sensors {
		field := fmt.Sprintf("sensors[%d]", i)
		if s.Input == "" {
			v.fail(field+".input", neural.ErrMissingAttribute)
		}
		if s.State == nil {
			v.fail(field+".state", neural.ErrMissingAttribute)
		}
	}
	for i, a := range d.Actuators {
		field := fmt.Sprintf("actuators[%d]", i)
		if a.Output == "" {
			v.fail(field+".output", neural.ErrMissingAttribute)
		}
		if a.Control == nil {
			v.fail(field+".control", neural.ErrMissingAttribute)
		}
	}
	return errors.Join(v.errs...)
}

type validator struct {
	source string
	errs   []error
}

func (v *validator) fail(field string, err error) {
	v.errs = append(v.errs, &neural.ConfigurationError{Source: v.source, Field: field, Err: err})
}

func (v *validator) neuron(i int, n NeuronSpec) {
	field := fmt.Sprintf("neurons[%d]", i)
	if n.ID == "" {
		v.fail(field+".id", neural.ErrMissingAttribute)
	} else {
		field = fmt.Sprintf("neurons[%s]", n.ID)
	}

	if n.Layer == "" {
		v.fail(field+".layer", neural.ErrMissingAttribute)
		return
	}
	layer, err := neural.ParseLayer(n.Layer)
	if err != nil {
		v.fail(field+".layer", err)
		return
	}
	if layer == neural.LayerInput {
		return
	}

	if n.Type == "" {
		v.fail(field+".type", neural.ErrMissingAttribute)
		return
	}
	kind, err := neural.ParseKind(n.Type)
	if err != nil {
		v.fail(field+".type", err)
		return
	}
	if kind == neural.KindInput {
		v.fail(field+".type", fmt.Errorf("%w: %s neuron cannot have type input", neural.ErrUnsupportedKind, layer))
		return
	}
	if _, err := neuronParams(n, kind); err != nil {
		v.fail(field, err)
	}
}

// neuronParams packs the named attributes into the positional layout the
// network expects. An explicit params list wins over named attributes.
func neuronParams(n NeuronSpec, kind neural.Kind) (neural.Params, error) {
	if len(n.Params) > 0 {
		return neural.ParamsFrom(n.Params)
	}

	switch kind {
	case neural.KindSimple, neural.KindSigmoid, neural.KindCTRNNSigmoid:
		return neural.Params{or(n.Bias, 0), or(n.Gain, 1)}, nil
	case neural.KindOscillator:
		if n.Period == nil {
			return neural.Params{}, fmt.Errorf("%w: period", neural.ErrMissingAttribute)
		}
		if *n.Period <= 0 {
			return neural.Params{}, fmt.Errorf("%w: period must be positive", neural.ErrInvalidParams)
		}
		return neural.Params{*n.Period, or(n.Phase, 0), or(n.Gain, 1)}, nil
	default:
		return neural.Params{}, fmt.Errorf("%w: %s needs an explicit params list", neural.ErrMissingAttribute, kind)
	}
}

func or(p *float64, def float64) float64 {
	if p == nil {
		return def
	}
	return *p
}
