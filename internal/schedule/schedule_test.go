package schedule

import (
	"errors"
	"testing"

	"github.com/san-kum/neurosim/internal/neural"
)

const growScript = `
name: grow
description: add a hidden neuron, then rewire it
events:
  - at: 2.0
    mutation: {op: set_weight, source: h1, target: j0, weight: 0.5}
  - at: 1.0
    mutation:
      op: add_neuron
      id: h1
      kind: sigmoid
      params: [0, 1]
      out: {j1: 0.25}
  - at: 2.0
    mutation: {op: remove_neuron, id: h1}
`

type recorder struct{ got []neural.Mutation }

func (r *recorder) Submit(m neural.Mutation) { r.got = append(r.got, m) }

func TestParseScript(t *testing.T) {
	s, err := ParseScript([]byte(growScript))
	if err != nil {
		t.Fatal(err)
	}
	if len(s.Events) != 3 {
		t.Fatalf("expected 3 events, got %d", len(s.Events))
	}

	first := s.Events[0].Mutation
	if first.Op != neural.OpAddNeuron || first.Kind != neural.KindSigmoid || first.Out["j1"] != 0.25 {
		t.Errorf("unexpected first event %+v", first)
	}
	if s.Events[1].Mutation.Op != neural.OpSetWeight || s.Events[2].Mutation.Op != neural.OpRemoveNeuron {
		t.Error("events at the same time must keep file order")
	}
}

func TestParseScriptErrors(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		want error
	}{
		{"negative time", "events: [{at: -1, mutation: {op: remove_neuron, id: x}}]", neural.ErrMalformed},
		{"missing op", "events: [{at: 1, mutation: {id: x}}]", neural.ErrMissingAttribute},
		{"bad kind", "events: [{at: 1, mutation: {op: add_neuron, id: x, kind: relu}}]", neural.ErrMalformed},
		{"not yaml", "events: [", neural.ErrMalformed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseScript([]byte(tt.yaml))
			if !errors.Is(err, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, err)
			}
			var cfgErr *neural.ConfigurationError
			if !errors.As(err, &cfgErr) {
				t.Errorf("expected ConfigurationError, got %T", err)
			}
		})
	}
}

func TestPlayerDelivery(t *testing.T) {
	s, err := ParseScript([]byte(growScript))
	if err != nil {
		t.Fatal(err)
	}
	rec := &recorder{}
	p := s.Player(rec, nil)

	p.OnStep(nil, nil, 0.99)
	if len(rec.got) != 0 {
		t.Fatalf("nothing should be due yet, got %d", len(rec.got))
	}
	p.OnStep(nil, nil, 1.0)
	if len(rec.got) != 1 || rec.got[0].ID != "h1" {
		t.Fatalf("expected add_neuron at t=1, got %+v", rec.got)
	}
	p.OnStep(nil, nil, 5)
	if len(rec.got) != 3 || p.Remaining() != 0 {
		t.Errorf("expected all events delivered, got %d (remaining %d)", len(rec.got), p.Remaining())
	}
	p.OnStep(nil, nil, 6)
	if len(rec.got) != 3 {
		t.Error("events must be delivered once")
	}

	p.Rewind()
	if p.Remaining() != 3 {
		t.Errorf("expected 3 remaining after rewind, got %d", p.Remaining())
	}
}
