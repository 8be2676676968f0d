package neural

import (
	"errors"
	"fmt"
)

// Domain errors for construction, mutation and stepping.
var (
	// ErrUnknownNeuron indicates an id that is not registered in the network.
	ErrUnknownNeuron = errors.New("neural: unknown neuron")

	// ErrDuplicateNeuron indicates an id that is already registered.
	ErrDuplicateNeuron = errors.New("neural: duplicate neuron id")

	// ErrCapacityExceeded indicates the fixed buffer capacity is exhausted.
	ErrCapacityExceeded = errors.New("neural: capacity exceeded")

	// ErrInputDestination indicates a connection that targets an input neuron.
	ErrInputDestination = errors.New("neural: input neuron cannot be a connection destination")

	// ErrWeightBound indicates a weight whose magnitude exceeds the configured bound.
	ErrWeightBound = errors.New("neural: weight exceeds bound")

	// ErrNotHidden indicates a hidden-only edit addressed to an input or output neuron.
	ErrNotHidden = errors.New("neural: neuron is not hidden")

	// ErrUnsupportedKind indicates a kind without a transfer function.
	ErrUnsupportedKind = errors.New("neural: unsupported neuron kind")

	// ErrInvalidParams indicates parameters that the neuron kind cannot use.
	ErrInvalidParams = errors.New("neural: invalid neuron parameters")

	// ErrInputSize indicates a Feed vector whose length differs from the input count.
	ErrInputSize = errors.New("neural: input vector size mismatch")

	// ErrOutputSize indicates a Fetch buffer whose length differs from the output count.
	ErrOutputSize = errors.New("neural: output buffer size mismatch")

	// ErrMissingAttribute indicates a construction description without a required field.
	ErrMissingAttribute = errors.New("neural: missing required attribute")

	// ErrMalformed indicates a construction description or mutation that cannot be parsed.
	ErrMalformed = errors.New("neural: malformed description")
)

// TopologyError reports a failed construction step.
type TopologyError struct {
	Op  string
	ID  string
	Err error
}

func (e *TopologyError) Error() string {
	if e.ID == "" {
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("%s %q: %v", e.Op, e.ID, e.Err)
}

func (e *TopologyError) Unwrap() error {
	return e.Err
}

// MutationError reports a rejected runtime edit. The network is left exactly
// as it was before the edit was attempted.
type MutationError struct {
	Op  string
	ID  string
	Err error
}

func (e *MutationError) Error() string {
	if e.ID == "" {
		return fmt.Sprintf("mutation %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("mutation %s %q: %v", e.Op, e.ID, e.Err)
}

func (e *MutationError) Unwrap() error {
	return e.Err
}

// ConfigurationError reports a malformed construction input.
type ConfigurationError struct {
	Source string
	Field  string
	Err    error
}

func (e *ConfigurationError) Error() string {
	switch {
	case e.Source != "" && e.Field != "":
		return fmt.Sprintf("%s: %s: %v", e.Source, e.Field, e.Err)
	case e.Field != "":
		return fmt.Sprintf("%s: %v", e.Field, e.Err)
	case e.Source != "":
		return fmt.Sprintf("%s: %v", e.Source, e.Err)
	}
	return e.Err.Error()
}

func (e *ConfigurationError) Unwrap() error {
	return e.Err
}
