package neural

import (
	"fmt"
	"math"
	"strings"
)

type Kind uint8

const (
	KindInput Kind = iota
	KindSimple
	KindSigmoid
	KindCTRNNSigmoid
	KindOscillator
	KindSUPG
)

var kindNames = [...]string{
	KindInput:        "input",
	KindSimple:       "simple",
	KindSigmoid:      "sigmoid",
	KindCTRNNSigmoid: "ctrnn_sigmoid",
	KindOscillator:   "oscillator",
	KindSUPG:         "supg",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("kind(%d)", uint8(k))
}

// ParseKind accepts the lowercase kind names as well as the CamelCase spelling
// used by SDF brain descriptions ("Sigmoid", "Oscillator", "CTRNN_Sigmoid").
func ParseKind(s string) (Kind, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	for k, n := range kindNames {
		if n == name {
			return Kind(k), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnsupportedKind, s)
}

func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

func (k *Kind) UnmarshalText(text []byte) error {
	parsed, err := ParseKind(string(text))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

type Layer uint8

const (
	LayerInput Layer = iota
	LayerOutput
	LayerHidden
)

func (l Layer) String() string {
	switch l {
	case LayerInput:
		return "input"
	case LayerOutput:
		return "output"
	case LayerHidden:
		return "hidden"
	}
	return fmt.Sprintf("layer(%d)", uint8(l))
}

func ParseLayer(s string) (Layer, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "input":
		return LayerInput, nil
	case "output":
		return LayerOutput, nil
	case "hidden":
		return LayerHidden, nil
	}
	return 0, fmt.Errorf("%w: unknown layer %q", ErrMalformed, s)
}

// MaxParams is the number of parameter slots carried by every non-input neuron.
const MaxParams = 3

// Params holds kind-specific parameters:
//
//	simple, sigmoid: {bias, gain, _}
//	oscillator:      {period, phaseOffset, gain}
type Params [MaxParams]float64

// ParamsFrom copies up to MaxParams values; missing trailing values are zero.
func ParamsFrom(values []float64) (Params, error) {
	var p Params
	if len(values) > MaxParams {
		return p, fmt.Errorf("%w: %d values, at most %d allowed", ErrInvalidParams, len(values), MaxParams)
	}
	copy(p[:], values)
	return p, nil
}

// TransferFunc maps the summed activation, the neuron parameters and the
// absolute simulated time to the neuron's next output.
type TransferFunc func(activation float64, params Params, t float64) float64

func Simple(activation float64, p Params, _ float64) float64 {
	return p[1] * (activation - p[0])
}

// Sigmoid stays strictly inside (0,1) even where the logistic curve rounds
// to an endpoint.
func Sigmoid(activation float64, p Params, _ float64) float64 {
	v := 1.0 / (1.0 + math.Exp(-p[1]*(activation-p[0])))
	return min(max(v, sigmoidLow), sigmoidHigh)
}

var (
	sigmoidLow  = math.Nextafter(0, 1)
	sigmoidHigh = math.Nextafter(1, 0)
)

// Oscillator ignores activation. Its output swings in
// [0.5 - gain/2, 0.5 + gain/2] with the configured period and phase offset
// (expressed as a fraction of the period).
func Oscillator(_ float64, p Params, t float64) float64 {
	period, phase, gain := p[0], p[1], p[2]
	return 0.5 + gain*math.Sin(2*math.Pi/period*(t-period*phase))/2
}

func defaultTransfers() map[Kind]TransferFunc {
	return map[Kind]TransferFunc{
		KindSimple:     Simple,
		KindSigmoid:    Sigmoid,
		KindOscillator: Oscillator,
	}
}

func validateParams(kind Kind, p Params) error {
	for i, v := range p {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: param %d is not finite", ErrInvalidParams, i)
		}
	}
	if kind == KindOscillator && p[0] <= 0 {
		return fmt.Errorf("%w: oscillator period must be positive, got %g", ErrInvalidParams, p[0])
	}
	return nil
}
