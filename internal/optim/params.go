package optim

import (
	"fmt"
	"strconv"
	"strings"
)

// ParamSpec bounds one tunable parameter.
type ParamSpec struct {
	Name    string  `yaml:"name"`
	Min     float64 `yaml:"min"`
	Max     float64 `yaml:"max"`
	Default float64 `yaml:"default"`
}

// Space is an ordered set of parameters forming the search vector.
type Space []ParamSpec

func (s Space) Dim() int { return len(s) }

func (s Space) Names() []string {
	names := make([]string, len(s))
	for i, p := range s {
		names[i] = p.Name
	}
	return names
}

func (s Space) Defaults() []float64 {
	v := make([]float64, len(s))
	for i, p := range s {
		v[i] = p.Default
	}
	return v
}

// Normalize maps raw values onto [0,1] per parameter.
func (s Space) Normalize(raw []float64) []float64 {
	out := make([]float64, len(s))
	for i, p := range s {
		out[i] = (raw[i] - p.Min) / (p.Max - p.Min)
	}
	return out
}

func (s Space) Denormalize(norm []float64) []float64 {
	out := make([]float64, len(s))
	for i, p := range s {
		out[i] = p.Min + norm[i]*(p.Max-p.Min)
	}
	return out
}

func (s Space) Clamp(v []float64) []float64 {
	out := make([]float64, len(s))
	for i, p := range s {
		val := v[i]
		if val < p.Min {
			val = p.Min
		}
		if val > p.Max {
			val = p.Max
		}
		out[i] = val
	}
	return out
}

// Map pairs names with values.
func (s Space) Map(v []float64) map[string]float64 {
	m := make(map[string]float64, len(s))
	for i, p := range s {
		m[p.Name] = v[i]
	}
	return m
}

// ParseSpec reads "name=min:max" or "name=min:max:default". Without a
// default the midpoint is used.
func ParseSpec(s string) (ParamSpec, error) {
	name, rng, ok := strings.Cut(s, "=")
	if !ok || name == "" {
		return ParamSpec{}, fmt.Errorf("param %q: expected name=min:max[:default]", s)
	}
	parts := strings.Split(rng, ":")
	if len(parts) < 2 || len(parts) > 3 {
		return ParamSpec{}, fmt.Errorf("param %q: expected name=min:max[:default]", s)
	}
	vals := make([]float64, len(parts))
	for i, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return ParamSpec{}, fmt.Errorf("param %q: %w", s, err)
		}
		vals[i] = v
	}
	spec := ParamSpec{Name: strings.TrimSpace(name), Min: vals[0], Max: vals[1], Default: (vals[0] + vals[1]) / 2}
	if len(vals) == 3 {
		spec.Default = vals[2]
	}
	if spec.Max <= spec.Min {
		return ParamSpec{}, fmt.Errorf("param %q: max must exceed min", s)
	}
	if spec.Default < spec.Min || spec.Default > spec.Max {
		return ParamSpec{}, fmt.Errorf("param %q: default outside range", s)
	}
	return spec, nil
}
