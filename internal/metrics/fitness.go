package metrics

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
)

// Weights maps metric names to their contribution to a fitness score.
// Negative weights turn a metric into a penalty.
type Weights map[string]float64

// Fitness combines named metric values into a single score. Every weighted
// metric must be present and finite.
func Fitness(values map[string]float64, w Weights) (float64, error) {
	names := make([]string, 0, len(w))
	for name := range w {
		names = append(names, name)
	}
	sort.Strings(names)

	score := 0.0
	for _, name := range names {
		v, ok := values[name]
		if !ok {
			return 0, fmt.Errorf("fitness: metric %q not recorded", name)
		}
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return 0, fmt.Errorf("fitness: metric %q is not finite", name)
		}
		score += w[name] * v
	}
	return score, nil
}

// ParseWeights reads "name=weight,name=weight" as used on the command line.
func ParseWeights(s string) (Weights, error) {
	w := make(Weights)
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		name, val, ok := strings.Cut(part, "=")
		if !ok {
			return nil, fmt.Errorf("weight %q: expected name=value", part)
		}
		f, err := strconv.ParseFloat(strings.TrimSpace(val), 64)
		if err != nil {
			return nil, fmt.Errorf("weight %q: %w", part, err)
		}
		w[strings.TrimSpace(name)] = f
	}
	return w, nil
}
