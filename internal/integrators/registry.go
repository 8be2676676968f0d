package integrators

import (
	"fmt"
	"sort"

	"github.com/san-kum/neurosim/internal/dynamo"
)

var constructors = map[string]func() dynamo.Integrator{
	"euler": func() dynamo.Integrator { return NewEuler() },
	"rk4":   func() dynamo.Integrator { return NewRK4() },
}

// New returns a fresh integrator by name. RK4 keeps scratch buffers, so every
// simulator needs its own instance.
func New(name string) (dynamo.Integrator, error) {
	ctor, ok := constructors[name]
	if !ok {
		return nil, fmt.Errorf("unknown integrator: %s", name)
	}
	return ctor(), nil
}

func Names() []string {
	names := make([]string, 0, len(constructors))
	for n := range constructors {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
