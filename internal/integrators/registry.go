package integrators

import (
	"fmt"
	"sort"

	"github.com/san-kum/nbody/internal/dynamo"
)

var registry = map[string]func() dynamo.Integrator{
	"euler":      func() dynamo.Integrator { return NewEuler() },
	"symplectic": func() dynamo.Integrator { return NewSymplecticEuler() },
	"leapfrog":   func() dynamo.Integrator { return NewLeapfrog() },
	"verlet":     func() dynamo.Integrator { return NewVerlet() },
	"rk4":        func() dynamo.Integrator { return NewRK4() },
}

// Lookup returns a fresh integrator; stateful ones keep scratch buffers.
func Lookup(name string) (dynamo.Integrator, error) {
	fn, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s (available: %v)", dynamo.ErrUnknownIntegrator, name, Names())
	}
	return fn(), nil
}

func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
