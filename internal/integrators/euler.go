package integrators

import "github.com/san-kum/nbody/internal/dynamo"

// Euler is the explicit first-order method. It is not symplectic and the
// five-body energy drifts steadily under it.
type Euler struct{}

func NewEuler() *Euler {
	return &Euler{}
}

func (e *Euler) Step(dyn dynamo.System, x dynamo.State, t, dt float64) dynamo.State {
	out := make(dynamo.State, len(x))
	axpy(out, x, dyn.Derive(x, t), dt)
	return out
}
