package integrators

import "github.com/san-kum/nbody/internal/dynamo"

// SymplecticEuler kicks velocities with the current accelerations and then
// drifts positions with the updated velocities. This is the kernel's scheme
// over the flat Planetary state.
type SymplecticEuler struct{}

func NewSymplecticEuler() *SymplecticEuler {
	return &SymplecticEuler{}
}

func (s *SymplecticEuler) Step(dyn dynamo.System, x dynamo.State, t, dt float64) dynamo.State {
	q, v := split(x)
	out := make(dynamo.State, len(x))
	q1, v1 := split(out)

	axpy(v1, v, accel(dyn, x, t), dt)
	axpy(q1, q, v1, dt)
	return out
}
