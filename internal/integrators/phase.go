package integrators

import "github.com/san-kum/nbody/internal/dynamo"

// The splitting integrators work on a flat state laid out as all positions
// followed by all velocities, the physics.Planetary layout.

func split(x dynamo.State) (q, v dynamo.State) {
	h := len(x) / 2
	return x[:h], x[h:]
}

// accel evaluates the velocity half of the derivative, i.e. accelerations.
func accel(dyn dynamo.System, x dynamo.State, t float64) dynamo.State {
	_, a := split(dyn.Derive(x, t))
	return a
}

// axpy sets dst = x + h*y.
func axpy(dst, x, y dynamo.State, h float64) {
	for i := range dst {
		dst[i] = x[i] + h*y[i]
	}
}

func grow(buf dynamo.State, n int) dynamo.State {
	if len(buf) != n {
		return make(dynamo.State, n)
	}
	return buf
}
