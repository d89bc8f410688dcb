package integrators

import "github.com/san-kum/nbody/internal/dynamo"

// rk4Nodes are the classic Runge-Kutta stage offsets (as fractions of dt)
// and rk4Weights the matching weights, scaled by 1/6 at the end.
var (
	rk4Nodes   = [4]float64{0, 0.5, 0.5, 1}
	rk4Weights = [4]float64{1, 2, 2, 1}
)

// RK4 is the classic fourth-order Runge-Kutta method. It is accurate per
// step but not symplectic, so over long runs its energy error grows.
type RK4 struct {
	stage dynamo.State
	acc   dynamo.State
}

func NewRK4() *RK4 {
	return &RK4{}
}

func (r *RK4) Step(dyn dynamo.System, x dynamo.State, t, dt float64) dynamo.State {
	n := len(x)
	r.stage = grow(r.stage, n)
	r.acc = grow(r.acc, n)
	for i := range r.acc {
		r.acc[i] = 0
	}

	var k dynamo.State
	for s := 0; s < 4; s++ {
		if s == 0 {
			k = dyn.Derive(x, t)
		} else {
			axpy(r.stage, x, k, rk4Nodes[s]*dt)
			k = dyn.Derive(r.stage, t+rk4Nodes[s]*dt)
		}
		for i := range r.acc {
			r.acc[i] += rk4Weights[s] * k[i]
		}
	}

	out := make(dynamo.State, n)
	axpy(out, x, r.acc, dt/6)
	return out
}
