package integrators

import "github.com/san-kum/nbody/internal/dynamo"

// Leapfrog is kick-drift-kick: half a velocity kick, a full position drift
// with the half-step velocity, then the second half kick with the new
// accelerations. Second order and symplectic.
type Leapfrog struct {
	mid dynamo.State
}

func NewLeapfrog() *Leapfrog {
	return &Leapfrog{}
}

func (l *Leapfrog) Step(dyn dynamo.System, x dynamo.State, t, dt float64) dynamo.State {
	l.mid = grow(l.mid, len(x))
	q, v := split(x)
	qm, vm := split(l.mid)

	axpy(vm, v, accel(dyn, x, t), dt/2)
	axpy(qm, q, vm, dt)

	out := make(dynamo.State, len(x))
	q1, v1 := split(out)
	copy(q1, qm)
	axpy(v1, vm, accel(dyn, l.mid, t+dt), dt/2)
	return out
}

// Verlet is velocity Verlet: positions advance with the Taylor step
// q + v·dt + a·dt²/2 and velocities with the mean of the old and new
// accelerations.
type Verlet struct {
	probe dynamo.State
}

func NewVerlet() *Verlet {
	return &Verlet{}
}

func (vv *Verlet) Step(dyn dynamo.System, x dynamo.State, t, dt float64) dynamo.State {
	vv.probe = grow(vv.probe, len(x))
	q, v := split(x)
	a0 := accel(dyn, x, t)

	out := make(dynamo.State, len(x))
	q1, v1 := split(out)
	for i := range q1 {
		q1[i] = q[i] + dt*(v[i]+0.5*dt*a0[i])
	}

	pq, pv := split(vv.probe)
	copy(pq, q1)
	copy(pv, v)
	a1 := accel(dyn, vv.probe, t+dt)

	for i := range v1 {
		v1[i] = v[i] + 0.5*dt*(a0[i]+a1[i])
	}
	return out
}
