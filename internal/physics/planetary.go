package physics

import (
	"math"

	"github.com/san-kum/nbody/internal/dynamo"
)

// Planetary exposes the five-body problem as a flat dynamo.System so the
// generic integrators can be compared against the kernel. The state layout is
// 15 positions (x,y,z per body) followed by 15 velocities.
type Planetary struct {
	Masses [NumBodies]float64
}

func NewPlanetary() *Planetary {
	p := &Planetary{}
	for i, b := range jovianBodies() {
		p.Masses[i] = b.Mass
	}
	return p
}

func (p *Planetary) StateDim() int { return NumBodies * 6 }

// InitialState returns the momentum-offset dataset in flat form.
func (p *Planetary) InitialState() dynamo.State {
	return NewJovian().State()
}

func (p *Planetary) Derive(x dynamo.State, t float64) dynamo.State {
	const half = NumBodies * 3
	dx := make(dynamo.State, len(x))
	copy(dx[:half], x[half:])

	acc := dx[half:]
	for i := 0; i < NumBodies; i++ {
		for j := i + 1; j < NumBodies; j++ {
			rx := x[i*3] - x[j*3]
			ry := x[i*3+1] - x[j*3+1]
			rz := x[i*3+2] - x[j*3+2]

			dsq := rx*rx + ry*ry + rz*rz
			inv := 1.0 / (dsq * math.Sqrt(dsq))

			acc[i*3] -= rx * p.Masses[j] * inv
			acc[i*3+1] -= ry * p.Masses[j] * inv
			acc[i*3+2] -= rz * p.Masses[j] * inv

			acc[j*3] += rx * p.Masses[i] * inv
			acc[j*3+1] += ry * p.Masses[i] * inv
			acc[j*3+2] += rz * p.Masses[i] * inv
		}
	}

	return dx
}

func (p *Planetary) Energy(x dynamo.State) float64 {
	bodies := p.unpack(x)
	return energy(bodies[:])
}

func (p *Planetary) unpack(x dynamo.State) [NumBodies]Body {
	const half = NumBodies * 3
	var bodies [NumBodies]Body
	for i := range bodies {
		copy(bodies[i].Position[:], x[i*3:i*3+3])
		copy(bodies[i].Velocity[:], x[half+i*3:half+i*3+3])
		bodies[i].Mass = p.Masses[i]
	}
	return bodies
}

// State flattens the kernel into the Planetary layout.
func (s *System) State() dynamo.State {
	const half = NumBodies * 3
	x := make(dynamo.State, NumBodies*6)
	for i, b := range s.bodies {
		copy(x[i*3:i*3+3], b.Position[:])
		copy(x[half+i*3:half+i*3+3], b.Velocity[:])
	}
	return x
}

// System rebuilds a kernel from a flat state.
func (p *Planetary) System(x dynamo.State) *System {
	return NewSystemFrom(p.unpack(x))
}
