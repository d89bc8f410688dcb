package physics

import "math"

// Body is a point mass. Units are AU, years and solar masses scaled by 4π².
type Body struct {
	Position [3]float64 `json:"position"`
	Velocity [3]float64 `json:"velocity"`
	Mass     float64    `json:"mass"`
}

// System is the fixed five-body kernel: sun, jupiter, saturn, uranus, neptune.
// The zero value is not useful; use NewSystem or NewJovian.
type System struct {
	bodies [NumBodies]Body
}

// NewSystem returns the standard dataset before the momentum offset.
func NewSystem() *System {
	return &System{bodies: jovianBodies()}
}

// NewJovian returns the standard dataset with the momentum offset applied,
// ready for measurement and integration.
func NewJovian() *System {
	s := NewSystem()
	s.OffsetMomentum()
	return s
}

// NewSystemFrom builds a kernel over caller-supplied bodies. No offset is applied.
func NewSystemFrom(bodies [NumBodies]Body) *System {
	return &System{bodies: bodies}
}

// OffsetMomentum sets the sun's velocity so the total linear momentum is zero.
func (s *System) OffsetMomentum() { offsetMomentum(s.bodies[:]) }

// Advance integrates every body forward by dt.
func (s *System) Advance(dt float64) { advance(s.bodies[:], dt) }

// Energy returns total kinetic plus potential energy.
func (s *System) Energy() float64 { return energy(s.bodies[:]) }

// Momentum returns Σ mᵢvᵢ per axis.
func (s *System) Momentum() [3]float64 { return momentum(s.bodies[:]) }

// Bodies returns a copy of the current body states.
func (s *System) Bodies() [NumBodies]Body { return s.bodies }

func (s *System) Body(i int) Body { return s.bodies[i] }

func offsetMomentum(bodies []Body) {
	p := momentum(bodies)
	bodies[0].Velocity[0] = -p[0] / SolarMass
	bodies[0].Velocity[1] = -p[1] / SolarMass
	bodies[0].Velocity[2] = -p[2] / SolarMass
}

func momentum(bodies []Body) [3]float64 {
	var p [3]float64
	for i := range bodies {
		b := &bodies[i]
		p[0] += b.Velocity[0] * b.Mass
		p[1] += b.Velocity[1] * b.Mass
		p[2] += b.Velocity[2] * b.Mass
	}
	return p
}

// advance applies every pairwise velocity update before any position moves.
// Coincident bodies divide by zero; the dataset never produces them.
func advance(bodies []Body, dt float64) {
	n := len(bodies)
	for i := 0; i < n; i++ {
		bi := &bodies[i]
		for j := i + 1; j < n; j++ {
			bj := &bodies[j]

			dx := bi.Position[0] - bj.Position[0]
			dy := bi.Position[1] - bj.Position[1]
			dz := bi.Position[2] - bj.Position[2]

			dsq := dx*dx + dy*dy + dz*dz
			distance := math.Sqrt(dsq)
			mag := dt / (dsq * distance)

			bi.Velocity[0] -= dx * bj.Mass * mag
			bi.Velocity[1] -= dy * bj.Mass * mag
			bi.Velocity[2] -= dz * bj.Mass * mag

			bj.Velocity[0] += dx * bi.Mass * mag
			bj.Velocity[1] += dy * bi.Mass * mag
			bj.Velocity[2] += dz * bi.Mass * mag
		}
	}

	for i := range bodies {
		b := &bodies[i]
		b.Position[0] += dt * b.Velocity[0]
		b.Position[1] += dt * b.Velocity[1]
		b.Position[2] += dt * b.Velocity[2]
	}
}

func energy(bodies []Body) float64 {
	n := len(bodies)
	e := 0.0
	for i := 0; i < n; i++ {
		bi := &bodies[i]
		v := bi.Velocity
		e += 0.5 * bi.Mass * (v[0]*v[0] + v[1]*v[1] + v[2]*v[2])

		for j := i + 1; j < n; j++ {
			bj := &bodies[j]
			dx := bi.Position[0] - bj.Position[0]
			dy := bi.Position[1] - bj.Position[1]
			dz := bi.Position[2] - bj.Position[2]
			e -= bi.Mass * bj.Mass / math.Sqrt(dx*dx+dy*dy+dz*dz)
		}
	}
	return e
}
