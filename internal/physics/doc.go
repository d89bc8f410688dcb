// Package physics implements the fixed five-body gravitational kernel.
//
// [System] owns the sun and the four gas giants in a fixed array and exposes
// the three benchmark operations:
//
//   - [System.OffsetMomentum]: zero the net momentum by adjusting the sun
//   - [System.Advance]: one symmetric pairwise velocity pass, then positions
//   - [System.Energy]: kinetic minus pairwise potential energy
//
// Pairs are always enumerated as i < j so results are reproducible to the bit.
//
// [Planetary] presents the same problem as a flat [dynamo.System] with a
// [dynamo.Hamiltonian] energy, for comparing other integrators:
//
//	s := physics.NewJovian()
//	e0 := s.Energy()
//	for i := 0; i < 1000; i++ {
//	    s.Advance(0.01)
//	}
//	fmt.Printf("%.9f\n%.9f\n", e0, s.Energy())
package physics
