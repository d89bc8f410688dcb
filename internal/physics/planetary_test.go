package physics

import (
	"math"
	"testing"
)

func TestPlanetaryStateRoundTrip(t *testing.T) {
	p := NewPlanetary()
	x := p.InitialState()

	if len(x) != p.StateDim() {
		t.Fatalf("state len = %d, want %d", len(x), p.StateDim())
	}

	s := NewJovian()
	if got, want := p.Energy(x), s.Energy(); got != want {
		t.Errorf("flat energy = %v, kernel energy = %v", got, want)
	}

	if x[NumBodies*3+3] != s.Body(1).Velocity[0] {
		t.Error("velocities should follow the 15 position values")
	}
}

func TestPlanetaryDerive(t *testing.T) {
	p := NewPlanetary()
	x := p.InitialState()
	dx := p.Derive(x, 0)

	const half = NumBodies * 3
	for i := 0; i < half; i++ {
		if dx[i] != x[half+i] {
			t.Fatalf("dx[%d] = %v, want velocity %v", i, dx[i], x[half+i])
		}
	}

	// Newton's third law: Σ m a = 0
	for axis := 0; axis < 3; axis++ {
		net := 0.0
		for i := 0; i < NumBodies; i++ {
			net += p.Masses[i] * dx[half+i*3+axis]
		}
		if math.Abs(net) > 1e-12 {
			t.Errorf("axis %d: net force %e", axis, net)
		}
	}

	// Sun is pulled towards jupiter, which sits at positive x.
	if dx[half] <= 0 {
		t.Errorf("sun ax = %v, expected positive", dx[half])
	}
}
