package physics

type BodySnapshot struct {
	Name     string     `json:"name"`
	Position [3]float64 `json:"position"`
	Velocity [3]float64 `json:"velocity"`
}

// Snapshot is a copy of the kernel at one step, safe to hand to other goroutines.
type Snapshot struct {
	Step   int                     `json:"step"`
	Time   float64                 `json:"time"`
	Energy float64                 `json:"energy"`
	Bodies [NumBodies]BodySnapshot `json:"bodies"`
}

func (s *System) Snapshot(step int, dt float64) Snapshot {
	snap := Snapshot{
		Step:   step,
		Time:   float64(step) * dt,
		Energy: s.Energy(),
	}
	for i, b := range s.bodies {
		snap.Bodies[i] = BodySnapshot{
			Name:     Names[i],
			Position: b.Position,
			Velocity: b.Velocity,
		}
	}
	return snap
}
