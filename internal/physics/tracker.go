package physics

import "github.com/san-kum/nbody/internal/dynamo"

// Tracker is a dynamo.Observer that records a Snapshot of a Planetary run
// every Every steps, starting with the initial state.
type Tracker struct {
	planetary *Planetary
	every     int
	dt        float64
	step      int
	snapshots []Snapshot
}

func (p *Planetary) NewTracker(every int, dt float64) *Tracker {
	if every < 1 {
		every = 1
	}
	return &Tracker{planetary: p, every: every, dt: dt}
}

func (tr *Tracker) OnStep(x dynamo.State, t float64) {
	if tr.step%tr.every == 0 {
		tr.snapshots = append(tr.snapshots, tr.planetary.System(x).Snapshot(tr.step, tr.dt))
	}
	tr.step++
}

func (tr *Tracker) Snapshots() []Snapshot { return tr.snapshots }
