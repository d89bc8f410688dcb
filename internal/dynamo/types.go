package dynamo

import (
	"fmt"
	"math"
)

type State []float64

func (s State) Clone() State {
	c := make(State, len(s))
	copy(c, s)
	return c
}

func (s State) IsValid() bool {
	for _, v := range s {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

func (s State) Norm() float64 {
	sum := 0.0
	for _, v := range s {
		sum += v * v
	}
	return math.Sqrt(sum)
}

// Sub returns s - other. Missing trailing entries of other count as zero.
func (s State) Sub(other State) State {
	d := s.Clone()
	for i := range d {
		if i >= len(other) {
			break
		}
		d[i] -= other[i]
	}
	return d
}

// System is an autonomous ODE dX/dt = f(X, t).
type System interface {
	Derive(x State, t float64) State
	StateDim() int
}

type Hamiltonian interface {
	Energy(x State) float64
}

type Integrator interface {
	Step(dyn System, x State, t float64, dt float64) State
}

type Metric interface {
	Name() string
	Observe(x State, t float64)
	Value() float64
	Reset()
}

// Observer sees the initial state and every accepted step of a run.
type Observer interface {
	OnStep(x State, t float64)
}

// Config describes one Simulator run. ValidateState stops the run with a
// SimError as soon as a step produces NaN or Inf.
type Config struct {
	Dt            float64
	Duration      float64
	ValidateState bool
}

type Result struct {
	Final         State
	Times         []float64
	Metrics       map[string]float64
	InitialEnergy float64
	FinalEnergy   float64
	EnergyDrift   float64
	StepsTaken    int
}

type SimError struct {
	Time    float64
	Step    int
	Message string
}

func (e SimError) Error() string {
	return fmt.Sprintf("step %d (t=%.4f): %s", e.Step, e.Time, e.Message)
}

func (e SimError) Unwrap() error { return ErrInvalidState }
