package dynamo

import (
	"context"
	"fmt"
	"math"
)

type Simulator struct {
	dyn        System
	integrator Integrator
	metrics    []Metric
	observers  []Observer
}

func New(dyn System, integrator Integrator) *Simulator {
	return &Simulator{
		dyn:        dyn,
		integrator: integrator,
		metrics:    make([]Metric, 0),
		observers:  make([]Observer, 0),
	}
}

func (s *Simulator) AddMetric(m Metric) { s.metrics = append(s.metrics, m) }

func (s *Simulator) AddObserver(o Observer) { s.observers = append(s.observers, o) }

// Run integrates x0 for round(Duration/Dt) steps. On cancellation the partial
// result is returned alongside ctx.Err().
func (s *Simulator) Run(ctx context.Context, x0 State, cfg Config) (*Result, error) {
	if err := s.validateConfig(x0, cfg); err != nil {
		return nil, err
	}

	steps := int(math.Round(cfg.Duration / cfg.Dt))
	result := &Result{
		Times:   make([]float64, 0, steps+1),
		Metrics: make(map[string]float64),
	}

	for _, m := range s.metrics {
		m.Reset()
	}

	x := x0.Clone()
	t := 0.0
	result.Times = append(result.Times, t)
	result.InitialEnergy = s.computeEnergy(x)
	s.notify(x, t)

	for i := 0; i < steps; i++ {
		select {
		case <-ctx.Done():
			s.finish(result, x)
			return result, ctx.Err()
		default:
		}

		for _, m := range s.metrics {
			m.Observe(x, t)
		}

		newX := s.integrator.Step(s.dyn, x, t, cfg.Dt)
		if cfg.ValidateState && !newX.IsValid() {
			s.finish(result, x)
			return result, SimError{Time: t, Step: i, Message: "invalid state (NaN/Inf)"}
		}

		x = newX
		t += cfg.Dt
		result.StepsTaken++
		result.Times = append(result.Times, t)
		s.notify(x, t)
	}

	for _, m := range s.metrics {
		m.Observe(x, t)
	}
	s.finish(result, x)
	return result, nil
}

func (s *Simulator) notify(x State, t float64) {
	for _, o := range s.observers {
		o.OnStep(x, t)
	}
}

func (s *Simulator) finish(result *Result, x State) {
	result.Final = x.Clone()
	result.FinalEnergy = s.computeEnergy(x)
	if result.InitialEnergy != 0 {
		result.EnergyDrift = math.Abs(result.FinalEnergy-result.InitialEnergy) / math.Abs(result.InitialEnergy)
	}
	for _, m := range s.metrics {
		result.Metrics[m.Name()] = m.Value()
	}
}

func (s *Simulator) validateConfig(x0 State, cfg Config) error {
	if cfg.Dt <= 0 {
		return fmt.Errorf("dt must be positive, got %f: %w", cfg.Dt, ErrInvalidArgument)
	}
	if cfg.Duration <= 0 {
		return fmt.Errorf("duration must be positive, got %f: %w", cfg.Duration, ErrInvalidArgument)
	}
	if len(x0) != s.dyn.StateDim() {
		return fmt.Errorf("state has %d values, system expects %d: %w", len(x0), s.dyn.StateDim(), ErrInvalidArgument)
	}
	return nil
}

func (s *Simulator) computeEnergy(x State) float64 {
	if h, ok := s.dyn.(Hamiltonian); ok {
		return h.Energy(x)
	}
	return 0
}
