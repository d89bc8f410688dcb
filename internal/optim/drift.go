package optim

import (
	"context"
	"fmt"

	"github.com/san-kum/nbody/internal/dynamo"
	"github.com/san-kum/nbody/internal/integrators"
	"github.com/san-kum/nbody/internal/metrics"
	"github.com/san-kum/nbody/internal/physics"
)

// DriftObjective integrates the five-body system for the given number of
// years with the named integrator, reading the timestep from the "dt"
// parameter, and scores the largest relative energy error seen. Each call
// gets its own integrator, so the objective is safe for concurrent use.
func DriftObjective(integrator string, years float64) (Objective, error) {
	if _, err := integrators.Lookup(integrator); err != nil {
		return nil, err
	}

	return func(ctx context.Context, params map[string]float64) (float64, error) {
		dt, ok := params["dt"]
		if !ok {
			return 0, fmt.Errorf("missing dt parameter: %w", dynamo.ErrInvalidArgument)
		}

		integ, err := integrators.Lookup(integrator)
		if err != nil {
			return 0, err
		}

		planetary := physics.NewPlanetary()
		drift := metrics.NewEnergyDrift(planetary)
		sim := dynamo.New(planetary, integ)
		sim.AddMetric(drift)

		result, err := sim.Run(ctx, physics.NewJovian().State(), dynamo.Config{
			Dt:            dt,
			Duration:      years,
			ValidateState: true,
		})
		if err != nil {
			return 0, err
		}
		return result.Metrics[drift.Name()], nil
	}, nil
}
