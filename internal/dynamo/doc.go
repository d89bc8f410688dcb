// Package dynamo provides the simulation primitives shared by the benchmark.
//
// The package defines the interfaces and types used to integrate flat state
// vectors outside the fixed five-body kernel:
//
//   - [State]: vector representing system state
//   - [System]: interface for autonomous ODE systems (dX/dt = f(X, t))
//   - [Integrator]: numerical stepper interface
//   - [Simulator]: orchestrates a run and reports energy drift
//
// It also holds the sentinel errors returned across package boundaries,
// such as [ErrInvalidArgument] for a negative step count.
//
// # Example
//
//	dyn := physics.NewPlanetary()
//	integ := integrators.NewLeapfrog()
//	sim := dynamo.New(dyn, integ)
//	result, _ := sim.Run(ctx, dyn.InitialState(), cfg)
//
// # Thread Safety
//
// Simulator instances, and the stateful integrators they drive, are not safe
// for concurrent use. Build one per goroutine.
package dynamo
