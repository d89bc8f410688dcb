// Package optim runs parameter sweeps over a grid. The sweep command uses it
// to find how the energy error of each integrator grows with the timestep.
package optim
