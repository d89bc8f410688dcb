// Package analysis inspects benchmark output beyond the two energy numbers.
//
//   - [EnergySpectrum]: power spectrum of the relative energy error, whose
//     dominant period tracks the inner planet's orbit
//   - [Divergence]: largest Lyapunov exponent of the kernel from two
//     nearby trajectories
//
// A symplectic integrator keeps the energy error bounded and oscillating;
// a secular trend in [EnergyError] points at a broken kernel.
package analysis
