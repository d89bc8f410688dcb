// Package bench drives the five-body benchmark around the physics kernel.
//
// It owns the step-count boundary ([ParseSteps]), runs the kernel with
// optional energy sampling and orbit tracking ([Runner.Run]) and formats the
// canonical two-line output ([WriteEnergies]).
package bench
