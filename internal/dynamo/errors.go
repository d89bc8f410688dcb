package dynamo

import "errors"

// Domain errors shared across the benchmark packages.
var (
	// ErrInvalidArgument indicates a caller-supplied value outside its contract,
	// such as a negative step count.
	ErrInvalidArgument = errors.New("dynamo: invalid argument")

	// ErrInvalidState indicates a state vector containing NaN or Inf.
	ErrInvalidState = errors.New("dynamo: invalid state (NaN or Inf detected)")

	ErrUnknownIntegrator = errors.New("dynamo: unknown integrator")
	ErrUnknownPreset     = errors.New("dynamo: unknown preset")

	// ErrRunNotFound indicates a stored run id with no metadata on disk.
	ErrRunNotFound = errors.New("dynamo: run not found")

	ErrNoData = errors.New("dynamo: no data")
)
