package sim

import "errors"

var (
	// ErrInvalidInput is returned for malformed process specifications.
	// Detected before a run starts; the simulator never coerces bad input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrInvariantViolation signals inconsistent scheduler state. A run that
	// hits it is aborted.
	ErrInvariantViolation = errors.New("scheduler invariant violated")
)

// ErrAlreadyRun is returned when Run is called twice on the same Simulator.
// Every run needs a fresh Simulator built from the input specs.
var ErrAlreadyRun = errors.New("simulator already ran")
