package dynamo

import (
	"errors"
	"fmt"
)

// Domain errors for simulation operations.
var (
	// ErrInvalidMass indicates a body constructed with a non-positive or
	// non-finite mass.
	ErrInvalidMass = errors.New("dynamo: mass must be positive and finite")

	// ErrInvalidSource indicates a field source with a negative or
	// non-finite diameter, position or charge.
	ErrInvalidSource = errors.New("dynamo: invalid field source")

	// ErrInvalidState indicates a body state with NaN or Inf components.
	ErrInvalidState = errors.New("dynamo: invalid state (NaN or Inf detected)")

	// ErrParameterBounds indicates a parameter value is outside valid range.
	ErrParameterBounds = errors.New("dynamo: parameter out of valid bounds")

	// ErrContextCanceled indicates the simulation was interrupted.
	ErrContextCanceled = errors.New("dynamo: simulation canceled by context")
)

// SimulationError wraps an error with the step it happened at.
type SimulationError struct {
	Step     int
	Position Vec2
	Velocity Vec2
	Wrapped  error
}

func (e *SimulationError) Error() string {
	return fmt.Sprintf("step %d (pos=%s vel=%s): %v", e.Step, e.Position, e.Velocity, e.Wrapped)
}

func (e *SimulationError) Unwrap() error {
	return e.Wrapped
}
