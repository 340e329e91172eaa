package scml

import (
	"errors"
	"fmt"
)

// Construction and usage errors of the drive system.
var (
	// ErrShapeMismatch indicates incompatible component shapes at
	// construction. The system cannot be built.
	ErrShapeMismatch = errors.New("scml: incompatible component shapes")

	// ErrInvalidAction indicates an action outside the converter's action
	// space.
	ErrInvalidAction = errors.New("scml: action not contained in action space")

	// ErrInvalidState indicates a state vector with NaN or Inf entries.
	ErrInvalidState = errors.New("scml: invalid state (NaN or Inf detected)")
)

func shapeError(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrShapeMismatch, fmt.Sprintf(format, args...))
}
