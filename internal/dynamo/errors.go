package dynamo

import (
	"errors"
	"fmt"
)

// Domain errors for generation and rendering.
var (
	// ErrInvalidParams indicates a missing, non-numeric or non-finite parameter.
	ErrInvalidParams = errors.New("dynamo: invalid parameters (NaN, Inf or not a number)")

	// ErrParameterBounds indicates a parameter name or value the map does not know.
	ErrParameterBounds = errors.New("dynamo: parameter out of valid bounds")

	// ErrInvalidIterations indicates a negative iteration or skip count.
	ErrInvalidIterations = errors.New("dynamo: iteration counts must be non-negative")

	// ErrSkipExceedsTotal indicates a skip prefix longer than the orbit.
	ErrSkipExceedsTotal = errors.New("dynamo: skip exceeds total iterations")

	// ErrEmptySequence indicates bounds were requested for zero points.
	ErrEmptySequence = errors.New("dynamo: empty point sequence has no bounds")

	// ErrDiverged indicates the orbit left the finite plane and cannot be drawn.
	ErrDiverged = errors.New("dynamo: orbit diverged (non-renderable result)")

	// ErrInvalidViewport indicates a viewport with no drawable area.
	ErrInvalidViewport = errors.New("dynamo: viewport has no drawable area")

	// ErrInvalidStyle indicates a point radius that is non-finite, not
	// positive or larger than viz.MaxRadius.
	ErrInvalidStyle = errors.New("dynamo: invalid point style")
)

// GenerationError wraps an error with the step it was detected at.
type GenerationError struct {
	Step    int
	Point   Point
	Wrapped error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("step %d at %v: %v", e.Step, e.Point, e.Wrapped)
}

func (e *GenerationError) Unwrap() error {
	return e.Wrapped
}
