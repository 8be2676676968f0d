package dynamo

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidState is reported when the body state picks up a NaN or Inf,
	// usually because a controller drove it out of its stable range.
	ErrInvalidState = errors.New("dynamo: state diverged (NaN or Inf)")

	ErrInvalidConfig     = errors.New("dynamo: invalid simulation config")
	ErrDimensionMismatch = errors.New("dynamo: state does not match system dimension")

	// ErrEpisodeDone is returned by Episode.Step once the duration is reached.
	ErrEpisodeDone = errors.New("dynamo: episode finished")
)

// SimulationError records where in a run a step failed.
type SimulationError struct {
	Step    int
	Time    float64
	State   State
	Wrapped error
}

func (e *SimulationError) Error() string {
	return fmt.Sprintf("step %d (t=%.4g): %v", e.Step, e.Time, e.Wrapped)
}

func (e *SimulationError) Unwrap() error {
	return e.Wrapped
}
