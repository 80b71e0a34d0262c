package dynamo

import (
	"errors"
	"fmt"
)

// Domain errors for simulation operations.
var (
	// ErrInvalidState indicates a particle with NaN or Inf state after a step.
	ErrInvalidState = errors.New("dynamo: invalid state (NaN or Inf detected)")

	// ErrInvalidConfig indicates a driver configuration that cannot run.
	ErrInvalidConfig = errors.New("dynamo: invalid configuration")

	// ErrContextCanceled indicates the simulation was interrupted.
	ErrContextCanceled = errors.New("dynamo: simulation canceled by context")

	// ErrStepBudget indicates the step ceiling was reached before max time.
	ErrStepBudget = errors.New("dynamo: step budget exhausted before max time")

	// ErrStalledStep indicates the timestep was repeatedly clamped to its floor.
	ErrStalledStep = errors.New("dynamo: timestep stalled at minimum")
)

// SimError wraps an error with the step at which it happened.
type SimError struct {
	Time    float64
	Step    int
	Message string
	Err     error
}

func (e *SimError) Error() string {
	return fmt.Sprintf("step %d (t=%.4f): %s", e.Step, e.Time, e.Message)
}

func (e *SimError) Unwrap() error {
	return e.Err
}

// StepBudgetError is the warning attached to a trajectory that stopped at
// MaxSteps.
type StepBudgetError struct {
	Steps   int
	Time    float64
	MaxTime float64
}

func (e *StepBudgetError) Error() string {
	return fmt.Sprintf("%v: %d steps reached t=%.6g of %.6g", ErrStepBudget, e.Steps, e.Time, e.MaxTime)
}

func (e *StepBudgetError) Unwrap() error {
	return ErrStepBudget
}
