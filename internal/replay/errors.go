package replay

import (
	"errors"
	"fmt"
)

var (
	// ErrUnknownOp indicates a step whose op is not recognized.
	ErrUnknownOp = errors.New("unknown op")

	// ErrBadStep indicates a step whose arguments do not fit the list.
	ErrBadStep = errors.New("invalid step")

	// ErrUnexpectedFailure indicates a list operation failed with no
	// fault armed.
	ErrUnexpectedFailure = errors.New("unexpected failure")
)

// StepError reports a step that could not be executed.
type StepError struct {
	Scenario string
	Index    int
	Op       Op
	Err      error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("%s: step %d (%s): %v", e.Scenario, e.Index, e.Op, e.Err)
}

func (e *StepError) Unwrap() error {
	return e.Err
}

// MismatchError records a check that failed after a step.
type MismatchError struct {
	Step  int
	Op    Op
	Check string
	Want  any
	Got   any
}

func (e *MismatchError) Error() string {
	return fmt.Sprintf("step %d (%s): %s: want %v, got %v", e.Step, e.Op, e.Check, e.Want, e.Got)
}
