package script

import "errors"

var (
	// ErrHostClosed is returned when running on a closed host.
	ErrHostClosed = errors.New("script host is closed")

	// ErrExecutionTimeout is returned when a script outlives its deadline.
	ErrExecutionTimeout = errors.New("script execution timeout")

	// ErrInstructionLimit is returned when a script exhausts its budget.
	ErrInstructionLimit = errors.New("script instruction limit exceeded")
)
