package unrolled

import (
	"errors"
	"fmt"
)

// Errors returned by list construction and mutation.
var (
	// ErrInvalidCapacity is returned when a node capacity outside
	// [1, MaxNodeCapacity] is configured.
	ErrInvalidCapacity = errors.New("node capacity out of range")

	// ErrInvalidCount is returned when a negative repeat count is given.
	ErrInvalidCount = errors.New("count must not be negative")
)

// InvariantError describes a structural invariant found broken by Validate.
type InvariantError struct {
	// Property names the violated invariant (e.g. "node-count", "size").
	Property string
	// Node is the 0-based position of the offending node in the chain, or -1.
	Node int
	// Detail describes the violation.
	Detail string
}

// Error implements the error interface.
func (e *InvariantError) Error() string {
	if e.Node >= 0 {
		return fmt.Sprintf("invariant %s violated at node %d: %s", e.Property, e.Node, e.Detail)
	}
	return fmt.Sprintf("invariant %s violated: %s", e.Property, e.Detail)
}
