package alloc

import "errors"

// Errors returned by allocators.
var (
	// ErrOutOfMemory is returned when storage cannot be acquired.
	ErrOutOfMemory = errors.New("out of memory")

	// ErrConstruct is returned when an element cannot be constructed in place.
	ErrConstruct = errors.New("element construction failed")

	// ErrUnknownAllocator is returned by ByName for unrecognized names.
	ErrUnknownAllocator = errors.New("unknown allocator")

	// ErrInvalidSize is returned when a non-positive slot count is requested.
	ErrInvalidSize = errors.New("invalid allocation size")
)
