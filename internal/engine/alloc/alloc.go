package alloc

import "fmt"

// Allocator acquires node storage and constructs elements within it.
//
// Acquire returns a slice of exactly n zero-valued slots. Release takes back a
// slice previously returned by Acquire; the caller must not use it afterwards.
// Construct places v into dst and may fail, leaving dst untouched. Destroy
// ends the lifetime of the element at p and never fails.
type Allocator[T any] interface {
	Acquire(n int) ([]T, error)
	Release(s []T)
	Construct(dst *T, v T) error
	Destroy(p *T)
}

// Names of the built-in strategies accepted by ByName.
const (
	NameHeap = "heap"
	NamePool = "pool"
)

// ByName returns a fresh allocator for a strategy name.
// An empty name selects the heap allocator.
func ByName[T any](name string) (Allocator[T], error) {
	switch name {
	case "", NameHeap:
		return Heap[T]{}, nil
	case NamePool:
		return NewPool[T](), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownAllocator, name)
	}
}

// Heap allocates slot slices with make and lets the garbage collector
// reclaim them.
type Heap[T any] struct{}

// Acquire returns n zeroed slots.
func (Heap[T]) Acquire(n int) ([]T, error) {
	if n <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidSize, n)
	}
	return make([]T, n), nil
}

// Release clears s so any referenced values can be collected.
func (Heap[T]) Release(s []T) {
	clear(s)
}

// Construct stores v in dst.
func (Heap[T]) Construct(dst *T, v T) error {
	*dst = v
	return nil
}

// Destroy zeroes the slot at p.
func (Heap[T]) Destroy(p *T) {
	var zero T
	*p = zero
}
