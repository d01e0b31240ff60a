package alloc

import "sync/atomic"

// Stats is a snapshot of a Counting allocator's counters.
type Stats struct {
	Acquired    int64 // Slot slices handed out
	Released    int64 // Slot slices taken back
	Constructed int64 // Elements constructed
	Destroyed   int64 // Elements destroyed
}

// Live returns the number of slot slices currently outstanding.
func (s Stats) Live() int64 {
	return s.Acquired - s.Released
}

// LiveElements returns the number of elements constructed but not destroyed.
func (s Stats) LiveElements() int64 {
	return s.Constructed - s.Destroyed
}

// Counting wraps another allocator and records every request.
// It is used to verify that containers neither leak storage nor leave
// elements alive after rollback.
type Counting[T any] struct {
	inner Allocator[T]

	acquired    atomic.Int64
	released    atomic.Int64
	constructed atomic.Int64
	destroyed   atomic.Int64
}

// NewCounting wraps inner. A nil inner selects Heap.
func NewCounting[T any](inner Allocator[T]) *Counting[T] {
	if inner == nil {
		inner = Heap[T]{}
	}
	return &Counting[T]{inner: inner}
}

// Acquire forwards to the wrapped allocator and counts successes.
func (c *Counting[T]) Acquire(n int) ([]T, error) {
	s, err := c.inner.Acquire(n)
	if err != nil {
		return nil, err
	}
	c.acquired.Add(1)
	return s, nil
}

// Release forwards to the wrapped allocator.
func (c *Counting[T]) Release(s []T) {
	c.released.Add(1)
	c.inner.Release(s)
}

// Construct forwards to the wrapped allocator and counts successes.
func (c *Counting[T]) Construct(dst *T, v T) error {
	if err := c.inner.Construct(dst, v); err != nil {
		return err
	}
	c.constructed.Add(1)
	return nil
}

// Destroy forwards to the wrapped allocator.
func (c *Counting[T]) Destroy(p *T) {
	c.destroyed.Add(1)
	c.inner.Destroy(p)
}

// Stats returns a snapshot of the counters.
func (c *Counting[T]) Stats() Stats {
	return Stats{
		Acquired:    c.acquired.Load(),
		Released:    c.released.Load(),
		Constructed: c.constructed.Load(),
		Destroyed:   c.destroyed.Load(),
	}
}

// Live returns the number of slot slices currently outstanding.
func (c *Counting[T]) Live() int64 {
	return c.Stats().Live()
}

// LiveElements returns the number of elements currently alive.
func (c *Counting[T]) LiveElements() int64 {
	return c.Stats().LiveElements()
}
