package alloc

import "sync"

// Faulty wraps another allocator and fails selected requests.
//
// FailAcquireAfter(n) lets n more acquisitions succeed and fails the next
// one; FailConstructAfter works the same way for element construction.
// A trigger fires once and then disarms. Negative counts disarm.
type Faulty[T any] struct {
	inner Allocator[T]

	mu              sync.Mutex
	acquireBudget   int
	constructBudget int
}

// NewFaulty wraps inner with both triggers disarmed. A nil inner selects Heap.
func NewFaulty[T any](inner Allocator[T]) *Faulty[T] {
	if inner == nil {
		inner = Heap[T]{}
	}
	return &Faulty[T]{
		inner:           inner,
		acquireBudget:   -1,
		constructBudget: -1,
	}
}

// FailAcquireAfter arms the acquire trigger.
func (f *Faulty[T]) FailAcquireAfter(n int) {
	f.mu.Lock()
	f.acquireBudget = n
	f.mu.Unlock()
}

// FailConstructAfter arms the construct trigger.
func (f *Faulty[T]) FailConstructAfter(n int) {
	f.mu.Lock()
	f.constructBudget = n
	f.mu.Unlock()
}

// Disarm cancels both triggers.
func (f *Faulty[T]) Disarm() {
	f.mu.Lock()
	f.acquireBudget = -1
	f.constructBudget = -1
	f.mu.Unlock()
}

// Armed reports whether either trigger is still pending.
func (f *Faulty[T]) Armed() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.acquireBudget >= 0 || f.constructBudget >= 0
}

// tick consumes one unit of budget and reports whether the request fails.
func tick(budget *int) bool {
	switch {
	case *budget < 0:
		return false
	case *budget == 0:
		*budget = -1
		return true
	default:
		*budget--
		return false
	}
}

// Acquire fails with ErrOutOfMemory when the acquire trigger fires.
func (f *Faulty[T]) Acquire(n int) ([]T, error) {
	f.mu.Lock()
	fail := tick(&f.acquireBudget)
	f.mu.Unlock()
	if fail {
		return nil, ErrOutOfMemory
	}
	return f.inner.Acquire(n)
}

// Release forwards to the wrapped allocator.
func (f *Faulty[T]) Release(s []T) {
	f.inner.Release(s)
}

// Construct fails with ErrConstruct when the construct trigger fires.
func (f *Faulty[T]) Construct(dst *T, v T) error {
	f.mu.Lock()
	fail := tick(&f.constructBudget)
	f.mu.Unlock()
	if fail {
		return ErrConstruct
	}
	return f.inner.Construct(dst, v)
}

// Destroy forwards to the wrapped allocator.
func (f *Faulty[T]) Destroy(p *T) {
	f.inner.Destroy(p)
}
