package alloc

import (
	"fmt"
	"sync"
)

// Pool recycles slot slices through sync.Pool, keeping one pool per slice
// length. It is primarily beneficial for:
//   - Workloads that repeatedly grow and shrink a container
//   - Many small containers sharing one node capacity
//   - Reducing GC pressure from short-lived nodes
//
// Pool is safe for concurrent use; the containers it serves are not.
type Pool[T any] struct {
	mu    sync.Mutex
	pools map[int]*sync.Pool
}

// NewPool creates an empty pool allocator.
func NewPool[T any]() *Pool[T] {
	return &Pool[T]{
		pools: make(map[int]*sync.Pool),
	}
}

// poolFor returns the sync.Pool serving slices of length n.
func (p *Pool[T]) poolFor(n int) *sync.Pool {
	p.mu.Lock()
	defer p.mu.Unlock()

	sp, ok := p.pools[n]
	if !ok {
		sp = &sync.Pool{
			New: func() interface{} {
				s := make([]T, n)
				return &s
			},
		}
		p.pools[n] = sp
	}
	return sp
}

// Acquire retrieves n zeroed slots, reusing a released slice when one is
// available.
func (p *Pool[T]) Acquire(n int) ([]T, error) {
	if n <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidSize, n)
	}
	s := p.poolFor(n).Get().(*[]T)
	return *s, nil
}

// Release clears s and returns it to the pool for its length.
// The slice must not be used after calling this method.
func (p *Pool[T]) Release(s []T) {
	if len(s) == 0 {
		return
	}
	// Clear references so pooled slices don't pin element data
	clear(s)
	p.poolFor(len(s)).Put(&s)
}

// Construct stores v in dst.
func (p *Pool[T]) Construct(dst *T, v T) error {
	*dst = v
	return nil
}

// Destroy zeroes the slot at p.
func (p *Pool[T]) Destroy(ptr *T) {
	var zero T
	*ptr = zero
}
