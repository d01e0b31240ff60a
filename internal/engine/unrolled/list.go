package unrolled

import (
	"fmt"
	"math"

	"github.com/dshills/unrolled/internal/engine/alloc"
)

// DefaultNodeCapacity is the number of elements per node when none is configured.
const DefaultNodeCapacity = 10

// MaxNodeCapacity is the largest accepted node capacity.
const MaxNodeCapacity = 1 << 16

// CheckCapacity reports whether n is an acceptable node capacity.
// Zero is accepted and selects DefaultNodeCapacity.
func CheckCapacity(n int) error {
	if n < 0 || n > MaxNodeCapacity {
		return fmt.Errorf("%w: %d", ErrInvalidCapacity, n)
	}
	return nil
}

// Config holds the construction parameters of a List.
// Zero fields select the defaults.
type Config[T any] struct {
	// NodeCapacity is the maximum number of elements per node (default 10).
	NodeCapacity int

	// NodeAllocator provides node storage (default alloc.Heap).
	NodeAllocator alloc.Allocator[T]

	// ElementAllocator constructs and destroys elements in node storage.
	// Defaults to NodeAllocator when that is set, otherwise alloc.Heap.
	ElementAllocator alloc.Allocator[T]
}

// withDefaults validates c and fills in zero fields.
func (c Config[T]) withDefaults() (Config[T], error) {
	if err := CheckCapacity(c.NodeCapacity); err != nil {
		return c, err
	}
	if c.NodeCapacity == 0 {
		c.NodeCapacity = DefaultNodeCapacity
	}
	if c.NodeAllocator == nil {
		c.NodeAllocator = alloc.Heap[T]{}
	}
	if c.ElementAllocator == nil {
		c.ElementAllocator = c.NodeAllocator
	}
	return c, nil
}

// List is an unrolled doubly linked list.
// The zero value is an empty list with the default configuration.
type List[T any] struct {
	head *node[T]
	tail *node[T]
	size int

	capacity int
	nodes    alloc.Allocator[T]
	elems    alloc.Allocator[T]
}

// New creates an empty list with the default configuration.
func New[T any]() *List[T] {
	l := &List[T]{}
	l.lazyInit()
	return l
}

// NewWithConfig creates an empty list with the given configuration.
func NewWithConfig[T any](cfg Config[T]) (*List[T], error) {
	cfg, err := cfg.withDefaults()
	if err != nil {
		return nil, err
	}
	return &List[T]{
		capacity: cfg.NodeCapacity,
		nodes:    cfg.NodeAllocator,
		elems:    cfg.ElementAllocator,
	}, nil
}

// lazyInit applies the default configuration to a zero List.
func (l *List[T]) lazyInit() {
	if l.capacity == 0 {
		l.capacity = DefaultNodeCapacity
	}
	if l.nodes == nil {
		l.nodes = alloc.Heap[T]{}
	}
	if l.elems == nil {
		l.elems = l.nodes
	}
}

// config returns the configuration l was built with.
func (l *List[T]) config() Config[T] {
	l.lazyInit()
	return Config[T]{
		NodeCapacity:     l.capacity,
		NodeAllocator:    l.nodes,
		ElementAllocator: l.elems,
	}
}

// Len returns the number of elements.
func (l *List[T]) Len() int {
	return l.size
}

// Empty returns true if the list holds no elements.
func (l *List[T]) Empty() bool {
	return l.head == nil
}

// MaxSize returns the theoretical upper bound on the number of elements.
func (l *List[T]) MaxSize() int {
	return math.MaxInt
}

// NodeCapacity returns the maximum number of elements per node.
func (l *List[T]) NodeCapacity() int {
	if l.capacity == 0 {
		return DefaultNodeCapacity
	}
	return l.capacity
}

// NodeCount returns the number of nodes in the chain.
func (l *List[T]) NodeCount() int {
	count := 0
	for n := l.head; n != nil; n = n.next {
		count++
	}
	return count
}

// Allocator returns the node allocation strategy.
func (l *List[T]) Allocator() alloc.Allocator[T] {
	l.lazyInit()
	return l.nodes
}

// ElementAllocator returns the element construction strategy.
func (l *List[T]) ElementAllocator() alloc.Allocator[T] {
	l.lazyInit()
	return l.elems
}

// Front returns the first element. The list must not be empty.
func (l *List[T]) Front() T {
	return l.head.slots[0]
}

// Back returns the last element. The list must not be empty.
func (l *List[T]) Back() T {
	return l.tail.slots[l.tail.count-1]
}

// Clear destroys every element and releases every node.
func (l *List[T]) Clear() {
	for n := l.head; n != nil; {
		next := n.next
		l.releaseNode(n)
		n = next
	}
	l.head = nil
	l.tail = nil
	l.size = 0
}

// Slice returns a copy of the elements in order.
func (l *List[T]) Slice() []T {
	out := make([]T, 0, l.size)
	for n := l.head; n != nil; n = n.next {
		out = append(out, n.slots[:n.count]...)
	}
	return out
}

// String returns a short description of the list's shape.
func (l *List[T]) String() string {
	return fmt.Sprintf("unrolled.List{len=%d nodes=%d capacity=%d}", l.size, l.NodeCount(), l.NodeCapacity())
}
