package unrolled

import "fmt"

// node is a fixed-capacity block of elements.
// Live elements occupy slots[0:count]; the rest of slots is zeroed storage.
// The list owns every node; next and prev are plain links to neighbours.
type node[T any] struct {
	slots []T
	count int
	next  *node[T]
	prev  *node[T]
}

// full reports whether the node has no spare slots.
func (n *node[T]) full() bool {
	return n.count == len(n.slots)
}

// allocNode acquires storage for a detached, empty node.
func (l *List[T]) allocNode() (*node[T], error) {
	l.lazyInit()
	slots, err := l.nodes.Acquire(l.capacity)
	if err != nil {
		return nil, fmt.Errorf("allocating node: %w", err)
	}
	return &node[T]{slots: slots[:l.capacity]}, nil
}

// releaseNode destroys the node's remaining elements and hands its storage
// back to the node allocator. The node must already be detached.
func (l *List[T]) releaseNode(n *node[T]) {
	for i := 0; i < n.count; i++ {
		l.elems.Destroy(&n.slots[i])
	}
	n.count = 0
	n.next = nil
	n.prev = nil
	l.nodes.Release(n.slots)
	n.slots = nil
}

// linkAfter links the detached node n after at. A nil at links n as head.
func (l *List[T]) linkAfter(at, n *node[T]) {
	var next *node[T]
	if at == nil {
		next = l.head
		l.head = n
	} else {
		next = at.next
		at.next = n
	}
	n.prev = at
	n.next = next
	if next == nil {
		l.tail = n
	} else {
		next.prev = n
	}
}

// unlink removes n from the chain, fixes head/tail and releases it.
// The cached size is the caller's responsibility.
func (l *List[T]) unlink(n *node[T]) {
	if n.prev == nil {
		l.head = n.next
	} else {
		n.prev.next = n.next
	}
	if n.next == nil {
		l.tail = n.prev
	} else {
		n.next.prev = n.prev
	}
	l.releaseNode(n)
}

// chain is a run of detached nodes built ahead of being linked into a list.
// Nothing in a chain is visible through the list until it is spliced in.
type chain[T any] struct {
	head *node[T]
	tail *node[T]
	size int
}

// push links the detached node n at the end of the chain.
func (c *chain[T]) push(n *node[T]) {
	n.prev = c.tail
	n.next = nil
	if c.tail == nil {
		c.head = n
	} else {
		c.tail.next = n
	}
	c.tail = n
	c.size += n.count
}

// appendTo constructs v at the end of c, growing it by one node whenever
// the last node is full.
func (l *List[T]) appendTo(c *chain[T], v T) error {
	n := c.tail
	if n == nil || n.full() {
		fresh, err := l.allocNode()
		if err != nil {
			return err
		}
		c.push(fresh)
		n = fresh
	}
	if err := l.elems.Construct(&n.slots[n.count], v); err != nil {
		return err
	}
	n.count++
	c.size++
	return nil
}

// discard releases every node of c along with its elements.
func (l *List[T]) discard(c *chain[T]) {
	for n := c.head; n != nil; {
		next := n.next
		l.releaseNode(n)
		n = next
	}
	*c = chain[T]{}
}

// splice links the whole chain c after at (nil means at the front).
// The cached size is the caller's responsibility.
func (l *List[T]) splice(at *node[T], c chain[T]) {
	if c.head == nil {
		return
	}
	var next *node[T]
	if at == nil {
		next = l.head
		l.head = c.head
	} else {
		next = at.next
		at.next = c.head
	}
	c.head.prev = at
	c.tail.next = next
	if next == nil {
		l.tail = c.tail
	} else {
		next.prev = c.tail
	}
}
