package unrolled

import "iter"

// Iterator is a cursor at one element of a List: a node plus an index into
// that node. The End iterator has no node and index 0.
//
// Iterators are values; Next and Prev return the moved cursor. Two iterators
// of the same list are equal (==) when they reference the same slot.
type Iterator[T any] struct {
	list  *List[T]
	node  *node[T]
	index int
}

// Begin returns an iterator at the first element, or End for an empty list.
func (l *List[T]) Begin() Iterator[T] {
	return Iterator[T]{list: l, node: l.head}
}

// End returns the one-past-the-last sentinel.
func (l *List[T]) End() Iterator[T] {
	return Iterator[T]{list: l}
}

// At returns an iterator at logical position i (0-based).
// At(Len()) returns End; any other out-of-range i is a programming error.
func (l *List[T]) At(i int) Iterator[T] {
	if i >= l.size {
		return l.End()
	}
	// Walk from whichever end is closer
	if i < l.size/2 {
		n := l.head
		for i >= n.count {
			i -= n.count
			n = n.next
		}
		return Iterator[T]{list: l, node: n, index: i}
	}
	back := l.size - 1 - i
	n := l.tail
	for back >= n.count {
		back -= n.count
		n = n.prev
	}
	return Iterator[T]{list: l, node: n, index: n.count - 1 - back}
}

// IsEnd reports whether it is the End sentinel.
func (it Iterator[T]) IsEnd() bool {
	return it.node == nil
}

// Value returns the referenced element.
func (it Iterator[T]) Value() T {
	return it.node.slots[it.index]
}

// Ptr returns a pointer to the referenced element for in-place updates.
// The pointer is invalidated by the same operations as the iterator.
func (it Iterator[T]) Ptr() *T {
	return &it.node.slots[it.index]
}

// Set overwrites the referenced element.
func (it Iterator[T]) Set(v T) {
	it.node.slots[it.index] = v
}

// Next returns the iterator advanced by one element.
// Advancing past the last slot of a node moves to the next node, or End.
func (it Iterator[T]) Next() Iterator[T] {
	if it.index+1 < it.node.count {
		it.index++
		return it
	}
	return Iterator[T]{list: it.list, node: it.node.next}
}

// Prev returns the iterator moved back by one element.
// Retreating from End yields the last element.
func (it Iterator[T]) Prev() Iterator[T] {
	if it.node == nil {
		t := it.list.tail
		return Iterator[T]{list: it.list, node: t, index: t.count - 1}
	}
	if it.index > 0 {
		it.index--
		return it
	}
	p := it.node.prev
	return Iterator[T]{list: it.list, node: p, index: p.count - 1}
}

// Equal reports whether both iterators reference the same slot.
func (it Iterator[T]) Equal(other Iterator[T]) bool {
	return it.node == other.node && it.index == other.index
}

// Index returns the in-node index of the iterator.
func (it Iterator[T]) Index() int {
	return it.index
}

// ReverseIterator walks a List from back to front.
// It wraps a forward iterator and refers to the element just before it,
// so RBegin wraps End and REnd wraps Begin.
type ReverseIterator[T any] struct {
	base Iterator[T]
}

// RBegin returns a reverse iterator at the last element.
func (l *List[T]) RBegin() ReverseIterator[T] {
	return ReverseIterator[T]{base: l.End()}
}

// REnd returns the reverse one-past-the-first sentinel.
func (l *List[T]) REnd() ReverseIterator[T] {
	return ReverseIterator[T]{base: l.Begin()}
}

// Base returns the wrapped forward iterator.
func (r ReverseIterator[T]) Base() Iterator[T] {
	return r.base
}

// Value returns the referenced element.
func (r ReverseIterator[T]) Value() T {
	return r.base.Prev().Value()
}

// Next moves toward the front of the list.
func (r ReverseIterator[T]) Next() ReverseIterator[T] {
	return ReverseIterator[T]{base: r.base.Prev()}
}

// Prev moves toward the back of the list.
func (r ReverseIterator[T]) Prev() ReverseIterator[T] {
	return ReverseIterator[T]{base: r.base.Next()}
}

// Equal reports whether both reverse iterators wrap the same position.
func (r ReverseIterator[T]) Equal(other ReverseIterator[T]) bool {
	return r.base.Equal(other.base)
}

// All returns a sequence of the elements from front to back.
// The sequence reads the list's structure lazily and can be restarted.
func (l *List[T]) All() iter.Seq[T] {
	return func(yield func(T) bool) {
		for n := l.head; n != nil; n = n.next {
			for i := 0; i < n.count; i++ {
				if !yield(n.slots[i]) {
					return
				}
			}
		}
	}
}

// Indexed returns a sequence of (position, element) pairs from front to back.
func (l *List[T]) Indexed() iter.Seq2[int, T] {
	return func(yield func(int, T) bool) {
		pos := 0
		for n := l.head; n != nil; n = n.next {
			for i := 0; i < n.count; i++ {
				if !yield(pos, n.slots[i]) {
					return
				}
				pos++
			}
		}
	}
}

// Backward returns a sequence of the elements from back to front.
func (l *List[T]) Backward() iter.Seq[T] {
	return func(yield func(T) bool) {
		for n := l.tail; n != nil; n = n.prev {
			for i := n.count - 1; i >= 0; i-- {
				if !yield(n.slots[i]) {
					return
				}
			}
		}
	}
}
