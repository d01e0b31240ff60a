package unrolled

import (
	"fmt"
	"iter"
	"slices"
)

// Fill creates a list holding count copies of v.
func Fill[T any](cfg Config[T], count int, v T) (*List[T], error) {
	if count < 0 {
		return nil, fmt.Errorf("fill: %w: %d", ErrInvalidCount, count)
	}
	l, err := NewWithConfig(cfg)
	if err != nil {
		return nil, err
	}
	c, err := l.build(func(yield func(T) bool) {
		for i := 0; i < count; i++ {
			if !yield(v) {
				return
			}
		}
	})
	if err != nil {
		return nil, fmt.Errorf("fill: %w", err)
	}
	l.install(c)
	return l, nil
}

// FromSlice creates a list holding the elements of s in order.
func FromSlice[T any](cfg Config[T], s []T) (*List[T], error) {
	return FromSeq(cfg, slices.Values(s))
}

// FromSeq creates a list from the values produced by seq.
// Nodes are filled to capacity in order, the same way repeated PushBack
// calls would fill them. If any node allocation or element construction
// fails, everything built so far is released and the error is returned.
func FromSeq[T any](cfg Config[T], seq iter.Seq[T]) (*List[T], error) {
	l, err := NewWithConfig(cfg)
	if err != nil {
		return nil, err
	}
	c, err := l.build(seq)
	if err != nil {
		return nil, fmt.Errorf("build: %w", err)
	}
	l.install(c)
	return l, nil
}

// Clone returns a copy of l with the same configuration.
func (l *List[T]) Clone() (*List[T], error) {
	out, err := NewWithConfig(l.config())
	if err != nil {
		return nil, err
	}
	c, err := out.build(l.All())
	if err != nil {
		return nil, fmt.Errorf("clone: %w", err)
	}
	out.install(c)
	return out, nil
}

// Assign replaces the contents of l with the elements of s.
// The new contents are built before the old ones are released, so on
// error l is left unchanged.
func (l *List[T]) Assign(s []T) error {
	return l.AssignSeq(slices.Values(s))
}

// AssignSeq replaces the contents of l with the values produced by seq.
func (l *List[T]) AssignSeq(seq iter.Seq[T]) error {
	c, err := l.build(seq)
	if err != nil {
		return fmt.Errorf("assign: %w", err)
	}
	l.Clear()
	l.install(c)
	return nil
}

// CopyFrom replaces the contents of l with a copy of src's elements.
// l keeps its own configuration. On error l is left unchanged.
func (l *List[T]) CopyFrom(src *List[T]) error {
	if l == src {
		return nil
	}
	c, err := l.build(src.All())
	if err != nil {
		return fmt.Errorf("copy: %w", err)
	}
	l.Clear()
	l.install(c)
	return nil
}

// build constructs a detached chain from seq.
func (l *List[T]) build(seq iter.Seq[T]) (chain[T], error) {
	var c chain[T]
	var err error
	seq(func(v T) bool {
		err = l.appendTo(&c, v)
		return err == nil
	})
	if err != nil {
		l.discard(&c)
		return chain[T]{}, err
	}
	return c, nil
}

// install makes the chain c the whole content of the empty list l.
func (l *List[T]) install(c chain[T]) {
	l.head = c.head
	l.tail = c.tail
	l.size = c.size
}

// Equal reports whether a and b hold equal elements in the same order.
func Equal[T comparable](a, b *List[T]) bool {
	return a.EqualFunc(b, func(x, y T) bool { return x == y })
}

// EqualFunc reports whether l and other hold the same number of elements
// and eq holds for each corresponding pair, stopping at the first mismatch.
func (l *List[T]) EqualFunc(other *List[T], eq func(a, b T) bool) bool {
	if l == other {
		return true
	}
	if l.size != other.size {
		return false
	}
	a, b := l.Begin(), other.Begin()
	for i := 0; i < l.size; i++ {
		if !eq(a.Value(), b.Value()) {
			return false
		}
		a, b = a.Next(), b.Next()
	}
	return true
}
