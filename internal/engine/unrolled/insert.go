package unrolled

import "fmt"

// splitPoint returns the first index moved out of a full node by a split:
// the upper half [ceil(C/2), C) moves. A single-slot node moves its only
// element so the original node is left with room.
func (l *List[T]) splitPoint() int {
	if l.capacity == 1 {
		return 0
	}
	return (l.capacity + 1) / 2
}

// Insert inserts v before pos and returns an iterator to the new element.
// Inserting at End appends. When pos's node is full it is split first and
// the new successor node is linked only after v has been constructed.
//
// On error the list is unchanged and pos is returned.
func (l *List[T]) Insert(pos Iterator[T], v T) (Iterator[T], error) {
	if pos.node == nil {
		if err := l.PushBack(v); err != nil {
			return pos, fmt.Errorf("insert: %w", err)
		}
		return Iterator[T]{list: l, node: l.tail, index: l.tail.count - 1}, nil
	}

	n, idx := pos.node, pos.index
	if !n.full() {
		if err := l.insertInNode(n, idx, v); err != nil {
			return pos, fmt.Errorf("insert: %w", err)
		}
		l.size++
		return Iterator[T]{list: l, node: n, index: idx}, nil
	}

	succ, err := l.allocNode()
	if err != nil {
		return pos, fmt.Errorf("insert: %w", err)
	}
	s := l.splitPoint()
	succ.count = copy(succ.slots, n.slots[s:n.count])
	clear(n.slots[s:n.count])
	n.count = s

	target, tidx := n, idx
	if s > 0 && idx >= s {
		target, tidx = succ, idx-s
	}
	if err := l.insertInNode(target, tidx, v); err != nil {
		// Undo the split
		n.count += copy(n.slots[s:], succ.slots[:succ.count])
		clear(succ.slots[:succ.count])
		succ.count = 0
		l.releaseNode(succ)
		return pos, fmt.Errorf("insert: %w", err)
	}

	l.linkAfter(n, succ)
	l.size++
	return Iterator[T]{list: l, node: target, index: tidx}, nil
}

// InsertN inserts count copies of v before pos and returns an iterator to
// the first inserted element (pos itself when count is zero). The result is
// the same as count single Inserts at the same logical position.
//
// When pos's node lacks room, the node's suffix from pos onward moves to a
// new node, the original node is filled up to capacity with copies, and any
// leftover copies go into new nodes between the two. New nodes are linked
// only after every copy has been constructed; on error the list is
// unchanged and pos is returned.
func (l *List[T]) InsertN(pos Iterator[T], count int, v T) (Iterator[T], error) {
	switch {
	case count < 0:
		return pos, fmt.Errorf("insert: %w: %d", ErrInvalidCount, count)
	case count == 0:
		return pos, nil
	case pos.node == nil:
		it, err := l.appendN(count, v)
		if err != nil {
			return pos, fmt.Errorf("insert: %w", err)
		}
		return it, nil
	}

	n, idx := pos.node, pos.index
	if n.count+count <= l.capacity {
		old := n.count
		copy(n.slots[idx+count:old+count], n.slots[idx:old])
		if err := l.constructRun(n.slots[idx:idx+count], v); err != nil {
			copy(n.slots[idx:old], n.slots[idx+count:old+count])
			clear(n.slots[old : old+count])
			return pos, fmt.Errorf("insert: %w", err)
		}
		n.count += count
		l.size += count
		return Iterator[T]{list: l, node: n, index: idx}, nil
	}

	first := min(count, l.capacity-idx)
	rest := count - first

	suffix, err := l.allocNode()
	if err != nil {
		return pos, fmt.Errorf("insert: %w", err)
	}
	var mid chain[T]
	for i := 0; i < rest; i++ {
		if err := l.appendTo(&mid, v); err != nil {
			l.discard(&mid)
			l.releaseNode(suffix)
			return pos, fmt.Errorf("insert: %w", err)
		}
	}

	suffix.count = copy(suffix.slots, n.slots[idx:n.count])
	clear(n.slots[idx:n.count])
	if err := l.constructRun(n.slots[idx:idx+first], v); err != nil {
		copy(n.slots[idx:], suffix.slots[:suffix.count])
		clear(suffix.slots[:suffix.count])
		suffix.count = 0
		l.releaseNode(suffix)
		l.discard(&mid)
		return pos, fmt.Errorf("insert: %w", err)
	}

	n.count = idx + first
	mid.push(suffix)
	l.splice(n, mid)
	l.size += count
	return Iterator[T]{list: l, node: n, index: idx}, nil
}

// appendN appends count copies of v: first into the tail node's spare slots,
// then into new nodes. It returns an iterator to the first copy.
func (l *List[T]) appendN(count int, v T) (Iterator[T], error) {
	t := l.tail
	first := 0
	if t != nil {
		first = min(count, l.capacity-t.count)
	}

	var rest chain[T]
	for i := first; i < count; i++ {
		if err := l.appendTo(&rest, v); err != nil {
			l.discard(&rest)
			return l.End(), err
		}
	}

	if first > 0 {
		start := t.count
		if err := l.constructRun(t.slots[start:start+first], v); err != nil {
			l.discard(&rest)
			return l.End(), err
		}
		t.count += first
		l.splice(t, rest)
		l.size += count
		return Iterator[T]{list: l, node: t, index: start}, nil
	}

	l.splice(t, rest)
	l.size += count
	return Iterator[T]{list: l, node: rest.head}, nil
}

// constructRun constructs a copy of v in every slot of dst. If one
// construction fails, the copies already made are destroyed.
func (l *List[T]) constructRun(dst []T, v T) error {
	for i := range dst {
		if err := l.elems.Construct(&dst[i], v); err != nil {
			for j := 0; j < i; j++ {
				l.elems.Destroy(&dst[j])
			}
			return err
		}
	}
	return nil
}
