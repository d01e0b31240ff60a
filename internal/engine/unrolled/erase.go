package unrolled

// Erase removes the element at pos and returns an iterator to the element
// that followed it, or End. pos must reference an element.
//
// The node is compacted to keep its elements contiguous; a node left empty
// is unlinked and released.
func (l *List[T]) Erase(pos Iterator[T]) Iterator[T] {
	n, idx := pos.node, pos.index
	l.elems.Destroy(&n.slots[idx])
	copy(n.slots[idx:], n.slots[idx+1:n.count])
	n.count--
	clearSlot(&n.slots[n.count])
	l.size--

	if n.count == 0 {
		next := n.next
		l.unlink(n)
		return Iterator[T]{list: l, node: next}
	}
	if idx < n.count {
		return Iterator[T]{list: l, node: n, index: idx}
	}
	return Iterator[T]{list: l, node: n.next}
}

// EraseRange removes the elements in [first, last) and returns an iterator
// to the first element after the removed range, or End. last must be
// reachable from first.
//
// Whole nodes strictly inside the range are released; the surviving prefix
// of first's node and the surviving suffix of last's node stay in place,
// and either node is released if the erase left it empty.
func (l *List[T]) EraseRange(first, last Iterator[T]) Iterator[T] {
	if first.Equal(last) {
		return first
	}

	fn, fi := first.node, first.index
	ln, li := last.node, last.index

	if fn == ln {
		k := li - fi
		for i := fi; i < li; i++ {
			l.elems.Destroy(&fn.slots[i])
		}
		copy(fn.slots[fi:], fn.slots[li:fn.count])
		clear(fn.slots[fn.count-k : fn.count])
		fn.count -= k
		l.size -= k

		if fn.count == 0 {
			next := fn.next
			l.unlink(fn)
			return Iterator[T]{list: l, node: next}
		}
		if fi < fn.count {
			return Iterator[T]{list: l, node: fn, index: fi}
		}
		return Iterator[T]{list: l, node: fn.next}
	}

	// Suffix of the first node
	removed := fn.count - fi
	for i := fi; i < fn.count; i++ {
		l.elems.Destroy(&fn.slots[i])
	}
	fn.count = fi

	// Every node strictly between
	for cur := fn.next; cur != ln; {
		next := cur.next
		removed += cur.count
		l.unlink(cur)
		cur = next
	}

	// Prefix of the last node
	if ln != nil && li > 0 {
		for i := 0; i < li; i++ {
			l.elems.Destroy(&ln.slots[i])
		}
		copy(ln.slots, ln.slots[li:ln.count])
		clear(ln.slots[ln.count-li : ln.count])
		ln.count -= li
		removed += li
	}

	l.size -= removed
	if fn.count == 0 {
		l.unlink(fn)
	}
	return Iterator[T]{list: l, node: ln}
}
