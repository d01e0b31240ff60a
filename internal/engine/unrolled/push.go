package unrolled

import "fmt"

// PushBack appends v. A fresh tail node is linked only after v has been
// constructed in it, so on error the list is unchanged.
func (l *List[T]) PushBack(v T) error {
	if t := l.tail; t != nil && !t.full() {
		if err := l.elems.Construct(&t.slots[t.count], v); err != nil {
			return fmt.Errorf("push back: %w", err)
		}
		t.count++
		l.size++
		return nil
	}

	fresh, err := l.allocNode()
	if err != nil {
		return fmt.Errorf("push back: %w", err)
	}
	if err := l.elems.Construct(&fresh.slots[0], v); err != nil {
		l.releaseNode(fresh)
		return fmt.Errorf("push back: %w", err)
	}
	fresh.count = 1
	l.linkAfter(l.tail, fresh)
	l.size++
	return nil
}

// PushFront prepends v, shifting the head node's elements right by one when
// it has room. On error the list is unchanged.
func (l *List[T]) PushFront(v T) error {
	if h := l.head; h != nil && !h.full() {
		if err := l.insertInNode(h, 0, v); err != nil {
			return fmt.Errorf("push front: %w", err)
		}
		l.size++
		return nil
	}

	fresh, err := l.allocNode()
	if err != nil {
		return fmt.Errorf("push front: %w", err)
	}
	if err := l.elems.Construct(&fresh.slots[0], v); err != nil {
		l.releaseNode(fresh)
		return fmt.Errorf("push front: %w", err)
	}
	fresh.count = 1
	l.linkAfter(nil, fresh)
	l.size++
	return nil
}

// PopBack removes the last element. The list must not be empty.
func (l *List[T]) PopBack() {
	t := l.tail
	l.elems.Destroy(&t.slots[t.count-1])
	t.count--
	l.size--
	if t.count == 0 {
		l.unlink(t)
	}
}

// PopFront removes the first element. The list must not be empty.
func (l *List[T]) PopFront() {
	h := l.head
	l.elems.Destroy(&h.slots[0])
	copy(h.slots, h.slots[1:h.count])
	h.count--
	clearSlot(&h.slots[h.count])
	l.size--
	if h.count == 0 {
		l.unlink(h)
	}
}

// insertInNode shifts n.slots[idx:count] right by one and constructs v at
// idx. n must have a spare slot. On error n is restored.
func (l *List[T]) insertInNode(n *node[T], idx int, v T) error {
	copy(n.slots[idx+1:n.count+1], n.slots[idx:n.count])
	if err := l.elems.Construct(&n.slots[idx], v); err != nil {
		copy(n.slots[idx:n.count], n.slots[idx+1:n.count+1])
		clearSlot(&n.slots[n.count])
		return err
	}
	n.count++
	return nil
}

// clearSlot zeroes a moved-from slot so it no longer pins its old value.
func clearSlot[T any](p *T) {
	var zero T
	*p = zero
}
