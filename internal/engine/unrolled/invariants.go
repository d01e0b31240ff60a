package unrolled

import "fmt"

// Validate walks the chain and checks the structural invariants:
//
//   - head and tail are both nil exactly when the list is empty
//   - head.prev and tail.next are nil, and every link is mirrored
//   - every node holds between 1 and NodeCapacity elements in slots of
//     length NodeCapacity
//   - the element counts add up to Len
//
// It returns an *InvariantError describing the first violation found.
// The walk is bounded by Len so a cyclic chain is reported, not followed.
func (l *List[T]) Validate() error {
	if (l.head == nil) != (l.tail == nil) {
		return &InvariantError{Property: "endpoints", Node: -1,
			Detail: fmt.Sprintf("head nil=%t, tail nil=%t", l.head == nil, l.tail == nil)}
	}
	if l.head == nil {
		if l.size != 0 {
			return &InvariantError{Property: "size", Node: -1,
				Detail: fmt.Sprintf("empty chain with cached size %d", l.size)}
		}
		return nil
	}
	if l.head.prev != nil {
		return &InvariantError{Property: "links", Node: 0, Detail: "head has a predecessor"}
	}

	capacity := l.NodeCapacity()
	total := 0
	var prev *node[T]
	pos := 0
	for n := l.head; n != nil; n = n.next {
		if pos > l.size {
			return &InvariantError{Property: "acyclic", Node: pos,
				Detail: fmt.Sprintf("more nodes than the %d cached elements allow", l.size)}
		}
		if n.prev != prev {
			return &InvariantError{Property: "links", Node: pos, Detail: "prev does not point at predecessor"}
		}
		if len(n.slots) != capacity {
			return &InvariantError{Property: "capacity", Node: pos,
				Detail: fmt.Sprintf("storage holds %d slots, want %d", len(n.slots), capacity)}
		}
		if n.count <= 0 || n.count > capacity {
			return &InvariantError{Property: "node-count", Node: pos,
				Detail: fmt.Sprintf("count %d outside [1, %d]", n.count, capacity)}
		}
		total += n.count
		prev = n
		pos++
	}

	if prev != l.tail {
		return &InvariantError{Property: "links", Node: pos - 1, Detail: "last reachable node is not tail"}
	}
	if total != l.size {
		return &InvariantError{Property: "size", Node: -1,
			Detail: fmt.Sprintf("nodes hold %d elements, cached size is %d", total, l.size)}
	}
	return nil
}
