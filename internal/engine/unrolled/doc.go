// Package unrolled provides an unrolled linked list: a sequence container that
// stores elements in fixed-capacity blocks ("nodes") chained into a doubly
// linked list.
//
// Compared to a plain linked list, every node carries up to NodeCapacity
// elements in a contiguous slice, which improves cache locality and cuts the
// per-element link overhead, while positional insertion and removal stay
// local to one or two nodes.
//
// Key features:
//   - O(1) push/pop at both ends
//   - Insertion anywhere, splitting a full node in two when needed
//   - Removal anywhere, compacting the node and dropping it once empty
//   - Bidirectional iterators that cross node boundaries
//   - Pluggable storage through alloc.Allocator
//   - All-or-nothing insertion and construction: a failed allocation or
//     element construction leaves the list exactly as it was
//
// Basic usage:
//
//	l := unrolled.New[int]()
//	_ = l.PushBack(1)
//	_ = l.PushBack(3)
//	it := l.Begin().Next()
//	_, _ = l.Insert(it, 2)        // 1 2 3
//	l.Erase(l.Begin())            // 2 3
//	for v := range l.All() {
//	    fmt.Println(v)
//	}
//
// A List is not safe for concurrent mutation. Concurrent readers are fine as
// long as nothing mutates the list while they run. Iterators are plain
// cursors: any structural change may invalidate them, and using an
// invalidated iterator, dereferencing End, or popping an empty list is a
// programming error that is not checked.
package unrolled
