// Package alloc provides pluggable storage strategies for node-based containers.
//
// An Allocator hands out fixed-size slot slices (node storage) and performs
// in-place construction and destruction of single elements in those slots.
// Containers route both node-sized and element-sized requests through this
// one abstraction, so the two can be configured independently.
//
// Available strategies:
//   - Heap: plain make() allocation, zeroing on release
//   - Pool: recycles slot slices per size through sync.Pool
//   - Counting: wraps another allocator and records what is live
//   - Faulty: wraps another allocator and fails on demand
//
// Basic usage:
//
//	a := alloc.NewPool[int]()
//	slots, err := a.Acquire(10)
//	if err != nil {
//	    return err
//	}
//	if err := a.Construct(&slots[0], 42); err != nil {
//	    return err
//	}
//	a.Destroy(&slots[0])
//	a.Release(slots)
package alloc
