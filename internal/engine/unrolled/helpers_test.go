package unrolled

import (
	"container/list"
	"math/rand"
	"slices"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dshills/unrolled/internal/engine/alloc"
)

// requireContents checks the invariants and that forward, backward, cursor
// and reverse-cursor traversals all agree with want.
func requireContents[T comparable](t *testing.T, l *List[T], want []T) {
	t.Helper()
	require.NoError(t, l.Validate())
	require.Equal(t, len(want), l.Len())
	require.Equal(t, len(want) == 0, l.Empty())

	var fwd, cur []T
	for v := range l.All() {
		fwd = append(fwd, v)
	}
	for it := l.Begin(); !it.Equal(l.End()); it = it.Next() {
		cur = append(cur, it.Value())
	}

	var bwd, rcur []T
	for v := range l.Backward() {
		bwd = append(bwd, v)
	}
	for it := l.RBegin(); !it.Equal(l.REnd()); it = it.Next() {
		rcur = append(rcur, it.Value())
	}

	rev := slices.Clone(want)
	slices.Reverse(rev)

	if len(want) == 0 {
		require.Empty(t, fwd)
		require.Empty(t, cur)
		require.Empty(t, bwd)
		require.Empty(t, rcur)
		require.True(t, l.Begin().Equal(l.End()))
		return
	}
	require.Equal(t, want, fwd, "forward")
	require.Equal(t, want, cur, "cursor")
	require.Equal(t, rev, bwd, "backward")
	require.Equal(t, rev, rcur, "reverse cursor")
	require.Equal(t, want[0], l.Front())
	require.Equal(t, want[len(want)-1], l.Back())
}

// seq returns [from, to).
func seq(from, to int) []int {
	out := make([]int, 0, max(to-from, 0))
	for i := from; i < to; i++ {
		out = append(out, i)
	}
	return out
}

// newList returns an empty int list with the given capacity.
func newList(t testing.TB, capacity int) *List[int] {
	t.Helper()
	l, err := NewWithConfig(Config[int]{NodeCapacity: capacity})
	require.NoError(t, err)
	return l
}

// shaped builds a list holding 0..n-1 using a mix of operations so that
// nodes end up partially filled in varied ways. The same seed always gives
// the same shape.
func shaped(t testing.TB, cfg Config[int], n int, seed int64) *List[int] {
	t.Helper()
	l, err := NewWithConfig(cfg)
	require.NoError(t, err)
	if n == 0 {
		return l
	}
	rng := rand.New(rand.NewSource(seed))
	model := []int{}
	// Insert values in a shuffled order at the positions that keep the
	// final sequence sorted.
	for _, v := range rng.Perm(n) {
		pos, _ := slices.BinarySearch(model, v)
		_, err := l.Insert(l.At(pos), v)
		require.NoError(t, err)
		model = slices.Insert(model, pos, v)
	}
	require.Equal(t, seq(0, n), l.Slice())
	return l
}

// refAt returns the element of a container/list at position i.
func refAt(ref *list.List, i int) *list.Element {
	e := ref.Front()
	for ; i > 0; i-- {
		e = e.Next()
	}
	return e
}

// refSlice returns the contents of a container/list of ints.
func refSlice(ref *list.List) []int {
	out := make([]int, 0, ref.Len())
	for e := ref.Front(); e != nil; e = e.Next() {
		out = append(out, e.Value.(int))
	}
	return out
}

// countingConfig returns a config whose storage is tracked by c and can be
// made to fail through f.
func countingConfig(capacity int) (Config[int], *alloc.Counting[int], *alloc.Faulty[int]) {
	c := alloc.NewCounting[int](nil)
	f := alloc.NewFaulty[int](c)
	return Config[int]{NodeCapacity: capacity, NodeAllocator: f}, c, f
}

// requireNoLeaks checks that the allocator holds exactly the storage and
// elements the list owns.
func requireNoLeaks(t *testing.T, l *List[int], c *alloc.Counting[int]) {
	t.Helper()
	require.Equal(t, int64(l.NodeCount()), c.Live(), "live node storage")
	require.Equal(t, int64(l.Len()), c.LiveElements(), "live elements")
}
