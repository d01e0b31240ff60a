package unrolled

import (
	"fmt"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/unrolled/internal/engine/alloc"
)

func TestInsertNMiddle(t *testing.T) {
	l := New[int]()
	for i := 0; i < 10; i++ {
		require.NoError(t, l.PushBack(i))
	}

	it, err := l.InsertN(l.At(5), 5, 55)
	require.NoError(t, err)
	assert.Equal(t, 55, it.Value())
	requireContents(t, l, []int{0, 1, 2, 3, 4, 55, 55, 55, 55, 55, 5, 6, 7, 8, 9})
}

func TestInsertSplitsFullNode(t *testing.T) {
	tests := []struct {
		name      string
		capacity  int
		at        int
		wantNodes [][]int
	}{
		{"lower half", 4, 1, [][]int{{0, 99, 1}, {2, 3}}},
		{"at split point", 4, 2, [][]int{{0, 1}, {99, 2, 3}}},
		{"upper half", 4, 3, [][]int{{0, 1}, {2, 99, 3}}},
		{"odd capacity lower", 5, 2, [][]int{{0, 1, 99, 2}, {3, 4}}},
		{"odd capacity upper", 5, 4, [][]int{{0, 1, 2}, {3, 99, 4}}},
		{"front", 4, 0, [][]int{{99, 0, 1}, {2, 3}}},
		{"single slot", 1, 0, [][]int{{99}, {0}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := newList(t, tt.capacity)
			for i := 0; i < tt.capacity; i++ {
				require.NoError(t, l.PushBack(i))
			}
			require.Equal(t, 1, l.NodeCount())

			it, err := l.Insert(l.At(tt.at), 99)
			require.NoError(t, err)
			assert.Equal(t, 99, it.Value())
			require.NoError(t, l.Validate())

			var nodes [][]int
			for n := l.head; n != nil; n = n.next {
				nodes = append(nodes, slices.Clone(n.slots[:n.count]))
			}
			assert.Equal(t, tt.wantNodes, nodes)
		})
	}
}

func TestInsertAtEnd(t *testing.T) {
	l := newList(t, 3)
	for i := 0; i < 7; i++ {
		it, err := l.Insert(l.End(), i)
		require.NoError(t, err)
		assert.Equal(t, i, it.Value())
		assert.True(t, it.Next().IsEnd())
	}
	requireContents(t, l, seq(0, 7))
}

func TestInsertEverywhere(t *testing.T) {
	for _, capacity := range []int{1, 2, 3, 4, 10} {
		for n := 0; n <= 3*capacity+1; n++ {
			for pos := 0; pos <= n; pos++ {
				l := shaped(t, Config[int]{NodeCapacity: capacity}, n, int64(n*31+pos))
				it, err := l.Insert(l.At(pos), -1)
				require.NoError(t, err)
				assert.Equal(t, -1, it.Value())
				requireContents(t, l, slices.Insert(seq(0, n), pos, -1))
			}
		}
	}
}

func TestInsertNEverywhere(t *testing.T) {
	for _, capacity := range []int{1, 2, 3, 5} {
		for _, n := range []int{0, 1, capacity, 2*capacity + 1} {
			for pos := 0; pos <= n; pos++ {
				for _, count := range []int{0, 1, 2, capacity, capacity + 1, 3*capacity + 2} {
					name := fmt.Sprintf("c%d/n%d/pos%d/count%d", capacity, n, pos, count)
					l := shaped(t, Config[int]{NodeCapacity: capacity}, n, int64(pos))

					it, err := l.InsertN(l.At(pos), count, -7)
					require.NoError(t, err, name)

					want := slices.Insert(seq(0, n), pos, slices.Repeat([]int{-7}, count)...)
					requireContents(t, l, want)
					if count == 0 {
						if pos == n {
							assert.True(t, it.IsEnd(), name)
						} else {
							assert.Equal(t, pos, it.Value(), name)
						}
						continue
					}

					// The returned iterator is at the first copy, and the
					// original element follows the last copy
					for i := 0; i < count; i++ {
						require.Equal(t, -7, it.Value(), name)
						it = it.Next()
					}
					if pos == n {
						assert.True(t, it.IsEnd(), name)
					} else {
						assert.Equal(t, pos, it.Value(), name)
					}
				}
			}
		}
	}
}

func TestInsertNMatchesRepeatedInsert(t *testing.T) {
	for _, capacity := range []int{1, 2, 4, 10} {
		for _, count := range []int{1, 3, 11, 25} {
			for _, pos := range []int{0, 7, 19, 20} {
				a := shaped(t, Config[int]{NodeCapacity: capacity}, 20, 9)
				b := shaped(t, Config[int]{NodeCapacity: capacity}, 20, 9)

				_, err := a.InsertN(a.At(pos), count, 42)
				require.NoError(t, err)
				for i := 0; i < count; i++ {
					_, err := b.Insert(b.At(pos), 42)
					require.NoError(t, err)
				}
				assert.True(t, Equal(a, b), "capacity=%d count=%d pos=%d", capacity, count, pos)
			}
		}
	}
}

func TestInsertNNegative(t *testing.T) {
	l := shaped(t, Config[int]{NodeCapacity: 3}, 5, 1)
	it, err := l.InsertN(l.At(2), -1, 0)
	require.ErrorIs(t, err, ErrInvalidCount)
	assert.True(t, it.Equal(l.At(2)))
	requireContents(t, l, seq(0, 5))
}

// TestInsertRollback fails every allocation and construction step of every
// insert path in turn and checks that the list is left exactly as before.
func TestInsertRollback(t *testing.T) {
	type insertFn func(l *List[int], pos Iterator[int]) (Iterator[int], error)

	counts := []int{1, 2, 3, 4, 9}
	var ops []struct {
		name  string
		count int
		fn    insertFn
	}
	ops = append(ops, struct {
		name  string
		count int
		fn    insertFn
	}{"single", 1, func(l *List[int], pos Iterator[int]) (Iterator[int], error) { return l.Insert(pos, -1) }})
	for _, k := range counts {
		k := k
		ops = append(ops, struct {
			name  string
			count int
			fn    insertFn
		}{fmt.Sprintf("n%d", k), k, func(l *List[int], pos Iterator[int]) (Iterator[int], error) { return l.InsertN(pos, k, -1) }})
	}

	for _, capacity := range []int{1, 2, 3, 4} {
		for _, n := range []int{0, 1, capacity, 2*capacity + 1} {
			for pos := 0; pos <= n; pos++ {
				for _, o := range ops {
					for _, kind := range []string{"acquire", "construct"} {
						for after := 0; after <= o.count+1; after++ {
							name := fmt.Sprintf("c%d/n%d/pos%d/%s/%s%d", capacity, n, pos, o.name, kind, after)

							cfg, c, f := countingConfig(capacity)
							l, err := NewWithConfig(cfg)
							require.NoError(t, err)
							for _, v := range seq(0, n) {
								require.NoError(t, l.PushBack(v))
							}
							// Vary node shapes by removing and re-adding at the front
							if n > 1 {
								l.PopFront()
								require.NoError(t, l.PushFront(0))
							}
							nodesBefore := l.NodeCount()

							if kind == "acquire" {
								f.FailAcquireAfter(after)
							} else {
								f.FailConstructAfter(after)
							}
							_, err = o.fn(l, l.At(pos))
							f.Disarm()

							before := seq(0, n)
							if err != nil {
								require.ErrorIs(t, err, map[string]error{
									"acquire":   alloc.ErrOutOfMemory,
									"construct": alloc.ErrConstruct,
								}[kind], name)
								requireContents(t, l, before)
								assert.Equal(t, nodesBefore, l.NodeCount(), name)
							} else {
								requireContents(t, l, slices.Insert(before, pos, slices.Repeat([]int{-1}, o.count)...))
							}
							requireNoLeaks(t, l, c)
						}
					}
				}
			}
		}
	}
}
