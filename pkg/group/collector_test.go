package group

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sdejongh/dupnorris/pkg/metrics"
)

type item struct {
	name string
	size int
}

func bySize(t *testing.T, registry *metrics.Registry) *Collector[item, int, string] {
	t.Helper()
	c, err := New(registry, "size", func(i item) int { return i.size }, func(i item) string { return i.name })
	require.NoError(t, err)
	return c
}

func TestNewRejectsInvalidArguments(t *testing.T) {
	registry := metrics.NewRegistry()
	key := func(i item) int { return i.size }
	value := func(i item) string { return i.name }

	_, err := New[item, int, string](nil, "size", key, value)
	assert.ErrorIs(t, err, ErrNilRegistry)

	_, err = New(registry, "", key, value)
	assert.ErrorIs(t, err, ErrEmptyName)

	_, err = New[item, int, string](registry, "size", nil, value)
	assert.ErrorIs(t, err, ErrNilFunc)

	_, err = New[item, int, string](registry, "size", key, nil)
	assert.ErrorIs(t, err, ErrNilFunc)

	_, err = ByKey[item, int](registry, "size", nil)
	assert.ErrorIs(t, err, ErrNilFunc)
}

func TestCollect(t *testing.T) {
	registry := metrics.NewRegistry()
	c := bySize(t, registry)

	result := c.Collect([]item{{"a", 4}, {"b", 4}, {"c", 5}, {"d", 4}})

	assert.Equal(t, 2, result.Len())
	assert.Equal(t, 4, result.Size())
	assert.Equal(t, []int{4, 5}, result.Keys())
	assert.Equal(t, []string{"a", "b", "d"}, result.Get(4))
	assert.Equal(t, []string{"c"}, result.Get(5))
	assert.Equal(t, [][]string{{"a", "b", "d"}}, result.Groups(2))

	assert.Equal(t, int64(4), registry.Count("size.counter"))
	assert.Equal(t, int64(2), registry.Count("size.duplicates.counter"))
	assert.True(t, registry.Marked("size.finished"))
}

func TestCollectEmpty(t *testing.T) {
	registry := metrics.NewRegistry()
	c := bySize(t, registry)

	result := c.Collect(nil)

	assert.Equal(t, 0, result.Len())
	assert.Empty(t, result.Groups(1))
	assert.Equal(t, int64(0), registry.Count("size.counter"))
	assert.True(t, registry.Marked("size.finished"))
}

func TestByKeyKeepsElements(t *testing.T) {
	registry := metrics.NewRegistry()
	c, err := ByKey(registry, "parity", func(n int) bool { return n%2 == 0 })
	require.NoError(t, err)

	result := c.Collect([]int{1, 2, 3, 4, 5})

	assert.Equal(t, []int{1, 3, 5}, result.Get(false))
	assert.Equal(t, []int{2, 4}, result.Get(true))
	assert.Equal(t, "parity", c.Name())
}

func TestCombineIsPartitionIndependent(t *testing.T) {
	elements := []item{{"a", 1}, {"b", 2}, {"c", 1}}

	registry := metrics.NewRegistry()
	c := bySize(t, registry)
	whole := c.Collect(elements)

	left := c.Supplier()
	c.Accumulate(left, elements[0])
	right := c.Supplier()
	c.Accumulate(right, elements[1])
	c.Accumulate(right, elements[2])
	split := c.Finish(c.Combine(left, right))

	assert.True(t, equalMultimaps(whole, split))
	assert.Equal(t, []string{"a", "c"}, split.Get(1))

	// reversed combine holds the same keys and members
	left2 := c.Supplier()
	c.Accumulate(left2, elements[0])
	right2 := c.Supplier()
	c.Accumulate(right2, elements[1])
	c.Accumulate(right2, elements[2])
	reversed := c.Combine(right2, left2)

	assert.Equal(t, whole.Len(), reversed.Len())
	assert.ElementsMatch(t, whole.Get(1), reversed.Get(1))
	assert.ElementsMatch(t, whole.Get(2), reversed.Get(2))
}

func TestFinishReturnsMappingUnchanged(t *testing.T) {
	registry := metrics.NewRegistry()
	c := bySize(t, registry)

	m := c.Supplier()
	c.Accumulate(m, item{"a", 7})
	finished := c.Finish(m)

	assert.Same(t, m, finished)
	assert.Equal(t, []string{"a"}, finished.Get(7))
}

func TestCollectParallel(t *testing.T) {
	var elements []item
	for i := 0; i < 1000; i++ {
		elements = append(elements, item{name: fmt.Sprintf("f%04d", i), size: i % 17})
	}

	sequential := bySize(t, metrics.NewRegistry()).Collect(elements)

	for _, partitions := range []int{0, 1, 2, 3, 8, 999, 5000} {
		t.Run(fmt.Sprintf("partitions=%d", partitions), func(t *testing.T) {
			registry := metrics.NewRegistry()
			parallel := bySize(t, registry).CollectParallel(elements, partitions)

			assert.True(t, equalMultimaps(sequential, parallel))
			// contiguous partitions combined in order keep insertion order
			for _, key := range sequential.Keys() {
				assert.Equal(t, sequential.Get(key), parallel.Get(key))
			}
			assert.Equal(t, int64(1000), registry.Count("size.counter"))
			assert.Equal(t, int64(1000-17), registry.Count("size.duplicates.counter")+int64(countExtraKeyHits(elements, partitions)))
		})
	}
}

// countExtraKeyHits returns how many first occurrences of a key inside a
// partition were already seen by an earlier partition. Those are not counted
// as duplicates by the partial that accumulated them.
func countExtraKeyHits(elements []item, partitions int) int {
	if partitions > len(elements) {
		partitions = len(elements)
	}
	if partitions <= 1 {
		return 0
	}
	chunk := (len(elements) + partitions - 1) / partitions
	firstSeen := make(map[int]bool)
	extra := 0
	for start := 0; start < len(elements); start += chunk {
		end := start + chunk
		if end > len(elements) {
			end = len(elements)
		}
		local := make(map[int]bool)
		for _, e := range elements[start:end] {
			if !local[e.size] {
				local[e.size] = true
				if firstSeen[e.size] {
					extra++
				}
				firstSeen[e.size] = true
			}
		}
	}
	return extra
}

// equalMultimaps reports whether both hold the same values per key,
// ignoring key order
func equalMultimaps[K comparable, V comparable](a, b *Multimap[K, V]) bool {
	if a.Len() != b.Len() || a.Size() != b.Size() {
		return false
	}
	for key, va := range a.values {
		vb, ok := b.values[key]
		if !ok || len(va) != len(vb) {
			return false
		}
		for i := range va {
			if va[i] != vb[i] {
				return false
			}
		}
	}
	return true
}

func TestEqualMultimaps(t *testing.T) {
	a := NewMultimap[string, int]()
	a.Put("x", 1)
	a.Put("y", 2)

	b := NewMultimap[string, int]()
	b.Put("y", 2)
	b.Put("x", 1)

	assert.True(t, equalMultimaps(a, b))

	b.Put("x", 3)
	assert.False(t, equalMultimaps(a, b))
}
