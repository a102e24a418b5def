// Package group implements the keyed grouping reduction used by every pass of
// the duplicate pipeline.
package group

import (
	"errors"
	"sync"

	"github.com/sdejongh/dupnorris/pkg/metrics"
)

var (
	// ErrNilRegistry is returned when a collector is created without a metrics registry
	ErrNilRegistry = errors.New("group: nil metrics registry")
	// ErrEmptyName is returned when a collector is created without a name
	ErrEmptyName = errors.New("group: empty collector name")
	// ErrNilFunc is returned when a key or value function is missing
	ErrNilFunc = errors.New("group: nil key or value function")
)

// Collector reduces a sequence of T into a Multimap from K to V.
//
// The reduction follows the supplier / accumulate / combine / finish shape so
// it can run sequentially or over independent partitions: Combine appends the
// right partial's per-key lists after the left's, which is associative, and
// since keys are unordered the final mapping does not depend on how the input
// was split.
//
// Every accumulation increments "<name>.counter"; an accumulation whose key
// was already present increments "<name>.duplicates.counter". Finish sets the
// "<name>.finished" gauge.
type Collector[T any, K comparable, V any] struct {
	registry *metrics.Registry
	name     string
	keyFn    func(T) K
	valueFn  func(T) V
}

// New creates a collector deriving keys with keyFn and values with valueFn
func New[T any, K comparable, V any](registry *metrics.Registry, name string, keyFn func(T) K, valueFn func(T) V) (*Collector[T, K, V], error) {
	if registry == nil {
		return nil, ErrNilRegistry
	}
	if name == "" {
		return nil, ErrEmptyName
	}
	if keyFn == nil || valueFn == nil {
		return nil, ErrNilFunc
	}
	return &Collector[T, K, V]{
		registry: registry,
		name:     name,
		keyFn:    keyFn,
		valueFn:  valueFn,
	}, nil
}

// ByKey creates a collector whose values are the elements themselves
func ByKey[T any, K comparable](registry *metrics.Registry, name string, keyFn func(T) K) (*Collector[T, K, T], error) {
	return New(registry, name, keyFn, func(t T) T { return t })
}

// Name returns the collector name used as metrics prefix
func (c *Collector[T, K, V]) Name() string {
	return c.name
}

// Supplier returns a new empty partial result
func (c *Collector[T, K, V]) Supplier() *Multimap[K, V] {
	return NewMultimap[K, V]()
}

// Accumulate adds one element to a partial result
func (c *Collector[T, K, V]) Accumulate(m *Multimap[K, V], element T) {
	c.registry.Inc(metrics.Name(c.name, "counter"))

	key := c.keyFn(element)
	value := c.valueFn(element)

	if m.Put(key, value) {
		c.registry.Inc(metrics.Name(c.name, "duplicates", "counter"))
	}
}

// Combine merges right into left and returns left
func (c *Collector[T, K, V]) Combine(left, right *Multimap[K, V]) *Multimap[K, V] {
	left.PutAll(right)
	return left
}

// Finish completes the reduction. The mapping is returned unchanged.
func (c *Collector[T, K, V]) Finish(m *Multimap[K, V]) *Multimap[K, V] {
	c.registry.Mark(metrics.Name(c.name, "finished"))
	return m
}

// Collect reduces elements sequentially
func (c *Collector[T, K, V]) Collect(elements []T) *Multimap[K, V] {
	m := c.Supplier()
	for _, e := range elements {
		c.Accumulate(m, e)
	}
	return c.Finish(m)
}

// CollectParallel splits elements into contiguous partitions, reduces each one
// in its own goroutine and combines the partials in partition order.
// The result holds the same values per key as Collect.
func (c *Collector[T, K, V]) CollectParallel(elements []T, partitions int) *Multimap[K, V] {
	if partitions > len(elements) {
		partitions = len(elements)
	}
	if partitions <= 1 {
		return c.Collect(elements)
	}

	partials := make([]*Multimap[K, V], partitions)
	chunk := (len(elements) + partitions - 1) / partitions

	var wg sync.WaitGroup
	for i := 0; i < partitions; i++ {
		start := i * chunk
		end := start + chunk
		if end > len(elements) {
			end = len(elements)
		}

		partials[i] = c.Supplier()
		if start >= end {
			continue
		}

		wg.Add(1)
		go func(partial *Multimap[K, V], part []T) {
			defer wg.Done()
			for _, e := range part {
				c.Accumulate(partial, e)
			}
		}(partials[i], elements[start:end])
	}
	wg.Wait()

	result := partials[0]
	for _, partial := range partials[1:] {
		result = c.Combine(result, partial)
	}
	return c.Finish(result)
}
