package group

// Multimap maps a key to the ordered list of values sharing it.
// Keys are kept in first-insertion order so iteration is deterministic;
// values keep their insertion order within a key.
// A Multimap is not safe for concurrent use: each partial reduction owns one.
type Multimap[K comparable, V any] struct {
	keys   []K
	values map[K][]V
	size   int
}

// NewMultimap creates an empty multimap
func NewMultimap[K comparable, V any]() *Multimap[K, V] {
	return &Multimap[K, V]{values: make(map[K][]V)}
}

// Put appends value under key and reports whether the key already existed
func (m *Multimap[K, V]) Put(key K, value V) bool {
	existing, ok := m.values[key]
	if !ok {
		m.keys = append(m.keys, key)
	}
	m.values[key] = append(existing, value)
	m.size++
	return ok
}

// PutAll appends every key/value list of other after the lists already held
func (m *Multimap[K, V]) PutAll(other *Multimap[K, V]) {
	for _, key := range other.keys {
		values := other.values[key]
		if _, ok := m.values[key]; !ok {
			m.keys = append(m.keys, key)
		}
		m.values[key] = append(m.values[key], values...)
		m.size += len(values)
	}
}

// Get returns the values stored under key
func (m *Multimap[K, V]) Get(key K) []V {
	return m.values[key]
}

// ContainsKey reports whether key has at least one value
func (m *Multimap[K, V]) ContainsKey(key K) bool {
	_, ok := m.values[key]
	return ok
}

// Keys returns the keys in first-insertion order
func (m *Multimap[K, V]) Keys() []K {
	keys := make([]K, len(m.keys))
	copy(keys, m.keys)
	return keys
}

// Len returns the number of distinct keys
func (m *Multimap[K, V]) Len() int {
	return len(m.keys)
}

// Size returns the total number of values
func (m *Multimap[K, V]) Size() int {
	return m.size
}

// Each calls fn for every key in first-insertion order
func (m *Multimap[K, V]) Each(fn func(key K, values []V)) {
	for _, key := range m.keys {
		fn(key, m.values[key])
	}
}

// Groups returns the value lists holding at least atLeast values, in key order
func (m *Multimap[K, V]) Groups(atLeast int) [][]V {
	var groups [][]V
	for _, key := range m.keys {
		if values := m.values[key]; len(values) >= atLeast {
			groups = append(groups, values)
		}
	}
	return groups
}
