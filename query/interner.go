package query

import (
	"sync"
)

// Interner maps comparable values to dense ids. The ids returned by Intern
// are only valid for the interner they were interned with.
type Interner[V comparable] struct {
	mu     sync.RWMutex
	values []V
	index  map[V]uint32
}

// NewInterner creates an empty interner.
func NewInterner[V comparable]() *Interner[V] {
	return &Interner[V]{index: make(map[V]uint32)}
}

// Intern returns the id of v, allocating one on first use.
func (in *Interner[V]) Intern(v V) uint32 {
	in.mu.RLock()
	id, ok := in.index[v]
	in.mu.RUnlock()
	if ok {
		return id
	}

	in.mu.Lock()
	defer in.mu.Unlock()
	if id, ok := in.index[v]; ok {
		return id
	}
	id = uint32(len(in.values))
	in.values = append(in.values, v)
	in.index[v] = id
	return id
}

// Lookup returns the value interned under id.
func (in *Interner[V]) Lookup(id uint32) (V, bool) {
	in.mu.RLock()
	defer in.mu.RUnlock()
	if int(id) < len(in.values) {
		return in.values[id], true
	}
	var zero V
	return zero, false
}

// Len returns the number of interned values.
func (in *Interner[V]) Len() int {
	in.mu.RLock()
	defer in.mu.RUnlock()
	return len(in.values)
}

// HashInterner interns values that are not comparable with ==, such as values
// holding token trees. Values are bucketed by hash and compared with equal.
type HashInterner[V any] struct {
	mu     sync.RWMutex
	hash   func(V) uint64
	equal  func(a, b V) bool
	values []V
	index  map[uint64][]uint32
}

// NewHashInterner creates an interner using hash and equal for identity.
func NewHashInterner[V any](hash func(V) uint64, equal func(a, b V) bool) *HashInterner[V] {
	return &HashInterner[V]{hash: hash, equal: equal, index: make(map[uint64][]uint32)}
}

func (in *HashInterner[V]) find(h uint64, v V) (uint32, bool) {
	for _, id := range in.index[h] {
		if in.equal(in.values[id], v) {
			return id, true
		}
	}
	return 0, false
}

// Intern returns the id of v, allocating one on first use.
func (in *HashInterner[V]) Intern(v V) uint32 {
	h := in.hash(v)

	in.mu.RLock()
	id, ok := in.find(h, v)
	in.mu.RUnlock()
	if ok {
		return id
	}

	in.mu.Lock()
	defer in.mu.Unlock()
	if id, ok := in.find(h, v); ok {
		return id
	}
	id = uint32(len(in.values))
	in.values = append(in.values, v)
	in.index[h] = append(in.index[h], id)
	return id
}

// Lookup returns the value interned under id.
func (in *HashInterner[V]) Lookup(id uint32) (V, bool) {
	in.mu.RLock()
	defer in.mu.RUnlock()
	if int(id) < len(in.values) {
		return in.values[id], true
	}
	var zero V
	return zero, false
}

// Len returns the number of interned values.
func (in *HashInterner[V]) Len() int {
	in.mu.RLock()
	defer in.mu.RUnlock()
	return len(in.values)
}
