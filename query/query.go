// Package query provides the memoizing substrate the expansion engine runs
// on: revisioned memo tables with shared in-flight computation, and
// interners mapping structural keys to small stable ids.
package query

import (
	"fmt"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/singleflight"

	"github.com/satishbabariya/expand-go/internal/debug"
	"github.com/satishbabariya/expand-go/query/cache"
)

// Revision counts input changes.
type Revision uint64

type table interface {
	name() string
	purge()
	stats() cache.Stats
}

// Runtime owns the current revision and every memo table registered with it.
// Bumping the revision discards all memoized values.
type Runtime struct {
	revision atomic.Uint64
	// gate is held exclusively while the revision moves and tables purge,
	// and shared while a computed value is stored.
	gate   sync.RWMutex
	mu     sync.Mutex
	tables []table
}

// NewRuntime creates a runtime at revision zero.
func NewRuntime() *Runtime {
	return &Runtime{}
}

// Revision returns the current revision.
func (rt *Runtime) Revision() Revision {
	return Revision(rt.revision.Load())
}

// Bump records an input change and purges every memo table.
func (rt *Runtime) Bump() Revision {
	rt.mu.Lock()
	tables := append([]table(nil), rt.tables...)
	rt.mu.Unlock()

	rt.gate.Lock()
	rev := Revision(rt.revision.Add(1))
	for _, t := range tables {
		t.purge()
	}
	rt.gate.Unlock()
	debug.Debug("query revision bumped", "revision", rev, "tables", len(tables))
	return rev
}

// TableStats is the statistics of one memo table.
type TableStats struct {
	Name string
	cache.Stats
}

// Stats returns statistics of all registered tables in registration order.
func (rt *Runtime) Stats() []TableStats {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	out := make([]TableStats, 0, len(rt.tables))
	for _, t := range rt.tables {
		out = append(out, TableStats{Name: t.name(), Stats: t.stats()})
	}
	return out
}

// storeAt runs store if the revision is still rev, atomically with respect
// to Bump. It reports whether store ran.
func (rt *Runtime) storeAt(rev Revision, store func()) bool {
	rt.gate.RLock()
	defer rt.gate.RUnlock()
	if rt.Revision() != rev {
		return false
	}
	store()
	return true
}

func (rt *Runtime) register(t table) {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	rt.tables = append(rt.tables, t)
}

// Memo is a memoized query from K to V. Concurrent requests for the same key
// share one computation. Values computed across a revision bump are returned
// to their callers but never stored.
type Memo[K comparable, V any] struct {
	label   string
	rt      *Runtime
	compute func(K) V
	values  *cache.LRU[K, V]
	group   singleflight.Group
}

// NewMemo creates a memo table registered with rt. capacity bounds the number
// of stored values; zero or less means unbounded.
func NewMemo[K comparable, V any](rt *Runtime, name string, capacity int, compute func(K) V) *Memo[K, V] {
	m := &Memo[K, V]{
		label:   name,
		rt:      rt,
		compute: compute,
		values:  cache.NewLRU[K, V](capacity),
	}
	rt.register(m)
	return m
}

// Get returns the memoized value for key, computing it if needed.
func (m *Memo[K, V]) Get(key K) V {
	if v, ok := m.values.Get(key); ok {
		return v
	}
	rev := m.rt.Revision()
	v, _, _ := m.group.Do(fmt.Sprintf("%d/%v", rev, key), func() (any, error) {
		if v, ok := m.values.Peek(key); ok {
			return v, nil
		}
		v := m.compute(key)
		m.rt.storeAt(rev, func() { m.values.Set(key, v) })
		return v, nil
	})
	out, _ := v.(V)
	return out
}

// Cached reports whether key has a stored value.
func (m *Memo[K, V]) Cached(key K) bool {
	_, ok := m.values.Peek(key)
	return ok
}

func (m *Memo[K, V]) name() string       { return m.label }
func (m *Memo[K, V]) purge()             { m.values.Clear() }
func (m *Memo[K, V]) stats() cache.Stats { return m.values.GetStats() }
