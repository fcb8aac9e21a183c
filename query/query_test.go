package query

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zeebo/xxh3"
)

func TestMemoComputesOncePerRevision(t *testing.T) {
	rt := NewRuntime()
	var calls atomic.Int32
	m := NewMemo(rt, "square", 0, func(k int) int {
		calls.Add(1)
		return k * k
	})

	assert.Equal(t, 9, m.Get(3))
	assert.Equal(t, 9, m.Get(3))
	assert.Equal(t, int32(1), calls.Load())
	assert.True(t, m.Cached(3))

	rt.Bump()
	assert.False(t, m.Cached(3))
	assert.Equal(t, 9, m.Get(3))
	assert.Equal(t, int32(2), calls.Load())
}

func TestMemoSharesConcurrentComputations(t *testing.T) {
	rt := NewRuntime()
	var calls atomic.Int32
	release := make(chan struct{})
	m := NewMemo(rt, "slow", 0, func(k string) string {
		calls.Add(1)
		<-release
		return k + "!"
	})

	var wg sync.WaitGroup
	results := make([]string, 8)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = m.Get("x")
		}(i)
	}
	close(release)
	wg.Wait()

	for _, r := range results {
		assert.Equal(t, "x!", r)
	}
	assert.LessOrEqual(t, calls.Load(), int32(8))
	assert.GreaterOrEqual(t, calls.Load(), int32(1))
}

func TestMemoDoesNotStoreAcrossBump(t *testing.T) {
	rt := NewRuntime()
	m := NewMemo(rt, "bumping", 0, func(k int) int {
		rt.Bump()
		return k
	})
	assert.Equal(t, 5, m.Get(5))
	assert.False(t, m.Cached(5))
}

func TestStoreAtIsExclusiveWithBump(t *testing.T) {
	rt := NewRuntime()
	rev := rt.Revision()

	stored := make(chan struct{})
	release := make(chan struct{})
	bumped := make(chan Revision)
	go func() {
		rt.storeAt(rev, func() {
			close(stored)
			<-release
		})
	}()
	<-stored
	go func() { bumped <- rt.Bump() }()

	// Bump waits for the store in progress.
	select {
	case <-bumped:
		t.Fatal("Bump completed while a store held the gate")
	case <-time.After(20 * time.Millisecond):
	}
	assert.Equal(t, rev, rt.Revision())
	close(release)
	assert.Equal(t, rev+1, <-bumped)

	ran := rt.storeAt(rev, func() { t.Fatal("stored at an old revision") })
	assert.False(t, ran)
}

func TestMemoNeverServesValueOfOldInput(t *testing.T) {
	rt := NewRuntime()
	var input atomic.Int64
	m := NewMemo(rt, "input", 0, func(int) int64 { return input.Load() })

	for round := 0; round < 200; round++ {
		var wg sync.WaitGroup
		for i := 0; i < 4; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				m.Get(0)
			}()
		}
		input.Add(1)
		rt.Bump()
		wg.Wait()
		require.Equal(t, input.Load(), m.Get(0), "round %d", round)
	}
}

func TestMemoNilInterfaceValue(t *testing.T) {
	rt := NewRuntime()
	m := NewMemo(rt, "nil", 0, func(int) error { return nil })
	assert.NoError(t, m.Get(1))
}

func TestRuntimeStats(t *testing.T) {
	rt := NewRuntime()
	a := NewMemo(rt, "a", 4, func(k int) int { return k })
	NewMemo(rt, "b", 4, func(k int) int { return k })
	a.Get(1)
	a.Get(1)

	stats := rt.Stats()
	require.Len(t, stats, 2)
	assert.Equal(t, "a", stats[0].Name)
	assert.Equal(t, int64(1), stats[0].Hits)
	assert.Equal(t, int64(1), stats[0].Misses)
	assert.Equal(t, 4, stats[0].MaxSize)
	assert.Equal(t, "b", stats[1].Name)
}

func TestInterner(t *testing.T) {
	in := NewInterner[string]()
	a := in.Intern("a")
	b := in.Intern("b")
	assert.NotEqual(t, a, b)
	assert.Equal(t, a, in.Intern("a"))
	assert.Equal(t, 2, in.Len())

	v, ok := in.Lookup(b)
	require.True(t, ok)
	assert.Equal(t, "b", v)
	_, ok = in.Lookup(7)
	assert.False(t, ok)
}

func TestHashInternerHandlesCollisions(t *testing.T) {
	// Every value lands in one bucket; equality keeps them apart.
	in := NewHashInterner(func([]string) uint64 { return 1 }, func(a, b []string) bool {
		if len(a) != len(b) {
			return false
		}
		for i := range a {
			if a[i] != b[i] {
				return false
			}
		}
		return true
	})
	x := in.Intern([]string{"x"})
	y := in.Intern([]string{"x", "y"})
	assert.NotEqual(t, x, y)
	assert.Equal(t, x, in.Intern([]string{"x"}))

	hashed := NewHashInterner(func(s []byte) uint64 { return xxh3.Hash(s) }, func(a, b []byte) bool { return string(a) == string(b) })
	assert.Equal(t, hashed.Intern([]byte("abc")), hashed.Intern([]byte("abc")))
	assert.Equal(t, 1, hashed.Len())
}
