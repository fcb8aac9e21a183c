package cache

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLRUEvictsLeastRecentlyUsed(t *testing.T) {
	c := NewLRU[int, string](2)
	c.Set(1, "one")
	c.Set(2, "two")

	_, ok := c.Get(1)
	require.True(t, ok)

	c.Set(3, "three")
	_, ok = c.Peek(2)
	assert.False(t, ok, "2 was least recently used")
	v, ok := c.Peek(1)
	require.True(t, ok)
	assert.Equal(t, "one", v)

	stats := c.GetStats()
	assert.Equal(t, int64(1), stats.Evictions)
	assert.Equal(t, 2, stats.Size)
	assert.Equal(t, int64(1), stats.Hits)
}

func TestLRUUnbounded(t *testing.T) {
	c := NewLRU[int, int](0)
	for i := 0; i < 1000; i++ {
		c.Set(i, i*i)
	}
	assert.Equal(t, 1000, c.Len())
	v, ok := c.Get(30)
	require.True(t, ok)
	assert.Equal(t, 900, v)
}

func TestLRUInvalidateAndClear(t *testing.T) {
	c := NewLRU[string, int](10)
	c.Set("a", 1)
	c.Set("b", 2)
	c.Set("a", 3)
	assert.Equal(t, 2, c.Len())

	c.Invalidate("a")
	_, ok := c.Get("a")
	assert.False(t, ok)

	c.Clear()
	assert.Equal(t, 0, c.Len())
	_, ok = c.Get("b")
	assert.False(t, ok)

	stats := c.GetStats()
	assert.Equal(t, int64(2), stats.Misses)
	assert.InDelta(t, 0.0, stats.HitRate, 0.001)
}
