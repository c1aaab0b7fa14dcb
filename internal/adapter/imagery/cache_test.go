package imagery

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- mock for cache tests ---

type countingCatalog struct {
	calls  int
	result Composite
}

func (m *countingCatalog) Composite(_ context.Context, year, month int) (Composite, error) {
	m.calls++
	r := m.result
	if r.Name != "" {
		r.Year = year
		r.Month = month
	}
	return r, nil
}

// --- CachedCatalog tests ---

func TestCachedCatalog_CacheHit(t *testing.T) {
	inner := &countingCatalog{result: Composite{Name: "L8_2019_01", Scenes: 12}}
	cached := NewCachedCatalog(inner, 10)

	c1, err := cached.Composite(context.Background(), 2019, 1)
	require.NoError(t, err)
	assert.Equal(t, 12, c1.Scenes)

	c2, err := cached.Composite(context.Background(), 2019, 1)
	require.NoError(t, err)
	assert.Equal(t, 12, c2.Scenes)

	assert.Equal(t, 1, inner.calls, "should only call inner once")
}

func TestCachedCatalog_DifferentMonthsMiss(t *testing.T) {
	inner := &countingCatalog{result: Composite{Name: "L8", Scenes: 12}}
	cached := NewCachedCatalog(inner, 10)

	_, _ = cached.Composite(context.Background(), 2019, 1)
	_, _ = cached.Composite(context.Background(), 2019, 2)

	assert.Equal(t, 2, inner.calls)
}

func TestCachedCatalog_EmptyResultNotCached(t *testing.T) {
	inner := &countingCatalog{result: Composite{}}
	cached := NewCachedCatalog(inner, 10)

	_, _ = cached.Composite(context.Background(), 2019, 1)
	_, _ = cached.Composite(context.Background(), 2019, 1)

	assert.Equal(t, 2, inner.calls, "empty results should be retried")
}

// --- LRU cache unit tests ---

func TestLRUCache_BasicGetPut(t *testing.T) {
	c := newLRUCache(3)

	c.put("a", Composite{Name: "a"})
	v, ok := c.get("a")
	require.True(t, ok)
	assert.Equal(t, "a", v.Name)

	_, ok = c.get("missing")
	assert.False(t, ok)
}

func TestLRUCache_EvictsLeastRecentlyUsed(t *testing.T) {
	c := newLRUCache(2)

	c.put("a", Composite{Name: "a"})
	c.put("b", Composite{Name: "b"})
	_, ok := c.get("a") // touch a so b becomes the eviction candidate
	require.True(t, ok)
	c.put("c", Composite{Name: "c"})

	_, ok = c.get("b")
	assert.False(t, ok, "b should have been evicted")
	_, ok = c.get("a")
	assert.True(t, ok)
	_, ok = c.get("c")
	assert.True(t, ok)
}

func TestLRUCache_UpdateExistingKey(t *testing.T) {
	c := newLRUCache(2)

	c.put("a", Composite{Name: "a", Scenes: 1})
	c.put("a", Composite{Name: "a", Scenes: 2})

	v, ok := c.get("a")
	require.True(t, ok)
	assert.Equal(t, 2, v.Scenes)
	assert.Len(t, c.entries, 1)
}
