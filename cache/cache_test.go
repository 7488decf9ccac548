package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/use-agent/filmreview/models"
)

func newTestCache(t *testing.T, max int, ttl time.Duration) (*Cache, *time.Time) {
	t.Helper()
	c := New(max, ttl)
	t.Cleanup(c.Close)
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }
	return c, &now
}

func TestKey(t *testing.T) {
	assert.Equal(t, "la-vita-e-bella|1997", Key("La vita è bella", 1997))
	assert.Equal(t, Key("Oppenheimer", 2023), Key("  OPPENHEIMER! ", 2023))
	assert.NotEqual(t, Key("Dune", 2021), Key("Dune", 1984))
}

func TestCache_GetSet(t *testing.T) {
	c, now := newTestCache(t, 10, time.Hour)
	key := Key("Oppenheimer", 2023)

	_, ok := c.Get(key)
	assert.False(t, ok)

	c.Set(key, &models.ExtractionResult{Success: true, URL: "u"})
	got, ok := c.Get(key)
	require.True(t, ok)
	assert.Equal(t, "u", got.URL)

	got.CacheStatus = "hit"
	again, _ := c.Get(key)
	assert.Empty(t, again.CacheStatus, "callers get copies")

	*now = now.Add(61 * time.Minute)
	_, ok = c.Get(key)
	assert.False(t, ok, "expired")

	c.evictExpired()
	assert.Equal(t, 0, c.Len())
}

func TestCache_SkipsFailures(t *testing.T) {
	c, _ := newTestCache(t, 10, time.Hour)
	c.Set("k", &models.ExtractionResult{Success: false})
	c.Set("n", nil)
	assert.Equal(t, 0, c.Len())
}

func TestCache_EvictsAtCapacity(t *testing.T) {
	c, _ := newTestCache(t, 2, time.Hour)
	ok := &models.ExtractionResult{Success: true}
	c.Set("a", ok)
	c.Set("b", ok)
	c.Set("a", ok)
	assert.Equal(t, 2, c.Len(), "overwriting does not evict")
	c.Set("c", ok)
	assert.Equal(t, 2, c.Len())
	_, hit := c.Get("c")
	assert.True(t, hit)
}

func TestCache_DisabledWithZeroTTL(t *testing.T) {
	c, _ := newTestCache(t, 10, 0)
	c.Set("k", &models.ExtractionResult{Success: true})
	_, ok := c.Get("k")
	assert.False(t, ok)
}
