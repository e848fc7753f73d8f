package cache

import (
	"context"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"krist-explorer/models"
)

func withClock[V any](c *MemoryCache[V], at *time.Time) {
	c.now = func() time.Time { return *at }
}

func TestMemoryCacheExpiry(t *testing.T) {
	c := NewMemoryCache[string](time.Minute, 10)
	defer c.Close()
	now := time.Now()
	withClock(c, &now)

	c.Set("a", "one")
	v, ok := c.Get("a")
	assert.True(t, ok)
	assert.Equal(t, "one", v)

	now = now.Add(2 * time.Minute)
	assert.Equal(t, 1, c.Stats().Expired)
	_, ok = c.Get("a")
	assert.False(t, ok)
	assert.Zero(t, c.Size())
}

func TestMemoryCacheEvictsOldest(t *testing.T) {
	c := NewMemoryCache[int](time.Minute, 2)
	defer c.Close()
	now := time.Now()
	withClock(c, &now)

	c.Set("a", 1)
	now = now.Add(time.Second)
	c.Set("b", 2)
	now = now.Add(time.Second)
	c.Set("b", 3)
	assert.Equal(t, 2, c.Size(), "overwriting does not evict")

	c.Set("c", 4)
	_, ok := c.Get("a")
	assert.False(t, ok)
	v, _ := c.Get("b")
	assert.Equal(t, 3, v)
}

func TestRemoveExpiredEntries(t *testing.T) {
	c := NewMemoryCache[int](time.Minute, 10)
	defer c.Close()
	now := time.Now()
	withClock(c, &now)

	c.Set("a", 1)
	c.Set("b", 2)
	now = now.Add(time.Hour)
	c.Set("c", 3)

	assert.Equal(t, 2, c.removeExpiredEntries())
	assert.Equal(t, 1, c.Size())
}

func TestCloseTwice(t *testing.T) {
	c := NewMemoryCache[int](time.Minute, 10)
	c.Set("a", 1)
	c.Close()
	c.Close()
	assert.Zero(t, c.Size())
}

func TestCheckNameCachesResults(t *testing.T) {
	caches := NewCaches()
	defer caches.Close()

	calls := 0
	fetch := func(_ context.Context, name string) (bool, error) {
		calls++
		return name == "free", nil
	}

	ok, err := caches.CheckName(context.Background(), "free", fetch)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = caches.CheckName(context.Background(), "FREE", fetch)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 1, calls)
}

func TestGetOrFetchDoesNotCacheErrors(t *testing.T) {
	caches := NewCaches()
	defer caches.Close()

	fail := true
	fetch := func(context.Context) (*models.MOTD, error) {
		if fail {
			return nil, errors.New("offline")
		}
		return &models.MOTD{MOTD: "hi", MiningEnabled: true}, nil
	}

	_, err := caches.MOTDOf(context.Background(), fetch)
	assert.Error(t, err)

	fail = false
	motd, err := caches.MOTDOf(context.Background(), fetch)
	require.NoError(t, err)
	assert.True(t, motd.MiningEnabled)
	assert.Equal(t, 1, caches.MOTD.Size())
}
