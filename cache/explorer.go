package cache

import (
	"context"
	"strings"
	"time"

	"krist-explorer/models"
)

const (
	nameCheckTTL = 30 * time.Second
	motdTTL      = 5 * time.Minute
	motdKey      = "motd"
)

// Caches holds the short-lived lookups shared by the explorer screens
type Caches struct {
	NameChecks *MemoryCache[bool]
	MOTD       *MemoryCache[models.MOTD]
}

func NewCaches() *Caches {
	return &Caches{
		NameChecks: NewMemoryCache[bool](nameCheckTTL, 256),
		MOTD:       NewMemoryCache[models.MOTD](motdTTL, 1),
	}
}

// CheckName returns a cached availability result or asks fetch for one
func (c *Caches) CheckName(ctx context.Context, name string, fetch func(context.Context, string) (bool, error)) (bool, error) {
	return GetOrFetch(ctx, c.NameChecks, strings.ToLower(name), func(ctx context.Context) (bool, error) {
		return fetch(ctx, name)
	})
}

// MOTDOf returns the cached MOTD or asks fetch for it
func (c *Caches) MOTDOf(ctx context.Context, fetch func(context.Context) (*models.MOTD, error)) (models.MOTD, error) {
	return GetOrFetch(ctx, c.MOTD, motdKey, func(ctx context.Context) (models.MOTD, error) {
		m, err := fetch(ctx)
		if err != nil {
			return models.MOTD{}, err
		}
		return *m, nil
	})
}

func (c *Caches) Close() {
	c.NameChecks.Close()
	c.MOTD.Close()
}

// GetOrFetch returns the cached value for key, calling fetch on a miss.
// Failed fetches are not cached.
func GetOrFetch[V any](ctx context.Context, c *MemoryCache[V], key string, fetch func(context.Context) (V, error)) (V, error) {
	if v, ok := c.Get(key); ok {
		return v, nil
	}
	v, err := fetch(ctx)
	if err != nil {
		return v, err
	}
	c.Set(key, v)
	return v, nil
}
