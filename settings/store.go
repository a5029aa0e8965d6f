package settings

import (
	"context"
	"time"

	"github.com/patrickmn/go-cache"
)

// =============================================================================
// STORE - Persistence interface for user settings
// =============================================================================

// Store persists one settings snapshot per user.
//
// Implementations:
//   - store/sqlite: SQLite (default)
//   - store/postgres: PostgreSQL
//   - store/memory: in-memory, for tests and demos
type Store interface {
	// Get returns the user's settings or ErrNotFound.
	Get(ctx context.Context, userID string) (UserSettings, error)

	// Save creates or replaces the user's settings.
	Save(ctx context.Context, userID string, s UserSettings) error
}

// =============================================================================
// CACHED STORE - Read-through cache for the dashboard poll path
// =============================================================================

// CachedStore fronts a Store with a TTL cache. The dashboard polls about once
// a second per user; settings change rarely.
// Save writes through, so a user always reads their own latest write.
type CachedStore struct {
	next  Store
	cache *cache.Cache

	// OnHit and OnMiss are optional observers (metrics).
	OnHit  func()
	OnMiss func()
}

// NewCachedStore wraps next. A ttl <= 0 disables caching: every call goes
// straight to next.
func NewCachedStore(next Store, ttl time.Duration) *CachedStore {
	c := &CachedStore{next: next}
	if ttl > 0 {
		c.cache = cache.New(ttl, 2*ttl)
	}
	return c
}

func (c *CachedStore) Get(ctx context.Context, userID string) (UserSettings, error) {
	if c.cache == nil {
		return c.next.Get(ctx, userID)
	}
	if v, ok := c.cache.Get(userID); ok {
		if c.OnHit != nil {
			c.OnHit()
		}
		return v.(UserSettings), nil
	}
	if c.OnMiss != nil {
		c.OnMiss()
	}

	s, err := c.next.Get(ctx, userID)
	if err != nil {
		return UserSettings{}, err
	}
	c.cache.SetDefault(userID, s)
	return s, nil
}

func (c *CachedStore) Save(ctx context.Context, userID string, s UserSettings) error {
	if c.cache == nil {
		return c.next.Save(ctx, userID, s)
	}
	if err := c.next.Save(ctx, userID, s); err != nil {
		c.cache.Delete(userID)
		return err
	}
	c.cache.SetDefault(userID, s)
	return nil
}

// Invalidate drops a cached entry.
func (c *CachedStore) Invalidate(userID string) {
	if c.cache != nil {
		c.cache.Delete(userID)
	}
}
