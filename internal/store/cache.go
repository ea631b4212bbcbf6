package store

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/feudhq/feud/internal/game"
)

const defaultCacheTTL = 5 * time.Minute

// Cache is a read-through Redis layer in front of a durable session store,
// keeping hot sessions (polled every couple of seconds by clients) off the
// database. Cache entries are best-effort: every miss or Redis failure falls
// back to the inner store.
type Cache struct {
	inner  game.Store
	client *redis.Client
	ttl    time.Duration
	logger zerolog.Logger
}

// NewCache wraps a store with Redis caching.
func NewCache(inner game.Store, client *redis.Client, ttl time.Duration, logger zerolog.Logger) *Cache {
	if ttl <= 0 {
		ttl = defaultCacheTTL
	}
	return &Cache{
		inner:  inner,
		client: client,
		ttl:    ttl,
		logger: logger.With().Str("component", "session_cache").Logger(),
	}
}

var _ game.Store = (*Cache)(nil)

// cacheEntry carries the concurrency token alongside the document, since the
// session's Version is not part of its JSON form.
type cacheEntry struct {
	Version int64        `json:"version"`
	Session game.Session `json:"session"`
}

func cacheKey(code string) string {
	return "feud:session:" + normalizeCode(code)
}

// Get serves from Redis when possible, otherwise reads through and populates
// the cache.
func (c *Cache) Get(ctx context.Context, code string) (*game.Session, error) {
	data, err := c.client.Get(ctx, cacheKey(code)).Bytes()
	if err == nil {
		var entry cacheEntry
		if err := json.Unmarshal(data, &entry); err == nil {
			sess := entry.Session
			sess.Version = entry.Version
			return &sess, nil
		}
		c.logger.Warn().Str("code", code).Msg("dropping corrupted cache entry")
		c.client.Del(ctx, cacheKey(code))
	} else if !errors.Is(err, redis.Nil) {
		c.logger.Warn().Err(err).Msg("cache read failed, falling back to store")
	}

	sess, err := c.inner.Get(ctx, code)
	if err != nil {
		return nil, err
	}
	c.set(ctx, sess)
	return sess, nil
}

// Put writes through to the inner store, then refreshes the cache. A version
// conflict invalidates the cached entry so the retrying caller re-reads the
// current document.
func (c *Cache) Put(ctx context.Context, s *game.Session) error {
	if err := c.inner.Put(ctx, s); err != nil {
		if errors.Is(err, game.ErrVersionConflict) {
			c.client.Del(ctx, cacheKey(s.Code))
		}
		return err
	}
	c.set(ctx, s)
	return nil
}

// Delete removes the session from the store and the cache.
func (c *Cache) Delete(ctx context.Context, code string) error {
	if err := c.inner.Delete(ctx, code); err != nil {
		return err
	}
	if err := c.client.Del(ctx, cacheKey(code)).Err(); err != nil {
		c.logger.Warn().Err(err).Str("code", code).Msg("cache invalidation failed")
	}
	return nil
}

// ListExpired always hits the durable store.
func (c *Cache) ListExpired(ctx context.Context, now time.Time) ([]*game.Session, error) {
	return c.inner.ListExpired(ctx, now)
}

func (c *Cache) set(ctx context.Context, s *game.Session) {
	ttl := c.ttl
	if remaining := time.Until(s.ExpiresAt); remaining <= 0 {
		return
	} else if remaining < ttl {
		ttl = remaining
	}

	entry := cacheEntry{Version: s.Version, Session: *s}
	data, err := json.Marshal(entry)
	if err != nil {
		c.logger.Warn().Err(err).Str("code", s.Code).Msg("cache marshal failed")
		return
	}
	if err := c.client.Set(ctx, cacheKey(s.Code), data, ttl).Err(); err != nil {
		c.logger.Warn().Err(err).Str("code", s.Code).Msg("cache write failed")
	}
}
