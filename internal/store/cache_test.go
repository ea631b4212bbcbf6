package store

import (
	"context"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/feudhq/feud/internal/game"
)

// stubInner counts calls so tests can tell cache hits from read-throughs.
type stubInner struct {
	mu       sync.Mutex
	sessions map[string]game.Session
	gets     int
	putErr   error
}

func newStubInner() *stubInner {
	return &stubInner{sessions: make(map[string]game.Session)}
}

func (s *stubInner) Get(_ context.Context, code string) (*game.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gets++
	sess, ok := s.sessions[normalizeCode(code)]
	if !ok {
		return nil, game.ErrNotFound
	}
	out := sess.Clone()
	return &out, nil
}

func (s *stubInner) Put(_ context.Context, sess *game.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.putErr != nil {
		return s.putErr
	}
	sess.Version++
	s.sessions[normalizeCode(sess.Code)] = sess.Clone()
	return nil
}

func (s *stubInner) Delete(_ context.Context, code string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, normalizeCode(code))
	return nil
}

func (s *stubInner) ListExpired(_ context.Context, now time.Time) ([]*game.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*game.Session
	for _, sess := range s.sessions {
		if sess.Expired(now) {
			cp := sess.Clone()
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (s *stubInner) getCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.gets
}

func newTestCache(t *testing.T, inner game.Store) (*Cache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return NewCache(inner, client, time.Minute, zerolog.New(io.Discard)), mr
}

func testSession(code string) *game.Session {
	now := time.Now().UTC()
	return &game.Session{
		Code:         code,
		Mode:         game.ModeAutoAdvance,
		HostID:       "host-1",
		CurrentIndex: -1,
		MaxStrikes:   3,
		Status:       game.StatusWaiting,
		CreatedAt:    now,
		ExpiresAt:    now.Add(24 * time.Hour),
	}
}

func TestCacheReadThrough(t *testing.T) {
	inner := newStubInner()
	cache, mr := newTestCache(t, inner)
	ctx := context.Background()

	require.NoError(t, inner.Put(ctx, testSession("ABCD")))
	baseline := inner.getCount()

	first, err := cache.Get(ctx, "abcd")
	require.NoError(t, err)
	assert.Equal(t, "ABCD", first.Code)
	assert.Equal(t, baseline+1, inner.getCount())
	assert.True(t, mr.Exists("feud:session:ABCD"))

	second, err := cache.Get(ctx, "ABCD")
	require.NoError(t, err)
	assert.Equal(t, first.Code, second.Code)
	assert.Equal(t, first.Version, second.Version)
	assert.Equal(t, baseline+1, inner.getCount(), "second read should be served from cache")
}

func TestCachePutWritesThrough(t *testing.T) {
	inner := newStubInner()
	cache, mr := newTestCache(t, inner)
	ctx := context.Background()

	sess := testSession("EFGH")
	require.NoError(t, cache.Put(ctx, sess))
	assert.True(t, mr.Exists("feud:session:EFGH"))

	cached, err := cache.Get(ctx, "EFGH")
	require.NoError(t, err)
	assert.Equal(t, sess.Version, cached.Version)

	stored, err := inner.Get(ctx, "EFGH")
	require.NoError(t, err)
	assert.Equal(t, sess.Version, stored.Version)
}

func TestCacheInvalidatesOnVersionConflict(t *testing.T) {
	inner := newStubInner()
	cache, mr := newTestCache(t, inner)
	ctx := context.Background()

	sess := testSession("JKMN")
	require.NoError(t, cache.Put(ctx, sess))
	require.True(t, mr.Exists("feud:session:JKMN"))

	inner.putErr = game.ErrVersionConflict
	err := cache.Put(ctx, sess)
	assert.ErrorIs(t, err, game.ErrVersionConflict)
	assert.False(t, mr.Exists("feud:session:JKMN"), "conflict should drop the cached entry")
}

func TestCacheDelete(t *testing.T) {
	inner := newStubInner()
	cache, mr := newTestCache(t, inner)
	ctx := context.Background()

	require.NoError(t, cache.Put(ctx, testSession("PQRS")))
	require.True(t, mr.Exists("feud:session:PQRS"))

	require.NoError(t, cache.Delete(ctx, "pqrs"))
	assert.False(t, mr.Exists("feud:session:PQRS"))
	_, err := cache.Get(ctx, "PQRS")
	assert.ErrorIs(t, err, game.ErrNotFound)
}

func TestCacheSkipsExpiredSessions(t *testing.T) {
	inner := newStubInner()
	cache, mr := newTestCache(t, inner)
	ctx := context.Background()

	sess := testSession("TUVW")
	sess.ExpiresAt = time.Now().UTC().Add(-time.Minute)
	require.NoError(t, cache.Put(ctx, sess))

	assert.False(t, mr.Exists("feud:session:TUVW"), "expired sessions are not cached")
}

func TestCacheMissFallsThrough(t *testing.T) {
	inner := newStubInner()
	cache, _ := newTestCache(t, inner)

	_, err := cache.Get(context.Background(), "ZZZZ")
	assert.ErrorIs(t, err, game.ErrNotFound)
}
