//go:build unit

package cache

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"flashsale/internal/pkg/clock"
	"flashsale/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memEntry struct {
	value string
	ttl   time.Duration
}

type memStore struct {
	mu      sync.Mutex
	entries map[string]memEntry
	sets    int
}

func newMemStore() *memStore {
	return &memStore{entries: make(map[string]memEntry)}
}

func (s *memStore) Get(_ context.Context, key string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[key]
	return e.value, ok, nil
}

func (s *memStore) Set(_ context.Context, key, value string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[key] = memEntry{value: value, ttl: ttl}
	s.sets++
	return nil
}

func (s *memStore) Del(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, key)
	return nil
}

func (s *memStore) entry(key string) (memEntry, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[key]
	return e, ok
}

type fakeMutex struct {
	mu       sync.Mutex
	busy     bool
	acquired int
	released int
}

func (m *fakeMutex) TryLock(_ context.Context, _ time.Duration) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.busy {
		return false, nil
	}
	m.busy = true
	m.acquired++
	return true, nil
}

func (m *fakeMutex) Unlock(_ context.Context) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.busy = false
	m.released++
	return true, nil
}

type testShop struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

func newTestClient(t *testing.T, store *memStore, mu *fakeMutex, clk clock.Clock) *Client {
	t.Helper()
	pool := NewRebuildPool(2, 8)
	pool.Start()
	t.Cleanup(pool.Stop)
	locks := func(string) Mutex { return mu }
	return NewClient(store, locks, pool, clk, time.Second)
}

func TestGetOrLoad(t *testing.T) {
	ctx := context.Background()
	clk := clock.NewMockClock(time.Date(2026, 3, 15, 10, 0, 0, 0, time.UTC))

	t.Run("miss loads from source and caches with ttl", func(t *testing.T) {
		store := newMemStore()
		c := newTestClient(t, store, &fakeMutex{}, clk)
		loads := 0

		got, err := GetOrLoad(ctx, c, "cache:shop:1", 30*time.Minute, 2*time.Minute,
			func(context.Context) (*testShop, error) {
				loads++
				return &testShop{ID: 1, Name: "cafe"}, nil
			})
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, "cafe", got.Name)
		assert.Equal(t, 1, loads)

		e, ok := store.entry("cache:shop:1")
		require.True(t, ok)
		assert.Equal(t, 30*time.Minute, e.ttl)
	})

	t.Run("hit does not touch the loader", func(t *testing.T) {
		store := newMemStore()
		c := newTestClient(t, store, &fakeMutex{}, clk)
		require.NoError(t, store.Set(ctx, "cache:shop:1", `{"id":1,"name":"cafe"}`, time.Minute))

		got, err := GetOrLoad(ctx, c, "cache:shop:1", time.Minute, time.Minute,
			func(context.Context) (*testShop, error) {
				t.Fatal("loader must not be called on a hit")
				return nil, nil
			})
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, int64(1), got.ID)
	})

	t.Run("absent row caches an empty marker with the null ttl", func(t *testing.T) {
		store := newMemStore()
		c := newTestClient(t, store, &fakeMutex{}, clk)

		got, err := GetOrLoad(ctx, c, "cache:shop:9", 30*time.Minute, 2*time.Minute,
			func(context.Context) (*testShop, error) { return nil, nil })
		require.NoError(t, err)
		assert.Nil(t, got)

		e, ok := store.entry("cache:shop:9")
		require.True(t, ok)
		assert.Equal(t, "", e.value)
		assert.Equal(t, 2*time.Minute, e.ttl)
	})

	t.Run("cached empty marker short-circuits without loading", func(t *testing.T) {
		store := newMemStore()
		c := newTestClient(t, store, &fakeMutex{}, clk)
		require.NoError(t, store.Set(ctx, "cache:shop:9", "", 2*time.Minute))

		got, err := GetOrLoad(ctx, c, "cache:shop:9", time.Minute, time.Minute,
			func(context.Context) (*testShop, error) {
				t.Fatal("loader must not be called for a cached empty marker")
				return nil, nil
			})
		require.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("loader errors propagate and nothing is cached", func(t *testing.T) {
		store := newMemStore()
		c := newTestClient(t, store, &fakeMutex{}, clk)

		_, err := GetOrLoad(ctx, c, "cache:shop:1", time.Minute, time.Minute,
			func(context.Context) (*testShop, error) { return nil, errs.New("db down") })
		require.Error(t, err)

		_, ok := store.entry("cache:shop:1")
		assert.False(t, ok)
	})
}

func setEnvelope(t *testing.T, store *memStore, key string, v any, expireAt time.Time) {
	t.Helper()
	data, err := json.Marshal(v)
	require.NoError(t, err)
	buf, err := json.Marshal(envelope{Data: data, ExpireAt: expireAt})
	require.NoError(t, err)
	require.NoError(t, store.Set(context.Background(), key, string(buf), 0))
}

func TestGetOrRebuild(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 3, 15, 10, 0, 0, 0, time.UTC)

	t.Run("missing key returns nil without loading", func(t *testing.T) {
		store := newMemStore()
		c := newTestClient(t, store, &fakeMutex{}, clock.NewMockClock(now))

		got, err := GetOrRebuild(ctx, c, "cache:shop:1", 20*time.Minute,
			func(context.Context) (*testShop, error) {
				t.Fatal("loader must not be called on a cold miss")
				return nil, nil
			})
		require.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("fresh entry is served without a rebuild", func(t *testing.T) {
		store := newMemStore()
		mu := &fakeMutex{}
		c := newTestClient(t, store, mu, clock.NewMockClock(now))
		setEnvelope(t, store, "cache:shop:1", testShop{ID: 1, Name: "cafe"}, now.Add(time.Hour))

		got, err := GetOrRebuild(ctx, c, "cache:shop:1", 20*time.Minute,
			func(context.Context) (*testShop, error) {
				t.Fatal("loader must not be called while the entry is fresh")
				return nil, nil
			})
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, "cafe", got.Name)
		assert.Equal(t, 0, mu.acquired)
	})

	t.Run("stale entry is served immediately and rebuilt in the background", func(t *testing.T) {
		store := newMemStore()
		mu := &fakeMutex{}
		clk := clock.NewMockClock(now)
		c := newTestClient(t, store, mu, clk)
		setEnvelope(t, store, "cache:shop:1", testShop{ID: 1, Name: "stale name"}, now.Add(-time.Minute))

		got, err := GetOrRebuild(ctx, c, "cache:shop:1", 20*time.Minute,
			func(context.Context) (*testShop, error) {
				return &testShop{ID: 1, Name: "fresh name"}, nil
			})
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, "stale name", got.Name)

		require.Eventually(t, func() bool {
			raw, ok, _ := store.Get(ctx, "cache:shop:1")
			if !ok {
				return false
			}
			var env envelope
			if json.Unmarshal([]byte(raw), &env) != nil {
				return false
			}
			var s testShop
			return json.Unmarshal(env.Data, &s) == nil && s.Name == "fresh name"
		}, time.Second, 5*time.Millisecond)

		require.Eventually(t, func() bool {
			mu.mu.Lock()
			defer mu.mu.Unlock()
			return mu.released == 1
		}, time.Second, 5*time.Millisecond)
	})

	t.Run("rebuild already in flight is not duplicated", func(t *testing.T) {
		store := newMemStore()
		mu := &fakeMutex{busy: true}
		c := newTestClient(t, store, mu, clock.NewMockClock(now))
		setEnvelope(t, store, "cache:shop:1", testShop{ID: 1, Name: "stale name"}, now.Add(-time.Minute))

		got, err := GetOrRebuild(ctx, c, "cache:shop:1", 20*time.Minute,
			func(context.Context) (*testShop, error) {
				t.Fatal("loader must not run while another rebuild holds the lock")
				return nil, nil
			})
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, "stale name", got.Name)
	})

	t.Run("rebuild lock is named after the cache key", func(t *testing.T) {
		store := newMemStore()
		mu := &fakeMutex{}
		var resource string
		pool := NewRebuildPool(1, 4)
		pool.Start()
		t.Cleanup(pool.Stop)
		locks := func(r string) Mutex {
			resource = r
			return mu
		}
		c := NewClient(store, locks, pool, clock.NewMockClock(now), time.Second)
		setEnvelope(t, store, "cache:shop:1", testShop{ID: 1, Name: "stale name"}, now.Add(-time.Minute))

		_, err := GetOrRebuild(ctx, c, "cache:shop:1", 20*time.Minute,
			func(context.Context) (*testShop, error) {
				return &testShop{ID: 1, Name: "fresh name"}, nil
			})
		require.NoError(t, err)

		// The lock primitive adds its own prefix, so the resource must be the
		// bare cache key, not a re-prefixed variant of it.
		assert.Equal(t, "cache:shop:1", resource)
	})

	t.Run("rebuild drops the key when the source row is gone", func(t *testing.T) {
		store := newMemStore()
		mu := &fakeMutex{}
		c := newTestClient(t, store, mu, clock.NewMockClock(now))
		setEnvelope(t, store, "cache:shop:1", testShop{ID: 1, Name: "stale name"}, now.Add(-time.Minute))

		_, err := GetOrRebuild(ctx, c, "cache:shop:1", 20*time.Minute,
			func(context.Context) (*testShop, error) { return nil, nil })
		require.NoError(t, err)

		require.Eventually(t, func() bool {
			_, ok, _ := store.Get(ctx, "cache:shop:1")
			return !ok
		}, time.Second, 5*time.Millisecond)
	})
}

func TestSetWithLogicalExpire(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 3, 15, 10, 0, 0, 0, time.UTC)
	store := newMemStore()
	c := newTestClient(t, store, &fakeMutex{}, clock.NewMockClock(now))

	v := &testShop{ID: 1, Name: "cafe"}
	require.NoError(t, SetWithLogicalExpire(ctx, c, "cache:shop:1", v, 20*time.Minute))

	e, ok := store.entry("cache:shop:1")
	require.True(t, ok)
	assert.Equal(t, time.Duration(0), e.ttl, "logical entries must not carry a physical ttl")

	var env envelope
	require.NoError(t, json.Unmarshal([]byte(e.value), &env))
	assert.Equal(t, now.Add(20*time.Minute), env.ExpireAt.UTC())
}

func TestRebuildPool_SubmitBacklogFull(t *testing.T) {
	pool := NewRebuildPool(1, 1)
	// Not started: nothing drains the queue, so the second submit must be
	// rejected instead of blocking.
	ok := pool.Submit(func(context.Context) {})
	require.True(t, ok)
	ok = pool.Submit(func(context.Context) {})
	assert.False(t, ok)
}
