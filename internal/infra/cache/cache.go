// Package cache is a read-through layer over Redis fronting the database.
// It offers two independent strategies, chosen per key by the caller:
//
//   - GetOrLoad: plain TTL entries with null-caching, so lookups of keys that
//     do not exist in the source of truth stop hitting the database.
//   - GetOrRebuild: logically-expiring entries that are served stale while a
//     single background task refreshes them, so hot keys never stampede the
//     database and no reader ever blocks on a rebuild.
package cache

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"flashsale/internal/infra/telemetry"
	"flashsale/internal/pkg/clock"
	"flashsale/internal/pkg/errs"
)

// Loader fetches the source-of-truth value for a key. (nil, nil) means the
// value does not exist.
type Loader[T any] func(ctx context.Context) (*T, error)

type Store interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	Del(ctx context.Context, key string) error
}

type Mutex interface {
	TryLock(ctx context.Context, lease time.Duration) (bool, error)
	Unlock(ctx context.Context) (bool, error)
}

type MutexFactory func(resource string) Mutex

// envelope wraps logically-expiring entries. Absence of the key means "never
// populated"; expiry is only ever signalled by ExpireAt, never by Redis
// eviction.
type envelope struct {
	Data     json.RawMessage `json:"data"`
	ExpireAt time.Time       `json:"expireAt"`
}

type Client struct {
	store          Store
	locks          MutexFactory
	pool           *RebuildPool
	clock          clock.Clock
	rebuildLockTTL time.Duration
}

func NewClient(store Store, locks MutexFactory, pool *RebuildPool, clk clock.Clock, rebuildLockTTL time.Duration) *Client {
	return &Client{
		store:          store,
		locks:          locks,
		pool:           pool,
		clock:          clk,
		rebuildLockTTL: rebuildLockTTL,
	}
}

// Evict drops a key after the source of truth has been updated.
func (c *Client) Evict(ctx context.Context, key string) error {
	return c.store.Del(ctx, key)
}

// GetOrLoad reads through the cache with null-caching: when the loader finds
// nothing, an empty marker is cached under the (shorter) nullTTL so repeated
// lookups of nonexistent keys return immediately instead of reaching the
// database every time.
func GetOrLoad[T any](ctx context.Context, c *Client, key string, ttl, nullTTL time.Duration, load Loader[T]) (*T, error) {
	raw, ok, err := c.store.Get(ctx, key)
	if err != nil {
		return nil, errs.Wrap(err, "cache read failed")
	}
	if ok {
		if raw == "" {
			telemetry.CacheReads.WithLabelValues("pass_through", "null_hit").Inc()
			return nil, nil
		}
		var v T
		if err := json.Unmarshal([]byte(raw), &v); err != nil {
			return nil, errs.Wrap(err, "cache entry decode failed")
		}
		telemetry.CacheReads.WithLabelValues("pass_through", "hit").Inc()
		return &v, nil
	}

	telemetry.CacheReads.WithLabelValues("pass_through", "miss").Inc()
	v, err := load(ctx)
	if err != nil {
		return nil, err
	}
	if v == nil {
		if err := c.store.Set(ctx, key, "", nullTTL); err != nil {
			slog.Warn("failed to cache empty marker", "key", key, "error", err)
		}
		return nil, nil
	}

	buf, err := json.Marshal(v)
	if err != nil {
		return nil, errs.Wrap(err, "cache entry encode failed")
	}
	if err := c.store.Set(ctx, key, string(buf), ttl); err != nil {
		slog.Warn("failed to cache value", "key", key, "error", err)
	}
	return v, nil
}

// GetOrRebuild serves logically-expiring entries. A fresh entry is returned
// as-is. An expired entry is still returned immediately (callers never wait
// on a rebuild) while at most one background task per key reloads it, gated
// by a short-lease lock. A missing key yields (nil, nil) without touching the
// loader: these entries are populated by explicit warm-up via
// SetWithLogicalExpire, never synchronously.
func GetOrRebuild[T any](ctx context.Context, c *Client, key string, logicalTTL time.Duration, load Loader[T]) (*T, error) {
	raw, ok, err := c.store.Get(ctx, key)
	if err != nil {
		return nil, errs.Wrap(err, "cache read failed")
	}
	if !ok {
		telemetry.CacheReads.WithLabelValues("logical_expire", "miss").Inc()
		return nil, nil
	}

	var env envelope
	if err := json.Unmarshal([]byte(raw), &env); err != nil {
		return nil, errs.Wrap(err, "cache envelope decode failed")
	}
	var v T
	if err := json.Unmarshal(env.Data, &v); err != nil {
		return nil, errs.Wrap(err, "cache entry decode failed")
	}
	if c.clock.Now().Before(env.ExpireAt) {
		telemetry.CacheReads.WithLabelValues("logical_expire", "hit").Inc()
		return &v, nil
	}

	telemetry.CacheReads.WithLabelValues("logical_expire", "stale").Inc()
	tryScheduleRebuild(ctx, c, key, logicalTTL, load)
	return &v, nil
}

func tryUnlock(ctx context.Context, mu Mutex, key string) {
	if _, err := mu.Unlock(ctx); err != nil {
		slog.Warn("rebuild lock release failed", "key", key, "error", err)
	}
}

// tryScheduleRebuild dispatches at most one background reload per key: the
// per-key lock loses the race cheaply when a rebuild is already in flight,
// and the bounded pool caps rebuild concurrency across all keys. Failures in
// here are logged and swallowed; the caller already has a stale value.
func tryScheduleRebuild[T any](ctx context.Context, c *Client, key string, logicalTTL time.Duration, load Loader[T]) {
	mu := c.locks(key)
	acquired, err := mu.TryLock(ctx, c.rebuildLockTTL)
	if err != nil {
		slog.Warn("rebuild lock attempt failed", "key", key, "error", err)
		return
	}
	if !acquired {
		return
	}

	submitted := c.pool.Submit(func(taskCtx context.Context) {
		defer tryUnlock(taskCtx, mu, key)

		fresh, err := load(taskCtx)
		if err != nil {
			slog.Error("cache rebuild failed", "key", key, "error", err)
			return
		}
		if fresh == nil {
			// The source row disappeared; drop the entry so readers see
			// "never populated" instead of a stale ghost.
			if err := c.store.Del(taskCtx, key); err != nil {
				slog.Warn("failed to drop rebuilt key", "key", key, "error", err)
			}
			return
		}
		if err := SetWithLogicalExpire(taskCtx, c, key, fresh, logicalTTL); err != nil {
			slog.Error("cache rebuild write failed", "key", key, "error", err)
		}
	})
	if submitted {
		telemetry.CacheRebuilds.Inc()
	} else {
		slog.Warn("rebuild backlog full, skipping", "key", key)
		tryUnlock(ctx, mu, key)
	}
}

// SetWithLogicalExpire writes an envelope with no physical TTL. Expiry is
// application-level only; a physically evicted entry would defeat
// stale-serving.
func SetWithLogicalExpire[T any](ctx context.Context, c *Client, key string, v *T, logicalTTL time.Duration) error {
	data, err := json.Marshal(v)
	if err != nil {
		return errs.Wrap(err, "cache entry encode failed")
	}
	env := envelope{Data: data, ExpireAt: c.clock.Now().Add(logicalTTL)}
	buf, err := json.Marshal(env)
	if err != nil {
		return errs.Wrap(err, "cache envelope encode failed")
	}
	return c.store.Set(ctx, key, string(buf), 0)
}
