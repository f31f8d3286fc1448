//go:build unit

package coord

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeLockStore emulates SET NX plus the compare-and-delete unlock script.
type fakeLockStore struct {
	entries map[string]string
}

func newFakeLockStore() *fakeLockStore {
	return &fakeLockStore{entries: make(map[string]string)}
}

func (s *fakeLockStore) SetNX(_ context.Context, key, value string, _ time.Duration) (bool, error) {
	if _, held := s.entries[key]; held {
		return false, nil
	}
	s.entries[key] = value
	return true, nil
}

func (s *fakeLockStore) Eval(_ context.Context, _ string, keys []string, args ...any) (any, error) {
	if s.entries[keys[0]] == args[0].(string) {
		delete(s.entries, keys[0])
		return int64(1), nil
	}
	return int64(0), nil
}

func TestLock_TryLock(t *testing.T) {
	store := newFakeLockStore()

	t.Run("acquires a free lock", func(t *testing.T) {
		lock := NewLock(store, "order:1")
		ok, err := lock.TryLock(context.Background(), time.Second)
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("second holder is rejected without blocking", func(t *testing.T) {
		other := NewLock(store, "order:1")
		ok, err := other.TryLock(context.Background(), time.Second)
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("different resources do not contend", func(t *testing.T) {
		lock := NewLock(store, "order:2")
		ok, err := lock.TryLock(context.Background(), time.Second)
		require.NoError(t, err)
		assert.True(t, ok)
	})
}

func TestLock_Unlock(t *testing.T) {
	t.Run("releases an owned lock", func(t *testing.T) {
		store := newFakeLockStore()
		lock := NewLock(store, "order:1")
		ok, err := lock.TryLock(context.Background(), time.Second)
		require.NoError(t, err)
		require.True(t, ok)

		released, err := lock.Unlock(context.Background())
		require.NoError(t, err)
		assert.True(t, released)

		// The resource is free again.
		again := NewLock(store, "order:1")
		ok, err = again.TryLock(context.Background(), time.Second)
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("does not release a lock owned by someone else", func(t *testing.T) {
		store := newFakeLockStore()
		holder := NewLock(store, "order:1")
		ok, err := holder.TryLock(context.Background(), time.Second)
		require.NoError(t, err)
		require.True(t, ok)

		// Simulates a lease that expired and was reacquired by another
		// instance before our unlock ran.
		intruder := NewLock(store, "order:1")
		released, err := intruder.Unlock(context.Background())
		require.NoError(t, err)
		assert.False(t, released)

		// The original holder still owns it.
		released, err = holder.Unlock(context.Background())
		require.NoError(t, err)
		assert.True(t, released)
	})
}

func TestLock_TokensAreUnique(t *testing.T) {
	store := newFakeLockStore()
	a := NewLock(store, "r")
	b := NewLock(store, "r")
	assert.NotEqual(t, a.token, b.token)
}
