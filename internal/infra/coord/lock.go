package coord

import (
	"context"
	"time"

	"flashsale/internal/pkg/errs"

	"github.com/google/uuid"
)

type LockStore interface {
	SetNX(ctx context.Context, key, value string, ttl time.Duration) (bool, error)
	Eval(ctx context.Context, script string, keys []string, args ...any) (any, error)
}

const lockKeyPrefix = "lock:"

// ownerPrefix distinguishes this process from other instances sharing the
// same Redis. The per-lock suffix added in NewLock distinguishes concurrent
// holders within one process, so the full token is unique system-wide.
var ownerPrefix = uuid.NewString() + "-"

// Compare the stored owner token before deleting. A plain GET-then-DEL would
// race: the lease could expire and be reacquired between the two calls, and
// we would delete someone else's lock.
const unlockScript = `if redis.call('get', KEYS[1]) == ARGV[1] then
    return redis.call('del', KEYS[1])
end
return 0`

// Lock is lease-based mutual exclusion over a named resource. It is not
// re-entrant.
type Lock struct {
	store LockStore
	key   string
	token string
}

func NewLock(store LockStore, resource string) *Lock {
	return &Lock{
		store: store,
		key:   lockKeyPrefix + resource,
		token: ownerPrefix + uuid.NewString(),
	}
}

// TryLock makes a single non-blocking attempt. false means the lock is busy
// and the caller should give up, not retry. The lease is enforced by Redis
// expiry, so a crashed holder cannot starve other holders.
func (l *Lock) TryLock(ctx context.Context, lease time.Duration) (bool, error) {
	ok, err := l.store.SetNX(ctx, l.key, l.token, lease)
	if err != nil {
		return false, errs.Wrap(err, "failed to acquire lock")
	}
	return ok, nil
}

// Unlock releases the lock only if this instance still owns it. It reports
// whether the lock was actually released; false without error means the lease
// had already expired and the lock may belong to another holder.
func (l *Lock) Unlock(ctx context.Context) (bool, error) {
	res, err := l.store.Eval(ctx, unlockScript, []string{l.key}, l.token)
	if err != nil {
		return false, errs.Wrap(err, "failed to release lock")
	}
	n, _ := res.(int64)
	return n == 1, nil
}
