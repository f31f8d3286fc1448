package coord

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"flashsale/internal/pkg/errs"
)

// AdmitResult mirrors the admission script's integer result codes.
type AdmitResult int

const (
	AdmitOK        AdmitResult = 0
	AdmitSoldOut   AdmitResult = 1
	AdmitDuplicate AdmitResult = 2
)

// The whole check-then-act sequence runs server-side in one script so no two
// admissions for the same voucher can interleave: total admitted orders never
// exceed the seeded stock, and a user is never admitted twice. Splitting this
// into client-side reads and writes would reintroduce exactly that race.
const admitScript = `local voucherId = ARGV[1]
local userId = ARGV[2]
local orderId = ARGV[3]
local streamKey = ARGV[4]

local stockKey = 'seckill:stock:' .. voucherId
local orderKey = 'seckill:order:' .. voucherId

if (tonumber(redis.call('get', stockKey)) <= 0) then
    return 1
end
if (redis.call('sismember', orderKey, userId) == 1) then
    return 2
end
redis.call('incrby', stockKey, -1)
redis.call('sadd', orderKey, userId)
redis.call('xadd', streamKey, '*', 'userId', userId, 'voucherId', voucherId, 'id', orderId)
return 0`

type GateStore interface {
	Eval(ctx context.Context, script string, keys []string, args ...any) (any, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
}

// AdmissionGate decides purchase attempts against the Redis-side stock
// counter and dedup set, and enqueues admitted orders onto the stream in the
// same atomic step. The database stock stays authoritative; this counter only
// fast-rejects.
type AdmissionGate struct {
	store  GateStore
	stream string
}

func NewAdmissionGate(store GateStore, stream string) *AdmissionGate {
	return &AdmissionGate{store: store, stream: stream}
}

func (g *AdmissionGate) Admit(ctx context.Context, voucherID, userID, orderID int64) (AdmitResult, error) {
	res, err := g.store.Eval(ctx, admitScript, []string{},
		strconv.FormatInt(voucherID, 10),
		strconv.FormatInt(userID, 10),
		strconv.FormatInt(orderID, 10),
		g.stream,
	)
	if err != nil {
		return 0, errs.Wrap(err, "admission script failed")
	}

	n, ok := res.(int64)
	if !ok {
		return 0, errs.Newf("unexpected admission script result %v", res)
	}
	switch r := AdmitResult(n); r {
	case AdmitOK, AdmitSoldOut, AdmitDuplicate:
		return r, nil
	default:
		return 0, errs.Newf("unknown admission result code %d", n)
	}
}

// SeedStock publishes a voucher's starting inventory so the admission script
// has something to decrement. Called when a seckill voucher is created.
func (g *AdmissionGate) SeedStock(ctx context.Context, voucherID int64, stock int) error {
	key := fmt.Sprintf("seckill:stock:%d", voucherID)
	if err := g.store.Set(ctx, key, strconv.Itoa(stock), 0); err != nil {
		return errs.Wrap(err, "failed to seed voucher stock")
	}
	return nil
}
