package coord

import (
	"context"
	"fmt"

	"flashsale/internal/pkg/clock"
	"flashsale/internal/pkg/errs"
)

// Reference epoch for the timestamp component: 2022-01-01T00:00:00Z.
const idEpoch int64 = 1640995200

// The low 32 bits carry a per-day sequence; a single day never realistically
// exhausts them, so overflow is treated as a configuration error rather than
// wrapped around.
const idSequenceBits = 32

type Counter interface {
	Incr(ctx context.Context, key string) (int64, error)
}

// IDWorker issues unique, roughly increasing 64-bit ids: seconds since the
// reference epoch in the high bits, a Redis-backed per-(prefix, day) sequence
// in the low bits. Ids are unique across all processes sharing the counter.
//
// Known limitation: a clock step backwards (NTP correction) makes the
// timestamp component temporarily non-monotonic. Uniqueness is unaffected.
type IDWorker struct {
	counter Counter
	clock   clock.Clock
}

func NewIDWorker(counter Counter, clk clock.Clock) *IDWorker {
	return &IDWorker{counter: counter, clock: clk}
}

func (w *IDWorker) NextID(ctx context.Context, prefix string) (int64, error) {
	now := w.clock.Now().UTC()
	timestamp := now.Unix() - idEpoch

	key := fmt.Sprintf("icr:%s:%s", prefix, now.Format("2006:01:02"))
	seq, err := w.counter.Incr(ctx, key)
	if err != nil {
		return 0, errs.Wrap(err, "failed to increment id sequence")
	}
	if seq >= 1<<idSequenceBits {
		return 0, errs.Newf("id sequence overflow for prefix %q", prefix)
	}

	return timestamp<<idSequenceBits | seq, nil
}
