// Package consumer drains the order stream and materializes admitted orders
// into the database. Delivery is at least once; the materializer is
// idempotent, so redelivered entries are harmless.
package consumer

import (
	"context"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"flashsale/internal/domain/order"
	"flashsale/internal/infra/coord"
	"flashsale/internal/infra/telemetry"
	"flashsale/internal/pkg/errs"
)

type Queue interface {
	Ensure(ctx context.Context) error
	ReadNext(ctx context.Context, block time.Duration) (*coord.Message, error)
	ReadPending(ctx context.Context) (*coord.Message, error)
	Ack(ctx context.Context, id string) error
}

type Materializer interface {
	CreateVoucherOrder(ctx context.Context, o *order.Order) error
}

type state int

const (
	stateLive state = iota
	stateRecovering
)

type Worker struct {
	queue         Queue
	materializer  Materializer
	blockTimeout  time.Duration
	poisonRetries int

	// attempts counts consecutive failures per entry id so a poison entry
	// cannot wedge the pending list forever.
	attempts map[string]int

	cancel context.CancelFunc
	done   chan struct{}
	once   sync.Once
}

func NewWorker(queue Queue, materializer Materializer, blockTimeout time.Duration, poisonRetries int) *Worker {
	return &Worker{
		queue:         queue,
		materializer:  materializer,
		blockTimeout:  blockTimeout,
		poisonRetries: poisonRetries,
		attempts:      make(map[string]int),
		done:          make(chan struct{}),
	}
}

// Start launches the consume loop. It begins in recovery so entries delivered
// to this consumer before a crash are re-processed before any new ones.
func (w *Worker) Start(ctx context.Context) error {
	if err := w.queue.Ensure(ctx); err != nil {
		return errs.Wrap(err, "failed to ensure consumer group")
	}

	runCtx, cancel := context.WithCancel(context.Background())
	w.cancel = cancel
	go w.run(runCtx)
	return nil
}

func (w *Worker) Stop() {
	w.once.Do(func() {
		if w.cancel != nil {
			w.cancel()
		}
		<-w.done
	})
}

func (w *Worker) run(ctx context.Context) {
	defer close(w.done)
	slog.Info("order consumer started")

	st := stateRecovering
	for {
		select {
		case <-ctx.Done():
			slog.Info("order consumer stopped")
			return
		default:
		}

		switch st {
		case stateLive:
			st = w.consumeLive(ctx)
		case stateRecovering:
			st = w.consumePending(ctx)
		}
	}
}

// consumeLive waits for the next undelivered entry. Any handling failure
// switches to recovery, where the same entry reappears on the pending list.
func (w *Worker) consumeLive(ctx context.Context) state {
	msg, err := w.queue.ReadNext(ctx, w.blockTimeout)
	if err != nil {
		slog.Error("stream read failed", "error", err)
		return stateRecovering
	}
	if msg == nil {
		return stateLive
	}
	if err := w.handle(ctx, msg); err != nil {
		slog.Error("order handling failed, entering recovery", "entryId", msg.ID, "error", err)
		return stateRecovering
	}
	return stateLive
}

// consumePending drains this consumer's pending list one entry at a time.
// An empty list means recovery is complete.
func (w *Worker) consumePending(ctx context.Context) state {
	msg, err := w.queue.ReadPending(ctx)
	if err != nil {
		slog.Error("pending read failed", "error", err)
		// Back off briefly so a down Redis does not spin this loop.
		select {
		case <-ctx.Done():
		case <-time.After(w.blockTimeout):
		}
		return stateRecovering
	}
	if msg == nil {
		return stateLive
	}

	if err := w.handle(ctx, msg); err != nil {
		w.attempts[msg.ID]++
		if w.attempts[msg.ID] < w.poisonRetries {
			slog.Warn("pending entry failed, will retry",
				"entryId", msg.ID, "attempt", w.attempts[msg.ID], "error", err)
			return stateRecovering
		}
		// Poison entry: acknowledge it so the rest of the backlog can
		// drain, and leave a loud trail for manual repair.
		slog.Error("quarantining poison entry", "entryId", msg.ID, "values", msg.Values, "error", err)
		telemetry.ConsumerQuarantined.Inc()
		if err := w.queue.Ack(ctx, msg.ID); err != nil {
			slog.Error("failed to ack poison entry", "entryId", msg.ID, "error", err)
		}
		delete(w.attempts, msg.ID)
	}
	return stateRecovering
}

// handle materializes one entry and acknowledges it only after the
// materializer succeeds.
func (w *Worker) handle(ctx context.Context, msg *coord.Message) error {
	o, err := parseIntent(msg)
	if err != nil {
		return err
	}
	if err := w.materializer.CreateVoucherOrder(ctx, o); err != nil {
		return err
	}
	if err := w.queue.Ack(ctx, msg.ID); err != nil {
		return errs.Wrap(err, "failed to ack entry")
	}
	delete(w.attempts, msg.ID)
	telemetry.ConsumerAcks.Inc()
	return nil
}

func parseIntent(msg *coord.Message) (*order.Order, error) {
	id, err := fieldInt64(msg, "id")
	if err != nil {
		return nil, err
	}
	userID, err := fieldInt64(msg, "userId")
	if err != nil {
		return nil, err
	}
	voucherID, err := fieldInt64(msg, "voucherId")
	if err != nil {
		return nil, err
	}
	return order.New(id, userID, voucherID)
}

func fieldInt64(msg *coord.Message, key string) (int64, error) {
	raw, ok := msg.Values[key]
	if !ok {
		return 0, errs.Newf("stream entry %s missing field %q", msg.ID, key)
	}
	s, ok := raw.(string)
	if !ok {
		return 0, errs.Newf("stream entry %s field %q is not a string", msg.ID, key)
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, errs.Wrapf(err, "stream entry %s field %q", msg.ID, key)
	}
	return n, nil
}
