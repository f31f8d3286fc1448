package commands

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"flashsale/internal/domain/order"
	"flashsale/internal/domain/voucher"
	"flashsale/internal/infra"
	"flashsale/internal/infra/coord"
	"flashsale/internal/infra/telemetry"
	"flashsale/internal/pkg/clock"
	"flashsale/internal/pkg/errs"
)

var (
	ErrVoucherNotFound   = errs.New("voucher not found")
	ErrSeckillNotStarted = errs.New("seckill has not started")
	ErrSeckillEnded      = errs.New("seckill has ended")
	ErrStockExhausted    = errs.New("stock exhausted")
	ErrDuplicateOrder    = errs.New("duplicate order")
	ErrAdmissionFailed   = errs.New("admission failed")
)

type VoucherReader interface {
	GetByID(ctx context.Context, id int64) (*voucher.Voucher, error)
}

type OrderRepository interface {
	Exists(ctx context.Context, userID, voucherID int64) (bool, error)
	Insert(ctx context.Context, o *order.Order) error
}

type StockRepository interface {
	DecrementStock(ctx context.Context, voucherID int64) (bool, error)
}

type IDGenerator interface {
	NextID(ctx context.Context, prefix string) (int64, error)
}

type AdmissionGate interface {
	Admit(ctx context.Context, voucherID, userID, orderID int64) (coord.AdmitResult, error)
}

type Mutex interface {
	TryLock(ctx context.Context, lease time.Duration) (bool, error)
	Unlock(ctx context.Context) (bool, error)
}

type MutexFactory func(resource string) Mutex

type SeckillCommands interface {
	// Seckill decides a purchase attempt synchronously and returns the order
	// id on admission. The durable order is written later by the stream
	// consumer; callers must tolerate "admitted but not yet queryable".
	Seckill(ctx context.Context, userID, voucherID int64) (int64, error)

	// CreateVoucherOrder persists one admitted order. Idempotent under
	// redelivery; called only by the stream consumer.
	CreateVoucherOrder(ctx context.Context, o *order.Order) error
}

type seckillUseCaseImpl struct {
	vouchers VoucherReader
	orders   OrderRepository
	stock    StockRepository
	ids      IDGenerator
	gate     AdmissionGate
	locks    MutexFactory
	clock    clock.Clock
	lockTTL  time.Duration
}

func NewSeckillCommands(
	vouchers VoucherReader,
	orders OrderRepository,
	stock StockRepository,
	ids IDGenerator,
	gate AdmissionGate,
	locks MutexFactory,
	clk clock.Clock,
	lockTTL time.Duration,
) SeckillCommands {
	return &seckillUseCaseImpl{
		vouchers: vouchers,
		orders:   orders,
		stock:    stock,
		ids:      ids,
		gate:     gate,
		locks:    locks,
		clock:    clk,
		lockTTL:  lockTTL,
	}
}

func (s *seckillUseCaseImpl) Seckill(ctx context.Context, userID, voucherID int64) (int64, error) {
	v, err := s.vouchers.GetByID(ctx, voucherID)
	if err != nil {
		return 0, errs.Mark(err, ErrAdmissionFailed)
	}
	if v == nil {
		return 0, ErrVoucherNotFound
	}
	if err := v.ValidateWindow(s.clock.Now()); err != nil {
		switch err {
		case voucher.ErrNotStarted:
			return 0, ErrSeckillNotStarted
		default:
			return 0, ErrSeckillEnded
		}
	}

	// The id is generated before the admission verdict on purpose: clients
	// observe the same id sequencing whether or not they are admitted.
	orderID, err := s.ids.NextID(ctx, "order")
	if err != nil {
		return 0, errs.Mark(err, ErrAdmissionFailed)
	}

	res, err := s.gate.Admit(ctx, voucherID, userID, orderID)
	if err != nil {
		return 0, errs.Mark(err, ErrAdmissionFailed)
	}
	switch res {
	case coord.AdmitSoldOut:
		telemetry.Admissions.WithLabelValues("sold_out").Inc()
		return 0, ErrStockExhausted
	case coord.AdmitDuplicate:
		telemetry.Admissions.WithLabelValues("duplicate").Inc()
		return 0, ErrDuplicateOrder
	}

	telemetry.Admissions.WithLabelValues("ok").Inc()
	return orderID, nil
}

// CreateVoucherOrder re-validates everything the admission script already
// checked, against the database this time. The per-user lock plus the
// conditional stock decrement give two independent layers against
// double-selling even if an impossible duplicate slipped through admission.
func (s *seckillUseCaseImpl) CreateVoucherOrder(ctx context.Context, o *order.Order) error {
	mu := s.locks(fmt.Sprintf("order:%d", o.UserID))
	acquired, err := mu.TryLock(ctx, s.lockTTL)
	if err != nil {
		return errs.Wrap(err, "failed to acquire order lock")
	}
	if !acquired {
		// Another worker is materializing for this user; redelivery will
		// retry naturally if that one dies.
		slog.Warn("order lock busy, skipping", "userId", o.UserID, "orderId", o.ID)
		return nil
	}
	defer func() {
		if _, err := mu.Unlock(ctx); err != nil {
			slog.Warn("failed to release order lock", "userId", o.UserID, "error", err)
		}
	}()

	exists, err := s.orders.Exists(ctx, o.UserID, o.VoucherID)
	if err != nil {
		return errs.Wrap(err, "failed to check existing order")
	}
	if exists {
		slog.Warn("duplicate order suppressed", "userId", o.UserID, "voucherId", o.VoucherID)
		return nil
	}

	decremented, err := s.stock.DecrementStock(ctx, o.VoucherID)
	if err != nil {
		return errs.Wrap(err, "failed to decrement stock")
	}
	if !decremented {
		slog.Error("authoritative stock exhausted, dropping admitted order",
			"voucherId", o.VoucherID, "orderId", o.ID)
		return nil
	}

	if err := s.orders.Insert(ctx, o); err != nil {
		if infra.IsKind(err, infra.KindDuplicateKey) {
			slog.Warn("order already persisted", "orderId", o.ID)
			return nil
		}
		return errs.Wrap(err, "failed to insert order")
	}

	telemetry.OrdersCreated.Inc()
	return nil
}
