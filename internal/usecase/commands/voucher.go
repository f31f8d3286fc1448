package commands

import (
	"context"
	"time"

	"flashsale/internal/domain/voucher"
	"flashsale/internal/pkg/errs"
)

var ErrInvalidVoucher = errs.New("invalid voucher")

type VoucherWriteRepository interface {
	Create(ctx context.Context, v *voucher.Voucher) (int64, error)
}

type StockSeeder interface {
	SeedStock(ctx context.Context, voucherID int64, stock int) error
}

type NewVoucherInput struct {
	ShopID    int64
	Title     string
	PayValue  int64
	Stock     int
	BeginTime time.Time
	EndTime   time.Time
}

type VoucherCommands interface {
	// CreateSeckillVoucher persists the voucher and seeds its inventory
	// counter in Redis so the admission script can decrement it.
	CreateSeckillVoucher(ctx context.Context, in NewVoucherInput) (int64, error)
}

type voucherUseCaseImpl struct {
	vouchers VoucherWriteRepository
	seeder   StockSeeder
}

func NewVoucherCommands(vouchers VoucherWriteRepository, seeder StockSeeder) VoucherCommands {
	return &voucherUseCaseImpl{vouchers: vouchers, seeder: seeder}
}

func (u *voucherUseCaseImpl) CreateSeckillVoucher(ctx context.Context, in NewVoucherInput) (int64, error) {
	v, err := voucher.New(in.ShopID, in.Title, in.PayValue, in.Stock, in.BeginTime, in.EndTime)
	if err != nil {
		return 0, errs.Mark(err, ErrInvalidVoucher)
	}

	id, err := u.vouchers.Create(ctx, v)
	if err != nil {
		return 0, errs.Wrap(err, "failed to create voucher")
	}

	if err := u.seeder.SeedStock(ctx, id, v.Stock); err != nil {
		// The voucher row exists but the counter is missing: admission will
		// reject everything for this voucher until the seed is repaired.
		return 0, errs.Wrap(err, "voucher created but stock seeding failed")
	}
	return id, nil
}
