package repository

import (
	"context"
	"errors"

	"flashsale/internal/domain/voucher"
	"flashsale/internal/infra"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type VoucherRepository struct {
	db *pgxpool.Pool
}

func NewVoucherRepository(db *pgxpool.Pool) *VoucherRepository {
	return &VoucherRepository{db: db}
}

func (r *VoucherRepository) FindByID(ctx context.Context, id int64) (*voucher.Voucher, error) {
	const query = `
		SELECT id, shop_id, title, pay_value, stock, begin_time, end_time
		FROM vouchers WHERE id = $1
	`

	var v voucher.Voucher
	err := r.db.QueryRow(ctx, query, id).Scan(
		&v.ID, &v.ShopID, &v.Title, &v.PayValue, &v.Stock, &v.BeginTime, &v.EndTime,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, infra.WrapRepoErr("voucher not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to find voucher by id", err)
	}
	return &v, nil
}

func (r *VoucherRepository) Create(ctx context.Context, v *voucher.Voucher) (int64, error) {
	const query = `
		INSERT INTO vouchers (shop_id, title, pay_value, stock, begin_time, end_time)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`

	var id int64
	err := r.db.QueryRow(ctx, query,
		v.ShopID, v.Title, v.PayValue, v.Stock, v.BeginTime, v.EndTime,
	).Scan(&id)
	if err != nil {
		return 0, infra.WrapRepoErr("failed to insert voucher", err)
	}
	return id, nil
}

// DecrementStock takes one unit of the authoritative inventory. The stock > 0
// guard makes the decrement conditional: false means the row was not touched
// because inventory is exhausted. This is the database-side backstop behind
// the Redis fast path.
func (r *VoucherRepository) DecrementStock(ctx context.Context, voucherID int64) (bool, error) {
	const query = `UPDATE vouchers SET stock = stock - 1 WHERE id = $1 AND stock > 0`

	tag, err := r.db.Exec(ctx, query, voucherID)
	if err != nil {
		return false, infra.WrapRepoErr("failed to decrement voucher stock", err)
	}
	return tag.RowsAffected() > 0, nil
}
