package repository

import (
	"context"
	"errors"

	"flashsale/internal/domain/order"
	"flashsale/internal/infra"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const pgErrCodeUniqueViolation = "23505"

type OrderRepository struct {
	db *pgxpool.Pool
}

func NewOrderRepository(db *pgxpool.Pool) *OrderRepository {
	return &OrderRepository{db: db}
}

func (r *OrderRepository) Exists(ctx context.Context, userID, voucherID int64) (bool, error) {
	const query = `SELECT EXISTS(SELECT 1 FROM voucher_orders WHERE user_id = $1 AND voucher_id = $2)`

	var exists bool
	if err := r.db.QueryRow(ctx, query, userID, voucherID).Scan(&exists); err != nil {
		return false, infra.WrapRepoErr("failed to check order existence", err)
	}
	return exists, nil
}

func (r *OrderRepository) Insert(ctx context.Context, o *order.Order) error {
	const query = `
		INSERT INTO voucher_orders (id, user_id, voucher_id, status, create_time)
		VALUES ($1, $2, $3, $4, now())
	`

	if _, err := r.db.Exec(ctx, query, o.ID, o.UserID, o.VoucherID, o.Status); err != nil {
		if isUniqueViolation(err) {
			return infra.WrapRepoErr("order already exists", err, infra.KindDuplicateKey)
		}
		return infra.WrapRepoErr("failed to insert order", err)
	}
	return nil
}

func (r *OrderRepository) FindByID(ctx context.Context, id int64) (*order.Order, error) {
	const query = `SELECT id, user_id, voucher_id, status, create_time FROM voucher_orders WHERE id = $1`

	var o order.Order
	err := r.db.QueryRow(ctx, query, id).Scan(&o.ID, &o.UserID, &o.VoucherID, &o.Status, &o.CreateTime)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, infra.WrapRepoErr("order not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to find order by id", err)
	}
	return &o, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgErrCodeUniqueViolation
}
