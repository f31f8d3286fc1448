package queries

import (
	"context"

	"flashsale/internal/domain/order"
	"flashsale/internal/infra"
	"flashsale/internal/pkg/errs"
)

type OrderRepository interface {
	FindByID(ctx context.Context, id int64) (*order.Order, error)
}

type OrderQueries interface {
	// GetByID returns (nil, nil) while an admitted order has not been
	// materialized yet; clients poll until the consumer catches up.
	GetByID(ctx context.Context, id int64) (*order.Order, error)
}

type orderQueriesImpl struct {
	orders OrderRepository
}

func NewOrderQueries(orders OrderRepository) OrderQueries {
	return &orderQueriesImpl{orders: orders}
}

func (q *orderQueriesImpl) GetByID(ctx context.Context, id int64) (*order.Order, error) {
	o, err := q.orders.FindByID(ctx, id)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return nil, nil
		}
		return nil, errs.Wrap(err, "failed to load order")
	}
	return o, nil
}
