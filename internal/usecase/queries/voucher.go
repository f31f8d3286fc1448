package queries

import (
	"context"
	"fmt"
	"time"

	"flashsale/internal/domain/voucher"
	"flashsale/internal/infra"
	"flashsale/internal/infra/cache"
	"flashsale/internal/pkg/errs"
)

type VoucherRepository interface {
	FindByID(ctx context.Context, id int64) (*voucher.Voucher, error)
}

type VoucherQueries interface {
	// GetByID reads through the pass-through cache. (nil, nil) means the
	// voucher does not exist; the miss is negative-cached.
	GetByID(ctx context.Context, id int64) (*voucher.Voucher, error)
}

type voucherQueriesImpl struct {
	vouchers VoucherRepository
	cache    *cache.Client
	ttl      time.Duration
	nullTTL  time.Duration
}

func NewVoucherQueries(vouchers VoucherRepository, cacheClient *cache.Client, ttl, nullTTL time.Duration) VoucherQueries {
	return &voucherQueriesImpl{vouchers: vouchers, cache: cacheClient, ttl: ttl, nullTTL: nullTTL}
}

func voucherCacheKey(id int64) string {
	return fmt.Sprintf("cache:voucher:%d", id)
}

func (q *voucherQueriesImpl) GetByID(ctx context.Context, id int64) (*voucher.Voucher, error) {
	return cache.GetOrLoad(ctx, q.cache, voucherCacheKey(id), q.ttl, q.nullTTL,
		func(ctx context.Context) (*voucher.Voucher, error) {
			v, err := q.vouchers.FindByID(ctx, id)
			if err != nil {
				if infra.IsKind(err, infra.KindNotFound) {
					return nil, nil
				}
				return nil, errs.Wrap(err, "failed to load voucher")
			}
			return v, nil
		})
}
