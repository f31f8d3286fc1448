package queries

import (
	"context"
	"time"

	"flashsale/internal/domain/shop"
	"flashsale/internal/infra"
	"flashsale/internal/infra/cache"
	"flashsale/internal/pkg/errs"
	"flashsale/internal/usecase/commands"

	"github.com/jinzhu/copier"
)

type ShopRepository interface {
	FindByID(ctx context.Context, id int64) (*shop.Shop, error)
}

// ShopView is the read model served to clients. It mirrors the domain shop
// today but keeps the response shape decoupled from storage.
type ShopView struct {
	ID         int64     `json:"id"`
	Name       string    `json:"name"`
	TypeID     int64     `json:"typeId"`
	Address    string    `json:"address"`
	AvgPrice   int64     `json:"avgPrice"`
	Score      int32     `json:"score"`
	CreateTime time.Time `json:"createTime"`
	UpdateTime time.Time `json:"updateTime"`
}

type ShopQueries interface {
	// GetByID serves from the logically-expiring cache, possibly stale.
	// (nil, nil) means the shop was never warmed or has been evicted.
	GetByID(ctx context.Context, id int64) (*ShopView, error)
}

type shopQueriesImpl struct {
	shops      ShopRepository
	cache      *cache.Client
	logicalTTL time.Duration
}

func NewShopQueries(shops ShopRepository, cacheClient *cache.Client, logicalTTL time.Duration) ShopQueries {
	return &shopQueriesImpl{shops: shops, cache: cacheClient, logicalTTL: logicalTTL}
}

func (q *shopQueriesImpl) GetByID(ctx context.Context, id int64) (*ShopView, error) {
	s, err := cache.GetOrRebuild(ctx, q.cache, commands.ShopCacheKey(id), q.logicalTTL,
		func(ctx context.Context) (*shop.Shop, error) {
			fresh, err := q.shops.FindByID(ctx, id)
			if err != nil {
				if infra.IsKind(err, infra.KindNotFound) {
					return nil, nil
				}
				return nil, errs.Wrap(err, "failed to reload shop")
			}
			return fresh, nil
		})
	if err != nil {
		return nil, err
	}
	if s == nil {
		return nil, nil
	}

	var view ShopView
	if err := copier.Copy(&view, s); err != nil {
		return nil, errs.Wrap(err, "failed to map shop view")
	}
	return &view, nil
}
