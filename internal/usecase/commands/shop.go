package commands

import (
	"context"
	"fmt"
	"time"

	"flashsale/internal/domain/shop"
	"flashsale/internal/infra"
	"flashsale/internal/infra/cache"
	"flashsale/internal/pkg/errs"
)

var ErrShopNotFound = errs.New("shop not found")

type ShopRepository interface {
	FindByID(ctx context.Context, id int64) (*shop.Shop, error)
	Update(ctx context.Context, s *shop.Shop) error
}

type ShopCommands interface {
	// Update writes the database first and then evicts the cached entry;
	// the next read repopulates it.
	Update(ctx context.Context, s *shop.Shop) error

	// Warm populates the logically-expiring cache entry for a shop. Hot
	// shops must be warmed before the sale starts: the stale-serving read
	// path never populates the cache on its own.
	Warm(ctx context.Context, id int64) error
}

type shopUseCaseImpl struct {
	shops      ShopRepository
	cache      *cache.Client
	logicalTTL time.Duration
}

func NewShopCommands(shops ShopRepository, cacheClient *cache.Client, logicalTTL time.Duration) ShopCommands {
	return &shopUseCaseImpl{shops: shops, cache: cacheClient, logicalTTL: logicalTTL}
}

// ShopCacheKey is shared with the read side in usecase/queries.
func ShopCacheKey(id int64) string {
	return fmt.Sprintf("cache:shop:%d", id)
}

func (u *shopUseCaseImpl) Update(ctx context.Context, s *shop.Shop) error {
	if err := u.shops.Update(ctx, s); err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return ErrShopNotFound
		}
		return errs.Wrap(err, "failed to update shop")
	}
	if err := u.cache.Evict(ctx, ShopCacheKey(s.ID)); err != nil {
		return errs.Wrap(err, "shop updated but cache eviction failed")
	}
	return nil
}

func (u *shopUseCaseImpl) Warm(ctx context.Context, id int64) error {
	s, err := u.shops.FindByID(ctx, id)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return ErrShopNotFound
		}
		return errs.Wrap(err, "failed to load shop for warm-up")
	}
	return cache.SetWithLogicalExpire(ctx, u.cache, ShopCacheKey(id), s, u.logicalTTL)
}
