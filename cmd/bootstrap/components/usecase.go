package components

import (
	"context"

	"flashsale/internal/infra/cache"
	"flashsale/internal/infra/coord"
	"flashsale/internal/pkg/clock"
	"flashsale/internal/pkg/config"
	"flashsale/internal/usecase"
	"flashsale/internal/usecase/commands"
	"flashsale/internal/usecase/queries"

	"go.uber.org/fx"
)

var UseCaseModule = fx.Module("usecase",
	usecaseBaseOption,
	usecaseQueriesModule,
	usecaseValidatorsModule,
	usecaseCommandsModule,
)

var usecaseBaseOption = fx.Provide(
	clock.NewRealClock,
	NewIDWorker,
	NewAdmissionGate,
	NewCacheClient,
	NewRebuildPool,
)

var usecaseCommandsModule = fx.Module("usecase/commands",
	fx.Provide(
		NewSeckillCommands,
		NewVoucherCommands,
		NewShopCommands,
		commands.NewAuthCommands,
	),
)

var usecaseQueriesModule = fx.Module("usecase/queries",
	fx.Provide(
		NewVoucherQueries,
		NewShopQueries,
		queries.NewOrderQueries,
		queries.NewUserQueries,
	),
)

var usecaseValidatorsModule = fx.Module("usecase/validators",
	fx.Provide(
		usecase.NewTokenValidator,
	),
)

func NewIDWorker(client *coord.Client, clk clock.Clock) *coord.IDWorker {
	return coord.NewIDWorker(client, clk)
}

func NewAdmissionGate(client *coord.Client, cfg config.Config) *coord.AdmissionGate {
	return coord.NewAdmissionGate(client, cfg.Seckill.Stream)
}

func NewRebuildPool(lc fx.Lifecycle, cfg config.Config) *cache.RebuildPool {
	pool := cache.NewRebuildPool(cfg.Cache.RebuildWorkers, cfg.Cache.RebuildBacklog)
	lc.Append(fx.Hook{
		OnStart: func(_ context.Context) error {
			pool.Start()
			return nil
		},
		OnStop: func(_ context.Context) error {
			pool.Stop()
			return nil
		},
	})
	return pool
}

func NewCacheClient(client *coord.Client, pool *cache.RebuildPool, clk clock.Clock, cfg config.Config) *cache.Client {
	locks := func(resource string) cache.Mutex {
		return coord.NewLock(client, resource)
	}
	return cache.NewClient(client, locks, pool, clk, cfg.Cache.RebuildLockTTL)
}

func NewSeckillCommands(
	vouchers queries.VoucherQueries,
	orders commands.OrderRepository,
	stock commands.StockRepository,
	ids *coord.IDWorker,
	gate *coord.AdmissionGate,
	client *coord.Client,
	clk clock.Clock,
	cfg config.Config,
) commands.SeckillCommands {
	locks := func(resource string) commands.Mutex {
		return coord.NewLock(client, resource)
	}
	return commands.NewSeckillCommands(vouchers, orders, stock, ids, gate, locks, clk, cfg.Seckill.OrderLockTTL)
}

func NewVoucherCommands(vouchers commands.VoucherWriteRepository, gate *coord.AdmissionGate) commands.VoucherCommands {
	return commands.NewVoucherCommands(vouchers, gate)
}

func NewShopCommands(shops commands.ShopRepository, cacheClient *cache.Client, cfg config.Config) commands.ShopCommands {
	return commands.NewShopCommands(shops, cacheClient, cfg.Cache.LogicalTTL)
}

func NewVoucherQueries(vouchers queries.VoucherRepository, cacheClient *cache.Client, cfg config.Config) queries.VoucherQueries {
	return queries.NewVoucherQueries(vouchers, cacheClient, cfg.Cache.VoucherTTL, cfg.Cache.NullTTL)
}

func NewShopQueries(shops queries.ShopRepository, cacheClient *cache.Client, cfg config.Config) queries.ShopQueries {
	return queries.NewShopQueries(shops, cacheClient, cfg.Cache.LogicalTTL)
}
