package components

import (
	repo_impl "flashsale/internal/infra/repository"
	"flashsale/internal/usecase/commands"
	"flashsale/internal/usecase/queries"

	"go.uber.org/fx"
)

var RepositoryModule = fx.Module("repository",
	fx.Provide(
		fx.Annotate(
			repo_impl.NewUserRepository,
			fx.As(new(commands.UserRepository)),
			fx.As(new(queries.UserRepository)),
		),
		fx.Annotate(
			repo_impl.NewOrderRepository,
			fx.As(new(commands.OrderRepository)),
			fx.As(new(queries.OrderRepository)),
		),
		fx.Annotate(
			repo_impl.NewVoucherRepository,
			fx.As(new(commands.VoucherWriteRepository)),
			fx.As(new(commands.StockRepository)),
			fx.As(new(queries.VoucherRepository)),
		),
		fx.Annotate(
			repo_impl.NewShopRepository,
			fx.As(new(commands.ShopRepository)),
			fx.As(new(queries.ShopRepository)),
		),
	),
)
