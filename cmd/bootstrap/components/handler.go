package components

import (
	"flashsale/internal/handler"
	"flashsale/internal/handler/api"
	"flashsale/internal/handler/middleware"

	"go.uber.org/fx"
)

var HandlerModule = fx.Module("handler",
	fx.Provide(
		api.NewAuthHandler,
		api.NewVoucherHandler,
		api.NewOrderHandler,
		api.NewShopHandler,
		middleware.NewAuthMiddleware,
	),
	fx.Invoke(handler.NewRouter),
)
