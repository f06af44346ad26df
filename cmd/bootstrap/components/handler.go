package components

import (
	"pasarlink/internal/handler"
	"pasarlink/internal/handler/api"
	"pasarlink/internal/handler/middleware"

	"go.uber.org/fx"
)

var HandlerModule = fx.Module("handler",
	fx.Provide(
		api.NewOrderHandler,
		api.NewCartHandler,
		api.NewDispatchHandler,
		api.NewPointsHandler,
		middleware.NewAuthMiddleware,
	),
	fx.Invoke(handler.NewRouter),
)
