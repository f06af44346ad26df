package components

import (
	"pasarlink/internal/pkg/clock"
	"pasarlink/internal/usecase/commands"
	"pasarlink/internal/usecase/queries"

	"go.uber.org/fx"
)

var UseCaseModule = fx.Module("usecase",
	usecaseBaseOption,
	usecaseQueriesModule,
	usecaseCommandsModule,
)

var usecaseBaseOption = fx.Provide(
	clock.NewRealClock,
)

var usecaseQueriesModule = fx.Module("usecase/queries",
	fx.Provide(
		queries.NewOrderQueries,
		queries.NewOfferQueries,
		queries.NewCartQueries,
		queries.NewPointsQueries,
	),
)

var usecaseCommandsModule = fx.Module("usecase/commands",
	fx.Provide(
		commands.NewCheckoutUseCase,
		commands.NewOrderUseCase,
		commands.NewDispatchUseCase,
		commands.NewCartUseCase,
		commands.NewCourierUseCase,
	),
)
