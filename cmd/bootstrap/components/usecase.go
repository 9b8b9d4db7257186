package components

import (
	"coupon-marketplace/internal/pkg/clock"
	"coupon-marketplace/internal/pkg/config"
	"coupon-marketplace/internal/usecase/commands"
	"coupon-marketplace/internal/usecase/queries"
	"coupon-marketplace/internal/usecase/shared"

	"go.uber.org/fx"
)

var UseCaseModule = fx.Module("usecase",
	usecaseBaseOption,
	usecaseQueriesModule,
	usecaseCommandsModule,
)

var usecaseBaseOption = fx.Provide(
	clock.NewRealClock,
	fx.Annotate(
		commands.NewSettingsService,
		fx.As(new(shared.SettingsReader)),
		fx.As(new(commands.SettingCommands)),
	),
)

var usecaseCommandsModule = fx.Module("usecase/commands",
	fx.Provide(
		commands.NewReservationUseCase,
		commands.NewOfferUseCase,
		func(uow shared.UnitOfWork, settings shared.SettingsReader, clk clock.Clock, cfg config.Config) commands.SweeperCommands {
			return commands.NewSweeperUseCase(uow, settings, clk, cfg.Sweeper.BatchSize)
		},
	),
)

var usecaseQueriesModule = fx.Module("usecase/queries",
	fx.Provide(
		queries.NewOfferQueries,
		queries.NewCouponQueries,
	),
)
