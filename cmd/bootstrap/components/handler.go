package components

import (
	"coupon-marketplace/internal/handler"
	"coupon-marketplace/internal/handler/api"
	"coupon-marketplace/internal/pkg/config"
	"coupon-marketplace/internal/usecase/shared"
	"coupon-marketplace/internal/worker"

	"go.uber.org/fx"
)

var HandlerModule = fx.Module("handler",
	fx.Provide(
		api.NewOfferHandler,
		api.NewReservationHandler,
		api.NewAdminHandler,
		func(uow shared.UnitOfWork, sup *worker.Supervisor, cfg config.Config) *api.HealthHandler {
			return api.NewHealthHandler(uow, sup, cfg)
		},
	),
	fx.Invoke(handler.NewRouter),
)
