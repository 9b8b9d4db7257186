package components

import (
	"context"
	"log/slog"

	"coupon-marketplace/internal/infra/db"
	"coupon-marketplace/internal/infra/memstore"
	"coupon-marketplace/internal/infra/uow"
	"coupon-marketplace/internal/pkg/config"
	"coupon-marketplace/internal/usecase/shared"

	"go.uber.org/fx"
)

var PersistenceModule = fx.Module("persistence",
	fx.Provide(
		NewUnitOfWork,
	),
)

// NewUnitOfWork selects the store by STORE_DRIVER. The pool is only opened
// for postgres and is closed on application stop.
func NewUnitOfWork(lc fx.Lifecycle, cfg config.Config) (shared.UnitOfWork, error) {
	if cfg.Store.Driver == config.StoreDriverMemory {
		slog.Warn("using in-memory store; data is lost on restart")
		return memstore.NewUoW(memstore.New()), nil
	}

	pool, cleanup, err := db.Connect(context.Background(), cfg.DB)
	if err != nil {
		return nil, err
	}

	lc.Append(fx.Hook{
		OnStop: func(_ context.Context) error {
			if cleanup != nil {
				cleanup()
			}
			return nil
		},
	})

	return uow.NewPostgresUoW(pool), nil
}
