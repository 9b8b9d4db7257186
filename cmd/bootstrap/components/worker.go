package components

import (
	"context"
	"time"

	"coupon-marketplace/internal/pkg/clock"
	"coupon-marketplace/internal/pkg/config"
	"coupon-marketplace/internal/usecase/commands"
	"coupon-marketplace/internal/worker"

	"go.uber.org/fx"
)

var WorkerModule = fx.Module("worker",
	fx.Provide(
		NewSupervisor,
	),
	fx.Invoke(registerSupervisor),
)

func NewSupervisor(clk clock.Clock, sweeper commands.SweeperCommands, cfg config.Config) *worker.Supervisor {
	return worker.NewSupervisor(clk,
		worker.Task{
			Name:     commands.TaskReclaimHolds,
			Interval: cfg.Sweeper.ReservationInterval,
			Run:      discardCount(sweeper.ReclaimExpiredHolds),
		},
		worker.Task{
			Name:     commands.TaskExpireOffers,
			Interval: cfg.Sweeper.OfferInterval,
			Run:      discardCount(sweeper.ExpireOffers),
		},
	)
}

func discardCount(fn func(ctx context.Context) (int, error)) func(ctx context.Context) error {
	return func(ctx context.Context) error {
		_, err := fn(ctx)
		return err
	}
}

func registerSupervisor(lc fx.Lifecycle, sup *worker.Supervisor, cfg config.Config) {
	if !cfg.Sweeper.Enabled {
		return
	}
	lc.Append(fx.Hook{
		// the start hook context expires after startup, so the loops get their own
		OnStart: func(_ context.Context) error {
			return sup.Start(context.Background())
		},
		OnStop: func(ctx context.Context) error {
			stopCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
			defer cancel()
			return sup.Stop(stopCtx)
		},
	})
}
