package commands

import (
	"context"
	"encoding/json"
	"log/slog"

	"coupon-marketplace/internal/domain/coupon"
	"coupon-marketplace/internal/domain/offer"
	"coupon-marketplace/internal/metrics"
	"coupon-marketplace/internal/pkg/clock"
	"coupon-marketplace/internal/pkg/errs"
	"coupon-marketplace/internal/usecase/shared"

	"github.com/google/uuid"
)

const (
	TaskReclaimHolds = "reclaim_expired_holds"
	TaskExpireOffers = "expire_offers"
)

const defaultSweepBatchSize = 500

// SweeperCommands are the periodic maintenance passes. Each returns the number
// of records it changed; an error means the candidate listing itself failed.
type SweeperCommands interface {
	ReclaimExpiredHolds(ctx context.Context) (int, error)
	ExpireOffers(ctx context.Context) (int, error)
}

type sweeperUseCaseImpl struct {
	uow       shared.UnitOfWork
	settings  shared.SettingsReader
	clock     clock.Clock
	batchSize int
}

func NewSweeperUseCase(uow shared.UnitOfWork, settings shared.SettingsReader, clk clock.Clock, batchSize int) SweeperCommands {
	if batchSize <= 0 {
		batchSize = defaultSweepBatchSize
	}
	return &sweeperUseCaseImpl{
		uow:       uow,
		settings:  settings,
		clock:     clk,
		batchSize: batchSize,
	}
}

func (uc *sweeperUseCaseImpl) ReclaimExpiredHolds(ctx context.Context) (int, error) {
	hold := shared.HoldDuration(ctx, uc.settings)
	cutoff := uc.clock.Now().Add(-hold)

	var candidates []shared.StaleHold
	err := uc.uow.WithinReadOnly(ctx, func(ctx context.Context, tx shared.Tx) error {
		var txErr error
		candidates, txErr = tx.Coupons().ListStaleHolds(ctx, cutoff, uc.batchSize)
		return txErr
	})
	if err != nil {
		slog.Error("failed to list expired holds, skipping pass", "error", err.Error())
		return 0, errs.Mark(err, errs.ErrDatabaseOperationFailed)
	}

	reclaimed, failed := 0, 0
	for _, c := range candidates {
		if ctx.Err() != nil {
			break
		}

		var released bool
		err := uc.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
			var txErr error
			released, txErr = releaseHold(ctx, tx, c.ID, uc.clock.Now(), func(unit *coupon.Coupon) bool {
				// the hold may have been cancelled and re-taken since listing
				return unit.IsHoldStale(cutoff)
			})
			return txErr
		})
		if err != nil {
			failed++
			slog.Error("failed to reclaim expired hold",
				"coupon_id", c.ID.String(),
				"offer_id", c.OfferID.String(),
				"error", err.Error())
			continue
		}
		if released {
			reclaimed++
		}
	}

	metrics.RecordSwept(TaskReclaimHolds, reclaimed, failed)
	if reclaimed > 0 || failed > 0 {
		slog.Info("expired holds reclaimed",
			"candidates", len(candidates),
			"reclaimed", reclaimed,
			"failed", failed)
	}
	return reclaimed, nil
}

func (uc *sweeperUseCaseImpl) ExpireOffers(ctx context.Context) (int, error) {
	now := uc.clock.Now()

	var candidates []uuid.UUID
	err := uc.uow.WithinReadOnly(ctx, func(ctx context.Context, tx shared.Tx) error {
		var txErr error
		candidates, txErr = tx.Offers().ListExpirable(ctx, now, uc.batchSize)
		return txErr
	})
	if err != nil {
		slog.Error("failed to list expirable offers, skipping pass", "error", err.Error())
		return 0, errs.Mark(err, errs.ErrDatabaseOperationFailed)
	}

	expired, failed := 0, 0
	for _, offerID := range candidates {
		if ctx.Err() != nil {
			break
		}

		var done bool
		err := uc.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
			var txErr error
			done, txErr = uc.expireOffer(ctx, tx, offerID)
			return txErr
		})
		if err != nil {
			failed++
			slog.Error("failed to expire offer", "offer_id", offerID.String(), "error", err.Error())
			continue
		}
		if done {
			expired++
		}
	}

	metrics.RecordSwept(TaskExpireOffers, expired, failed)
	if expired > 0 || failed > 0 {
		slog.Info("offers expired",
			"candidates", len(candidates),
			"expired", expired,
			"failed", failed)
	}
	return expired, nil
}

// expireOffer leaves available_units at its current value: only the still
// Available units change status, Reserved and Purchased units are untouched.
func (uc *sweeperUseCaseImpl) expireOffer(ctx context.Context, tx shared.Tx, offerID uuid.UUID) (bool, error) {
	now := uc.clock.Now()

	o, err := lockOffer(ctx, tx, offerID)
	if err != nil {
		if errs.IsExpected(err) {
			return false, nil
		}
		return false, err
	}
	if o.Status() != offer.StatusActive || !o.Validity().HasEndedAt(now) {
		return false, nil
	}
	if err := o.Expire(now); err != nil {
		return false, err
	}

	units, err := tx.Coupons().ExpireAvailable(ctx, offerID, now)
	if err != nil {
		return false, err
	}
	if err := tx.Offers().Update(ctx, o); err != nil {
		return false, err
	}

	payload, err := json.Marshal(map[string]any{
		"offer_id":       offerID,
		"merchant_id":    o.MerchantID(),
		"expired_units":  units,
		"sold_units":     o.SoldUnits(),
		"available_left": o.AvailableUnits(),
	})
	if err != nil {
		return false, err
	}
	if err := tx.Notifications().CreateJob(ctx, notificationKindEmail, notificationTopicOfferEnded, payload, now); err != nil {
		return false, err
	}
	return true, nil
}
