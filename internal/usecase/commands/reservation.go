package commands

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"coupon-marketplace/internal/domain/coupon"
	"coupon-marketplace/internal/domain/offer"
	"coupon-marketplace/internal/infra"
	"coupon-marketplace/internal/metrics"
	"coupon-marketplace/internal/pkg/clock"
	"coupon-marketplace/internal/pkg/errs"
	"coupon-marketplace/internal/usecase/shared"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	ErrOfferNotFound       = errs.Category("offer not found", errs.ErrNotFound)
	ErrUnitNotFound        = errs.Category("coupon not found", errs.ErrNotFound)
	ErrAlreadyReserved     = errs.Category("customer already holds a coupon for this offer", errs.ErrPolicyViolation)
	ErrNoUnitsAvailable    = errs.Category("no claimable coupon although the offer reports stock", errs.ErrConflict)
	ErrReservationConflict = errs.Category("coupon was changed by a concurrent operation", errs.ErrConflict)

	ErrOfferNotActive = offer.ErrOfferNotActive
	ErrSoldOut        = offer.ErrSoldOut
)

const (
	notificationKindEmail       = "email"
	notificationTopicPurchased  = "coupon_purchased"
	notificationTopicOfferEnded = "offer_expired"
)

type ReservationResult struct {
	UnitID     uuid.UUID
	OfferID    uuid.UUID
	Code       string
	ReservedAt time.Time
	ExpiresAt  time.Time
}

type PurchaseResult struct {
	UnitID      uuid.UUID
	OfferID     uuid.UUID
	Code        string
	Amount      decimal.Decimal
	PurchaseID  uuid.UUID
	PurchasedAt time.Time
}

type ReservationCommands interface {
	Reserve(ctx context.Context, offerID, customerID uuid.UUID) (*ReservationResult, error)
	Purchase(ctx context.Context, offerID, customerID uuid.UUID) (*PurchaseResult, error)
	CancelReservation(ctx context.Context, unitID, customerID uuid.UUID) (bool, error)
	MarkUsed(ctx context.Context, unitID, customerID uuid.UUID) (bool, error)
}

type reservationUseCaseImpl struct {
	uow      shared.UnitOfWork
	settings shared.SettingsReader
	clock    clock.Clock
}

func NewReservationUseCase(uow shared.UnitOfWork, settings shared.SettingsReader, clk clock.Clock) ReservationCommands {
	return &reservationUseCaseImpl{
		uow:      uow,
		settings: settings,
		clock:    clk,
	}
}

func (uc *reservationUseCaseImpl) Reserve(ctx context.Context, offerID, customerID uuid.UUID) (res *ReservationResult, err error) {
	start := time.Now()
	defer func() { metrics.RecordEngineOperation("reserve", outcomeOf(err), time.Since(start)) }()

	return uc.reserve(ctx, offerID, customerID, shared.HoldDuration(ctx, uc.settings))
}

func (uc *reservationUseCaseImpl) reserve(ctx context.Context, offerID, customerID uuid.UUID, hold time.Duration) (*ReservationResult, error) {
	var res *ReservationResult
	err := uc.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		r, txErr := uc.reserveInTx(ctx, tx, offerID, customerID, hold)
		res = r
		return txErr
	})
	if err != nil {
		return nil, engineError(err)
	}
	return res, nil
}

// reserveInTx checks, in order: offer exists, offer reservable, stock left,
// no live hold by this customer, a unit can actually be claimed.
func (uc *reservationUseCaseImpl) reserveInTx(
	ctx context.Context,
	tx shared.Tx,
	offerID, customerID uuid.UUID,
	hold time.Duration,
) (*ReservationResult, error) {
	now := uc.clock.Now()

	o, err := lockOffer(ctx, tx, offerID)
	if err != nil {
		return nil, err
	}
	if err := o.CheckReservable(now); err != nil {
		return nil, err
	}
	if o.AvailableUnits() == 0 {
		return nil, ErrSoldOut
	}

	_, err = tx.Coupons().FindLiveHold(ctx, offerID, customerID, now.Add(-hold))
	switch {
	case err == nil:
		return nil, ErrAlreadyReserved
	case !infra.IsKind(err, infra.KindNotFound):
		return nil, err
	}

	unit, err := tx.Coupons().ClaimAvailable(ctx, offerID)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			slog.Error("inventory inconsistency: offer reports stock but no coupon can be claimed",
				"offer_id", offerID.String(),
				"available_units", o.AvailableUnits(),
				"total_units", o.TotalUnits())
			metrics.RecordInventoryInconsistency()
			return nil, ErrNoUnitsAvailable
		}
		return nil, err
	}

	from := unit.Status()
	if err := unit.Reserve(customerID, now); err != nil {
		return nil, err
	}
	if err := saveTransition(ctx, tx, unit, from); err != nil {
		return nil, err
	}
	if err := o.HoldUnit(now); err != nil {
		return nil, err
	}
	if err := tx.Offers().Update(ctx, o); err != nil {
		return nil, err
	}

	return &ReservationResult{
		UnitID:     unit.ID(),
		OfferID:    offerID,
		Code:       unit.Code().String(),
		ReservedAt: now,
		ExpiresAt:  now.Add(hold),
	}, nil
}

// Purchase completes the customer's live hold on the offer, or reserves a unit
// first when there is none.
func (uc *reservationUseCaseImpl) Purchase(ctx context.Context, offerID, customerID uuid.UUID) (res *PurchaseResult, err error) {
	start := time.Now()
	defer func() { metrics.RecordEngineOperation("purchase", outcomeOf(err), time.Since(start)) }()

	hold := shared.HoldDuration(ctx, uc.settings)

	var held *coupon.Coupon
	err = uc.uow.WithinReadOnly(ctx, func(ctx context.Context, tx shared.Tx) error {
		c, txErr := tx.Coupons().FindLiveHold(ctx, offerID, customerID, uc.clock.Now().Add(-hold))
		if txErr != nil {
			if infra.IsKind(txErr, infra.KindNotFound) {
				return nil
			}
			return txErr
		}
		held = c
		return nil
	})
	if err != nil {
		return nil, engineError(err)
	}

	if held != nil {
		return uc.purchaseHeld(ctx, held.ID(), customerID)
	}
	return uc.reserveThenPurchase(ctx, offerID, customerID, hold)
}

func (uc *reservationUseCaseImpl) purchaseHeld(ctx context.Context, unitID, customerID uuid.UUID) (*PurchaseResult, error) {
	return uc.completePurchase(ctx, unitID, customerID)
}

// Reserve errors are returned unchanged.
func (uc *reservationUseCaseImpl) reserveThenPurchase(ctx context.Context, offerID, customerID uuid.UUID, hold time.Duration) (*PurchaseResult, error) {
	reserved, err := uc.reserve(ctx, offerID, customerID, hold)
	if err != nil {
		return nil, err
	}
	return uc.completePurchase(ctx, reserved.UnitID, customerID)
}

func (uc *reservationUseCaseImpl) completePurchase(ctx context.Context, unitID, customerID uuid.UUID) (*PurchaseResult, error) {
	var res *PurchaseResult
	err := uc.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		now := uc.clock.Now()

		unit, err := findUnit(ctx, tx, unitID)
		if err != nil {
			return err
		}
		o, err := lockOffer(ctx, tx, unit.OfferID())
		if err != nil {
			return err
		}
		// re-read under the offer lock
		if unit, err = findUnit(ctx, tx, unitID); err != nil {
			return err
		}
		if !unit.IsReservedBy(customerID) {
			return ErrUnitNotFound
		}

		purchaseID := uuid.New()
		amount := o.DiscountedPrice().Decimal()
		from := unit.Status()
		if err := unit.Purchase(customerID, purchaseID, amount, now); err != nil {
			return err
		}
		if err := saveTransition(ctx, tx, unit, from); err != nil {
			return err
		}

		err = tx.Purchases().Create(ctx, shared.PurchaseRecord{
			ID:         purchaseID,
			CouponID:   unit.ID(),
			OfferID:    o.ID(),
			CustomerID: customerID,
			Amount:     amount,
			CreatedAt:  now,
		})
		if err != nil {
			return err
		}

		payload, err := json.Marshal(map[string]any{
			"purchase_id": purchaseID,
			"coupon_id":   unit.ID(),
			"offer_id":    o.ID(),
			"customer_id": customerID,
			"code":        unit.Code().String(),
			"amount":      amount.StringFixed(2),
		})
		if err != nil {
			return err
		}
		if err := tx.Notifications().CreateJob(ctx, notificationKindEmail, notificationTopicPurchased, payload, now); err != nil {
			return err
		}

		res = &PurchaseResult{
			UnitID:      unit.ID(),
			OfferID:     o.ID(),
			Code:        unit.Code().String(),
			Amount:      amount,
			PurchaseID:  purchaseID,
			PurchasedAt: now,
		}
		return nil
	})
	if err != nil {
		return nil, engineError(err)
	}
	return res, nil
}

// CancelReservation reports true only when this call released the customer's hold.
func (uc *reservationUseCaseImpl) CancelReservation(ctx context.Context, unitID, customerID uuid.UUID) (released bool, err error) {
	start := time.Now()
	defer func() { metrics.RecordEngineOperation("cancel", outcomeOf(err), time.Since(start)) }()

	err = uc.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		var txErr error
		released, txErr = releaseHold(ctx, tx, unitID, uc.clock.Now(), func(c *coupon.Coupon) bool {
			return c.IsReservedBy(customerID)
		})
		return txErr
	})
	if err != nil {
		return false, engineError(err)
	}
	return released, nil
}

// MarkUsed reports true only when this call moved the unit from Purchased to Used.
func (uc *reservationUseCaseImpl) MarkUsed(ctx context.Context, unitID, customerID uuid.UUID) (used bool, err error) {
	start := time.Now()
	defer func() { metrics.RecordEngineOperation("mark_used", outcomeOf(err), time.Since(start)) }()

	err = uc.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		unit, txErr := tx.Coupons().FindByID(ctx, unitID)
		if txErr != nil {
			if infra.IsKind(txErr, infra.KindNotFound) {
				return nil
			}
			return txErr
		}
		if unit.Status() != coupon.StatusPurchased || !unit.IsHeldBy(customerID) {
			return nil
		}

		from := unit.Status()
		if txErr = unit.MarkUsed(customerID, uc.clock.Now()); txErr != nil {
			return txErr
		}
		if txErr = tx.Coupons().SaveTransition(ctx, unit, from); txErr != nil {
			if infra.IsKind(txErr, infra.KindConflict) {
				return nil
			}
			return txErr
		}
		used = true
		return nil
	})
	if err != nil {
		return false, engineError(err)
	}
	return used, nil
}

// releaseHold returns a Reserved unit to the pool together with the offer
// counter. The offer row is locked before the unit is re-read, and a unit that
// no longer matches is left alone.
func releaseHold(
	ctx context.Context,
	tx shared.Tx,
	unitID uuid.UUID,
	now time.Time,
	match func(*coupon.Coupon) bool,
) (bool, error) {
	unit, err := tx.Coupons().FindByID(ctx, unitID)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return false, nil
		}
		return false, err
	}
	if unit.Status() != coupon.StatusReserved || !match(unit) {
		return false, nil
	}

	o, err := lockOffer(ctx, tx, unit.OfferID())
	if err != nil {
		return false, err
	}
	if unit, err = tx.Coupons().FindByID(ctx, unitID); err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return false, nil
		}
		return false, err
	}
	if unit.Status() != coupon.StatusReserved || !match(unit) {
		return false, nil
	}

	from := unit.Status()
	if err := unit.Release(now); err != nil {
		return false, err
	}
	if err := tx.Coupons().SaveTransition(ctx, unit, from); err != nil {
		if infra.IsKind(err, infra.KindConflict) {
			return false, nil
		}
		return false, err
	}
	if err := o.ReleaseUnit(now); err != nil {
		return false, err
	}
	if err := tx.Offers().Update(ctx, o); err != nil {
		return false, err
	}
	return true, nil
}

func lockOffer(ctx context.Context, tx shared.Tx, offerID uuid.UUID) (*offer.Offer, error) {
	o, err := tx.Offers().FindByIDForUpdate(ctx, offerID)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return nil, ErrOfferNotFound
		}
		return nil, err
	}
	return o, nil
}

func findUnit(ctx context.Context, tx shared.Tx, unitID uuid.UUID) (*coupon.Coupon, error) {
	unit, err := tx.Coupons().FindByID(ctx, unitID)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return nil, ErrUnitNotFound
		}
		return nil, err
	}
	return unit, nil
}

func saveTransition(ctx context.Context, tx shared.Tx, unit *coupon.Coupon, from coupon.Status) error {
	if err := tx.Coupons().SaveTransition(ctx, unit, from); err != nil {
		if infra.IsKind(err, infra.KindConflict) {
			return ErrReservationConflict
		}
		return err
	}
	return nil
}

// engineError passes typed failures through and marks everything else as an
// infrastructure failure.
func engineError(err error) error {
	if errs.IsExpected(err) {
		return err
	}
	return errs.Mark(err, errs.ErrDatabaseOperationFailed)
}

func outcomeOf(err error) string {
	switch {
	case err == nil:
		return "success"
	case errs.Is(err, errs.ErrNotFound):
		return "not_found"
	case errs.Is(err, errs.ErrInvalidState):
		return "invalid_state"
	case errs.Is(err, errs.ErrConflict):
		return "conflict"
	case errs.Is(err, errs.ErrPolicyViolation):
		return "policy_violation"
	case errs.Is(err, errs.ErrValidation):
		return "validation"
	default:
		return "error"
	}
}
