package queries

import (
	"context"
	"time"

	"coupon-marketplace/internal/domain/coupon"
	"coupon-marketplace/internal/infra"
	"coupon-marketplace/internal/pkg/errs"
	"coupon-marketplace/internal/pkg/ptr"
	"coupon-marketplace/internal/usecase/shared"

	"github.com/google/uuid"
)

var (
	ErrCouponNotFound     = errs.Category("coupon not found", errs.ErrNotFound)
	ErrInvalidStatusQuery = errs.Category("unknown coupon status", errs.ErrValidation)
)

type CouponQueries interface {
	ListMine(ctx context.Context, customerID uuid.UUID, status string) ([]*CouponView, error)
	GetMine(ctx context.Context, customerID, couponID uuid.UUID) (*CouponView, error)
}

type couponQueriesImpl struct {
	uow      shared.UnitOfWork
	settings shared.SettingsReader
}

func NewCouponQueries(uow shared.UnitOfWork, settings shared.SettingsReader) CouponQueries {
	return &couponQueriesImpl{uow: uow, settings: settings}
}

// ListMine returns the customer's coupons, optionally filtered by status.
func (q *couponQueriesImpl) ListMine(ctx context.Context, customerID uuid.UUID, status string) ([]*CouponView, error) {
	var filter *coupon.Status
	if status != "" {
		s := coupon.Status(status)
		if !s.IsValid() {
			return nil, ErrInvalidStatusQuery
		}
		filter = &s
	}
	hold := shared.HoldDuration(ctx, q.settings)

	var views []*CouponView
	err := q.uow.WithinReadOnly(ctx, func(ctx context.Context, tx shared.Tx) error {
		units, err := tx.Coupons().ListByHolder(ctx, customerID, filter)
		if err != nil {
			return err
		}
		views = make([]*CouponView, 0, len(units))
		for _, u := range units {
			views = append(views, toCouponView(u, hold))
		}
		return nil
	})
	if err != nil {
		return nil, readError(err)
	}
	return views, nil
}

func (q *couponQueriesImpl) GetMine(ctx context.Context, customerID, couponID uuid.UUID) (*CouponView, error) {
	hold := shared.HoldDuration(ctx, q.settings)

	var view *CouponView
	err := q.uow.WithinReadOnly(ctx, func(ctx context.Context, tx shared.Tx) error {
		u, err := tx.Coupons().FindByID(ctx, couponID)
		if err != nil {
			if infra.IsKind(err, infra.KindNotFound) {
				return ErrCouponNotFound
			}
			return err
		}
		// other customers' units are indistinguishable from missing ones
		if !u.IsHeldBy(customerID) {
			return ErrCouponNotFound
		}
		view = toCouponView(u, hold)
		return nil
	})
	if err != nil {
		return nil, readError(err)
	}
	return view, nil
}

func toCouponView(u *coupon.Coupon, hold time.Duration) *CouponView {
	return &CouponView{
		ID:             u.ID(),
		OfferID:        u.OfferID(),
		Code:           u.Code().String(),
		Status:         u.Status().String(),
		ReservedAt:     u.ReservedAt(),
		HoldExpiresAt:  ptr.TimeOrNil(u.HoldExpiresAt(hold)),
		PurchasedAt:    u.PurchasedAt(),
		UsedAt:         u.UsedAt(),
		PurchaseID:     u.PurchaseID(),
		PurchaseAmount: u.PurchaseAmount(),
		UpdatedAt:      u.UpdatedAt(),
	}
}
