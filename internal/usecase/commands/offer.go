package commands

import (
	"context"
	"log/slog"
	"time"

	"coupon-marketplace/internal/domain/coupon"
	"coupon-marketplace/internal/domain/offer"
	"coupon-marketplace/internal/pkg/clock"
	"coupon-marketplace/internal/pkg/errs"
	"coupon-marketplace/internal/usecase/shared"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var ErrNotOfferOwner = errs.Category("offer belongs to another merchant", errs.ErrPolicyViolation)

type OfferInput struct {
	Title           string
	Description     string
	OriginalPrice   decimal.Decimal
	DiscountedPrice decimal.Decimal
	ValidFrom       time.Time
	ValidTo         time.Time
}

type CreateOfferRequest struct {
	OfferInput
	TotalUnits int
}

type CreateOfferResult struct {
	OfferID uuid.UUID
}

type OfferCommands interface {
	Create(ctx context.Context, merchantID uuid.UUID, req CreateOfferRequest) (*CreateOfferResult, error)
	Update(ctx context.Context, offerID, merchantID uuid.UUID, req OfferInput) error
	Delete(ctx context.Context, offerID, merchantID uuid.UUID) error
	Approve(ctx context.Context, offerID, adminID uuid.UUID) error
	Reject(ctx context.Context, offerID uuid.UUID, reason string) error
	Activate(ctx context.Context, offerID uuid.UUID) error
	Suspend(ctx context.Context, offerID uuid.UUID) error
	Resume(ctx context.Context, offerID uuid.UUID) error
}

type offerUseCaseImpl struct {
	uow      shared.UnitOfWork
	settings shared.SettingsReader
	clock    clock.Clock
}

func NewOfferUseCase(uow shared.UnitOfWork, settings shared.SettingsReader, clk clock.Clock) OfferCommands {
	return &offerUseCaseImpl{uow: uow, settings: settings, clock: clk}
}

func (in OfferInput) details() offer.Details {
	return offer.Details{
		Title:           in.Title,
		Description:     in.Description,
		OriginalPrice:   in.OriginalPrice,
		DiscountedPrice: in.DiscountedPrice,
		ValidFrom:       in.ValidFrom,
		ValidTo:         in.ValidTo,
	}
}

// Create stores the offer in Pending together with all of its units.
func (uc *offerUseCaseImpl) Create(ctx context.Context, merchantID uuid.UUID, req CreateOfferRequest) (*CreateOfferResult, error) {
	now := uc.clock.Now()

	o, err := offer.NewOffer(merchantID, req.details(), req.TotalUnits, now)
	if err != nil {
		return nil, err
	}
	units, err := coupon.NewBatch(o.ID(), o.TotalUnits(), now)
	if err != nil {
		return nil, err
	}

	err = uc.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		if err := tx.Offers().Create(ctx, o); err != nil {
			return err
		}
		return tx.Coupons().CreateBatch(ctx, units)
	})
	if err != nil {
		return nil, engineError(err)
	}

	slog.Info("offer created",
		"offer_id", o.ID().String(),
		"merchant_id", merchantID.String(),
		"total_units", o.TotalUnits())
	return &CreateOfferResult{OfferID: o.ID()}, nil
}

func (uc *offerUseCaseImpl) Update(ctx context.Context, offerID, merchantID uuid.UUID, req OfferInput) error {
	window := shared.EditWindow(ctx, uc.settings)

	return uc.mutate(ctx, offerID, func(o *offer.Offer, now time.Time) error {
		if o.MerchantID() != merchantID {
			return ErrNotOfferOwner
		}
		return o.Edit(req.details(), window, now)
	})
}

// Delete removes the offer and its units; refused once anything was sold.
func (uc *offerUseCaseImpl) Delete(ctx context.Context, offerID, merchantID uuid.UUID) error {
	err := uc.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		o, err := lockOffer(ctx, tx, offerID)
		if err != nil {
			return err
		}
		if o.MerchantID() != merchantID {
			return ErrNotOfferOwner
		}
		if err := o.CheckDeletable(); err != nil {
			return err
		}
		if err := tx.Coupons().DeleteByOffer(ctx, offerID); err != nil {
			return err
		}
		return tx.Offers().Delete(ctx, offerID)
	})
	if err != nil {
		return engineError(err)
	}
	return nil
}

func (uc *offerUseCaseImpl) Approve(ctx context.Context, offerID, adminID uuid.UUID) error {
	return uc.mutate(ctx, offerID, func(o *offer.Offer, now time.Time) error {
		return o.Approve(adminID, now)
	})
}

func (uc *offerUseCaseImpl) Reject(ctx context.Context, offerID uuid.UUID, reason string) error {
	return uc.mutate(ctx, offerID, func(o *offer.Offer, now time.Time) error {
		return o.Reject(reason, now)
	})
}

func (uc *offerUseCaseImpl) Activate(ctx context.Context, offerID uuid.UUID) error {
	return uc.mutate(ctx, offerID, func(o *offer.Offer, now time.Time) error {
		return o.Activate(now)
	})
}

func (uc *offerUseCaseImpl) Suspend(ctx context.Context, offerID uuid.UUID) error {
	return uc.mutate(ctx, offerID, func(o *offer.Offer, now time.Time) error {
		return o.Suspend(now)
	})
}

func (uc *offerUseCaseImpl) Resume(ctx context.Context, offerID uuid.UUID) error {
	return uc.mutate(ctx, offerID, func(o *offer.Offer, now time.Time) error {
		return o.Resume(now)
	})
}

func (uc *offerUseCaseImpl) mutate(ctx context.Context, offerID uuid.UUID, fn func(o *offer.Offer, now time.Time) error) error {
	err := uc.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		o, err := lockOffer(ctx, tx, offerID)
		if err != nil {
			return err
		}
		if err := fn(o, uc.clock.Now()); err != nil {
			return err
		}
		return tx.Offers().Update(ctx, o)
	})
	if err != nil {
		return engineError(err)
	}
	return nil
}
