package queries

import (
	"context"

	"coupon-marketplace/internal/domain/offer"
	"coupon-marketplace/internal/infra"
	"coupon-marketplace/internal/pkg/errs"
	"coupon-marketplace/internal/usecase/shared"

	"github.com/google/uuid"
)

var ErrOfferNotFound = errs.Category("offer not found", errs.ErrNotFound)

type OfferQueries interface {
	GetOffer(ctx context.Context, id uuid.UUID) (*OfferView, error)
}

type offerQueriesImpl struct {
	uow shared.UnitOfWork
}

func NewOfferQueries(uow shared.UnitOfWork) OfferQueries {
	return &offerQueriesImpl{uow: uow}
}

// GetOffer reads the counters fresh on every call.
func (q *offerQueriesImpl) GetOffer(ctx context.Context, id uuid.UUID) (*OfferView, error) {
	var view *OfferView
	err := q.uow.WithinReadOnly(ctx, func(ctx context.Context, tx shared.Tx) error {
		o, err := tx.Offers().FindByID(ctx, id)
		if err != nil {
			if infra.IsKind(err, infra.KindNotFound) {
				return ErrOfferNotFound
			}
			return err
		}
		view = toOfferView(o)
		return nil
	})
	if err != nil {
		return nil, readError(err)
	}
	return view, nil
}

func toOfferView(o *offer.Offer) *OfferView {
	return &OfferView{
		ID:              o.ID(),
		MerchantID:      o.MerchantID(),
		Title:           o.Title(),
		Description:     o.Description(),
		OriginalPrice:   o.OriginalPrice().Decimal(),
		DiscountedPrice: o.DiscountedPrice().Decimal(),
		DiscountPercent: o.DiscountPercent(),
		TotalUnits:      o.TotalUnits(),
		AvailableUnits:  o.AvailableUnits(),
		SoldUnits:       o.SoldUnits(),
		ValidFrom:       o.Validity().From(),
		ValidTo:         o.Validity().To(),
		Status:          o.Status().String(),
		ApprovedBy:      o.ApprovedBy(),
		ApprovedAt:      o.ApprovedAt(),
		RejectionReason: o.RejectionReason(),
		CreatedAt:       o.CreatedAt(),
		UpdatedAt:       o.UpdatedAt(),
	}
}

func readError(err error) error {
	if errs.IsExpected(err) {
		return err
	}
	return errs.Mark(err, errs.ErrDatabaseOperationFailed)
}
