package converter

import (
	"fmt"
	"time"

	"coupon-marketplace/internal/domain/offer"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OfferRecord is the storage shape of an offer row, shared by the Postgres
// and in-memory stores.
type OfferRecord struct {
	ID              uuid.UUID
	MerchantID      uuid.UUID
	Title           string
	Description     string
	OriginalPrice   decimal.Decimal
	DiscountedPrice decimal.Decimal
	TotalUnits      int
	AvailableUnits  int
	ValidFrom       time.Time
	ValidTo         time.Time
	Status          string
	ApprovedBy      *uuid.UUID
	ApprovedAt      *time.Time
	RejectionReason *string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

func OfferToRecord(o *offer.Offer) OfferRecord {
	return OfferRecord{
		ID:              o.ID(),
		MerchantID:      o.MerchantID(),
		Title:           o.Title(),
		Description:     o.Description(),
		OriginalPrice:   o.OriginalPrice().Decimal(),
		DiscountedPrice: o.DiscountedPrice().Decimal(),
		TotalUnits:      o.TotalUnits(),
		AvailableUnits:  o.AvailableUnits(),
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

func OfferFromRecord(r OfferRecord) (*offer.Offer, error) {
	status := offer.Status(r.Status)
	if !status.IsValid() {
		return nil, fmt.Errorf("unknown offer status %q", r.Status)
	}

	original, err := offer.NewMoney(r.OriginalPrice)
	if err != nil {
		return nil, fmt.Errorf("original price: %w", err)
	}
	discounted, err := offer.NewMoney(r.DiscountedPrice)
	if err != nil {
		return nil, fmt.Errorf("discounted price: %w", err)
	}
	validity, err := offer.NewValidityWindow(r.ValidFrom, r.ValidTo)
	if err != nil {
		return nil, fmt.Errorf("validity window: %w", err)
	}

	return offer.ReconstructOffer(
		r.ID, r.MerchantID,
		r.Title, r.Description,
		original, discounted,
		r.TotalUnits, r.AvailableUnits,
		validity,
		status,
		r.ApprovedBy, r.ApprovedAt, r.RejectionReason,
		r.CreatedAt, r.UpdatedAt,
	), nil
}
