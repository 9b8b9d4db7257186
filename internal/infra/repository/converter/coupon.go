package converter

import (
	"fmt"
	"time"

	"coupon-marketplace/internal/domain/coupon"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type CouponRecord struct {
	ID             uuid.UUID
	OfferID        uuid.UUID
	Code           string
	Status         string
	HolderID       *uuid.UUID
	ReservedAt     *time.Time
	PurchasedAt    *time.Time
	UsedAt         *time.Time
	PurchaseID     *uuid.UUID
	PurchaseAmount *decimal.Decimal
	Version        int64
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

func CouponToRecord(c *coupon.Coupon) CouponRecord {
	return CouponRecord{
		ID:             c.ID(),
		OfferID:        c.OfferID(),
		Code:           c.Code().String(),
		Status:         c.Status().String(),
		HolderID:       c.HolderID(),
		ReservedAt:     c.ReservedAt(),
		PurchasedAt:    c.PurchasedAt(),
		UsedAt:         c.UsedAt(),
		PurchaseID:     c.PurchaseID(),
		PurchaseAmount: c.PurchaseAmount(),
		Version:        c.Version(),
		CreatedAt:      c.CreatedAt(),
		UpdatedAt:      c.UpdatedAt(),
	}
}

func CouponFromRecord(r CouponRecord) (*coupon.Coupon, error) {
	status := coupon.Status(r.Status)
	if !status.IsValid() {
		return nil, fmt.Errorf("unknown coupon status %q", r.Status)
	}
	if status.HasHolder() != (r.HolderID != nil) {
		return nil, fmt.Errorf("coupon %s: holder does not match status %q", r.ID, r.Status)
	}

	code, err := coupon.NewCode(r.Code)
	if err != nil {
		return nil, fmt.Errorf("coupon %s: %w", r.ID, err)
	}

	return coupon.ReconstructCoupon(
		r.ID, r.OfferID,
		code,
		status,
		r.HolderID,
		r.ReservedAt, r.PurchasedAt, r.UsedAt,
		r.PurchaseID, r.PurchaseAmount,
		r.Version,
		r.CreatedAt, r.UpdatedAt,
	), nil
}
