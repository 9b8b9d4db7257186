package response

import (
	"time"

	"coupon-marketplace/internal/usecase/commands"
	"coupon-marketplace/internal/usecase/queries"

	"github.com/google/uuid"
	"github.com/jinzhu/copier"
	"github.com/shopspring/decimal"
)

type CouponResponse struct {
	ID             uuid.UUID        `json:"id"`
	OfferID        uuid.UUID        `json:"offerId"`
	Code           string           `json:"code"`
	Status         string           `json:"status"`
	ReservedAt     *time.Time       `json:"reservedAt,omitempty"`
	HoldExpiresAt  *time.Time       `json:"holdExpiresAt,omitempty"`
	PurchasedAt    *time.Time       `json:"purchasedAt,omitempty"`
	UsedAt         *time.Time       `json:"usedAt,omitempty"`
	PurchaseID     *uuid.UUID       `json:"purchaseId,omitempty"`
	PurchaseAmount *decimal.Decimal `json:"purchaseAmount,omitempty"`
	UpdatedAt      time.Time        `json:"updatedAt"`
}

type ReservationResponse struct {
	CouponID   uuid.UUID `json:"couponId"`
	OfferID    uuid.UUID `json:"offerId"`
	Code       string    `json:"code"`
	ReservedAt time.Time `json:"reservedAt"`
	ExpiresAt  time.Time `json:"expiresAt"`
}

type PurchaseResponse struct {
	CouponID    uuid.UUID       `json:"couponId"`
	OfferID     uuid.UUID       `json:"offerId"`
	Code        string          `json:"code"`
	Amount      decimal.Decimal `json:"amount"`
	PurchaseID  uuid.UUID       `json:"purchaseId"`
	PurchasedAt time.Time       `json:"purchasedAt"`
}

// ChangedResponse reports whether an idempotent operation changed anything.
type ChangedResponse struct {
	Changed bool `json:"changed"`
}

func FromCouponViews(views []*queries.CouponView) ([]CouponResponse, error) {
	resp := make([]CouponResponse, 0, len(views))
	if len(views) == 0 {
		return resp, nil
	}
	if err := copier.Copy(&resp, views); err != nil {
		return nil, err
	}
	return resp, nil
}

func FromReservationResult(r *commands.ReservationResult) *ReservationResponse {
	return &ReservationResponse{
		CouponID:   r.UnitID,
		OfferID:    r.OfferID,
		Code:       r.Code,
		ReservedAt: r.ReservedAt,
		ExpiresAt:  r.ExpiresAt,
	}
}

func FromPurchaseResult(r *commands.PurchaseResult) *PurchaseResponse {
	return &PurchaseResponse{
		CouponID:    r.UnitID,
		OfferID:     r.OfferID,
		Code:        r.Code,
		Amount:      r.Amount,
		PurchaseID:  r.PurchaseID,
		PurchasedAt: r.PurchasedAt,
	}
}
