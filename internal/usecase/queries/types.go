package queries

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OfferView is the read model of an offer with its inventory counters.
type OfferView struct {
	ID              uuid.UUID       `json:"id"`
	MerchantID      uuid.UUID       `json:"merchant_id"`
	Title           string          `json:"title"`
	Description     string          `json:"description"`
	OriginalPrice   decimal.Decimal `json:"original_price"`
	DiscountedPrice decimal.Decimal `json:"discounted_price"`
	DiscountPercent decimal.Decimal `json:"discount_percent"`
	TotalUnits      int             `json:"total_units"`
	AvailableUnits  int             `json:"available_units"`
	SoldUnits       int             `json:"sold_units"`
	ValidFrom       time.Time       `json:"valid_from"`
	ValidTo         time.Time       `json:"valid_to"`
	Status          string          `json:"status"`
	ApprovedBy      *uuid.UUID      `json:"approved_by,omitempty"`
	ApprovedAt      *time.Time      `json:"approved_at,omitempty"`
	RejectionReason *string         `json:"rejection_reason,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

// CouponView is a unit as seen by its holder.
type CouponView struct {
	ID             uuid.UUID        `json:"id"`
	OfferID        uuid.UUID        `json:"offer_id"`
	Code           string           `json:"code"`
	Status         string           `json:"status"`
	ReservedAt     *time.Time       `json:"reserved_at,omitempty"`
	HoldExpiresAt  *time.Time       `json:"hold_expires_at,omitempty"`
	PurchasedAt    *time.Time       `json:"purchased_at,omitempty"`
	UsedAt         *time.Time       `json:"used_at,omitempty"`
	PurchaseID     *uuid.UUID       `json:"purchase_id,omitempty"`
	PurchaseAmount *decimal.Decimal `json:"purchase_amount,omitempty"`
	UpdatedAt      time.Time        `json:"updated_at"`
}
