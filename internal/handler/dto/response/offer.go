package response

import (
	"time"

	"coupon-marketplace/internal/usecase/queries"

	"github.com/google/uuid"
	"github.com/jinzhu/copier"
	"github.com/shopspring/decimal"
)

type OfferResponse struct {
	ID              uuid.UUID       `json:"id"`
	MerchantID      uuid.UUID       `json:"merchantId"`
	Title           string          `json:"title"`
	Description     string          `json:"description"`
	OriginalPrice   decimal.Decimal `json:"originalPrice"`
	DiscountedPrice decimal.Decimal `json:"discountedPrice"`
	DiscountPercent decimal.Decimal `json:"discountPercent"`
	TotalUnits      int             `json:"totalUnits"`
	AvailableUnits  int             `json:"availableUnits"`
	SoldUnits       int             `json:"soldUnits"`
	ValidFrom       time.Time       `json:"validFrom"`
	ValidTo         time.Time       `json:"validTo"`
	Status          string          `json:"status"`
	ApprovedBy      *uuid.UUID      `json:"approvedBy,omitempty"`
	ApprovedAt      *time.Time      `json:"approvedAt,omitempty"`
	RejectionReason *string         `json:"rejectionReason,omitempty"`
	CreatedAt       time.Time       `json:"createdAt"`
	UpdatedAt       time.Time       `json:"updatedAt"`
}

type CreateOfferResponse struct {
	OfferID uuid.UUID `json:"offerId"`
}

func FromOfferView(v *queries.OfferView) (*OfferResponse, error) {
	var resp OfferResponse
	if err := copier.Copy(&resp, v); err != nil {
		return nil, err
	}
	return &resp, nil
}
