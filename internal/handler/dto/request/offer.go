package request

import (
	"strings"
	"time"

	"coupon-marketplace/internal/usecase/commands"

	"github.com/shopspring/decimal"
)

type OfferRequest struct {
	Title           string          `json:"title" binding:"required"`
	Description     string          `json:"description"`
	OriginalPrice   decimal.Decimal `json:"original_price"`
	DiscountedPrice decimal.Decimal `json:"discounted_price"`
	ValidFrom       time.Time       `json:"valid_from" binding:"required"`
	ValidTo         time.Time       `json:"valid_to" binding:"required"`
}

func (r OfferRequest) ToInput() commands.OfferInput {
	return commands.OfferInput{
		Title:           strings.TrimSpace(r.Title),
		Description:     strings.TrimSpace(r.Description),
		OriginalPrice:   r.OriginalPrice,
		DiscountedPrice: r.DiscountedPrice,
		ValidFrom:       r.ValidFrom,
		ValidTo:         r.ValidTo,
	}
}

type CreateOfferRequest struct {
	OfferRequest
	TotalUnits int `json:"total_units" binding:"required,min=1"`
}

func (r CreateOfferRequest) ToCommand() commands.CreateOfferRequest {
	return commands.CreateOfferRequest{
		OfferInput: r.ToInput(),
		TotalUnits: r.TotalUnits,
	}
}

type RejectOfferRequest struct {
	Reason string `json:"reason" binding:"required"`
}
