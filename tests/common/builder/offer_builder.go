//go:build unit || e2e

package builder

import (
	"time"

	"coupon-marketplace/internal/domain/offer"
	reqdto "coupon-marketplace/internal/handler/dto/request"
	"coupon-marketplace/internal/usecase/commands"
	"coupon-marketplace/internal/usecase/queries"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type OfferBuilder struct {
	MerchantID      uuid.UUID
	Title           string
	Description     string
	OriginalPrice   decimal.Decimal
	DiscountedPrice decimal.Decimal
	ValidFrom       time.Time
	ValidTo         time.Time
	TotalUnits      int
	Now             time.Time
}

func NewOfferBuilder() *OfferBuilder {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	return &OfferBuilder{
		MerchantID:      uuid.New(),
		Title:           "Lunch set 40% off",
		Description:     "Valid for dine-in only",
		OriginalPrice:   decimal.RequireFromString("25.00"),
		DiscountedPrice: decimal.RequireFromString("15.00"),
		ValidFrom:       now.Add(-time.Hour),
		ValidTo:         now.Add(30 * 24 * time.Hour),
		TotalUnits:      10,
		Now:             now,
	}
}

func (b *OfferBuilder) With(mutate func(*OfferBuilder)) *OfferBuilder {
	mutate(b)
	return b
}

func (b *OfferBuilder) BuildDetails() offer.Details {
	return offer.Details{
		Title:           b.Title,
		Description:     b.Description,
		OriginalPrice:   b.OriginalPrice,
		DiscountedPrice: b.DiscountedPrice,
		ValidFrom:       b.ValidFrom,
		ValidTo:         b.ValidTo,
	}
}

func (b *OfferBuilder) BuildDomain() (*offer.Offer, error) {
	return offer.NewOffer(b.MerchantID, b.BuildDetails(), b.TotalUnits, b.Now)
}

func (b *OfferBuilder) BuildInput() commands.OfferInput {
	return commands.OfferInput{
		Title:           b.Title,
		Description:     b.Description,
		OriginalPrice:   b.OriginalPrice,
		DiscountedPrice: b.DiscountedPrice,
		ValidFrom:       b.ValidFrom,
		ValidTo:         b.ValidTo,
	}
}

func (b *OfferBuilder) BuildCreateCommand() commands.CreateOfferRequest {
	return commands.CreateOfferRequest{
		OfferInput: b.BuildInput(),
		TotalUnits: b.TotalUnits,
	}
}

func (b *OfferBuilder) BuildCreateRequestDTO() reqdto.CreateOfferRequest {
	return reqdto.CreateOfferRequest{
		OfferRequest: reqdto.OfferRequest{
			Title:           b.Title,
			Description:     b.Description,
			OriginalPrice:   b.OriginalPrice,
			DiscountedPrice: b.DiscountedPrice,
			ValidFrom:       b.ValidFrom,
			ValidTo:         b.ValidTo,
		},
		TotalUnits: b.TotalUnits,
	}
}

func (b *OfferBuilder) BuildView() *queries.OfferView {
	return &queries.OfferView{
		ID:              uuid.New(),
		MerchantID:      b.MerchantID,
		Title:           b.Title,
		Description:     b.Description,
		OriginalPrice:   b.OriginalPrice,
		DiscountedPrice: b.DiscountedPrice,
		DiscountPercent: decimal.RequireFromString("40"),
		TotalUnits:      b.TotalUnits,
		AvailableUnits:  b.TotalUnits,
		SoldUnits:       0,
		ValidFrom:       b.ValidFrom,
		ValidTo:         b.ValidTo,
		Status:          offer.StatusActive.String(),
		CreatedAt:       b.Now,
		UpdatedAt:       b.Now,
	}
}
