package shared

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type StaleHold struct {
	ID      uuid.UUID
	OfferID uuid.UUID
}

type PurchaseRecord struct {
	ID         uuid.UUID
	CouponID   uuid.UUID
	OfferID    uuid.UUID
	CustomerID uuid.UUID
	Amount     decimal.Decimal
	CreatedAt  time.Time
}
