package repository

import (
	"context"

	"coupon-marketplace/internal/infra"
	"coupon-marketplace/internal/infra/db"
	"coupon-marketplace/internal/pkg/pgconv"
	"coupon-marketplace/internal/usecase/shared"
)

const createPurchase = `INSERT INTO purchases (id, coupon_id, offer_id, customer_id, amount, created_at)
VALUES ($1, $2, $3, $4, $5, $6)`

type PurchaseRepository struct {
	db db.DBTX
}

func NewPurchaseRepository(db db.DBTX) *PurchaseRepository {
	return &PurchaseRepository{db: db}
}

func (r *PurchaseRepository) Create(ctx context.Context, p shared.PurchaseRecord) error {
	_, err := r.db.Exec(ctx, createPurchase,
		p.ID, p.CouponID, p.OfferID, p.CustomerID,
		pgconv.DecimalToNumeric(p.Amount), pgconv.TimeToPgtype(p.CreatedAt),
	)
	if err != nil {
		return infra.WrapRepoErr("failed to create purchase", err)
	}
	return nil
}
