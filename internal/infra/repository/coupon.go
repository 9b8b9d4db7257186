package repository

import (
	"context"
	"time"

	"coupon-marketplace/internal/domain/coupon"
	"coupon-marketplace/internal/infra"
	"coupon-marketplace/internal/infra/db"
	"coupon-marketplace/internal/infra/repository/converter"
	"coupon-marketplace/internal/pkg/pgconv"
	"coupon-marketplace/internal/usecase/shared"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

const couponColumns = `id, offer_id, code, status, holder_id, reserved_at, purchased_at, used_at,
	purchase_id, purchase_amount, version, created_at, updated_at`

var couponCopyColumns = []string{
	"id", "offer_id", "code", "status", "holder_id", "reserved_at", "purchased_at", "used_at",
	"purchase_id", "purchase_amount", "version", "created_at", "updated_at",
}

const getCouponByID = `SELECT ` + couponColumns + ` FROM coupons WHERE id = $1`

// SKIP LOCKED lets concurrent reservers fan out over different units instead
// of queueing on the same row.
const claimAvailableCoupon = `SELECT ` + couponColumns + ` FROM coupons
WHERE offer_id = $1 AND status = 'available'
ORDER BY created_at, id
LIMIT 1
FOR UPDATE SKIP LOCKED`

const findLiveHold = `SELECT ` + couponColumns + ` FROM coupons
WHERE offer_id = $1 AND holder_id = $2 AND status = 'reserved' AND reserved_at >= $3
ORDER BY reserved_at DESC, id
LIMIT 1`

const saveCouponTransition = `UPDATE coupons SET
	status = $4, holder_id = $5, reserved_at = $6, purchased_at = $7, used_at = $8,
	purchase_id = $9, purchase_amount = $10, updated_at = $11, version = version + 1
WHERE id = $1 AND status = $2 AND version = $3`

const listStaleHolds = `SELECT id, offer_id FROM coupons
WHERE status = 'reserved' AND reserved_at < $1
ORDER BY reserved_at, id
LIMIT $2`

const expireAvailableCoupons = `UPDATE coupons SET
	status = 'expired', updated_at = $2, version = version + 1
WHERE offer_id = $1 AND status = 'available'`

const listCouponsByHolder = `SELECT ` + couponColumns + ` FROM coupons
WHERE holder_id = $1 AND ($2::text IS NULL OR status = $2::text)
ORDER BY updated_at DESC, id`

const deleteCouponsByOffer = `DELETE FROM coupons WHERE offer_id = $1`

type CouponRepository struct {
	db db.DBTX
}

func NewCouponRepository(db db.DBTX) *CouponRepository {
	return &CouponRepository{db: db}
}

func (r *CouponRepository) CreateBatch(ctx context.Context, units []*coupon.Coupon) error {
	if len(units) == 0 {
		return nil
	}

	_, err := r.db.CopyFrom(ctx, pgx.Identifier{"coupons"}, couponCopyColumns,
		pgx.CopyFromSlice(len(units), func(i int) ([]any, error) {
			rec := converter.CouponToRecord(units[i])
			return []any{
				pgconv.UUIDToPgtype(rec.ID),
				pgconv.UUIDToPgtype(rec.OfferID),
				rec.Code,
				rec.Status,
				pgconv.UUIDPtrToPgtype(rec.HolderID),
				pgconv.TimePtrToPgtype(rec.ReservedAt),
				pgconv.TimePtrToPgtype(rec.PurchasedAt),
				pgconv.TimePtrToPgtype(rec.UsedAt),
				pgconv.UUIDPtrToPgtype(rec.PurchaseID),
				pgconv.DecimalPtrToNumeric(rec.PurchaseAmount),
				rec.Version,
				pgconv.TimeToPgtype(rec.CreatedAt),
				pgconv.TimeToPgtype(rec.UpdatedAt),
			}, nil
		}),
	)
	if err != nil {
		return infra.WrapRepoErr("failed to create coupons", err)
	}
	return nil
}

func (r *CouponRepository) FindByID(ctx context.Context, id uuid.UUID) (*coupon.Coupon, error) {
	return r.findOne(ctx, "coupon not found", getCouponByID, id)
}

func (r *CouponRepository) ClaimAvailable(ctx context.Context, offerID uuid.UUID) (*coupon.Coupon, error) {
	return r.findOne(ctx, "no claimable coupon", claimAvailableCoupon, offerID)
}

func (r *CouponRepository) FindLiveHold(ctx context.Context, offerID, customerID uuid.UUID, cutoff time.Time) (*coupon.Coupon, error) {
	return r.findOne(ctx, "no live hold", findLiveHold, offerID, customerID, pgconv.TimeToPgtype(cutoff))
}

func (r *CouponRepository) findOne(ctx context.Context, notFoundMsg, query string, args ...any) (*coupon.Coupon, error) {
	rec, err := scanCoupon(r.db.QueryRow(ctx, query, args...))
	if err != nil {
		if pgconv.IsNoRows(err) {
			return nil, infra.WrapRepoErr(notFoundMsg, err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to query coupon", err)
	}

	c, err := converter.CouponFromRecord(rec)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to convert coupon row", err)
	}
	return c, nil
}

func (r *CouponRepository) SaveTransition(ctx context.Context, c *coupon.Coupon, from coupon.Status) error {
	rec := converter.CouponToRecord(c)
	tag, err := r.db.Exec(ctx, saveCouponTransition,
		rec.ID, from.String(), rec.Version,
		rec.Status,
		pgconv.UUIDPtrToPgtype(rec.HolderID),
		pgconv.TimePtrToPgtype(rec.ReservedAt),
		pgconv.TimePtrToPgtype(rec.PurchasedAt),
		pgconv.TimePtrToPgtype(rec.UsedAt),
		pgconv.UUIDPtrToPgtype(rec.PurchaseID),
		pgconv.DecimalPtrToNumeric(rec.PurchaseAmount),
		pgconv.TimeToPgtype(rec.UpdatedAt),
	)
	if err != nil {
		return infra.WrapRepoErr("failed to save coupon transition", err)
	}
	if tag.RowsAffected() == 0 {
		return infra.NewRepoErr(infra.KindConflict, "coupon changed concurrently")
	}
	return nil
}

func (r *CouponRepository) ListStaleHolds(ctx context.Context, cutoff time.Time, limit int) ([]shared.StaleHold, error) {
	rows, err := r.db.Query(ctx, listStaleHolds, pgconv.TimeToPgtype(cutoff), limit)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to list stale holds", err)
	}

	holds, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (shared.StaleHold, error) {
		var id, offerID pgtype.UUID
		if err := row.Scan(&id, &offerID); err != nil {
			return shared.StaleHold{}, err
		}
		return shared.StaleHold{ID: uuid.UUID(id.Bytes), OfferID: uuid.UUID(offerID.Bytes)}, nil
	})
	if err != nil {
		return nil, infra.WrapRepoErr("failed to scan stale holds", err)
	}
	return holds, nil
}

func (r *CouponRepository) ExpireAvailable(ctx context.Context, offerID uuid.UUID, now time.Time) (int64, error) {
	tag, err := r.db.Exec(ctx, expireAvailableCoupons, offerID, pgconv.TimeToPgtype(now))
	if err != nil {
		return 0, infra.WrapRepoErr("failed to expire available coupons", err)
	}
	return tag.RowsAffected(), nil
}

func (r *CouponRepository) ListByHolder(ctx context.Context, customerID uuid.UUID, status *coupon.Status) ([]*coupon.Coupon, error) {
	statusArg := pgtype.Text{}
	if status != nil {
		statusArg = pgconv.StringToPgtype(status.String())
	}

	rows, err := r.db.Query(ctx, listCouponsByHolder, customerID, statusArg)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to list coupons by holder", err)
	}

	recs, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (converter.CouponRecord, error) {
		return scanCoupon(row)
	})
	if err != nil {
		return nil, infra.WrapRepoErr("failed to scan coupons", err)
	}

	result := make([]*coupon.Coupon, 0, len(recs))
	for _, rec := range recs {
		c, err := converter.CouponFromRecord(rec)
		if err != nil {
			return nil, infra.WrapRepoErr("failed to convert coupon row", err)
		}
		result = append(result, c)
	}
	return result, nil
}

func (r *CouponRepository) DeleteByOffer(ctx context.Context, offerID uuid.UUID) error {
	if _, err := r.db.Exec(ctx, deleteCouponsByOffer, offerID); err != nil {
		return infra.WrapRepoErr("failed to delete coupons", err)
	}
	return nil
}

func scanCoupon(row pgx.Row) (converter.CouponRecord, error) {
	var (
		id, offerID, holderID, purchaseID pgtype.UUID
		code, status                      string
		reservedAt, purchasedAt, usedAt   pgtype.Timestamptz
		purchaseAmount                    pgtype.Numeric
		version                           int64
		createdAt, updatedAt              pgtype.Timestamptz
	)
	err := row.Scan(
		&id, &offerID, &code, &status, &holderID, &reservedAt, &purchasedAt, &usedAt,
		&purchaseID, &purchaseAmount, &version, &createdAt, &updatedAt,
	)
	if err != nil {
		return converter.CouponRecord{}, err
	}

	amount, err := pgconv.DecimalPtrFromNumeric(purchaseAmount)
	if err != nil {
		return converter.CouponRecord{}, err
	}

	return converter.CouponRecord{
		ID:             uuid.UUID(id.Bytes),
		OfferID:        uuid.UUID(offerID.Bytes),
		Code:           code,
		Status:         status,
		HolderID:       pgconv.UUIDPtrFromPgtype(holderID),
		ReservedAt:     pgconv.TimePtrFromPgtype(reservedAt),
		PurchasedAt:    pgconv.TimePtrFromPgtype(purchasedAt),
		UsedAt:         pgconv.TimePtrFromPgtype(usedAt),
		PurchaseID:     pgconv.UUIDPtrFromPgtype(purchaseID),
		PurchaseAmount: amount,
		Version:        version,
		CreatedAt:      pgconv.TimeFromPgtype(createdAt),
		UpdatedAt:      pgconv.TimeFromPgtype(updatedAt),
	}, nil
}
