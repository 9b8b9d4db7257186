package repository

import (
	"context"
	"time"

	"coupon-marketplace/internal/domain/offer"
	"coupon-marketplace/internal/infra"
	"coupon-marketplace/internal/infra/db"
	"coupon-marketplace/internal/infra/repository/converter"
	"coupon-marketplace/internal/pkg/pgconv"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

const offerColumns = `id, merchant_id, title, description, original_price, discounted_price,
	total_units, available_units, valid_from, valid_to, status,
	approved_by, approved_at, rejection_reason, created_at, updated_at`

const createOffer = `INSERT INTO offers (` + offerColumns + `)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)`

const getOfferByID = `SELECT ` + offerColumns + ` FROM offers WHERE id = $1`

const getOfferByIDForUpdate = getOfferByID + ` FOR UPDATE`

const updateOffer = `UPDATE offers SET
	title = $2, description = $3, original_price = $4, discounted_price = $5,
	total_units = $6, available_units = $7, valid_from = $8, valid_to = $9,
	status = $10, approved_by = $11, approved_at = $12, rejection_reason = $13,
	updated_at = $14
WHERE id = $1`

const deleteOffer = `DELETE FROM offers WHERE id = $1`

const listExpirableOffers = `SELECT id FROM offers
WHERE status = 'active' AND valid_to < $1
ORDER BY valid_to, id
LIMIT $2`

type OfferRepository struct {
	db db.DBTX
}

func NewOfferRepository(db db.DBTX) *OfferRepository {
	return &OfferRepository{db: db}
}

func (r *OfferRepository) Create(ctx context.Context, o *offer.Offer) error {
	rec := converter.OfferToRecord(o)
	_, err := r.db.Exec(ctx, createOffer,
		rec.ID, rec.MerchantID, rec.Title, rec.Description,
		pgconv.DecimalToNumeric(rec.OriginalPrice), pgconv.DecimalToNumeric(rec.DiscountedPrice),
		rec.TotalUnits, rec.AvailableUnits,
		pgconv.TimeToPgtype(rec.ValidFrom), pgconv.TimeToPgtype(rec.ValidTo),
		rec.Status,
		pgconv.UUIDPtrToPgtype(rec.ApprovedBy), pgconv.TimePtrToPgtype(rec.ApprovedAt),
		pgconv.StringPtrToPgtype(rec.RejectionReason),
		pgconv.TimeToPgtype(rec.CreatedAt), pgconv.TimeToPgtype(rec.UpdatedAt),
	)
	if err != nil {
		return infra.WrapRepoErr("failed to create offer", err)
	}
	return nil
}

func (r *OfferRepository) FindByID(ctx context.Context, id uuid.UUID) (*offer.Offer, error) {
	return r.findOne(ctx, getOfferByID, id)
}

func (r *OfferRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*offer.Offer, error) {
	return r.findOne(ctx, getOfferByIDForUpdate, id)
}

func (r *OfferRepository) findOne(ctx context.Context, query string, id uuid.UUID) (*offer.Offer, error) {
	rec, err := scanOffer(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if pgconv.IsNoRows(err) {
			return nil, infra.WrapRepoErr("offer not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to find offer by ID", err)
	}

	o, err := converter.OfferFromRecord(rec)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to convert offer row", err)
	}
	return o, nil
}

func (r *OfferRepository) Update(ctx context.Context, o *offer.Offer) error {
	rec := converter.OfferToRecord(o)
	tag, err := r.db.Exec(ctx, updateOffer,
		rec.ID, rec.Title, rec.Description,
		pgconv.DecimalToNumeric(rec.OriginalPrice), pgconv.DecimalToNumeric(rec.DiscountedPrice),
		rec.TotalUnits, rec.AvailableUnits,
		pgconv.TimeToPgtype(rec.ValidFrom), pgconv.TimeToPgtype(rec.ValidTo),
		rec.Status,
		pgconv.UUIDPtrToPgtype(rec.ApprovedBy), pgconv.TimePtrToPgtype(rec.ApprovedAt),
		pgconv.StringPtrToPgtype(rec.RejectionReason),
		pgconv.TimeToPgtype(rec.UpdatedAt),
	)
	if err != nil {
		return infra.WrapRepoErr("failed to update offer", err)
	}
	if tag.RowsAffected() == 0 {
		return infra.NewRepoErr(infra.KindNotFound, "offer not found")
	}
	return nil
}

func (r *OfferRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, deleteOffer, id)
	if err != nil {
		return infra.WrapRepoErr("failed to delete offer", err)
	}
	if tag.RowsAffected() == 0 {
		return infra.NewRepoErr(infra.KindNotFound, "offer not found")
	}
	return nil
}

func (r *OfferRepository) ListExpirable(ctx context.Context, now time.Time, limit int) ([]uuid.UUID, error) {
	rows, err := r.db.Query(ctx, listExpirableOffers, pgconv.TimeToPgtype(now), limit)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to list expirable offers", err)
	}

	ids, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (uuid.UUID, error) {
		var id pgtype.UUID
		if err := row.Scan(&id); err != nil {
			return uuid.Nil, err
		}
		return uuid.UUID(id.Bytes), nil
	})
	if err != nil {
		return nil, infra.WrapRepoErr("failed to scan expirable offers", err)
	}
	return ids, nil
}

func scanOffer(row pgx.Row) (converter.OfferRecord, error) {
	var (
		id, merchantID, approvedBy pgtype.UUID
		title, description         string
		originalPrice, discounted  pgtype.Numeric
		totalUnits, available      int32
		validFrom, validTo         pgtype.Timestamptz
		status                     string
		approvedAt                 pgtype.Timestamptz
		rejectionReason            pgtype.Text
		createdAt, updatedAt       pgtype.Timestamptz
	)
	err := row.Scan(
		&id, &merchantID, &title, &description, &originalPrice, &discounted,
		&totalUnits, &available, &validFrom, &validTo, &status,
		&approvedBy, &approvedAt, &rejectionReason, &createdAt, &updatedAt,
	)
	if err != nil {
		return converter.OfferRecord{}, err
	}

	original, err := pgconv.DecimalFromNumeric(originalPrice)
	if err != nil {
		return converter.OfferRecord{}, err
	}
	discountedPrice, err := pgconv.DecimalFromNumeric(discounted)
	if err != nil {
		return converter.OfferRecord{}, err
	}

	return converter.OfferRecord{
		ID:              uuid.UUID(id.Bytes),
		MerchantID:      uuid.UUID(merchantID.Bytes),
		Title:           title,
		Description:     description,
		OriginalPrice:   original,
		DiscountedPrice: discountedPrice,
		TotalUnits:      int(totalUnits),
		AvailableUnits:  int(available),
		ValidFrom:       pgconv.TimeFromPgtype(validFrom),
		ValidTo:         pgconv.TimeFromPgtype(validTo),
		Status:          status,
		ApprovedBy:      pgconv.UUIDPtrFromPgtype(approvedBy),
		ApprovedAt:      pgconv.TimePtrFromPgtype(approvedAt),
		RejectionReason: pgconv.StringPtrFromPgtype(rejectionReason),
		CreatedAt:       pgconv.TimeFromPgtype(createdAt),
		UpdatedAt:       pgconv.TimeFromPgtype(updatedAt),
	}, nil
}
