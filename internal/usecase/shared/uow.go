package shared

import (
	"context"
	"time"

	"coupon-marketplace/internal/domain/coupon"
	"coupon-marketplace/internal/domain/offer"

	"github.com/google/uuid"
)

type UnitOfWork interface {
	// Within: Full transaction for write operations with retry logic
	Within(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error
	// WithinReadOnly: Read-only transaction for multi-table consistent reads
	WithinReadOnly(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error
	// Ping: store reachability for health checks
	Ping(ctx context.Context) error
}

type Tx interface {
	Offers() OfferRepository
	Coupons() CouponRepository
	Settings() SettingRepository
	Purchases() PurchaseRepository
	Notifications() NotificationRepository
}

type OfferRepository interface {
	Create(ctx context.Context, o *offer.Offer) error
	FindByID(ctx context.Context, id uuid.UUID) (*offer.Offer, error)
	// FindByIDForUpdate locks the offer row until the transaction ends.
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*offer.Offer, error)
	Update(ctx context.Context, o *offer.Offer) error
	Delete(ctx context.Context, id uuid.UUID) error
	// ListExpirable returns ids of Active offers whose validTo is before now.
	ListExpirable(ctx context.Context, now time.Time, limit int) ([]uuid.UUID, error)
}

type CouponRepository interface {
	CreateBatch(ctx context.Context, units []*coupon.Coupon) error
	FindByID(ctx context.Context, id uuid.UUID) (*coupon.Coupon, error)
	// ClaimAvailable picks one Available unit of the offer, skipping units
	// locked by concurrent transactions. KindNotFound when none is claimable.
	ClaimAvailable(ctx context.Context, offerID uuid.UUID) (*coupon.Coupon, error)
	// FindLiveHold returns the customer's Reserved unit for the offer whose
	// reservedAt is not before cutoff. KindNotFound when there is none.
	FindLiveHold(ctx context.Context, offerID, customerID uuid.UUID, cutoff time.Time) (*coupon.Coupon, error)
	// SaveTransition persists c conditionally on (id, from, c.Version()).
	// KindConflict when the row moved on.
	SaveTransition(ctx context.Context, c *coupon.Coupon, from coupon.Status) error
	ListStaleHolds(ctx context.Context, cutoff time.Time, limit int) ([]StaleHold, error)
	// ExpireAvailable moves every Available unit of the offer to Expired.
	ExpireAvailable(ctx context.Context, offerID uuid.UUID, now time.Time) (int64, error)
	ListByHolder(ctx context.Context, customerID uuid.UUID, status *coupon.Status) ([]*coupon.Coupon, error)
	DeleteByOffer(ctx context.Context, offerID uuid.UUID) error
}

type SettingRepository interface {
	Find(ctx context.Context, key string) (value string, found bool, err error)
	Upsert(ctx context.Context, key, value string, now time.Time) error
}

type PurchaseRepository interface {
	Create(ctx context.Context, p PurchaseRecord) error
}

type NotificationRepository interface {
	CreateJob(ctx context.Context, kind, topic string, payload []byte, runAt time.Time) error
}

// SettingsReader is the typed read side of the settings store. Missing or
// unparsable values fall back to def.
type SettingsReader interface {
	GetInt(ctx context.Context, key string, def int) int
	GetBool(ctx context.Context, key string, def bool) bool
	GetString(ctx context.Context, key string, def string) string
}
