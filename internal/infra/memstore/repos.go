package memstore

import (
	"cmp"
	"context"
	"slices"
	"time"

	"coupon-marketplace/internal/domain/coupon"
	"coupon-marketplace/internal/domain/offer"
	"coupon-marketplace/internal/infra"
	"coupon-marketplace/internal/infra/repository/converter"
	"coupon-marketplace/internal/usecase/shared"

	"github.com/google/uuid"
)

type offerRepo struct{ tx *memTx }

func (r offerRepo) Create(_ context.Context, o *offer.Offer) error {
	offers, err := r.tx.writableOffers()
	if err != nil {
		return err
	}
	if _, exists := offers[o.ID()]; exists {
		return infra.NewRepoErr(infra.KindDuplicateKey, "offer already exists")
	}
	offers[o.ID()] = converter.OfferToRecord(o)
	return nil
}

func (r offerRepo) FindByID(_ context.Context, id uuid.UUID) (*offer.Offer, error) {
	rec, ok := r.tx.work.offers[id]
	if !ok {
		return nil, infra.NewRepoErr(infra.KindNotFound, "offer not found")
	}
	o, err := converter.OfferFromRecord(rec)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to convert offer record", err)
	}
	return o, nil
}

// Transactions are already serialized, so there is nothing extra to lock.
func (r offerRepo) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*offer.Offer, error) {
	return r.FindByID(ctx, id)
}

func (r offerRepo) Update(_ context.Context, o *offer.Offer) error {
	offers, err := r.tx.writableOffers()
	if err != nil {
		return err
	}
	if _, ok := offers[o.ID()]; !ok {
		return infra.NewRepoErr(infra.KindNotFound, "offer not found")
	}
	offers[o.ID()] = converter.OfferToRecord(o)
	return nil
}

func (r offerRepo) Delete(_ context.Context, id uuid.UUID) error {
	offers, err := r.tx.writableOffers()
	if err != nil {
		return err
	}
	if _, ok := offers[id]; !ok {
		return infra.NewRepoErr(infra.KindNotFound, "offer not found")
	}
	delete(offers, id)
	return nil
}

func (r offerRepo) ListExpirable(_ context.Context, now time.Time, limit int) ([]uuid.UUID, error) {
	var candidates []converter.OfferRecord
	for _, rec := range r.tx.work.offers {
		if rec.Status == offer.StatusActive.String() && rec.ValidTo.Before(now) {
			candidates = append(candidates, rec)
		}
	}
	slices.SortFunc(candidates, func(a, b converter.OfferRecord) int {
		return cmp.Or(a.ValidTo.Compare(b.ValidTo), cmp.Compare(a.ID.String(), b.ID.String()))
	})

	ids := make([]uuid.UUID, 0, min(len(candidates), limit))
	for _, rec := range candidates {
		if len(ids) == limit {
			break
		}
		ids = append(ids, rec.ID)
	}
	return ids, nil
}

type couponRepo struct{ tx *memTx }

func (r couponRepo) CreateBatch(_ context.Context, units []*coupon.Coupon) error {
	if len(units) == 0 {
		return nil
	}
	coupons, err := r.tx.writableCoupons()
	if err != nil {
		return err
	}

	offerID := units[0].OfferID()
	if _, ok := r.tx.work.offers[offerID]; !ok {
		return infra.NewRepoErr(infra.KindForeignKeyViolated, "offer does not exist")
	}

	ids := slices.Clip(r.tx.work.byOffer[offerID])
	for _, u := range units {
		if _, exists := coupons[u.ID()]; exists {
			return infra.NewRepoErr(infra.KindDuplicateKey, "coupon already exists")
		}
		if _, taken := r.tx.work.codes[u.Code().String()]; taken {
			return infra.NewRepoErr(infra.KindDuplicateKey, "coupon code already exists")
		}
		coupons[u.ID()] = converter.CouponToRecord(u)
		r.tx.work.codes[u.Code().String()] = u.ID()
		ids = append(ids, u.ID())
	}
	r.tx.work.byOffer[offerID] = ids
	return nil
}

func (r couponRepo) FindByID(_ context.Context, id uuid.UUID) (*coupon.Coupon, error) {
	rec, ok := r.tx.work.coupons[id]
	if !ok {
		return nil, infra.NewRepoErr(infra.KindNotFound, "coupon not found")
	}
	return toCoupon(rec)
}

func (r couponRepo) ClaimAvailable(_ context.Context, offerID uuid.UUID) (*coupon.Coupon, error) {
	for _, id := range r.tx.work.byOffer[offerID] {
		rec := r.tx.work.coupons[id]
		if rec.Status == coupon.StatusAvailable.String() {
			return toCoupon(rec)
		}
	}
	return nil, infra.NewRepoErr(infra.KindNotFound, "no claimable coupon")
}

func (r couponRepo) FindLiveHold(_ context.Context, offerID, customerID uuid.UUID, cutoff time.Time) (*coupon.Coupon, error) {
	for _, id := range r.tx.work.byOffer[offerID] {
		rec := r.tx.work.coupons[id]
		if rec.Status != coupon.StatusReserved.String() || rec.HolderID == nil || *rec.HolderID != customerID {
			continue
		}
		if rec.ReservedAt != nil && !rec.ReservedAt.Before(cutoff) {
			return toCoupon(rec)
		}
	}
	return nil, infra.NewRepoErr(infra.KindNotFound, "no live hold")
}

func (r couponRepo) SaveTransition(_ context.Context, c *coupon.Coupon, from coupon.Status) error {
	coupons, err := r.tx.writableCoupons()
	if err != nil {
		return err
	}
	current, ok := coupons[c.ID()]
	if !ok || current.Status != from.String() || current.Version != c.Version() {
		return infra.NewRepoErr(infra.KindConflict, "coupon changed concurrently")
	}

	next := converter.CouponToRecord(c)
	next.Version = current.Version + 1
	coupons[c.ID()] = next
	return nil
}

func (r couponRepo) ListStaleHolds(_ context.Context, cutoff time.Time, limit int) ([]shared.StaleHold, error) {
	var stale []converter.CouponRecord
	for _, rec := range r.tx.work.coupons {
		if rec.Status == coupon.StatusReserved.String() && rec.ReservedAt != nil && rec.ReservedAt.Before(cutoff) {
			stale = append(stale, rec)
		}
	}
	slices.SortFunc(stale, func(a, b converter.CouponRecord) int {
		return cmp.Or(a.ReservedAt.Compare(*b.ReservedAt), cmp.Compare(a.ID.String(), b.ID.String()))
	})

	holds := make([]shared.StaleHold, 0, min(len(stale), limit))
	for _, rec := range stale {
		if len(holds) == limit {
			break
		}
		holds = append(holds, shared.StaleHold{ID: rec.ID, OfferID: rec.OfferID})
	}
	return holds, nil
}

func (r couponRepo) ExpireAvailable(_ context.Context, offerID uuid.UUID, now time.Time) (int64, error) {
	coupons, err := r.tx.writableCoupons()
	if err != nil {
		return 0, err
	}
	var n int64
	for _, id := range r.tx.work.byOffer[offerID] {
		rec := coupons[id]
		if rec.Status != coupon.StatusAvailable.String() {
			continue
		}
		rec.Status = coupon.StatusExpired.String()
		rec.UpdatedAt = now
		rec.Version++
		coupons[id] = rec
		n++
	}
	return n, nil
}

func (r couponRepo) ListByHolder(_ context.Context, customerID uuid.UUID, status *coupon.Status) ([]*coupon.Coupon, error) {
	var recs []converter.CouponRecord
	for _, rec := range r.tx.work.coupons {
		if rec.HolderID == nil || *rec.HolderID != customerID {
			continue
		}
		if status != nil && rec.Status != status.String() {
			continue
		}
		recs = append(recs, rec)
	}
	slices.SortFunc(recs, func(a, b converter.CouponRecord) int {
		return cmp.Or(b.UpdatedAt.Compare(a.UpdatedAt), cmp.Compare(a.ID.String(), b.ID.String()))
	})

	result := make([]*coupon.Coupon, 0, len(recs))
	for _, rec := range recs {
		c, err := toCoupon(rec)
		if err != nil {
			return nil, err
		}
		result = append(result, c)
	}
	return result, nil
}

func (r couponRepo) DeleteByOffer(_ context.Context, offerID uuid.UUID) error {
	coupons, err := r.tx.writableCoupons()
	if err != nil {
		return err
	}
	for _, id := range r.tx.work.byOffer[offerID] {
		delete(r.tx.work.codes, coupons[id].Code)
		delete(coupons, id)
	}
	delete(r.tx.work.byOffer, offerID)
	return nil
}

func toCoupon(rec converter.CouponRecord) (*coupon.Coupon, error) {
	c, err := converter.CouponFromRecord(rec)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to convert coupon record", err)
	}
	return c, nil
}

type settingRepo struct{ tx *memTx }

func (r settingRepo) Find(_ context.Context, key string) (string, bool, error) {
	v, ok := r.tx.work.settings[key]
	return v, ok, nil
}

func (r settingRepo) Upsert(_ context.Context, key, value string, _ time.Time) error {
	settings, err := r.tx.writableSettings()
	if err != nil {
		return err
	}
	settings[key] = value
	return nil
}

type purchaseRepo struct{ tx *memTx }

func (r purchaseRepo) Create(_ context.Context, p shared.PurchaseRecord) error {
	purchases, err := r.tx.writablePurchases()
	if err != nil {
		return err
	}
	if _, exists := purchases[p.ID]; exists {
		return infra.NewRepoErr(infra.KindDuplicateKey, "purchase already exists")
	}
	for _, existing := range purchases {
		if existing.CouponID == p.CouponID {
			return infra.NewRepoErr(infra.KindDuplicateKey, "coupon already purchased")
		}
	}
	purchases[p.ID] = p
	return nil
}

type notificationRepo struct{ tx *memTx }

func (r notificationRepo) CreateJob(_ context.Context, kind, topic string, payload []byte, runAt time.Time) error {
	return r.tx.appendJob(NotificationJob{Kind: kind, Topic: topic, Payload: payload, RunAt: runAt})
}
