package memstore

import (
	"context"
	"maps"
	"slices"
	"strconv"
	"sync"
	"time"

	"coupon-marketplace/internal/domain/setting"
	"coupon-marketplace/internal/infra"
	"coupon-marketplace/internal/infra/repository/converter"
	"coupon-marketplace/internal/usecase/shared"

	"github.com/google/uuid"
)

var errReadOnly = infra.NewRepoErr(infra.KindDBFailure, "write attempted in read-only transaction")

type NotificationJob struct {
	Kind    string
	Topic   string
	Payload []byte
	RunAt   time.Time
}

type state struct {
	offers    map[uuid.UUID]converter.OfferRecord
	coupons   map[uuid.UUID]converter.CouponRecord
	byOffer   map[uuid.UUID][]uuid.UUID // unit ids in creation order
	codes     map[string]uuid.UUID
	settings  map[string]string
	purchases map[uuid.UUID]shared.PurchaseRecord
	jobs      []NotificationJob
}

// Store is an in-process UnitOfWork. Write transactions are serialized by a
// single lock and work on copy-on-write tables that replace the committed
// state only when fn returns nil.
type Store struct {
	mu sync.RWMutex
	st *state
}

func New() *Store {
	return &Store{st: &state{
		offers:  map[uuid.UUID]converter.OfferRecord{},
		coupons: map[uuid.UUID]converter.CouponRecord{},
		byOffer: map[uuid.UUID][]uuid.UUID{},
		codes:   map[string]uuid.UUID{},
		settings: map[string]string{
			setting.KeyReservationHoldMinutes: strconv.Itoa(setting.DefaultReservationHoldMinutes),
			setting.KeyOfferEditWindowHours:   strconv.Itoa(setting.DefaultOfferEditWindowHours),
		},
		purchases: map[uuid.UUID]shared.PurchaseRecord{},
	}}
}

func NewUoW(s *Store) shared.UnitOfWork {
	return s
}

func (s *Store) Within(ctx context.Context, fn func(ctx context.Context, tx shared.Tx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	tx := newMemTx(s.st, false)
	if err := fn(ctx, tx); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	s.st = tx.commit()
	return nil
}

func (s *Store) WithinReadOnly(ctx context.Context, fn func(ctx context.Context, tx shared.Tx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	return fn(ctx, newMemTx(s.st, true))
}

func (s *Store) Ping(ctx context.Context) error {
	return ctx.Err()
}

func (s *Store) NotificationJobs() []NotificationJob {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.st.jobs)
}

func (s *Store) Purchases() []shared.PurchaseRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Collect(maps.Values(s.st.purchases))
}

// memTx tracks which tables it has copied; untouched tables are shared with
// the committed state.
type memTx struct {
	base     *state
	work     state
	readOnly bool

	offersCopied    bool
	couponsCopied   bool
	settingsCopied  bool
	purchasesCopied bool
	jobsCopied      bool
}

func newMemTx(base *state, readOnly bool) *memTx {
	return &memTx{base: base, work: *base, readOnly: readOnly}
}

func (t *memTx) commit() *state {
	st := t.work
	return &st
}

func (t *memTx) writableOffers() (map[uuid.UUID]converter.OfferRecord, error) {
	if t.readOnly {
		return nil, errReadOnly
	}
	if !t.offersCopied {
		t.work.offers = maps.Clone(t.base.offers)
		t.offersCopied = true
	}
	return t.work.offers, nil
}

// coupons, byOffer and codes always change together
func (t *memTx) writableCoupons() (map[uuid.UUID]converter.CouponRecord, error) {
	if t.readOnly {
		return nil, errReadOnly
	}
	if !t.couponsCopied {
		t.work.coupons = maps.Clone(t.base.coupons)
		t.work.byOffer = maps.Clone(t.base.byOffer)
		t.work.codes = maps.Clone(t.base.codes)
		t.couponsCopied = true
	}
	return t.work.coupons, nil
}

func (t *memTx) writableSettings() (map[string]string, error) {
	if t.readOnly {
		return nil, errReadOnly
	}
	if !t.settingsCopied {
		t.work.settings = maps.Clone(t.base.settings)
		t.settingsCopied = true
	}
	return t.work.settings, nil
}

func (t *memTx) writablePurchases() (map[uuid.UUID]shared.PurchaseRecord, error) {
	if t.readOnly {
		return nil, errReadOnly
	}
	if !t.purchasesCopied {
		t.work.purchases = maps.Clone(t.base.purchases)
		t.purchasesCopied = true
	}
	return t.work.purchases, nil
}

func (t *memTx) appendJob(job NotificationJob) error {
	if t.readOnly {
		return errReadOnly
	}
	if !t.jobsCopied {
		t.work.jobs = slices.Clone(t.base.jobs)
		t.jobsCopied = true
	}
	t.work.jobs = append(t.work.jobs, job)
	return nil
}

func (t *memTx) Offers() shared.OfferRepository               { return offerRepo{t} }
func (t *memTx) Coupons() shared.CouponRepository             { return couponRepo{t} }
func (t *memTx) Settings() shared.SettingRepository           { return settingRepo{t} }
func (t *memTx) Purchases() shared.PurchaseRepository         { return purchaseRepo{t} }
func (t *memTx) Notifications() shared.NotificationRepository { return notificationRepo{t} }
