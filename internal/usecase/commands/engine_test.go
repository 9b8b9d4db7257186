//go:build unit

package commands_test

import (
	"context"

	"coupon-marketplace/internal/infra/memstore"
	"coupon-marketplace/internal/pkg/clock"
	"coupon-marketplace/internal/usecase/commands"
	"coupon-marketplace/internal/usecase/queries"
	"coupon-marketplace/tests/common/builder"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
)

// engineSuite wires the use cases against a fresh in-memory store per test.
type engineSuite struct {
	suite.Suite

	ctx          context.Context
	store        *memstore.Store
	clock        *clock.MockClock
	settings     *commands.SettingsService
	offers       commands.OfferCommands
	reservations commands.ReservationCommands
	sweeper      commands.SweeperCommands
	offerQueries queries.OfferQueries
	couponQuery  queries.CouponQueries

	adminID uuid.UUID
}

func (s *engineSuite) SetupTest() {
	s.ctx = context.Background()
	s.store = memstore.New()
	uow := memstore.NewUoW(s.store)
	s.clock = clock.NewMockClock(builder.NewOfferBuilder().Now)
	s.settings = commands.NewSettingsService(uow, s.clock)
	s.offers = commands.NewOfferUseCase(uow, s.settings, s.clock)
	s.reservations = commands.NewReservationUseCase(uow, s.settings, s.clock)
	s.sweeper = commands.NewSweeperUseCase(uow, s.settings, s.clock, 0)
	s.offerQueries = queries.NewOfferQueries(uow)
	s.couponQuery = queries.NewCouponQueries(uow, s.settings)
	s.adminID = uuid.New()
}

// activeOffer creates, approves and activates an offer with the given stock.
func (s *engineSuite) activeOffer(units int, mutate ...func(*builder.OfferBuilder)) uuid.UUID {
	b := builder.NewOfferBuilder().With(func(b *builder.OfferBuilder) { b.TotalUnits = units })
	for _, m := range mutate {
		b.With(m)
	}

	created, err := s.offers.Create(s.ctx, b.MerchantID, b.BuildCreateCommand())
	s.Require().NoError(err)
	s.Require().NoError(s.offers.Approve(s.ctx, created.OfferID, s.adminID))
	s.Require().NoError(s.offers.Activate(s.ctx, created.OfferID))
	return created.OfferID
}

func (s *engineSuite) offerView(id uuid.UUID) *queries.OfferView {
	v, err := s.offerQueries.GetOffer(s.ctx, id)
	s.Require().NoError(err)
	return v
}

func (s *engineSuite) couponView(customerID, couponID uuid.UUID) *queries.CouponView {
	v, err := s.couponQuery.GetMine(s.ctx, customerID, couponID)
	s.Require().NoError(err)
	return v
}
