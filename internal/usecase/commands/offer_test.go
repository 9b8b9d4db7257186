//go:build unit

package commands_test

import (
	"testing"
	"time"

	"coupon-marketplace/internal/domain/offer"
	"coupon-marketplace/internal/pkg/errs"
	"coupon-marketplace/internal/usecase/commands"
	"coupon-marketplace/internal/usecase/queries"
	"coupon-marketplace/tests/common/builder"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
)

type OfferSuite struct {
	engineSuite
}

func TestOfferSuite(t *testing.T) {
	suite.Run(t, new(OfferSuite))
}

func (s *OfferSuite) TestCreate() {
	s.Run("creates a pending offer with its units", func() {
		b := builder.NewOfferBuilder()
		created, err := s.offers.Create(s.ctx, b.MerchantID, b.BuildCreateCommand())
		s.Require().NoError(err)

		expected := b.BuildView()
		expected.ID = created.OfferID
		expected.Status = offer.StatusPending.String()

		opts := []cmp.Option{
			cmp.Comparer(func(a, b decimal.Decimal) bool { return a.Equal(b) }),
			cmpopts.IgnoreFields(queries.OfferView{}, "CreatedAt", "UpdatedAt"),
		}
		if diff := cmp.Diff(expected, s.offerView(created.OfferID), opts...); diff != "" {
			s.T().Errorf("offer view mismatch (-want +got):\n%s", diff)
		}
	})

	s.Run("invalid details are rejected", func() {
		b := builder.NewOfferBuilder().With(func(b *builder.OfferBuilder) {
			b.DiscountedPrice = b.OriginalPrice.Add(decimal.NewFromInt(1))
		})
		_, err := s.offers.Create(s.ctx, b.MerchantID, b.BuildCreateCommand())
		s.ErrorIs(err, offer.ErrDiscountAboveList)
		s.True(errs.Is(err, errs.ErrValidation))
	})

	s.Run("zero units are rejected", func() {
		b := builder.NewOfferBuilder().With(func(b *builder.OfferBuilder) { b.TotalUnits = 0 })
		_, err := s.offers.Create(s.ctx, b.MerchantID, b.BuildCreateCommand())
		s.ErrorIs(err, offer.ErrInvalidTotalUnits)
	})
}

func (s *OfferSuite) TestLifecycle() {
	b := builder.NewOfferBuilder()
	created, err := s.offers.Create(s.ctx, b.MerchantID, b.BuildCreateCommand())
	s.Require().NoError(err)
	id := created.OfferID

	s.ErrorIs(s.offers.Activate(s.ctx, id), offer.ErrInvalidTransition)
	s.Require().NoError(s.offers.Approve(s.ctx, id, s.adminID))

	view := s.offerView(id)
	s.Equal(offer.StatusApproved.String(), view.Status)
	s.Require().NotNil(view.ApprovedBy)
	s.Equal(s.adminID, *view.ApprovedBy)

	s.Require().NoError(s.offers.Activate(s.ctx, id))
	s.Require().NoError(s.offers.Suspend(s.ctx, id))
	s.Equal(offer.StatusSuspended.String(), s.offerView(id).Status)
	s.Require().NoError(s.offers.Resume(s.ctx, id))
	s.Equal(offer.StatusActive.String(), s.offerView(id).Status)

	err = s.offers.Approve(s.ctx, uuid.New(), s.adminID)
	s.ErrorIs(err, commands.ErrOfferNotFound)
}

func (s *OfferSuite) TestReject() {
	b := builder.NewOfferBuilder()
	created, err := s.offers.Create(s.ctx, b.MerchantID, b.BuildCreateCommand())
	s.Require().NoError(err)

	s.ErrorIs(s.offers.Reject(s.ctx, created.OfferID, ""), offer.ErrEmptyRejectionReason)
	s.Require().NoError(s.offers.Reject(s.ctx, created.OfferID, "price looks wrong"))

	view := s.offerView(created.OfferID)
	s.Equal(offer.StatusRejected.String(), view.Status)
	s.Require().NotNil(view.RejectionReason)
	s.Equal("price looks wrong", *view.RejectionReason)

	// a rejected offer can be fixed and resubmitted
	s.Require().NoError(s.offers.Update(s.ctx, created.OfferID, b.MerchantID, b.BuildInput()))
	s.Equal(offer.StatusPending.String(), s.offerView(created.OfferID).Status)
}

func (s *OfferSuite) TestUpdate() {
	s.Run("edit sends an active offer back to review", func() {
		b := builder.NewOfferBuilder()
		id := s.activeOffer(3, func(ob *builder.OfferBuilder) { ob.MerchantID = b.MerchantID })

		in := b.BuildInput()
		in.Title = "Brunch for two"
		s.Require().NoError(s.offers.Update(s.ctx, id, b.MerchantID, in))

		view := s.offerView(id)
		s.Equal("Brunch for two", view.Title)
		s.Equal(offer.StatusPending.String(), view.Status)
		s.Nil(view.ApprovedBy)
		s.Equal(3, view.AvailableUnits)
	})

	s.Run("only the owner may edit", func() {
		id := s.activeOffer(1)
		err := s.offers.Update(s.ctx, id, uuid.New(), builder.NewOfferBuilder().BuildInput())
		s.ErrorIs(err, commands.ErrNotOfferOwner)
		s.True(errs.Is(err, errs.ErrPolicyViolation))
	})

	s.Run("edit window closes after the configured hours", func() {
		b := builder.NewOfferBuilder()
		created, err := s.offers.Create(s.ctx, b.MerchantID, b.BuildCreateCommand())
		s.Require().NoError(err)

		s.clock.Add(24*time.Hour + time.Second)
		err = s.offers.Update(s.ctx, created.OfferID, b.MerchantID, b.BuildInput())
		s.ErrorIs(err, offer.ErrEditWindowExpired)
		s.True(errs.Is(err, errs.ErrPolicyViolation))
		s.clock.Set(b.Now)
	})

	s.Run("suspended offer cannot be edited", func() {
		b := builder.NewOfferBuilder()
		id := s.activeOffer(1, func(ob *builder.OfferBuilder) { ob.MerchantID = b.MerchantID })
		s.Require().NoError(s.offers.Suspend(s.ctx, id))

		err := s.offers.Update(s.ctx, id, b.MerchantID, b.BuildInput())
		s.ErrorIs(err, offer.ErrNotEditable)
		s.True(errs.Is(err, errs.ErrInvalidState))
	})
}

func (s *OfferSuite) TestDelete() {
	s.Run("unsold offer is removed with its units", func() {
		b := builder.NewOfferBuilder()
		created, err := s.offers.Create(s.ctx, b.MerchantID, b.BuildCreateCommand())
		s.Require().NoError(err)

		s.Require().NoError(s.offers.Delete(s.ctx, created.OfferID, b.MerchantID))

		_, err = s.offerQueries.GetOffer(s.ctx, created.OfferID)
		s.ErrorIs(err, queries.ErrOfferNotFound)
	})

	s.Run("offer with held units is kept", func() {
		b := builder.NewOfferBuilder()
		id := s.activeOffer(2, func(ob *builder.OfferBuilder) { ob.MerchantID = b.MerchantID })
		_, err := s.reservations.Reserve(s.ctx, id, uuid.New())
		s.Require().NoError(err)

		err = s.offers.Delete(s.ctx, id, b.MerchantID)
		s.ErrorIs(err, offer.ErrSoldInventory)
		s.Equal(1, s.offerView(id).AvailableUnits)
	})

	s.Run("only the owner may delete", func() {
		id := s.activeOffer(1)
		s.ErrorIs(s.offers.Delete(s.ctx, id, uuid.New()), commands.ErrNotOfferOwner)
	})
}
