//go:build unit

package api_test

import (
	"errors"
	"net/http"
	"testing"
	"time"

	"coupon-marketplace/internal/domain/coupon"
	"coupon-marketplace/internal/handler/api"
	resdto "coupon-marketplace/internal/handler/dto/response"
	"coupon-marketplace/internal/handler/middleware"
	"coupon-marketplace/internal/usecase/commands"
	"coupon-marketplace/internal/usecase/queries"
	"coupon-marketplace/tests/common/httptest"
	commandsmock "coupon-marketplace/tests/mock/commands"
	queriesmock "coupon-marketplace/tests/mock/queries"

	"github.com/gin-gonic/gin"
	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"
)

type ReservationHandlerTestSuite struct {
	suite.Suite
	router       *gin.Engine
	mockCtrl     *gomock.Controller
	mockCommands *commandsmock.MockReservationCommands
	mockQueries  *queriesmock.MockCouponQueries
	handler      *api.ReservationHandler
	customerID   uuid.UUID
	now          time.Time
}

func (s *ReservationHandlerTestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)
	s.router = gin.New()

	s.mockCtrl = gomock.NewController(s.T())
	s.mockCommands = commandsmock.NewMockReservationCommands(s.mockCtrl)
	s.mockQueries = queriesmock.NewMockCouponQueries(s.mockCtrl)
	s.handler = api.NewReservationHandler(s.mockCommands, s.mockQueries)
	s.customerID = uuid.New()
	s.now = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	actor := s.router.Group("", middleware.RequireActor())
	actor.POST("/offers/:id/reserve", s.handler.Reserve)
	actor.POST("/offers/:id/purchase", s.handler.Purchase)
	actor.GET("/coupons", s.handler.ListMine)
	actor.GET("/coupons/:id", s.handler.GetMine)
	actor.DELETE("/coupons/:id/reservation", s.handler.Cancel)
	actor.POST("/coupons/:id/use", s.handler.Use)
}

func (s *ReservationHandlerTestSuite) TearDownTest() {
	s.mockCtrl.Finish()
}

func TestReservationHandlerSuite(t *testing.T) {
	suite.Run(t, new(ReservationHandlerTestSuite))
}

// ================================================================================
// TestReserve
// ================================================================================

func (s *ReservationHandlerTestSuite) TestReserve() {
	offerID := uuid.New()
	url := "/offers/" + offerID.String() + "/reserve"

	s.Run("success: returns 201 with the hold", func() {
		result := &commands.ReservationResult{
			UnitID:     uuid.New(),
			OfferID:    offerID,
			Code:       "K7QX-4M2P-ZR9D",
			ReservedAt: s.now,
			ExpiresAt:  s.now.Add(30 * time.Minute),
		}
		s.mockCommands.EXPECT().Reserve(gomock.Any(), offerID, s.customerID).Return(result, nil).Times(1)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, url, nil, s.customerID.String())

		var body resdto.ReservationResponse
		httptest.AssertSuccessResponse(s.T(), rec, http.StatusCreated, &body)
		expected := resdto.ReservationResponse{
			CouponID:   result.UnitID,
			OfferID:    offerID,
			Code:       result.Code,
			ReservedAt: result.ReservedAt,
			ExpiresAt:  result.ExpiresAt,
		}
		if diff := cmp.Diff(expected, body); diff != "" {
			s.T().Errorf("reservation response mismatch (-want +got):\n%s", diff)
		}
	})

	s.Run("error: maps usecase errors to proper statuses", func() {
		testCases := []struct {
			name           string
			commandsError  error
			expectedStatus int
			expectedMsg    string
		}{
			{name: "sold out", commandsError: commands.ErrSoldOut, expectedStatus: http.StatusConflict, expectedMsg: "sold out"},
			{name: "already reserved", commandsError: commands.ErrAlreadyReserved, expectedStatus: http.StatusUnprocessableEntity, expectedMsg: "already holds"},
			{name: "offer not active", commandsError: commands.ErrOfferNotActive, expectedStatus: http.StatusConflict, expectedMsg: "not active"},
			{name: "offer not found", commandsError: commands.ErrOfferNotFound, expectedStatus: http.StatusNotFound, expectedMsg: "offer not found"},
			{name: "store failure", commandsError: errors.New("pool exhausted"), expectedStatus: http.StatusInternalServerError, expectedMsg: "Reservation failed"},
		}
		for _, tc := range testCases {
			s.Run(tc.name, func() {
				s.mockCommands.EXPECT().Reserve(gomock.Any(), offerID, s.customerID).Return(nil, tc.commandsError).Times(1)

				rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, url, nil, s.customerID.String())
				httptest.AssertErrorResponse(s.T(), rec, tc.expectedStatus, tc.expectedMsg)
			})
		}
	})

	s.Run("error: 401 without an actor", func() {
		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, url, nil, "")
		s.Equal(http.StatusUnauthorized, rec.Code)
	})

	s.Run("error: 400 on a malformed offer id", func() {
		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, "/offers/abc/reserve", nil, s.customerID.String())
		httptest.AssertErrorResponse(s.T(), rec, http.StatusBadRequest, "Invalid id format")
	})
}

// ================================================================================
// TestPurchase
// ================================================================================

func (s *ReservationHandlerTestSuite) TestPurchase() {
	offerID := uuid.New()
	url := "/offers/" + offerID.String() + "/purchase"

	s.Run("success: returns 201 with the purchase", func() {
		result := &commands.PurchaseResult{
			UnitID:      uuid.New(),
			OfferID:     offerID,
			Code:        "K7QX-4M2P-ZR9D",
			Amount:      decimal.RequireFromString("15.00"),
			PurchaseID:  uuid.New(),
			PurchasedAt: s.now,
		}
		s.mockCommands.EXPECT().Purchase(gomock.Any(), offerID, s.customerID).Return(result, nil).Times(1)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, url, nil, s.customerID.String())

		var body resdto.PurchaseResponse
		httptest.AssertSuccessResponse(s.T(), rec, http.StatusCreated, &body)
		s.Equal(result.PurchaseID, body.PurchaseID)
		s.Equal(result.UnitID, body.CouponID)
		s.True(result.Amount.Equal(body.Amount))
	})

	s.Run("error: 409 when sold out", func() {
		s.mockCommands.EXPECT().Purchase(gomock.Any(), offerID, s.customerID).Return(nil, commands.ErrSoldOut).Times(1)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, url, nil, s.customerID.String())
		httptest.AssertErrorResponse(s.T(), rec, http.StatusConflict, "sold out")
	})
}

// ================================================================================
// TestCancelAndUse
// ================================================================================

func (s *ReservationHandlerTestSuite) TestCancelAndUse() {
	unitID := uuid.New()

	s.Run("cancel reports whether the hold was released", func() {
		gomock.InOrder(
			s.mockCommands.EXPECT().CancelReservation(gomock.Any(), unitID, s.customerID).Return(true, nil),
			s.mockCommands.EXPECT().CancelReservation(gomock.Any(), unitID, s.customerID).Return(false, nil),
		)

		url := "/coupons/" + unitID.String() + "/reservation"
		for _, want := range []bool{true, false} {
			rec := httptest.PerformRequest(s.T(), s.router, http.MethodDelete, url, nil, s.customerID.String())
			var body resdto.ChangedResponse
			httptest.AssertSuccessResponse(s.T(), rec, http.StatusOK, &body)
			s.Equal(want, body.Changed)
		}
	})

	s.Run("use reports whether the coupon was redeemed", func() {
		gomock.InOrder(
			s.mockCommands.EXPECT().MarkUsed(gomock.Any(), unitID, s.customerID).Return(true, nil),
			s.mockCommands.EXPECT().MarkUsed(gomock.Any(), unitID, s.customerID).Return(false, nil),
		)

		url := "/coupons/" + unitID.String() + "/use"
		for _, want := range []bool{true, false} {
			rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, url, nil, s.customerID.String())
			var body resdto.ChangedResponse
			httptest.AssertSuccessResponse(s.T(), rec, http.StatusOK, &body)
			s.Equal(want, body.Changed)
		}
	})

	s.Run("store failure is a 500", func() {
		s.mockCommands.EXPECT().MarkUsed(gomock.Any(), unitID, s.customerID).Return(false, errors.New("timeout")).Times(1)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, "/coupons/"+unitID.String()+"/use", nil, s.customerID.String())
		httptest.AssertErrorResponse(s.T(), rec, http.StatusInternalServerError, "Use coupon failed")
	})
}

// ================================================================================
// TestListAndGet
// ================================================================================

func (s *ReservationHandlerTestSuite) TestListAndGet() {
	expires := s.now.Add(30 * time.Minute)
	reserved := &queries.CouponView{
		ID:            uuid.New(),
		OfferID:       uuid.New(),
		Code:          "K7QX-4M2P-ZR9D",
		Status:        coupon.StatusReserved.String(),
		ReservedAt:    &s.now,
		HoldExpiresAt: &expires,
		UpdatedAt:     s.now,
	}

	s.Run("list passes the status filter through", func() {
		s.mockQueries.EXPECT().ListMine(gomock.Any(), s.customerID, "reserved").
			Return([]*queries.CouponView{reserved}, nil).Times(1)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodGet, "/coupons?status=reserved", nil, s.customerID.String())

		var body []resdto.CouponResponse
		httptest.AssertSuccessResponse(s.T(), rec, http.StatusOK, &body)
		s.Require().Len(body, 1)
		s.Equal(reserved.ID, body[0].ID)
		s.Equal("reserved", body[0].Status)
		s.Require().NotNil(body[0].HoldExpiresAt)
		s.True(expires.Equal(*body[0].HoldExpiresAt))
	})

	s.Run("empty list is an empty array", func() {
		s.mockQueries.EXPECT().ListMine(gomock.Any(), s.customerID, "").Return(nil, nil).Times(1)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodGet, "/coupons", nil, s.customerID.String())
		s.Equal(http.StatusOK, rec.Code)
		s.JSONEq(`[]`, rec.Body.String())
	})

	s.Run("unknown status filter is a 400", func() {
		s.mockQueries.EXPECT().ListMine(gomock.Any(), s.customerID, "lost").
			Return(nil, queries.ErrInvalidStatusQuery).Times(1)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodGet, "/coupons?status=lost", nil, s.customerID.String())
		httptest.AssertErrorResponse(s.T(), rec, http.StatusBadRequest, "unknown coupon status")
	})

	s.Run("get returns one coupon", func() {
		s.mockQueries.EXPECT().GetMine(gomock.Any(), s.customerID, reserved.ID).Return(reserved, nil).Times(1)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodGet, "/coupons/"+reserved.ID.String(), nil, s.customerID.String())

		var body resdto.CouponResponse
		httptest.AssertSuccessResponse(s.T(), rec, http.StatusOK, &body)
		s.Equal(reserved.Code, body.Code)
	})

	s.Run("get of another customer's coupon is a 404", func() {
		s.mockQueries.EXPECT().GetMine(gomock.Any(), s.customerID, gomock.Any()).Return(nil, queries.ErrCouponNotFound).Times(1)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodGet, "/coupons/"+uuid.NewString(), nil, s.customerID.String())
		httptest.AssertErrorResponse(s.T(), rec, http.StatusNotFound, "coupon not found")
	})
}
