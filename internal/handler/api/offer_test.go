//go:build unit

package api_test

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"

	"coupon-marketplace/internal/domain/offer"
	"coupon-marketplace/internal/handler/api"
	resdto "coupon-marketplace/internal/handler/dto/response"
	"coupon-marketplace/internal/handler/middleware"
	"coupon-marketplace/internal/usecase/commands"
	"coupon-marketplace/internal/usecase/queries"
	"coupon-marketplace/tests/common/builder"
	"coupon-marketplace/tests/common/httptest"
	"coupon-marketplace/tests/common/testutil"
	commandsmock "coupon-marketplace/tests/mock/commands"
	queriesmock "coupon-marketplace/tests/mock/queries"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"
)

type OfferHandlerTestSuite struct {
	suite.Suite
	router       *gin.Engine
	mockCtrl     *gomock.Controller
	mockCommands *commandsmock.MockOfferCommands
	mockQueries  *queriesmock.MockOfferQueries
	handler      *api.OfferHandler
	merchantID   uuid.UUID
}

func (s *OfferHandlerTestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)
	s.router = gin.New()

	s.mockCtrl = gomock.NewController(s.T())
	s.mockCommands = commandsmock.NewMockOfferCommands(s.mockCtrl)
	s.mockQueries = queriesmock.NewMockOfferQueries(s.mockCtrl)
	s.handler = api.NewOfferHandler(s.mockCommands, s.mockQueries)
	s.merchantID = uuid.New()

	s.router.GET("/offers/:id", s.handler.Get)
	actor := s.router.Group("", middleware.RequireActor())
	actor.POST("/offers", s.handler.Create)
	actor.PUT("/offers/:id", s.handler.Update)
	actor.DELETE("/offers/:id", s.handler.Delete)
}

func (s *OfferHandlerTestSuite) TearDownTest() {
	s.mockCtrl.Finish()
}

func TestOfferHandlerSuite(t *testing.T) {
	suite.Run(t, new(OfferHandlerTestSuite))
}

type testCaseOffer struct {
	name       string
	mutate     func(m map[string]any)
	expectCode int
}

// ================================================================================
// TestCreate
// ================================================================================

func (s *OfferHandlerTestSuite) TestCreate() {
	url := "/offers"
	b := builder.NewOfferBuilder()
	reqBody := b.BuildCreateRequestDTO()
	offerID := uuid.New()

	s.Run("success: returns 201 with the offer id", func() {
		s.mockCommands.EXPECT().Create(gomock.Any(), s.merchantID, gomock.Any()).
			DoAndReturn(func(_ context.Context, _ uuid.UUID, req commands.CreateOfferRequest) (*commands.CreateOfferResult, error) {
				s.Equal(b.Title, req.Title)
				s.Equal(b.TotalUnits, req.TotalUnits)
				s.True(b.DiscountedPrice.Equal(req.DiscountedPrice))
				s.True(b.ValidTo.Equal(req.ValidTo))
				return &commands.CreateOfferResult{OfferID: offerID}, nil
			}).Times(1)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, url, reqBody, s.merchantID.String())

		var body resdto.CreateOfferResponse
		httptest.AssertSuccessResponse(s.T(), rec, http.StatusCreated, &body)
		s.Equal(offerID, body.OfferID)
	})

	s.Run("error: 400 Bad Request on validation errors", func() {
		cases := []testCaseOffer{
			{name: "missing title", mutate: testutil.Field("title", nil), expectCode: http.StatusBadRequest},
			{name: "missing total_units", mutate: testutil.Field("total_units", nil), expectCode: http.StatusBadRequest},
			{name: "zero total_units", mutate: testutil.Field("total_units", 0), expectCode: http.StatusBadRequest},
			{name: "negative total_units", mutate: testutil.Field("total_units", -1), expectCode: http.StatusBadRequest},
			{name: "malformed price", mutate: testutil.Field("original_price", "cheap"), expectCode: http.StatusBadRequest},
			{name: "malformed valid_to", mutate: testutil.Field("valid_to", "tomorrow"), expectCode: http.StatusBadRequest},
		}
		for _, tc := range cases {
			s.Run(tc.name, func() {
				requestMap := testutil.DtoMap(s.T(), reqBody, tc.mutate)
				rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, url, requestMap, s.merchantID.String())
				httptest.AssertErrorResponse(s.T(), rec, tc.expectCode, "Invalid request format")
			})
		}
	})

	s.Run("error: 401 Unauthorized without an actor", func() {
		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, url, reqBody, "")
		httptest.AssertErrorResponse(s.T(), rec, http.StatusUnauthorized, "X-User-ID")

		rec = httptest.PerformRequest(s.T(), s.router, http.MethodPost, url, reqBody, "merchant-1")
		httptest.AssertErrorResponse(s.T(), rec, http.StatusUnauthorized, "UUID")
	})

	s.Run("error: maps usecase errors to proper statuses", func() {
		testCases := []struct {
			name           string
			commandsError  error
			expectedStatus int
			expectedMsg    string
		}{
			{
				name:           "domain validation error",
				commandsError:  offer.ErrDiscountAboveList,
				expectedStatus: http.StatusBadRequest,
				expectedMsg:    "discounted price cannot exceed original price",
			},
			{
				name:           "internal server error",
				commandsError:  errors.New("database error"),
				expectedStatus: http.StatusInternalServerError,
				expectedMsg:    "Create offer failed",
			},
		}

		for _, tc := range testCases {
			s.Run(tc.name, func() {
				s.mockCommands.EXPECT().Create(gomock.Any(), s.merchantID, gomock.Any()).
					Return(nil, tc.commandsError).Times(1)

				rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, url, reqBody, s.merchantID.String())
				httptest.AssertErrorResponse(s.T(), rec, tc.expectedStatus, tc.expectedMsg)
				s.NotContains(rec.Body.String(), "database error")
			})
		}
	})
}

// ================================================================================
// TestGet
// ================================================================================

func (s *OfferHandlerTestSuite) TestGet() {
	view := builder.NewOfferBuilder().BuildView()
	view.AvailableUnits = 7
	view.SoldUnits = 3

	s.Run("success: returns counters in camelCase", func() {
		s.mockQueries.EXPECT().GetOffer(gomock.Any(), view.ID).Return(view, nil).Times(1)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodGet, "/offers/"+view.ID.String(), nil, "")

		var body resdto.OfferResponse
		httptest.AssertSuccessResponse(s.T(), rec, http.StatusOK, &body)
		s.Equal(view.ID, body.ID)
		s.Equal(7, body.AvailableUnits)
		s.Equal(3, body.SoldUnits)
		s.True(decimal.RequireFromString("40").Equal(body.DiscountPercent))
		s.Contains(rec.Body.String(), `"availableUnits":7`)
	})

	s.Run("error: 404 when the offer does not exist", func() {
		s.mockQueries.EXPECT().GetOffer(gomock.Any(), gomock.Any()).Return(nil, queries.ErrOfferNotFound).Times(1)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodGet, "/offers/"+uuid.NewString(), nil, "")
		httptest.AssertErrorResponse(s.T(), rec, http.StatusNotFound, "offer not found")
	})

	s.Run("error: 400 on a malformed id", func() {
		rec := httptest.PerformRequest(s.T(), s.router, http.MethodGet, "/offers/not-a-uuid", nil, "")
		httptest.AssertErrorResponse(s.T(), rec, http.StatusBadRequest, "Invalid id format")
	})
}

// ================================================================================
// TestUpdate
// ================================================================================

func (s *OfferHandlerTestSuite) TestUpdate() {
	id := uuid.New()
	url := "/offers/" + id.String()
	reqBody := builder.NewOfferBuilder().BuildCreateRequestDTO().OfferRequest

	s.Run("success: returns 204", func() {
		s.mockCommands.EXPECT().Update(gomock.Any(), id, s.merchantID, gomock.Any()).Return(nil).Times(1)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPut, url, reqBody, s.merchantID.String())
		s.Equal(http.StatusNoContent, rec.Code)
	})

	s.Run("error: maps usecase errors to proper statuses", func() {
		testCases := []struct {
			name           string
			commandsError  error
			expectedStatus int
		}{
			{name: "edit window expired", commandsError: offer.ErrEditWindowExpired, expectedStatus: http.StatusUnprocessableEntity},
			{name: "not the owner", commandsError: commands.ErrNotOfferOwner, expectedStatus: http.StatusUnprocessableEntity},
			{name: "not editable", commandsError: offer.ErrNotEditable, expectedStatus: http.StatusConflict},
			{name: "missing offer", commandsError: commands.ErrOfferNotFound, expectedStatus: http.StatusNotFound},
		}
		for _, tc := range testCases {
			s.Run(tc.name, func() {
				s.mockCommands.EXPECT().Update(gomock.Any(), id, s.merchantID, gomock.Any()).
					Return(tc.commandsError).Times(1)

				rec := httptest.PerformRequest(s.T(), s.router, http.MethodPut, url, reqBody, s.merchantID.String())
				httptest.AssertErrorResponse(s.T(), rec, tc.expectedStatus, tc.commandsError.Error())
			})
		}
	})

	s.Run("error: 400 on empty title", func() {
		requestMap := testutil.DtoMap(s.T(), reqBody, testutil.Field("title", ""))
		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPut, url, requestMap, s.merchantID.String())
		httptest.AssertErrorResponse(s.T(), rec, http.StatusBadRequest, "")
	})
}

// ================================================================================
// TestDelete
// ================================================================================

func (s *OfferHandlerTestSuite) TestDelete() {
	id := uuid.New()
	url := "/offers/" + id.String()

	s.Run("success: returns 204", func() {
		s.mockCommands.EXPECT().Delete(gomock.Any(), id, s.merchantID).Return(nil).Times(1)
		rec := httptest.PerformRequest(s.T(), s.router, http.MethodDelete, url, nil, s.merchantID.String())
		s.Equal(http.StatusNoContent, rec.Code)
	})

	s.Run("error: 422 once coupons were sold", func() {
		s.mockCommands.EXPECT().Delete(gomock.Any(), id, s.merchantID).Return(offer.ErrSoldInventory).Times(1)
		rec := httptest.PerformRequest(s.T(), s.router, http.MethodDelete, url, nil, s.merchantID.String())
		httptest.AssertErrorResponse(s.T(), rec, http.StatusUnprocessableEntity, "sold")
	})

	s.Run("error: 400 on a malformed id", func() {
		rec := httptest.PerformRequest(s.T(), s.router, http.MethodDelete, "/offers/"+strings.Repeat("x", 5), nil, s.merchantID.String())
		s.Equal(http.StatusBadRequest, rec.Code)
	})
}
