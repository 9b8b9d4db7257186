//go:build unit

package api_test

import (
	"errors"
	"net/http"
	"testing"

	"coupon-marketplace/internal/domain/offer"
	"coupon-marketplace/internal/domain/setting"
	"coupon-marketplace/internal/handler/api"
	reqdto "coupon-marketplace/internal/handler/dto/request"
	resdto "coupon-marketplace/internal/handler/dto/response"
	"coupon-marketplace/internal/handler/middleware"
	"coupon-marketplace/internal/usecase/commands"
	"coupon-marketplace/tests/common/httptest"
	commandsmock "coupon-marketplace/tests/mock/commands"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"
)

type AdminHandlerTestSuite struct {
	suite.Suite
	router       *gin.Engine
	mockCtrl     *gomock.Controller
	mockOffers   *commandsmock.MockOfferCommands
	mockSettings *commandsmock.MockSettingCommands
	adminID      uuid.UUID
}

func (s *AdminHandlerTestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)
	s.router = gin.New()

	s.mockCtrl = gomock.NewController(s.T())
	s.mockOffers = commandsmock.NewMockOfferCommands(s.mockCtrl)
	s.mockSettings = commandsmock.NewMockSettingCommands(s.mockCtrl)
	s.adminID = uuid.New()
	h := api.NewAdminHandler(s.mockOffers, s.mockSettings)

	admin := s.router.Group("/admin", middleware.RequireActor())
	admin.POST("/offers/:id/approve", h.Approve)
	admin.POST("/offers/:id/reject", h.Reject)
	admin.POST("/offers/:id/activate", h.Activate)
	admin.POST("/offers/:id/suspend", h.Suspend)
	admin.POST("/offers/:id/resume", h.Resume)
	admin.GET("/settings/:key", h.GetSetting)
	admin.PUT("/settings/:key", h.PutSetting)
}

func (s *AdminHandlerTestSuite) TearDownTest() {
	s.mockCtrl.Finish()
}

func TestAdminHandlerSuite(t *testing.T) {
	suite.Run(t, new(AdminHandlerTestSuite))
}

func (s *AdminHandlerTestSuite) TestTransitions() {
	id := uuid.New()
	base := "/admin/offers/" + id.String()

	s.Run("approve records the acting admin", func() {
		s.mockOffers.EXPECT().Approve(gomock.Any(), id, s.adminID).Return(nil).Times(1)
		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, base+"/approve", nil, s.adminID.String())
		s.Equal(http.StatusNoContent, rec.Code)
	})

	s.Run("activate, suspend and resume", func() {
		s.mockOffers.EXPECT().Activate(gomock.Any(), id).Return(nil).Times(1)
		s.mockOffers.EXPECT().Suspend(gomock.Any(), id).Return(nil).Times(1)
		s.mockOffers.EXPECT().Resume(gomock.Any(), id).Return(nil).Times(1)

		for _, action := range []string{"/activate", "/suspend", "/resume"} {
			rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, base+action, nil, s.adminID.String())
			s.Equal(http.StatusNoContent, rec.Code, action)
		}
	})

	s.Run("invalid transition is a 409", func() {
		s.mockOffers.EXPECT().Activate(gomock.Any(), id).Return(offer.ErrInvalidTransition).Times(1)
		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, base+"/activate", nil, s.adminID.String())
		httptest.AssertErrorResponse(s.T(), rec, http.StatusConflict, "invalid offer status transition")
	})

	s.Run("missing offer is a 404", func() {
		s.mockOffers.EXPECT().Suspend(gomock.Any(), id).Return(commands.ErrOfferNotFound).Times(1)
		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, base+"/suspend", nil, s.adminID.String())
		httptest.AssertErrorResponse(s.T(), rec, http.StatusNotFound, "offer not found")
	})

	s.Run("reject requires a reason", func() {
		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPost, base+"/reject", map[string]any{}, s.adminID.String())
		httptest.AssertErrorResponse(s.T(), rec, http.StatusBadRequest, "Invalid request format")

		s.mockOffers.EXPECT().Reject(gomock.Any(), id, "duplicate listing").Return(nil).Times(1)
		rec = httptest.PerformRequest(s.T(), s.router, http.MethodPost, base+"/reject",
			reqdto.RejectOfferRequest{Reason: "duplicate listing"}, s.adminID.String())
		s.Equal(http.StatusNoContent, rec.Code)
	})
}

func (s *AdminHandlerTestSuite) TestSettings() {
	key := setting.KeyReservationHoldMinutes
	url := "/admin/settings/" + key

	s.Run("get returns the stored value", func() {
		s.mockSettings.EXPECT().Get(gomock.Any(), key).Return("15", nil).Times(1)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodGet, url, nil, s.adminID.String())

		var body resdto.SettingResponse
		httptest.AssertSuccessResponse(s.T(), rec, http.StatusOK, &body)
		s.Equal(resdto.SettingResponse{Key: key, Value: "15"}, body)
	})

	s.Run("get of a missing key is a 404", func() {
		s.mockSettings.EXPECT().Get(gomock.Any(), "nope").Return("", setting.ErrKeyNotFound).Times(1)
		rec := httptest.PerformRequest(s.T(), s.router, http.MethodGet, "/admin/settings/nope", nil, s.adminID.String())
		httptest.AssertErrorResponse(s.T(), rec, http.StatusNotFound, "setting not found")
	})

	s.Run("put stores the value", func() {
		s.mockSettings.EXPECT().Set(gomock.Any(), key, "45").Return(nil).Times(1)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPut, url, reqdto.PutSettingRequest{Value: "45"}, s.adminID.String())

		var body resdto.SettingResponse
		httptest.AssertSuccessResponse(s.T(), rec, http.StatusOK, &body)
		s.Equal("45", body.Value)
	})

	s.Run("put without a value is a 400", func() {
		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPut, url, map[string]any{"value": ""}, s.adminID.String())
		s.Equal(http.StatusBadRequest, rec.Code)
	})

	s.Run("store failure is a 500 with a generic message", func() {
		s.mockSettings.EXPECT().Set(gomock.Any(), key, "45").Return(errors.New("disk full")).Times(1)

		rec := httptest.PerformRequest(s.T(), s.router, http.MethodPut, url, reqdto.PutSettingRequest{Value: "45"}, s.adminID.String())
		httptest.AssertErrorResponse(s.T(), rec, http.StatusInternalServerError, "Failed to store setting")
	})
}
