package api

import (
	"net/http"

	reqdto "coupon-marketplace/internal/handler/dto/request"
	resdto "coupon-marketplace/internal/handler/dto/response"
	"coupon-marketplace/internal/handler/httperr"
	"coupon-marketplace/internal/usecase/commands"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type AdminHandler struct {
	offers   commands.OfferCommands
	settings commands.SettingCommands
}

func NewAdminHandler(offers commands.OfferCommands, settings commands.SettingCommands) *AdminHandler {
	return &AdminHandler{offers: offers, settings: settings}
}

// @Summary Approve offer
// @Tags admin
// @Param X-User-ID header string true "Admin ID"
// @Param id path string true "Offer ID"
// @Success 204
// @Failure 404 {object} httperr.Response
// @Failure 409 {object} httperr.Response
// @Router /admin/offers/{id}/approve [post]
func (h *AdminHandler) Approve(c *gin.Context) {
	adminID, ok := actorID(c)
	if !ok {
		return
	}
	h.transition(c, "Approve offer failed", func(c *gin.Context, id uuid.UUID) error {
		return h.offers.Approve(c.Request.Context(), id, adminID)
	})
}

// @Summary Reject offer
// @Tags admin
// @Accept json
// @Param X-User-ID header string true "Admin ID"
// @Param id path string true "Offer ID"
// @Param request body reqdto.RejectOfferRequest true "Rejection reason"
// @Success 204
// @Failure 400 {object} httperr.Response
// @Failure 404 {object} httperr.Response
// @Failure 409 {object} httperr.Response
// @Router /admin/offers/{id}/reject [post]
func (h *AdminHandler) Reject(c *gin.Context) {
	var req reqdto.RejectOfferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid request format", nil)
		return
	}
	h.transition(c, "Reject offer failed", func(c *gin.Context, id uuid.UUID) error {
		return h.offers.Reject(c.Request.Context(), id, req.Reason)
	})
}

// @Summary Activate offer
// @Tags admin
// @Param X-User-ID header string true "Admin ID"
// @Param id path string true "Offer ID"
// @Success 204
// @Failure 404 {object} httperr.Response
// @Failure 409 {object} httperr.Response
// @Router /admin/offers/{id}/activate [post]
func (h *AdminHandler) Activate(c *gin.Context) {
	h.transition(c, "Activate offer failed", func(c *gin.Context, id uuid.UUID) error {
		return h.offers.Activate(c.Request.Context(), id)
	})
}

// @Summary Suspend offer
// @Tags admin
// @Param X-User-ID header string true "Admin ID"
// @Param id path string true "Offer ID"
// @Success 204
// @Failure 404 {object} httperr.Response
// @Failure 409 {object} httperr.Response
// @Router /admin/offers/{id}/suspend [post]
func (h *AdminHandler) Suspend(c *gin.Context) {
	h.transition(c, "Suspend offer failed", func(c *gin.Context, id uuid.UUID) error {
		return h.offers.Suspend(c.Request.Context(), id)
	})
}

// @Summary Resume offer
// @Tags admin
// @Param X-User-ID header string true "Admin ID"
// @Param id path string true "Offer ID"
// @Success 204
// @Failure 404 {object} httperr.Response
// @Failure 409 {object} httperr.Response
// @Router /admin/offers/{id}/resume [post]
func (h *AdminHandler) Resume(c *gin.Context) {
	h.transition(c, "Resume offer failed", func(c *gin.Context, id uuid.UUID) error {
		return h.offers.Resume(c.Request.Context(), id)
	})
}

func (h *AdminHandler) transition(c *gin.Context, failMsg string, fn func(c *gin.Context, id uuid.UUID) error) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := fn(c, id); err != nil {
		httperr.Respond(c, err, failMsg)
		return
	}
	c.Status(http.StatusNoContent)
}

// @Summary Get setting
// @Tags admin
// @Produce json
// @Param X-User-ID header string true "Admin ID"
// @Param key path string true "Setting key"
// @Success 200 {object} resdto.SettingResponse
// @Failure 404 {object} httperr.Response
// @Router /admin/settings/{key} [get]
func (h *AdminHandler) GetSetting(c *gin.Context) {
	key := c.Param("key")
	value, err := h.settings.Get(c.Request.Context(), key)
	if err != nil {
		httperr.Respond(c, err, "Failed to load setting")
		return
	}
	c.JSON(http.StatusOK, resdto.SettingResponse{Key: key, Value: value})
}

// @Summary Put setting
// @Tags admin
// @Accept json
// @Produce json
// @Param X-User-ID header string true "Admin ID"
// @Param key path string true "Setting key"
// @Param request body reqdto.PutSettingRequest true "Setting value"
// @Success 200 {object} resdto.SettingResponse
// @Failure 400 {object} httperr.Response
// @Router /admin/settings/{key} [put]
func (h *AdminHandler) PutSetting(c *gin.Context) {
	key := c.Param("key")
	var req reqdto.PutSettingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid request format", nil)
		return
	}
	if err := h.settings.Set(c.Request.Context(), key, req.Value); err != nil {
		httperr.Respond(c, err, "Failed to store setting")
		return
	}
	c.JSON(http.StatusOK, resdto.SettingResponse{Key: key, Value: req.Value})
}
