package api

import (
	"net/http"

	reqdto "coupon-marketplace/internal/handler/dto/request"
	resdto "coupon-marketplace/internal/handler/dto/response"
	"coupon-marketplace/internal/handler/httperr"
	"coupon-marketplace/internal/usecase/commands"
	"coupon-marketplace/internal/usecase/queries"

	"github.com/gin-gonic/gin"
)

type OfferHandler struct {
	cmds commands.OfferCommands
	q    queries.OfferQueries
}

func NewOfferHandler(cmds commands.OfferCommands, q queries.OfferQueries) *OfferHandler {
	return &OfferHandler{cmds: cmds, q: q}
}

// @Summary Create offer
// @Description Create an offer in Pending together with its coupon units
// @Tags offers
// @Accept json
// @Produce json
// @Param X-User-ID header string true "Merchant ID"
// @Param request body reqdto.CreateOfferRequest true "Create offer request"
// @Success 201 {object} resdto.CreateOfferResponse
// @Failure 400 {object} httperr.Response
// @Failure 401 {object} httperr.Response
// @Router /offers [post]
func (h *OfferHandler) Create(c *gin.Context) {
	merchantID, ok := actorID(c)
	if !ok {
		return
	}
	var req reqdto.CreateOfferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid request format", nil)
		return
	}

	result, err := h.cmds.Create(c.Request.Context(), merchantID, req.ToCommand())
	if err != nil {
		httperr.Respond(c, err, "Create offer failed")
		return
	}
	c.JSON(http.StatusCreated, resdto.CreateOfferResponse{OfferID: result.OfferID})
}

// @Summary Get offer
// @Description Get an offer with its inventory counters
// @Tags offers
// @Produce json
// @Param id path string true "Offer ID"
// @Success 200 {object} resdto.OfferResponse
// @Failure 400 {object} httperr.Response
// @Failure 404 {object} httperr.Response
// @Router /offers/{id} [get]
func (h *OfferHandler) Get(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	view, err := h.q.GetOffer(c.Request.Context(), id)
	if err != nil {
		httperr.Respond(c, err, "Failed to load offer")
		return
	}
	resp, err := resdto.FromOfferView(view)
	if err != nil {
		httperr.AbortWithError(c, http.StatusInternalServerError, err, "Internal server error", nil)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// @Summary Update offer
// @Description Edit an offer; an approved or active offer goes back to Pending
// @Tags offers
// @Accept json
// @Produce json
// @Param X-User-ID header string true "Merchant ID"
// @Param id path string true "Offer ID"
// @Param request body reqdto.OfferRequest true "Offer details"
// @Success 204
// @Failure 400 {object} httperr.Response
// @Failure 404 {object} httperr.Response
// @Failure 409 {object} httperr.Response
// @Failure 422 {object} httperr.Response
// @Router /offers/{id} [put]
func (h *OfferHandler) Update(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	merchantID, ok := actorID(c)
	if !ok {
		return
	}
	var req reqdto.OfferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid request format", nil)
		return
	}
	if err := h.cmds.Update(c.Request.Context(), id, merchantID, req.ToInput()); err != nil {
		httperr.Respond(c, err, "Update offer failed")
		return
	}
	c.Status(http.StatusNoContent)
}

// @Summary Delete offer
// @Description Delete an offer that has not sold any coupon
// @Tags offers
// @Param X-User-ID header string true "Merchant ID"
// @Param id path string true "Offer ID"
// @Success 204
// @Failure 404 {object} httperr.Response
// @Failure 409 {object} httperr.Response
// @Failure 422 {object} httperr.Response
// @Router /offers/{id} [delete]
func (h *OfferHandler) Delete(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	merchantID, ok := actorID(c)
	if !ok {
		return
	}
	if err := h.cmds.Delete(c.Request.Context(), id, merchantID); err != nil {
		httperr.Respond(c, err, "Delete offer failed")
		return
	}
	c.Status(http.StatusNoContent)
}
