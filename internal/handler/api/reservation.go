package api

import (
	"net/http"

	resdto "coupon-marketplace/internal/handler/dto/response"
	"coupon-marketplace/internal/handler/httperr"
	"coupon-marketplace/internal/usecase/commands"
	"coupon-marketplace/internal/usecase/queries"

	"github.com/gin-gonic/gin"
)

type ReservationHandler struct {
	cmds commands.ReservationCommands
	q    queries.CouponQueries
}

func NewReservationHandler(cmds commands.ReservationCommands, q queries.CouponQueries) *ReservationHandler {
	return &ReservationHandler{cmds: cmds, q: q}
}

// @Summary Reserve coupon
// @Description Place a time-limited hold on one coupon of the offer
// @Tags reservations
// @Produce json
// @Param X-User-ID header string true "Customer ID"
// @Param id path string true "Offer ID"
// @Success 201 {object} resdto.ReservationResponse
// @Failure 404 {object} httperr.Response
// @Failure 409 {object} httperr.Response
// @Failure 422 {object} httperr.Response
// @Failure 429 {object} httperr.Response
// @Router /offers/{id}/reserve [post]
func (h *ReservationHandler) Reserve(c *gin.Context) {
	offerID, ok := pathID(c, "id")
	if !ok {
		return
	}
	customerID, ok := actorID(c)
	if !ok {
		return
	}

	result, err := h.cmds.Reserve(c.Request.Context(), offerID, customerID)
	if err != nil {
		httperr.Respond(c, err, "Reservation failed")
		return
	}
	c.JSON(http.StatusCreated, resdto.FromReservationResult(result))
}

// @Summary Purchase coupon
// @Description Purchase the caller's live hold on the offer, reserving one first if needed
// @Tags reservations
// @Produce json
// @Param X-User-ID header string true "Customer ID"
// @Param id path string true "Offer ID"
// @Success 201 {object} resdto.PurchaseResponse
// @Failure 404 {object} httperr.Response
// @Failure 409 {object} httperr.Response
// @Failure 429 {object} httperr.Response
// @Router /offers/{id}/purchase [post]
func (h *ReservationHandler) Purchase(c *gin.Context) {
	offerID, ok := pathID(c, "id")
	if !ok {
		return
	}
	customerID, ok := actorID(c)
	if !ok {
		return
	}

	result, err := h.cmds.Purchase(c.Request.Context(), offerID, customerID)
	if err != nil {
		httperr.Respond(c, err, "Purchase failed")
		return
	}
	c.JSON(http.StatusCreated, resdto.FromPurchaseResult(result))
}

// @Summary List my coupons
// @Description List coupons held by the caller, optionally filtered by status
// @Tags coupons
// @Produce json
// @Param X-User-ID header string true "Customer ID"
// @Param status query string false "Coupon status"
// @Success 200 {array} resdto.CouponResponse
// @Failure 400 {object} httperr.Response
// @Router /coupons [get]
func (h *ReservationHandler) ListMine(c *gin.Context) {
	customerID, ok := actorID(c)
	if !ok {
		return
	}

	views, err := h.q.ListMine(c.Request.Context(), customerID, c.Query("status"))
	if err != nil {
		httperr.Respond(c, err, "Failed to load coupons")
		return
	}
	resp, err := resdto.FromCouponViews(views)
	if err != nil {
		httperr.AbortWithError(c, http.StatusInternalServerError, err, "Internal server error", nil)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// @Summary Cancel reservation
// @Description Release the caller's hold; repeating the call is a no-op
// @Tags coupons
// @Produce json
// @Param X-User-ID header string true "Customer ID"
// @Param id path string true "Coupon ID"
// @Success 200 {object} resdto.ChangedResponse
// @Failure 404 {object} httperr.Response
// @Router /coupons/{id}/reservation [delete]
func (h *ReservationHandler) Cancel(c *gin.Context) {
	unitID, ok := pathID(c, "id")
	if !ok {
		return
	}
	customerID, ok := actorID(c)
	if !ok {
		return
	}

	changed, err := h.cmds.CancelReservation(c.Request.Context(), unitID, customerID)
	if err != nil {
		httperr.Respond(c, err, "Cancel reservation failed")
		return
	}
	c.JSON(http.StatusOK, resdto.ChangedResponse{Changed: changed})
}

// @Summary Use coupon
// @Description Redeem a purchased coupon; repeating the call is a no-op
// @Tags coupons
// @Produce json
// @Param X-User-ID header string true "Customer ID"
// @Param id path string true "Coupon ID"
// @Success 200 {object} resdto.ChangedResponse
// @Failure 404 {object} httperr.Response
// @Failure 409 {object} httperr.Response
// @Router /coupons/{id}/use [post]
func (h *ReservationHandler) Use(c *gin.Context) {
	unitID, ok := pathID(c, "id")
	if !ok {
		return
	}
	customerID, ok := actorID(c)
	if !ok {
		return
	}

	changed, err := h.cmds.MarkUsed(c.Request.Context(), unitID, customerID)
	if err != nil {
		httperr.Respond(c, err, "Use coupon failed")
		return
	}
	c.JSON(http.StatusOK, resdto.ChangedResponse{Changed: changed})
}

// @Summary Get my coupon
// @Description Get one coupon held by the caller
// @Tags coupons
// @Produce json
// @Param X-User-ID header string true "Customer ID"
// @Param id path string true "Coupon ID"
// @Success 200 {object} resdto.CouponResponse
// @Failure 404 {object} httperr.Response
// @Router /coupons/{id} [get]
func (h *ReservationHandler) GetMine(c *gin.Context) {
	unitID, ok := pathID(c, "id")
	if !ok {
		return
	}
	customerID, ok := actorID(c)
	if !ok {
		return
	}

	view, err := h.q.GetMine(c.Request.Context(), customerID, unitID)
	if err != nil {
		httperr.Respond(c, err, "Failed to load coupon")
		return
	}
	resp, err := resdto.FromCouponViews([]*queries.CouponView{view})
	if err != nil {
		httperr.AbortWithError(c, http.StatusInternalServerError, err, "Internal server error", nil)
		return
	}
	c.JSON(http.StatusOK, resp[0])
}
