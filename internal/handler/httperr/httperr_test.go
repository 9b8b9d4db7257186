//go:build unit

package httperr_test

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"coupon-marketplace/internal/domain/offer"
	"coupon-marketplace/internal/handler/httperr"
	"coupon-marketplace/internal/pkg/errs"
	"coupon-marketplace/internal/usecase/commands"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestStatusOf(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want int
	}{
		{name: "not found", err: commands.ErrOfferNotFound, want: http.StatusNotFound},
		{name: "invalid state", err: offer.ErrOfferNotActive, want: http.StatusConflict},
		{name: "conflict", err: commands.ErrSoldOut, want: http.StatusConflict},
		{name: "policy violation", err: offer.ErrEditWindowExpired, want: http.StatusUnprocessableEntity},
		{name: "validation", err: offer.ErrEmptyTitle, want: http.StatusBadRequest},
		{name: "wrapped category survives", err: errs.Wrap(commands.ErrSoldOut, "reserve"), want: http.StatusConflict},
		{name: "infrastructure", err: errs.Mark(errors.New("io"), errs.ErrDatabaseOperationFailed), want: http.StatusInternalServerError},
		{name: "plain error", err: errors.New("boom"), want: http.StatusInternalServerError},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, httperr.StatusOf(tc.err))
		})
	}
}

func TestRespond(t *testing.T) {
	gin.SetMode(gin.TestMode)

	run := func(err error) *httptest.ResponseRecorder {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		httperr.Respond(c, err, "Something failed")
		return w
	}

	w := run(commands.ErrSoldOut)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.JSONEq(t, `{"error":{"message":"offer is sold out"}}`, w.Body.String())

	w = run(errors.New("pq: password authentication failed"))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"error":{"message":"Something failed"}}`, w.Body.String())
}
