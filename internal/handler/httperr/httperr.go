package httperr

import (
	"net/http"

	"coupon-marketplace/internal/pkg/errs"

	"github.com/gin-gonic/gin"
)

type Response struct {
	Status int `json:"-"`
	Error  struct {
		Message string `json:"message"`
	} `json:"error"`
	Detail any `json:"detail,omitempty"`
}

// preserves original error for future monitoring
func AbortWithError(c *gin.Context, status int, err error, msg string, detail any) {
	if err == nil {
		panic("AbortWithError: err cannot be nil")
	}

	resp := Response{Status: status}
	resp.Error.Message = msg
	resp.Detail = detail

	_ = c.Error(gin.Error{
		Err:  err,
		Type: gin.ErrorTypePublic,
		Meta: resp,
	})
	c.AbortWithStatusJSON(status, resp)
}

// StatusOf maps an error category to its HTTP status.
func StatusOf(err error) int {
	switch {
	case errs.Is(err, errs.ErrNotFound):
		return http.StatusNotFound
	case errs.Is(err, errs.ErrInvalidState), errs.Is(err, errs.ErrConflict):
		return http.StatusConflict
	case errs.Is(err, errs.ErrPolicyViolation):
		return http.StatusUnprocessableEntity
	case errs.Is(err, errs.ErrValidation):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// Respond aborts with the status of err's category. Categorized errors expose
// their own message; anything else is reported with fallback only.
func Respond(c *gin.Context, err error, fallback string) {
	status := StatusOf(err)
	msg := fallback
	if status != http.StatusInternalServerError {
		msg = err.Error()
	}
	AbortWithError(c, status, err, msg, nil)
}
