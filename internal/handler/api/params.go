package api

import (
	"net/http"

	"coupon-marketplace/internal/handler/httperr"
	"coupon-marketplace/internal/handler/middleware"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

func pathID(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid "+name+" format", nil)
		return uuid.Nil, false
	}
	return id, true
}

func actorID(c *gin.Context) (uuid.UUID, bool) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		// Unexpected error: should be used after RequireActor()
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": gin.H{"message": "Internal server error"},
		})
		c.Abort()
		return uuid.Nil, false
	}
	return userID, true
}
