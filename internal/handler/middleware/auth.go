package middleware

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	HeaderUserID = "X-User-ID"

	ctxUserIDKey = "user_id"
)

// RequireActor identifies the caller from the X-User-ID header. Authentication
// happens upstream; this only parses and propagates the identity.
func RequireActor() gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := strings.TrimSpace(c.GetHeader(HeaderUserID))
		if raw == "" {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error": gin.H{"message": "X-User-ID header required"},
			})
			c.Abort()
			return
		}

		userID, err := uuid.Parse(raw)
		if err != nil || userID == uuid.Nil {
			slog.Warn("Invalid actor header", "value", raw)
			c.JSON(http.StatusUnauthorized, gin.H{
				"error": gin.H{"message": "X-User-ID must be a UUID"},
			})
			c.Abort()
			return
		}

		c.Set(ctxUserIDKey, userID)
		c.Next()
	}
}

func GetUserID(c *gin.Context) (uuid.UUID, bool) {
	userID, exists := c.Get(ctxUserIDKey)
	if !exists {
		return uuid.Nil, false
	}

	id, ok := userID.(uuid.UUID)
	return id, ok
}
