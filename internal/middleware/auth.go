package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"boardsync/internal/auth"
)

const ctxKeyUserID = "authUserID"

// UserIDFromContext returns the user id RequireAuth stored for this
// request.
func UserIDFromContext(c *gin.Context) (string, bool) {
	value, ok := c.Get(ctxKeyUserID)
	if !ok {
		return "", false
	}
	userID, ok := value.(string)
	return userID, ok && userID != ""
}

// RequireAuth verifies the bearer credential (header or token query
// parameter) and stores the authenticated user id on the context.
func RequireAuth(cfg auth.TokenConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := auth.TokenFromRequest(c.Request)
		if tokenString == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
			c.Abort()
			return
		}

		claims, err := auth.VerifyToken(tokenString, cfg)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			c.Abort()
			return
		}

		c.Set(ctxKeyUserID, claims.UserID)
		c.Next()
	}
}
