package middleware

import (
	"github.com/gin-gonic/gin"
)

// UserIDKey is the gin context key the identity middleware populates.
const UserIDKey = "user_id"

// AnonymousUser is the fallback identity when no x-user-id header is sent.
const AnonymousUser = "anonymous"

// Identity resolves the caller's user id from the x-user-id header. There is
// no authentication; the id is a self-reported anonymous identifier.
func Identity() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetHeader("x-user-id")
		if userID == "" {
			userID = AnonymousUser
		}
		c.Set(UserIDKey, userID)
		c.Next()
	}
}

// UserID returns the identity resolved for this request.
func UserID(c *gin.Context) string {
	return c.GetString(UserIDKey)
}
