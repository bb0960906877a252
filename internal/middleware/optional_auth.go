package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
)

// OptionalAuth attaches identity when a valid token is present and lets the
// request through anonymously otherwise. Read access is unrestricted; the
// identity only enriches responses (e.g. the caller's liked flag).
func (v *Verifier) OptionalAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
			c.Next()
			return
		}

		claims, err := v.parse(strings.TrimPrefix(authHeader, "Bearer "))
		if err != nil {
			c.Next()
			return
		}
		_ = v.setIdentity(c, claims)
		c.Next()
	}
}

// RequireUser gates mutations on a provisioned account: a valid token whose
// user row does not exist yet (sync not called) cannot mutate.
func RequireUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetString("user_id") == "" {
			c.AbortWithStatusJSON(401, gin.H{"error": "account not provisioned"})
			return
		}
		c.Next()
	}
}
