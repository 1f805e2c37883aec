package middleware

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/letterwriter/letterwriter/internal/tokens"
)

// Verifier is the minimal interface the middleware depends on
type Verifier interface {
	VerifyToken(raw string) (*tokens.Claims, error)
}

// Context keys populated by AuthMiddleware on success.
const (
	ContextUserID = "userId"
	ContextEmail  = "email"
)

// AuthMiddleware returns a Gin middleware that verifies Bearer session tokens
// using the provided verifier. Requests without a credential are rejected
// with 401, requests with an invalid or expired credential with 403; either
// way the handler (and thus the store) is never reached.
func AuthMiddleware(ver Verifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		auth := c.GetHeader("Authorization")
		if auth == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Authentication required"})
			return
		}
		// Expect 'Bearer <token>'
		var token string
		if n, _ := fmt.Sscanf(auth, "Bearer %s", &token); n != 1 {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Authentication required"})
			return
		}

		claims, err := ver.VerifyToken(token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"message": "Invalid token"})
			return
		}

		c.Set(ContextUserID, claims.UserID)
		c.Set(ContextEmail, claims.Email)
		c.Next()
	}
}

// UserID extracts the authenticated user id set by AuthMiddleware.
func UserID(c *gin.Context) string {
	v, _ := c.Get(ContextUserID)
	s, _ := v.(string)
	return s
}
