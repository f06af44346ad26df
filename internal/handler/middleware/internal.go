package middleware

import (
	"crypto/subtle"
	"net/http"

	"github.com/gin-gonic/gin"
)

const internalTokenHeader = "X-Internal-Token"

// RequireInternalToken gates operator-only routes behind a shared secret.
// An empty configured token fails closed; the in-process reaper never goes
// through HTTP so nothing breaks when the token is unset.
func RequireInternalToken(token string) gin.HandlerFunc {
	return func(c *gin.Context) {
		provided := c.GetHeader(internalTokenHeader)
		if token == "" || subtle.ConstantTimeCompare([]byte(provided), []byte(token)) != 1 {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error": "Invalid internal token",
			})
			c.Abort()
			return
		}
		c.Next()
	}
}
