package middlewares

import (
	"net/http"
	"strings"

	"algoprep/internal/services"

	"github.com/gin-gonic/gin"
)

const userContextKey = "userID"

func bearerToken(c *gin.Context) (string, bool) {
	header := c.GetHeader("Authorization")
	if header == "" || !strings.HasPrefix(header, "Bearer ") {
		return "", false
	}
	token := strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
	return token, token != ""
}

// RequireAuth enforces a verified bearer identity. The resulting user id is
// the only identity downstream handlers may trust.
func RequireAuth(verifier services.TokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized - Missing token"})
			c.Abort()
			return
		}

		userID, err := verifier.Verify(c.Request.Context(), token)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized - Invalid token"})
			c.Abort()
			return
		}

		c.Set(userContextKey, userID)
		c.Next()
	}
}

// OptionalAuth sets the caller identity when a valid token is present but
// never rejects the request.
func OptionalAuth(verifier services.TokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c)
		if !ok {
			c.Next()
			return
		}

		if userID, err := verifier.Verify(c.Request.Context(), token); err == nil {
			c.Set(userContextKey, userID)
		}

		c.Next()
	}
}

// UserIDFromContext returns the verified caller identity, if any.
func UserIDFromContext(c *gin.Context) (string, bool) {
	userID, ok := c.Value(userContextKey).(string)
	return userID, ok && userID != ""
}
