package middlewares

import (
	"bytes"
	"crypto/subtle"
	"encoding/json"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
)

// RequireAdminKey gates catalog writes behind the shared admin secret. The
// secretKey field is removed from the body before the handler binds it, so
// the secret can never reach persistence by accident.
func RequireAdminKey(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		body, err := io.ReadAll(c.Request.Body)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request payload"})
			c.Abort()
			return
		}

		var payload map[string]json.RawMessage
		if err := json.Unmarshal(body, &payload); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request payload"})
			c.Abort()
			return
		}

		var suppliedKey string
		if raw, ok := payload["secretKey"]; ok {
			_ = json.Unmarshal(raw, &suppliedKey)
		}

		if subtle.ConstantTimeCompare([]byte(suppliedKey), []byte(secret)) != 1 {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid secret key"})
			c.Abort()
			return
		}

		delete(payload, "secretKey")
		stripped, err := json.Marshal(payload)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
			c.Abort()
			return
		}

		c.Request.Body = io.NopCloser(bytes.NewReader(stripped))
		c.Request.ContentLength = int64(len(stripped))
		c.Next()
	}
}
