package middlewares

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func adminTestRouter(secret string, captured *map[string]interface{}) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.POST("/admin/post", RequireAdminKey(secret), func(c *gin.Context) {
		body, _ := io.ReadAll(c.Request.Body)
		_ = json.Unmarshal(body, captured)
		c.JSON(http.StatusOK, gin.H{"success": true})
	})
	return router
}

func TestRequireAdminKey_WrongKey(t *testing.T) {
	var captured map[string]interface{}
	router := adminTestRouter("right", &captured)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/admin/post",
		strings.NewReader(`{"secretKey":"wrong","problem":{"id":1}}`))
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.JSONEq(t, `{"error":"Invalid secret key"}`, w.Body.String())
	assert.Nil(t, captured)
}

func TestRequireAdminKey_MissingKey(t *testing.T) {
	var captured map[string]interface{}
	router := adminTestRouter("right", &captured)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/admin/post",
		strings.NewReader(`{"problem":{"id":1}}`))
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Nil(t, captured)
}

func TestRequireAdminKey_StripsSecretBeforeHandler(t *testing.T) {
	var captured map[string]interface{}
	router := adminTestRouter("right", &captured)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/admin/post",
		strings.NewReader(`{"secretKey":"right","problem":{"id":1,"title":"Two Sum"}}`))
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, captured)
	_, hasSecret := captured["secretKey"]
	assert.False(t, hasSecret, "secretKey must not reach the handler")
	assert.Contains(t, captured, "problem")
}

func TestRequireAdminKey_MalformedBody(t *testing.T) {
	var captured map[string]interface{}
	router := adminTestRouter("right", &captured)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/admin/post", strings.NewReader("not json"))
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}
