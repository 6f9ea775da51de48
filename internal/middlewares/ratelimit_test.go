package middlewares

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"algoprep/internal/logger"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	logger.InitLogger()
	os.Exit(m.Run())
}

func TestMemoryLimiter_AdmitsUpToLimit(t *testing.T) {
	limiter := NewMemoryLimiter(60, 2, time.Minute)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		allowed, _, err := limiter.Allow(ctx, "u1", WriteBucket)
		require.NoError(t, err)
		assert.True(t, allowed)
	}

	allowed, retryAfter, err := limiter.Allow(ctx, "u1", WriteBucket)
	require.NoError(t, err)
	assert.False(t, allowed)
	assert.Greater(t, retryAfter, time.Duration(0))
}

func TestMemoryLimiter_KeysAreIndependent(t *testing.T) {
	limiter := NewMemoryLimiter(60, 1, time.Minute)
	ctx := context.Background()

	allowed, _, _ := limiter.Allow(ctx, "u1", WriteBucket)
	assert.True(t, allowed)
	allowed, _, _ = limiter.Allow(ctx, "u1", WriteBucket)
	assert.False(t, allowed)

	allowed, _, _ = limiter.Allow(ctx, "u2", WriteBucket)
	assert.True(t, allowed, "another key must have its own window")
}

func TestMemoryLimiter_BucketsAreIndependent(t *testing.T) {
	limiter := NewMemoryLimiter(2, 1, time.Minute)
	ctx := context.Background()

	allowed, _, _ := limiter.Allow(ctx, "u1", WriteBucket)
	assert.True(t, allowed)
	allowed, _, _ = limiter.Allow(ctx, "u1", WriteBucket)
	assert.False(t, allowed)

	allowed, _, _ = limiter.Allow(ctx, "u1", ReadBucket)
	assert.True(t, allowed, "read bucket must not share the write counter")
}

func TestMemoryLimiter_WindowResets(t *testing.T) {
	limiter := NewMemoryLimiter(60, 1, 50*time.Millisecond)
	ctx := context.Background()

	allowed, _, _ := limiter.Allow(ctx, "u1", WriteBucket)
	assert.True(t, allowed)
	allowed, _, _ = limiter.Allow(ctx, "u1", WriteBucket)
	assert.False(t, allowed)

	time.Sleep(60 * time.Millisecond)

	allowed, _, _ = limiter.Allow(ctx, "u1", WriteBucket)
	assert.True(t, allowed, "a fresh window must admit again")
}

func TestRateLimit_ThrottledResponse(t *testing.T) {
	gin.SetMode(gin.TestMode)
	limiter := NewMemoryLimiter(1, 1, time.Minute)

	router := gin.New()
	router.GET("/problems", RateLimit(limiter, ReadBucket), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/problems", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/problems", nil))
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.JSONEq(t, `{"error":"Too many requests"}`, w.Body.String())
	assert.NotEmpty(t, w.Header().Get("Retry-After"))
}

func TestRateLimit_KeysByUserWhenAuthenticated(t *testing.T) {
	gin.SetMode(gin.TestMode)
	limiter := NewMemoryLimiter(1, 1, time.Minute)

	setUser := func(userID string) gin.HandlerFunc {
		return func(c *gin.Context) {
			c.Set(userContextKey, userID)
			c.Next()
		}
	}

	router := gin.New()
	router.GET("/a", setUser("u1"), RateLimit(limiter, ReadBucket), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	router.GET("/b", setUser("u2"), RateLimit(limiter, ReadBucket), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/a", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	// Same client address, different identity: separate window.
	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/b", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/a", nil))
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
}
