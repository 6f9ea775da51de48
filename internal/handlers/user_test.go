package handlers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"algoprep/internal/services"
	"algoprep/internal/workerpool"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

type fakeUserRepo struct {
	mu     sync.Mutex
	logged []string
}

func (f *fakeUserRepo) LogUser(ctx context.Context, userID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.logged = append(f.logged, userID)
	return nil
}

func (f *fakeUserRepo) DeleteUser(ctx context.Context, userID string, provider services.IdentityProvider) error {
	if err := provider.DeleteAccount(ctx, userID); err != nil {
		return err
	}
	return nil
}

type fakeIdentity struct {
	deleteErr error
}

func (f *fakeIdentity) Verify(ctx context.Context, token string) (string, error) {
	return "", services.ErrInvalidToken
}

func (f *fakeIdentity) DeleteAccount(ctx context.Context, userID string) error {
	return f.deleteErr
}

type mapCache struct {
	mu    sync.Mutex
	store map[string]map[string]float64
}

func newMapCache() *mapCache {
	return &mapCache{store: make(map[string]map[string]float64)}
}

func (m *mapCache) Get(ctx context.Context, key string, dest interface{}) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	val, ok := m.store[key]
	if !ok {
		return services.ErrCacheMiss
	}
	*dest.(*map[string]float64) = val
	return nil
}

func (m *mapCache) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if progress, ok := value.(map[string]float64); ok {
		m.store[key] = progress
	}
	return nil
}

func (m *mapCache) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.store, key)
	return nil
}

func userRouter(userRepo *fakeUserRepo, completionRepo *fakeCompletionRepo,
	provider *fakeIdentity, cache *mapCache, identity gin.HandlerFunc) *gin.Engine {
	h := NewUserHandler(userRepo, completionRepo, provider, cache)
	router := gin.New()
	router.GET("/api/roadmap-progress", h.GetRoadmapProgress)
	group := router.Group("")
	if identity != nil {
		group.Use(identity)
	}
	group.POST("/log-user", h.LogUser)
	group.POST("/delete-user", h.DeleteUser)
	return router
}

func TestLogUser_RecordsIdentity(t *testing.T) {
	userRepo := &fakeUserRepo{}
	router := userRouter(userRepo, newFakeCompletionRepo(), &fakeIdentity{}, newMapCache(), asUser("u1"))

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/log-user", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"success":true}`, w.Body.String())
	assert.Equal(t, []string{"u1"}, userRepo.logged)
}

func TestLogUser_RequiresIdentity(t *testing.T) {
	router := userRouter(&fakeUserRepo{}, newFakeCompletionRepo(), &fakeIdentity{}, newMapCache(), nil)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/log-user", nil))

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestDeleteUser_DropsCachedProgress(t *testing.T) {
	cache := newMapCache()
	cache.store[workerpool.ProgressCacheKey("u1")] = map[string]float64{"blind75": 50}
	router := userRouter(&fakeUserRepo{}, newFakeCompletionRepo(), &fakeIdentity{}, cache, asUser("u1"))

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/delete-user", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotContains(t, cache.store, workerpool.ProgressCacheKey("u1"))
}

func TestDeleteUser_ProviderFailure(t *testing.T) {
	router := userRouter(&fakeUserRepo{}, newFakeCompletionRepo(),
		&fakeIdentity{deleteErr: errors.New("provider down")}, newMapCache(), asUser("u1"))

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/delete-user", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"error":"Failed to delete account"}`, w.Body.String())
}

func TestGetRoadmapProgress_MissingUserID(t *testing.T) {
	router := userRouter(&fakeUserRepo{}, newFakeCompletionRepo(), &fakeIdentity{}, newMapCache(), nil)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/roadmap-progress", nil))

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetRoadmapProgress_ServedFromCache(t *testing.T) {
	cache := newMapCache()
	cache.store[workerpool.ProgressCacheKey("u1")] = map[string]float64{"blind75": 25}
	router := userRouter(&fakeUserRepo{}, newFakeCompletionRepo(), &fakeIdentity{}, cache, nil)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/roadmap-progress?userId=u1", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"blind75":25}`, w.Body.String())
}

func TestGetRoadmapProgress_FallsBackToStore(t *testing.T) {
	completionRepo := newFakeCompletionRepo()
	completionRepo.progress = map[string]float64{"neetcode150": 10}
	router := userRouter(&fakeUserRepo{}, completionRepo, &fakeIdentity{}, newMapCache(), nil)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/roadmap-progress?userId=u1", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"neetcode150":10}`, w.Body.String())
}
