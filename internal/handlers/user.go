package handlers

import (
	"context"
	"net/http"

	"algoprep/internal/logger"
	"algoprep/internal/middlewares"
	"algoprep/internal/repositories"
	"algoprep/internal/services"
	"algoprep/internal/workerpool"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type UserHandler struct {
	userRepo       repositories.UserRepository
	completionRepo repositories.CompletionRepository
	provider       services.IdentityProvider
	cache          services.Cache
}

func NewUserHandler(userRepo repositories.UserRepository,
	completionRepo repositories.CompletionRepository,
	provider services.IdentityProvider, cache services.Cache) *UserHandler {
	return &UserHandler{
		userRepo:       userRepo,
		completionRepo: completionRepo,
		provider:       provider,
		cache:          cache,
	}
}

// LogUser records the caller's identity on first login. Safe to call on
// every login.
func (h *UserHandler) LogUser(c *gin.Context) {
	userID, ok := middlewares.UserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized - Missing token"})
		return
	}

	if err := h.userRepo.LogUser(context.Background(), userID); err != nil {
		logger.Log.Error("Failed to log user",
			zap.String("user_id", userID),
			zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to log user"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

// DeleteUser removes the caller's account: completion records and user row
// in one transaction, identity-provider account inside the same boundary.
func (h *UserHandler) DeleteUser(c *gin.Context) {
	userID, ok := middlewares.UserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized - Missing token"})
		return
	}

	if err := h.userRepo.DeleteUser(context.Background(), userID, h.provider); err != nil {
		logger.Log.Error("Failed to delete user",
			zap.String("user_id", userID),
			zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete account"})
		return
	}

	if err := h.cache.Delete(context.Background(), workerpool.ProgressCacheKey(userID)); err != nil {
		logger.Log.Warn("Failed to drop cached progress",
			zap.String("user_id", userID),
			zap.Error(err))
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

// GetRoadmapProgress returns percent complete per roadmap for the requested
// user. Served from the worker-maintained cache when possible.
func (h *UserHandler) GetRoadmapProgress(c *gin.Context) {
	userID := c.Query("userId")
	if userID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "userId is required"})
		return
	}

	progress := map[string]float64{}
	if err := h.cache.Get(context.Background(), workerpool.ProgressCacheKey(userID), &progress); err == nil {
		c.JSON(http.StatusOK, progress)
		return
	}

	progress, err := h.completionRepo.RoadmapProgress(context.Background(), userID)
	if err != nil {
		logger.Log.Error("Failed to get roadmap progress",
			zap.String("user_id", userID),
			zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve progress"})
		return
	}

	c.JSON(http.StatusOK, progress)
}
