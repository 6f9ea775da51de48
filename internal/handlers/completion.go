package handlers

import (
	"context"
	"net/http"

	"algoprep/internal/logger"
	"algoprep/internal/middlewares"
	"algoprep/internal/models"
	"algoprep/internal/repositories"
	"algoprep/internal/workerpool"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type CompletionHandler struct {
	completionRepo repositories.CompletionRepository
	notifier       workerpool.ProgressNotifier
}

func NewCompletionHandler(completionRepo repositories.CompletionRepository,
	notifier workerpool.ProgressNotifier) *CompletionHandler {
	return &CompletionHandler{
		completionRepo: completionRepo,
		notifier:       notifier,
	}
}

// ToggleComplete flips a single completion record.
//
// Deprecated contract: the body may carry userId for clients that predate
// bearer auth on this route. A verified identity always wins over the body,
// so an authenticated caller cannot toggle someone else's state.
//
// Store calls run on a background context: once a toggle starts it finishes
// even if the client goes away.
func (h *CompletionHandler) ToggleComplete(c *gin.Context) {
	var req models.ToggleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request payload"})
		return
	}

	userID, ok := middlewares.UserIDFromContext(c)
	if !ok {
		userID = req.UserID
	}
	if userID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "userId is required"})
		return
	}

	completed, err := h.completionRepo.Toggle(context.Background(), userID, req.ProblemID)
	if err != nil {
		logger.Log.Error("Failed to toggle completion",
			zap.String("user_id", userID),
			zap.Int("problem_id", req.ProblemID),
			zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to toggle completion"})
		return
	}

	h.notifier.Notify(context.Background(), userID)
	c.JSON(http.StatusOK, gin.H{"completed": completed})
}

// BatchToggleComplete drives each entry of the map to its desired state.
// Entries are applied independently; a failure partway through leaves the
// earlier entries in place.
func (h *CompletionHandler) BatchToggleComplete(c *gin.Context) {
	userID, ok := middlewares.UserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized - Missing token"})
		return
	}

	var req models.BatchToggleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request payload"})
		return
	}

	if err := h.completionRepo.BatchSync(context.Background(), userID, req.Changes); err != nil {
		logger.Log.Error("Batch sync failed partway",
			zap.String("user_id", userID),
			zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to sync completions"})
		return
	}

	h.notifier.Notify(context.Background(), userID)
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// ResetProgress clears the caller's completions. Deleting nothing is still
// success.
func (h *CompletionHandler) ResetProgress(c *gin.Context) {
	userID, ok := middlewares.UserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized - Missing token"})
		return
	}

	if err := h.completionRepo.ResetProgress(context.Background(), userID); err != nil {
		logger.Log.Error("Failed to reset progress",
			zap.String("user_id", userID),
			zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to reset progress"})
		return
	}

	h.notifier.Notify(context.Background(), userID)
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// GetCompletedProblems lists the problem ids the caller has completed.
func (h *CompletionHandler) GetCompletedProblems(c *gin.Context) {
	userID, ok := middlewares.UserIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized - Missing token"})
		return
	}

	problemIDs, err := h.completionRepo.GetCompletedProblemIDs(context.Background(), userID)
	if err != nil {
		logger.Log.Error("Failed to get completed problems",
			zap.String("user_id", userID),
			zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve completed problems"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"problem_ids": problemIDs})
}
