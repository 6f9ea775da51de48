package handlers

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"algoprep/internal/logger"
	"algoprep/internal/middlewares"
	"algoprep/internal/models"
	"algoprep/internal/repositories"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type ProblemHandler struct {
	problemRepo repositories.ProblemRepository
}

// NewProblemHandler creates a new problem handler
func NewProblemHandler(problemRepo repositories.ProblemRepository) *ProblemHandler {
	return &ProblemHandler{
		problemRepo: problemRepo,
	}
}

// GetProblems returns the full catalog, annotated with the caller's
// completion flag when a verified identity is present.
func (h *ProblemHandler) GetProblems(c *gin.Context) {
	if userID, ok := middlewares.UserIDFromContext(c); ok {
		problems, err := h.problemRepo.GetProblemsWithStatus(context.Background(), userID)
		if err != nil {
			logger.Log.Error("Failed to get problems", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve problems"})
			return
		}
		c.JSON(http.StatusOK, problems)
		return
	}

	problems, err := h.problemRepo.GetProblems(context.Background())
	if err != nil {
		logger.Log.Error("Failed to get problems", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve problems"})
		return
	}
	c.JSON(http.StatusOK, problems)
}

// GetProblemByID returns a single problem or 404
func (h *ProblemHandler) GetProblemByID(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid problem ID"})
		return
	}

	problem, err := h.problemRepo.GetProblemByID(context.Background(), id)
	if err != nil {
		if strings.Contains(err.Error(), "not found") {
			c.JSON(http.StatusNotFound, gin.H{"error": "Problem not found"})
			return
		}
		logger.Log.Error("Failed to get problem",
			zap.Int("problem_id", id),
			zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve problem details"})
		return
	}

	c.JSON(http.StatusOK, problem)
}

// GetProblemsByRoadmap returns the problems for one roadmap, matched
// case-insensitively.
func (h *ProblemHandler) GetProblemsByRoadmap(c *gin.Context) {
	roadmap := c.Param("roadmap")

	problems, err := h.problemRepo.GetProblemsByRoadmap(context.Background(), roadmap)
	if err != nil {
		logger.Log.Error("Failed to get roadmap problems",
			zap.String("roadmap", roadmap),
			zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve problems"})
		return
	}

	c.JSON(http.StatusOK, problems)
}

// CreateProblem inserts a new catalog entry. Admin gated.
func (h *ProblemHandler) CreateProblem(c *gin.Context) {
	var req models.AdminProblemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request payload"})
		return
	}

	if err := h.problemRepo.CreateProblem(context.Background(), &req.Problem); err != nil {
		logger.Log.Error("Failed to insert problem",
			zap.Int("problem_id", req.Problem.ID),
			zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Insert failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

// UpdateProblem rewrites a catalog entry's fields. Admin gated.
func (h *ProblemHandler) UpdateProblem(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid problem ID"})
		return
	}

	var req models.AdminProblemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request payload"})
		return
	}
	req.Problem.ID = id

	if err := h.problemRepo.UpdateProblem(context.Background(), &req.Problem); err != nil {
		if strings.Contains(err.Error(), "not found") {
			c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
			return
		}
		logger.Log.Error("Failed to update problem",
			zap.Int("problem_id", id),
			zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Update failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

// DeleteProblem removes a catalog entry. Admin gated.
func (h *ProblemHandler) DeleteProblem(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid problem ID"})
		return
	}

	if err := h.problemRepo.DeleteProblem(context.Background(), id); err != nil {
		if strings.Contains(err.Error(), "not found") {
			c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
			return
		}
		logger.Log.Error("Failed to delete problem",
			zap.Int("problem_id", id),
			zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Delete failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}
