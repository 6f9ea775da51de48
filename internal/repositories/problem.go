package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"algoprep/internal/logger"
	"algoprep/internal/models"
	"algoprep/internal/services"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
)

const roadmapCacheTTL = 10 * time.Minute

type ProblemRepository interface {
	GetProblems(ctx context.Context) ([]models.Problem, error)
	GetProblemsWithStatus(ctx context.Context, userID string) ([]models.ProblemWithStatus, error)
	GetProblemByID(ctx context.Context, problemID int) (*models.Problem, error)
	GetProblemsByRoadmap(ctx context.Context, roadmap string) ([]models.Problem, error)
	CreateProblem(ctx context.Context, problem *models.Problem) error
	UpdateProblem(ctx context.Context, problem *models.Problem) error
	DeleteProblem(ctx context.Context, problemID int) error
}

type problemRepository struct {
	db    *sqlx.DB
	cache services.Cache
}

func NewProblemRepository(db *sqlx.DB, cache services.Cache) ProblemRepository {
	return &problemRepository{db: db, cache: cache}
}

const problemColumns = `id, title, difficulty, category, roadmap, roadmap_position,
       subcategory, subcategory_order, description, solution, explanation, yt_link`

func (r *problemRepository) GetProblems(ctx context.Context) ([]models.Problem, error) {
	query := `SELECT ` + problemColumns + ` FROM problems ORDER BY id`

	problems := []models.Problem{}
	if err := r.db.SelectContext(ctx, &problems, query); err != nil {
		return nil, fmt.Errorf("failed to get problems: %w", err)
	}
	return problems, nil
}

func (r *problemRepository) GetProblemsWithStatus(ctx context.Context, userID string) ([]models.ProblemWithStatus, error) {
	query := `SELECT ` + problemColumns + `,
       EXISTS(
         SELECT 1 FROM completed_problems
         WHERE user_id = $1 AND problem_id = problems.id
       ) AS completed
       FROM problems ORDER BY id`

	problems := []models.ProblemWithStatus{}
	if err := r.db.SelectContext(ctx, &problems, query, userID); err != nil {
		return nil, fmt.Errorf("failed to get problems with status: %w", err)
	}
	return problems, nil
}

func (r *problemRepository) GetProblemByID(ctx context.Context, problemID int) (*models.Problem, error) {
	query := `SELECT ` + problemColumns + ` FROM problems WHERE id = $1`

	var problem models.Problem
	if err := r.db.GetContext(ctx, &problem, query, problemID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("problem not found: %d", problemID)
		}
		return nil, fmt.Errorf("failed to get problem: %w", err)
	}
	return &problem, nil
}

func (r *problemRepository) GetProblemsByRoadmap(ctx context.Context, roadmap string) ([]models.Problem, error) {
	roadmap = strings.ToLower(roadmap)
	cacheKey := roadmapCacheKey(roadmap)

	problems := []models.Problem{}
	if err := r.cache.Get(ctx, cacheKey, &problems); err == nil {
		return problems, nil
	}

	query := `SELECT ` + problemColumns + ` FROM problems WHERE roadmap = $1 ORDER BY id`
	if err := r.db.SelectContext(ctx, &problems, query, roadmap); err != nil {
		return nil, fmt.Errorf("failed to get roadmap problems: %w", err)
	}

	if err := r.cache.Set(ctx, cacheKey, problems, roadmapCacheTTL); err != nil {
		logger.Log.Warn("Failed to cache roadmap problems",
			zap.String("roadmap", roadmap),
			zap.Error(err))
	}
	return problems, nil
}

func (r *problemRepository) CreateProblem(ctx context.Context, p *models.Problem) error {
	query := `INSERT INTO problems (
        id, title, difficulty, category, roadmap, roadmap_position,
        subcategory, subcategory_order, description, solution, explanation, yt_link
    ) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`

	_, err := r.db.ExecContext(ctx, query,
		p.ID, p.Title, p.Difficulty, p.Category, p.Roadmap, p.RoadmapPosition,
		p.Subcategory, p.SubcategoryOrder, p.Description, p.Solution, p.Explanation, p.YtLink,
	)
	if err != nil {
		return fmt.Errorf("failed to insert problem: %w", err)
	}

	r.invalidateRoadmap(ctx, p.Roadmap)
	return nil
}

func (r *problemRepository) UpdateProblem(ctx context.Context, p *models.Problem) error {
	query := `UPDATE problems SET
        title = $1,
        difficulty = $2,
        category = $3,
        roadmap = $4,
        roadmap_position = $5,
        subcategory = $6,
        subcategory_order = $7,
        description = $8,
        solution = $9,
        explanation = $10,
        yt_link = $11
    WHERE id = $12`

	result, err := r.db.ExecContext(ctx, query,
		p.Title, p.Difficulty, p.Category, p.Roadmap, p.RoadmapPosition,
		p.Subcategory, p.SubcategoryOrder, p.Description, p.Solution, p.Explanation, p.YtLink,
		p.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update problem: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read update result: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("problem not found: %d", p.ID)
	}

	r.invalidateRoadmap(ctx, p.Roadmap)
	return nil
}

func (r *problemRepository) DeleteProblem(ctx context.Context, problemID int) error {
	var roadmap string
	if err := r.db.GetContext(ctx, &roadmap, `SELECT roadmap FROM problems WHERE id = $1`, problemID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("problem not found: %d", problemID)
		}
		return fmt.Errorf("failed to look up problem: %w", err)
	}

	result, err := r.db.ExecContext(ctx, `DELETE FROM problems WHERE id = $1`, problemID)
	if err != nil {
		return fmt.Errorf("failed to delete problem: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read delete result: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("problem not found: %d", problemID)
	}

	r.invalidateRoadmap(ctx, roadmap)
	return nil
}

func (r *problemRepository) invalidateRoadmap(ctx context.Context, roadmap string) {
	if err := r.cache.Delete(ctx, roadmapCacheKey(strings.ToLower(roadmap))); err != nil {
		logger.Log.Warn("Failed to invalidate roadmap cache",
			zap.String("roadmap", roadmap),
			zap.Error(err))
	}
}

func roadmapCacheKey(roadmap string) string {
	return "roadmap_problems:" + roadmap
}
