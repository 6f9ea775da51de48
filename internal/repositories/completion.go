package repositories

import (
	"context"
	"fmt"
	"strconv"

	"algoprep/internal/logger"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
)

type CompletionRepository interface {
	Toggle(ctx context.Context, userID string, problemID int) (bool, error)
	BatchSync(ctx context.Context, userID string, changes map[string]bool) error
	ResetProgress(ctx context.Context, userID string) error
	GetCompletedProblemIDs(ctx context.Context, userID string) ([]int, error)
	RoadmapProgress(ctx context.Context, userID string) (map[string]float64, error)
}

type completionRepository struct {
	db *sqlx.DB
}

func NewCompletionRepository(db *sqlx.DB) CompletionRepository {
	return &completionRepository{db: db}
}

// Toggle flips the presence of the (user, problem) relation in one statement.
// The delete attempt runs first; the insert only fires when the delete matched
// nothing, so concurrent callers serialize through the row lock and the pair
// ends up exactly present or absent, never duplicated.
func (r *completionRepository) Toggle(ctx context.Context, userID string, problemID int) (bool, error) {
	query := `
        WITH
        delete_attempt AS (
            DELETE FROM completed_problems
            WHERE user_id = $1 AND problem_id = $2
            RETURNING 'deleted' AS action
        ),
        insert_attempt AS (
            INSERT INTO completed_problems (user_id, problem_id)
            SELECT $1, $2
            WHERE NOT EXISTS (SELECT 1 FROM delete_attempt)
            RETURNING 'inserted' AS action
        )
        SELECT * FROM delete_attempt
        UNION ALL
        SELECT * FROM insert_attempt`

	var action string
	if err := r.db.GetContext(ctx, &action, query, userID, problemID); err != nil {
		return false, fmt.Errorf("failed to toggle completion: %w", err)
	}

	return action == "inserted", nil
}

// BatchSync drives each entry to its desired state independently. Entries
// with non-numeric keys are skipped. Each statement commits on its own, so a
// failure partway through leaves earlier entries applied.
func (r *completionRepository) BatchSync(ctx context.Context, userID string, changes map[string]bool) error {
	for key, completed := range changes {
		problemID, err := strconv.Atoi(key)
		if err != nil {
			logger.Log.Warn("Skipping non-numeric problem id in batch sync",
				zap.String("user_id", userID),
				zap.String("key", key))
			continue
		}

		if completed {
			_, err = r.db.ExecContext(ctx,
				`INSERT INTO completed_problems (user_id, problem_id)
                 VALUES ($1, $2)
                 ON CONFLICT (user_id, problem_id) DO NOTHING`,
				userID, problemID)
		} else {
			_, err = r.db.ExecContext(ctx,
				`DELETE FROM completed_problems WHERE user_id = $1 AND problem_id = $2`,
				userID, problemID)
		}
		if err != nil {
			return fmt.Errorf("failed to sync completion for problem %d: %w", problemID, err)
		}
	}
	return nil
}

func (r *completionRepository) ResetProgress(ctx context.Context, userID string) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM completed_problems WHERE user_id = $1`, userID)
	if err != nil {
		return fmt.Errorf("failed to reset progress: %w", err)
	}
	return nil
}

func (r *completionRepository) GetCompletedProblemIDs(ctx context.Context, userID string) ([]int, error) {
	problemIDs := []int{}
	err := r.db.SelectContext(ctx, &problemIDs,
		`SELECT problem_id FROM completed_problems WHERE user_id = $1 ORDER BY problem_id`,
		userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get completed problems: %w", err)
	}
	return problemIDs, nil
}

func (r *completionRepository) RoadmapProgress(ctx context.Context, userID string) (map[string]float64, error) {
	query := `
        SELECT p.roadmap,
               COUNT(*) AS total,
               COUNT(cp.problem_id) AS completed
        FROM problems p
        LEFT JOIN completed_problems cp
            ON cp.problem_id = p.id AND cp.user_id = $1
        GROUP BY p.roadmap`

	rows := []struct {
		Roadmap   string `db:"roadmap"`
		Total     int    `db:"total"`
		Completed int    `db:"completed"`
	}{}
	if err := r.db.SelectContext(ctx, &rows, query, userID); err != nil {
		return nil, fmt.Errorf("failed to get roadmap progress: %w", err)
	}

	progress := make(map[string]float64, len(rows))
	for _, row := range rows {
		if row.Total == 0 {
			progress[row.Roadmap] = 0
			continue
		}
		progress[row.Roadmap] = float64(row.Completed) / float64(row.Total) * 100
	}
	return progress, nil
}
