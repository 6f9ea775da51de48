package repositories

import (
	"context"
	"fmt"

	"algoprep/internal/services"

	"github.com/jmoiron/sqlx"
)

type UserRepository interface {
	LogUser(ctx context.Context, userID string) error
	DeleteUser(ctx context.Context, userID string, provider services.IdentityProvider) error
}

type userRepository struct {
	db *sqlx.DB
}

func NewUserRepository(db *sqlx.DB) UserRepository {
	return &userRepository{db: db}
}

// LogUser records the identity on first login. Re-login is a no-op.
func (r *userRepository) LogUser(ctx context.Context, userID string) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO users (id) VALUES ($1) ON CONFLICT (id) DO NOTHING`, userID)
	if err != nil {
		return fmt.Errorf("failed to log user: %w", err)
	}
	return nil
}

// DeleteUser removes the user's completion records and the user row in one
// transaction, with the identity-provider deletion inside the boundary: if
// the provider refuses, the local rows survive. A local record pointing at a
// live provider account is recoverable; the reverse is not.
func (r *userRepository) DeleteUser(ctx context.Context, userID string, provider services.IdentityProvider) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin user deletion: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM completed_problems WHERE user_id = $1`, userID); err != nil {
		return fmt.Errorf("failed to delete completion records: %w", err)
	}

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM users WHERE id = $1`, userID); err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}

	if err := provider.DeleteAccount(ctx, userID); err != nil {
		return fmt.Errorf("identity deletion failed, rolling back: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit user deletion: %w", err)
	}
	return nil
}
