package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	sr "github.com/example/hamprep/internal/spaced_repetition"
	"github.com/example/hamprep/pkg/models"
)

const progressColumns = `id, user_id, question_id, ease_factor, interval_days, consecutive_correct,
	next_review_date, is_mastered, times_correct, times_incorrect, last_attempted_at,
	created_at, updated_at`

// UserProgressRepository handles database operations for user progress
type UserProgressRepository struct {
	db *sqlx.DB
}

// NewUserProgressRepository creates a new repository instance
func NewUserProgressRepository(db *sqlx.DB) *UserProgressRepository {
	return &UserProgressRepository{db: db}
}

// GetByUserAndQuestion returns progress for a specific user and question
func (r *UserProgressRepository) GetByUserAndQuestion(ctx context.Context, userID, questionID string) (*models.UserProgress, error) {
	var progress models.UserProgress
	query := r.db.Rebind(`SELECT ` + progressColumns + ` FROM user_progress WHERE user_id = ? AND question_id = ?`)
	err := r.db.GetContext(ctx, &progress, query, userID, questionID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, models.ErrProgressNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user progress: %w", err)
	}
	return &progress, nil
}

// GetByUser returns every progress row of a user
func (r *UserProgressRepository) GetByUser(ctx context.Context, userID string) ([]models.UserProgress, error) {
	var progress []models.UserProgress
	query := r.db.Rebind(`SELECT ` + progressColumns + ` FROM user_progress WHERE user_id = ? ORDER BY question_id`)
	if err := r.db.SelectContext(ctx, &progress, query, userID); err != nil {
		return nil, fmt.Errorf("failed to get user progress: %w", err)
	}
	return progress, nil
}

// Apply runs a read-modify-write of one progress row inside a single
// transaction. The row is created with default scheduling values when
// missing, locked (postgres) or serialized by the single sqlite connection,
// passed to fn, and the returned record is written back. fn must not touch
// the database.
func (r *UserProgressRepository) Apply(
	ctx context.Context,
	userID, questionID string,
	fn func(current models.UserProgress) (*models.UserProgress, error),
) (*models.UserProgress, error) {
	var result *models.UserProgress

	err := withinTx(ctx, r.db, func(tx *sqlx.Tx) error {
		now := dbTime(time.Now())
		insert := tx.Rebind(`
			INSERT INTO user_progress (id, user_id, question_id, ease_factor, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?)
			ON CONFLICT (user_id, question_id) DO NOTHING
		`)
		if _, err := tx.ExecContext(ctx, insert, uuid.NewString(), userID, questionID, sr.DefaultEaseFactor, now, now); err != nil {
			return fmt.Errorf("failed to create user progress: %w", err)
		}

		query := `SELECT ` + progressColumns + ` FROM user_progress WHERE user_id = ? AND question_id = ?`
		if r.db.DriverName() == "postgres" {
			query += ` FOR UPDATE`
		}
		var current models.UserProgress
		if err := tx.GetContext(ctx, &current, tx.Rebind(query), userID, questionID); err != nil {
			return fmt.Errorf("failed to load user progress: %w", err)
		}

		next, err := fn(current)
		if err != nil {
			return err
		}

		update := tx.Rebind(`
			UPDATE user_progress SET
				ease_factor = ?,
				interval_days = ?,
				consecutive_correct = ?,
				next_review_date = ?,
				is_mastered = ?,
				times_correct = ?,
				times_incorrect = ?,
				last_attempted_at = ?,
				updated_at = ?
			WHERE id = ?
		`)
		_, err = tx.ExecContext(ctx, update,
			next.EaseFactor,
			next.Interval,
			next.ConsecutiveCorrect,
			dbTimePtr(next.NextReviewDate),
			next.IsMastered,
			next.TimesCorrect,
			next.TimesIncorrect,
			dbTimePtr(next.LastAttemptedAt),
			now,
			current.ID,
		)
		if err != nil {
			return fmt.Errorf("failed to update user progress: %w", err)
		}

		next.ID = current.ID
		next.CreatedAt = current.CreatedAt
		next.UpdatedAt = now
		result = next
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}
