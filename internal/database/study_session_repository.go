package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/example/hamprep/pkg/models"
)

const sessionColumns = `id, user_id, session_type, questions_attempted, questions_correct,
	started_at, completed_at, score, passed`

// StudySessionRepository handles database operations for study sessions and
// practice test results
type StudySessionRepository struct {
	db *sqlx.DB
}

// NewStudySessionRepository creates a new repository instance
func NewStudySessionRepository(db *sqlx.DB) *StudySessionRepository {
	return &StudySessionRepository{db: db}
}

// Create inserts a new session. ID and StartedAt are filled in when empty.
func (r *StudySessionRepository) Create(ctx context.Context, s *models.StudySession) error {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	if s.StartedAt.IsZero() {
		s.StartedAt = time.Now()
	}

	query := r.db.Rebind(`
		INSERT INTO study_sessions (
			id, user_id, session_type, questions_attempted, questions_correct, started_at
		) VALUES (?, ?, ?, ?, ?, ?)
	`)
	_, err := r.db.ExecContext(ctx, query,
		s.ID, s.UserID, s.SessionType, s.QuestionsAttempted, s.QuestionsCorrect, dbTime(s.StartedAt))
	if err != nil {
		return fmt.Errorf("failed to create study session: %w", err)
	}
	return nil
}

// CompleteTest records the outcome of a practice test
func (r *StudySessionRepository) CompleteTest(ctx context.Context, id string, attempted, correct, score int, passed bool, completedAt time.Time) error {
	query := r.db.Rebind(`
		UPDATE study_sessions SET
			questions_attempted = ?,
			questions_correct = ?,
			score = ?,
			passed = ?,
			completed_at = ?
		WHERE id = ?
	`)
	res, err := r.db.ExecContext(ctx, query, attempted, correct, score, passed, dbTime(completedAt), id)
	if err != nil {
		return fmt.Errorf("failed to complete study session: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: %s", models.ErrSessionNotFound, id)
	}
	return nil
}

// GetByUser returns the latest sessions of a user, newest first. A limit <= 0
// returns all of them.
func (r *StudySessionRepository) GetByUser(ctx context.Context, userID string, limit int) ([]models.StudySession, error) {
	query := `SELECT ` + sessionColumns + ` FROM study_sessions WHERE user_id = ? ORDER BY started_at DESC`
	args := []any{userID}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	var sessions []models.StudySession
	if err := r.db.SelectContext(ctx, &sessions, r.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("failed to get study sessions: %w", err)
	}
	return sessions, nil
}

// GetStartDates returns when each of the user's sessions started, newest first
func (r *StudySessionRepository) GetStartDates(ctx context.Context, userID string) ([]time.Time, error) {
	var dates []time.Time
	query := r.db.Rebind(`SELECT started_at FROM study_sessions WHERE user_id = ? ORDER BY started_at DESC`)
	if err := r.db.SelectContext(ctx, &dates, query, userID); err != nil {
		return nil, fmt.Errorf("failed to get session dates: %w", err)
	}
	return dates, nil
}

// RecordStudyAnswer counts one answered question into the user's open study
// session that started on or after dayStart, opening a new session when
// there is none.
func (r *StudySessionRepository) RecordStudyAnswer(ctx context.Context, userID string, correct bool, now, dayStart time.Time) (*models.StudySession, error) {
	var session models.StudySession

	err := withinTx(ctx, r.db, func(tx *sqlx.Tx) error {
		query := tx.Rebind(`
			SELECT ` + sessionColumns + ` FROM study_sessions
			WHERE user_id = ? AND session_type = ? AND completed_at IS NULL
			ORDER BY started_at DESC
			LIMIT 1
		`)
		err := tx.GetContext(ctx, &session, query, userID, models.SessionTypeStudy)
		if err != nil && !errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("failed to find open study session: %w", err)
		}

		if errors.Is(err, sql.ErrNoRows) || session.StartedAt.Before(dayStart) {
			session = models.StudySession{
				ID:          uuid.NewString(),
				UserID:      userID,
				SessionType: models.SessionTypeStudy,
				StartedAt:   now,
			}
			insert := tx.Rebind(`
				INSERT INTO study_sessions (id, user_id, session_type, started_at)
				VALUES (?, ?, ?, ?)
			`)
			if _, err := tx.ExecContext(ctx, insert, session.ID, userID, session.SessionType, dbTime(now)); err != nil {
				return fmt.Errorf("failed to open study session: %w", err)
			}
		}

		session.QuestionsAttempted++
		if correct {
			session.QuestionsCorrect++
		}
		update := tx.Rebind(`UPDATE study_sessions SET questions_attempted = ?, questions_correct = ? WHERE id = ?`)
		if _, err := tx.ExecContext(ctx, update, session.QuestionsAttempted, session.QuestionsCorrect, session.ID); err != nil {
			return fmt.Errorf("failed to update study session: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &session, nil
}
