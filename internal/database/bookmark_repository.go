package database

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/example/hamprep/pkg/models"
)

// BookmarkRepository handles database operations for bookmarks
type BookmarkRepository struct {
	db *sqlx.DB
}

// NewBookmarkRepository creates a new repository instance
func NewBookmarkRepository(db *sqlx.DB) *BookmarkRepository {
	return &BookmarkRepository{db: db}
}

// Create bookmarks a question. Bookmarking the same question twice returns
// the existing bookmark.
func (r *BookmarkRepository) Create(ctx context.Context, userID, questionID string) (*models.Bookmark, error) {
	insert := r.db.Rebind(`
		INSERT INTO bookmarks (id, user_id, question_id, created_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (user_id, question_id) DO NOTHING
	`)
	if _, err := r.db.ExecContext(ctx, insert, uuid.NewString(), userID, questionID, dbTime(time.Now())); err != nil {
		return nil, fmt.Errorf("failed to create bookmark: %w", err)
	}

	var b models.Bookmark
	query := r.db.Rebind(`SELECT id, user_id, question_id, created_at FROM bookmarks WHERE user_id = ? AND question_id = ?`)
	if err := r.db.GetContext(ctx, &b, query, userID, questionID); err != nil {
		return nil, fmt.Errorf("failed to get bookmark: %w", err)
	}
	return &b, nil
}

// GetByUser returns the user's bookmarks with their questions, newest first
func (r *BookmarkRepository) GetByUser(ctx context.Context, userID string) ([]models.BookmarkWithQuestion, error) {
	query := r.db.Rebind(`
		SELECT
			b.id, b.user_id, b.question_id, b.created_at,
			q.id AS "question.id",
			q.subelement AS "question.subelement",
			q.question_text AS "question.question_text",
			q.answer_a AS "question.answer_a",
			q.answer_b AS "question.answer_b",
			q.answer_c AS "question.answer_c",
			q.answer_d AS "question.answer_d",
			q.correct_answer AS "question.correct_answer",
			q.explanation AS "question.explanation",
			q.fcc_references AS "question.fcc_references",
			q.created_at AS "question.created_at"
		FROM bookmarks b
		JOIN questions q ON q.id = b.question_id
		WHERE b.user_id = ?
		ORDER BY b.created_at DESC, b.id
	`)

	var bookmarks []models.BookmarkWithQuestion
	if err := r.db.SelectContext(ctx, &bookmarks, query, userID); err != nil {
		return nil, fmt.Errorf("failed to get bookmarks: %w", err)
	}
	return bookmarks, nil
}

// Delete removes a bookmark. Removing a missing bookmark is not an error.
func (r *BookmarkRepository) Delete(ctx context.Context, userID, questionID string) error {
	query := r.db.Rebind(`DELETE FROM bookmarks WHERE user_id = ? AND question_id = ?`)
	if _, err := r.db.ExecContext(ctx, query, userID, questionID); err != nil {
		return fmt.Errorf("failed to delete bookmark: %w", err)
	}
	return nil
}
