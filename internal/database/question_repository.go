package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/example/hamprep/pkg/models"
)

const questionColumns = `id, subelement, question_text, answer_a, answer_b, answer_c, answer_d,
	correct_answer, explanation, fcc_references, created_at`

// QuestionRepository handles database operations for the question pool
type QuestionRepository struct {
	db *sqlx.DB
}

// NewQuestionRepository creates a new repository instance
func NewQuestionRepository(db *sqlx.DB) *QuestionRepository {
	return &QuestionRepository{db: db}
}

// GetAll returns the whole pool ordered by id
func (r *QuestionRepository) GetAll(ctx context.Context) ([]models.Question, error) {
	var questions []models.Question
	query := `SELECT ` + questionColumns + ` FROM questions ORDER BY id`
	if err := r.db.SelectContext(ctx, &questions, query); err != nil {
		return nil, fmt.Errorf("failed to get questions: %w", err)
	}
	return questions, nil
}

// GetBySubelement returns questions of one subelement ("T1A") or of a whole
// group ("T1")
func (r *QuestionRepository) GetBySubelement(ctx context.Context, subelement string) ([]models.Question, error) {
	var questions []models.Question
	query := r.db.Rebind(`SELECT ` + questionColumns + ` FROM questions WHERE subelement LIKE ? ORDER BY id`)
	if err := r.db.SelectContext(ctx, &questions, query, subelement+"%"); err != nil {
		return nil, fmt.Errorf("failed to get questions by subelement: %w", err)
	}
	return questions, nil
}

// GetByID returns a single question
func (r *QuestionRepository) GetByID(ctx context.Context, id string) (*models.Question, error) {
	var q models.Question
	query := r.db.Rebind(`SELECT ` + questionColumns + ` FROM questions WHERE id = ?`)
	err := r.db.GetContext(ctx, &q, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", models.ErrQuestionNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get question: %w", err)
	}
	return &q, nil
}

// GetByIDs returns the questions with the given ids, ordered by id. Unknown
// ids are ignored.
func (r *QuestionRepository) GetByIDs(ctx context.Context, ids []string) ([]models.Question, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	var (
		questions []models.Question
		err       error
	)
	if r.db.DriverName() == "postgres" {
		query := `SELECT ` + questionColumns + ` FROM questions WHERE id = ANY($1) ORDER BY id`
		err = r.db.SelectContext(ctx, &questions, query, pq.Array(ids))
	} else {
		var query string
		var args []any
		query, args, err = sqlx.In(`SELECT `+questionColumns+` FROM questions WHERE id IN (?) ORDER BY id`, ids)
		if err == nil {
			err = r.db.SelectContext(ctx, &questions, r.db.Rebind(query), args...)
		}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get questions by ids: %w", err)
	}
	return questions, nil
}

// GetRandom returns up to count questions in random order
func (r *QuestionRepository) GetRandom(ctx context.Context, count int) ([]models.Question, error) {
	var questions []models.Question
	query := r.db.Rebind(`SELECT ` + questionColumns + ` FROM questions ORDER BY RANDOM() LIMIT ?`)
	if err := r.db.SelectContext(ctx, &questions, query, count); err != nil {
		return nil, fmt.Errorf("failed to get random questions: %w", err)
	}
	return questions, nil
}

// Count returns the size of the pool
func (r *QuestionRepository) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM questions`); err != nil {
		return 0, fmt.Errorf("failed to count questions: %w", err)
	}
	return n, nil
}

// Upsert inserts questions or replaces their content. Progress rows that
// reference a replaced question are kept.
func (r *QuestionRepository) Upsert(ctx context.Context, questions []models.Question) error {
	if len(questions) == 0 {
		return nil
	}

	query := r.db.Rebind(`
		INSERT INTO questions (
			id, subelement, question_text, answer_a, answer_b, answer_c, answer_d,
			correct_answer, explanation, fcc_references, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			subelement = excluded.subelement,
			question_text = excluded.question_text,
			answer_a = excluded.answer_a,
			answer_b = excluded.answer_b,
			answer_c = excluded.answer_c,
			answer_d = excluded.answer_d,
			correct_answer = excluded.correct_answer,
			explanation = excluded.explanation,
			fcc_references = excluded.fcc_references
	`)

	now := dbTime(time.Now())
	return withinTx(ctx, r.db, func(tx *sqlx.Tx) error {
		for _, q := range questions {
			_, err := tx.ExecContext(ctx, query,
				q.ID, q.Subelement, q.QuestionText,
				q.AnswerA, q.AnswerB, q.AnswerC, q.AnswerD,
				q.CorrectAnswer, q.Explanation, q.References, now,
			)
			if err != nil {
				return fmt.Errorf("failed to upsert question %s: %w", q.ID, err)
			}
		}
		return nil
	})
}
