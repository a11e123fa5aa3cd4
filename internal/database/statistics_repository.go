package database

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/example/hamprep/pkg/models"
)

// StatisticsRepository runs the aggregate queries behind the dashboard
type StatisticsRepository struct {
	db *sqlx.DB
}

// NewStatisticsRepository creates a new repository instance
func NewStatisticsRepository(db *sqlx.DB) *StatisticsRepository {
	return &StatisticsRepository{db: db}
}

// SubelementProgress counts pool size and mastered questions per subelement
// for one user. Name and Proficiency are left for the caller.
func (r *StatisticsRepository) SubelementProgress(ctx context.Context, userID string) ([]models.SubelementProgress, error) {
	query := r.db.Rebind(`
		SELECT
			q.subelement AS subelement,
			COUNT(q.id) AS total,
			COUNT(CASE WHEN p.is_mastered THEN 1 END) AS mastered
		FROM questions q
		LEFT JOIN user_progress p ON p.question_id = q.id AND p.user_id = ?
		GROUP BY q.subelement
		ORDER BY q.subelement
	`)

	var rows []models.SubelementProgress
	if err := r.db.SelectContext(ctx, &rows, query, userID); err != nil {
		return nil, fmt.Errorf("failed to get subelement progress: %w", err)
	}
	return rows, nil
}
