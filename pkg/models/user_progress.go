package models

import (
	"time"

	sr "github.com/example/hamprep/internal/spaced_repetition"
)

// UserProgress tracks a user's progress with a specific question using the SM-2 algorithm
type UserProgress struct {
	ID                 string     `json:"id" db:"id"`
	UserID             string     `json:"userId" db:"user_id"`
	QuestionID         string     `json:"questionId" db:"question_id"`
	EaseFactor         int        `json:"easeFactor" db:"ease_factor"` // SM-2 EF ×100
	Interval           int        `json:"interval" db:"interval_days"` // Current interval in days
	ConsecutiveCorrect int        `json:"consecutiveCorrect" db:"consecutive_correct"`
	NextReviewDate     *time.Time `json:"nextReviewDate" db:"next_review_date"` // nil until first answer
	IsMastered         bool       `json:"isMastered" db:"is_mastered"`
	TimesCorrect       int        `json:"timesCorrect" db:"times_correct"`
	TimesIncorrect     int        `json:"timesIncorrect" db:"times_incorrect"`
	LastAttemptedAt    *time.Time `json:"lastAttemptedAt" db:"last_attempted_at"`
	CreatedAt          time.Time  `json:"createdAt" db:"created_at"`
	UpdatedAt          time.Time  `json:"updatedAt" db:"updated_at"`
}

// NewUserProgress returns the implicit progress of a never answered question.
func NewUserProgress(userID, questionID string) UserProgress {
	return UserProgress{
		UserID:     userID,
		QuestionID: questionID,
		EaseFactor: sr.DefaultEaseFactor,
	}
}

// State extracts the scheduling state.
func (p *UserProgress) State() sr.State {
	return sr.State{
		EaseFactor:         p.EaseFactor,
		Interval:           p.Interval,
		ConsecutiveCorrect: p.ConsecutiveCorrect,
		NextReviewDate:     p.NextReviewDate,
		IsMastered:         p.IsMastered,
	}
}

// SetState copies a computed scheduling state onto the record.
func (p *UserProgress) SetState(s sr.State) {
	p.EaseFactor = s.EaseFactor
	p.Interval = s.Interval
	p.ConsecutiveCorrect = s.ConsecutiveCorrect
	p.NextReviewDate = s.NextReviewDate
	p.IsMastered = s.IsMastered
}

// Reviewed reports whether the question was ever answered.
func (p *UserProgress) Reviewed() bool {
	return p.NextReviewDate != nil
}
