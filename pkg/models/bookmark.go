package models

import "time"

// Bookmark marks a question for later review
type Bookmark struct {
	ID         string    `json:"id" db:"id"`
	UserID     string    `json:"userId" db:"user_id"`
	QuestionID string    `json:"questionId" db:"question_id"`
	CreatedAt  time.Time `json:"createdAt" db:"created_at"`
}

// BookmarkWithQuestion is a bookmark joined with its question
type BookmarkWithQuestion struct {
	Bookmark
	Question Question `json:"question" db:"question"`
}
