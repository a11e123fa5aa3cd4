package models

import "time"

// Session types
const (
	SessionTypeStudy        = "study"
	SessionTypePracticeTest = "practice_test"
)

// StudySession is one sitting of free study or one practice test
type StudySession struct {
	ID                 string     `json:"id" db:"id"`
	UserID             string     `json:"userId" db:"user_id"`
	SessionType        string     `json:"sessionType" db:"session_type"`
	QuestionsAttempted int        `json:"questionsAttempted" db:"questions_attempted"`
	QuestionsCorrect   int        `json:"questionsCorrect" db:"questions_correct"`
	StartedAt          time.Time  `json:"startedAt" db:"started_at"`
	CompletedAt        *time.Time `json:"completedAt" db:"completed_at"`
	Score              *int       `json:"score" db:"score"`   // percentage, practice tests only
	Passed             *bool      `json:"passed" db:"passed"` // practice tests only
}

// IsCompletedTest reports whether the session is a finished practice test.
func (s *StudySession) IsCompletedTest() bool {
	return s.SessionType == SessionTypePracticeTest && s.CompletedAt != nil
}
