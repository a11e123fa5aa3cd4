package models

// DashboardStats summarizes a user's standing
type DashboardStats struct {
	TotalQuestions     int `json:"totalQuestions"`
	QuestionsMastered  int `json:"questionsMastered"`
	QuestionsDue       int `json:"questionsDue"`
	PracticeTestsTaken int `json:"practiceTestsTaken"`
	AverageScore       int `json:"averageScore"`
	StudyStreak        int `json:"studyStreak"`
}

// SubelementProgress is mastery within one subelement such as "T1A"
type SubelementProgress struct {
	Subelement  string `json:"subelement" db:"subelement"`
	Name        string `json:"name" db:"-"`
	Total       int    `json:"total" db:"total"`
	Mastered    int    `json:"mastered" db:"mastered"`
	Proficiency int    `json:"proficiency" db:"-"` // percent mastered
}

// TestHistoryEntry is one completed practice test
type TestHistoryEntry struct {
	ID     string `json:"id"`
	Date   string `json:"date"` // YYYY-MM-DD
	Score  int    `json:"score"`
	Passed bool   `json:"passed"`
}
