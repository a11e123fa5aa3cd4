package models

import (
	"fmt"
	"strings"
	"time"
)

// Answer letters in display order.
var AnswerLetters = []string{"A", "B", "C", "D"}

// Question is one multiple-choice item of the Technician question pool
type Question struct {
	ID            string    `json:"id" db:"id"`                 // e.g. "T1A01"
	Subelement    string    `json:"subelement" db:"subelement"` // e.g. "T1A"
	QuestionText  string    `json:"questionText" db:"question_text"`
	AnswerA       string    `json:"answerA" db:"answer_a"`
	AnswerB       string    `json:"answerB" db:"answer_b"`
	AnswerC       string    `json:"answerC" db:"answer_c"`
	AnswerD       string    `json:"answerD" db:"answer_d"`
	CorrectAnswer string    `json:"correctAnswer" db:"correct_answer"` // A, B, C or D
	Explanation   string    `json:"explanation" db:"explanation"`
	References    string    `json:"references" db:"fcc_references"` // FCC rule references
	CreatedAt     time.Time `json:"-" db:"created_at"`
}

// Group returns the exam group the question belongs to, e.g. "T1".
func (q *Question) Group() string {
	return SubelementGroup(q.Subelement)
}

// Answer returns the text of the answer with the given letter.
func (q *Question) Answer(letter string) (string, bool) {
	switch NormalizeAnswer(letter) {
	case "A":
		return q.AnswerA, true
	case "B":
		return q.AnswerB, true
	case "C":
		return q.AnswerC, true
	case "D":
		return q.AnswerD, true
	}
	return "", false
}

// IsCorrect reports whether answer names the correct letter.
func (q *Question) IsCorrect(answer string) bool {
	return NormalizeAnswer(answer) == NormalizeAnswer(q.CorrectAnswer)
}

// NormalizeAnswer trims and upper-cases an answer letter.
func NormalizeAnswer(answer string) string {
	return strings.ToUpper(strings.TrimSpace(answer))
}

// DefaultExplanation is shown for questions imported without an explanation.
func (q *Question) DefaultExplanation() string {
	letter := NormalizeAnswer(q.CorrectAnswer)
	text, _ := q.Answer(letter)
	return fmt.Sprintf(
		"The correct answer is %s: \"%s\". This question tests your knowledge of %s. "+
			"Understanding this concept is important for passing the Technician exam and operating your amateur radio station safely and effectively.",
		letter, text, SectionTopic(q.Subelement),
	)
}
