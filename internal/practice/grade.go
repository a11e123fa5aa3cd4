package practice

import (
	"math"
	"sort"

	"github.com/example/hamprep/pkg/models"
)

// DefaultPassScore is the exam pass mark in percent.
const DefaultPassScore = 74

// AnswerDetail is the verdict on one question of a submitted test
type AnswerDetail struct {
	QuestionID    string `json:"questionId"`
	UserAnswer    string `json:"userAnswer"`
	CorrectAnswer string `json:"correctAnswer"`
	IsCorrect     bool   `json:"isCorrect"`
}

// Result is a graded practice test
type Result struct {
	ID             string         `json:"id"`
	Score          int            `json:"score"` // percent
	Passed         bool           `json:"passed"`
	CorrectCount   int            `json:"correctCount"`
	TotalQuestions int            `json:"totalQuestions"`
	Answers        []AnswerDetail `json:"answers"`
}

// Grade scores answers (question id to letter) against the test questions.
// Unanswered test questions count as wrong. Answers to questions that are
// not part of the test are reported as wrong and do not count towards the
// score.
func Grade(questions []models.Question, answers map[string]string, passScore int) Result {
	res := Result{
		TotalQuestions: len(questions),
		Answers:        make([]AnswerDetail, 0, len(questions)),
	}

	inTest := make(map[string]struct{}, len(questions))
	for _, q := range questions {
		inTest[q.ID] = struct{}{}

		given := models.NormalizeAnswer(answers[q.ID])
		correct := given != "" && q.IsCorrect(given)
		if correct {
			res.CorrectCount++
		}
		res.Answers = append(res.Answers, AnswerDetail{
			QuestionID:    q.ID,
			UserAnswer:    given,
			CorrectAnswer: models.NormalizeAnswer(q.CorrectAnswer),
			IsCorrect:     correct,
		})
	}

	var unknown []string
	for id := range answers {
		if _, ok := inTest[id]; !ok {
			unknown = append(unknown, id)
		}
	}
	sort.Strings(unknown)
	for _, id := range unknown {
		res.Answers = append(res.Answers, AnswerDetail{
			QuestionID: id,
			UserAnswer: models.NormalizeAnswer(answers[id]),
		})
	}

	if res.TotalQuestions > 0 {
		res.Score = int(math.Round(float64(res.CorrectCount) / float64(res.TotalQuestions) * 100))
	}
	res.Passed = res.TotalQuestions > 0 && res.Score >= passScore
	return res
}
