package practice

import (
	"math/rand"

	"github.com/samber/lo"

	"github.com/example/hamprep/pkg/models"
)

// BuildExam draws a practice exam from the pool following the Technician
// exam distribution: each group contributes its quota of questions sampled
// without replacement, a group short of questions contributes what it has,
// and the final list is shuffled.
func BuildExam(pool []models.Question, rnd *rand.Rand) []models.Question {
	byGroup := lo.GroupBy(pool, func(q models.Question) string { return q.Group() })

	exam := make([]models.Question, 0, models.ExamQuestionCount)
	for _, s := range models.Subelements {
		group := append([]models.Question(nil), byGroup[s.ID]...)
		rnd.Shuffle(len(group), func(i, j int) {
			group[i], group[j] = group[j], group[i]
		})
		exam = append(exam, group[:min(s.QuestionCount, len(group))]...)
	}

	rnd.Shuffle(len(exam), func(i, j int) {
		exam[i], exam[j] = exam[j], exam[i]
	})
	return exam
}
