package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSubelementHelpers(t *testing.T) {
	assert.Equal(t, "T1A", SubelementFromQuestionID("t1a05"))
	assert.Equal(t, "T0", SubelementGroup("T0C"))

	s, ok := LookupSubelement("T9B")
	assert.True(t, ok)
	assert.Equal(t, "Antennas and Feed Lines", s.Name)

	_, ok = LookupSubelement("G1A")
	assert.False(t, ok)

	assert.Equal(t, "RF Exposure and Environmental Safety", SectionTopic("t0c"))
	assert.Equal(t, "amateur radio operations", SectionTopic("X1A"))

	total := 0
	for _, s := range Subelements {
		total += s.QuestionCount
	}
	assert.Equal(t, ExamQuestionCount, total)
}

func TestQuestionAnswers(t *testing.T) {
	q := Question{ID: "T5D01", Subelement: "T5D", AnswerA: "volts", AnswerB: "ohms", AnswerC: "amps", AnswerD: "watts", CorrectAnswer: "b"}

	text, ok := q.Answer(" c ")
	assert.True(t, ok)
	assert.Equal(t, "amps", text)

	_, ok = q.Answer("E")
	assert.False(t, ok)

	assert.True(t, q.IsCorrect("B"))
	assert.False(t, q.IsCorrect("A"))
	assert.Equal(t, "T5", q.Group())

	assert.Equal(t,
		`The correct answer is B: "ohms". This question tests your knowledge of Ohm's Law and Power. `+
			`Understanding this concept is important for passing the Technician exam and operating your amateur radio station safely and effectively.`,
		q.DefaultExplanation())
}

func TestUserProgressState(t *testing.T) {
	p := NewUserProgress("u1", "T1A01")
	assert.False(t, p.Reviewed())
	assert.Equal(t, 250, p.State().EaseFactor)
}
