package progress

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/hamprep/internal/logger"
	sr "github.com/example/hamprep/internal/spaced_repetition"
	"github.com/example/hamprep/pkg/models"
)

var now = time.Date(2024, 3, 10, 15, 30, 0, 0, time.UTC)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

type fixture struct {
	questions *fakeQuestionRepo
	progress  *fakeProgressRepo
	sessions  *fakeSessionRepo
	stats     *fakeStatsRepo
	tracker   *Tracker
}

func newFixture(qs ...models.Question) *fixture {
	f := &fixture{
		questions: newFakeQuestionRepo(qs...),
		progress:  newFakeProgressRepo(),
		sessions:  &fakeSessionRepo{},
		stats:     &fakeStatsRepo{},
	}
	sm := sr.NewSM2WithClock(func() time.Time { return now })
	f.tracker = NewTracker(f.questions, f.progress, f.sessions, f.stats, sm, logger.Discard())
	return f
}

func ptr[T any](v T) *T { return &v }

func TestSubmitAnswer_CorrectAndFast(t *testing.T) {
	f := newFixture(question("T1A01", "B"))

	res, err := f.tracker.SubmitAnswer(context.Background(), "u1", "T1A01", " b ", ptr(4.0))
	require.NoError(t, err)

	assert.True(t, res.IsCorrect)
	assert.Equal(t, "B", res.CorrectAnswer)
	assert.Equal(t, int(sr.QualityPerfect), res.Quality)
	assert.Equal(t, 260, res.Progress.EaseFactor)
	assert.Equal(t, 1, res.Progress.Interval)
	assert.Equal(t, 1, res.Progress.TimesCorrect)
	assert.Equal(t, 0, res.Progress.TimesIncorrect)
	assert.Equal(t, date(2024, 3, 11), *res.Progress.NextReviewDate)
	assert.Equal(t, now, *res.Progress.LastAttemptedAt)
	assert.Equal(t, 1, f.sessions.answers)
}

func TestSubmitAnswer_WrongAnswerLapses(t *testing.T) {
	f := newFixture(question("T1A01", "B"))
	f.progress.put(reviewed("u1", "T1A01", 250, date(2024, 3, 10), false))

	res, err := f.tracker.SubmitAnswer(context.Background(), "u1", "T1A01", "C", nil)
	require.NoError(t, err)

	assert.False(t, res.IsCorrect)
	assert.Equal(t, int(sr.QualityIncorrect), res.Quality)
	assert.Equal(t, 0, res.Progress.Interval)
	assert.Equal(t, 0, res.Progress.ConsecutiveCorrect)
	assert.Equal(t, 196, res.Progress.EaseFactor)
	assert.Equal(t, 1, res.Progress.TimesIncorrect)
}

func TestSubmitAnswer_EndToEnd(t *testing.T) {
	f := newFixture(question("T1A01", "A"))
	f.progress.put(reviewed("u1", "T1A01", 250, date(2024, 3, 10), false))

	res, err := f.tracker.SubmitAnswer(context.Background(), "u1", "T1A01", "A", ptr(15.0))
	require.NoError(t, err)

	assert.Equal(t, 250, res.Progress.EaseFactor)
	assert.Equal(t, 15, res.Progress.Interval)
	assert.Equal(t, 3, res.Progress.ConsecutiveCorrect)
	assert.False(t, res.Progress.IsMastered)
}

func TestSubmitAnswer_Errors(t *testing.T) {
	f := newFixture(question("T1A01", "A"))

	_, err := f.tracker.SubmitAnswer(context.Background(), "u1", "T9Z99", "A", nil)
	require.ErrorIs(t, err, models.ErrQuestionNotFound)

	_, err = f.tracker.SubmitAnswer(context.Background(), "u1", "T1A01", "E", nil)
	require.ErrorIs(t, err, ErrInvalidAnswer)
}

func TestSubmitAnswer_SessionFailureIsNotFatal(t *testing.T) {
	f := newFixture(question("T1A01", "A"))
	f.sessions.failNext = errors.New("disk full")

	res, err := f.tracker.SubmitAnswer(context.Background(), "u1", "T1A01", "A", nil)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Progress.TimesCorrect)
}

func TestStudyQueue(t *testing.T) {
	f := newFixture(
		question("T1A01", "A"),
		question("T1A02", "A"),
		question("T1A03", "A"),
		question("T1A04", "A"),
		question("T1A05", "A"),
	)
	f.progress.put(reviewed("u1", "T1A01", 250, date(2024, 4, 1), false)) // not due
	f.progress.put(reviewed("u1", "T1A02", 170, date(2024, 3, 8), false)) // due, hard
	f.progress.put(reviewed("u1", "T1A03", 250, date(2024, 3, 1), true))  // mastered
	f.progress.put(reviewed("u1", "T1A04", 250, date(2024, 3, 9), false)) // due

	queue, err := f.tracker.StudyQueue(context.Background(), "u1", 0)
	require.NoError(t, err)

	ids := make([]string, len(queue))
	for i, q := range queue {
		ids[i] = q.ID
	}
	assert.Equal(t, []string{"T1A05", "T1A02", "T1A04", "T1A01"}, ids)

	limited, err := f.tracker.StudyQueue(context.Background(), "u1", 2)
	require.NoError(t, err)
	assert.Len(t, limited, 2)
}

func TestStudyQueue_AllMastered(t *testing.T) {
	f := newFixture(question("T1A01", "A"), question("T1A02", "A"))
	f.progress.put(reviewed("u1", "T1A01", 250, date(2024, 5, 1), true))
	f.progress.put(reviewed("u1", "T1A02", 250, date(2024, 5, 1), true))

	queue, err := f.tracker.StudyQueue(context.Background(), "u1", 0)
	require.NoError(t, err)
	assert.Len(t, queue, 2)
}

func TestDueQuestionsAndReviewsDue(t *testing.T) {
	f := newFixture(question("T1A01", "A"), question("T1A02", "A"), question("T1A03", "A"))
	f.progress.put(reviewed("u1", "T1A01", 250, date(2024, 3, 10), false))
	f.progress.put(reviewed("u1", "T1A02", 250, date(2024, 3, 11), false))

	due, err := f.tracker.DueQuestions(context.Background(), "u1")
	require.NoError(t, err)
	require.Len(t, due, 2)
	assert.Equal(t, "T1A03", due[0].ID)
	assert.Equal(t, "T1A01", due[1].ID)

	n, err := f.tracker.ReviewsDue(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestIsDue(t *testing.T) {
	f := newFixture(question("T1A01", "A"), question("T1A02", "A"))
	f.progress.put(reviewed("u1", "T1A01", 250, date(2024, 3, 11), false))

	due, err := f.tracker.IsDue(context.Background(), "u1", "T1A01")
	require.NoError(t, err)
	assert.False(t, due)

	due, err = f.tracker.IsDue(context.Background(), "u1", "T1A02")
	require.NoError(t, err)
	assert.True(t, due)

	_, err = f.tracker.IsDue(context.Background(), "u1", "nope")
	require.ErrorIs(t, err, models.ErrQuestionNotFound)
}

func TestDashboardStats(t *testing.T) {
	f := newFixture(question("T1A01", "A"), question("T1A02", "A"), question("T1A03", "A"))
	f.progress.put(reviewed("u1", "T1A01", 250, date(2024, 4, 1), true))
	f.progress.put(reviewed("u1", "T1A02", 250, date(2024, 3, 9), false))

	completed := now.Add(-time.Hour)
	f.sessions.sessions = []models.StudySession{
		{ID: "t1", UserID: "u1", SessionType: models.SessionTypePracticeTest, StartedAt: now.Add(-2 * time.Hour), CompletedAt: &completed, Score: ptr(80), Passed: ptr(true)},
		{ID: "t2", UserID: "u1", SessionType: models.SessionTypePracticeTest, StartedAt: now.Add(-26 * time.Hour), CompletedAt: &completed, Score: ptr(65), Passed: ptr(false)},
		{ID: "t3", UserID: "u1", SessionType: models.SessionTypePracticeTest, StartedAt: now.Add(-3 * time.Hour)},
		{ID: "s1", UserID: "u1", SessionType: models.SessionTypeStudy, StartedAt: now.Add(-50 * time.Hour)},
		{ID: "x", UserID: "u2", SessionType: models.SessionTypeStudy, StartedAt: now},
	}

	stats, err := f.tracker.DashboardStats(context.Background(), "u1")
	require.NoError(t, err)

	assert.Equal(t, &models.DashboardStats{
		TotalQuestions:     3,
		QuestionsMastered:  1,
		QuestionsDue:       1,
		PracticeTestsTaken: 2,
		AverageScore:       73, // 72.5 rounds half away from zero
		StudyStreak:        3,
	}, stats)
}

func TestSubelementProgress(t *testing.T) {
	f := newFixture()
	f.stats.rows = []models.SubelementProgress{
		{Subelement: "T1A", Total: 3, Mastered: 2},
		{Subelement: "T0C", Total: 0, Mastered: 0},
		{Subelement: "X9Z", Total: 4, Mastered: 1},
	}

	rows, err := f.tracker.SubelementProgress(context.Background(), "u1")
	require.NoError(t, err)

	assert.Equal(t, "FCC Rules, Descriptions and Definitions", rows[0].Name)
	assert.Equal(t, 67, rows[0].Proficiency)
	assert.Equal(t, "Electrical and RF Safety", rows[1].Name)
	assert.Equal(t, 0, rows[1].Proficiency)
	assert.Equal(t, "X9Z", rows[2].Name)
	assert.Equal(t, 25, rows[2].Proficiency)
}

func TestTestHistory(t *testing.T) {
	f := newFixture()
	done := time.Date(2024, 3, 9, 23, 30, 0, 0, time.UTC)
	f.sessions.sessions = []models.StudySession{
		{ID: "t1", UserID: "u1", SessionType: models.SessionTypePracticeTest, StartedAt: done.Add(-time.Hour), CompletedAt: &done, Score: ptr(91), Passed: ptr(true)},
		{ID: "open", UserID: "u1", SessionType: models.SessionTypePracticeTest, StartedAt: now},
		{ID: "s1", UserID: "u1", SessionType: models.SessionTypeStudy, StartedAt: now},
	}

	history, err := f.tracker.TestHistory(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, []models.TestHistoryEntry{{ID: "t1", Date: "2024-03-09", Score: 91, Passed: true}}, history)
}
