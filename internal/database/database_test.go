package database

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	sr "github.com/example/hamprep/internal/spaced_repetition"
	"github.com/example/hamprep/pkg/models"
)

func newTestDB(t *testing.T) *sqlx.DB {
	t.Helper()
	db, err := Open("sqlite3", ":memory:", 1)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func question(id string) models.Question {
	return models.Question{
		ID:            id,
		Subelement:    models.SubelementFromQuestionID(id),
		QuestionText:  "What is " + id + "?",
		AnswerA:       "a",
		AnswerB:       "b",
		AnswerC:       "c",
		AnswerD:       "d",
		CorrectAnswer: "B",
		Explanation:   "because",
		References:    "[97.1]",
	}
}

func seed(t *testing.T, db *sqlx.DB, userID string, questionIDs ...string) {
	t.Helper()
	ctx := context.Background()

	_, err := NewUserRepository(db).Upsert(ctx, &models.User{ID: userID, Email: userID + "@example.com"})
	require.NoError(t, err)

	qs := make([]models.Question, 0, len(questionIDs))
	for _, id := range questionIDs {
		qs = append(qs, question(id))
	}
	require.NoError(t, NewQuestionRepository(db).Upsert(ctx, qs))
}

func TestMigrate_Idempotent(t *testing.T) {
	db := newTestDB(t)
	require.NoError(t, Migrate(db))
	require.NoError(t, Migrate(db))
}

func TestQuestionRepository(t *testing.T) {
	db := newTestDB(t)
	repo := NewQuestionRepository(db)
	ctx := context.Background()
	seed(t, db, "u1", "T1A02", "T1A01", "T2B03", "T0C01")

	all, err := repo.GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 4)
	assert.Equal(t, "T0C01", all[0].ID)
	assert.Equal(t, "[97.1]", all[0].References)

	t1, err := repo.GetBySubelement(ctx, "T1")
	require.NoError(t, err)
	assert.Len(t, t1, 2)

	t1a, err := repo.GetBySubelement(ctx, "T1A")
	require.NoError(t, err)
	assert.Len(t, t1a, 2)

	q, err := repo.GetByID(ctx, "T2B03")
	require.NoError(t, err)
	assert.Equal(t, "T2B", q.Subelement)

	_, err = repo.GetByID(ctx, "T9Z99")
	require.ErrorIs(t, err, models.ErrQuestionNotFound)

	some, err := repo.GetByIDs(ctx, []string{"T2B03", "T1A01", "nope"})
	require.NoError(t, err)
	require.Len(t, some, 2)
	assert.Equal(t, "T1A01", some[0].ID)

	random, err := repo.GetRandom(ctx, 3)
	require.NoError(t, err)
	assert.Len(t, random, 3)

	n, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 4, n)
}

func TestQuestionRepository_UpsertReplacesContent(t *testing.T) {
	db := newTestDB(t)
	repo := NewQuestionRepository(db)
	ctx := context.Background()
	seed(t, db, "u1", "T1A01")

	changed := question("T1A01")
	changed.CorrectAnswer = "D"
	changed.QuestionText = "Revised"
	require.NoError(t, repo.Upsert(ctx, []models.Question{changed}))

	q, err := repo.GetByID(ctx, "T1A01")
	require.NoError(t, err)
	assert.Equal(t, "D", q.CorrectAnswer)
	assert.Equal(t, "Revised", q.QuestionText)

	n, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestUserRepository(t *testing.T) {
	db := newTestDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	u, err := repo.Upsert(ctx, &models.User{ID: "u1", Email: "old@example.com", FirstName: "Pat"})
	require.NoError(t, err)
	assert.Equal(t, 9, u.ReminderHour)
	assert.False(t, u.RemindersEnabled)

	chatID := int64(42)
	_, err = repo.UpdateReminders(ctx, "u1", models.ReminderSettings{TelegramChatID: &chatID, ReminderHour: 18, Enabled: true})
	require.NoError(t, err)

	// Profile refresh keeps reminder settings.
	u, err = repo.Upsert(ctx, &models.User{ID: "u1", Email: "new@example.com", FirstName: "Pat"})
	require.NoError(t, err)
	assert.Equal(t, "new@example.com", u.Email)
	assert.Equal(t, 18, u.ReminderHour)
	require.NotNil(t, u.TelegramChatID)
	assert.Equal(t, int64(42), *u.TelegramChatID)

	recipients, err := repo.GetReminderRecipients(ctx, 18)
	require.NoError(t, err)
	require.Len(t, recipients, 1)
	assert.Equal(t, "u1", recipients[0].ID)

	recipients, err = repo.GetReminderRecipients(ctx, 9)
	require.NoError(t, err)
	assert.Empty(t, recipients)

	_, err = repo.GetByID(ctx, "ghost")
	require.ErrorIs(t, err, models.ErrUserNotFound)

	_, err = repo.UpdateReminders(ctx, "ghost", models.ReminderSettings{})
	require.ErrorIs(t, err, models.ErrUserNotFound)
}

func TestUserProgressRepository_Apply(t *testing.T) {
	db := newTestDB(t)
	repo := NewUserProgressRepository(db)
	ctx := context.Background()
	seed(t, db, "u1", "T1A01")

	_, err := repo.GetByUserAndQuestion(ctx, "u1", "T1A01")
	require.ErrorIs(t, err, models.ErrProgressNotFound)

	now := time.Date(2024, 3, 10, 15, 0, 0, 0, time.UTC)
	answer := func(q sr.QualityResponse) func(models.UserProgress) (*models.UserProgress, error) {
		return func(cur models.UserProgress) (*models.UserProgress, error) {
			cur.SetState(sr.CalculateNextReview(q, cur.State(), now))
			cur.TimesCorrect++
			cur.LastAttemptedAt = &now
			return &cur, nil
		}
	}

	first, err := repo.Apply(ctx, "u1", "T1A01", func(cur models.UserProgress) (*models.UserProgress, error) {
		assert.Equal(t, sr.DefaultEaseFactor, cur.EaseFactor)
		assert.Nil(t, cur.NextReviewDate)
		return answer(sr.QualityPerfect)(cur)
	})
	require.NoError(t, err)
	assert.Equal(t, 260, first.EaseFactor)
	assert.Equal(t, 1, first.Interval)

	second, err := repo.Apply(ctx, "u1", "T1A01", answer(sr.QualityPerfect))
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, 6, second.Interval)

	stored, err := repo.GetByUserAndQuestion(ctx, "u1", "T1A01")
	require.NoError(t, err)
	assert.Equal(t, 270, stored.EaseFactor)
	assert.Equal(t, 6, stored.Interval)
	assert.Equal(t, 2, stored.ConsecutiveCorrect)
	assert.Equal(t, 2, stored.TimesCorrect)
	require.NotNil(t, stored.NextReviewDate)
	assert.True(t, stored.NextReviewDate.Equal(time.Date(2024, 3, 16, 0, 0, 0, 0, time.UTC)))

	all, err := repo.GetByUser(ctx, "u1")
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestUserProgressRepository_ApplyRollsBack(t *testing.T) {
	db := newTestDB(t)
	repo := NewUserProgressRepository(db)
	ctx := context.Background()
	seed(t, db, "u1", "T1A01")

	boom := fmt.Errorf("boom")
	_, err := repo.Apply(ctx, "u1", "T1A01", func(models.UserProgress) (*models.UserProgress, error) {
		return nil, boom
	})
	require.ErrorIs(t, err, boom)

	_, err = repo.GetByUserAndQuestion(ctx, "u1", "T1A01")
	require.ErrorIs(t, err, models.ErrProgressNotFound)
}

func TestUserProgressRepository_ApplyUnknownQuestion(t *testing.T) {
	db := newTestDB(t)
	repo := NewUserProgressRepository(db)
	seed(t, db, "u1")

	_, err := repo.Apply(context.Background(), "u1", "T9Z99", func(cur models.UserProgress) (*models.UserProgress, error) {
		return &cur, nil
	})
	require.Error(t, err)
}

func TestStudySessionRepository(t *testing.T) {
	db := newTestDB(t)
	repo := NewStudySessionRepository(db)
	ctx := context.Background()
	seed(t, db, "u1")

	day1 := time.Date(2024, 3, 9, 10, 0, 0, 0, time.UTC)
	day2 := time.Date(2024, 3, 10, 9, 0, 0, 0, time.UTC)

	s1, err := repo.RecordStudyAnswer(ctx, "u1", true, day1, day(day1))
	require.NoError(t, err)
	s1b, err := repo.RecordStudyAnswer(ctx, "u1", false, day1.Add(time.Hour), day(day1))
	require.NoError(t, err)
	assert.Equal(t, s1.ID, s1b.ID)
	assert.Equal(t, 2, s1b.QuestionsAttempted)
	assert.Equal(t, 1, s1b.QuestionsCorrect)

	// A new day opens a new session.
	s2, err := repo.RecordStudyAnswer(ctx, "u1", true, day2, day(day2))
	require.NoError(t, err)
	assert.NotEqual(t, s1.ID, s2.ID)

	test := &models.StudySession{UserID: "u1", SessionType: models.SessionTypePracticeTest, StartedAt: day2.Add(time.Hour)}
	require.NoError(t, repo.Create(ctx, test))
	require.NoError(t, repo.CompleteTest(ctx, test.ID, 35, 30, 86, true, day2.Add(2*time.Hour)))

	sessions, err := repo.GetByUser(ctx, "u1", 2)
	require.NoError(t, err)
	require.Len(t, sessions, 2)
	got := sessions[0]
	assert.Equal(t, test.ID, got.ID)
	assert.True(t, got.IsCompletedTest())
	require.NotNil(t, got.Score)
	assert.Equal(t, 86, *got.Score)
	require.NotNil(t, got.Passed)
	assert.True(t, *got.Passed)

	dates, err := repo.GetStartDates(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, dates, 3)
	assert.True(t, dates[2].Equal(day1))

	require.ErrorIs(t, repo.CompleteTest(ctx, "missing", 1, 1, 100, true, day2), models.ErrSessionNotFound)
}

func TestBookmarkRepository(t *testing.T) {
	db := newTestDB(t)
	repo := NewBookmarkRepository(db)
	ctx := context.Background()
	seed(t, db, "u1", "T1A01", "T5D02")

	b1, err := repo.Create(ctx, "u1", "T1A01")
	require.NoError(t, err)
	again, err := repo.Create(ctx, "u1", "T1A01")
	require.NoError(t, err)
	assert.Equal(t, b1.ID, again.ID)

	_, err = repo.Create(ctx, "u1", "T5D02")
	require.NoError(t, err)

	list, err := repo.GetByUser(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, list, 2)
	for _, b := range list {
		assert.Equal(t, b.QuestionID, b.Question.ID)
		assert.NotEmpty(t, b.Question.QuestionText)
	}

	require.NoError(t, repo.Delete(ctx, "u1", "T1A01"))
	require.NoError(t, repo.Delete(ctx, "u1", "T1A01"))

	list, err = repo.GetByUser(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "T5D02", list[0].QuestionID)
}

func TestStatisticsRepository(t *testing.T) {
	db := newTestDB(t)
	stats := NewStatisticsRepository(db)
	progress := NewUserProgressRepository(db)
	ctx := context.Background()
	seed(t, db, "u1", "T1A01", "T1A02", "T1B01")
	seed(t, db, "u2")

	master := func(cur models.UserProgress) (*models.UserProgress, error) {
		cur.IsMastered = true
		return &cur, nil
	}
	_, err := progress.Apply(ctx, "u1", "T1A01", master)
	require.NoError(t, err)
	_, err = progress.Apply(ctx, "u2", "T1A02", master)
	require.NoError(t, err)

	rows, err := stats.SubelementProgress(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, models.SubelementProgress{Subelement: "T1A", Total: 2, Mastered: 1}, rows[0])
	assert.Equal(t, models.SubelementProgress{Subelement: "T1B", Total: 1, Mastered: 0}, rows[1])
}

func TestCascadeOnQuestionDelete(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	seed(t, db, "u1", "T1A01")

	_, err := NewUserProgressRepository(db).Apply(ctx, "u1", "T1A01", func(cur models.UserProgress) (*models.UserProgress, error) {
		return &cur, nil
	})
	require.NoError(t, err)
	_, err = NewBookmarkRepository(db).Create(ctx, "u1", "T1A01")
	require.NoError(t, err)

	_, err = db.Exec(`DELETE FROM questions WHERE id = 'T1A01'`)
	require.NoError(t, err)

	var n int
	require.NoError(t, db.Get(&n, `SELECT COUNT(*) FROM user_progress`))
	assert.Zero(t, n)
	require.NoError(t, db.Get(&n, `SELECT COUNT(*) FROM bookmarks`))
	assert.Zero(t, n)
}

func day(t time.Time) time.Time {
	return sr.StartOfDay(t)
}
