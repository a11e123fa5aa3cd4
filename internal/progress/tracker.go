package progress

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/samber/lo"
	"github.com/sirupsen/logrus"

	sr "github.com/example/hamprep/internal/spaced_repetition"
	"github.com/example/hamprep/pkg/models"
)

// ErrInvalidAnswer is returned when an answer is not one of the four letters.
var ErrInvalidAnswer = errors.New("answer must be one of A, B, C or D")

const (
	// sessions scanned for practice test statistics
	statsSessionWindow = 100
	// sessions scanned for test history
	historySessionWindow = 20
)

// QuestionRepository is the read side of the question pool.
type QuestionRepository interface {
	GetAll(ctx context.Context) ([]models.Question, error)
	GetByID(ctx context.Context, id string) (*models.Question, error)
}

// ProgressRepository stores scheduling state per user and question.
type ProgressRepository interface {
	GetByUser(ctx context.Context, userID string) ([]models.UserProgress, error)
	GetByUserAndQuestion(ctx context.Context, userID, questionID string) (*models.UserProgress, error)
	Apply(ctx context.Context, userID, questionID string, fn func(models.UserProgress) (*models.UserProgress, error)) (*models.UserProgress, error)
}

// SessionRepository stores study sessions.
type SessionRepository interface {
	GetByUser(ctx context.Context, userID string, limit int) ([]models.StudySession, error)
	GetStartDates(ctx context.Context, userID string) ([]time.Time, error)
	RecordStudyAnswer(ctx context.Context, userID string, correct bool, now, dayStart time.Time) (*models.StudySession, error)
}

// StatisticsRepository runs aggregate queries.
type StatisticsRepository interface {
	SubelementProgress(ctx context.Context, userID string) ([]models.SubelementProgress, error)
}

// AnswerResult is the outcome of one submitted answer.
type AnswerResult struct {
	Progress      *models.UserProgress `json:"progress"`
	IsCorrect     bool                 `json:"isCorrect"`
	CorrectAnswer string               `json:"correctAnswer"`
	Quality       int                  `json:"quality"`
}

// Tracker connects the SM-2 scheduler to storage: it feeds answers through
// the scheduler and answers questions about what is due.
type Tracker struct {
	questions QuestionRepository
	progress  ProgressRepository
	sessions  SessionRepository
	stats     StatisticsRepository
	sm2       *sr.SM2
	log       logrus.FieldLogger
}

// NewTracker creates a tracker. The scheduler's clock decides what "today" is.
func NewTracker(
	questions QuestionRepository,
	progress ProgressRepository,
	sessions SessionRepository,
	stats StatisticsRepository,
	sm2 *sr.SM2,
	log logrus.FieldLogger,
) *Tracker {
	return &Tracker{
		questions: questions,
		progress:  progress,
		sessions:  sessions,
		stats:     stats,
		sm2:       sm2,
		log:       log,
	}
}

// SubmitAnswer grades an answer, advances the question's schedule and counts
// the answer into today's study session.
func (t *Tracker) SubmitAnswer(ctx context.Context, userID, questionID, answer string, responseTimeSeconds *float64) (*AnswerResult, error) {
	q, err := t.questions.GetByID(ctx, questionID)
	if err != nil {
		return nil, err
	}
	if _, ok := q.Answer(answer); !ok {
		return nil, ErrInvalidAnswer
	}

	isCorrect := q.IsCorrect(answer)
	quality := sr.EstimateQuality(isCorrect, responseTimeSeconds)
	now := t.sm2.Now()

	updated, err := t.progress.Apply(ctx, userID, questionID, func(cur models.UserProgress) (*models.UserProgress, error) {
		cur.SetState(sr.CalculateNextReview(quality, cur.State(), now))
		if isCorrect {
			cur.TimesCorrect++
		} else {
			cur.TimesIncorrect++
		}
		cur.LastAttemptedAt = &now
		return &cur, nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to record answer: %w", err)
	}

	log := t.log.WithFields(logrus.Fields{
		"user_id":     userID,
		"question_id": questionID,
		"correct":     isCorrect,
		"quality":     int(quality),
		"interval":    updated.Interval,
	})

	if _, err := t.sessions.RecordStudyAnswer(ctx, userID, isCorrect, now, sr.StartOfDay(now)); err != nil {
		log.WithError(err).Warn("failed to update study session")
	}
	log.Debug("answer recorded")

	return &AnswerResult{
		Progress:      updated,
		IsCorrect:     isCorrect,
		CorrectAnswer: models.NormalizeAnswer(q.CorrectAnswer),
		Quality:       int(quality),
	}, nil
}

// StudyQueue returns the pool ordered for study: unmastered questions (or the
// whole pool once everything is mastered), due ones first in review priority,
// the rest shuffled. A limit <= 0 returns everything.
func (t *Tracker) StudyQueue(ctx context.Context, userID string, limit int) ([]models.Question, error) {
	items, err := t.load(ctx, userID)
	if err != nil {
		return nil, err
	}

	candidates := lo.Filter(items, func(it item, _ int) bool { return !it.state.IsMastered })
	if len(candidates) == 0 {
		candidates = items
	}

	now := t.sm2.Now()
	due := sr.DueOrder(candidates, itemState, now, 0)
	rest := lo.Shuffle(lo.Filter(candidates, func(it item, _ int) bool {
		return !sr.IsDueForReview(it.state.NextReviewDate, now)
	}))

	queue := append(due, rest...)
	if limit > 0 && len(queue) > limit {
		queue = queue[:limit]
	}
	return questionsOf(queue), nil
}

// DueQuestions returns every question due today, never answered ones
// included, in review priority.
func (t *Tracker) DueQuestions(ctx context.Context, userID string) ([]models.Question, error) {
	items, err := t.load(ctx, userID)
	if err != nil {
		return nil, err
	}
	return questionsOf(sr.DueOrder(items, itemState, t.sm2.Now(), 0)), nil
}

// ReviewsDue counts questions the user has answered before that are due
// again today.
func (t *Tracker) ReviewsDue(ctx context.Context, userID string) (int, error) {
	return t.ReviewsDueAt(ctx, userID, t.sm2.Now())
}

// ReviewsDueAt is ReviewsDue on the calendar day of now.
func (t *Tracker) ReviewsDueAt(ctx context.Context, userID string, now time.Time) (int, error) {
	progress, err := t.progress.GetByUser(ctx, userID)
	if err != nil {
		return 0, err
	}
	return countReviewsDue(progress, now), nil
}

// IsDue reports whether a question is due for the user today.
func (t *Tracker) IsDue(ctx context.Context, userID, questionID string) (bool, error) {
	if _, err := t.questions.GetByID(ctx, questionID); err != nil {
		return false, err
	}

	p, err := t.progress.GetByUserAndQuestion(ctx, userID, questionID)
	if errors.Is(err, models.ErrProgressNotFound) {
		return true, nil
	}
	if err != nil {
		return false, err
	}
	return t.sm2.IsDue(p.NextReviewDate), nil
}

// Progress returns every progress row of the user.
func (t *Tracker) Progress(ctx context.Context, userID string) ([]models.UserProgress, error) {
	return t.progress.GetByUser(ctx, userID)
}

// DashboardStats summarizes the user's standing.
func (t *Tracker) DashboardStats(ctx context.Context, userID string) (*models.DashboardStats, error) {
	questions, err := t.questions.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	progress, err := t.progress.GetByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	sessions, err := t.sessions.GetByUser(ctx, userID, statsSessionWindow)
	if err != nil {
		return nil, err
	}
	dates, err := t.sessions.GetStartDates(ctx, userID)
	if err != nil {
		return nil, err
	}

	tests := lo.Filter(sessions, func(s models.StudySession, _ int) bool { return s.IsCompletedTest() })
	average := 0
	if len(tests) > 0 {
		total := lo.SumBy(tests, func(s models.StudySession) int { return lo.FromPtr(s.Score) })
		average = int(math.Round(float64(total) / float64(len(tests))))
	}

	now := t.sm2.Now()
	return &models.DashboardStats{
		TotalQuestions:    len(questions),
		QuestionsMastered: lo.CountBy(progress, func(p models.UserProgress) bool { return p.IsMastered }),
		QuestionsDue:       countReviewsDue(progress, now),
		PracticeTestsTaken: len(tests),
		AverageScore:       average,
		StudyStreak:        StudyStreak(dates, now),
	}, nil
}

// SubelementProgress reports mastery per subelement with group names.
func (t *Tracker) SubelementProgress(ctx context.Context, userID string) ([]models.SubelementProgress, error) {
	rows, err := t.stats.SubelementProgress(ctx, userID)
	if err != nil {
		return nil, err
	}

	for i := range rows {
		rows[i].Name = rows[i].Subelement
		if s, ok := models.LookupSubelement(rows[i].Subelement); ok {
			rows[i].Name = s.Name
		}
		if rows[i].Total > 0 {
			rows[i].Proficiency = int(math.Round(float64(rows[i].Mastered) / float64(rows[i].Total) * 100))
		}
	}
	return rows, nil
}

// TestHistory lists completed practice tests among the latest sessions,
// newest first.
func (t *Tracker) TestHistory(ctx context.Context, userID string) ([]models.TestHistoryEntry, error) {
	sessions, err := t.sessions.GetByUser(ctx, userID, historySessionWindow)
	if err != nil {
		return nil, err
	}

	loc := t.sm2.Now().Location()
	history := make([]models.TestHistoryEntry, 0, len(sessions))
	for _, s := range sessions {
		if !s.IsCompletedTest() {
			continue
		}
		history = append(history, models.TestHistoryEntry{
			ID:     s.ID,
			Date:   s.CompletedAt.In(loc).Format(time.DateOnly),
			Score:  lo.FromPtr(s.Score),
			Passed: lo.FromPtr(s.Passed),
		})
	}
	return history, nil
}

// item pairs a question with the user's scheduling state for it.
type item struct {
	question models.Question
	state    sr.State
}

func itemState(it item) sr.State { return it.state }

func countReviewsDue(progress []models.UserProgress, now time.Time) int {
	return lo.CountBy(progress, func(p models.UserProgress) bool {
		return p.Reviewed() && sr.IsDueForReview(p.NextReviewDate, now)
	})
}

func questionsOf(items []item) []models.Question {
	return lo.Map(items, func(it item, _ int) models.Question { return it.question })
}

func (t *Tracker) load(ctx context.Context, userID string) ([]item, error) {
	questions, err := t.questions.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	progress, err := t.progress.GetByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	byQuestion := lo.KeyBy(progress, func(p models.UserProgress) string { return p.QuestionID })
	return lo.Map(questions, func(q models.Question, _ int) item {
		state := sr.DefaultState()
		if p, ok := byQuestion[q.ID]; ok {
			state = p.State()
		}
		return item{question: q, state: state}
	}), nil
}
