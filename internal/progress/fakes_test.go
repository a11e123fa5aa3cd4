package progress

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	sr "github.com/example/hamprep/internal/spaced_repetition"
	"github.com/example/hamprep/pkg/models"
)

type fakeQuestionRepo struct {
	items map[string]models.Question
}

func newFakeQuestionRepo(qs ...models.Question) *fakeQuestionRepo {
	r := &fakeQuestionRepo{items: make(map[string]models.Question)}
	for _, q := range qs {
		r.items[q.ID] = q
	}
	return r
}

func (r *fakeQuestionRepo) GetAll(ctx context.Context) ([]models.Question, error) {
	out := make([]models.Question, 0, len(r.items))
	for _, q := range r.items {
		out = append(out, q)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *fakeQuestionRepo) GetByID(ctx context.Context, id string) (*models.Question, error) {
	q, ok := r.items[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", models.ErrQuestionNotFound, id)
	}
	return &q, nil
}

type fakeProgressRepo struct {
	mu    sync.Mutex
	items map[string]models.UserProgress
}

func newFakeProgressRepo() *fakeProgressRepo {
	return &fakeProgressRepo{items: make(map[string]models.UserProgress)}
}

func progressKey(userID, questionID string) string { return userID + "/" + questionID }

func (r *fakeProgressRepo) put(p models.UserProgress) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items[progressKey(p.UserID, p.QuestionID)] = p
}

func (r *fakeProgressRepo) GetByUser(ctx context.Context, userID string) ([]models.UserProgress, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.UserProgress
	for _, p := range r.items {
		if p.UserID == userID {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].QuestionID < out[j].QuestionID })
	return out, nil
}

func (r *fakeProgressRepo) GetByUserAndQuestion(ctx context.Context, userID, questionID string) (*models.UserProgress, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.items[progressKey(userID, questionID)]
	if !ok {
		return nil, models.ErrProgressNotFound
	}
	return &p, nil
}

func (r *fakeProgressRepo) Apply(ctx context.Context, userID, questionID string, fn func(models.UserProgress) (*models.UserProgress, error)) (*models.UserProgress, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := progressKey(userID, questionID)
	cur, ok := r.items[key]
	if !ok {
		cur = models.NewUserProgress(userID, questionID)
		cur.ID = key
	}
	next, err := fn(cur)
	if err != nil {
		return nil, err
	}
	r.items[key] = *next
	return next, nil
}

type fakeSessionRepo struct {
	mu       sync.Mutex
	sessions []models.StudySession
	answers  int
	failNext error
}

func (r *fakeSessionRepo) GetByUser(ctx context.Context, userID string, limit int) ([]models.StudySession, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.StudySession
	for _, s := range r.sessions {
		if s.UserID == userID {
			out = append(out, s)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].StartedAt.After(out[j].StartedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *fakeSessionRepo) GetStartDates(ctx context.Context, userID string) ([]time.Time, error) {
	sessions, _ := r.GetByUser(ctx, userID, 0)
	out := make([]time.Time, len(sessions))
	for i, s := range sessions {
		out[i] = s.StartedAt
	}
	return out, nil
}

func (r *fakeSessionRepo) RecordStudyAnswer(ctx context.Context, userID string, correct bool, now, dayStart time.Time) (*models.StudySession, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.failNext; err != nil {
		r.failNext = nil
		return nil, err
	}
	r.answers++
	s := models.StudySession{ID: fmt.Sprint(len(r.sessions)), UserID: userID, SessionType: models.SessionTypeStudy, StartedAt: now, QuestionsAttempted: 1}
	r.sessions = append(r.sessions, s)
	return &s, nil
}

type fakeStatsRepo struct {
	rows []models.SubelementProgress
}

func (r *fakeStatsRepo) SubelementProgress(ctx context.Context, userID string) ([]models.SubelementProgress, error) {
	return append([]models.SubelementProgress(nil), r.rows...), nil
}

func question(id, correct string) models.Question {
	return models.Question{
		ID:            id,
		Subelement:    models.SubelementFromQuestionID(id),
		QuestionText:  "Q " + id,
		AnswerA:       "a",
		AnswerB:       "b",
		AnswerC:       "c",
		AnswerD:       "d",
		CorrectAnswer: correct,
	}
}

func reviewed(userID, questionID string, ease int, next time.Time, mastered bool) models.UserProgress {
	p := models.NewUserProgress(userID, questionID)
	p.SetState(sr.State{EaseFactor: ease, Interval: 6, ConsecutiveCorrect: 2, NextReviewDate: &next, IsMastered: mastered})
	return p
}
