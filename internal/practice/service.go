package practice

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/samber/lo"
	"github.com/sirupsen/logrus"

	"github.com/example/hamprep/pkg/models"
)

// ErrEmptyPool is returned when there are no questions to build a test from.
var ErrEmptyPool = errors.New("question pool is empty")

// QuestionRepository is the read side of the question pool.
type QuestionRepository interface {
	GetAll(ctx context.Context) ([]models.Question, error)
}

// SessionRepository records practice tests as study sessions.
type SessionRepository interface {
	Create(ctx context.Context, s *models.StudySession) error
	CompleteTest(ctx context.Context, id string, attempted, correct, score int, passed bool, completedAt time.Time) error
}

// TestQuestion is a question as shown during a test, without its answer.
type TestQuestion struct {
	ID           string `json:"id"`
	Subelement   string `json:"subelement"`
	QuestionText string `json:"questionText"`
	AnswerA      string `json:"answerA"`
	AnswerB      string `json:"answerB"`
	AnswerC      string `json:"answerC"`
	AnswerD      string `json:"answerD"`
}

// TestView is the client-facing form of an active test.
type TestView struct {
	ID        string         `json:"id"`
	Questions []TestQuestion `json:"questions"`
	StartedAt time.Time      `json:"startedAt"`
	ExpiresAt time.Time      `json:"expiresAt"`
}

// View hides the answers of t.
func (t *Test) View() TestView {
	return TestView{
		ID: t.ID,
		Questions: lo.Map(t.Questions, func(q models.Question, _ int) TestQuestion {
			return TestQuestion{
				ID:           q.ID,
				Subelement:   q.Subelement,
				QuestionText: q.QuestionText,
				AnswerA:      q.AnswerA,
				AnswerB:      q.AnswerB,
				AnswerC:      q.AnswerC,
				AnswerD:      q.AnswerD,
			}
		}),
		StartedAt: t.StartedAt,
		ExpiresAt: t.ExpiresAt,
	}
}

// Service runs practice tests
type Service struct {
	questions QuestionRepository
	sessions  SessionRepository
	store     *Store
	passScore int
	now       func() time.Time
	log       logrus.FieldLogger

	rndMu sync.Mutex
	rnd   *rand.Rand
}

// NewService creates a practice test service.
func NewService(questions QuestionRepository, sessions SessionRepository, store *Store, passScore int, now func() time.Time, log logrus.FieldLogger) *Service {
	if now == nil {
		now = time.Now
	}
	return &Service{
		questions: questions,
		sessions:  sessions,
		store:     store,
		passScore: passScore,
		now:       now,
		log:       log,
		rnd:       rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// WithRand replaces the random source used to draw questions.
func (s *Service) WithRand(rnd *rand.Rand) *Service {
	s.rndMu.Lock()
	defer s.rndMu.Unlock()
	s.rnd = rnd
	return s
}

// Start draws a new test for the user and makes it the active one.
func (s *Service) Start(ctx context.Context, userID string) (*Test, error) {
	pool, err := s.questions.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	if len(pool) == 0 {
		return nil, ErrEmptyPool
	}

	s.rndMu.Lock()
	questions := BuildExam(pool, s.rnd)
	s.rndMu.Unlock()

	session := &models.StudySession{
		UserID:      userID,
		SessionType: models.SessionTypePracticeTest,
		StartedAt:   s.now(),
	}
	if err := s.sessions.Create(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to start practice test: %w", err)
	}

	test := &Test{
		ID:        session.ID,
		UserID:    userID,
		Questions: questions,
		StartedAt: session.StartedAt,
	}
	s.store.Put(test)

	s.log.WithFields(logrus.Fields{
		"user_id":   userID,
		"test_id":   test.ID,
		"questions": len(questions),
	}).Info("practice test started")
	return test, nil
}

// Current returns the user's active test.
func (s *Service) Current(userID string) (*Test, error) {
	test, ok := s.store.Get(userID)
	if !ok {
		return nil, models.ErrNoActiveTest
	}
	return test, nil
}

// Submit grades the active test, records the outcome and ends the test.
func (s *Service) Submit(ctx context.Context, userID string, answers map[string]string) (*Result, error) {
	test, ok := s.store.Take(userID)
	if !ok {
		return nil, models.ErrNoActiveTest
	}

	res := Grade(test.Questions, answers, s.passScore)
	res.ID = test.ID

	err := s.sessions.CompleteTest(ctx, test.ID, res.TotalQuestions, res.CorrectCount, res.Score, res.Passed, s.now())
	if err != nil {
		s.store.Restore(test)
		return nil, fmt.Errorf("failed to record practice test: %w", err)
	}

	s.log.WithFields(logrus.Fields{
		"user_id": userID,
		"test_id": test.ID,
		"score":   res.Score,
		"passed":  res.Passed,
	}).Info("practice test submitted")
	return &res, nil
}

// Sweep drops expired tests.
func (s *Service) Sweep() int {
	n := s.store.Sweep()
	if n > 0 {
		s.log.WithField("expired", n).Debug("expired practice tests removed")
	}
	return n
}
