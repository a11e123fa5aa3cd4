package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/cors"
	"github.com/sirupsen/logrus"

	"github.com/example/hamprep/internal/ai"
	"github.com/example/hamprep/internal/practice"
	"github.com/example/hamprep/internal/progress"
	"github.com/example/hamprep/pkg/models"
)

// UserStore persists learners.
type UserStore interface {
	GetByID(ctx context.Context, id string) (*models.User, error)
	Upsert(ctx context.Context, user *models.User) (*models.User, error)
	UpdateReminders(ctx context.Context, id string, settings models.ReminderSettings) (*models.User, error)
}

// QuestionStore is the read side of the question pool.
type QuestionStore interface {
	GetAll(ctx context.Context) ([]models.Question, error)
	GetBySubelement(ctx context.Context, subelement string) ([]models.Question, error)
	GetByIDs(ctx context.Context, ids []string) ([]models.Question, error)
	GetRandom(ctx context.Context, count int) ([]models.Question, error)
	GetByID(ctx context.Context, id string) (*models.Question, error)
}

// BookmarkStore persists bookmarks.
type BookmarkStore interface {
	Create(ctx context.Context, userID, questionID string) (*models.Bookmark, error)
	GetByUser(ctx context.Context, userID string) ([]models.BookmarkWithQuestion, error)
	Delete(ctx context.Context, userID, questionID string) error
}

// Deps are the services behind the HTTP API.
type Deps struct {
	Users     UserStore
	Questions QuestionStore
	Bookmarks BookmarkStore
	Tracker   *progress.Tracker
	Practice  *practice.Service
	Explainer *ai.Explainer
}

// Server represents the HTTP API server
type Server struct {
	deps       Deps
	log        logrus.FieldLogger
	httpServer *http.Server
}

// NewServer creates the API server listening on addr.
func NewServer(addr string, corsOrigins []string, deps Deps, log logrus.FieldLogger) *Server {
	s := &Server{deps: deps, log: log}

	c := cors.New(cors.Options{
		AllowedOrigins: corsOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type", headerUserID, headerEmail, headerFirstName, headerLastName},
	})

	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           c.Handler(s.recoverer(s.accessLog(s.routes()))),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// Handler returns the root handler, middleware included.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

func (s *Server) routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", s.health)

	mux.Handle("GET /api/auth/user", s.authed(s.currentUser))
	mux.Handle("PUT /api/users/me/reminders", s.authed(s.updateReminders))

	mux.Handle("GET /api/dashboard/stats", s.authed(s.dashboardStats))
	mux.Handle("GET /api/dashboard/subelement-progress", s.authed(s.subelementProgress))
	mux.Handle("GET /api/subelements", s.authed(s.subelements))

	mux.Handle("GET /api/questions", s.authed(s.listQuestions))
	mux.Handle("GET /api/questions/study", s.authed(s.studyQueue))
	mux.Handle("GET /api/questions/due", s.authed(s.dueQuestions))
	mux.Handle("GET /api/questions/{id}/due", s.authed(s.questionDue))
	mux.Handle("GET /api/questions/{id}/explain", s.authed(s.explain))

	mux.Handle("GET /api/progress", s.authed(s.listProgress))
	mux.Handle("POST /api/progress/submit-answer", s.authed(s.submitAnswer))
	mux.Handle("GET /api/progress/test-history", s.authed(s.testHistory))

	mux.Handle("POST /api/practice-test/start", s.authed(s.startTest))
	mux.Handle("GET /api/practice-test/current", s.authed(s.currentTest))
	mux.Handle("POST /api/practice-test/submit", s.authed(s.submitTest))

	mux.Handle("GET /api/bookmarks", s.authed(s.listBookmarks))
	mux.Handle("POST /api/bookmarks", s.authed(s.createBookmark))
	mux.Handle("DELETE /api/bookmarks/{questionId}", s.authed(s.deleteBookmark))

	return mux
}

// Start serves HTTP until Shutdown is called
func (s *Server) Start() error {
	s.log.WithField("addr", s.httpServer.Addr).Info("HTTP server starting")
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to serve HTTP: %w", err)
	}
	return nil
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	s.log.Info("shutting down HTTP server")
	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shut down HTTP server: %w", err)
	}
	return nil
}

// statusFor maps domain errors to HTTP status codes.
func statusFor(err error) int {
	var bad badRequest
	switch {
	case errors.As(err, &bad),
		errors.Is(err, progress.ErrInvalidAnswer):
		return http.StatusBadRequest
	case errors.Is(err, models.ErrUserNotFound),
		errors.Is(err, models.ErrQuestionNotFound),
		errors.Is(err, models.ErrProgressNotFound),
		errors.Is(err, models.ErrSessionNotFound),
		errors.Is(err, models.ErrNoActiveTest):
		return http.StatusNotFound
	case errors.Is(err, practice.ErrEmptyPool):
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}
