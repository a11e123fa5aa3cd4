package cmd

import (
	"time"

	"github.com/example/hamprep/internal/ai"
	"github.com/example/hamprep/internal/database"
	"github.com/example/hamprep/internal/notify"
	"github.com/example/hamprep/internal/practice"
	"github.com/example/hamprep/internal/progress"
	"github.com/example/hamprep/internal/scheduler"
	sr "github.com/example/hamprep/internal/spaced_repetition"
)

// app holds the wired services.
type app struct {
	users     *database.UserRepository
	questions *database.QuestionRepository
	bookmarks *database.BookmarkRepository
	tracker   *progress.Tracker
	practice  *practice.Service
	explainer *ai.Explainer
	scheduler *scheduler.Scheduler
}

func (e *env) wire() (*app, error) {
	loc := e.cfg.Location()
	now := func() time.Time { return time.Now().In(loc) }

	users := database.NewUserRepository(e.db)
	questions := database.NewQuestionRepository(e.db)
	sessions := database.NewStudySessionRepository(e.db)

	tracker := progress.NewTracker(
		questions,
		database.NewUserProgressRepository(e.db),
		sessions,
		database.NewStatisticsRepository(e.db),
		sr.NewSM2WithClock(now),
		e.log.WithField("component", "progress"),
	)

	store := practice.NewStore(e.cfg.Practice.TTL, now)
	practiceSvc := practice.NewService(questions, sessions, store, e.cfg.Practice.PassScore, now,
		e.log.WithField("component", "practice"))

	notifier, err := e.notifier()
	if err != nil {
		return nil, err
	}

	return &app{
		users:     users,
		questions: questions,
		bookmarks: database.NewBookmarkRepository(e.db),
		tracker:   tracker,
		practice:  practiceSvc,
		explainer: ai.New(ai.Config{
			APIKey:  e.cfg.OpenAI.APIKey,
			Model:   e.cfg.OpenAI.Model,
			BaseURL: e.cfg.OpenAI.BaseURL,
		}, e.log.WithField("component", "ai")),
		scheduler: scheduler.New(loc, users, tracker, notifier, practiceSvc,
			e.log.WithField("component", "scheduler")),
	}, nil
}

func (e *env) notifier() (scheduler.Notifier, error) {
	log := e.log.WithField("component", "notify")
	if e.cfg.Telegram.Token == "" {
		log.Info("no telegram token configured, reminders are only logged")
		return notify.NewLog(log), nil
	}
	return notify.NewTelegram(e.cfg.Telegram.Token, log)
}
