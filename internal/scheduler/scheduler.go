package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/go-co-op/gocron"
	"github.com/sirupsen/logrus"

	"github.com/example/hamprep/pkg/models"
)

// reminderSpec fires at the top of every hour.
const reminderSpec = "0 * * * *"

// Notifier interface for sending notifications
type Notifier interface {
	SendReminder(chatID int64, dueCount int) error
}

// RecipientSource lists users who want a reminder at an hour of the day.
type RecipientSource interface {
	GetReminderRecipients(ctx context.Context, hour int) ([]models.User, error)
}

// DueCounter counts a user's reviews due on the day of now.
type DueCounter interface {
	ReviewsDueAt(ctx context.Context, userID string, now time.Time) (int, error)
}

// Sweeper drops expired in-memory state.
type Sweeper interface {
	Sweep() int
}

// Options configure which jobs run.
type Options struct {
	Reminders     bool
	SweepInterval time.Duration
}

// Scheduler manages scheduled tasks for the application
type Scheduler struct {
	scheduler  *gocron.Scheduler
	loc        *time.Location
	recipients RecipientSource
	due        DueCounter
	notifier   Notifier
	sweeper    Sweeper
	log        logrus.FieldLogger
	now        func() time.Time
}

// New creates a scheduler running in loc. Hours of the day are taken in loc.
func New(loc *time.Location, recipients RecipientSource, due DueCounter, notifier Notifier, sweeper Sweeper, log logrus.FieldLogger) *Scheduler {
	s := gocron.NewScheduler(loc)
	s.SingletonModeAll()
	return &Scheduler{
		scheduler:  s,
		loc:        loc,
		recipients: recipients,
		due:        due,
		notifier:   notifier,
		sweeper:    sweeper,
		log:        log,
		now:        func() time.Time { return time.Now().In(loc) },
	}
}

// Start registers the jobs and runs them in the background until ctx is done
// or Stop is called.
func (s *Scheduler) Start(ctx context.Context, opts Options) error {
	if opts.Reminders {
		_, err := s.scheduler.Cron(reminderSpec).Do(func() {
			if _, err := s.RunReminders(ctx, s.now()); err != nil {
				s.log.WithError(err).Error("reminder run failed")
			}
		})
		if err != nil {
			return fmt.Errorf("failed to schedule reminders: %w", err)
		}
	}

	if opts.SweepInterval > 0 && s.sweeper != nil {
		_, err := s.scheduler.Every(opts.SweepInterval).Do(func() { s.sweeper.Sweep() })
		if err != nil {
			return fmt.Errorf("failed to schedule sweep: %w", err)
		}
	}

	s.scheduler.StartAsync()
	s.log.WithField("jobs", s.scheduler.Len()).Info("scheduler started")
	return nil
}

// Stop terminates all scheduled tasks
func (s *Scheduler) Stop() {
	s.scheduler.Stop()
}

// RunReminders sends one reminder to every user who asked for one at the hour
// of now and has reviews due. It returns the number of reminders sent. A
// failure for one user is logged and does not stop the rest. Both the hour
// and the day the reviews are due on are taken in the scheduler's location.
func (s *Scheduler) RunReminders(ctx context.Context, now time.Time) (int, error) {
	now = now.In(s.loc)
	hour := now.Hour()
	users, err := s.recipients.GetReminderRecipients(ctx, hour)
	if err != nil {
		return 0, fmt.Errorf("failed to load reminder recipients: %w", err)
	}

	sent := 0
	for _, user := range users {
		if user.TelegramChatID == nil {
			continue
		}
		log := s.log.WithField("user_id", user.ID)

		count, err := s.due.ReviewsDueAt(ctx, user.ID, now)
		if err != nil {
			log.WithError(err).Warn("failed to count due reviews")
			continue
		}
		if count == 0 {
			continue
		}

		if err := s.notifier.SendReminder(*user.TelegramChatID, count); err != nil {
			log.WithError(err).Warn("failed to send reminder")
			continue
		}
		sent++
	}

	s.log.WithFields(logrus.Fields{"hour": hour, "recipients": len(users), "sent": sent}).Debug("reminders checked")
	return sent, nil
}
