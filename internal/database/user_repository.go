package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/example/hamprep/pkg/models"
)

const userColumns = `id, email, first_name, last_name, telegram_chat_id, reminder_hour,
	reminders_enabled, created_at, updated_at`

// UserRepository handles database operations for users
type UserRepository struct {
	db *sqlx.DB
}

// NewUserRepository creates a new repository instance
func NewUserRepository(db *sqlx.DB) *UserRepository {
	return &UserRepository{db: db}
}

// GetByID returns a user by ID
func (r *UserRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	query := r.db.Rebind(`SELECT ` + userColumns + ` FROM users WHERE id = ?`)
	err := r.db.GetContext(ctx, &user, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", models.ErrUserNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user by ID: %w", err)
	}
	return &user, nil
}

// Upsert creates the user or refreshes the profile fields that come from the
// auth layer. Reminder settings are left alone.
func (r *UserRepository) Upsert(ctx context.Context, user *models.User) (*models.User, error) {
	now := dbTime(time.Now())
	query := r.db.Rebind(`
		INSERT INTO users (id, email, first_name, last_name, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			email = excluded.email,
			first_name = excluded.first_name,
			last_name = excluded.last_name,
			updated_at = excluded.updated_at
	`)
	_, err := r.db.ExecContext(ctx, query, user.ID, user.Email, user.FirstName, user.LastName, now, now)
	if err != nil {
		return nil, fmt.Errorf("failed to upsert user: %w", err)
	}
	return r.GetByID(ctx, user.ID)
}

// UpdateReminders changes where and when reminders are sent
func (r *UserRepository) UpdateReminders(ctx context.Context, id string, settings models.ReminderSettings) (*models.User, error) {
	query := r.db.Rebind(`
		UPDATE users SET
			telegram_chat_id = ?,
			reminder_hour = ?,
			reminders_enabled = ?,
			updated_at = ?
		WHERE id = ?
	`)
	res, err := r.db.ExecContext(ctx, query,
		settings.TelegramChatID, settings.ReminderHour, settings.Enabled, dbTime(time.Now()), id)
	if err != nil {
		return nil, fmt.Errorf("failed to update reminder settings: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, fmt.Errorf("%w: %s", models.ErrUserNotFound, id)
	}
	return r.GetByID(ctx, id)
}

// GetReminderRecipients returns users who want a reminder at the given hour
// and have somewhere to receive it
func (r *UserRepository) GetReminderRecipients(ctx context.Context, hour int) ([]models.User, error) {
	var users []models.User
	query := r.db.Rebind(`
		SELECT ` + userColumns + ` FROM users
		WHERE reminders_enabled = ? AND telegram_chat_id IS NOT NULL AND reminder_hour = ?
		ORDER BY id
	`)
	if err := r.db.SelectContext(ctx, &users, query, true, hour); err != nil {
		return nil, fmt.Errorf("failed to get reminder recipients: %w", err)
	}
	return users, nil
}
