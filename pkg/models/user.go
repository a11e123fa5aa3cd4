package models

import "time"

// User is a learner as identified by the upstream auth layer
type User struct {
	ID               string    `json:"id" db:"id"`
	Email            string    `json:"email" db:"email"`
	FirstName        string    `json:"firstName" db:"first_name"`
	LastName         string    `json:"lastName" db:"last_name"`
	TelegramChatID   *int64    `json:"telegramChatId" db:"telegram_chat_id"` // where reminders go, if anywhere
	ReminderHour     int       `json:"reminderHour" db:"reminder_hour"`      // Hour of day for reminders (0-23)
	RemindersEnabled bool      `json:"remindersEnabled" db:"reminders_enabled"`
	CreatedAt        time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt        time.Time `json:"updatedAt" db:"updated_at"`
}

// ReminderSettings is the user-editable part of User.
type ReminderSettings struct {
	TelegramChatID *int64 `json:"telegramChatId"`
	ReminderHour   int    `json:"reminderHour"`
	Enabled        bool   `json:"enabled"`
}
