package notify

import (
	"fmt"
	"net/http"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/sirupsen/logrus"
)

// ReminderText is the message sent to a learner with reviews waiting.
func ReminderText(dueCount int) string {
	noun := "questions"
	if dueCount == 1 {
		noun = "question"
	}
	return fmt.Sprintf("You have %d %s due for review today. A few minutes now keeps them fresh for exam day!", dueCount, noun)
}

// Telegram delivers reminders through a Telegram bot
type Telegram struct {
	api *tgbotapi.BotAPI
	log logrus.FieldLogger
}

// NewTelegram connects to the Telegram bot API.
func NewTelegram(token string, log logrus.FieldLogger) (*Telegram, error) {
	return NewTelegramWithEndpoint(token, tgbotapi.APIEndpoint, &http.Client{}, log)
}

// NewTelegramWithEndpoint connects to a Telegram compatible API at endpoint,
// a format string taking the token and the method name.
func NewTelegramWithEndpoint(token, endpoint string, client *http.Client, log logrus.FieldLogger) (*Telegram, error) {
	api, err := tgbotapi.NewBotAPIWithClient(token, endpoint, client)
	if err != nil {
		return nil, fmt.Errorf("failed to create telegram bot: %w", err)
	}
	log.WithField("bot", api.Self.UserName).Info("telegram notifier ready")
	return &Telegram{api: api, log: log}, nil
}

// SendReminder tells the chat how many reviews are waiting.
func (t *Telegram) SendReminder(chatID int64, dueCount int) error {
	msg := tgbotapi.NewMessage(chatID, ReminderText(dueCount))
	if _, err := t.api.Send(msg); err != nil {
		return fmt.Errorf("failed to send reminder to chat %d: %w", chatID, err)
	}
	t.log.WithFields(logrus.Fields{"chat_id": chatID, "due": dueCount}).Info("reminder sent")
	return nil
}

// Log only logs reminders. It stands in when no bot token is configured.
type Log struct {
	log logrus.FieldLogger
}

// NewLog creates a logging notifier.
func NewLog(log logrus.FieldLogger) *Log {
	return &Log{log: log}
}

// SendReminder logs the reminder.
func (l *Log) SendReminder(chatID int64, dueCount int) error {
	l.log.WithFields(logrus.Fields{"chat_id": chatID, "due": dueCount}).Info(ReminderText(dueCount))
	return nil
}
