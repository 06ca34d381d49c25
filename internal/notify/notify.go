// Package notify fans status-change messages out to a user or to every
// admin. A failed delivery is logged and skipped; it never aborts the
// remaining recipients.
package notify

import (
	"context"
	"strconv"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"

	"github.com/romanselivan/goldantilop/internal/store"
)

// Sender is the slice of the bot api the dispatcher needs. Satisfied by
// *tgbotapi.BotAPI.
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
}

type Dispatcher struct {
	api   Sender
	users *store.Users
	log   zerolog.Logger
}

func New(api Sender, users *store.Users, log zerolog.Logger) *Dispatcher {
	return &Dispatcher{api: api, users: users, log: log.With().Str("component", "notify").Logger()}
}

// User sends a text to one user, with an optional keyboard (inline or
// reply). Returns the sent message id (0 when delivery failed).
func (d *Dispatcher) User(userID, text string, kb interface{}) int {
	chatID, err := strconv.ParseInt(userID, 10, 64)
	if err != nil {
		d.log.Error().Err(err).Str("user_id", userID).Msg("bad chat id")
		return 0
	}
	msg := tgbotapi.NewMessage(chatID, text)
	if kb != nil {
		msg.ReplyMarkup = kb
	}
	sent, err := d.api.Send(msg)
	if err != nil {
		d.log.Error().Err(err).Str("user_id", userID).Msg("notify user failed")
		return 0
	}
	return sent.MessageID
}

// Admins delivers to every admin in the users table, one by one.
func (d *Dispatcher) Admins(ctx context.Context, text string, kb interface{}) {
	admins, err := d.users.Admins(ctx)
	if err != nil {
		d.log.Error().Err(err).Msg("admin list unavailable, notification dropped")
		return
	}
	for _, admin := range admins {
		d.User(admin.ID, text, kb)
	}
}

// Retract deletes a previously sent message. Best effort: a prompt the
// recipient already dismissed is not worth failing over.
func (d *Dispatcher) Retract(userID string, messageID int) {
	chatID, err := strconv.ParseInt(userID, 10, 64)
	if err != nil {
		d.log.Error().Err(err).Str("user_id", userID).Msg("bad chat id")
		return
	}
	if _, err := d.api.Request(tgbotapi.NewDeleteMessage(chatID, messageID)); err != nil {
		d.log.Warn().Err(err).
			Str("user_id", userID).
			Int("message_id", messageID).
			Msg("stale prompt retraction failed")
	}
}
