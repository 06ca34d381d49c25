package notify

import (
	"context"
	"errors"
	"testing"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/romanselivan/goldantilop/internal/sheets"
	"github.com/romanselivan/goldantilop/internal/store"
)

type fakeSender struct {
	sent    []tgbotapi.MessageConfig
	deleted []tgbotapi.DeleteMessageConfig
	failFor map[int64]bool
	nextID  int
}

func (f *fakeSender) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	msg, ok := c.(tgbotapi.MessageConfig)
	if !ok {
		return tgbotapi.Message{}, errors.New("unexpected chattable")
	}
	if f.failFor[msg.ChatID] {
		return tgbotapi.Message{}, errors.New("blocked by user")
	}
	f.sent = append(f.sent, msg)
	f.nextID++
	return tgbotapi.Message{MessageID: f.nextID}, nil
}

func (f *fakeSender) Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error) {
	if del, ok := c.(tgbotapi.DeleteMessageConfig); ok {
		f.deleted = append(f.deleted, del)
	}
	return &tgbotapi.APIResponse{Ok: true}, nil
}

func adminUsers(t *testing.T) *store.Users {
	t.Helper()
	mem := sheets.NewMemory()
	mem.SetTable(store.UsersSheet, [][]string{
		{"USER_ID", "USERNAME", "USER_STATUS", "USER_STATE",
			"REFERRAL1_ID", "REFERRAL1_USERNAME", "REFERRAL1_STATUS", "REFERRAL1_MESSAGE_ID",
			"REFERRAL2_ID", "REFERRAL2_USERNAME", "REFERRAL2_STATUS", "REFERRAL2_MESSAGE_ID"},
		{"100", "admin1", "admin", "admin_menu", "", "", "", "", "", "", "", ""},
		{"101", "admin2", "admin", "admin_menu", "", "", "", "", "", "", "", ""},
		{"200", "carol", "active", "main_menu", "", "", "", "", "", "", "", ""},
	})
	return store.NewUsers(mem, time.Minute, zerolog.Nop())
}

func TestUserReturnsMessageID(t *testing.T) {
	api := &fakeSender{}
	d := New(api, adminUsers(t), zerolog.Nop())

	id := d.User("200", "hello", nil)
	assert.Equal(t, 1, id)
	require.Len(t, api.sent, 1)
	assert.Equal(t, int64(200), api.sent[0].ChatID)
	assert.Equal(t, "hello", api.sent[0].Text)
}

func TestUserFailureReturnsZero(t *testing.T) {
	api := &fakeSender{failFor: map[int64]bool{200: true}}
	d := New(api, adminUsers(t), zerolog.Nop())

	assert.Equal(t, 0, d.User("200", "hello", nil))
	assert.Equal(t, 0, d.User("not-a-number", "hello", nil))
	assert.Empty(t, api.sent)
}

func TestAdminsFanOutSurvivesFailures(t *testing.T) {
	api := &fakeSender{failFor: map[int64]bool{100: true}}
	d := New(api, adminUsers(t), zerolog.Nop())

	d.Admins(context.Background(), "new request", nil)

	// admin1 is unreachable; admin2 still gets the message, carol never does.
	require.Len(t, api.sent, 1)
	assert.Equal(t, int64(101), api.sent[0].ChatID)
}

func TestRetract(t *testing.T) {
	api := &fakeSender{}
	d := New(api, adminUsers(t), zerolog.Nop())

	d.Retract("200", 41)
	require.Len(t, api.deleted, 1)
	assert.Equal(t, int64(200), api.deleted[0].ChatID)
	assert.Equal(t, 41, api.deleted[0].MessageID)
}
