package bot

import (
	"context"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// HandleCallback routes inline button presses. Callback data is
// "verb:arg", a few verbs carry no argument.
func (h *Handler) HandleCallback(ctx context.Context, q *tgbotapi.CallbackQuery) {
	if q.Message == nil {
		return
	}

	switch q.Data {
	case "confirm":
		h.confirmExchange(ctx, q)
		return
	case "recalc":
		h.answerCallback(q, "")
		h.startExchange(ctx, q.Message.Chat.ID, q)
		return
	case "menu":
		h.answerCallback(q, "")
		h.sessions.get(q.Message.Chat.ID).endFlow()
		h.sendMainMenu(q.Message.Chat.ID)
		return
	}

	verb, arg, ok := strings.Cut(q.Data, ":")
	if !ok || arg == "" {
		h.answerCallback(q, "")
		return
	}

	switch verb {
	case "src":
		h.answerCallback(q, "")
		h.chooseSource(ctx, q, arg)
	case "dst":
		h.answerCallback(q, "")
		h.chooseTarget(ctx, q, arg)
	case "refok", "refno", "refban":
		h.handleReferralAnswer(ctx, q, verb, arg)
	case "cancelreq":
		h.cancelRequest(ctx, q, arg)
	case "accept":
		h.acceptRequest(ctx, q, arg)
	case "reject":
		h.rejectRequest(ctx, q, arg)
	case "complete":
		h.completeRequest(ctx, q, arg)
	default:
		h.answerCallback(q, "")
	}
}

func (h *Handler) answerCallback(q *tgbotapi.CallbackQuery, text string) {
	if _, err := h.api.Request(tgbotapi.NewCallback(q.ID, text)); err != nil {
		h.log.Warn().Err(err).Msg("callback ack failed")
	}
}

func (h *Handler) answerCallbackAlert(q *tgbotapi.CallbackQuery, text string) {
	if _, err := h.api.Request(tgbotapi.NewCallbackWithAlert(q.ID, text)); err != nil {
		h.log.Warn().Err(err).Msg("callback ack failed")
	}
}
