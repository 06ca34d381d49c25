package bot

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/romanselivan/goldantilop/internal/domain"
)

const (
	msgChooseSource    = "Which currency are you giving?"
	msgChooseTarget    = "Giving %s. Which currency do you want?"
	msgEnterAmount     = "%s → %s. How much %s? (minimum %s)"
	msgInvalidAmount   = "I can't read that amount. Digits, please 🔢"
	msgBelowMinimum    = "Minimum for this pair is %s %s. A bit more, please."
	msgRateGone        = "No rate for %s → %s right now."
	msgRequestSent     = "📨 Request sent to the admins."
	msgAlreadyCreated  = "This quote has already become a request."
	msgNoRequests      = "No active requests."
	msgRequestCanceled = "Request cancelled."
	msgCannotCancel    = "This request can no longer be cancelled."
)

// startExchange opens (or restarts) the quoting flow. When called from
// a recalculate button the currency keyboard replaces the old message.
func (h *Handler) startExchange(ctx context.Context, chatID int64, q *tgbotapi.CallbackQuery) {
	sess := h.sessions.get(chatID)
	sess.reset()

	currencies, err := h.exchange.SourceCurrencies(ctx)
	if err != nil {
		h.log.Error().Err(err).Str("action", "source currencies").Msg("rates unavailable")
		h.reply(chatID, msgGenericError, nil)
		return
	}
	if len(currencies) == 0 {
		h.reply(chatID, "No rates available right now.", mainMenu())
		return
	}

	kb := currencyKeyboard("src", currencies)
	sess.step = stepChoosingSource
	if q != nil {
		h.editText(chatID, q.Message.MessageID, msgChooseSource, &kb)
		return
	}
	msg := tgbotapi.NewMessage(chatID, msgChooseSource)
	msg.ReplyMarkup = kb
	if _, err := h.api.Send(msg); err != nil {
		h.log.Error().Err(err).Int64("chat_id", chatID).Msg("send failed")
	}
}

func (h *Handler) chooseSource(ctx context.Context, q *tgbotapi.CallbackQuery, source string) {
	chatID := q.Message.Chat.ID
	sess := h.sessions.get(chatID)
	sess.source = source
	sess.step = stepChoosingTarget

	targets, err := h.exchange.TargetCurrencies(ctx, source)
	if err != nil {
		h.log.Error().Err(err).Str("action", "target currencies").Msg("rates unavailable")
		h.editText(chatID, q.Message.MessageID, msgGenericError, nil)
		return
	}
	kb := currencyKeyboard("dst", targets)
	h.editText(chatID, q.Message.MessageID, fmt.Sprintf(msgChooseTarget, source), &kb)
}

func (h *Handler) chooseTarget(ctx context.Context, q *tgbotapi.CallbackQuery, target string) {
	chatID := q.Message.Chat.ID
	sess := h.sessions.get(chatID)
	if sess.source == "" {
		h.startExchange(ctx, chatID, q)
		return
	}

	rate, err := h.exchange.PairInfo(ctx, sess.source, target)
	if err != nil {
		if errors.Is(err, domain.ErrRateNotFound) {
			h.editText(chatID, q.Message.MessageID, fmt.Sprintf(msgRateGone, sess.source, target), nil)
			sess.endFlow()
			return
		}
		h.log.Error().Err(err).Str("action", "pair info").Msg("rates unavailable")
		h.editText(chatID, q.Message.MessageID, msgGenericError, nil)
		return
	}

	sess.target = target
	sess.step = stepEnteringAmount
	h.editText(chatID, q.Message.MessageID,
		fmt.Sprintf(msgEnterAmount, sess.source, target, sess.source, formatAmount(rate.MinAmount)), nil)
}

// processAmount parses the typed amount and computes the quote. Bad
// input keeps the flow in the same step.
func (h *Handler) processAmount(ctx context.Context, chatID int64, sess *session, text string) {
	amount, err := ParseAmount(text)
	if err != nil {
		h.reply(chatID, msgInvalidAmount, nil)
		return
	}

	quote, err := h.exchange.Quote(ctx, sess.source, sess.target, amount)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrBelowMinimum):
			rate, rerr := h.exchange.PairInfo(ctx, sess.source, sess.target)
			if rerr == nil {
				h.reply(chatID, fmt.Sprintf(msgBelowMinimum, formatAmount(rate.MinAmount), sess.source), nil)
			} else {
				h.reply(chatID, msgGenericError, nil)
			}
		case errors.Is(err, domain.ErrRateNotFound):
			h.reply(chatID, fmt.Sprintf(msgRateGone, sess.source, sess.target), mainMenu())
			sess.endFlow()
		default:
			h.log.Error().Err(err).Str("action", "quote").Msg("quote failed")
			h.reply(chatID, msgGenericError, nil)
		}
		return
	}

	sess.quote = quote
	sess.requestCreated = false
	sess.step = stepConfirming

	msg := tgbotapi.NewMessage(chatID, formatQuote(quote))
	msg.ReplyMarkup = confirmKeyboard()
	if _, err := h.api.Send(msg); err != nil {
		h.log.Error().Err(err).Int64("chat_id", chatID).Msg("send failed")
	}
}

// confirmExchange turns the session's quote into a stored request,
// exactly once per quoting session.
func (h *Handler) confirmExchange(ctx context.Context, q *tgbotapi.CallbackQuery) {
	chatID := q.Message.Chat.ID
	sess := h.sessions.get(chatID)

	if sess.requestCreated {
		h.answerCallbackAlert(q, msgAlreadyCreated)
		return
	}
	if sess.step != stepConfirming {
		h.answerCallback(q, "This quote has expired. Start a new exchange.")
		return
	}

	userID := strconv.FormatInt(q.From.ID, 10)
	user, err := h.users.Get(ctx, userID)
	if err != nil {
		h.log.Error().Err(err).Str("user_id", userID).Str("action", "confirm").Msg("store read failed")
		h.answerCallback(q, msgGenericError)
		return
	}

	req, err := h.exchange.Create(ctx, user, sess.quote)
	if err != nil {
		h.log.Error().Err(err).Str("user_id", userID).Str("action", "create request").Msg("request creation failed")
		h.answerCallback(q, msgGenericError)
		return
	}
	sess.requestCreated = true
	sess.endFlow()

	h.answerCallback(q, "")
	h.editText(chatID, q.Message.MessageID, formatRequest(req, false), nil)
	h.reply(chatID, msgRequestSent, mainMenu())

	kb := adminRequestKeyboard(req.ID, req.Status)
	h.notify.Admins(ctx, formatRequest(req, true), kb)
}

func (h *Handler) showMyRequests(ctx context.Context, chatID int64, user domain.User) {
	reqs, err := h.exchange.ActiveForUser(ctx, user.ID)
	if err != nil {
		h.log.Error().Err(err).Str("user_id", user.ID).Str("action", "my requests").Msg("store read failed")
		h.reply(chatID, msgGenericError, nil)
		return
	}
	if len(reqs) == 0 {
		h.reply(chatID, msgNoRequests, mainMenu())
		return
	}
	for _, req := range reqs {
		msg := tgbotapi.NewMessage(chatID, formatRequest(req, false))
		msg.ReplyMarkup = userRequestKeyboard(req.ID)
		if _, err := h.api.Send(msg); err != nil {
			h.log.Error().Err(err).Int64("chat_id", chatID).Msg("send failed")
		}
	}
	h.sendMainMenu(chatID)
}

func (h *Handler) showRates(ctx context.Context, chatID int64) {
	rates, err := h.rates.All(ctx)
	if err != nil {
		h.log.Error().Err(err).Str("action", "rates").Msg("store read failed")
		h.reply(chatID, msgGenericError, nil)
		return
	}
	h.reply(chatID, formatRates(rates), mainMenu())
}

// cancelRequest handles the owner's cancel button.
func (h *Handler) cancelRequest(ctx context.Context, q *tgbotapi.CallbackQuery, requestID string) {
	ownerID := strconv.FormatInt(q.From.ID, 10)
	req, err := h.exchange.CancelByOwner(ctx, requestID, ownerID)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrNotCancellable):
			h.answerCallbackAlert(q, msgCannotCancel)
		case errors.Is(err, domain.ErrNotFound):
			h.answerCallback(q, "Request not found.")
		default:
			h.log.Error().Err(err).
				Str("request_id", requestID).
				Str("user_id", ownerID).
				Str("action", "cancel").
				Msg("cancel failed")
			h.answerCallback(q, msgGenericError)
		}
		return
	}

	h.answerCallback(q, msgRequestCanceled)
	h.editText(q.Message.Chat.ID, q.Message.MessageID, formatRequest(req, false), nil)
	h.notify.Admins(ctx, fmt.Sprintf("✖️ @%s cancelled request #%s.", req.Username, req.ID), nil)
}
