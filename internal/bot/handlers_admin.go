package bot

import (
	"context"
	"errors"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/romanselivan/goldantilop/internal/domain"
)

func (h *Handler) showAdminRequests(ctx context.Context, chatID int64) {
	reqs, err := h.exchange.Active(ctx)
	if err != nil {
		h.log.Error().Err(err).Str("action", "admin requests").Msg("store read failed")
		h.reply(chatID, msgGenericError, nil)
		return
	}
	if len(reqs) == 0 {
		h.reply(chatID, msgNoRequests, adminMenu())
		return
	}
	for _, req := range reqs {
		msg := tgbotapi.NewMessage(chatID, formatRequest(req, true))
		msg.ReplyMarkup = adminRequestKeyboard(req.ID, req.Status)
		if _, err := h.api.Send(msg); err != nil {
			h.log.Error().Err(err).Int64("chat_id", chatID).Msg("send failed")
		}
	}
	h.reply(chatID, "👑", adminMenu())
}

func (h *Handler) showCompletedRequests(ctx context.Context, chatID int64) {
	reqs, err := h.exchange.Completed(ctx)
	if err != nil {
		h.log.Error().Err(err).Str("action", "completed requests").Msg("store read failed")
		h.reply(chatID, msgGenericError, nil)
		return
	}
	if len(reqs) == 0 {
		h.reply(chatID, "No completed requests yet.", adminMenu())
		return
	}

	var b strings.Builder
	b.WriteString("✅ Completed:\n\n")
	for _, req := range reqs {
		fmt.Fprintf(&b, "@%s: %s %s → %s %s, %s\n",
			req.Username,
			formatAmount(req.Amount), req.Source,
			formatInt(req.Result), req.Target,
			req.UpdatedAt.Format("02/01/06"))
	}
	h.reply(chatID, b.String(), adminMenu())
}

func (h *Handler) showMembers(ctx context.Context, chatID int64) {
	users, err := h.users.All(ctx)
	if err != nil {
		h.log.Error().Err(err).Str("action", "members").Msg("store read failed")
		h.reply(chatID, msgGenericError, nil)
		return
	}

	var b strings.Builder
	fmt.Fprintf(&b, "👥 Total registered: %d\n\nActive members:\n", len(users))
	for _, u := range users {
		if u.Status == domain.StatusActive {
			fmt.Fprintf(&b, "@%s\n", u.Username)
		}
	}
	h.reply(chatID, b.String(), adminMenu())
}

func (h *Handler) showAnalytics(ctx context.Context, chatID int64) {
	users, err := h.users.All(ctx)
	if err != nil {
		h.log.Error().Err(err).Str("action", "analytics").Msg("store read failed")
		h.reply(chatID, msgGenericError, nil)
		return
	}
	sum, err := h.exchange.Summarize(ctx)
	if err != nil {
		h.log.Error().Err(err).Str("action", "analytics").Msg("store read failed")
		h.reply(chatID, msgGenericError, nil)
		return
	}

	var b strings.Builder
	b.WriteString("📊 Analytics\n\n")
	fmt.Fprintf(&b, "Users: %d\n", len(users))
	fmt.Fprintf(&b, "Completed exchanges: %d\n", sum.TotalExchanges)
	fmt.Fprintf(&b, "Average volume: %s\n", formatInt(sum.AverageVolume))
	if sum.PopularSource != "" {
		fmt.Fprintf(&b, "Most popular pair: %s → %s\n", sum.PopularSource, sum.PopularTarget)
	}
	h.reply(chatID, b.String(), adminMenu())
}

// acceptRequest: pending review -> in progress, owner notified.
func (h *Handler) acceptRequest(ctx context.Context, q *tgbotapi.CallbackQuery, requestID string) {
	req, err := h.exchange.Accept(ctx, requestID)
	if err != nil {
		h.answerTransitionError(q, requestID, "accept", err)
		return
	}
	h.answerCallback(q, "Accepted.")
	kb := adminRequestKeyboard(req.ID, req.Status)
	h.editText(q.Message.Chat.ID, q.Message.MessageID, formatRequest(req, true), &kb)
	h.notify.User(req.UserID, fmt.Sprintf("⚙️ Request #%s was accepted and is in progress.", req.ID), nil)
}

// rejectRequest asks the admin for a free-text reason; the transition
// happens in finishReject once the reason arrives.
func (h *Handler) rejectRequest(ctx context.Context, q *tgbotapi.CallbackQuery, requestID string) {
	sess := h.sessions.get(q.Message.Chat.ID)
	sess.rejectRequestID = requestID
	sess.step = stepRejectReason
	h.answerCallback(q, "")
	h.editText(q.Message.Chat.ID, q.Message.MessageID,
		fmt.Sprintf("Rejecting #%s. Send the reason for the user (or \"-\" for none).", requestID), nil)
}

func (h *Handler) finishReject(ctx context.Context, chatID int64, sess *session, reason string) {
	requestID := sess.rejectRequestID
	sess.endFlow()

	req, err := h.exchange.Reject(ctx, requestID)
	if err != nil {
		if errors.Is(err, domain.ErrStateConflict) || errors.Is(err, domain.ErrNotFound) {
			h.reply(chatID, "This request has already been resolved.", adminMenu())
			return
		}
		h.log.Error().Err(err).Str("request_id", requestID).Str("action", "reject").Msg("reject failed")
		h.reply(chatID, msgGenericError, adminMenu())
		return
	}

	text := fmt.Sprintf("✖️ Request #%s was rejected.", req.ID)
	if reason = strings.TrimSpace(reason); reason != "" && reason != "-" {
		text += "\nReason: " + reason
	}
	h.notify.User(req.UserID, text, nil)
	h.reply(chatID, fmt.Sprintf("Request #%s rejected.", req.ID), adminMenu())
}

// completeRequest: in progress -> completed, owner notified.
func (h *Handler) completeRequest(ctx context.Context, q *tgbotapi.CallbackQuery, requestID string) {
	req, err := h.exchange.Complete(ctx, requestID)
	if err != nil {
		h.answerTransitionError(q, requestID, "complete", err)
		return
	}
	h.answerCallback(q, "Completed.")
	h.editText(q.Message.Chat.ID, q.Message.MessageID, formatRequest(req, true), nil)
	h.notify.User(req.UserID, fmt.Sprintf("✅ Request #%s is completed. Thank you!", req.ID), nil)
}

func (h *Handler) answerTransitionError(q *tgbotapi.CallbackQuery, requestID, action string, err error) {
	switch {
	case errors.Is(err, domain.ErrStateConflict):
		h.answerCallbackAlert(q, "This request has already moved on.")
	case errors.Is(err, domain.ErrNotFound):
		h.answerCallback(q, "Request not found.")
	default:
		h.log.Error().Err(err).Str("request_id", requestID).Str("action", action).Msg("transition failed")
		h.answerCallback(q, msgGenericError)
	}
}
