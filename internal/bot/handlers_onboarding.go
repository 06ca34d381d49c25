package bot

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/romanselivan/goldantilop/internal/domain"
	"github.com/romanselivan/goldantilop/internal/onboarding"
)

const (
	msgEnterReferral       = "Who vouches for you? Send their handle, e.g. @friend."
	msgEnterSecondReferral = "One more. Who else vouches for you?"
	msgWaitingConfirmation = "Both referrers have been asked. Hang tight 🕊"
	msgSelfReferral        = "You cannot vouch for yourself 🙃"
	msgDuplicateReferral   = "You already named them. Someone else?"
	msgUnknownReferral     = "I don't know that person, or they are not a member. Someone else?"
	msgAccountActivated    = "✨ @%s vouched for you. Welcome in!"
	msgAccountBanned       = "🚫 Your referrers did not vouch for you."
)

// startOnboarding prompts for whichever referral is still missing.
func (h *Handler) startOnboarding(ctx context.Context, chatID int64, user domain.User) {
	switch onboarding.NamedReferrals(user) {
	case 0:
		h.reply(chatID, msgEnterReferral, tgbotapi.NewRemoveKeyboard(false))
	case 1:
		h.reply(chatID, msgEnterSecondReferral, tgbotapi.NewRemoveKeyboard(false))
	default:
		h.reply(chatID, msgWaitingConfirmation, tgbotapi.NewRemoveKeyboard(false))
	}
}

// handleReferralInput treats any text from a pending user as a referral
// handle. Validation failures are reported and the flow stays where it
// is, per the retry-in-place policy.
func (h *Handler) handleReferralInput(ctx context.Context, msg *tgbotapi.Message, user domain.User) {
	referrer, slot, err := h.onboarding.NameReferral(ctx, user, msg.Text)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrSelfReferral):
			h.reply(msg.Chat.ID, msgSelfReferral, nil)
		case errors.Is(err, domain.ErrDuplicateReferral):
			h.reply(msg.Chat.ID, msgDuplicateReferral, nil)
		case errors.Is(err, domain.ErrUnknownReferral):
			h.reply(msg.Chat.ID, msgUnknownReferral, nil)
		case errors.Is(err, domain.ErrSlotsFull):
			h.reply(msg.Chat.ID, msgWaitingConfirmation, nil)
		default:
			h.log.Error().Err(err).Str("user_id", user.ID).Str("action", "name referral").Msg("onboarding failed")
			h.reply(msg.Chat.ID, msgGenericError, nil)
		}
		return
	}

	kb := referralKeyboard(user.ID)
	promptID := h.notify.User(referrer.ID,
		fmt.Sprintf("🤝 @%s names you as a referrer. Do you vouch for them?", user.Username), &kb)
	if promptID != 0 {
		if err := h.onboarding.RecordPrompt(ctx, user.ID, slot, promptID); err != nil {
			h.log.Error().Err(err).Str("user_id", user.ID).Int("slot", slot).Msg("prompt id not recorded")
		}
	}

	h.reply(msg.Chat.ID, fmt.Sprintf("Asked @%s to vouch for you.", referrer.Username), nil)

	// Re-prompt for the next slot (or the waiting notice).
	updated, err := h.users.Get(ctx, user.ID)
	if err != nil {
		h.log.Error().Err(err).Str("user_id", user.ID).Msg("reload after referral failed")
		return
	}
	h.startOnboarding(ctx, msg.Chat.ID, updated)
}

// handleReferralAnswer covers the refok/refno/refban callbacks pressed
// by a referrer under a vouching prompt.
func (h *Handler) handleReferralAnswer(ctx context.Context, q *tgbotapi.CallbackQuery, verb, userID string) {
	referrerID := strconv.FormatInt(q.From.ID, 10)

	if verb == "refban" {
		user, err := h.onboarding.Ban(ctx, userID)
		if err != nil {
			h.log.Error().Err(err).Str("user_id", userID).Str("action", "ban").Msg("ban failed")
			h.answerCallback(q, msgGenericError)
			return
		}
		h.answerCallback(q, "")
		h.editText(q.Message.Chat.ID, q.Message.MessageID,
			fmt.Sprintf("🚫 @%s has been banned.", user.Username), nil)
		h.notify.User(userID, msgAccountBanned, nil)
		return
	}

	res := onboarding.Confirm
	if verb == "refno" {
		res = onboarding.Decline
	}

	user, stale, outcome, err := h.onboarding.ResolveSlot(ctx, userID, referrerID, res)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) || errors.Is(err, domain.ErrStateConflict) {
			h.answerCallback(q, "This request is no longer waiting for you.")
			return
		}
		h.log.Error().Err(err).
			Str("user_id", userID).
			Str("referrer_id", referrerID).
			Str("action", "resolve referral").
			Msg("onboarding failed")
		h.answerCallback(q, msgGenericError)
		return
	}

	h.answerCallback(q, "")
	if res == onboarding.Confirm {
		h.editText(q.Message.Chat.ID, q.Message.MessageID,
			fmt.Sprintf("✅ You vouched for @%s.", user.Username), nil)
	} else {
		h.editText(q.Message.Chat.ID, q.Message.MessageID,
			fmt.Sprintf("🤔 Noted. You did not vouch for @%s.", user.Username), nil)
	}

	// The other referrer's prompt is moot once the outcome is decided.
	if stale.MessageID != 0 {
		h.notify.Retract(stale.ReferrerID, stale.MessageID)
	}

	switch outcome {
	case onboarding.OutcomeActivated:
		h.notify.User(userID, fmt.Sprintf(msgAccountActivated, q.From.UserName), mainMenu())
	case onboarding.OutcomeBanned:
		h.notify.User(userID, msgAccountBanned, tgbotapi.NewRemoveKeyboard(false))
	}
}
