package bot

import (
	"context"
	"errors"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"

	"github.com/romanselivan/goldantilop/internal/config"
	"github.com/romanselivan/goldantilop/internal/domain"
	"github.com/romanselivan/goldantilop/internal/exchange"
	"github.com/romanselivan/goldantilop/internal/notify"
	"github.com/romanselivan/goldantilop/internal/onboarding"
	"github.com/romanselivan/goldantilop/internal/store"
)

const (
	msgGenericError   = "⚡ Something went wrong. Try again."
	msgBanned         = "🚫 Your access has been revoked."
	msgPressStart     = "Press /start to begin."
	msgSetUsername    = "Please set a Telegram username first, then /start again."
	msgSystemNotSet   = "The system is not ready yet. Come back later."
	msgAdminWelcome   = "👑 Welcome back, admin."
	msgAdminBootstrap = "👑 You are registered as an administrator."
	msgUserWelcome    = "I only come to kind and honest people who vouch for each other 🤝\nEveryone here joined by personal recommendation."
)

type Handler struct {
	api        *tgbotapi.BotAPI
	cfg        config.Config
	log        zerolog.Logger
	users      *store.Users
	rates      *store.Rates
	onboarding *onboarding.Service
	exchange   *exchange.Service
	notify     *notify.Dispatcher
	sessions   *sessions
}

func NewHandler(
	api *tgbotapi.BotAPI,
	cfg config.Config,
	log zerolog.Logger,
	users *store.Users,
	rates *store.Rates,
	onb *onboarding.Service,
	exch *exchange.Service,
	disp *notify.Dispatcher,
) *Handler {
	return &Handler{
		api:        api,
		cfg:        cfg,
		log:        log.With().Str("component", "bot").Logger(),
		users:      users,
		rates:      rates,
		onboarding: onb,
		exchange:   exch,
		notify:     disp,
		sessions:   newSessions(),
	}
}

func (h *Handler) HandleUpdate(ctx context.Context, upd tgbotapi.Update) {
	if upd.CallbackQuery != nil {
		h.HandleCallback(ctx, upd.CallbackQuery)
		return
	}
	if upd.Message == nil {
		return
	}
	msg := upd.Message
	if !msg.Chat.IsPrivate() {
		return
	}
	text := strings.TrimSpace(msg.Text)
	if text == "" {
		return
	}

	if strings.HasPrefix(text, "/start") {
		h.handleStart(ctx, msg)
		return
	}

	userID := strconv.FormatInt(msg.From.ID, 10)
	user, err := h.users.Get(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			h.reply(msg.Chat.ID, msgPressStart, nil)
			return
		}
		h.log.Error().Err(err).Str("user_id", userID).Str("action", "lookup").Msg("store read failed")
		h.reply(msg.Chat.ID, msgGenericError, nil)
		return
	}

	switch user.Status {
	case domain.StatusBanned:
		h.reply(msg.Chat.ID, msgBanned, tgbotapi.NewRemoveKeyboard(false))
	case domain.StatusPending:
		h.handleReferralInput(ctx, msg, user)
	case domain.StatusAdmin:
		h.handleAdminText(ctx, msg, user, text)
	case domain.StatusActive:
		h.handleUserText(ctx, msg, user, text)
	default:
		h.log.Warn().Str("user_id", userID).Str("status", string(user.Status)).Msg("unknown user status")
		h.reply(msg.Chat.ID, msgGenericError, nil)
	}
}

// handleStart is first contact: register admins pre-authorized by
// config, open onboarding for everyone else, refuse politely until the
// first admin has bootstrapped the system.
func (h *Handler) handleStart(ctx context.Context, msg *tgbotapi.Message) {
	userID := strconv.FormatInt(msg.From.ID, 10)
	username := msg.From.UserName
	if username == "" {
		h.reply(msg.Chat.ID, msgSetUsername, nil)
		return
	}

	user, err := h.users.Get(ctx, userID)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		h.log.Error().Err(err).Str("user_id", userID).Str("action", "start").Msg("store read failed")
		h.reply(msg.Chat.ID, msgGenericError, nil)
		return
	}

	if errors.Is(err, domain.ErrNotFound) {
		if h.cfg.IsBootstrapAdmin(userID) {
			newAdmin := domain.User{
				ID:       userID,
				Username: username,
				Status:   domain.StatusAdmin,
				State:    domain.StateAdminMenu,
			}
			if err := h.users.Create(ctx, newAdmin); err != nil {
				h.log.Error().Err(err).Str("user_id", userID).Str("action", "register admin").Msg("store write failed")
				h.reply(msg.Chat.ID, msgGenericError, nil)
				return
			}
			h.reply(msg.Chat.ID, msgAdminBootstrap, adminMenu())
			return
		}

		admins, err := h.users.Admins(ctx)
		if err != nil {
			h.log.Error().Err(err).Str("action", "admin check").Msg("store read failed")
			h.reply(msg.Chat.ID, msgGenericError, nil)
			return
		}
		if len(admins) == 0 {
			h.reply(msg.Chat.ID, msgSystemNotSet, nil)
			return
		}

		newUser := domain.User{
			ID:       userID,
			Username: username,
			Status:   domain.StatusPending,
			State:    domain.StateWaitingReferral,
		}
		if err := h.users.Create(ctx, newUser); err != nil {
			h.log.Error().Err(err).Str("user_id", userID).Str("action", "register user").Msg("store write failed")
			h.reply(msg.Chat.ID, msgGenericError, nil)
			return
		}
		h.reply(msg.Chat.ID, msgUserWelcome, tgbotapi.NewRemoveKeyboard(false))
		h.startOnboarding(ctx, msg.Chat.ID, newUser)
		return
	}

	switch user.Status {
	case domain.StatusAdmin:
		h.reply(msg.Chat.ID, msgAdminWelcome, adminMenu())
	case domain.StatusActive:
		h.sendMainMenu(msg.Chat.ID)
	case domain.StatusPending:
		h.startOnboarding(ctx, msg.Chat.ID, user)
	case domain.StatusBanned:
		h.reply(msg.Chat.ID, msgBanned, tgbotapi.NewRemoveKeyboard(false))
	default:
		h.log.Warn().Str("user_id", userID).Str("status", string(user.Status)).Msg("unknown user status")
		h.reply(msg.Chat.ID, msgGenericError, nil)
	}
}

func (h *Handler) handleUserText(ctx context.Context, msg *tgbotapi.Message, user domain.User, text string) {
	sess := h.sessions.get(msg.Chat.ID)

	switch text {
	case btnCalculate:
		h.startExchange(ctx, msg.Chat.ID, nil)
		return
	case btnMyRequests:
		sess.endFlow()
		h.showMyRequests(ctx, msg.Chat.ID, user)
		return
	case btnRates:
		sess.endFlow()
		h.showRates(ctx, msg.Chat.ID)
		return
	case btnHelp:
		sess.endFlow()
		h.reply(msg.Chat.ID, "Pick an exchange, confirm the quote, and an admin will reach out to settle it.", helpMenu())
		return
	case btnWriteAdmin:
		sess.step = stepWritingAdmin
		h.reply(msg.Chat.ID, "Write your message, I will pass it on.", helpMenu())
		return
	case btnBackToMenu:
		sess.endFlow()
		h.sendMainMenu(msg.Chat.ID)
		return
	}

	switch sess.step {
	case stepEnteringAmount:
		h.processAmount(ctx, msg.Chat.ID, sess, text)
	case stepWritingAdmin:
		h.notify.Admins(ctx, "✉️ Message from @"+user.Username+":\n\n"+text, nil)
		sess.endFlow()
		h.reply(msg.Chat.ID, "Sent. ✨", mainMenu())
	default:
		h.sendMainMenu(msg.Chat.ID)
	}
}

func (h *Handler) handleAdminText(ctx context.Context, msg *tgbotapi.Message, admin domain.User, text string) {
	sess := h.sessions.get(msg.Chat.ID)

	switch text {
	case btnAdminRequests:
		sess.endFlow()
		h.showAdminRequests(ctx, msg.Chat.ID)
		return
	case btnAdminCompleted:
		sess.endFlow()
		h.showCompletedRequests(ctx, msg.Chat.ID)
		return
	case btnAdminMembers:
		sess.endFlow()
		h.showMembers(ctx, msg.Chat.ID)
		return
	case btnAdminAnalytics:
		sess.endFlow()
		h.showAnalytics(ctx, msg.Chat.ID)
		return
	}

	if sess.step == stepRejectReason && sess.rejectRequestID != "" {
		h.finishReject(ctx, msg.Chat.ID, sess, text)
		return
	}
	h.reply(msg.Chat.ID, "👑", adminMenu())
}

func (h *Handler) sendMainMenu(chatID int64) {
	h.reply(chatID, "✨", mainMenu())
}

func (h *Handler) reply(chatID int64, text string, kb interface{}) {
	msg := tgbotapi.NewMessage(chatID, text)
	if kb != nil {
		msg.ReplyMarkup = kb
	}
	if _, err := h.api.Send(msg); err != nil {
		h.log.Error().Err(err).Int64("chat_id", chatID).Msg("send failed")
	}
}

func (h *Handler) editText(chatID int64, messageID int, text string, kb *tgbotapi.InlineKeyboardMarkup) {
	edit := tgbotapi.NewEditMessageText(chatID, messageID, text)
	edit.ReplyMarkup = kb
	if _, err := h.api.Send(edit); err != nil {
		h.log.Error().Err(err).Int64("chat_id", chatID).Int("message_id", messageID).Msg("edit failed")
	}
}
