package bot

import (
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/romanselivan/goldantilop/internal/domain"
)

const (
	btnCalculate  = "💱 New exchange"
	btnMyRequests = "📋 My requests"
	btnRates      = "📈 Rates"
	btnHelp       = "ℹ️ Help"
	btnWriteAdmin = "✉️ Write to admin"
	btnBackToMenu = "⬅️ Main menu"

	btnAdminRequests  = "📋 Requests"
	btnAdminCompleted = "✅ Completed"
	btnAdminMembers   = "👥 Members"
	btnAdminAnalytics = "📊 Analytics"
)

func mainMenu() tgbotapi.ReplyKeyboardMarkup {
	kb := tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(btnCalculate),
			tgbotapi.NewKeyboardButton(btnMyRequests),
		),
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(btnRates),
			tgbotapi.NewKeyboardButton(btnHelp),
		),
	)
	kb.ResizeKeyboard = true
	return kb
}

func adminMenu() tgbotapi.ReplyKeyboardMarkup {
	kb := tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(btnAdminRequests),
			tgbotapi.NewKeyboardButton(btnAdminCompleted),
		),
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(btnAdminMembers),
			tgbotapi.NewKeyboardButton(btnAdminAnalytics),
		),
	)
	kb.ResizeKeyboard = true
	return kb
}

func helpMenu() tgbotapi.ReplyKeyboardMarkup {
	kb := tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(tgbotapi.NewKeyboardButton(btnWriteAdmin)),
		tgbotapi.NewKeyboardButtonRow(tgbotapi.NewKeyboardButton(btnBackToMenu)),
	)
	kb.ResizeKeyboard = true
	return kb
}

// currencyKeyboard lays currencies out three per row, callback data
// "<verb>:<currency>".
func currencyKeyboard(verb string, currencies []string) tgbotapi.InlineKeyboardMarkup {
	var rows [][]tgbotapi.InlineKeyboardButton
	var row []tgbotapi.InlineKeyboardButton
	for _, c := range currencies {
		row = append(row, tgbotapi.NewInlineKeyboardButtonData(c, fmt.Sprintf("%s:%s", verb, c)))
		if len(row) == 3 {
			rows = append(rows, row)
			row = nil
		}
	}
	if len(row) > 0 {
		rows = append(rows, row)
	}
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

func confirmKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("✅ Confirm", "confirm"),
			tgbotapi.NewInlineKeyboardButtonData("🔄 Recalculate", "recalc"),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("⬅️ Main menu", "menu"),
		),
	)
}

// referralKeyboard is what a referrer sees under a vouching prompt.
func referralKeyboard(userID string) tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("✅ Vouch", "refok:"+userID),
			tgbotapi.NewInlineKeyboardButtonData("🤔 Not sure", "refno:"+userID),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🚫 Ban", "refban:"+userID),
		),
	)
}

// adminRequestKeyboard offers the transitions valid from the request's
// current status.
func adminRequestKeyboard(id string, status domain.RequestStatus) tgbotapi.InlineKeyboardMarkup {
	switch status {
	case domain.RequestPendingReview:
		return tgbotapi.NewInlineKeyboardMarkup(
			tgbotapi.NewInlineKeyboardRow(
				tgbotapi.NewInlineKeyboardButtonData("✅ Accept", "accept:"+id),
				tgbotapi.NewInlineKeyboardButtonData("❌ Reject", "reject:"+id),
			),
		)
	case domain.RequestInProgress:
		return tgbotapi.NewInlineKeyboardMarkup(
			tgbotapi.NewInlineKeyboardRow(
				tgbotapi.NewInlineKeyboardButtonData("🏁 Complete", "complete:"+id),
				tgbotapi.NewInlineKeyboardButtonData("❌ Reject", "reject:"+id),
			),
		)
	default:
		return tgbotapi.NewInlineKeyboardMarkup()
	}
}

func userRequestKeyboard(id string) tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("✖️ Cancel request", "cancelreq:"+id),
		),
	)
}
