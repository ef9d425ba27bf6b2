package bot

import (
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"gemini-relay-bot/internal/features/callback"
	usermodels "gemini-relay-bot/internal/features/user/models"
)

// Menu1Items are the selectable entries of the first submenu.
var Menu1Items = []string{"option_a", "option_b", "option_c"}

// preferenceOrder fixes the button order of the preferences submenu.
var preferenceOrder = []string{
	usermodels.PreferenceLanguage,
	usermodels.PreferenceNotifications,
	usermodels.PreferenceTheme,
}

func isMenu1Item(item string) bool {
	for _, i := range Menu1Items {
		if i == item {
			return true
		}
	}
	return false
}

func button(lang, key, data string) tgbotapi.InlineKeyboardButton {
	return tgbotapi.NewInlineKeyboardButtonData(text(lang, key), data)
}

func backRow(lang string) []tgbotapi.InlineKeyboardButton {
	return tgbotapi.NewInlineKeyboardRow(button(lang, "btn_back", callback.MainMenu))
}

func mainMenuKeyboard(lang string) *tgbotapi.InlineKeyboardMarkup {
	kb := tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			button(lang, "btn_menu1", callback.Menu1),
			button(lang, "btn_menu2", callback.Menu2),
		),
		tgbotapi.NewInlineKeyboardRow(button(lang, "btn_view_data", callback.ViewData)),
		tgbotapi.NewInlineKeyboardRow(button(lang, "btn_delete_data", callback.DeleteData)),
	)
	return &kb
}

func menu1Keyboard(lang, selected string) *tgbotapi.InlineKeyboardMarkup {
	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(Menu1Items)+1)
	for _, item := range Menu1Items {
		label := text(lang, "item_"+item)
		if item == selected {
			label = "✅ " + label
		}
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(label, callback.ItemData(item)),
		))
	}
	rows = append(rows, backRow(lang))
	kb := tgbotapi.NewInlineKeyboardMarkup(rows...)
	return &kb
}

// menu2Keyboard shows one button per preference with its current value.
func menu2Keyboard(lang string, prefs usermodels.Preferences) *tgbotapi.InlineKeyboardMarkup {
	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(preferenceOrder)+1)
	for _, name := range preferenceOrder {
		label := fmt.Sprintf("%s: %s", text(lang, "pref_"+name), prefs.Get(name))
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(label, callback.ItemData(name)),
		))
	}
	rows = append(rows, backRow(lang))
	kb := tgbotapi.NewInlineKeyboardMarkup(rows...)
	return &kb
}

func deleteConfirmKeyboard(lang string) *tgbotapi.InlineKeyboardMarkup {
	kb := tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			button(lang, "btn_confirm_delete", callback.ConfirmDelete),
			button(lang, "btn_cancel_delete", callback.CancelDelete),
		),
	)
	return &kb
}

func backKeyboard(lang string) *tgbotapi.InlineKeyboardMarkup {
	kb := tgbotapi.NewInlineKeyboardMarkup(backRow(lang))
	return &kb
}
