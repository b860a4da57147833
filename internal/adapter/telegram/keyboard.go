package telegram

import (
	"github.com/PaulSonOfLars/gotgbot/v2"

	"github.com/mmcdole/releasebot/internal/card"
)

// MapKeyboard converts card controls to an inline keyboard
func MapKeyboard(controls card.Controls) gotgbot.InlineKeyboardMarkup {
	rows := make([][]gotgbot.InlineKeyboardButton, 0, len(controls))
	for _, row := range controls {
		if len(row) == 0 {
			continue
		}
		buttons := make([]gotgbot.InlineKeyboardButton, 0, len(row))
		for _, b := range row {
			btn := gotgbot.InlineKeyboardButton{Text: b.Label}
			if b.URL != "" {
				btn.Url = b.URL
			} else {
				btn.CallbackData = b.Action
			}
			buttons = append(buttons, btn)
		}
		rows = append(rows, buttons)
	}
	return gotgbot.InlineKeyboardMarkup{InlineKeyboard: rows}
}

// replyMarkup returns nil for empty controls so new messages carry no keyboard
func replyMarkup(controls card.Controls) gotgbot.ReplyMarkup {
	if controls.Empty() {
		return nil
	}
	kb := MapKeyboard(controls)
	return &kb
}
