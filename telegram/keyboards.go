package telegram

import (
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/mroshb/quizbot/internal/quiz"
)

// AnswerKeyboard lays the choices out two per row.
func AnswerKeyboard(choices []quiz.Choice) tgbotapi.InlineKeyboardMarkup {
	var rows [][]tgbotapi.InlineKeyboardButton
	for i := 0; i < len(choices); i += 2 {
		row := []tgbotapi.InlineKeyboardButton{
			tgbotapi.NewInlineKeyboardButtonData(choices[i].Label, EncodeAnswer(choices[i].RoomID, choices[i].Option)),
		}
		if i+1 < len(choices) {
			next := choices[i+1]
			row = append(row, tgbotapi.NewInlineKeyboardButtonData(next.Label, EncodeAnswer(next.RoomID, next.Option)))
		}
		rows = append(rows, row)
	}
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

// EmptyKeyboard removes every button from a message.
func EmptyKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.InlineKeyboardMarkup{InlineKeyboard: [][]tgbotapi.InlineKeyboardButton{}}
}
