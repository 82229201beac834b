// Package keyboard содержит inline клавиатуры бота.
package keyboard

import (
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/google/uuid"
)

// Данные callback кнопок
const (
	CallbackMainMenu         = "main_menu"
	CallbackTodayTask        = "today_task"
	CallbackMyProgress       = "my_progress"
	CallbackHelp             = "help"
	CallbackSkip             = "skip"
	CallbackCompletePrefix   = "complete_task_"
	CallbackTaskDetailPrefix = "task_details_"
)

// MainMenu главное меню
func MainMenu() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("📋 Задание на сегодня", CallbackTodayTask),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("📊 Мой прогресс", CallbackMyProgress),
			tgbotapi.NewInlineKeyboardButtonData("❓ Помощь", CallbackHelp),
		),
	)
}

// Task клавиатура невыполненного задания
func Task(assignmentID uuid.UUID) tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("✅ Выполнено", CallbackCompletePrefix+assignmentID.String()),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("📖 Подробнее", CallbackTaskDetailPrefix+assignmentID.String()),
			tgbotapi.NewInlineKeyboardButtonData("🏠 Меню", CallbackMainMenu),
		),
	)
}

// Completed клавиатура после выполнения задания
func Completed() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("📊 Мой прогресс", CallbackMyProgress),
			tgbotapi.NewInlineKeyboardButtonData("🏠 Меню", CallbackMainMenu),
		),
	)
}

// Skip клавиатура пропуска ответа
func Skip() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("⏭ Пропустить", CallbackSkip),
		),
	)
}

// ParseAssignmentCallback извлекает ID назначения из данных callback с префиксом
func ParseAssignmentCallback(data, prefix string) (uuid.UUID, bool) {
	raw, ok := strings.CutPrefix(data, prefix)
	if !ok {
		return uuid.Nil, false
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, false
	}
	return id, true
}
