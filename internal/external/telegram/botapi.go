package telegram

import (
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

// BotAPI определяет интерфейс для работы с Telegram API
type BotAPI interface {
	SendMessage(chatID int64, text string) error
	SendMessageWithMarkup(chatID int64, text string, markup any) error
	EditMessageWithMarkup(chatID int64, messageID int, text string, markup *tgbotapi.InlineKeyboardMarkup) error
	DeleteMessage(chatID int64, messageID int) error
	AnswerCallback(callbackID, text string) error
	SetBotCommands(commands []tgbotapi.BotCommand) error
}

// TelegramBotAPI оборачивает tgbotapi.BotAPI. Все сообщения отправляются в режиме HTML.
type TelegramBotAPI struct {
	api    *tgbotapi.BotAPI
	logger *zap.Logger
}

var _ BotAPI = (*TelegramBotAPI)(nil)

// NewTelegramBotAPI создает новую обертку над tgbotapi.BotAPI
func NewTelegramBotAPI(api *tgbotapi.BotAPI, logger *zap.Logger) *TelegramBotAPI {
	return &TelegramBotAPI{
		api:    api,
		logger: logger,
	}
}

// SendMessage отправляет текстовое сообщение
func (t *TelegramBotAPI) SendMessage(chatID int64, text string) error {
	return t.SendMessageWithMarkup(chatID, text, nil)
}

// SendMessageWithMarkup отправляет сообщение с клавиатурой
func (t *TelegramBotAPI) SendMessageWithMarkup(chatID int64, text string, markup any) error {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	msg.DisableWebPagePreview = true
	if markup != nil {
		msg.ReplyMarkup = markup
	}

	if _, err := t.api.Send(msg); err != nil {
		t.logger.Error("Failed to send message", zap.Int64("chat_id", chatID), zap.Error(err))
		return fmt.Errorf("failed to send message: %w", err)
	}
	return nil
}

// EditMessageWithMarkup редактирует текст и клавиатуру сообщения
func (t *TelegramBotAPI) EditMessageWithMarkup(chatID int64, messageID int, text string, markup *tgbotapi.InlineKeyboardMarkup) error {
	edit := tgbotapi.NewEditMessageText(chatID, messageID, text)
	edit.ParseMode = tgbotapi.ModeHTML
	edit.DisableWebPagePreview = true
	edit.ReplyMarkup = markup

	if _, err := t.api.Send(edit); err != nil {
		t.logger.Error("Failed to edit message",
			zap.Int64("chat_id", chatID),
			zap.Int("message_id", messageID),
			zap.Error(err))
		return fmt.Errorf("failed to edit message: %w", err)
	}
	return nil
}

// DeleteMessage удаляет сообщение
func (t *TelegramBotAPI) DeleteMessage(chatID int64, messageID int) error {
	if _, err := t.api.Request(tgbotapi.NewDeleteMessage(chatID, messageID)); err != nil {
		t.logger.Warn("Failed to delete message",
			zap.Int64("chat_id", chatID),
			zap.Int("message_id", messageID),
			zap.Error(err))
		return fmt.Errorf("failed to delete message: %w", err)
	}
	return nil
}

// AnswerCallback отвечает на callback query
func (t *TelegramBotAPI) AnswerCallback(callbackID, text string) error {
	if _, err := t.api.Request(tgbotapi.NewCallback(callbackID, text)); err != nil {
		return fmt.Errorf("failed to answer callback query: %w", err)
	}
	return nil
}

// SetBotCommands устанавливает меню команд бота
func (t *TelegramBotAPI) SetBotCommands(commands []tgbotapi.BotCommand) error {
	if _, err := t.api.Request(tgbotapi.NewSetMyCommands(commands...)); err != nil {
		t.logger.Error("Failed to set bot commands", zap.Error(err))
		return fmt.Errorf("failed to set bot commands: %w", err)
	}
	return nil
}
