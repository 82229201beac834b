package telegram

import (
	"context"

	"go.uber.org/zap"
)

// Sender доставляет уведомления планировщика через Telegram
type Sender struct {
	api    BotAPI
	logger *zap.Logger
}

// NewSender создает отправителя уведомлений
func NewSender(api BotAPI, logger *zap.Logger) *Sender {
	return &Sender{
		api:    api,
		logger: logger,
	}
}

// Send отправляет HTML сообщение в чат
func (s *Sender) Send(ctx context.Context, chatID int64, htmlText string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.api.SendMessage(chatID, htmlText)
}

// LogSender только пишет уведомления в лог. Используется, когда токен бота не задан.
type LogSender struct {
	logger *zap.Logger
}

// NewLogSender создает отправителя, который ничего не доставляет
func NewLogSender(logger *zap.Logger) *LogSender {
	return &LogSender{logger: logger}
}

// Send пишет сообщение в лог
func (s *LogSender) Send(_ context.Context, chatID int64, htmlText string) error {
	s.logger.Info("Telegram is not configured, notification logged only",
		zap.Int64("chat_id", chatID),
		zap.Int("length", len(htmlText)))
	return nil
}
