package middleware

import (
	"fmt"
	"time"

	"dailymind/internal/external/telegram"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

// LoggingMiddleware логирует начало и завершение обработки обновления
func LoggingMiddleware(logger *zap.Logger) Func {
	return func(update tgbotapi.Update, next HandlerFunc) {
		start := time.Now()
		requestID := fmt.Sprintf("%d-%d", update.UpdateID, start.UnixNano())
		chatID, user := chatAndUser(update)
		act := action(update)

		// Текст сообщений не логируется, он может содержать пароль
		logger.Info("Processing update",
			zap.String("request_id", requestID),
			zap.String("action", act),
			zap.Int64("chat_id", chatID),
			zap.String("user", telegram.UserIdentifier(user)),
			zap.Int("update_id", update.UpdateID))

		next(update)

		logger.Info("Update processed",
			zap.String("request_id", requestID),
			zap.String("action", act),
			zap.Duration("duration", time.Since(start)))
	}
}
