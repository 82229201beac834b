package middleware

import (
	"runtime/debug"

	"dailymind/internal/external/telegram"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

// RecoveryMiddleware перехватывает панику обработчика и сообщает пользователю об ошибке
func RecoveryMiddleware(notify Notifier, logger *zap.Logger) Func {
	return func(update tgbotapi.Update, next HandlerFunc) {
		defer func() {
			panicErr := recover()
			if panicErr == nil {
				return
			}

			chatID, user := chatAndUser(update)
			logger.Error("Panic recovered in update handler",
				zap.String("action", action(update)),
				zap.Int64("chat_id", chatID),
				zap.String("user", telegram.UserIdentifier(user)),
				zap.Int("update_id", update.UpdateID),
				zap.Any("panic", panicErr),
				zap.String("stack", string(debug.Stack())))

			if notify != nil && chatID != 0 {
				notify(chatID, "❌ Произошла ошибка. Попробуйте позже.")
			}
		}()
		next(update)
	}
}
