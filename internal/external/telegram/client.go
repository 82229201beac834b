// Package telegram содержит интеграцию с Telegram Bot API.
package telegram

import (
	"context"
	"fmt"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

// UpdateHandler определяет интерфейс для обработчика обновлений
type UpdateHandler interface {
	HandleUpdate(update tgbotapi.Update)
	BotCommands() []tgbotapi.BotCommand
}

// Client представляет клиент Telegram Bot API
type Client struct {
	bot    *tgbotapi.BotAPI
	botAPI *TelegramBotAPI
	logger *zap.Logger
}

// NewClient создает новый клиент Telegram
func NewClient(botToken string, logger *zap.Logger) (*Client, error) {
	bot, err := tgbotapi.NewBotAPI(botToken)
	if err != nil {
		return nil, fmt.Errorf("failed to create bot API: %w", err)
	}

	bot.Debug = false
	logger.Info("Telegram bot created", zap.String("username", bot.Self.UserName))

	return &Client{
		bot:    bot,
		botAPI: NewTelegramBotAPI(bot, logger),
		logger: logger,
	}, nil
}

// Start запускает long polling и передает обновления обработчику.
// Возвращает ошибку, если канал обновлений закрылся; вызывающий код перезапускает цикл.
func (c *Client) Start(ctx context.Context, handler UpdateHandler) error {
	c.logger.Info("Bot started", zap.String("username", c.bot.Self.UserName))

	if _, err := c.bot.Request(tgbotapi.DeleteWebhookConfig{DropPendingUpdates: true}); err != nil {
		c.logger.Error("Failed to delete webhook", zap.Error(err))
		return fmt.Errorf("failed to delete webhook: %w", err)
	}

	if err := c.botAPI.SetBotCommands(handler.BotCommands()); err != nil {
		return err
	}

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	u.AllowedUpdates = []string{"message", "callback_query"}

	c.logger.Info("Starting to fetch updates")
	updatesChan := c.bot.GetUpdatesChan(u)
	defer c.bot.StopReceivingUpdates()

	reconnectDelay := 10 * time.Second

	for {
		select {
		case <-ctx.Done():
			c.logger.Info("Update loop cancelled by context")
			return ctx.Err()
		case update, ok := <-updatesChan:
			if !ok {
				c.logger.Warn("Update channel closed, will try to reconnect after delay")
				select {
				case <-ctx.Done():
					return ctx.Err()
				case <-time.After(reconnectDelay):
					return fmt.Errorf("update channel closed, reconnecting")
				}
			}
			c.processUpdate(update, handler)
		}
	}
}

// processUpdate отбрасывает неподдерживаемые обновления
func (c *Client) processUpdate(update tgbotapi.Update, handler UpdateHandler) {
	c.logger.Debug("Processing update",
		zap.Int("update_id", update.UpdateID),
		zap.Int64("user_id", UserID(update)),
		zap.String("update_type", updateType(update)))

	if update.Message == nil && update.CallbackQuery == nil {
		return
	}
	if update.CallbackQuery != nil && update.CallbackQuery.Message == nil {
		return
	}
	// Вложения не обрабатываем
	if update.Message != nil && update.Message.Text == "" {
		return
	}

	handler.HandleUpdate(update)
}

// BotAPI возвращает обертку для отправки сообщений
func (c *Client) BotAPI() BotAPI {
	return c.botAPI
}

// UserID извлекает ID пользователя из обновления
func UserID(update tgbotapi.Update) int64 {
	if update.Message != nil && update.Message.From != nil {
		return update.Message.From.ID
	}
	if update.CallbackQuery != nil && update.CallbackQuery.From != nil {
		return update.CallbackQuery.From.ID
	}
	return 0
}

// ChatID извлекает ID чата из обновления
func ChatID(update tgbotapi.Update) int64 {
	if update.Message != nil {
		return update.Message.Chat.ID
	}
	if update.CallbackQuery != nil && update.CallbackQuery.Message != nil {
		return update.CallbackQuery.Message.Chat.ID
	}
	return 0
}

func updateType(update tgbotapi.Update) string {
	if update.Message != nil {
		if update.Message.IsCommand() {
			return "command"
		}
		return "message"
	}
	if update.CallbackQuery != nil {
		return "callback"
	}
	return "unknown"
}

// UserIdentifier возвращает читаемый идентификатор пользователя для логов
func UserIdentifier(user *tgbotapi.User) string {
	if user == nil {
		return "unknown"
	}

	if user.UserName != "" {
		return "@" + user.UserName
	}

	if user.FirstName != "" {
		if user.LastName != "" {
			return user.FirstName + " " + user.LastName
		}
		return user.FirstName
	}

	return fmt.Sprintf("user_%d", user.ID)
}
