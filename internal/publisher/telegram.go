package publisher

import (
	"context"
	"fmt"
	"strconv"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

// TelegramPublisher posts to a Telegram channel instead of X. Useful for
// staging a new category mix in front of a private audience with the exact
// same pipeline.
type TelegramPublisher struct {
	api    *tgbotapi.BotAPI
	chatID int64
	logger *zap.Logger
}

func NewTelegramPublisher(token string, chatID int64, logger *zap.Logger) (*TelegramPublisher, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("failed to create bot: %w", err)
	}

	return &TelegramPublisher{
		api:    api,
		chatID: chatID,
		logger: logger,
	}, nil
}

func (p *TelegramPublisher) Publish(ctx context.Context, text string) (PostResult, error) {
	msg := tgbotapi.NewMessage(p.chatID, text)
	sent, err := p.api.Send(msg)
	if err != nil {
		return PostResult{}, fmt.Errorf("send telegram message: %w", err)
	}

	p.logger.Info("message posted to telegram",
		zap.Int64("chat_id", p.chatID),
		zap.Int("message_id", sent.MessageID))
	return PostResult{PostID: strconv.Itoa(sent.MessageID)}, nil
}

func (p *TelegramPublisher) Verify(ctx context.Context) error {
	// NewBotAPI already called getMe; Self is populated on success.
	if p.api.Self.UserName == "" {
		return fmt.Errorf("telegram credentials not verified")
	}
	p.logger.Info("connected to telegram", zap.String("username", p.api.Self.UserName))
	return nil
}
