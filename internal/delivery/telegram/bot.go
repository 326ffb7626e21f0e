package telegram

import (
	"context"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

// Sender is the part of the bot API used for outgoing messages.
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// Bot answers ops commands in the configured chat.
type Bot struct {
	api         *tgbotapi.BotAPI
	handlers    *Handlers
	pollTimeout int
}

func NewAPI(token string) (*tgbotapi.BotAPI, error) {
	return tgbotapi.NewBotAPI(token)
}

func NewBot(api *tgbotapi.BotAPI, handlers *Handlers, pollTimeout int) *Bot {
	return &Bot{api: api, handlers: handlers, pollTimeout: pollTimeout}
}

func (b *Bot) Start(ctx context.Context) error {
	config := tgbotapi.NewUpdate(0)
	config.Timeout = b.pollTimeout
	updates := b.api.GetUpdatesChan(config)

	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			return nil
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			b.handlers.HandleUpdate(ctx, update)
		}
	}
}

// OpsNotifier posts batch failures and recoveries to the ops chat.
type OpsNotifier struct {
	api    Sender
	chatID int64
	logger *zap.Logger
}

func NewOpsNotifier(api Sender, chatID int64, logger *zap.Logger) *OpsNotifier {
	return &OpsNotifier{api: api, chatID: chatID, logger: logger}
}

func (n *OpsNotifier) NotifyFailure(_ context.Context, err error) error {
	return n.send(fmt.Sprintf("❌ Alert batch failed\n\n%s", err))
}

func (n *OpsNotifier) NotifyRecovery(_ context.Context, failures int) error {
	return n.send(fmt.Sprintf("✅ Alert batch recovered after %d failed run(s)", failures))
}

func (n *OpsNotifier) send(text string) error {
	n.logger.Info("telegram ops notify", zap.Int64("chat_id", n.chatID), zap.String("text", text))
	msg := tgbotapi.NewMessage(n.chatID, text)
	if _, err := n.api.Send(msg); err != nil {
		n.logger.Warn("failed to notify", zap.Error(err))
		return err
	}
	return nil
}
