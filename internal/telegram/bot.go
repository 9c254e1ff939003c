package telegram

import (
	"context"
	"fmt"

	"github.com/go-telegram/bot"
)

// Bot runs long polling and hands every update to a Handler.
type Bot struct {
	client  *bot.Bot
	handler *Handler
}

// NewBot creates the Telegram client for token and attaches h to it.
func NewBot(token string, h *Handler) (*Bot, error) {
	if token == "" {
		return nil, fmt.Errorf("telegram token is empty")
	}

	b, err := bot.New(token, bot.WithDefaultHandler(h.HandleUpdate))
	if err != nil {
		return nil, fmt.Errorf("create telegram bot: %w", err)
	}
	h.SetMessenger(b)

	return &Bot{client: b, handler: h}, nil
}

// Run polls for updates until ctx is cancelled.
func (b *Bot) Run(ctx context.Context) {
	b.handler.log.Info("telegram bot polling started")
	b.client.Start(ctx)
	b.handler.log.Info("telegram bot polling stopped")
}
