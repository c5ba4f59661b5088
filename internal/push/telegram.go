package push

import (
	"context"
	"fmt"
	"strconv"

	"github.com/mymmrac/telego"
)

// telegramNotifier delivers messages through the Telegram Bot API.
type telegramNotifier struct {
	bot    *telego.Bot
	chatID int64
}

func newTelegram(token, chatID string) (*telegramNotifier, error) {
	id, err := strconv.ParseInt(chatID, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid telegram chat id %q: %w", chatID, err)
	}

	bot, err := telego.NewBot(token)
	if err != nil {
		return nil, fmt.Errorf("failed to create telegram bot: %w", err)
	}
	return &telegramNotifier{bot: bot, chatID: id}, nil
}

func (t *telegramNotifier) Name() string { return "telegram" }

func (t *telegramNotifier) Send(ctx context.Context, text string) error {
	_, err := t.bot.SendMessage(ctx, &telego.SendMessageParams{
		ChatID: telego.ChatID{ID: t.chatID},
		Text:   text,
	})
	return err
}
