package alerts

import (
	"context"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"sola/pkg/logger"
)

// Notifier delivers operational alerts to the on-call channel
type Notifier interface {
	// Alert sends a high-priority message
	Alert(ctx context.Context, title string, message string) error
}

// TelegramNotifier sends alerts to an admin chat via a Telegram bot
type TelegramNotifier struct {
	bot    *tgbotapi.BotAPI
	chatID int64
	log    *logger.Logger
}

var _ Notifier = (*TelegramNotifier)(nil)

// NewTelegramNotifier creates a Telegram alert notifier
func NewTelegramNotifier(botToken string, chatID int64) (*TelegramNotifier, error) {
	bot, err := tgbotapi.NewBotAPI(botToken)
	if err != nil {
		return nil, fmt.Errorf("failed to create telegram bot: %w", err)
	}

	return &TelegramNotifier{
		bot:    bot,
		chatID: chatID,
		log:    logger.Get().With("component", "telegram_alerts"),
	}, nil
}

// Alert sends a formatted alert to the admin chat
func (n *TelegramNotifier) Alert(ctx context.Context, title string, message string) error {
	text := fmt.Sprintf("🚨 *%s*\n\n%s", escapeMarkdown(title), escapeMarkdown(message))

	msg := tgbotapi.NewMessage(n.chatID, text)
	msg.ParseMode = tgbotapi.ModeMarkdown

	if _, err := n.bot.Send(msg); err != nil {
		n.log.Errorf("Failed to send alert %q: %v", title, err)
		return err
	}
	return nil
}

func escapeMarkdown(s string) string {
	out := make([]rune, 0, len(s))
	for _, r := range s {
		switch r {
		case '_', '*', '`', '[':
			out = append(out, '\\')
		}
		out = append(out, r)
	}
	return string(out)
}

// NoopNotifier discards alerts, used when Telegram is not configured
type NoopNotifier struct{}

var _ Notifier = (*NoopNotifier)(nil)

// NewNoopNotifier creates a notifier that does nothing
func NewNoopNotifier() *NoopNotifier {
	return &NoopNotifier{}
}

// Alert does nothing
func (n *NoopNotifier) Alert(ctx context.Context, title string, message string) error {
	return nil
}
