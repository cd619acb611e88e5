package alert

import (
	"context"
	"fmt"
	"html"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/honeycarbs/jobscout/internal/domain"
)

type sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// TelegramBroadcaster sends alerts to one Telegram chat
type TelegramBroadcaster struct {
	bot    sender
	chatID int64
}

// NewTelegramBroadcaster logs the bot in and targets chatID
func NewTelegramBroadcaster(token string, chatID int64) (*TelegramBroadcaster, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("alert: init telegram bot: %w", err)
	}
	return &TelegramBroadcaster{bot: bot, chatID: chatID}, nil
}

func (b *TelegramBroadcaster) Name() string {
	return "telegram"
}

func (b *TelegramBroadcaster) Broadcast(_ context.Context, alert domain.Alert) error {
	msg := tgbotapi.NewMessage(b.chatID, render(alert))
	msg.ParseMode = tgbotapi.ModeHTML
	msg.DisableWebPagePreview = true

	if _, err := b.bot.Send(msg); err != nil {
		return fmt.Errorf("alert: telegram send: %w", err)
	}
	return nil
}

func render(alert domain.Alert) string {
	icon := "ℹ️"
	switch alert.Type {
	case domain.AlertError:
		icon = "⚠️"
	case domain.AlertWatched:
		icon = "⭐"
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "%s <b>%s</b>", icon, html.EscapeString(alert.Title))
	if alert.Message != "" {
		sb.WriteString("\n")
		sb.WriteString(html.EscapeString(alert.Message))
	}
	if alert.URL != "" {
		fmt.Fprintf(&sb, "\n<a href=\"%s\">Open</a>", html.EscapeString(alert.URL))
	}
	return sb.String()
}
