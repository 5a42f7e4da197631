// Package telegram connects the conversation controller to the Telegram Bot API through long polling.
package telegram

import (
	"context"
	"strconv"

	"tempmail-otp-bot/internal/conversation"
	"tempmail-otp-bot/internal/logging"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/google/uuid"
)

// API is the part of *tgbotapi.BotAPI the bot uses
type API interface {
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	StopReceivingUpdates()
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// Handler answers one conversation turn
type Handler interface {
	Start(ctx context.Context, userID string) []conversation.Reply
	HandleText(ctx context.Context, userID, text string) []conversation.Reply
}

type Bot struct {
	api         API
	handler     Handler
	pollTimeout int
}

// NewBot creates a Bot polling api with the given long-poll timeout in seconds
func NewBot(api API, handler Handler, pollTimeout int) *Bot {
	return &Bot{
		api:         api,
		handler:     handler,
		pollTimeout: pollTimeout,
	}
}

// Run polls updates and handles them one at a time until ctx is canceled or
// the update channel is closed. An update already being handled is finished
// even when ctx is canceled meanwhile.
func (b *Bot) Run(ctx context.Context) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = b.pollTimeout

	updates := b.api.GetUpdatesChan(u)
	defer b.api.StopReceivingUpdates()

	for {
		select {
		case <-ctx.Done():
			logging.Log.Info("Stopping update polling")
			return nil
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			b.handleUpdate(context.WithoutCancel(ctx), update)
		}
	}
}

func (b *Bot) handleUpdate(ctx context.Context, update tgbotapi.Update) {
	msg := update.Message
	if msg == nil || msg.From == nil || msg.Chat == nil {
		return
	}

	ctx = logging.WithTrace(ctx, uuid.New().String())
	userID := strconv.FormatInt(msg.From.ID, 10)
	locallog := logging.FromContext(ctx).WithField("user_id", userID)

	var replies []conversation.Reply
	switch {
	case msg.IsCommand():
		if msg.Command() != "start" {
			locallog.Debugf("Ignoring command /%s", msg.Command())
			return
		}
		replies = b.handler.Start(ctx, userID)
	case msg.Text != "":
		replies = b.handler.HandleText(ctx, userID, msg.Text)
	default:
		return
	}

	for _, r := range replies {
		if _, err := b.api.Send(buildMessage(msg.Chat.ID, r)); err != nil {
			locallog.WithError(err).Error("Error sending reply")
		}
	}
}

// buildMessage renders a reply for chatID
func buildMessage(chatID int64, r conversation.Reply) tgbotapi.MessageConfig {
	m := tgbotapi.NewMessage(chatID, r.Text)
	if r.Markdown {
		m.ParseMode = tgbotapi.ModeMarkdown
	}

	switch {
	case r.Button != nil:
		m.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(
			tgbotapi.NewInlineKeyboardRow(
				tgbotapi.NewInlineKeyboardButtonURL(r.Button.Label, r.Button.URL),
			),
		)
	case r.Menu:
		m.ReplyMarkup = menuKeyboard()
	}

	return m
}

func menuKeyboard() tgbotapi.ReplyKeyboardMarkup {
	rows := make([][]tgbotapi.KeyboardButton, 0, len(conversation.MenuLabels))
	for _, label := range conversation.MenuLabels {
		rows = append(rows, tgbotapi.NewKeyboardButtonRow(tgbotapi.NewKeyboardButton(label)))
	}
	kb := tgbotapi.NewReplyKeyboard(rows...)
	kb.ResizeKeyboard = true
	return kb
}
