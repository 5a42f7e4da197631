package telegram

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	"tempmail-otp-bot/internal/conversation"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

type MockAPI struct {
	updates  chan tgbotapi.Update
	sent     []tgbotapi.MessageConfig
	sendErr  error
	stopped  bool
	gotUConf tgbotapi.UpdateConfig
}

func (m *MockAPI) GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel {
	m.gotUConf = config
	return m.updates
}

func (m *MockAPI) StopReceivingUpdates() {
	m.stopped = true
}

func (m *MockAPI) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	if mc, ok := c.(tgbotapi.MessageConfig); ok {
		m.sent = append(m.sent, mc)
	}
	return tgbotapi.Message{}, m.sendErr
}

type MockHandler struct {
	starts []string
	texts  []string
}

func (h *MockHandler) Start(ctx context.Context, userID string) []conversation.Reply {
	h.starts = append(h.starts, userID)
	return []conversation.Reply{{Text: "welcome", Menu: true}}
}

func (h *MockHandler) HandleText(ctx context.Context, userID, text string) []conversation.Reply {
	h.texts = append(h.texts, userID+":"+text)
	return []conversation.Reply{{Text: "one"}, {Text: "*two*", Markdown: true}}
}

func textMessage(userID int64, text string) tgbotapi.Update {
	msg := &tgbotapi.Message{
		From: &tgbotapi.User{ID: userID},
		Chat: &tgbotapi.Chat{ID: userID},
		Text: text,
	}
	if len(text) > 0 && text[0] == '/' {
		end := len(text)
		for i, r := range text {
			if r == ' ' {
				end = i
				break
			}
		}
		msg.Entities = []tgbotapi.MessageEntity{{Type: "bot_command", Offset: 0, Length: end}}
	}
	return tgbotapi.Update{Message: msg}
}

func runWithUpdates(t *testing.T, api *MockAPI, handler Handler, updates ...tgbotapi.Update) {
	t.Helper()
	api.updates = make(chan tgbotapi.Update, len(updates))
	for _, u := range updates {
		api.updates <- u
	}
	close(api.updates)

	bot := NewBot(api, handler, 60)
	done := make(chan error, 1)
	go func() { done <- bot.Run(context.Background()) }()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Run() error = %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Run() did not return after the update channel closed")
	}
}

func TestRun(t *testing.T) {
	api := &MockAPI{}
	handler := &MockHandler{}

	runWithUpdates(t, api, handler,
		textMessage(42, "/start"),
		textMessage(42, "/help"),
		textMessage(7, "📧 إنشاء إيميل"),
		tgbotapi.Update{},
	)

	if !reflect.DeepEqual(handler.starts, []string{"42"}) {
		t.Errorf("starts = %v", handler.starts)
	}
	if !reflect.DeepEqual(handler.texts, []string{"7:📧 إنشاء إيميل"}) {
		t.Errorf("texts = %v", handler.texts)
	}
	if len(api.sent) != 3 {
		t.Fatalf("Expected 3 sent messages, got %d", len(api.sent))
	}
	if api.sent[0].ChatID != 42 || api.sent[1].ChatID != 7 || api.sent[2].ChatID != 7 {
		t.Errorf("Unexpected chat ids %d %d %d", api.sent[0].ChatID, api.sent[1].ChatID, api.sent[2].ChatID)
	}
	if api.gotUConf.Timeout != 60 {
		t.Errorf("Poll timeout = %d, want 60", api.gotUConf.Timeout)
	}
	if !api.stopped {
		t.Error("Polling should be stopped on return")
	}
}

func TestRun_SendFailureKeepsPolling(t *testing.T) {
	api := &MockAPI{sendErr: errors.New("Forbidden: bot was blocked by the user")}
	handler := &MockHandler{}

	runWithUpdates(t, api, handler, textMessage(1, "a"), textMessage(2, "b"))

	if len(handler.texts) != 2 {
		t.Errorf("Expected both updates handled, got %v", handler.texts)
	}
}

func TestRun_ContextCanceled(t *testing.T) {
	api := &MockAPI{updates: make(chan tgbotapi.Update)}
	bot := NewBot(api, &MockHandler{}, 30)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := bot.Run(ctx); err != nil {
		t.Errorf("Run() error = %v", err)
	}
	if !api.stopped {
		t.Error("Polling should be stopped on cancel")
	}
}

func TestBuildMessage(t *testing.T) {
	t.Run("Plain", func(t *testing.T) {
		m := buildMessage(5, conversation.Reply{Text: "hi"})
		if m.ChatID != 5 || m.Text != "hi" || m.ParseMode != "" || m.ReplyMarkup != nil {
			t.Errorf("Unexpected message %+v", m)
		}
	})

	t.Run("Markdown", func(t *testing.T) {
		m := buildMessage(5, conversation.Reply{Text: "*hi*", Markdown: true})
		if m.ParseMode != tgbotapi.ModeMarkdown {
			t.Errorf("ParseMode = %q", m.ParseMode)
		}
	})

	t.Run("Menu", func(t *testing.T) {
		m := buildMessage(5, conversation.Reply{Text: "menu", Menu: true})
		kb, ok := m.ReplyMarkup.(tgbotapi.ReplyKeyboardMarkup)
		if !ok {
			t.Fatalf("Expected a reply keyboard, got %T", m.ReplyMarkup)
		}
		if !kb.ResizeKeyboard {
			t.Error("Keyboard should be resized")
		}
		if len(kb.Keyboard) != len(conversation.MenuLabels) {
			t.Fatalf("Expected %d rows, got %d", len(conversation.MenuLabels), len(kb.Keyboard))
		}
		for i, row := range kb.Keyboard {
			if len(row) != 1 || row[0].Text != conversation.MenuLabels[i] {
				t.Errorf("Row %d = %+v, want %q", i, row, conversation.MenuLabels[i])
			}
		}
	})

	t.Run("Button", func(t *testing.T) {
		m := buildMessage(5, conversation.Reply{
			Text:     "gift",
			Markdown: true,
			Button:   &conversation.Button{Label: "open", URL: "https://discord.gift/x"},
		})
		kb, ok := m.ReplyMarkup.(tgbotapi.InlineKeyboardMarkup)
		if !ok {
			t.Fatalf("Expected an inline keyboard, got %T", m.ReplyMarkup)
		}
		btn := kb.InlineKeyboard[0][0]
		if btn.Text != "open" || btn.URL == nil || *btn.URL != "https://discord.gift/x" {
			t.Errorf("Unexpected button %+v", btn)
		}
	})
}
