package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"tempmail-otp-bot/internal/config"
	"tempmail-otp-bot/internal/conversation"
	"tempmail-otp-bot/internal/health"
	"tempmail-otp-bot/internal/logging"
	"tempmail-otp-bot/internal/models"
	"tempmail-otp-bot/internal/provider"
	"tempmail-otp-bot/internal/provider/imapbox"
	"tempmail-otp-bot/internal/provider/mailblinker"
	"tempmail-otp-bot/internal/session"
	"tempmail-otp-bot/internal/store"
	"tempmail-otp-bot/internal/telegram"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/joho/godotenv"
)

const (
	maxBackoff      = 30 * time.Minute
	shutdownTimeout = 5 * time.Second
)

func main() {
	if err := godotenv.Load(); err != nil {
		logging.Log.Debug("No .env file loaded")
	}

	cfg, err := config.Load("config.yaml")
	if err != nil {
		logging.Log.Fatalf("Error reading configuration file: %v", err)
	}
	if err := config.Validate(cfg); err != nil {
		logging.Log.Fatalf("Invalid configuration: %v", err)
	}
	logging.SetLevel(cfg.Logging.Level)

	st, err := store.Open(cfg.Store)
	if err != nil {
		logging.Log.Fatalf("Error opening %s store: %v", cfg.Store.Driver, err)
	}
	defer func() {
		_ = st.Close()
	}()

	mail := newProvider(cfg.Provider)
	controller := conversation.NewController(st, session.NewManager(), mail)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var liveness *health.Server
	if cfg.Health.Enabled {
		liveness = health.New(cfg.Health.Addr)
		go func() {
			if err := liveness.Start(); err != nil {
				logging.Log.Errorf("Liveness endpoint stopped: %v", err)
			}
		}()
	}

	api, err := connectBot(ctx, cfg.Telegram)
	if err != nil {
		if ctx.Err() == nil {
			logging.Log.Fatalf("Error connecting to Telegram: %v", err)
		}
		logging.Log.Infof("Stopped before the bot connected: %v", err)
		shutdown(liveness)
		return
	}

	logging.Log.Infof("Bot @%s started with %s mail provider and %s store", api.Self.UserName, mail.Name(), cfg.Store.Driver)

	bot := telegram.NewBot(api, controller, cfg.Telegram.PollTimeout)
	if err := bot.Run(ctx); err != nil {
		logging.Log.Errorf("Polling stopped: %v", err)
	}

	shutdown(liveness)
	logging.Log.Info("Bye")
}

func newProvider(cfg models.ProviderConfig) provider.Provider {
	switch cfg.Kind {
	case config.ProviderImap:
		return imapbox.New(cfg.Imap)
	default:
		return mailblinker.NewClient(cfg.Mailblinker)
	}
}

// connectBot retries the Telegram handshake with exponential backoff until it
// succeeds or ctx is canceled. A rejected token is not retried.
func connectBot(ctx context.Context, cfg models.TelegramConfig) (*tgbotapi.BotAPI, error) {
	failures := 0
	for {
		api, err := tgbotapi.NewBotAPI(cfg.Token)
		if err == nil {
			api.Debug = cfg.Debug
			return api, nil
		}

		var apiErr *tgbotapi.Error
		if errors.As(err, &apiErr) && apiErr.Code == http.StatusUnauthorized {
			return nil, fmt.Errorf("bot token rejected: %w", err)
		}

		failures++
		backoff := nextBackoff(failures)
		logging.Log.Warnf("Telegram connection failed %d times (%v), waiting %s before next attempt", failures, err, backoff)

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(backoff):
		}
	}
}

// nextBackoff doubles from 5 seconds on every failure, capped at maxBackoff
func nextBackoff(failures int) time.Duration {
	const base = 5 * time.Second

	n := failures - 1
	if n > 10 {
		n = 10
	}

	backoff := base * time.Duration(1<<n)
	if backoff > maxBackoff {
		backoff = maxBackoff
	}
	return backoff
}

func shutdown(liveness *health.Server) {
	if liveness == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := liveness.Shutdown(ctx); err != nil {
		logging.Log.Errorf("Error stopping liveness endpoint: %v", err)
	}
}
