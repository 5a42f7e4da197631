package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"tempmail-otp-bot/internal/models"

	"gopkg.in/yaml.v2"
)

const (
	ProviderMailblinker = "mailblinker"
	ProviderImap        = "imap"

	StoreJSON   = "json"
	StoreSQLite = "sqlite"
)

// ErrMissingCredential is returned by Validate when a required token or password is absent
var ErrMissingCredential = errors.New("missing required credential")

// Load builds the configuration from defaults, the optional YAML file at filepath, then environment variables
func Load(filepath string) (*models.Config, error) {
	cfg := Default()

	configFile, err := os.ReadFile(filepath)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(configFile, cfg); err != nil {
			return nil, fmt.Errorf("parsing %s: %w", filepath, err)
		}
	case errors.Is(err, os.ErrNotExist):
		// environment-only deployments have no file
	default:
		return nil, fmt.Errorf("reading %s: %w", filepath, err)
	}

	applyEnv(cfg)
	normalize(cfg)
	return cfg, nil
}

// Default returns the configuration used when nothing else is set
func Default() *models.Config {
	return &models.Config{
		Telegram: models.TelegramConfig{
			PollTimeout: 60,
		},
		Provider: models.ProviderConfig{
			Kind: ProviderMailblinker,
			Mailblinker: models.MailblinkerConfig{
				BaseURL: "https://mailblinker.com",
			},
			Imap: models.ImapConfig{
				MailBox: "INBOX",
			},
		},
		Store: models.StoreConfig{
			Driver: StoreJSON,
			Path:   "user_emails.json",
		},
		Health: models.HealthConfig{
			Enabled: true,
			Addr:    ":8080",
		},
		Logging: models.LoggingConfig{
			Level: "info",
		},
	}
}

// Validate checks the credentials the process cannot start without
func Validate(cfg *models.Config) error {
	if cfg.Telegram.Token == "" {
		return fmt.Errorf("%w: BOT_TOKEN", ErrMissingCredential)
	}

	switch cfg.Provider.Kind {
	case ProviderMailblinker:
		if cfg.Provider.Mailblinker.Token == "" {
			return fmt.Errorf("%w: MAILBLINKER_TOKEN", ErrMissingCredential)
		}
	case ProviderImap:
		imap := cfg.Provider.Imap
		if imap.Server == "" || imap.Login == "" || imap.Password == "" {
			return fmt.Errorf("%w: IMAP_SERVER, IMAP_LOGIN and IMAP_PASSWORD", ErrMissingCredential)
		}
		if imap.Domain == "" {
			return errors.New("imap provider requires a catch-all domain (IMAP_DOMAIN)")
		}
	default:
		return fmt.Errorf("unknown mail provider %q", cfg.Provider.Kind)
	}

	switch cfg.Store.Driver {
	case StoreJSON, StoreSQLite:
	default:
		return fmt.Errorf("unknown store driver %q", cfg.Store.Driver)
	}

	return nil
}

// applyEnv overrides the configuration with non-empty environment variables
func applyEnv(cfg *models.Config) {
	setString(&cfg.Telegram.Token, "BOT_TOKEN")
	if v := getEnv("TELEGRAM_POLL_TIMEOUT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Telegram.PollTimeout = n
		}
	}

	if v := getEnv("MAIL_PROVIDER"); v != "" {
		cfg.Provider.Kind = strings.ToLower(v)
	}
	setString(&cfg.Provider.Mailblinker.Token, "MAILBLINKER_TOKEN")
	setString(&cfg.Provider.Mailblinker.BaseURL, "MAILBLINKER_BASE_URL")
	if v := getEnv("MAILBLINKER_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Provider.Mailblinker.Timeout = d
		}
	}

	setString(&cfg.Provider.Imap.Server, "IMAP_SERVER")
	setString(&cfg.Provider.Imap.Login, "IMAP_LOGIN")
	setString(&cfg.Provider.Imap.Password, "IMAP_PASSWORD")
	setString(&cfg.Provider.Imap.MailBox, "IMAP_MAILBOX")
	setString(&cfg.Provider.Imap.Domain, "IMAP_DOMAIN")

	if v := getEnv("STORE_DRIVER"); v != "" {
		cfg.Store.Driver = strings.ToLower(v)
	}
	setString(&cfg.Store.Path, "DATA_FILE")

	if v := getEnv("PORT"); v != "" {
		cfg.Health.Addr = ":" + strings.TrimPrefix(v, ":")
	}
	if v := getEnv("HEALTH_ENABLED"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Health.Enabled = b
		}
	}

	if v := getEnv("LOG_LEVEL"); v != "" {
		cfg.Logging.Level = strings.ToLower(v)
	}
}

// normalize lowercases the enumerated settings whatever their source
func normalize(cfg *models.Config) {
	cfg.Provider.Kind = strings.ToLower(strings.TrimSpace(cfg.Provider.Kind))
	cfg.Store.Driver = strings.ToLower(strings.TrimSpace(cfg.Store.Driver))
	cfg.Logging.Level = strings.ToLower(strings.TrimSpace(cfg.Logging.Level))
}

func setString(dst *string, key string) {
	if v := getEnv(key); v != "" {
		*dst = v
	}
}

func getEnv(key string) string {
	return strings.TrimSpace(os.Getenv(key))
}
