package models

import "time"

// Config represents the application configuration
type Config struct {
	Telegram TelegramConfig `yaml:"telegram"`
	Provider ProviderConfig `yaml:"provider"`
	Store    StoreConfig    `yaml:"store"`
	Health   HealthConfig   `yaml:"health"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// TelegramConfig represents the chat transport configuration
type TelegramConfig struct {
	Token       string `yaml:"token"`
	PollTimeout int    `yaml:"pollTimeout"` // seconds of long polling per getUpdates call
	Debug       bool   `yaml:"debug"`
}

// ProviderConfig selects and configures the mail backend
type ProviderConfig struct {
	Kind        string            `yaml:"kind"` // "mailblinker" or "imap"
	Mailblinker MailblinkerConfig `yaml:"mailblinker"`
	Imap        ImapConfig        `yaml:"imap"`
}

// MailblinkerConfig represents the disposable mail HTTP API configuration
type MailblinkerConfig struct {
	BaseURL string        `yaml:"baseURL"`
	Token   string        `yaml:"token"`
	Timeout time.Duration `yaml:"timeout"` // zero keeps the transport default
}

// ImapConfig represents a catch-all IMAP mailbox used as a mail backend
type ImapConfig struct {
	Server   string `yaml:"server"`
	Login    string `yaml:"login"`
	Password string `yaml:"password"`
	MailBox  string `yaml:"mailbox"`
	Domain   string `yaml:"domain"`
}

// StoreConfig represents the persistent user -> addresses store
type StoreConfig struct {
	Driver string `yaml:"driver"` // "json" or "sqlite"
	Path   string `yaml:"path"`
}

// HealthConfig represents the liveness HTTP endpoint
type HealthConfig struct {
	Enabled bool   `yaml:"enabled"`
	Addr    string `yaml:"addr"`
}

// LoggingConfig represents logger settings
type LoggingConfig struct {
	Level string `yaml:"level"`
}
