package store

import (
	"context"
	"fmt"
	"slices"

	"tempmail-otp-bot/internal/models"
)

// UserEmails maps a chat user id to the addresses it created, oldest first
type UserEmails map[string][]string

// Store persists the full user -> addresses mapping. Callers always load the
// whole mapping, change one user and save the whole mapping back.
type Store interface {
	Load(ctx context.Context) (UserEmails, error)
	Save(ctx context.Context, data UserEmails) error
	Close() error
}

// Open returns the store selected by the configuration
func Open(cfg models.StoreConfig) (Store, error) {
	switch cfg.Driver {
	case "", "json":
		return NewJSONStore(cfg.Path), nil
	case "sqlite":
		return NewSQLiteStore(cfg.Path)
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.Driver)
	}
}

// AppendEmail adds address to the user's list unless it is already there and
// writes the merged mapping back. It returns the user's list after the merge.
func AppendEmail(ctx context.Context, s Store, userID, address string) ([]string, error) {
	data, err := s.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading store: %w", err)
	}
	if data == nil {
		data = UserEmails{}
	}

	emails := data[userID]
	if !slices.Contains(emails, address) {
		emails = append(emails, address)
	}
	data[userID] = emails

	if err := s.Save(ctx, data); err != nil {
		return nil, fmt.Errorf("saving store: %w", err)
	}

	return slices.Clone(emails), nil
}
