package store

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"tempmail-otp-bot/internal/logging"
)

// JSONStore keeps the mapping in one human-readable JSON file
type JSONStore struct {
	path string
}

// NewJSONStore creates a store backed by the file at path. The file is created on first save.
func NewJSONStore(path string) *JSONStore {
	return &JSONStore{path: path}
}

// Load reads the whole file. A missing, unreadable or malformed file is an empty mapping.
func (s *JSONStore) Load(_ context.Context) (UserEmails, error) {
	raw, err := os.ReadFile(s.path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			logging.Log.WithError(err).Warnf("Cannot read store %s, starting empty", s.path)
		}
		return UserEmails{}, nil
	}

	var data UserEmails
	if err := json.Unmarshal(raw, &data); err != nil {
		logging.Log.WithError(err).Warnf("Corrupt store %s, starting empty", s.path)
		return UserEmails{}, nil
	}
	if data == nil {
		data = UserEmails{}
	}

	return data, nil
}

// Save replaces the file with the full mapping through a temp file and a rename
func (s *JSONStore) Save(_ context.Context, data UserEmails) error {
	if data == nil {
		data = UserEmails{}
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "    ")
	if err := enc.Encode(data); err != nil {
		return fmt.Errorf("encoding store: %w", err)
	}
	content := bytes.TrimRight(buf.Bytes(), "\n")

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating store directory %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	defer func() {
		_ = os.Remove(tmp.Name())
	}()

	if _, err := tmp.Write(content); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("writing %s: %w", tmp.Name(), err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing %s: %w", tmp.Name(), err)
	}

	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("replacing %s: %w", s.path, err)
	}

	return nil
}

// Close is a no-op, the file is only open during Load and Save
func (s *JSONStore) Close() error {
	return nil
}
