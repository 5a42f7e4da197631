package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS user_emails (
        user_id  TEXT    NOT NULL,
        position INTEGER NOT NULL,
        email    TEXT    NOT NULL,
        PRIMARY KEY (user_id, email)
    );`,
	`CREATE INDEX IF NOT EXISTS idx_user_emails_order ON user_emails(user_id, position);`,
}

type emailRow struct {
	UserID   string `db:"user_id"`
	Position int    `db:"position"`
	Email    string `db:"email"`
}

// SQLiteStore keeps the same full mapping in a local SQLite database
type SQLiteStore struct {
	db *sqlx.DB
}

// NewSQLiteStore opens (or creates) the database at path and applies the schema.
// An empty path opens an in-memory database.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	trimmed := strings.TrimSpace(path)
	inMemory := trimmed == "" || trimmed == ":memory:"
	if trimmed == "" {
		trimmed = ":memory:"
	}

	db, err := sqlx.Open("sqlite", trimmed)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite db: %w", err)
	}
	// a second connection to :memory: would see an empty database
	db.SetMaxOpenConns(1)

	if !inMemory {
		if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
			db.Close()
			return nil, fmt.Errorf("enabling WAL mode: %w", err)
		}
	}

	for _, statement := range schema {
		if _, err := db.Exec(statement); err != nil {
			db.Close()
			return nil, fmt.Errorf("applying schema: %w", err)
		}
	}

	return &SQLiteStore{db: db}, nil
}

// Load reads every row back into the mapping, preserving creation order per user
func (s *SQLiteStore) Load(ctx context.Context) (UserEmails, error) {
	var rows []emailRow
	err := s.db.SelectContext(ctx, &rows,
		`SELECT user_id, position, email FROM user_emails ORDER BY user_id, position`)
	if err != nil {
		return nil, fmt.Errorf("loading user emails: %w", err)
	}

	data := UserEmails{}
	for _, row := range rows {
		data[row.UserID] = append(data[row.UserID], row.Email)
	}

	return data, nil
}

// Save replaces the table contents with the mapping in a single transaction
func (s *SQLiteStore) Save(ctx context.Context, data UserEmails) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM user_emails`); err != nil {
		return fmt.Errorf("clearing user emails: %w", err)
	}

	for userID, emails := range data {
		for i, email := range emails {
			_, err := tx.NamedExecContext(ctx,
				`INSERT OR IGNORE INTO user_emails (user_id, position, email) VALUES (:user_id, :position, :email)`,
				emailRow{UserID: userID, Position: i, Email: email},
			)
			if err != nil {
				return fmt.Errorf("inserting %s for user %s: %w", email, userID, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// Close closes the underlying database connection
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
