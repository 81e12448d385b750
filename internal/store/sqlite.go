package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/desertthunder/nowplaying/internal/shared"
)

// SQLiteStore implements [Store] on the kv table created by the embedded migrations.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens the database at cfg.Path and applies pending migrations.
func NewSQLiteStore(cfg shared.SQLiteConfig) (*SQLiteStore, error) {
	db, err := shared.NewDatabase(cfg.Path)
	if err != nil {
		return nil, err
	}
	shared.ConfigureDatabase(db, cfg.Path, cfg.MaxOpenConns, cfg.MaxIdleConns)

	if err := shared.RunMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Get(ctx context.Context, key string) (string, error) {
	var value string
	err := s.db.QueryRowContext(ctx, "SELECT value FROM kv WHERE key = ?", key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("failed to query %s: %w", key, err)
	}
	return value, nil
}

func (s *SQLiteStore) Set(ctx context.Context, key, value string) error {
	query := `
		INSERT INTO kv (key, value, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
	`
	if _, err := s.db.ExecContext(ctx, query, key, value); err != nil {
		return fmt.Errorf("failed to store %s: %w", key, err)
	}
	return nil
}

// Incr increments the counter and reads it back inside one transaction.
func (s *SQLiteStore) Incr(ctx context.Context, key string) (int64, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO kv (key, value, updated_at) VALUES (?, '1', CURRENT_TIMESTAMP)
		ON CONFLICT(key) DO UPDATE SET value = CAST(kv.value AS INTEGER) + 1, updated_at = CURRENT_TIMESTAMP
	`, key)
	if err != nil {
		return 0, fmt.Errorf("failed to increment %s: %w", key, err)
	}

	var n int64
	if err := tx.QueryRowContext(ctx, "SELECT CAST(value AS INTEGER) FROM kv WHERE key = ?", key).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to read %s: %w", key, err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit increment: %w", err)
	}

	return n, nil
}

func (s *SQLiteStore) Ping(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return fmt.Errorf("%w: sqlite: %v", shared.ErrServiceUnavailable, err)
	}
	return nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
