package session

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	_ "modernc.org/sqlite"

	apperrors "github.com/facuhernandez99/shario-admin/pkg/errors"
	"github.com/facuhernandez99/shario-admin/pkg/logging"
)

// SQLiteStorage keeps session keys in a local SQLite file so they survive restarts.
type SQLiteStorage struct {
	db     *sql.DB
	logger *logging.ContextLogger
}

// NewSQLiteStorage opens (or creates) the database at dsn and creates the kv table.
// Example DSN: "file:shario-admin.db?_pragma=busy_timeout(5000)"
func NewSQLiteStorage(dsn string) (*SQLiteStorage, error) {
	logger := logging.GetDefault().Component("session")
	ctx := context.Background()

	sqldb, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// A single connection keeps ":memory:" databases from splitting per connection.
	sqldb.SetMaxOpenConns(1)

	if err := sqldb.PingContext(ctx); err != nil {
		sqldb.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}

	s := &SQLiteStorage{db: sqldb, logger: logger}
	if err := s.migrate(ctx); err != nil {
		sqldb.Close()
		return nil, err
	}

	logger.WithField("storage_type", "sqlite").Info(ctx, "Session storage ready")
	return s, nil
}

func (s *SQLiteStorage) migrate(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS kv (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate sqlite: %w", err)
		}
	}
	return nil
}

// Get returns the value stored under key
func (s *SQLiteStorage) Get(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM kv WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		s.logger.WithField("key", key).Error(ctx, "Failed to read session key", err)
		return "", false, apperrors.Wrap(err, apperrors.ErrCodeStorage, "failed to read session key")
	}
	return value, true, nil
}

// Set stores value under key
func (s *SQLiteStorage) Set(ctx context.Context, key, value string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO kv (key, value) VALUES (?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value`, key, value)
	if err != nil {
		s.logger.WithField("key", key).Error(ctx, "Failed to write session key", err)
		return apperrors.Wrap(err, apperrors.ErrCodeStorage, "failed to write session key")
	}
	return nil
}

// Remove deletes the given keys
func (s *SQLiteStorage) Remove(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(keys)), ",")
	args := make([]interface{}, len(keys))
	for i, key := range keys {
		args[i] = key
	}

	if _, err := s.db.ExecContext(ctx, `DELETE FROM kv WHERE key IN (`+placeholders+`)`, args...); err != nil {
		s.logger.WithField("keys", keys).Error(ctx, "Failed to remove session keys", err)
		return apperrors.Wrap(err, apperrors.ErrCodeStorage, "failed to remove session keys")
	}
	return nil
}

// Close closes the database
func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}
