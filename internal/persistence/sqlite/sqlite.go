package sqlite

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/example/club-schedule-board/internal/persistence"
)

// Store implements persistence.EntryRepository on a SQLite database file.
type Store struct {
	pool   *ConnectionPool
	helper *QueryHelper
	mapper *ErrorMapper
	retry  *RetryHelper
	logger *slog.Logger
}

// Open connects to the database described by config.
func Open(config Config, logger *slog.Logger) (*Store, error) {
	pool, err := NewConnectionPool(config)
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{
		pool:   pool,
		helper: NewQueryHelper(pool),
		mapper: NewErrorMapper(),
		retry:  NewRetryHelper(DefaultRetryConfig()),
		logger: logger.With("component", "sqlite_cache"),
	}, nil
}

// Migrate creates or upgrades the cache schema.
func (s *Store) Migrate(ctx context.Context) error {
	return s.migrate(ctx)
}

// Close releases the underlying connections.
func (s *Store) Close() error {
	return s.pool.Close()
}

// Ping checks that the database is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// GetEntry returns the entry stored under key.
func (s *Store) GetEntry(ctx context.Context, key string) (persistence.Entry, error) {
	var (
		entry     persistence.Entry
		updatedAt string
	)
	err := s.helper.QueryRow(ctx,
		`SELECT key, value, checksum, updated_at FROM cache_entries WHERE key = ?`, key,
	).Scan(&entry.Key, &entry.Value, &entry.Checksum, &updatedAt)
	if err != nil {
		return persistence.Entry{}, s.mapper.MapError(err)
	}

	entry.UpdatedAt, err = time.Parse(time.RFC3339Nano, updatedAt)
	if err != nil {
		return persistence.Entry{}, fmt.Errorf("parse updated_at for %s: %w", key, err)
	}
	return entry, nil
}

// PutEntry inserts or replaces the entry under entry.Key.
func (s *Store) PutEntry(ctx context.Context, entry persistence.Entry) error {
	if strings.TrimSpace(entry.Key) == "" {
		return persistence.ErrConstraintViolation
	}
	if entry.Value == nil {
		entry.Value = []byte{}
	}
	if entry.UpdatedAt.IsZero() {
		entry.UpdatedAt = time.Now()
	}

	return s.retry.WithRetry(ctx, func() error {
		_, err := s.helper.Exec(ctx, `
			INSERT INTO cache_entries (key, value, checksum, updated_at)
			VALUES (?, ?, ?, ?)
			ON CONFLICT(key) DO UPDATE SET
				value = excluded.value,
				checksum = excluded.checksum,
				updated_at = excluded.updated_at
		`, entry.Key, entry.Value, entry.Checksum, entry.UpdatedAt.UTC().Format(time.RFC3339Nano))
		return err
	})
}

// DeleteEntry removes the entry under key. Missing keys are ignored.
func (s *Store) DeleteEntry(ctx context.Context, key string) error {
	return s.retry.WithRetry(ctx, func() error {
		_, err := s.helper.Exec(ctx, `DELETE FROM cache_entries WHERE key = ?`, key)
		return err
	})
}

// ListEntries returns every entry ordered by key.
func (s *Store) ListEntries(ctx context.Context) ([]persistence.Entry, error) {
	rows, err := s.helper.Query(ctx, `SELECT key, value, checksum, updated_at FROM cache_entries ORDER BY key`)
	if err != nil {
		return nil, s.mapper.MapError(err)
	}
	defer rows.Close()

	var entries []persistence.Entry
	for rows.Next() {
		var (
			entry     persistence.Entry
			updatedAt string
		)
		if err := rows.Scan(&entry.Key, &entry.Value, &entry.Checksum, &updatedAt); err != nil {
			return nil, s.mapper.MapError(err)
		}
		if entry.UpdatedAt, err = time.Parse(time.RFC3339Nano, updatedAt); err != nil {
			return nil, fmt.Errorf("parse updated_at for %s: %w", entry.Key, err)
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, s.mapper.MapError(err)
	}
	return entries, nil
}
