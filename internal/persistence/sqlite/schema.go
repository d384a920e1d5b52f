package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

type schemaMigration struct {
	version     int
	description string
	statements  []string
}

// migrations are applied in order; applied versions are recorded in schema_migrations.
var migrations = []schemaMigration{
	{
		version:     1,
		description: "create cache entries",
		statements: []string{
			`CREATE TABLE IF NOT EXISTS cache_entries (
				key TEXT PRIMARY KEY CHECK (length(trim(key)) > 0),
				value BLOB NOT NULL,
				checksum TEXT NOT NULL,
				updated_at TEXT NOT NULL
			)`,
		},
	},
}

func (s *Store) migrate(ctx context.Context) error {
	if _, err := s.helper.Exec(ctx, `CREATE TABLE IF NOT EXISTS schema_migrations (
		version INTEGER PRIMARY KEY,
		description TEXT NOT NULL,
		applied_at TEXT NOT NULL
	)`); err != nil {
		return fmt.Errorf("failed to initialize schema_migrations table: %w", err)
	}

	applied := make(map[int]bool)
	rows, err := s.helper.Query(ctx, `SELECT version FROM schema_migrations`)
	if err != nil {
		return fmt.Errorf("failed to read applied migrations: %w", err)
	}
	for rows.Next() {
		var version int
		if err := rows.Scan(&version); err != nil {
			rows.Close()
			return fmt.Errorf("failed to scan migration version: %w", err)
		}
		applied[version] = true
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return fmt.Errorf("failed to iterate migration versions: %w", err)
	}
	rows.Close()

	for _, m := range migrations {
		if applied[m.version] {
			continue
		}
		err := s.pool.WithTransaction(ctx, func(tx *sql.Tx) error {
			for _, stmt := range m.statements {
				if _, err := tx.ExecContext(ctx, stmt); err != nil {
					return err
				}
			}
			_, err := tx.ExecContext(ctx,
				`INSERT INTO schema_migrations (version, description, applied_at) VALUES (?, ?, ?)`,
				m.version, m.description, time.Now().UTC().Format(time.RFC3339),
			)
			return err
		})
		if err != nil {
			return fmt.Errorf("migration %d (%s) failed: %w", m.version, m.description, err)
		}
		s.logger.Info("applied cache schema migration", "version", m.version, "description", m.description)
	}
	return nil
}
