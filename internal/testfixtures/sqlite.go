package testfixtures

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/example/club-schedule-board/internal/persistence"
	"github.com/example/club-schedule-board/internal/persistence/memory"
	"github.com/example/club-schedule-board/internal/persistence/sqlite"
)

// NewSQLiteEntries opens a migrated cache database in a temporary directory. The
// database is closed when the test finishes.
func NewSQLiteEntries(tb testing.TB) persistence.EntryRepository {
	tb.Helper()

	path := filepath.Join(tb.TempDir(), "board-cache.db")
	store, err := sqlite.Open(sqlite.DefaultConfig(path), slog.New(slog.NewTextHandler(io.Discard, nil)))
	if err != nil {
		tb.Fatalf("failed to open cache database: %v", err)
	}
	if err := store.Migrate(context.Background()); err != nil {
		_ = store.Close()
		tb.Fatalf("failed to migrate cache database: %v", err)
	}
	tb.Cleanup(func() { _ = store.Close() })
	return store
}

// NewMemoryEntries returns an empty in-memory entry repository.
func NewMemoryEntries(tb testing.TB) persistence.EntryRepository {
	tb.Helper()
	store := memory.New()
	tb.Cleanup(func() { _ = store.Close() })
	return store
}
