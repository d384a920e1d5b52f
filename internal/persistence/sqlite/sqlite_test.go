package sqlite

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/example/club-schedule-board/internal/persistence"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()

	dsn := filepath.Join(t.TempDir(), "nested", "board-cache.db")
	store, err := Open(DefaultConfig(dsn), slog.New(slog.NewTextHandler(io.Discard, nil)))
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	t.Cleanup(func() {
		_ = store.Close()
	})

	if err := store.Migrate(context.Background()); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}
	return store
}

func TestStore_EntryLifecycle(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	if _, err := store.GetEntry(ctx, "gx_schedule_v7"); !errors.Is(err, persistence.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for missing entry, got %v", err)
	}

	updated := time.Date(2024, 3, 5, 9, 30, 0, 123000000, time.UTC)
	entry := persistence.Entry{Key: "gx_schedule_v7", Value: []byte(`[{"id":"c1"}]`), Checksum: "abc", UpdatedAt: updated}
	if err := store.PutEntry(ctx, entry); err != nil {
		t.Fatalf("PutEntry failed: %v", err)
	}

	fetched, err := store.GetEntry(ctx, entry.Key)
	if err != nil {
		t.Fatalf("GetEntry failed: %v", err)
	}
	if string(fetched.Value) != string(entry.Value) || fetched.Checksum != "abc" || !fetched.UpdatedAt.Equal(updated) {
		t.Fatalf("unexpected entry %+v", fetched)
	}

	entry.Value = []byte(`[]`)
	entry.Checksum = "def"
	if err := store.PutEntry(ctx, entry); err != nil {
		t.Fatalf("PutEntry overwrite failed: %v", err)
	}
	fetched, err = store.GetEntry(ctx, entry.Key)
	if err != nil {
		t.Fatalf("GetEntry failed: %v", err)
	}
	if string(fetched.Value) != "[]" || fetched.Checksum != "def" {
		t.Fatalf("expected overwrite, got %+v", fetched)
	}

	if err := store.DeleteEntry(ctx, entry.Key); err != nil {
		t.Fatalf("DeleteEntry failed: %v", err)
	}
	if err := store.DeleteEntry(ctx, entry.Key); err != nil {
		t.Fatalf("expected deleting a missing entry to succeed, got %v", err)
	}
	if _, err := store.GetEntry(ctx, entry.Key); !errors.Is(err, persistence.ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
}

func TestStore_RejectsEmptyKey(t *testing.T) {
	store := newTestStore(t)
	if err := store.PutEntry(context.Background(), persistence.Entry{Key: "  "}); !errors.Is(err, persistence.ErrConstraintViolation) {
		t.Fatalf("expected ErrConstraintViolation, got %v", err)
	}
}

func TestStore_MigrateIsRepeatable(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	if err := store.PutEntry(ctx, persistence.Entry{Key: "k", Value: []byte("1")}); err != nil {
		t.Fatalf("PutEntry failed: %v", err)
	}
	if err := store.Migrate(ctx); err != nil {
		t.Fatalf("second Migrate failed: %v", err)
	}
	entries, err := store.ListEntries(ctx)
	if err != nil {
		t.Fatalf("ListEntries failed: %v", err)
	}
	if len(entries) != 1 || entries[0].Key != "k" {
		t.Fatalf("expected data to survive re-migration, got %+v", entries)
	}
}

func TestStore_InMemoryDSN(t *testing.T) {
	ctx := context.Background()
	store, err := Open(DefaultConfig(":memory:"), nil)
	if err != nil {
		t.Fatalf("failed to open in-memory store: %v", err)
	}
	defer store.Close()

	if err := store.Migrate(ctx); err != nil {
		t.Fatalf("Migrate failed: %v", err)
	}
	if err := store.PutEntry(ctx, persistence.Entry{Key: "k", Value: []byte("v")}); err != nil {
		t.Fatalf("PutEntry failed: %v", err)
	}
	if _, err := store.GetEntry(ctx, "k"); err != nil {
		t.Fatalf("GetEntry failed: %v", err)
	}
}

func TestConfigValidate(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{name: "default", mutate: func(*Config) {}, wantErr: false},
		{name: "empty dsn", mutate: func(c *Config) { c.DSN = "" }, wantErr: true},
		{name: "negative busy timeout", mutate: func(c *Config) { c.BusyTimeout = -time.Second }, wantErr: true},
		{name: "bad journal mode", mutate: func(c *Config) { c.JournalMode = "FAST" }, wantErr: true},
		{name: "bad synchronous", mutate: func(c *Config) { c.Synchronous = "SOMETIMES" }, wantErr: true},
		{name: "negative pool", mutate: func(c *Config) { c.MaxOpenConns = -1 }, wantErr: true},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			cfg := DefaultConfig("cache.db")
			tc.mutate(&cfg)
			if err := cfg.Validate(); (err != nil) != tc.wantErr {
				t.Fatalf("expected error=%v, got %v", tc.wantErr, err)
			}
		})
	}
}

func TestErrorMapper(t *testing.T) {
	t.Parallel()

	mapper := NewErrorMapper()
	if err := mapper.MapError(errors.New("UNIQUE constraint failed: cache_entries.key")); !errors.Is(err, persistence.ErrConstraintViolation) {
		t.Fatalf("expected constraint violation, got %v", err)
	}
	if err := mapper.MapError(errors.New("database is locked (5) (SQLITE_BUSY)")); !errors.Is(err, errDatabaseLocked) {
		t.Fatalf("expected locked error, got %v", err)
	}
	other := errors.New("disk I/O error")
	if err := mapper.MapError(other); err != other {
		t.Fatalf("expected unknown error to pass through, got %v", err)
	}
}

func TestRetryHelper(t *testing.T) {
	t.Parallel()

	helper := NewRetryHelper(RetryConfig{MaxRetries: 2, InitialDelay: time.Millisecond, MaxDelay: time.Millisecond, BackoffFactor: 2})

	attempts := 0
	err := helper.WithRetry(context.Background(), func() error {
		attempts++
		if attempts < 3 {
			return errors.New("database is locked")
		}
		return nil
	})
	if err != nil || attempts != 3 {
		t.Fatalf("expected success on third attempt, got err=%v attempts=%d", err, attempts)
	}

	attempts = 0
	err = helper.WithRetry(context.Background(), func() error {
		attempts++
		return errors.New("CHECK constraint failed")
	})
	if !errors.Is(err, persistence.ErrConstraintViolation) || attempts != 1 {
		t.Fatalf("expected no retry for constraint violation, got err=%v attempts=%d", err, attempts)
	}
}
