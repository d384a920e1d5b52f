// Package cache mirrors board collections to a local key/value store as checksummed
// JSON snapshots.
package cache

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/crypto/blake2b"

	"github.com/example/club-schedule-board/internal/application"
	"github.com/example/club-schedule-board/internal/persistence"
)

// Store implements application.CacheStore over a persistence.EntryRepository.
type Store struct {
	entries persistence.EntryRepository
	now     func() time.Time
	logger  *slog.Logger
}

// New constructs a cache store.
func New(entries persistence.EntryRepository, now func() time.Time, logger *slog.Logger) *Store {
	if now == nil {
		now = time.Now
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{entries: entries, now: now, logger: logger.With("component", "cache")}
}

var _ application.CacheStore = (*Store)(nil)

// Load decodes the snapshot stored under key into dst. Missing, checksum-mismatched
// and malformed snapshots report false without an error.
func (s *Store) Load(ctx context.Context, key application.CacheKey, dst any) (bool, error) {
	entry, err := s.entries.GetEntry(ctx, string(key))
	if errors.Is(err, persistence.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("cache: load %s: %w", key, err)
	}

	if entry.Checksum != Checksum(entry.Value) {
		s.logger.WarnContext(ctx, "discarding cached snapshot with checksum mismatch", "key", string(key))
		return false, nil
	}
	if err := json.Unmarshal(entry.Value, dst); err != nil {
		s.logger.WarnContext(ctx, "discarding malformed cached snapshot", "key", string(key), "error", err)
		return false, nil
	}
	return true, nil
}

// Save replaces the snapshot under key with the JSON encoding of value.
func (s *Store) Save(ctx context.Context, key application.CacheKey, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("cache: encode %s: %w", key, err)
	}
	entry := persistence.Entry{
		Key:       string(key),
		Value:     raw,
		Checksum:  Checksum(raw),
		UpdatedAt: s.now(),
	}
	if err := s.entries.PutEntry(ctx, entry); err != nil {
		return fmt.Errorf("cache: save %s: %w", key, err)
	}
	return nil
}

// Remove deletes the snapshot under key.
func (s *Store) Remove(ctx context.Context, key application.CacheKey) error {
	if err := s.entries.DeleteEntry(ctx, string(key)); err != nil {
		return fmt.Errorf("cache: remove %s: %w", key, err)
	}
	return nil
}

// Checksum returns the hex BLAKE2b-256 digest of value.
func Checksum(value []byte) string {
	sum := blake2b.Sum256(value)
	return hex.EncodeToString(sum[:])
}
