package memory

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/example/club-schedule-board/internal/persistence"
)

// Storage is an in-memory EntryRepository used by tests and when no cache file is
// configured.
type Storage struct {
	mu      sync.RWMutex
	entries map[string]persistence.Entry
}

// New returns an empty storage.
func New() *Storage {
	return &Storage{entries: make(map[string]persistence.Entry)}
}

// Close releases resources held by the storage. No-op for the in-memory implementation.
func (s *Storage) Close() error {
	return nil
}

// Ping always succeeds; the storage has no connection to lose.
func (s *Storage) Ping(ctx context.Context) error {
	return nil
}

// GetEntry returns the entry stored under key.
func (s *Storage) GetEntry(ctx context.Context, key string) (persistence.Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entry, ok := s.entries[key]
	if !ok {
		return persistence.Entry{}, persistence.ErrNotFound
	}
	return cloneEntry(entry), nil
}

// PutEntry inserts or replaces the entry under entry.Key.
func (s *Storage) PutEntry(ctx context.Context, entry persistence.Entry) error {
	if strings.TrimSpace(entry.Key) == "" {
		return persistence.ErrConstraintViolation
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[entry.Key] = cloneEntry(entry)
	return nil
}

// DeleteEntry removes the entry under key. Missing keys are ignored.
func (s *Storage) DeleteEntry(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, key)
	return nil
}

// ListEntries returns every entry ordered by key.
func (s *Storage) ListEntries(ctx context.Context) ([]persistence.Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]persistence.Entry, 0, len(s.entries))
	for _, entry := range s.entries {
		out = append(out, cloneEntry(entry))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out, nil
}

func cloneEntry(entry persistence.Entry) persistence.Entry {
	if entry.Value != nil {
		value := make([]byte, len(entry.Value))
		copy(value, entry.Value)
		entry.Value = value
	}
	return entry
}
