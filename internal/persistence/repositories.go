package persistence

import "context"

// EntryRepository stores key/value cache entries.
type EntryRepository interface {
	GetEntry(ctx context.Context, key string) (Entry, error)
	PutEntry(ctx context.Context, entry Entry) error
	DeleteEntry(ctx context.Context, key string) error
	ListEntries(ctx context.Context) ([]Entry, error)
}
