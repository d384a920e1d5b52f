package persistence

import "time"

// Entry is one cached value stored under a unique key. Checksum is the hex digest of
// Value computed by the writer.
type Entry struct {
	Key       string
	Value     []byte
	Checksum  string
	UpdatedAt time.Time
}
