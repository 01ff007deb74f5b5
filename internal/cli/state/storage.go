package state

import (
	"context"
	"time"
)

// Entry is one persisted slot. A zero ExpiresAt never expires.
type Entry struct {
	Value     string    `json:"value"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Expired reports whether the entry is past its expiry at now.
func (e Entry) Expired(now time.Time) bool {
	return !e.ExpiresAt.IsZero() && !now.Before(e.ExpiresAt)
}

// Storage abstracts the persistence behind the token store so the cookie-jar
// mechanism can be swapped (file, redis, memory).
type Storage interface {
	// Get returns the entry for key; ok is false when nothing is stored.
	Get(ctx context.Context, key string) (entry Entry, ok bool, err error)
	// Set overwrites the entry for key.
	Set(ctx context.Context, key string, entry Entry) error
	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
}
