package state

import (
	"context"
	"time"

	pkgerrors "authportal/pkg/errors"
)

// TokenStore owns the single bearer-token slot. A new token overwrites the
// previous one; reads of an expired slot behave as if it were empty.
type TokenStore struct {
	storage Storage
	key     string
	ttl     time.Duration
	now     func() time.Time
}

// StoreOption customizes a TokenStore.
type StoreOption func(*TokenStore)

// WithClock injects the time source used for expiry.
func WithClock(now func() time.Time) StoreOption {
	return func(s *TokenStore) {
		if now != nil {
			s.now = now
		}
	}
}

func NewTokenStore(storage Storage, key string, ttl time.Duration, opts ...StoreOption) *TokenStore {
	s := &TokenStore{
		storage: storage,
		key:     key,
		ttl:     ttl,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Set stores token with the default TTL.
func (s *TokenStore) Set(ctx context.Context, token string) error {
	return s.SetWithTTL(ctx, token, s.ttl)
}

// SetWithTTL stores token with expiry now+ttl. A non-positive ttl never expires.
func (s *TokenStore) SetWithTTL(ctx context.Context, token string, ttl time.Duration) error {
	entry := Entry{Value: token}
	if ttl > 0 {
		entry.ExpiresAt = s.now().Add(ttl)
	}
	if err := s.storage.Set(ctx, s.key, entry); err != nil {
		return pkgerrors.Wrapf(err, pkgerrors.TokenStoreFailure, "store token failed: %v", err)
	}
	return nil
}

// Get returns the live token, or "" when absent or expired.
func (s *TokenStore) Get(ctx context.Context) (string, error) {
	entry, ok, err := s.entry(ctx)
	if err != nil || !ok {
		return "", err
	}
	return entry.Value, nil
}

// ExpiresAt returns the expiry of the live token.
func (s *TokenStore) ExpiresAt(ctx context.Context) (time.Time, bool, error) {
	entry, ok, err := s.entry(ctx)
	if err != nil || !ok {
		return time.Time{}, false, err
	}
	return entry.ExpiresAt, true, nil
}

// Clear removes the slot.
func (s *TokenStore) Clear(ctx context.Context) error {
	if err := s.storage.Delete(ctx, s.key); err != nil {
		return pkgerrors.Wrapf(err, pkgerrors.TokenStoreFailure, "clear token failed: %v", err)
	}
	return nil
}

func (s *TokenStore) entry(ctx context.Context) (Entry, bool, error) {
	entry, ok, err := s.storage.Get(ctx, s.key)
	if err != nil {
		return Entry{}, false, pkgerrors.Wrapf(err, pkgerrors.TokenStoreFailure, "read token failed: %v", err)
	}
	if !ok || entry.Value == "" {
		return Entry{}, false, nil
	}
	if entry.Expired(s.now()) {
		_ = s.storage.Delete(ctx, s.key)
		return Entry{}, false, nil
	}
	return entry, true, nil
}
