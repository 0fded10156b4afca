package credstore

import (
	"context"

	"github.com/vaultbank/vaultbank-web/internal/domain"
)

// Store holds the bearer token of one client under one fixed key.
//
// Absence of a token means "logged out". Implementations must make Clear idempotent:
// several concurrent 401 responses may each decide to clear the same session.
type Store interface {
	// Get returns the stored token. ok is false when nothing is stored.
	Get(ctx context.Context) (tok domain.Token, ok bool, err error)
	// Set replaces the stored token. Empty tokens are rejected with ErrEmptyToken.
	Set(ctx context.Context, tok domain.Token) error
	// Clear removes the stored token, if any.
	Clear(ctx context.Context) error
}

// Factory binds a backend to a key, e.g. domain.TokenKey or domain.SessionTokenKey(sid).
type Factory func(key string) Store
