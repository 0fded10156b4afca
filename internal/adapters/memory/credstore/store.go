package credstore

import (
	"context"
	"sync"

	"github.com/vaultbank/vaultbank-web/internal/domain"
	"github.com/vaultbank/vaultbank-web/internal/ports/out/credstore"
)

// Keyspace is an in-memory token table shared by every Store bound to it.
// It is safe for concurrent use.
type Keyspace struct {
	mu sync.RWMutex
	m  map[string]domain.Token
}

func NewKeyspace() *Keyspace {
	return &Keyspace{m: make(map[string]domain.Token)}
}

// Store binds the keyspace to key.
func (k *Keyspace) Store(key string) *Store {
	return &Store{ks: k, key: key}
}

// Factory adapts the keyspace to credstore.Factory.
func (k *Keyspace) Factory() credstore.Factory {
	return func(key string) credstore.Store { return k.Store(key) }
}

// Len reports how many keys currently hold a token.
func (k *Keyspace) Len() int {
	k.mu.RLock()
	defer k.mu.RUnlock()
	return len(k.m)
}

// Store is an in-memory implementation of credstore.Store.
type Store struct {
	ks  *Keyspace
	key string
}

// NewStore returns a standalone store under domain.TokenKey.
func NewStore() *Store {
	return NewKeyspace().Store(domain.TokenKey)
}

func (s *Store) Get(ctx context.Context) (domain.Token, bool, error) {
	_ = ctx
	if s.key == "" {
		return "", false, credstore.ErrEmptyKey
	}
	s.ks.mu.RLock()
	defer s.ks.mu.RUnlock()
	tok, ok := s.ks.m[s.key]
	return tok, ok, nil
}

func (s *Store) Set(ctx context.Context, tok domain.Token) error {
	_ = ctx
	if s.key == "" {
		return credstore.ErrEmptyKey
	}
	if tok.IsZero() {
		return credstore.ErrEmptyToken
	}
	s.ks.mu.Lock()
	defer s.ks.mu.Unlock()
	s.ks.m[s.key] = tok
	return nil
}

func (s *Store) Clear(ctx context.Context) error {
	_ = ctx
	if s.key == "" {
		return credstore.ErrEmptyKey
	}
	s.ks.mu.Lock()
	defer s.ks.mu.Unlock()
	delete(s.ks.m, s.key)
	return nil
}
