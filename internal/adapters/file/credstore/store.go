package credstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/vaultbank/vaultbank-web/internal/domain"
	"github.com/vaultbank/vaultbank-web/internal/ports/out/credstore"
)

// record is the on-disk shape of one stored token.
type record struct {
	Token   string    `json:"token"`
	SavedAt time.Time `json:"saved_at"`
}

// Store is a file-backed credstore.Store: one 0600 JSON file per key inside a 0700 directory.
// Writes go through a temp file + rename so a reader never sees a half-written token.
type Store struct {
	dir string
	key string

	mu *sync.Mutex
}

// NewStore binds dir/key. The directory is created on first write.
func NewStore(dir, key string) *Store {
	return &Store{dir: dir, key: key, mu: &sync.Mutex{}}
}

// Factory returns a credstore.Factory over dir. Stores for the same key share a lock.
func Factory(dir string) credstore.Factory {
	var (
		mu    sync.Mutex
		locks = map[string]*sync.Mutex{}
	)
	return func(key string) credstore.Store {
		mu.Lock()
		defer mu.Unlock()
		l, ok := locks[key]
		if !ok {
			l = &sync.Mutex{}
			locks[key] = l
		}
		return &Store{dir: dir, key: key, mu: l}
	}
}

// Path is the file holding the token.
func (s *Store) Path() string {
	name := strings.NewReplacer(":", "_", "/", "_", string(filepath.Separator), "_").Replace(s.key)
	return filepath.Join(s.dir, name+".json")
}

func (s *Store) Get(ctx context.Context) (domain.Token, bool, error) {
	_ = ctx
	if s.key == "" {
		return "", false, credstore.ErrEmptyKey
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	b, err := os.ReadFile(s.Path())
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("read token file: %w", err)
	}
	var rec record
	if err := json.Unmarshal(b, &rec); err != nil {
		return "", false, fmt.Errorf("decode token file %s: %w", s.Path(), err)
	}
	if rec.Token == "" {
		return "", false, nil
	}
	return domain.Token(rec.Token), true, nil
}

func (s *Store) Set(ctx context.Context, tok domain.Token) error {
	_ = ctx
	if s.key == "" {
		return credstore.ErrEmptyKey
	}
	if tok.IsZero() {
		return credstore.ErrEmptyToken
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(s.dir, 0o700); err != nil {
		return fmt.Errorf("create token dir: %w", err)
	}
	data, err := json.MarshalIndent(record{Token: string(tok), SavedAt: time.Now().UTC()}, "", "  ")
	if err != nil {
		return err
	}
	tmp, err := os.CreateTemp(s.dir, ".token-*")
	if err != nil {
		return fmt.Errorf("create temp token file: %w", err)
	}
	defer os.Remove(tmp.Name())
	if err := tmp.Chmod(0o600); err != nil {
		tmp.Close()
		return fmt.Errorf("chmod temp token file: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write temp token file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp token file: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.Path()); err != nil {
		return fmt.Errorf("replace token file: %w", err)
	}
	return nil
}

func (s *Store) Clear(ctx context.Context) error {
	_ = ctx
	if s.key == "" {
		return credstore.ErrEmptyKey
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.Path()); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove token file: %w", err)
	}
	return nil
}
