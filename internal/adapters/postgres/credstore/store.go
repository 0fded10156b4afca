package credstore

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	postgres "github.com/vaultbank/vaultbank-web/internal/adapters/postgres"
	"github.com/vaultbank/vaultbank-web/internal/domain"
	"github.com/vaultbank/vaultbank-web/internal/ports/out/credstore"
)

// Store is a Postgres implementation of credstore.Store over the credentials table.
type Store struct {
	pool *pgxpool.Pool
	key  string
}

func NewStore(pool *pgxpool.Pool, key string) *Store {
	return &Store{pool: pool, key: key}
}

func Factory(pool *pgxpool.Pool) credstore.Factory {
	return func(key string) credstore.Store { return NewStore(pool, key) }
}

func (s *Store) check() error {
	if s.pool == nil {
		return errors.New("nil postgres pool")
	}
	if s.key == "" {
		return credstore.ErrEmptyKey
	}
	return nil
}

func (s *Store) Get(ctx context.Context) (domain.Token, bool, error) {
	if err := s.check(); err != nil {
		return "", false, err
	}
	var tok string
	err := s.pool.QueryRow(ctx, `SELECT token FROM credentials WHERE key = $1`, s.key).Scan(&tok)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("select credential: %w", err)
	}
	return domain.Token(tok), true, nil
}

func (s *Store) Set(ctx context.Context, tok domain.Token) error {
	if err := s.check(); err != nil {
		return err
	}
	if tok.IsZero() {
		return credstore.ErrEmptyToken
	}
	_, err := s.pool.Exec(ctx, `
		INSERT INTO credentials (key, token, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (key)
		DO UPDATE SET
			token = EXCLUDED.token,
			updated_at = EXCLUDED.updated_at
	`, s.key, string(tok))
	if err != nil {
		if pe, ok := postgres.AsPgError(err); ok && pe.Code == postgres.UndefinedTableCode {
			return fmt.Errorf("credentials table missing (run migrations): %w", err)
		}
		return fmt.Errorf("upsert credential: %w", err)
	}
	return nil
}

func (s *Store) Clear(ctx context.Context) error {
	if err := s.check(); err != nil {
		return err
	}
	if _, err := s.pool.Exec(ctx, `DELETE FROM credentials WHERE key = $1`, s.key); err != nil {
		return fmt.Errorf("delete credential: %w", err)
	}
	return nil
}
