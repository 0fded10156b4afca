package credstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/vaultbank/vaultbank-web/internal/domain"
	"github.com/vaultbank/vaultbank-web/internal/ports/out/credstore"
)

// Store is a Redis implementation of credstore.Store.
//
// TTL, when positive, is applied on every Set so abandoned browser sessions age out;
// it is housekeeping only and does not model token expiry (that is the server's 401).
type Store struct {
	rdb    redis.UniversalClient
	key    string
	prefix string
	ttl    time.Duration
}

// Options configures the key layout and expiry of Redis-backed stores.
type Options struct {
	// Prefix is prepended to every key, e.g. "vb:".
	Prefix string
	TTL    time.Duration
}

func NewStore(rdb redis.UniversalClient, key string, opts Options) *Store {
	return &Store{rdb: rdb, key: key, prefix: opts.Prefix, ttl: opts.TTL}
}

func Factory(rdb redis.UniversalClient, opts Options) credstore.Factory {
	return func(key string) credstore.Store { return NewStore(rdb, key, opts) }
}

func (s *Store) redisKey() (string, error) {
	if s.rdb == nil {
		return "", errors.New("nil redis client")
	}
	if s.key == "" {
		return "", credstore.ErrEmptyKey
	}
	return s.prefix + s.key, nil
}

func (s *Store) Get(ctx context.Context) (domain.Token, bool, error) {
	k, err := s.redisKey()
	if err != nil {
		return "", false, err
	}
	v, err := s.rdb.Get(ctx, k).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("redis get credential: %w", err)
	}
	if v == "" {
		return "", false, nil
	}
	return domain.Token(v), true, nil
}

func (s *Store) Set(ctx context.Context, tok domain.Token) error {
	k, err := s.redisKey()
	if err != nil {
		return err
	}
	if tok.IsZero() {
		return credstore.ErrEmptyToken
	}
	if err := s.rdb.Set(ctx, k, string(tok), s.ttl).Err(); err != nil {
		return fmt.Errorf("redis set credential: %w", err)
	}
	return nil
}

func (s *Store) Clear(ctx context.Context) error {
	k, err := s.redisKey()
	if err != nil {
		return err
	}
	if err := s.rdb.Del(ctx, k).Err(); err != nil {
		return fmt.Errorf("redis del credential: %w", err)
	}
	return nil
}
