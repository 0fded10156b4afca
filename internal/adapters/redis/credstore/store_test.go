package credstore

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/vaultbank/vaultbank-web/internal/adapters/contracttest"
	"github.com/vaultbank/vaultbank-web/internal/domain"
	credstoreport "github.com/vaultbank/vaultbank-web/internal/ports/out/credstore"
)

func newRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis start: %v", err)
	}
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() {
		rdb.Close()
		mr.Close()
	})
	return mr, rdb
}

func TestContract_RedisCredentialStore(t *testing.T) {
	_, rdb := newRedis(t)
	contracttest.RunCredentialStore(t, func(t *testing.T) (credstoreport.Factory, func()) {
		t.Helper()
		return Factory(rdb, Options{Prefix: "vb:"}), nil
	})
}

func TestStore_PrefixAndTTL(t *testing.T) {
	mr, rdb := newRedis(t)
	ctx := context.Background()

	s := NewStore(rdb, domain.SessionTokenKey("sid-1"), Options{Prefix: "vb:", TTL: time.Hour})
	if err := s.Set(ctx, "abc"); err != nil {
		t.Fatalf("Set() err=%v", err)
	}

	const wantKey = "vb:vaultBankAuthToken:sid-1"
	if !mr.Exists(wantKey) {
		t.Fatalf("expected key %q in redis, keys=%v", wantKey, mr.Keys())
	}
	if ttl := mr.TTL(wantKey); ttl != time.Hour {
		t.Fatalf("TTL=%v, want 1h", ttl)
	}

	// Abandoned sessions age out.
	mr.FastForward(2 * time.Hour)
	if _, ok, err := s.Get(ctx); err != nil || ok {
		t.Fatalf("Get() after expiry ok=%v err=%v", ok, err)
	}
}

func TestStore_UnavailableRedisIsAnError(t *testing.T) {
	mr, rdb := newRedis(t)
	mr.Close()

	if _, _, err := NewStore(rdb, domain.TokenKey, Options{}).Get(context.Background()); err == nil {
		t.Fatalf("Get() err=nil, want connection error")
	}
}
