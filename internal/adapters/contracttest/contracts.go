package contracttest

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/google/uuid"

	"github.com/vaultbank/vaultbank-web/internal/domain"
	credstoreport "github.com/vaultbank/vaultbank-web/internal/ports/out/credstore"
)

type CleanupFunc = func()

type CredentialStoreFactory func(t *testing.T) (credstoreport.Factory, CleanupFunc)

// RunCredentialStore exercises the credstore.Store contract every adapter must honour.
// Keys are randomized so that shared backends (a database, a redis instance) can be reused.
func RunCredentialStore(t *testing.T, newFactory CredentialStoreFactory) {
	t.Helper()
	ctx := context.Background()

	factory, cleanup := newFactory(t)
	if cleanup != nil {
		t.Cleanup(cleanup)
	}
	key := func() string { return domain.SessionTokenKey(domain.SessionID(uuid.NewString())) }

	// Empty store reads as logged out.
	k1 := key()
	s := factory(k1)
	if tok, ok, err := s.Get(ctx); err != nil || ok || tok != "" {
		t.Fatalf("Get on empty store: tok=%q ok=%v err=%v", tok, ok, err)
	}

	// Set then Get.
	if err := s.Set(ctx, "abc"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	tok, ok, err := s.Get(ctx)
	if err != nil || !ok || tok != "abc" {
		t.Fatalf("Get after Set: tok=%q ok=%v err=%v", tok, ok, err)
	}

	// Overwrite semantics.
	if err := s.Set(ctx, "def"); err != nil {
		t.Fatalf("Set overwrite: %v", err)
	}
	if tok, _, _ := s.Get(ctx); tok != "def" {
		t.Fatalf("expected overwritten token, got %q", tok)
	}

	// A second store bound to the same key sees the same token.
	if tok, ok, err := factory(k1).Get(ctx); err != nil || !ok || tok != "def" {
		t.Fatalf("Get via second binding: tok=%q ok=%v err=%v", tok, ok, err)
	}

	// Empty tokens are rejected and leave the stored one alone.
	if err := s.Set(ctx, ""); !errors.Is(err, credstoreport.ErrEmptyToken) {
		t.Fatalf("Set empty: err=%v, want ErrEmptyToken", err)
	}
	if tok, ok, _ := s.Get(ctx); !ok || tok != "def" {
		t.Fatalf("token changed by rejected Set: tok=%q ok=%v", tok, ok)
	}

	// Clear is idempotent.
	for i := 0; i < 2; i++ {
		if err := s.Clear(ctx); err != nil {
			t.Fatalf("Clear #%d: %v", i+1, err)
		}
		if _, ok, err := s.Get(ctx); err != nil || ok {
			t.Fatalf("Get after Clear #%d: ok=%v err=%v", i+1, ok, err)
		}
	}

	// Keys are isolated.
	a, b := factory(key()), factory(key())
	if err := a.Set(ctx, "tok-a"); err != nil {
		t.Fatalf("Set a: %v", err)
	}
	if _, ok, err := b.Get(ctx); err != nil || ok {
		t.Fatalf("Get b after Set a: ok=%v err=%v", ok, err)
	}

	// Concurrent clears (several 401s landing together) never fail.
	if err := b.Set(ctx, "tok-b"); err != nil {
		t.Fatalf("Set b: %v", err)
	}
	var wg sync.WaitGroup
	errs := make(chan error, 8)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs <- b.Clear(ctx)
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		if err != nil {
			t.Fatalf("concurrent Clear: %v", err)
		}
	}
	if _, ok, _ := b.Get(ctx); ok {
		t.Fatalf("expected b cleared")
	}
}
