package gateway

import (
	"context"
	"fmt"
	"log"

	"github.com/vaultbank/vaultbank-web/internal/domain"
	"github.com/vaultbank/vaultbank-web/internal/ports/out/credstore"
	"github.com/vaultbank/vaultbank-web/internal/ports/out/navigator"
)

// Intent is a navigation decision. The zero value means "stay".
type Intent struct {
	Redirect domain.Page
}

func (i Intent) IsRedirect() bool { return i.Redirect != "" }

// Decide is the route guard policy:
//   - signed in, redirectIfAuthenticated, public-auth page: go to the dashboard
//   - signed out, protected page: go to login
//   - anything else: stay
func Decide(page domain.Page, hasToken bool, redirectIfAuthenticated bool) Intent {
	switch page.Kind() {
	case domain.PageKindPublicAuth:
		if hasToken && redirectIfAuthenticated {
			return Intent{Redirect: domain.PageDashboard}
		}
	case domain.PageKindProtected:
		if !hasToken {
			return Intent{Redirect: domain.PageLogin}
		}
	}
	return Intent{}
}

// DecideAuthFailure is the navigation half of the 401 policy.
func DecideAuthFailure(current domain.Page) Intent {
	if current == domain.PageLogin {
		return Intent{}
	}
	return Intent{Redirect: domain.PageLogin}
}

// Guard is the coarse client-side page gate. The server stays the authority:
// every protected API call is independently checked there.
type Guard struct {
	store  credstore.Store
	nav    navigator.Navigator
	logger *log.Logger
}

func NewGuard(store credstore.Store, nav navigator.Navigator) *Guard {
	return NewGuardWithLogger(store, nav, nil)
}

// NewGuardWithLogger is NewGuard with a logger for unreadable-store diagnostics.
// A nil logger means log.Default().
func NewGuardWithLogger(store credstore.Store, nav navigator.Navigator, logger *log.Logger) *Guard {
	if logger == nil {
		logger = log.Default()
	}
	return &Guard{store: store, nav: nav, logger: logger}
}

// Enforce runs the guard once for a page load. It must run before any data fetch.
// An unreadable store counts as signed out, the same as in Client, so a corrupt
// token never locks the user out of the login page.
func (g *Guard) Enforce(ctx context.Context, page domain.Page, redirectIfAuthenticated bool) (Intent, error) {
	_, ok, err := g.store.Get(ctx)
	if err != nil {
		g.logger.Printf("guard: read credential store: %v", err)
		ok = false
	}
	intent := Decide(page, ok, redirectIfAuthenticated)
	if intent.IsRedirect() && g.nav != nil {
		if err := g.nav.Navigate(ctx, intent.Redirect); err != nil {
			return intent, fmt.Errorf("navigate to %s: %w", intent.Redirect, err)
		}
	}
	return intent, nil
}
