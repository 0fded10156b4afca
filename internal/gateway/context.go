package gateway

import (
	"context"

	"github.com/vaultbank/vaultbank-web/internal/domain"
)

type pageKey struct{}

// WithPage records the page a request is issued from. The 401 policy uses it to
// avoid redirecting the login page onto itself.
func WithPage(ctx context.Context, p domain.Page) context.Context {
	return context.WithValue(ctx, pageKey{}, p)
}

func PageFromContext(ctx context.Context) (domain.Page, bool) {
	p, ok := ctx.Value(pageKey{}).(domain.Page)
	return p, ok && p != ""
}
