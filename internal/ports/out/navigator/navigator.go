package navigator

import (
	"context"

	"github.com/vaultbank/vaultbank-web/internal/domain"
)

// Navigator performs a navigation decided by the session gateway.
//
// The gateway only decides where to go; what "going" means belongs to the
// composition root (an HTTP redirect, a CLI hint, a recorded intent in tests).
type Navigator interface {
	Navigate(ctx context.Context, to domain.Page) error
}

// Func adapts a plain function to Navigator.
type Func func(ctx context.Context, to domain.Page) error

func (f Func) Navigate(ctx context.Context, to domain.Page) error { return f(ctx, to) }
