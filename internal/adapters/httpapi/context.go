package httpapi

import (
	"context"

	memnavigator "github.com/vaultbank/vaultbank-web/internal/adapters/memory/navigator"
	"github.com/vaultbank/vaultbank-web/internal/app/banking"
	"github.com/vaultbank/vaultbank-web/internal/gateway"
	"github.com/vaultbank/vaultbank-web/internal/ports/out/credstore"
)

// requestSession is everything a handler needs for one browser request: the
// browser's credential store and the services bound to it.
type requestSession struct {
	store credstore.Store
	nav   *memnavigator.Recorder
	guard *gateway.Guard
	bank  *banking.Service
}

type requestSessionKey struct{}

func withRequestSession(ctx context.Context, rs *requestSession) context.Context {
	return context.WithValue(ctx, requestSessionKey{}, rs)
}

func requestSessionFromContext(ctx context.Context) (*requestSession, bool) {
	rs, ok := ctx.Value(requestSessionKey{}).(*requestSession)
	return rs, ok && rs != nil
}
