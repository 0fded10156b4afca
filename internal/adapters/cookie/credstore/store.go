package credstore

import (
	"context"
	"errors"
	"net/http"

	"github.com/gorilla/sessions"

	"github.com/vaultbank/vaultbank-web/internal/domain"
	"github.com/vaultbank/vaultbank-web/internal/ports/out/credstore"
)

// Store keeps the token inside the browser's session cookie, the closest server-side
// equivalent of origin-scoped browser storage. The cookie is signed (and encrypted when
// the sessions.Store has an encryption key), so the browser cannot read or forge it.
//
// A Store is bound to one request/response pair and must not outlive the handler.
type Store struct {
	sessions sessions.Store
	name     string
	r        *http.Request
	w        http.ResponseWriter
}

func NewStore(ss sessions.Store, name string, r *http.Request, w http.ResponseWriter) *Store {
	return &Store{sessions: ss, name: name, r: r, w: w}
}

// session returns the request's session. A cookie that no longer decodes (rotated keys,
// tampering) yields a fresh session, which reads as logged out.
func (s *Store) session() (*sessions.Session, error) {
	if s.sessions == nil {
		return nil, errors.New("nil session store")
	}
	if s.name == "" {
		return nil, credstore.ErrEmptyKey
	}
	sess, err := s.sessions.Get(s.r, s.name)
	if sess == nil {
		return nil, err
	}
	return sess, nil
}

func (s *Store) Get(ctx context.Context) (domain.Token, bool, error) {
	_ = ctx
	sess, err := s.session()
	if err != nil {
		return "", false, err
	}
	v, _ := sess.Values[domain.TokenKey].(string)
	if v == "" {
		return "", false, nil
	}
	return domain.Token(v), true, nil
}

func (s *Store) Set(ctx context.Context, tok domain.Token) error {
	_ = ctx
	if tok.IsZero() {
		return credstore.ErrEmptyToken
	}
	sess, err := s.session()
	if err != nil {
		return err
	}
	sess.Values[domain.TokenKey] = string(tok)
	return sess.Save(s.r, s.w)
}

func (s *Store) Clear(ctx context.Context) error {
	_ = ctx
	sess, err := s.session()
	if err != nil {
		return err
	}
	if _, ok := sess.Values[domain.TokenKey]; !ok {
		return nil
	}
	delete(sess.Values, domain.TokenKey)
	return sess.Save(s.r, s.w)
}
