package httpapi

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/sessions"

	cookiecredstore "github.com/vaultbank/vaultbank-web/internal/adapters/cookie/credstore"
	memnavigator "github.com/vaultbank/vaultbank-web/internal/adapters/memory/navigator"
	"github.com/vaultbank/vaultbank-web/internal/app/banking"
	"github.com/vaultbank/vaultbank-web/internal/domain"
	"github.com/vaultbank/vaultbank-web/internal/gateway"
	"github.com/vaultbank/vaultbank-web/internal/ports/out/credstore"
)

// SessionCookieName is the browser's only cookie.
const SessionCookieName = "vaultbank_session"

const sessionIDValue = "sid"

// Sessions configures where a browser's token lives.
type Sessions struct {
	// Cookies holds the session cookie. Required.
	Cookies sessions.Store
	// Tokens, when set, keeps tokens server-side under a per-session key and the cookie
	// carries only a random session id. When nil the token is kept in the cookie.
	Tokens credstore.Factory
}

// bind returns the credential store of the browser that sent r.
func (s Sessions) bind(w http.ResponseWriter, r *http.Request) (credstore.Store, error) {
	if s.Cookies == nil {
		return nil, errors.New("no session cookie store configured")
	}
	if s.Tokens == nil {
		return cookiecredstore.NewStore(s.Cookies, SessionCookieName, r, w), nil
	}

	// A cookie that fails to decode yields a fresh session, and with it a new id.
	sess, _ := s.Cookies.Get(r, SessionCookieName)
	if sess == nil {
		return nil, errors.New("session store returned no session")
	}
	sid, _ := sess.Values[sessionIDValue].(string)
	if sid == "" {
		sid = uuid.NewString()
		sess.Values[sessionIDValue] = sid
		if err := sess.Save(r, w); err != nil {
			return nil, err
		}
	}
	return s.Tokens(domain.SessionTokenKey(domain.SessionID(sid))), nil
}

// sessionMiddleware binds the browser's credential store and builds the per-request
// gateway around it. Navigation is recorded, not performed: handlers turn the last
// recorded page into the response.
func (s *Server) sessionMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		store, err := s.sessions.bind(w, r)
		if err != nil {
			s.logger.Printf("session: bind: %v", err)
			writeError(w, r, http.StatusInternalServerError, CodeSession, "Could not establish a session.", nil)
			return
		}

		nav := memnavigator.NewRecorder()
		api := gateway.NewWithOptions(s.apiBaseURL, store, nav, gateway.Options{
			HTTPClient: s.httpClient,
			Logger:     s.logger,
		})
		rs := &requestSession{
			store: store,
			nav:   nav,
			guard: gateway.NewGuardWithLogger(store, nav, s.logger),
			bank:  banking.NewService(api, store, s.clk),
		}
		next.ServeHTTP(w, r.WithContext(withRequestSession(r.Context(), rs)))
	})
}
