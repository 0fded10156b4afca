package httpapi

import (
	"encoding/json"
	"io"
	"log"
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/securecookie"
	"github.com/gorilla/sessions"

	memcredstore "github.com/vaultbank/vaultbank-web/internal/adapters/memory/credstore"
)

func newTestRouter(t *testing.T, apiBaseURL string, opts RouterOptions) (http.Handler, *memcredstore.Keyspace) {
	t.Helper()
	ks := memcredstore.NewKeyspace()
	srv := NewServer(ServerOptions{
		Sessions: Sessions{
			Cookies: sessions.NewCookieStore(securecookie.GenerateRandomKey(32)),
			Tokens:  ks.Factory(),
		},
		APIBaseURL: apiBaseURL,
		Logger:     log.New(io.Discard, "", 0),
	})
	return NewRouterWithOptions(srv, opts), ks
}

func TestRouter_Healthz(t *testing.T) {
	t.Parallel()

	h, ks := newTestRouter(t, "http://127.0.0.1:0", RouterOptions{})
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rec.Code != http.StatusOK || rec.Body.String() != "ok" {
		t.Fatalf("status=%d body=%s", rec.Code, rec.Body.String())
	}
	if c := rec.Result().Cookies(); len(c) != 0 {
		t.Fatalf("healthz set cookies: %v", c)
	}
	if ks.Len() != 0 {
		t.Fatalf("keyspace len=%d", ks.Len())
	}
}

func TestRouter_RootRedirectsToDashboard(t *testing.T) {
	t.Parallel()

	h, _ := newTestRouter(t, "http://127.0.0.1:0", RouterOptions{})
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusSeeOther || rec.Header().Get("Location") != "/dashboard" {
		t.Fatalf("status=%d location=%q", rec.Code, rec.Header().Get("Location"))
	}
}

func TestRouter_IssuesSessionCookie(t *testing.T) {
	t.Parallel()

	h, _ := newTestRouter(t, "http://127.0.0.1:0", RouterOptions{})
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/login", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", rec.Code, rec.Body.String())
	}
	var found bool
	for _, c := range rec.Result().Cookies() {
		if c.Name == SessionCookieName {
			found = true
		}
	}
	if !found {
		t.Fatalf("no %s cookie in %v", SessionCookieName, rec.Result().Cookies())
	}
}

func TestRouter_TransportFailureIs502(t *testing.T) {
	t.Parallel()

	dead := httptest.NewServer(http.NotFoundHandler())
	deadURL := dead.URL
	dead.Close()

	h, _ := newTestRouter(t, deadURL, RouterOptions{})
	req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(`{"identifier":"a","password":"b"}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadGateway {
		t.Fatalf("status=%d body=%s", rec.Code, rec.Body.String())
	}
	var er struct {
		Error struct {
			Code      string `json:"code"`
			Message   string `json:"message"`
			RequestID string `json:"requestId"`
		} `json:"error"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &er); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if er.Error.Code != CodeUpstreamUnavailable || er.Error.RequestID == "" {
		t.Fatalf("body=%s", rec.Body.String())
	}
}

func TestRouter_MalformedJSONIs400(t *testing.T) {
	t.Parallel()

	h, _ := newTestRouter(t, "http://127.0.0.1:0", RouterOptions{})
	req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(`{"identifier":`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest || !strings.Contains(rec.Body.String(), CodeBadRequest) {
		t.Fatalf("status=%d body=%s", rec.Code, rec.Body.String())
	}
}

func TestRouter_CORS(t *testing.T) {
	t.Parallel()

	h, _ := newTestRouter(t, "http://127.0.0.1:0", RouterOptions{AllowedOrigins: []string{"https://app.example"}})

	req := httptest.NewRequest(http.MethodGet, "/login", nil)
	req.Header.Set("Origin", "https://app.example")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "https://app.example" {
		t.Fatalf("allow-origin=%q", got)
	}

	req = httptest.NewRequest(http.MethodGet, "/login", nil)
	req.Header.Set("Origin", "https://evil.example")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "" {
		t.Fatalf("allow-origin=%q for unlisted origin", got)
	}
}

func TestFormValues(t *testing.T) {
	t.Parallel()

	f := formValues{"a": "  12.5 ", "n": float64(3), "bad": "x", "null": nil, "s": "v"}
	if got := f.amount("a"); got != 12.5 {
		t.Fatalf("amount(a)=%v", got)
	}
	if got := f.amount("n"); got != 3 {
		t.Fatalf("amount(n)=%v", got)
	}
	if got := f.amount("bad"); !math.IsNaN(got) {
		t.Fatalf("amount(bad)=%v", got)
	}
	if got := f.amount("missing"); !math.IsNaN(got) {
		t.Fatalf("amount(missing)=%v", got)
	}
	if got := f.str("n"); got != "3" {
		t.Fatalf("str(n)=%q", got)
	}

	if o := f.optional("missing"); o.IsSpecified() {
		t.Fatalf("missing is specified")
	}
	if o := f.optional("null"); !o.IsNull() {
		t.Fatalf("null not null")
	}
	if o := f.optional("s"); !o.IsSpecified() || o.IsNull() || o.Value() != "v" {
		t.Fatalf("optional(s)=%+v", o)
	}
}
