package itest

import (
	"encoding/json"
	"io"
	"log"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"os"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gorilla/securecookie"
	"github.com/gorilla/sessions"
	"github.com/redis/go-redis/v9"

	"github.com/vaultbank/vaultbank-web/internal/adapters/httpapi"
	memclock "github.com/vaultbank/vaultbank-web/internal/adapters/memory/clock"
	memcredstore "github.com/vaultbank/vaultbank-web/internal/adapters/memory/credstore"
	pgcredstore "github.com/vaultbank/vaultbank-web/internal/adapters/postgres/credstore"
	postgres_testutil "github.com/vaultbank/vaultbank-web/internal/adapters/postgres/testutil"
	rediscredstore "github.com/vaultbank/vaultbank-web/internal/adapters/redis/credstore"
	"github.com/vaultbank/vaultbank-web/internal/platform/bankfake"
	"github.com/vaultbank/vaultbank-web/internal/ports/out/credstore"
)

type backend string

const (
	backendCookie   backend = "cookie"
	backendMemory   backend = "memory"
	backendRedis    backend = "redis"
	backendPostgres backend = "postgres"
)

func backendsFromEnv(t *testing.T) []backend {
	t.Helper()
	switch strings.ToLower(strings.TrimSpace(os.Getenv("ITEST_BACKEND"))) {
	case "":
		return []backend{backendCookie, backendMemory, backendRedis}
	case "cookie":
		return []backend{backendCookie}
	case "memory":
		return []backend{backendMemory}
	case "redis":
		return []backend{backendRedis}
	case "postgres":
		return []backend{backendPostgres}
	case "all":
		return []backend{backendCookie, backendMemory, backendRedis, backendPostgres}
	default:
		t.Fatalf("unknown ITEST_BACKEND value (expected cookie|memory|redis|postgres|all)")
		return nil
	}
}

type testServer struct {
	baseURL string
	bank    *bankfake.Server
	// bankClock drives token expiry on the bank side.
	bankClock *memclock.ManualClock
	// bankHits counts requests that reached the bank API.
	bankHits func() int
}

func newTestServer(t *testing.T, b backend) *testServer {
	t.Helper()

	bankClock := memclock.NewManualClock(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	bank := bankfake.New(bankfake.Options{
		Secret:   []byte("itest-secret"),
		TokenTTL: 15 * time.Minute,
		Clock:    bankClock,
	})
	var hits atomic.Int64
	bankSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		bank.ServeHTTP(w, r)
	}))
	t.Cleanup(bankSrv.Close)

	var tokens credstore.Factory
	switch b {
	case backendCookie:
	case backendMemory:
		tokens = memcredstore.NewKeyspace().Factory()
	case backendRedis:
		mr := miniredis.RunT(t)
		rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
		t.Cleanup(func() { _ = rdb.Close() })
		tokens = rediscredstore.Factory(rdb, rediscredstore.Options{Prefix: "itest:", TTL: time.Hour})
	case backendPostgres:
		tokens = pgcredstore.Factory(postgres_testutil.OpenMigratedPool(t))
	default:
		t.Fatalf("unknown backend: %s", b)
	}

	cookies := sessions.NewCookieStore(securecookie.GenerateRandomKey(32), securecookie.GenerateRandomKey(32))
	// httptest serves plain HTTP; a Secure cookie would never be sent back by the jar.
	cookies.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   3600,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
	srv := httpapi.NewServer(httpapi.ServerOptions{
		Sessions:   httpapi.Sessions{Cookies: cookies, Tokens: tokens},
		APIBaseURL: bankSrv.URL,
		Logger:     log.New(io.Discard, "", 0),
		Clock:      memclock.NewManualClock(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)),
	})
	web := httptest.NewServer(httpapi.NewRouter(srv))
	t.Cleanup(web.Close)

	return &testServer{
		baseURL:   web.URL,
		bank:      bank,
		bankClock: bankClock,
		bankHits: func() int {
			return int(hits.Load())
		},
	}
}

// browser is one user agent: its own cookie jar, redirects not followed.
type browser struct {
	ts     *testServer
	client *http.Client
}

func (s *testServer) newBrowser(t *testing.T) *browser {
	t.Helper()
	jar, err := cookiejar.New(nil)
	if err != nil {
		t.Fatalf("cookiejar: %v", err)
	}
	return &browser{
		ts: s,
		client: &http.Client{
			Jar: jar,
			CheckRedirect: func(*http.Request, []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
	}
}

func (b *browser) do(t *testing.T, req *http.Request) (int, []byte, http.Header) {
	t.Helper()
	resp, err := b.client.Do(req)
	if err != nil {
		t.Fatalf("do request: %v", err)
	}
	defer resp.Body.Close()
	out, _ := io.ReadAll(resp.Body)
	return resp.StatusCode, out, resp.Header
}

func (b *browser) get(t *testing.T, path string) (int, []byte, http.Header) {
	t.Helper()
	req, err := http.NewRequest(http.MethodGet, b.ts.baseURL+path, nil)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	return b.do(t, req)
}

func (b *browser) postJSON(t *testing.T, path string, body any) (int, []byte) {
	t.Helper()
	raw, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal body: %v", err)
	}
	req, err := http.NewRequest(http.MethodPost, b.ts.baseURL+path, strings.NewReader(string(raw)))
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	status, out, _ := b.do(t, req)
	return status, out
}

func (b *browser) postForm(t *testing.T, path string, form url.Values) (int, []byte) {
	t.Helper()
	req, err := http.NewRequest(http.MethodPost, b.ts.baseURL+path, strings.NewReader(form.Encode()))
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	status, out, _ := b.do(t, req)
	return status, out
}

type errorResponse struct {
	Error struct {
		Code      string `json:"code"`
		Message   string `json:"message"`
		RequestID string `json:"requestId"`
	} `json:"error"`
	Redirect string `json:"redirect"`
}

type outcomeResponse struct {
	Message  string `json:"message"`
	Redirect string `json:"redirect"`
}

func mustUnmarshal[T any](t *testing.T, b []byte) T {
	t.Helper()
	var out T
	if err := json.Unmarshal(b, &out); err != nil {
		t.Fatalf("unmarshal: %v\nbody=%s", err, string(b))
	}
	return out
}

func requireErrorCode(t *testing.T, status int, body []byte, wantStatus int, wantCode string) errorResponse {
	t.Helper()
	if status != wantStatus {
		t.Fatalf("status=%d want=%d body=%s", status, wantStatus, string(body))
	}
	got := mustUnmarshal[errorResponse](t, body)
	if got.Error.Code != wantCode {
		t.Fatalf("error.code=%q want=%q body=%s", got.Error.Code, wantCode, string(body))
	}
	if got.Error.RequestID == "" {
		t.Fatalf("expected requestId in %s", string(body))
	}
	return got
}

func requireRedirect(t *testing.T, status int, h http.Header, wantPath string) {
	t.Helper()
	if status != http.StatusSeeOther {
		t.Fatalf("status=%d want=303", status)
	}
	if got := h.Get("Location"); got != wantPath {
		t.Fatalf("Location=%q want=%q", got, wantPath)
	}
}
