package gateway

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	memcredstore "github.com/vaultbank/vaultbank-web/internal/adapters/memory/credstore"
	memnavigator "github.com/vaultbank/vaultbank-web/internal/adapters/memory/navigator"
	"github.com/vaultbank/vaultbank-web/internal/domain"
)

type clientFixture struct {
	client *Client
	store  *memcredstore.Store
	nav    *memnavigator.Recorder
	logs   *bytes.Buffer
}

func newClientFixture(t *testing.T, h http.HandlerFunc) clientFixture {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return newClientFixtureURL(srv.URL)
}

func newClientFixtureURL(baseURL string) clientFixture {
	store := memcredstore.NewStore()
	nav := memnavigator.NewRecorder()
	var logs bytes.Buffer
	c := NewWithOptions(baseURL, store, nav, Options{Logger: log.New(&logs, "", 0)})
	return clientFixture{client: c, store: store, nav: nav, logs: &logs}
}

func respond(status int, body string) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(status)
		_, _ = io.WriteString(w, body)
	}
}

func TestCall_Success(t *testing.T) {
	t.Parallel()

	f := newClientFixture(t, respond(http.StatusOK, `{"message":"ok","n":1}`))
	p, err := f.client.Call(context.Background(), http.MethodGet, "/x", nil)
	if err != nil {
		t.Fatalf("Call err=%v", err)
	}
	if p.Message() != "ok" || p["n"] != float64(1) {
		t.Fatalf("payload=%v", p)
	}
}

func TestCall_EmptySuccessBody(t *testing.T) {
	t.Parallel()

	f := newClientFixture(t, respond(http.StatusNoContent, ""))
	p, err := f.client.Call(context.Background(), http.MethodDelete, "/x", nil)
	if err != nil {
		t.Fatalf("Call err=%v", err)
	}
	if p == nil || len(p) != 0 {
		t.Fatalf("payload=%v, want empty", p)
	}
}

func TestCall_NonObjectJSONIsWrapped(t *testing.T) {
	t.Parallel()

	f := newClientFixture(t, respond(http.StatusOK, `[1,2]`))
	p, err := f.client.Call(context.Background(), http.MethodGet, "/x", nil)
	if err != nil {
		t.Fatalf("Call err=%v", err)
	}
	if arr, ok := p["data"].([]any); !ok || len(arr) != 2 {
		t.Fatalf("payload=%v", p)
	}
}

func TestCall_JSONErrorWithMessage(t *testing.T) {
	t.Parallel()

	f := newClientFixture(t, respond(http.StatusBadRequest, `{"message":"Insufficient funds"}`))
	_, err := f.client.Call(context.Background(), http.MethodPost, "/x", map[string]any{"amount": 1})
	e := (*Error)(nil)
	if !errors.As(err, &e) {
		t.Fatalf("err=%v (type=%T)", err, err)
	}
	if e.Kind != KindAPI || e.Status != 400 || e.Message != "Insufficient funds" || e.Payload.Message() != "Insufficient funds" {
		t.Fatalf("err=%+v", e)
	}
}

func TestCall_JSONErrorWithoutMessage(t *testing.T) {
	t.Parallel()

	f := newClientFixture(t, respond(http.StatusInternalServerError, `{"error":"x"}`))
	_, err := f.client.Call(context.Background(), http.MethodGet, "/x", nil)
	if err == nil || err.Error() != "API request failed with status 500" {
		t.Fatalf("err=%v", err)
	}
}

func TestCall_NonJSONError(t *testing.T) {
	t.Parallel()

	body := "<html>" + strings.Repeat("x", 500) + "</html>"
	f := newClientFixture(t, respond(http.StatusBadGateway, body))
	_, err := f.client.Call(context.Background(), http.MethodGet, "/x", nil)
	e := (*Error)(nil)
	if !errors.As(err, &e) || e.Kind != KindNonJSON || e.Status != 502 {
		t.Fatalf("err=%v", err)
	}
	if e.Message != "Server returned a non-JSON response. Status: 502." {
		t.Fatalf("message=%q", e.Message)
	}
	if strings.Contains(f.logs.String(), strings.Repeat("x", 200)) {
		t.Fatalf("log carries the full body: %s", f.logs.String())
	}
}

func TestCall_TransportError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	f := newClientFixtureURL(url)
	if err := f.store.Set(context.Background(), "tok"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	_, err := f.client.Call(context.Background(), http.MethodGet, "/x", nil)
	e := (*Error)(nil)
	if !errors.As(err, &e) || e.Kind != KindTransport || e.Status != 0 {
		t.Fatalf("err=%v", err)
	}
	if e.Unwrap() == nil {
		t.Fatalf("transport error lost its cause")
	}
	if _, ok, _ := f.store.Get(context.Background()); !ok {
		t.Fatalf("transport failure cleared the token")
	}
}

func TestCall_Unauthorized_TearsDownForEveryBodyShape(t *testing.T) {
	t.Parallel()

	for _, body := range []string{`{"message":"Not authorized"}`, `{}`, `<html>nope</html>`, ``} {
		f := newClientFixture(t, respond(http.StatusUnauthorized, body))
		ctx := WithPage(context.Background(), domain.PageDashboard)
		if err := f.store.Set(ctx, "tok"); err != nil {
			t.Fatalf("Set: %v", err)
		}

		_, err := f.client.Call(ctx, http.MethodGet, "/x", nil)
		if !errors.Is(err, ErrUnauthorized) {
			t.Fatalf("body %q: err=%v, want unauthorized", body, err)
		}
		if _, ok, _ := f.store.Get(ctx); ok {
			t.Fatalf("body %q: token not cleared", body)
		}
		if last, ok := f.nav.Last(); !ok || last != domain.PageLogin {
			t.Fatalf("body %q: navigation=%q ok=%v", body, last, ok)
		}
	}
}

func TestCall_Unauthorized_OnLoginPageDoesNotNavigate(t *testing.T) {
	t.Parallel()

	f := newClientFixture(t, respond(http.StatusUnauthorized, `{"message":"Invalid credentials"}`))
	ctx := WithPage(context.Background(), domain.PageLogin)
	_, err := f.client.Call(ctx, http.MethodPost, "/x", map[string]string{"identifier": "a"})
	if err == nil || err.Error() != "Invalid credentials" {
		t.Fatalf("err=%v", err)
	}
	if h := f.nav.History(); len(h) != 0 {
		t.Fatalf("navigations=%v", h)
	}
}

func TestCall_Headers(t *testing.T) {
	t.Parallel()

	type seen struct{ authz, ctype, accept string }
	got := make(chan seen, 2)
	f := newClientFixture(t, func(w http.ResponseWriter, r *http.Request) {
		got <- seen{r.Header.Get("Authorization"), r.Header.Get("Content-Type"), r.Header.Get("Accept")}
		_, _ = io.WriteString(w, `{}`)
	})
	ctx := context.Background()

	if _, err := f.client.Call(ctx, http.MethodGet, "x", nil); err != nil {
		t.Fatalf("Call err=%v", err)
	}
	s := <-got
	if s.authz != "" || s.ctype != "" || s.accept != "application/json" {
		t.Fatalf("signed out headers=%+v", s)
	}

	if err := f.store.Set(ctx, "abc"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if _, err := f.client.Call(ctx, http.MethodPost, "/x", map[string]int{"a": 1}); err != nil {
		t.Fatalf("Call err=%v", err)
	}
	s = <-got
	if s.authz != "Bearer abc" || s.ctype != "application/json" {
		t.Fatalf("signed in headers=%+v", s)
	}
}

func TestDo_DecodesInto(t *testing.T) {
	t.Parallel()

	f := newClientFixture(t, respond(http.StatusOK, `{"token":"abc","message":"hi"}`))
	var out struct {
		Token string `json:"token"`
	}
	p, err := f.client.Do(context.Background(), http.MethodPost, "/x", nil, &out)
	if err != nil {
		t.Fatalf("Do err=%v", err)
	}
	if out.Token != "abc" || p.Message() != "hi" {
		t.Fatalf("out=%+v payload=%v", out, p)
	}
}

func TestPayload_MessageIgnoresBlankAndNonString(t *testing.T) {
	t.Parallel()

	if m := (Payload{"message": "   "}).Message(); m != "" {
		t.Fatalf("blank message=%q", m)
	}
	if m := (Payload{"message": 3}).Message(); m != "" {
		t.Fatalf("numeric message=%q", m)
	}
}
