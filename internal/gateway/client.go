package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"

	"github.com/vaultbank/vaultbank-web/internal/ports/out/credstore"
	"github.com/vaultbank/vaultbank-web/internal/ports/out/navigator"
)

// Options tunes a Client. The zero value is usable.
type Options struct {
	// HTTPClient defaults to a client without timeout: a request runs until the
	// server answers, the network fails, or ctx is done.
	HTTPClient *http.Client
	// Logger receives failure diagnostics. Defaults to log.Default().
	Logger *log.Logger
}

// Client is the authenticated API call wrapper.
//
// It attaches the stored bearer token to each request, normalizes every outcome into
// either a Payload or an *Error, and on HTTP 401 tears the session down (clears the
// store, navigates to login). It never retries. It is safe for concurrent use as long
// as the store is; calls are not ordered relative to one another.
type Client struct {
	baseURL string
	store   credstore.Store
	nav     navigator.Navigator
	http    *http.Client
	logger  *log.Logger
}

func New(baseURL string, store credstore.Store, nav navigator.Navigator) *Client {
	return NewWithOptions(baseURL, store, nav, Options{})
}

func NewWithOptions(baseURL string, store credstore.Store, nav navigator.Navigator, opts Options) *Client {
	hc := opts.HTTPClient
	if hc == nil {
		hc = &http.Client{}
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		store:   store,
		nav:     nav,
		http:    hc,
		logger:  logger,
	}
}

// Call issues one request to baseURL+endpoint and decodes the response.
//
// body, when non-nil, is sent as JSON. On success the decoded payload is returned
// (an empty Payload for 2xx responses without a JSON body). Every failure is an *Error.
func (c *Client) Call(ctx context.Context, method, endpoint string, body any) (Payload, error) {
	req, err := c.newRequest(ctx, method, endpoint, body)
	if err != nil {
		return nil, err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Printf("api call error: %s %s: %v", method, endpoint, err)
		return nil, transportError(err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		// A truncated body is handled like any other undecodable body.
		c.logger.Printf("api call: read body %s %s: %v", method, endpoint, err)
	}

	if resp.StatusCode == http.StatusUnauthorized {
		c.teardown(ctx)
	}

	success := resp.StatusCode >= 200 && resp.StatusCode < 300
	p, ok := decodePayload(raw)
	switch {
	case !ok && success:
		return Payload{}, nil
	case !ok:
		c.logger.Printf("non-JSON error response received: %s %s status=%d body=%q", method, endpoint, resp.StatusCode, snippet(raw))
		return nil, nonJSONError(resp.StatusCode)
	case !success:
		e := apiError(resp.StatusCode, p)
		c.logger.Printf("api call error: %s %s status=%d: %s", method, endpoint, resp.StatusCode, e.Message)
		return nil, e
	}
	return p, nil
}

// Do is Call followed by decoding the payload into out (skipped when out is nil).
func (c *Client) Do(ctx context.Context, method, endpoint string, body any, out any) (Payload, error) {
	p, err := c.Call(ctx, method, endpoint, body)
	if err != nil {
		return nil, err
	}
	if out != nil {
		if err := p.Decode(out); err != nil {
			return p, fmt.Errorf("decode %s %s response: %w", method, endpoint, err)
		}
	}
	return p, nil
}

func (c *Client) newRequest(ctx context.Context, method, endpoint string, body any) (*http.Request, error) {
	if !strings.HasPrefix(endpoint, "/") {
		endpoint = "/" + endpoint
	}

	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode %s %s body: %w", method, endpoint, err)
		}
		r = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+endpoint, r)
	if err != nil {
		return nil, fmt.Errorf("build %s %s request: %w", method, endpoint, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	tok, ok, err := c.store.Get(ctx)
	if err != nil {
		// An unreadable store behaves like a signed-out client; the server decides.
		c.logger.Printf("api call: read credential store: %v", err)
	} else if ok {
		req.Header.Set("Authorization", "Bearer "+string(tok))
	}
	return req, nil
}

// teardown is the 401 side effect. Its own failures are logged, never surfaced:
// the caller gets the API error either way.
func (c *Client) teardown(ctx context.Context) {
	if err := c.store.Clear(ctx); err != nil {
		c.logger.Printf("api call: clear credential store after 401: %v", err)
	}
	current, _ := PageFromContext(ctx)
	intent := DecideAuthFailure(current)
	if !intent.IsRedirect() || c.nav == nil {
		return
	}
	if err := c.nav.Navigate(ctx, intent.Redirect); err != nil {
		c.logger.Printf("api call: navigate to %s after 401: %v", intent.Redirect, err)
	}
}

func snippet(b []byte) string {
	const limit = 100
	if len(b) <= limit {
		return string(b)
	}
	return string(b[:limit]) + "..."
}
