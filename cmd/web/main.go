package main

import (
	"context"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/sessions"
	"github.com/redis/go-redis/v9"

	"github.com/vaultbank/vaultbank-web/internal/adapters/httpapi"
	memcredstore "github.com/vaultbank/vaultbank-web/internal/adapters/memory/credstore"
	postgres "github.com/vaultbank/vaultbank-web/internal/adapters/postgres"
	pgcredstore "github.com/vaultbank/vaultbank-web/internal/adapters/postgres/credstore"
	rediscredstore "github.com/vaultbank/vaultbank-web/internal/adapters/redis/credstore"
	platformclock "github.com/vaultbank/vaultbank-web/internal/platform/clock"
	"github.com/vaultbank/vaultbank-web/internal/platform/config"
	"github.com/vaultbank/vaultbank-web/internal/ports/out/credstore"
)

func main() {
	if err := config.LoadDotEnv(); err != nil {
		log.Printf("load .env: %v", err)
	}

	cfg, err := config.LoadWebConfigFromEnv()
	if err != nil {
		log.Fatalf("invalid config: %v", err)
	}

	// Token storage:
	// - cookie (default): the token lives in the encrypted session cookie
	// - memory/redis/postgres: the cookie carries a session id, the token stays server-side
	var (
		tokens  credstore.Factory
		cleanup []func()
	)
	switch cfg.CredentialBackend {
	case config.BackendMemory:
		tokens = memcredstore.NewKeyspace().Factory()
	case config.BackendRedis:
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		if err := rdb.Ping(context.Background()).Err(); err != nil {
			log.Fatalf("redis ping %s: %v", cfg.RedisAddr, err)
		}
		cleanup = append(cleanup, func() { _ = rdb.Close() })
		tokens = rediscredstore.Factory(rdb, rediscredstore.Options{Prefix: cfg.RedisPrefix, TTL: cfg.RedisTTL})
	case config.BackendPostgres:
		pool, err := postgres.NewPool(context.Background(), cfg.DatabaseURL, postgres.PoolOptions{})
		if err != nil {
			log.Fatalf("invalid postgres config: %v", err)
		}
		cleanup = append(cleanup, pool.Close)
		if err := postgres.Migrate(context.Background(), pool); err != nil {
			log.Fatalf("migrate: %v", err)
		}
		tokens = pgcredstore.Factory(pool)
	}
	defer func() {
		for _, c := range cleanup {
			c()
		}
	}()

	// Second key encrypts the cookie so the token is not readable by the browser.
	encKey := cfg.SessionSecret
	if len(encKey) > 32 {
		encKey = encKey[:32]
	}
	cookies := sessions.NewCookieStore(cfg.SessionSecret, encKey)
	cookies.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   int(cfg.SessionMaxAge / time.Second),
		HttpOnly: true,
		Secure:   cfg.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	}

	var hc *http.Client
	if cfg.APIHTTPTimeout > 0 {
		hc = &http.Client{Timeout: cfg.APIHTTPTimeout}
	}

	web := httpapi.NewServer(httpapi.ServerOptions{
		Sessions:   httpapi.Sessions{Cookies: cookies, Tokens: tokens},
		APIBaseURL: cfg.APIBaseURL,
		HTTPClient: hc,
		Logger:     log.Default(),
		Clock:      platformclock.NewSystemClock(),
	})
	handler := httpapi.NewRouterWithOptions(web, httpapi.RouterOptions{AllowedOrigins: cfg.CORSAllowedOrigins})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	// Graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		log.Printf("web listening on :%s (api=%s credentials=%s)", cfg.Port, cfg.APIBaseURL, cfg.CredentialBackend)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %v", err)
		}
	}()

	<-ctx.Done()
	log.Printf("shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Shutdown(shutdownCtx)
}
