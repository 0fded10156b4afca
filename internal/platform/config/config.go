package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// DefaultAPIBaseURL is the hosted VaultBank API.
const DefaultAPIBaseURL = "https://vaultbank-7i3m.onrender.com"

// Credential backends selectable with CREDENTIAL_BACKEND.
const (
	BackendCookie   = "cookie"
	BackendMemory   = "memory"
	BackendRedis    = "redis"
	BackendPostgres = "postgres"
)

// WebConfig configures cmd/web.
type WebConfig struct {
	Port       string
	APIBaseURL string
	// APIHTTPTimeout bounds each upstream call. Zero means no timeout.
	APIHTTPTimeout time.Duration

	CredentialBackend string
	// SessionSecret authenticates the session cookie. At least 32 bytes.
	SessionSecret []byte
	CookieSecure  bool
	SessionMaxAge time.Duration

	DatabaseURL string
	RedisAddr   string
	RedisPrefix string
	RedisTTL    time.Duration

	CORSAllowedOrigins []string
}

func LoadWebConfigFromEnv() (WebConfig, error) {
	cfg := WebConfig{
		Port:              getenv("PORT", "8080"),
		APIBaseURL:        getenv("API_BASE_URL", DefaultAPIBaseURL),
		CredentialBackend: getenv("CREDENTIAL_BACKEND", BackendCookie),
		SessionSecret:     []byte(os.Getenv("SESSION_SECRET")),
		CookieSecure:      os.Getenv("COOKIE_SECURE") != "false",
		SessionMaxAge:     24 * time.Hour,
		DatabaseURL:       os.Getenv("DATABASE_URL"),
		RedisAddr:         getenv("REDIS_ADDR", "localhost:6379"),
		RedisPrefix:       os.Getenv("REDIS_PREFIX"),
	}

	if len(cfg.SessionSecret) < 32 {
		return WebConfig{}, errors.New("SESSION_SECRET must be set to at least 32 bytes")
	}

	switch cfg.CredentialBackend {
	case BackendCookie, BackendMemory, BackendRedis:
	case BackendPostgres:
		if cfg.DatabaseURL == "" {
			return WebConfig{}, errors.New("DATABASE_URL is required when CREDENTIAL_BACKEND=postgres")
		}
	default:
		return WebConfig{}, fmt.Errorf("CREDENTIAL_BACKEND must be one of cookie, memory, redis, postgres (got %q)", cfg.CredentialBackend)
	}

	var err error
	if cfg.APIHTTPTimeout, err = durationEnv("API_HTTP_TIMEOUT", 0, "30s"); err != nil {
		return WebConfig{}, err
	}
	if cfg.SessionMaxAge, err = durationEnv("SESSION_MAX_AGE", cfg.SessionMaxAge, "24h"); err != nil {
		return WebConfig{}, err
	}
	if cfg.RedisTTL, err = durationEnv("REDIS_TTL", 0, "24h"); err != nil {
		return WebConfig{}, err
	}

	for _, o := range strings.Split(os.Getenv("CORS_ALLOWED_ORIGINS"), ",") {
		if o = strings.TrimSpace(o); o != "" {
			cfg.CORSAllowedOrigins = append(cfg.CORSAllowedOrigins, o)
		}
	}
	return cfg, nil
}

// ClientConfig configures the vaultbank CLI.
type ClientConfig struct {
	APIBaseURL     string
	APIHTTPTimeout time.Duration
	// Home holds the CLI's persistent state (the token file).
	Home string
}

func LoadClientConfigFromEnv() (ClientConfig, error) {
	cfg := ClientConfig{
		APIBaseURL: getenv("API_BASE_URL", DefaultAPIBaseURL),
		Home:       os.Getenv("VAULTBANK_HOME"),
	}
	if cfg.Home == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ClientConfig{}, fmt.Errorf("VAULTBANK_HOME unset and no home directory: %w", err)
		}
		cfg.Home = filepath.Join(home, ".vaultbank")
	}

	var err error
	if cfg.APIHTTPTimeout, err = durationEnv("API_HTTP_TIMEOUT", 0, "30s"); err != nil {
		return ClientConfig{}, err
	}
	return cfg, nil
}

// DevBankConfig configures cmd/devbank.
type DevBankConfig struct {
	Port     string
	Secret   []byte
	TokenTTL time.Duration
	// SeedDemo adds a demo user (demo@vaultbank.test / demo123).
	SeedDemo bool
}

func LoadDevBankConfigFromEnv() (DevBankConfig, error) {
	cfg := DevBankConfig{
		Port:     getenv("PORT", "5557"),
		Secret:   []byte(getenv("DEVBANK_SECRET", "devbank-insecure-secret")),
		SeedDemo: os.Getenv("DEVBANK_SEED") != "false",
	}
	var err error
	if cfg.TokenTTL, err = durationEnv("DEVBANK_TOKEN_TTL", time.Hour, "1h"); err != nil {
		return DevBankConfig{}, err
	}
	return cfg, nil
}

func durationEnv(key string, def time.Duration, example string) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s must be a duration (e.g. %s): %w", key, example, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("%s must not be negative", key)
	}
	return d, nil
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
