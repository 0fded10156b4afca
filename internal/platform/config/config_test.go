package config

import (
	"path/filepath"
	"strings"
	"testing"
	"time"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func TestLoadWebConfigFromEnv_Defaults(t *testing.T) {
	t.Setenv("SESSION_SECRET", testSecret)
	t.Setenv("API_BASE_URL", "")
	t.Setenv("CREDENTIAL_BACKEND", "")
	t.Setenv("CORS_ALLOWED_ORIGINS", "")

	cfg, err := LoadWebConfigFromEnv()
	if err != nil {
		t.Fatalf("LoadWebConfigFromEnv: %v", err)
	}
	if cfg.APIBaseURL != DefaultAPIBaseURL || cfg.CredentialBackend != BackendCookie {
		t.Fatalf("cfg=%+v", cfg)
	}
	if cfg.APIHTTPTimeout != 0 || cfg.SessionMaxAge != 24*time.Hour || len(cfg.CORSAllowedOrigins) != 0 {
		t.Fatalf("cfg=%+v", cfg)
	}
}

func TestLoadWebConfigFromEnv_Overrides(t *testing.T) {
	t.Setenv("SESSION_SECRET", testSecret)
	t.Setenv("CREDENTIAL_BACKEND", "redis")
	t.Setenv("API_HTTP_TIMEOUT", "5s")
	t.Setenv("CORS_ALLOWED_ORIGINS", " https://a.example , ,https://b.example")

	cfg, err := LoadWebConfigFromEnv()
	if err != nil {
		t.Fatalf("LoadWebConfigFromEnv: %v", err)
	}
	if cfg.CredentialBackend != BackendRedis || cfg.APIHTTPTimeout != 5*time.Second {
		t.Fatalf("cfg=%+v", cfg)
	}
	if strings.Join(cfg.CORSAllowedOrigins, "|") != "https://a.example|https://b.example" {
		t.Fatalf("origins=%v", cfg.CORSAllowedOrigins)
	}
}

func TestLoadWebConfigFromEnv_Errors(t *testing.T) {
	cases := []struct {
		name string
		env  map[string]string
		want string
	}{
		{"short secret", map[string]string{"SESSION_SECRET": "short"}, "SESSION_SECRET"},
		{"bad backend", map[string]string{"SESSION_SECRET": testSecret, "CREDENTIAL_BACKEND": "etcd"}, "CREDENTIAL_BACKEND"},
		{"postgres without dsn", map[string]string{"SESSION_SECRET": testSecret, "CREDENTIAL_BACKEND": "postgres", "DATABASE_URL": ""}, "DATABASE_URL"},
		{"bad timeout", map[string]string{"SESSION_SECRET": testSecret, "API_HTTP_TIMEOUT": "soon"}, "API_HTTP_TIMEOUT"},
		{"negative ttl", map[string]string{"SESSION_SECRET": testSecret, "REDIS_TTL": "-1s"}, "REDIS_TTL"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			for k, v := range tc.env {
				t.Setenv(k, v)
			}
			_, err := LoadWebConfigFromEnv()
			if err == nil || !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("err=%v, want mention of %s", err, tc.want)
			}
		})
	}
}

func TestLoadClientConfigFromEnv_Home(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("VAULTBANK_HOME", dir)
	cfg, err := LoadClientConfigFromEnv()
	if err != nil {
		t.Fatalf("LoadClientConfigFromEnv: %v", err)
	}
	if cfg.Home != dir {
		t.Fatalf("home=%q", cfg.Home)
	}

	home := t.TempDir()
	t.Setenv("VAULTBANK_HOME", "")
	t.Setenv("HOME", home)
	cfg, err = LoadClientConfigFromEnv()
	if err != nil {
		t.Fatalf("LoadClientConfigFromEnv: %v", err)
	}
	if cfg.Home != filepath.Join(home, ".vaultbank") {
		t.Fatalf("home=%q", cfg.Home)
	}
}

func TestLoadDevBankConfigFromEnv(t *testing.T) {
	t.Setenv("DEVBANK_TOKEN_TTL", "2m")
	t.Setenv("DEVBANK_SEED", "false")
	cfg, err := LoadDevBankConfigFromEnv()
	if err != nil {
		t.Fatalf("LoadDevBankConfigFromEnv: %v", err)
	}
	if cfg.TokenTTL != 2*time.Minute || cfg.SeedDemo || len(cfg.Secret) == 0 {
		t.Fatalf("cfg=%+v", cfg)
	}
}
