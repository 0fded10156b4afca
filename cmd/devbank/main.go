package main

import (
	"log"
	"net/http"
	"time"

	"github.com/vaultbank/vaultbank-web/internal/platform/bankfake"
	platformclock "github.com/vaultbank/vaultbank-web/internal/platform/clock"
	"github.com/vaultbank/vaultbank-web/internal/platform/config"
)

// Dev-only stand-in for the VaultBank API.
//
// This is NOT a bank. It keeps everything in memory and exists so cmd/web and the CLI
// can be run locally with API_BASE_URL=http://localhost:5557.
func main() {
	if err := config.LoadDotEnv(); err != nil {
		log.Printf("load .env: %v", err)
	}

	cfg, err := config.LoadDevBankConfigFromEnv()
	if err != nil {
		log.Fatalf("invalid config: %v", err)
	}

	bank := bankfake.New(bankfake.Options{
		Secret:   cfg.Secret,
		TokenTTL: cfg.TokenTTL,
		Clock:    platformclock.NewSystemClock(),
	})
	if cfg.SeedDemo {
		if _, err := bank.Seed(bankfake.SeedUser{
			FirstName:  "Demo",
			LastName:   "User",
			Email:      "demo@vaultbank.test",
			Username:   "demo",
			Password:   "demo123",
			Current:    25000,
			Savings:    100000,
			Investment: 50000,
		}); err != nil {
			log.Fatalf("seed demo user: %v", err)
		}
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           bank,
		ReadHeaderTimeout: 5 * time.Second,
	}

	log.Printf("devbank listening on :%s (token ttl=%s seeded=%v)", cfg.Port, cfg.TokenTTL, cfg.SeedDemo)
	log.Fatal(srv.ListenAndServe())
}
