package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	filecredstore "github.com/vaultbank/vaultbank-web/internal/adapters/file/credstore"
	"github.com/vaultbank/vaultbank-web/internal/domain"
	platformclock "github.com/vaultbank/vaultbank-web/internal/platform/clock"
	"github.com/vaultbank/vaultbank-web/internal/platform/config"
)

// vaultbank is a terminal client for the VaultBank API. The session token is kept in
// $VAULTBANK_HOME (default ~/.vaultbank) between invocations.
func main() {
	if err := config.LoadDotEnv(); err != nil {
		log.Printf("load .env: %v", err)
	}
	os.Exit(runMain(os.Args[1:], os.Stdout, os.Stderr))
}

// runMain returns the exit code instead of exiting so deferred cleanup runs.
func runMain(args []string, stdout, stderr io.Writer) int {
	cfg, err := config.LoadClientConfigFromEnv()
	if err != nil {
		fmt.Fprintf(stderr, "invalid config: %v\n", err)
		return exitError
	}

	logger := log.New(io.Discard, "", 0)
	if os.Getenv("VAULTBANK_DEBUG") != "" {
		logger = log.New(stderr, "vaultbank: ", log.LstdFlags)
	}
	var hc *http.Client
	if cfg.APIHTTPTimeout > 0 {
		hc = &http.Client{Timeout: cfg.APIHTTPTimeout}
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	c := newCLI(cliOptions{
		APIBaseURL: cfg.APIBaseURL,
		Store:      filecredstore.NewStore(filepath.Join(cfg.Home, "credentials"), domain.TokenKey),
		HTTPClient: hc,
		Logger:     logger,
		Clock:      platformclock.NewSystemClock(),
		Stdout:     stdout,
		Stderr:     stderr,
	})
	return c.run(ctx, args)
}
