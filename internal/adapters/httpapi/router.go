package httpapi

import (
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"

	"github.com/vaultbank/vaultbank-web/internal/domain"
	platformclock "github.com/vaultbank/vaultbank-web/internal/platform/clock"
	clockport "github.com/vaultbank/vaultbank-web/internal/ports/out/clock"
)

// Server is the web front-end: it serves page view models and form actions, and
// forwards them to the bank API through a per-browser session gateway.
type Server struct {
	sessions   Sessions
	apiBaseURL string
	httpClient *http.Client
	logger     *log.Logger
	clk        clockport.Clock
}

type ServerOptions struct {
	Sessions   Sessions
	APIBaseURL string
	// HTTPClient is used for upstream calls. Nil means a client without timeout.
	HTTPClient *http.Client
	Logger     *log.Logger
	Clock      clockport.Clock
}

func NewServer(opts ServerOptions) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}
	clk := opts.Clock
	if clk == nil {
		clk = platformclock.NewSystemClock()
	}
	return &Server{
		sessions:   opts.Sessions,
		apiBaseURL: opts.APIBaseURL,
		httpClient: opts.HTTPClient,
		logger:     logger,
		clk:        clk,
	}
}

// RouterOptions configures cross-cutting HTTP concerns.
type RouterOptions struct {
	// AllowedOrigins enables CORS for the listed origins. Empty disables CORS.
	AllowedOrigins []string
}

func NewRouter(s *Server) http.Handler {
	return NewRouterWithOptions(s, RouterOptions{})
}

func NewRouterWithOptions(s *Server, opts RouterOptions) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	if len(opts.AllowedOrigins) > 0 {
		r.Use(cors.New(cors.Options{
			AllowedOrigins:   opts.AllowedOrigins,
			AllowedMethods:   []string{http.MethodGet, http.MethodPost},
			AllowedHeaders:   []string{"Content-Type", "Accept"},
			AllowCredentials: true,
		}).Handler)
	}

	// Health endpoint carries no session.
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	r.Group(func(r chi.Router) {
		r.Use(s.sessionMiddleware)

		r.Get("/", func(w http.ResponseWriter, r *http.Request) {
			http.Redirect(w, r, domain.PageDashboard.Path(), http.StatusSeeOther)
		})
		for _, p := range domain.Pages() {
			r.Get(p.Path(), s.handlePage(p))
		}

		r.Post("/auth/login", s.form(domain.PageLogin, s.handleLogin))
		r.Post("/auth/register", s.form(domain.PageSignup, s.handleRegister))
		r.Post("/auth/logout", s.handleLogout)
		r.Post("/auth/profile", s.form(domain.PageSettings, s.handleUpdateProfile))
		r.Post("/auth/change-password", s.form(domain.PageSettings, s.handleChangePassword))
		r.Post("/transactions/deposit", s.form(domain.PageTransac, s.handleDeposit))
		r.Post("/transactions/withdraw", s.form(domain.PageTransac, s.handleWithdraw))
		r.Post("/transactions/transfer", s.form(domain.PageTransac, s.handleTransfer))
		r.Post("/support/tickets", s.form(domain.PageSupport, s.handleSubmitTicket))
	})
	return r
}
