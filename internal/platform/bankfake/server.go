// Package bankfake is an in-memory stand-in for the remote VaultBank API.
//
// It exists for tests and local development (cmd/devbank). It is NOT a banking backend:
// balances are float64, nothing is persisted, and there is no admin approval flow.
package bankfake

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	clockport "github.com/vaultbank/vaultbank-web/internal/ports/out/clock"
)

type Options struct {
	// Secret signs HS256 session tokens. Required.
	Secret   []byte
	TokenTTL time.Duration
	Clock    clockport.Clock
	// BcryptCost defaults to bcrypt.MinCost to keep tests fast.
	BcryptCost int
}

type user struct {
	ID            string
	FirstName     string
	LastName      string
	Email         string
	Username      string
	ContactNumber string
	PasswordHash  []byte

	Current    float64
	Savings    float64
	Investment float64
}

type transaction struct {
	ID        string
	UserID    string
	Type      string
	Amount    float64
	Income    bool
	CreatedAt time.Time
}

// Server is the fake API. It is safe for concurrent use.
type Server struct {
	opts Options

	mu    sync.Mutex
	users map[string]*user
	txs   []transaction

	router chi.Router
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now().UTC() }

func New(opts Options) *Server {
	if opts.TokenTTL <= 0 {
		opts.TokenTTL = time.Hour
	}
	if opts.Clock == nil {
		opts.Clock = systemClock{}
	}
	if opts.BcryptCost == 0 {
		opts.BcryptCost = bcrypt.MinCost
	}
	s := &Server{opts: opts, users: map[string]*user{}}
	s.router = s.routes()
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/auth/login", s.handleLogin)
		r.Post("/auth/register", s.handleRegister)

		r.Group(func(r chi.Router) {
			r.Use(s.requireToken)
			r.Get("/auth/me", s.handleMe)
			r.Patch("/auth/profile", s.handleProfile)
			r.Patch("/auth/change-password", s.handleChangePassword)
			r.Get("/dashboard/summary", s.handleDashboard)
			r.Get("/reports/transactions-summary", s.handleReport)
			r.Post("/transactions/deposit", s.handleDeposit)
			r.Post("/transactions/withdraw", s.handleWithdraw)
			r.Post("/transactions/transfer", s.handleTransfer)
		})
	})
	return r
}

// SeedUser registers a user directly, bypassing the HTTP validation.
type SeedUser struct {
	FirstName  string
	LastName   string
	Email      string
	Username   string
	Password   string
	Current    float64
	Savings    float64
	Investment float64
}

// Seed adds a user and returns its id.
func (s *Server) Seed(in SeedUser) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.opts.BcryptCost)
	if err != nil {
		return "", err
	}
	u := &user{
		ID:           uuid.NewString(),
		FirstName:    in.FirstName,
		LastName:     in.LastName,
		Email:        strings.ToLower(in.Email),
		Username:     strings.ToLower(in.Username),
		PasswordHash: hash,
		Current:      in.Current,
		Savings:      in.Savings,
		Investment:   in.Investment,
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.findLocked(u.Email) != nil || s.findLocked(u.Username) != nil {
		return "", errors.New("user already exists")
	}
	s.users[u.ID] = u
	return u.ID, nil
}

// IssueToken mints a session token for userID, as a successful login would.
func (s *Server) IssueToken(userID string) (string, error) {
	now := s.opts.Clock.Now()
	claims := jwt.RegisteredClaims{
		Subject:   userID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.opts.TokenTTL)),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.opts.Secret)
}

// Balance returns the user's current-account balance.
func (s *Server) Balance(userID string) (float64, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[userID]
	if !ok {
		return 0, false
	}
	return u.Current, true
}

type userKey struct{}

func (s *Server) requireToken(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
		if !ok || strings.TrimSpace(raw) == "" {
			writeMessage(w, http.StatusUnauthorized, "Not authorized, no token")
			return
		}
		claims := &jwt.RegisteredClaims{}
		_, err := jwt.ParseWithClaims(raw, claims, func(*jwt.Token) (any, error) {
			return s.opts.Secret, nil
		},
			jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
			jwt.WithTimeFunc(s.opts.Clock.Now),
			jwt.WithExpirationRequired(),
		)
		if err != nil {
			writeMessage(w, http.StatusUnauthorized, "Not authorized, token failed")
			return
		}
		s.mu.Lock()
		_, exists := s.users[claims.Subject]
		s.mu.Unlock()
		if !exists {
			writeMessage(w, http.StatusUnauthorized, "Not authorized, user not found")
			return
		}
		next.ServeHTTP(w, r.WithContext(withUserID(r.Context(), claims.Subject)))
	})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Identifier string `json:"identifier"`
		Password   string `json:"password"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	s.mu.Lock()
	u := s.findLocked(strings.ToLower(strings.TrimSpace(req.Identifier)))
	var hash []byte
	var id string
	if u != nil {
		hash, id = u.PasswordHash, u.ID
	}
	s.mu.Unlock()

	if u == nil || bcrypt.CompareHashAndPassword(hash, []byte(req.Password)) != nil {
		writeMessage(w, http.StatusUnauthorized, "Invalid credentials")
		return
	}
	tok, err := s.IssueToken(id)
	if err != nil {
		writeMessage(w, http.StatusInternalServerError, "Could not issue token")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"token": tok, "message": "Login successful!"})
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req struct {
		FirstName     string `json:"firstName"`
		LastName      string `json:"lastName"`
		Email         string `json:"email"`
		ContactNumber string `json:"contactNumber"`
		Password      string `json:"password"`
		Username      string `json:"username"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Email == "" || req.Username == "" || len(req.Password) < 6 {
		writeMessage(w, http.StatusBadRequest, "Please provide all required fields")
		return
	}
	id, err := s.Seed(SeedUser{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Username:  req.Username,
		Password:  req.Password,
	})
	if err != nil {
		writeMessage(w, http.StatusConflict, "User with this email or username already exists")
		return
	}
	s.mu.Lock()
	s.users[id].ContactNumber = req.ContactNumber
	s.mu.Unlock()
	writeJSON(w, http.StatusCreated, map[string]any{"message": "Registration successful. Please wait for admin approval."})
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u := s.users[userIDFrom(r.Context())]
	writeJSON(w, http.StatusOK, profileJSON(u))
}

func (s *Server) handleProfile(w http.ResponseWriter, r *http.Request) {
	var req map[string]*string
	if !decodeBody(w, r, &req) {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	u := s.users[userIDFrom(r.Context())]
	for field, v := range req {
		switch field {
		case "firstName", "lastName", "email":
			if v == nil || *v == "" {
				writeMessage(w, http.StatusBadRequest, field+" cannot be empty")
				return
			}
		}
	}
	if v, ok := req["firstName"]; ok {
		u.FirstName = *v
	}
	if v, ok := req["lastName"]; ok {
		u.LastName = *v
	}
	if v, ok := req["email"]; ok {
		u.Email = strings.ToLower(*v)
	}
	if v, ok := req["contactNumber"]; ok {
		u.ContactNumber = ""
		if v != nil {
			u.ContactNumber = *v
		}
	}
	out := profileJSON(u)
	out["message"] = "Profile updated successfully"
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleChangePassword(w http.ResponseWriter, r *http.Request) {
	var req struct {
		CurrentPassword string `json:"currentPassword"`
		NewPassword     string `json:"newPassword"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	u := s.users[userIDFrom(r.Context())]
	if bcrypt.CompareHashAndPassword(u.PasswordHash, []byte(req.CurrentPassword)) != nil {
		writeMessage(w, http.StatusBadRequest, "Current password is incorrect")
		return
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), s.opts.BcryptCost)
	if err != nil {
		writeMessage(w, http.StatusInternalServerError, "Could not update password")
		return
	}
	u.PasswordHash = hash
	writeMessage(w, http.StatusOK, "Password updated successfully")
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u := s.users[userIDFrom(r.Context())]
	txs := s.txsLocked(u.ID)
	if len(txs) > 5 {
		txs = txs[:5]
	}
	recent := make([]map[string]any, 0, len(txs))
	for _, t := range txs {
		recent = append(recent, map[string]any{
			"transactionId": t.ID,
			"type":          t.Type,
			"amount":        t.Amount,
			"createdAt":     t.CreatedAt.Format(time.RFC3339),
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"user": map[string]any{
			"firstName":         u.FirstName,
			"totalBalance":      u.Current + u.Savings + u.Investment,
			"currentBalance":    u.Current,
			"savingsBalance":    u.Savings,
			"investmentBalance": u.Investment,
		},
		"recentTransactions": recent,
	})
}

func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	txs := s.txsLocked(userIDFrom(r.Context()))
	rows := make([]map[string]any, 0, len(txs))
	var income, expenses float64
	for _, t := range txs {
		if t.Income {
			income += t.Amount
		} else {
			expenses += t.Amount
		}
		rows = append(rows, map[string]any{
			"transactionId": t.ID,
			"date":          t.CreatedAt.Format("2006-01-02"),
			"type":          t.Type,
			"amount":        t.Amount,
			"isIncome":      t.Income,
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"transactions": rows,
		"summary": map[string]any{
			"totalIncome":   income,
			"totalExpenses": expenses,
			"netBalance":    income - expenses,
		},
	})
}

func (s *Server) handleDeposit(w http.ResponseWriter, r *http.Request) {
	amount, ok := decodeAmount(w, r, nil)
	if !ok {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	u := s.users[userIDFrom(r.Context())]
	u.Current += amount
	s.recordLocked(u.ID, "deposit", amount, true)
	writeJSON(w, http.StatusOK, map[string]any{"message": "Deposit successful", "balance": u.Current})
}

func (s *Server) handleWithdraw(w http.ResponseWriter, r *http.Request) {
	amount, ok := decodeAmount(w, r, nil)
	if !ok {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	u := s.users[userIDFrom(r.Context())]
	if u.Current < amount {
		writeMessage(w, http.StatusBadRequest, "Insufficient funds")
		return
	}
	u.Current -= amount
	s.recordLocked(u.ID, "withdraw", amount, false)
	writeJSON(w, http.StatusOK, map[string]any{"message": "Withdrawal successful", "balance": u.Current})
}

func (s *Server) handleTransfer(w http.ResponseWriter, r *http.Request) {
	var toEmail string
	amount, ok := decodeAmount(w, r, &toEmail)
	if !ok {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	from := s.users[userIDFrom(r.Context())]
	to := s.findLocked(strings.ToLower(strings.TrimSpace(toEmail)))
	if to == nil {
		writeMessage(w, http.StatusNotFound, "Recipient not found")
		return
	}
	if to.ID == from.ID {
		writeMessage(w, http.StatusBadRequest, "Cannot transfer to yourself")
		return
	}
	if from.Current < amount {
		writeMessage(w, http.StatusBadRequest, "Insufficient funds")
		return
	}
	from.Current -= amount
	to.Current += amount
	s.recordLocked(from.ID, "transfer", amount, false)
	s.recordLocked(to.ID, "transfer", amount, true)
	writeJSON(w, http.StatusOK, map[string]any{"message": fmt.Sprintf("Transferred %.2f to %s", amount, to.Email)})
}

func (s *Server) findLocked(identifier string) *user {
	if identifier == "" {
		return nil
	}
	for _, u := range s.users {
		if u.Email == identifier || u.Username == identifier {
			return u
		}
	}
	return nil
}

func (s *Server) recordLocked(userID, typ string, amount float64, income bool) {
	s.txs = append(s.txs, transaction{
		ID:        uuid.NewString(),
		UserID:    userID,
		Type:      typ,
		Amount:    amount,
		Income:    income,
		CreatedAt: s.opts.Clock.Now(),
	})
}

// txsLocked returns the user's transactions, newest first.
func (s *Server) txsLocked(userID string) []transaction {
	var out []transaction
	for _, t := range s.txs {
		if t.UserID == userID {
			out = append(out, t)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

func profileJSON(u *user) map[string]any {
	return map[string]any{
		"firstName":     u.FirstName,
		"lastName":      u.LastName,
		"email":         u.Email,
		"username":      u.Username,
		"contactNumber": u.ContactNumber,
	}
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid request body")
		return false
	}
	return true
}

func decodeAmount(w http.ResponseWriter, r *http.Request, toEmail *string) (float64, bool) {
	var req struct {
		Amount  float64 `json:"amount"`
		ToEmail string  `json:"toEmail"`
	}
	if !decodeBody(w, r, &req) {
		return 0, false
	}
	if math.IsNaN(req.Amount) || req.Amount <= 0 {
		writeMessage(w, http.StatusBadRequest, "Amount must be a positive number")
		return 0, false
	}
	if toEmail != nil {
		*toEmail = req.ToEmail
	}
	return req.Amount, true
}

func writeMessage(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]any{"message": msg})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
