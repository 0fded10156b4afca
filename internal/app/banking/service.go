package banking

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/http"
	"net/mail"
	"strings"

	"github.com/nrednav/cuid2"
	"github.com/oapi-codegen/nullable"
	openapi_types "github.com/oapi-codegen/runtime/types"

	"github.com/vaultbank/vaultbank-web/internal/domain"
	"github.com/vaultbank/vaultbank-web/internal/gateway"
	clockport "github.com/vaultbank/vaultbank-web/internal/ports/out/clock"
	"github.com/vaultbank/vaultbank-web/internal/ports/out/credstore"
)

// Bank API endpoints, relative to the API origin.
const (
	EndpointLogin          = "/api/v1/auth/login"
	EndpointRegister       = "/api/v1/auth/register"
	EndpointMe             = "/api/v1/auth/me"
	EndpointProfile        = "/api/v1/auth/profile"
	EndpointChangePassword = "/api/v1/auth/change-password"
	EndpointDashboard      = "/api/v1/dashboard/summary"
	EndpointReport         = "/api/v1/reports/transactions-summary"
	EndpointDeposit        = "/api/v1/transactions/deposit"
	EndpointWithdraw       = "/api/v1/transactions/withdraw"
	EndpointTransfer       = "/api/v1/transactions/transfer"
)

// MinPasswordLength is enforced client-side on signup and password change.
const MinPasswordLength = 6

// API is the slice of the session gateway the service depends on.
type API interface {
	Call(ctx context.Context, method, endpoint string, body any) (gateway.Payload, error)
}

// Service implements the banking screens' actions on top of the session gateway.
//
// Every input is validated before a request is issued; invalid input never reaches
// the API. Gateway failures are returned unchanged: their message is already fit for
// display, and 401 teardown has already happened.
type Service struct {
	api   API
	store credstore.Store
	clk   clockport.Clock

	newTicketRef func() domain.TicketRef
}

func NewService(api API, store credstore.Store, clk clockport.Clock) *Service {
	gen, err := cuid2.Init(cuid2.WithLength(12))
	if err != nil {
		gen = cuid2.Generate
	}
	return &Service{
		api:   api,
		store: store,
		clk:   clk,
		newTicketRef: func() domain.TicketRef {
			return domain.TicketRef("TKT-" + strings.ToUpper(gen()))
		},
	}
}

func (s *Service) Login(ctx context.Context, identifier, password string) (Outcome, error) {
	identifier = strings.TrimSpace(identifier)
	if identifier == "" {
		return Outcome{}, validationError("identifier", "Please enter your email or username.")
	}
	if password == "" {
		return Outcome{}, validationError("password", "Please enter your password.")
	}

	p, err := s.api.Call(ctx, http.MethodPost, EndpointLogin, loginRequest{Identifier: identifier, Password: password})
	if err != nil {
		return Outcome{}, err
	}
	var resp loginResponse
	if err := p.Decode(&resp); err != nil || resp.Token == "" {
		return Outcome{}, invalidResponse("Login failed. Please try again.")
	}
	if err := s.store.Set(ctx, domain.Token(resp.Token)); err != nil {
		return Outcome{}, fmt.Errorf("store session token: %w", err)
	}
	return Outcome{Message: messageOr(resp.Message, "Login successful!"), Next: domain.PageDashboard}, nil
}

func (s *Service) Register(ctx context.Context, in RegisterInput) (Outcome, error) {
	if in.Password != in.ConfirmPassword {
		return Outcome{}, validationError("confirmPassword", "Passwords do not match.")
	}
	if len(in.Password) < MinPasswordLength {
		return Outcome{}, validationError("password", fmt.Sprintf("Password must be at least %d characters.", MinPasswordLength))
	}
	email := domain.NormalizeLogin(in.Email)
	if err := validateEmail(email); err != nil {
		return Outcome{}, validationError("email", "Please enter a valid email address.")
	}
	username := domain.NormalizeLogin(in.Username)
	if username == "" {
		return Outcome{}, validationError("username", "Please choose a username.")
	}
	firstName := domain.NormalizeHumanName(in.FirstName)
	lastName := domain.NormalizeHumanName(in.LastName)
	if firstName == "" || lastName == "" {
		return Outcome{}, validationError("name", "Please enter your first and last name.")
	}

	p, err := s.api.Call(ctx, http.MethodPost, EndpointRegister, registerRequest{
		FirstName:     firstName,
		LastName:      lastName,
		Email:         openapi_types.Email(email),
		ContactNumber: strings.TrimSpace(in.ContactNumber),
		Password:      in.Password,
		Username:      username,
	})
	if err != nil {
		return Outcome{}, err
	}
	return Outcome{
		Message: messageOr(p.Message(), "Account created! Please wait for admin approval."),
		Next:    domain.PageLogin,
	}, nil
}

// Logout forgets the session token. The bank API has no logout endpoint; the token
// simply stops being sent.
func (s *Service) Logout(ctx context.Context) (Outcome, error) {
	if err := s.store.Clear(ctx); err != nil {
		return Outcome{}, fmt.Errorf("clear session token: %w", err)
	}
	return Outcome{Message: "You have been logged out.", Next: domain.PageLogin}, nil
}

func (s *Service) Me(ctx context.Context) (domain.Profile, error) {
	p, err := s.api.Call(ctx, http.MethodGet, EndpointMe, nil)
	if err != nil {
		return domain.Profile{}, err
	}
	var dto profileDTO
	if err := p.Decode(&dto); err != nil {
		return domain.Profile{}, invalidResponse("Failed to load profile data.")
	}
	return profileFromDTO(dto), nil
}

func (s *Service) UpdateProfile(ctx context.Context, in ProfilePatch) (domain.Profile, Outcome, error) {
	body, err := buildProfilePatch(in)
	if err != nil {
		return domain.Profile{}, Outcome{}, err
	}

	p, err := s.api.Call(ctx, http.MethodPatch, EndpointProfile, body)
	if err != nil {
		return domain.Profile{}, Outcome{}, err
	}
	var dto profileDTO
	if err := p.Decode(&dto); err != nil {
		return domain.Profile{}, Outcome{}, invalidResponse("Profile update returned an unexpected response.")
	}
	return profileFromDTO(dto), Outcome{Message: messageOr(p.Message(), "Profile updated successfully!")}, nil
}

func buildProfilePatch(in ProfilePatch) (profilePatchRequest, error) {
	var body profilePatchRequest
	specified := false

	name := func(field string, o Optional[string], dst *nullable.Nullable[string]) error {
		if !o.IsSpecified() {
			return nil
		}
		specified = true
		if o.IsNull() {
			return validationError(field, field+" cannot be null")
		}
		v := domain.NormalizeHumanName(o.Value())
		if v == "" {
			return validationError(field, field+" must be non-empty")
		}
		*dst = nullable.NewNullableWithValue(v)
		return nil
	}
	if err := name("firstName", in.FirstName, &body.FirstName); err != nil {
		return body, err
	}
	if err := name("lastName", in.LastName, &body.LastName); err != nil {
		return body, err
	}

	if in.Email.IsSpecified() {
		specified = true
		if in.Email.IsNull() {
			return body, validationError("email", "email cannot be null")
		}
		email := domain.NormalizeLogin(in.Email.Value())
		if err := validateEmail(email); err != nil {
			return body, validationError("email", "Please enter a valid email address.")
		}
		body.Email = nullable.NewNullableWithValue(openapi_types.Email(email))
	}

	if in.ContactNumber.IsSpecified() {
		specified = true
		if in.ContactNumber.IsNull() {
			body.ContactNumber = nullable.NewNullNullable[string]()
		} else {
			body.ContactNumber = nullable.NewNullableWithValue(strings.TrimSpace(in.ContactNumber.Value()))
		}
	}

	if !specified {
		return body, validationError("profile", "Nothing to update.")
	}
	return body, nil
}

func (s *Service) ChangePassword(ctx context.Context, in ChangePasswordInput) (Outcome, error) {
	if in.CurrentPassword == "" {
		return Outcome{}, validationError("currentPassword", "Please enter your current password.")
	}
	if in.NewPassword != in.ConfirmNewPassword {
		return Outcome{}, validationError("confirmNewPassword", "New passwords do not match.")
	}
	if len(in.NewPassword) < MinPasswordLength {
		return Outcome{}, validationError("newPassword", fmt.Sprintf("New password must be at least %d characters.", MinPasswordLength))
	}

	p, err := s.api.Call(ctx, http.MethodPatch, EndpointChangePassword, changePasswordRequest{
		CurrentPassword: in.CurrentPassword,
		NewPassword:     in.NewPassword,
	})
	if err != nil {
		return Outcome{}, err
	}
	return Outcome{Message: messageOr(p.Message(), "Password changed successfully!")}, nil
}

func (s *Service) Dashboard(ctx context.Context) (domain.DashboardSummary, error) {
	p, err := s.api.Call(ctx, http.MethodGet, EndpointDashboard, nil)
	if err != nil {
		return domain.DashboardSummary{}, err
	}
	var resp dashboardResponse
	if err := p.Decode(&resp); err != nil || resp.User == nil {
		return domain.DashboardSummary{}, invalidResponse("Invalid dashboard data received.")
	}

	out := domain.DashboardSummary{
		FirstName: resp.User.FirstName,
		Balances: domain.Balances{
			Total:      resp.User.TotalBalance,
			Current:    resp.User.CurrentBalance,
			Savings:    resp.User.SavingsBalance,
			Investment: resp.User.InvestmentBalance,
		},
		RecentTransactions: make([]domain.Transaction, 0, len(resp.RecentTransactions)),
	}
	for _, t := range resp.RecentTransactions {
		out.RecentTransactions = append(out.RecentTransactions, domain.Transaction{
			ID:          t.TransactionID,
			Type:        domain.TransactionType(strings.ToLower(t.Type)),
			Amount:      t.Amount,
			Description: t.Description,
			CreatedAt:   t.CreatedAt.UTC(),
		})
	}
	return out, nil
}

// TransactionAccounts lists the accounts selectable on a transaction form.
func (s *Service) TransactionAccounts(ctx context.Context, form domain.TransactionForm) ([]domain.AccountOption, error) {
	d, err := s.Dashboard(ctx)
	if err != nil {
		return nil, err
	}
	return domain.AccountsFor(form, d.Balances), nil
}

func (s *Service) TransactionsReport(ctx context.Context) (domain.TransactionsReport, error) {
	p, err := s.api.Call(ctx, http.MethodGet, EndpointReport, nil)
	if err != nil {
		return domain.TransactionsReport{}, err
	}
	var resp reportResponse
	if err := p.Decode(&resp); err != nil {
		return domain.TransactionsReport{}, invalidResponse("Failed to load transactions.")
	}

	out := domain.TransactionsReport{Rows: make([]domain.ReportRow, 0, len(resp.Transactions))}
	for _, t := range resp.Transactions {
		out.Rows = append(out.Rows, domain.ReportRow{
			TransactionID: t.TransactionID,
			Date:          t.Date,
			Type:          domain.TransactionType(strings.ToLower(t.Type)),
			Amount:        t.Amount,
			IsIncome:      t.IsIncome,
		})
	}
	// An empty history always reports a zero summary.
	if resp.Summary != nil && len(out.Rows) > 0 {
		out.Summary = domain.ReportSummary{
			TotalIncome:   resp.Summary.TotalIncome,
			TotalExpenses: resp.Summary.TotalExpenses,
			NetBalance:    resp.Summary.NetBalance,
		}
	}
	return out, nil
}

func (s *Service) Deposit(ctx context.Context, amount float64) (Outcome, error) {
	if err := validateAmount(amount); err != nil {
		return Outcome{}, err
	}
	p, err := s.api.Call(ctx, http.MethodPost, EndpointDeposit, amountRequest{Amount: amount})
	if err != nil {
		return Outcome{}, err
	}
	return Outcome{Message: messageOr(p.Message(), "Deposit successful!")}, nil
}

func (s *Service) Withdraw(ctx context.Context, amount float64) (Outcome, error) {
	if err := validateAmount(amount); err != nil {
		return Outcome{}, err
	}
	p, err := s.api.Call(ctx, http.MethodPost, EndpointWithdraw, amountRequest{Amount: amount})
	if err != nil {
		return Outcome{}, err
	}
	return Outcome{Message: messageOr(p.Message(), "Withdrawal successful!")}, nil
}

func (s *Service) Transfer(ctx context.Context, toEmail string, amount float64) (Outcome, error) {
	if err := validateAmount(amount); err != nil {
		return Outcome{}, err
	}
	toEmail = domain.NormalizeLogin(toEmail)
	if toEmail == "" {
		return Outcome{}, validationError("toEmail", "Please enter a valid recipient ID (Email).")
	}
	p, err := s.api.Call(ctx, http.MethodPost, EndpointTransfer, transferRequest{ToEmail: toEmail, Amount: amount})
	if err != nil {
		return Outcome{}, err
	}
	return Outcome{Message: messageOr(p.Message(), "Transfer successful!")}, nil
}

// SubmitTicket accepts a support request. The bank API exposes no ticket endpoint, so the
// ticket is acknowledged locally with a reference the customer can quote.
func (s *Service) SubmitTicket(ctx context.Context, in TicketInput) (domain.Ticket, Outcome, error) {
	_ = ctx
	subject := strings.TrimSpace(in.Subject)
	if subject == "" {
		return domain.Ticket{}, Outcome{}, validationError("subject", "Please enter a subject.")
	}
	if strings.TrimSpace(in.Message) == "" {
		return domain.Ticket{}, Outcome{}, validationError("message", "Please describe your issue.")
	}
	t := domain.Ticket{
		Reference: s.newTicketRef(),
		Subject:   subject,
		Status:    domain.TicketStatusSubmitted,
		CreatedAt: s.clk.Now(),
	}
	return t, Outcome{Message: "Ticket submitted successfully! We will contact you soon."}, nil
}

func validateAmount(amount float64) error {
	if math.IsNaN(amount) || math.IsInf(amount, 0) || amount <= 0 {
		return validationError("amount", "Please enter a valid positive amount.")
	}
	return nil
}

func validateEmail(email string) error {
	if email == "" {
		return errors.New("must be non-empty")
	}
	addr, err := mail.ParseAddress(email)
	if err != nil {
		return err
	}
	// Ensure no "Name <email@x>" format sneaks in.
	if addr.Address != email {
		return errors.New("must be a bare email address")
	}
	return nil
}

func profileFromDTO(dto profileDTO) domain.Profile {
	return domain.Profile{
		FirstName:     dto.FirstName,
		LastName:      dto.LastName,
		Email:         dto.Email,
		ContactNumber: dto.ContactNumber,
		Username:      dto.Username,
	}
}

func messageOr(msg, fallback string) string {
	if strings.TrimSpace(msg) != "" {
		return msg
	}
	return fallback
}
