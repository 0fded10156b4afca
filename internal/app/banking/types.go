package banking

import (
	"time"

	"github.com/oapi-codegen/nullable"
	openapi_types "github.com/oapi-codegen/runtime/types"

	"github.com/vaultbank/vaultbank-web/internal/domain"
)

// Optional is a tri-state field used to distinguish:
// - unspecified (omitted)
// - specified as null
// - specified with a value
type Optional[T any] struct {
	specified bool
	isNull    bool
	value     T
}

func Unspecified[T any]() Optional[T] { return Optional[T]{} }
func Null[T any]() Optional[T]        { return Optional[T]{specified: true, isNull: true} }
func Some[T any](v T) Optional[T]     { return Optional[T]{specified: true, value: v} }

func (o Optional[T]) IsSpecified() bool { return o.specified }
func (o Optional[T]) IsNull() bool      { return o.specified && o.isNull }
func (o Optional[T]) Value() T          { return o.value }

// Outcome is the result of a form submission: a message for the user and,
// optionally, the page to continue on.
type Outcome struct {
	Message string
	Next    domain.Page
}

type RegisterInput struct {
	FirstName       string
	LastName        string
	Email           string
	ContactNumber   string
	Username        string
	Password        string
	ConfirmPassword string
}

// ProfilePatch is a partial profile update. FirstName, LastName and Email cannot be null;
// a null ContactNumber removes the number.
type ProfilePatch struct {
	FirstName     Optional[string]
	LastName      Optional[string]
	Email         Optional[string]
	ContactNumber Optional[string]
}

type ChangePasswordInput struct {
	CurrentPassword    string
	NewPassword        string
	ConfirmNewPassword string
}

type TicketInput struct {
	Subject  string
	Category string
	Message  string
}

// Wire shapes of the bank API.

type loginRequest struct {
	Identifier string `json:"identifier"`
	Password   string `json:"password"`
}

type loginResponse struct {
	Token   string `json:"token"`
	Message string `json:"message"`
}

type registerRequest struct {
	FirstName     string              `json:"firstName"`
	LastName      string              `json:"lastName"`
	Email         openapi_types.Email `json:"email"`
	ContactNumber string              `json:"contactNumber"`
	Password      string              `json:"password"`
	Username      string              `json:"username"`
}

// profileDTO is decoded leniently: the e-mail stays a plain string so that a profile
// with a missing address still loads.
type profileDTO struct {
	FirstName     string `json:"firstName"`
	LastName      string `json:"lastName"`
	Email         string `json:"email"`
	ContactNumber string `json:"contactNumber"`
	Username      string `json:"username"`
}

type profilePatchRequest struct {
	FirstName     nullable.Nullable[string]              `json:"firstName,omitempty"`
	LastName      nullable.Nullable[string]              `json:"lastName,omitempty"`
	Email         nullable.Nullable[openapi_types.Email] `json:"email,omitempty"`
	ContactNumber nullable.Nullable[string]              `json:"contactNumber,omitempty"`
}

type changePasswordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

type amountRequest struct {
	Amount float64 `json:"amount"`
}

type transferRequest struct {
	ToEmail string  `json:"toEmail"`
	Amount  float64 `json:"amount"`
}

type dashboardResponse struct {
	User *struct {
		FirstName         string  `json:"firstName"`
		TotalBalance      float64 `json:"totalBalance"`
		CurrentBalance    float64 `json:"currentBalance"`
		SavingsBalance    float64 `json:"savingsBalance"`
		InvestmentBalance float64 `json:"investmentBalance"`
	} `json:"user"`
	RecentTransactions []transactionDTO `json:"recentTransactions"`
}

type transactionDTO struct {
	TransactionID string    `json:"transactionId"`
	Type          string    `json:"type"`
	Amount        float64   `json:"amount"`
	Description   string    `json:"description"`
	CreatedAt     time.Time `json:"createdAt"`
}

type reportResponse struct {
	Transactions []struct {
		TransactionID string  `json:"transactionId"`
		Date          string  `json:"date"`
		Type          string  `json:"type"`
		Amount        float64 `json:"amount"`
		IsIncome      bool    `json:"isIncome"`
	} `json:"transactions"`
	Summary *struct {
		TotalIncome   float64 `json:"totalIncome"`
		TotalExpenses float64 `json:"totalExpenses"`
		NetBalance    float64 `json:"netBalance"`
	} `json:"summary"`
}
