package domain

import "time"

// Profile is the signed-in customer's profile as returned by the bank API.
type Profile struct {
	FirstName     string
	LastName      string
	Email         string
	ContactNumber string
	Username      string
}

// Balances are the customer's per-account balances, in PHP.
type Balances struct {
	Total      float64
	Current    float64
	Savings    float64
	Investment float64
}

// DashboardSummary is the dashboard read model.
type DashboardSummary struct {
	FirstName          string
	Balances           Balances
	RecentTransactions []Transaction
}

// AccountCode identifies one of the customer's accounts in transaction forms.
type AccountCode string

const (
	AccountChecking   AccountCode = "CHK"
	AccountSavings    AccountCode = "SAV"
	AccountInvestment AccountCode = "INV"
)

// AccountOption is one selectable source/target account of a transaction form.
type AccountOption struct {
	Code    AccountCode
	Name    string
	Balance float64
	// ShowBalance is set when the form displays the balance next to the name.
	ShowBalance bool
}

// TransactionForm identifies which money-movement form an account list is built for.
type TransactionForm string

const (
	FormWithdraw TransactionForm = "withdraw"
	FormDeposit  TransactionForm = "deposit"
	FormTransfer TransactionForm = "transfer"
)

// AccountsFor lists the account options shown on a transaction form.
// Transfers cannot draw from the investment account; deposits hide balances.
func AccountsFor(form TransactionForm, b Balances) []AccountOption {
	showBalance := form != FormDeposit
	out := []AccountOption{
		{Code: AccountChecking, Name: "Current Balance", Balance: b.Current, ShowBalance: showBalance},
		{Code: AccountSavings, Name: "Savings Account", Balance: b.Savings, ShowBalance: showBalance},
	}
	if form != FormTransfer {
		out = append(out, AccountOption{Code: AccountInvestment, Name: "Investment Account", Balance: b.Investment, ShowBalance: showBalance})
	}
	return out
}

// TicketStatus is the lifecycle state of a support ticket.
type TicketStatus string

const TicketStatusSubmitted TicketStatus = "SUBMITTED"

// Ticket is an accepted support request.
type Ticket struct {
	Reference TicketRef
	Subject   string
	Status    TicketStatus
	CreatedAt time.Time
}
