package httpapi

import (
	"time"

	"github.com/vaultbank/vaultbank-web/internal/domain"
)

// JSON view models of the pages. Amounts are raw numbers; formatting belongs to the client.

type pageView struct {
	Page domain.Page `json:"page"`
}

type balancesView struct {
	Total      float64 `json:"total"`
	Current    float64 `json:"current"`
	Savings    float64 `json:"savings"`
	Investment float64 `json:"investment"`
}

type transactionView struct {
	ID          string    `json:"id"`
	Type        string    `json:"type"`
	Label       string    `json:"label"`
	Amount      float64   `json:"amount"`
	Signed      float64   `json:"signedAmount"`
	IsIncome    bool      `json:"isIncome"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}

type dashboardView struct {
	Page               domain.Page       `json:"page"`
	FirstName          string            `json:"firstName"`
	Balances           balancesView      `json:"balances"`
	RecentTransactions []transactionView `json:"recentTransactions"`
}

type reportRowView struct {
	TransactionID string  `json:"transactionId"`
	ShortID       string  `json:"shortId"`
	Date          string  `json:"date"`
	Type          string  `json:"type"`
	Amount        float64 `json:"amount"`
	IsIncome      bool    `json:"isIncome"`
}

type reportView struct {
	Page         domain.Page     `json:"page"`
	Transactions []reportRowView `json:"transactions"`
	Summary      struct {
		TotalIncome   float64 `json:"totalIncome"`
		TotalExpenses float64 `json:"totalExpenses"`
		NetBalance    float64 `json:"netBalance"`
	} `json:"summary"`
}

type accountOptionView struct {
	Code    domain.AccountCode `json:"code"`
	Name    string             `json:"name"`
	Balance *float64           `json:"balance,omitempty"`
}

type transactionFormsView struct {
	Page  domain.Page                                    `json:"page"`
	Forms map[domain.TransactionForm][]accountOptionView `json:"forms"`
}

type profileView struct {
	FirstName     string `json:"firstName"`
	LastName      string `json:"lastName"`
	Email         string `json:"email"`
	Username      string `json:"username,omitempty"`
	ContactNumber string `json:"contactNumber,omitempty"`
}

type settingsView struct {
	Page    domain.Page `json:"page"`
	Profile profileView `json:"profile"`
}

type supportView struct {
	Page       domain.Page `json:"page"`
	Categories []string    `json:"categories"`
}

type ticketView struct {
	Reference string    `json:"reference"`
	Subject   string    `json:"subject"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"createdAt"`
}

// outcomeView is the success response of a form action.
type outcomeView struct {
	Message  string       `json:"message"`
	Redirect string       `json:"redirect,omitempty"`
	Profile  *profileView `json:"profile,omitempty"`
	Ticket   *ticketView  `json:"ticket,omitempty"`
}

var supportCategories = []string{"account", "transactions", "cards", "technical", "other"}

func toDashboardView(d domain.DashboardSummary) dashboardView {
	out := dashboardView{
		Page:      domain.PageDashboard,
		FirstName: d.FirstName,
		Balances: balancesView{
			Total:      d.Balances.Total,
			Current:    d.Balances.Current,
			Savings:    d.Balances.Savings,
			Investment: d.Balances.Investment,
		},
		RecentTransactions: make([]transactionView, 0, len(d.RecentTransactions)),
	}
	for _, t := range d.RecentTransactions {
		out.RecentTransactions = append(out.RecentTransactions, transactionView{
			ID:          t.ID,
			Type:        string(t.Type),
			Label:       t.Describe(),
			Amount:      t.Amount,
			Signed:      t.SignedAmount(),
			IsIncome:    t.IsIncome(),
			Description: t.Description,
			CreatedAt:   t.CreatedAt,
		})
	}
	return out
}

func toReportView(r domain.TransactionsReport) reportView {
	out := reportView{Page: domain.PageTransaction, Transactions: make([]reportRowView, 0, len(r.Rows))}
	for _, row := range r.Rows {
		out.Transactions = append(out.Transactions, reportRowView{
			TransactionID: row.TransactionID,
			ShortID:       row.ShortID(),
			Date:          row.Date,
			Type:          string(row.Type),
			Amount:        row.Amount,
			IsIncome:      row.IsIncome,
		})
	}
	out.Summary.TotalIncome = r.Summary.TotalIncome
	out.Summary.TotalExpenses = r.Summary.TotalExpenses
	out.Summary.NetBalance = r.Summary.NetBalance
	return out
}

func toAccountOptions(opts []domain.AccountOption) []accountOptionView {
	out := make([]accountOptionView, 0, len(opts))
	for _, o := range opts {
		v := accountOptionView{Code: o.Code, Name: o.Name}
		if o.ShowBalance {
			b := o.Balance
			v.Balance = &b
		}
		out = append(out, v)
	}
	return out
}

func toProfileView(p domain.Profile) profileView {
	return profileView{
		FirstName:     p.FirstName,
		LastName:      p.LastName,
		Email:         p.Email,
		Username:      p.Username,
		ContactNumber: p.ContactNumber,
	}
}

func toTicketView(t domain.Ticket) *ticketView {
	return &ticketView{
		Reference: string(t.Reference),
		Subject:   t.Subject,
		Status:    string(t.Status),
		CreatedAt: t.CreatedAt,
	}
}
