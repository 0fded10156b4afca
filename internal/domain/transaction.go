package domain

import (
	"strings"
	"time"
)

type TransactionType string

const (
	TransactionDeposit  TransactionType = "deposit"
	TransactionWithdraw TransactionType = "withdraw"
	TransactionTransfer TransactionType = "transfer"
)

// Transaction is one entry of the dashboard's recent activity.
type Transaction struct {
	ID          string
	Type        TransactionType
	Amount      float64
	Description string
	CreatedAt   time.Time
}

// IsIncome reports whether the transaction credits the customer.
// The dashboard payload carries no direction, so this is a best guess from the type:
// only deposits count, and every transfer is labelled outgoing, received ones included.
func (t Transaction) IsIncome() bool {
	return t.Type == TransactionDeposit
}

// SignedAmount is Amount with the sign of its direction applied.
func (t Transaction) SignedAmount() float64 {
	if t.IsIncome() {
		return t.Amount
	}
	return -t.Amount
}

// Describe returns the display label of the transaction.
func (t Transaction) Describe() string {
	switch t.Type {
	case TransactionTransfer:
		return "Transfer"
	case TransactionWithdraw:
		return "Withdrawal"
	case TransactionDeposit:
		return "Deposit"
	}
	if t.Description != "" {
		return t.Description
	}
	return string(t.Type) + " transaction"
}

// ReportRow is one row of the transaction history report.
// IsIncome comes from the server and is trusted as-is.
type ReportRow struct {
	TransactionID string
	Date          string
	Type          TransactionType
	Amount        float64
	IsIncome      bool
}

// ShortID is the last six characters of the transaction id, as shown in the history table.
func (r ReportRow) ShortID() string {
	id := strings.TrimSpace(r.TransactionID)
	if len(id) <= 6 {
		return id
	}
	return id[len(id)-6:]
}

// ReportSummary aggregates the report period.
type ReportSummary struct {
	TotalIncome   float64
	TotalExpenses float64
	NetBalance    float64
}

// TransactionsReport is the transaction history read model.
type TransactionsReport struct {
	Rows    []ReportRow
	Summary ReportSummary
}
