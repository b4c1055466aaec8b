package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionStatus is the lifecycle state of a sharing transaction.
type TransactionStatus string

const (
	TransactionCompleted TransactionStatus = "COMPLETED"
	TransactionPending   TransactionStatus = "PENDING"
	TransactionRejected  TransactionStatus = "REJECTED"
	TransactionCancelled TransactionStatus = "CANCELLED"
)

// Transaction is read-only from the dashboard.
type Transaction struct {
	ID        ID                `json:"id"`
	Amount    decimal.Decimal   `json:"amount"`
	Status    TransactionStatus `json:"status"`
	CreatedAt time.Time         `json:"createdAt"`
}

// TransactionStats is the aggregate shown on the statistics page.
type TransactionStats struct {
	TotalTransactions     int64           `json:"totalTransactions"`
	CompletedTransactions int64           `json:"completedTransactions"`
	PendingTransactions   int64           `json:"pendingTransactions"`
	RejectedTransactions  int64           `json:"rejectedTransactions"`
	CancelledTransactions int64           `json:"cancelledTransactions"`
	TotalAmount           decimal.Decimal `json:"totalAmount"`
}

// Failed counts transactions that did not complete.
func (s TransactionStats) Failed() int64 {
	return s.RejectedTransactions + s.CancelledTransactions
}

// SuccessRate is the completed share in percent, rounded to one decimal.
func (s TransactionStats) SuccessRate() decimal.Decimal {
	if s.TotalTransactions == 0 {
		return decimal.Zero
	}
	return decimal.NewFromInt(s.CompletedTransactions).
		Mul(decimal.NewFromInt(100)).
		Div(decimal.NewFromInt(s.TotalTransactions)).
		Round(1)
}
