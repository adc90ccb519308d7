package events

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/sheikh-saqib/atm-ledger/internal/models"
)

// TopicTransactionCompleted is the default topic TransactionCompleted events go to.
const TopicTransactionCompleted = "transaction_completed"

type TransactionCompleted struct {
	TransactionID string          `json:"transaction_id"`
	Kind          string          `json:"kind"`
	FromAccount   string          `json:"from_account,omitempty"`
	ToAccount     string          `json:"to_account,omitempty"`
	Amount        decimal.Decimal `json:"amount"`
	OccurredAt    time.Time       `json:"occurred_at"`
}

// NewTransactionCompleted builds the event for tx. Deposits only carry a
// recipient, withdrawals only a sender.
func NewTransactionCompleted(tx models.Transaction) TransactionCompleted {
	ev := TransactionCompleted{
		TransactionID: tx.ID,
		Kind:          string(tx.Kind),
		Amount:        tx.Amount,
		OccurredAt:    tx.CreatedAt,
	}
	switch tx.Kind {
	case models.KindDeposit:
		ev.ToAccount = tx.AccountID
	case models.KindTransfer:
		ev.FromAccount = tx.AccountID
		ev.ToAccount = tx.Counterparty
	default:
		ev.FromAccount = tx.AccountID
	}
	return ev
}

// Key is the partition key of the event.
func (e TransactionCompleted) Key() string {
	if e.FromAccount != "" {
		return e.FromAccount
	}
	return e.ToAccount
}
