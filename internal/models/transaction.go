package models

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// TimestampLayout is the layout of every history line timestamp.
const TimestampLayout = "2006-01-02 15:04:05"

// Kind tells which balance mutation a Transaction records.
type Kind string

const (
	KindDeposit  Kind = "deposit"
	KindWithdraw Kind = "withdraw"
	KindTransfer Kind = "transfer"
	KindReversal Kind = "reversal"
)

// Transaction represents a completed balance mutation on one account.
// For transfers AccountID is the sender and Counterparty the recipient.
type Transaction struct {
	ID           string
	Kind         Kind
	AccountID    string
	Counterparty string
	Amount       decimal.Decimal
	CreatedAt    time.Time
}

// Description is the human readable text of the transaction, without timestamp.
func (t Transaction) Description() string {
	switch t.Kind {
	case KindDeposit:
		return "Deposited: " + t.Amount.String()
	case KindWithdraw:
		return "Withdrew: " + t.Amount.String()
	case KindTransfer:
		return fmt.Sprintf("Transferred %s to %s", t.Amount, t.Counterparty)
	case KindReversal:
		return "Reversed withdrawal: " + t.Amount.String()
	}
	return string(t.Kind) + ": " + t.Amount.String()
}

// Line formats text as a history line stamped with the transaction time.
func (t Transaction) Line(text string) string {
	return t.CreatedAt.Format(TimestampLayout) + " - " + text
}
