package ledger

import (
	"context"
	"fmt"
	"io"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	interfaces "github.com/sheikh-saqib/atm-ledger/internal/interfaces"
	"github.com/sheikh-saqib/atm-ledger/internal/models"
)

// MaxRecentHistory bounds the in-memory recent history of an account.
const MaxRecentHistory = 10

// Account is one user's balance, credential and transaction history.
//
// Every balance mutation appends exactly one line to the durable history log
// and one entry to the recent history. The recent history is most recent
// first and never holds more than MaxRecentHistory entries.
type Account struct {
	id      string
	pin     string
	balance decimal.Decimal
	recent  []string

	history interfaces.HistoryLog
	now     func() time.Time
	notify  func(context.Context, models.Transaction) // completed deposits and withdrawals
	closed  bool
}

func newAccount(id, pin string, balance decimal.Decimal, l *Ledger) *Account {
	return &Account{id: id, pin: pin, balance: balance, history: l.history, now: l.now, notify: l.publish}
}

// ID returns the immutable account id.
func (a *Account) ID() string { return a.id }

// Balance returns the current balance.
func (a *Account) Balance() decimal.Decimal { return a.balance }

func (a *Account) record() models.AccountRecord {
	return models.AccountRecord{ID: a.id, PIN: a.pin, Balance: a.balance}
}

// Deposit adds a positive amount to the balance. Deposits and withdrawals
// made through the account handle publish the same events as the Ledger methods.
func (a *Account) Deposit(ctx context.Context, amount decimal.Decimal) (models.Transaction, error) {
	tx, err := a.deposit(ctx, amount)
	if err == nil {
		a.notify(ctx, tx)
	}
	return tx, err
}

func (a *Account) deposit(ctx context.Context, amount decimal.Decimal) (models.Transaction, error) {
	if a.closed {
		return models.Transaction{}, ErrAccountClosed
	}
	if !amount.IsPositive() {
		return models.Transaction{}, ErrInvalidAmount
	}
	tx := a.newTransaction(models.KindDeposit, amount)
	a.balance = a.balance.Add(amount)
	a.log(ctx, tx.Line(tx.Description()))
	return tx, nil
}

// Withdraw removes a positive amount from the balance. It fails with
// ErrInsufficientFunds, leaving the account untouched, if the balance is lower
// than amount.
func (a *Account) Withdraw(ctx context.Context, amount decimal.Decimal) (models.Transaction, error) {
	tx, err := a.withdraw(ctx, amount)
	if err == nil {
		a.notify(ctx, tx)
	}
	return tx, err
}

func (a *Account) withdraw(ctx context.Context, amount decimal.Decimal) (models.Transaction, error) {
	if a.closed {
		return models.Transaction{}, ErrAccountClosed
	}
	if !amount.IsPositive() {
		return models.Transaction{}, ErrInvalidAmount
	}
	if a.balance.LessThan(amount) {
		return models.Transaction{}, ErrInsufficientFunds
	}
	tx := a.newTransaction(models.KindWithdraw, amount)
	a.balance = a.balance.Sub(amount)
	a.log(ctx, tx.Line(tx.Description()))
	return tx, nil
}

// reverse gives back a withdrawal that could not be completed.
func (a *Account) reverse(ctx context.Context, withdrawal models.Transaction) {
	tx := a.newTransaction(models.KindReversal, withdrawal.Amount)
	a.balance = a.balance.Add(withdrawal.Amount)
	a.log(ctx, tx.Line(tx.Description()))
}

// RecordNote adds text to the recent history only.
func (a *Account) RecordNote(text string) {
	a.recent = append([]string{text}, a.recent...)
	if len(a.recent) > MaxRecentHistory {
		a.recent = a.recent[:MaxRecentHistory]
	}
}

// History returns a copy of the recent history, most recent first.
func (a *Account) History() []string {
	out := make([]string, len(a.recent))
	copy(out, a.recent)
	return out
}

// Statement returns the full durable history, oldest first. It is nil when
// nothing was ever recorded.
func (a *Account) Statement(ctx context.Context) ([]string, error) {
	lines, err := a.history.Lines(ctx, a.id)
	if err != nil {
		return nil, &PersistenceError{Op: "read", Err: err}
	}
	return lines, nil
}

// PrintLog writes the full durable history to w, one line per transaction,
// or "No transactions found." when there is none.
func (a *Account) PrintLog(ctx context.Context, w io.Writer) error {
	lines, err := a.Statement(ctx)
	if err != nil {
		return err
	}
	if len(lines) == 0 {
		_, err := fmt.Fprintln(w, "No transactions found.")
		return err
	}
	for _, l := range lines {
		if _, err := fmt.Fprintln(w, l); err != nil {
			return err
		}
	}
	return nil
}

func (a *Account) newTransaction(kind models.Kind, amount decimal.Decimal) models.Transaction {
	return models.Transaction{
		ID:        uuid.New().String(),
		Kind:      kind,
		AccountID: a.id,
		Amount:    amount,
		CreatedAt: a.now(),
	}
}

// log records line in both histories. A failed append is reported but the
// mutation stands.
func (a *Account) log(ctx context.Context, line string) {
	a.RecordNote(line)
	if err := a.history.Append(ctx, a.id, line); err != nil {
		log.Printf("warning, %v", &PersistenceError{Op: "append", Err: fmt.Errorf("statement of %q: %w", a.id, err)})
	}
}
