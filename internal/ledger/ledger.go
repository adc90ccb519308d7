// Package ledger holds the accounts of a single-session ATM: balances,
// PIN-gated access, transaction histories and their persistence.
//
// A Ledger is owned by one session at a time and is not safe for concurrent use.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	interfaces "github.com/sheikh-saqib/atm-ledger/internal/interfaces"
	"github.com/sheikh-saqib/atm-ledger/internal/models"
	"github.com/sheikh-saqib/atm-ledger/internal/models/events"
)

const (
	// MaxPINAttempts is the number of PINs Authenticate accepts before locking the session out.
	MaxPINAttempts = 3

	// DefaultPublishTimeout bounds the time an operation waits for its event to be published.
	DefaultPublishTimeout = 2 * time.Second

	// AdminID is reserved for the administrator and cannot be used by an account.
	AdminID = "admin"
)

// Ledger is the owner of all accounts and their persisted snapshot.
type Ledger struct {
	store     interfaces.SnapshotStore
	history   interfaces.HistoryLog
	publisher interfaces.EventPublisher // nil disables events
	topic     string
	timeout   time.Duration
	adminPIN  string
	now       func() time.Time

	accounts map[string]*Account
}

// Option configures a Ledger.
type Option func(*Ledger)

// WithPublisher publishes a TransactionCompleted event on topic after every
// successful deposit, withdrawal and transfer.
func WithPublisher(p interfaces.EventPublisher, topic string) Option {
	return func(l *Ledger) {
		l.publisher = p
		l.topic = topic
	}
}

// WithPublishTimeout replaces DefaultPublishTimeout.
func WithPublishTimeout(d time.Duration) Option {
	return func(l *Ledger) { l.timeout = d }
}

// WithClock replaces time.Now for transaction timestamps.
func WithClock(now func() time.Time) Option {
	return func(l *Ledger) { l.now = now }
}

// WithAdminPIN replaces DefaultAdminPIN.
func WithAdminPIN(pin string) Option {
	return func(l *Ledger) { l.adminPIN = pin }
}

// NewLedger creates an empty ledger persisted in store, with account histories in history.
// Call Load to read the last snapshot.
func NewLedger(store interfaces.SnapshotStore, history interfaces.HistoryLog, opts ...Option) *Ledger {
	l := &Ledger{
		store:    store,
		history:  history,
		topic:    events.TopicTransactionCompleted,
		timeout:  DefaultPublishTimeout,
		adminPIN: DefaultAdminPIN,
		now:      time.Now,
		accounts: make(map[string]*Account),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Load replaces the accounts with the last saved snapshot. A missing snapshot
// yields an empty ledger silently; an unreadable one also yields an empty
// ledger, with a warning in the log.
func (l *Ledger) Load(ctx context.Context) {
	l.accounts = make(map[string]*Account)
	records, err := l.store.Load(ctx)
	if errors.Is(err, fs.ErrNotExist) {
		return
	}
	if err != nil {
		log.Printf("warning, %v; starting with no accounts", &PersistenceError{Op: "load", Err: err})
		return
	}
	for _, r := range records {
		if err := ValidateID(r.ID); err != nil {
			log.Printf("warning, skipping snapshot record: %v", err)
			continue
		}
		if r.Balance.IsNegative() {
			log.Printf("warning, skipping snapshot record %q: negative balance %s", r.ID, r.Balance)
			continue
		}
		if l.Exists(r.ID) {
			log.Printf("warning, skipping duplicate snapshot record %q", r.ID)
			continue
		}
		l.accounts[r.ID] = newAccount(r.ID, r.PIN, r.Balance, l)
	}
}

// Save writes every account to the snapshot store. A failure is logged and
// returned as a *PersistenceError; the ledger keeps working in memory.
func (l *Ledger) Save(ctx context.Context) error {
	records := make([]models.AccountRecord, 0, len(l.accounts))
	for _, a := range l.accounts {
		records = append(records, a.record())
	}
	if err := l.store.Save(ctx, records); err != nil {
		perr := &PersistenceError{Op: "save", Err: err}
		log.Printf("warning, %v", perr)
		return perr
	}
	return nil
}

// Exists tells whether id is a known account.
func (l *Ledger) Exists(id string) bool {
	_, ok := l.accounts[id]
	return ok
}

// Account returns the account id.
func (l *Ledger) Account(id string) (*Account, error) {
	a, ok := l.accounts[id]
	if !ok {
		return nil, ErrAccountNotFound
	}
	return a, nil
}

// PINPrompt returns the PIN entered at the given attempt (starting at 1).
// remaining is the number of attempts left after this one.
type PINPrompt func(attempt, remaining int) (string, error)

// Authenticate asks prompt for up to MaxPINAttempts PINs and returns the
// account on the first match. It fails with ErrNewAccount if id is unknown, and
// with ErrAuthenticationFailed after MaxPINAttempts mismatches.
func (l *Ledger) Authenticate(id string, prompt PINPrompt) (*Account, error) {
	a, ok := l.accounts[id]
	if !ok {
		return nil, ErrNewAccount
	}
	for attempt := 1; attempt <= MaxPINAttempts; attempt++ {
		pin, err := prompt(attempt, MaxPINAttempts-attempt)
		if err != nil {
			return nil, fmt.Errorf("reading PIN: %w", err)
		}
		if pin == a.pin {
			return a, nil
		}
	}
	return nil, ErrAuthenticationFailed
}

// ValidateID checks id can name an account.
func ValidateID(id string) error {
	switch {
	case id == "", id == ".", id == "..", id == AdminID:
		return fmt.Errorf("%w: %q", ErrInvalidID, id)
	case strings.ContainsAny(id, "/\\\n\r\t "):
		return fmt.Errorf("%w: %q contains a separator", ErrInvalidID, id)
	}
	return nil
}

// CreateAccount opens a zero-balance account and saves the snapshot. A failed
// save is logged; the account exists in memory anyway.
func (l *Ledger) CreateAccount(ctx context.Context, id, pin string) (*Account, error) {
	if err := ValidateID(id); err != nil {
		return nil, err
	}
	if l.Exists(id) {
		return nil, ErrAccountExists
	}
	a := newAccount(id, pin, decimal.Zero, l)
	l.accounts[id] = a
	_ = l.Save(ctx)
	return a, nil
}

// Deposit deposits amount into account id.
func (l *Ledger) Deposit(ctx context.Context, id string, amount decimal.Decimal) error {
	a, err := l.Account(id)
	if err != nil {
		return err
	}
	_, err = a.Deposit(ctx, amount)
	return err
}

// Withdraw withdraws amount from account id.
func (l *Ledger) Withdraw(ctx context.Context, id string, amount decimal.Decimal) error {
	a, err := l.Account(id)
	if err != nil {
		return err
	}
	_, err = a.Withdraw(ctx, amount)
	return err
}

// Transfer moves amount from fromID to toID. The source is debited first;
// if the destination cannot be credited, the debit is reversed, so a failed
// transfer leaves both balances as they were.
func (l *Ledger) Transfer(ctx context.Context, fromID, toID string, amount decimal.Decimal) error {
	from, err := l.Account(fromID)
	if err != nil {
		return err
	}
	if _, ok := l.accounts[toID]; !ok {
		return ErrRecipientNotFound
	}
	if fromID == toID {
		return ErrSelfTransfer
	}
	if !amount.IsPositive() {
		return ErrInvalidAmount
	}

	debit, err := from.withdraw(ctx, amount)
	if err != nil {
		return err
	}
	if err := l.credit(ctx, toID, amount); err != nil {
		from.reverse(ctx, debit)
		return err
	}

	from.RecordNote(debit.Line(fmt.Sprintf("Transferred %s to %s", amount, toID)))
	l.accounts[toID].RecordNote(debit.Line(fmt.Sprintf("Received %s from %s", amount, fromID)))

	tx := debit
	tx.Kind = models.KindTransfer
	tx.Counterparty = toID
	l.publish(ctx, tx)
	return nil
}

// credit is the second leg of a transfer; the recipient is looked up again.
func (l *Ledger) credit(ctx context.Context, toID string, amount decimal.Decimal) error {
	to, ok := l.accounts[toID]
	if !ok {
		return ErrRecipientNotFound
	}
	_, err := to.deposit(ctx, amount)
	return err
}

func (l *Ledger) publish(ctx context.Context, tx models.Transaction) {
	if l.publisher == nil {
		return
	}
	ctx, cancel := context.WithTimeout(ctx, l.timeout)
	defer cancel()
	ev := events.NewTransactionCompleted(tx)
	if err := l.publisher.Publish(ctx, l.topic, ev.Key(), ev); err != nil {
		log.Printf("warning, publishing transaction %s: %v", tx.ID, err)
	}
}
