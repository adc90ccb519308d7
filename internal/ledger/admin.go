package ledger

import (
	"context"
	"io"

	"github.com/shopspring/decimal"
)

// DefaultAdminPIN is the shared administrator credential.
const DefaultAdminPIN = "0000"

// Admin gives access to the operations that bypass account PINs.
// It can only be obtained from Ledger.Admin.
type Admin struct {
	l *Ledger
}

// AccountSummary is one line of the administrative account listing.
type AccountSummary struct {
	ID      string
	Balance decimal.Decimal
}

// Admin checks the administrator PIN and opens an admin session.
func (l *Ledger) Admin(pin string) (*Admin, error) {
	if pin != l.adminPIN {
		return nil, ErrAuthenticationFailed
	}
	return &Admin{l: l}, nil
}

// ListAccounts returns every account with its balance, in no particular order.
func (ad *Admin) ListAccounts() []AccountSummary {
	out := make([]AccountSummary, 0, len(ad.l.accounts))
	for id, a := range ad.l.accounts {
		out = append(out, AccountSummary{ID: id, Balance: a.balance})
	}
	return out
}

// DeleteAccount removes the account and its history, then saves the snapshot.
// Handles to the deleted account still held by callers reject further mutations.
func (ad *Admin) DeleteAccount(ctx context.Context, id string) error {
	a, ok := ad.l.accounts[id]
	if !ok {
		return ErrAccountNotFound
	}
	delete(ad.l.accounts, id)
	a.closed = true
	a.recent = nil
	_ = ad.l.Save(ctx)
	if err := ad.l.history.Remove(ctx, id); err != nil {
		return &PersistenceError{Op: "remove", Err: err}
	}
	return nil
}

// ResetPIN replaces the PIN of account id and saves the snapshot.
func (ad *Admin) ResetPIN(ctx context.Context, id, newPIN string) error {
	a, ok := ad.l.accounts[id]
	if !ok {
		return ErrAccountNotFound
	}
	a.pin = newPIN
	_ = ad.l.Save(ctx)
	return nil
}

// PrintLog writes the full history of account id to w.
func (ad *Admin) PrintLog(ctx context.Context, id string, w io.Writer) error {
	a, ok := ad.l.accounts[id]
	if !ok {
		return ErrAccountNotFound
	}
	return a.PrintLog(ctx, w)
}
