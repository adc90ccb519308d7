package ledger

import (
	"errors"
	"fmt"
)

// Domain errors. Callers branch on them with errors.Is and keep the session going.
var (
	ErrInsufficientFunds    = errors.New("insufficient funds")
	ErrInvalidAmount        = errors.New("amount must be positive")
	ErrAccountNotFound      = errors.New("account not found")
	ErrRecipientNotFound    = errors.New("recipient not found")
	ErrSelfTransfer         = errors.New("cannot transfer to self")
	ErrAuthenticationFailed = errors.New("authentication failed")
	ErrAccountExists        = errors.New("account already exists")
	ErrInvalidID            = errors.New("invalid account id")
	ErrAccountClosed        = errors.New("account is closed")

	// ErrNewAccount is returned by Authenticate for an id the ledger has never
	// seen; the caller is expected to ask for a PIN and call CreateAccount.
	ErrNewAccount = errors.New("new account")

	// ErrPersistence matches every *PersistenceError.
	ErrPersistence = errors.New("persistence failure")
)

// PersistenceError reports a snapshot or history I/O failure. The in-memory
// state is kept as it is when one occurs.
type PersistenceError struct {
	Op  string // "load", "save", "append", "read", "remove"
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("%s: %s: %v", ErrPersistence, e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

func (e *PersistenceError) Is(target error) bool { return target == ErrPersistence }
