package models

import "github.com/shopspring/decimal"

// AccountRecord is the persisted form of an account in the ledger snapshot.
// Recent history is not part of it and is rebuilt empty on load.
type AccountRecord struct {
	ID      string          `json:"id"`      // account id (username)
	PIN     string          `json:"pin"`     // account credential
	Balance decimal.Decimal `json:"balance"` // never negative
}
