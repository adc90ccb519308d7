package interfaces

import (
	"context"

	"github.com/sheikh-saqib/atm-ledger/internal/models"
)

// SnapshotStore persists the whole account map as one snapshot.
// Load returns an error wrapping fs.ErrNotExist when no snapshot was ever saved.
type SnapshotStore interface {
	Load(ctx context.Context) ([]models.AccountRecord, error)
	Save(ctx context.Context, records []models.AccountRecord) error
}

// HistoryLog is the durable append-only transaction log of each account.
// Lines of an account that never logged anything are nil, and removing
// such an account is not an error.
type HistoryLog interface {
	Append(ctx context.Context, accountID, line string) error
	Lines(ctx context.Context, accountID string) ([]string, error)
	Remove(ctx context.Context, accountID string) error
}
