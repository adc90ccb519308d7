package memory

import (
	"context" // standard Go package for request-scoped context (timeouts, cancellation)
	"fmt"
	"io/fs"
	"sync" // standard Go package for concurrency primitives like Mutex

	interfaces "github.com/sheikh-saqib/atm-ledger/internal/interfaces" // interfaces SnapshotStore, HistoryLog
	"github.com/sheikh-saqib/atm-ledger/internal/models"                // domain models: AccountRecord
)

// SnapshotStore is an in-memory implementation of interfaces.SnapshotStore.
// It keeps the last saved snapshot; nothing survives the process.
type SnapshotStore struct {
	mu      sync.Mutex             // protects records
	saved   bool                   // false until the first Save
	records []models.AccountRecord // last saved snapshot
}

// NewSnapshotStore creates an empty SnapshotStore.
func NewSnapshotStore() *SnapshotStore {
	return &SnapshotStore{}
}

// Load returns a copy of the last saved snapshot.
func (m *SnapshotStore) Load(ctx context.Context) ([]models.AccountRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.saved {
		return nil, fmt.Errorf("memory snapshot: %w", fs.ErrNotExist)
	}
	copied := make([]models.AccountRecord, len(m.records))
	copy(copied, m.records) // return a copy so callers can't modify internal state
	return copied, nil
}

// Save replaces the stored snapshot with a copy of records.
func (m *SnapshotStore) Save(ctx context.Context, records []models.AccountRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.records = make([]models.AccountRecord, len(records))
	copy(m.records, records)
	m.saved = true
	return nil // always succeeds in memory
}

// HistoryLog is an in-memory implementation of interfaces.HistoryLog.
type HistoryLog struct {
	mu    sync.Mutex          // protects lines
	lines map[string][]string // account id -> lines, oldest first
}

// NewHistoryLog creates an empty HistoryLog.
func NewHistoryLog() *HistoryLog {
	return &HistoryLog{
		lines: make(map[string][]string),
	}
}

// Append adds line at the end of the account log.
func (m *HistoryLog) Append(ctx context.Context, accountID, line string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.lines[accountID] = append(m.lines[accountID], line)
	return nil
}

// Lines returns a copy of the account log, oldest first.
func (m *HistoryLog) Lines(ctx context.Context, accountID string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	lines, ok := m.lines[accountID]
	if !ok {
		return nil, nil
	}
	copied := make([]string, len(lines))
	copy(copied, lines)
	return copied, nil
}

// Remove drops the account log.
func (m *HistoryLog) Remove(ctx context.Context, accountID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.lines, accountID)
	return nil
}

// Compile-time check: ensure the memory stores implement the storage interfaces
var (
	_ interfaces.SnapshotStore = (*SnapshotStore)(nil)
	_ interfaces.HistoryLog    = (*HistoryLog)(nil)
)
